package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"

	"github.com/google/uuid"
)

// MemoryStore keeps all records in process. It backs unit tests and the
// STORE_DRIVER=memory mode; the postgres repositories are the production path.
//
// Reads hand out deep copies, so a caller can mutate a loaded request freely
// and nothing lands in the store until Update passes the version check.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.AssetRequest
	assets   map[uuid.UUID]*model.Asset
	users    map[uuid.UUID]*model.User
	queue    []*model.SyncQueueEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[uuid.UUID]*model.AssetRequest),
		assets:   make(map[uuid.UUID]*model.Asset),
		users:    make(map[uuid.UUID]*model.User),
	}
}

const memTxKey contextKey = "memory_tx"

// RunInTx serializes the whole operation under the store lock. That is the
// pessimistic variant of the concurrency guard: two racing lifecycle calls
// on the same request run one after the other, and the loser of a version
// race still gets a Conflict from Update.
//
// There is no rollback here; the lifecycle engine validates everything
// before its first write, which keeps partial mutation out of this path.
func (m *MemoryStore) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey, true))
}

// lock acquires the store lock unless ctx is already inside RunInTx.
// Same shape as GetDB picking the transaction handle out of the context.
func (m *MemoryStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func cloneRequest(r *model.AssetRequest) *model.AssetRequest {
	c := *r
	c.Items = append([]model.RequestItem(nil), r.Items...)
	c.Documents = append([]model.RequestDocument(nil), r.Documents...)
	c.Steps = append([]model.ApprovalStep(nil), r.Steps...)
	c.History = append([]model.ApprovalHistoryItem(nil), r.History...)
	return &c
}

// --- RequestRepository ---

type memoryRequestRepository struct {
	store *MemoryStore
}

func NewMemoryRequestRepository(store *MemoryStore) RequestRepository {
	return &memoryRequestRepository{store: store}
}

func (r *memoryRequestRepository) Create(ctx context.Context, req *model.AssetRequest) error {
	defer r.store.lock(ctx)()

	r.store.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *memoryRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AssetRequest, error) {
	defer r.store.lock(ctx)()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, apperr.NotFound("request %s not found", id)
	}
	return cloneRequest(req), nil
}

func (r *memoryRequestRepository) List(ctx context.Context, variant, status string) ([]model.AssetRequest, error) {
	defer r.store.lock(ctx)()

	var out []model.AssetRequest
	for _, req := range r.store.requests {
		if req.Variant != variant {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRequestRepository) ListRequestNos(ctx context.Context, variant, prefix string) ([]string, error) {
	defer r.store.lock(ctx)()

	var nos []string
	for _, req := range r.store.requests {
		if req.Variant == variant && strings.HasPrefix(req.RequestNo, prefix) {
			nos = append(nos, req.RequestNo)
		}
	}
	return nos, nil
}

func (r *memoryRequestRepository) LockNumberPrefix(ctx context.Context, prefix string) error {
	// The store mutex already serializes allocation.
	return nil
}

func (r *memoryRequestRepository) Update(ctx context.Context, req *model.AssetRequest) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.requests[req.ID]
	if !ok {
		return apperr.NotFound("request %s not found", req.ID)
	}
	if stored.Version != req.Version {
		return apperr.Conflict("request %s was modified concurrently", req.RequestNo)
	}
	req.Version++
	r.store.requests[req.ID] = cloneRequest(req)
	return nil
}

// --- AssetRepository ---

type memoryAssetRepository struct {
	store *MemoryStore
}

func NewMemoryAssetRepository(store *MemoryStore) AssetRepository {
	return &memoryAssetRepository{store: store}
}

func (r *memoryAssetRepository) Create(ctx context.Context, asset *model.Asset) error {
	defer r.store.lock(ctx)()

	c := *asset
	r.store.assets[asset.ID] = &c
	return nil
}

func (r *memoryAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	defer r.store.lock(ctx)()

	asset, ok := r.store.assets[id]
	if !ok {
		return nil, apperr.NotFound("asset %s not found", id)
	}
	c := *asset
	return &c, nil
}

func (r *memoryAssetRepository) Search(ctx context.Context, search string, gapOnly bool, offset, limit int) ([]model.Asset, int64, error) {
	defer r.store.lock(ctx)()

	needle := strings.ToLower(strings.TrimSpace(search))

	var matched []model.Asset
	for _, asset := range r.store.assets {
		if needle != "" {
			haystack := strings.ToLower(strings.Join([]string{
				asset.AssetNo, asset.AssetName, asset.CostCenter, asset.Location,
			}, " "))
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		if gapOnly && !asset.SapGap() {
			continue
		}
		matched = append(matched, *asset)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].AssetNo < matched[j].AssetNo })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memoryAssetRepository) UpdateFields(ctx context.Context, id uuid.UUID, costCenter, location string) error {
	defer r.store.lock(ctx)()

	asset, ok := r.store.assets[id]
	if !ok {
		return apperr.NotFound("asset %s not found", id)
	}
	asset.CostCenter = costCenter
	asset.Location = location
	asset.UpdatedAt = time.Now()
	return nil
}

// --- SyncRepository ---

type memorySyncRepository struct {
	store *MemoryStore
}

func NewMemorySyncRepository(store *MemoryStore) SyncRepository {
	return &memorySyncRepository{store: store}
}

func (r *memorySyncRepository) Enqueue(ctx context.Context, entry *model.SyncQueueEntry) error {
	defer r.store.lock(ctx)()

	c := *entry
	r.store.queue = append(r.store.queue, &c)
	return nil
}

func (r *memorySyncRepository) List(ctx context.Context, status string) ([]model.SyncQueueEntry, error) {
	defer r.store.lock(ctx)()

	var out []model.SyncQueueEntry
	for _, entry := range r.store.queue {
		if status != "" && entry.Status != status {
			continue
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnqueuedAt.After(out[j].EnqueuedAt) })
	return out, nil
}

func (r *memorySyncRepository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	defer r.store.lock(ctx)()

	for _, entry := range r.store.queue {
		if entry.ID != id {
			continue
		}
		if entry.Status == model.SyncDone {
			return apperr.InvalidState("sync entry %s is already synced", id)
		}
		entry.Status = model.SyncDone
		syncedAt := at
		entry.SyncedAt = &syncedAt
		return nil
	}
	return apperr.NotFound("sync entry %s not found", id)
}

// --- UserRepository ---

type memoryUserRepository struct {
	store *MemoryStore
}

func NewMemoryUserRepository(store *MemoryStore) UserRepository {
	return &memoryUserRepository{store: store}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return apperr.Validation("email %s is already registered", user.Email)
		}
	}
	c := *user
	r.store.users[user.ID] = &c
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	defer r.store.lock(ctx)()

	user, ok := r.store.users[id]
	if !ok {
		return nil, apperr.NotFound("user %s not found", id)
	}
	c := *user
	return &c, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer r.store.lock(ctx)()

	for _, user := range r.store.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, apperr.NotFound("user %s not found", email)
}
