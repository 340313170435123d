package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *repository.MemoryStore
	requests repository.RequestRepository
	assets   repository.AssetRepository
	queue    repository.SyncRepository
	demolish RequestService
	transfer RequestService
}

// newFixture wires the engine against the memory store. Thresholds: the
// demolish flow switches to the longer chain above 1000, and a budget
// document is required above 1000.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	requests := repository.NewMemoryRequestRepository(store)
	assets := repository.NewMemoryAssetRepository(store)
	queue := repository.NewMemorySyncRepository(store)

	threshold := decimal.NewFromInt(1000)
	flows := NewFlowResolver(threshold)

	return &fixture{
		store:    store,
		requests: requests,
		assets:   assets,
		queue:    queue,
		demolish: NewRequestService(NewDemolishPolicy(flows, threshold, queue), requests, assets, store, nil),
		transfer: NewRequestService(NewTransferPolicy(flows, assets, queue), requests, assets, store, nil),
	}
}

func (f *fixture) seedAsset(t *testing.T, assetNo, costCenter string, bookValue float64) *model.Asset {
	t.Helper()
	svc := NewAssetService(f.assets)
	asset, err := svc.Create(context.Background(), CreateAssetInput{
		AssetNo:    assetNo,
		AssetName:  "Asset " + assetNo,
		PlantID:    "PLANT-01",
		CostCenter: costCenter,
		Location:   "WH-01",
		BookValue:  decimal.NewFromFloat(bookValue).String(),
	})
	require.NoError(t, err)
	return asset
}

func demolishDraft(t *testing.T, f *fixture) *model.AssetRequest {
	t.Helper()
	req, err := f.demolish.CreateDraft(context.Background(), CreateRequestInput{
		CompanyID:     "MP01",
		PlantID:       "PLANT-01",
		CreatedByName: "Alice Requester",
	})
	require.NoError(t, err)
	return req
}

func transferDraft(t *testing.T, f *fixture) *model.AssetRequest {
	t.Helper()
	req, err := f.transfer.CreateDraft(context.Background(), CreateRequestInput{
		CompanyID:      "MP01",
		PlantID:        "PLANT-01",
		CreatedByName:  "Bob Sender",
		FromCostCenter: "CC-SRC",
		ToCostCenter:   "CC-DST",
		ToLocation:     "WH-09",
		ToOwnerName:    "Carol Receiver",
		ToOwnerEmail:   "carol@example.com",
	})
	require.NoError(t, err)
	return req
}

func TestCreateDraft_AllocatesSequentialNumbers(t *testing.T) {
	f := newFixture(t)
	year := time.Now().Year()

	first := demolishDraft(t, f)
	second := demolishDraft(t, f)
	transfer := transferDraft(t, f)

	assert.Equal(t, fmt.Sprintf("DM-%d-00001", year), first.RequestNo)
	assert.Equal(t, fmt.Sprintf("DM-%d-00002", year), second.RequestNo)
	// The transfer sequence is independent of the demolish one.
	assert.Equal(t, fmt.Sprintf("TR-%d-00001", year), transfer.RequestNo)

	assert.Equal(t, model.StatusDraft, first.Status)
	assert.True(t, first.TotalBookValue.IsZero())
	assert.Empty(t, first.Items)
	assert.Empty(t, first.History)
}

func TestCreateDraft_TransferRequiresRoutingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.transfer.CreateDraft(context.Background(), CreateRequestInput{
		CompanyID:     "MP01",
		PlantID:       "PLANT-01",
		CreatedByName: "Bob Sender",
		// FromCostCenter missing
		ToCostCenter: "CC-DST",
		ToLocation:   "WH-09",
		ToOwnerName:  "Carol Receiver",
		ToOwnerEmail: "carol@example.com",
	})
	assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
}

func TestAddItem_FreezesBookValueAndRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset1 := f.seedAsset(t, "A001", "CC-SRC", 500.00)
	asset2 := f.seedAsset(t, "A002", "CC-SRC", 120.555)

	req := demolishDraft(t, f)

	req, err := f.demolish.AddItem(ctx, req.ID.String(), asset1.ID.String(), "rusted")
	require.NoError(t, err)
	assert.Equal(t, "500.00", req.TotalBookValue.StringFixed(2))
	assert.Equal(t, "rusted", req.Items[0].Note)

	req, err = f.demolish.AddItem(ctx, req.ID.String(), asset2.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, "620.56", req.TotalBookValue.StringFixed(2))

	// Catalog changes after the fact must not flow back into the item.
	require.NoError(t, f.assets.UpdateFields(ctx, asset1.ID, "CC-OTHER", "WH-02"))
	reloaded, err := f.demolish.Get(ctx, req.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "500.00", reloaded.Items[0].BookValueAtRequest.StringFixed(2))
}

func TestAddItem_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "A001", "CC-SRC", 500.00)
	foreign := f.seedAsset(t, "A002", "CC-OTHER", 50.00)

	req := transferDraft(t, f)

	_, err := f.transfer.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
	require.NoError(t, err)

	t.Run("duplicate asset", func(t *testing.T) {
		_, err := f.transfer.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("cost center mismatch", func(t *testing.T) {
		_, err := f.transfer.AddItem(ctx, req.ID.String(), foreign.ID.String(), "")
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("unknown asset", func(t *testing.T) {
		_, err := f.transfer.AddItem(ctx, req.ID.String(), "6a6be07a-7b42-45f2-bf25-5a7bd2f089f5", "")
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := f.transfer.AddItem(ctx, "f2b3bd1e-9f62-4f0e-9a55-10935ab3a27e", asset.ID.String(), "")
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})

	t.Run("wrong variant id", func(t *testing.T) {
		// A transfer id is not visible through the demolish service.
		_, err := f.demolish.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	})
}

func TestSubmit_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "A001", "CC-SRC", 500.00)

	t.Run("empty item list", func(t *testing.T) {
		req := demolishDraft(t, f)
		_, err := f.demolish.Submit(ctx, req.ID.String())
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("missing approval document", func(t *testing.T) {
		req := demolishDraft(t, f)
		_, err := f.demolish.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
		require.NoError(t, err)

		_, err = f.demolish.Submit(ctx, req.ID.String())
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("missing budget document above threshold", func(t *testing.T) {
		big := f.seedAsset(t, "A900", "CC-SRC", 2500.00) // above the 1000 budget threshold
		req := demolishDraft(t, f)
		_, err := f.demolish.AddItem(ctx, req.ID.String(), big.ID.String(), "")
		require.NoError(t, err)
		_, err = f.demolish.AddDocument(ctx, req.ID.String(), model.DocTypeApproval, "approval.pdf")
		require.NoError(t, err)

		_, err = f.demolish.Submit(ctx, req.ID.String())
		assert.True(t, apperr.IsValidation(err), "got %v", err)

		_, err = f.demolish.AddDocument(ctx, req.ID.String(), model.DocTypeBudget, "budget.pdf")
		require.NoError(t, err)
		submitted, err := f.demolish.Submit(ctx, req.ID.String())
		require.NoError(t, err)
		assert.Equal(t, FlowDemolishGT, submitted.FlowCode)
		assert.Len(t, submitted.Steps, 6)
	})

	t.Run("double submit", func(t *testing.T) {
		req := demolishDraft(t, f)
		_, err := f.demolish.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
		require.NoError(t, err)
		_, err = f.demolish.AddDocument(ctx, req.ID.String(), model.DocTypeApproval, "approval.pdf")
		require.NoError(t, err)
		_, err = f.demolish.Submit(ctx, req.ID.String())
		require.NoError(t, err)

		_, err = f.demolish.Submit(ctx, req.ID.String())
		assert.True(t, apperr.IsInvalidState(err), "got %v", err)
	})
}

func TestAddDocument_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("transfer takes no documents", func(t *testing.T) {
		req := transferDraft(t, f)
		_, err := f.transfer.AddDocument(ctx, req.ID.String(), model.DocTypeApproval, "approval.pdf")
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("unknown doc type", func(t *testing.T) {
		req := demolishDraft(t, f)
		_, err := f.demolish.AddDocument(ctx, req.ID.String(), "RECEIPT", "r.pdf")
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})
}

func TestDemolishLifecycle_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "A001", "CC-SRC", 500.00)

	req := demolishDraft(t, f)
	_, err := f.demolish.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
	require.NoError(t, err)
	_, err = f.demolish.AddDocument(ctx, req.ID.String(), model.DocTypeApproval, "approval.pdf")
	require.NoError(t, err)

	req, err = f.demolish.Submit(ctx, req.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, req.Status)
	assert.Equal(t, FlowDemolishLE, req.FlowCode) // 500 <= 1000
	assert.Len(t, req.Steps, 5)
	assert.Equal(t, 1, req.CurrentStepOrder)
	assert.Equal(t, "Requester", req.CurrentStepName)
	assert.Equal(t, "500.00", req.TotalBookValue.StringFixed(2))
	require.Len(t, req.History, 1)
	assert.Equal(t, model.ActionComment, req.History[0].ActionCode)
	assert.Equal(t, "Alice Requester", req.History[0].ActorName)

	// Approve through every step; status flips to PENDING after the first
	// action and stays there until the chain is exhausted.
	stepCount := len(req.Steps)
	for i := 1; i <= stepCount; i++ {
		req, err = f.demolish.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, fmt.Sprintf("Approver %d", i), "")
		require.NoError(t, err)
		if i < stepCount {
			assert.Equal(t, model.StatusPending, req.Status)
			assert.Equal(t, i+1, req.CurrentStepOrder)
		}
	}
	assert.Equal(t, model.StatusApproved, req.Status)
	assert.Equal(t, "Approved", req.CurrentStepName)
	// Submission entry plus one entry per step.
	assert.Len(t, req.History, stepCount+1)

	// No demolish handoff until receipt.
	entries, err := f.queue.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	req, err = f.demolish.Receive(ctx, req.ID.String(), "Dave Warehouse")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, req.Status)
	assert.Equal(t, "Dave Warehouse", req.ReceivedBy)
	require.NotNil(t, req.ReceivedAt)
	assert.Len(t, req.History, stepCount+2)

	entries, err = f.queue.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.SyncRefDemolish, entries[0].RefType)
	assert.Equal(t, req.RequestNo, entries[0].RefNo)
	assert.Equal(t, model.SyncPending, entries[0].Status)

	// RECEIVED is terminal.
	_, err = f.demolish.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, "Approver", "")
	assert.True(t, apperr.IsInvalidState(err), "got %v", err)
	_, err = f.demolish.Receive(ctx, req.ID.String(), "Dave Warehouse")
	assert.True(t, apperr.IsInvalidState(err), "got %v", err)
}

func TestTransferLifecycle_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset1 := f.seedAsset(t, "A001", "CC-SRC", 300.00)
	asset2 := f.seedAsset(t, "A002", "CC-SRC", 450.00)

	req := transferDraft(t, f)
	_, err := f.transfer.AddItem(ctx, req.ID.String(), asset1.ID.String(), "")
	require.NoError(t, err)
	_, err = f.transfer.AddItem(ctx, req.ID.String(), asset2.ID.String(), "")
	require.NoError(t, err)

	req, err = f.transfer.Submit(ctx, req.ID.String())
	require.NoError(t, err)
	assert.Equal(t, FlowTransfer, req.FlowCode)
	require.Len(t, req.Steps, 5)
	assert.Equal(t, "Head of Source Department", req.CurrentStepName)

	for i := 1; i <= 5; i++ {
		req, err = f.transfer.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, fmt.Sprintf("Approver %d", i), "ok")
		require.NoError(t, err)
	}
	assert.Equal(t, model.StatusApproved, req.Status)

	// Final approval reassigned both assets to the destination.
	for _, seeded := range []*model.Asset{asset1, asset2} {
		moved, err := f.assets.FindByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "CC-DST", moved.CostCenter)
		assert.Equal(t, "WH-09", moved.Location)
	}

	entries, err := f.queue.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.SyncRefTransfer, entries[0].RefType)
	assert.Equal(t, req.RequestNo, entries[0].RefNo)
	assert.Equal(t, "carol@example.com", entries[0].NotifyEmail)

	// APPROVED is terminal for transfers: no receive step, no more actions.
	_, err = f.transfer.Receive(ctx, req.ID.String(), "Dave Warehouse")
	assert.True(t, apperr.IsInvalidState(err), "got %v", err)
	_, err = f.transfer.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, "Approver", "")
	assert.True(t, apperr.IsInvalidState(err), "got %v", err)
}

func TestActOnApproval_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "A001", "CC-SRC", 500.00)

	req := transferDraft(t, f)
	_, err := f.transfer.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
	require.NoError(t, err)
	req, err = f.transfer.Submit(ctx, req.ID.String())
	require.NoError(t, err)

	// Approve once, then reject at step 2.
	_, err = f.transfer.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, "Head", "")
	require.NoError(t, err)
	req, err = f.transfer.ActOnApproval(ctx, req.ID.String(), model.ActionReject, "Manager", "not justified")
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, req.Status)
	last := req.History[len(req.History)-1]
	assert.Equal(t, model.ActionReject, last.ActionCode)
	assert.Equal(t, 2, last.StepOrder)
	assert.Equal(t, "Manager of Source Department", last.StepName)
	assert.Equal(t, "not justified", last.Comment)

	// No asset mutation, no sync handoff on rejection.
	unmoved, err := f.assets.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "CC-SRC", unmoved.CostCenter)
	entries, err := f.queue.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// REJECTED is terminal.
	_, err = f.transfer.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, "Head", "")
	assert.True(t, apperr.IsInvalidState(err), "got %v", err)
}

func TestActOnApproval_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := demolishDraft(t, f)

	t.Run("not submitted", func(t *testing.T) {
		_, err := f.demolish.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, "Approver", "")
		assert.True(t, apperr.IsInvalidState(err), "got %v", err)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := f.demolish.ActOnApproval(ctx, req.ID.String(), "ESCALATE", "Approver", "")
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})

	t.Run("missing actor", func(t *testing.T) {
		_, err := f.demolish.ActOnApproval(ctx, req.ID.String(), model.ActionApprove, "", "")
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})
}

func TestUpdate_StaleVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "A001", "CC-SRC", 500.00)

	req := demolishDraft(t, f)

	// Simulate two callers holding the same snapshot.
	stale, err := f.requests.FindByID(ctx, req.ID)
	require.NoError(t, err)

	_, err = f.demolish.AddItem(ctx, req.ID.String(), asset.ID.String(), "")
	require.NoError(t, err)

	err = f.requests.Update(ctx, stale)
	assert.True(t, apperr.IsConflict(err), "got %v", err)
}

func TestList_SummariesAndStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.seedAsset(t, "A001", "CC-SRC", 500.00)

	draft := demolishDraft(t, f)
	submitted := demolishDraft(t, f)
	_, err := f.demolish.AddItem(ctx, submitted.ID.String(), asset.ID.String(), "")
	require.NoError(t, err)
	_, err = f.demolish.AddDocument(ctx, submitted.ID.String(), model.DocTypeApproval, "approval.pdf")
	require.NoError(t, err)
	_, err = f.demolish.Submit(ctx, submitted.ID.String())
	require.NoError(t, err)

	all, err := f.demolish.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := f.demolish.List(ctx, model.StatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.RequestNo, drafts[0].RequestNo)
	assert.Equal(t, model.StatusDraft, drafts[0].CurrentApprover)

	pending, err := f.demolish.List(ctx, model.StatusSubmitted)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Requester", pending[0].CurrentApprover)
	assert.Equal(t, 1, pending[0].ItemCount)
	assert.Equal(t, "500.00", pending[0].TotalBookValue)
}
