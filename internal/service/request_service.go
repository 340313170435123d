package service

import (
	"context"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRequestInput struct {
	CompanyID     string `json:"company_id" binding:"required"`
	PlantID       string `json:"plant_id" binding:"required"`
	CreatedByName string `json:"-"`

	// Transfer-only fields.
	FromCostCenter string `json:"from_cost_center"`
	ToCostCenter   string `json:"to_cost_center"`
	ToLocation     string `json:"to_location"`
	ToOwnerName    string `json:"to_owner_name"`
	ToOwnerEmail   string `json:"to_owner_email"`
}

// RequestSummary is the list-row projection, including the computed
// "current approver" column the approval queue screens show.
type RequestSummary struct {
	RequestID       string `json:"request_id"`
	RequestNo       string `json:"request_no"`
	Status          string `json:"status"`
	TotalBookValue  string `json:"total_book_value"`
	CreatedAt       string `json:"created_at"`
	CreatedByName   string `json:"created_by_name"`
	ItemCount       int    `json:"item_count"`
	FromCostCenter  string `json:"from_cost_center,omitempty"`
	ToCostCenter    string `json:"to_cost_center,omitempty"`
	ToOwnerName     string `json:"to_owner_name,omitempty"`
	ToOwnerEmail    string `json:"to_owner_email,omitempty"`
	CurrentApprover string `json:"current_approver"`
}

// Broadcaster pushes lifecycle events to connected clients. Nil is fine.
type Broadcaster interface {
	BroadcastEvent(event string, payload interface{})
}

// --- Interface ---

// RequestService is the approval-driven lifecycle engine for one request
// variant. Every operation validates everything before its first write,
// runs inside a transaction, and writes the request back with an optimistic
// version check.
type RequestService interface {
	CreateDraft(ctx context.Context, in CreateRequestInput) (*model.AssetRequest, error)
	AddItem(ctx context.Context, requestID, assetID, note string) (*model.AssetRequest, error)
	AddDocument(ctx context.Context, requestID, docTypeCode, fileName string) (*model.AssetRequest, error)
	Submit(ctx context.Context, requestID string) (*model.AssetRequest, error)
	ActOnApproval(ctx context.Context, requestID, action, actorName, comment string) (*model.AssetRequest, error)
	Receive(ctx context.Context, requestID, actorName string) (*model.AssetRequest, error)
	Get(ctx context.Context, requestID string) (*model.AssetRequest, error)
	List(ctx context.Context, status string) ([]RequestSummary, error)
}

type requestService struct {
	policy   VariantPolicy
	requests repository.RequestRepository
	assets   repository.AssetRepository
	txm      repository.TransactionManager
	events   Broadcaster
	now      func() time.Time
}

func NewRequestService(
	policy VariantPolicy,
	requests repository.RequestRepository,
	assets repository.AssetRepository,
	txm repository.TransactionManager,
	events Broadcaster,
) RequestService {
	return &requestService{
		policy:   policy,
		requests: requests,
		assets:   assets,
		txm:      txm,
		events:   events,
		now:      time.Now,
	}
}

// --- Operations ---

func (s *requestService) CreateDraft(ctx context.Context, in CreateRequestInput) (*model.AssetRequest, error) {
	if in.CompanyID == "" || in.PlantID == "" {
		return nil, apperr.Validation("company and plant are required")
	}
	if in.CreatedByName == "" {
		return nil, apperr.Validation("creator name is required")
	}
	if err := s.policy.ValidateDraft(in); err != nil {
		return nil, err
	}

	var req *model.AssetRequest
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		head := RequestNoHead(s.policy.NumberPrefix(), s.now().Year())
		if err := s.requests.LockNumberPrefix(txCtx, head); err != nil {
			return err
		}
		existing, err := s.requests.ListRequestNos(txCtx, s.policy.Variant(), head)
		if err != nil {
			return err
		}

		now := s.now()
		req = &model.AssetRequest{
			ID:             uuid.New(),
			Variant:        s.policy.Variant(),
			RequestNo:      NextRequestNo(s.policy.NumberPrefix(), now.Year(), existing),
			CompanyID:      in.CompanyID,
			PlantID:        in.PlantID,
			FromCostCenter: in.FromCostCenter,
			ToCostCenter:   in.ToCostCenter,
			ToLocation:     in.ToLocation,
			ToOwnerName:    in.ToOwnerName,
			ToOwnerEmail:   in.ToOwnerEmail,
			CreatedByName:  in.CreatedByName,
			Status:         model.StatusDraft,
			Version:        1,
			CreatedAt:      now,
		}
		return s.requests.Create(txCtx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) AddItem(ctx context.Context, requestID, assetID, note string) (*model.AssetRequest, error) {
	aid, err := uuid.Parse(assetID)
	if err != nil {
		return nil, apperr.Validation("invalid asset id: %v", err)
	}

	var req *model.AssetRequest
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		req, err = s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.StatusDraft {
			return apperr.InvalidState("items can only be added while the request is in DRAFT")
		}

		asset, err := s.assets.FindByID(txCtx, aid)
		if err != nil {
			return err
		}
		if req.HasAsset(asset.ID) {
			return apperr.Validation("asset %s is already on this request", asset.AssetNo)
		}
		if err := s.policy.ValidateItem(req, asset); err != nil {
			return err
		}

		req.Items = append(req.Items, model.RequestItem{
			ID:                 uuid.New(),
			RequestID:          req.ID,
			AssetID:            asset.ID,
			AssetNo:            asset.AssetNo,
			AssetName:          asset.AssetName,
			BookValueAtRequest: asset.BookValue,
			Note:               note,
			CreatedAt:          s.now(),
		})
		req.RecomputeTotal()
		return s.requests.Update(txCtx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) AddDocument(ctx context.Context, requestID, docTypeCode, fileName string) (*model.AssetRequest, error) {
	if !s.policy.AllowsDocuments() {
		return nil, apperr.Validation("%s requests do not take document attachments", s.policy.Variant())
	}
	switch docTypeCode {
	case model.DocTypeApproval, model.DocTypeBudget, model.DocTypeOther:
	default:
		return nil, apperr.Validation("unknown document type %q", docTypeCode)
	}
	if fileName == "" {
		return nil, apperr.Validation("file name is required")
	}

	var req *model.AssetRequest
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.StatusDraft {
			return apperr.InvalidState("documents can only be attached while the request is in DRAFT")
		}

		req.Documents = append(req.Documents, model.RequestDocument{
			ID:          uuid.New(),
			RequestID:   req.ID,
			DocTypeCode: docTypeCode,
			FileName:    fileName,
			UploadedAt:  s.now(),
		})
		return s.requests.Update(txCtx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) Submit(ctx context.Context, requestID string) (*model.AssetRequest, error) {
	var req *model.AssetRequest
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.StatusDraft {
			return apperr.InvalidState("only DRAFT requests can be submitted")
		}
		if len(req.Items) == 0 {
			return apperr.Validation("add at least one item before submitting")
		}
		if err := s.policy.ValidateSubmit(req); err != nil {
			return err
		}

		flow, err := s.policy.ResolveFlow(req.TotalBookValue)
		if err != nil {
			return err
		}

		req.FlowCode = flow.Code
		req.Steps = make([]model.ApprovalStep, 0, len(flow.Steps))
		for _, step := range flow.Steps {
			req.Steps = append(req.Steps, model.ApprovalStep{
				ID:           uuid.New(),
				RequestID:    req.ID,
				StepOrder:    step.Order,
				StepName:     step.Name,
				ApproverRole: step.Role,
			})
		}
		req.CurrentStepOrder = 1
		req.CurrentStepName = flow.Steps[0].Name
		req.Status = model.StatusSubmitted
		s.appendHistory(req, model.ActionComment, req.CreatedByName, "Submitted for approval")

		return s.requests.Update(txCtx, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish("request.submitted", req)
	return req, nil
}

func (s *requestService) ActOnApproval(ctx context.Context, requestID, action, actorName, comment string) (*model.AssetRequest, error) {
	if action != model.ActionApprove && action != model.ActionReject {
		return nil, apperr.Validation("action must be APPROVE or REJECT")
	}
	if actorName == "" {
		return nil, apperr.Validation("actor name is required")
	}

	var req *model.AssetRequest
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if !req.Submitted() {
			return apperr.InvalidState("request %s has not been submitted", req.RequestNo)
		}
		if !req.Awaiting() {
			return apperr.InvalidState("request %s is %s and no longer accepts approval actions",
				req.RequestNo, req.Status)
		}

		// History first, capturing the step in effect before the action.
		s.appendHistory(req, action, actorName, comment)

		if action == model.ActionReject {
			req.Status = model.StatusRejected
			return s.requests.Update(txCtx, req)
		}

		if req.CurrentStepOrder < len(req.Steps) {
			req.CurrentStepOrder++
			req.CurrentStepName = req.Steps[req.CurrentStepOrder-1].StepName
			req.Status = model.StatusPending
			return s.requests.Update(txCtx, req)
		}

		// Final step approved.
		req.Status = model.StatusApproved
		req.CurrentStepName = "Approved"
		if err := s.policy.FinalizeApproval(txCtx, req, s.now()); err != nil {
			return err
		}
		return s.requests.Update(txCtx, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish("request."+map[string]string{
		model.ActionApprove: "approved",
		model.ActionReject:  "rejected",
	}[action], req)
	return req, nil
}

func (s *requestService) Receive(ctx context.Context, requestID, actorName string) (*model.AssetRequest, error) {
	if !s.policy.CanReceive() {
		return nil, apperr.InvalidState("%s requests have no receive step", s.policy.Variant())
	}
	if actorName == "" {
		return nil, apperr.Validation("actor name is required")
	}

	var req *model.AssetRequest
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.load(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.StatusApproved {
			return apperr.InvalidState("only APPROVED requests can be received, request %s is %s",
				req.RequestNo, req.Status)
		}

		now := s.now()
		req.Status = model.StatusReceived
		req.ReceivedAt = &now
		req.ReceivedBy = actorName
		s.appendHistory(req, model.ActionComment, actorName, "Supplies received")

		if err := s.policy.FinalizeReceive(txCtx, req, now); err != nil {
			return err
		}
		return s.requests.Update(txCtx, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish("request.received", req)
	return req, nil
}

func (s *requestService) Get(ctx context.Context, requestID string) (*model.AssetRequest, error) {
	return s.load(ctx, requestID)
}

func (s *requestService) List(ctx context.Context, status string) ([]RequestSummary, error) {
	reqs, err := s.requests.List(ctx, s.policy.Variant(), status)
	if err != nil {
		return nil, err
	}
	summaries := make([]RequestSummary, 0, len(reqs))
	for i := range reqs {
		summaries = append(summaries, s.toSummary(&reqs[i]))
	}
	return summaries, nil
}

// --- Helpers ---

func (s *requestService) load(ctx context.Context, requestID string) (*model.AssetRequest, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id: %v", err)
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Variant != s.policy.Variant() {
		return nil, apperr.NotFound("request %s not found", requestID)
	}
	return req, nil
}

// appendHistory is the audit trail builder: it records the step order/name
// active before any approval-state advance. Entries are never edited.
func (s *requestService) appendHistory(req *model.AssetRequest, actionCode, actorName, comment string) {
	stepOrder, stepName := 0, "SUBMIT"
	if req.Submitted() {
		stepOrder, stepName = req.CurrentStepOrder, req.CurrentStepName
	}
	req.History = append(req.History, model.ApprovalHistoryItem{
		ID:         uuid.New(),
		RequestID:  req.ID,
		StepOrder:  stepOrder,
		StepName:   stepName,
		ActionCode: actionCode,
		ActorName:  actorName,
		Comment:    comment,
		ActionAt:   s.now(),
	})
}

func (s *requestService) toSummary(req *model.AssetRequest) RequestSummary {
	currentApprover := req.Status
	switch {
	case req.Status == model.StatusReceived:
		currentApprover = "Supplies Received"
	case req.Status == model.StatusApproved:
		currentApprover = s.policy.ApprovedLabel()
	case req.CurrentStepName != "":
		currentApprover = req.CurrentStepName
	}

	return RequestSummary{
		RequestID:       req.ID.String(),
		RequestNo:       req.RequestNo,
		Status:          req.Status,
		TotalBookValue:  req.TotalBookValue.StringFixed(2),
		CreatedAt:       req.CreatedAt.Format(time.RFC3339),
		CreatedByName:   req.CreatedByName,
		ItemCount:       len(req.Items),
		FromCostCenter:  req.FromCostCenter,
		ToCostCenter:    req.ToCostCenter,
		ToOwnerName:     req.ToOwnerName,
		ToOwnerEmail:    req.ToOwnerEmail,
		CurrentApprover: currentApprover,
	}
}

func (s *requestService) publish(event string, req *model.AssetRequest) {
	if s.events == nil {
		return
	}
	s.events.BroadcastEvent(event, map[string]interface{}{
		"variant":    req.Variant,
		"request_no": req.RequestNo,
		"status":     req.Status,
	})
}
