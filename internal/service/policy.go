package service

import (
	"context"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantPolicy holds everything that differs between the two request
// variants: numbering prefix, draft/item/submit validation, flow
// resolution, and the side effects fired on the terminal transitions.
// The lifecycle engine itself is variant-agnostic.
type VariantPolicy interface {
	Variant() string
	NumberPrefix() string
	ValidateDraft(in CreateRequestInput) error
	ValidateItem(req *model.AssetRequest, asset *model.Asset) error
	AllowsDocuments() bool
	ValidateSubmit(req *model.AssetRequest) error
	ResolveFlow(totalBookValue decimal.Decimal) (Flow, error)
	// FinalizeApproval runs inside the same transaction as the final APPROVE
	// write, so a failed side effect rolls the approval back.
	FinalizeApproval(ctx context.Context, req *model.AssetRequest, at time.Time) error
	CanReceive() bool
	FinalizeReceive(ctx context.Context, req *model.AssetRequest, at time.Time) error
	// ApprovedLabel is the "current approver" column shown while APPROVED.
	ApprovedLabel() string
}

// --- Demolish ---

type demolishPolicy struct {
	flows              *FlowResolver
	budgetDocThreshold decimal.Decimal
	syncRepo           repository.SyncRepository
}

// NewDemolishPolicy builds the demolish variant rules. budgetDocThreshold is
// the book value above which a BUDGET_DOC attachment becomes mandatory.
func NewDemolishPolicy(flows *FlowResolver, budgetDocThreshold decimal.Decimal, syncRepo repository.SyncRepository) VariantPolicy {
	return &demolishPolicy{flows: flows, budgetDocThreshold: budgetDocThreshold, syncRepo: syncRepo}
}

func (p *demolishPolicy) Variant() string      { return model.VariantDemolish }
func (p *demolishPolicy) NumberPrefix() string { return "DM" }

func (p *demolishPolicy) ValidateDraft(in CreateRequestInput) error { return nil }

func (p *demolishPolicy) ValidateItem(req *model.AssetRequest, asset *model.Asset) error {
	return nil
}

func (p *demolishPolicy) AllowsDocuments() bool { return true }

func (p *demolishPolicy) ValidateSubmit(req *model.AssetRequest) error {
	if !req.HasDocument(model.DocTypeApproval) {
		return apperr.Validation("an %s attachment is required before submitting", model.DocTypeApproval)
	}
	if req.TotalBookValue.GreaterThan(p.budgetDocThreshold) && !req.HasDocument(model.DocTypeBudget) {
		return apperr.Validation("a %s attachment is required when total book value exceeds %s",
			model.DocTypeBudget, p.budgetDocThreshold.StringFixed(2))
	}
	return nil
}

func (p *demolishPolicy) ResolveFlow(totalBookValue decimal.Decimal) (Flow, error) {
	return p.flows.Resolve(model.VariantDemolish, totalBookValue)
}

func (p *demolishPolicy) FinalizeApproval(ctx context.Context, req *model.AssetRequest, at time.Time) error {
	// Nothing yet; the downstream handoff happens on receive.
	return nil
}

func (p *demolishPolicy) CanReceive() bool { return true }

func (p *demolishPolicy) FinalizeReceive(ctx context.Context, req *model.AssetRequest, at time.Time) error {
	return p.syncRepo.Enqueue(ctx, &model.SyncQueueEntry{
		ID:         uuid.New(),
		RefType:    model.SyncRefDemolish,
		RefNo:      req.RequestNo,
		Status:     model.SyncPending,
		EnqueuedAt: at,
	})
}

func (p *demolishPolicy) ApprovedLabel() string { return "Waiting for Supplies Receive" }

// --- Transfer ---

type transferPolicy struct {
	flows     *FlowResolver
	assetRepo repository.AssetRepository
	syncRepo  repository.SyncRepository
}

func NewTransferPolicy(flows *FlowResolver, assetRepo repository.AssetRepository, syncRepo repository.SyncRepository) VariantPolicy {
	return &transferPolicy{flows: flows, assetRepo: assetRepo, syncRepo: syncRepo}
}

func (p *transferPolicy) Variant() string      { return model.VariantTransfer }
func (p *transferPolicy) NumberPrefix() string { return "TR" }

func (p *transferPolicy) ValidateDraft(in CreateRequestInput) error {
	switch {
	case in.FromCostCenter == "":
		return apperr.Validation("source cost center is required")
	case in.ToCostCenter == "":
		return apperr.Validation("destination cost center is required")
	case in.ToLocation == "":
		return apperr.Validation("destination location is required")
	case in.ToOwnerName == "":
		return apperr.Validation("receiving owner name is required")
	case in.ToOwnerEmail == "":
		return apperr.Validation("receiving owner email is required")
	}
	return nil
}

func (p *transferPolicy) ValidateItem(req *model.AssetRequest, asset *model.Asset) error {
	if asset.CostCenter != req.FromCostCenter {
		return apperr.Validation("asset %s belongs to cost center %s, not the source cost center %s",
			asset.AssetNo, asset.CostCenter, req.FromCostCenter)
	}
	return nil
}

func (p *transferPolicy) AllowsDocuments() bool { return false }

func (p *transferPolicy) ValidateSubmit(req *model.AssetRequest) error { return nil }

func (p *transferPolicy) ResolveFlow(totalBookValue decimal.Decimal) (Flow, error) {
	return p.flows.Resolve(model.VariantTransfer, totalBookValue)
}

// FinalizeApproval reassigns every transferred asset to the destination cost
// center/location and enqueues the downstream notification. Runs once, on
// the final APPROVE only.
func (p *transferPolicy) FinalizeApproval(ctx context.Context, req *model.AssetRequest, at time.Time) error {
	for _, item := range req.Items {
		if err := p.assetRepo.UpdateFields(ctx, item.AssetID, req.ToCostCenter, req.ToLocation); err != nil {
			return err
		}
	}
	return p.syncRepo.Enqueue(ctx, &model.SyncQueueEntry{
		ID:          uuid.New(),
		RefType:     model.SyncRefTransfer,
		RefNo:       req.RequestNo,
		NotifyEmail: req.ToOwnerEmail,
		Status:      model.SyncPending,
		EnqueuedAt:  at,
	})
}

func (p *transferPolicy) CanReceive() bool { return false }

func (p *transferPolicy) FinalizeReceive(ctx context.Context, req *model.AssetRequest, at time.Time) error {
	return apperr.InvalidState("transfer requests have no receive step")
}

func (p *transferPolicy) ApprovedLabel() string { return "Waiting SAP Sync (00:00)" }
