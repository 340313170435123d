package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant enum constants
const (
	VariantDemolish = "DEMOLISH"
	VariantTransfer = "TRANSFER"
)

// RequestStatus enum constants
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusReceived  = "RECEIVED" // demolish only
)

// DocTypeCode enum constants
const (
	DocTypeApproval = "APPROVAL_DOC"
	DocTypeBudget   = "BUDGET_DOC"
	DocTypeOther    = "OTHER"
)

// ApprovalActionCode enum constants
const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
	ActionComment = "COMMENT"
)

// AssetRequest is a disposition case (demolish or transfer) tracked through
// the approval lifecycle. Both variants share one table; transfer-only and
// demolish-only columns stay zero for the other variant.
type AssetRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Variant   string    `gorm:"type:varchar(10);not null;index" json:"variant"`
	RequestNo string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"request_no"`
	CompanyID string    `gorm:"type:varchar(50);not null" json:"company_id"`
	PlantID   string    `gorm:"type:varchar(50);not null" json:"plant_id"`

	// Transfer-only fields, immutable after creation.
	FromCostCenter string `gorm:"type:varchar(50)" json:"from_cost_center,omitempty"`
	ToCostCenter   string `gorm:"type:varchar(50)" json:"to_cost_center,omitempty"`
	ToLocation     string `gorm:"type:varchar(100)" json:"to_location,omitempty"`
	ToOwnerName    string `gorm:"type:varchar(255)" json:"to_owner_name,omitempty"`
	ToOwnerEmail   string `gorm:"type:varchar(255)" json:"to_owner_email,omitempty"`

	CreatedByName  string          `gorm:"type:varchar(255);not null" json:"created_by_name"`
	Status         string          `gorm:"type:varchar(15);not null;index" json:"status"`
	TotalBookValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_book_value"`

	// Approval state, present once submitted.
	FlowCode         string `gorm:"type:varchar(20)" json:"flow_code,omitempty"`
	CurrentStepOrder int    `gorm:"not null;default:0" json:"current_step_order"`
	CurrentStepName  string `gorm:"type:varchar(100)" json:"current_step_name,omitempty"`

	// Demolish-only receipt fields, set once on receive.
	ReceivedAt *time.Time `json:"received_at,omitempty"`
	ReceivedBy string     `gorm:"type:varchar(255)" json:"received_by,omitempty"`

	// Version is the optimistic-concurrency token: every write checks it and
	// bumps it, so a stale read-modify-write loses instead of silently winning.
	Version int `gorm:"not null;default:1" json:"-"`

	Items     []RequestItem         `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	Documents []RequestDocument     `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"documents"`
	Steps     []ApprovalStep        `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"steps"`
	History   []ApprovalHistoryItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"approval_history"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestItem freezes an asset's book value at the moment it was added;
// later catalog changes do not flow back into the request.
type RequestItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	AssetID            uuid.UUID       `gorm:"type:uuid;not null" json:"asset_id"`
	AssetNo            string          `gorm:"type:varchar(30);not null" json:"asset_no"`
	AssetName          string          `gorm:"type:varchar(255);not null" json:"asset_name"`
	BookValueAtRequest decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"book_value_at_request"`
	Note               string          `gorm:"type:text" json:"note,omitempty"` // demolish only
	CreatedAt          time.Time       `json:"created_at"`
}

// RequestDocument is an attachment on a demolish request.
type RequestDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	DocTypeCode string    `gorm:"type:varchar(20);not null" json:"doc_type_code"` // APPROVAL_DOC, BUDGET_DOC, OTHER
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	UploadedAt  time.Time `gorm:"not null" json:"uploaded_at"`
}

// ApprovalStep is one named stage in the chain resolved at submit time.
// Steps carry an approver role code so step identity is not a bare string.
type ApprovalStep struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID    uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	StepOrder    int       `gorm:"not null" json:"step_order"` // 1-based
	StepName     string    `gorm:"type:varchar(100);not null" json:"step_name"`
	ApproverRole string    `gorm:"type:varchar(50);not null" json:"approver_role"`
}

// ApprovalHistoryItem records who did what, when. Rows are append-only and
// never edited; StepOrder/StepName capture the step active before the action.
type ApprovalHistoryItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	StepOrder  int       `gorm:"not null" json:"step_order"`
	StepName   string    `gorm:"type:varchar(100);not null" json:"step_name"`
	ActionCode string    `gorm:"type:varchar(10);not null" json:"action_code"` // APPROVE, REJECT, COMMENT
	ActorName  string    `gorm:"type:varchar(255);not null" json:"actor_name"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	ActionAt   time.Time `gorm:"not null" json:"action_at"`
}

// Awaiting reports whether the request is waiting on an approval action.
// SUBMITTED and PENDING differ only cosmetically (first step vs. later steps).
func (r *AssetRequest) Awaiting() bool {
	return r.Status == StatusSubmitted || r.Status == StatusPending
}

// Submitted reports whether an approval flow has been resolved for the request.
func (r *AssetRequest) Submitted() bool {
	return r.FlowCode != ""
}

// HasAsset reports whether the asset is already referenced by an item.
func (r *AssetRequest) HasAsset(assetID uuid.UUID) bool {
	for _, item := range r.Items {
		if item.AssetID == assetID {
			return true
		}
	}
	return false
}

// HasDocument reports whether a document of the given type code is attached.
func (r *AssetRequest) HasDocument(docTypeCode string) bool {
	for _, doc := range r.Documents {
		if doc.DocTypeCode == docTypeCode {
			return true
		}
	}
	return false
}

// RecomputeTotal re-derives TotalBookValue from the current items, rounded
// to 2 decimal places.
func (r *AssetRequest) RecomputeTotal() {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.BookValueAtRequest)
	}
	r.TotalBookValue = total.Round(2)
}
