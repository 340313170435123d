package service

import (
	"asset-backend/internal/apperr"
	"asset-backend/internal/model"

	"github.com/shopspring/decimal"
)

// FlowCode enum constants
const (
	FlowTransfer   = "TRANSFER"
	FlowDemolishLE = "DEMOLISH_LE"
	FlowDemolishGT = "DEMOLISH_GT"
)

// FlowStep is one stage descriptor in an approval chain. The role code is
// what step identity hangs on; the name is the display label.
type FlowStep struct {
	Order int
	Name  string
	Role  string
}

// Flow is a resolved approval chain.
type Flow struct {
	Code  string
	Steps []FlowStep
}

var transferFlow = Flow{
	Code: FlowTransfer,
	Steps: []FlowStep{
		{Order: 1, Name: "Head of Source Department", Role: "SRC_DEPT_HEAD"},
		{Order: 2, Name: "Manager of Source Department", Role: "SRC_DEPT_MANAGER"},
		{Order: 3, Name: "Head of Destination Department", Role: "DST_DEPT_HEAD"},
		{Order: 4, Name: "Manager of Destination Department", Role: "DST_DEPT_MANAGER"},
		{Order: 5, Name: "Director of Destination Department", Role: "DST_DEPT_DIRECTOR"},
	},
}

var demolishLEFlow = Flow{
	Code: FlowDemolishLE,
	Steps: []FlowStep{
		{Order: 1, Name: "Requester", Role: "REQUESTER"},
		{Order: 2, Name: "Asset Owner", Role: "ASSET_OWNER"},
		{Order: 3, Name: "Central Accounting Director", Role: "CENTRAL_ACCT_DIRECTOR"},
		{Order: 4, Name: "Final Approver", Role: "FINAL_APPROVER"},
		{Order: 5, Name: "Asset Accountant", Role: "ASSET_ACCOUNTANT"},
	},
}

var demolishGTFlow = Flow{
	Code: FlowDemolishGT,
	Steps: []FlowStep{
		{Order: 1, Name: "Requester", Role: "REQUESTER"},
		{Order: 2, Name: "Factory Accounting Manager", Role: "FACTORY_ACCT_MANAGER"},
		{Order: 3, Name: "Budget Approver", Role: "BUDGET_APPROVER"},
		{Order: 4, Name: "Central Accounting Director", Role: "CENTRAL_ACCT_DIRECTOR"},
		{Order: 5, Name: "Final Approver", Role: "FINAL_APPROVER"},
		{Order: 6, Name: "Asset Accountant", Role: "ASSET_ACCOUNTANT"},
	},
}

// FlowResolver picks the approval chain for a variant and total book value.
// Approval depth scales with financial materiality: a demolish request above
// the threshold goes through the longer chain.
type FlowResolver struct {
	demolishThreshold decimal.Decimal
}

func NewFlowResolver(demolishThreshold decimal.Decimal) *FlowResolver {
	return &FlowResolver{demolishThreshold: demolishThreshold}
}

func (f *FlowResolver) Resolve(variant string, totalBookValue decimal.Decimal) (Flow, error) {
	switch variant {
	case model.VariantTransfer:
		return transferFlow, nil
	case model.VariantDemolish:
		if totalBookValue.LessThanOrEqual(f.demolishThreshold) {
			return demolishLEFlow, nil
		}
		return demolishGTFlow, nil
	default:
		return Flow{}, apperr.Validation("unknown request variant %q", variant)
	}
}
