package service

import (
	"testing"

	"asset-backend/internal/apperr"
	"asset-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowResolver_Resolve(t *testing.T) {
	resolver := NewFlowResolver(decimal.NewFromInt(1000))

	tests := []struct {
		name      string
		variant   string
		total     decimal.Decimal
		wantCode  string
		wantSteps int
	}{
		{"transfer ignores total", model.VariantTransfer, decimal.NewFromInt(999999), FlowTransfer, 5},
		{"demolish below threshold", model.VariantDemolish, decimal.NewFromInt(999), FlowDemolishLE, 5},
		{"demolish at threshold stays short", model.VariantDemolish, decimal.NewFromInt(1000), FlowDemolishLE, 5},
		{"demolish above threshold", model.VariantDemolish, decimal.NewFromFloat(1000.01), FlowDemolishGT, 6},
		{"demolish zero total", model.VariantDemolish, decimal.Zero, FlowDemolishLE, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, err := resolver.Resolve(tt.variant, tt.total)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, flow.Code)
			assert.Len(t, flow.Steps, tt.wantSteps)
		})
	}

	t.Run("unknown variant", func(t *testing.T) {
		_, err := resolver.Resolve("LOAN", decimal.Zero)
		assert.True(t, apperr.IsValidation(err), "got %v", err)
	})
}

func TestFlows_StepOrderingIsDense(t *testing.T) {
	for _, flow := range []Flow{transferFlow, demolishLEFlow, demolishGTFlow} {
		for i, step := range flow.Steps {
			assert.Equal(t, i+1, step.Order, "flow %s step %d", flow.Code, i)
			assert.NotEmpty(t, step.Name)
			assert.NotEmpty(t, step.Role)
		}
	}
}

func TestFlows_LongChainAddsBudgetStages(t *testing.T) {
	short := make(map[string]bool)
	for _, step := range demolishLEFlow.Steps {
		short[step.Role] = true
	}
	var extra []string
	for _, step := range demolishGTFlow.Steps {
		if !short[step.Role] {
			extra = append(extra, step.Role)
		}
	}
	assert.ElementsMatch(t, []string{"FACTORY_ACCT_MANAGER", "BUDGET_APPROVER"}, extra)
}
