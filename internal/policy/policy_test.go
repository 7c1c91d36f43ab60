package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/docdata-orchestrator/internal/report"
)

func TestNewReconciler_EmptyAndNilRules(t *testing.T) {
	r, err := NewReconciler(nil)
	require.NoError(t, err)
	assert.NotNil(t, r)
	assert.Empty(t, r.rules)

	r, err = NewReconciler([]Rule{})
	require.NoError(t, err)
	assert.Empty(t, r.rules)
}

func TestNewReconciler_CompilationError(t *testing.T) {
	rules := []Rule{
		{ID: "rule1", Operation: "capture", Expression: "totalCaptured > 100"},
		{ID: "rule2", Operation: "capture", Expression: "totalRegistered =="},
	}
	_, err := NewReconciler(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile rule ID 'rule2'")
	assert.Contains(t, err.Error(), "Unexpected end of expression")
}

func TestNewReconciler_EmptyExpressionInRule(t *testing.T) {
	_, err := NewReconciler([]Rule{{ID: "empty_expr_rule", Operation: "capture"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy rule ID 'empty_expr_rule' has an empty expression")
}

func TestNewReconciler_UndefinedFunction(t *testing.T) {
	_, err := NewReconciler([]Rule{{ID: "bad_func", Operation: "capture", Expression: "nonExistentFunction(totalCaptured) == true"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile rule ID 'bad_func'")
	assert.Contains(t, err.Error(), "Undefined function nonExistentFunction")
}

func TestReconciler_DefaultRules(t *testing.T) {
	r, err := NewReconciler(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name   string
		op     string
		totals *report.ApproximateTotals
		want   Decision
	}{
		{
			name:   "fully captured overrides capture",
			op:     "capture",
			totals: &report.ApproximateTotals{Registered: 1000, Captured: 1000},
			want:   Decision{Override: true, RuleID: "capture-fully-captured"},
		},
		{
			name:   "partially captured does not",
			op:     "capture",
			totals: &report.ApproximateTotals{Registered: 1000, Captured: 500},
		},
		{
			name:   "zero totals never count as settled",
			op:     "capture",
			totals: &report.ApproximateTotals{},
		},
		{
			name:   "no totals",
			op:     "capture",
			totals: nil,
		},
		{
			name:   "fully approved overrides proceed",
			op:     "proceed",
			totals: &report.ApproximateTotals{Registered: 1000, AcquirerApproved: 1000},
			want:   Decision{Override: true, RuleID: "proceed-fully-approved"},
		},
		{
			name:   "capture totals do not reconcile proceed",
			op:     "proceed",
			totals: &report.ApproximateTotals{Registered: 1000, Captured: 1000},
		},
		{
			name:   "refund has no rules",
			op:     "refund",
			totals: &report.ApproximateTotals{Registered: 1000, Captured: 1000, AcquirerApproved: 1000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ShouldOverride(tt.op, tt.totals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconciler_PriorityOrder(t *testing.T) {
	r, err := NewReconciler([]Rule{
		{ID: "late", Operation: "capture", Expression: "totalCaptured > 0", Priority: 5},
		{ID: "early", Operation: "capture", Expression: "totalCaptured > 0", Priority: 1},
	})
	require.NoError(t, err)

	got, err := r.ShouldOverride("capture", &report.ApproximateTotals{Captured: 1})
	require.NoError(t, err)
	assert.Equal(t, "early", got.RuleID)
}

func TestReconciler_EvaluationErrors(t *testing.T) {
	r, err := NewReconciler([]Rule{{ID: "missing_param_rule", Operation: "capture", Expression: "undefinedParam > 10"}})
	require.NoError(t, err)
	_, err = r.ShouldOverride("capture", &report.ApproximateTotals{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No parameter 'undefinedParam' found.")

	r, err = NewReconciler([]Rule{{ID: "numeric_rule", Operation: "capture", Expression: "totalCaptured + 1"}})
	require.NoError(t, err)
	_, err = r.ShouldOverride("capture", &report.ApproximateTotals{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not evaluate to a boolean")
}
