// Package policy holds the reconciliation rules that decide when a gateway
// error must be reported as success because the order totals already show
// the operation's effect.
package policy

import (
	"fmt"
	"sort"

	"github.com/Knetic/govaluate"

	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// Rule is one reconciliation rule. Expression is evaluated with the order
// totals as parameters: totalRegistered, totalShopperPending,
// totalAcquirerPending, totalAcquirerApproved, totalCaptured, totalRefunded,
// totalChargedback and totalReversed.
type Rule struct {
	ID         string
	Operation  string // gateway operation the rule applies to, e.g. "capture"
	Expression string
	Priority   int // lower runs first
}

// Decision is the outcome of evaluating the rules of one operation.
type Decision struct {
	Override bool
	RuleID   string // rule that matched, empty when none did
}

type compiledRule struct {
	Rule
	expr *govaluate.EvaluableExpression
}

// Reconciler evaluates compiled rules.
type Reconciler struct {
	rules []compiledRule
}

// DefaultRules are the settlement checks applied to capture and proceed.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:         "capture-fully-captured",
			Operation:  "capture",
			Expression: "totalRegistered > 0 && totalRegistered == totalCaptured",
			Priority:   1,
		},
		{
			ID:         "proceed-fully-approved",
			Operation:  "proceed",
			Expression: "totalRegistered > 0 && totalRegistered == totalAcquirerApproved",
			Priority:   1,
		},
	}
}

// NewReconciler compiles rules. An empty or invalid expression rejects the whole set.
func NewReconciler(rules []Rule) (*Reconciler, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Expression == "" {
			return nil, fmt.Errorf("policy rule ID '%s' has an empty expression", rule.ID)
		}
		expr, err := govaluate.NewEvaluableExpression(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule ID '%s': %w", rule.ID, err)
		}
		compiled = append(compiled, compiledRule{Rule: rule, expr: expr})
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority < compiled[j].Priority
	})
	return &Reconciler{rules: compiled}, nil
}

// Parameters exposes totals to rule expressions.
func Parameters(t *report.ApproximateTotals) map[string]interface{} {
	return map[string]interface{}{
		"totalRegistered":       float64(t.Registered),
		"totalShopperPending":   float64(t.ShopperPending),
		"totalAcquirerPending":  float64(t.AcquirerPending),
		"totalAcquirerApproved": float64(t.AcquirerApproved),
		"totalCaptured":         float64(t.Captured),
		"totalRefunded":         float64(t.Refunded),
		"totalChargedback":      float64(t.Chargedback),
		"totalReversed":         float64(t.Reversed),
	}
}

// ShouldOverride reports whether a failed op must be turned into success.
// Without totals nothing is overridden. The first matching rule wins.
func (r *Reconciler) ShouldOverride(op string, totals *report.ApproximateTotals) (Decision, error) {
	if totals == nil {
		return Decision{}, nil
	}
	params := Parameters(totals)
	for _, rule := range r.rules {
		if rule.Operation != op {
			continue
		}
		value, err := rule.expr.Evaluate(params)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to evaluate rule ID '%s': %w", rule.ID, err)
		}
		matched, ok := value.(bool)
		if !ok {
			return Decision{}, fmt.Errorf("rule ID '%s' did not evaluate to a boolean, got %T", rule.ID, value)
		}
		if matched {
			return Decision{Override: true, RuleID: rule.ID}, nil
		}
	}
	return Decision{}, nil
}
