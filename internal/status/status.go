// Package status derives the externally visible order status from a
// gateway payment report.
package status

import (
	"strings"

	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// Outcome is the single status an order resolves to.
type Outcome string

const (
	OutcomeCancelled  Outcome = "cancelled"
	OutcomeSuccessful Outcome = "successful"
	OutcomePending    Outcome = "pending"
)

// Interpretation holds the raw predicates. They are computed independently
// and may overlap; use Outcome or Resolved to apply priority.
type Interpretation struct {
	Successful    bool `json:"successful"`
	Pending       bool `json:"pending"`
	Cancelled     bool `json:"cancelled"`
	Captured      bool `json:"captured"`
	HasChargeback bool `json:"hasChargeback"`
}

// Outcome resolves the predicates: cancelled, then successful. Anything
// else is pending.
func (i Interpretation) Outcome() Outcome {
	switch {
	case i.Cancelled:
		return OutcomeCancelled
	case i.Successful:
		return OutcomeSuccessful
	default:
		return OutcomePending
	}
}

// Resolved returns a copy in which at most one of Cancelled, Successful and
// Pending is set, following Outcome.
func (i Interpretation) Resolved() Interpretation {
	out := i
	o := i.Outcome()
	out.Cancelled = o == OutcomeCancelled
	out.Successful = o == OutcomeSuccessful
	out.Pending = o == OutcomePending
	return out
}

// Interpreter answers status questions about a report.
type Interpreter struct {
	// PendingMethods are payment methods that authorize before money
	// arrives, such as bank transfer. Compared case-insensitively.
	PendingMethods []string
	// AcceptShopperPending counts a pending-class attempt as successful once
	// the shopper has committed funds (one page checkout).
	AcceptShopperPending bool
}

func NewInterpreter(pendingMethods []string, acceptShopperPending bool) *Interpreter {
	return &Interpreter{PendingMethods: pendingMethods, AcceptShopperPending: acceptShopperPending}
}

func (in *Interpreter) pendingClass(method string) bool {
	for _, m := range in.PendingMethods {
		if strings.EqualFold(strings.TrimSpace(m), strings.TrimSpace(method)) {
			return true
		}
	}
	return false
}

func (in *Interpreter) settled(t *report.ApproximateTotals) bool {
	if t.FullyCaptured() {
		return true
	}
	return in.AcceptShopperPending && t != nil && t.Registered > 0 && t.ShopperPending > 0
}

// Interpret looks at the most recent attempt of r and its order totals.
func (in *Interpreter) Interpret(r *report.Report) Interpretation {
	var totals *report.ApproximateTotals
	if r != nil {
		totals = r.Totals
	}
	attempts := report.Normalize(r)

	var out Interpretation
	out.Captured = totals.FullyCaptured()
	if totals != nil && totals.Chargedback > 0 {
		out.HasChargeback = true
	}
	for _, a := range attempts {
		if len(a.Authorization.Chargebacks) > 0 {
			out.HasChargeback = true
		}
	}

	last, ok := attempts.MostRecent()
	if !ok {
		out.Pending = true
		return out
	}

	c := report.Classify(last)
	out.Cancelled = c.Cancelled
	if c.Captured {
		out.Captured = true
	}

	authorized := last.Authorization.Status.Is(report.StateAuthorized)
	pendingClass := in.pendingClass(last.PaymentMethod)
	switch {
	case !authorized:
		out.Successful = false
	case pendingClass:
		out.Successful = in.settled(totals)
	default:
		out.Successful = true
	}

	// An attempt still on its way to authorization, in any state other than
	// canceled, is pending too.
	out.Pending = !c.Cancelled && (!authorized || (pendingClass && !totals.FullyCaptured()))
	return out
}
