// Package selector decides which payment attempts an operation acts on.
// It works on a normalized report only and never calls the gateway.
package selector

import (
	stdcontext "context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// Decision tells the orchestrator what to do with a plan.
type Decision string

const (
	// Dispatch means one action call per step.
	Dispatch Decision = "dispatch"
	// NothingToDo means the operation's effect is already in place.
	NothingToDo Decision = "nothing-to-do"
	// NoTarget means no attempt qualifies.
	NoTarget Decision = "no-target"
	// PromiseToPay means nothing is proceedable but a transfer was promised.
	PromiseToPay Decision = "promise-to-pay"
)

// Step is one attempt to act on.
type Step struct {
	AttemptID     report.PaymentID
	PaymentMethod string
	State         report.AuthorizationState
}

// Plan is the selection made for one operation.
type Plan struct {
	Operation        string
	Decision         Decision
	Steps            []Step
	PromiseAttemptID report.PaymentID
}

// Target returns the single step of a capture or refund plan.
func (p Plan) Target() (Step, bool) {
	if len(p.Steps) == 0 {
		return Step{}, false
	}
	return p.Steps[len(p.Steps)-1], true
}

// Selector builds plans. Its zero value is not usable, use NewSelector.
type Selector struct {
	tracer trace.Tracer
}

// NewSelector creates a Selector.
func NewSelector() *Selector {
	return &Selector{tracer: otel.Tracer("selector")}
}

func stepOf(a report.Attempt) Step {
	return Step{AttemptID: a.ID, PaymentMethod: a.PaymentMethod, State: a.Authorization.Status}
}

// ForCapture picks the newest attempt that is authorized and not captured.
// When every authorized attempt is captured there is nothing to do; when no
// attempt is authorized there is no target.
func (s *Selector) ForCapture(ctx stdcontext.Context, attempts report.Attempts) Plan {
	_, span := s.tracer.Start(ctx, "Selector.Capture")
	defer span.End()

	plan := Plan{Operation: adapter.OpCapture, Decision: NoTarget}
	anyAuthorized := false
	for _, a := range attempts.NewestFirst() {
		c := report.Classify(a)
		if c.Authorized {
			anyAuthorized = true
		}
		if c.Capturable {
			plan.Decision = Dispatch
			plan.Steps = []Step{stepOf(a)}
			break
		}
	}
	if plan.Decision != Dispatch && anyAuthorized {
		plan.Decision = NothingToDo
	}
	return s.finish(span, plan, len(attempts))
}

// ForProceed plans one proceed call per proceedable attempt, oldest first.
// Without any, the newest pending promise yields PromiseToPay.
func (s *Selector) ForProceed(ctx stdcontext.Context, attempts report.Attempts) Plan {
	_, span := s.tracer.Start(ctx, "Selector.Proceed")
	defer span.End()

	plan := Plan{Operation: adapter.OpProceed, Decision: NoTarget}
	for _, a := range attempts {
		c := report.Classify(a)
		if c.Proceedable {
			plan.Steps = append(plan.Steps, stepOf(a))
		}
		if c.PendingPromise {
			plan.PromiseAttemptID = a.ID
		}
	}
	switch {
	case len(plan.Steps) > 0:
		plan.Decision = Dispatch
	case plan.PromiseAttemptID != "":
		plan.Decision = PromiseToPay
	}
	return s.finish(span, plan, len(attempts))
}

// ForRefund picks the authorized attempt. With several, the newest wins.
func (s *Selector) ForRefund(ctx stdcontext.Context, attempts report.Attempts) Plan {
	_, span := s.tracer.Start(ctx, "Selector.Refund")
	defer span.End()

	plan := Plan{Operation: adapter.OpRefund, Decision: NoTarget}
	for _, a := range attempts.NewestFirst() {
		if report.Classify(a).Authorized {
			plan.Decision = Dispatch
			plan.Steps = []Step{stepOf(a)}
			break
		}
	}
	return s.finish(span, plan, len(attempts))
}

func (s *Selector) finish(span trace.Span, plan Plan, attempts int) Plan {
	span.SetAttributes(
		attribute.String("operation", plan.Operation),
		attribute.String("decision", string(plan.Decision)),
		attribute.Int("attempts", attempts),
		attribute.Int("steps", len(plan.Steps)),
	)
	plansBuiltTotal.WithLabelValues(plan.Operation, string(plan.Decision)).Inc()
	planStepsTotal.WithLabelValues(plan.Operation).Add(float64(len(plan.Steps)))
	return plan
}
