package orchestrator

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/report"
	"github.com/yourorg/docdata-orchestrator/internal/result"
	"github.com/yourorg/docdata-orchestrator/internal/selector"
	"github.com/yourorg/docdata-orchestrator/internal/status"
)

type CaptureInput struct {
	MerchantID string
	OrderKey   string
}

type ProceedInput struct {
	MerchantID string
	OrderKey   string
	// AuthorizationResultType names the method specific element, e.g.
	// iDealAuthorizationResult. Empty sends no authorization result.
	AuthorizationResultType string
	AuthorizationResult     map[string]string
}

type RefundInput struct {
	MerchantID string
	OrderKey   string
	Amount     int64 // minor units
	Currency   string
}

type StatusInput struct {
	MerchantID string
	OrderKey   string
	Extended   bool
}

// StatusResult is the answer to FetchStatus. Cancelled, Successful and
// Pending are priority resolved: at most one is set.
type StatusResult struct {
	Successful           bool                      `json:"successful"`
	Pending              bool                      `json:"pending"`
	Cancelled            bool                      `json:"cancelled"`
	Captured             bool                      `json:"captured"`
	HasChargeback        bool                      `json:"hasChargeback"`
	Outcome              status.Outcome            `json:"outcome"`
	TransactionReference string                    `json:"transactionReference"`
	Attempts             int                       `json:"attempts"`
	Totals               *report.ApproximateTotals `json:"approximateTotals,omitempty"`
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Capture collects the funds of the newest authorized, uncaptured attempt.
// An order with nothing left to capture reports success without a capture
// call. An order without an authorized attempt reports a failed result with
// code NO_PAYMENT_TO_CAPTURE; see ResultError.
func (o *Orchestrator) Capture(tc context.TraceContext, in CaptureInput) (result.OperationResult, error) {
	r, err := o.begin(tc, "Capture", adapter.OpCapture, in.MerchantID, in.OrderKey)
	defer r.end()
	if err == nil {
		err = required("orderKey", in.OrderKey)
	}
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	ref := result.Reference{OrderKey: in.OrderKey}
	snapshot, statusErrs, err := r.fetchStatus(false)
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	if statusErrs != nil {
		r.transition(ActionSkipped)
		return r.finish(result.StatusFailure(adapter.OpCapture, statusErrs, ref), outcomeSkipped, reasonStatusFailed), nil
	}
	totals := snapshot.Totals

	plan := o.selector.ForCapture(r.ctx, report.Normalize(snapshot))
	switch plan.Decision {
	case selector.NothingToDo:
		r.transition(ActionSkipped)
		res := result.FromCapture(result.CaptureAlreadyDone(), ref).WithTotals(totals)
		return r.finish(res, outcomeSkipped, reasonAlreadyDone), nil
	case selector.NoTarget:
		r.transition(ActionSkipped)
		res := result.FromCapture(result.CaptureNoValidPayments(), ref).WithTotals(totals)
		return r.finish(res, outcomeSkipped, reasonNoValidPayments), nil
	}

	target, _ := plan.Target()
	ref.PaymentID = target.AttemptID
	r.transition(ActionDispatched)
	resp, err := o.gateway.Capture(r.ctx, r.call(adapter.OpCapture), adapter.CaptureRequest{PaymentID: target.AttemptID})
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	reason := ""
	res := result.FromCapture(resp, ref)
	if !res.Successful {
		override, err := r.shouldOverride(adapter.OpCapture, totals)
		if err != nil {
			return result.OperationResult{}, r.fail(err)
		}
		if override {
			res = result.FromCapture(result.CaptureReconciled(resp), ref)
			reason = reasonReconciled
		}
	}
	return r.finish(res.WithTotals(totals), outcomeDispatched, reason), nil
}

// Proceed issues one proceed call per proceedable attempt, oldest first,
// and returns the result of the last call. Without a proceedable attempt a
// pending transfer promise is reported as authorized; otherwise the result
// fails with code NO_VALID_PAYMENTS.
func (o *Orchestrator) Proceed(tc context.TraceContext, in ProceedInput) (result.OperationResult, error) {
	r, err := o.begin(tc, "Proceed", adapter.OpProceed, in.MerchantID, in.OrderKey)
	defer r.end()
	if err == nil {
		err = required("orderKey", in.OrderKey)
	}
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	ref := result.Reference{OrderKey: in.OrderKey}
	snapshot, statusErrs, err := r.fetchStatus(false)
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	if statusErrs != nil {
		r.transition(ActionSkipped)
		return r.finish(result.StatusFailure(adapter.OpProceed, statusErrs, ref), outcomeSkipped, reasonStatusFailed), nil
	}
	totals := snapshot.Totals

	plan := o.selector.ForProceed(r.ctx, report.Normalize(snapshot))
	switch plan.Decision {
	case selector.PromiseToPay:
		r.transition(ActionSkipped)
		res := result.FromPromiseToPay(plan.PromiseAttemptID, ref).WithTotals(totals)
		return r.finish(res, outcomeSkipped, reasonPromiseToPay), nil
	case selector.NoTarget:
		r.transition(ActionSkipped)
		res := result.FromProceed(result.ProceedNoValidPayments(), ref).WithTotals(totals)
		return r.finish(res, outcomeSkipped, reasonNoValidPayments), nil
	}

	r.transition(ActionDispatched)
	input := adapter.MethodInput{Type: in.AuthorizationResultType, Fields: in.AuthorizationResult}
	var last result.OperationResult
	reason := ""
	for i, step := range plan.Steps {
		stepRef := result.Reference{OrderKey: in.OrderKey, PaymentID: step.AttemptID}
		resp, err := o.gateway.Proceed(r.ctx, r.call(adapter.OpProceed), adapter.ProceedRequest{
			PaymentID:           step.AttemptID,
			AuthorizationResult: input,
		})
		if err != nil {
			return result.OperationResult{}, r.fail(err)
		}

		reason = ""
		last = result.FromProceed(resp, stepRef)
		if !last.Successful && !last.Cancelled {
			override, err := r.shouldOverride(adapter.OpProceed, totals)
			if err != nil {
				return result.OperationResult{}, r.fail(err)
			}
			if override {
				last = result.FromProceed(result.ProceedReconciled(resp, step.AttemptID), stepRef)
				reason = reasonReconciled
			}
		}
		r.log.Debug("proceed dispatched",
			zap.Int("step", i+1),
			zap.Int("steps", len(plan.Steps)),
			zap.String("payment_id", step.AttemptID.String()),
			zap.Bool("successful", last.Successful),
		)
	}
	return r.finish(last.WithTotals(totals), outcomeDispatched, reason), nil
}

// Refund refunds amount on the authorized attempt of the order; with
// several, the newest. Without one it fails with ErrNoPaymentToRefund and
// makes no refund call.
func (o *Orchestrator) Refund(tc context.TraceContext, in RefundInput) (result.OperationResult, error) {
	r, err := o.begin(tc, "Refund", adapter.OpRefund, in.MerchantID, in.OrderKey)
	defer r.end()
	if err == nil {
		err = validateRefund(in)
	}
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}

	ref := result.Reference{OrderKey: in.OrderKey}
	snapshot, statusErrs, err := r.fetchStatus(false)
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	if statusErrs != nil {
		r.transition(ActionSkipped)
		res := r.finish(result.StatusFailure(adapter.OpRefund, statusErrs, ref), outcomeSkipped, reasonStatusFailed)
		return res, r.fail(res.Err())
	}
	totals := snapshot.Totals

	plan := o.selector.ForRefund(r.ctx, report.Normalize(snapshot))
	target, ok := plan.Target()
	if plan.Decision != selector.Dispatch || !ok {
		r.transition(ActionSkipped)
		res := r.finish(result.FromRefund(result.RefundNoAuthorizedPayment(), ref).WithTotals(totals), outcomeSkipped, reasonNoRefundTarget)
		return res, r.fail(ErrNoPaymentToRefund)
	}

	ref.PaymentID = target.AttemptID
	r.transition(ActionDispatched)
	resp, err := o.gateway.Refund(r.ctx, r.call(adapter.OpRefund), adapter.RefundRequest{
		PaymentID: target.AttemptID,
		Amount:    report.Amount{Value: in.Amount, Currency: in.Currency},
	})
	if err != nil {
		return result.OperationResult{}, r.fail(err)
	}
	return r.finish(result.FromRefund(resp, ref).WithTotals(totals), outcomeDispatched, ""), nil
}

func validateRefund(in RefundInput) error {
	if err := required("orderKey", in.OrderKey); err != nil {
		return err
	}
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !currencyPattern.MatchString(in.Currency) {
		return &ValidationError{Field: "currency", Reason: "must be a three letter ISO 4217 code"}
	}
	return nil
}

// FetchStatus reports the priority-resolved order status. A status call
// answered with an error is returned as a *result.GatewayError.
func (o *Orchestrator) FetchStatus(tc context.TraceContext, in StatusInput) (StatusResult, error) {
	op := adapter.OpStatus
	if in.Extended {
		op = adapter.OpStatusExtended
	}
	r, err := o.begin(tc, "FetchStatus", op, in.MerchantID, in.OrderKey)
	defer r.end()
	if err == nil {
		err = required("orderKey", in.OrderKey)
	}
	if err != nil {
		return StatusResult{}, r.fail(err)
	}

	snapshot, statusErrs, err := r.fetchStatus(in.Extended)
	if err != nil {
		return StatusResult{}, r.fail(err)
	}
	if statusErrs != nil {
		res := r.finish(result.FromStatusError(op, statusErrs, result.Reference{OrderKey: in.OrderKey}), outcomeDispatched, "")
		return StatusResult{}, r.fail(res.Err())
	}

	interp := o.interpreter.Interpret(snapshot)
	resolved := interp.Resolved()
	out := StatusResult{
		Successful:           resolved.Successful,
		Pending:              resolved.Pending,
		Cancelled:            resolved.Cancelled,
		Captured:             resolved.Captured,
		HasChargeback:        resolved.HasChargeback,
		Outcome:              interp.Outcome(),
		TransactionReference: in.OrderKey,
		Attempts:             len(report.Normalize(snapshot)),
	}
	if snapshot.Totals != nil {
		totals := *snapshot.Totals
		out.Totals = &totals
	}

	r.finish(result.OperationResult{
		Operation:            op,
		Successful:           true,
		Message:              string(out.Outcome),
		TransactionReference: in.OrderKey,
	}, outcomeDispatched, "")
	return out, nil
}

func (r *run) shouldOverride(op string, totals *report.ApproximateTotals) (bool, error) {
	decision, err := r.o.reconciler.ShouldOverride(op, totals)
	if err != nil {
		return false, err
	}
	if decision.Override {
		r.log.Info("gateway error reconciled with order totals", zap.String("rule_id", decision.RuleID))
	}
	return decision.Override, nil
}
