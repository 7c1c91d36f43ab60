// Package result maps gateway responses onto OperationResult and builds the
// locally synthesized responses used when no remote call was warranted or
// when a gateway error has to be reconciled.
//
// Synthesized outcomes are built as gateway wire responses and go through
// the same mappers as real ones, so a caller cannot tell them apart except
// by code and message.
package result

import (
	"fmt"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// OperationResult is the outcome of one checkout operation.
type OperationResult struct {
	Operation            string                    `json:"operation"`
	Successful           bool                      `json:"successful"`
	Cancelled            bool                      `json:"cancelled"`
	Code                 string                    `json:"code,omitempty"`
	Message              string                    `json:"message,omitempty"`
	TransactionReference string                    `json:"transactionReference,omitempty"`
	PaymentID            report.PaymentID          `json:"paymentId,omitempty"`
	PaymentStatus        string                    `json:"paymentStatus,omitempty"`
	RedirectURL          string                    `json:"redirectUrl,omitempty"`
	Totals               *report.ApproximateTotals `json:"approximateTotals,omitempty"`
}

// GatewayError is a failed OperationResult seen as a Go error.
type GatewayError struct {
	Operation string
	Code      string
	Message   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %s: %s", e.Operation, e.Code, e.Message)
}

// Err returns nil for a successful result and a *GatewayError otherwise.
func (r OperationResult) Err() error {
	if r.Successful {
		return nil
	}
	return &GatewayError{Operation: r.Operation, Code: r.Code, Message: r.Message}
}

// WithTotals returns a copy of r carrying the order totals of a status call.
func (r OperationResult) WithTotals(t *report.ApproximateTotals) OperationResult {
	if t != nil {
		copied := *t
		r.Totals = &copied
	}
	return r
}

// Reference identifies what an operation acted on.
type Reference struct {
	OrderKey  string
	PaymentID report.PaymentID
}

func outcome(op string, ref Reference, success *adapter.Success, errs *adapter.Errors) OperationResult {
	r := OperationResult{
		Operation:            op,
		TransactionReference: ref.OrderKey,
		PaymentID:            ref.PaymentID,
	}
	if success != nil {
		r.Successful = success.OK()
		r.Code = success.Code
		r.Message = success.Message
		return r
	}
	first := errs.First()
	r.Code = first.Code
	r.Message = first.Message
	return r
}

func successOf(o *adapter.Outcome) *adapter.Success {
	if o == nil {
		return nil
	}
	return &o.Success
}

// FromCapture maps a capture response.
func FromCapture(resp adapter.CaptureResponse, ref Reference) OperationResult {
	return outcome(adapter.OpCapture, ref, successOf(resp.CaptureSuccess), resp.CaptureErrors)
}

// FromRefund maps a refund response.
func FromRefund(resp adapter.RefundResponse, ref Reference) OperationResult {
	return outcome(adapter.OpRefund, ref, successOf(resp.RefundSuccess), resp.RefundErrors)
}

// FromCancel maps a cancel response.
func FromCancel(resp adapter.CancelResponse, ref Reference) OperationResult {
	r := outcome(adapter.OpCancel, ref, successOf(resp.CancelSuccess), resp.CancelErrors)
	r.Cancelled = r.Successful
	return r
}

// FromProceed maps a proceed response. The call counts as successful only
// when the embedded payment outcome is AUTHORIZED, and as cancelled when it
// is CANCELED. The transaction reference stays the order key, so it can be
// passed on to capture or status; the reported id is in PaymentID.
func FromProceed(resp adapter.ProceedResponse, ref Reference) OperationResult {
	if resp.ProceedSuccess == nil {
		return outcome(adapter.OpProceed, ref, nil, resp.ProceedErrors)
	}
	success := resp.ProceedSuccess.Success
	r := outcome(adapter.OpProceed, ref, &success, nil)
	if ps := resp.ProceedSuccess.PaymentResponse.PaymentSuccess; ps != nil {
		status := report.AuthorizationState(ps.Status)
		r.PaymentStatus = ps.Status
		r.Cancelled = success.OK() && status.Is(report.StateCanceled)
		r.Successful = success.OK() && status.Is(report.StateAuthorized)
		if ps.ID != "" {
			r.PaymentID = ps.ID
		}
	} else {
		r.Successful = false
	}
	if pe := resp.ProceedSuccess.PaymentResponse.PaymentError; pe != nil && !r.Successful {
		r.Code, r.Message = pe.Code, pe.Message
	}
	return r
}

// FromCreate maps a create response. The issued key becomes the transaction reference.
func FromCreate(resp adapter.CreateResponse, ref Reference) OperationResult {
	if resp.CreateSuccess == nil {
		return outcome(adapter.OpCreate, ref, nil, resp.CreateErrors)
	}
	success := resp.CreateSuccess.Success
	ref.OrderKey = resp.CreateSuccess.Key
	return outcome(adapter.OpCreate, ref, &success, nil)
}

// FromStart maps a start response, attaching the redirect when one is given.
func FromStart(resp adapter.StartResponse, ref Reference) OperationResult {
	if resp.StartSuccess == nil {
		return outcome(adapter.OpStart, ref, nil, resp.StartErrors)
	}
	success := resp.StartSuccess.Success
	r := outcome(adapter.OpStart, ref, &success, nil)
	pr := resp.StartSuccess.PaymentResponse
	if pr.PaymentSuccess != nil {
		r.PaymentID = pr.PaymentSuccess.ID
		r.PaymentStatus = pr.PaymentSuccess.Status
	}
	if pr.PaymentRedirect != nil {
		r.RedirectURL = pr.PaymentRedirect.URL
	}
	if pr.PaymentError != nil {
		r.Successful = false
		r.Code, r.Message = pr.PaymentError.Code, pr.PaymentError.Message
	}
	return r
}

// FromStatusError maps the error branch of a status response.
func FromStatusError(op string, errs *adapter.Errors, ref Reference) OperationResult {
	return outcome(op, ref, nil, errs)
}
