package result

import (
	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// Codes and messages of locally synthesized outcomes.
const (
	CodeNoPaymentToCapture = "NO_PAYMENT_TO_CAPTURE"
	CodeNoValidPayments    = "NO_VALID_PAYMENTS"
	CodeNoPaymentToRefund  = "NO_PAYMENT_TO_REFUND"

	MsgCapturesAlreadyDone      = "all captures already done"
	MsgCaptureNoValidPayments   = "no capture executed, no valid payments"
	MsgProceedNoValidPayments   = "no proceed executed, no valid payments"
	MsgPromiseToPay             = "payment promised, awaiting transfer"
	MsgRefundNoAuthorized       = "no refund executed, no authorized payment"
	msgSynthesizedProceedFromOK = "proceed not required, order fully approved"
)

func synthesizedSuccess(message string) adapter.Success {
	return adapter.Success{Code: adapter.CodeSuccess, Message: message}
}

func synthesizedErrors(code, message string) *adapter.Errors {
	return &adapter.Errors{Errors: []adapter.Error{{Code: code, Message: message}}}
}

// CaptureAlreadyDone is the capture response for an order whose attempts
// are all captured.
func CaptureAlreadyDone() adapter.CaptureResponse {
	return adapter.CaptureResponse{
		CaptureSuccess: &adapter.Outcome{Success: synthesizedSuccess(MsgCapturesAlreadyDone)},
	}
}

// CaptureNoValidPayments is the capture response for an order without an
// authorized attempt.
func CaptureNoValidPayments() adapter.CaptureResponse {
	return adapter.CaptureResponse{
		CaptureErrors: synthesizedErrors(CodeNoPaymentToCapture, MsgCaptureNoValidPayments),
	}
}

// CaptureReconciled turns a failed capture, from either response branch,
// into a success that keeps the gateway's message text. Used when the order
// totals show the order fully captured.
func CaptureReconciled(failed adapter.CaptureResponse) adapter.CaptureResponse {
	message := failed.CaptureErrors.First().Message
	if message == "" && failed.CaptureSuccess != nil {
		message = failed.CaptureSuccess.Success.Message
	}
	return adapter.CaptureResponse{
		CaptureSuccess: &adapter.Outcome{Success: synthesizedSuccess(message)},
	}
}

// ProceedPromiseToPay is the proceed response for an order where nothing is
// proceedable but the shopper committed to a transfer on attemptID.
func ProceedPromiseToPay(attemptID report.PaymentID) adapter.ProceedResponse {
	return authorizedProceed(MsgPromiseToPay, attemptID)
}

// FromPromiseToPay is the result for ProceedPromiseToPay. Unlike other
// proceed results its transaction reference is the promised attempt's id.
func FromPromiseToPay(attemptID report.PaymentID, ref Reference) OperationResult {
	ref.PaymentID = attemptID
	r := FromProceed(ProceedPromiseToPay(attemptID), ref)
	r.TransactionReference = attemptID.String()
	return r
}

// ProceedReconciled turns a failed proceed into an authorized success
// for attemptID. Used when the order totals show full acquirer approval.
func ProceedReconciled(failed adapter.ProceedResponse, attemptID report.PaymentID) adapter.ProceedResponse {
	message := failed.ProceedErrors.First().Message
	if message == "" && failed.ProceedSuccess != nil {
		message = failed.ProceedSuccess.Success.Message
	}
	if message == "" {
		message = msgSynthesizedProceedFromOK
	}
	return authorizedProceed(message, attemptID)
}

// ProceedNoValidPayments is the proceed response for an order with nothing
// to proceed and no pending promise.
func ProceedNoValidPayments() adapter.ProceedResponse {
	return adapter.ProceedResponse{
		ProceedErrors: synthesizedErrors(CodeNoValidPayments, MsgProceedNoValidPayments),
	}
}

func authorizedProceed(message string, attemptID report.PaymentID) adapter.ProceedResponse {
	return adapter.ProceedResponse{
		ProceedSuccess: &adapter.ProceedSuccess{
			Success: synthesizedSuccess(message),
			PaymentResponse: adapter.PaymentResponse{
				PaymentSuccess: &adapter.PaymentSuccess{
					Status: string(report.StateAuthorized),
					ID:     attemptID,
				},
			},
		},
	}
}

// StatusFailure is the result of op when the status call preceding it was
// answered with an error. The status error's code and message are kept.
func StatusFailure(op string, errs *adapter.Errors, ref Reference) OperationResult {
	switch op {
	case adapter.OpCapture:
		return FromCapture(adapter.CaptureResponse{CaptureErrors: errs}, ref)
	case adapter.OpProceed:
		return FromProceed(adapter.ProceedResponse{ProceedErrors: errs}, ref)
	case adapter.OpRefund:
		return FromRefund(adapter.RefundResponse{RefundErrors: errs}, ref)
	default:
		return FromStatusError(op, errs, ref)
	}
}

// RefundNoAuthorizedPayment is the refund response recorded when no attempt
// of the order is authorized. No refund call is made in that case.
func RefundNoAuthorizedPayment() adapter.RefundResponse {
	return adapter.RefundResponse{
		RefundErrors: synthesizedErrors(CodeNoPaymentToRefund, MsgRefundNoAuthorized),
	}
}
