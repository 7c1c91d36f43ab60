package result

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/report"
)

func TestCaptureSynthesis(t *testing.T) {
	ref := Reference{OrderKey: "K1"}

	done := FromCapture(CaptureAlreadyDone(), ref)
	assert.True(t, done.Successful)
	assert.Equal(t, adapter.CodeSuccess, done.Code)
	assert.Equal(t, "all captures already done", done.Message)

	none := FromCapture(CaptureNoValidPayments(), ref)
	assert.False(t, none.Successful)
	assert.Equal(t, CodeNoPaymentToCapture, none.Code)
	assert.Equal(t, "no capture executed, no valid payments", none.Message)

	failed := adapter.CaptureResponse{CaptureErrors: gatewayErrors("REQUEST_DATA_INCORRECT", "No amount authorized available to capture.")}
	reconciled := FromCapture(CaptureReconciled(failed), ref)
	assert.True(t, reconciled.Successful)
	assert.Equal(t, "No amount authorized available to capture.", reconciled.Message)
}

func TestSynthesizedAndRealResultsHaveTheSameShape(t *testing.T) {
	fromGateway := FromCapture(adapter.CaptureResponse{
		CaptureSuccess: &adapter.Outcome{Success: adapter.Success{Code: "SUCCESS", Message: MsgCapturesAlreadyDone}},
	}, Reference{OrderKey: "K1"})
	synthesized := FromCapture(CaptureAlreadyDone(), Reference{OrderKey: "K1"})
	assert.Equal(t, fromGateway, synthesized)
}

func TestProceedSynthesis(t *testing.T) {
	ref := Reference{OrderKey: "K1"}

	promise := FromPromiseToPay("3058909232", ref)
	assert.True(t, promise.Successful)
	assert.False(t, promise.Cancelled)
	assert.Equal(t, "AUTHORIZED", promise.PaymentStatus)
	assert.Equal(t, "3058909232", promise.TransactionReference)
	assert.Equal(t, report.PaymentID("3058909232"), promise.PaymentID)

	failed := adapter.ProceedResponse{ProceedErrors: gatewayErrors("REQUEST_DATA_INCORRECT", "Payment id incorrect.")}
	reconciled := FromProceed(ProceedReconciled(failed, "3058909231"), ref)
	assert.True(t, reconciled.Successful)
	assert.Equal(t, "Payment id incorrect.", reconciled.Message)
	assert.Equal(t, report.PaymentID("3058909231"), reconciled.PaymentID)
	assert.Equal(t, "K1", reconciled.TransactionReference)

	none := FromProceed(ProceedNoValidPayments(), ref)
	assert.False(t, none.Successful)
	assert.Equal(t, CodeNoValidPayments, none.Code)
	assert.Equal(t, "K1", none.TransactionReference)
}

func TestStatusFailure(t *testing.T) {
	errs := gatewayErrors("REQUEST_DATA_INCORRECT", "Order could not be found with the given key.")
	ref := Reference{OrderKey: "K1"}

	for _, op := range []string{adapter.OpCapture, adapter.OpProceed, adapter.OpRefund, adapter.OpStatus} {
		r := StatusFailure(op, errs, ref)
		assert.Equal(t, op, r.Operation)
		assert.False(t, r.Successful)
		assert.Equal(t, "REQUEST_DATA_INCORRECT", r.Code)
		assert.Equal(t, "Order could not be found with the given key.", r.Message)
	}
}
