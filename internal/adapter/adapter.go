// Package adapter defines the interface to the payment gateway and the
// messages exchanged with it. Adapters own transport concerns only: envelope
// construction, encoding and fault mapping. They never retry and never
// interpret a response beyond decoding it.
package adapter

import (
	stdcontext "context"
	"errors"
	"fmt"

	"github.com/yourorg/docdata-orchestrator/internal/context"
)

// ErrCircuitOpen is returned when the transport refuses calls after repeated faults.
var ErrCircuitOpen = errors.New("gateway circuit is open")

// TransportError reports a call that produced no decodable gateway response:
// network failure, timeout, SOAP fault or an unreadable body.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway %s: transport failure: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// GatewayAdapter is the interface implemented by each gateway transport.
// Every method issues exactly one remote call. A gateway-reported error is
// a successfully decoded response, not a Go error.
type GatewayAdapter interface {
	Create(ctx stdcontext.Context, call context.CallContext, req CreateRequest) (CreateResponse, error)
	Start(ctx stdcontext.Context, call context.CallContext, req StartRequest) (StartResponse, error)
	Status(ctx stdcontext.Context, call context.CallContext, req StatusRequest) (StatusResponse, error)
	StatusExtended(ctx stdcontext.Context, call context.CallContext, req StatusRequest) (StatusResponse, error)
	Capture(ctx stdcontext.Context, call context.CallContext, req CaptureRequest) (CaptureResponse, error)
	Proceed(ctx stdcontext.Context, call context.CallContext, req ProceedRequest) (ProceedResponse, error)
	Refund(ctx stdcontext.Context, call context.CallContext, req RefundRequest) (RefundResponse, error)
	Cancel(ctx stdcontext.Context, call context.CallContext, req CancelRequest) (CancelResponse, error)

	// GetName returns the name of the transport (e.g., "soap", "mock").
	GetName() string
}

// Gateway operation names, used in logs, metrics and journal entries.
const (
	OpCreate         = "create"
	OpStart          = "start"
	OpStatus         = "status"
	OpStatusExtended = "statusExtended"
	OpCapture        = "capture"
	OpProceed        = "proceed"
	OpRefund         = "refund"
	OpCancel         = "cancel"
)
