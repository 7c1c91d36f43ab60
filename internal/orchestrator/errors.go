package orchestrator

import (
	"errors"
	"fmt"

	"github.com/yourorg/docdata-orchestrator/internal/result"
)

// ErrValidation is wrapped by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrNoActionableTarget is wrapped by the errors reporting that no payment
// attempt qualifies for an operation.
var ErrNoActionableTarget = errors.New("no actionable payment")

var (
	ErrNoPaymentToCapture = fmt.Errorf("%w: no payment to capture", ErrNoActionableTarget)
	ErrNoPaymentToRefund  = fmt.Errorf("%w: no payment to refund", ErrNoActionableTarget)
	ErrNoValidPayments    = fmt.Errorf("%w: no valid payments", ErrNoActionableTarget)
)

// ValidationError reports local input rejected before any gateway call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// ResultError converts a failed result into an error. Results synthesized
// because no attempt qualified map onto the ErrNoActionableTarget family;
// other failures become a *result.GatewayError.
func ResultError(r result.OperationResult) error {
	if r.Successful {
		return nil
	}
	var sentinel error
	switch r.Code {
	case result.CodeNoPaymentToCapture:
		sentinel = ErrNoPaymentToCapture
	case result.CodeNoPaymentToRefund:
		sentinel = ErrNoPaymentToRefund
	case result.CodeNoValidPayments:
		sentinel = ErrNoValidPayments
	default:
		return r.Err()
	}
	return fmt.Errorf("%s: %w", r.Operation, sentinel)
}
