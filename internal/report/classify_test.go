package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func attempt(state AuthorizationState, captures ...CaptureState) Attempt {
	a := Attempt{ID: "500", PaymentMethod: "ELV", Authorization: Authorization{Status: state}}
	for _, c := range captures {
		a.Authorization.Captures = append(a.Authorization.Captures, Capture{Status: c})
	}
	return a
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		attempt Attempt
		want    Classification
	}{
		{
			name:    "authorized without capture is capturable",
			attempt: attempt(StateAuthorized),
			want:    Classification{Authorized: true, Capturable: true},
		},
		{
			name:    "captured in terminal state",
			attempt: attempt(StateAuthorized, CaptureCaptured),
			want: Classification{Authorized: true, Captured: true, HasCapture: true,
				FullyProcessed: true},
		},
		{
			name:    "terminal states compare case-insensitively",
			attempt: attempt(StateAuthorized, "paid", "Complete", "completed"),
			want: Classification{Authorized: true, Captured: true, HasCapture: true,
				FullyProcessed: true},
		},
		{
			name:    "unknown capture state stays capturable",
			attempt: attempt(StateAuthorized, "SETTLED_MAYBE"),
			want:    Classification{Authorized: true, Capturable: true, HasCapture: true},
		},
		{
			name:    "one non-terminal record keeps the attempt capturable",
			attempt: attempt(StateAuthorized, CapturePaid, CaptureNew),
			want:    Classification{Authorized: true, Capturable: true, HasCapture: true},
		},
		{
			name:    "bank transfer promise",
			attempt: attempt(StateAuthorized, CaptureStarted),
			want: Classification{Authorized: true, Capturable: true, HasCapture: true,
				PendingPromise: true},
		},
		{
			name:    "canceled",
			attempt: attempt(StateCanceled),
			want:    Classification{Cancelled: true},
		},
		{
			name:    "risk check ok is proceedable",
			attempt: attempt(StateRiskCheckOK),
			want:    Classification{Proceedable: true},
		},
		{
			name:    "redirected for authentication is proceedable",
			attempt: attempt(StateRedirectedForAuthentication),
			want:    Classification{Proceedable: true},
		},
		{
			name:    "proceedable state with a capture marker is not proceedable",
			attempt: attempt(StateAuthorizationRequested, CaptureNew),
			want:    Classification{HasCapture: true},
		},
		{
			name:    "unknown authorization state is not actionable",
			attempt: attempt("SOMETHING_NEW"),
			want:    Classification{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.attempt))
		})
	}
}

func TestClassify_CancellationMarkerOverridesAuthorized(t *testing.T) {
	a := attempt(StateAuthorized)
	a.Authorization.Cancellation = &Marker{Status: "CANCELED"}

	c := Classify(a)
	assert.True(t, c.Cancelled)
	assert.False(t, c.Authorized)
	assert.False(t, c.Capturable)
}

func TestClassify_RefundChargebackReversal(t *testing.T) {
	a := attempt(StateAuthorized)
	a.Authorization.Refunds = Markers{{Status: "REFUNDED"}}
	a.Authorization.Chargebacks = Markers{{}}
	a.Authorization.Reversals = Markers{{}}

	c := Classify(a)
	assert.True(t, c.HasRefund)
	assert.True(t, c.HasChargeback)
	assert.True(t, c.HasReversal)
	assert.True(t, c.FullyProcessed)
}

func TestStates_Known(t *testing.T) {
	assert.True(t, StateAuthorized.Known())
	assert.True(t, AuthorizationState("authorized").Known())
	assert.False(t, AuthorizationState("SOMETHING_NEW").Known())
	assert.False(t, CaptureState("SOMETHING_NEW").Terminal())
	assert.True(t, CaptureState(" started ").Started())
}
