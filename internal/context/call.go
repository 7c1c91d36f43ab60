package context

import (
	"time"
)

// Credentials identify the merchant in the gateway envelope.
type Credentials struct {
	MerchantName string
	Password     string
}

// String hides the password.
func (c Credentials) String() string {
	return c.MerchantName + ":***"
}

// CallContext is derived by the Orchestrator for each gateway call.
type CallContext struct {
	TraceID     string        // Taken directly from TraceContext
	SpanID      string        // Span ID for this call
	Operation   string        // Gateway RPC name, e.g. "capture"
	StartTime   time.Time     // When this call began
	Timeout     time.Duration // Zero means the adapter default
	TestMode    bool
	Credentials Credentials
}

// DeriveCallContext creates a CallContext for one gateway RPC.
func DeriveCallContext(tc TraceContext, dc DomainContext, operation string) CallContext {
	return CallContext{
		TraceID:     tc.TraceID,
		SpanID:      tc.NewSpan(),
		Operation:   operation,
		StartTime:   time.Now(),
		Timeout:     dc.ActiveMerchantConfig.Timeout,
		TestMode:    dc.ActiveMerchantConfig.TestMode,
		Credentials: dc.Credentials(),
	}
}
