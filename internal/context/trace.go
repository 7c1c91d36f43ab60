package context

import (
	stdcontext "context"

	"github.com/google/uuid"
)

// TraceContext carries the correlation ids of one caller request.
type TraceContext struct {
	TraceID string            // Globally unique ID for logs and spans
	SpanID  string            // Current span identifier
	Baggage map[string]string // Optional key-value flags (e.g., order key)

	stdCtx stdcontext.Context
}

// NewTraceContext creates a TraceContext bound to ctx with a fresh TraceID and SpanID.
func NewTraceContext(ctx stdcontext.Context) TraceContext {
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	return TraceContext{
		TraceID: uuid.NewString(),
		SpanID:  uuid.NewString(),
		Baggage: make(map[string]string),
		stdCtx:  ctx,
	}
}

// Context returns the standard context the trace was created with.
func (tc TraceContext) Context() stdcontext.Context {
	if tc.stdCtx == nil {
		return stdcontext.Background()
	}
	return tc.stdCtx
}

// WithContext returns a copy of tc bound to ctx. Used to carry an active span.
func (tc TraceContext) WithContext(ctx stdcontext.Context) TraceContext {
	tc.stdCtx = ctx
	return tc
}

// NewSpan generates a new SpanID for a child operation within the same trace.
func (tc *TraceContext) NewSpan() string {
	tc.SpanID = uuid.NewString()
	return tc.SpanID
}
