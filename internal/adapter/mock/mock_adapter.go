package mock

import (
	stdcontext "context"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/report"
)

// Call is one recorded gateway call.
type Call struct {
	Operation string
	OrderKey  string
	PaymentID report.PaymentID
}

// MockAdapter is an in-memory GatewayAdapter for tests and local runs. Each
// RPC calls its Func hook when set and otherwise answers with a success
// built from Report.
type MockAdapter struct {
	Name string

	// Report is returned by default status calls.
	Report report.Report

	CreateFunc         func(call context.CallContext, req adapter.CreateRequest) (adapter.CreateResponse, error)
	StartFunc          func(call context.CallContext, req adapter.StartRequest) (adapter.StartResponse, error)
	StatusFunc         func(call context.CallContext, req adapter.StatusRequest) (adapter.StatusResponse, error)
	StatusExtendedFunc func(call context.CallContext, req adapter.StatusRequest) (adapter.StatusResponse, error)
	CaptureFunc        func(call context.CallContext, req adapter.CaptureRequest) (adapter.CaptureResponse, error)
	ProceedFunc        func(call context.CallContext, req adapter.ProceedRequest) (adapter.ProceedResponse, error)
	RefundFunc         func(call context.CallContext, req adapter.RefundRequest) (adapter.RefundResponse, error)
	CancelFunc         func(call context.CallContext, req adapter.CancelRequest) (adapter.CancelResponse, error)

	mu    sync.Mutex
	calls []Call
}

// NewMockAdapter creates a new MockAdapter.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{Name: name}
}

// GetName implements the GatewayAdapter interface.
func (m *MockAdapter) GetName() string {
	return m.Name
}

// Calls returns a copy of the call log, oldest first.
func (m *MockAdapter) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the recorded calls of one operation.
func (m *MockAdapter) CallsFor(operation string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Operation == operation {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the call log.
func (m *MockAdapter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MockAdapter) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func success() adapter.Success {
	return adapter.Success{Code: adapter.CodeSuccess, Message: "Operation successful."}
}

func (m *MockAdapter) Create(_ stdcontext.Context, call context.CallContext, req adapter.CreateRequest) (adapter.CreateResponse, error) {
	m.record(Call{Operation: adapter.OpCreate})
	if m.CreateFunc != nil {
		return m.CreateFunc(call, req)
	}
	return adapter.CreateResponse{
		CreateSuccess: &adapter.CreateSuccess{Success: success(), Key: uuid.NewString()},
	}, nil
}

func (m *MockAdapter) Start(_ stdcontext.Context, call context.CallContext, req adapter.StartRequest) (adapter.StartResponse, error) {
	m.record(Call{Operation: adapter.OpStart, OrderKey: req.PaymentOrderKey})
	if m.StartFunc != nil {
		return m.StartFunc(call, req)
	}
	return adapter.StartResponse{
		StartSuccess: &adapter.StartSuccess{
			Success: success(),
			PaymentResponse: adapter.PaymentResponse{
				PaymentSuccess: &adapter.PaymentSuccess{Status: string(report.StateStarted), ID: report.PaymentID(uuid.NewString())},
			},
		},
	}, nil
}

func (m *MockAdapter) Status(_ stdcontext.Context, call context.CallContext, req adapter.StatusRequest) (adapter.StatusResponse, error) {
	m.record(Call{Operation: adapter.OpStatus, OrderKey: req.PaymentOrderKey})
	if m.StatusFunc != nil {
		return m.StatusFunc(call, req)
	}
	return m.defaultStatus(), nil
}

func (m *MockAdapter) StatusExtended(_ stdcontext.Context, call context.CallContext, req adapter.StatusRequest) (adapter.StatusResponse, error) {
	m.record(Call{Operation: adapter.OpStatusExtended, OrderKey: req.PaymentOrderKey})
	if m.StatusExtendedFunc != nil {
		return m.StatusExtendedFunc(call, req)
	}
	return m.defaultStatus(), nil
}

func (m *MockAdapter) defaultStatus() adapter.StatusResponse {
	return adapter.StatusResponse{
		StatusSuccess: &adapter.StatusSuccess{Success: success(), Report: m.Report},
	}
}

func (m *MockAdapter) Capture(_ stdcontext.Context, call context.CallContext, req adapter.CaptureRequest) (adapter.CaptureResponse, error) {
	m.record(Call{Operation: adapter.OpCapture, PaymentID: req.PaymentID})
	if m.CaptureFunc != nil {
		return m.CaptureFunc(call, req)
	}
	return adapter.CaptureResponse{CaptureSuccess: &adapter.Outcome{Success: success()}}, nil
}

func (m *MockAdapter) Proceed(_ stdcontext.Context, call context.CallContext, req adapter.ProceedRequest) (adapter.ProceedResponse, error) {
	m.record(Call{Operation: adapter.OpProceed, PaymentID: req.PaymentID})
	if m.ProceedFunc != nil {
		return m.ProceedFunc(call, req)
	}
	return adapter.ProceedResponse{
		ProceedSuccess: &adapter.ProceedSuccess{
			Success: success(),
			PaymentResponse: adapter.PaymentResponse{
				PaymentSuccess: &adapter.PaymentSuccess{Status: string(report.StateAuthorized), ID: req.PaymentID},
			},
		},
	}, nil
}

func (m *MockAdapter) Refund(_ stdcontext.Context, call context.CallContext, req adapter.RefundRequest) (adapter.RefundResponse, error) {
	m.record(Call{Operation: adapter.OpRefund, PaymentID: req.PaymentID})
	if m.RefundFunc != nil {
		return m.RefundFunc(call, req)
	}
	return adapter.RefundResponse{RefundSuccess: &adapter.Outcome{Success: success()}}, nil
}

func (m *MockAdapter) Cancel(_ stdcontext.Context, call context.CallContext, req adapter.CancelRequest) (adapter.CancelResponse, error) {
	m.record(Call{Operation: adapter.OpCancel, OrderKey: req.PaymentOrderKey})
	if m.CancelFunc != nil {
		return m.CancelFunc(call, req)
	}
	return adapter.CancelResponse{CancelSuccess: &adapter.Outcome{Success: success()}}, nil
}

var _ adapter.GatewayAdapter = (*MockAdapter)(nil)
