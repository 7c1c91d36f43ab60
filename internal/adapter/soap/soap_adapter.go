// Package soap implements the gateway adapter over SOAP 1.1.
package soap

import (
	"bytes"
	stdcontext "context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/circuitbreaker"
	"github.com/yourorg/docdata-orchestrator/internal/context"
)

const (
	LiveEndpoint   = "https://secure.docdatapayments.com/ps/services/paymentservice/1_3"
	TestEndpoint   = "https://testsecure.docdatapayments.com/ps/services/paymentservice/1_3"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Options configure a SOAPAdapter. Empty endpoints take the public ones.
type Options struct {
	LiveEndpoint string
	TestEndpoint string
	Timeout      time.Duration
	Breaker      *circuitbreaker.CircuitBreaker
	Logger       *zap.Logger
}

// SOAPAdapter implements adapter.GatewayAdapter. Each method issues exactly
// one HTTP POST; nothing is retried.
type SOAPAdapter struct {
	httpClient   *http.Client
	liveEndpoint string
	testEndpoint string
	timeout      time.Duration
	breaker      *circuitbreaker.CircuitBreaker
	logger       *zap.Logger
	tracer       trace.Tracer
}

// NewSOAPAdapter creates a new SOAPAdapter.
func NewSOAPAdapter(client *http.Client, opts Options) *SOAPAdapter {
	if client == nil {
		client = &http.Client{}
	}
	if opts.LiveEndpoint == "" {
		opts.LiveEndpoint = LiveEndpoint
	}
	if opts.TestEndpoint == "" {
		opts.TestEndpoint = TestEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Breaker == nil {
		opts.Breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &SOAPAdapter{
		httpClient:   client,
		liveEndpoint: opts.LiveEndpoint,
		testEndpoint: opts.TestEndpoint,
		timeout:      opts.Timeout,
		breaker:      opts.Breaker,
		logger:       opts.Logger,
		tracer:       otel.Tracer("soap"),
	}
}

// GetName returns the name of the transport.
func (s *SOAPAdapter) GetName() string {
	return "soap"
}

func (s *SOAPAdapter) endpoint(call context.CallContext) string {
	if call.TestMode {
		return s.testEndpoint
	}
	return s.liveEndpoint
}

func header(call context.CallContext) adapter.RequestHeader {
	return adapter.RequestHeader{
		Version: adapter.APIVersion,
		Merchant: adapter.Merchant{
			Name:     call.Credentials.MerchantName,
			Password: call.Credentials.Password,
		},
	}
}

func (s *SOAPAdapter) Create(ctx stdcontext.Context, call context.CallContext, req adapter.CreateRequest) (adapter.CreateResponse, error) {
	req.SetHeader(header(call))
	var resp adapter.CreateResponse
	err := s.invoke(ctx, call, adapter.OpCreate, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) Start(ctx stdcontext.Context, call context.CallContext, req adapter.StartRequest) (adapter.StartResponse, error) {
	req.SetHeader(header(call))
	var resp adapter.StartResponse
	err := s.invoke(ctx, call, adapter.OpStart, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) Status(ctx stdcontext.Context, call context.CallContext, req adapter.StatusRequest) (adapter.StatusResponse, error) {
	req.SetHeader(header(call))
	req.XMLName = xml.Name{Space: adapter.Namespace, Local: "statusRequest"}
	var resp adapter.StatusResponse
	err := s.invoke(ctx, call, adapter.OpStatus, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) StatusExtended(ctx stdcontext.Context, call context.CallContext, req adapter.StatusRequest) (adapter.StatusResponse, error) {
	req.SetHeader(header(call))
	req.XMLName = xml.Name{Space: adapter.Namespace, Local: "statusExtendedRequest"}
	var resp adapter.StatusResponse
	err := s.invoke(ctx, call, adapter.OpStatusExtended, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) Capture(ctx stdcontext.Context, call context.CallContext, req adapter.CaptureRequest) (adapter.CaptureResponse, error) {
	req.SetHeader(header(call))
	var resp adapter.CaptureResponse
	err := s.invoke(ctx, call, adapter.OpCapture, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) Proceed(ctx stdcontext.Context, call context.CallContext, req adapter.ProceedRequest) (adapter.ProceedResponse, error) {
	req.SetHeader(header(call))
	var resp adapter.ProceedResponse
	err := s.invoke(ctx, call, adapter.OpProceed, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) Refund(ctx stdcontext.Context, call context.CallContext, req adapter.RefundRequest) (adapter.RefundResponse, error) {
	req.SetHeader(header(call))
	var resp adapter.RefundResponse
	err := s.invoke(ctx, call, adapter.OpRefund, req, &resp)
	return resp, err
}

func (s *SOAPAdapter) Cancel(ctx stdcontext.Context, call context.CallContext, req adapter.CancelRequest) (adapter.CancelResponse, error) {
	req.SetHeader(header(call))
	var resp adapter.CancelResponse
	err := s.invoke(ctx, call, adapter.OpCancel, req, &resp)
	return resp, err
}

// invoke posts one envelope and decodes the body element into out.
func (s *SOAPAdapter) invoke(ctx stdcontext.Context, call context.CallContext, op string, req interface{}, out interface{}) (err error) {
	ctx, span := s.tracer.Start(ctx, "SOAPAdapter."+op)
	defer span.End()

	endpoint := s.endpoint(call)
	span.SetAttributes(
		attribute.String("gateway.operation", op),
		attribute.String("gateway.endpoint", endpoint),
		attribute.Bool("gateway.test_mode", call.TestMode),
	)
	log := s.logger.With(
		zap.String("operation", op),
		zap.String("trace_id", call.TraceID),
		zap.String("span_id", call.SpanID),
		zap.String("endpoint", endpoint),
	)

	start := time.Now()
	result := resultOK
	defer func() {
		gatewayCallsTotal.WithLabelValues(op, result).Inc()
		gatewayCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error("gateway call failed", zap.String("result", result), zap.Error(err))
		} else {
			log.Debug("gateway call completed", zap.Duration("duration", time.Since(start)))
		}
	}()

	if !s.breaker.AllowRequest(endpoint) {
		result = resultCircuitOpen
		return &adapter.TransportError{Operation: op, Err: adapter.ErrCircuitOpen}
	}

	body, err := s.roundTrip(ctx, call, endpoint, req)
	if err != nil {
		result = resultTransport
		s.breaker.RecordFailure(endpoint)
		return &adapter.TransportError{Operation: op, Err: err}
	}

	var env responseEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		result = resultTransport
		s.breaker.RecordFailure(endpoint)
		return &adapter.TransportError{Operation: op, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Body.Fault != nil {
		result = resultFault
		s.breaker.RecordFailure(endpoint)
		return &adapter.TransportError{Operation: op, Err: env.Body.Fault}
	}
	if err := xml.Unmarshal(env.Body.Content, out); err != nil {
		result = resultTransport
		s.breaker.RecordFailure(endpoint)
		return &adapter.TransportError{Operation: op, Err: fmt.Errorf("decode %s response: %w", op, err)}
	}

	s.breaker.RecordSuccess(endpoint)
	return nil
}

// errHTTPStatus reports a non-2xx answer that carried no SOAP envelope.
var errHTTPStatus = errors.New("unexpected HTTP status")

func (s *SOAPAdapter) roundTrip(ctx stdcontext.Context, call context.CallContext, endpoint string, req interface{}) ([]byte, error) {
	payload, err := encodeEnvelope(req)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	ctx, cancel := stdcontext.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", `""`)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http client error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	// Faults come back as 500 with an envelope, so only bodiless errors stop here.
	if resp.StatusCode >= http.StatusBadRequest && !bytes.Contains(body, []byte("Envelope")) {
		return nil, fmt.Errorf("%w %d", errHTTPStatus, resp.StatusCode)
	}
	return body, nil
}

var _ adapter.GatewayAdapter = (*SOAPAdapter)(nil)
