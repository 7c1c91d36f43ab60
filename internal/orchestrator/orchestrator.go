// Package orchestrator drives checkout operations against the gateway.
//
// Capture, Proceed and Refund share one sequence: fetch the order status,
// select the attempts to act on, dispatch the action calls the selection
// warrants (or none), then build the final result. Nothing is retried and
// nothing is cached between runs; every run starts from a fresh status call.
package orchestrator

import (
	stdcontext "context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/journal"
	"github.com/yourorg/docdata-orchestrator/internal/policy"
	"github.com/yourorg/docdata-orchestrator/internal/report"
	"github.com/yourorg/docdata-orchestrator/internal/result"
	"github.com/yourorg/docdata-orchestrator/internal/selector"
	"github.com/yourorg/docdata-orchestrator/internal/status"
)

// State is a step of one operation run.
type State string

const (
	AwaitingStatus   State = "AwaitingStatus"
	StatusReceived   State = "StatusReceived"
	ActionSkipped    State = "ActionSkipped"
	ActionDispatched State = "ActionDispatched"
	ResultReady      State = "ResultReady"
)

// Options carries the optional collaborators of an Orchestrator.
type Options struct {
	Journal     journal.Recorder
	Logger      *zap.Logger
	Interpreter *status.Interpreter
}

// Orchestrator runs checkout operations for configured merchants.
type Orchestrator struct {
	gateway     adapter.GatewayAdapter
	selector    *selector.Selector
	reconciler  *policy.Reconciler
	contexts    *context.ContextBuilder
	journal     journal.Recorder
	interpreter *status.Interpreter
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	gw adapter.GatewayAdapter,
	sel *selector.Selector,
	rec *policy.Reconciler,
	mcr context.MerchantConfigRepository,
	opts Options,
) *Orchestrator {
	if gw == nil {
		panic("GatewayAdapter cannot be nil")
	}
	if sel == nil {
		panic("Selector cannot be nil")
	}
	if rec == nil {
		panic("Reconciler cannot be nil")
	}
	if mcr == nil {
		panic("MerchantConfigRepository cannot be nil")
	}
	o := &Orchestrator{
		gateway:     gw,
		selector:    sel,
		reconciler:  rec,
		contexts:    context.NewContextBuilder(mcr),
		journal:     opts.Journal,
		interpreter: opts.Interpreter,
		logger:      opts.Logger,
		tracer:      otel.Tracer("orchestrator"),
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.interpreter == nil {
		o.interpreter = status.NewInterpreter([]string{"BANK_TRANSFER"}, false)
	}
	return o
}

// run is the state of one operation invocation.
type run struct {
	o        *Orchestrator
	op       string
	orderKey string
	tc       context.TraceContext
	dc       context.DomainContext
	ctx      stdcontext.Context
	span     trace.Span
	log      *zap.Logger
	state    State
}

// begin opens the span of an operation and resolves the merchant. The
// caller must call end.
func (o *Orchestrator) begin(tc context.TraceContext, spanName, op, merchantID, orderKey string) (*run, error) {
	ctx, span := o.tracer.Start(tc.Context(), "Orchestrator."+spanName)
	span.SetAttributes(
		attribute.String("operation", op),
		attribute.String("order_key", orderKey),
		attribute.String("merchant_id", merchantID),
	)
	r := &run{
		o:        o,
		op:       op,
		orderKey: orderKey,
		tc:       tc.WithContext(ctx),
		ctx:      ctx,
		span:     span,
		log: o.logger.With(
			zap.String("operation", op),
			zap.String("order_key", orderKey),
			zap.String("trace_id", tc.TraceID),
		),
	}

	if err := required("merchantId", merchantID); err != nil {
		return r, err
	}
	dc, err := o.contexts.Domain(merchantID)
	if err != nil {
		return r, err
	}
	r.dc = dc
	return r, nil
}

func (r *run) end() { r.span.End() }

func (r *run) transition(s State) {
	r.state = s
	r.span.AddEvent(string(s))
	r.log.Debug("state transition", zap.String("state", string(s)))
}

func (r *run) call(op string) context.CallContext {
	return context.DeriveCallContext(r.tc, r.dc, op)
}

// fetchStatus issues the status call. A gateway error answer is returned as
// errs; transport failures as err.
func (r *run) fetchStatus(extended bool) (rep *report.Report, errs *adapter.Errors, err error) {
	r.transition(AwaitingStatus)
	req := adapter.StatusRequest{PaymentOrderKey: r.orderKey}
	var resp adapter.StatusResponse
	if extended {
		resp, err = r.o.gateway.StatusExtended(r.ctx, r.call(adapter.OpStatusExtended), req)
	} else {
		resp, err = r.o.gateway.Status(r.ctx, r.call(adapter.OpStatus), req)
	}
	if err != nil {
		return nil, nil, err
	}
	r.transition(StatusReceived)
	if resp.StatusSuccess == nil {
		if resp.StatusErrors == nil {
			return nil, &adapter.Errors{}, nil
		}
		return nil, resp.StatusErrors, nil
	}
	snapshot := resp.StatusSuccess.Report
	return &snapshot, nil, nil
}

// finish records the final result. reason is empty unless the result was
// built locally.
func (r *run) finish(res result.OperationResult, outcome, reason string) result.OperationResult {
	r.transition(ResultReady)
	operationsTotal.WithLabelValues(r.op, outcome, strconv.FormatBool(res.Successful)).Inc()
	if reason != "" {
		synthesizedResultsTotal.WithLabelValues(r.op, reason).Inc()
	}
	r.span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("successful", res.Successful),
		attribute.String("code", res.Code),
	)
	r.record(journal.Entry{
		Operation:   r.op,
		Successful:  res.Successful,
		Code:        res.Code,
		Message:     res.Message,
		Synthesized: reason != "",
	})
	r.log.Info("operation completed",
		zap.String("outcome", outcome),
		zap.Bool("successful", res.Successful),
		zap.String("code", res.Code),
		zap.String("reason", reason),
	)
	return res
}

// record appends to the journal. Journal failures never fail the operation.
func (r *run) record(e journal.Entry) {
	if r.o.journal == nil {
		return
	}
	e.MerchantID = r.dc.MerchantID
	e.OrderKey = r.orderKey
	e.TraceID = r.tc.TraceID
	e.Timestamp = time.Now().UTC()
	if err := r.o.journal.Record(r.ctx, e); err != nil {
		r.log.Warn("failed to record journal entry", zap.Error(err))
	}
}

// fail ends a run with a Go error.
func (r *run) fail(err error) error {
	r.span.RecordError(err)
	r.span.SetStatus(codes.Error, err.Error())
	if r.state != ResultReady {
		operationsTotal.WithLabelValues(r.op, outcomeError, "false").Inc()
	}
	switch {
	case adapter.IsTransportError(err):
		r.log.Error("gateway transport failure", zap.String("state", string(r.state)), zap.Error(err))
	case errors.Is(err, ErrValidation):
		r.log.Info("rejected invalid input", zap.Error(err))
	default:
		r.log.Warn("operation failed", zap.String("state", string(r.state)), zap.Error(err))
	}
	return err
}
