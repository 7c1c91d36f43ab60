package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	outcomeDispatched = "dispatched"
	outcomeSkipped    = "skipped"
	outcomeError      = "error"
)

// Synthesis reasons.
const (
	reasonAlreadyDone     = "already_done"
	reasonNoValidPayments = "no_valid_payments"
	reasonPromiseToPay    = "promise_to_pay"
	reasonReconciled      = "reconciled"
	reasonStatusFailed    = "status_failed"
	reasonNoRefundTarget  = "no_refund_target"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdata_operations_total",
		Help: "Checkout operations by outcome.",
	}, []string{"operation", "outcome", "successful"})

	synthesizedResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdata_synthesized_results_total",
		Help: "Results built locally instead of taken from an action call.",
	}, []string{"operation", "reason"})
)

func GetOperationsTotal() *prometheus.CounterVec { return operationsTotal }

func GetSynthesizedResultsTotal() *prometheus.CounterVec { return synthesizedResultsTotal }
