package soap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call results used as the result label.
const (
	resultOK          = "ok"
	resultTransport   = "transport_error"
	resultFault       = "fault"
	resultCircuitOpen = "circuit_open"
)

var (
	gatewayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdata_gateway_calls_total",
		Help: "Gateway calls by operation and result.",
	}, []string{"operation", "result"})

	gatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docdata_gateway_call_duration_seconds",
		Help:    "Duration of gateway calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// GetGatewayCallsTotal exposes the call counter.
func GetGatewayCallsTotal() *prometheus.CounterVec { return gatewayCallsTotal }

// GetGatewayCallDuration exposes the call duration histogram.
func GetGatewayCallDuration() *prometheus.HistogramVec { return gatewayCallDuration }
