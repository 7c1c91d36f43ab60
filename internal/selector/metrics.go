package selector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansBuiltTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdata_plans_built_total",
		Help: "Number of action plans built, by operation and decision.",
	}, []string{"operation", "decision"})

	planStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docdata_plan_steps_total",
		Help: "Number of action steps planned, by operation.",
	}, []string{"operation"})
)

// GetPlansBuiltTotal exposes the plans counter for tests and dashboards.
func GetPlansBuiltTotal() *prometheus.CounterVec { return plansBuiltTotal }

// GetPlanStepsTotal exposes the planned steps counter.
func GetPlanStepsTotal() *prometheus.CounterVec { return planStepsTotal }
