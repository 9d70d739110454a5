package algebra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rewritesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "algebra_rewrites_applied",
	Help: "Number of rewrite rules applied by the simplifier",
}, []string{"op"})

var groupsReordered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "algebra_groups_reordered",
	Help: "Number of sum or product chains moved into canonical order",
})

var stepLimitReached = promauto.NewCounter(prometheus.CounterOpts{
	Name: "algebra_step_limit_reached",
	Help: "Number of simplifier steps cut short by the step limit",
})

var stepsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "algebra_steps_completed",
	Help: "Number of simplifier steps by outcome",
}, []string{"status"})
