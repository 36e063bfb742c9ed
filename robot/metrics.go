package robot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loopCycleSeconds observes how long each tick took to run.
	loopCycleSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "robot_loop_cycle_seconds",
		Help:    "Time spent running one control loop tick, by mode",
		Buckets: []float64{.001, .0025, .005, .01, .015, .02, .03, .05, .1},
	}, []string{"robot", "mode"})

	// loopOverrunsTotal counts ticks that took longer than the loop period.
	loopOverrunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robot_loop_overruns_total",
		Help: "Total number of control loop ticks that exceeded the loop period",
	}, []string{"robot"})

	// modeTransitionsTotal counts mode changes.
	modeTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robot_mode_transitions_total",
		Help: "Total number of robot mode transitions, by source and destination mode",
	}, []string{"robot", "from", "to"})

	// componentErrorsTotal counts errors returned by components and routines.
	componentErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "robot_component_errors_total",
		Help: "Total number of errors returned from a component or autonomous routine",
	}, []string{"robot", "component"})
)
