package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels.
var (
	// stateEntriesTotal counts first dispatches of a state.
	stateEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_state_entries_total",
		Help: "Total number of times a state was entered, by machine and state",
	}, []string{"machine", "state"})

	// stateExpirationsTotal counts timed states that ran out their duration.
	stateExpirationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_state_expirations_total",
		Help: "Total number of timed state expirations, by machine and state",
	}, []string{"machine", "state"})

	// runsStartedTotal counts runs begun by an engage.
	runsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_runs_started_total",
		Help: "Total number of state machine runs started, by machine",
	}, []string{"machine"})

	// runsStoppedTotal counts runs ended by Done.
	runsStoppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_runs_stopped_total",
		Help: "Total number of state machine runs stopped, by machine",
	}, []string{"machine"})

	// stateErrorsTotal counts state bodies and transitions that returned an error.
	stateErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statemachine_state_errors_total",
		Help: "Total number of errors returned while executing a state, by machine and state",
	}, []string{"machine", "state"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
