package robot

import (
	"github.com/tiendc/go-deepcopy"
)

// Status is a snapshot of the robot taken on every mode change.
type Status struct {
	Robot      string   `json:"robot"`
	Mode       Mode     `json:"mode"`
	Previous   Mode     `json:"previous"`
	Tick       uint64   `json:"tick"`
	Selected   string   `json:"selected,omitempty"`
	Active     string   `json:"active,omitempty"`
	Modes      []string `json:"modes"`
	Components []string `json:"components"`
}

// StatusSink receives status snapshots. Sinks are called one at a time, in
// the order snapshots were taken, off the control loop goroutine.
type StatusSink func(Status)

func (r *Robot) publish(status Status) {
	for _, sink := range r.sinks {
		var snapshot Status

		// Each sink gets its own copy so it can keep or modify the slices.
		if err := deepcopy.Copy(&snapshot, status); err != nil {
			r.logger.Error("Failed to copy robot status", "robot", r.name, "error", err)

			continue
		}

		if err := r.pool.Go(func() { sink(snapshot) }); err != nil {
			r.logger.Warn("Dropped robot status", "robot", r.name, "mode", status.Mode, "error", err)
		}
	}
}

func (r *Robot) status(previous, mode Mode) Status {
	components := make([]string, 0, len(r.components))
	for _, c := range r.components {
		components = append(components, componentName(c))
	}

	return Status{
		Robot:      r.name,
		Mode:       mode,
		Previous:   previous,
		Tick:       r.tick.Load(),
		Selected:   r.selected.Load(),
		Active:     r.activeName,
		Modes:      r.AutonomousModes(),
		Components: components,
	}
}
