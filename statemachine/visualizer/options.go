package visualizer

// Options configures the visualization output.
type Options struct {
	// ShowDurations labels timed states and their transitions with durations
	ShowDurations bool

	// Direction controls diagram flow: "TB" (top-bottom) or "LR" (left-right)
	Direction string

	// HighlightPath highlights a specific state path through the diagram
	HighlightPath []string
}

// DefaultOptions draws top to bottom with duration labels.
func DefaultOptions() Options {
	return Options{
		ShowDurations: true,
		Direction:     "TB",
	}
}

// WithShowDurations enables/disables duration labels.
func (o Options) WithShowDurations(show bool) Options {
	o.ShowDurations = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path []string) Options {
	o.HighlightPath = path

	return o
}
