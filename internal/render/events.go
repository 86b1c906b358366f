package render

// Event is one frame-level occurrence worth tracing: an acquire status other
// than ready, a skipped frame, a rebuild or a job submission.
type Event struct {
	Tick   uint64 `json:"tick"`
	Kind   string `json:"kind"`
	Image  int    `json:"image"`
	Detail string `json:"detail,omitempty"`
}

// EventSink receives frame events on the render thread.
type EventSink interface {
	Record(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Record(ev Event) { f(ev) }

type nopSink struct{}

func (nopSink) Record(Event) {}
