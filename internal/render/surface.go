package render

import (
	"fmt"
	"sync"
)

// SurfaceState tracks whether size-dependent resources must be rebuilt.
type SurfaceState int

const (
	// Valid: the chain matches the surface.
	Valid SurfaceState = iota
	// ResizePending: the window changed size; rebuild and move the viewport.
	ResizePending
	// DegradedPending: acquire or present reported the chain stale; rebuild.
	DegradedPending
)

func (s SurfaceState) String() string {
	switch s {
	case Valid:
		return "valid"
	case ResizePending:
		return "resize_pending"
	case DegradedPending:
		return "degraded_pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type surfaceEvent int

const (
	eventResized surfaceEvent = iota
	eventDegraded
	eventHandled
)

// transitions is the whole state machine. A resize subsumes a degradation
// because the resize rebuild does strictly more work.
var transitions = map[SurfaceState]map[surfaceEvent]SurfaceState{
	Valid: {
		eventResized:  ResizePending,
		eventDegraded: DegradedPending,
		eventHandled:  Valid,
	},
	ResizePending: {
		eventResized:  ResizePending,
		eventDegraded: ResizePending,
		eventHandled:  Valid,
	},
	DegradedPending: {
		eventResized:  ResizePending,
		eventDegraded: DegradedPending,
		eventHandled:  Valid,
	},
}

// Surface holds the validity state of the window surface. Window callbacks
// and the presenter mark it; the view resolves it.
type Surface struct {
	mu    sync.Mutex
	state SurfaceState
	// degraded is set by any degradation until it is handled, including one
	// folded into ResizePending.
	degraded bool
}

// NewSurface returns a surface in the Valid state.
func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) apply(ev surfaceEvent) {
	s.mu.Lock()
	s.state = transitions[s.state][ev]
	if ev == eventDegraded {
		s.degraded = true
	}
	s.mu.Unlock()
}

// pending is the state plus whether a degradation is part of it.
type pending struct {
	state    SurfaceState
	degraded bool
}

func (s *Surface) snapshot() pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pending{state: s.state, degraded: s.degraded}
}

// MarkResized records a window resize.
func (s *Surface) MarkResized() { s.apply(eventResized) }

// MarkDegraded records an out-of-date or suboptimal chain.
func (s *Surface) MarkDegraded() { s.apply(eventDegraded) }

// State returns the current state.
func (s *Surface) State() SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resized reports the "resized" flag.
func (s *Surface) Resized() bool {
	return s.State() == ResizePending
}

// RecreateNeeded reports the "recreate-needed" flag.
func (s *Surface) RecreateNeeded() bool {
	return s.State() != Valid
}

// resolve marks the rebuild for observed as done. If the state moved on while
// the rebuild ran, the newer request is kept.
func (s *Surface) resolve(observed pending) {
	s.mu.Lock()
	if s.state == observed.state && s.degraded == observed.degraded {
		s.state = transitions[s.state][eventHandled]
		s.degraded = false
	}
	s.mu.Unlock()
}
