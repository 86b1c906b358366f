package config

import "sync"

const (
	minJobEvery = 1
	maxJobEvery = 100000
)

// Runtime holds the generation cadence, which the input handler may change
// while the frame loop reads it every tick.
type Runtime struct {
	mu       sync.RWMutex
	jobEvery int
	paused   bool
}

// NewRuntime starts at the configured cadence. A non-positive value starts paused.
func NewRuntime(jobEvery int) *Runtime {
	r := &Runtime{jobEvery: clampJobEvery(jobEvery)}
	if jobEvery <= 0 {
		r.jobEvery = 500
		r.paused = true
	}
	return r
}

func clampJobEvery(n int) int {
	if n < minJobEvery {
		return minJobEvery
	}
	if n > maxJobEvery {
		return maxJobEvery
	}
	return n
}

// JobEvery returns the ticks between generation jobs, or 0 while paused.
func (r *Runtime) JobEvery() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.paused {
		return 0
	}
	return r.jobEvery
}

// SetJobEvery sets the cadence, clamped to a sane range.
func (r *Runtime) SetJobEvery(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobEvery = clampJobEvery(n)
}

// Scale multiplies the cadence by num/den and returns the new value.
func (r *Runtime) Scale(num, den int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if den <= 0 {
		den = 1
	}
	n := r.jobEvery * num / den
	if n == r.jobEvery && num > den {
		n++
	}
	r.jobEvery = clampJobEvery(n)
	return r.jobEvery
}

// TogglePause pauses or resumes generation and reports whether it is now paused.
func (r *Runtime) TogglePause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = !r.paused
	return r.paused
}
