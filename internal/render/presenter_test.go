package render

import (
	"errors"
	"fmt"
	"testing"
)

func TestPresentWaitsOnSlotFence(t *testing.T) {
	size := Extent{800, 600}
	b := newFakeBackend(size)
	p, v, _, err := newTestView(b, size)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	s := NewSurface()

	for i := range 10 {
		if err := v.Update(); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if err := p.Present(s, v); err != nil {
			t.Fatalf("Present %d: %v", i, err)
		}
	}
	if len(b.violations) > 0 {
		t.Fatalf("violations: %v", b.violations)
	}
	st := p.Stats()
	if st.Presented != 10 || st.FenceWaits != 7 {
		t.Errorf("stats = %+v, want 10 presented and 7 fence waits", st)
	}
}

func TestAcquireOutOfDateSkipsFrame(t *testing.T) {
	size := Extent{640, 480}
	b := newFakeBackend(size)
	p, v, _, _ := newTestView(b, size)
	s := NewSurface()
	b.acquireStatus = func() AcquireStatus { return AcquireOutOfDate }

	if err := v.Update(); err != nil {
		t.Fatal(err)
	}
	if err := p.Present(s, v); err != nil {
		t.Fatalf("out of date must not be an error: %v", err)
	}
	if b.submits != 0 {
		t.Errorf("submitted %d frames, want 0", b.submits)
	}
	if s.State() != DegradedPending {
		t.Errorf("surface = %v, want degraded_pending", s.State())
	}
	if p.Stats().Skipped != 1 {
		t.Errorf("skipped = %d, want 1", p.Stats().Skipped)
	}
}

func TestSubmitOutOfDateDropsFence(t *testing.T) {
	size := Extent{640, 480}
	b := newFakeBackend(size)
	p, v, _, _ := newTestView(b, size)
	s := NewSurface()
	b.submitErr = func() error { return fmt.Errorf("present: %w", ErrOutOfDate) }

	_ = v.Update()
	if err := p.Present(s, v); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if p.fences[0] != nil {
		t.Error("fence slot kept after out-of-date submit")
	}
	if !s.RecreateNeeded() {
		t.Error("surface should need recreation")
	}
}

func TestSuboptimalStillPresents(t *testing.T) {
	size := Extent{640, 480}
	b := newFakeBackend(size)
	p, v, _, _ := newTestView(b, size)
	s := NewSurface()
	b.acquireStatus = func() AcquireStatus { return AcquireSuboptimal }

	_ = v.Update()
	if err := p.Present(s, v); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if b.submits != 1 {
		t.Errorf("submits = %d, want 1", b.submits)
	}
	if s.State() != DegradedPending {
		t.Errorf("surface = %v, want degraded_pending", s.State())
	}
}

func TestPresentFatalErrors(t *testing.T) {
	size := Extent{640, 480}
	boom := errors.New("device lost")

	tests := []struct {
		name   string
		arm    func(*fakeBackend)
		update bool
		op     string
		target error
	}{
		{"acquire", func(b *fakeBackend) { b.acquireErr = ErrSurfaceLost }, true, "acquire", ErrSurfaceLost},
		{"submit", func(b *fakeBackend) { b.submitErr = func() error { return boom } }, true, "submit", boom},
		{"not recorded", func(*fakeBackend) {}, false, "submit", ErrNotRecorded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(size)
			p, v, _, _ := newTestView(b, size)
			tt.arm(b)
			if tt.update {
				_ = v.Update()
			}
			err := p.Present(NewSurface(), v)
			var fe *FrameError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FrameError", err)
			}
			if fe.Op != tt.op || !errors.Is(err, tt.target) {
				t.Errorf("got op=%q err=%v, want op=%q wrapping %v", fe.Op, err, tt.op, tt.target)
			}
		})
	}
}

func TestFenceWaitFailureIsFatal(t *testing.T) {
	size := Extent{640, 480}
	b := newFakeBackend(size)
	p, v, _, _ := newTestView(b, size)
	s := NewSurface()
	_ = v.Update()
	for range 3 {
		if err := p.Present(s, v); err != nil {
			t.Fatal(err)
		}
	}
	b.waitErr = errors.New("fence timeout")
	err := p.Present(s, v)
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Op != "fence wait" || fe.Image != 0 {
		t.Fatalf("err = %v, want fence wait failure on image 0", err)
	}
}

func TestRecreateChainWaitsForIdle(t *testing.T) {
	size := Extent{640, 480}
	b := newFakeBackend(size)
	p, v, _, _ := newTestView(b, size)
	s := NewSurface()
	_ = v.Update()
	for range 2 {
		_ = p.Present(s, v)
	}
	if _, err := p.RecreateChain(Extent{320, 240}); err != nil {
		t.Fatalf("RecreateChain: %v", err)
	}
	if len(b.violations) > 0 {
		t.Fatalf("violations: %v", b.violations)
	}
	for i, f := range p.fences {
		if f != nil {
			t.Errorf("slot %d still holds a fence", i)
		}
	}
	if p.Chain().Extent != (Extent{320, 240}) {
		t.Errorf("chain extent = %v", p.Chain().Extent)
	}
}
