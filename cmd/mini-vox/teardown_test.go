package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeWindow struct {
	closes atomic.Int32
}

func (w *fakeWindow) SetShouldClose(v bool) {
	if v {
		w.closes.Add(1)
	}
}

func TestTeardownAfterLoopLeavesWindowAlone(t *testing.T) {
	tests := []struct {
		name   string
		finish func(*teardown)
	}{
		{"finished", (*teardown).finish},
		{"detached only", (*teardown).detach},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			td := newTeardown(cancel, 50*time.Millisecond)
			w := &fakeWindow{}
			td.attach(w)
			tt.finish(td)

			td.cleanup()
			if n := w.closes.Load(); n != 0 {
				t.Fatalf("SetShouldClose called %d times after the window was released", n)
			}
			if ctx.Err() == nil {
				t.Error("context not cancelled")
			}
		})
	}
}

func TestTeardownSignalStopsRunningLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	td := newTeardown(cancel, 2*time.Second)
	w := &fakeWindow{}
	td.attach(w)

	// stands in for the frame loop on the main thread
	go func() {
		<-ctx.Done()
		td.detach()
		td.finish()
	}()

	start := time.Now()
	td.cleanup()
	if w.closes.Load() > 1 {
		t.Errorf("SetShouldClose called %d times", w.closes.Load())
	}
	if time.Since(start) >= 2*time.Second {
		t.Error("cleanup waited for the timeout instead of the loop")
	}
}

func TestTeardownTimesOut(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	td := newTeardown(cancel, 20*time.Millisecond)
	w := &fakeWindow{}
	td.attach(w)

	td.cleanup()
	if w.closes.Load() != 1 {
		t.Errorf("SetShouldClose called %d times, want 1", w.closes.Load())
	}
	td.finish()
	td.finish()
}
