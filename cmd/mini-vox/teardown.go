package main

import (
	"context"
	"sync"
	"time"

	"mini-vox/internal/logging"
)

// closeRequester is the part of *glfw.Window the signal path touches.
type closeRequester interface {
	SetShouldClose(bool)
}

// teardown coordinates a closer-triggered exit with the main thread, which
// owns the window and every GL resource.
type teardown struct {
	cancel  context.CancelFunc
	timeout time.Duration

	mu     sync.Mutex
	window closeRequester

	done     chan struct{}
	doneOnce sync.Once
}

func newTeardown(cancel context.CancelFunc, timeout time.Duration) *teardown {
	return &teardown{cancel: cancel, timeout: timeout, done: make(chan struct{})}
}

// attach makes w the window asked to close on a signal.
func (t *teardown) attach(w closeRequester) {
	t.mu.Lock()
	t.window = w
	t.mu.Unlock()
}

// detach must run before the window is destroyed or glfw terminated.
func (t *teardown) detach() {
	t.mu.Lock()
	t.window = nil
	t.mu.Unlock()
}

// finish reports that the main thread released everything.
func (t *teardown) finish() {
	t.detach()
	t.doneOnce.Do(func() { close(t.done) })
}

// cleanup is bound to closer. It stops the loop and waits for the main thread
// to finish; once the loop is done the window is never touched.
func (t *teardown) cleanup() {
	t.cancel()
	select {
	case <-t.done:
		return
	default:
	}

	t.mu.Lock()
	if t.window != nil {
		t.window.SetShouldClose(true)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
	case <-time.After(t.timeout):
		logging.Logger().Warn("shutdown timed out")
	}
}
