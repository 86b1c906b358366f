package main

import (
	"mini-vox/internal/input"
	"mini-vox/internal/logging"
	"mini-vox/internal/render"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func setupInputHandlers(window *glfw.Window, a *app) {
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.driver.OnResize(render.Extent{Width: width, Height: height})
	})

	// Restoring from iconified leaves the old chain images stale.
	window.SetIconifyCallback(func(w *glfw.Window, iconified bool) {
		if !iconified {
			a.driver.OnSurfaceDegraded()
		}
	})

	a.input.Attach(window)
}

// handleInput applies the actions triggered since the last frame.
func (a *app) handleInput() {
	log := logging.Logger()
	in := a.input
	defer in.PostUpdate()

	if in.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if in.JustPressed(input.ActionCapture) {
		a.requestCapture()
	}
	if in.JustPressed(input.ActionToggleGeneration) {
		log.Info("generation toggled", "paused", a.runtime.TogglePause())
	}
	if in.JustPressed(input.ActionFaster) {
		log.Info("generation faster", "job_every", a.runtime.Scale(1, 2))
	}
	if in.JustPressed(input.ActionSlower) {
		log.Info("generation slower", "job_every", a.runtime.Scale(2, 1))
	}
	if in.JustPressed(input.ActionToggleOrbit) {
		a.orbiting = !a.orbiting
	}
	if in.JustPressed(input.ActionToggleOverlay) {
		a.overlay = !a.overlay
		if !a.overlay {
			a.backend.SetOverlay(nil)
		}
	}
}
