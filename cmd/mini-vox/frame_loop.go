package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"mini-vox/internal/logging"
	"mini-vox/internal/profiling"
	"mini-vox/internal/render"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// orbitSpeed is the camera's angular speed in radians per second.
const orbitSpeed = 0.15

func runFrameLoop(ctx context.Context, a *app) error {
	log := logging.Logger()
	frames := 0
	lastFPSCheckTime := time.Now()
	lastTime := time.Now()

	for !a.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		a.orbitCamera(now.Sub(lastTime).Seconds())
		lastTime = now

		w, h := a.window.GetFramebufferSize()
		if err := a.driver.Tick(ctx, render.Extent{Width: w, Height: h}); err != nil {
			return err
		}
		frames++

		if time.Since(lastFPSCheckTime) >= time.Second {
			if a.overlay {
				a.backend.SetOverlay(a.statusLines(frames))
			}
			log.Info("frame stats",
				"fps", frames,
				"meshes", a.store.Len(),
				"claimed", a.world.Grid().ClaimedCount(),
				"queue", a.pool.QueueLength(),
				"job_every", a.runtime.JobEvery(),
				"render", profiling.SumWithPrefix("render."),
				"top", profiling.TopN(3))
			frames = 0
			lastFPSCheckTime = time.Now()
		}

		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		a.handleInput()
		a.limiter.Wait()
	}
	return nil
}

func (a *app) statusLines(fps int) []string {
	generated, failed := a.pool.Stats()
	st := a.presenter.Stats()
	total := a.cfg.World.Size * a.cfg.World.Size * a.cfg.World.Size
	cadence := fmt.Sprintf("every %d ticks", a.runtime.JobEvery())
	if a.runtime.JobEvery() == 0 {
		cadence = "paused"
	}
	return []string{
		fmt.Sprintf("fps %d  images %d  %v", fps, a.presenter.Chain().ImageCount, a.view.Chain().Extent),
		fmt.Sprintf("chunks %d/%d  meshed %d  rejected %d  queue %d",
			a.world.Grid().ClaimedCount(), total, generated, failed, a.pool.QueueLength()),
		fmt.Sprintf("generation %s", cadence),
		fmt.Sprintf("presented %d  swaps %d  skipped %d  rebuilds %d",
			st.Presented, a.backend.Presented(), st.Skipped, a.view.Rebuilds()),
	}
}

func (a *app) requestCapture() {
	a.backend.RequestCapture(func(img *image.RGBA) {
		a.saver.SaveAsync(img)
	})
}
