package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"mini-vox/internal/backend/glbackend"
	"mini-vox/internal/backend/vkprobe"
	"mini-vox/internal/capture"
	"mini-vox/internal/config"
	"mini-vox/internal/input"
	"mini-vox/internal/logging"
	"mini-vox/internal/meshing"
	"mini-vox/internal/render"
	"mini-vox/internal/scene"
	"mini-vox/internal/trace"
	"mini-vox/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func setupWindow(ws config.WindowSettings) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(ws.Width, ws.Height, ws.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		return nil, err
	}

	if ws.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// app holds every long-lived component of a running session.
type app struct {
	window  *glfw.Window
	cfg     config.Settings
	runtime *config.Runtime

	backend   *glbackend.Backend
	surface   *render.Surface
	presenter *render.Presenter
	view      *render.View
	camera    *render.Camera
	driver    *render.Driver

	world *world.World
	store *scene.Store
	pool  *meshing.WorkerPool

	input    *input.Manager
	limiter  *fpsLimiter
	orbiting bool
	angle    float32
	overlay  bool

	trace *trace.Writer
	saver *capture.Saver
}

func newLiveness(ws config.WorldSettings) world.LivenessSource {
	if ws.Liveness == "random" {
		return world.NewRandomLiveness(uint64(ws.Seed), ws.Density)
	}
	return world.NewNoiseLiveness(ws.Seed, ws.NoiseThreshold)
}

func setupApp(window *glfw.Window, cfg config.Settings) (*app, error) {
	log := logging.Logger()
	logAdapter()

	a := &app{
		window:  window,
		cfg:     cfg,
		runtime: config.NewRuntime(cfg.Generation.EveryTicks),
		surface: render.NewSurface(),
		store:   scene.NewStore(),
		world:   world.New(cfg.World.Size, newLiveness(cfg.World)),
		saver:   capture.NewSaver(cfg.Capture.Dir),
		input:   input.NewManager(),
		limiter: newFPSLimiter(0),

		orbiting: true,
		overlay:  true,
	}
	if !cfg.Window.VSync {
		a.limiter = newFPSLimiter(cfg.Window.FPSLimit)
	}

	var clear [4]float32
	copy(clear[:], cfg.Render.ClearColor)
	backend, err := glbackend.New(window, glbackend.Options{ClearColor: clear, Overlay: true})
	if err != nil {
		return nil, err
	}
	a.backend = backend

	w, h := window.GetFramebufferSize()
	a.presenter, err = render.NewPresenter(backend, render.Extent{Width: w, Height: h}, cfg.Render.MinImageCount)
	if err != nil {
		backend.Release()
		return nil, err
	}

	a.camera = render.NewCamera(cfg.Render.FOV, cfg.Render.Near, cfg.Render.Far)
	a.orbitCamera(0)
	a.view, err = render.NewView(backend, a.presenter, a.store, a.camera)
	if err != nil {
		backend.Release()
		return nil, err
	}
	a.store.Append(chunkMarkers(cfg.World.Size))

	if cfg.Trace.Path != "" {
		a.trace, err = trace.Create(filepath.Clean(cfg.Trace.Path))
		if err != nil {
			a.view.Release()
			backend.Release()
			return nil, fmt.Errorf("trace: %w", err)
		}
		a.presenter.SetEventSink(render.EventSinkFunc(func(ev render.Event) {
			if err := a.trace.Write(ev); err != nil {
				log.Warn("trace write failed", "err", err)
			}
		}))
		log.Info("frame trace enabled", "path", a.trace.Path())
	}

	a.pool = meshing.NewWorkerPool(cfg.Generation.Workers, cfg.Generation.QueueCapacity, a.store,
		meshing.WithResultHook(a.onMeshed))
	a.driver = render.NewDriver(a.surface, a.view, a.presenter, a.world, a.pool, a.runtime)

	log.Info("session ready",
		"world_size", cfg.World.Size, "liveness", cfg.World.Liveness,
		"workers", cfg.Generation.Workers, "queue", cfg.Generation.QueueCapacity,
		"job_every", cfg.Generation.EveryTicks)
	return a, nil
}

// logAdapter reports the Vulkan adapter the system would prefer. Rendering
// does not depend on it, so failures are only logged.
func logAdapter() {
	log := logging.Logger()
	adapters, err := vkprobe.Probe(vkprobe.Options{UseGLFW: true})
	if err != nil {
		if errors.Is(err, vkprobe.ErrUnavailable) {
			log.Debug("vulkan not available", "err", err)
		} else {
			log.Warn("vulkan probe failed", "err", err)
		}
		return
	}
	if best, ok := vkprobe.Select(adapters); ok {
		log.Info("preferred adapter", "name", best.Name, "type", best.Type.String(), "vulkan", best.APIVersion.String())
	}
}

func (a *app) onMeshed(r meshing.Result) {
	if a.trace == nil {
		return
	}
	ev := render.Event{Kind: "meshed", Image: -1, Detail: r.Coord.String()}
	if r.Err != nil {
		ev.Kind = "mesh_rejected"
	}
	if err := a.trace.Write(ev); err != nil {
		logging.Logger().Warn("trace write failed", "err", err)
	}
}

// chunkMarkers instances the default quad at the origin of every chunk on the
// ground layer, tinted by position, so the grid is visible before any chunk
// is meshed.
func chunkMarkers(n int) *scene.Mesh {
	instances := make([]scene.Instance, 0, n*n)
	for z := range n {
		for x := range n {
			c := world.ChunkCoord{X: x, Z: z}
			instances = append(instances, scene.Instance{
				Offset: c.Origin(),
				Tint:   mgl32.Vec3{float32(x+1) / float32(n), 0.5, float32(z+1) / float32(n)},
			})
		}
	}
	return scene.Quad().WithInstances(instances)
}

// worldCenter is the middle of the occupancy grid in world units.
func (a *app) worldCenter() mgl32.Vec3 {
	half := float32(a.cfg.World.Size*world.ChunkSize) / 2
	return mgl32.Vec3{half, half, half}
}

// orbitCamera advances the orbit by dt seconds unless orbiting is frozen.
func (a *app) orbitCamera(dt float64) {
	if a.orbiting {
		a.angle += float32(dt * orbitSpeed)
	}
	span := float32(a.cfg.World.Size * world.ChunkSize)
	a.camera.Orbit(a.worldCenter(), span*1.3, span*0.6, a.angle)
}

// shutdown releases everything in dependency order: stop producing jobs,
// drain the workers, wait for the GPU, then free GPU objects.
func (a *app) shutdown() {
	log := logging.Logger()
	a.driver.Close()
	a.pool.Shutdown()
	if err := a.presenter.WaitIdle(); err != nil {
		log.Warn("wait idle on shutdown", "err", err)
	}
	a.view.Release()
	a.backend.Release()
	if a.trace != nil {
		if err := a.trace.Close(); err != nil {
			log.Warn("trace close", "err", err)
		}
	}
	generated, failed := a.pool.Stats()
	st := a.presenter.Stats()
	log.Info("shutdown complete",
		"ticks", a.driver.Ticks(), "presented", st.Presented, "skipped", st.Skipped,
		"rebuilds", a.view.Rebuilds(), "chunks_meshed", generated, "chunks_rejected", failed)
}
