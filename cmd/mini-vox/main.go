package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"mini-vox/internal/backend/vkprobe"
	"mini-vox/internal/config"
	"mini-vox/internal/logging"
	"mini-vox/internal/trace"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML settings file")
	logLevel := flag.String("log-level", "", "log level, overrides log.level from the settings file")
	probe := flag.Bool("probe", false, "list Vulkan adapters and exit")
	traceSummary := flag.String("trace-summary", "", "print event counts of a frame trace and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mini-vox:", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logging.SetLogger(logging.NewText(os.Stderr, cfg.Log.Level))

	switch {
	case *probe:
		os.Exit(runProbe())
	case *traceSummary != "":
		os.Exit(runTraceSummary(*traceSummary))
	}

	// Teardown keeps GL cleanup on the main thread when closer fires from a
	// signal, and keeps closer away from the window once it is destroyed.
	ctx, cancel := context.WithCancel(context.Background())
	td := newTeardown(cancel, 3*time.Second)
	closer.Bind(td.cleanup)
	defer closer.Close()

	if err := glfw.Init(); err != nil {
		td.finish()
		closer.Fatalln("glfw init:", err)
	}

	window, err := setupWindow(cfg.Window)
	if err != nil {
		glfw.Terminate()
		td.finish()
		closer.Fatalln("window:", err)
	}
	td.attach(window)

	a, err := setupApp(window, cfg)
	if err != nil {
		td.detach()
		window.Destroy()
		glfw.Terminate()
		td.finish()
		closer.Fatalln("setup:", err)
	}
	setupInputHandlers(window, a)

	runErr := runFrameLoop(ctx, a)
	cancel()
	a.shutdown()
	td.detach()
	window.Destroy()
	glfw.Terminate()
	td.finish()

	if runErr != nil {
		closer.Fatalln("render:", runErr)
	}
}

func runProbe() int {
	adapters, err := vkprobe.Probe(vkprobe.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "probe:", err)
		return 1
	}
	best, ok := vkprobe.Select(adapters)
	for _, ad := range adapters {
		mark := " "
		if ok && ad.Index == best.Index {
			mark = "*"
		}
		fmt.Printf("%s %d  %-40s %-10s vulkan %s  vendor 0x%04x device 0x%04x\n",
			mark, ad.Index, ad.Name, ad.Type, ad.APIVersion, ad.VendorID, ad.DeviceID)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "probe: no adapter with a graphics queue")
		return 1
	}
	return 0
}

func runTraceSummary(path string) int {
	counts, err := trace.Summary(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "trace:", err)
		return 1
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("%-24s %d\n", k, counts[k])
	}
	return 0
}
