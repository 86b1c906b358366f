// Package config loads the startup settings file and holds the few knobs that
// can change while the program runs.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed settings.schema.json
var schemaJSON string

type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
	// FPSLimit caps the frame rate when vsync is off; 0 means uncapped.
	FPSLimit int `yaml:"fps_limit"`
}

type WorldSettings struct {
	Size int   `yaml:"size"`
	Seed int64 `yaml:"seed"`
	// Liveness is "noise" or "random".
	Liveness       string  `yaml:"liveness"`
	Density        float64 `yaml:"density"`
	NoiseThreshold float64 `yaml:"noise_threshold"`
}

type GenerationSettings struct {
	Workers       int `yaml:"workers"`
	QueueCapacity int `yaml:"queue_capacity"`
	EveryTicks    int `yaml:"every_ticks"`
}

type RenderSettings struct {
	MinImageCount int       `yaml:"min_image_count"`
	FOV           float32   `yaml:"fov"`
	Near          float32   `yaml:"near"`
	Far           float32   `yaml:"far"`
	ClearColor    []float32 `yaml:"clear_color"`
}

type LogSettings struct {
	Level string `yaml:"level"`
}

type TraceSettings struct {
	// Path of the zstd-compressed JSONL frame trace; empty disables tracing.
	Path string `yaml:"path"`
}

type CaptureSettings struct {
	Dir string `yaml:"dir"`
}

// Settings is the whole settings file.
type Settings struct {
	Window     WindowSettings     `yaml:"window"`
	World      WorldSettings      `yaml:"world"`
	Generation GenerationSettings `yaml:"generation"`
	Render     RenderSettings     `yaml:"render"`
	Log        LogSettings        `yaml:"log"`
	Trace      TraceSettings      `yaml:"trace"`
	Capture    CaptureSettings    `yaml:"capture"`
}

// Default returns the settings used when no file is given. Keys missing from
// a file keep these values.
func Default() Settings {
	return Settings{
		Window: WindowSettings{Width: 1280, Height: 720, Title: "mini-vox", VSync: true, FPSLimit: 240},
		World: WorldSettings{
			Size:           8,
			Seed:           1337,
			Liveness:       "noise",
			Density:        0.05,
			NoiseThreshold: 0.62,
		},
		Generation: GenerationSettings{Workers: 1, QueueCapacity: 100, EveryTicks: 500},
		Render: RenderSettings{
			MinImageCount: 2,
			FOV:           60,
			Near:          0.1,
			Far:           1000,
			ClearColor:    []float32{0, 0, 1, 1},
		},
		Log:     LogSettings{Level: "info"},
		Capture: CaptureSettings{Dir: "captures"},
	}
}

var settingsSchema = jsonschema.MustCompileString("settings.schema.json", schemaJSON)

// Load reads a YAML settings file over the defaults. The file is checked
// against the embedded schema before it is decoded.
func Load(path string) (Settings, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b, cfg)
}

// Parse validates and decodes b on top of base.
func Parse(b []byte, base Settings) (Settings, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return base, fmt.Errorf("settings: %w", err)
	}
	if raw != nil {
		doc, err := toJSONValue(raw)
		if err != nil {
			return base, fmt.Errorf("settings: %w", err)
		}
		if err := settingsSchema.Validate(doc); err != nil {
			return base, fmt.Errorf("settings: %w", err)
		}
	}
	cfg := base
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return base, fmt.Errorf("settings: %w", err)
	}
	return cfg, nil
}

// toJSONValue turns a decoded YAML tree into the shapes encoding/json
// produces, which is what the schema validator walks.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
