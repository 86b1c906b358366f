package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	body := `
window:
  width: 640
  height: 480
world:
  size: 4
  liveness: random
  density: 0.2
generation:
  every_ticks: 60
render:
  clear_color: [0.1, 0.2, 0.3, 1]
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Title != "mini-vox" {
		t.Errorf("title = %q, want default kept", cfg.Window.Title)
	}
	if cfg.World.Size != 4 || cfg.World.Liveness != "random" || cfg.World.Density != 0.2 {
		t.Errorf("world = %+v", cfg.World)
	}
	if cfg.Generation.EveryTicks != 60 || cfg.Generation.QueueCapacity != 100 {
		t.Errorf("generation = %+v", cfg.Generation)
	}
	if want := []float32{0.1, 0.2, 0.3, 1}; !reflect.DeepEqual(cfg.Render.ClearColor, want) {
		t.Errorf("clear color = %v", cfg.Render.ClearColor)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown section", "network:\n  port: 1\n"},
		{"unknown key", "window:\n  depth: 3\n"},
		{"negative size", "world:\n  size: -1\n"},
		{"bad liveness", "world:\n  liveness: perlin\n"},
		{"short clear color", "render:\n  clear_color: [1, 1]\n"},
		{"single image", "render:\n  min_image_count: 1\n"},
		{"wrong type", "window:\n  width: wide\n"},
		{"not yaml", "window: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body), Default())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), "settings: ") {
				t.Errorf("error %q lacks the settings prefix", err)
			}
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil, Default())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.World.Size != Default().World.Size {
		t.Errorf("size = %d", cfg.World.Size)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}
