package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tumble.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config != Default() {
		t.Errorf("Load() = %+v, want the defaults", config)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scene:
  gravity: [0, 0, -9.8]
  rotation_angle: 0
  mass: 2.5
engine:
  tick_rate: 120
server:
  addr: "127.0.0.1:9000"
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Scene.Gravity != (mgl64.Vec3{0, 0, -9.8}) {
		t.Errorf("Scene.Gravity = %v", config.Scene.Gravity)
	}
	if config.Scene.RotationAngle != 0 || config.Scene.Mass != 2.5 {
		t.Errorf("Scene = %+v", config.Scene)
	}
	if config.Engine.TickRate != 120 {
		t.Errorf("Engine.TickRate = %d, want 120", config.Engine.TickRate)
	}
	if config.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", config.Server.Addr)
	}

	// untouched values keep their default
	defaults := Default()
	if config.Scene.WallsSize != defaults.Scene.WallsSize {
		t.Errorf("Scene.WallsSize = %v, want %v", config.Scene.WallsSize, defaults.Scene.WallsSize)
	}
	if config.Engine.QueueCapacity != defaults.Engine.QueueCapacity {
		t.Errorf("Engine.QueueCapacity = %d, want %d", config.Engine.QueueCapacity, defaults.Engine.QueueCapacity)
	}
	if config.Input != defaults.Input {
		t.Errorf("Input = %+v, want %+v", config.Input, defaults.Input)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", "scene: [", "config"},
		{"wrong vector length", "scene:\n  size: [1, 1]\n", "config"},
		{"negative mass", "scene:\n  mass: -1\n", "scene"},
		{"zero tick rate", "engine:\n  tick_rate: 0\n", "engine"},
		{"bad filter", "input:\n  filter_alpha: 2\n", "input"},
		{"relative path", "server:\n  path: ws\n", "server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	config := Default()
	config.Scene.Substeps = 4
	config.Storage.Dir = "/var/lib/tumble"
	path := filepath.Join(t.TempDir(), "tumble.yaml")

	if err := config.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded != config {
		t.Errorf("Load() = %+v, want %+v", loaded, config)
	}
}
