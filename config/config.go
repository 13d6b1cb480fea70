package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/tumble"
	"github.com/akmonengine/tumble/engine"
	"github.com/akmonengine/tumble/input"
	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	// Dir holds the saved scene between runs
	Dir string `yaml:"dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

type Config struct {
	Scene   tumble.SceneConfig `yaml:"scene"`
	Engine  engine.Config      `yaml:"engine"`
	Storage StorageConfig      `yaml:"storage"`
	Input   input.Config       `yaml:"input"`
	Server  ServerConfig       `yaml:"server"`
}

func Default() Config {
	return Config{
		Scene:  tumble.DefaultSceneConfig(),
		Engine: engine.DefaultConfig(),
		Storage: StorageConfig{
			Dir: "state",
		},
		Input: input.DefaultConfig(),
		Server: ServerConfig{
			Addr: ":8080",
			Path: "/ws",
		},
	}
}

// Load reads the YAML file at path over the defaults.
// A missing file is not an error, the defaults are returned.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}

	return config, nil
}

func (c Config) Validate() error {
	if err := c.Scene.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if c.Storage.Dir == "" {
		return errors.New("storage: dir must be set")
	}
	if c.Server.Path == "" || c.Server.Path[0] != '/' {
		return fmt.Errorf("server: path %q must start with /", c.Server.Path)
	}

	return nil
}

// Save writes the configuration as YAML, it can be read back with Load
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
