package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hubastard/lumen/engine/colors"
	"github.com/pelletier/go-toml/v2"
)

// Config for the engine run.
type Config struct {
	Title      string       `toml:"title"`
	Width      int          `toml:"width"`
	Height     int          `toml:"height"`
	VSync      bool         `toml:"vsync"`
	ClearColor colors.Color `toml:"clear_color"`

	// Requested core-profile context version.
	GLMajor int `toml:"gl_major"`
	GLMinor int `toml:"gl_minor"`

	ShaderDir      string `toml:"shader_dir"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	HotReload      bool   `toml:"hot_reload"`

	LogLevel string `toml:"log_level"`
	// ProfilePath, when set, records frame scopes and writes a speedscope
	// capture there on exit.
	ProfilePath string `toml:"profile_path"`
}

func DefaultConfig() Config {
	return Config{
		Title:          "Ray Tracing",
		Width:          1024,
		Height:         768,
		VSync:          true,
		ClearColor:     colors.Gray,
		GLMajor:        4,
		GLMinor:        1,
		ShaderDir:      "assets/shaders",
		VertexShader:   "vertex_shader.glsl",
		FragmentShader: "fragment_shader.glsl",
		LogLevel:       "info",
	}
}

// LoadConfig reads a TOML file over DefaultConfig. A missing file is not an
// error; the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	case c.GLMajor < 3 || (c.GLMajor == 3 && c.GLMinor < 2):
		return fmt.Errorf("context version %d.%d: core profile needs 3.2 or later", c.GLMajor, c.GLMinor)
	case c.VertexShader == "" || c.FragmentShader == "":
		return errors.New("vertex_shader and fragment_shader must be set")
	}
	return nil
}
