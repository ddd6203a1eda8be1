// Package config handles configuration loading for the annotation browser.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"annotation-browser/internal/logging"
	"annotation-browser/internal/render"
	"annotation-browser/pkg/colorutil"
)

// Config represents the application configuration.
type Config struct {
	DataDir      string       `yaml:"data_dir"`
	FrameRate    int          `yaml:"frame_rate"`
	CacheEntries int          `yaml:"cache_entries"`
	Watch        bool         `yaml:"watch"`
	LogLevel     string       `yaml:"log_level"`
	Window       WindowConfig `yaml:"window"`
	Render       RenderConfig `yaml:"render"`
}

// WindowConfig contains the initial main window size.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RenderConfig contains viewer drawing settings.
type RenderConfig struct {
	Background   string  `yaml:"background"`
	FillAlpha    int     `yaml:"fill_alpha"`
	OutlineWidth float64 `yaml:"outline_width"`
}

// BackgroundColor parses Background.
func (r RenderConfig) BackgroundColor() (color.RGBA, error) {
	return colorutil.ParseHex(r.Background)
}

// Options converts the settings for the renderer.
func (r RenderConfig) Options() (render.Options, error) {
	bg, err := r.BackgroundColor()
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Background:   bg,
		FillAlpha:    uint8(r.FillAlpha),
		OutlineWidth: r.OutlineWidth,
	}, nil
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Fields absent from the file keep their default values.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:      "./data",
		FrameRate:    60,
		CacheEntries: 16,
		Watch:        true,
		LogLevel:     "info",
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
		},
		Render: RenderConfig{
			Background:   "#000000",
			FillAlpha:    64,
			OutlineWidth: 2,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = defaults.FrameRate
	}
	if cfg.CacheEntries == 0 {
		cfg.CacheEntries = defaults.CacheEntries
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Window.Width == 0 {
		cfg.Window.Width = defaults.Window.Width
	}
	if cfg.Window.Height == 0 {
		cfg.Window.Height = defaults.Window.Height
	}
	if cfg.Render.Background == "" {
		cfg.Render.Background = defaults.Render.Background
	}
	if cfg.Render.OutlineWidth == 0 {
		cfg.Render.OutlineWidth = defaults.Render.OutlineWidth
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.FrameRate < 1 || c.FrameRate > 240:
		return fmt.Errorf("frame_rate must be between 1 and 240, got %d", c.FrameRate)
	case c.CacheEntries < 1:
		return fmt.Errorf("cache_entries must be positive, got %d", c.CacheEntries)
	case c.Window.Width < 1 || c.Window.Height < 1:
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Render.FillAlpha < 0 || c.Render.FillAlpha > 255:
		return fmt.Errorf("render.fill_alpha must be between 0 and 255, got %d", c.Render.FillAlpha)
	case c.Render.OutlineWidth <= 0:
		return fmt.Errorf("render.outline_width must be positive, got %g", c.Render.OutlineWidth)
	}
	if _, err := c.Render.BackgroundColor(); err != nil {
		return fmt.Errorf("render.background: %w", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
