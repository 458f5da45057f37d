// Package config loads artmorph settings from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/artmorph/programs"
	"github.com/stewi1014/artmorph/view"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth         = 1200
	DefaultHeight        = 800
	DefaultMaxPixelRatio = 2.0
	DefaultExportWidth   = 1920
	DefaultExportHeight  = 1080
)

type Config struct {
	LogLevel string       `yaml:"log_level"`
	Window   WindowConfig `yaml:"window"`
	View     ViewConfig   `yaml:"view"`
	Kernel   KernelConfig `yaml:"kernel"`
	Export   ExportConfig `yaml:"export"`
}

type WindowConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"`
}

// ViewConfig is the view the viewer opens with. Iterations, scale, rotation
// and center left unset take the fractal's own defaults.
type ViewConfig struct {
	Fractal    int         `yaml:"fractal"`
	Palette    string      `yaml:"palette"`
	Iterations int         `yaml:"iterations,omitempty"`
	Scale      float64     `yaml:"scale,omitempty"`
	Rotation   *float64    `yaml:"rotation,omitempty"`
	Center     *[2]float64 `yaml:"center,omitempty"`
	Speed      float64     `yaml:"speed"`
	Playing    bool        `yaml:"playing"`
}

type KernelConfig struct {
	Vignette bool `yaml:"vignette"`
}

type ExportConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Antialias   float64 `yaml:"antialias"`
	Supersample int     `yaml:"supersample"`
	Seed        int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Width:         DefaultWidth,
			Height:        DefaultHeight,
			MaxPixelRatio: DefaultMaxPixelRatio,
		},
		View: ViewConfig{
			Palette: view.PaletteKhokhloma.String(),
			Speed:   1,
			Playing: true,
		},
		Export: ExportConfig{
			Width:       DefaultExportWidth,
			Height:      DefaultExportHeight,
			Supersample: 1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Features is the kernel feature set the config asks for.
func (c *Config) Features() programs.Features {
	return programs.Features{Vignette: c.Kernel.Vignette}
}

// InitialState builds the opening view: defaults, then the configured
// fractal's overrides, then any explicitly configured values.
func (c *Config) InitialState(reg *programs.Registry) (view.State, error) {
	s := view.Default()

	d, ok := reg.Lookup(c.View.Fractal)
	if !ok {
		return s, fmt.Errorf("%w: %d", programs.ErrUnknownFractal, c.View.Fractal)
	}
	if err := s.Apply(d.Defaults); err != nil {
		return s, err
	}
	s.SetFractal(d.ID)
	s.SetPlaying(c.View.Playing)

	palette, err := view.ParsePalette(c.View.Palette)
	if err != nil {
		return s, err
	}

	setters := []func() error{
		func() error { return s.SetPalette(palette) },
		func() error { return s.SetSpeed(c.View.Speed) },
	}
	if c.View.Iterations != 0 {
		setters = append(setters, func() error { return s.SetIterations(c.View.Iterations) })
	}
	if c.View.Scale != 0 {
		setters = append(setters, func() error { return s.SetScale(c.View.Scale) })
	}
	if c.View.Rotation != nil {
		setters = append(setters, func() error { return s.SetRotation(*c.View.Rotation) })
	}
	if c.View.Center != nil {
		setters = append(setters, func() error { return s.SetCenter(mgl64.Vec2(*c.View.Center)) })
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return s, err
		}
	}
	return s, nil
}
