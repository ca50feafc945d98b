// Package config holds the engine settings loaded from a TOML file. Fields
// absent from the file keep their Default values.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"render-pipeline/internal/technique"
	"render-pipeline/math"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	TechniqueDeferred = "deferred"
	TechniqueCSM      = "csm"
)

type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type Camera struct {
	FoV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	LookAt   [3]float32 `toml:"look_at"`
	// Speed is the distance a movement key covers per frame.
	Speed float32 `toml:"speed"`
}

func (c Camera) PositionVec() math.Vec3 { return math.NewVec3(c.Position[0], c.Position[1], c.Position[2]) }
func (c Camera) LookAtVec() math.Vec3   { return math.NewVec3(c.LookAt[0], c.LookAt[1], c.LookAt[2]) }

type Cascades struct {
	Splits     [technique.NumCascades - 1]float32 `toml:"splits"`
	Resolution int                                `toml:"resolution"`
}

type Shaders struct {
	// Dir overrides the embedded shader sources when set.
	Dir string `toml:"dir"`
}

type Config struct {
	Window    Window   `toml:"window"`
	Camera    Camera   `toml:"camera"`
	Technique string   `toml:"technique"`
	Cascades  Cascades `toml:"cascades"`
	Shaders   Shaders  `toml:"shaders"`
	Scene     string   `toml:"scene"`
	LogLevel  string   `toml:"log_level"`
	// Debug checks the GL error queue once per frame.
	Debug bool `toml:"debug"`
}

func Default() *Config {
	return &Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "Render Pipeline",
			VSync:  true,
		},
		Camera: Camera{
			FoV:      60,
			Near:     1,
			Far:      200,
			Position: [3]float32{0, 5, -20},
			LookAt:   [3]float32{0, -0.2, 1},
			Speed:    0.5,
		},
		Technique: TechniqueDeferred,
		Cascades: Cascades{
			Splits:     technique.DefaultSplits,
			Resolution: 2048,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FoV <= 0 || c.Camera.FoV >= 180 {
		return fmt.Errorf("%w: fov %g", ErrInvalidConfig, c.Camera.FoV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: near %g, far %g", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.LookAtVec().Length() == 0 {
		return fmt.Errorf("%w: zero look_at", ErrInvalidConfig)
	}

	switch c.Technique {
	case TechniqueDeferred:
	case TechniqueCSM:
		if _, err := technique.CascadeEnds(c.Camera.Near, c.Camera.Far, c.Cascades.Splits); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if c.Cascades.Resolution <= 0 {
			return fmt.Errorf("%w: cascade resolution %d", ErrInvalidConfig, c.Cascades.Resolution)
		}
	default:
		return fmt.Errorf("%w: unknown technique %q", ErrInvalidConfig, c.Technique)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
