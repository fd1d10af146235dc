package vantage

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the widget's startup configuration, loadable from a TOML
// file. Zero values fall back to the documented defaults when applied.
type Config struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Engine string `toml:"engine"` // "preview" or "quality"
	Device string `toml:"device"` // "cpu" or "gpu"
	Debug  bool   `toml:"debug"`

	Camera CameraConfig `toml:"camera"`

	Effects EffectsConfig `toml:"effects"`
}

// CameraConfig is the initial orbit position.
type CameraConfig struct {
	Distance  float64 `toml:"distance"`
	Elevation float64 `toml:"elevation"`
	Azimuth   float64 `toml:"azimuth"`
}

// EffectsConfig toggles the stock post-processing effects.
type EffectsConfig struct {
	Bloom           bool `toml:"bloom"`
	ColorCorrection bool `toml:"color_correction"`
	Vignette        bool `toml:"vignette"`
	FilmGrain       bool `toml:"film_grain"`
}

// DefaultConfig returns the configuration the widget starts with when
// no file is given.
func DefaultConfig() Config {
	return Config{
		Width:  512,
		Height: 512,
		Engine: RenderPreview.String(),
		Device: DeviceCPU.String(),
		Camera: CameraConfig{
			Distance:  DefaultDistance,
			Elevation: DefaultElevation,
			Azimuth:   DefaultAzimuth,
		},
	}
}

// LoadConfig reads a TOML configuration file. Missing fields keep the
// defaults from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("load config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// orbit converts the camera section to an Orbit, substituting defaults
// for zero values.
func (c CameraConfig) orbit() Orbit {
	o := DefaultOrbit()
	if c.Distance > 0 {
		o.Distance = c.Distance
	}
	if c.Elevation != 0 {
		o.Elevation = c.Elevation
	}
	if c.Azimuth != 0 {
		o.Azimuth = c.Azimuth
	}
	return o
}

// renderSettings converts the top-level fields to engine settings.
func (c Config) renderSettings() RenderSettings {
	s := RenderSettings{
		Width:  c.Width,
		Height: c.Height,
		Kind:   ParseRenderKind(c.Engine),
		Device: ParseDevice(c.Device),
	}
	return s.Normalized()
}
