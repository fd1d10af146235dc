package vantage

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a session script.
type scriptStep struct {
	Action string `json:"action"`

	Distance  float64 `json:"distance,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`
	Azimuth   float64 `json:"azimuth,omitempty"`

	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Effect string `json:"effect,omitempty"`
	Engine string `json:"engine,omitempty"`
	Path   string `json:"path,omitempty"`
}

// sessionScript is the top-level JSON structure for a session script.
type sessionScript struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences widget operations from a JSON description, for
// automated visual testing and batch rendering. Supported actions:
// initialize, set_orbit, set_resolution, set_engine, enable_effect,
// disable_effect, reset_effects, render, save_frame, import.
type Script struct {
	steps []scriptStep
}

// LoadScript parses a JSON session script.
func LoadScript(jsonData []byte) (*Script, error) {
	var script sessionScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	return &Script{steps: script.Steps}, nil
}

// Len returns the number of steps.
func (s *Script) Len() int { return len(s.steps) }

// Run executes every step against the widget, stopping at the first
// failure.
func (s *Script) Run(w *Widget) error {
	for i, step := range s.steps {
		if err := runStep(w, step); err != nil {
			return fmt.Errorf("script step %d (%s): %w", i+1, step.Action, err)
		}
	}
	return nil
}

func runStep(w *Widget, step scriptStep) error {
	switch step.Action {
	case "initialize":
		w.Initialize()
	case "set_orbit":
		w.SetOrbit(step.Distance, step.Elevation, step.Azimuth)
	case "set_resolution":
		w.SetResolution(step.Width, step.Height)
	case "set_engine":
		w.SetRenderEngine(ParseRenderKind(step.Engine))
	case "enable_effect":
		kind, ok := ParseEffectKind(step.Effect)
		if !ok {
			return fmt.Errorf("unknown effect %q", step.Effect)
		}
		w.SetEffect(kind, true)
	case "disable_effect":
		kind, ok := ParseEffectKind(step.Effect)
		if !ok {
			return fmt.Errorf("unknown effect %q", step.Effect)
		}
		w.SetEffect(kind, false)
	case "reset_effects":
		w.ResetEffects()
	case "render":
		return w.Render()
	case "save_frame":
		return w.SaveFrame(step.Path)
	case "import":
		w.Import(step.Path)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}
