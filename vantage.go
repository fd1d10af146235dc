package vantage

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default material tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// DefaultBackground is the world background used by the default scene:
// a pale blue-gray matching the original viewer defaults.
var DefaultBackground = Color{0.8, 0.8, 0.9, 1}

// RenderKind selects the rendering quality profile of the host engine.
type RenderKind uint8

const (
	// RenderPreview is the fast interactive profile (low sample count).
	RenderPreview RenderKind = iota
	// RenderQuality is the slower high-quality profile.
	RenderQuality
)

// String returns the profile name used in status text and config files.
func (k RenderKind) String() string {
	if k == RenderQuality {
		return "quality"
	}
	return "preview"
}

// ParseRenderKind maps a config string to a RenderKind. Unknown values
// fall back to RenderPreview.
func ParseRenderKind(s string) RenderKind {
	if s == "quality" {
		return RenderQuality
	}
	return RenderPreview
}

// Device selects where the engine runs its render work.
type Device uint8

const (
	DeviceCPU Device = iota
	DeviceGPU
)

// String returns the device name used in status text and config files.
func (d Device) String() string {
	if d == DeviceGPU {
		return "gpu"
	}
	return "cpu"
}

// ParseDevice maps a config string to a Device. Unknown values fall back
// to DeviceCPU.
func ParseDevice(s string) Device {
	if s == "gpu" {
		return DeviceGPU
	}
	return DeviceCPU
}

// samplesFor returns the engine sample count for a quality profile.
// Preview favors latency; quality favors convergence.
func samplesFor(k RenderKind) int {
	if k == RenderQuality {
		return 64
	}
	return 16
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp01f clamps a float32 to [0, 1].
func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
