package vantage

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sentinel errors surfaced by the render pipeline. Widget methods convert
// all of these to status text; they never propagate to the UI layer.
var (
	// ErrNoCamera is returned when a render is attempted with no camera
	// bound to the engine scene.
	ErrNoCamera = errors.New("vantage: no camera bound to scene")

	// ErrRenderFailed is returned when both the in-memory and the
	// file-based render paths failed.
	ErrRenderFailed = errors.New("vantage: render failed")

	// ErrSecondaryContext is returned by engine-touching widget methods
	// when the widget was constructed in a secondary execution context.
	ErrSecondaryContext = errors.New("vantage: engine unavailable in secondary execution context")
)

// RenderSettings configures the host engine's output.
type RenderSettings struct {
	Width, Height int
	Kind          RenderKind
	Device        Device
	// Samples is the per-pixel sample count. Zero selects the profile
	// default (16 for preview, 64 for quality).
	Samples int
	// Transparent renders the background with zero alpha.
	Transparent bool
}

// Normalized fills in profile defaults for zero-valued fields.
func (s RenderSettings) Normalized() RenderSettings {
	if s.Width <= 0 {
		s.Width = 512
	}
	if s.Height <= 0 {
		s.Height = 512
	}
	if s.Samples <= 0 {
		s.Samples = samplesFor(s.Kind)
	}
	return s
}

// MeshSpec is a triangle mesh handed to an engine: flat vertex positions
// with a 16-bit index list, an offset placing it in the world, and a
// surface material. Vertices with no triangles (empty Indices) are
// treated as a point cloud.
type MeshSpec struct {
	Name     string
	Vertices []mgl64.Vec3
	Indices  []uint16
	Offset   mgl64.Vec3
	Material Material
}

// LightSpec is a directional (sun-style) light.
type LightSpec struct {
	Direction mgl64.Vec3 // direction the light travels, normalized by engines
	Energy    float64
	Color     Color
}

// Frame is a floating-point framebuffer as produced by an engine's
// in-memory render path: RGBA32F, row-major with row 0 at the BOTTOM of
// the image (GL-style). The pixel extractor flips it to top-left origin
// during 8-bit conversion.
type Frame struct {
	Width, Height int
	Pix           []float32
}

// Engine is the host-render-engine contract. Implementations own all
// mutable scene state; the rest of the library only ever sequences calls
// into it from a single goroutine (the engine's global state has no
// internal locking, matching the host engines this abstracts).
//
// The built-in SoftEngine renders headlessly on the CPU; the ebitengine
// subpackage provides a GPU-backed implementation.
type Engine interface {
	// Configure applies render settings. Engines must accept repeated
	// reconfiguration between renders.
	Configure(settings RenderSettings)
	// Resolution returns the configured output size.
	Resolution() (w, h int)

	// SetCameraPose binds the scene camera to the given pose, creating
	// a camera on demand if none exists yet.
	SetCameraPose(pose Pose)
	// HasCamera reports whether a camera is bound.
	HasCamera() bool
	// RemoveCamera unbinds and destroys the scene camera.
	RemoveCamera()

	// AddMesh adds a mesh instance to the scene.
	AddMesh(mesh MeshSpec)
	// Meshes returns the scene's current mesh instances. The returned
	// slice must not be mutated.
	Meshes() []MeshSpec
	// AddLight adds a light to the scene.
	AddLight(light LightSpec)
	// SetBackground sets the world background color and strength.
	SetBackground(c Color, strength float64)
	// Clear removes all objects, lights, and the camera from the scene.
	Clear()

	// SetEffects replaces the engine's post-processing chain. The chain
	// is applied in slice order after each render.
	SetEffects(chain []Effect)

	// RenderToBuffer renders a frame and returns the in-memory float
	// framebuffer. Engines without an in-memory path may return an
	// error; callers fall back to RenderToFile.
	RenderToBuffer() (*Frame, error)
	// RenderToFile renders a frame and writes it as a PNG (top-left
	// origin, 8-bit RGBA) at the given path.
	RenderToFile(path string) error
}

// Camera projection constants shared by every engine implementation, so
// switching devices never changes the framing.
const (
	cameraFOV  = 39.6 // vertical field of view in degrees
	cameraNear = 0.1
	cameraFar  = 200.0
)

// PerspectiveMatrix returns the projection used by all engines for the
// given output size.
func PerspectiveMatrix(width, height int) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(cameraFOV), float64(width)/float64(height), cameraNear, cameraFar)
}

// ambientLight is the base illumination floor of the flat shader.
const ambientLight = 0.15

// ShadeFlat evaluates flat lighting for a face: ambient plus a Lambert
// term per directional light, plus emission. Both engine
// implementations use it so CPU and GPU frames match.
func ShadeFlat(mat Material, normal mgl64.Vec3, lights []LightSpec) Color {
	r := mat.BaseColor.R * ambientLight
	g := mat.BaseColor.G * ambientLight
	b := mat.BaseColor.B * ambientLight

	for _, l := range lights {
		dir := l.Direction
		if dir.Len() == 0 {
			continue
		}
		// Direction is the way the light travels; the surface term uses
		// the vector toward the light.
		lambert := math.Max(0, normal.Dot(dir.Normalize().Mul(-1)))
		f := lambert * l.Energy
		r += mat.BaseColor.R * l.Color.R * f
		g += mat.BaseColor.G * l.Color.G * f
		b += mat.BaseColor.B * l.Color.B * f
	}

	r += mat.Emission.R * mat.EmissionStrength
	g += mat.Emission.G * mat.EmissionStrength
	b += mat.Emission.B * mat.EmissionStrength

	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b), A: 1}
}

// SceneImporter is an optional engine capability: pass-through import of
// an external scene file in the given format. Engines that support a
// format merge its objects into the current scene.
type SceneImporter interface {
	ImportScene(path string, format Format) error
}

// SceneExporter is an optional engine capability: pass-through export of
// the current scene to an external format.
type SceneExporter interface {
	ExportScene(path string, format Format) error
}
