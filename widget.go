package vantage

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ExecutionContext reports whether the widget was constructed in the
// process that owns the engine. Engine state is process-global and not
// shareable, so a widget created in a forked worker or subprocess runs
// permanently degraded: every render produces a status placard instead
// of touching the engine.
type ExecutionContext uint8

const (
	// ContextPrimary is the normal case: the engine lives here.
	ContextPrimary ExecutionContext = iota
	// ContextSecondary marks a widget created outside the engine's
	// process. Degraded mode is permanent for the widget's lifetime.
	ContextSecondary
)

// SyncState is the snapshot pushed to the UI layer on every sync. All
// fields are plain values so the observer can serialize them directly.
type SyncState struct {
	Distance  float64
	Elevation float64
	Azimuth   float64

	Width  int
	Height int
	Engine string
	Device string

	Status string
	// ImageBase64 holds the current frame encoded as base64 raw RGBA, or
	// "" when no frame has been rendered yet.
	ImageBase64 string
	ImageWidth  int
	ImageHeight int
}

// Widget ties the orbit camera, the effect graph, and the render
// pipeline to a single engine session and mirrors their state to an
// observer. All methods must be called from one goroutine; the engine
// contract has no internal locking.
type Widget struct {
	engine Engine
	graph  *Graph
	orbit  Orbit
	cfg    Config

	ctx         ExecutionContext
	initialized bool
	debug       bool

	status string
	image  *PixelBuffer

	// effectNodes tracks the graph handle of each toggled-on effect so
	// toggling off removes the right node.
	effectNodes map[EffectKind]NodeID

	onSync     func(SyncState)
	batchDepth int
	syncDirty  bool

	orbitTween *orbitTween
}

// orbitTween animates the three orbit parameters simultaneously.
type orbitTween struct {
	distance  *gween.Tween
	elevation *gween.Tween
	azimuth   *gween.Tween
}

// NewWidget creates a widget bound to an engine session. The context
// tells the widget whether the engine is actually reachable; pass
// ContextSecondary from forked workers.
func NewWidget(e Engine, ctx ExecutionContext) *Widget {
	return &Widget{
		engine:      e,
		graph:       NewGraph(),
		orbit:       DefaultOrbit(),
		cfg:         DefaultConfig(),
		ctx:         ctx,
		effectNodes: make(map[EffectKind]NodeID),
	}
}

// NewWidgetFromConfig creates a widget and applies a loaded
// configuration: resolution, quality profile, device, camera, debug
// flag, and effect toggles (applied during Initialize).
func NewWidgetFromConfig(e Engine, ctx ExecutionContext, cfg Config) *Widget {
	w := NewWidget(e, ctx)
	w.cfg = cfg
	w.orbit = cfg.Camera.orbit()
	w.debug = cfg.Debug
	return w
}

// OnSync registers the observer that receives state snapshots. Only one
// observer is supported; a second call replaces the first.
func (w *Widget) OnSync(fn func(SyncState)) {
	w.onSync = fn
}

// SetDebug toggles stderr timing logs.
func (w *Widget) SetDebug(debug bool) { w.debug = debug }

// Status returns the current status text.
func (w *Widget) Status() string { return w.status }

// Image returns the most recently extracted frame, or nil.
func (w *Widget) Image() *PixelBuffer { return w.image }

// Orbit returns the current camera orbit parameters.
func (w *Widget) Orbit() Orbit { return w.orbit }

// Context returns the widget's execution context.
func (w *Widget) Context() ExecutionContext { return w.ctx }

// Effects returns the enabled effects in chain order.
func (w *Widget) Effects() []Effect { return w.graph.Chain() }

// Initialized reports whether Initialize has completed.
func (w *Widget) Initialized() bool { return w.initialized }

// --- sync ---

// Batch runs fn with sync coalescing: however many mutations fn makes,
// the observer sees exactly one snapshot, pushed when the outermost
// batch ends. Batches nest.
func (w *Widget) Batch(fn func()) {
	w.batchDepth++
	defer func() {
		w.batchDepth--
		if w.batchDepth == 0 && w.syncDirty {
			w.syncDirty = false
			w.pushSync()
		}
	}()
	fn()
}

// sync pushes a snapshot now, or defers it to the end of the enclosing
// batch.
func (w *Widget) sync() {
	if w.batchDepth > 0 {
		w.syncDirty = true
		return
	}
	w.pushSync()
}

func (w *Widget) pushSync() {
	if w.onSync == nil {
		return
	}
	s := SyncState{
		Distance:  w.orbit.Distance,
		Elevation: w.orbit.Elevation,
		Azimuth:   w.orbit.Azimuth,
		Width:     w.cfg.Width,
		Height:    w.cfg.Height,
		Engine:    w.cfg.Engine,
		Device:    w.cfg.Device,
		Status:    w.status,
	}
	if w.image != nil {
		s.ImageBase64 = w.image.Base64()
		s.ImageWidth = w.image.Width
		s.ImageHeight = w.image.Height
	}
	w.onSync(s)
}

func (w *Widget) setStatus(format string, args ...any) {
	w.status = fmt.Sprintf(format, args...)
}

// --- lifecycle ---

// Initialize sets up the engine session: render settings, the default
// scene, the camera at the widget's orbit, the effect graph, and any
// effects toggled on in the configuration. Calling it again is a no-op
// that reports "already initialized" in the status.
func (w *Widget) Initialize() {
	if w.initialized {
		w.setStatus("already initialized")
		w.sync()
		return
	}
	if w.degraded("initialize") {
		return
	}

	w.Batch(func() {
		w.engine.Configure(w.cfg.renderSettings())
		SetupDefaultScene(w.engine)
		w.engine.SetCameraPose(w.orbit.Pose())
		w.graph.Init()

		if w.cfg.Effects.Bloom {
			w.enableEffect(EffectBloom)
		}
		if w.cfg.Effects.ColorCorrection {
			w.enableEffect(EffectColorCorrection)
		}
		if w.cfg.Effects.Vignette {
			w.enableEffect(EffectVignette)
		}
		if w.cfg.Effects.FilmGrain {
			w.enableEffect(EffectFilmGrain)
		}
		w.engine.SetEffects(w.graph.Chain())

		w.initialized = true
		w.setStatus("initialized")
		w.sync()
	})
}

// degraded short-circuits engine-touching operations in a secondary
// context: the status explains the failure and the image becomes a
// placard of the same shape a real frame would have.
func (w *Widget) degraded(op string) bool {
	if w.ctx == ContextPrimary {
		return false
	}
	w.setStatus("%s failed: %v", op, ErrSecondaryContext)
	w.image = StatusImage(w.cfg.Width, w.cfg.Height,
		"engine unavailable",
		"secondary execution context")
	w.sync()
	return true
}

// --- rendering ---

// Render produces a frame and pushes it to the observer. A missing
// camera is recovered once by rebinding the orbit camera; any other
// failure surfaces as status text with the previous image kept.
func (w *Widget) Render() error {
	if w.degraded("render") {
		return ErrSecondaryContext
	}

	start := time.Now()
	pb, path, err := RenderFrame(w.engine)
	if errors.Is(err, ErrNoCamera) {
		w.engine.SetCameraPose(w.orbit.Pose())
		pb, path, err = RenderFrame(w.engine)
	}
	renderTime := time.Since(start)

	if err != nil {
		w.setStatus("render failed: %v", err)
		w.sync()
		return err
	}

	w.image = pb
	w.setStatus("rendered %dx%d (%s)", pb.Width, pb.Height, path)

	syncStart := time.Now()
	w.sync()

	w.debugLog(debugStats{
		renderTime:  renderTime,
		syncTime:    time.Since(syncStart),
		path:        path,
		width:       pb.Width,
		height:      pb.Height,
		effectCount: w.graph.Len(),
	})
	return nil
}

// --- camera ---

// SetOrbit moves the camera to the given spherical position and
// re-renders.
func (w *Widget) SetOrbit(distance, elevation, azimuth float64) {
	w.Batch(func() {
		w.orbit.Distance = distance
		w.orbit.Elevation = elevation
		w.orbit.Azimuth = azimuth
		w.applyOrbit()
	})
}

// ApplyOrbit replaces the whole orbit state, target included. Use with
// OrbitFromPosition to look at a new target from the current position.
func (w *Widget) ApplyOrbit(o Orbit) {
	w.Batch(func() {
		w.orbit = o
		w.applyOrbit()
	})
}

func (w *Widget) applyOrbit() {
	if w.ctx == ContextSecondary {
		w.sync()
		return
	}
	w.engine.SetCameraPose(w.orbit.Pose())
	if w.initialized {
		_ = w.Render()
		return
	}
	w.sync()
}

// OrbitTo animates the camera to a new orbit over the given duration.
// Call Update with frame deltas to advance the animation; each step
// re-renders. A second OrbitTo replaces a running animation.
func (w *Widget) OrbitTo(distance, elevation, azimuth float64, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.OutQuad
	}
	w.orbitTween = &orbitTween{
		distance:  gween.New(float32(w.orbit.Distance), float32(distance), duration, fn),
		elevation: gween.New(float32(w.orbit.Elevation), float32(elevation), duration, fn),
		azimuth:   gween.New(float32(w.orbit.Azimuth), float32(azimuth), duration, fn),
	}
}

// Update advances a running camera animation by dt seconds. Returns
// true while the animation is still active.
func (w *Widget) Update(dt float32) bool {
	t := w.orbitTween
	if t == nil {
		return false
	}
	d, doneD := t.distance.Update(dt)
	e, doneE := t.elevation.Update(dt)
	a, doneA := t.azimuth.Update(dt)

	w.Batch(func() {
		w.orbit.Distance = float64(d)
		w.orbit.Elevation = float64(e)
		w.orbit.Azimuth = float64(a)
		w.applyOrbit()
	})

	if doneD && doneE && doneA {
		w.orbitTween = nil
		return false
	}
	return true
}

// --- settings ---

// SetResolution changes the output size and re-renders.
func (w *Widget) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		w.setStatus("invalid resolution %dx%d", width, height)
		w.sync()
		return
	}
	w.debugCheckResolution(width, height)
	w.Batch(func() {
		w.cfg.Width = width
		w.cfg.Height = height
		if w.ctx == ContextPrimary {
			w.engine.Configure(w.cfg.renderSettings())
		}
		if w.initialized {
			_ = w.Render()
		} else {
			w.sync()
		}
	})
}

// SetRenderEngine switches the quality profile and re-renders.
func (w *Widget) SetRenderEngine(kind RenderKind) {
	w.Batch(func() {
		w.cfg.Engine = kind.String()
		w.reconfigure()
	})
}

// SetDevice switches the render device and re-renders.
func (w *Widget) SetDevice(d Device) {
	w.Batch(func() {
		w.cfg.Device = d.String()
		w.reconfigure()
	})
}

func (w *Widget) reconfigure() {
	if w.ctx == ContextPrimary {
		w.engine.Configure(w.cfg.renderSettings())
	}
	if w.initialized {
		_ = w.Render()
	} else {
		w.sync()
	}
}

// --- effects ---

// SetEffect toggles an effect on or off at the tail of the compositor
// chain and re-renders. Enabling an already-enabled effect is a no-op.
func (w *Widget) SetEffect(kind EffectKind, enabled bool) {
	w.Batch(func() {
		changed := false
		if enabled {
			changed = w.enableEffect(kind)
		} else {
			changed = w.disableEffect(kind)
		}
		if !changed {
			w.sync()
			return
		}
		w.pushEffects()
	})
}

// ConfigureEffect updates the parameters of an enabled effect in place.
func (w *Widget) ConfigureEffect(kind EffectKind, settings EffectSettings) {
	id, ok := w.effectNodes[kind]
	if !ok {
		w.setStatus("%s is not enabled", kind)
		w.sync()
		return
	}
	w.Batch(func() {
		w.graph.SetSettings(id, settings)
		w.pushEffects()
	})
}

// ResetEffects clears the compositor chain back to a pass-through graph.
func (w *Widget) ResetEffects() {
	w.Batch(func() {
		w.graph.Reset()
		w.effectNodes = make(map[EffectKind]NodeID)
		w.pushEffects()
	})
}

func (w *Widget) enableEffect(kind EffectKind) bool {
	if _, on := w.effectNodes[kind]; on {
		return false
	}
	id, ok := w.graph.InsertDefault(kind)
	if !ok {
		w.setStatus("effect graph not initialized")
		return false
	}
	w.effectNodes[kind] = id
	return true
}

func (w *Widget) disableEffect(kind EffectKind) bool {
	id, on := w.effectNodes[kind]
	if !on {
		return false
	}
	w.graph.Remove(id)
	delete(w.effectNodes, kind)
	return true
}

// pushEffects hands the current chain to the engine and re-renders.
func (w *Widget) pushEffects() {
	if w.ctx == ContextSecondary {
		w.sync()
		return
	}
	w.engine.SetEffects(w.graph.Chain())
	if w.initialized {
		_ = w.Render()
	} else {
		w.sync()
	}
}

// --- scene I/O ---

// Import loads a scene file into the session and re-renders. The result
// is reported through the status text.
func (w *Widget) Import(path string) {
	if w.degraded("import") {
		return
	}
	w.Batch(func() {
		if err := ImportScene(w.engine, path); err != nil {
			w.setStatus("import failed: %v", err)
			w.sync()
			return
		}
		w.setStatus("imported %s", path)
		if w.initialized {
			_ = w.Render()
		} else {
			w.sync()
		}
	})
}

// Export writes the current scene to a file, normalizing the extension
// for the format, and reports the result through the status text.
func (w *Widget) Export(path string, format Format) {
	if w.degraded("export") {
		return
	}
	out, err := ExportScene(w.engine, path, format)
	if err != nil {
		w.setStatus("export failed: %v", err)
	} else {
		w.setStatus("exported %s", out)
	}
	w.sync()
}

// SaveFrame writes the current frame as a PNG. Renders first if no
// frame exists yet.
func (w *Widget) SaveFrame(path string) error {
	if w.image == nil {
		if err := w.Render(); err != nil {
			return err
		}
	}
	if err := ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	defer f.Close()
	if err := w.image.EncodePNG(f); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	w.setStatus("saved %s", path)
	w.sync()
	return nil
}
