package vantage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func testWidget() (*Widget, *SoftEngine) {
	e := NewSoftEngine()
	w := NewWidget(e, ContextPrimary)
	w.SetResolution(64, 48)
	w.Initialize()
	return w, e
}

func TestWidgetInitialize(t *testing.T) {
	w, e := testWidget()
	if !w.Initialized() {
		t.Fatal("widget not initialized")
	}
	if w.Status() != "initialized" {
		t.Errorf("status = %q, want initialized", w.Status())
	}
	if !e.HasCamera() {
		t.Error("no camera after Initialize")
	}
	if len(e.Meshes()) == 0 {
		t.Error("default scene has no meshes")
	}
}

func TestWidgetInitializeIsIdempotent(t *testing.T) {
	w, e := testWidget()
	meshes := len(e.Meshes())

	w.Initialize()
	if w.Status() != "already initialized" {
		t.Errorf("status = %q, want already initialized", w.Status())
	}
	if len(e.Meshes()) != meshes {
		t.Errorf("second Initialize changed scene: %d -> %d meshes", meshes, len(e.Meshes()))
	}
}

func TestWidgetDefaultOrbit(t *testing.T) {
	w, _ := testWidget()
	o := w.Orbit()
	assertNear(t, "distance", o.Distance, 8.0)
	assertNear(t, "elevation", o.Elevation, 1.1)
	assertNear(t, "azimuth", o.Azimuth, 0.785)
}

func TestWidgetRenderProducesImage(t *testing.T) {
	w, _ := testWidget()
	if err := w.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := w.Image()
	if img == nil {
		t.Fatal("no image after Render")
	}
	if img.Width != 64 || img.Height != 48 {
		t.Errorf("image size = %dx%d, want 64x48", img.Width, img.Height)
	}
	if len(img.Pix) != 64*48*4 {
		t.Errorf("pixel buffer length = %d, want %d", len(img.Pix), 64*48*4)
	}
}

func TestWidgetSetResolutionRerenders(t *testing.T) {
	w, _ := testWidget()
	w.SetResolution(40, 30)
	img := w.Image()
	if img == nil || img.Width != 40 || img.Height != 30 {
		t.Fatalf("image after resize = %+v, want 40x30", img)
	}
}

func TestWidgetSetResolutionRejectsInvalid(t *testing.T) {
	w, e := testWidget()
	w.SetResolution(0, -5)
	gw, gh := e.Resolution()
	if gw != 64 || gh != 48 {
		t.Errorf("engine resolution = %dx%d, want unchanged 64x48", gw, gh)
	}
	if !strings.Contains(w.Status(), "invalid resolution") {
		t.Errorf("status = %q, want invalid resolution report", w.Status())
	}
}

func TestWidgetRenderRecoversMissingCamera(t *testing.T) {
	w, e := testWidget()
	e.RemoveCamera()

	if err := w.Render(); err != nil {
		t.Fatalf("Render after camera removal: %v", err)
	}
	if !e.HasCamera() {
		t.Error("camera not rebound during recovery")
	}
	if w.Image() == nil {
		t.Error("no image after recovery")
	}
}

func TestWidgetSyncCoalescing(t *testing.T) {
	w, _ := testWidget()
	syncs := 0
	w.OnSync(func(SyncState) { syncs++ })

	w.Batch(func() {
		w.SetOrbit(5, 0.5, 1.0)
		w.SetResolution(32, 32)
		w.SetEffect(EffectVignette, true)
	})
	if syncs != 1 {
		t.Errorf("syncs = %d, want 1 coalesced push", syncs)
	}
}

func TestWidgetSyncSnapshotFields(t *testing.T) {
	w, _ := testWidget()
	var last SyncState
	w.OnSync(func(s SyncState) { last = s })

	w.SetOrbit(6, 0.4, 2.0)
	assertNear(t, "distance", last.Distance, 6)
	assertNear(t, "elevation", last.Elevation, 0.4)
	assertNear(t, "azimuth", last.Azimuth, 2.0)
	if last.Width != 64 || last.Height != 48 {
		t.Errorf("snapshot size = %dx%d, want 64x48", last.Width, last.Height)
	}
	if last.ImageBase64 == "" {
		t.Error("snapshot missing image payload after render")
	}
	if last.ImageWidth != 64 || last.ImageHeight != 48 {
		t.Errorf("snapshot image size = %dx%d, want 64x48", last.ImageWidth, last.ImageHeight)
	}
}

func TestWidgetNestedBatch(t *testing.T) {
	w, _ := testWidget()
	syncs := 0
	w.OnSync(func(SyncState) { syncs++ })

	w.Batch(func() {
		w.SetOrbit(5, 0.5, 1.0)
		w.Batch(func() {
			w.SetResolution(32, 32)
		})
	})
	if syncs != 1 {
		t.Errorf("syncs = %d, want 1 from nested batches", syncs)
	}
}

func TestWidgetEffectTogglesReachEngine(t *testing.T) {
	w, e := testWidget()
	w.SetEffect(EffectBloom, true)
	w.SetEffect(EffectVignette, true)

	if len(e.effects) != 2 {
		t.Fatalf("engine chain length = %d, want 2", len(e.effects))
	}
	if e.effects[0].Kind != EffectBloom || e.effects[1].Kind != EffectVignette {
		t.Errorf("chain order = %v, %v; want bloom, vignette", e.effects[0].Kind, e.effects[1].Kind)
	}

	w.SetEffect(EffectBloom, false)
	if len(e.effects) != 1 || e.effects[0].Kind != EffectVignette {
		t.Errorf("chain after disable = %v, want just vignette", e.effects)
	}
}

func TestWidgetEnableEffectTwiceIsNoop(t *testing.T) {
	w, e := testWidget()
	w.SetEffect(EffectBloom, true)
	w.SetEffect(EffectBloom, true)
	if len(e.effects) != 1 {
		t.Errorf("chain length = %d after double enable, want 1", len(e.effects))
	}
}

func TestWidgetConfigureEffect(t *testing.T) {
	w, e := testWidget()
	w.SetEffect(EffectVignette, true)
	w.ConfigureEffect(EffectVignette, EffectSettings{Amount: 0.9, CenterX: 0.5, CenterY: 0.5})

	if len(e.effects) != 1 {
		t.Fatalf("chain length = %d, want 1", len(e.effects))
	}
	assertNear(t, "amount", e.effects[0].Settings.Amount, 0.9)
}

func TestWidgetConfigureDisabledEffect(t *testing.T) {
	w, _ := testWidget()
	w.ConfigureEffect(EffectBloom, EffectSettings{})
	if !strings.Contains(w.Status(), "not enabled") {
		t.Errorf("status = %q, want not-enabled report", w.Status())
	}
}

func TestWidgetResetEffects(t *testing.T) {
	w, e := testWidget()
	w.SetEffect(EffectBloom, true)
	w.SetEffect(EffectVignette, true)
	w.ResetEffects()

	if len(e.effects) != 0 {
		t.Errorf("chain after reset = %d effects, want 0", len(e.effects))
	}
	// Toggling works again after a reset.
	w.SetEffect(EffectSharpen, true)
	if len(e.effects) != 1 {
		t.Errorf("chain after re-enable = %d, want 1", len(e.effects))
	}
}

func TestWidgetSecondaryContextIsDegraded(t *testing.T) {
	e := NewSoftEngine()
	w := NewWidget(e, ContextSecondary)

	err := w.Render()
	if !errors.Is(err, ErrSecondaryContext) {
		t.Fatalf("err = %v, want ErrSecondaryContext", err)
	}
	if !strings.Contains(w.Status(), "secondary execution context") {
		t.Errorf("status = %q, want secondary context report", w.Status())
	}

	img := w.Image()
	if img == nil {
		t.Fatal("degraded mode produced no placard")
	}
	if img.Width != 512 || img.Height != 512 {
		t.Errorf("placard size = %dx%d, want configured 512x512", img.Width, img.Height)
	}
	// Dark red placard, not a rendered frame.
	r, g, b, _ := img.At(0, 0)
	if r != 128 || g != 64 || b != 64 {
		t.Errorf("placard corner = (%d, %d, %d), want (128, 64, 64)", r, g, b)
	}
}

func TestWidgetSecondaryContextInitialize(t *testing.T) {
	e := NewSoftEngine()
	w := NewWidget(e, ContextSecondary)
	w.Initialize()

	if w.Initialized() {
		t.Error("secondary context completed initialization")
	}
	if e.HasCamera() {
		t.Error("secondary context touched the engine")
	}
}

func TestWidgetOrbitAnimation(t *testing.T) {
	w, _ := testWidget()
	start := w.Orbit()
	w.OrbitTo(4, 0.2, 2.0, 1.0, nil)

	if !w.Update(0.5) {
		t.Fatal("animation finished after half its duration")
	}
	mid := w.Orbit()
	if mid.Distance == start.Distance {
		t.Error("distance did not move mid-animation")
	}

	for i := 0; i < 20 && w.Update(0.1); i++ {
	}
	end := w.Orbit()
	assertNearTol(t, "final distance", end.Distance, 4, 1e-3)
	assertNearTol(t, "final elevation", end.Elevation, 0.2, 1e-3)
	assertNearTol(t, "final azimuth", end.Azimuth, 2.0, 1e-3)

	if w.Update(0.1) {
		t.Error("Update still active after animation completed")
	}
}

func TestWidgetSaveFrame(t *testing.T) {
	w, _ := testWidget()
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := w.SaveFrame(path); err != nil {
		t.Fatalf("SaveFrame: %v", err)
	}
	pb, err := loadPixels(path)
	if err != nil {
		t.Fatalf("load saved frame: %v", err)
	}
	if pb.Width != 64 || pb.Height != 48 {
		t.Errorf("saved frame = %dx%d, want 64x48", pb.Width, pb.Height)
	}
}

func TestWidgetFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 100
	cfg.Height = 80
	cfg.Camera.Distance = 5
	cfg.Effects.Vignette = true

	e := NewSoftEngine()
	w := NewWidgetFromConfig(e, ContextPrimary, cfg)
	w.Initialize()

	assertNear(t, "distance", w.Orbit().Distance, 5)
	gw, gh := e.Resolution()
	if gw != 100 || gh != 80 {
		t.Errorf("engine resolution = %dx%d, want 100x80", gw, gh)
	}
	if len(e.effects) != 1 || e.effects[0].Kind != EffectVignette {
		t.Errorf("config effects not applied: %v", e.effects)
	}
}
