package ebitengine

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vantage3d/vantage"
)

func TestProjectPointCenter(t *testing.T) {
	o := vantage.DefaultOrbit()
	vp := vantage.PerspectiveMatrix(100, 100).Mul4(o.Pose().ViewMatrix())

	// The orbit target projects to the screen center.
	p, depth, ok := projectPoint(vp, o.Target, 100, 100)
	if !ok {
		t.Fatal("target not visible")
	}
	if math.Abs(p[0]-50) > 1e-6 || math.Abs(p[1]-50) > 1e-6 {
		t.Errorf("target projects to (%v, %v), want (50, 50)", p[0], p[1])
	}
	if math.Abs(depth-o.Distance) > 1e-9 {
		t.Errorf("depth = %v, want orbit distance %v", depth, o.Distance)
	}
}

func TestProjectPointBehindCamera(t *testing.T) {
	o := vantage.Orbit{Distance: 5}
	vp := vantage.PerspectiveMatrix(64, 64).Mul4(o.Pose().ViewMatrix())

	// A point behind the eye must be culled.
	if _, _, ok := projectPoint(vp, mgl64.Vec3{10, 0, 0}, 64, 64); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestProjectPointYAxisPointsDown(t *testing.T) {
	o := vantage.Orbit{Distance: 5}
	vp := vantage.PerspectiveMatrix(64, 64).Mul4(o.Pose().ViewMatrix())

	// Camera on +X looking at the origin with +Z up: a raised point must
	// land above the center, which is a smaller screen y.
	p, _, ok := projectPoint(vp, mgl64.Vec3{0, 0, 1}, 64, 64)
	if !ok {
		t.Fatal("raised point not visible")
	}
	if p[1] >= 32 {
		t.Errorf("raised point at screen y %v, want above center (< 32)", p[1])
	}
}

func TestPassForCoversEveryKind(t *testing.T) {
	pool := &imagePool{}
	kinds := []vantage.EffectKind{
		vantage.EffectBloom,
		vantage.EffectColorCorrection,
		vantage.EffectVignette,
		vantage.EffectFilmGrain,
		vantage.EffectChromaticAberration,
		vantage.EffectSharpen,
	}
	for _, k := range kinds {
		fx := vantage.Effect{Kind: k}
		if passFor(fx, pool) == nil {
			t.Errorf("no pass for %s", k)
		}
	}
}

func TestPoolKeyDistinguishesDimensions(t *testing.T) {
	if poolKey(64, 32) == poolKey(32, 64) {
		t.Error("pool key collides for transposed dimensions")
	}
	if poolKey(1, 1) == poolKey(1, 2) {
		t.Error("pool key collides for different heights")
	}
}

func TestEngineSceneStateWithoutRendering(t *testing.T) {
	e := New()
	if e.HasCamera() {
		t.Error("fresh engine has a camera")
	}

	e.SetCameraPose(vantage.DefaultOrbit().Pose())
	if !e.HasCamera() {
		t.Error("camera not bound")
	}

	e.AddMesh(vantage.NewCube("cube", 1))
	e.AddLight(vantage.LightSpec{Direction: mgl64.Vec3{0, 0, -1}, Energy: 1, Color: vantage.ColorWhite})
	if len(e.Meshes()) != 1 {
		t.Errorf("meshes = %d, want 1", len(e.Meshes()))
	}

	e.Clear()
	if len(e.Meshes()) != 0 || e.HasCamera() {
		t.Error("Clear left scene state behind")
	}

	e.Configure(vantage.RenderSettings{Width: 320, Height: 240})
	w, h := e.Resolution()
	if w != 320 || h != 240 {
		t.Errorf("resolution = %dx%d, want 320x240", w, h)
	}
}

func TestEngineSetEffectsBuildsPasses(t *testing.T) {
	e := New()
	e.SetEffects([]vantage.Effect{
		{Kind: vantage.EffectVignette},
		{Kind: vantage.EffectBloom},
	})
	if len(e.passes) != 2 {
		t.Errorf("passes = %d, want 2", len(e.passes))
	}
	e.SetEffects(nil)
	if len(e.passes) != 0 {
		t.Errorf("passes after clear = %d, want 0", len(e.passes))
	}
}
