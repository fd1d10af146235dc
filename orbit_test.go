package vantage

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertNearTol(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tolerance %v)", name, got, want, tol)
	}
}

func assertVec3Near(t *testing.T, name string, got, want mgl64.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Position ---

func TestOrbitPositionAlongX(t *testing.T) {
	o := Orbit{Distance: 5}
	assertVec3Near(t, "position", o.Position(), mgl64.Vec3{5, 0, 0})
}

func TestOrbitPositionTopDown(t *testing.T) {
	o := Orbit{Distance: 3, Elevation: math.Pi / 2}
	p := o.Position()
	assertNear(t, "x", p.X(), 0)
	assertNear(t, "y", p.Y(), 0)
	assertNear(t, "z", p.Z(), 3)
}

func TestOrbitPositionQuadrant(t *testing.T) {
	o := Orbit{Distance: 2, Azimuth: math.Pi / 2}
	p := o.Position()
	assertNear(t, "x", p.X(), 0)
	assertNear(t, "y", p.Y(), 2)
	assertNear(t, "z", p.Z(), 0)
}

func TestOrbitPositionOffsetTarget(t *testing.T) {
	o := Orbit{Distance: 5, Target: mgl64.Vec3{1, 2, 3}}
	assertVec3Near(t, "position", o.Position(), mgl64.Vec3{6, 2, 3})
}

func TestDefaultOrbit(t *testing.T) {
	o := DefaultOrbit()
	assertNear(t, "distance", o.Distance, 8.0)
	assertNear(t, "elevation", o.Elevation, 1.1)
	assertNear(t, "azimuth", o.Azimuth, 0.785)
}

// --- round trip ---

func TestOrbitRoundTrip(t *testing.T) {
	cases := []Orbit{
		{Distance: 8, Elevation: 1.1, Azimuth: 0.785},
		{Distance: 3, Elevation: -0.5, Azimuth: 2.0},
		{Distance: 12, Elevation: 0, Azimuth: -1.2},
		{Distance: 0.5, Elevation: 0.3, Azimuth: 3.0},
	}
	for _, want := range cases {
		got := OrbitFromPosition(want.Position(), mgl64.Vec3{})
		assertNearTol(t, "distance", got.Distance, want.Distance, 1e-12)
		assertNearTol(t, "elevation", got.Elevation, want.Elevation, 1e-12)
		assertNearTol(t, "azimuth", got.Azimuth, want.Azimuth, 1e-12)
	}
}

func TestOrbitRoundTripOffsetTarget(t *testing.T) {
	target := mgl64.Vec3{-2, 4, 1}
	want := Orbit{Distance: 6, Elevation: 0.8, Azimuth: -2.1, Target: target}
	got := OrbitFromPosition(want.Position(), target)
	assertNearTol(t, "distance", got.Distance, want.Distance, 1e-12)
	assertNearTol(t, "elevation", got.Elevation, want.Elevation, 1e-12)
	assertNearTol(t, "azimuth", got.Azimuth, want.Azimuth, 1e-12)
}

func TestOrbitFromPositionZeroDistance(t *testing.T) {
	got := OrbitFromPosition(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 2, 3})
	assertNear(t, "distance", got.Distance, 0)
	assertNear(t, "elevation", got.Elevation, 0)
	assertNear(t, "azimuth", got.Azimuth, 0)
}

// --- Pose ---

func TestPoseLooksAtTarget(t *testing.T) {
	o := Orbit{Distance: 8, Elevation: 1.1, Azimuth: 0.785}
	pose := o.Pose()

	toTarget := o.Target.Sub(pose.Position).Normalize()
	fwd := pose.Forward()
	for i := 0; i < 3; i++ {
		assertNearTol(t, "forward", fwd[i], toTarget[i], 1e-9)
	}
}

func TestPoseAtPoleDoesNotDegenerate(t *testing.T) {
	o := Orbit{Distance: 4, Elevation: math.Pi / 2}
	pose := o.Pose()

	fwd := pose.Forward()
	assertNearTol(t, "forward.z", fwd.Z(), -1, 1e-9)
	if math.IsNaN(pose.Rotation.W) {
		t.Fatal("pole pose produced NaN rotation")
	}
}

func TestViewMatrixMovesEyeToOrigin(t *testing.T) {
	o := Orbit{Distance: 7, Elevation: 0.6, Azimuth: 1.9}
	pose := o.Pose()
	view := pose.ViewMatrix()

	eye := view.Mul4x1(pose.Position.Vec4(1))
	assertNearTol(t, "eye.x", eye.X(), 0, 1e-9)
	assertNearTol(t, "eye.y", eye.Y(), 0, 1e-9)
	assertNearTol(t, "eye.z", eye.Z(), 0, 1e-9)
}

func TestViewMatrixTargetOnNegativeZ(t *testing.T) {
	o := Orbit{Distance: 5, Elevation: 0.4, Azimuth: -0.7}
	view := o.Pose().ViewMatrix()

	tgt := view.Mul4x1(o.Target.Vec4(1))
	assertNearTol(t, "target.x", tgt.X(), 0, 1e-9)
	assertNearTol(t, "target.y", tgt.Y(), 0, 1e-9)
	assertNearTol(t, "target.z", tgt.Z(), -5, 1e-9)
}
