package vantage

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Default orbit parameters, matching the original interactive viewer:
// distance 8 with the camera raised ~63 degrees and swung 45 degrees.
const (
	DefaultDistance  = 8.0
	DefaultElevation = 1.1
	DefaultAzimuth   = 0.785
)

// Orbit describes a camera position on a sphere around a target point:
// distance from the target, elevation angle above the XY plane, and
// azimuth angle around the world Z axis. Angles are in radians.
type Orbit struct {
	Distance  float64
	Elevation float64
	Azimuth   float64
	Target    mgl64.Vec3
}

// DefaultOrbit returns the starting orbit used by a fresh widget session.
func DefaultOrbit() Orbit {
	return Orbit{Distance: DefaultDistance, Elevation: DefaultElevation, Azimuth: DefaultAzimuth}
}

// Pose is a camera placement: a world-space position and an orientation.
// The camera convention is forward along local -Z with local +Y up,
// oriented so that forward points at the orbit target with world +Z as
// the up reference.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Forward returns the camera's forward direction (local -Z in world space).
func (p Pose) Forward() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Up returns the camera's up direction (local +Y in world space).
func (p Pose) Up() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}

// ViewMatrix returns the world-to-camera transform for this pose.
func (p Pose) ViewMatrix() mgl64.Mat4 {
	rot := p.Rotation.Inverse().Mat4()
	trans := mgl64.Translate3D(-p.Position.X(), -p.Position.Y(), -p.Position.Z())
	return rot.Mul4(trans)
}

// Position converts the orbit parameters to a Cartesian eye position:
//
//	x = target.x + d·cos(elevation)·cos(azimuth)
//	y = target.y + d·cos(elevation)·sin(azimuth)
//	z = target.z + d·sin(elevation)
func (o Orbit) Position() mgl64.Vec3 {
	cosEl := math.Cos(o.Elevation)
	return mgl64.Vec3{
		o.Target.X() + o.Distance*cosEl*math.Cos(o.Azimuth),
		o.Target.Y() + o.Distance*cosEl*math.Sin(o.Azimuth),
		o.Target.Z() + o.Distance*math.Sin(o.Elevation),
	}
}

// Pose converts the orbit parameters to a full camera pose looking at the
// orbit target. Near the poles (forward nearly parallel to world +Z) the
// up reference switches to world +Y to keep the look-at well defined.
func (o Orbit) Pose() Pose {
	eye := o.Position()
	up := mgl64.Vec3{0, 0, 1}
	if math.Abs(math.Cos(o.Elevation)) < 1e-6 {
		up = mgl64.Vec3{0, 1, 0}
	}
	rot := mgl64.QuatLookAtV(eye, o.Target, up)
	return Pose{Position: eye, Rotation: rot}
}

// OrbitFromPosition recovers orbit parameters from a Cartesian position
// relative to a target. The degenerate zero-distance case returns all-zero
// angles rather than an undefined atan2 result.
func OrbitFromPosition(position, target mgl64.Vec3) Orbit {
	d := position.Sub(target)
	dist := d.Len()
	o := Orbit{Distance: dist, Target: target}
	if dist == 0 {
		return o
	}
	o.Elevation = math.Atan2(d.Z(), math.Hypot(d.X(), d.Y()))
	o.Azimuth = math.Atan2(d.Y(), d.X())
	return o
}
