package game

import "math"

// Vec3 is a world-space position or velocity. X and Z span the ground plane;
// Y is vertical and is owned by the terrain clamp.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// LenXZ returns the planar (ground-plane) length.
func (v Vec3) LenXZ() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

// DistXZ returns the planar distance to o.
func (v Vec3) DistXZ(o Vec3) float64 {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// NormXZ returns the planar unit vector, or the zero vector when v is
// (near) zero length.
func (v Vec3) NormXZ() Vec3 {
	l := v.LenXZ()
	if l < 1e-9 {
		return Vec3{}
	}
	return Vec3{X: v.X / l, Z: v.Z / l}
}

// ClampLenXZ limits the planar magnitude of v to max.
func (v Vec3) ClampLenXZ(max float64) Vec3 {
	l := v.LenXZ()
	if l <= max || l < 1e-9 {
		return v
	}
	s := max / l
	return Vec3{X: v.X * s, Y: v.Y, Z: v.Z * s}
}

// HeadingTo returns the planar heading (radians) from (x0,z0) toward (x1,z1).
func HeadingTo(x0, z0, x1, z1 float64) float64 {
	return math.Atan2(z1-z0, x1-x0)
}

// TurnToward rotates heading toward target by at most maxStep radians,
// taking the short way around.
func TurnToward(heading, target, maxStep float64) float64 {
	diff := math.Mod(target-heading+3*math.Pi, 2*math.Pi) - math.Pi
	if diff > maxStep {
		diff = maxStep
	}
	if diff < -maxStep {
		diff = -maxStep
	}
	return heading + diff
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
