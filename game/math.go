package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DirectionVector returns a unit direction vector from the given yaw and
// pitch values, both in radians. Yaw zero faces +Z, positive pitch looks
// up, consistent with RotateY.
func DirectionVector(yaw, pitch float32) mgl32.Vec3 {
	m := math32.Cos(pitch)
	return mgl32.Vec3{
		m * math32.Sin(yaw),
		math32.Sin(pitch),
		m * math32.Cos(yaw),
	}
}

// Vec3HzDistSqr returns the squared horizontal distance in a vector.
func Vec3HzDistSqr(v mgl32.Vec3) float32 {
	return v.X()*v.X() + v.Z()*v.Z()
}

// SmoothFactor converts a per-second smoothing speed into a frame-rate
// independent lerp factor for the given frame delta.
func SmoothFactor(speed, dt float32) float32 {
	return 1 - math32.Exp(-speed*dt)
}

// ExpLerp moves from towards to by a frame-rate independent exponential
// smoothing step.
func ExpLerp(from, to, speed, dt float32) float32 {
	return from + (to-from)*SmoothFactor(speed, dt)
}

// ExpLerpVec3 moves from towards to by a frame-rate independent exponential
// smoothing step.
func ExpLerpVec3(from, to mgl32.Vec3, speed, dt float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(SmoothFactor(speed, dt)))
}

// ClampFloat clamps val between min and max.
func ClampFloat(val, min, max float32) float32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// WrapAngle wraps an angle in radians to (-pi, pi].
func WrapAngle(a float32) float32 {
	for a > math32.Pi {
		a -= 2 * math32.Pi
	}
	for a <= -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}

// LerpAngle interpolates between two angles in radians along the shortest
// arc by the given factor.
func LerpAngle(from, to, t float32) float32 {
	return from + WrapAngle(to-from)*t
}

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}

// Float32ApproxEq determines whether two floating point numbers are close
// enough to each other by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Vec3ApproxEq determines whether all components of two vectors are within
// 1e-5 of each other.
func Vec3ApproxEq(a, b mgl32.Vec3) bool {
	return Float32ApproxEq(a[0], b[0]) && Float32ApproxEq(a[1], b[1]) && Float32ApproxEq(a[2], b[2])
}

// IsFiniteVec3 reports whether every component of v is a finite number.
// Snapshot transports can legitimately deliver transient garbage.
func IsFiniteVec3(v mgl32.Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// SnapToGrid snaps a value to the nearest multiple of GridStep. Snapping is
// idempotent: SnapToGrid(SnapToGrid(x)) == SnapToGrid(x).
func SnapToGrid(v float32) float32 {
	return math32.Round(v/GridStep) * GridStep
}

// SnapVec3ToGrid snaps all components of a vector to the placement grid.
func SnapVec3ToGrid(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{SnapToGrid(v[0]), SnapToGrid(v[1]), SnapToGrid(v[2])}
}

// DominantAxis returns the index of the component of v with the largest
// absolute value, and the sign of that component.
func DominantAxis(v mgl32.Vec3) (axis int, sign float32) {
	axis = 0
	best := math32.Abs(v[0])
	for i := 1; i < 3; i++ {
		if a := math32.Abs(v[i]); a > best {
			best = a
			axis = i
		}
	}
	if v[axis] < 0 {
		return axis, -1
	}
	return axis, 1
}

// PerpendicularBasis returns two unit vectors perpendicular to dir and to
// each other. dir must be non-zero.
func PerpendicularBasis(dir mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ref := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir.Normalize().Dot(ref)) > 0.99 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	u := dir.Cross(ref).Normalize()
	v := dir.Cross(u).Normalize()
	return u, v
}

// RotateY rotates a vector around the world Y axis by the given angle in
// radians.
func RotateY(v mgl32.Vec3, angle float32) mgl32.Vec3 {
	sin, cos := math32.Sincos(angle)
	return mgl32.Vec3{
		v[0]*cos + v[2]*sin,
		v[1],
		-v[0]*sin + v[2]*cos,
	}
}
