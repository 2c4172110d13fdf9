package combat

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/phys"
)

// ResolveAim turns the camera-forward ray into the point a shot from the
// muzzle should converge on. In third person the camera and muzzle diverge,
// so two corrections apply: geometry between the muzzle and the aim point
// clamps the aim point to the occluder, and an aim point behind the muzzle
// relative to the camera facing rejects the shot entirely.
func ResolveAim(w *phys.World, camPos, camDir, muzzle mgl32.Vec3, excludeCollider phys.ColliderHandle, excludeBody phys.BodyHandle) (mgl32.Vec3, bool) {
	aim := camPos.Add(camDir.Mul(game.RenderDistance))
	if w != nil && w.Ready() {
		if hit := w.CastRay(phys.Ray{Origin: camPos, Dir: camDir}, game.RenderDistance, excludeCollider, excludeBody); hit != nil {
			aim = hit.Position
		}

		toAim := aim.Sub(muzzle)
		if dist := toAim.Len(); dist > 1e-4 {
			dir := toAim.Mul(1 / dist)
			if hit := w.CastRay(phys.Ray{Origin: muzzle, Dir: dir}, dist-1e-3, excludeCollider, excludeBody); hit != nil {
				aim = hit.Position
			}
		}
	}

	if aim.Sub(muzzle).Dot(camDir) <= 0 {
		return mgl32.Vec3{}, false
	}
	return aim, true
}

// PelletDirection perturbs the base direction by a uniformly sampled point
// inside a cone of the given half-angle.
func PelletDirection(rng *rand.Rand, base mgl32.Vec3, spread float32) mgl32.Vec3 {
	if spread <= 0 {
		return base.Normalize()
	}
	u, v := game.PerpendicularBasis(base)
	// Uniform over the cone's solid angle cross-section: sqrt for radius,
	// uniform azimuth.
	r := math32.Sqrt(rng.Float32()) * math32.Tan(spread)
	azimuth := 2 * math32.Pi * rng.Float32()
	offset := u.Mul(r * math32.Cos(azimuth)).Add(v.Mul(r * math32.Sin(azimuth)))
	return base.Normalize().Add(offset).Normalize()
}
