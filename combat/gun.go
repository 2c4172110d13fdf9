package combat

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/sim"
)

// GunState is the per-player mutable weapon state: ammo, reload progress
// and the two accumulators. Owned by the local player's frame loop.
type GunState struct {
	weapon Weapon

	ammo       int
	reloading  bool
	reloadLeft float32
	sinceShot  float32

	spreadAccum float32
	recoilPitch float32

	rng *rand.Rand
}

// NewGunState returns a full, idle gun.
func NewGunState(w Weapon) *GunState {
	return &GunState{
		weapon:    w,
		ammo:      w.MagSize,
		sinceShot: 1e9,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Weapon returns the static definition.
func (g *GunState) Weapon() Weapon { return g.weapon }

// Ammo returns rounds left in the magazine.
func (g *GunState) Ammo() int { return g.ammo }

// Reloading reports whether a reload is in progress.
func (g *GunState) Reloading() bool { return g.reloading }

// RecoilPitch returns the camera pitch kick to apply this frame.
func (g *GunState) RecoilPitch() float32 { return g.recoilPitch }

// Update advances timers: fire interval, reload completion, spread decay
// and recoil recovery.
func (g *GunState) Update(dt float32) {
	g.sinceShot += dt

	if g.reloading {
		g.reloadLeft -= dt
		if g.reloadLeft <= 0 {
			g.reloading = false
			g.ammo = g.weapon.MagSize
		}
	}

	// Spread only bleeds off between shots; sustained fire at the full rate
	// keeps the accumulator growing toward its cap.
	if g.sinceShot > 1/g.weapon.FireRate {
		g.spreadAccum -= g.weapon.SpreadDecay * dt
		if g.spreadAccum < 0 {
			g.spreadAccum = 0
		}
	}
	g.recoilPitch -= g.weapon.RecoilRecovery * dt
	if g.recoilPitch < 0 {
		g.recoilPitch = 0
	}
}

// StartReload begins a reload unless one is running or the magazine is
// already full.
func (g *GunState) StartReload() bool {
	if g.reloading || g.ammo == g.weapon.MagSize {
		return false
	}
	g.reloading = true
	g.reloadLeft = g.weapon.ReloadSeconds
	return true
}

// CanFire checks the fire gate: trigger held, ammo available, no reload in
// progress and the fire interval elapsed.
func (g *GunState) CanFire(trigger bool) bool {
	return trigger &&
		g.ammo > 0 &&
		!g.reloading &&
		g.sinceShot >= 1/g.weapon.FireRate
}

// Spread returns this shot's total angular spread for the given stance.
func (g *GunState) Spread(aiming bool, posture sim.Posture, moveSpeed float32) float32 {
	spread := g.weapon.BaseSpread
	if aiming {
		spread *= aimSpreadMult
	}
	switch posture {
	case sim.PostureSitting:
		spread *= sitSpreadMult
	case sim.PostureCrawling:
		spread *= crawlSpreadMult
	}
	spread += moveSpeed * movementSpreadRate
	return spread + g.spreadAccum
}

// PelletDirection samples one pellet's direction for this shot from the
// gun's own random stream.
func (g *GunState) PelletDirection(base mgl32.Vec3, spread float32) mgl32.Vec3 {
	return PelletDirection(g.rng, base, spread)
}

// Fire consumes one round and bumps both accumulators toward their caps.
// Callers must have checked CanFire.
func (g *GunState) Fire() {
	g.ammo--
	g.sinceShot = 0

	g.spreadAccum += g.weapon.SpreadPerShot
	if g.spreadAccum > g.weapon.SpreadCap {
		g.spreadAccum = g.weapon.SpreadCap
	}
	g.recoilPitch += g.weapon.RecoilPerShot
	if g.recoilPitch > g.weapon.RecoilCap {
		g.recoilPitch = g.weapon.RecoilCap
	}
}
