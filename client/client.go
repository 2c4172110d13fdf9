// Package client assembles the game modes: each mode owns a physics world,
// a built level, the local player controller and the camera rigs for its
// lifetime. The host drives it with one Frame call per render frame and a
// Close on exit; both survive the double setup/teardown invocations an
// aggressive host lifecycle can produce.
package client

import (
	"github.com/chewxy/math32"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/gridlock-gg/gridlock/camera"
	"github.com/gridlock-gg/gridlock/combat"
	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/level"
	"github.com/gridlock-gg/gridlock/mapdef"
	"github.com/gridlock-gg/gridlock/phys"
	"github.com/gridlock-gg/gridlock/remote"
	"github.com/gridlock-gg/gridlock/sim"
)

const (
	orbitDistance  = 4.5
	tracerPoolSize = 32
)

// Mode is one running game mode.
type Mode struct {
	variant sim.Variant
	log     *logrus.Logger

	w     *phys.World
	lvl   *level.Level
	cache *level.Cache
	// ownsCache is set for modes whose maps vary per session; their cache
	// is disposed on Close. Shared caches outlive the mode.
	ownsCache bool

	ctrl     *sim.Controller
	orbit    *camera.Orbit
	fp       *camera.FirstPerson
	registry *remote.Registry

	// Shooter mode only; nil elsewhere.
	gun     *combat.GunState
	tracers *combat.TracerPool

	closed *atomic.Bool
}

// NewFreeplay starts free practice on a map with a shared, process-lifetime
// geometry cache.
func NewFreeplay(m *mapdef.Map, cache *level.Cache, log *logrus.Logger) (*Mode, error) {
	return newMode(sim.VariantFreeplay, m, cache, false, nil, log)
}

// NewRace starts a race on a map. Race maps vary per room, so the mode
// owns its cache and disposes it on Close.
func NewRace(m *mapdef.Map, events sim.Events, log *logrus.Logger) (*Mode, error) {
	return newMode(sim.VariantRace, m, level.NewCache(), true, events, log)
}

// NewShooter starts a shooter round. Cache ownership matches race.
func NewShooter(m *mapdef.Map, events sim.Events, log *logrus.Logger) (*Mode, error) {
	return newMode(sim.VariantShooter, m, level.NewCache(), true, events, log)
}

func newMode(variant sim.Variant, m *mapdef.Map, cache *level.Cache, ownsCache bool, events sim.Events, log *logrus.Logger) (*Mode, error) {
	w := phys.NewWorld(mgl32.Vec3{0, game.Gravity, 0})
	lvl := level.Build(w, m, cache, log)
	ctrl, err := sim.NewController(w, lvl, variant, events, log)
	if err != nil {
		// Failed init never leaves a half-built world behind.
		w.Free()
		if ownsCache {
			cache.Dispose()
		}
		return nil, err
	}
	mode := &Mode{
		variant:   variant,
		log:       log,
		w:         w,
		lvl:       lvl,
		cache:     cache,
		ownsCache: ownsCache,
		ctrl:      ctrl,
		orbit:     camera.NewOrbit(w, orbitDistance),
		fp:        camera.NewFirstPerson(),
		registry:  remote.NewRegistry(),
		closed:    atomic.NewBool(false),
	}
	if variant == sim.VariantShooter {
		mode.gun = combat.NewGunState(combat.Arsenal[combat.Rifle])
		mode.tracers = combat.NewTracerPool(tracerPoolSize)
	}
	return mode, nil
}

// Variant returns which game mode's rules this mode runs under.
func (m *Mode) Variant() sim.Variant { return m.variant }

// Controller returns the local player controller.
func (m *Mode) Controller() *sim.Controller { return m.ctrl }

// Level returns the built level.
func (m *Mode) Level() *level.Level { return m.lvl }

// World returns the mode's physics world.
func (m *Mode) World() *phys.World { return m.w }

// Orbit returns the third-person camera rig.
func (m *Mode) Orbit() *camera.Orbit { return m.orbit }

// FirstPerson returns the aim camera rig.
func (m *Mode) FirstPerson() *camera.FirstPerson { return m.fp }

// Registry returns the remote player registry the session feeds.
func (m *Mode) Registry() *remote.Registry { return m.registry }

// Gun returns the shooter mode's weapon state, nil in other modes.
func (m *Mode) Gun() *combat.GunState { return m.gun }

// Tracers returns the shooter mode's tracer pool, nil in other modes.
func (m *Mode) Tracers() *combat.TracerPool { return m.tracers }

// EquipWeapon swaps in a fresh gun of the given kind. No-op outside
// shooter mode.
func (m *Mode) EquipWeapon(kind combat.WeaponKind) {
	if m.gun == nil {
		return
	}
	m.gun = combat.NewGunState(combat.Arsenal[kind])
}

// Frame advances one render frame: simulation step, remote interpolation
// and camera update, in that order. Frames on a closed or tearing-down
// mode are skipped; a panic inside the frame is reported, not propagated
// into the renderer.
func (m *Mode) Frame(dt float32, in sim.Input) {
	if m.closed.Load() || !m.w.Ready() {
		return
	}
	defer sentry.Recover()

	in.Yaw = m.orbit.Yaw()

	aim := camera.AimOff
	if m.gun != nil {
		aim = m.stepCombat(dt, &in)
	}

	m.ctrl.Step(dt, in)
	m.registry.Advance(dt)

	pose := m.ctrl.Pose()
	head := pose.Foot.Add(mgl32.Vec3{0, m.fp.EyeHeight(), 0})
	m.orbit.Update(head, m.ctrl.Body().Collider(), m.ctrl.Body().Handle())
	m.fp.Update(dt, m.ctrl.Posture(), aim)
}

// stepCombat runs the gun state machine and the tracers for this frame,
// then rewrites the input's combat flags to the gun's actual state so the
// animation layer sees a reload for its whole duration rather than a single
// button press. Returns the aim mode the camera should use.
func (m *Mode) stepCombat(dt float32, in *sim.Input) camera.AimMode {
	m.gun.Update(dt)
	m.tracers.Advance(m.w, dt, m.ctrl.Body().Collider(), m.ctrl.Body().Handle())

	if in.Reload {
		m.gun.StartReload()
	}
	fired := false
	if m.gun.CanFire(in.Fire) {
		m.fireShot(in.Aim)
		fired = true
	}

	aim := camera.AimOff
	if in.Aim {
		aim = camera.AimToggle
		if m.gun.Weapon().Kind == combat.Sniper {
			aim = camera.AimSniper
		}
	}
	in.Fire = fired
	in.Reload = m.gun.Reloading()
	return aim
}

// fireShot spends one trigger pull: resolve the aim point from the orbit
// camera's ray, then spawn one tracer per pellet from the muzzle. A shot
// whose aim point lands behind the muzzle still consumes the round.
func (m *Mode) fireShot(aiming bool) {
	pose := m.ctrl.Pose()
	muzzle := pose.Foot.Add(mgl32.Vec3{0, m.fp.EyeHeight(), 0})
	camPos := m.orbit.Position()
	camDir := game.DirectionVector(m.orbit.Yaw(), -m.orbit.Pitch())
	exclC, exclB := m.ctrl.Body().Collider(), m.ctrl.Body().Handle()

	m.gun.Fire()
	target, ok := combat.ResolveAim(m.w, camPos, camDir, muzzle, exclC, exclB)
	if !ok {
		return
	}

	speed := math32.Sqrt(game.Vec3HzDistSqr(pose.Velocity))
	spread := m.gun.Spread(aiming, m.ctrl.Posture(), speed)
	base := target.Sub(muzzle)
	for i := 0; i < m.gun.Weapon().Pellets; i++ {
		m.tracers.Spawn(muzzle, m.gun.PelletDirection(base, spread))
	}
}

// Look feeds a pointer delta into the orbit camera.
func (m *Mode) Look(dyaw, dpitch float32) {
	m.orbit.Rotate(dyaw, dpitch)
}

// Close frees the physics world and, for per-session maps, the geometry
// cache. The closed flag flips before the world is released so an
// in-flight frame observes it and skips; a second Close is a no-op.
func (m *Mode) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.w.Free()
	if m.ownsCache {
		m.cache.Dispose()
	}
}
