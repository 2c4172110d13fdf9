// Package camera implements the third-person orbit rig and the
// first-person/aim rig. Rigs read the published pose every frame and never
// touch simulation state.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/phys"
	"github.com/gridlock-gg/gridlock/sim"
)

const (
	// Orbit pitch limits, radians.
	PitchMin float32 = -0.5
	PitchMax float32 = 1.2

	// Fixed per-frame position lerp. This camera is cosmetic, not
	// authoritative, so frame-rate dependence is tolerable here.
	orbitAlpha float32 = 0.1

	// Pullback from an occluding wall and from the near plane.
	occlusionPad float32 = 0.2
	nearPad      float32 = 0.15
)

// Orbit is the third-person camera: a spherical offset around the player's
// head with wall occlusion handling.
type Orbit struct {
	w *phys.World

	yaw      float32
	pitch    float32
	distance float32

	// Over-the-shoulder look offset in view space: x sideways, y up.
	shoulder mgl32.Vec2

	pos         mgl32.Vec3
	initialized bool
}

// NewOrbit creates an orbit rig at the given follow distance.
func NewOrbit(w *phys.World, distance float32) *Orbit {
	return &Orbit{w: w, distance: distance, shoulder: mgl32.Vec2{0.4, 0.3}}
}

// Rotate applies a look delta, clamping pitch to the playable range.
func (o *Orbit) Rotate(dyaw, dpitch float32) {
	o.yaw = game.WrapAngle(o.yaw + dyaw)
	o.pitch = game.ClampFloat(o.pitch+dpitch, PitchMin, PitchMax)
}

// Yaw returns the orbit yaw, which also drives camera-relative movement.
func (o *Orbit) Yaw() float32 { return o.yaw }

// Pitch returns the clamped orbit pitch.
func (o *Orbit) Pitch() float32 { return o.pitch }

// Update recomputes the camera position for this frame. head is the
// player's eye point; exclude keeps the player's own capsule out of the
// occlusion rays.
func (o *Orbit) Update(head mgl32.Vec3, excludeCollider phys.ColliderHandle, excludeBody phys.BodyHandle) {
	// Orbit pitch raises the camera, so the view direction pitches down.
	forward := game.DirectionVector(o.yaw, -o.pitch)
	back := forward.Mul(-1)
	dist := o.distance

	// Wall occlusion: never put the camera behind geometry.
	if o.w != nil && o.w.Ready() {
		if hit := o.w.CastRay(phys.Ray{Origin: head, Dir: back}, dist, excludeCollider, excludeBody); hit != nil {
			dist = hit.Distance - occlusionPad
			if dist < 0 {
				dist = 0
			}
		}
	}
	target := head.Add(back.Mul(dist))

	// Near-plane guard: a short ray along the view direction from the
	// final position pulls the camera off any surface it ended up against.
	if o.w != nil && o.w.Ready() {
		if hit := o.w.CastRay(phys.Ray{Origin: target, Dir: forward}, nearPad, excludeCollider, excludeBody); hit != nil {
			target = target.Add(forward.Mul(nearPad - hit.Distance))
		}
	}

	if !o.initialized {
		o.pos = target
		o.initialized = true
		return
	}
	o.pos = o.pos.Add(target.Sub(o.pos).Mul(orbitAlpha))
}

// Position returns the smoothed camera position.
func (o *Orbit) Position() mgl32.Vec3 { return o.pos }

// LookTarget returns the point the camera aims at: the head, pushed
// sideways and up in view space for an over-the-shoulder composition.
func (o *Orbit) LookTarget(head mgl32.Vec3) mgl32.Vec3 {
	right := game.RotateY(mgl32.Vec3{1, 0, 0}, o.yaw)
	return head.Add(right.Mul(o.shoulder.X())).Add(mgl32.Vec3{0, o.shoulder.Y(), 0})
}

// AimMode selects the first-person rig's offset table.
type AimMode uint8

const (
	AimOff AimMode = iota
	// AimFirstPerson is the true first-person view.
	AimFirstPerson
	// AimToggle is the over-the-shoulder third-person aim.
	AimToggle
	// AimSniper is scoped aim with a narrowed field of view.
	AimSniper
)

const (
	// Field of view, degrees.
	FOVDefault float32 = 75
	FOVScoped  float32 = 30

	eyeHeightSmoothing float32 = 12
	fovSmoothing       float32 = 10
)

// eyeHeights is the per-posture eye height above the feet.
var eyeHeights = [...]float32{
	sim.PostureStanding: 1.65,
	sim.PostureSitting:  1.15,
	sim.PostureCrawling: 0.5,
}

// aimOffsets is the view-space camera offset per mode: x sideways, y up,
// z back from the eye point.
var aimOffsets = [...]mgl32.Vec3{
	AimOff:         {},
	AimFirstPerson: {},
	AimToggle:      {0.5, 0.1, 1.2},
	AimSniper:      {},
}

// FirstPerson is the aim rig. Position tracks the player directly with no
// smoothing, because aim latency is immediately felt; only eye height and
// field of view interpolate.
type FirstPerson struct {
	eyeHeight float32
	fov       float32
}

// NewFirstPerson returns a rig at standing eye height and the default FOV.
func NewFirstPerson() *FirstPerson {
	return &FirstPerson{eyeHeight: eyeHeights[sim.PostureStanding], fov: FOVDefault}
}

// Update advances the smoothed eye height and FOV for this frame.
func (f *FirstPerson) Update(dt float32, posture sim.Posture, mode AimMode) {
	f.eyeHeight = game.ExpLerp(f.eyeHeight, eyeHeights[posture], eyeHeightSmoothing, dt)
	targetFOV := FOVDefault
	if mode == AimSniper {
		targetFOV = FOVScoped
	}
	f.fov = game.ExpLerp(f.fov, targetFOV, fovSmoothing, dt)
}

// Position returns the camera position for the frame: the eye point plus
// the mode's view-space offset. Never smoothed.
func (f *FirstPerson) Position(foot mgl32.Vec3, yaw float32, mode AimMode) mgl32.Vec3 {
	eye := foot.Add(mgl32.Vec3{0, f.eyeHeight, 0})
	off := aimOffsets[mode]
	if off == (mgl32.Vec3{}) {
		return eye
	}
	right := game.RotateY(mgl32.Vec3{1, 0, 0}, yaw)
	back := game.RotateY(mgl32.Vec3{0, 0, -1}, yaw)
	return eye.Add(right.Mul(off.X())).Add(mgl32.Vec3{0, off.Y(), 0}).Add(back.Mul(off.Z()))
}

// EyeHeight returns the current smoothed eye height.
func (f *FirstPerson) EyeHeight() float32 { return f.eyeHeight }

// FOV returns the current smoothed field of view in degrees.
func (f *FirstPerson) FOV() float32 { return f.fov }

// CrosshairVisible reports whether the HUD should draw the crosshair.
// Scoped aim draws the scope overlay instead.
func (f *FirstPerson) CrosshairVisible(mode AimMode) bool {
	return mode != AimSniper
}
