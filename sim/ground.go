package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/phys"
)

// groundRayOffsets are the horizontal offsets of the five ground probes:
// the capsule center plus four lateral points. A single center ray misses
// support on ramps and ledges where the center overhangs an edge.
var groundRayOffsets = [5][2]float32{
	{0, 0},
	{game.GroundRayOffset, 0},
	{-game.GroundRayOffset, 0},
	{0, game.GroundRayOffset},
	{0, -game.GroundRayOffset},
}

// CheckGrounded probes below the capsule with five short downward rays,
// excluding the player's own body. True as soon as any ray hits.
func CheckGrounded(w *phys.World, body *phys.RigidBody, posture Posture) bool {
	if w == nil || !w.Ready() || body == nil || !body.Alive() {
		return false
	}
	center := body.Translation()
	bottom := center.Y() - CenterOffset(posture) + game.GroundRayLift
	down := mgl32.Vec3{0, -1, 0}
	for _, off := range groundRayOffsets {
		ray := phys.Ray{
			Origin: mgl32.Vec3{center.X() + off[0], bottom, center.Z() + off[1]},
			Dir:    down,
		}
		if w.CastRay(ray, game.GroundRayLength, body.Collider(), body.Handle()) != nil {
			return true
		}
	}
	return false
}

// UpdatePlayerCollider swaps the body's capsule for a new posture. The body
// is re-translated so the foot world Y is identical before and after the
// swap: groundY is computed with the old posture's center offset and the
// new center sits at groundY plus the new offset. Returns false when the
// world or body is not in a usable state; the frame is then skipped.
func UpdatePlayerCollider(w *phys.World, body *phys.RigidBody, old, new Posture) bool {
	if w == nil || !w.Ready() || body == nil || !body.Alive() {
		return false
	}
	if !w.ColliderAlive(body.Collider()) {
		return false
	}
	pos := body.Translation()
	groundY := pos.Y() - CenterOffset(old)

	w.RemoveCollider(body.Collider(), true)
	body.SetTranslation(mgl32.Vec3{pos.X(), groundY + CenterOffset(new), pos.Z()})
	return w.AttachCollider(body, CapsuleFor(new)) != (phys.ColliderHandle{})
}
