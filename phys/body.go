package phys

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// BodyHandle identifies a rigid body by arena index and generation. The
// zero handle never resolves.
type BodyHandle struct {
	idx int
	gen uint32
}

// ColliderHandle identifies a collider by arena index and generation. The
// zero handle never resolves.
type ColliderHandle struct {
	idx int
	gen uint32
}

type bodySlot struct {
	gen  uint32
	live bool

	pos mgl32.Vec3
	vel mgl32.Vec3

	collider ColliderHandle

	gravityScale float32

	collideX, collideY, collideZ bool
}

type colliderSlot struct {
	gen  uint32
	live bool

	desc ColliderDesc
	pos  mgl32.Vec3

	// body is the owning body for dynamic colliders; the zero handle for
	// static level geometry.
	body BodyHandle

	// boxes are the precomputed world-space clip boxes of a static
	// collider. Dynamic colliders derive theirs from the body position.
	boxes []cube.BBox
}

// RigidBody is a generation-checked view over a body slot. Every accessor
// re-resolves the handle, so calls against a freed body or a torn-down
// world are safe no-ops.
type RigidBody struct {
	w *World
	h BodyHandle
}

// CreateRigidBody creates a dynamic body at the given translation.
func (w *World) CreateRigidBody(translation mgl32.Vec3) *RigidBody {
	if !w.Ready() {
		return &RigidBody{w: w}
	}
	idx := -1
	for i := range w.bodies {
		if !w.bodies[i].live {
			idx = i
			break
		}
	}
	if idx == -1 {
		w.bodies = append(w.bodies, bodySlot{})
		idx = len(w.bodies) - 1
	}
	slot := &w.bodies[idx]
	slot.gen++
	slot.live = true
	slot.pos = translation
	slot.vel = mgl32.Vec3{}
	slot.collider = ColliderHandle{}
	slot.gravityScale = 1
	return &RigidBody{w: w, h: BodyHandle{idx: idx, gen: slot.gen}}
}

// RemoveRigidBody frees a body and its attached collider. Removing an
// already-freed body is a no-op.
func (w *World) RemoveRigidBody(b *RigidBody) {
	slot := w.bodySlot(b.h)
	if slot == nil {
		return
	}
	w.RemoveCollider(slot.collider, false)
	slot.live = false
}

func (w *World) bodySlot(h BodyHandle) *bodySlot {
	if !w.Ready() || h.gen == 0 || h.idx < 0 || h.idx >= len(w.bodies) {
		return nil
	}
	slot := &w.bodies[h.idx]
	if !slot.live || slot.gen != h.gen {
		return nil
	}
	return slot
}

func (w *World) colliderSlot(h ColliderHandle) *colliderSlot {
	if !w.Ready() || h.gen == 0 || h.idx < 0 || h.idx >= len(w.colliders) {
		return nil
	}
	slot := &w.colliders[h.idx]
	if !slot.live || slot.gen != h.gen {
		return nil
	}
	return slot
}

// Alive reports whether the body still resolves in its world.
func (b *RigidBody) Alive() bool {
	return b != nil && b.w.bodySlot(b.h) != nil
}

// Handle returns the body's arena handle.
func (b *RigidBody) Handle() BodyHandle {
	if b == nil {
		return BodyHandle{}
	}
	return b.h
}

// Translation returns the body's current translation, or the zero vector if
// the body no longer resolves.
func (b *RigidBody) Translation() mgl32.Vec3 {
	if slot := b.w.bodySlot(b.h); slot != nil {
		return slot.pos
	}
	return mgl32.Vec3{}
}

// SetTranslation teleports the body, clearing collision flags.
func (b *RigidBody) SetTranslation(pos mgl32.Vec3) {
	if slot := b.w.bodySlot(b.h); slot != nil {
		slot.pos = pos
		slot.collideX, slot.collideY, slot.collideZ = false, false, false
	}
}

// Linvel returns the body's linear velocity.
func (b *RigidBody) Linvel() mgl32.Vec3 {
	if slot := b.w.bodySlot(b.h); slot != nil {
		return slot.vel
	}
	return mgl32.Vec3{}
}

// SetLinvel sets the body's linear velocity.
func (b *RigidBody) SetLinvel(vel mgl32.Vec3) {
	if slot := b.w.bodySlot(b.h); slot != nil {
		slot.vel = vel
	}
}

// Collider returns the handle of the collider attached to the body.
func (b *RigidBody) Collider() ColliderHandle {
	if slot := b.w.bodySlot(b.h); slot != nil {
		return slot.collider
	}
	return ColliderHandle{}
}

// Collided reports the per-axis collision flags from the last Step.
func (b *RigidBody) Collided() (x, y, z bool) {
	if slot := b.w.bodySlot(b.h); slot != nil {
		return slot.collideX, slot.collideY, slot.collideZ
	}
	return false, false, false
}

// CreateCollider creates a static collider at the given world translation.
// yaw rotates hull vertex sets; other shapes ignore it.
func (w *World) CreateCollider(desc ColliderDesc, pos mgl32.Vec3, yaw float32) ColliderHandle {
	if !w.Ready() {
		return ColliderHandle{}
	}
	_ = yaw // hull descs carry their rotation baked into the vertices
	idx := w.allocCollider()
	slot := &w.colliders[idx]
	slot.desc = desc
	slot.pos = pos
	slot.body = BodyHandle{}
	slot.boxes = desc.collisionBoxes(pos)
	return ColliderHandle{idx: idx, gen: slot.gen}
}

// AttachCollider creates a collider bound to a body. The body must not
// already carry one: colliders are replaced, never mutated.
func (w *World) AttachCollider(body *RigidBody, desc ColliderDesc) ColliderHandle {
	bslot := w.bodySlot(body.Handle())
	if bslot == nil || bslot.collider.gen != 0 {
		return ColliderHandle{}
	}
	idx := w.allocCollider()
	slot := &w.colliders[idx]
	slot.desc = desc
	slot.body = body.Handle()
	slot.boxes = nil
	h := ColliderHandle{idx: idx, gen: slot.gen}
	bslot.collider = h
	return h
}

// RemoveCollider frees a collider. A stale or zero handle is a caught
// no-op, never a crash; wakeOthers is accepted for contract compatibility.
func (w *World) RemoveCollider(h ColliderHandle, wakeOthers bool) {
	_ = wakeOthers
	slot := w.colliderSlot(h)
	if slot == nil {
		return
	}
	if bslot := w.bodySlot(slot.body); bslot != nil && bslot.collider == h {
		bslot.collider = ColliderHandle{}
	}
	slot.live = false
	slot.boxes = nil
}

// ColliderAlive reports whether the collider handle still resolves.
func (w *World) ColliderAlive(h ColliderHandle) bool {
	return w.colliderSlot(h) != nil
}

func (w *World) allocCollider() int {
	for i := range w.colliders {
		if !w.colliders[i].live {
			w.colliders[i].gen++
			w.colliders[i].live = true
			return i
		}
	}
	w.colliders = append(w.colliders, colliderSlot{gen: 1, live: true})
	return len(w.colliders) - 1
}

// bodyBox returns the world-space clip box of a body's collider.
func (w *World) bodyBox(slot *bodySlot) (cube.BBox, bool) {
	cslot := w.colliderSlot(slot.collider)
	if cslot == nil {
		return cube.BBox{}, false
	}
	return cslot.desc.bounds().Translate(slot.pos), true
}
