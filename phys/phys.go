// Package phys implements the physics world the simulation runs against:
// rigid bodies with capsule colliders, static level colliders derived from
// map geometry, axis-separated collision clipping, and ray casting.
//
// All handles are generation-indexed. A handle to a freed body or collider
// fails a cheap generation compare instead of touching freed state, so a
// frame callback racing a world teardown degrades to a skipped frame.
package phys

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"
)

// World lifecycle states. Teardown sets StateTearingDown synchronously
// before any resource is released so in-flight frame callbacks observe it.
const (
	StateUninitialized int32 = iota
	StateReady
	StateTearingDown
)

const (
	// StepHeight is the maximum ledge a moving body slides up without
	// jumping. Ramp colliders decompose into slabs shorter than this.
	StepHeight = float32(0.3)

	// slabHeight is the vertical size of the boxes a convex hull collider
	// decomposes into.
	slabHeight = float32(0.2)
)

// World owns every body and collider created through it. It is driven by a
// single frame loop; the lifecycle state is the only field touched from
// teardown paths and is therefore atomic.
type World struct {
	gravity mgl32.Vec3
	state   atomic.Int32

	bodies    []bodySlot
	colliders []colliderSlot
}

// NewWorld creates a ready physics world with the given gravity.
func NewWorld(gravity mgl32.Vec3) *World {
	w := &World{gravity: gravity}
	w.state.Store(StateReady)
	return w
}

// Ready reports whether the world can be stepped and queried.
func (w *World) Ready() bool {
	return w != nil && w.state.Load() == StateReady
}

// TearingDown reports whether Free has begun. Frame callbacks must skip all
// physics access once this returns true.
func (w *World) TearingDown() bool {
	return w == nil || w.state.Load() == StateTearingDown
}

// Gravity returns the world gravity vector.
func (w *World) Gravity() mgl32.Vec3 {
	return w.gravity
}

// Free releases the world. The state flips before any slot is cleared, and
// a second Free of an already-freed world is a no-op.
func (w *World) Free() {
	if w == nil {
		return
	}
	if !w.state.CompareAndSwap(StateReady, StateTearingDown) {
		return
	}
	w.bodies = nil
	w.colliders = nil
}
