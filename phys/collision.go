package phys

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/game"
)

// contactEpsilon is the penetration below which two boxes count as touching
// rather than overlapping. Clipping to exact contact can overshoot by an ulp,
// which at level coordinates is larger than float32 rounding near zero.
const contactEpsilon = 1e-5

// clipCollide clips a moving bounding box's velocity against a stationary
// one along the single axis with the smallest swept penetration. Boxes that
// already overlap depenetrate along the axis of least penetration instead of
// passing through each other.
func clipCollide(stationary, moving cube.BBox, velocity mgl32.Vec3) mgl32.Vec3 {
	result := velocity
	if stationary.Min() == stationary.Max() {
		return result
	}

	separatingAxes, separatingAxis := 0, 0
	var axisPen [3]float32
	var axisSigned [3]float32
	var normalDirs [3]float32

	for i := 0; i < 3; i++ {
		minPen := moving.Max()[i] - stationary.Min()[i]
		maxPen := stationary.Max()[i] - moving.Min()[i]

		if math32.Abs(minPen) <= contactEpsilon {
			minPen = 0
		}
		if math32.Abs(maxPen) <= contactEpsilon {
			maxPen = 0
		}

		if math32.Max(0, minPen) == 0 {
			axisSigned[i] = minPen
			normalDirs[i] = -1
			separatingAxes++
			separatingAxis = i
		} else if math32.Max(0, maxPen) == 0 {
			axisSigned[i] = maxPen
			normalDirs[i] = 1
			separatingAxes++
			separatingAxis = i
		} else if minPen < maxPen {
			axisPen[i] = minPen
			normalDirs[i] = -1
		} else {
			axisPen[i] = maxPen
			normalDirs[i] = 1
		}
		if separatingAxes > 1 {
			return result
		}
	}
	if separatingAxes == 0 {
		// Overlapping on every axis. Push out along the axis of least
		// penetration so the body cannot tunnel through on a later frame.
		best := 0
		for i := 1; i < 3; i++ {
			if axisPen[i] < axisPen[best] {
				best = i
			}
		}
		out := axisPen[best] * normalDirs[best]
		if out > 0 {
			result[best] = math32.Max(out, velocity[best])
		} else {
			result[best] = math32.Min(out, velocity[best])
		}
		return result
	}

	sweptPenetration := axisSigned[separatingAxis] - (normalDirs[separatingAxis] * velocity[separatingAxis])
	if sweptPenetration <= 0 {
		return result
	}

	result[separatingAxis] = axisSigned[separatingAxis] * normalDirs[separatingAxis]
	return result
}

// moveBody integrates one body against the static collider set: Y first,
// then X, then Z, with a step-up pass when a grounded body hits a wall no
// taller than StepHeight.
func (w *World) moveBody(slot *bodySlot, dt float32) {
	delta := slot.vel.Mul(dt)
	bb, ok := w.bodyBox(slot)
	if !ok {
		slot.pos = slot.pos.Add(delta)
		return
	}

	boxes := w.nearbyBoxes(bb.Extend(delta).Grow(0.1))
	moved := clipMove(bb, boxes, delta)

	collideX := !game.Float32ApproxEq(moved[0], delta[0])
	collideY := !game.Float32ApproxEq(moved[1], delta[1])
	collideZ := !game.Float32ApproxEq(moved[2], delta[2])

	grounded := collideY && delta[1] <= 0
	if (collideX || collideZ) && (grounded || wasGrounded(slot)) {
		stepDelta := mgl32.Vec3{delta[0], 0, delta[2]}
		stepped := stepMove(bb, boxes, stepDelta)
		if game.Vec3HzDistSqr(stepped) > game.Vec3HzDistSqr(moved) {
			moved = stepped
			collideX = !game.Float32ApproxEq(stepped[0], delta[0])
			collideZ = !game.Float32ApproxEq(stepped[2], delta[2])
		}
	}

	slot.pos = slot.pos.Add(moved)
	slot.collideX = collideX
	slot.collideY = collideY
	slot.collideZ = collideZ
	if collideX {
		slot.vel[0] = 0
	}
	if collideY {
		slot.vel[1] = 0
	}
	if collideZ {
		slot.vel[2] = 0
	}
}

func wasGrounded(slot *bodySlot) bool {
	return slot.collideY && slot.vel[1] <= 0
}

// clipMove clips a movement delta axis by axis: Y, then X, then Z.
func clipMove(bb cube.BBox, boxes []cube.BBox, delta mgl32.Vec3) mgl32.Vec3 {
	yVel := mgl32.Vec3{0, delta[1], 0}
	xVel := mgl32.Vec3{delta[0], 0, 0}
	zVel := mgl32.Vec3{0, 0, delta[2]}

	for i := len(boxes) - 1; i >= 0; i-- {
		yVel = clipCollide(boxes[i], bb, yVel)
	}
	bb = bb.Translate(yVel)

	for i := len(boxes) - 1; i >= 0; i-- {
		xVel = clipCollide(boxes[i], bb, xVel)
	}
	bb = bb.Translate(xVel)

	for i := len(boxes) - 1; i >= 0; i-- {
		zVel = clipCollide(boxes[i], bb, zVel)
	}
	return yVel.Add(xVel).Add(zVel)
}

// stepMove lifts the box by StepHeight, moves it horizontally, then settles
// it back down, mirroring the usual step-up sequence.
func stepMove(bb cube.BBox, boxes []cube.BBox, delta mgl32.Vec3) mgl32.Vec3 {
	up := mgl32.Vec3{0, StepHeight, 0}
	for i := len(boxes) - 1; i >= 0; i-- {
		up = clipCollide(boxes[i], bb, up)
	}
	stepBB := bb.Translate(up)

	horizontal := clipMove(stepBB, boxes, mgl32.Vec3{delta[0], 0, delta[2]})
	stepBB = stepBB.Translate(horizontal)

	down := up.Mul(-1)
	for i := len(boxes) - 1; i >= 0; i-- {
		down = clipCollide(boxes[i], stepBB, down)
	}
	return up.Add(horizontal).Add(down)
}

// nearbyBoxes returns every static clip box intersecting the given bounds.
func (w *World) nearbyBoxes(bb cube.BBox) []cube.BBox {
	var out []cube.BBox
	for i := range w.colliders {
		slot := &w.colliders[i]
		if !slot.live || slot.body.gen != 0 {
			continue
		}
		for _, box := range slot.boxes {
			if bb.IntersectsWith(box) {
				out = append(out, box)
			}
		}
	}
	return out
}

// Step advances the world by dt: gravity integrates into each body's
// velocity, then each body moves with collision clipping. The simulation
// calls this exactly once per frame, after velocities are applied and
// before positions are read back.
func (w *World) Step(dt float32) {
	if !w.Ready() || dt <= 0 {
		return
	}
	for i := range w.bodies {
		slot := &w.bodies[i]
		if !slot.live {
			continue
		}
		slot.vel = slot.vel.Add(w.gravity.Mul(dt * slot.gravityScale))
		w.moveBody(slot, dt)
	}
}
