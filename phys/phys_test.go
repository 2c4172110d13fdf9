package phys

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func testWorld() *World {
	return NewWorld(mgl32.Vec3{0, -20, 0})
}

// floorWorld returns a world with a 20x20 floor slab whose top surface sits
// at y=0.
func floorWorld() *World {
	w := testWorld()
	w.CreateCollider(CuboidDesc(mgl32.Vec3{10, 0.5, 10}), mgl32.Vec3{0, -0.5, 0}, 0)
	return w
}

func TestBodyFallsAndLandsOnFloor(t *testing.T) {
	w := floorWorld()
	body := w.CreateRigidBody(mgl32.Vec3{0, 3, 0})
	w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	dt := float32(1.0 / 60.0)
	for i := 0; i < 300; i++ {
		w.Step(dt)
	}

	// Capsule half extent is 0.55+0.35=0.9, so the center settles at ~0.9.
	y := body.Translation().Y()
	if math32.Abs(y-0.9) > 0.05 {
		t.Fatalf("body settled at y=%v, want ~0.9", y)
	}
	_, collideY, _ := body.Collided()
	if !collideY {
		t.Fatal("expected vertical collision flag after landing")
	}
}

func TestBodyStoppedByWall(t *testing.T) {
	w := floorWorld()
	// Wall at x=2, too tall to step over.
	w.CreateCollider(CuboidDesc(mgl32.Vec3{0.5, 2, 10}), mgl32.Vec3{2.5, 2, 0}, 0)

	body := w.CreateRigidBody(mgl32.Vec3{0, 0.9, 0})
	w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	dt := float32(1.0 / 60.0)
	for i := 0; i < 120; i++ {
		body.SetLinvel(mgl32.Vec3{4, body.Linvel().Y(), 0})
		w.Step(dt)
	}

	x := body.Translation().X()
	// Wall face at x=2; capsule radius 0.35 keeps the center at <= 1.65.
	if x > 1.66 {
		t.Fatalf("body penetrated wall: x=%v", x)
	}
	collideX, _, _ := body.Collided()
	if !collideX {
		t.Fatal("expected horizontal collision flag against wall")
	}
}

func TestBodyStepsUpLowLedge(t *testing.T) {
	w := floorWorld()
	// A ledge 0.25 high, below StepHeight.
	w.CreateCollider(CuboidDesc(mgl32.Vec3{2, 0.125, 2}), mgl32.Vec3{4, 0.125, 0}, 0)

	body := w.CreateRigidBody(mgl32.Vec3{0, 0.9, 0})
	w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	dt := float32(1.0 / 60.0)
	for i := 0; i < 240; i++ {
		body.SetLinvel(mgl32.Vec3{3, body.Linvel().Y(), 0})
		w.Step(dt)
	}

	pos := body.Translation()
	if pos.X() < 3 {
		t.Fatalf("body never reached the ledge: x=%v", pos.X())
	}
	if pos.Y() < 1.0 {
		t.Fatalf("body did not step up onto the ledge: y=%v", pos.Y())
	}
}

func TestOverlappingBodyDepenetrates(t *testing.T) {
	w := floorWorld()
	w.CreateCollider(CuboidDesc(mgl32.Vec3{0.5, 1, 0.5}), mgl32.Vec3{0, 1, 0}, 0)

	// The capsule starts embedded 0.05 deep in the box's +X face.
	body := w.CreateRigidBody(mgl32.Vec3{0.8, 0.9, 0})
	w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	dt := float32(1.0 / 60.0)
	for i := 0; i < 10; i++ {
		body.SetLinvel(mgl32.Vec3{0, body.Linvel().Y(), 0})
		w.Step(dt)
	}

	pos := body.Translation()
	// Box face at x=0.5 plus the capsule radius: pushed out to x >= 0.85.
	if pos.X() < 0.849 {
		t.Fatalf("body stayed inside the box: x=%v", pos.X())
	}
	if pos.Y() < 0.85 {
		t.Fatalf("body sank while depenetrating: y=%v", pos.Y())
	}
}

func TestBodyClimbsRamp(t *testing.T) {
	w := floorWorld()
	// Ramp ascending towards +Z: 4 wide, 1 high, 4 long.
	verts := WedgeVertices(mgl32.Vec3{2, 0.5, 2}, 0)
	w.CreateCollider(ConvexHullDesc(verts), mgl32.Vec3{0, 0.5, 4}, 0)

	body := w.CreateRigidBody(mgl32.Vec3{0, 0.9, 0})
	w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	dt := float32(1.0 / 60.0)
	for i := 0; i < 100; i++ {
		body.SetLinvel(mgl32.Vec3{0, body.Linvel().Y(), 3})
		w.Step(dt)
	}

	pos := body.Translation()
	if pos.Z() < 4.2 {
		t.Fatalf("body never climbed along the ramp: z=%v", pos.Z())
	}
	if pos.Y() < 1.2 {
		t.Fatalf("body did not gain height on the ramp: y=%v", pos.Y())
	}
}

func TestCastRayHitsNearestAndRespectsExclusion(t *testing.T) {
	w := testWorld()
	near := w.CreateCollider(CuboidDesc(mgl32.Vec3{0.5, 0.5, 0.5}), mgl32.Vec3{0, 0, 3}, 0)
	w.CreateCollider(CuboidDesc(mgl32.Vec3{0.5, 0.5, 0.5}), mgl32.Vec3{0, 0, 6}, 0)

	ray := Ray{Origin: mgl32.Vec3{0, 0, 0}, Dir: mgl32.Vec3{0, 0, 1}}
	hit := w.CastRay(ray, 100, ColliderHandle{}, BodyHandle{})
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if math32.Abs(hit.Distance-2.5) > 1e-4 {
		t.Fatalf("nearest hit at distance %v, want 2.5", hit.Distance)
	}
	if hit.Normal != (mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("unexpected hit normal %v", hit.Normal)
	}

	hit = w.CastRay(ray, 100, near, BodyHandle{})
	if hit == nil {
		t.Fatal("expected a hit on the far box")
	}
	if math32.Abs(hit.Distance-5.5) > 1e-4 {
		t.Fatalf("excluded cast hit at distance %v, want 5.5", hit.Distance)
	}
}

func TestCastRayExcludesBody(t *testing.T) {
	w := testWorld()
	body := w.CreateRigidBody(mgl32.Vec3{0, 0, 2})
	w.AttachCollider(body, CapsuleDesc(0.55, 0.35))
	w.CreateCollider(CuboidDesc(mgl32.Vec3{0.5, 0.5, 0.5}), mgl32.Vec3{0, 0, 6}, 0)

	ray := Ray{Origin: mgl32.Vec3{0, 0, 0}, Dir: mgl32.Vec3{0, 0, 1}}
	hit := w.CastRay(ray, 100, ColliderHandle{}, BodyHandle{})
	if hit == nil || hit.Body != body.Handle() {
		t.Fatalf("expected to hit the body first, got %+v", hit)
	}

	hit = w.CastRay(ray, 100, ColliderHandle{}, body.Handle())
	if hit == nil {
		t.Fatal("expected a hit past the excluded body")
	}
	if hit.Body != (BodyHandle{}) {
		t.Fatal("excluded body was still hit")
	}
}

func TestCastRaySphereAndCylinder(t *testing.T) {
	w := testWorld()
	w.CreateCollider(BallDesc(1), mgl32.Vec3{0, 0, 5}, 0)
	hit := w.CastRay(Ray{Origin: mgl32.Vec3{}, Dir: mgl32.Vec3{0, 0, 1}}, 100, ColliderHandle{}, BodyHandle{})
	if hit == nil || math32.Abs(hit.Distance-4) > 1e-4 {
		t.Fatalf("sphere hit = %+v, want distance 4", hit)
	}

	w2 := testWorld()
	w2.CreateCollider(CylinderDesc(1, 0.5), mgl32.Vec3{5, 0, 0}, 0)
	hit = w2.CastRay(Ray{Origin: mgl32.Vec3{}, Dir: mgl32.Vec3{1, 0, 0}}, 100, ColliderHandle{}, BodyHandle{})
	if hit == nil || math32.Abs(hit.Distance-4.5) > 1e-4 {
		t.Fatalf("cylinder side hit = %+v, want distance 4.5", hit)
	}
	// Cap hit from above.
	hit = w2.CastRay(Ray{Origin: mgl32.Vec3{5, 3, 0}, Dir: mgl32.Vec3{0, -1, 0}}, 100, ColliderHandle{}, BodyHandle{})
	if hit == nil || math32.Abs(hit.Distance-2) > 1e-4 {
		t.Fatalf("cylinder cap hit = %+v, want distance 2", hit)
	}
}

func TestFreeIsIdempotentAndGuardsAccess(t *testing.T) {
	w := floorWorld()
	body := w.CreateRigidBody(mgl32.Vec3{0, 3, 0})
	col := w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	w.Free()
	w.Free() // second free is a no-op

	if w.Ready() {
		t.Fatal("freed world reports ready")
	}
	if !w.TearingDown() {
		t.Fatal("freed world does not report tearing down")
	}
	if body.Alive() {
		t.Fatal("body survived world free")
	}
	if w.ColliderAlive(col) {
		t.Fatal("collider survived world free")
	}

	// All access paths must degrade to no-ops.
	body.SetLinvel(mgl32.Vec3{1, 0, 0})
	if body.Translation() != (mgl32.Vec3{}) {
		t.Fatal("stale body returned a translation")
	}
	w.RemoveCollider(col, true)
	w.Step(1.0 / 60.0)
	if hit := w.CastRay(Ray{Dir: mgl32.Vec3{0, 0, 1}}, 10, ColliderHandle{}, BodyHandle{}); hit != nil {
		t.Fatal("freed world returned a ray hit")
	}
}

func TestStaleColliderHandleAfterReplacement(t *testing.T) {
	w := floorWorld()
	body := w.CreateRigidBody(mgl32.Vec3{0, 3, 0})
	old := w.AttachCollider(body, CapsuleDesc(0.55, 0.35))

	w.RemoveCollider(old, true)
	replacement := w.AttachCollider(body, CapsuleDesc(0.2, 0.35))

	if w.ColliderAlive(old) {
		t.Fatal("removed collider still alive")
	}
	if !w.ColliderAlive(replacement) {
		t.Fatal("replacement collider not alive")
	}
	// The old handle may point at a recycled slot; the generation check
	// must still reject it.
	w.RemoveCollider(old, true)
	if !w.ColliderAlive(replacement) {
		t.Fatal("stale handle removal freed the replacement collider")
	}
}
