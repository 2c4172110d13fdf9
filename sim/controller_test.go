package sim

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/level"
	"github.com/gridlock-gg/gridlock/mapdef"
	"github.com/gridlock-gg/gridlock/phys"
)

const frameDT = float32(1.0 / 60.0)

type recordedEvents struct {
	checkpoints []int
	finishes    int
	deaths      int
}

func (r *recordedEvents) OnCheckpoint(index int, _ mgl32.Vec3) {
	r.checkpoints = append(r.checkpoints, index)
}
func (r *recordedEvents) OnFinish() {
	r.finishes++
}

func (r *recordedEvents) OnDeath() {
	r.deaths++
}

// raceWorld builds a large flat floor with the given extra markers and a
// spawn at the origin.
func raceWorld(t *testing.T, markers ...mapdef.MapMarker) (*phys.World, *level.Level, *recordedEvents, *Controller) {
	t.Helper()
	m := mapdef.New("track", mapdef.ModeRace)
	m.Objects = append(m.Objects, mapdef.MapObject{
		ID: "floor", Type: mapdef.ShapePlane,
		Scale: mapdef.Vec3{X: 120, Y: 1, Z: 120},
	})
	m.Markers = append(m.Markers, mapdef.MapMarker{ID: "spawn", Type: mapdef.MarkerSpawn})
	m.Markers = append(m.Markers, markers...)

	w := phys.NewWorld(mgl32.Vec3{0, game.Gravity, 0})
	lvl := level.Build(w, m, nil, nil)
	ev := &recordedEvents{}
	c, err := NewController(w, lvl, VariantRace, ev, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return w, lvl, ev, c
}

// settle lets the freshly spawned body drop onto the floor.
func settle(c *Controller) {
	for i := 0; i < 90; i++ {
		c.Step(frameDT, Input{})
	}
}

func TestColliderSwapPreservesFootY(t *testing.T) {
	w := phys.NewWorld(mgl32.Vec3{0, game.Gravity, 0})
	postures := []Posture{PostureStanding, PostureSitting, PostureCrawling}
	for _, from := range postures {
		for _, to := range postures {
			body := w.CreateRigidBody(mgl32.Vec3{0, 5 + CenterOffset(from), 0})
			if w.AttachCollider(body, CapsuleFor(from)) == (phys.ColliderHandle{}) {
				t.Fatal("attach failed")
			}
			footBefore := body.Translation().Y() - CenterOffset(from)
			if !UpdatePlayerCollider(w, body, from, to) {
				t.Fatalf("%v -> %v: swap failed", from, to)
			}
			footAfter := body.Translation().Y() - CenterOffset(to)
			if math32.Abs(footBefore-footAfter) > 1e-5 {
				t.Errorf("%v -> %v: foot moved from %v to %v", from, to, footBefore, footAfter)
			}
			if !w.ColliderAlive(body.Collider()) {
				t.Fatalf("%v -> %v: body left without a live collider", from, to)
			}
			w.RemoveRigidBody(body)
		}
	}
}

func TestCheckpointPassIsIdempotent(t *testing.T) {
	cp := mapdef.MapMarker{ID: "cp", Type: mapdef.MarkerCheckpoint, Position: mapdef.Vec3{X: 5}}
	_, _, ev, c := raceWorld(t, cp)

	pos := cp.Position.V()
	c.passCheckpoint(0, pos)
	c.passCheckpoint(0, pos)
	if c.CheckpointsPassed() != 1 {
		t.Fatalf("checkpointsPassed = %d after double pass, want 1", c.CheckpointsPassed())
	}
	if len(ev.checkpoints) != 1 {
		t.Fatalf("checkpoint events = %v, want one", ev.checkpoints)
	}
}

func TestKillzoneBounds(t *testing.T) {
	marker := mgl32.Vec3{0, 0, 0}
	cases := []struct {
		name string
		foot mgl32.Vec3
		want bool
	}{
		{"inside", mgl32.Vec3{1, 0, 0}, true},
		{"exactly at radius", mgl32.Vec3{game.KillzoneRadius, 0, 0}, false},
		{"just inside radius", mgl32.Vec3{game.KillzoneRadius - 0.01, 0, 0}, true},
		{"mirrored just inside", mgl32.Vec3{-(game.KillzoneRadius - 0.01), 0, 0}, true},
		{"diagonal inside", mgl32.Vec3{1, 0, 1}, true},
		{"above the vertical bound", mgl32.Vec3{0, game.KillzoneHalfY, 0}, false},
		{"below the vertical bound", mgl32.Vec3{0, -game.KillzoneHalfY, 0}, false},
		{"inside vertically", mgl32.Vec3{0, game.KillzoneHalfY - 0.01, 0}, true},
		{"far but level", mgl32.Vec3{10, 0, 0}, false},
	}
	for _, tc := range cases {
		if got := InKillzone(tc.foot, marker); got != tc.want {
			t.Errorf("%s: InKillzone(%v) = %v, want %v", tc.name, tc.foot, got, tc.want)
		}
	}
}

func TestRaceToFinishFiresExactlyOnce(t *testing.T) {
	finish := mapdef.MapMarker{ID: "finish", Type: mapdef.MarkerFinish, Position: mapdef.Vec3{X: 10}}
	_, _, ev, c := raceWorld(t, finish)
	settle(c)

	// Face +X and walk for more than 10 units worth of frames.
	in := Input{Forward: true, Yaw: math32.Pi / 2}
	for i := 0; i < 240; i++ {
		c.Step(frameDT, in)
	}

	if c.Pose().Foot.X() < 10 {
		t.Fatalf("player only reached x=%v", c.Pose().Foot.X())
	}
	if ev.finishes != 1 {
		t.Fatalf("finish events = %d, want exactly 1", ev.finishes)
	}
	if len(ev.checkpoints) != 0 {
		t.Fatalf("checkpoint events = %v on a map without checkpoints", ev.checkpoints)
	}
	if !c.Finished() {
		t.Fatal("finished flag not set")
	}
}

func TestCheckpointRadius(t *testing.T) {
	cp := mapdef.MapMarker{ID: "cp", Type: mapdef.MarkerCheckpoint, Position: mapdef.Vec3{X: 5}}
	_, _, ev, c := raceWorld(t, cp)

	// Passing one unit from the marker registers.
	c.evaluateTriggers(mgl32.Vec3{5, 1, 0})
	if len(ev.checkpoints) != 1 {
		t.Fatalf("checkpoint at distance 1 not registered: %v", ev.checkpoints)
	}

	// Three units away does not.
	_, _, ev2, c2 := raceWorld(t, cp)
	c2.evaluateTriggers(mgl32.Vec3{5, 3, 0})
	if len(ev2.checkpoints) != 0 {
		t.Fatalf("checkpoint at distance 3 registered: %v", ev2.checkpoints)
	}
}

func TestDashCooldown(t *testing.T) {
	_, _, _, c := raceWorld(t)
	settle(c)

	c.Step(frameDT, Input{Dash: true, Forward: true})
	if !c.dashing {
		t.Fatal("dash did not trigger")
	}
	c.Step(frameDT, Input{Forward: true})

	// 0.5 s later the dash has ended but the cooldown has not elapsed.
	for i := 0; i < 30; i++ {
		c.Step(frameDT, Input{Forward: true})
	}
	if c.dashing {
		t.Fatal("dash still active past its duration")
	}
	c.Step(frameDT, Input{Dash: true, Forward: true})
	if c.dashing {
		t.Fatal("dash re-triggered before the cooldown elapsed")
	}
	c.Step(frameDT, Input{Forward: true})

	// Past the full cooldown it triggers again.
	for i := 0; i < 45; i++ {
		c.Step(frameDT, Input{Forward: true})
	}
	c.Step(frameDT, Input{Dash: true, Forward: true})
	if !c.dashing {
		t.Fatal("dash did not re-trigger after the cooldown")
	}
}

func TestKillzoneDeathAndRespawnAtCheckpoint(t *testing.T) {
	cp := mapdef.MapMarker{ID: "cp", Type: mapdef.MarkerCheckpoint, Position: mapdef.Vec3{X: 8}}
	kz := mapdef.MapMarker{ID: "kz", Type: mapdef.MarkerKillzone, Position: mapdef.Vec3{X: 16}}
	_, _, ev, c := raceWorld(t, cp, kz)
	settle(c)

	in := Input{Forward: true, Run: true, Yaw: math32.Pi / 2}
	for i := 0; i < 240 && !c.Dying(); i++ {
		c.Step(frameDT, in)
	}
	if !c.Dying() {
		t.Fatalf("player never entered the killzone (x=%v)", c.Pose().Foot.X())
	}
	if ev.deaths != 1 {
		t.Fatalf("death events = %d, want 1", ev.deaths)
	}
	if len(ev.checkpoints) != 1 {
		t.Fatalf("checkpoint events = %v, want the checkpoint en route", ev.checkpoints)
	}

	// Death timer expires, player respawns at the checkpoint anchor.
	for i := 0; i < 120; i++ {
		c.Step(frameDT, Input{})
	}
	if c.Dying() {
		t.Fatal("still dying after the death timer")
	}
	foot := c.Pose().Foot
	if math32.Abs(foot.X()-8) > 0.5 || math32.Abs(foot.Z()) > 0.5 {
		t.Fatalf("respawned at %v, want near the checkpoint (8, _, 0)", foot)
	}
}

func TestJumpRequiresGroundAndStanding(t *testing.T) {
	_, _, _, c := raceWorld(t)
	settle(c)

	c.Step(frameDT, Input{Jump: true})
	if v := c.Body().Linvel(); math32.Abs(v.Y()-game.JumpImpulse) > 1 {
		t.Fatalf("jump impulse not applied: vy=%v", v.Y())
	}
	if !c.jumping {
		t.Fatal("jumping flag not set")
	}

	// Airborne: releasing and re-pressing jump must not re-trigger.
	c.Step(frameDT, Input{})
	vy := c.Body().Linvel().Y()
	c.Step(frameDT, Input{Jump: true})
	if c.Body().Linvel().Y() > vy {
		t.Fatal("jump re-triggered mid-air")
	}
}

func TestPostureChangesOnlyWhenGrounded(t *testing.T) {
	_, _, _, c := raceWorld(t)
	settle(c)

	c.Step(frameDT, Input{Sit: true})
	if c.Posture() != PostureSitting {
		t.Fatalf("posture = %v, want sitting", c.Posture())
	}
	// Toggle back up, then jump and try to crawl mid-air.
	c.Step(frameDT, Input{})
	c.Step(frameDT, Input{Sit: true})
	if c.Posture() != PostureStanding {
		t.Fatalf("posture = %v, want standing", c.Posture())
	}
	c.Step(frameDT, Input{})
	c.Step(frameDT, Input{Jump: true})
	c.Step(frameDT, Input{})
	c.Step(frameDT, Input{})
	c.Step(frameDT, Input{Crawl: true})
	if c.Posture() != PostureStanding {
		t.Fatalf("posture changed mid-air to %v", c.Posture())
	}
}

func TestStepSkipsFrameDuringTeardown(t *testing.T) {
	w, _, _, c := raceWorld(t)
	settle(c)
	before := c.Pose()

	w.Free()
	c.Step(frameDT, Input{Forward: true})
	after := c.Pose()
	if before.Foot != after.Foot {
		t.Fatal("pose changed on a frame that should have been skipped")
	}
}

func TestStepGuardNamesTheFailure(t *testing.T) {
	w, _, _, c := raceWorld(t)
	settle(c)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c.log = logger

	// Collider removed out from under the body: a live world, a dead handle.
	w.RemoveCollider(c.Body().Collider(), true)
	c.Step(frameDT, Input{})
	if e := hook.LastEntry(); e == nil || e.Message != game.ErrorStaleHandle {
		t.Fatalf("stale handle frame logged %v", hook.LastEntry())
	}

	w.Free()
	c.Step(frameDT, Input{})
	if e := hook.LastEntry(); e == nil || e.Message != game.ErrorPhysicsTearingDown {
		t.Fatalf("teardown frame logged %v", hook.LastEntry())
	}

	bare := &Controller{log: logger}
	bare.Step(frameDT, Input{})
	if e := hook.LastEntry(); e == nil || e.Message != game.ErrorPhysicsNotReady {
		t.Fatalf("missing world frame logged %v", hook.LastEntry())
	}
}

func TestGroundProbeOnLedgeEdge(t *testing.T) {
	// Body center overhangs the ledge edge; the lateral probes still find
	// support.
	w := phys.NewWorld(mgl32.Vec3{0, game.Gravity, 0})
	w.CreateCollider(phys.CuboidDesc(mgl32.Vec3{1, 0.5, 1}), mgl32.Vec3{0, -0.5, 0}, 0)

	body := w.CreateRigidBody(mgl32.Vec3{1.05, CenterOffset(PostureStanding), 0})
	if w.AttachCollider(body, CapsuleFor(PostureStanding)) == (phys.ColliderHandle{}) {
		t.Fatal("attach failed")
	}
	if !CheckGrounded(w, body, PostureStanding) {
		t.Fatal("lateral probes missed the ledge")
	}

	body.SetTranslation(mgl32.Vec3{5, CenterOffset(PostureStanding), 0})
	if CheckGrounded(w, body, PostureStanding) {
		t.Fatal("grounded while far off the ledge")
	}
}
