package sim

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/gridlock-gg/gridlock/anim"
	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/level"
	"github.com/gridlock-gg/gridlock/phys"
)

// Variant selects which game mode's rules the controller runs under.
type Variant uint8

const (
	VariantFreeplay Variant = iota
	VariantRace
	VariantShooter
)

// Events receives the controller's outbound notifications. Implementations
// forward them to the network layer; any method set may be left to the nop
// behavior by passing nil.
type Events interface {
	// OnCheckpoint fires once per checkpoint index, on first entry.
	OnCheckpoint(index int, pos mgl32.Vec3)
	// OnFinish fires exactly once, when the finish zone is first entered.
	OnFinish()
	// OnDeath fires when the player enters the dying state.
	OnDeath()
}

// Pose is the published per-frame simulation output read by the camera,
// animation and network layers. Consumers never mutate it.
type Pose struct {
	Foot      mgl32.Vec3
	Velocity  mgl32.Vec3
	Animation string
	Facing    float32
	Posture   Posture
	Grounded  bool
	Dying     bool
	Finished  bool

	CheckpointsPassed int
}

// Controller is the local player's per-frame state machine. It exclusively
// owns its body and posture; everything downstream reads the published
// Pose.
type Controller struct {
	w       *phys.World
	lvl     *level.Level
	variant Variant
	events  Events
	log     *logrus.Logger

	body    *phys.RigidBody
	posture Posture

	grounded     bool
	jumping      bool
	dashing      bool
	dashLeft     float32
	dashCooldown float32
	dashDir      mgl32.Vec3

	dying      bool
	deathTimer float32

	bodyYaw float32

	spawn      mgl32.Vec3
	respawn    mgl32.Vec3
	hasRespawn bool

	passed   *orderedmap.OrderedMap[int, struct{}]
	finished bool
	active   bool

	prev Input
	pose Pose
}

// NewController spawns a player body at the level's spawn marker. Levels
// without a spawn are rejected; callers fall back to a default map before
// getting here.
func NewController(w *phys.World, lvl *level.Level, variant Variant, events Events, log *logrus.Logger) (*Controller, error) {
	spawn, ok := lvl.Spawn()
	if !ok {
		return nil, errors.New(game.ErrorInternalMissingSpawn)
	}
	c := &Controller{
		w:       w,
		lvl:     lvl,
		variant: variant,
		events:  events,
		log:     log,
		spawn:   spawn,
		passed:  orderedmap.NewOrderedMap[int, struct{}](),
		active:  true,
	}
	foot := spawn.Add(mgl32.Vec3{0, game.RespawnClearance, 0})
	c.body = w.CreateRigidBody(foot.Add(mgl32.Vec3{0, CenterOffset(c.posture), 0}))
	if w.AttachCollider(c.body, CapsuleFor(c.posture)) == (phys.ColliderHandle{}) {
		return nil, errors.New(game.ErrorInternalMissingCollider)
	}
	c.pose = Pose{Foot: foot, Animation: anim.Idle, Posture: c.posture}
	return c, nil
}

// Pose returns the most recently published simulation output.
func (c *Controller) Pose() Pose { return c.pose }

// Posture returns the current stance.
func (c *Controller) Posture() Posture { return c.posture }

// Body returns the player body. Owned by the controller; read-only for
// everyone else.
func (c *Controller) Body() *phys.RigidBody { return c.body }

// SetActive gates trigger evaluation on the room's game status. Inactive
// controllers still move, they just cannot pass checkpoints or die to
// killzones.
func (c *Controller) SetActive(active bool) { c.active = active }

// CheckpointsPassed returns how many distinct checkpoints have been hit.
func (c *Controller) CheckpointsPassed() int { return c.passed.Len() }

// Finished reports whether the finish event has fired.
func (c *Controller) Finished() bool { return c.finished }

// Dying reports whether the death timer is running.
func (c *Controller) Dying() bool { return c.dying }

// Step advances the simulation by dt with this frame's input. Every physics
// access is guarded: a world in teardown or a dead handle skips the frame.
func (c *Controller) Step(dt float32, in Input) {
	defer func() { c.prev = in }()

	if c.w == nil || !c.w.Ready() || c.body == nil || !c.body.Alive() || !c.w.ColliderAlive(c.body.Collider()) {
		if c.log != nil {
			c.log.Debug(c.skipReason())
		}
		return
	}

	if c.dying {
		c.stepDying(dt)
		return
	}

	if c.dashCooldown > 0 {
		c.dashCooldown -= dt
	}

	// Posture swap runs before the ground check so the probes use the new
	// capsule.
	if want := c.requestedPosture(in); want != c.posture && c.grounded && !c.dashing {
		if UpdatePlayerCollider(c.w, c.body, c.posture, want) {
			c.posture = want
		}
	}

	c.grounded = CheckGrounded(c.w, c.body, c.posture)

	vel := c.body.Linvel()
	jumpedNow := false
	if in.Jump && !c.prev.Jump &&
		c.grounded && !c.jumping && math32.Abs(vel.Y()) < game.JumpVelThreshold &&
		c.posture == PostureStanding && !c.dashing {
		vel[1] = game.JumpImpulse
		c.jumping = true
		jumpedNow = true
	}
	if c.jumping && c.grounded && vel.Y() <= 0 && !jumpedNow {
		c.jumping = false
	}

	if in.Dash && !c.prev.Dash &&
		c.grounded && c.posture == PostureStanding && !c.dashing && c.dashCooldown <= 0 {
		dir := c.moveDirection(in)
		if dir.Len() < 1e-4 {
			dir = game.RotateY(mgl32.Vec3{0, 0, 1}, c.movementYaw(in))
		}
		c.dashing = true
		c.dashLeft = game.DashDuration
		c.dashCooldown = game.DashCooldown
		c.dashDir = dir.Normalize()
	}

	var horizontal mgl32.Vec3
	if c.dashing {
		horizontal = c.dashDir.Mul(game.DashSpeed)
		c.dashLeft -= dt
		if c.dashLeft <= 0 {
			c.dashing = false
		}
	} else {
		horizontal = c.moveDirection(in).Mul(c.speed(in))
	}
	c.body.SetLinvel(mgl32.Vec3{horizontal.X(), vel.Y(), horizontal.Z()})
	c.w.Step(dt)

	center := c.body.Translation()
	foot := center.Sub(mgl32.Vec3{0, CenterOffset(c.posture), 0})

	if c.variant == VariantShooter {
		c.bodyYaw = game.LerpAngle(c.bodyYaw, in.Yaw, game.SmoothFactor(game.FacingSmoothing, dt))
	} else {
		c.bodyYaw = in.Yaw
	}

	if c.active && !c.dying {
		c.evaluateTriggers(foot)
	}

	c.publish(foot, in)
}

// skipReason names why this frame's physics access was unsafe.
func (c *Controller) skipReason() string {
	switch {
	case c.w != nil && c.w.TearingDown():
		return game.ErrorPhysicsTearingDown
	case c.w == nil || !c.w.Ready():
		return game.ErrorPhysicsNotReady
	}
	return game.ErrorStaleHandle
}

// stepDying freezes horizontal movement while gravity keeps integrating,
// then respawns when the timer expires. No trigger or movement processing
// runs in this state.
func (c *Controller) stepDying(dt float32) {
	vel := c.body.Linvel()
	c.body.SetLinvel(mgl32.Vec3{0, vel.Y(), 0})
	c.w.Step(dt)

	c.deathTimer -= dt
	if c.deathTimer <= 0 {
		c.respawnNow()
	}

	center := c.body.Translation()
	foot := center.Sub(mgl32.Vec3{0, CenterOffset(c.posture), 0})
	c.pose = Pose{
		Foot:              foot,
		Velocity:          c.body.Linvel(),
		Animation:         anim.Dead,
		Facing:            c.bodyYaw,
		Posture:           c.posture,
		Dying:             c.dying,
		Finished:          c.finished,
		CheckpointsPassed: c.passed.Len(),
	}
}

func (c *Controller) requestedPosture(in Input) Posture {
	switch {
	case in.Sit && !c.prev.Sit:
		if c.posture == PostureSitting {
			return PostureStanding
		}
		return PostureSitting
	case in.Crawl && !c.prev.Crawl:
		if c.posture == PostureCrawling {
			return PostureStanding
		}
		return PostureCrawling
	}
	return c.posture
}

// movementYaw is the yaw movement input is expressed in: the camera yaw,
// except in shooter mode where the smoothed body facing drives it.
func (c *Controller) movementYaw(in Input) float32 {
	if c.variant == VariantShooter {
		return c.bodyYaw
	}
	return in.Yaw
}

func (c *Controller) moveDirection(in Input) mgl32.Vec3 {
	x, z := in.moveAxes()
	if x == 0 && z == 0 {
		return mgl32.Vec3{}
	}
	local := mgl32.Vec3{x, 0, z}.Normalize()
	return game.RotateY(local, c.movementYaw(in))
}

func (c *Controller) speed(in Input) float32 {
	switch c.posture {
	case PostureSitting:
		return game.SitSpeed
	case PostureCrawling:
		return game.CrawlSpeed
	}
	if in.Run {
		return game.RunSpeed
	}
	return game.WalkSpeed
}

// evaluateTriggers runs the ad hoc squared-distance membership tests
// against this frame's foot position. Running them against last frame's
// position would lag detection by one frame, which compounds with fast
// movement near killzones.
func (c *Controller) evaluateTriggers(foot mgl32.Vec3) {
	for i, cp := range c.lvl.Checkpoints() {
		if cp.Sub(foot).LenSqr() < game.CheckpointRadius*game.CheckpointRadius {
			c.passCheckpoint(i, cp)
		}
	}
	if finish, ok := c.lvl.Finish(); ok && !c.finished {
		if finish.Sub(foot).LenSqr() < game.FinishRadius*game.FinishRadius {
			c.finished = true
			if c.events != nil {
				c.events.OnFinish()
			}
		}
	}
	for _, kz := range c.lvl.Killzones() {
		if InKillzone(foot, kz) {
			c.die()
			return
		}
	}
	if foot.Y() < game.FallDeathY {
		c.die()
	}
}

// passCheckpoint records a checkpoint hit. Idempotent: a checkpoint already
// in the passed set changes nothing.
func (c *Controller) passCheckpoint(index int, pos mgl32.Vec3) {
	if _, done := c.passed.Get(index); done {
		return
	}
	c.passed.Set(index, struct{}{})
	c.respawn = pos
	c.hasRespawn = true
	if c.events != nil {
		c.events.OnCheckpoint(index, pos)
	}
}

// InKillzone tests the killzone disc: strict horizontal radius and strict
// vertical half-height bounds around the marker.
func InKillzone(foot, marker mgl32.Vec3) bool {
	if game.Vec3HzDistSqr(foot.Sub(marker)) >= game.KillzoneRadius*game.KillzoneRadius {
		return false
	}
	return math32.Abs(foot.Y()-marker.Y()) < game.KillzoneHalfY
}

func (c *Controller) die() {
	if c.dying {
		return
	}
	c.dying = true
	c.deathTimer = game.DeathDuration
	if c.events != nil {
		c.events.OnDeath()
	}
}

// respawnNow teleports to the last checkpoint, or the spawn when none has
// been passed, with clearance above the anchor so the capsule does not
// start intersecting the ground.
func (c *Controller) respawnNow() {
	anchor := c.spawn
	if c.hasRespawn {
		anchor = c.respawn
	}
	foot := anchor.Add(mgl32.Vec3{0, game.RespawnClearance, 0})
	c.body.SetTranslation(foot.Add(mgl32.Vec3{0, CenterOffset(c.posture), 0}))
	c.body.SetLinvel(mgl32.Vec3{})
	c.dying = false
	c.jumping = false
	c.dashing = false
}

func (c *Controller) publish(foot mgl32.Vec3, in Input) {
	x, z := in.moveAxes()
	set := anim.SetRace
	if c.variant == VariantShooter {
		set = anim.SetGun
	}
	name := anim.Select(anim.Params{
		Set:       set,
		Direction: anim.DirectionFor(x, z),
		Running:   in.Run,
		Sitting:   c.posture == PostureSitting,
		Crawling:  c.posture == PostureCrawling,
		Grounded:  c.grounded,
		Jumping:   c.jumping,
		Dashing:   c.dashing,
		Dying:     c.dying,
		Aiming:    in.Aim,
		Firing:    in.Fire,
		Reloading: in.Reload,
	})
	c.pose = Pose{
		Foot:              foot,
		Velocity:          c.body.Linvel(),
		Animation:         name,
		Facing:            c.bodyYaw,
		Posture:           c.posture,
		Grounded:          c.grounded,
		Dying:             c.dying,
		Finished:          c.finished,
		CheckpointsPassed: c.passed.Len(),
	}
}
