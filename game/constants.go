package game

const (
	WalkSpeed  = float32(4.0)
	RunSpeed   = float32(8.0)
	SitSpeed   = float32(2.0)
	CrawlSpeed = float32(1.0)
	DashSpeed  = float32(12.0)

	JumpImpulse      = float32(8.0)
	JumpVelThreshold = float32(0.1)

	DashDuration = float32(0.5)
	DashCooldown = float32(1.0)

	Gravity = float32(-20.0)

	CheckpointRadius = float32(2.0)
	FinishRadius     = float32(1.5)
	KillzoneRadius   = float32(2.0)
	KillzoneHalfY    = float32(0.5)
	FallDeathY       = float32(-10.0)

	DeathDuration    = float32(1.5)
	RespawnClearance = float32(1.0)

	GroundRayLength = float32(0.25)
	GroundRayOffset = float32(0.15)
	GroundRayLift   = float32(0.02)

	GridStep         = float32(0.5)
	OverlapTolerance = float32(0.9)
	KillzoneSpawnGap = float32(5.0)

	PositionSmoothing  = float32(10.0)
	FacingSmoothing    = float32(8.0)
	FacingSpeedMinimum = float32(0.5)

	CrossfadeSeconds = float32(0.2)

	RenderDistance = float32(300.0)
)

const (
	// SnapshotIntervalMS is the minimum time in milliseconds between two
	// outbound position snapshots for one player.
	SnapshotIntervalMS = 50

	// FinishGraceSeconds is how long a race keeps running after the first
	// player crosses the finish line.
	FinishGraceSeconds = 15
)
