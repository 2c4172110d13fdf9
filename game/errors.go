package game

const (
	ErrorPhysicsNotReady    = "Error: Physics world accessed before initialization."
	ErrorPhysicsTearingDown = "Error: Physics world accessed during teardown."
	ErrorStaleHandle        = "Error: Stale physics handle."

	ErrorInternalMissingCollider = "Error: Controller requires a live capsule collider."
	ErrorInternalMissingSpawn    = "Error: Level has no spawn marker."
)
