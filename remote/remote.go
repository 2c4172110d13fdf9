// Package remote reconciles other players' network snapshots into smooth
// per-frame positions. Snapshots arrive at roughly 20 Hz on an unreliable
// cadence; interpolation runs every render frame regardless.
package remote

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/game"
)

// Snapshot is one roster entry as received from the room.
type Snapshot struct {
	ID         string
	Nickname   string
	Position   mgl32.Vec3
	Velocity   mgl32.Vec3
	Animation  string
	Checkpoint int
	Finished   bool
	Color      string
}

// Player holds the latest snapshot for one remote player together with the
// interpolated state presented to the renderer. Snapshots arrive from the
// network goroutine while frames read on the render side, so access is
// mutex guarded.
type Player struct {
	mu sync.Mutex

	snap   Snapshot
	interp mgl32.Vec3
	facing float32
}

// NewPlayer starts a player directly at its first snapshot position, so
// joins do not slide in from the origin.
func NewPlayer(s Snapshot) *Player {
	sanitize(&s, Snapshot{})
	return &Player{snap: s, interp: s.Position}
}

// sanitize replaces non-finite numeric fields with fallbacks from the
// previous snapshot. Transport can deliver transient garbage; it must never
// poison the interpolated state.
func sanitize(s *Snapshot, last Snapshot) {
	if !game.IsFiniteVec3(s.Position) {
		s.Position = last.Position
	}
	if !game.IsFiniteVec3(s.Velocity) {
		s.Velocity = mgl32.Vec3{}
	}
}

// ApplySnapshot stores a new snapshot. The interpolated position is not
// touched; Advance moves it.
func (p *Player) ApplySnapshot(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sanitize(&s, p.snap)
	p.snap = s
}

// Advance moves the interpolated position toward the latest snapshot with
// frame-rate-independent exponential smoothing. Facing follows the velocity
// direction, but only above a small speed threshold so idle velocity noise
// does not make characters twitch.
func (p *Player) Advance(dt float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.interp = game.ExpLerpVec3(p.interp, p.snap.Position, game.PositionSmoothing, dt)

	hzSpeed := math32.Sqrt(game.Vec3HzDistSqr(p.snap.Velocity))
	if hzSpeed > game.FacingSpeedMinimum {
		target := math32.Atan2(p.snap.Velocity.X(), p.snap.Velocity.Z())
		p.facing = game.LerpAngle(p.facing, target, game.SmoothFactor(game.FacingSmoothing, dt))
	}
}

// Position returns the current interpolated position.
func (p *Player) Position() mgl32.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interp
}

// Facing returns the smoothed facing angle.
func (p *Player) Facing() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.facing
}

// Snapshot returns the latest raw snapshot.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Registry tracks every remote player in the room, in join order.
type Registry struct {
	mu      sync.Mutex
	players *orderedmap.OrderedMap[string, *Player]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{players: orderedmap.NewOrderedMap[string, *Player]()}
}

// Apply routes a snapshot to its player, creating the player on first
// sight.
func (r *Registry) Apply(s Snapshot) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players.Get(s.ID); ok {
		p.ApplySnapshot(s)
		return p
	}
	p := NewPlayer(s)
	r.players.Set(s.ID, p)
	return p
}

// Remove drops a player that left the room.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players.Delete(id)
}

// Get returns a player by id.
func (r *Registry) Get(id string) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.Get(id)
}

// Advance interpolates every tracked player by dt.
func (r *Registry) Advance(dt float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for el := r.players.Front(); el != nil; el = el.Next() {
		el.Value.Advance(dt)
	}
}

// All returns the players in join order.
func (r *Registry) All() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Player, 0, r.players.Len())
	for el := r.players.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Len returns the tracked player count.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.Len()
}
