package combat

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridlock-gg/gridlock/phys"
)

// Tracer speed and lifetime.
const (
	tracerSpeed    float32 = 120 // units per second
	tracerMaxRange float32 = 300
)

type tracer struct {
	active   bool
	pos      mgl32.Vec3
	dir      mgl32.Vec3
	traveled float32
}

// TracerPool runs the visible projectile tracers from a fixed-size pool so
// firing never allocates. Each tracer advances at a fixed speed and
// raycasts only its own substep each frame.
type TracerPool struct {
	tracers []tracer
	next    int

	// OnDecal and OnSpark fire on impact, decoupled from the tracer
	// itself. Either may be nil.
	OnDecal func(pos, normal mgl32.Vec3)
	OnSpark func(pos mgl32.Vec3)
}

// NewTracerPool creates a pool of the given fixed size.
func NewTracerPool(size int) *TracerPool {
	return &TracerPool{tracers: make([]tracer, size)}
}

// Spawn activates a tracer. When every slot is busy the oldest slot is
// recycled; a full pool never blocks a shot.
func (p *TracerPool) Spawn(origin, dir mgl32.Vec3) {
	t := &p.tracers[p.next]
	p.next = (p.next + 1) % len(p.tracers)
	*t = tracer{active: true, pos: origin, dir: dir.Normalize()}
}

// Active returns how many tracers are in flight.
func (p *TracerPool) Active() int {
	n := 0
	for i := range p.tracers {
		if p.tracers[i].active {
			n++
		}
	}
	return n
}

// Advance moves every active tracer by dt, raycasting each substep against
// level geometry. Hits spawn the impact effects and deactivate the tracer.
func (p *TracerPool) Advance(w *phys.World, dt float32, excludeCollider phys.ColliderHandle, excludeBody phys.BodyHandle) {
	step := tracerSpeed * dt
	for i := range p.tracers {
		t := &p.tracers[i]
		if !t.active {
			continue
		}
		if w != nil && w.Ready() {
			if hit := w.CastRay(phys.Ray{Origin: t.pos, Dir: t.dir}, step, excludeCollider, excludeBody); hit != nil {
				if p.OnDecal != nil {
					p.OnDecal(hit.Position, hit.Normal)
				}
				if p.OnSpark != nil {
					p.OnSpark(hit.Position)
				}
				t.active = false
				continue
			}
		}
		t.pos = t.pos.Add(t.dir.Mul(step))
		t.traveled += step
		if t.traveled >= tracerMaxRange {
			t.active = false
		}
	}
}
