package remote

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestInterpolationConvergesAtAnyFrameRate(t *testing.T) {
	target := mgl32.Vec3{10, 0, -4}
	for _, fps := range []int{30, 60, 144} {
		p := NewPlayer(Snapshot{ID: "a"})
		p.ApplySnapshot(Snapshot{ID: "a", Position: target})

		dt := 1 / float32(fps)
		for i := 0; i < fps; i++ { // one simulated second
			p.Advance(dt)
		}
		if err := p.Position().Sub(target).Len(); err > 0.01 {
			t.Errorf("%d fps: %.5f units from target after 1s", fps, err)
		}
	}
}

func TestInterpolationRateIndependence(t *testing.T) {
	// Partway through convergence, different frame rates must agree.
	target := mgl32.Vec3{8, 0, 0}
	at := func(fps int) mgl32.Vec3 {
		p := NewPlayer(Snapshot{ID: "a"})
		p.ApplySnapshot(Snapshot{ID: "a", Position: target})
		// Step until 0.2 simulated seconds have passed; a frame-count loop
		// would truncate unevenly across rates and compare unequal spans.
		dt := 1 / float32(fps)
		for elapsed := float32(0); elapsed+dt/2 < 0.2; elapsed += dt {
			p.Advance(dt)
		}
		return p.Position()
	}
	slow, fast := at(30), at(144)
	if d := slow.Sub(fast).Len(); d > 0.05 {
		t.Fatalf("30 vs 144 fps diverged by %.4f units", d)
	}
}

func TestFacingThreshold(t *testing.T) {
	p := NewPlayer(Snapshot{ID: "a"})

	// Slow drift below the threshold must not turn the character.
	p.ApplySnapshot(Snapshot{ID: "a", Velocity: mgl32.Vec3{0.1, 0, 0.1}})
	for i := 0; i < 60; i++ {
		p.Advance(1.0 / 60)
	}
	if f := p.Facing(); f != 0 {
		t.Fatalf("facing moved to %v on sub-threshold velocity", f)
	}

	// Real movement turns it toward the velocity direction.
	p.ApplySnapshot(Snapshot{ID: "a", Velocity: mgl32.Vec3{4, 0, 0}})
	for i := 0; i < 120; i++ {
		p.Advance(1.0 / 60)
	}
	want := math32.Pi / 2
	if f := p.Facing(); math32.Abs(f-want) > 0.05 {
		t.Fatalf("facing = %v, want about %v", f, want)
	}
}

func TestNonFiniteSnapshotFieldsFallBack(t *testing.T) {
	nan := math32.NaN()
	p := NewPlayer(Snapshot{ID: "a", Position: mgl32.Vec3{1, 2, 3}})

	p.ApplySnapshot(Snapshot{ID: "a", Position: mgl32.Vec3{nan, 0, 0}, Velocity: mgl32.Vec3{0, math32.Inf(1), 0}})
	s := p.Snapshot()
	if s.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("position = %v, want last-known", s.Position)
	}
	if s.Velocity != (mgl32.Vec3{}) {
		t.Fatalf("velocity = %v, want zero", s.Velocity)
	}

	p.Advance(1.0 / 60)
	if pos := p.Position(); !(pos.X() == pos.X()) {
		t.Fatal("interpolated position went NaN")
	}
}

func TestRegistryTracksJoinOrder(t *testing.T) {
	r := NewRegistry()
	r.Apply(Snapshot{ID: "b", Nickname: "second"})
	r.Apply(Snapshot{ID: "a", Nickname: "first"})
	r.Apply(Snapshot{ID: "b", Position: mgl32.Vec3{5, 0, 0}})

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	all := r.All()
	if all[0].Snapshot().ID != "b" || all[1].Snapshot().ID != "a" {
		t.Fatal("registry does not preserve join order")
	}
	if got, _ := r.Get("b"); got.Snapshot().Position.X() != 5 {
		t.Fatal("re-apply did not update the existing player")
	}

	r.Remove("b")
	if _, ok := r.Get("b"); ok {
		t.Fatal("removed player still present")
	}
}
