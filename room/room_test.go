package room

import (
	"testing"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/protocol"
)

type recordingSender struct {
	messages [][]byte
}

func (s *recordingSender) Send(data []byte) error {
	s.messages = append(s.messages, data)
	return nil
}

func TestStatusTransitions(t *testing.T) {
	r := New("r1", nil)
	r.Join("a", "alice", "", nil)
	r.Join("b", "bob", "", nil)

	if got := r.Status().Status; got != protocol.StatusWaiting {
		t.Fatalf("initial status = %s", got)
	}

	r.Start()
	s := r.Status()
	if s.Status != protocol.StatusCountdown || s.Countdown != CountdownSeconds {
		t.Fatalf("after start: %+v", s)
	}
	// Start is only valid from waiting.
	r.Start()
	if r.Status().Countdown != CountdownSeconds {
		t.Fatal("second Start reset the countdown")
	}

	r.Tick(CountdownSeconds + 0.1)
	if got := r.Status().Status; got != protocol.StatusPlaying {
		t.Fatalf("after countdown: %s", got)
	}
}

func TestFinishGracePeriod(t *testing.T) {
	r := New("r1", nil)
	r.Join("a", "alice", "", nil)
	r.Join("b", "bob", "", nil)
	r.Start()
	r.Tick(CountdownSeconds)

	r.Finish("a")
	s := r.Status()
	if s.Status != protocol.StatusPlaying {
		t.Fatalf("room finished immediately on first finisher: %s", s.Status)
	}
	if s.Countdown != game.FinishGraceSeconds {
		t.Fatalf("grace = %v, want %v", s.Countdown, game.FinishGraceSeconds)
	}

	// A second finisher must not restart the grace timer.
	r.Tick(5)
	r.Finish("a") // duplicate, ignored
	if got := r.Status().Countdown; got >= game.FinishGraceSeconds {
		t.Fatalf("grace restarted: %v", got)
	}

	r.Tick(game.FinishGraceSeconds)
	if got := r.Status().Status; got != protocol.StatusFinished {
		t.Fatalf("after grace: %s", got)
	}
}

func TestAllFinishedEndsEarly(t *testing.T) {
	r := New("r1", nil)
	r.Join("a", "alice", "", nil)
	r.Join("b", "bob", "", nil)
	r.Start()
	r.Tick(CountdownSeconds)

	r.Finish("a")
	r.Finish("b")
	r.Tick(0.016)
	if got := r.Status().Status; got != protocol.StatusFinished {
		t.Fatalf("room still %s with every player finished", got)
	}
}

func TestRosterOrderAndUpdates(t *testing.T) {
	r := New("r1", nil)
	r.Join("b", "bob", "#00f", nil)
	r.Join("a", "alice", "", nil)

	r.UpdatePosition("b", protocol.Position{AnimationName: "Run"})
	r.ReachCheckpoint("b", 0)
	r.ReachCheckpoint("b", 0) // duplicate
	r.ReachCheckpoint("b", 1)

	roster := r.Roster()
	if len(roster.Players) != 2 || roster.Players[0].ID != "b" {
		t.Fatalf("roster order wrong: %+v", roster.Players)
	}
	if roster.Players[0].Checkpoint != 2 {
		t.Fatalf("checkpoint count = %d, want 2", roster.Players[0].Checkpoint)
	}
	if roster.Players[0].Animation != "Run" {
		t.Fatalf("animation = %q", roster.Players[0].Animation)
	}

	r.Leave("b")
	if r.Len() != 1 {
		t.Fatalf("len = %d after leave", r.Len())
	}
}

func TestBroadcastDeliversRosterAndStatus(t *testing.T) {
	r := New("r1", nil)
	s := &recordingSender{}
	r.Join("a", "alice", "", s)

	r.Broadcast()
	if len(s.messages) != 2 {
		t.Fatalf("got %d messages, want roster and status", len(s.messages))
	}
	env, err := protocol.Decode(s.messages[0])
	if err != nil || env.Type != protocol.TypeRoster {
		t.Fatalf("first message: %v %s", err, env.Type)
	}
	var roster protocol.Roster
	if err := env.DecodeData(&roster); err != nil {
		t.Fatalf("roster payload: %v", err)
	}
	if len(roster.Players) != 1 || roster.Players[0].Nickname != "alice" {
		t.Fatalf("roster = %+v", roster.Players)
	}

	env, err = protocol.Decode(s.messages[1])
	if err != nil || env.Type != protocol.TypeStatus {
		t.Fatalf("second message: %v %s", err, env.Type)
	}
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	r := New("r1", nil)
	s := &recordingSender{}
	r.Join("a", "alice", "", nil)
	r.Join("b", "bob", "", s)

	r.Leave("a")
	if len(s.messages) != 1 {
		t.Fatalf("got %d messages, want one leave", len(s.messages))
	}
	env, err := protocol.Decode(s.messages[0])
	if err != nil || env.Type != protocol.TypeLeave {
		t.Fatalf("message: %v %s", err, env.Type)
	}
	var p protocol.PlayerSnapshot
	if err := env.DecodeData(&p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.ID != "a" {
		t.Fatalf("leave id = %q", p.ID)
	}
}
