// Package room is the server-side race room: the member roster, the game
// status state machine and the periodic snapshot broadcast the clients
// reconcile against.
package room

import (
	"sync"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/sirupsen/logrus"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/protocol"
)

// CountdownSeconds is the pre-race countdown length.
const CountdownSeconds float32 = 3

// Sender delivers encoded messages to one member's connection.
type Sender interface {
	Send(data []byte) error
}

// Member is one connected player.
type Member struct {
	ID       string
	Nickname string
	Color    string

	sender Sender
	snap   protocol.PlayerSnapshot
}

// Room holds the roster in join order and drives the status transitions
// waiting -> countdown -> playing -> finished.
type Room struct {
	mu  sync.Mutex
	id  string
	log *logrus.Logger

	status    protocol.GameStatus
	countdown float32
	grace     float32

	members *orderedmap.OrderedMap[string, *Member]
}

// New creates an empty room in the waiting state.
func New(id string, log *logrus.Logger) *Room {
	return &Room{
		id:      id,
		log:     log,
		status:  protocol.StatusWaiting,
		members: orderedmap.NewOrderedMap[string, *Member](),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Join adds a member. Rejoining with an existing id replaces the sender but
// keeps the roster slot.
func (r *Room) Join(id, nickname, color string, s Sender) *Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members.Get(id); ok {
		m.sender = s
		return m
	}
	m := &Member{
		ID: id, Nickname: nickname, Color: color,
		sender: s,
		snap:   protocol.PlayerSnapshot{ID: id, Nickname: nickname, Color: color},
	}
	r.members.Set(id, m)
	playersGauge.Inc()
	if r.log != nil {
		r.log.Infof("room %s: %s joined (%d players)", r.id, nickname, r.members.Len())
	}
	return m
}

// Leave removes a member.
func (r *Room) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members.Get(id)
	if !ok {
		return
	}
	r.members.Delete(id)
	playersGauge.Dec()
	if r.log != nil {
		r.log.Infof("room %s: %s left (%d players)", r.id, id, r.members.Len())
	}
	// Tell the remaining members so they drop the remote player right away
	// instead of waiting for the roster to catch up.
	if data, err := protocol.Encode(protocol.TypeLeave, protocol.PlayerSnapshot{ID: id, Nickname: m.Nickname}); err == nil {
		for el := r.members.Front(); el != nil; el = el.Next() {
			if el.Value.sender != nil {
				_ = el.Value.sender.Send(data)
			}
		}
	}
}

// Len returns the member count.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members.Len()
}

// UpdatePosition stores a member's latest movement snapshot.
func (r *Room) UpdatePosition(id string, p protocol.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members.Get(id); ok {
		m.snap.Position = p.Position
		m.snap.Velocity = p.Velocity
		m.snap.Animation = p.AnimationName
	}
}

// ReachCheckpoint bumps a member's checkpoint count. Indices are 0-based,
// so count = index + 1; out-of-order duplicates cannot shrink it.
func (r *Room) ReachCheckpoint(id string, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members.Get(id); ok && index+1 > m.snap.Checkpoint {
		m.snap.Checkpoint = index + 1
	}
}

// Finish marks a member as finished. The first finisher while playing
// starts the grace countdown for everyone else.
func (r *Room) Finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members.Get(id)
	if !ok || m.snap.Finished {
		return
	}
	m.snap.Finished = true
	if r.status == protocol.StatusPlaying && r.grace == 0 {
		r.grace = game.FinishGraceSeconds
		if r.log != nil {
			r.log.Infof("room %s: first finish by %s, %.0fs grace", r.id, m.Nickname, r.grace)
		}
	}
}

// Start begins the pre-race countdown. Only valid from waiting.
func (r *Room) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != protocol.StatusWaiting {
		return
	}
	r.status = protocol.StatusCountdown
	r.countdown = CountdownSeconds
}

// Tick advances the status timers.
func (r *Room) Tick(dt float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.status {
	case protocol.StatusCountdown:
		r.countdown -= dt
		if r.countdown <= 0 {
			r.countdown = 0
			r.status = protocol.StatusPlaying
		}
	case protocol.StatusPlaying:
		if r.allFinishedLocked() {
			r.status = protocol.StatusFinished
			r.grace = 0
			return
		}
		if r.grace > 0 {
			r.grace -= dt
			if r.grace <= 0 {
				r.grace = 0
				r.status = protocol.StatusFinished
			}
		}
	}
}

func (r *Room) allFinishedLocked() bool {
	if r.members.Len() == 0 {
		return false
	}
	for el := r.members.Front(); el != nil; el = el.Next() {
		if !el.Value.snap.Finished {
			return false
		}
	}
	return true
}

// Status returns the current status with the relevant countdown: the start
// countdown, or the grace timer once someone has finished.
func (r *Room) Status() protocol.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := protocol.Status{Status: r.status}
	switch r.status {
	case protocol.StatusCountdown:
		s.Countdown = r.countdown
	case protocol.StatusPlaying:
		s.Countdown = r.grace
	}
	return s
}

// Roster returns every member's snapshot in join order.
func (r *Room) Roster() protocol.Roster {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster := protocol.Roster{Players: make([]protocol.PlayerSnapshot, 0, r.members.Len())}
	for el := r.members.Front(); el != nil; el = el.Next() {
		roster.Players = append(roster.Players, el.Value.snap)
	}
	return roster
}

// Broadcast sends the roster and status to every member. Send failures are
// logged and skipped; the member is reaped by its connection handler.
func (r *Room) Broadcast() {
	roster, err := protocol.Encode(protocol.TypeRoster, r.Roster())
	if err != nil {
		return
	}
	status, err := protocol.Encode(protocol.TypeStatus, r.Status())
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for el := r.members.Front(); el != nil; el = el.Next() {
		m := el.Value
		if m.sender == nil {
			continue
		}
		if err := m.sender.Send(roster); err != nil {
			continue
		}
		if err := m.sender.Send(status); err != nil {
			continue
		}
		snapshotsSent.Inc()
	}
}
