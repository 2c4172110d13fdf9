// Package protocol defines the JSON wire messages exchanged between game
// clients and the room relay. Position updates are fire-and-forget and
// rate-limited sender-side; events (checkpoint, finish, death) are sent
// reliably over the same ordered connection.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/gridlock-gg/gridlock/mapdef"
)

// MessageType discriminates envelopes.
type MessageType string

const (
	TypeJoin       MessageType = "join"
	TypeLeave      MessageType = "leave"
	TypePosition   MessageType = "position"
	TypeCheckpoint MessageType = "reach-checkpoint"
	TypeFinish     MessageType = "finish"
	TypeDeath      MessageType = "death"
	TypeRoster     MessageType = "roster"
	TypeStatus     MessageType = "status"
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps a payload into an envelope and marshals it.
func Encode(t MessageType, payload any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if payload != nil {
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s: %w", t, err)
		}
	}
	return json.Marshal(Envelope{Type: t, Data: data})
}

// Decode unmarshals an envelope.
func Decode(raw []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, fmt.Errorf("protocol: decode: %w", err)
	}
	return e, nil
}

// DecodeData unmarshals the envelope payload into v.
func (e Envelope) DecodeData(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("protocol: decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Join is the first client message on a connection.
type Join struct {
	Nickname string `json:"nickname"`
	Color    string `json:"color,omitempty"`
}

// Position is the rate-limited movement stream. Loss is tolerated: every
// message supersedes the previous one.
type Position struct {
	Position      mapdef.Vec3 `json:"position"`
	Velocity      mapdef.Vec3 `json:"velocity"`
	AnimationName string      `json:"animationName"`
}

// ReachCheckpoint reports passing a checkpoint for the first time.
type ReachCheckpoint struct {
	Index    int         `json:"index"`
	Position mapdef.Vec3 `json:"position"`
}

// PlayerSnapshot is one roster entry.
type PlayerSnapshot struct {
	ID         string      `json:"id"`
	Nickname   string      `json:"nickname"`
	Position   mapdef.Vec3 `json:"position"`
	Velocity   mapdef.Vec3 `json:"velocity"`
	Animation  string      `json:"animation"`
	Checkpoint int         `json:"checkpoint"`
	Finished   bool        `json:"finished"`
	Color      string      `json:"color,omitempty"`
}

// Roster is the periodic full-room snapshot.
type Roster struct {
	Players []PlayerSnapshot `json:"players"`
}

// GameStatus is the room state machine's externally visible state.
type GameStatus string

const (
	StatusWaiting   GameStatus = "waiting"
	StatusCountdown GameStatus = "countdown"
	StatusPlaying   GameStatus = "playing"
	StatusFinished  GameStatus = "finished"
)

// Status carries a state transition. Countdown is the seconds left in the
// current phase: the start countdown, or the grace period after the first
// finisher.
type Status struct {
	Status    GameStatus `json:"status"`
	Countdown float32    `json:"countdown,omitempty"`
}
