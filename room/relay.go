package room

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/protocol"
)

// wsSender serializes writes to one websocket connection.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Relay connects websocket clients to a room and drives the room's tick
// and broadcast loop.
type Relay struct {
	room     *Room
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

// NewRelay wraps a room for serving.
func NewRelay(room *Room, log *logrus.Logger) *Relay {
	return &Relay{
		room: room,
		log:  log,
		upgrader: websocket.Upgrader{
			// The map API already allows any origin; the relay matches.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run ticks the room and broadcasts snapshots at the snapshot interval
// until the context ends.
func (r *Relay) Run(ctx context.Context) {
	defer sentry.Recover()

	interval := game.SnapshotIntervalMS * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.room.Tick(float32(now.Sub(last).Seconds()))
			last = now
			r.room.Broadcast()
		}
	}
}

// ServeHTTP upgrades a client connection. The first message must be a
// join; everything after is the movement and event stream.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	go r.serve(conn)
}

func (r *Relay) serve(conn *websocket.Conn) {
	defer sentry.Recover()
	defer conn.Close()

	join, ok := r.readJoin(conn)
	if !ok {
		return
	}
	id := uuid.NewString()
	r.room.Join(id, join.Nickname, join.Color, &wsSender{conn: conn})
	defer r.room.Leave(id)

	// Rooms with enough players start on their own.
	if r.room.Len() >= 2 {
		r.room.Start()
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			continue
		}
		switch env.Type {
		case protocol.TypePosition:
			var p protocol.Position
			if env.DecodeData(&p) == nil {
				r.room.UpdatePosition(id, p)
			}
		case protocol.TypeCheckpoint:
			var cp protocol.ReachCheckpoint
			if env.DecodeData(&cp) == nil {
				r.room.ReachCheckpoint(id, cp.Index)
			}
		case protocol.TypeFinish:
			r.room.Finish(id)
		case protocol.TypeDeath:
			if r.log != nil {
				r.log.Debugf("room %s: %s died", r.room.ID(), id)
			}
		case protocol.TypeLeave:
			return
		}
	}
}

func (r *Relay) readJoin(conn *websocket.Conn) (protocol.Join, bool) {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return protocol.Join{}, false
	}
	env, err := protocol.Decode(data)
	if err != nil || env.Type != protocol.TypeJoin {
		return protocol.Join{}, false
	}
	var join protocol.Join
	if err := env.DecodeData(&join); err != nil {
		return protocol.Join{}, false
	}
	if join.Nickname == "" {
		join.Nickname = "player"
	}
	return join, true
}
