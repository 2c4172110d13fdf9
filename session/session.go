// Package session is the client side of the room connection: a websocket
// with a rate-limited position stream out and the roster/status stream in.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/gridlock-gg/gridlock/game"
	"github.com/gridlock-gg/gridlock/mapdef"
	"github.com/gridlock-gg/gridlock/protocol"
	"github.com/gridlock-gg/gridlock/remote"
	"github.com/gridlock-gg/gridlock/sim"
)

// Client is one player's connection to a room.
type Client struct {
	conn     *websocket.Conn
	log      *logrus.Logger
	registry *remote.Registry

	// limiter caps the position stream at one send per snapshot interval.
	// Dropped sends are fine: the next one supersedes them.
	limiter *rate.Limiter

	writeMu sync.Mutex
	closed  *atomic.Bool

	statusMu sync.Mutex
	status   protocol.Status
}

// Dial connects, sends the join message and starts the receive loop.
// Inbound snapshots land in the registry, read by the next frame's
// reconciliation pass.
func Dial(ctx context.Context, url string, join protocol.Join, registry *remote.Registry, log *logrus.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:     conn,
		log:      log,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Every(game.SnapshotIntervalMS*time.Millisecond), 1),
		closed:   atomic.NewBool(false),
		status:   protocol.Status{Status: protocol.StatusWaiting},
	}
	if err := c.send(protocol.TypeJoin, join); err != nil {
		conn.Close()
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) send(t protocol.MessageType, payload any) error {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	messagesSent.WithLabelValues(string(t)).Inc()
	return nil
}

// SendPosition streams the current pose. Sends beyond the rate limit are
// silently dropped.
func (c *Client) SendPosition(pose sim.Pose) error {
	if c.closed.Load() || !c.limiter.Allow() {
		return nil
	}
	return c.send(protocol.TypePosition, protocol.Position{
		Position:      mapdef.FromVec(pose.Foot),
		Velocity:      mapdef.FromVec(pose.Velocity),
		AnimationName: pose.Animation,
	})
}

// SendCheckpoint reports a first-time checkpoint pass. Not rate limited.
func (c *Client) SendCheckpoint(index int, pos mgl32.Vec3) error {
	return c.send(protocol.TypeCheckpoint, protocol.ReachCheckpoint{
		Index:    index,
		Position: mapdef.FromVec(pos),
	})
}

// SendFinish reports crossing the finish. Not rate limited.
func (c *Client) SendFinish() error {
	return c.send(protocol.TypeFinish, nil)
}

// SendDeath reports entering the dying state. Not rate limited.
func (c *Client) SendDeath() error {
	return c.send(protocol.TypeDeath, nil)
}

// Status returns the last received game status.
func (c *Client) Status() protocol.Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.conn.Close()
}

func (c *Client) readLoop() {
	defer sentry.Recover()
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() && c.log != nil {
				c.log.Debugf("session: read: %v", err)
			}
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			if c.log != nil {
				c.log.Debugf("session: %v", err)
			}
			continue
		}
		messagesReceived.WithLabelValues(string(env.Type)).Inc()
		c.handle(env)
	}
}

func (c *Client) handle(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeRoster:
		var roster protocol.Roster
		if err := env.DecodeData(&roster); err != nil {
			return
		}
		for _, p := range roster.Players {
			c.registry.Apply(remote.Snapshot{
				ID:         p.ID,
				Nickname:   p.Nickname,
				Position:   p.Position.V(),
				Velocity:   p.Velocity.V(),
				Animation:  p.Animation,
				Checkpoint: p.Checkpoint,
				Finished:   p.Finished,
				Color:      p.Color,
			})
		}
	case protocol.TypeStatus:
		var s protocol.Status
		if err := env.DecodeData(&s); err != nil {
			return
		}
		c.statusMu.Lock()
		c.status = s
		c.statusMu.Unlock()
	case protocol.TypeLeave:
		var p protocol.PlayerSnapshot
		if err := env.DecodeData(&p); err != nil {
			return
		}
		c.registry.Remove(p.ID)
	}
}
