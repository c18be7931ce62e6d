// Package gateway forwards notifications, presence changes and audio cues to
// the chat/voice side.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuihairu/werewolf/internal/broadcast/mq"
	"github.com/cuihairu/werewolf/internal/ports"
)

// Ops carried by a Command.
const (
	OpNotify    = "notify"
	OpBroadcast = "broadcast"
	OpMute      = "mute"
	OpMuteAll   = "mute_all"
	OpCue       = "cue"
)

// Command is one instruction for the gateway consumer. Seat 0 addresses the
// whole table.
type Command struct {
	Op     string    `json:"op"`
	GameID string    `json:"game_id"`
	Seat   int       `json:"seat,omitempty"`
	Text   string    `json:"text,omitempty"`
	Muted  bool      `json:"muted,omitempty"`
	At     time.Time `json:"at"`
}

// Outbox turns every gateway call into a Command on mq.StreamGateway. Commands
// of one game share a partition key, so consumers see them in order.
type Outbox struct {
	q   mq.Queue
	now func() time.Time
}

var _ ports.Gateway = (*Outbox)(nil)

func NewOutbox(q mq.Queue) *Outbox { return &Outbox{q: q, now: time.Now} }

func (o *Outbox) send(ctx context.Context, c Command) error {
	c.At = o.now().UTC()
	return o.q.Publish(ctx, mq.StreamGateway, c.GameID, c)
}

func (o *Outbox) Notify(ctx context.Context, gameID string, seat int, text string) error {
	return o.send(ctx, Command{Op: OpNotify, GameID: gameID, Seat: seat, Text: text})
}

func (o *Outbox) Broadcast(ctx context.Context, gameID, text string) error {
	return o.send(ctx, Command{Op: OpBroadcast, GameID: gameID, Text: text})
}

func (o *Outbox) SetMuted(ctx context.Context, gameID string, seat int, muted bool) error {
	return o.send(ctx, Command{Op: OpMute, GameID: gameID, Seat: seat, Muted: muted})
}

func (o *Outbox) SetMutedAll(ctx context.Context, gameID string, muted bool) error {
	return o.send(ctx, Command{Op: OpMuteAll, GameID: gameID, Muted: muted})
}

func (o *Outbox) PlayCue(ctx context.Context, gameID, cue string) error {
	return o.send(ctx, Command{Op: OpCue, GameID: gameID, Text: cue})
}

// Log writes gateway calls to a logger. Used when no queue is configured.
type Log struct{ Logger *slog.Logger }

var _ ports.Gateway = Log{}

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l Log) Notify(ctx context.Context, gameID string, seat int, text string) error {
	l.logger().InfoContext(ctx, "gateway notify", "game_id", gameID, "seat", seat, "text", text)
	return nil
}

func (l Log) Broadcast(ctx context.Context, gameID, text string) error {
	l.logger().InfoContext(ctx, "gateway broadcast", "game_id", gameID, "text", text)
	return nil
}

func (l Log) SetMuted(ctx context.Context, gameID string, seat int, muted bool) error {
	l.logger().DebugContext(ctx, "gateway mute", "game_id", gameID, "seat", seat, "muted", muted)
	return nil
}

func (l Log) SetMutedAll(ctx context.Context, gameID string, muted bool) error {
	l.logger().DebugContext(ctx, "gateway mute all", "game_id", gameID, "muted", muted)
	return nil
}

func (l Log) PlayCue(ctx context.Context, gameID, cue string) error {
	l.logger().DebugContext(ctx, "gateway cue", "game_id", gameID, "cue", cue)
	return nil
}
