package gateway

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cuihairu/werewolf/internal/broadcast/mq"
)

type queue struct {
	streams []string
	keys    []string
	cmds    []Command
}

func (q *queue) Publish(_ context.Context, stream, key string, v any) error {
	q.streams = append(q.streams, stream)
	q.keys = append(q.keys, key)
	q.cmds = append(q.cmds, v.(Command))
	return nil
}
func (q *queue) Close() error { return nil }

func TestOutbox(t *testing.T) {
	q := &queue{}
	o := NewOutbox(q)
	at := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return at }
	ctx := context.Background()

	_ = o.Notify(ctx, "g1", 3, "你的身份是: 预言家")
	_ = o.Broadcast(ctx, "g1", "天亮了")
	_ = o.SetMuted(ctx, "g1", 2, true)
	_ = o.SetMutedAll(ctx, "g1", false)
	_ = o.PlayCue(ctx, "g1", "poll_start")

	want := []Command{
		{Op: OpNotify, GameID: "g1", Seat: 3, Text: "你的身份是: 预言家", At: at},
		{Op: OpBroadcast, GameID: "g1", Text: "天亮了", At: at},
		{Op: OpMute, GameID: "g1", Seat: 2, Muted: true, At: at},
		{Op: OpMuteAll, GameID: "g1", At: at},
		{Op: OpCue, GameID: "g1", Text: "poll_start", At: at},
	}
	if len(q.cmds) != len(want) {
		t.Fatalf("got %d commands", len(q.cmds))
	}
	for i, c := range q.cmds {
		if c != want[i] {
			t.Errorf("command %d = %+v, want %+v", i, c, want[i])
		}
		if q.streams[i] != mq.StreamGateway || q.keys[i] != "g1" {
			t.Errorf("command %d went to %s/%s", i, q.streams[i], q.keys[i])
		}
	}
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	ctx := context.Background()
	_ = l.Notify(ctx, "g1", 1, "hi")
	_ = l.PlayCue(ctx, "g1", "night")
	out := buf.String()
	if !strings.Contains(out, "gateway notify") || !strings.Contains(out, "cue=night") {
		t.Fatalf("log = %s", out)
	}
}
