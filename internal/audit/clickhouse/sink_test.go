package clickhouse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type batches struct {
	mu   sync.Mutex
	got  [][]Row
	fail error
}

func (b *batches) flush(_ context.Context, rows []Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.got = append(b.got, rows)
	return nil
}

func (b *batches) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.got)
}

func TestSinkFlushesOnSize(t *testing.T) {
	b := &batches{}
	s := NewSink(b.flush, 2, 0, nil)
	ctx := context.Background()
	if err := s.Record(ctx, "action", "g1", map[string]any{"action": "seer.check"}); err != nil {
		t.Fatal(err)
	}
	if b.count() != 0 || s.Pending() != 1 {
		t.Fatalf("flushed early: batches=%d pending=%d", b.count(), s.Pending())
	}
	if err := s.Record(ctx, "death", "g1", map[string]any{"seat": 3}); err != nil {
		t.Fatal(err)
	}
	if b.count() != 1 || len(b.got[0]) != 2 || s.Pending() != 0 {
		t.Fatalf("batches=%v pending=%d", b.got, s.Pending())
	}
	r := b.got[0][1]
	if r.Kind != "death" || r.GameID != "g1" || r.Payload != `{"seat":3}` {
		t.Fatalf("row = %+v", r)
	}
	if err := s.Record(ctx, "narration", "g1", "天亮了"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if b.count() != 2 {
		t.Fatalf("close should flush the rest, batches=%d", b.count())
	}
}

func TestSinkFlushesOnInterval(t *testing.T) {
	b := &batches{}
	s := NewSink(b.flush, 100, 10*time.Millisecond, nil)
	defer s.Close()
	if err := s.Record(context.Background(), "action", "g1", nil); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for b.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("interval flush did not happen")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSinkFlushError(t *testing.T) {
	b := &batches{fail: errors.New("ch down")}
	s := NewSink(b.flush, 1, 0, nil)
	if err := s.Record(context.Background(), "action", "g1", nil); err == nil {
		t.Fatalf("flush error should surface")
	}
	if s.Pending() != 0 {
		t.Fatalf("failed rows are dropped")
	}
	if err := s.Record(context.Background(), "bad", "g1", func() {}); err == nil {
		t.Fatalf("unencodable payload should fail")
	}
}

func TestOpenBadDSN(t *testing.T) {
	if _, err := Open(Config{DSN: "::not a dsn"}, nil); err == nil {
		t.Fatalf("bad dsn should fail")
	}
}
