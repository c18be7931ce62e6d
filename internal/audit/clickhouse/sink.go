// Package clickhouse ships audit records to ClickHouse for offline analysis.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/cuihairu/werewolf/internal/ports"
)

// Row is one buffered audit record.
type Row struct {
	Time    time.Time
	GameID  string
	Kind    string
	Payload string
}

// FlushFunc writes one batch.
type FlushFunc func(ctx context.Context, rows []Row) error

// Config of the sink.
type Config struct {
	DSN           string        `json:",optional" env:"AUDIT_CLICKHOUSE_DSN"`
	Table         string        `json:",default=werewolf.audit_events" env:"AUDIT_CLICKHOUSE_TABLE" envDefault:"werewolf.audit_events"`
	BatchSize     int           `json:",default=200" env:"AUDIT_CLICKHOUSE_BATCH" envDefault:"200"`
	FlushInterval time.Duration `json:",default=2s" env:"AUDIT_CLICKHOUSE_FLUSH" envDefault:"2s"`
}

// Sink buffers records and flushes them in batches, on size or interval.
type Sink struct {
	flush     FlushFunc
	batchSize int
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	buf  []Row
	stop chan struct{}
	done chan struct{}
	once sync.Once
	conn interface{ Close() error }
}

var _ ports.Auditor = (*Sink)(nil)

// NewSink starts the interval flusher. interval <= 0 flushes on size and Close only.
func NewSink(flush FlushFunc, batchSize int, interval time.Duration, logger *slog.Logger) *Sink {
	if batchSize <= 0 {
		batchSize = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sink{
		flush:     flush,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if interval > 0 {
		go s.run(interval)
	} else {
		close(s.done)
	}
	return s
}

// Open connects to ClickHouse and returns a sink inserting into c.Table.
func Open(c Config, logger *slog.Logger) (*Sink, error) {
	opts, err := clickhouse.ParseDSN(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	table := c.Table
	if table == "" {
		table = "werewolf.audit_events"
	}
	query := "INSERT INTO " + table + " (event_time, game_id, kind, payload_json)"
	flush := func(ctx context.Context, rows []Row) error {
		batch, err := conn.PrepareBatch(ctx, query)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := batch.Append(r.Time, r.GameID, r.Kind, r.Payload); err != nil {
				_ = batch.Abort()
				return err
			}
		}
		return batch.Send()
	}
	s := NewSink(flush, c.BatchSize, c.FlushInterval, logger)
	s.conn = conn
	return s, nil
}

func (s *Sink) Record(ctx context.Context, kind, gameID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	s.mu.Lock()
	s.buf = append(s.buf, Row{Time: s.now().UTC(), GameID: gameID, Kind: kind, Payload: string(raw)})
	full := len(s.buf) >= s.batchSize
	s.mu.Unlock()
	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush writes the buffered rows. Failed rows are dropped.
func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	rows := s.buf
	s.buf = nil
	s.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}
	if err := s.flush(ctx, rows); err != nil {
		return fmt.Errorf("flush %d audit rows: %w", len(rows), err)
	}
	return nil
}

// Pending returns the number of buffered rows.
func (s *Sink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

func (s *Sink) run(interval time.Duration) {
	defer close(s.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			if err := s.Flush(ctx); err != nil {
				s.logger.Warn("audit flush failed", "error", err)
			}
			cancel()
		}
	}
}

// Close stops the flusher and writes what is left.
func (s *Sink) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.Flush(ctx)
		if s.conn != nil {
			if cerr := s.conn.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}
