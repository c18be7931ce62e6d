package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	redis "github.com/redis/go-redis/v9"

	"github.com/cuihairu/werewolf/internal/ports"
)

// Redis publishes snapshots on a pub/sub channel per game so several service
// instances can serve the same observers.
type Redis struct {
	cli    *redis.Client
	prefix string
	logger *slog.Logger
}

var (
	_ ports.Publisher  = (*Redis)(nil)
	_ ports.Subscriber = (*Redis)(nil)
)

func NewRedis(cli *redis.Client, prefix string, logger *slog.Logger) *Redis {
	if prefix == "" {
		prefix = "werewolf"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{cli: cli, prefix: prefix, logger: logger}
}

// Channel is <prefix>:game:<id>.
func (r *Redis) Channel(gameID string) string {
	return fmt.Sprintf("%s:game:%s", r.prefix, gameID)
}

func (r *Redis) Publish(ctx context.Context, s *ports.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.cli.Publish(ctx, r.Channel(s.GameID), b).Err()
}

func (r *Redis) Subscribe(ctx context.Context, gameID string) (<-chan *ports.Snapshot, func(), error) {
	ps := r.cli.Subscribe(ctx, r.Channel(gameID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", gameID, err)
	}
	out := make(chan *ports.Snapshot, 8)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done); _ = ps.Close() }) }
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var s ports.Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
					r.logger.Warn("drop undecodable snapshot", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- &s:
				case <-done:
					return
				}
			}
		}
	}()
	return out, cancel, nil
}
