// Package redis caches game snapshots in front of a durable store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/ports"
)

const DefaultTTL = 6 * time.Hour

// CachedStore is a write-through cache. Cache errors never fail a call; the
// backing store stays the source of truth.
type CachedStore struct {
	cli    goredis.Cmdable
	next   ports.SnapshotStore
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.SnapshotStore = (*CachedStore)(nil)

func NewCachedStore(cli goredis.Cmdable, next ports.SnapshotStore, prefix string, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if prefix == "" {
		prefix = "werewolf"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{cli: cli, next: next, prefix: prefix, ttl: ttl, logger: logger}
}

func (s *CachedStore) Key(gameID string) string { return s.prefix + ":snapshot:" + gameID }

func (s *CachedStore) Load(ctx context.Context, gameID string) (*game.Game, error) {
	raw, err := s.cli.Get(ctx, s.Key(gameID)).Bytes()
	switch {
	case err == nil:
		var g game.Game
		if err := json.Unmarshal(raw, &g); err == nil {
			return &g, nil
		}
		s.logger.Warn("snapshot cache entry corrupt", "game_id", gameID)
	case !errors.Is(err, goredis.Nil):
		s.logger.Warn("snapshot cache get failed", "game_id", gameID, "error", err)
	}
	g, err := s.next.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, g)
	return g, nil
}

func (s *CachedStore) Save(ctx context.Context, g *game.Game) error {
	if err := s.next.Save(ctx, g); err != nil {
		// stale cache entries must not outlive a failed write
		s.drop(ctx, g.ID)
		return err
	}
	s.put(ctx, g)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, gameID string) error {
	s.drop(ctx, gameID)
	return s.next.Delete(ctx, gameID)
}

func (s *CachedStore) put(ctx context.Context, g *game.Game) {
	b, err := json.Marshal(g)
	if err != nil {
		s.logger.Warn("snapshot cache encode failed", "game_id", g.ID, "error", err)
		return
	}
	if err := s.cli.Set(ctx, s.Key(g.ID), b, s.ttl).Err(); err != nil {
		s.logger.Warn("snapshot cache set failed", "game_id", g.ID, "error", err)
	}
}

func (s *CachedStore) drop(ctx context.Context, gameID string) {
	if err := s.cli.Del(ctx, s.Key(gameID)).Err(); err != nil {
		s.logger.Warn("snapshot cache del failed", "game_id", gameID, "error", err)
	}
}
