// Package memory keeps game state in process. It backs tests and single-node
// deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/ports"
)

// Store is an in-memory ports.SnapshotStore.
type Store struct {
	mu    sync.RWMutex
	games map[string]*game.Game
}

var _ ports.SnapshotStore = (*Store)(nil)

func NewStore() *Store { return &Store{games: map[string]*game.Game{}} }

func (s *Store) Load(_ context.Context, id string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return g.Clone(), nil
}

func (s *Store) Save(_ context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.games, id)
	return nil
}

// IDs lists stored game ids.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.games))
	for id := range s.games {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
