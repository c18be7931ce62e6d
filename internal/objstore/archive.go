package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/ports"
)

// Archive writes final game states as JSON objects.
type Archive struct {
	store  Store
	prefix string
}

var _ ports.Archive = (*Archive)(nil)

func NewArchive(s Store, prefix string) *Archive {
	if prefix == "" {
		prefix = "games"
	}
	return &Archive{store: s, prefix: prefix}
}

// Key is games/2006/01/<id>-v<version>.json.
func (a *Archive) Key(g *game.Game) string {
	return path.Join(a.prefix, g.UpdatedAt.UTC().Format("2006/01"), fmt.Sprintf("%s-v%d.json", g.ID, g.Version))
}

func (a *Archive) Archive(ctx context.Context, g *game.Game) (string, error) {
	b, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	key := a.Key(g)
	if err := a.store.Put(ctx, key, bytes.NewReader(b), int64(len(b)), "application/json"); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Load reads an archived game back.
func (a *Archive) Load(ctx context.Context, key string) (*game.Game, error) {
	b, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var g game.Game
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &g, nil
}
