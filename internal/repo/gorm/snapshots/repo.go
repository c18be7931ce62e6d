package snapshots

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/ports"
)

// Repo provides GORM-based persistence for game snapshots.
type Repo struct{ db *gorm.DB }

var _ ports.SnapshotStore = (*Repo)(nil)

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&GameSnapshot{}) }
func NewRepo(db *gorm.DB) *Repo     { return &Repo{db: db} }

func (r *Repo) Load(ctx context.Context, id string) (*game.Game, error) {
	var s GameSnapshot
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	g, err := s.toGame()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return g, nil
}

// Save upserts the snapshot. An older version never overwrites a newer one.
func (r *Repo) Save(ctx context.Context, g *game.Game) error {
	s, err := fromGame(g)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", g.ID, err)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"phase", "day", "version", "ended", "winner", "state", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "game_snapshots.version < excluded.version"},
		}},
	}).Create(s).Error
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&GameSnapshot{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Filter narrows List.
type Filter struct {
	Ended *bool
	Limit int
}

// List returns snapshot headers, most recently updated first. State is not loaded.
func (r *Repo) List(ctx context.Context, f Filter) ([]*GameSnapshot, error) {
	q := r.db.WithContext(ctx).Model(&GameSnapshot{}).
		Select("id", "phase", "day", "version", "ended", "winner", "created_at", "updated_at").
		Order("updated_at DESC")
	if f.Ended != nil {
		q = q.Where("ended = ?", *f.Ended)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var arr []*GameSnapshot
	if err := q.Find(&arr).Error; err != nil {
		return nil, err
	}
	return arr, nil
}
