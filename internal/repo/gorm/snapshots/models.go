package snapshots

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/cuihairu/werewolf/internal/game"
)

// GameSnapshot is the last committed state of one game.
type GameSnapshot struct {
	ID      string `gorm:"primaryKey;size:64"`
	Phase   string `gorm:"size:32;index"`
	Day     int
	Version int64
	Ended   bool   `gorm:"index"`
	Winner  string `gorm:"size:32"`
	// State is the full game document
	State     datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GameSnapshot) TableName() string { return "game_snapshots" }

func fromGame(g *game.Game) (*GameSnapshot, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return &GameSnapshot{
		ID:        g.ID,
		Phase:     string(g.Phase),
		Day:       g.Day,
		Version:   g.Version,
		Ended:     g.Ended,
		Winner:    string(g.Winner),
		State:     b,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}, nil
}

func (s *GameSnapshot) toGame() (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal(s.State, &g); err != nil {
		return nil, err
	}
	if g.Data == nil {
		g.Data = game.NewPhaseData()
	}
	return &g, nil
}
