package ports

import (
	"context"
	"errors"
	"time"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/poll"
)

// ErrNotFound is returned by stores for unknown games.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the committed, published view of a game.
type Snapshot struct {
	GameID  string        `json:"game_id"`
	Version int64         `json:"version"`
	Phase   game.PhaseID  `json:"phase"`
	Day     int           `json:"day"`
	Event   string        `json:"event"`
	Game    *game.Game    `json:"game"`
	Poll    *poll.Poll    `json:"poll,omitempty"`
	Summary *poll.Summary `json:"summary,omitempty"`
	At      time.Time     `json:"at"`
}

// SnapshotStore persists game state.
type SnapshotStore interface {
	Load(ctx context.Context, gameID string) (*game.Game, error)
	Save(ctx context.Context, g *game.Game) error
	Delete(ctx context.Context, gameID string) error
}

// Publisher pushes committed snapshots to observers.
type Publisher interface {
	Publish(ctx context.Context, snap *Snapshot) error
}

// Notifier delivers text to one seat or the whole table.
type Notifier interface {
	Notify(ctx context.Context, gameID string, seat int, text string) error
	Broadcast(ctx context.Context, gameID string, text string) error
}

// Presence controls who may speak.
type Presence interface {
	SetMuted(ctx context.Context, gameID string, seat int, muted bool) error
	SetMutedAll(ctx context.Context, gameID string, muted bool) error
}

// AudioCue plays advisory sounds.
type AudioCue interface {
	PlayCue(ctx context.Context, gameID string, cue string) error
}

// Gateway is the chat/voice side: notifications, presence and audio.
type Gateway interface {
	Notifier
	Presence
	AudioCue
}

// Archive keeps finished games.
type Archive interface {
	Archive(ctx context.Context, g *game.Game) (string, error)
}

// Auditor records resolved actions and narration.
type Auditor interface {
	Record(ctx context.Context, kind, gameID string, payload any) error
}

// Subscriber streams snapshots of one game. The returned func unsubscribes.
type Subscriber interface {
	Subscribe(ctx context.Context, gameID string) (<-chan *Snapshot, func(), error)
}
