package mq

import (
	"context"
	"errors"

	"github.com/cuihairu/werewolf/internal/ports"
)

// Event is the compact form of a committed snapshot put on the event stream.
type Event struct {
	GameID  string `json:"game_id"`
	Version int64  `json:"version"`
	Phase   string `json:"phase"`
	Day     int    `json:"day"`
	Event   string `json:"event"`
	Ended   bool   `json:"ended"`
	Winner  string `json:"winner,omitempty"`
	At      int64  `json:"at"`
}

func EventOf(s *ports.Snapshot) Event {
	ev := Event{GameID: s.GameID, Version: s.Version, Phase: string(s.Phase), Day: s.Day, Event: s.Event, At: s.At.UnixMilli()}
	if s.Game != nil {
		ev.Ended = s.Game.Ended
		ev.Winner = string(s.Game.Winner)
	}
	return ev
}

// Publisher puts every committed snapshot on StreamSnapshots, keyed by game.
type Publisher struct{ Q Queue }

var _ ports.Publisher = Publisher{}

func (p Publisher) Publish(ctx context.Context, s *ports.Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	return p.Q.Publish(ctx, StreamSnapshots, s.GameID, EventOf(s))
}
