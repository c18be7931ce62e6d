// Package broadcast fans committed snapshots out to observers: in process,
// over redis pub/sub and onto the event stream.
package broadcast

import (
	"context"
	"errors"
	"sync"

	"github.com/cuihairu/werewolf/internal/ports"
)

// Hub delivers snapshots to in-process subscribers. A lagging subscriber
// loses intermediate snapshots but always receives the latest one.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan *ports.Snapshot]struct{}
	latest map[string]*ports.Snapshot
	buf    int
}

var (
	_ ports.Publisher  = (*Hub)(nil)
	_ ports.Subscriber = (*Hub)(nil)
)

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 8
	}
	return &Hub{
		subs:   map[string]map[chan *ports.Snapshot]struct{}{},
		latest: map[string]*ports.Snapshot{},
		buf:    buffer,
	}
}

// Subscribe registers a subscriber for gameID. The latest known snapshot is
// delivered first. The channel is closed by the returned func or when ctx ends.
func (h *Hub) Subscribe(ctx context.Context, gameID string) (<-chan *ports.Snapshot, func(), error) {
	ch := make(chan *ports.Snapshot, h.buf)
	h.mu.Lock()
	set, ok := h.subs[gameID]
	if !ok {
		set = map[chan *ports.Snapshot]struct{}{}
		h.subs[gameID] = set
	}
	set[ch] = struct{}{}
	if s, ok := h.latest[gameID]; ok {
		ch <- s
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() { once.Do(func() { h.unsubscribe(gameID, ch) }) }
	stop := context.AfterFunc(ctx, cancel)
	return ch, func() { stop(); cancel() }, nil
}

func (h *Hub) unsubscribe(gameID string, ch chan *ports.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[gameID]
	if _, ok := set[ch]; ok {
		delete(set, ch)
		close(ch)
	}
	if len(set) == 0 {
		delete(h.subs, gameID)
	}
}

// Publish never blocks. Snapshots older than the latest one are ignored.
func (h *Hub) Publish(_ context.Context, s *ports.Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.latest[s.GameID]; ok && prev.Version > s.Version {
		return nil
	}
	h.latest[s.GameID] = s
	for ch := range h.subs[s.GameID] {
		select {
		case ch <- s:
			continue
		default:
		}
		// drop the oldest buffered snapshot to make room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
	return nil
}

// Forget drops the cached latest snapshot of a game.
func (h *Hub) Forget(gameID string) {
	h.mu.Lock()
	delete(h.latest, gameID)
	h.mu.Unlock()
}

// Subscribers returns the subscriber count of a game.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}
