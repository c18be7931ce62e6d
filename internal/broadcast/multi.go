package broadcast

import (
	"context"
	"errors"

	"github.com/cuihairu/werewolf/internal/ports"
)

// Multi publishes to every publisher and subscribes through the first one
// that supports it.
type Multi []ports.Publisher

func (m Multi) Publish(ctx context.Context, s *ports.Snapshot) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Subscribe(ctx context.Context, gameID string) (<-chan *ports.Snapshot, func(), error) {
	for _, p := range m {
		if sub, ok := p.(ports.Subscriber); ok {
			return sub.Subscribe(ctx, gameID)
		}
	}
	return nil, nil, errors.New("no publisher supports subscriptions")
}

// Noop drops every snapshot.
type Noop struct{}

func (Noop) Publish(context.Context, *ports.Snapshot) error { return nil }
