// Package mq publishes game events and gateway commands to a message queue.
package mq

import "context"

// Queue publishes JSON-encoded values to a named stream. Key is used for
// partitioning where the backend supports it.
type Queue interface {
	Publish(ctx context.Context, stream, key string, v any) error
	Close() error
}

// Well-known streams.
const (
	StreamSnapshots = "werewolf.snapshots"
	StreamGateway   = "werewolf.gateway"
)
