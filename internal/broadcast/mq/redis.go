package mq

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

type redisQueue struct {
	cli          *redis.Client
	prefix       string
	maxLen       int64
	maxLenApprox bool
}

// NewRedis writes every stream to a redis stream named prefix+stream. The
// message body is stored as a single "data" field.
func NewRedis(cli *redis.Client, prefix string, maxLen int64, approx bool) Queue {
	return &redisQueue{cli: cli, prefix: prefix, maxLen: maxLen, maxLenApprox: approx}
}

func (q *redisQueue) Close() error { return q.cli.Close() }

func (q *redisQueue) Args(stream, key string, v any) (*redis.XAddArgs, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", stream, err)
	}
	args := &redis.XAddArgs{Stream: q.prefix + stream, Values: map[string]any{"key": key, "data": string(b)}}
	if q.maxLen > 0 {
		args.MaxLen = q.maxLen
		args.Approx = q.maxLenApprox
	}
	return args, nil
}

func (q *redisQueue) Publish(ctx context.Context, stream, key string, v any) error {
	args, err := q.Args(stream, key, v)
	if err != nil {
		return err
	}
	return q.cli.XAdd(ctx, args).Err()
}
