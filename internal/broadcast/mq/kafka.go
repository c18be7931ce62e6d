package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// kafkaQueue keeps one writer per topic. Writers are safe for concurrent use.
type kafkaQueue struct {
	brokers []string
	prefix  string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafka returns a Noop when no broker is configured.
func NewKafka(brokers []string, topicPrefix string) Queue {
	if len(brokers) == 0 {
		return NewNoop()
	}
	return &kafkaQueue{brokers: brokers, prefix: topicPrefix, writers: map[string]*kafka.Writer{}}
}

// Topic maps a stream to its kafka topic.
func (q *kafkaQueue) Topic(stream string) string { return q.prefix + stream }

func (q *kafkaQueue) writer(stream string) *kafka.Writer {
	q.mu.Lock()
	defer q.mu.Unlock()
	w, ok := q.writers[stream]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(q.brokers...),
			Topic:        q.Topic(stream),
			RequiredAcks: kafka.RequireOne,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		}
		q.writers[stream] = w
	}
	return w
}

func (q *kafkaQueue) Publish(ctx context.Context, stream, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", stream, err)
	}
	return q.writer(stream).WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}

func (q *kafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	var err error
	for _, w := range q.writers {
		if e := w.Close(); e != nil {
			err = e
		}
	}
	q.writers = map[string]*kafka.Writer{}
	return err
}
