package mq

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	redis "github.com/redis/go-redis/v9"
)

// Config selects the backend: redis, kafka or noop.
type Config struct {
	Type         string   `json:",default=noop" env:"WEREWOLF_MQ_TYPE" envDefault:"noop"`
	Brokers      []string `json:",optional" env:"KAFKA_BROKERS" envSeparator:","`
	TopicPrefix  string   `json:",optional" env:"WEREWOLF_KAFKA_TOPIC_PREFIX"`
	RedisURL     string   `json:",optional" env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	StreamPrefix string   `json:",optional" env:"WEREWOLF_REDIS_STREAM_PREFIX"`
	MaxLen       int64    `json:",default=100000" env:"WEREWOLF_REDIS_MAXLEN" envDefault:"100000"`
	MaxLenApprox bool     `json:",default=true" env:"WEREWOLF_REDIS_MAXLEN_APPROX" envDefault:"true"`
}

func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse mq env: %w", err)
	}
	return c, nil
}

// New builds a Queue from c. Unknown types fall back to noop.
func New(c Config, logger *slog.Logger) (Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(c.Type) {
	case "redis":
		opt, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		logger.Info("mq: redis streams enabled", "prefix", c.StreamPrefix, "maxlen", c.MaxLen)
		return NewRedis(redis.NewClient(opt), c.StreamPrefix, c.MaxLen, c.MaxLenApprox), nil
	case "kafka":
		logger.Info("mq: kafka enabled", "brokers", strings.Join(c.Brokers, ","), "prefix", c.TopicPrefix)
		return NewKafka(c.Brokers, c.TopicPrefix), nil
	case "", "noop":
		return NewNoop(), nil
	default:
		logger.Warn("mq: unsupported type, using noop", "type", c.Type)
		return NewNoop(), nil
	}
}
