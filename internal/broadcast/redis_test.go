package broadcast

import (
	"context"
	"os"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func TestRedisChannel(t *testing.T) {
	r := NewRedis(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "", nil)
	if got := r.Channel("g1"); got != "werewolf:game:g1" {
		t.Fatalf("channel = %s", got)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	cli := redis.NewClient(opt)
	defer cli.Close()
	r := NewRedis(cli, "werewolf-test", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, unsub, err := r.Subscribe(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	defer unsub()
	if err := r.Publish(ctx, snap("g1", 9)); err != nil {
		t.Fatal(err)
	}
	select {
	case s := <-ch:
		if s.Version != 9 {
			t.Fatalf("version = %d", s.Version)
		}
	case <-ctx.Done():
		t.Fatalf("no snapshot received")
	}
}
