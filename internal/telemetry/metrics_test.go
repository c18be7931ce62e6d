package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/session"
)

var _ session.Metrics = (*GameMetrics)(nil)

func sum(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T", name, m.Data)
			}
			for _, dp := range data.DataPoints {
				if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestGameMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	p, err := NewProvider(context.Background(), Config{ServiceName: "test", SamplingRatio: 1}, nil, sdkmetric.WithReader(reader))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown(context.Background())

	ctx := context.Background()
	m := p.Metrics
	m.PhaseEntered(ctx, "g1", "NIGHT")
	m.PhaseEntered(ctx, "g1", "NIGHT")
	m.ActionResolved(ctx, "g1", "kill", "RESOLVED")
	m.RoleDied(ctx, "g1", "villager")
	m.PollResolved(ctx, "g1", "exile", "pk")
	m.CommandDone(ctx, "cast_vote", 3*time.Millisecond, game.Conflictf("poll closed"))
	m.CommandDone(ctx, "cast_vote", time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name string
		attr attribute.KeyValue
		want int64
	}{
		{"werewolf.phase.entered", PhaseKey.String("NIGHT"), 2},
		{"werewolf.action.resolved", ActionKey.String("kill"), 1},
		{"werewolf.role.died", RoleKey.String("villager"), 1},
		{"werewolf.poll.resolved", PollOutcomeKey.String("pk"), 1},
		{"werewolf.command.total", ErrorKindKey.String("conflict"), 1},
		{"werewolf.command.total", ErrorKindKey.String("none"), 1},
	}
	for _, c := range checks {
		if got := sum(t, rm, c.name, c.attr); got != c.want {
			t.Errorf("%s{%s} = %d, want %d", c.name, c.attr.Value.Emit(), got, c.want)
		}
	}
	if p.Tracer() == nil {
		t.Fatalf("tracer should never be nil")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLE_TRACING", "true")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")
	c, err := ConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if !c.EnableTracing || c.SamplingRatio != 0.25 || c.ServiceName != "werewolf" || c.PushInterval != 30*time.Second {
		t.Fatalf("config = %+v", c)
	}
}
