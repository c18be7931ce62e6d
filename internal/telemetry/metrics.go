package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cuihairu/werewolf/internal/game"
)

// 属性
const (
	PhaseKey        = attribute.Key("game.phase")
	ActionKey       = attribute.Key("action.name")
	ActionStatusKey = attribute.Key("action.status")
	RoleKey         = attribute.Key("role.name")
	PollKindKey     = attribute.Key("poll.kind")
	PollOutcomeKey  = attribute.Key("poll.outcome")
	CommandKey      = attribute.Key("command.name")
	ErrorKindKey    = attribute.Key("error.kind")
)

// GameMetrics 引擎指标. Game ids stay out of attributes.
type GameMetrics struct {
	PhaseCounter    metric.Int64Counter     // 进入阶段
	ActionCounter   metric.Int64Counter     // 结算的行动
	DeathCounter    metric.Int64Counter     // 死亡身份
	PollCounter     metric.Int64Counter     // 结束的投票
	CommandCounter  metric.Int64Counter     // 命令
	CommandDuration metric.Float64Histogram // 命令耗时
}

func NewGameMetrics(meter metric.Meter) (*GameMetrics, error) {
	var err error
	m := &GameMetrics{}

	if m.PhaseCounter, err = meter.Int64Counter("werewolf.phase.entered",
		metric.WithDescription("Phases entered"),
		metric.WithUnit("{phases}"),
	); err != nil {
		return nil, err
	}
	if m.ActionCounter, err = meter.Int64Counter("werewolf.action.resolved",
		metric.WithDescription("Action instances that reached a final status"),
		metric.WithUnit("{actions}"),
	); err != nil {
		return nil, err
	}
	if m.DeathCounter, err = meter.Int64Counter("werewolf.role.died",
		metric.WithDescription("Roles marked dead"),
		metric.WithUnit("{roles}"),
	); err != nil {
		return nil, err
	}
	if m.PollCounter, err = meter.Int64Counter("werewolf.poll.resolved",
		metric.WithDescription("Polls tallied"),
		metric.WithUnit("{polls}"),
	); err != nil {
		return nil, err
	}
	if m.CommandCounter, err = meter.Int64Counter("werewolf.command.total",
		metric.WithDescription("Session commands processed"),
		metric.WithUnit("{commands}"),
	); err != nil {
		return nil, err
	}
	if m.CommandDuration, err = meter.Float64Histogram("werewolf.command.duration",
		metric.WithDescription("Session command latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 5, 10, 50, 100, 500, 1000, 5000),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GameMetrics) PhaseEntered(ctx context.Context, _ string, phase string) {
	m.PhaseCounter.Add(ctx, 1, metric.WithAttributes(PhaseKey.String(phase)))
}

func (m *GameMetrics) ActionResolved(ctx context.Context, _ string, action, status string) {
	m.ActionCounter.Add(ctx, 1, metric.WithAttributes(ActionKey.String(action), ActionStatusKey.String(status)))
}

func (m *GameMetrics) RoleDied(ctx context.Context, _ string, roleName string) {
	m.DeathCounter.Add(ctx, 1, metric.WithAttributes(RoleKey.String(roleName)))
}

func (m *GameMetrics) PollResolved(ctx context.Context, _ string, kind, outcome string) {
	m.PollCounter.Add(ctx, 1, metric.WithAttributes(PollKindKey.String(kind), PollOutcomeKey.String(outcome)))
}

func (m *GameMetrics) CommandDone(ctx context.Context, name string, d time.Duration, err error) {
	kind := "none"
	if err != nil {
		kind = string(game.KindOf(err))
	}
	attrs := metric.WithAttributes(CommandKey.String(name), ErrorKindKey.String(kind))
	m.CommandCounter.Add(ctx, 1, attrs)
	m.CommandDuration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
}
