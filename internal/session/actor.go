package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/action"
	"github.com/cuihairu/werewolf/internal/game/death"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/game/poll"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/ports"
)

// errStale marks a timer command whose timer was cancelled or replaced.
var errStale = errors.New("stale timer")

type command struct {
	name  string
	ctx   context.Context
	fn    func(m *mutation) error
	reply chan error
}

// actor serializes every mutation of one game on a single goroutine.
type actor struct {
	e      *Engine
	id     string
	cmds   chan command
	done   chan struct{}
	logger *slog.Logger

	// owned by the loop
	game    *game.Game
	poll    *poll.Poll
	reg     *role.Registry
	actions *action.Resolver
	deaths  *death.Resolver
	timers  *scheduler

	snapshot atomic.Pointer[ports.Snapshot]
}

func newActor(e *Engine, g *game.Game, reg *role.Registry) *actor {
	logger := e.logger.With("game_id", g.ID)
	a := &actor{
		e:       e,
		id:      g.ID,
		cmds:    make(chan command, e.cfg.QueueSize),
		done:    make(chan struct{}),
		logger:  logger,
		game:    g,
		reg:     reg,
		actions: action.NewResolver(reg, logger),
		deaths:  death.NewResolver(reg, death.WithMaxWaves(e.cfg.MaxCascadeWaves), death.WithLogger(logger)),
		timers:  newScheduler(e.clock),
	}
	a.snapshot.Store(a.snap("load", nil))
	return a
}

func (a *actor) loop() {
	for {
		select {
		case <-a.done:
			return
		case cmd := <-a.cmds:
			err := a.run(cmd)
			if cmd.reply != nil {
				cmd.reply <- err
			}
		}
	}
}

func (a *actor) stop() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

// do enqueues fn and waits for its result. Waiting for the queue is bounded
// by LockWait.
func (a *actor) do(ctx context.Context, name string, fn func(m *mutation) error) error {
	cmd := command{name: name, ctx: ctx, fn: fn, reply: make(chan error, 1)}
	wait := time.NewTimer(a.e.cfg.LockWait)
	defer wait.Stop()
	select {
	case a.cmds <- cmd:
	case <-a.done:
		return game.NotFoundf("game %s is closed", a.id)
	case <-ctx.Done():
		return ctx.Err()
	case <-wait.C:
		return game.Conflictf("game %s is busy", a.id)
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues a command from a timer goroutine without waiting.
func (a *actor) post(name string, fn func(m *mutation) error) {
	cmd := command{name: name, ctx: context.Background(), fn: fn}
	select {
	case a.cmds <- cmd:
		return
	default:
	}
	go func() {
		select {
		case a.cmds <- cmd:
		case <-a.done:
		}
	}()
}

// timerFired returns the callback for a slot. The command is a no-op unless
// the slot still holds the same token. A failed command re-arms the slot
// after TimerRetry.
func (a *actor) timerFired(slotName string, fn func(m *mutation) error) func(token uint64) {
	return func(token uint64) {
		a.post("timer:"+slotName, func(m *mutation) error {
			if !a.timers.valid(slotName, token) {
				return errStale
			}
			err := fn(m)
			if err == nil || errors.Is(err, errStale) {
				a.timers.fired(slotName, token)
				return err
			}
			retry := a.e.cfg.TimerRetry
			if retry <= 0 {
				retry = time.Second
			}
			a.logger.Warn("timed command failed, re-arming", "slot", slotName, "retry", retry, "error", err)
			a.timers.schedule(slotName, retry, a.timerFired(slotName, fn))
			return err
		})
	}
}

func (a *actor) run(cmd command) (err error) {
	start := a.e.clock.Now()
	ctx, span := a.e.tracer.Start(cmd.ctx, "session."+cmd.name,
		trace.WithAttributes(attribute.String("game.id", a.id), attribute.String("game.phase", string(a.game.Phase))))
	defer span.End()

	m := a.begin(ctx, cmd.name)
	defer func() {
		if r := recover(); r != nil {
			err = game.Invariantf("panic in %s: %v", cmd.name, r)
			a.logger.Error("mutation panicked", "command", cmd.name, "panic", r, "stack", string(debug.Stack()))
		}
		if err != nil && !errors.Is(err, errStale) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		a.e.metrics.CommandDone(ctx, cmd.name, a.e.clock.Now().Sub(start), err)
	}()

	if err = cmd.fn(m); err != nil {
		if errors.Is(err, errStale) {
			return nil
		}
		if game.KindOf(err) == game.KindInvariant || game.KindOf(err) == game.KindUnknown {
			a.logger.Error("mutation aborted", "command", cmd.name, "phase", a.game.Phase, "day", a.game.Day,
				"version", a.game.Version, "error", err)
		}
		return err
	}
	a.commit(ctx, m)
	return nil
}

// commit makes the mutation visible: state, timers, persistence, publication
// and outbound effects, in that order.
func (a *actor) commit(ctx context.Context, m *mutation) {
	prev := a.game
	now := a.e.clock.Now()
	m.g.Version = prev.Version + 1
	m.g.UpdatedAt = now
	a.game = m.g
	a.poll = m.poll

	for _, op := range m.timers {
		if op.cancel {
			a.timers.cancel(op.slot)
			continue
		}
		a.timers.schedule(op.slot, op.d, a.timerFired(op.slot, a.onTimer(op.slot)))
	}

	snap := a.snap(m.event, m.summary)
	a.snapshot.Store(snap)

	deps := a.e.deps
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.e.cfg.CallTimeout)
	defer cancel()
	if err := deps.Store.Save(cctx, a.game); err != nil {
		a.external("save", err)
	}
	if err := deps.Publisher.Publish(cctx, snap); err != nil {
		a.external("publish", err)
	}
	for _, eff := range m.effects {
		if err := eff.fn(cctx); err != nil {
			a.external(eff.op, err)
		}
	}

	for _, ph := range m.entered {
		a.e.metrics.PhaseEntered(cctx, a.id, string(ph))
	}
	a.auditCommit(cctx, prev, a.game)
	if a.game.Ended && !prev.Ended && deps.Archive != nil {
		if key, err := deps.Archive.Archive(cctx, a.game); err != nil {
			a.external("archive", err)
		} else {
			a.logger.Info("game archived", "key", key)
		}
	}
}

// auditCommit records newly finished action instances, deaths and narration.
func (a *actor) auditCommit(ctx context.Context, prev, next *game.Game) {
	au := a.e.deps.Auditor
	record := func(kind string, payload any) {
		if au == nil {
			return
		}
		if err := au.Record(ctx, kind, a.id, payload); err != nil {
			a.external("audit", err)
		}
	}
	var lastSeq int64
	if n := len(prev.Log); n > 0 {
		lastSeq = prev.Log[n-1].Seq
	}
	for _, line := range next.Log {
		if line.Seq > lastSeq {
			record("narration", line)
		}
	}
	for day, insts := range next.Data.History {
		before := len(prev.Data.History[day])
		if before > len(insts) {
			continue
		}
		for _, inst := range insts[before:] {
			record("action", inst)
			a.e.metrics.ActionResolved(ctx, a.id, inst.Action, string(inst.Status))
		}
	}
	for _, p := range next.Players {
		old, ok := prev.Player(p.Seat)
		if !ok || len(p.DeadRoles) <= len(old.DeadRoles) {
			continue
		}
		for _, r := range p.DeadRoles[len(old.DeadRoles):] {
			record("death", game.Death{Seat: p.Seat, Role: r, Day: next.Day, Phase: next.Phase})
			a.e.metrics.RoleDied(ctx, a.id, r)
		}
	}
}

func (a *actor) external(op string, err error) {
	a.logger.Warn("collaborator failed", "op", op, "error", game.External(op, err))
}

func (a *actor) snap(event string, summary *poll.Summary) *ports.Snapshot {
	return &ports.Snapshot{
		GameID:  a.game.ID,
		Version: a.game.Version,
		Phase:   a.game.Phase,
		Day:     a.game.Day,
		Event:   event,
		Game:    a.game,
		Poll:    a.poll,
		Summary: summary,
		At:      a.e.clock.Now(),
	}
}

// onTimer maps a slot to its expiry handler.
func (a *actor) onTimer(slotName string) func(m *mutation) error {
	switch slotName {
	case slotPhase:
		return func(m *mutation) error { return m.advance() }
	case slotPollWarning:
		return func(m *mutation) error {
			if m.poll == nil || m.poll.State != poll.StateOpen {
				return errStale
			}
			m.Cue(phase.CuePollWarning)
			m.pc.Narrate("投票还剩%d秒", int(poll.WarningLead/time.Second))
			return nil
		}
	case slotPollFinish:
		return func(m *mutation) error { return m.finishPoll() }
	case slotSpeech:
		return func(m *mutation) error { return m.nextSpeaker() }
	}
	return func(*mutation) error { return fmt.Errorf("unknown timer slot %q", slotName) }
}
