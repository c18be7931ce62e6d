// Package session owns running games. Each game is driven by one actor
// goroutine; every API call and timer expiry is a command on its queue.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/death"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/ports"
)

// Config tunes the engine.
type Config struct {
	Phase           phase.Config
	MaxCascadeWaves int
	LockWait        time.Duration
	CallTimeout     time.Duration
	// TimerRetry re-arms a timer whose command failed.
	TimerRetry time.Duration
	QueueSize       int
	MinSeats        int
	MaxSeats        int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Phase:           phase.DefaultConfig(),
		MaxCascadeWaves: death.DefaultMaxWaves,
		LockWait:        5 * time.Second,
		CallTimeout:     3 * time.Second,
		TimerRetry:      5 * time.Second,
		QueueSize:       64,
		MinSeats:        3,
		MaxSeats:        20,
	}
}

// Metrics receives engine measurements.
type Metrics interface {
	PhaseEntered(ctx context.Context, gameID, phase string)
	ActionResolved(ctx context.Context, gameID, action, status string)
	RoleDied(ctx context.Context, gameID, roleName string)
	PollResolved(ctx context.Context, gameID, kind, outcome string)
	CommandDone(ctx context.Context, name string, d time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) PhaseEntered(context.Context, string, string)                {}
func (noopMetrics) ActionResolved(context.Context, string, string, string)      {}
func (noopMetrics) RoleDied(context.Context, string, string)                    {}
func (noopMetrics) PollResolved(context.Context, string, string, string)        {}
func (noopMetrics) CommandDone(context.Context, string, time.Duration, error)   {}

// Deps are the engine collaborators. Store, Publisher and Gateway are
// required; the rest are optional.
type Deps struct {
	Library   *role.Library
	Store     ports.SnapshotStore
	Publisher ports.Publisher
	Gateway   ports.Gateway
	Archive   ports.Archive
	Auditor   ports.Auditor
	Metrics   Metrics
	Tracer    trace.Tracer
	Clock     Clock
	Logger    *slog.Logger
}

// Engine is the entry point for every game operation.
type Engine struct {
	cfg     Config
	deps    Deps
	machine *phase.Machine
	clock   Clock
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer

	mu     sync.Mutex
	actors map[string]*actor
}

// New creates an engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Store == nil || deps.Publisher == nil || deps.Gateway == nil {
		return nil, errors.New("session: store, publisher and gateway are required")
	}
	def := DefaultConfig()
	if cfg.LockWait <= 0 {
		cfg.LockWait = def.LockWait
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxCascadeWaves <= 0 {
		cfg.MaxCascadeWaves = def.MaxCascadeWaves
	}
	if cfg.MinSeats <= 0 {
		cfg.MinSeats = def.MinSeats
	}
	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = def.MaxSeats
	}
	e := &Engine{
		cfg:     cfg,
		deps:    deps,
		machine: phase.NewMachine(cfg.Phase),
		clock:   deps.Clock,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		actors:  map[string]*actor{},
	}
	if e.clock == nil {
		e.clock = realClock{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.metrics == nil {
		e.metrics = noopMetrics{}
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("github.com/cuihairu/werewolf/internal/session")
	}
	if e.deps.Library == nil {
		e.deps.Library = role.NewLibrary(role.DefaultCatalog(), e.logger)
	}
	return e, nil
}

// Library returns the custom role library.
func (e *Engine) Library() *role.Library { return e.deps.Library }

// actor returns the running actor of a game, restoring it from the store.
func (e *Engine) actor(ctx context.Context, id string) (*actor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if a, ok := e.actors[id]; ok {
		return a, nil
	}
	g, err := e.deps.Store.Load(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, game.NotFoundf("game %s not found", id)
	}
	if err != nil {
		return nil, game.External("load", err)
	}
	reg, err := role.NewRegistry(e.deps.Library.Catalog(), g.CustomRoles...)
	if err != nil {
		return nil, game.Invariantf("game %s: %v", id, err)
	}
	a := newActor(e, g, reg)
	// the loop is not running yet, so the scheduler can be touched here
	if d := e.machine.Duration(g); d > 0 && !g.Ended {
		a.timers.schedule(slotPhase, time.Duration(d)*time.Second, a.timerFired(slotPhase, a.onTimer(slotPhase)))
	}
	e.actors[id] = a
	go a.loop()
	e.logger.Info("game restored", "game_id", id, "phase", g.Phase, "version", g.Version)
	return a, nil
}

// Snapshot returns the last committed snapshot.
func (e *Engine) Snapshot(ctx context.Context, id string) (*ports.Snapshot, error) {
	a, err := e.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.snapshot.Load(), nil
}

// Close stops every actor and its timers. Pending commands are dropped.
func (e *Engine) Close() {
	e.mu.Lock()
	actors := e.actors
	e.actors = map[string]*actor{}
	e.mu.Unlock()
	for _, a := range actors {
		_ = a.do(context.Background(), "close", func(*mutation) error {
			a.timers.stopAll()
			return errStale
		})
		a.stop()
	}
}

// Reset archives and deletes a game.
func (e *Engine) Reset(ctx context.Context, id string) error {
	a, err := e.actor(ctx, id)
	if err != nil {
		return err
	}
	err = a.do(ctx, "reset", func(m *mutation) error {
		a.timers.stopAll()
		if e.deps.Archive != nil && !a.game.Ended {
			if _, err := e.deps.Archive.Archive(m.ctx, a.game); err != nil {
				a.external("archive", err)
			}
		}
		if err := e.deps.Store.Delete(m.ctx, id); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return game.External("delete", err)
		}
		return errStale
	})
	if err != nil {
		return err
	}
	e.mu.Lock()
	delete(e.actors, id)
	e.mu.Unlock()
	a.stop()
	e.logger.Info("game reset", "game_id", id)
	return nil
}
