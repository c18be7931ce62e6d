// Package death applies deaths to players and runs the ON_DEATH listeners.
package death

import (
	"log/slog"
	"strings"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/action"
	"github.com/cuihairu/werewolf/internal/game/role"
)

// DefaultMaxWaves caps cascading deaths.
const DefaultMaxWaves = 8

// EventOnDeath is the only event type the bus carries today.
const EventOnDeath = "ON_DEATH"

// Kill requests the death of a seat's active role.
type Kill struct {
	Seat  int
	Cause role.Cause
}

// Event is emitted once per newly dead role.
type Event struct {
	Type  string
	Seat  int
	Role  string
	Cause role.Cause
	// Also holds the causes that hit the seat later in the same wave, after
	// this death already took its last role.
	Also []role.Cause
	Day  int
	// PlayerDead is true when this death left the player with no alive role.
	PlayerDead bool
}

// Causes returns Cause followed by Also.
func (ev Event) Causes() []role.Cause {
	return append([]role.Cause{ev.Cause}, ev.Also...)
}

// Listener is a (predicate, handler) pair. Handlers may set flags and
// return follow-up kills, which are applied in the next wave.
type Listener struct {
	Name   string
	Match  func(g *game.Game, ev Event) bool
	Handle func(g *game.Game, ev Event) []Kill
}

// Hook is a named on-death behavior referenced by Role.Hook.
type Hook func(g *game.Game, ev Event) []Kill

// Resolver applies deaths and dispatches events.
type Resolver struct {
	reg       *role.Registry
	listeners []Listener
	hooks     map[string]Hook
	maxWaves  int
	logger    *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithMaxWaves overrides DefaultMaxWaves.
func WithMaxWaves(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxWaves = n
		}
	}
}

// WithListener appends a listener after the builtin ones.
func WithListener(l Listener) Option {
	return func(r *Resolver) { r.listeners = append(r.listeners, l) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver with the builtin listeners and hooks.
func NewResolver(reg *role.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		reg:      reg,
		hooks:    map[string]Hook{role.HookPairPartner: pairPartner},
		maxWaves: DefaultMaxWaves,
		logger:   slog.Default(),
	}
	r.listeners = []Listener{
		{Name: "death_trigger", Match: r.hasTrigger, Handle: r.unlockTriggers},
		{Name: "role_hook", Match: r.hasHook, Handle: r.runHook},
		{Name: "lovers", Match: loverAlive, Handle: loverFollows},
		{Name: "sheriff_badge", Match: sheriffDied, Handle: badgePending},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Apply turns a resolution result into deaths. Links are recorded before
// any death so lovers linked tonight follow each other.
func (r *Resolver) Apply(g *game.Game, res *action.Result) ([]game.Death, error) {
	for _, l := range res.Links {
		a, okA := g.Player(l[0])
		b, okB := g.Player(l[1])
		if !okA || !okB {
			return nil, game.Invariantf("link %v references a missing seat", l)
		}
		a.Lover, b.Lover = b.Seat, a.Seat
	}
	var kills []Kill
	for _, c := range role.Causes {
		for _, seat := range res.Dead(c) {
			kills = append(kills, Kill{Seat: seat, Cause: c})
		}
	}
	return r.Kill(g, kills)
}

// Kill applies kills and cascades in waves until quiet or the wave cap.
func (r *Resolver) Kill(g *game.Game, kills []Kill) ([]game.Death, error) {
	var deaths []game.Death
	wave := kills
	for n := 0; len(wave) > 0; n++ {
		if n >= r.maxWaves {
			r.logger.Warn("death cascade truncated", "game_id", g.ID, "waves", n, "dropped", len(wave))
			break
		}
		var events []Event
		last := map[int]int{} // seat -> index of its latest event in this wave
		for _, k := range wave {
			p, ok := g.Player(k.Seat)
			if !ok {
				return nil, game.Invariantf("kill targets missing seat %d", k.Seat)
			}
			if !p.Alive() {
				if i, ok := last[p.Seat]; ok {
					events[i].Also = append(events[i].Also, k.Cause)
				}
				continue
			}
			name := p.ActiveRole()
			if err := p.KillRole(name); err != nil {
				return nil, err
			}
			deaths = append(deaths, game.Death{Seat: p.Seat, Role: name, Cause: k.Cause, Day: g.Day, Phase: g.Phase})
			events = append(events, Event{
				Type: EventOnDeath, Seat: p.Seat, Role: name, Cause: k.Cause, Day: g.Day,
				PlayerDead: !p.Alive(),
			})
			last[p.Seat] = len(events) - 1
		}
		var next []Kill
		for _, ev := range events {
			for _, l := range r.listeners {
				if l.Match(g, ev) {
					next = append(next, l.Handle(g, ev)...)
				}
			}
		}
		wave = next
	}
	return deaths, nil
}

func (r *Resolver) hasTrigger(_ *game.Game, ev Event) bool {
	return len(r.reg.TriggerActions(ev.Role)) > 0
}

func (r *Resolver) unlockTriggers(g *game.Game, ev Event) []Kill {
	for _, a := range r.reg.TriggerActions(ev.Role) {
		if c, ok := blockedBy(a, ev); ok {
			r.logger.Info("death trigger suppressed", "game_id", g.ID, "seat", ev.Seat, "action", a.ID, "cause", c)
			continue
		}
		if a.Limited() && g.Data.Uses(ev.Seat, a.ID) >= a.Uses {
			continue
		}
		g.Data.UnlockTrigger(a.ID, ev.Seat, ev.Day, g.Phase)
	}
	return nil
}

// blockedBy returns the first cause of ev that suppresses a.
func blockedBy(a role.Action, ev Event) (role.Cause, bool) {
	for _, c := range ev.Causes() {
		if a.Blocked(c) {
			return c, true
		}
	}
	return "", false
}

func (r *Resolver) hasHook(_ *game.Game, ev Event) bool {
	ro, ok := r.reg.Lookup(ev.Role)
	if !ok || ro.Hook == "" {
		return false
	}
	_, ok = r.hooks[ro.Hook]
	return ok
}

func (r *Resolver) runHook(g *game.Game, ev Event) []Kill {
	ro, _ := r.reg.Lookup(ev.Role)
	return r.hooks[ro.Hook](g, ev)
}

// pairPartner records the first death day of the role for its partner.
func pairPartner(g *game.Game, ev Event) []Kill {
	key := game.PairDiedKey(ev.Role)
	if _, ok := g.Data.Flag(key); !ok {
		g.Data.SetFlag(key, ev.Day)
	}
	return nil
}

func loverAlive(g *game.Game, ev Event) bool {
	if !ev.PlayerDead {
		return false
	}
	p, _ := g.Player(ev.Seat)
	if p.Lover == 0 {
		return false
	}
	l, ok := g.Player(p.Lover)
	return ok && l.Alive()
}

func loverFollows(g *game.Game, ev Event) []Kill {
	p, _ := g.Player(ev.Seat)
	return []Kill{{Seat: p.Lover, Cause: role.CauseLove}}
}

func sheriffDied(g *game.Game, ev Event) bool {
	p, _ := g.Player(ev.Seat)
	return ev.PlayerDead && p.Sheriff
}

func badgePending(g *game.Game, ev Event) []Kill {
	p, _ := g.Player(ev.Seat)
	p.Sheriff = false
	g.Data.SetFlag(game.KeyBadgePending, ev.Seat)
	return nil
}

const triggerPrefix = "trigger:"

// ExpireTriggers drops death-trigger unlocks that were not used.
func ExpireTriggers(g *game.Game) []string {
	var expired []string
	for k := range g.Data.Flags {
		if strings.HasPrefix(k, triggerPrefix) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		g.Data.ClearFlag(k)
	}
	g.Data.TriggerPhases = nil
	return expired
}

// PendingTriggers reports whether any death-trigger unlock or badge handover waits.
func PendingTriggers(g *game.Game) bool {
	if _, ok := g.Data.Flag(game.KeyBadgePending); ok {
		return true
	}
	for k := range g.Data.Flags {
		if strings.HasPrefix(k, triggerPrefix) {
			return true
		}
	}
	return false
}
