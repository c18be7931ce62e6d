package action

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
)

// Exec is the context handed to an effect.
type Exec struct {
	Game     *game.Game
	Registry *role.Registry
	Action   role.Action
	Instance *game.ActionInstance
	Result   *Result
}

// EffectFunc applies one instance to the result.
type EffectFunc func(x *Exec) error

// Resolver filters, orders and executes action instances.
type Resolver struct {
	reg     *role.Registry
	effects map[role.Effect]EffectFunc
	logger  *slog.Logger
}

// NewResolver creates a resolver with the builtin effects.
func NewResolver(reg *role.Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{reg: reg, effects: builtinEffects(), logger: logger}
}

// Registry returns the registry the resolver reads.
func (r *Resolver) Registry() *role.Registry { return r.reg }

// Validate checks a submission against the current game state.
func (r *Resolver) Validate(g *game.Game, inst *game.ActionInstance) error {
	if g.Ended {
		return game.Conflictf("game has ended")
	}
	a, err := r.lookup(inst)
	if err != nil {
		return err
	}
	if !r.timingOpen(g, a, inst.Actor) {
		return game.Conflictf("%s cannot be used during %s", a.Name, g.Phase.Label())
	}
	return r.eligible(g, inst, a)
}

func (r *Resolver) lookup(inst *game.ActionInstance) (role.Action, error) {
	if _, ok := r.reg.Lookup(inst.Role); !ok {
		return role.Action{}, game.NotFoundf("unknown role %q", inst.Role)
	}
	a, ok := r.reg.Action(inst.Action)
	if !ok {
		return role.Action{}, game.NotFoundf("unknown action %q", inst.Action)
	}
	if !r.reg.Grants(inst.Role, inst.Action) {
		return role.Action{}, game.Validationf("role %s does not grant %s", inst.Role, a.Name)
	}
	return a, nil
}

func (r *Resolver) timingOpen(g *game.Game, a role.Action, seat int) bool {
	switch a.Timing {
	case role.TimingNight:
		return g.Phase == game.PhaseNight
	case role.TimingDay:
		return g.Phase.Daytime()
	case role.TimingAnytime:
		return g.Phase == game.PhaseNight || g.Phase.Daytime()
	case role.TimingDeathTrigger:
		return g.Data.TriggerOpen(a.ID, seat, g.Phase)
	}
	return false
}

// eligible checks actor, usage and targets. It is used both at submission
// and again when the instance is resolved.
func (r *Resolver) eligible(g *game.Game, inst *game.ActionInstance, a role.Action) error {
	if err := r.actorReady(g, inst, a); err != nil {
		return err
	}
	return r.targetsValid(g, inst, a)
}

func (r *Resolver) actorReady(g *game.Game, inst *game.ActionInstance, a role.Action) error {
	p, ok := g.Player(inst.Actor)
	if !ok {
		return game.NotFoundf("seat %d not found", inst.Actor)
	}
	if a.Timing == role.TimingDeathTrigger {
		if !p.RoleDead(inst.Role) {
			return game.Validationf("seat %d: %s has not died", p.Seat, inst.Role)
		}
		if _, ok := g.Data.Flag(game.TriggerKey(a.ID, p.Seat)); !ok {
			return game.Validationf("seat %d: %s is not unlocked", p.Seat, a.Name)
		}
	} else if !p.RoleAlive(inst.Role) {
		return game.Validationf("seat %d: %s is not alive", p.Seat, inst.Role)
	}
	if a.Limited() && g.Data.Uses(p.Seat, a.ID) >= a.Uses {
		return game.Validationf("seat %d: %s has no uses left", p.Seat, a.Name)
	}
	if a.PairedWith != "" && !PairUnlocked(g, a.PairedWith) {
		return game.Validationf("seat %d: %s is not available yet", p.Seat, a.Name)
	}
	return nil
}

func (r *Resolver) targetsValid(g *game.Game, inst *game.ActionInstance, a role.Action) error {
	if len(inst.Targets) != a.Targets {
		return game.Validationf("%s needs %d target(s), got %d", a.Name, a.Targets, len(inst.Targets))
	}
	seen := make(map[int]bool, len(inst.Targets))
	for _, t := range inst.Targets {
		if seen[t] {
			return game.Validationf("target %d given twice", t)
		}
		seen[t] = true
		tp, ok := g.Player(t)
		if !ok {
			return game.Validationf("target seat %d does not exist", t)
		}
		if a.TargetAlive && !tp.Alive() {
			return game.Validationf("target seat %d is dead", t)
		}
	}
	if a.NoRepeatTarget && len(inst.Targets) > 0 {
		for _, prev := range g.Data.Processed(g.Day - 1) {
			if prev.Actor == inst.Actor && prev.Action == a.ID && len(prev.Targets) > 0 && prev.Targets[0] == inst.Targets[0] {
				return game.Validationf("%s cannot target seat %d two nights in a row", a.Name, inst.Targets[0])
			}
		}
	}
	return nil
}

// PairUnlocked reports whether the partner role died on an earlier day.
func PairUnlocked(g *game.Game, partner string) bool {
	day, ok := g.Data.Flag(game.PairDiedKey(partner))
	return ok && day < g.Day
}

// Queue stores a night submission, replacing the same actor's pending use of
// the action. Shared actions keep one pending instance across all holders.
func Queue(g *game.Game, inst *game.ActionInstance, a role.Action) {
	kept := g.Data.Pending[:0]
	for _, p := range g.Data.Pending {
		same := p.Action == inst.Action && (a.Shared || p.Actor == inst.Actor)
		if !same {
			kept = append(kept, p)
		}
	}
	g.Data.Pending = append(kept, inst)
}

// Resolve runs one resolution pass: filter, sort by priority then seat,
// execute into a Result, and record the instances in the day history.
func (r *Resolver) Resolve(g *game.Game, insts []*game.ActionInstance) (*Result, error) {
	res := NewResult()
	type entry struct {
		inst *game.ActionInstance
		act  role.Action
	}
	queue := make([]entry, 0, len(insts))
	for _, inst := range insts {
		a, err := r.lookup(inst)
		if err == nil {
			err = r.eligible(g, inst, a)
		}
		if err != nil {
			inst.Status = game.StatusRejected
			inst.Note = err.Error()
			g.Data.Record(inst)
			res.Rejected = append(res.Rejected, inst)
			r.logger.Info("action rejected", "game_id", g.ID, "seat", inst.Actor, "action", inst.Action, "reason", err)
			continue
		}
		queue = append(queue, entry{inst: inst, act: a})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].act.Priority != queue[j].act.Priority {
			return queue[i].act.Priority < queue[j].act.Priority
		}
		return queue[i].inst.Actor < queue[j].inst.Actor
	})
	for _, e := range queue {
		fn, ok := r.effects[e.act.Effect]
		if !ok {
			return nil, game.Invariantf("action %s has unknown effect %q", e.act.ID, e.act.Effect)
		}
		x := &Exec{Game: g, Registry: r.reg, Action: e.act, Instance: e.inst, Result: res}
		if err := fn(x); err != nil {
			return nil, fmt.Errorf("execute %s: %w", e.act.ID, err)
		}
		e.inst.Status = game.StatusProcessed
		g.Data.Record(e.inst)
		if e.act.Timing == role.TimingDeathTrigger {
			g.Data.UseTrigger(e.act.ID, e.inst.Actor)
		}
		res.Executed = append(res.Executed, e.inst)
	}
	return res, nil
}

// Available lists the actions a seat may submit right now.
func (r *Resolver) Available(g *game.Game, seat int) []Option {
	p, ok := g.Player(seat)
	if !ok || g.Ended {
		return nil
	}
	var out []Option
	for _, name := range uniq(p.Roles) {
		for _, a := range r.reg.Actions(name) {
			if !r.timingOpen(g, a, seat) {
				continue
			}
			cand := &game.ActionInstance{Actor: seat, Role: name, Action: a.ID}
			if r.actorReady(g, cand, a) != nil {
				continue
			}
			out = append(out, Option{Role: name, Action: a})
		}
	}
	return out
}

// Option is an action a player may currently use.
type Option struct {
	Role   string      `json:"role"`
	Action role.Action `json:"action"`
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
