package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/action"
	"github.com/cuihairu/werewolf/internal/game/death"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/game/poll"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/ports"
)

// Setup describes a new table.
type Setup struct {
	ID          string            `json:"id,omitempty"`
	Seats       int               `json:"seats"`
	Deck        []string          `json:"deck,omitempty"`
	Identities  map[int]string    `json:"identities,omitempty"`
	CustomRoles []role.Definition `json:"custom_roles,omitempty"`
}

// Assignment deals roles. Explicit Roles win; otherwise the deck is shuffled
// with Seed. A deck longer than the table gives the first seats a second role.
type Assignment struct {
	Roles map[int][]string `json:"roles,omitempty"`
	Seed  uint64           `json:"seed,omitempty"`
}

// Submission is one player's use of an action. Role may be empty when only
// one of the player's roles grants the action.
type Submission struct {
	Seat    int    `json:"seat"`
	Role    string `json:"role,omitempty"`
	Action  string `json:"action"`
	Targets []int  `json:"targets,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Decision is the judge's ruling on a suspected end of game.
type Decision struct {
	End    bool      `json:"end"`
	Winner role.Camp `json:"winner,omitempty"`
}

// CreateGame opens a table in SETUP.
func (e *Engine) CreateGame(ctx context.Context, s Setup) (*ports.Snapshot, error) {
	if s.Seats < e.cfg.MinSeats || s.Seats > e.cfg.MaxSeats {
		return nil, game.Validationf("seats must be between %d and %d", e.cfg.MinSeats, e.cfg.MaxSeats)
	}
	if warnings, err := role.ValidateAll(s.CustomRoles, e.deps.Library.Catalog()); err != nil {
		return nil, game.Validationf("%v", err)
	} else if len(warnings) > 0 {
		e.logger.Warn("custom roles accepted with warnings", "game_id", s.ID, "warnings", warnings)
	}
	defs := e.deps.Library.Merge(s.CustomRoles...)
	reg, err := role.NewRegistry(e.deps.Library.Catalog(), defs...)
	if err != nil {
		return nil, game.Validationf("%v", err)
	}
	if len(s.Deck) > 2*s.Seats {
		return nil, game.Validationf("deck has %d roles for %d seats", len(s.Deck), s.Seats)
	}
	for _, name := range s.Deck {
		if _, ok := reg.Lookup(name); !ok {
			return nil, game.Validationf("unknown role %q in deck", name)
		}
	}

	g := game.New(s.ID, s.Seats, e.clock.Now())
	g.Deck = append([]string(nil), s.Deck...)
	g.CustomRoles = defs
	for seat, name := range s.Identities {
		p, ok := g.Player(seat)
		if !ok {
			return nil, game.Validationf("seat %d does not exist", seat)
		}
		p.Identity = name
	}

	e.mu.Lock()
	if _, ok := e.actors[g.ID]; ok {
		e.mu.Unlock()
		return nil, game.Conflictf("game %s already exists", g.ID)
	}
	if _, err := e.deps.Store.Load(ctx, g.ID); err == nil {
		e.mu.Unlock()
		return nil, game.Conflictf("game %s already exists", g.ID)
	} else if !errors.Is(err, ports.ErrNotFound) {
		e.mu.Unlock()
		return nil, game.External("load", err)
	}
	a := newActor(e, g, reg)
	e.actors[g.ID] = a
	go a.loop()
	e.mu.Unlock()

	err = a.do(ctx, "create", func(m *mutation) error {
		st, _ := e.machine.Step(game.PhaseSetup)
		m.entered = append(m.entered, game.PhaseSetup)
		return st.OnEnter(m.pc)
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("game created", "game_id", g.ID, "seats", s.Seats, "custom_roles", len(s.CustomRoles))
	return a.snapshot.Load(), nil
}

// AssignRoles deals roles during SETUP.
func (e *Engine) AssignRoles(ctx context.Context, id string, as Assignment) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "assign_roles", func(m *mutation) error {
		g := m.g
		if g.Phase != game.PhaseSetup {
			return game.Conflictf("roles can only be dealt during %s", game.PhaseSetup.Label())
		}
		hands := as.Roles
		if len(hands) == 0 {
			var err error
			if hands, err = deal(g.Deck, len(g.Players), as.Seed); err != nil {
				return err
			}
		}
		for seat, roles := range hands {
			p, ok := g.Player(seat)
			if !ok {
				return game.Validationf("seat %d does not exist", seat)
			}
			if len(roles) == 0 || len(roles) > 2 {
				return game.Validationf("seat %d must hold one or two roles", seat)
			}
			for _, r := range roles {
				if _, ok := m.a.reg.Lookup(r); !ok {
					return game.Validationf("unknown role %q", r)
				}
			}
			p.Roles = append([]string(nil), roles...)
			p.DeadRoles = nil
			m.Notify(seat, "你的身份是: "+strings.Join(roles, "、"))
		}
		m.pc.Narrate("身份已分配")
		return nil
	})
}

// deal shuffles the deck: one role per seat, then second roles from seat 1.
func deal(deck []string, seats int, seed uint64) (map[int][]string, error) {
	if len(deck) < seats {
		return nil, game.Validationf("deck has %d roles for %d seats", len(deck), seats)
	}
	cards := append([]string(nil), deck...)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	hands := make(map[int][]string, seats)
	for i, c := range cards {
		seat := i%seats + 1
		hands[seat] = append(hands[seat], c)
	}
	return hands, nil
}

// SubmitAction validates and records an action. Night actions are queued for
// the night resolution; everything else resolves immediately.
func (e *Engine) SubmitAction(ctx context.Context, id string, sub Submission) (*game.ActionInstance, error) {
	var out *game.ActionInstance
	_, err := e.mutate(ctx, id, "submit_action", func(m *mutation) error {
		g := m.g
		a := m.a
		act, ok := a.reg.Action(sub.Action)
		if !ok {
			return game.NotFoundf("unknown action %q", sub.Action)
		}
		roleName := sub.Role
		if roleName == "" {
			var err error
			if roleName, err = inferRole(g, a.reg, sub.Seat, act); err != nil {
				return err
			}
		}
		source := sub.Source
		if source == "" {
			source = game.SourcePlayer
		}
		inst := &game.ActionInstance{
			ID:          uuid.NewString(),
			Actor:       sub.Seat,
			Role:        roleName,
			Action:      act.ID,
			Targets:     append([]int(nil), sub.Targets...),
			Source:      source,
			Status:      game.StatusSubmitted,
			Day:         g.Day,
			Phase:       g.Phase,
			SubmittedAt: m.pc.Now,
		}
		if err := a.actions.Validate(g, inst); err != nil {
			return err
		}
		cp := *inst
		out = &cp
		if g.Phase == game.PhaseNight && act.Timing != role.TimingDeathTrigger {
			action.Queue(g, inst, act)
			m.Notify(sub.Seat, fmt.Sprintf("已记录: %s", act.Name))
			return nil
		}

		res, err := a.actions.Resolve(g, []*game.ActionInstance{inst})
		if err != nil {
			return err
		}
		if len(res.Rejected) > 0 {
			return game.Validationf("%s", res.Rejected[0].Note)
		}
		out.Status = inst.Status
		m.pc.Narrate("%d号发动了%s", sub.Seat, act.Name)
		if err := m.pc.ApplyResult(res); err != nil {
			return err
		}
		// 自爆直接进入黑夜, 需要先处理死亡技能
		if act.Effect == role.EffectExplode && g.Phase.Daytime() {
			if death.PendingTriggers(g) && g.Phase != game.PhaseDeathTrigger {
				g.Data.ExileDone = true
				return m.transition(game.PhaseDeathTrigger)
			}
			return m.transition(game.PhaseNight)
		}
		return m.settle()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// inferRole picks the role of seat that grants act.
func inferRole(g *game.Game, reg *role.Registry, seat int, act role.Action) (string, error) {
	p, ok := g.Player(seat)
	if !ok {
		return "", game.NotFoundf("seat %d not found", seat)
	}
	var match []string
	for _, r := range p.Roles {
		if !reg.Grants(r, act.ID) {
			continue
		}
		if act.Timing == role.TimingDeathTrigger && !p.RoleDead(r) {
			continue
		}
		if act.Timing != role.TimingDeathTrigger && !p.RoleAlive(r) {
			continue
		}
		if len(match) == 0 || match[0] != r {
			match = append(match, r)
		}
	}
	switch len(match) {
	case 0:
		return "", game.Validationf("seat %d holds no role granting %s", seat, act.Name)
	case 1:
		return match[0], nil
	}
	return "", game.Validationf("seat %d: role is ambiguous for %s", seat, act.Name)
}

// AdvancePhase leaves the current phase for the next one.
func (e *Engine) AdvancePhase(ctx context.Context, id string) (*ports.Snapshot, error) {
	return e.AdvancePhaseFrom(ctx, id, "")
}

// AdvancePhaseFrom advances only while the game is still in from, so a manual
// advance queued behind a phase timer cannot skip a phase. An empty from
// advances unconditionally.
func (e *Engine) AdvancePhaseFrom(ctx context.Context, id string, from game.PhaseID) (*ports.Snapshot, error) {
	if from != "" && !from.Known() {
		return nil, game.Validationf("unknown phase %q", from)
	}
	return e.mutate(ctx, id, "advance_phase", func(m *mutation) error {
		if from != "" && m.g.Phase != from {
			return game.Conflictf("game is in %s, not %s", m.g.Phase, from)
		}
		return m.advance()
	})
}

// SetPhase jumps to a phase. The current phase's exit still runs.
func (e *Engine) SetPhase(ctx context.Context, id string, to game.PhaseID) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "set_phase", func(m *mutation) error {
		if !to.Known() {
			return game.Validationf("unknown phase %q", to)
		}
		if m.g.Ended {
			return game.Conflictf("game has ended")
		}
		return m.transition(to)
	})
}

// StartPoll opens a poll in a daytime phase and returns its id.
func (e *Engine) StartPoll(ctx context.Context, id string, kind poll.Kind) (string, error) {
	var pollID string
	_, err := e.mutate(ctx, id, "start_poll", func(m *mutation) error {
		g := m.g
		if g.Ended || !g.Phase.Daytime() {
			return game.Conflictf("cannot start a poll during %s", g.Phase.Label())
		}
		if kind == poll.KindSheriff && g.Phase != game.PhaseSheriffElection {
			return game.Conflictf("sheriff polls only run during %s", game.PhaseSheriffElection.Label())
		}
		if err := m.StartPoll(kind); err != nil {
			return err
		}
		pollID = m.poll.ID
		return nil
	})
	return pollID, err
}

func (m *mutation) activePoll(pollID string) (*poll.Poll, error) {
	if m.poll == nil || (pollID != "" && m.poll.ID != pollID) {
		return nil, game.NotFoundf("poll %s not found", pollID)
	}
	return m.poll, nil
}

// CastVote records a ballot. Candidate 0 withdraws the elector's vote.
func (e *Engine) CastVote(ctx context.Context, id, pollID string, elector, candidate int) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "cast_vote", func(m *mutation) error {
		p, err := m.activePoll(pollID)
		if err != nil {
			return err
		}
		if candidate == 0 {
			return p.Retract(elector)
		}
		return p.Vote(elector, candidate)
	})
}

// QuitCandidate withdraws a candidate; votes for them count as zero.
func (e *Engine) QuitCandidate(ctx context.Context, id, pollID string, seat int) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "quit_candidate", func(m *mutation) error {
		p, err := m.activePoll(pollID)
		if err != nil {
			return err
		}
		if err := p.Quit(seat); err != nil {
			return err
		}
		m.pc.Narrate("%d号退出竞选", seat)
		return nil
	})
}

// ClosePoll tallies the open poll before its deadline.
func (e *Engine) ClosePoll(ctx context.Context, id, pollID string) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "close_poll", func(m *mutation) error {
		if _, err := m.activePoll(pollID); err != nil {
			return err
		}
		return m.finishPoll()
	})
}

// Input hands a phase-specific input to the current phase.
func (e *Engine) Input(ctx context.Context, id string, in phase.Input) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "input", func(m *mutation) error {
		if m.g.Ended {
			return game.Conflictf("game has ended")
		}
		if in.Kind == phase.InputNext {
			sp := m.g.Data.Speech
			if sp == nil {
				return game.Conflictf("nobody is speaking")
			}
			if in.Seat != 0 && in.Seat != sp.Speaker() {
				return game.Validationf("seat %d is not speaking", in.Seat)
			}
			return m.nextSpeaker()
		}
		if err := m.a.e.machine.HandleInput(m.pc, in); err != nil {
			return err
		}
		return m.settle()
	})
}

// ResolveJudgeDecision ends the game or resumes the interrupted flow.
func (e *Engine) ResolveJudgeDecision(ctx context.Context, id string, d Decision) (*ports.Snapshot, error) {
	return e.mutate(ctx, id, "judge", func(m *mutation) error {
		g := m.g
		if g.Phase != game.PhaseJudgeDecision {
			return game.Conflictf("no judge decision pending")
		}
		if !d.End {
			m.pc.Narrate("法官裁定游戏继续")
			return m.advance()
		}
		if d.Winner != "" {
			g.Winner = d.Winner
		}
		return m.transition(game.PhaseEnd)
	})
}

// Available lists the actions seat may use, read from the committed snapshot.
func (e *Engine) Available(ctx context.Context, id string, seat int) ([]action.Option, error) {
	a, err := e.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	g := a.snapshot.Load().Game
	if _, ok := g.Player(seat); !ok {
		return nil, game.NotFoundf("seat %d not found", seat)
	}
	return a.actions.Available(g, seat), nil
}

// Subscribe streams committed snapshots when the publisher supports it.
func (e *Engine) Subscribe(ctx context.Context, id string) (<-chan *ports.Snapshot, func(), error) {
	sub, ok := e.deps.Publisher.(ports.Subscriber)
	if !ok {
		return nil, nil, game.Conflictf("publisher does not support subscriptions")
	}
	if _, err := e.actor(ctx, id); err != nil {
		return nil, nil, err
	}
	return sub.Subscribe(ctx, id)
}

// mutate runs fn as a command and returns the snapshot it committed.
func (e *Engine) mutate(ctx context.Context, id, name string, fn func(m *mutation) error) (*ports.Snapshot, error) {
	a, err := e.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.do(ctx, name, fn); err != nil {
		return nil, err
	}
	return a.snapshot.Load(), nil
}
