// Package phase drives the game loop: one Step per phase and a Machine that
// picks the next phase.
package phase

import (
	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/death"
)

// Input is a phase-specific player or operator input.
type Input struct {
	Seat   int    `json:"seat"`
	Kind   string `json:"kind"`
	Target int    `json:"target,omitempty"`
}

// Input kinds.
const (
	InputRun      = "run"      // 上警
	InputWithdraw = "withdraw" // 退水
	InputNext     = "next"     // 过麦
	InputBadge    = "badge"    // 移交警徽, target 0 destroys it
	InputSwap     = "swap"     // 调换双身份顺序
)

// Step is one phase of the loop.
type Step interface {
	ID() game.PhaseID
	OnEnter(c *Context) error
	OnExit(c *Context) error
	HandleInput(c *Context, in Input) error
	// Duration in seconds, Manual for no timer.
	Duration(g *game.Game) int
}

// Machine is the phase catalog plus transition rules.
type Machine struct {
	cfg   Config
	steps map[game.PhaseID]Step
}

// NewMachine builds the standard loop.
func NewMachine(cfg Config) *Machine {
	m := &Machine{cfg: cfg, steps: map[game.PhaseID]Step{}}
	b := base{cfg: cfg}
	for _, s := range []Step{
		setupStep{b}, nightStep{b}, dayStep{b}, sheriffStep{b}, announceStep{b},
		triggerStep{b}, speechStep{b}, votingStep{b}, judgeStep{b}, endStep{b},
	} {
		m.steps[s.ID()] = s
	}
	return m
}

// Config returns the timings.
func (m *Machine) Config() Config { return m.cfg }

// Step returns the step for id.
func (m *Machine) Step(id game.PhaseID) (Step, bool) {
	s, ok := m.steps[id]
	return s, ok
}

// Duration of the current phase.
func (m *Machine) Duration(g *game.Game) int {
	s, ok := m.steps[g.Phase]
	if !ok {
		return Manual
	}
	return s.Duration(g)
}

// Next picks the phase following the current one.
func (m *Machine) Next(g *game.Game) game.PhaseID {
	switch g.Phase {
	case game.PhaseSetup:
		return game.PhaseNight
	case game.PhaseNight:
		return game.PhaseDay
	case game.PhaseDay:
		if g.Day == 1 && m.cfg.SheriffElection {
			return game.PhaseSheriffElection
		}
		return game.PhaseDeathAnnouncement
	case game.PhaseSheriffElection:
		return game.PhaseDeathAnnouncement
	case game.PhaseDeathAnnouncement:
		if death.PendingTriggers(g) {
			return game.PhaseDeathTrigger
		}
		return game.PhaseSpeech
	case game.PhaseDeathTrigger:
		if g.Data.ExileDone {
			return game.PhaseNight
		}
		return game.PhaseSpeech
	case game.PhaseSpeech:
		return game.PhaseVoting
	case game.PhaseVoting:
		if death.PendingTriggers(g) {
			return game.PhaseDeathTrigger
		}
		return game.PhaseNight
	case game.PhaseJudgeDecision:
		if g.Data.PendingPhase != "" {
			return g.Data.PendingPhase
		}
		return game.PhaseNight
	}
	return game.PhaseEnd
}

// Advance leaves the current phase and enters the next one.
func (m *Machine) Advance(c *Context) (game.PhaseID, error) {
	if c.Game.Phase == game.PhaseEnd {
		return "", game.Conflictf("game has ended")
	}
	if err := m.exit(c); err != nil {
		return "", err
	}
	return m.enter(c, m.Next(c.Game))
}

// Transition leaves the current phase and enters to.
func (m *Machine) Transition(c *Context, to game.PhaseID) (game.PhaseID, error) {
	if _, ok := m.steps[to]; !ok {
		return "", game.Validationf("unknown phase %q", to)
	}
	if err := m.exit(c); err != nil {
		return "", err
	}
	return m.enter(c, to)
}

// HandleInput dispatches an input to the current step.
func (m *Machine) HandleInput(c *Context, in Input) error {
	s, ok := m.steps[c.Game.Phase]
	if !ok {
		return game.Invariantf("unknown phase %q", c.Game.Phase)
	}
	return s.HandleInput(c, in)
}

func (m *Machine) exit(c *Context) error {
	s, ok := m.steps[c.Game.Phase]
	if !ok {
		return game.Invariantf("unknown phase %q", c.Game.Phase)
	}
	return s.OnExit(c)
}

// enter moves to next, diverting to JUDGE_DECISION when a death in this
// mutation met the end-of-game heuristic.
func (m *Machine) enter(c *Context, next game.PhaseID) (game.PhaseID, error) {
	if c.Verdict != "" && next != game.PhaseJudgeDecision && next != game.PhaseEnd {
		c.Game.Data.PendingPhase = next
		next = game.PhaseJudgeDecision
	} else if next != game.PhaseJudgeDecision {
		c.Game.Data.PendingPhase = ""
	}
	c.Game.Phase = next
	s := m.steps[next]
	if err := s.OnEnter(c); err != nil {
		return "", err
	}
	return next, nil
}
