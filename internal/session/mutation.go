package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/death"
	"github.com/cuihairu/werewolf/internal/game/phase"
	"github.com/cuihairu/werewolf/internal/game/poll"
	"github.com/cuihairu/werewolf/internal/game/role"
)

type effect struct {
	op string
	fn func(ctx context.Context) error
}

type timerOp struct {
	slot   string
	cancel bool
	d      time.Duration
}

// mutation is one command's working copy. Nothing in it is visible outside
// the actor until commit.
type mutation struct {
	a       *actor
	ctx     context.Context
	g       *game.Game
	pc      *phase.Context
	poll    *poll.Poll
	summary *poll.Summary
	event   string
	entered []game.PhaseID
	effects []effect
	timers  []timerOp
}

func (a *actor) begin(ctx context.Context, event string) *mutation {
	m := &mutation{a: a, ctx: ctx, g: a.game.Clone(), event: event}
	if a.poll != nil {
		m.poll = a.poll.Clone()
	}
	m.pc = &phase.Context{
		Game:     m.g,
		Registry: a.reg,
		Actions:  a.actions,
		Deaths:   a.deaths,
		Config:   a.e.machine.Config(),
		Now:      a.e.clock.Now(),
		Out:      m,
		Logger:   a.logger,
	}
	return m
}

// phase.Effects

func (m *mutation) Notify(seat int, text string) {
	gw, id := m.a.e.deps.Gateway, m.g.ID
	m.effects = append(m.effects, effect{"notify", func(ctx context.Context) error { return gw.Notify(ctx, id, seat, text) }})
}

func (m *mutation) Broadcast(text string) {
	gw, id := m.a.e.deps.Gateway, m.g.ID
	m.effects = append(m.effects, effect{"broadcast", func(ctx context.Context) error { return gw.Broadcast(ctx, id, text) }})
}

func (m *mutation) Mute(seat int, muted bool) {
	gw, id := m.a.e.deps.Gateway, m.g.ID
	m.effects = append(m.effects, effect{"mute", func(ctx context.Context) error { return gw.SetMuted(ctx, id, seat, muted) }})
}

func (m *mutation) MuteAll(muted bool) {
	gw, id := m.a.e.deps.Gateway, m.g.ID
	m.effects = append(m.effects, effect{"mute_all", func(ctx context.Context) error { return gw.SetMutedAll(ctx, id, muted) }})
}

func (m *mutation) Cue(name string) {
	gw, id := m.a.e.deps.Gateway, m.g.ID
	m.effects = append(m.effects, effect{"cue", func(ctx context.Context) error { return gw.PlayCue(ctx, id, name) }})
}

func (m *mutation) ScheduleSpeech(seconds int) {
	if seconds > 0 {
		m.timers = append(m.timers, timerOp{slot: slotSpeech, d: time.Duration(seconds) * time.Second})
	}
}

func (m *mutation) CancelSpeech() {
	m.timers = append(m.timers, timerOp{slot: slotSpeech, cancel: true})
}

func (m *mutation) cancel(slots ...string) {
	for _, s := range slots {
		m.timers = append(m.timers, timerOp{slot: s, cancel: true})
	}
}

// StartPoll opens an exile or sheriff poll.
func (m *mutation) StartPoll(kind poll.Kind) error {
	if m.poll != nil && m.poll.State != poll.StateClosed {
		return game.Conflictf("poll %s is still open", m.poll.ID)
	}
	g := m.g
	alive := g.Alive()
	var candidates, electors []int
	weighted := 0
	switch kind {
	case poll.KindExile:
		candidates, electors = alive, alive
		weighted = g.Sheriff()
	case poll.KindSheriff:
		running := map[int]bool{}
		for _, s := range g.Data.SheriffCandidates {
			if p, ok := g.Player(s); ok && p.Alive() {
				running[s] = true
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			candidates = alive
		}
		for _, s := range alive {
			if !running[s] {
				electors = append(electors, s)
			}
		}
		if len(candidates) == len(alive) {
			electors = alive
		}
	default:
		return game.Validationf("unknown poll kind %q", kind)
	}
	if len(candidates) == 0 || len(electors) == 0 {
		return game.Conflictf("nobody left to vote")
	}
	d := time.Duration(m.pc.Config.Poll) * time.Second
	m.poll = poll.New(uuid.NewString(), kind, candidates, electors, weighted, m.pc.Now, d)
	m.Cue(phase.CuePollStart)
	m.pc.Narrate("投票开始, %d秒内有效", m.pc.Config.Poll)
	m.schedulePoll(d)
	return nil
}

func (m *mutation) schedulePoll(d time.Duration) {
	if d <= 0 {
		return
	}
	m.timers = append(m.timers, timerOp{slot: slotPollFinish, d: d})
	if at, ok := m.poll.Warning(); ok {
		m.timers = append(m.timers, timerOp{slot: slotPollWarning, d: at.Sub(m.poll.OpenedAt)})
	} else {
		m.cancel(slotPollWarning)
	}
}

// finishPoll tallies the active poll: PK, outcome, or no winner.
func (m *mutation) finishPoll() error {
	p := m.poll
	if p == nil || p.State != poll.StateOpen {
		return game.Conflictf("no open poll")
	}
	o := p.Resolve()
	s := p.Summarize(o)
	m.summary = &s
	m.Cue(phase.CuePollFinish)
	m.pc.Narrate("%s", s.Text())
	m.a.e.metrics.PollResolved(m.ctx, m.g.ID, string(p.Kind), outcomeLabel(o))
	m.cancel(slotPollWarning, slotPollFinish)
	if o.PK {
		p.BeginPK(o.Tied)
		phase.StartPKSpeech(m.pc, o.Tied)
		return nil
	}
	p.Close()
	m.poll = nil
	if o.Winner != 0 {
		switch p.Kind {
		case poll.KindExile:
			if err := m.pc.Kill(death.Kill{Seat: o.Winner, Cause: role.CauseExile}); err != nil {
				return err
			}
		case poll.KindSheriff:
			w, _ := m.g.Player(o.Winner)
			w.Sheriff = true
			m.pc.Narrate("%d号当选警长", o.Winner)
		}
	}
	switch m.g.Phase {
	case game.PhaseVoting, game.PhaseSheriffElection:
		return m.advance()
	}
	return nil
}

func outcomeLabel(o poll.Outcome) string {
	switch {
	case o.Winner != 0:
		return "winner"
	case o.PK:
		return "pk"
	}
	return "none"
}

// reopenPoll starts the PK ballot after the PK speeches.
func (m *mutation) reopenPoll() {
	d := time.Duration(m.pc.Config.Poll) * time.Second
	m.poll.Reopen(m.pc.Now, d)
	m.g.Data.Speech = nil
	m.MuteAll(false)
	m.Cue(phase.CuePollStart)
	m.pc.Narrate("PK投票开始")
	m.schedulePoll(d)
}

// nextSpeaker ends a speech turn and moves the flow on when the queue is done.
func (m *mutation) nextSpeaker() error {
	sp := m.g.Data.Speech
	if sp == nil {
		return game.Conflictf("nobody is speaking")
	}
	if !phase.NextSpeaker(m.pc) {
		return nil
	}
	if sp.PK {
		if m.poll != nil && m.poll.State == poll.StatePKSpeech {
			m.reopenPoll()
		}
		return nil
	}
	if m.g.Phase == game.PhaseSpeech {
		return m.advance()
	}
	return nil
}

func (m *mutation) discardPoll() {
	if m.poll == nil {
		return
	}
	if m.poll.State != poll.StateClosed {
		m.pc.Narrate("投票已取消")
	}
	m.poll = nil
	m.cancel(slotPollWarning, slotPollFinish, slotSpeech)
}

func (m *mutation) advance() error {
	m.discardPoll()
	if _, err := m.a.e.machine.Advance(m.pc); err != nil {
		return err
	}
	return m.afterEnter()
}

func (m *mutation) transition(to game.PhaseID) error {
	m.discardPoll()
	if _, err := m.a.e.machine.Transition(m.pc, to); err != nil {
		return err
	}
	return m.afterEnter()
}

// afterEnter arms the phase timer and skips an empty speech queue.
func (m *mutation) afterEnter() error {
	g := m.g
	m.entered = append(m.entered, g.Phase)
	m.cancel(slotPhase)
	if d := m.a.e.machine.Duration(g); d > 0 {
		m.timers = append(m.timers, timerOp{slot: slotPhase, d: time.Duration(d) * time.Second})
	}
	if g.Phase == game.PhaseSpeech && g.Data.Speech.Done() && len(m.entered) < 16 {
		return m.advance()
	}
	return nil
}

// settle follows up on deaths outside a transition: a verdict sends the game
// to the judge.
func (m *mutation) settle() error {
	if m.pc.Verdict == "" {
		return nil
	}
	switch m.g.Phase {
	case game.PhaseJudgeDecision, game.PhaseEnd:
		return nil
	}
	return m.advance()
}
