package phase

import (
	"fmt"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/death"
	"github.com/cuihairu/werewolf/internal/game/poll"
)

// base gives steps no-op hooks.
type base struct{ cfg Config }

func (base) OnEnter(*Context) error { return nil }
func (base) OnExit(*Context) error  { return nil }
func (base) HandleInput(c *Context, _ Input) error {
	return game.Conflictf("%s accepts no input", c.Game.Phase.Label())
}
func (base) Duration(*game.Game) int { return Manual }

// SETUP 准备阶段
type setupStep struct{ base }

func (setupStep) ID() game.PhaseID { return game.PhaseSetup }

func (setupStep) OnEnter(c *Context) error {
	c.Narrate("游戏准备中, 共%d名玩家", len(c.Game.Players))
	return nil
}

func (setupStep) OnExit(c *Context) error {
	for _, p := range c.Game.Players {
		if len(p.Roles) == 0 {
			return game.Conflictf("seat %d has no role", p.Seat)
		}
		for _, r := range p.Roles {
			if _, ok := c.Registry.Lookup(r); !ok {
				return game.Validationf("seat %d holds unknown role %q", p.Seat, r)
			}
		}
	}
	return nil
}

// HandleInput lets a double-identity player choose which role dies first.
func (setupStep) HandleInput(c *Context, in Input) error {
	if in.Kind != InputSwap {
		return game.Validationf("unsupported input %q", in.Kind)
	}
	p, ok := c.Game.Player(in.Seat)
	if !ok {
		return game.NotFoundf("seat %d not found", in.Seat)
	}
	if p.RoleOrderLocked {
		return game.Conflictf("seat %d role order is locked", in.Seat)
	}
	if len(p.Roles) != 2 {
		return game.Validationf("seat %d does not hold two roles", in.Seat)
	}
	p.Roles[0], p.Roles[1] = p.Roles[1], p.Roles[0]
	c.Out.Notify(p.Seat, fmt.Sprintf("身份顺序: %s, %s", p.Roles[0], p.Roles[1]))
	return nil
}

// NIGHT 夜晚
type nightStep struct{ base }

func (nightStep) ID() game.PhaseID { return game.PhaseNight }

func (s nightStep) Duration(*game.Game) int { return s.cfg.Night }

func (nightStep) OnEnter(c *Context) error {
	g := c.Game
	g.Day++
	death.ExpireTriggers(g)
	g.Data.Pending = nil
	g.Data.Deaths = nil
	g.Data.ExileDone = false
	g.Data.Speech = nil
	for _, p := range g.Players {
		p.RoleOrderLocked = true
	}
	c.Out.MuteAll(true)
	c.Out.Cue(CueNight)
	c.Narrate("第%d夜, 天黑请闭眼", g.Day)
	for _, seat := range g.Alive() {
		opts := c.Actions.Available(g, seat)
		for _, o := range opts {
			c.Out.Notify(seat, fmt.Sprintf("请使用技能: %s (%s)", o.Action.Name, o.Action.ID))
		}
	}
	return nil
}

// OnExit resolves every queued night action in one pass.
func (nightStep) OnExit(c *Context) error {
	g := c.Game
	pending := g.Data.Pending
	g.Data.Pending = nil
	res, err := c.Actions.Resolve(g, pending)
	if err != nil {
		return err
	}
	for _, inst := range res.Rejected {
		c.Out.Notify(inst.Actor, fmt.Sprintf("技能未生效: %s", inst.Note))
	}
	return c.ApplyResult(res)
}

// DAY 天亮
type dayStep struct{ base }

func (dayStep) ID() game.PhaseID { return game.PhaseDay }

func (s dayStep) Duration(*game.Game) int { return s.cfg.Day }

func (dayStep) OnEnter(c *Context) error {
	c.Out.MuteAll(false)
	for _, p := range c.Game.Players {
		if !p.Alive() || p.Silenced {
			c.Out.Mute(p.Seat, true)
		}
	}
	c.Out.Cue(CueDay)
	c.Narrate("第%d天, 天亮了", c.Game.Day)
	return nil
}

// SHERIFF_ELECTION 警长竞选
type sheriffStep struct{ base }

func (sheriffStep) ID() game.PhaseID { return game.PhaseSheriffElection }

func (sheriffStep) OnEnter(c *Context) error {
	c.Game.Data.SheriffCandidates = nil
	c.Narrate("警长竞选开始, 请要上警的玩家报名")
	return nil
}

func (sheriffStep) HandleInput(c *Context, in Input) error {
	d := c.Game.Data
	switch in.Kind {
	case InputRun:
		p, ok := c.Game.Player(in.Seat)
		if !ok || !p.Alive() {
			return game.Validationf("seat %d cannot run for sheriff", in.Seat)
		}
		for _, s := range d.SheriffCandidates {
			if s == in.Seat {
				return nil
			}
		}
		d.SheriffCandidates = append(d.SheriffCandidates, in.Seat)
		c.Narrate("%d号上警", in.Seat)
		return nil
	case InputWithdraw:
		for i, s := range d.SheriffCandidates {
			if s == in.Seat {
				d.SheriffCandidates = append(d.SheriffCandidates[:i], d.SheriffCandidates[i+1:]...)
				c.Narrate("%d号退水", in.Seat)
				return nil
			}
		}
		return game.Validationf("seat %d is not running", in.Seat)
	}
	return game.Validationf("unsupported input %q", in.Kind)
}

// DEATH_ANNOUNCEMENT 公布死讯
type announceStep struct{ base }

func (announceStep) ID() game.PhaseID { return game.PhaseDeathAnnouncement }

func (s announceStep) Duration(*game.Game) int { return s.cfg.DeathAnnouncement }

func (announceStep) OnEnter(c *Context) error {
	deaths := c.Game.Data.Deaths
	if len(deaths) == 0 {
		c.Narrate("昨夜是平安夜")
		return nil
	}
	c.Narrate("昨夜 %s 死亡", seatList(deaths))
	return nil
}

// DEATH_TRIGGER 死亡技能
type triggerStep struct{ base }

func (triggerStep) ID() game.PhaseID { return game.PhaseDeathTrigger }

func (s triggerStep) Duration(*game.Game) int { return s.cfg.DeathTrigger }

func (triggerStep) OnEnter(c *Context) error {
	g := c.Game
	for _, p := range g.Players {
		for _, r := range p.Roles {
			for _, a := range c.Registry.TriggerActions(r) {
				if _, ok := g.Data.Flag(game.TriggerKey(a.ID, p.Seat)); ok {
					c.Out.Notify(p.Seat, fmt.Sprintf("你可以发动: %s (%s)", a.Name, a.ID))
				}
			}
		}
	}
	if seat, ok := g.Data.Flag(game.KeyBadgePending); ok {
		c.Out.Notify(seat, "请移交警徽或撕毁警徽")
	}
	c.Narrate("死亡技能发动时间")
	return nil
}

func (triggerStep) HandleInput(c *Context, in Input) error {
	if in.Kind != InputBadge {
		return game.Validationf("unsupported input %q", in.Kind)
	}
	return TransferBadge(c, in.Seat, in.Target)
}

// OnExit closes the window: unused unlocks lapse and an unclaimed badge is lost.
func (triggerStep) OnExit(c *Context) error {
	death.ExpireTriggers(c.Game)
	if _, ok := c.Game.Data.Flag(game.KeyBadgePending); ok {
		c.Game.Data.ClearFlag(game.KeyBadgePending)
		c.Narrate("警徽流失")
	}
	return nil
}

// TransferBadge hands the badge of a dead sheriff to target, or destroys it when target is 0.
func TransferBadge(c *Context, from, target int) error {
	g := c.Game
	seat, ok := g.Data.Flag(game.KeyBadgePending)
	if !ok {
		return game.Conflictf("no badge handover pending")
	}
	if seat != from {
		return game.Validationf("seat %d does not hold the badge", from)
	}
	if target == 0 {
		g.Data.ClearFlag(game.KeyBadgePending)
		c.Narrate("%d号撕毁警徽", from)
		return nil
	}
	p, ok := g.Player(target)
	if !ok || !p.Alive() {
		return game.Validationf("seat %d cannot receive the badge", target)
	}
	p.Sheriff = true
	g.Data.ClearFlag(game.KeyBadgePending)
	c.Narrate("%d号将警徽移交给%d号", from, target)
	return nil
}

// SPEECH 发言
type speechStep struct{ base }

func (speechStep) ID() game.PhaseID { return game.PhaseSpeech }

func (speechStep) OnEnter(c *Context) error {
	g := c.Game
	g.Data.Speech = &game.Speech{Speakers: SpeakingOrder(g)}
	c.Out.MuteAll(true)
	c.Narrate("开始发言")
	startTurn(c, c.Config.SpeechTurn)
	return nil
}

func (speechStep) OnExit(c *Context) error {
	c.Out.CancelSpeech()
	c.Game.Data.Speech = nil
	c.Out.MuteAll(false)
	return nil
}

func (speechStep) HandleInput(c *Context, in Input) error {
	if in.Kind != InputNext {
		return game.Validationf("unsupported input %q", in.Kind)
	}
	sp := c.Game.Data.Speech
	if in.Seat != 0 && in.Seat != sp.Speaker() {
		return game.Validationf("seat %d is not speaking", in.Seat)
	}
	NextSpeaker(c)
	return nil
}

// SpeakingOrder lists alive, unsilenced seats starting after the sheriff.
func SpeakingOrder(g *game.Game) []int {
	var alive []int
	for _, p := range g.Players {
		if p.Alive() && !p.Silenced {
			alive = append(alive, p.Seat)
		}
	}
	start := 0
	if s := g.Sheriff(); s != 0 {
		for i, seat := range alive {
			if seat > s {
				start = i
				break
			}
		}
	}
	out := make([]int, 0, len(alive))
	out = append(out, alive[start:]...)
	return append(out, alive[:start]...)
}

func startTurn(c *Context, seconds int) {
	sp := c.Game.Data.Speech
	seat := sp.Speaker()
	if seat == 0 {
		return
	}
	c.Out.Mute(seat, false)
	c.Out.Notify(seat, "轮到你发言")
	c.Out.ScheduleSpeech(seconds)
}

// NextSpeaker ends the current turn and reports whether the queue is done.
func NextSpeaker(c *Context) bool {
	sp := c.Game.Data.Speech
	if sp.Done() {
		return true
	}
	c.Out.Mute(sp.Speaker(), true)
	sp.Current++
	if sp.Done() {
		c.Out.CancelSpeech()
		return true
	}
	turn := c.Config.SpeechTurn
	if sp.PK {
		turn = c.Config.PKSpeechTurn
	}
	startTurn(c, turn)
	return false
}

// StartPKSpeech queues the tied candidates for a short speech round.
func StartPKSpeech(c *Context, tied []int) {
	c.Game.Data.Speech = &game.Speech{Speakers: append([]int(nil), tied...), PK: true}
	c.Out.MuteAll(true)
	c.Narrate("%s 平票, 进入PK发言", seatsText(tied))
	startTurn(c, c.Config.PKSpeechTurn)
}

// VOTING 放逐投票
type votingStep struct{ base }

func (votingStep) ID() game.PhaseID { return game.PhaseVoting }

func (votingStep) OnEnter(c *Context) error {
	c.Narrate("开始放逐投票")
	return c.Out.StartPoll(poll.KindExile)
}

func (votingStep) OnExit(c *Context) error {
	c.Game.Data.ExileDone = true
	c.Game.Data.Speech = nil
	return nil
}

// JUDGE_DECISION 法官裁定
type judgeStep struct{ base }

func (judgeStep) ID() game.PhaseID { return game.PhaseJudgeDecision }

func (judgeStep) OnEnter(c *Context) error {
	c.Out.Cue(CueJudge)
	if c.Verdict != "" {
		c.Narrate("%s 阵营达成胜利条件, 等待法官裁定", c.Verdict)
	} else {
		c.Narrate("等待法官裁定")
	}
	return nil
}

// END 游戏结束
type endStep struct{ base }

func (endStep) ID() game.PhaseID { return game.PhaseEnd }

func (endStep) OnEnter(c *Context) error {
	g := c.Game
	g.Ended = true
	if g.Winner == "" {
		if camp, ok := death.Outcome(g, c.Registry); ok {
			g.Winner = camp
		}
	}
	c.Out.CancelSpeech()
	c.Out.MuteAll(false)
	c.Out.Cue(CueGameOver)
	if g.Winner != "" {
		c.Narrate("游戏结束, %s 阵营获胜", g.Winner)
	} else {
		c.Narrate("游戏结束")
	}
	for _, p := range g.Players {
		c.Out.Broadcast(fmt.Sprintf("%d号: %v", p.Seat, p.Roles))
	}
	return nil
}

func seatsText(seats []int) string {
	s := ""
	for i, seat := range seats {
		if i > 0 {
			s += "、"
		}
		s += fmt.Sprintf("%d号", seat)
	}
	return s
}
