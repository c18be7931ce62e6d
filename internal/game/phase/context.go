package phase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/action"
	"github.com/cuihairu/werewolf/internal/game/death"
	"github.com/cuihairu/werewolf/internal/game/poll"
	"github.com/cuihairu/werewolf/internal/game/role"
)

// Effects are the outbound side effects a step may request. The session
// buffers them and only delivers them once the mutation commits.
type Effects interface {
	Notify(seat int, text string)
	Broadcast(text string)
	Mute(seat int, muted bool)
	MuteAll(muted bool)
	Cue(name string)
	StartPoll(kind poll.Kind) error
	ScheduleSpeech(seconds int)
	CancelSpeech()
}

// Audio cue names.
const (
	CueNight       = "night"
	CueDay         = "day"
	CuePollStart   = "poll_start"
	CuePollWarning = "poll_warning"
	CuePollFinish  = "poll_finish"
	CueJudge       = "judge"
	CueGameOver    = "game_over"
)

// Context carries one mutation's view of the game.
type Context struct {
	Game     *game.Game
	Registry *role.Registry
	Actions  *action.Resolver
	Deaths   *death.Resolver
	Config   Config
	Now      time.Time
	Out      Effects
	Logger   *slog.Logger

	// Verdict is set when a death in this mutation satisfied the end-of-game heuristic.
	Verdict role.Camp
	// Died collects every death applied in this mutation.
	Died []game.Death
}

// Narrate logs a public line and broadcasts it.
func (c *Context) Narrate(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	c.Game.Narrate(c.Now, text)
	c.Out.Broadcast(text)
}

// ApplyResult applies a resolution result: deaths, lovers and private checks.
// Night deaths are held for the announcement, other deaths are announced now.
func (c *Context) ApplyResult(res *action.Result) error {
	for _, chk := range res.Checks {
		verdict := "好人"
		if chk.Werewolf() {
			verdict = "狼人"
		}
		c.Out.Notify(chk.Actor, fmt.Sprintf("%d号的身份是: %s", chk.Target, verdict))
	}
	for _, l := range res.Links {
		c.Out.Notify(l[0], fmt.Sprintf("你与%d号成为情侣", l[1]))
		c.Out.Notify(l[1], fmt.Sprintf("你与%d号成为情侣", l[0]))
	}
	deaths, err := c.Deaths.Apply(c.Game, res)
	if err != nil {
		return err
	}
	c.recordDeaths(deaths)
	return nil
}

// Kill applies direct kills such as an exile.
func (c *Context) Kill(kills ...death.Kill) error {
	deaths, err := c.Deaths.Kill(c.Game, kills)
	if err != nil {
		return err
	}
	c.recordDeaths(deaths)
	return nil
}

func (c *Context) recordDeaths(deaths []game.Death) {
	if len(deaths) == 0 {
		return
	}
	c.Died = append(c.Died, deaths...)
	if c.Game.Phase == game.PhaseNight {
		c.Game.Data.Deaths = append(c.Game.Data.Deaths, deaths...)
	} else {
		c.Narrate("%s 出局", seatList(deaths))
	}
	for _, d := range deaths {
		c.Out.Mute(d.Seat, true)
	}
	if camp, ok := death.Outcome(c.Game, c.Registry); ok {
		c.Verdict = camp
	}
}

func seatList(deaths []game.Death) string {
	seen := map[int]bool{}
	var parts []string
	for _, d := range deaths {
		if seen[d.Seat] {
			continue
		}
		seen[d.Seat] = true
		parts = append(parts, fmt.Sprintf("%d号", d.Seat))
	}
	return strings.Join(parts, "、")
}
