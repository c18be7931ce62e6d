package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuihairu/werewolf/internal/game/role"
)

// PhaseID identifies a phase of the game loop.
type PhaseID string

const (
	PhaseSetup             PhaseID = "SETUP"
	PhaseNight             PhaseID = "NIGHT"
	PhaseDay               PhaseID = "DAY"
	PhaseSheriffElection   PhaseID = "SHERIFF_ELECTION"
	PhaseDeathAnnouncement PhaseID = "DEATH_ANNOUNCEMENT"
	PhaseDeathTrigger      PhaseID = "DEATH_TRIGGER"
	PhaseSpeech            PhaseID = "SPEECH"
	PhaseVoting            PhaseID = "VOTING"
	PhaseJudgeDecision     PhaseID = "JUDGE_DECISION"
	PhaseEnd               PhaseID = "END"
)

var phaseNames = map[PhaseID]string{
	PhaseSetup:             "准备",
	PhaseNight:             "夜晚",
	PhaseDay:               "白天",
	PhaseSheriffElection:   "警长竞选",
	PhaseDeathAnnouncement: "公布死讯",
	PhaseDeathTrigger:      "死亡技能",
	PhaseSpeech:            "发言",
	PhaseVoting:            "放逐投票",
	PhaseJudgeDecision:     "法官裁定",
	PhaseEnd:               "游戏结束",
}

// Label returns the narration label of the phase.
func (p PhaseID) Label() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return string(p)
}

// Known reports whether p is a phase of the loop.
func (p PhaseID) Known() bool {
	_, ok := phaseNames[p]
	return ok
}

// Daytime reports whether DAY-timed actions are accepted in p.
func (p PhaseID) Daytime() bool {
	switch p {
	case PhaseDay, PhaseSheriffElection, PhaseDeathAnnouncement, PhaseDeathTrigger, PhaseSpeech, PhaseVoting:
		return true
	}
	return false
}

// Game is the full state of one table.
type Game struct {
	ID          string            `json:"id"`
	Players     []*Player         `json:"players"`
	Deck        []string          `json:"deck,omitempty"`
	Phase       PhaseID           `json:"phase"`
	Day         int               `json:"day"`
	Data        *PhaseData        `json:"data"`
	Log         []Narration       `json:"log,omitempty"`
	CustomRoles []role.Definition `json:"custom_roles,omitempty"`
	Ended       bool              `json:"ended,omitempty"`
	Winner      role.Camp         `json:"winner,omitempty"`
	Version     int64             `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Narration is one line of the game log.
type Narration struct {
	Seq   int64     `json:"seq"`
	Day   int       `json:"day"`
	Phase PhaseID   `json:"phase"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Death records one role death.
type Death struct {
	Seat  int        `json:"seat"`
	Role  string     `json:"role"`
	Cause role.Cause `json:"cause"`
	Day   int        `json:"day"`
	Phase PhaseID    `json:"phase"`
}

// New creates a game in SETUP with seats 1..n.
func New(id string, seats int, now time.Time) *Game {
	if id == "" {
		id = uuid.NewString()
	}
	g := &Game{
		ID:        id,
		Phase:     PhaseSetup,
		Data:      NewPhaseData(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := 1; i <= seats; i++ {
		g.Players = append(g.Players, &Player{Seat: i})
	}
	return g
}

// Player returns the player at seat.
func (g *Game) Player(seat int) (*Player, bool) {
	for _, p := range g.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return nil, false
}

// Alive returns the seats of alive players in seat order.
func (g *Game) Alive() []int {
	out := make([]int, 0, len(g.Players))
	for _, p := range g.Players {
		if p.Alive() {
			out = append(out, p.Seat)
		}
	}
	return out
}

// Sheriff returns the seat of the alive sheriff, 0 when none.
func (g *Game) Sheriff() int {
	for _, p := range g.Players {
		if p.Sheriff && p.Alive() {
			return p.Seat
		}
	}
	return 0
}

// Narrate appends a log line.
func (g *Game) Narrate(now time.Time, text string) Narration {
	var seq int64 = 1
	if n := len(g.Log); n > 0 {
		seq = g.Log[n-1].Seq + 1
	}
	line := Narration{Seq: seq, Day: g.Day, Phase: g.Phase, Text: text, At: now}
	g.Log = append(g.Log, line)
	return line
}

// Clone deep-copies the game.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp.Players[i] = p.clone()
	}
	cp.Deck = append([]string(nil), g.Deck...)
	cp.Log = append([]Narration(nil), g.Log...)
	cp.CustomRoles = append([]role.Definition(nil), g.CustomRoles...)
	if g.Data != nil {
		cp.Data = g.Data.Clone()
	}
	return &cp
}
