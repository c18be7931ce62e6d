// Package poll tallies exile and sheriff votes, including one PK round.
package poll

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cuihairu/werewolf/internal/game"
)

// Kind 投票类型
type Kind string

const (
	KindExile   Kind = "exile"
	KindSheriff Kind = "sheriff"
)

// State of a poll.
type State string

const (
	StateOpen     State = "open"
	StatePKSpeech State = "pk_speech"
	StateClosed   State = "closed"
)

// WeightedVote is the weight of the sheriff's ballot.
const WeightedVote = 1.5

// WarningLead is how long before the deadline the warning fires.
const WarningLead = 10 * time.Second

// Candidate is one seat that can receive votes.
type Candidate struct {
	Seat     int   `json:"seat"`
	Electors []int `json:"electors"`
	Quit     bool  `json:"quit,omitempty"`
	PK       bool  `json:"pk,omitempty"`
}

// Poll is a single vote. It lives only until it is closed.
type Poll struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Candidates map[int]*Candidate `json:"candidates"`
	Electors   []int              `json:"electors"`
	Weighted   int                `json:"weighted,omitempty"`
	AllowPK    bool               `json:"allow_pk"`
	PK         bool               `json:"pk,omitempty"`
	State      State              `json:"state"`
	OpenedAt   time.Time          `json:"opened_at"`
	Deadline   time.Time          `json:"deadline"`
}

// New opens a poll.
func New(id string, kind Kind, candidates, electors []int, weighted int, now time.Time, d time.Duration) *Poll {
	p := &Poll{
		ID:         id,
		Kind:       kind,
		Candidates: make(map[int]*Candidate, len(candidates)),
		Electors:   append([]int(nil), electors...),
		Weighted:   weighted,
		AllowPK:    true,
		State:      StateOpen,
		OpenedAt:   now,
		Deadline:   now.Add(d),
	}
	sort.Ints(p.Electors)
	for _, s := range candidates {
		p.Candidates[s] = &Candidate{Seat: s}
	}
	return p
}

// Warning returns when to warn, and false when the poll is too short for one.
func (p *Poll) Warning() (time.Time, bool) {
	if p.Deadline.Sub(p.OpenedAt) <= WarningLead {
		return time.Time{}, false
	}
	return p.Deadline.Add(-WarningLead), true
}

// Seats returns candidate seats in ascending order.
func (p *Poll) Seats() []int {
	out := make([]int, 0, len(p.Candidates))
	for s := range p.Candidates {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func (p *Poll) eligible(seat int) bool {
	for _, e := range p.Electors {
		if e == seat {
			return true
		}
	}
	return false
}

// Vote records elector's ballot for candidate, moving any earlier ballot.
func (p *Poll) Vote(elector, candidate int) error {
	if p.State != StateOpen {
		return game.Conflictf("poll %s is not accepting votes", p.ID)
	}
	if !p.eligible(elector) {
		return game.Validationf("seat %d cannot vote in this poll", elector)
	}
	c, ok := p.Candidates[candidate]
	if !ok {
		return game.Validationf("seat %d is not a candidate", candidate)
	}
	p.retract(elector)
	c.Electors = append(c.Electors, elector)
	sort.Ints(c.Electors)
	return nil
}

// Retract removes the elector's ballot, turning it into an abstention.
func (p *Poll) Retract(elector int) error {
	if p.State != StateOpen {
		return game.Conflictf("poll %s is not accepting votes", p.ID)
	}
	p.retract(elector)
	return nil
}

func (p *Poll) retract(elector int) {
	for _, c := range p.Candidates {
		for i, e := range c.Electors {
			if e == elector {
				c.Electors = append(c.Electors[:i], c.Electors[i+1:]...)
				break
			}
		}
	}
}

// Quit withdraws a candidate; the candidate's total becomes 0.
func (p *Poll) Quit(seat int) error {
	if p.State == StateClosed {
		return game.Conflictf("poll %s is closed", p.ID)
	}
	c, ok := p.Candidates[seat]
	if !ok {
		return game.Validationf("seat %d is not a candidate", seat)
	}
	c.Quit = true
	return nil
}

func (p *Poll) weight(elector int) float64 {
	if p.Weighted != 0 && elector == p.Weighted {
		return WeightedVote
	}
	return 1
}

// Total is the weighted total of a candidate.
func (p *Poll) Total(seat int) float64 {
	c, ok := p.Candidates[seat]
	if !ok || c.Quit {
		return 0
	}
	var sum float64
	for _, e := range c.Electors {
		sum += p.weight(e)
	}
	return sum
}

// Winners returns every candidate sharing the maximum total, or nil when
// the maximum is 0.
func (p *Poll) Winners() []int {
	var best float64
	var out []int
	for _, s := range p.Seats() {
		t := p.Total(s)
		switch {
		case t > best:
			best, out = t, []int{s}
		case t == best && t > 0:
			out = append(out, s)
		}
	}
	return out
}

// Abstainers returns eligible electors without a ballot.
func (p *Poll) Abstainers() []int {
	voted := map[int]bool{}
	for _, c := range p.Candidates {
		for _, e := range c.Electors {
			voted[e] = true
		}
	}
	var out []int
	for _, e := range p.Electors {
		if !voted[e] {
			out = append(out, e)
		}
	}
	return out
}

// Outcome is the result of a tally.
type Outcome struct {
	Winner int   `json:"winner,omitempty"`
	Tied   []int `json:"tied,omitempty"`
	// PK is set when the tie goes to a PK round.
	PK       bool `json:"pk,omitempty"`
	NoWinner bool `json:"no_winner,omitempty"`
}

// Resolve tallies the ballots. It does not change the poll.
func (p *Poll) Resolve() Outcome {
	w := p.Winners()
	switch {
	case len(w) == 0:
		return Outcome{NoWinner: true}
	case len(w) == 1:
		return Outcome{Winner: w[0]}
	case p.AllowPK && !p.PK:
		return Outcome{Tied: w, PK: true}
	default:
		return Outcome{Tied: w, NoWinner: true}
	}
}

// BeginPK restricts the poll to the tied candidates, clears every ballot and
// removes the tied candidates from the electorate. No further PK is allowed.
func (p *Poll) BeginPK(tied []int) {
	keep := make(map[int]bool, len(tied))
	for _, s := range tied {
		keep[s] = true
	}
	for s, c := range p.Candidates {
		if !keep[s] {
			delete(p.Candidates, s)
			continue
		}
		c.Electors = nil
		c.PK = true
	}
	electors := p.Electors[:0]
	for _, e := range p.Electors {
		if !keep[e] {
			electors = append(electors, e)
		}
	}
	p.Electors = electors
	p.AllowPK = false
	p.PK = true
	p.State = StatePKSpeech
}

// Reopen starts the PK ballot.
func (p *Poll) Reopen(now time.Time, d time.Duration) {
	p.State = StateOpen
	p.OpenedAt = now
	p.Deadline = now.Add(d)
}

// Close ends the poll.
func (p *Poll) Close() { p.State = StateClosed }

// Line is one candidate row of a summary.
type Line struct {
	Seat     int     `json:"seat"`
	Electors []int   `json:"electors"`
	Total    float64 `json:"total"`
	Quit     bool    `json:"quit,omitempty"`
}

// Summary is published after every resolution.
type Summary struct {
	PollID     string  `json:"poll_id"`
	Kind       Kind    `json:"kind"`
	PK         bool    `json:"pk,omitempty"`
	Lines      []Line  `json:"lines"`
	Abstainers []int   `json:"abstainers"`
	Outcome    Outcome `json:"outcome"`
}

// Summarize builds the summary for an outcome.
func (p *Poll) Summarize(o Outcome) Summary {
	s := Summary{PollID: p.ID, Kind: p.Kind, PK: p.PK, Abstainers: p.Abstainers(), Outcome: o}
	for _, seat := range p.Seats() {
		c := p.Candidates[seat]
		s.Lines = append(s.Lines, Line{
			Seat:     seat,
			Electors: append([]int(nil), c.Electors...),
			Total:    p.Total(seat),
			Quit:     c.Quit,
		})
	}
	return s
}

// Text renders the summary for narration.
func (s Summary) Text() string {
	var b strings.Builder
	title := "放逐投票"
	if s.Kind == KindSheriff {
		title = "警长投票"
	}
	if s.PK {
		title += "(PK)"
	}
	b.WriteString(title)
	b.WriteString(":")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, " %d号←[%s] %.1f票", l.Seat, seats(l.Electors), l.Total)
		if l.Quit {
			b.WriteString("(退水)")
		}
		b.WriteString(";")
	}
	fmt.Fprintf(&b, " 弃票[%s]", seats(s.Abstainers))
	switch {
	case s.Outcome.Winner != 0:
		fmt.Fprintf(&b, "; 结果: %d号", s.Outcome.Winner)
	case s.Outcome.PK:
		fmt.Fprintf(&b, "; 平票 %s 进入PK", seats(s.Outcome.Tied))
	case s.Kind == KindSheriff:
		b.WriteString("; 结果: 警徽流失")
	default:
		b.WriteString("; 结果: 无人出局")
	}
	return b.String()
}

func seats(in []int) string {
	parts := make([]string, len(in))
	for i, s := range in {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, ",")
}

// Clone deep-copies the poll.
func (p *Poll) Clone() *Poll {
	cp := *p
	cp.Electors = append([]int(nil), p.Electors...)
	cp.Candidates = make(map[int]*Candidate, len(p.Candidates))
	for s, c := range p.Candidates {
		cc := *c
		cc.Electors = append([]int(nil), c.Electors...)
		cp.Candidates[s] = &cc
	}
	return &cp
}
