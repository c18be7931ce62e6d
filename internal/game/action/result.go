package action

import (
	"sort"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
)

// Check is the outcome of an investigation.
type Check struct {
	Actor  int       `json:"actor"`
	Target int       `json:"target"`
	Camp   role.Camp `json:"camp"`
}

// Werewolf reports whether the investigated role is in the werewolf camp.
func (c Check) Werewolf() bool { return c.Camp == role.CampWerewolf }

// Result is the aggregate effect of one resolution pass.
type Result struct {
	Deaths    map[role.Cause]map[int]bool `json:"deaths"`
	Protected map[role.Cause]map[int]bool `json:"protected"`
	Checks    []Check                     `json:"checks,omitempty"`
	Links     [][2]int                    `json:"links,omitempty"`
	Executed  []*game.ActionInstance      `json:"executed,omitempty"`
	Rejected  []*game.ActionInstance      `json:"rejected,omitempty"`
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{
		Deaths:    map[role.Cause]map[int]bool{},
		Protected: map[role.Cause]map[int]bool{},
	}
}

// Kill marks seat to die by cause unless it is protected from that cause.
func (r *Result) Kill(cause role.Cause, seat int) bool {
	if r.Protected[cause][seat] {
		return false
	}
	r.force(cause, seat)
	return true
}

func (r *Result) force(cause role.Cause, seat int) {
	if r.Deaths[cause] == nil {
		r.Deaths[cause] = map[int]bool{}
	}
	r.Deaths[cause][seat] = true
}

// Protect shields seat from cause and cancels a death already marked for it.
func (r *Result) Protect(cause role.Cause, seat int) {
	if r.Protected[cause] == nil {
		r.Protected[cause] = map[int]bool{}
	}
	r.Protected[cause][seat] = true
	delete(r.Deaths[cause], seat)
}

// Dead returns the seats marked dead by cause in ascending order.
func (r *Result) Dead(cause role.Cause) []int {
	out := make([]int, 0, len(r.Deaths[cause]))
	for seat, ok := range r.Deaths[cause] {
		if ok {
			out = append(out, seat)
		}
	}
	sort.Ints(out)
	return out
}

// DeathCount counts marked deaths over all causes.
func (r *Result) DeathCount() int {
	n := 0
	for _, seats := range r.Deaths {
		n += len(seats)
	}
	return n
}
