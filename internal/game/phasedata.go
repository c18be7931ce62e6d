package game

import (
	"fmt"
	"time"
)

// Status of an action instance.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusProcessed Status = "PROCESSED"
	StatusRejected  Status = "REJECTED"
)

// Source of an action instance.
const (
	SourcePlayer = "player"
	SourceSystem = "system"
)

// ActionInstance is one submitted use of an action.
type ActionInstance struct {
	ID          string    `json:"id"`
	Actor       int       `json:"actor"`
	Role        string    `json:"role"`
	Action      string    `json:"action"`
	Targets     []int     `json:"targets,omitempty"`
	Source      string    `json:"source"`
	Status      Status    `json:"status"`
	Note        string    `json:"note,omitempty"`
	Day         int       `json:"day"`
	Phase       PhaseID   `json:"phase"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (a *ActionInstance) clone() *ActionInstance {
	cp := *a
	cp.Targets = append([]int(nil), a.Targets...)
	return &cp
}

// Speech is the speaker queue of SPEECH or a PK round.
type Speech struct {
	Speakers []int `json:"speakers"`
	Current  int   `json:"current"`
	PK       bool  `json:"pk,omitempty"`
}

// Speaker returns the seat currently speaking, 0 when finished.
func (s *Speech) Speaker() int {
	if s == nil || s.Current >= len(s.Speakers) {
		return 0
	}
	return s.Speakers[s.Current]
}

// Done reports whether every speaker has spoken.
func (s *Speech) Done() bool { return s == nil || s.Current >= len(s.Speakers) }

// PhaseData is the per-game scratch area that survives phase transitions.
type PhaseData struct {
	Flags        map[string]int            `json:"flags"`
	History      map[int][]*ActionInstance `json:"history"`
	Pending      []*ActionInstance         `json:"pending,omitempty"`
	PendingPhase PhaseID                   `json:"pending_phase,omitempty"`
	Deaths       []Death                   `json:"deaths,omitempty"`
	// TriggerPhases holds the phase each death-trigger unlock happened in.
	TriggerPhases map[string]PhaseID `json:"trigger_phases,omitempty"`
	ExileDone    bool                      `json:"exile_done,omitempty"`
	Speech       *Speech                   `json:"speech,omitempty"`
	// SheriffCandidates are the seats that signed up for the election.
	SheriffCandidates []int `json:"sheriff_candidates,omitempty"`
}

// NewPhaseData returns empty phase data.
func NewPhaseData() *PhaseData {
	return &PhaseData{
		Flags:   map[string]int{},
		History: map[int][]*ActionInstance{},
	}
}

// Flag keys.
const (
	KeyBadgePending = "badge_pending"
	KeyJudgeReason  = "judge_reason"
)

// TriggerKey marks an unlocked death-trigger action for a seat.
func TriggerKey(actionID string, seat int) string {
	return fmt.Sprintf("trigger:%s:%d", actionID, seat)
}

// UnlockTrigger opens a death-trigger action for seat and remembers the phase
// of the death.
func (d *PhaseData) UnlockTrigger(actionID string, seat, day int, phase PhaseID) {
	key := TriggerKey(actionID, seat)
	d.SetFlag(key, day)
	if d.TriggerPhases == nil {
		d.TriggerPhases = map[string]PhaseID{}
	}
	d.TriggerPhases[key] = phase
}

// TriggerOpen reports whether an unlocked death-trigger action may be used in
// phase: during DEATH_TRIGGER, or in the phase the death happened in.
func (d *PhaseData) TriggerOpen(actionID string, seat int, phase PhaseID) bool {
	key := TriggerKey(actionID, seat)
	if _, ok := d.Flags[key]; !ok {
		return false
	}
	return phase == PhaseDeathTrigger || d.TriggerPhases[key] == phase
}

// UseTrigger consumes a death-trigger unlock.
func (d *PhaseData) UseTrigger(actionID string, seat int) {
	key := TriggerKey(actionID, seat)
	delete(d.Flags, key)
	delete(d.TriggerPhases, key)
}

// PairDiedKey stores the day a paired role died.
func PairDiedKey(roleName string) string { return "pair_died:" + roleName }

// Flag returns a flag value and whether it is set.
func (d *PhaseData) Flag(key string) (int, bool) {
	v, ok := d.Flags[key]
	return v, ok
}

// SetFlag sets a flag.
func (d *PhaseData) SetFlag(key string, v int) {
	if d.Flags == nil {
		d.Flags = map[string]int{}
	}
	d.Flags[key] = v
}

// ClearFlag removes a flag.
func (d *PhaseData) ClearFlag(key string) { delete(d.Flags, key) }

// Record appends a finished instance to the history of its day.
func (d *PhaseData) Record(inst *ActionInstance) {
	if d.History == nil {
		d.History = map[int][]*ActionInstance{}
	}
	d.History[inst.Day] = append(d.History[inst.Day], inst)
}

// Processed returns the PROCESSED instances of a day.
func (d *PhaseData) Processed(day int) []*ActionInstance {
	var out []*ActionInstance
	for _, inst := range d.History[day] {
		if inst.Status == StatusProcessed {
			out = append(out, inst)
		}
	}
	return out
}

// Uses counts PROCESSED instances of an action by a seat across all days.
func (d *PhaseData) Uses(seat int, actionID string) int {
	n := 0
	for _, insts := range d.History {
		for _, inst := range insts {
			if inst.Status == StatusProcessed && inst.Actor == seat && inst.Action == actionID {
				n++
			}
		}
	}
	return n
}

// Clone deep-copies the phase data.
func (d *PhaseData) Clone() *PhaseData {
	cp := *d
	cp.Flags = make(map[string]int, len(d.Flags))
	for k, v := range d.Flags {
		cp.Flags[k] = v
	}
	cp.History = make(map[int][]*ActionInstance, len(d.History))
	for day, insts := range d.History {
		arr := make([]*ActionInstance, len(insts))
		for i, inst := range insts {
			arr[i] = inst.clone()
		}
		cp.History[day] = arr
	}
	cp.Pending = make([]*ActionInstance, len(d.Pending))
	for i, inst := range d.Pending {
		cp.Pending[i] = inst.clone()
	}
	cp.Deaths = append([]Death(nil), d.Deaths...)
	if d.TriggerPhases != nil {
		cp.TriggerPhases = make(map[string]PhaseID, len(d.TriggerPhases))
		for k, v := range d.TriggerPhases {
			cp.TriggerPhases[k] = v
		}
	}
	if d.Speech != nil {
		sp := *d.Speech
		sp.Speakers = append([]int(nil), d.Speech.Speakers...)
		cp.Speech = &sp
	}
	cp.SheriffCandidates = append([]int(nil), d.SheriffCandidates...)
	return &cp
}
