package role

// Camp 阵营
type Camp string

const (
	CampWerewolf Camp = "WEREWOLF"
	CampGod      Camp = "GOD"
	CampVillager Camp = "VILLAGER"
)

// Timing is the window in which an action may be submitted.
type Timing string

const (
	TimingNight        Timing = "NIGHT"
	TimingDay          Timing = "DAY"
	TimingAnytime      Timing = "ANYTIME"
	TimingDeathTrigger Timing = "DEATH_TRIGGER"
)

// Cause 死因. Deaths are applied in the order of Causes.
type Cause string

const (
	CauseWerewolf Cause = "WEREWOLF"
	CausePoison   Cause = "POISON"
	CauseRevenge  Cause = "REVENGE"
	CauseExile    Cause = "EXILE"
	CauseDuel     Cause = "DUEL"
	CauseExplode  Cause = "EXPLODE"
	CauseBrother  Cause = "BROTHER"
	CauseLove     Cause = "LOVE"
	CauseKill     Cause = "KILL"
)

// Causes lists every death cause in application order.
var Causes = []Cause{
	CauseWerewolf, CauseBrother, CausePoison, CauseKill,
	CauseDuel, CauseExplode, CauseExile, CauseRevenge, CauseLove,
}

// Effect names the resolver behavior an action runs.
type Effect string

const (
	EffectKill    Effect = "kill"
	EffectProtect Effect = "protect"
	EffectCheck   Effect = "check"
	EffectLink    Effect = "link"
	EffectDuel    Effect = "duel"
	EffectExplode Effect = "explode"
	EffectNone    Effect = "none"
)

// Unlimited marks an action without a usage cap.
const Unlimited = -1

// Action is a capability granted by a role.
type Action struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Priority    int     `json:"priority" yaml:"priority"`
	Timing      Timing  `json:"timing" yaml:"timing"`
	Targets     int     `json:"targets" yaml:"targets"`
	Uses        int     `json:"uses" yaml:"uses"`
	TargetAlive bool    `json:"target_alive" yaml:"target_alive"`
	Effect      Effect  `json:"effect" yaml:"effect"`
	Cause       Cause   `json:"cause,omitempty" yaml:"cause,omitempty"`
	Shared      bool    `json:"shared,omitempty" yaml:"shared,omitempty"`
	BlockedBy   []Cause `json:"blocked_by,omitempty" yaml:"blocked_by,omitempty"`
	// PairedWith 搭档角色; the action unlocks the day after that role dies.
	PairedWith     string `json:"paired_with,omitempty" yaml:"paired_with,omitempty"`
	NoRepeatTarget bool   `json:"no_repeat_target,omitempty" yaml:"no_repeat_target,omitempty"`
}

// Limited reports whether the action has a usage cap.
func (a Action) Limited() bool { return a.Uses >= 0 }

// Blocked reports whether a death by cause suppresses the action's unlock.
func (a Action) Blocked(c Cause) bool {
	for _, b := range a.BlockedBy {
		if b == c {
			return true
		}
	}
	return false
}

// Role is a named identity with a camp and an ordered set of actions.
type Role struct {
	Name    string   `json:"name"`
	Camp    Camp     `json:"camp"`
	Actions []string `json:"actions"`
	// Hook names an on-death hook, see the death package.
	Hook   string `json:"hook,omitempty"`
	Custom bool   `json:"custom,omitempty"`
}
