package role

// Predefined role names.
const (
	Cupid       = "丘比特"
	Guard       = "守卫"
	Witch       = "女巫"
	Werewolf    = "狼人"
	WolfElder   = "狼兄"
	WolfYounger = "狼弟"
	Seer        = "预言家"
	Hunter      = "猎人"
	Knight      = "骑士"
	WhiteWolf   = "白狼王"
	Villager    = "平民"
)

// Predefined action ids.
const (
	ActionLink     = "cupid.link"
	ActionProtect  = "guard.protect"
	ActionAntidote = "witch.antidote"
	ActionPoison   = "witch.poison"
	ActionWolfKill = "wolf.kill"
	ActionBrother  = "brother.kill"
	ActionCheck    = "seer.check"
	ActionRevenge  = "hunter.revenge"
	ActionDuel     = "knight.duel"
	ActionExplode  = "whitewolf.explode"
)

// HookPairPartner records the death day of a paired role.
const HookPairPartner = "pair_partner"

// Catalog is the set of predefined roles and actions.
type Catalog struct {
	Roles   []Role
	Actions []Action
}

// DefaultCatalog returns the predefined roles.
func DefaultCatalog() Catalog {
	return Catalog{
		Actions: []Action{
			{ID: ActionExplode, Name: "自爆", Priority: 5, Timing: TimingAnytime, Targets: 1, Uses: 1, TargetAlive: true, Effect: EffectExplode, Cause: CauseExplode},
			{ID: ActionDuel, Name: "决斗", Priority: 10, Timing: TimingDay, Targets: 1, Uses: 1, TargetAlive: true, Effect: EffectDuel, Cause: CauseDuel},
			{ID: ActionLink, Name: "连线", Priority: 20, Timing: TimingNight, Targets: 2, Uses: 1, TargetAlive: true, Effect: EffectLink},
			{ID: ActionRevenge, Name: "开枪", Priority: 50, Timing: TimingDeathTrigger, Targets: 1, Uses: 1, TargetAlive: true, Effect: EffectKill, Cause: CauseRevenge, BlockedBy: []Cause{CausePoison}},
			{ID: ActionProtect, Name: "守护", Priority: 100, Timing: TimingNight, Targets: 1, Uses: Unlimited, TargetAlive: true, Effect: EffectProtect, Cause: CauseWerewolf, NoRepeatTarget: true},
			{ID: ActionAntidote, Name: "解药", Priority: 200, Timing: TimingNight, Targets: 1, Uses: 1, TargetAlive: true, Effect: EffectProtect, Cause: CauseWerewolf},
			{ID: ActionWolfKill, Name: "刀人", Priority: 210, Timing: TimingNight, Targets: 1, Uses: Unlimited, TargetAlive: true, Effect: EffectKill, Cause: CauseWerewolf, Shared: true},
			{ID: ActionBrother, Name: "复仇", Priority: 215, Timing: TimingNight, Targets: 1, Uses: 1, TargetAlive: true, Effect: EffectKill, Cause: CauseBrother, PairedWith: WolfElder},
			{ID: ActionPoison, Name: "毒药", Priority: 220, Timing: TimingNight, Targets: 1, Uses: 1, TargetAlive: true, Effect: EffectKill, Cause: CausePoison},
			{ID: ActionCheck, Name: "查验", Priority: 300, Timing: TimingNight, Targets: 1, Uses: Unlimited, TargetAlive: true, Effect: EffectCheck},
		},
		Roles: []Role{
			{Name: Cupid, Camp: CampGod, Actions: []string{ActionLink}},
			{Name: Guard, Camp: CampGod, Actions: []string{ActionProtect}},
			{Name: Witch, Camp: CampGod, Actions: []string{ActionAntidote, ActionPoison}},
			{Name: Werewolf, Camp: CampWerewolf, Actions: []string{ActionWolfKill}},
			{Name: WolfElder, Camp: CampWerewolf, Actions: []string{ActionWolfKill}, Hook: HookPairPartner},
			{Name: WolfYounger, Camp: CampWerewolf, Actions: []string{ActionBrother}},
			{Name: Seer, Camp: CampGod, Actions: []string{ActionCheck}},
			{Name: Hunter, Camp: CampGod, Actions: []string{ActionRevenge}},
			{Name: Knight, Camp: CampGod, Actions: []string{ActionDuel}},
			{Name: WhiteWolf, Camp: CampWerewolf, Actions: []string{ActionWolfKill, ActionExplode}},
			{Name: Villager, Camp: CampVillager},
		},
	}
}
