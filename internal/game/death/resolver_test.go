package death

import (
	"testing"
	"time"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/action"
	"github.com/cuihairu/werewolf/internal/game/role"
)

func setup(t *testing.T, roles ...[]string) (*game.Game, *Resolver) {
	t.Helper()
	g := game.New("g", len(roles), time.Unix(0, 0))
	for i, rs := range roles {
		g.Players[i].Roles = rs
	}
	g.Phase = game.PhaseNight
	g.Day = 1
	return g, NewResolver(role.MustRegistry(role.DefaultCatalog()))
}

func TestDoubleIdentityDiesRoleByRole(t *testing.T) {
	g, r := setup(t, []string{role.WolfElder, role.Villager}, []string{role.Seer})
	p, _ := g.Player(1)

	deaths, err := r.Kill(g, []Kill{{Seat: 1, Cause: role.CauseExile}})
	if err != nil {
		t.Fatal(err)
	}
	if len(deaths) != 1 || deaths[0].Role != role.WolfElder {
		t.Fatalf("deaths=%+v", deaths)
	}
	if !p.Alive() {
		t.Fatalf("player should survive with 平民 left")
	}
	if day, ok := g.Data.Flag(game.PairDiedKey(role.WolfElder)); !ok || day != 1 {
		t.Fatalf("pair death day not recorded: %d %v", day, ok)
	}

	if _, err := r.Kill(g, []Kill{{Seat: 1, Cause: role.CauseWerewolf}}); err != nil {
		t.Fatal(err)
	}
	if p.Alive() {
		t.Fatalf("player should be dead once 平民 dies")
	}
	if len(p.DeadRoles) != 2 {
		t.Fatalf("dead roles=%v", p.DeadRoles)
	}
}

func TestHunterUnlockUnlessPoisoned(t *testing.T) {
	g, r := setup(t, []string{role.Hunter}, []string{role.Hunter}, []string{role.Werewolf})
	res := action.NewResult()
	res.Kill(role.CauseWerewolf, 1)
	res.Kill(role.CausePoison, 2)
	if _, err := r.Apply(g, res); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Data.Flag(game.TriggerKey(role.ActionRevenge, 1)); !ok {
		t.Fatalf("hunter killed by werewolves should be unlocked")
	}
	if _, ok := g.Data.Flag(game.TriggerKey(role.ActionRevenge, 2)); ok {
		t.Fatalf("poisoned hunter must not be unlocked")
	}
	if !PendingTriggers(g) {
		t.Fatalf("pending trigger expected")
	}
	ExpireTriggers(g)
	if PendingTriggers(g) {
		t.Fatalf("triggers should expire")
	}
}

func TestHunterBittenAndPoisonedCannotShoot(t *testing.T) {
	g, r := setup(t, []string{role.Hunter}, []string{role.Werewolf}, []string{role.Villager})
	res := action.NewResult()
	res.Kill(role.CauseWerewolf, 1)
	res.Kill(role.CausePoison, 1)
	deaths, err := r.Apply(g, res)
	if err != nil {
		t.Fatal(err)
	}
	if len(deaths) != 1 || deaths[0].Seat != 1 {
		t.Fatalf("deaths=%+v", deaths)
	}
	if _, ok := g.Data.Flag(game.TriggerKey(role.ActionRevenge, 1)); ok {
		t.Fatalf("hunter hit by poison the same night must not shoot")
	}
	if PendingTriggers(g) {
		t.Fatalf("no trigger should be pending")
	}
}

func TestDoubleIdentityTakesBothNightKills(t *testing.T) {
	g, r := setup(t, []string{role.Hunter, role.Villager}, []string{role.Werewolf})
	res := action.NewResult()
	res.Kill(role.CauseWerewolf, 1)
	res.Kill(role.CausePoison, 1)
	deaths, err := r.Apply(g, res)
	if err != nil {
		t.Fatal(err)
	}
	if len(deaths) != 2 || deaths[0].Role != role.Hunter || deaths[0].Cause != role.CauseWerewolf {
		t.Fatalf("deaths=%+v", deaths)
	}
	if _, ok := g.Data.Flag(game.TriggerKey(role.ActionRevenge, 1)); !ok {
		t.Fatalf("poison took the second role, the hunter role died to werewolves")
	}
}

func TestLoversAndBadgeCascade(t *testing.T) {
	g, r := setup(t, []string{role.Villager}, []string{role.Seer}, []string{role.Werewolf}, []string{role.Villager})
	g.Players[1].Sheriff = true
	res := action.NewResult()
	res.Links = append(res.Links, [2]int{1, 2})
	res.Kill(role.CauseWerewolf, 1)

	deaths, err := r.Apply(g, res)
	if err != nil {
		t.Fatal(err)
	}
	if len(deaths) != 2 || deaths[1].Seat != 2 || deaths[1].Cause != role.CauseLove {
		t.Fatalf("deaths=%+v", deaths)
	}
	if seat, ok := g.Data.Flag(game.KeyBadgePending); !ok || seat != 2 {
		t.Fatalf("badge handover not pending: %d %v", seat, ok)
	}
	if g.Sheriff() != 0 {
		t.Fatalf("dead sheriff should lose the badge")
	}
}

func TestCascadeIsCapped(t *testing.T) {
	chain := Listener{
		Name:  "chain",
		Match: func(g *game.Game, ev Event) bool { return ev.Seat < len(g.Players) },
		Handle: func(g *game.Game, ev Event) []Kill {
			return []Kill{{Seat: ev.Seat + 1, Cause: role.CauseKill}}
		},
	}
	g := game.New("g", 6, time.Unix(0, 0))
	for _, p := range g.Players {
		p.Roles = []string{role.Villager}
	}
	r := NewResolver(role.MustRegistry(role.DefaultCatalog()), WithMaxWaves(3), WithListener(chain))
	deaths, err := r.Kill(g, []Kill{{Seat: 1, Cause: role.CauseKill}})
	if err != nil {
		t.Fatal(err)
	}
	if len(deaths) != 3 {
		t.Fatalf("deaths=%d want 3", len(deaths))
	}
	if alive := g.Alive(); len(alive) != 3 {
		t.Fatalf("alive=%v", alive)
	}
}

func TestOutcome(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	g := game.New("g", 3, time.Unix(0, 0))
	g.Players[0].Roles = []string{role.Werewolf}
	g.Players[1].Roles = []string{role.Seer}
	g.Players[2].Roles = []string{role.Villager}
	if _, done := Outcome(g, reg); done {
		t.Fatalf("no outcome expected")
	}
	g.Players[1].DeadRoles = []string{role.Seer}
	if camp, done := Outcome(g, reg); !done || camp != role.CampWerewolf {
		t.Fatalf("werewolves should win when gods are gone: %s %v", camp, done)
	}
	g.Players[1].DeadRoles = nil
	g.Players[0].DeadRoles = []string{role.Werewolf}
	if camp, done := Outcome(g, reg); !done || camp != CampGood {
		t.Fatalf("good side should win: %s %v", camp, done)
	}
}
