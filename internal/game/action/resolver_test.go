package action

import (
	"errors"
	"testing"
	"time"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
)

func newGame(t *testing.T, roles ...string) *game.Game {
	t.Helper()
	g := game.New("g1", len(roles), time.Unix(0, 0))
	for i, r := range roles {
		g.Players[i].Roles = []string{r}
	}
	g.Phase = game.PhaseNight
	g.Day = 1
	return g
}

func inst(actor int, roleName, actionID string, targets ...int) *game.ActionInstance {
	return &game.ActionInstance{Actor: actor, Role: roleName, Action: actionID, Targets: targets, Day: 1, Phase: game.PhaseNight}
}

func TestResolveProtectionBeforeKill(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	g := newGame(t, role.Werewolf, role.Witch, role.Villager)
	r := NewResolver(reg, nil)

	// antidote (200) runs before the kill (210)
	kill := inst(1, role.Werewolf, role.ActionWolfKill, 3)
	save := inst(2, role.Witch, role.ActionAntidote, 3)
	res, err := r.Resolve(g, []*game.ActionInstance{kill, save})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := res.Dead(role.CauseWerewolf); len(got) != 0 {
		t.Fatalf("expected seat 3 to survive, deaths=%v", got)
	}
	if len(res.Executed) != 2 || res.Executed[0] != save || res.Executed[1] != kill {
		t.Fatalf("unexpected execution order")
	}
	if save.Status != game.StatusProcessed || kill.Status != game.StatusProcessed {
		t.Fatalf("instances not processed: %s %s", save.Status, kill.Status)
	}
	if n := len(g.Data.Processed(1)); n != 2 {
		t.Fatalf("history has %d processed, want 2", n)
	}
}

func TestResolveOrderIsDeterministic(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)
	build := func() []*game.ActionInstance {
		return []*game.ActionInstance{
			inst(4, role.Seer, role.ActionCheck, 1),
			inst(2, role.Werewolf, role.ActionWolfKill, 5),
			inst(1, role.Werewolf, role.ActionWolfKill, 5),
			inst(3, role.Guard, role.ActionProtect, 4),
		}
	}
	var first []int
	for round := 0; round < 3; round++ {
		g := newGame(t, role.Werewolf, role.Werewolf, role.Guard, role.Seer, role.Villager)
		res, err := r.Resolve(g, build())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		var order []int
		for _, e := range res.Executed {
			order = append(order, e.Actor)
		}
		if first == nil {
			first = order
			continue
		}
		for i := range order {
			if order[i] != first[i] {
				t.Fatalf("order differs between runs: %v vs %v", order, first)
			}
		}
	}
	want := []int{3, 1, 2, 4}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("order=%v want %v", first, want)
		}
	}
}

func TestResolveRejectsIneligible(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	g := newGame(t, role.Werewolf, role.Witch, role.Villager)
	g.Players[2].DeadRoles = []string{role.Villager}
	r := NewResolver(reg, nil)

	poison := inst(2, role.Witch, role.ActionPoison, 3)
	res, err := r.Resolve(g, []*game.ActionInstance{poison})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Rejected) != 1 || poison.Status != game.StatusRejected {
		t.Fatalf("dead target should be rejected, status=%s", poison.Status)
	}
	if g.Data.Uses(2, role.ActionPoison) != 0 {
		t.Fatalf("rejected instance must not consume a use")
	}
}

func TestValidate(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)

	cases := []struct {
		name  string
		setup func(g *game.Game)
		in    *game.ActionInstance
		want  error
	}{
		{"ok", nil, inst(1, role.Werewolf, role.ActionWolfKill, 3), nil},
		{"wrong target count", nil, inst(1, role.Werewolf, role.ActionWolfKill), game.ErrValidation},
		{"duplicate target", nil, inst(4, role.Cupid, role.ActionLink, 3, 3), game.ErrValidation},
		{"missing target", nil, inst(1, role.Werewolf, role.ActionWolfKill, 9), game.ErrValidation},
		{"role not held", nil, inst(1, role.Witch, role.ActionPoison, 3), game.ErrValidation},
		{"unknown action", nil, inst(1, role.Werewolf, "nope"), game.ErrNotFound},
		{"unknown role", nil, inst(1, "路人", role.ActionWolfKill, 3), game.ErrNotFound},
		{"wrong phase", func(g *game.Game) { g.Phase = game.PhaseSpeech }, inst(1, role.Werewolf, role.ActionWolfKill, 3), game.ErrConflict},
		{"used up", func(g *game.Game) {
			used := inst(2, role.Witch, role.ActionPoison, 3)
			used.Status = game.StatusProcessed
			g.Data.Record(used)
		}, inst(2, role.Witch, role.ActionPoison, 1), game.ErrValidation},
		{"ended", func(g *game.Game) { g.Ended = true }, inst(1, role.Werewolf, role.ActionWolfKill, 3), game.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t, role.Werewolf, role.Witch, role.Villager, role.Cupid)
			if tc.setup != nil {
				tc.setup(g)
			}
			err := r.Validate(g, tc.in)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want kind %v", err, tc.want)
			}
		})
	}
}

func TestGuardCannotRepeatTarget(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)
	g := newGame(t, role.Guard, role.Villager, role.Werewolf)
	prev := inst(1, role.Guard, role.ActionProtect, 2)
	if _, err := r.Resolve(g, []*game.ActionInstance{prev}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	g.Day = 2
	again := inst(1, role.Guard, role.ActionProtect, 2)
	again.Day = 2
	if err := r.Validate(g, again); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	other := inst(1, role.Guard, role.ActionProtect, 1)
	other.Day = 2
	if err := r.Validate(g, other); err != nil {
		t.Fatalf("self guard should be allowed: %v", err)
	}
}

func TestPairedActionTiming(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)
	g := newGame(t, role.WolfElder, role.WolfYounger, role.Villager)
	g.Players[0].DeadRoles = []string{role.WolfElder}
	g.Data.SetFlag(game.PairDiedKey(role.WolfElder), 1)

	in := inst(2, role.WolfYounger, role.ActionBrother, 3)
	if err := r.Validate(g, in); !errors.Is(err, game.ErrValidation) {
		t.Fatalf("same day: expected validation error, got %v", err)
	}
	g.Day = 2
	if err := r.Validate(g, in); err != nil {
		t.Fatalf("next day: %v", err)
	}
}

func TestQueueReplacesSharedKill(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	a, _ := reg.Action(role.ActionWolfKill)
	g := newGame(t, role.Werewolf, role.Werewolf, role.Villager, role.Seer)
	Queue(g, inst(1, role.Werewolf, role.ActionWolfKill, 3), a)
	Queue(g, inst(4, role.Seer, role.ActionCheck, 1), role.Action{ID: role.ActionCheck})
	Queue(g, inst(2, role.Werewolf, role.ActionWolfKill, 4), a)
	if len(g.Data.Pending) != 2 {
		t.Fatalf("pending=%d want 2", len(g.Data.Pending))
	}
	last := g.Data.Pending[1]
	if last.Actor != 2 || last.Targets[0] != 4 {
		t.Fatalf("latest wolf choice should win, got %+v", last)
	}
}

func TestSharedKillAcrossWolfRoles(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	a, _ := reg.Action(role.ActionWolfKill)
	g := newGame(t, role.Werewolf, role.WhiteWolf, role.Villager, role.Seer)
	Queue(g, inst(1, role.Werewolf, role.ActionWolfKill, 3), a)
	Queue(g, inst(2, role.WhiteWolf, role.ActionWolfKill, 4), a)
	if len(g.Data.Pending) != 1 || g.Data.Pending[0].Actor != 2 {
		t.Fatalf("one team kill expected, pending=%+v", g.Data.Pending)
	}
	res, err := NewResolver(reg, nil).Resolve(g, g.Data.Pending)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Dead(role.CauseWerewolf); len(got) != 1 || got[0] != 4 {
		t.Fatalf("werewolf deaths=%v want [4]", got)
	}
}

func TestEffects(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)

	t.Run("duel werewolf", func(t *testing.T) {
		g := newGame(t, role.Knight, role.Werewolf)
		g.Phase = game.PhaseSpeech
		res, err := r.Resolve(g, []*game.ActionInstance{inst(1, role.Knight, role.ActionDuel, 2)})
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Dead(role.CauseDuel); len(got) != 1 || got[0] != 2 {
			t.Fatalf("deaths=%v", got)
		}
	})
	t.Run("duel villager", func(t *testing.T) {
		g := newGame(t, role.Knight, role.Villager)
		res, err := r.Resolve(g, []*game.ActionInstance{inst(1, role.Knight, role.ActionDuel, 2)})
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Dead(role.CauseDuel); len(got) != 1 || got[0] != 1 {
			t.Fatalf("deaths=%v", got)
		}
	})
	t.Run("check", func(t *testing.T) {
		g := newGame(t, role.Seer, role.Werewolf)
		res, err := r.Resolve(g, []*game.ActionInstance{inst(1, role.Seer, role.ActionCheck, 2)})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Checks) != 1 || !res.Checks[0].Werewolf() {
			t.Fatalf("checks=%+v", res.Checks)
		}
	})
	t.Run("explode", func(t *testing.T) {
		g := newGame(t, role.WhiteWolf, role.Seer)
		res, err := r.Resolve(g, []*game.ActionInstance{inst(1, role.WhiteWolf, role.ActionExplode, 2)})
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Dead(role.CauseExplode); len(got) != 2 {
			t.Fatalf("deaths=%v", got)
		}
	})
}

func TestRevengeWindow(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)
	g := newGame(t, role.Hunter, role.Werewolf, role.Villager)
	p, _ := g.Player(1)
	p.DeadRoles = []string{role.Hunter}
	shot := inst(1, role.Hunter, role.ActionRevenge, 2)

	// died at night: only the DEATH_TRIGGER phase opens the shot
	g.Data.UnlockTrigger(role.ActionRevenge, 1, 1, game.PhaseNight)
	for _, ph := range []game.PhaseID{game.PhaseDay, game.PhaseSheriffElection, game.PhaseDeathAnnouncement, game.PhaseSpeech} {
		g.Phase = ph
		if err := r.Validate(g, shot); game.KindOf(err) != game.KindConflict {
			t.Fatalf("%s: expected conflict, got %v", ph, err)
		}
		if opts := r.Available(g, 1); len(opts) != 0 {
			t.Fatalf("%s: options=%d want 0", ph, len(opts))
		}
	}
	g.Phase = game.PhaseDeathTrigger
	if err := r.Validate(g, shot); err != nil {
		t.Fatalf("death trigger phase: %v", err)
	}

	// exiled during voting: the shot is open right there
	g.Data.UnlockTrigger(role.ActionRevenge, 1, 1, game.PhaseVoting)
	g.Phase = game.PhaseVoting
	if err := r.Validate(g, shot); err != nil {
		t.Fatalf("voting after exile: %v", err)
	}
	g.Phase = game.PhaseSpeech
	if err := r.Validate(g, shot); game.KindOf(err) != game.KindConflict {
		t.Fatalf("speech: expected conflict, got %v", err)
	}

	g.Phase = game.PhaseVoting
	if _, err := r.Resolve(g, []*game.ActionInstance{shot}); err != nil {
		t.Fatal(err)
	}
	if g.Data.TriggerOpen(role.ActionRevenge, 1, game.PhaseDeathTrigger) {
		t.Fatalf("used shot should be consumed")
	}
}

func TestAvailable(t *testing.T) {
	reg := role.MustRegistry(role.DefaultCatalog())
	r := NewResolver(reg, nil)
	g := newGame(t, role.Witch, role.Villager)
	opts := r.Available(g, 1)
	if len(opts) != 2 {
		t.Fatalf("witch options=%d want 2", len(opts))
	}
	if opts := r.Available(g, 2); len(opts) != 0 {
		t.Fatalf("villager options=%d want 0", len(opts))
	}
}
