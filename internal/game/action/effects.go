package action

import (
	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
)

func builtinEffects() map[role.Effect]EffectFunc {
	return map[role.Effect]EffectFunc{
		role.EffectKill:    kill,
		role.EffectProtect: protect,
		role.EffectCheck:   check,
		role.EffectLink:    link,
		role.EffectDuel:    duel,
		role.EffectExplode: explode,
		role.EffectNone:    func(*Exec) error { return nil },
	}
}

func kill(x *Exec) error {
	for _, t := range x.Instance.Targets {
		if !x.Result.Kill(x.Action.Cause, t) {
			x.Instance.Note = "blocked"
		}
	}
	return nil
}

func protect(x *Exec) error {
	for _, t := range x.Instance.Targets {
		x.Result.Protect(x.Action.Cause, t)
	}
	return nil
}

func check(x *Exec) error {
	for _, t := range x.Instance.Targets {
		p, ok := x.Game.Player(t)
		if !ok {
			return game.Invariantf("check target %d vanished", t)
		}
		camp := x.Registry.CampOf(p.ActiveRole())
		if camp == "" {
			// dead players reveal their last role
			if n := len(p.DeadRoles); n > 0 {
				camp = x.Registry.CampOf(p.DeadRoles[n-1])
			}
		}
		x.Result.Checks = append(x.Result.Checks, Check{Actor: x.Instance.Actor, Target: t, Camp: camp})
	}
	return nil
}

func link(x *Exec) error {
	if len(x.Instance.Targets) != 2 {
		return game.Invariantf("link needs two targets")
	}
	x.Result.Links = append(x.Result.Links, [2]int{x.Instance.Targets[0], x.Instance.Targets[1]})
	return nil
}

// duel kills the target when it is a werewolf, otherwise the actor.
func duel(x *Exec) error {
	t := x.Instance.Targets[0]
	p, ok := x.Game.Player(t)
	if !ok {
		return game.Invariantf("duel target %d vanished", t)
	}
	if x.Registry.CampOf(p.ActiveRole()) == role.CampWerewolf {
		x.Result.force(x.Action.Cause, t)
	} else {
		x.Result.force(x.Action.Cause, x.Instance.Actor)
	}
	return nil
}

func explode(x *Exec) error {
	x.Result.force(x.Action.Cause, x.Instance.Actor)
	for _, t := range x.Instance.Targets {
		x.Result.force(x.Action.Cause, t)
	}
	return nil
}
