package death

import (
	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/game/role"
)

// CampGood is reported when every werewolf is dead.
const CampGood role.Camp = "GOOD"

// Outcome applies the 屠边 rule: the good side wins once no werewolf is
// alive; werewolves win once every god or every villager is dead. Camps that
// were never dealt do not count. It only advises the judge.
func Outcome(g *game.Game, reg *role.Registry) (role.Camp, bool) {
	dealt := map[role.Camp]int{}
	alive := map[role.Camp]int{}
	for _, p := range g.Players {
		if len(p.Roles) == 0 {
			continue
		}
		dealt[reg.CampOf(p.Roles[0])]++
		if p.Alive() {
			alive[reg.CampOf(p.ActiveRole())]++
		}
	}
	if dealt[role.CampWerewolf] == 0 {
		return "", false
	}
	if alive[role.CampWerewolf] == 0 {
		return CampGood, true
	}
	if dealt[role.CampGod] > 0 && alive[role.CampGod] == 0 {
		return role.CampWerewolf, true
	}
	if dealt[role.CampVillager] > 0 && alive[role.CampVillager] == 0 {
		return role.CampWerewolf, true
	}
	return "", false
}
