package game

// Player is one seat at the table. A player may hold several roles; the
// player is alive while at least one held role has not died.
type Player struct {
	Seat      int      `json:"seat"`
	Identity  string   `json:"identity"`
	Roles     []string `json:"roles"`
	DeadRoles []string `json:"dead_roles"`
	Sheriff   bool     `json:"sheriff,omitempty"`
	Silenced  bool     `json:"silenced,omitempty"`
	// RoleOrderLocked is set once the first night starts.
	RoleOrderLocked bool `json:"role_order_locked,omitempty"`
	// Lover is the linked seat, 0 when unlinked.
	Lover int `json:"lover,omitempty"`
}

// Alive reports len(Roles) > len(DeadRoles).
func (p *Player) Alive() bool { return len(p.Roles) > len(p.DeadRoles) }

// AliveRoles returns held roles not yet matched by a dead entry, in order.
// Dead entries are matched one-to-one, so two copies of a role need two deaths.
func (p *Player) AliveRoles() []string {
	dead := make(map[string]int, len(p.DeadRoles))
	for _, r := range p.DeadRoles {
		dead[r]++
	}
	out := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		if dead[r] > 0 {
			dead[r]--
			continue
		}
		out = append(out, r)
	}
	return out
}

// ActiveRole is the first alive role, empty for a dead player.
func (p *Player) ActiveRole() string {
	if alive := p.AliveRoles(); len(alive) > 0 {
		return alive[0]
	}
	return ""
}

// HasRole reports whether the player holds name, dead or alive.
func (p *Player) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// RoleAlive reports whether at least one copy of name is still alive.
func (p *Player) RoleAlive(name string) bool {
	for _, r := range p.AliveRoles() {
		if r == name {
			return true
		}
	}
	return false
}

// RoleDead reports whether at least one copy of name has died.
func (p *Player) RoleDead(name string) bool {
	for _, r := range p.DeadRoles {
		if r == name {
			return true
		}
	}
	return false
}

// KillRole appends name to DeadRoles.
func (p *Player) KillRole(name string) error {
	if !p.RoleAlive(name) {
		return Invariantf("seat %d has no alive role %q", p.Seat, name)
	}
	p.DeadRoles = append(p.DeadRoles, name)
	return nil
}

// Revive removes the latest death entry of name.
func (p *Player) Revive(name string) bool {
	for i := len(p.DeadRoles) - 1; i >= 0; i-- {
		if p.DeadRoles[i] == name {
			p.DeadRoles = append(p.DeadRoles[:i], p.DeadRoles[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) clone() *Player {
	cp := *p
	cp.Roles = append([]string(nil), p.Roles...)
	cp.DeadRoles = append([]string(nil), p.DeadRoles...)
	return &cp
}
