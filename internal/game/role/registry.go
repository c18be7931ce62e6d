package role

import (
	"fmt"
	"sort"
)

// Registry resolves role and action names. It is built once and read-only
// afterwards, so it is safe for concurrent use.
type Registry struct {
	roles   map[string]Role
	actions map[string]Action
	order   []string
}

// NewRegistry builds a registry from the catalog plus custom definitions.
// Custom definitions must already be validated; conflicts are reported as errors.
func NewRegistry(c Catalog, customs ...Definition) (*Registry, error) {
	r := &Registry{
		roles:   make(map[string]Role, len(c.Roles)+len(customs)),
		actions: make(map[string]Action, len(c.Actions)),
	}
	for _, a := range c.Actions {
		if _, dup := r.actions[a.ID]; dup {
			return nil, fmt.Errorf("duplicate action %q", a.ID)
		}
		r.actions[a.ID] = a
	}
	for _, ro := range c.Roles {
		if err := r.addRole(ro); err != nil {
			return nil, err
		}
	}
	for _, d := range customs {
		ro := Role{Name: d.Name, Camp: d.Camp, Custom: true}
		for _, ad := range d.Actions {
			a := ad.toAction()
			if _, dup := r.actions[a.ID]; dup {
				return nil, fmt.Errorf("custom role %q: action %q already defined", d.Name, a.ID)
			}
			r.actions[a.ID] = a
			ro.Actions = append(ro.Actions, a.ID)
		}
		if err := r.addRole(ro); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for the static catalog; it panics on conflicts.
func MustRegistry(c Catalog, customs ...Definition) *Registry {
	r, err := NewRegistry(c, customs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) addRole(ro Role) error {
	if _, dup := r.roles[ro.Name]; dup {
		return fmt.Errorf("duplicate role %q", ro.Name)
	}
	for _, id := range ro.Actions {
		if _, ok := r.actions[id]; !ok {
			return fmt.Errorf("role %q references unknown action %q", ro.Name, id)
		}
	}
	r.roles[ro.Name] = ro
	r.order = append(r.order, ro.Name)
	return nil
}

// Lookup returns the role definition by name.
func (r *Registry) Lookup(name string) (Role, bool) {
	ro, ok := r.roles[name]
	return ro, ok
}

// Action returns the action by id.
func (r *Registry) Action(id string) (Action, bool) {
	a, ok := r.actions[id]
	return a, ok
}

// Actions returns the ordered actions of a role. Unknown roles yield nil.
func (r *Registry) Actions(name string) []Action {
	ro, ok := r.roles[name]
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(ro.Actions))
	for _, id := range ro.Actions {
		out = append(out, r.actions[id])
	}
	return out
}

// Grants reports whether the role holds the action.
func (r *Registry) Grants(name, actionID string) bool {
	ro, ok := r.roles[name]
	if !ok {
		return false
	}
	for _, id := range ro.Actions {
		if id == actionID {
			return true
		}
	}
	return false
}

// CampOf returns the camp of a role, empty when unknown.
func (r *Registry) CampOf(name string) Camp {
	return r.roles[name].Camp
}

// Roles lists roles in registration order.
func (r *Registry) Roles() []Role {
	out := make([]Role, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.roles[n])
	}
	return out
}

// TriggerActions lists the DEATH_TRIGGER actions of a role sorted by priority.
func (r *Registry) TriggerActions(name string) []Action {
	var out []Action
	for _, a := range r.Actions(name) {
		if a.Timing == TimingDeathTrigger {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
