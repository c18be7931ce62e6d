package role

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Definition is an operator-authored custom role.
type Definition struct {
	Name    string             `json:"name" yaml:"name"`
	Camp    Camp               `json:"camp" yaml:"camp"`
	Actions []ActionDefinition `json:"actions" yaml:"actions"`
}

// ActionDefinition describes one action of a custom role.
type ActionDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Priority    int    `json:"priority" yaml:"priority"`
	Timing      Timing `json:"timing" yaml:"timing"`
	Targets     *int   `json:"targets,omitempty" yaml:"targets,omitempty"`
	Uses        *int   `json:"uses,omitempty" yaml:"uses,omitempty"`
	TargetAlive *bool  `json:"target_alive,omitempty" yaml:"target_alive,omitempty"`
	Effect      Effect `json:"effect" yaml:"effect"`
	Cause       Cause  `json:"cause,omitempty" yaml:"cause,omitempty"`
}

func (d ActionDefinition) toAction() Action {
	a := Action{
		ID:          d.ID,
		Name:        d.Name,
		Priority:    d.Priority,
		Timing:      d.Timing,
		Targets:     1,
		Uses:        Unlimited,
		TargetAlive: true,
		Effect:      d.Effect,
		Cause:       d.Cause,
	}
	if a.Name == "" {
		a.Name = d.ID
	}
	if d.Targets != nil {
		a.Targets = *d.Targets
	}
	if d.Uses != nil {
		a.Uses = *d.Uses
	}
	if d.TargetAlive != nil {
		a.TargetAlive = *d.TargetAlive
	}
	if a.Effect == EffectKill && a.Cause == "" {
		a.Cause = CauseKill
	}
	if a.Effect == EffectProtect && a.Cause == "" {
		a.Cause = CauseWerewolf
	}
	return a
}

// definitionSchema constrains the shape of a custom role document.
const definitionSchema = `{
  "type": "object",
  "required": ["name", "camp", "actions"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "camp": {"type": "string", "minLength": 1},
    "actions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "timing", "effect"],
        "properties": {
          "id": {"type": "string", "pattern": "^[A-Za-z0-9_.-]+$"},
          "name": {"type": "string"},
          "priority": {"type": "integer"},
          "timing": {"enum": ["NIGHT", "DAY", "ANYTIME", "DEATH_TRIGGER"]},
          "targets": {"type": "integer", "minimum": 0, "maximum": 4},
          "uses": {"type": "integer", "minimum": -1},
          "target_alive": {"type": "boolean"},
          "effect": {"enum": ["kill", "protect", "check", "none"]},
          "cause": {"type": "string"}
        }
      }
    }
  }
}`

var schema = mustSchema(definitionSchema)

func mustSchema(s string) *gojsonschema.Schema {
	sc, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("role schema: %v", err))
	}
	return sc
}

// ErrInvalidDefinition wraps every structural or semantic rejection.
var ErrInvalidDefinition = errors.New("invalid custom role")

// ParseDefinitions decodes one role or a list of roles from YAML (JSON is valid YAML).
// Each document is checked against the schema before decoding into Definition.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	var docs []any
	switch v := raw.(type) {
	case []any:
		docs = v
	case map[string]any:
		if roles, ok := v["roles"].([]any); ok {
			docs = roles
		} else {
			docs = []any{v}
		}
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected a mapping or a list", ErrInvalidDefinition)
	}
	out := make([]Definition, 0, len(docs))
	for i, doc := range docs {
		d, err := decodeDefinition(doc)
		if err != nil {
			return nil, fmt.Errorf("role #%d: %w", i+1, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeDefinition(doc any) (Definition, error) {
	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Definition{}, fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(msgs, "; "))
	}
	// the document already passed the schema, round-trip through JSON for typed decoding
	b, err := json.Marshal(doc)
	if err != nil {
		return Definition{}, err
	}
	var d Definition
	if err := json.Unmarshal(b, &d); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return d, nil
}

// Validate checks a definition against the catalog and returns non-fatal warnings.
func Validate(d Definition, c Catalog) ([]string, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if len(d.Actions) == 0 {
		return nil, fmt.Errorf("%w: role %q needs at least one action", ErrInvalidDefinition, name)
	}
	for _, ro := range c.Roles {
		if ro.Name == name {
			return nil, fmt.Errorf("%w: role %q shadows a predefined role", ErrInvalidDefinition, name)
		}
	}
	known := make(map[string]bool, len(c.Actions))
	for _, a := range c.Actions {
		known[a.ID] = true
	}
	var warnings []string
	seen := map[string]bool{}
	for _, ad := range d.Actions {
		if ad.ID == "" {
			return nil, fmt.Errorf("%w: role %q has an action without id", ErrInvalidDefinition, name)
		}
		if seen[ad.ID] || known[ad.ID] {
			return nil, fmt.Errorf("%w: action id %q is not unique", ErrInvalidDefinition, ad.ID)
		}
		seen[ad.ID] = true
		switch ad.Effect {
		case EffectKill, EffectProtect, EffectCheck, EffectNone:
		default:
			return nil, fmt.Errorf("%w: action %q uses unsupported effect %q", ErrInvalidDefinition, ad.ID, ad.Effect)
		}
		a := ad.toAction()
		if d.Camp == CampVillager && a.Effect == EffectKill {
			warnings = append(warnings, fmt.Sprintf("villager-camp role %q is granted kill action %q", name, a.ID))
		}
		if a.Timing == TimingDeathTrigger && !a.Limited() {
			warnings = append(warnings, fmt.Sprintf("death-trigger action %q has unlimited uses", a.ID))
		}
		if a.Priority < 0 || a.Priority > 1000 {
			warnings = append(warnings, fmt.Sprintf("action %q priority %d is outside 0..1000", a.ID, a.Priority))
		}
	}
	return warnings, nil
}

// ValidateAll validates a set of definitions together, rejecting duplicate
// names and action ids across the set.
func ValidateAll(defs []Definition, c Catalog) ([]string, error) {
	var warnings []string
	names := map[string]bool{}
	ids := map[string]bool{}
	for _, d := range defs {
		w, err := Validate(d, c)
		if err != nil {
			return nil, err
		}
		if names[d.Name] {
			return nil, fmt.Errorf("%w: role %q defined twice", ErrInvalidDefinition, d.Name)
		}
		names[d.Name] = true
		for _, ad := range d.Actions {
			if ids[ad.ID] {
				return nil, fmt.Errorf("%w: action id %q is not unique", ErrInvalidDefinition, ad.ID)
			}
			ids[ad.ID] = true
		}
		warnings = append(warnings, w...)
	}
	return warnings, nil
}
