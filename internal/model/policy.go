package model

import "strings"

// Action is what a normalization rule does to its field.
type Action int

const (
	// ActionDrop removes the field unconditionally.
	ActionDrop Action = iota
	// ActionDropIfEmpty removes the field when it is present but blank.
	ActionDropIfEmpty
	// ActionOverride replaces the field's value, only when the field is present.
	ActionOverride
)

// String returns the string representation of the Action.
func (a Action) String() string {
	switch a {
	case ActionDrop:
		return "drop"
	case ActionDropIfEmpty:
		return "drop-if-empty"
	case ActionOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Rule is one entry of a normalization policy.
type Rule struct {
	Field  string
	Action Action
	// Value is the replacement for ActionOverride.
	Value string
}

// Policy is an ordered normalization rule table.
type Policy []Rule

// Apply runs every rule against the record, in order.
func (p Policy) Apply(r *Record) {
	for _, rule := range p {
		v, ok := r.Get(rule.Field)
		if !ok {
			continue
		}
		switch rule.Action {
		case ActionDrop:
			r.Delete(rule.Field)
		case ActionDropIfEmpty:
			if isBlank(rule.Field, v) {
				r.Delete(rule.Field)
			}
		case ActionOverride:
			r.Set(rule.Field, rule.Value)
		}
	}
}

// isBlank reports whether a field value counts as empty. Policies
// additionally treats an empty JSON list as empty: the store rejects it.
func isBlank(field, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	if field == FieldPolicies {
		return strings.Join(strings.Fields(v), "") == "[]"
	}
	return false
}

// serverManaged are fields the store sets itself and rejects on writes.
var serverManaged = []string{FieldLastModifiedDate, FieldLastModifiedUser, FieldVersion}

// ExportPolicy is applied to every record before it is written to CSV.
func ExportPolicy() Policy {
	p := make(Policy, 0, len(serverManaged)+1)
	for _, f := range serverManaged {
		p = append(p, Rule{Field: f, Action: ActionDrop})
	}
	return append(p, Rule{Field: FieldPolicies, Action: ActionDropIfEmpty})
}

// ImportRules configures the KMS key handling of ImportPolicy.
type ImportRules struct {
	// KeyIDOverride replaces every present KeyId when non-empty.
	KeyIDOverride string
	// ClearKMSKey removes KeyId so the store's default key is used.
	ClearKMSKey bool
}

// ImportPolicy is applied to every CSV row before it is written to the store.
// An override takes precedence over clearing, which takes precedence over the
// default of dropping a blank KeyId.
func ImportPolicy(rules ImportRules) Policy {
	var keyRule Rule
	switch {
	case rules.KeyIDOverride != "":
		keyRule = Rule{Field: FieldKeyID, Action: ActionOverride, Value: rules.KeyIDOverride}
	case rules.ClearKMSKey:
		keyRule = Rule{Field: FieldKeyID, Action: ActionDrop}
	default:
		keyRule = Rule{Field: FieldKeyID, Action: ActionDropIfEmpty}
	}

	p := Policy{keyRule}
	for _, f := range serverManaged {
		p = append(p, Rule{Field: f, Action: ActionDrop})
	}
	return append(p, Rule{Field: FieldPolicies, Action: ActionDropIfEmpty})
}
