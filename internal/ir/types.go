// Package ir holds the intermediate representation the rule compiler works
// over: the structured form an upstream parser emits before disjunctions are
// decomposed and the result is lowered onto the engine's primitive rule types.
package ir

import (
	"encoding/json"
	"fmt"
)

// Condition operators and quantifiers. OR exists only here: the translator
// expands it away before anything reaches the engine.
const (
	OperatorLeaf = "LEAF"
	OperatorAnd  = "AND"
	OperatorOr   = "OR"

	QuantifierExists = "EXISTS"
	QuantifierForall = "FORALL"
	QuantifierCount  = "COUNT"
	QuantifierNone   = "NONE"
)

// Object is a condition or statement object: a single token, a token list, or
// (for COUNT conditions) a numeric threshold.
type Object struct {
	Tokens []string
	Number *float64
}

func (o *Object) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*o = Object{}
	case string:
		*o = Object{Tokens: []string{val}}
	case float64:
		*o = Object{Number: &val}
	case []any:
		tokens := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("object list may only hold strings, got %T", item)
			}
			tokens = append(tokens, s)
		}
		*o = Object{Tokens: tokens}
	default:
		return fmt.Errorf("unsupported object type %T", v)
	}
	return nil
}

func (o Object) MarshalJSON() ([]byte, error) {
	if o.Number != nil {
		return json.Marshal(*o.Number)
	}
	if len(o.Tokens) == 1 {
		return json.Marshal(o.Tokens[0])
	}
	return json.Marshal(o.Tokens)
}

// Tokens builds an Object from string tokens.
func Tokens(tokens ...string) Object {
	return Object{Tokens: tokens}
}

// Threshold builds a numeric Object for COUNT conditions.
func Threshold(n float64) Object {
	return Object{Number: &n}
}

// Condition is the pre-decomposition condition form. A leaf carries
// subject/verb/object; AND and OR carry children; a quantifier wraps its
// children (FORALL: [domain, property], others: [body]). COUNT reuses
// Operator as the comparator and Object as the threshold.
type Condition struct {
	Operator   string       `json:"operator,omitempty"`
	Children   []*Condition `json:"children,omitempty"`
	Subject    string       `json:"subject,omitempty"`
	Verb       string       `json:"verb,omitempty"`
	Object     Object       `json:"object,omitempty"`
	Negated    bool         `json:"negated,omitempty"`
	Modifiers  []string     `json:"modifiers,omitempty"`
	Exceptions []*Condition `json:"exceptions,omitempty"`
	Quantifier string       `json:"quantifier,omitempty"`
}

// Statement is the pre-translation statement form.
type Statement struct {
	Subject   string   `json:"subject"`
	Verb      string   `json:"verb"`
	Object    Object   `json:"object"`
	Negated   bool     `json:"negated,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Effect is the pre-translation world-state effect form.
type Effect struct {
	TargetWorldStateKey string `json:"target_world_state_key"`
	EffectOperation     string `json:"effect_operation"`
	EffectValue         any    `json:"effect_value"`
}

// Rule types.
const (
	RuleTypeStandard = "standard"
	RuleTypeEffect   = "effect"
)

// Rule pairs a condition with a single consequence, either a statement or an
// effect depending on RuleType.
type Rule struct {
	RuleType  string     `json:"rule_type"`
	Condition *Condition `json:"condition"`
	Statement *Statement `json:"-"`
	Effect    *Effect    `json:"-"`
}

type ruleJSON struct {
	RuleType    string          `json:"rule_type"`
	Condition   *Condition      `json:"condition"`
	Consequence json.RawMessage `json:"consequence"`
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var head struct {
		Type string `json:"type"`
	}
	if len(raw.Consequence) > 0 {
		if err := json.Unmarshal(raw.Consequence, &head); err != nil {
			return err
		}
	}

	*r = Rule{RuleType: raw.RuleType, Condition: raw.Condition}
	switch head.Type {
	case "effect":
		var e Effect
		if err := json.Unmarshal(raw.Consequence, &e); err != nil {
			return err
		}
		r.Effect = &e
	case "statement", "":
		if len(raw.Consequence) == 0 {
			return fmt.Errorf("rule is missing a consequence")
		}
		var s Statement
		if err := json.Unmarshal(raw.Consequence, &s); err != nil {
			return err
		}
		r.Statement = &s
	default:
		return fmt.Errorf("unknown consequence type: %q", head.Type)
	}
	return nil
}

func (r Rule) MarshalJSON() ([]byte, error) {
	var consequence any
	switch {
	case r.Effect != nil:
		consequence = struct {
			Type string `json:"type"`
			Effect
		}{Type: "effect", Effect: *r.Effect}
	case r.Statement != nil:
		consequence = struct {
			Type string `json:"type"`
			Statement
		}{Type: "statement", Statement: *r.Statement}
	default:
		return nil, fmt.Errorf("rule is missing a consequence")
	}
	raw, err := json.Marshal(consequence)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ruleJSON{RuleType: r.RuleType, Condition: r.Condition, Consequence: raw})
}
