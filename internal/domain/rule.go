package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownConsequenceType = errors.New("unknown consequence type")

// Consequence is either a Statement template or an Effect; exactly one side is
// set. The wire form carries a "type" discriminant of "statement" or "effect".
type Consequence struct {
	Statement *Statement
	Effect    *Effect
}

// StatementConsequence wraps a statement template.
func StatementConsequence(s Statement) Consequence {
	return Consequence{Statement: &s}
}

// EffectConsequence wraps an effect.
func EffectConsequence(e Effect) Consequence {
	return Consequence{Effect: &e}
}

func (c Consequence) String() string {
	if c.Effect != nil {
		return c.Effect.String()
	}
	if c.Statement != nil {
		return c.Statement.String()
	}
	return "(empty consequence)"
}

type statementConsequenceJSON struct {
	Type string `json:"type"`
	Statement
}

type effectConsequenceJSON struct {
	Type string `json:"type"`
	Effect
}

func (c Consequence) MarshalJSON() ([]byte, error) {
	if c.Effect != nil {
		return json.Marshal(effectConsequenceJSON{Type: "effect", Effect: *c.Effect})
	}
	if c.Statement != nil {
		return json.Marshal(statementConsequenceJSON{Type: "statement", Statement: *c.Statement})
	}
	return nil, ErrUnknownConsequenceType
}

func (c *Consequence) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case "effect":
		var e Effect
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		*c = Consequence{Effect: &e}
	case "statement", "":
		// Untagged consequences are statements, matching older rule payloads.
		var s Statement
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s.Priority == 0 {
			s.Priority = DefaultPriority
		}
		*c = Consequence{Statement: &s}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownConsequenceType, head.Type)
	}
	return nil
}

// Rule pairs a condition with its ordered consequences. Structural identity
// via Key makes rules usable as map keys for idempotency tracking.
type Rule struct {
	Condition    *Condition    `json:"condition"`
	Consequences []Consequence `json:"consequences"`
}

// NewRule builds a rule from a condition and consequences.
func NewRule(condition *Condition, consequences ...Consequence) Rule {
	return Rule{Condition: condition, Consequences: consequences}
}

// AppliesTo evaluates the rule's condition against the facts.
func (r Rule) AppliesTo(facts []Statement) (Bindings, bool) {
	return r.Condition.Evaluate(facts)
}

// Key returns a canonical identity string derived from the rule's wire form.
func (r Rule) Key() string {
	b, err := json.Marshal(r)
	if err != nil {
		return r.String()
	}
	return string(b)
}

// Equal reports structural equality.
func (r Rule) Equal(other Rule) bool {
	return r.Key() == other.Key()
}

func (r Rule) String() string {
	parts := make([]string, len(r.Consequences))
	for i, c := range r.Consequences {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Rule: IF %s THEN %s", r.Condition.String(), strings.Join(parts, ", "))
}

// ResolveStatement substitutes `?var` terms of a statement template from the
// bindings, falling back to the literal token when a variable is unbound. A
// wildcard capture splices its list into the terms. Verb, negation and
// priority copy unchanged.
func ResolveStatement(template Statement, bindings Bindings) Statement {
	terms := make([]string, 0, len(template.Terms))
	for _, term := range template.Terms {
		if !IsVariable(term) {
			terms = append(terms, term)
			continue
		}
		switch v := bindings[term].(type) {
		case string:
			terms = append(terms, v)
		case []string:
			terms = append(terms, v...)
		default:
			terms = append(terms, term)
		}
	}
	return Statement{
		Verb:     template.Verb,
		Terms:    terms,
		Negated:  template.Negated,
		Priority: template.Priority,
	}
}
