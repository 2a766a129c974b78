package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ConditionOp discriminates the Condition variants. OR does not appear here:
// disjunctions are decomposed into multiple rules upstream (see internal/ir).
type ConditionOp string

const (
	OpLeaf   ConditionOp = "LEAF"
	OpAnd    ConditionOp = "AND"
	OpExists ConditionOp = "EXISTS"
	OpForall ConditionOp = "FORALL"
	OpCount  ConditionOp = "COUNT"
	OpNone   ConditionOp = "NONE"
)

// Comparators accepted by COUNT conditions.
var countComparators = map[string]struct{}{
	">": {}, "<": {}, "==": {}, ">=": {}, "<=": {}, "!=": {},
}

var (
	ErrConditionShape     = errors.New("condition must have exactly one shape")
	ErrQuantifierChild    = errors.New("quantifier conditions take a LEAF child")
	ErrUnknownComparator  = errors.New("unknown count comparator")
	ErrUnknownConditionOp = errors.New("unknown condition op")
)

// Condition is a discriminated union over the six pattern shapes. Build it
// through the constructors; a condition mixing shapes (or missing one) fails
// validation before it ever reaches evaluation. Treat as immutable.
type Condition struct {
	Op ConditionOp

	// LEAF
	Verb         string
	Terms        []string
	VerbSynonyms []string
	Negated      bool

	// AND
	Children []*Condition

	// EXISTS / COUNT / NONE
	Child *Condition

	// FORALL
	Domain   *Condition
	Property *Condition

	// COUNT
	Comparator string
	Threshold  int
}

// Leaf builds a simple pattern condition. Terms may contain `?var` markers and
// a final `*name` wildcard.
func Leaf(verb string, terms ...string) *Condition {
	return &Condition{Op: OpLeaf, Verb: verb, Terms: terms}
}

// LeafSynonyms builds a leaf that also matches facts whose verb is any of the
// given synonyms.
func LeafSynonyms(verb string, terms []string, synonyms []string) *Condition {
	return &Condition{Op: OpLeaf, Verb: verb, Terms: terms, VerbSynonyms: synonyms}
}

// NegatedLeaf builds a pattern that matches negated facts only.
func NegatedLeaf(verb string, terms ...string) *Condition {
	return &Condition{Op: OpLeaf, Verb: verb, Terms: terms, Negated: true}
}

// And builds a conjunction. Every child must match a distinct fact under a
// single consistent set of bindings.
func And(children ...*Condition) *Condition {
	return &Condition{Op: OpAnd, Children: children}
}

// Exists builds an existential check over a leaf pattern. Inner bindings are
// discarded, never propagated.
func Exists(child *Condition) (*Condition, error) {
	if err := requireLeaf(child); err != nil {
		return nil, err
	}
	return &Condition{Op: OpExists, Child: child}, nil
}

// Forall builds a universal check: every fact matching the domain pattern must
// have its resolved property literally present. Vacuously true on an empty
// domain. No bindings propagate.
func Forall(domain, property *Condition) (*Condition, error) {
	if err := requireLeaf(domain); err != nil {
		return nil, err
	}
	if err := requireLeaf(property); err != nil {
		return nil, err
	}
	return &Condition{Op: OpForall, Domain: domain, Property: property}, nil
}

// Count builds a cardinality check: the number of facts independently matching
// the child pattern is compared against threshold.
func Count(child *Condition, comparator string, threshold int) (*Condition, error) {
	if err := requireLeaf(child); err != nil {
		return nil, err
	}
	if _, ok := countComparators[comparator]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComparator, comparator)
	}
	return &Condition{Op: OpCount, Child: child, Comparator: comparator, Threshold: threshold}, nil
}

// None builds an absence check: true iff zero facts match the child pattern.
func None(child *Condition) (*Condition, error) {
	if err := requireLeaf(child); err != nil {
		return nil, err
	}
	return &Condition{Op: OpNone, Child: child}, nil
}

func requireLeaf(c *Condition) error {
	if c == nil || c.Op != OpLeaf {
		return ErrQuantifierChild
	}
	return nil
}

// Validate checks that the condition holds exactly one shape. It is applied on
// deserialization, where a malformed structural form could otherwise smuggle a
// mixed-shape condition past the constructors.
func (c *Condition) Validate() error {
	switch c.Op {
	case OpLeaf:
		if c.Verb == "" || c.Children != nil || c.Child != nil || c.Domain != nil {
			return ErrConditionShape
		}
	case OpAnd:
		if len(c.Children) == 0 || c.Verb != "" || c.Child != nil || c.Domain != nil {
			return ErrConditionShape
		}
		for _, child := range c.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	case OpExists, OpNone:
		if c.Child == nil || c.Verb != "" || c.Children != nil || c.Domain != nil {
			return ErrConditionShape
		}
		return requireLeaf(c.Child)
	case OpForall:
		if c.Domain == nil || c.Property == nil || c.Verb != "" || c.Children != nil || c.Child != nil {
			return ErrConditionShape
		}
		if err := requireLeaf(c.Domain); err != nil {
			return err
		}
		return requireLeaf(c.Property)
	case OpCount:
		if c.Child == nil || c.Verb != "" || c.Children != nil || c.Domain != nil {
			return ErrConditionShape
		}
		if _, ok := countComparators[c.Comparator]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownComparator, c.Comparator)
		}
		return requireLeaf(c.Child)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownConditionOp, c.Op)
	}
	return nil
}

func (c *Condition) String() string {
	switch c.Op {
	case OpAnd:
		parts := make([]string, len(c.Children))
		for i, child := range c.Children {
			parts[i] = child.String()
		}
		return "(" + strings.Join(parts, " & ") + ")"
	case OpExists:
		return "(exists " + c.Child.String() + ")"
	case OpForall:
		return "(forall " + c.Domain.String() + ", " + c.Property.String() + ")"
	case OpCount:
		return fmt.Sprintf("(count %s %s %d)", c.Child.String(), c.Comparator, c.Threshold)
	case OpNone:
		return "(none " + c.Child.String() + ")"
	default:
		neg := ""
		if c.Negated {
			neg = "NOT "
		}
		return "(" + neg + c.Verb + " " + strings.Join(c.Terms, " ") + ")"
	}
}

// The wire form keeps the historical field names so rules round-trip unchanged
// through the rule compiler and persistence collaborators: a leaf serializes as
// verb/terms/verb_synonyms, the other variants under and_conditions,
// exists_condition, forall_condition, count_condition and none_condition.

type leafJSON struct {
	Verb         string   `json:"verb"`
	Terms        []string `json:"terms"`
	VerbSynonyms []string `json:"verb_synonyms,omitempty"`
	Negated      bool     `json:"negated,omitempty"`
}

type countJSON struct {
	Condition *Condition `json:"condition"`
	Operator  string     `json:"operator"`
	Value     int        `json:"value"`
}

func (c *Condition) MarshalJSON() ([]byte, error) {
	switch c.Op {
	case OpAnd:
		return json.Marshal(map[string][]*Condition{"and_conditions": c.Children})
	case OpExists:
		return json.Marshal(map[string]*Condition{"exists_condition": c.Child})
	case OpForall:
		return json.Marshal(map[string][]*Condition{"forall_condition": {c.Domain, c.Property}})
	case OpCount:
		return json.Marshal(map[string]countJSON{"count_condition": {Condition: c.Child, Operator: c.Comparator, Value: c.Threshold}})
	case OpNone:
		return json.Marshal(map[string]*Condition{"none_condition": c.Child})
	default:
		return json.Marshal(leafJSON{Verb: c.Verb, Terms: c.Terms, VerbSynonyms: c.VerbSynonyms, Negated: c.Negated})
	}
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw struct {
		And     []*Condition `json:"and_conditions"`
		Exists  *Condition   `json:"exists_condition"`
		Forall  []*Condition `json:"forall_condition"`
		Count   *countJSON   `json:"count_condition"`
		None    *Condition   `json:"none_condition"`
		Verb    string       `json:"verb"`
		Terms   []string     `json:"terms"`
		Syn     []string     `json:"verb_synonyms"`
		Negated bool         `json:"negated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.And != nil:
		*c = Condition{Op: OpAnd, Children: raw.And}
	case raw.Exists != nil:
		*c = Condition{Op: OpExists, Child: raw.Exists}
	case raw.Forall != nil:
		if len(raw.Forall) != 2 {
			return fmt.Errorf("forall_condition wants [domain, property], got %d elements", len(raw.Forall))
		}
		*c = Condition{Op: OpForall, Domain: raw.Forall[0], Property: raw.Forall[1]}
	case raw.Count != nil:
		*c = Condition{Op: OpCount, Child: raw.Count.Condition, Comparator: raw.Count.Operator, Threshold: raw.Count.Value}
	case raw.None != nil:
		*c = Condition{Op: OpNone, Child: raw.None}
	default:
		*c = Condition{Op: OpLeaf, Verb: raw.Verb, Terms: raw.Terms, VerbSynonyms: raw.Syn, Negated: raw.Negated}
	}
	return c.Validate()
}

// Key returns a canonical identity string for the condition, derived from its
// wire form. Conditions with equal structure share a key.
func (c *Condition) Key() string {
	b, err := json.Marshal(c)
	if err != nil {
		// Marshal of a validated condition cannot fail; fall back to the
		// display form rather than panic on a hand-built broken value.
		return c.String()
	}
	return string(b)
}

// Equal reports structural equality.
func (c *Condition) Equal(other *Condition) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Key() == other.Key()
}
