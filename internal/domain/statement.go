package domain

import (
	"fmt"
	"strings"
)

// DefaultPriority is assigned to statements that do not carry an explicit one.
// Priority participates in identity: the priority-based forking strategies rely
// on a priority-adjusted copy being a distinct fact from the original.
const DefaultPriority = 1.0

// Statement is an atomic fact: a verb applied to an ordered list of terms,
// optionally negated. Treat as immutable once constructed.
type Statement struct {
	Verb     string   `json:"verb"`
	Terms    []string `json:"terms"`
	Negated  bool     `json:"negated"`
	Priority float64  `json:"priority"`
}

// NewStatement builds a non-negated statement with the default priority.
func NewStatement(verb string, terms ...string) Statement {
	return Statement{Verb: verb, Terms: terms, Priority: DefaultPriority}
}

// Negate returns a copy with the negation flipped. Verb, terms and priority
// are preserved.
func (s Statement) Negate() Statement {
	neg := s
	neg.Negated = !neg.Negated
	neg.Terms = append([]string(nil), s.Terms...)
	return neg
}

// WithPriority returns a copy carrying the given priority.
func (s Statement) WithPriority(p float64) Statement {
	out := s
	out.Priority = p
	out.Terms = append([]string(nil), s.Terms...)
	return out
}

// Equal reports full structural equality, priority included.
func (s Statement) Equal(other Statement) bool {
	if s.Verb != other.Verb || s.Negated != other.Negated || s.Priority != other.Priority {
		return false
	}
	if len(s.Terms) != len(other.Terms) {
		return false
	}
	for i := range s.Terms {
		if s.Terms[i] != other.Terms[i] {
			return false
		}
	}
	return true
}

// Key returns a canonical identity string covering verb, terms, negation and
// priority. Statements are used as set members and map keys through it since
// the terms slice makes the struct itself non-comparable.
func (s Statement) Key() string {
	return fmt.Sprintf("%t\x1f%s\x1f%s\x1f%g", s.Negated, s.Verb, strings.Join(s.Terms, "\x1e"), s.Priority)
}

func (s Statement) String() string {
	neg := ""
	if s.Negated {
		neg = "NOT "
	}
	return fmt.Sprintf("(%s%s %s)", neg, s.Verb, strings.Join(s.Terms, " "))
}
