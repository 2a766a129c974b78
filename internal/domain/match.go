package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Bindings maps a `?var` marker to its matched value: a string for plain
// variables, a []string for a trailing `*wildcard` capture.
type Bindings map[string]any

// Key returns a canonical string over the bindings, used to freeze a
// (rule, bindings) application for idempotency tracking.
func (b Bindings) Key() string {
	if len(b) == 0 {
		return ""
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := b[k].(type) {
		case []string:
			parts = append(parts, k+"=["+strings.Join(v, "\x1e")+"]")
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, "\x1f")
}

// Resolve returns the string bound to a `?var` token, or the token itself when
// unbound or bound to a non-string (wildcard) value.
func (b Bindings) Resolve(token string) string {
	if !IsVariable(token) {
		return token
	}
	if v, ok := b[token].(string); ok {
		return v
	}
	return token
}

func (b Bindings) clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func bindingValueEqual(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	al, aok := a.([]string)
	bl, bok := b.([]string)
	if !aok || !bok || len(al) != len(bl) {
		return false
	}
	for i := range al {
		if al[i] != bl[i] {
			return false
		}
	}
	return true
}

// IsVariable reports whether a term token is a `?var` binding marker.
func IsVariable(token string) bool {
	return strings.HasPrefix(token, "?")
}

// IsWildcard reports whether a term token is a `*name` suffix capture marker.
func IsWildcard(token string) bool {
	return strings.HasPrefix(token, "*")
}

// Evaluate matches the condition against the given facts and returns the
// resulting bindings. Quantifier variants return empty-but-present bindings on
// success; their inner bindings never escape. Fact order is significant: the
// first match wins, so callers holding an insertion-ordered fact set get
// deterministic results.
func (c *Condition) Evaluate(facts []Statement) (Bindings, bool) {
	switch c.Op {
	case OpAnd:
		return findConsistentBindings(c.Children, facts, Bindings{})
	case OpExists:
		for _, fact := range facts {
			if _, ok := c.Child.matchLeaf(fact); ok {
				return Bindings{}, true
			}
		}
		return nil, false
	case OpForall:
		return c.evaluateForall(facts)
	case OpCount:
		return c.evaluateCount(facts)
	case OpNone:
		for _, fact := range facts {
			if _, ok := c.Child.matchLeaf(fact); ok {
				return nil, false
			}
		}
		return Bindings{}, true
	default:
		for _, fact := range facts {
			if b, ok := c.matchLeaf(fact); ok {
				return b, true
			}
		}
		return nil, false
	}
}

// matchLeaf matches a single fact against a LEAF pattern. The fact may carry
// more terms than the pattern (prefix match) but not fewer, except where a
// trailing wildcard absorbs the remainder.
func (c *Condition) matchLeaf(fact Statement) (Bindings, bool) {
	if fact.Negated != c.Negated {
		return nil, false
	}
	if fact.Verb != c.Verb && !contains(c.VerbSynonyms, fact.Verb) {
		return nil, false
	}

	bindings := Bindings{}
	for i, condTerm := range c.Terms {
		if IsWildcard(condTerm) && i == len(c.Terms)-1 {
			if len(fact.Terms) < i {
				return nil, false
			}
			bindings["?"+condTerm[1:]] = append([]string(nil), fact.Terms[i:]...)
			return bindings, true
		}
		if i >= len(fact.Terms) {
			return nil, false
		}
		if IsVariable(condTerm) {
			bindings[condTerm] = fact.Terms[i]
			continue
		}
		if condTerm != fact.Terms[i] {
			return nil, false
		}
	}
	return bindings, true
}

// findConsistentBindings assigns each sub-condition to a distinct unused fact,
// backtracking on binding conflicts. It returns the first fully consistent
// assignment, not all solutions. Worst case is exponential; rule and fact sets
// here are small.
func findConsistentBindings(children []*Condition, facts []Statement, current Bindings) (Bindings, bool) {
	if len(children) == 0 {
		return current, true
	}

	child := children[0]
	rest := children[1:]

	if child.Op != OpLeaf {
		// A nested quantifier inside AND judges the whole fact set, not a
		// single fact; evaluate it once against everything and consume no fact.
		if _, ok := child.Evaluate(facts); ok {
			return findConsistentBindings(rest, facts, current)
		}
		return nil, false
	}

	for i, fact := range facts {
		sub, ok := child.matchLeaf(fact)
		if !ok {
			continue
		}

		merged := current.clone()
		conflict := false
		for k, v := range sub {
			if existing, seen := merged[k]; seen && !bindingValueEqual(existing, v) {
				conflict = true
				break
			}
			merged[k] = v
		}
		if conflict {
			continue
		}

		remaining := make([]Statement, 0, len(facts)-1)
		remaining = append(remaining, facts[:i]...)
		remaining = append(remaining, facts[i+1:]...)
		if result, ok := findConsistentBindings(rest, remaining, merged); ok {
			return result, true
		}
	}
	return nil, false
}

// EvaluateAll returns every distinct binding solution of the condition over
// the facts, in fact order. Quantifier variants contribute at most one
// empty-but-present binding set, same as Evaluate.
func (c *Condition) EvaluateAll(facts []Statement) []Bindings {
	switch c.Op {
	case OpLeaf:
		var out []Bindings
		seen := make(map[string]struct{})
		for _, fact := range facts {
			b, ok := c.matchLeaf(fact)
			if !ok {
				continue
			}
			if _, dup := seen[b.Key()]; dup {
				continue
			}
			seen[b.Key()] = struct{}{}
			out = append(out, b)
		}
		return out
	case OpAnd:
		var out []Bindings
		seen := make(map[string]struct{})
		collectConsistentBindings(c.Children, facts, Bindings{}, func(b Bindings) {
			if _, dup := seen[b.Key()]; dup {
				return
			}
			seen[b.Key()] = struct{}{}
			out = append(out, b)
		})
		return out
	default:
		if b, ok := c.Evaluate(facts); ok {
			return []Bindings{b}
		}
		return nil
	}
}

// collectConsistentBindings is findConsistentBindings generalized to visit
// every solution instead of stopping at the first.
func collectConsistentBindings(children []*Condition, facts []Statement, current Bindings, visit func(Bindings)) {
	if len(children) == 0 {
		visit(current)
		return
	}

	child := children[0]
	rest := children[1:]

	if child.Op != OpLeaf {
		if _, ok := child.Evaluate(facts); ok {
			collectConsistentBindings(rest, facts, current, visit)
		}
		return
	}

	for i, fact := range facts {
		sub, ok := child.matchLeaf(fact)
		if !ok {
			continue
		}

		merged := current.clone()
		conflict := false
		for k, v := range sub {
			if existing, seen := merged[k]; seen && !bindingValueEqual(existing, v) {
				conflict = true
				break
			}
			merged[k] = v
		}
		if conflict {
			continue
		}

		remaining := make([]Statement, 0, len(facts)-1)
		remaining = append(remaining, facts[:i]...)
		remaining = append(remaining, facts[i+1:]...)
		collectConsistentBindings(rest, remaining, merged, visit)
	}
}

func (c *Condition) evaluateForall(facts []Statement) (Bindings, bool) {
	var candidates []Bindings
	for _, fact := range facts {
		if b, ok := c.Domain.matchLeaf(fact); ok {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		// Vacuously true.
		return Bindings{}, true
	}

	for _, candidate := range candidates {
		resolved := make([]string, len(c.Property.Terms))
		for i, term := range c.Property.Terms {
			resolved[i] = candidate.Resolve(term)
		}
		want := NewStatement(c.Property.Verb, resolved...)
		if c.Property.Negated {
			want = want.Negate()
		}
		if !containsFact(facts, want) {
			return nil, false
		}
	}
	return Bindings{}, true
}

func (c *Condition) evaluateCount(facts []Statement) (Bindings, bool) {
	count := 0
	for _, fact := range facts {
		if _, ok := c.Child.matchLeaf(fact); ok {
			count++
		}
	}

	ok := false
	switch c.Comparator {
	case ">":
		ok = count > c.Threshold
	case "<":
		ok = count < c.Threshold
	case "==":
		ok = count == c.Threshold
	case ">=":
		ok = count >= c.Threshold
	case "<=":
		ok = count <= c.Threshold
	case "!=":
		ok = count != c.Threshold
	}
	if !ok {
		return nil, false
	}
	return Bindings{}, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFact(facts []Statement, want Statement) bool {
	for _, fact := range facts {
		if fact.Equal(want) {
			return true
		}
	}
	return false
}
