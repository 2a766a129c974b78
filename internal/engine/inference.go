package engine

import (
	"errors"

	"github.com/Harshitk-cp/fabric/internal/domain"
)

// DefaultMaxPasses bounds the inference fixpoint. The loop is not guaranteed
// to terminate for self-generating rule sets, so a ceiling with a distinct
// signal stands in for an unguarded loop.
const DefaultMaxPasses = 100

// ErrNoConvergence reports that the fixpoint hit its pass ceiling while still
// producing new facts. Everything derived up to the ceiling is returned
// alongside it.
var ErrNoConvergence = errors.New("inference did not converge within the pass ceiling")

// Application is one successful (rule, bindings) match recorded during
// inference. Each unique pair is recorded exactly once.
type Application struct {
	Rule     domain.Rule
	Bindings domain.Bindings
}

func applicationKey(rule domain.Rule, bindings domain.Bindings) string {
	return rule.Key() + "\x00" + bindings.Key()
}

// RunInferenceChain computes the forward-chaining closure of the initial facts
// under the rules. It is pure: no state is read or written, which lets the
// latent-conflict probe reuse it over hypothetical facts. Derived facts exclude
// the initial set; applications are returned in discovery order. maxPasses <= 0
// selects DefaultMaxPasses.
func RunInferenceChain(initial []domain.Statement, rules []domain.Rule, maxPasses int) ([]domain.Statement, []Application, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	known := make([]domain.Statement, 0, len(initial))
	seen := make(map[string]struct{}, len(initial))
	for _, s := range initial {
		if _, dup := seen[s.Key()]; dup {
			continue
		}
		seen[s.Key()] = struct{}{}
		known = append(known, s)
	}
	initialCount := len(known)

	var applications []Application
	applied := make(map[string]struct{})

	for pass := 0; pass < maxPasses; pass++ {
		var inferred []domain.Statement

		for _, rule := range rules {
			for _, bindings := range rule.Condition.EvaluateAll(known) {
				key := applicationKey(rule, bindings)
				if _, done := applied[key]; done {
					continue
				}
				applied[key] = struct{}{}
				applications = append(applications, Application{Rule: rule, Bindings: bindings})

				for _, consequence := range rule.Consequences {
					if consequence.Statement == nil {
						continue
					}
					candidate := domain.ResolveStatement(*consequence.Statement, bindings)
					if _, dup := seen[candidate.Key()]; dup {
						continue
					}
					seen[candidate.Key()] = struct{}{}
					inferred = append(inferred, candidate)
				}
			}
		}

		if len(inferred) == 0 {
			return known[initialCount:], applications, nil
		}
		known = append(known, inferred...)
	}

	return known[initialCount:], applications, ErrNoConvergence
}
