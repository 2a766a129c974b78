package engine

import (
	"github.com/Harshitk-cp/fabric/internal/domain"
	"go.uber.org/zap"
)

// hypotheticalEntity is substituted for the subject variable when probing a
// rule pair for latent conflicts. The NUL prefix keeps it disjoint from any
// real entity name that could reach the engine through a statement.
const hypotheticalEntity = "\x00hypothetical-entity"

// ContradictionEngine detects conflicts between concrete statements and latent
// conflicts between rules.
type ContradictionEngine struct {
	logger *zap.Logger
}

func NewContradictionEngine(logger *zap.Logger) *ContradictionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContradictionEngine{logger: logger}
}

// Detect reports whether two statements contradict: identical verb and terms
// with opposite negation. Priority plays no part in this check.
func (e *ContradictionEngine) Detect(s1, s2 domain.Statement) bool {
	if s1.Verb != s2.Verb || s1.Negated == s2.Negated || len(s1.Terms) != len(s2.Terms) {
		return false
	}
	for i := range s1.Terms {
		if s1.Terms[i] != s2.Terms[i] {
			return false
		}
	}
	return true
}

// DetectRuleConflict reports whether two rules could produce contradictory
// statements, checked in both orderings. The probe synthesizes a hypothetical
// fact from the probed rule's condition, runs the pure inference chain over the
// context rules seeded with only that fact, and tests whether both rules then
// fire with clashing statement consequences. Effect consequences are ignored.
func (e *ContradictionEngine) DetectRuleConflict(ruleA, ruleB domain.Rule, contextRules []domain.Rule) bool {
	return e.checkOneWayConflict(ruleA, ruleB, contextRules) ||
		e.checkOneWayConflict(ruleB, ruleA, contextRules)
}

func (e *ContradictionEngine) checkOneWayConflict(ruleA, ruleB domain.Rule, contextRules []domain.Rule) bool {
	cond := ruleB.Condition
	if cond.Op != domain.OpLeaf || len(cond.Terms) == 0 || !domain.IsVariable(cond.Terms[0]) {
		// No variable subject to hypothesize about.
		return false
	}

	varName := cond.Terms[0]
	terms := make([]string, len(cond.Terms))
	for i, term := range cond.Terms {
		if term == varName {
			terms[i] = hypotheticalEntity
		} else {
			terms[i] = term
		}
	}
	hypothetical := domain.NewStatement(cond.Verb, terms...)
	if cond.Negated {
		hypothetical = hypothetical.Negate()
	}

	derived, _, err := RunInferenceChain([]domain.Statement{hypothetical}, contextRules, DefaultMaxPasses)
	if err != nil {
		// A diverging context still yields a usable partial closure for the probe.
		e.logger.Warn("latent conflict probe did not converge", zap.String("rule", ruleB.String()))
	}

	allFacts := append([]domain.Statement{hypothetical}, derived...)

	bindingsA, okA := ruleA.AppliesTo(allFacts)
	bindingsB, okB := ruleB.AppliesTo(allFacts)
	if !okA || !okB {
		return false
	}

	for _, conA := range ruleA.Consequences {
		if conA.Statement == nil {
			continue
		}
		resolvedA := domain.ResolveStatement(*conA.Statement, bindingsA)
		for _, conB := range ruleB.Consequences {
			if conB.Statement == nil {
				continue
			}
			resolvedB := domain.ResolveStatement(*conB.Statement, bindingsB)
			if e.Detect(resolvedA, resolvedB) {
				e.logger.Info("latent conflict between rules",
					zap.String("rule_a", ruleA.String()),
					zap.String("rule_b", ruleB.String()),
					zap.String("statement_a", resolvedA.String()),
					zap.String("statement_b", resolvedB.String()),
				)
				return true
			}
		}
	}
	return false
}

// AuditRules runs the pairwise latent-conflict check over a rule set, as done
// when a belief system is constructed, before any real fact triggers anything.
func (e *ContradictionEngine) AuditRules(rules []domain.Rule) []domain.ContradictionRecord {
	var records []domain.ContradictionRecord
	for i := range rules {
		for j := i + 1; j < len(rules); j++ {
			if e.DetectRuleConflict(rules[i], rules[j], rules) {
				records = append(records, domain.ContradictionRecord{
					Type:       domain.ContradictionRuleLatent,
					RuleA:      &rules[i],
					RuleB:      &rules[j],
					Resolution: "Latent conflict detected on initialization",
				})
			}
		}
	}
	return records
}
