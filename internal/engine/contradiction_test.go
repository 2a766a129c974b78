package engine

import (
	"testing"

	"github.com/Harshitk-cp/fabric/internal/domain"
)

func TestDetect(t *testing.T) {
	e := NewContradictionEngine(nil)

	mortal := domain.NewStatement("is", "socrates", "mortal")
	notMortal := mortal.Negate()

	if !e.Detect(mortal, notMortal) {
		t.Fatal("expected negation pair to contradict")
	}
	if e.Detect(mortal, mortal) {
		t.Fatal("expected a statement not to contradict itself")
	}
	if e.Detect(mortal, domain.NewStatement("is", "plato", "mortal").Negate()) {
		t.Fatal("expected different terms not to contradict")
	}
	if e.Detect(mortal, domain.NewStatement("was", "socrates", "mortal").Negate()) {
		t.Fatal("expected different verbs not to contradict")
	}
}

func TestDetectIgnoresPriority(t *testing.T) {
	e := NewContradictionEngine(nil)

	mortal := domain.NewStatement("is", "socrates", "mortal")
	notMortal := mortal.Negate().WithPriority(1.1)

	if !e.Detect(mortal, notMortal) {
		t.Fatal("expected contradiction regardless of priority")
	}
}

func TestDetectRuleConflictDirect(t *testing.T) {
	e := NewContradictionEngine(nil)

	mortalRule := domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal")),
	)
	immortalRule := domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal").Negate()),
	)
	context := []domain.Rule{mortalRule, immortalRule}

	if !e.DetectRuleConflict(mortalRule, immortalRule, context) {
		t.Fatal("expected direct rule conflict")
	}
}

func TestDetectRuleConflictThroughInferenceChain(t *testing.T) {
	e := NewContradictionEngine(nil)

	mortalRule := domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal")),
	)
	immortalPhilosophers := domain.NewRule(
		domain.Leaf("is", "?x", "philosopher"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal").Negate()),
	)
	philosophersAreHuman := domain.NewRule(
		domain.Leaf("is", "?x", "philosopher"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "human")),
	)
	context := []domain.Rule{mortalRule, immortalPhilosophers, philosophersAreHuman}

	// The probe only finds the clash by chaining philosopher -> human -> mortal.
	if !e.DetectRuleConflict(mortalRule, immortalPhilosophers, context) {
		t.Fatal("expected chained rule conflict")
	}
}

func TestDetectRuleConflictNegatives(t *testing.T) {
	e := NewContradictionEngine(nil)

	mortalRule := domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal")),
	)
	hungryRule := domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("needs", "?x", "food")),
	)
	context := []domain.Rule{mortalRule, hungryRule}

	if e.DetectRuleConflict(mortalRule, hungryRule, context) {
		t.Fatal("expected no conflict between compatible rules")
	}

	// A ground condition offers no variable to hypothesize about.
	groundRule := domain.NewRule(
		domain.Leaf("is", "socrates", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "socrates", "mortal").Negate()),
	)
	if e.DetectRuleConflict(mortalRule, groundRule, []domain.Rule{mortalRule, groundRule}) {
		t.Fatal("expected no probe for ground conditions")
	}
}

func TestAuditRules(t *testing.T) {
	e := NewContradictionEngine(nil)

	rules := []domain.Rule{
		domain.NewRule(
			domain.Leaf("is", "?x", "human"),
			domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal")),
		),
		domain.NewRule(
			domain.Leaf("is", "?x", "human"),
			domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal").Negate()),
		),
	}

	records := e.AuditRules(rules)
	if len(records) != 1 {
		t.Fatalf("expected 1 latent conflict, got %d", len(records))
	}
	if records[0].Type != domain.ContradictionRuleLatent {
		t.Fatalf("expected rule_latent record, got %s", records[0].Type)
	}
	if records[0].RuleA == nil || records[0].RuleB == nil {
		t.Fatal("expected both rules on the record")
	}
}
