package engine

import (
	"testing"

	"github.com/Harshitk-cp/fabric/internal/domain"
)

func newTestSystem(strategy domain.ForkingStrategy, rules ...domain.Rule) *BeliefSystem {
	return New(rules, NewContradictionEngine(nil), strategy, nil)
}

func TestSimulateRunsInferenceChain(t *testing.T) {
	bs := newTestSystem(domain.StrategyCoexist, socraticRules()...)

	result := bs.Simulate([]domain.Statement{domain.NewStatement("is", "socrates", "human")})

	if result.Fork != nil {
		t.Fatal("expected no fork")
	}
	if !result.Converged {
		t.Fatal("expected convergence")
	}
	if len(result.DerivedFacts) != 2 {
		t.Fatalf("expected 2 derived facts, got %v", result.DerivedFacts)
	}
	if len(result.AppliedRules) != 2 {
		t.Fatalf("expected 2 applied rules, got %d", len(result.AppliedRules))
	}
	if len(bs.Statements()) != 3 {
		t.Fatalf("expected 3 facts total, got %v", bs.Statements())
	}
}

func TestSimulateCoexistForksOnContradiction(t *testing.T) {
	bs := newTestSystem(domain.StrategyCoexist)
	fact := domain.NewStatement("is", "sky", "blue")

	bs.Simulate([]domain.Statement{fact})
	result := bs.Simulate([]domain.Statement{fact.Negate()})

	if result.Fork == nil {
		t.Fatal("expected a fork")
	}

	forkFacts := result.Fork.Statements()
	if len(forkFacts) != 2 {
		t.Fatalf("expected fork to hold both facts, got %v", forkFacts)
	}
	if !forkFacts[0].Equal(fact) || !forkFacts[1].Equal(fact.Negate()) {
		t.Fatalf("expected fork to hold the fact and its negation, got %v", forkFacts)
	}

	// The parent keeps its original reality.
	parentFacts := bs.Statements()
	if len(parentFacts) != 1 || !parentFacts[0].Equal(fact) {
		t.Fatalf("expected parent unchanged, got %v", parentFacts)
	}
	if len(bs.Contradictions()) != 1 {
		t.Fatalf("expected 1 recorded contradiction, got %d", len(bs.Contradictions()))
	}
	if len(bs.Forks()) != 1 {
		t.Fatalf("expected 1 fork on the parent, got %d", len(bs.Forks()))
	}
}

func TestSimulatePreserveDropsContradiction(t *testing.T) {
	bs := newTestSystem(domain.StrategyPreserve)
	fact := domain.NewStatement("is", "sky", "blue")

	bs.Simulate([]domain.Statement{fact})
	result := bs.Simulate([]domain.Statement{fact.Negate()})

	if result.Fork != nil {
		t.Fatal("expected no fork under preserve")
	}
	if len(bs.Statements()) != 1 {
		t.Fatalf("expected the contradictory statement to be dropped, got %v", bs.Statements())
	}
	if len(bs.Contradictions()) != 1 {
		t.Fatal("expected the contradiction to still be recorded")
	}
}

func TestSimulatePrioritizeNew(t *testing.T) {
	bs := newTestSystem(domain.StrategyPrioritizeNew)
	fact := domain.NewStatement("is", "sky", "blue")

	bs.Simulate([]domain.Statement{fact})
	result := bs.Simulate([]domain.Statement{fact.Negate()})

	if result.Fork == nil {
		t.Fatal("expected a fork")
	}
	forkFacts := result.Fork.Statements()
	if len(forkFacts) != 2 {
		t.Fatalf("expected 2 facts in fork, got %v", forkFacts)
	}
	got := forkFacts[1]
	if !got.Negated || got.Priority != domain.DefaultPriority+domain.PriorityAdjustment {
		t.Fatalf("expected new fact at priority %g, got %v", domain.DefaultPriority+domain.PriorityAdjustment, got)
	}
}

func TestSimulatePrioritizeOld(t *testing.T) {
	bs := newTestSystem(domain.StrategyPrioritizeOld)
	fact := domain.NewStatement("is", "sky", "blue")

	bs.Simulate([]domain.Statement{fact})
	result := bs.Simulate([]domain.Statement{fact.Negate()})

	if result.Fork == nil {
		t.Fatal("expected a fork")
	}
	forkFacts := result.Fork.Statements()
	got := forkFacts[len(forkFacts)-1]
	if !got.Negated || got.Priority != domain.DefaultPriority-domain.PriorityAdjustment {
		t.Fatalf("expected new fact at priority %g, got %v", domain.DefaultPriority-domain.PriorityAdjustment, got)
	}
}

func TestSimulateInferredContradictionForks(t *testing.T) {
	bs := newTestSystem(domain.StrategyCoexist, socraticRules()...)

	notMortal := domain.NewStatement("is", "socrates", "mortal").Negate()
	bs.Simulate([]domain.Statement{notMortal})

	// Inference now derives (is socrates mortal), clashing with the negation.
	result := bs.Simulate([]domain.Statement{domain.NewStatement("is", "socrates", "human")})

	if result.Fork == nil {
		t.Fatal("expected the inferred contradiction to fork")
	}
	if len(result.DerivedFacts) != 0 || len(result.AppliedRules) != 0 {
		t.Fatal("expected this call's derivations to be discarded on contradiction")
	}
	if len(result.Fork.Statements()) != 3 {
		t.Fatalf("expected fork to hold parent facts plus the offending one, got %v", result.Fork.Statements())
	}
}

func TestSimulatePropagatesToForksFirst(t *testing.T) {
	bs := newTestSystem(domain.StrategyCoexist)
	fact := domain.NewStatement("is", "sky", "blue")

	bs.Simulate([]domain.Statement{fact})
	bs.Simulate([]domain.Statement{fact.Negate()})

	fork := bs.Forks()[0]
	extra := domain.NewStatement("is", "grass", "green")
	bs.Simulate([]domain.Statement{extra})

	forkFacts := fork.Statements()
	found := false
	for _, f := range forkFacts {
		if f.Equal(extra) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the fork to receive the new statement, got %v", forkFacts)
	}
}

func TestEffectsAreIdempotentAcrossSimulations(t *testing.T) {
	rule := domain.NewRule(
		domain.Leaf("dies", "?x"),
		domain.EffectConsequence(domain.NewEffect("population", "decrement", 1)),
	)
	bs := newTestSystem(domain.StrategyCoexist, rule)
	bs.WorldState()["population"] = 10

	bs.Simulate([]domain.Statement{domain.NewStatement("dies", "socrates")})
	if got := bs.WorldState()["population"]; got != float64(9) {
		t.Fatalf("expected population 9, got %v", got)
	}

	// Same rule, same bindings: the effect must not re-run.
	bs.Simulate([]domain.Statement{domain.NewStatement("dies", "socrates")})
	if got := bs.WorldState()["population"]; got != float64(9) {
		t.Fatalf("expected population to stay 9, got %v", got)
	}

	// A different binding is a fresh application.
	bs.Simulate([]domain.Statement{domain.NewStatement("dies", "plato")})
	if got := bs.WorldState()["population"]; got != float64(8) {
		t.Fatalf("expected population 8, got %v", got)
	}
}

func TestEffectResolvesVariableAttributeAndValue(t *testing.T) {
	rule := domain.NewRule(
		domain.Leaf("sets", "?key", "?val"),
		domain.EffectConsequence(domain.NewEffect("?key", "set", "?val")),
	)
	bs := newTestSystem(domain.StrategyCoexist, rule)

	bs.Simulate([]domain.Statement{domain.NewStatement("sets", "mood", "happy")})
	if got := bs.WorldState()["mood"]; got != "happy" {
		t.Fatalf("expected mood=happy, got %v", got)
	}
}

func TestUnknownEffectOperationIsSkipped(t *testing.T) {
	rule := domain.NewRule(
		domain.Leaf("dies", "?x"),
		domain.EffectConsequence(domain.NewEffect("population", "explode", 1)),
	)
	bs := newTestSystem(domain.StrategyCoexist, rule)
	bs.WorldState()["population"] = 10

	bs.Simulate([]domain.Statement{domain.NewStatement("dies", "socrates")})
	if got := bs.WorldState()["population"]; got != 10 {
		t.Fatalf("expected world state untouched, got %v", got)
	}
}

func TestSimulateNonConvergence(t *testing.T) {
	growing := domain.NewRule(
		domain.Leaf("chain", "*rest"),
		domain.StatementConsequence(domain.NewStatement("chain", "link", "?rest")),
	)
	bs := newTestSystem(domain.StrategyCoexist, growing)
	bs.SetMaxPasses(5)

	result := bs.Simulate([]domain.Statement{domain.NewStatement("chain", "seed")})

	if result.Converged {
		t.Fatal("expected non-convergence to be reported")
	}
	if len(result.DerivedFacts) == 0 {
		t.Fatal("expected the partial closure to be kept")
	}
}

func TestNewAuditsRuleSet(t *testing.T) {
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
	bs := newTestSystem(domain.StrategyCoexist, rules...)

	if len(bs.LatentContradictions()) != 1 {
		t.Fatalf("expected 1 latent contradiction, got %d", len(bs.LatentContradictions()))
	}
}

func TestAddRuleReaudits(t *testing.T) {
	bs := newTestSystem(domain.StrategyCoexist, domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal")),
	))
	if len(bs.LatentContradictions()) != 0 {
		t.Fatal("expected no latent contradictions yet")
	}

	bs.AddRule(domain.NewRule(
		domain.Leaf("is", "?x", "human"),
		domain.StatementConsequence(domain.NewStatement("is", "?x", "mortal").Negate()),
	))
	if len(bs.LatentContradictions()) != 1 {
		t.Fatal("expected the new rule to surface a latent contradiction")
	}
}
