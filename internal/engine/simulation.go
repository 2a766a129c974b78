package engine

import (
	"github.com/Harshitk-cp/fabric/internal/domain"
)

// SimulationResult is the transient outcome of one Simulate call on one belief
// system: the facts derived by this call, the rules that applied, and the fork
// created if a contradiction forced one. Converged is false when the inference
// fixpoint hit its pass ceiling and the closure is partial.
type SimulationResult struct {
	DerivedFacts []domain.Statement `json:"derived_facts"`
	AppliedRules []domain.Rule      `json:"applied_rules"`
	Fork         *BeliefSystem      `json:"-"`
	Converged    bool               `json:"converged"`
}

// Record builds the durable mirror of a simulate call for the persistence
// collaborator.
func (bs *BeliefSystem) Record(inputs []domain.Statement, res *SimulationResult) *domain.SimulationRecord {
	rec := &domain.SimulationRecord{
		ID:                bs.newID(),
		BeliefSystemID:    bs.id,
		InitialStatements: append([]domain.Statement(nil), inputs...),
		DerivedFacts:      append([]domain.Statement(nil), res.DerivedFacts...),
		AppliedRules:      append([]domain.Rule(nil), res.AppliedRules...),
		Converged:         res.Converged,
	}
	if res.Fork != nil {
		id := res.Fork.ID()
		rec.ForkedBeliefSystem = &id
	}
	return rec
}
