package domain

import (
	"github.com/google/uuid"
)

// SimulationRecord is the durable mirror of one simulate call: the triggering
// statements alongside everything the call produced, under a stable id. The
// persistence collaborator consumes it; the engine never depends on whether or
// how it is stored.
type SimulationRecord struct {
	ID                 uuid.UUID   `json:"id"`
	BeliefSystemID     uuid.UUID   `json:"belief_system_id"`
	InitialStatements  []Statement `json:"initial_statements"`
	DerivedFacts       []Statement `json:"derived_facts"`
	AppliedRules       []Rule      `json:"applied_rules"`
	ForkedBeliefSystem *uuid.UUID  `json:"forked_belief_system_id,omitempty"`
	Converged          bool        `json:"converged"`
}
