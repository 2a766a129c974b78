package domain

import (
	"context"

	"github.com/google/uuid"
)

// BeliefSystemStore persists belief systems, their rule sets and fork linkage.
type BeliefSystemStore interface {
	Create(ctx context.Context, id uuid.UUID, name string, strategy ForkingStrategy) error
	CreateFork(ctx context.Context, parentID, forkID uuid.UUID, strategy ForkingStrategy) error
	AddRule(ctx context.Context, beliefSystemID uuid.UUID, rule Rule) (uuid.UUID, error)
}

// StatementStore persists statements under stable ids. Save is an upsert keyed
// on verb, terms and negation; priority is recorded on first insert.
type StatementStore interface {
	Save(ctx context.Context, s Statement) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Statement, error)
}

// SimulationStore persists simulation records and their statement/rule linkage.
type SimulationStore interface {
	Create(ctx context.Context, rec *SimulationRecord) error
	History(ctx context.Context, beliefSystemID uuid.UUID) ([]SimulationRecord, error)
}
