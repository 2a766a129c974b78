package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BeliefSystemStore struct {
	db *pgxpool.Pool
}

func NewBeliefSystemStore(db *pgxpool.Pool) *BeliefSystemStore {
	return &BeliefSystemStore{db: db}
}

func (s *BeliefSystemStore) Create(ctx context.Context, id uuid.UUID, name string, strategy domain.ForkingStrategy) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO belief_systems (id, name, strategy)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		id, name, string(strategy),
	)
	return err
}

func (s *BeliefSystemStore) CreateFork(ctx context.Context, parentID, forkID uuid.UUID, strategy domain.ForkingStrategy) error {
	var parentName string
	err := s.db.QueryRow(ctx,
		`SELECT name FROM belief_systems WHERE id = $1`, parentID,
	).Scan(&parentName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO belief_systems (id, name, strategy, parent_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		forkID, parentName+" (fork)", string(strategy), parentID,
	)
	return err
}

func (s *BeliefSystemStore) AddRule(ctx context.Context, beliefSystemID uuid.UUID, rule domain.Rule) (uuid.UUID, error) {
	condition, err := json.Marshal(rule.Condition)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal condition: %w", err)
	}
	consequences, err := json.Marshal(rule.Consequences)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal consequences: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx,
		`INSERT INTO belief_system_rules (belief_system_id, condition, consequences)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (belief_system_id, condition, consequences) DO UPDATE SET condition = EXCLUDED.condition
		 RETURNING id`,
		beliefSystemID, condition, consequences,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
