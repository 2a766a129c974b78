package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SimulationStore struct {
	db *pgxpool.Pool
}

func NewSimulationStore(db *pgxpool.Pool) *SimulationStore {
	return &SimulationStore{db: db}
}

func (s *SimulationStore) Create(ctx context.Context, rec *domain.SimulationRecord) error {
	initial, err := json.Marshal(rec.InitialStatements)
	if err != nil {
		return fmt.Errorf("marshal initial statements: %w", err)
	}
	derived, err := json.Marshal(rec.DerivedFacts)
	if err != nil {
		return fmt.Errorf("marshal derived facts: %w", err)
	}
	applied, err := json.Marshal(rec.AppliedRules)
	if err != nil {
		return fmt.Errorf("marshal applied rules: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO simulations (id, belief_system_id, initial_statements, derived_facts, applied_rules, forked_belief_system_id, converged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.BeliefSystemID, initial, derived, applied, rec.ForkedBeliefSystem, rec.Converged,
	)
	return err
}

func (s *SimulationStore) History(ctx context.Context, beliefSystemID uuid.UUID) ([]domain.SimulationRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, belief_system_id, initial_statements, derived_facts, applied_rules, forked_belief_system_id, converged, created_at
		 FROM simulations WHERE belief_system_id = $1
		 ORDER BY created_at ASC`,
		beliefSystemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SimulationRecord
	for rows.Next() {
		var (
			rec       domain.SimulationRecord
			initial   []byte
			derived   []byte
			applied   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.BeliefSystemID, &initial, &derived, &applied, &rec.ForkedBeliefSystem, &rec.Converged, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(initial, &rec.InitialStatements); err != nil {
			return nil, fmt.Errorf("unmarshal initial statements: %w", err)
		}
		if err := json.Unmarshal(derived, &rec.DerivedFacts); err != nil {
			return nil, fmt.Errorf("unmarshal derived facts: %w", err)
		}
		if err := json.Unmarshal(applied, &rec.AppliedRules); err != nil {
			return nil, fmt.Errorf("unmarshal applied rules: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
