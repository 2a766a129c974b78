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

type StatementStore struct {
	db *pgxpool.Pool
}

func NewStatementStore(db *pgxpool.Pool) *StatementStore {
	return &StatementStore{db: db}
}

// Save upserts a statement keyed on verb, terms and negation and returns the
// row id, new or existing. Priority is recorded on first insert.
func (s *StatementStore) Save(ctx context.Context, stmt domain.Statement) (uuid.UUID, error) {
	terms, err := json.Marshal(stmt.Terms)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal terms: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx,
		`INSERT INTO statements (verb, terms, negated, priority)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (verb, terms, negated) DO UPDATE SET verb = EXCLUDED.verb
		 RETURNING id`,
		stmt.Verb, terms, stmt.Negated, stmt.Priority,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *StatementStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Statement, error) {
	var (
		stmt  domain.Statement
		terms []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT verb, terms, negated, priority FROM statements WHERE id = $1`,
		id,
	).Scan(&stmt.Verb, &terms, &stmt.Negated, &stmt.Priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(terms, &stmt.Terms); err != nil {
		return nil, fmt.Errorf("unmarshal terms: %w", err)
	}
	return &stmt, nil
}
