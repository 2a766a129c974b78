package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/Harshitk-cp/fabric/internal/engine"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBeliefSystemNotFound   = errors.New("belief system not found")
	ErrBeliefSystemNameEmpty  = errors.New("name is required")
	ErrInvalidForkingStrategy = errors.New("invalid forking strategy")
	ErrNoStatements           = errors.New("at least one statement is required")
)

// BeliefService owns the live fork trees. Belief systems are in-memory
// engine state; the stores record a durable trail of what happened. A single
// mutex serializes all mutation so concurrent API calls cannot interleave
// inference passes on the same tree.
type BeliefService struct {
	mu        sync.Mutex
	roots     []*engine.BeliefSystem
	index     map[uuid.UUID]*engine.BeliefSystem
	engine    *engine.ContradictionEngine
	bsStore   domain.BeliefSystemStore
	stmtStore domain.StatementStore
	simStore  domain.SimulationStore
	maxPasses int
	logger    *zap.Logger
}

func NewBeliefService(bs domain.BeliefSystemStore, ss domain.StatementStore, sims domain.SimulationStore, maxPasses int, logger *zap.Logger) *BeliefService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeliefService{
		index:     make(map[uuid.UUID]*engine.BeliefSystem),
		engine:    engine.NewContradictionEngine(logger),
		bsStore:   bs,
		stmtStore: ss,
		simStore:  sims,
		maxPasses: maxPasses,
		logger:    logger,
	}
}

// Create builds a new root belief system with the given rules.
func (s *BeliefService) Create(ctx context.Context, name string, strategy domain.ForkingStrategy, rules []domain.Rule) (*engine.BeliefSystem, error) {
	if name == "" {
		return nil, ErrBeliefSystemNameEmpty
	}
	if strategy == "" {
		strategy = domain.StrategyCoexist
	}
	if !domain.ValidForkingStrategy(string(strategy)) {
		return nil, ErrInvalidForkingStrategy
	}
	for _, r := range rules {
		if r.Condition == nil {
			return nil, domain.ErrConditionShape
		}
		if err := r.Condition.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bs := engine.New(rules, s.engine, strategy, s.logger)
	if s.maxPasses > 0 {
		bs.SetMaxPasses(s.maxPasses)
	}
	s.roots = append(s.roots, bs)
	s.index[bs.ID()] = bs

	if s.bsStore != nil {
		if err := s.bsStore.Create(ctx, bs.ID(), name, strategy); err != nil {
			s.logger.Warn("failed to persist belief system", zap.String("belief_system_id", bs.ID().String()), zap.Error(err))
		}
		for _, r := range rules {
			if _, err := s.bsStore.AddRule(ctx, bs.ID(), r); err != nil {
				s.logger.Warn("failed to persist rule", zap.String("belief_system_id", bs.ID().String()), zap.Error(err))
			}
		}
	}

	return bs, nil
}

// Get returns the belief system with the given ID, root or fork.
func (s *BeliefService) Get(ctx context.Context, id uuid.UUID) (*engine.BeliefSystem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, ok := s.index[id]
	if !ok {
		return nil, ErrBeliefSystemNotFound
	}
	return bs, nil
}

// AddRule appends a rule to an existing belief system and re-audits the rule
// set for latent conflicts.
func (s *BeliefService) AddRule(ctx context.Context, id uuid.UUID, rule domain.Rule) error {
	if rule.Condition == nil {
		return domain.ErrConditionShape
	}
	if err := rule.Condition.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bs, ok := s.index[id]
	if !ok {
		return ErrBeliefSystemNotFound
	}
	bs.AddRule(rule)

	if s.bsStore != nil {
		if _, err := s.bsStore.AddRule(ctx, id, rule); err != nil {
			s.logger.Warn("failed to persist rule", zap.String("belief_system_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

// Simulate feeds statements into a belief system and returns the outcome.
// Any fork created along the way becomes addressable through the index.
func (s *BeliefService) Simulate(ctx context.Context, id uuid.UUID, inputs []domain.Statement) (*engine.SimulationResult, *domain.SimulationRecord, error) {
	if len(inputs) == 0 {
		return nil, nil, ErrNoStatements
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bs, ok := s.index[id]
	if !ok {
		return nil, nil, ErrBeliefSystemNotFound
	}

	result := bs.Simulate(inputs)
	s.indexForks(ctx, bs)

	record := bs.Record(inputs, result)
	if s.stmtStore != nil {
		for _, stmt := range append(append([]domain.Statement{}, inputs...), result.DerivedFacts...) {
			if _, err := s.stmtStore.Save(ctx, stmt); err != nil {
				s.logger.Warn("failed to persist statement", zap.Error(err))
			}
		}
	}
	if s.simStore != nil {
		if err := s.simStore.Create(ctx, record); err != nil {
			s.logger.Warn("failed to persist simulation", zap.String("simulation_id", record.ID.String()), zap.Error(err))
		}
	}

	return result, record, nil
}

// indexForks walks the fork tree under bs and registers every fork that is
// not yet addressable. Simulate propagates into existing forks before the
// receiver, so a single call can spawn forks anywhere in the subtree, not just
// on the addressed system. Caller holds s.mu.
func (s *BeliefService) indexForks(ctx context.Context, bs *engine.BeliefSystem) {
	for _, fork := range bs.Forks() {
		if _, known := s.index[fork.ID()]; !known {
			s.index[fork.ID()] = fork
			if s.bsStore != nil {
				if err := s.bsStore.CreateFork(ctx, bs.ID(), fork.ID(), fork.Strategy()); err != nil {
					s.logger.Warn("failed to persist fork", zap.String("fork_id", fork.ID().String()), zap.Error(err))
				}
			}
		}
		s.indexForks(ctx, fork)
	}
}

// Statements returns the current fact set of a belief system.
func (s *BeliefService) Statements(ctx context.Context, id uuid.UUID) ([]domain.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, ok := s.index[id]
	if !ok {
		return nil, ErrBeliefSystemNotFound
	}
	return bs.Statements(), nil
}

// Contradictions returns both runtime and latent contradictions for a
// belief system.
func (s *BeliefService) Contradictions(ctx context.Context, id uuid.UUID) ([]domain.ContradictionRecord, []domain.ContradictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, ok := s.index[id]
	if !ok {
		return nil, nil, ErrBeliefSystemNotFound
	}
	return bs.Contradictions(), bs.LatentContradictions(), nil
}

// Forks returns the direct forks of a belief system.
func (s *BeliefService) Forks(ctx context.Context, id uuid.UUID) ([]*engine.BeliefSystem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, ok := s.index[id]
	if !ok {
		return nil, ErrBeliefSystemNotFound
	}
	return bs.Forks(), nil
}

// WorldState returns a copy of a belief system's world state.
func (s *BeliefService) WorldState(ctx context.Context, id uuid.UUID) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, ok := s.index[id]
	if !ok {
		return nil, ErrBeliefSystemNotFound
	}
	state := make(map[string]any, len(bs.WorldState()))
	for k, v := range bs.WorldState() {
		state[k] = v
	}
	return state, nil
}

// History returns the persisted simulation history for a belief system.
func (s *BeliefService) History(ctx context.Context, id uuid.UUID) ([]domain.SimulationRecord, error) {
	s.mu.Lock()
	_, ok := s.index[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrBeliefSystemNotFound
	}
	if s.simStore == nil {
		return nil, nil
	}
	return s.simStore.History(ctx, id)
}
