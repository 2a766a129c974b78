package engine

import (
	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BeliefSystem owns a set of facts, the rules that operate on them, a mutable
// world state, and the forks spawned to host contradictory realities. It is
// single-threaded by design: no internal locking, and a multi-threaded host
// must serialize access per fork-tree root, since a fork is reachable both
// through parent traversal and via a direct reference.
type BeliefSystem struct {
	id       uuid.UUID
	rules    []domain.Rule
	strategy domain.ForkingStrategy
	engine   *ContradictionEngine
	logger   *zap.Logger

	facts    []domain.Statement
	factKeys map[string]struct{}

	worldState     map[string]any
	operations     map[string]worldStateOp
	effectsApplied map[string]struct{}

	contradictions       []domain.ContradictionRecord
	latentContradictions []domain.ContradictionRecord

	forks []*BeliefSystem

	maxPasses int
	newID     func() uuid.UUID
}

// New constructs a belief system over a copy of the given rules and audits the
// rule set for latent conflicts before any real fact triggers anything.
func New(rules []domain.Rule, engine *ContradictionEngine, strategy domain.ForkingStrategy, logger *zap.Logger) *BeliefSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = NewContradictionEngine(logger)
	}
	if strategy == "" {
		strategy = domain.StrategyCoexist
	}

	bs := &BeliefSystem{
		id:             uuid.New(),
		rules:          append([]domain.Rule(nil), rules...),
		strategy:       strategy,
		engine:         engine,
		logger:         logger,
		factKeys:       make(map[string]struct{}),
		worldState:     make(map[string]any),
		operations:     worldStateOperations(),
		effectsApplied: make(map[string]struct{}),
		maxPasses:      DefaultMaxPasses,
		newID:          uuid.New,
	}
	bs.latentContradictions = engine.AuditRules(bs.rules)
	logger.Info("belief system initialized",
		zap.String("belief_system_id", bs.id.String()),
		zap.String("strategy", string(strategy)),
		zap.Int("rules", len(bs.rules)),
		zap.Int("latent_contradictions", len(bs.latentContradictions)),
	)
	return bs
}

// SetIDGenerator replaces the id source for this system and any forks it
// spawns afterwards. Useful for deterministic tests and external id schemes.
func (bs *BeliefSystem) SetIDGenerator(gen func() uuid.UUID) {
	if gen != nil {
		bs.newID = gen
		bs.id = gen()
	}
}

// SetMaxPasses bounds the inference fixpoint for this system and its future
// forks. n <= 0 restores the default.
func (bs *BeliefSystem) SetMaxPasses(n int) {
	if n <= 0 {
		n = DefaultMaxPasses
	}
	bs.maxPasses = n
}

func (bs *BeliefSystem) ID() uuid.UUID { return bs.id }

func (bs *BeliefSystem) Strategy() domain.ForkingStrategy { return bs.strategy }

// Forks returns the child belief systems in creation order.
func (bs *BeliefSystem) Forks() []*BeliefSystem { return append([]*BeliefSystem(nil), bs.forks...) }

// WorldState returns the live world-state map.
func (bs *BeliefSystem) WorldState() map[string]any { return bs.worldState }

// Rules returns the live rule list. Edits on a parent after a fork do not
// reach the fork: rule lists are copied at fork time.
func (bs *BeliefSystem) Rules() []domain.Rule { return bs.rules }

// AddRule appends a rule and re-audits the rule set for latent conflicts.
func (bs *BeliefSystem) AddRule(rule domain.Rule) {
	bs.rules = append(bs.rules, rule)
	bs.latentContradictions = bs.engine.AuditRules(bs.rules)
}

// Statements returns the facts in insertion order.
func (bs *BeliefSystem) Statements() []domain.Statement {
	return append([]domain.Statement(nil), bs.facts...)
}

// Contradictions returns every statement-level contradiction recorded so far.
func (bs *BeliefSystem) Contradictions() []domain.ContradictionRecord {
	return append([]domain.ContradictionRecord(nil), bs.contradictions...)
}

// LatentContradictions returns the rule-level conflicts found by the
// construction-time audit.
func (bs *BeliefSystem) LatentContradictions() []domain.ContradictionRecord {
	return append([]domain.ContradictionRecord(nil), bs.latentContradictions...)
}

// AddStatement inserts a fact unless it contradicts an existing one. On the
// first conflict it records a ContradictionRecord and returns false without
// mutating the fact set.
func (bs *BeliefSystem) AddStatement(s domain.Statement) bool {
	for i := range bs.facts {
		if bs.engine.Detect(s, bs.facts[i]) {
			existing := bs.facts[i]
			bs.contradictions = append(bs.contradictions, domain.ContradictionRecord{
				Type:       domain.ContradictionStatement,
				Statement1: &s,
				Statement2: &existing,
				Resolution: "Undetermined",
			})
			bs.logger.Warn("contradiction detected",
				zap.String("belief_system_id", bs.id.String()),
				zap.String("statement", s.String()),
				zap.String("existing", existing.String()),
			)
			return false
		}
	}
	bs.insertFact(s)
	return true
}

func (bs *BeliefSystem) insertFact(s domain.Statement) {
	if _, dup := bs.factKeys[s.Key()]; dup {
		return
	}
	bs.factKeys[s.Key()] = struct{}{}
	bs.facts = append(bs.facts, s)
}

// Fork spawns a child belief system with a value-copied rule list and world
// state, the given fact set, and fresh effect/contradiction bookkeeping.
func (bs *BeliefSystem) Fork(facts []domain.Statement) *BeliefSystem {
	fork := New(bs.rules, bs.engine, bs.strategy, bs.logger)
	fork.maxPasses = bs.maxPasses
	fork.newID = bs.newID
	fork.id = bs.newID()
	for _, f := range facts {
		fork.insertFact(f)
	}
	for k, v := range bs.worldState {
		fork.worldState[k] = v
	}
	bs.forks = append(bs.forks, fork)
	bs.logger.Info("belief system forked",
		zap.String("parent_id", bs.id.String()),
		zap.String("fork_id", fork.id.String()),
		zap.Int("facts", len(fork.facts)),
	)
	return fork
}

// handleContradiction applies the forking strategy to a statement that failed
// insertion. The contradiction itself was already logged by AddStatement.
func (bs *BeliefSystem) handleContradiction(stmt domain.Statement) *BeliefSystem {
	if bs.strategy == domain.StrategyPreserve {
		return nil
	}

	facts := bs.Statements()

	switch bs.strategy {
	case domain.StrategyPrioritizeNew, domain.StrategyPrioritizeOld:
		var old *domain.Statement
		for i := range bs.facts {
			if bs.engine.Detect(stmt, bs.facts[i]) {
				old = &bs.facts[i]
				break
			}
		}
		if old != nil {
			adjustment := domain.PriorityAdjustment
			if bs.strategy == domain.StrategyPrioritizeOld {
				adjustment = -domain.PriorityAdjustment
			}
			facts = append(facts, stmt.WithPriority(old.Priority+adjustment))
		} else {
			// Nothing specific to prioritize against; plain insertion.
			facts = append(facts, stmt)
		}
	default: // coexist
		facts = append(facts, stmt)
	}

	return bs.Fork(facts)
}

// Simulate feeds statements through the belief system: existing forks first
// (depth-first, same input), then the receiver's own processing. Expected
// non-monotonicity never surfaces as an error.
func (bs *BeliefSystem) Simulate(inputs []domain.Statement) *SimulationResult {
	for _, fork := range bs.forks {
		fork.Simulate(inputs)
	}

	fork := bs.processInitialStatements(inputs)

	result := &SimulationResult{Fork: fork, Converged: true}
	if fork == nil {
		derived, applied, offending, converged := bs.performInference()
		if offending != nil {
			// An inferred fact contradicted the current reality: this call's
			// derivations are discarded and the offending fact drives the fork.
			result.Fork = bs.handleContradiction(*offending)
		} else {
			result.DerivedFacts = derived
			result.AppliedRules = applied
			result.Converged = converged
		}
	}

	bs.logger.Info("simulation completed",
		zap.String("belief_system_id", bs.id.String()),
		zap.Int("derived_facts", len(result.DerivedFacts)),
		zap.Int("applied_rules", len(result.AppliedRules)),
		zap.Bool("forked", result.Fork != nil),
	)
	return result
}

// processInitialStatements adds the inputs in order. The first contradiction
// invokes the strategy and stops processing the remaining inputs for this call.
func (bs *BeliefSystem) processInitialStatements(inputs []domain.Statement) *BeliefSystem {
	for _, stmt := range inputs {
		if !bs.AddStatement(stmt) {
			return bs.handleContradiction(stmt)
		}
	}
	return nil
}

// performInference runs the fixpoint over the current facts, inserts every
// derived fact, and executes effects for new (rule, bindings) applications.
// A derived fact that contradicts the current facts aborts with that fact.
func (bs *BeliefSystem) performInference() (derived []domain.Statement, applied []domain.Rule, offending *domain.Statement, converged bool) {
	chainDerived, applications, err := RunInferenceChain(bs.facts, bs.rules, bs.maxPasses)
	converged = err == nil
	if err != nil {
		bs.logger.Warn("inference did not converge, using partial closure",
			zap.String("belief_system_id", bs.id.String()),
			zap.Int("max_passes", bs.maxPasses),
		)
	}

	for _, fact := range chainDerived {
		if !bs.AddStatement(fact) {
			f := fact
			return nil, nil, &f, converged
		}
	}

	appliedSet := make(map[string]struct{})
	for _, app := range applications {
		if _, dup := appliedSet[app.Rule.Key()]; !dup {
			appliedSet[app.Rule.Key()] = struct{}{}
			applied = append(applied, app.Rule)
		}

		hasEffect := false
		for _, consequence := range app.Rule.Consequences {
			if consequence.Effect != nil {
				hasEffect = true
				break
			}
		}
		if !hasEffect {
			continue
		}

		key := applicationKey(app.Rule, app.Bindings)
		if _, done := bs.effectsApplied[key]; done {
			continue
		}
		bs.effectsApplied[key] = struct{}{}
		for _, consequence := range app.Rule.Consequences {
			if consequence.Effect != nil {
				bs.executeEffect(*consequence.Effect, app.Bindings)
			}
		}
	}

	return chainDerived, applied, nil, converged
}

// executeEffect applies a single world-state mutation. Unknown operations and
// unsupported targets are logged and skipped so a malformed rule cannot crash
// an otherwise-consistent simulation.
func (bs *BeliefSystem) executeEffect(effect domain.Effect, bindings domain.Bindings) {
	if effect.Target != domain.TargetWorldState {
		bs.logger.Warn("unsupported effect target", zap.String("target", effect.Target))
		return
	}
	op, ok := bs.operations[effect.Operation]
	if !ok {
		bs.logger.Warn("unknown effect operation", zap.String("operation", effect.Operation))
		return
	}

	key := bindings.Resolve(effect.Attribute)

	value := effect.Value
	if token, isString := value.(string); isString && domain.IsVariable(token) {
		if bound, found := bindings[token]; found {
			value = bound
		}
	}

	current := bs.worldState[key]
	next := op(current, value)
	bs.worldState[key] = next
	bs.logger.Debug("world state change",
		zap.String("key", key),
		zap.Any("old", current),
		zap.Any("new", next),
		zap.String("operation", effect.Operation),
	)
}
