package domain

// ForkingStrategy selects how a belief system responds to a contradictory
// statement.
type ForkingStrategy string

const (
	// StrategyCoexist forks a reality holding both the old fact and its negation.
	StrategyCoexist ForkingStrategy = "coexist"
	// StrategyPreserve drops the contradictory statement; no fork.
	StrategyPreserve ForkingStrategy = "preserve"
	// StrategyPrioritizeNew forks with the new fact carrying a higher priority
	// than the fact it contradicts.
	StrategyPrioritizeNew ForkingStrategy = "prioritize_new"
	// StrategyPrioritizeOld forks with the new fact carrying a lower priority
	// than the fact it contradicts.
	StrategyPrioritizeOld ForkingStrategy = "prioritize_old"
)

// PriorityAdjustment is the delta applied by the prioritizing strategies.
const PriorityAdjustment = 0.1

func ValidForkingStrategy(s string) bool {
	switch ForkingStrategy(s) {
	case StrategyCoexist, StrategyPreserve, StrategyPrioritizeNew, StrategyPrioritizeOld:
		return true
	}
	return false
}
