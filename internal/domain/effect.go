package domain

import "fmt"

// TargetWorldState is the only effect target the engine executes today.
const TargetWorldState = "world_state"

// Effect is a declarative world-state mutation carried as a rule consequence.
// Attribute and Value may be `?var` templates resolved from the triggering
// bindings at execution time; any other value is a literal.
type Effect struct {
	Target    string `json:"target"`
	Attribute string `json:"attribute"`
	Operation string `json:"operation"`
	Value     any    `json:"value"`
}

// NewEffect builds a world-state effect.
func NewEffect(attribute, operation string, value any) Effect {
	return Effect{Target: TargetWorldState, Attribute: attribute, Operation: operation, Value: value}
}

func (e Effect) String() string {
	return fmt.Sprintf("Effect: %s %s.%s to %v", e.Operation, e.Target, e.Attribute, e.Value)
}
