package domain

import "fmt"

// ContradictionType discriminates what kind of conflict a record describes.
type ContradictionType string

const (
	// ContradictionStatement marks a concrete statement/statement conflict.
	ContradictionStatement ContradictionType = "statement"
	// ContradictionRuleLatent marks a rule/rule conflict found via a
	// synthesized hypothetical fact, before any real fact triggered either rule.
	ContradictionRuleLatent ContradictionType = "rule_latent"
)

// ContradictionRecord is the durable trace of a detected conflict. It is data,
// not an error: contradictions are expected here.
type ContradictionRecord struct {
	Type       ContradictionType `json:"type"`
	Statement1 *Statement        `json:"statement1,omitempty"`
	Statement2 *Statement        `json:"statement2,omitempty"`
	RuleA      *Rule             `json:"rule_a,omitempty"`
	RuleB      *Rule             `json:"rule_b,omitempty"`
	Resolution string            `json:"resolution"`
}

func (r ContradictionRecord) String() string {
	switch r.Type {
	case ContradictionRuleLatent:
		return fmt.Sprintf("ContradictionRecord(type=%s, resolution=%s, ruleA=%v, ruleB=%v)",
			r.Type, r.Resolution, r.RuleA, r.RuleB)
	default:
		return fmt.Sprintf("ContradictionRecord(type=%s, resolution=%s, s1=%v, s2=%v)",
			r.Type, r.Resolution, r.Statement1, r.Statement2)
	}
}
