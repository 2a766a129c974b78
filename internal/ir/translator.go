package ir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/fabric/internal/domain"
)

// ErrUnsupportedFeature reports an IR construct the engine's condition types
// cannot express.
var ErrUnsupportedFeature = errors.New("unsupported IR feature")

// Translator lowers IR forms onto the engine's primitive types. Disjunctions
// are expanded into disjunctive normal form here: the engine has no OR
// evaluator, so one IR rule may lower to several primitive rules.
type Translator struct{}

func NewTranslator() *Translator {
	return &Translator{}
}

// TranslateStatement lowers an IR statement. The subject becomes the leading
// term; multi-word objects split into individual terms.
func (t *Translator) TranslateStatement(s *Statement) domain.Statement {
	stmt := domain.NewStatement(s.Verb, termsOf(s.Subject, s.Object)...)
	stmt.Negated = s.Negated
	return stmt
}

// TranslateEffect lowers an IR effect onto a world-state effect.
func (t *Translator) TranslateEffect(e *Effect) domain.Effect {
	return domain.NewEffect(e.TargetWorldStateKey, e.EffectOperation, e.EffectValue)
}

// TranslateCondition lowers an IR condition into one primitive condition per
// disjunct. A condition without OR anywhere yields exactly one element.
func (t *Translator) TranslateCondition(c *Condition) ([]*domain.Condition, error) {
	if len(c.Exceptions) > 0 {
		return nil, fmt.Errorf("%w: condition exceptions", ErrUnsupportedFeature)
	}
	if c.Quantifier != "" {
		cond, err := t.translateQuantifier(c)
		if err != nil {
			return nil, err
		}
		return []*domain.Condition{cond}, nil
	}

	switch c.Operator {
	case OperatorLeaf, "":
		return []*domain.Condition{t.leaf(c)}, nil

	case OperatorOr:
		var disjuncts []*domain.Condition
		for _, child := range c.Children {
			sub, err := t.TranslateCondition(child)
			if err != nil {
				return nil, err
			}
			disjuncts = append(disjuncts, sub...)
		}
		if len(disjuncts) == 0 {
			return nil, fmt.Errorf("%w: OR condition with no children", ErrUnsupportedFeature)
		}
		return disjuncts, nil

	case OperatorAnd:
		// Cartesian product of the children's disjuncts: AND over OR becomes
		// one conjunction per combination.
		combinations := [][]*domain.Condition{{}}
		for _, child := range c.Children {
			sub, err := t.TranslateCondition(child)
			if err != nil {
				return nil, err
			}
			var next [][]*domain.Condition
			for _, combo := range combinations {
				for _, disjunct := range sub {
					extended := append(append([]*domain.Condition(nil), combo...), disjunct)
					next = append(next, extended)
				}
			}
			combinations = next
		}

		disjuncts := make([]*domain.Condition, 0, len(combinations))
		for _, combo := range combinations {
			disjuncts = append(disjuncts, conjoin(combo))
		}
		return disjuncts, nil

	default:
		return nil, fmt.Errorf("%w: operator %q", ErrUnsupportedFeature, c.Operator)
	}
}

// TranslateRule lowers an IR rule into primitive rules, one per disjunct of
// its condition.
func (t *Translator) TranslateRule(r *Rule) ([]domain.Rule, error) {
	if r.Condition == nil {
		return nil, fmt.Errorf("%w: rule without condition", ErrUnsupportedFeature)
	}
	disjuncts, err := t.TranslateCondition(r.Condition)
	if err != nil {
		return nil, err
	}

	var consequence domain.Consequence
	switch {
	case r.Effect != nil:
		consequence = domain.EffectConsequence(t.TranslateEffect(r.Effect))
	case r.Statement != nil:
		consequence = domain.StatementConsequence(t.TranslateStatement(r.Statement))
	default:
		return nil, fmt.Errorf("%w: rule without consequence", ErrUnsupportedFeature)
	}

	rules := make([]domain.Rule, 0, len(disjuncts))
	for _, cond := range disjuncts {
		rules = append(rules, domain.NewRule(cond, consequence))
	}
	return rules, nil
}

func (t *Translator) translateQuantifier(c *Condition) (*domain.Condition, error) {
	switch c.Quantifier {
	case QuantifierExists:
		body, err := t.quantifierBody(c, 1)
		if err != nil {
			return nil, err
		}
		return domain.Exists(body[0])
	case QuantifierForall:
		body, err := t.quantifierBody(c, 2)
		if err != nil {
			return nil, err
		}
		return domain.Forall(body[0], body[1])
	case QuantifierNone:
		body, err := t.quantifierBody(c, 1)
		if err != nil {
			return nil, err
		}
		return domain.None(body[0])
	case QuantifierCount:
		body, err := t.quantifierBody(c, 1)
		if err != nil {
			return nil, err
		}
		if c.Object.Number == nil {
			return nil, fmt.Errorf("%w: COUNT condition without numeric threshold", ErrUnsupportedFeature)
		}
		return domain.Count(body[0], c.Operator, int(*c.Object.Number))
	default:
		return nil, fmt.Errorf("%w: quantifier %q", ErrUnsupportedFeature, c.Quantifier)
	}
}

func (t *Translator) quantifierBody(c *Condition, want int) ([]*domain.Condition, error) {
	if len(c.Children) != want {
		return nil, fmt.Errorf("%w: %s quantifier wants %d children, got %d",
			ErrUnsupportedFeature, c.Quantifier, want, len(c.Children))
	}
	out := make([]*domain.Condition, 0, want)
	for _, child := range c.Children {
		if child.Quantifier != "" || (child.Operator != OperatorLeaf && child.Operator != "") {
			return nil, fmt.Errorf("%w: quantifier over non-leaf condition", ErrUnsupportedFeature)
		}
		out = append(out, t.leaf(child))
	}
	return out, nil
}

func (t *Translator) leaf(c *Condition) *domain.Condition {
	if c.Negated {
		return domain.NegatedLeaf(c.Verb, termsOf(c.Subject, c.Object)...)
	}
	return domain.Leaf(c.Verb, termsOf(c.Subject, c.Object)...)
}

func conjoin(conditions []*domain.Condition) *domain.Condition {
	if len(conditions) == 1 {
		return conditions[0]
	}
	return domain.And(conditions...)
}

func termsOf(subject string, object Object) []string {
	var terms []string
	if subject != "" {
		terms = append(terms, subject)
	}
	for _, token := range object.Tokens {
		terms = append(terms, strings.Fields(token)...)
	}
	return terms
}
