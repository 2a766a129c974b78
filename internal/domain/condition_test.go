package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestQuantifierConstructorsRejectNonLeafChildren(t *testing.T) {
	nested := And(Leaf("is", "?x", "human"))

	if _, err := Exists(nested); !errors.Is(err, ErrQuantifierChild) {
		t.Fatalf("expected ErrQuantifierChild from Exists, got %v", err)
	}
	if _, err := None(nested); !errors.Is(err, ErrQuantifierChild) {
		t.Fatalf("expected ErrQuantifierChild from None, got %v", err)
	}
	if _, err := Forall(nested, Leaf("is", "?x", "mortal")); !errors.Is(err, ErrQuantifierChild) {
		t.Fatalf("expected ErrQuantifierChild from Forall, got %v", err)
	}
	if _, err := Count(nested, ">", 1); !errors.Is(err, ErrQuantifierChild) {
		t.Fatalf("expected ErrQuantifierChild from Count, got %v", err)
	}
}

func TestCountRejectsUnknownComparator(t *testing.T) {
	if _, err := Count(Leaf("is", "?x", "human"), "~", 1); !errors.Is(err, ErrUnknownComparator) {
		t.Fatalf("expected ErrUnknownComparator, got %v", err)
	}
}

func TestLeafEvaluateBindsVariables(t *testing.T) {
	cond := Leaf("is", "?x", "human")
	facts := []Statement{NewStatement("is", "socrates", "human")}

	bindings, ok := cond.Evaluate(facts)
	if !ok {
		t.Fatal("expected match")
	}
	if bindings["?x"] != "socrates" {
		t.Fatalf("expected ?x bound to socrates, got %v", bindings["?x"])
	}
}

func TestLeafEvaluatePrefixMatch(t *testing.T) {
	cond := Leaf("says", "?speaker")
	facts := []Statement{NewStatement("says", "alice", "hello", "world")}

	bindings, ok := cond.Evaluate(facts)
	if !ok {
		t.Fatal("expected prefix match against longer fact")
	}
	if bindings["?speaker"] != "alice" {
		t.Fatalf("expected ?speaker bound to alice, got %v", bindings["?speaker"])
	}

	// The fact may not carry fewer terms than the pattern.
	short := Leaf("says", "?speaker", "?a", "?b", "?c")
	if _, ok := short.Evaluate(facts); ok {
		t.Fatal("expected no match when the pattern is longer than the fact")
	}
}

func TestLeafEvaluateWildcardCapture(t *testing.T) {
	cond := Leaf("says", "?speaker", "*speech")
	facts := []Statement{NewStatement("says", "alice", "hello", "world")}

	bindings, ok := cond.Evaluate(facts)
	if !ok {
		t.Fatal("expected wildcard match")
	}
	if bindings["?speaker"] != "alice" {
		t.Fatalf("expected ?speaker bound to alice, got %v", bindings["?speaker"])
	}
	speech, ok := bindings["?speech"].([]string)
	if !ok || len(speech) != 2 || speech[0] != "hello" || speech[1] != "world" {
		t.Fatalf("expected ?speech bound to [hello world], got %v", bindings["?speech"])
	}
}

func TestLeafEvaluateRespectsNegation(t *testing.T) {
	positive := Leaf("is", "?x", "mortal")
	negative := NegatedLeaf("is", "?x", "mortal")

	negatedFact := []Statement{NewStatement("is", "socrates", "mortal").Negate()}
	if _, ok := positive.Evaluate(negatedFact); ok {
		t.Fatal("expected a positive pattern not to match a negated fact")
	}
	bindings, ok := negative.Evaluate(negatedFact)
	if !ok {
		t.Fatal("expected a negated pattern to match a negated fact")
	}
	if bindings["?x"] != "socrates" {
		t.Fatalf("expected ?x bound to socrates, got %v", bindings["?x"])
	}

	plainFact := []Statement{NewStatement("is", "socrates", "mortal")}
	if _, ok := negative.Evaluate(plainFact); ok {
		t.Fatal("expected a negated pattern not to match a plain fact")
	}
}

func TestLeafEvaluateVerbSynonyms(t *testing.T) {
	cond := LeafSynonyms("owns", []string{"?x", "?y"}, []string{"possesses", "has"})
	facts := []Statement{NewStatement("possesses", "alice", "book")}

	if _, ok := cond.Evaluate(facts); !ok {
		t.Fatal("expected synonym verb to match")
	}
}

func TestAndEvaluateSharedVariableConsistency(t *testing.T) {
	cond := And(
		Leaf("is", "?x", "human"),
		Leaf("owns", "?x", "?thing"),
	)
	facts := []Statement{
		NewStatement("is", "socrates", "human"),
		NewStatement("owns", "plato", "scroll"),
		NewStatement("owns", "socrates", "cup"),
	}

	bindings, ok := cond.Evaluate(facts)
	if !ok {
		t.Fatal("expected a consistent assignment")
	}
	if bindings["?x"] != "socrates" || bindings["?thing"] != "cup" {
		t.Fatalf("expected socrates/cup, got %v", bindings)
	}
}

func TestAndEvaluateRequiresDistinctFacts(t *testing.T) {
	cond := And(
		Leaf("is", "?x", "human"),
		Leaf("is", "?y", "human"),
	)
	facts := []Statement{NewStatement("is", "socrates", "human")}

	if _, ok := cond.Evaluate(facts); ok {
		t.Fatal("expected no match: both children would need the same fact")
	}
}

func TestExistsAndNoneEvaluate(t *testing.T) {
	exists, err := Exists(Leaf("is", "?x", "human"))
	if err != nil {
		t.Fatal(err)
	}
	none, err := None(Leaf("is", "?x", "robot"))
	if err != nil {
		t.Fatal(err)
	}
	facts := []Statement{NewStatement("is", "socrates", "human")}

	bindings, ok := exists.Evaluate(facts)
	if !ok {
		t.Fatal("expected EXISTS to hold")
	}
	if len(bindings) != 0 {
		t.Fatalf("expected quantifier bindings to stay closed, got %v", bindings)
	}

	if _, ok := none.Evaluate(facts); !ok {
		t.Fatal("expected NONE to hold with no matching fact")
	}
	if _, ok := none.Evaluate([]Statement{NewStatement("is", "r2d2", "robot")}); ok {
		t.Fatal("expected NONE to fail once a matching fact exists")
	}
}

func TestForallEvaluate(t *testing.T) {
	cond, err := Forall(Leaf("is", "?x", "human"), Leaf("is", "?x", "mortal"))
	if err != nil {
		t.Fatal(err)
	}

	holds := []Statement{
		NewStatement("is", "socrates", "human"),
		NewStatement("is", "socrates", "mortal"),
	}
	if _, ok := cond.Evaluate(holds); !ok {
		t.Fatal("expected FORALL to hold")
	}

	broken := []Statement{
		NewStatement("is", "socrates", "human"),
		NewStatement("is", "plato", "human"),
		NewStatement("is", "socrates", "mortal"),
	}
	if _, ok := cond.Evaluate(broken); ok {
		t.Fatal("expected FORALL to fail for the unproven domain member")
	}

	// Empty domain is vacuously true.
	if _, ok := cond.Evaluate(nil); !ok {
		t.Fatal("expected FORALL over an empty domain to hold")
	}
}

func TestCountEvaluate(t *testing.T) {
	cond, err := Count(Leaf("is", "?x", "human"), ">", 1)
	if err != nil {
		t.Fatal(err)
	}

	one := []Statement{NewStatement("is", "socrates", "human")}
	if _, ok := cond.Evaluate(one); ok {
		t.Fatal("expected count > 1 to fail with a single match")
	}

	two := append(one, NewStatement("is", "plato", "human"))
	if _, ok := cond.Evaluate(two); !ok {
		t.Fatal("expected count > 1 to hold with two matches")
	}
}

func TestEvaluateAllEnumeratesMatches(t *testing.T) {
	cond := Leaf("is", "?x", "human")
	facts := []Statement{
		NewStatement("is", "socrates", "human"),
		NewStatement("is", "plato", "human"),
		NewStatement("is", "rock", "mineral"),
	}

	all := cond.EvaluateAll(facts)
	if len(all) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(all))
	}
	if all[0]["?x"] != "socrates" || all[1]["?x"] != "plato" {
		t.Fatalf("expected fact-order solutions, got %v", all)
	}
}

func TestConditionWireFormRoundTrip(t *testing.T) {
	forall, err := Forall(Leaf("is", "?x", "human"), Leaf("is", "?x", "mortal"))
	if err != nil {
		t.Fatal(err)
	}
	count, err := Count(Leaf("is", "?x", "human"), ">=", 2)
	if err != nil {
		t.Fatal(err)
	}

	cases := []*Condition{
		Leaf("is", "?x", "human"),
		LeafSynonyms("owns", []string{"?x", "?y"}, []string{"has"}),
		And(Leaf("is", "?x", "human"), Leaf("is", "?x", "greek")),
		forall,
		count,
	}

	for _, original := range cases {
		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("marshal %s: %v", original.String(), err)
		}
		var decoded Condition
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", string(data), err)
		}
		if !decoded.Equal(original) {
			t.Fatalf("round trip changed %s into %s", original.String(), decoded.String())
		}
	}
}

func TestConditionWireFieldNames(t *testing.T) {
	data, err := json.Marshal(And(Leaf("is", "?x", "human")))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"and_conditions":[{"verb":"is","terms":["?x","human"]}]}`
	if string(data) != want {
		t.Fatalf("unexpected wire form: %s", string(data))
	}
}

func TestConditionUnmarshalValidates(t *testing.T) {
	var c Condition
	// EXISTS wrapping a non-leaf must be rejected on the wire too.
	payload := `{"exists_condition":{"and_conditions":[{"verb":"is","terms":["?x"]}]}}`
	if err := json.Unmarshal([]byte(payload), &c); err == nil {
		t.Fatal("expected malformed quantifier payload to be rejected")
	}
}
