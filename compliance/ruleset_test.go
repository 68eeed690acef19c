package compliance

import (
	"strings"
	"testing"
)

func stubRule(id string) Rule {
	return Rule{
		ID:        id,
		Name:      "stub " + id,
		Category:  CategoryHourLimit,
		AppliesTo: AllBands,
		Evaluate:  func(c *Context) RuleResult { return Rule{ID: id}.pass() },
	}
}

func TestRegisterPreservesOrder(t *testing.T) {
	s := NewRuleSet()
	if err := s.Register(stubRule("c"), stubRule("a"), stubRule("b")); err != nil {
		t.Fatalf("Register() err = %v", err)
	}

	got := s.Rules()
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("rules[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	s := NewRuleSet()
	if err := s.Register(stubRule("r1")); err != nil {
		t.Fatalf("first Register() err = %v", err)
	}
	err := s.Register(stubRule("r1"))
	if err == nil {
		t.Fatal("duplicate id accepted")
	}
	if !strings.Contains(err.Error(), "r1") {
		t.Errorf("error %q does not name the offending id", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after rejected registration, want 1", s.Len())
	}
}

func TestRegisterRejectsMalformedRules(t *testing.T) {
	s := NewRuleSet()
	if err := s.Register(Rule{Name: "anonymous"}); err == nil {
		t.Error("rule without id accepted")
	}
	if err := s.Register(Rule{ID: "r2", Name: "inert"}); err == nil {
		t.Error("rule without evaluate function accepted")
	}
}

func TestRemove(t *testing.T) {
	s := NewRuleSet()
	if err := s.Register(stubRule("a"), stubRule("b"), stubRule("c")); err != nil {
		t.Fatalf("Register() err = %v", err)
	}

	if !s.Remove("b") {
		t.Fatal("Remove(b) = false")
	}
	if s.Remove("b") {
		t.Error("second Remove(b) = true")
	}

	got := s.Rules()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("rules after remove = %v", got)
	}
	if r, ok := s.Get("c"); !ok || r.ID != "c" {
		t.Error("Get(c) failed after remove reindexed")
	}
}

func TestDefaultRuleSetCatalog(t *testing.T) {
	s := DefaultRuleSet()
	rules := s.Rules()
	if len(rules) == 0 {
		t.Fatal("default catalog is empty")
	}

	seen := make(map[string]bool)
	for _, r := range rules {
		if seen[r.ID] {
			t.Errorf("duplicate id %s in catalog", r.ID)
		}
		seen[r.ID] = true
		if r.Evaluate == nil {
			t.Errorf("rule %s has no evaluate function", r.ID)
		}
		if len(r.AppliesTo) == 0 {
			t.Errorf("rule %s applies to no bands", r.ID)
		}
	}

	for _, id := range []string{
		"RULE-001", "RULE-005", "RULE-010", "RULE-014",
		"RULE-015", "RULE-017", "RULE-020", "RULE-023",
		"RULE-025", "RULE-026",
	} {
		if !seen[id] {
			t.Errorf("catalog missing %s", id)
		}
	}

	// Families evaluate in a fixed order: documentation first, breaks last.
	if rules[0].Category != CategoryDocumentation {
		t.Errorf("first rule category = %s, want %s", rules[0].Category, CategoryDocumentation)
	}
	if last := rules[len(rules)-1]; last.Category != CategoryBreak {
		t.Errorf("last rule category = %s, want %s", last.Category, CategoryBreak)
	}

	// Independent sets: removing from one leaves another intact.
	s.Remove("RULE-010")
	if _, ok := DefaultRuleSet().Get("RULE-010"); !ok {
		t.Error("DefaultRuleSet() shares state across calls")
	}
}
