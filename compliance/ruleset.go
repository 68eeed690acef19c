package compliance

import (
	"fmt"
	"sync"
)

// RuleSet is the ordered collection of rules a Checker evaluates. It is
// an explicit value constructed at the composition root and passed in,
// not hidden package state, so test isolation is just building a fresh
// set. Registration order is evaluation order and is stable.
//
// Reads during evaluation are concurrent with custom-rule mutations
// from the admin API, hence the RWMutex.
type RuleSet struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int
}

func NewRuleSet() *RuleSet {
	return &RuleSet{index: make(map[string]int)}
}

// Register appends rules in order. A duplicate id is a hard error:
// silently shadowing a statutory rule would be a compliance gap.
func (s *RuleSet) Register(rules ...Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("rule %q has no id", r.Name)
		}
		if r.Evaluate == nil {
			return fmt.Errorf("rule %s has no evaluate function", r.ID)
		}
		if _, exists := s.index[r.ID]; exists {
			return fmt.Errorf("rule %s is already registered", r.ID)
		}
		s.index[r.ID] = len(s.rules)
		s.rules = append(s.rules, r)
	}
	return nil
}

// Remove deletes a rule by id, preserving the order of the rest.
// Built-in catalog rules are never removed in production; this serves
// the custom-rule admin surface.
func (s *RuleSet) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.rules); j++ {
		s.index[s.rules[j].ID] = j
	}
	return true
}

// Rules returns the registered rules in registration order. The slice
// is a copy; the Rule values themselves are shared and immutable.
func (s *RuleSet) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Rule(nil), s.rules...)
}

// Get returns a rule by id.
func (s *RuleSet) Get(id string) (Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// Len returns the number of registered rules.
func (s *RuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// DefaultRuleSet assembles the built-in catalog: the five statutory
// families in fixed order. Every call returns a fresh independent set.
func DefaultRuleSet() *RuleSet {
	s := NewRuleSet()

	families := [][]Rule{
		DocumentationRules(),
		HourLimitRules(),
		TimeWindowRules(),
		TaskRestrictionRules(),
		BreakRules(),
	}
	for _, family := range families {
		if err := s.Register(family...); err != nil {
			// Duplicate ids in the built-in catalog are a programming
			// error caught by the catalog tests.
			panic(err)
		}
	}
	return s
}
