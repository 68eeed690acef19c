package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/compliance/timesheet"
)

// MemoryStore implements TimesheetStore backed by maps. It is the
// fixture store for tests and local development. Thread-safe.
type MemoryStore struct {
	mu         sync.RWMutex
	timesheets map[string]timesheet.Timesheet
	entries    map[string][]timesheet.Entry // keyed by timesheet id
	employees  map[string]timesheet.Employee
	documents  map[string][]timesheet.Document // keyed by employee id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		timesheets: make(map[string]timesheet.Timesheet),
		entries:    make(map[string][]timesheet.Entry),
		employees:  make(map[string]timesheet.Employee),
		documents:  make(map[string][]timesheet.Document),
	}
}

// PutEmployee stores or replaces an employee.
func (s *MemoryStore) PutEmployee(e timesheet.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

// PutDocument appends a document to the employee's file.
func (s *MemoryStore) PutDocument(d timesheet.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.EmployeeID] = append(s.documents[d.EmployeeID], d)
}

// PutTimesheet stores or replaces a timesheet and its entries.
func (s *MemoryStore) PutTimesheet(ts timesheet.Timesheet, entries []timesheet.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timesheets[ts.ID] = ts
	s.entries[ts.ID] = append([]timesheet.Entry(nil), entries...)
}

func (s *MemoryStore) LoadTimesheetWithEntries(_ context.Context, id string) (timesheet.Timesheet, []timesheet.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.timesheets[id]
	if !ok {
		return timesheet.Timesheet{}, nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}
	entries := append([]timesheet.Entry(nil), s.entries[id]...)
	return ts, entries, nil
}

func (s *MemoryStore) LoadEmployee(_ context.Context, id string) (timesheet.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return timesheet.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (s *MemoryStore) LoadEmployeeDocuments(_ context.Context, employeeID string) ([]timesheet.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]timesheet.Document(nil), s.documents[employeeID]...), nil
}

// MemoryAuditStore implements AuditStore backed by a slice. Records are
// returned newest first, matching the postgres implementation.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	records []AuditRecord
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

func (s *MemoryAuditStore) RecordComplianceCheck(_ context.Context, rec AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryAuditStore) ListByTimesheet(_ context.Context, timesheetID string) ([]AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []AuditRecord
	for _, rec := range s.records {
		if rec.TimesheetID == timesheetID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckedAt.After(out[j].CheckedAt)
	})
	return out, nil
}

// MemoryCustomRuleStore implements CustomRuleStore using an in-memory
// map. Thread-safe with RWMutex.
type MemoryCustomRuleStore struct {
	mu    sync.RWMutex
	rules map[string]*CustomRule
	order []string
}

func NewMemoryCustomRuleStore() *MemoryCustomRuleStore {
	return &MemoryCustomRuleStore{rules: make(map[string]*CustomRule)}
}

func (s *MemoryCustomRuleStore) Add(_ context.Context, rule *CustomRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; exists {
		return fmt.Errorf("custom rule %s: %w", rule.ID, ErrConflict)
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	s.rules[rule.ID] = rule
	s.order = append(s.order, rule.ID)
	return nil
}

func (s *MemoryCustomRuleStore) Get(_ context.Context, id string) (*CustomRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[id]
	if !ok {
		return nil, fmt.Errorf("custom rule %s: %w", id, ErrNotFound)
	}
	return rule, nil
}

func (s *MemoryCustomRuleStore) ListActive(_ context.Context) ([]*CustomRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*CustomRule
	for _, id := range s.order {
		if rule, ok := s.rules[id]; ok && rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (s *MemoryCustomRuleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return fmt.Errorf("custom rule %s: %w", id, ErrNotFound)
	}
	delete(s.rules, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
