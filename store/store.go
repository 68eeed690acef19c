// Package store defines the persistence collaborators the compliance
// engine consumes, with in-memory and PostgreSQL implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shiftwise/compliance/timesheet"
)

// Sentinel errors for store facts. Implementations return these
// (optionally wrapped) so callers can translate them without inspecting
// driver errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// TimesheetStore is the read boundary the compliance context builder
// depends on. Load calls may block on I/O; cancellation is the caller's
// responsibility through ctx.
type TimesheetStore interface {
	// LoadTimesheetWithEntries returns the timesheet and its entries,
	// or ErrNotFound if the id does not resolve.
	LoadTimesheetWithEntries(ctx context.Context, id string) (timesheet.Timesheet, []timesheet.Entry, error)

	// LoadEmployee returns the employee, or ErrNotFound.
	LoadEmployee(ctx context.Context, id string) (timesheet.Employee, error)

	// LoadEmployeeDocuments returns all documents on file for the
	// employee. An employee with no documents yields an empty slice.
	LoadEmployeeDocuments(ctx context.Context, employeeID string) ([]timesheet.Document, error)
}

// AuditRecord is one durably logged compliance check. Result holds the
// full serialized check result so audit history is self-describing
// without re-deriving from raw timesheet data.
type AuditRecord struct {
	ID             string
	TimesheetID    string
	Passed         bool
	RulesEvaluated int
	ViolationCount int
	Result         json.RawMessage
	CheckedAt      time.Time
}

// AuditStore persists compliance check results for regulatory history.
// Writes are best-effort from the engine's point of view: a failed
// append never fails the check itself.
type AuditStore interface {
	RecordComplianceCheck(ctx context.Context, rec AuditRecord) error
	ListByTimesheet(ctx context.Context, timesheetID string) ([]AuditRecord, error)
}

// CustomRule is a supervisor-defined rule persisted alongside the
// built-in catalog. Expression is a CEL expression over the derived
// weekly facts; it must evaluate to a boolean where true means the
// timesheet complies.
type CustomRule struct {
	ID          string
	Name        string
	Category    string
	AgeBands    []string
	Expression  string
	Message     string
	Remediation string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CustomRuleStore manages persistence of supervisor-defined rules.
type CustomRuleStore interface {
	Add(ctx context.Context, rule *CustomRule) error
	Get(ctx context.Context, id string) (*CustomRule, error)
	ListActive(ctx context.Context) ([]*CustomRule, error)
	Delete(ctx context.Context, id string) error
}
