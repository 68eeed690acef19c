package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/shiftwise/compliance/timesheet"
)

// PostgresTimesheetStore implements TimesheetStore backed by PostgreSQL.
type PostgresTimesheetStore struct {
	db *sql.DB
}

func NewPostgresTimesheetStore(db *sql.DB) *PostgresTimesheetStore {
	return &PostgresTimesheetStore{db: db}
}

func (s *PostgresTimesheetStore) LoadTimesheetWithEntries(ctx context.Context, id string) (timesheet.Timesheet, []timesheet.Entry, error) {
	var ts timesheet.Timesheet
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, week_start, status, submitted_at, created_at, updated_at
		FROM timesheets
		WHERE id = $1
	`, id).Scan(&ts.ID, &ts.EmployeeID, &ts.WeekStart, &ts.Status,
		&ts.SubmittedAt, &ts.CreatedAt, &ts.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return timesheet.Timesheet{}, nil, fmt.Errorf("timesheet %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return timesheet.Timesheet{}, nil, fmt.Errorf("failed to load timesheet: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timesheet_id, start_at, end_at, task_code, break_taken
		FROM timesheet_entries
		WHERE timesheet_id = $1
		ORDER BY start_at ASC
	`, id)
	if err != nil {
		return timesheet.Timesheet{}, nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		if err := rows.Scan(&e.ID, &e.TimesheetID, &e.Start, &e.End, &e.TaskCode, &e.BreakTaken); err != nil {
			return timesheet.Timesheet{}, nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return timesheet.Timesheet{}, nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return ts, entries, nil
}

func (s *PostgresTimesheetStore) LoadEmployee(ctx context.Context, id string) (timesheet.Employee, error) {
	var e timesheet.Employee
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, birth_date, active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`, id).Scan(&e.ID, &e.FirstName, &e.LastName, &e.BirthDate, &e.Active,
		&e.CreatedAt, &e.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return timesheet.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return timesheet.Employee{}, fmt.Errorf("failed to load employee: %w", err)
	}
	return e, nil
}

func (s *PostgresTimesheetStore) LoadEmployeeDocuments(ctx context.Context, employeeID string) ([]timesheet.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, doc_type, issued_at, COALESCE(expires_at, '0001-01-01'::date), created_at
		FROM documents
		WHERE employee_id = $1
		ORDER BY created_at ASC
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	defer rows.Close()

	var docs []timesheet.Document
	for rows.Next() {
		var d timesheet.Document
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Type, &d.IssuedAt, &d.ExpiresAt, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		// Sentinel date round-trips as the zero "never expires" value.
		if d.ExpiresAt.Year() == 1 {
			d.ExpiresAt = time.Time{}
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// PostgresAuditStore implements AuditStore backed by PostgreSQL.
type PostgresAuditStore struct {
	db *sql.DB
}

func NewPostgresAuditStore(db *sql.DB) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

func (s *PostgresAuditStore) RecordComplianceCheck(ctx context.Context, rec AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_checks
			(id, timesheet_id, passed, rules_evaluated, violation_count, result, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.TimesheetID, rec.Passed, rec.RulesEvaluated,
		rec.ViolationCount, []byte(rec.Result), rec.CheckedAt)

	if err != nil {
		return fmt.Errorf("failed to record compliance check: %w", err)
	}
	return nil
}

func (s *PostgresAuditStore) ListByTimesheet(ctx context.Context, timesheetID string) ([]AuditRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timesheet_id, passed, rules_evaluated, violation_count, result, checked_at
		FROM compliance_checks
		WHERE timesheet_id = $1
		ORDER BY checked_at DESC
	`, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance checks: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var result []byte
		if err := rows.Scan(&rec.ID, &rec.TimesheetID, &rec.Passed,
			&rec.RulesEvaluated, &rec.ViolationCount, &result, &rec.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan compliance check: %w", err)
		}
		rec.Result = result
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compliance checks: %w", err)
	}
	return records, nil
}

// PostgresCustomRuleStore implements CustomRuleStore backed by PostgreSQL.
// Age bands are stored as a comma-separated list; the set is small and
// closed, so a join table buys nothing.
type PostgresCustomRuleStore struct {
	db *sql.DB
}

func NewPostgresCustomRuleStore(db *sql.DB) *PostgresCustomRuleStore {
	return &PostgresCustomRuleStore{db: db}
}

func (s *PostgresCustomRuleStore) Add(ctx context.Context, rule *CustomRule) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM custom_rules WHERE id = $1)
	`, rule.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check rule existence: %w", err)
	}
	if exists {
		return fmt.Errorf("custom rule %s: %w", rule.ID, ErrConflict)
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_rules
			(id, name, category, age_bands, expression, message, remediation, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rule.ID, rule.Name, rule.Category, strings.Join(rule.AgeBands, ","),
		rule.Expression, rule.Message, rule.Remediation, rule.Active,
		rule.CreatedAt, rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert custom rule: %w", err)
	}
	return nil
}

func (s *PostgresCustomRuleStore) Get(ctx context.Context, id string) (*CustomRule, error) {
	var rule CustomRule
	var bands string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, age_bands, expression, message, remediation, active, created_at, updated_at
		FROM custom_rules
		WHERE id = $1
	`, id).Scan(&rule.ID, &rule.Name, &rule.Category, &bands, &rule.Expression,
		&rule.Message, &rule.Remediation, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("custom rule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom rule: %w", err)
	}
	rule.AgeBands = splitBands(bands)
	return &rule, nil
}

func (s *PostgresCustomRuleStore) ListActive(ctx context.Context) ([]*CustomRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, age_bands, expression, message, remediation, active, created_at, updated_at
		FROM custom_rules
		WHERE active = true
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom rules: %w", err)
	}
	defer rows.Close()

	var rules []*CustomRule
	for rows.Next() {
		var rule CustomRule
		var bands string
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Category, &bands,
			&rule.Expression, &rule.Message, &rule.Remediation, &rule.Active,
			&rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom rule: %w", err)
		}
		rule.AgeBands = splitBands(bands)
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating custom rules: %w", err)
	}
	return rules, nil
}

func (s *PostgresCustomRuleStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM custom_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("custom rule %s: %w", id, ErrNotFound)
	}
	return nil
}

func splitBands(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
