package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/shiftwise/compliance/store"
	"github.com/shiftwise/compliance/timesheet"
)

// Fixture weeks. Both start on a Sunday; March is in the school year,
// July is summer recess.
const (
	schoolWeekStart = "2026-03-01"
	summerWeekStart = "2026-07-05"
)

// Fixture birth dates, chosen for their age during the fixture weeks.
const (
	birth13 = "2012-08-01" // 13 all of March 2026
	birth14 = "2011-05-10" // 14 all of 2026 until May
	birth15 = "2010-08-01" // 15 during both fixture weeks
	birth16 = "2009-09-01" // 16 during both fixture weeks
	birth19 = "2006-07-01" // 19 during both fixture weeks
)

func mustDate(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", date, Eastern)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	return d
}

// clockTime builds an instant on a civil date, e.g. at(t, "2026-03-02", "16:30").
func clockTime(t *testing.T, date, hm string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hm, Eastern)
	if err != nil {
		t.Fatalf("bad fixture time %q %q: %v", date, hm, err)
	}
	return ts
}

// shift builds a plain entry; shiftWithBreak marks the break confirmed;
// taskShift assigns a task code.
func shift(t *testing.T, id, date, start, end string) timesheet.Entry {
	t.Helper()
	return timesheet.Entry{
		ID:          id,
		TimesheetID: "ts-1",
		Start:       clockTime(t, date, start),
		End:         clockTime(t, date, end),
	}
}

func shiftWithBreak(t *testing.T, id, date, start, end string) timesheet.Entry {
	e := shift(t, id, date, start, end)
	e.BreakTaken = true
	return e
}

func taskShift(t *testing.T, id, date, start, end, task string) timesheet.Entry {
	e := shift(t, id, date, start, end)
	e.TaskCode = task
	return e
}

// fullDocuments returns a complete, never-expiring document set.
func fullDocuments(t *testing.T, employeeID string) []timesheet.Document {
	t.Helper()
	issued := mustDate(t, "2025-09-01")
	var docs []timesheet.Document
	for i, dt := range []timesheet.DocumentType{
		timesheet.DocWorkPermit,
		timesheet.DocParentalConsent,
		timesheet.DocProofOfAge,
		timesheet.DocSafetyTraining,
	} {
		docs = append(docs, timesheet.Document{
			ID:         "doc-" + string(rune('a'+i)),
			EmployeeID: employeeID,
			Type:       dt,
			IssuedAt:   issued,
		})
	}
	return docs
}

// seedStore loads one employee, their documents, and one timesheet into
// a fresh memory store.
func seedStore(t *testing.T, birthDate, weekStart string, entries []timesheet.Entry, docs []timesheet.Document) *store.MemoryStore {
	t.Helper()
	ms := store.NewMemoryStore()
	ms.PutEmployee(timesheet.Employee{
		ID:        "emp-1",
		FirstName: "Jordan",
		LastName:  "Reyes",
		BirthDate: mustDate(t, birthDate),
		Active:    true,
	})
	for _, d := range docs {
		ms.PutDocument(d)
	}
	ms.PutTimesheet(timesheet.Timesheet{
		ID:         "ts-1",
		EmployeeID: "emp-1",
		WeekStart:  mustDate(t, weekStart),
		Status:     "submitted",
	}, entries)
	return ms
}

// buildTestContext derives a context through the real builder.
func buildTestContext(t *testing.T, birthDate, weekStart string, entries []timesheet.Entry, docs []timesheet.Document) *Context {
	t.Helper()
	builder := NewContextBuilder(seedStore(t, birthDate, weekStart, entries, docs))
	c, err := builder.Build(context.Background(), "ts-1")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return c
}

// evalRule finds a rule by id in the default catalog and evaluates it
// the way the engine would, applicability included.
func evalRule(t *testing.T, id string, c *Context) RuleResult {
	t.Helper()
	rule, ok := DefaultRuleSet().Get(id)
	if !ok {
		t.Fatalf("rule %s not in default catalog", id)
	}
	if !rule.appliesTo(c) {
		return rule.notApplicable()
	}
	return rule.Evaluate(c)
}
