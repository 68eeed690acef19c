package compliance

import (
	"strings"
	"testing"

	"github.com/shiftwise/compliance/timesheet"
)

func TestDocumentRulesPassWithFullFile(t *testing.T) {
	c := buildTestContext(t, birth15, schoolWeekStart, nil, fullDocuments(t, "emp-1"))
	for _, id := range []string{"RULE-001", "RULE-002", "RULE-003", "RULE-004", "RULE-005"} {
		if got := evalRule(t, id, c); got.Status != StatusPass {
			t.Errorf("%s status = %s, want pass", id, got.Status)
		}
	}
}

func TestDocumentRulesPassForAdults(t *testing.T) {
	c := buildTestContext(t, birth19, schoolWeekStart, nil, nil)
	for _, id := range []string{"RULE-001", "RULE-002", "RULE-003", "RULE-004", "RULE-005"} {
		if got := evalRule(t, id, c); got.Status != StatusPass {
			t.Errorf("%s status = %s for adult, want pass", id, got.Status)
		}
	}
}

func TestDocumentMissing(t *testing.T) {
	var docs []timesheet.Document
	for _, d := range fullDocuments(t, "emp-1") {
		if d.Type != timesheet.DocSafetyTraining {
			docs = append(docs, d)
		}
	}
	c := buildTestContext(t, birth15, schoolWeekStart, nil, docs)

	got := evalRule(t, "RULE-004", c)
	if got.Status != StatusFail {
		t.Fatalf("RULE-004 status = %s, want fail", got.Status)
	}
	if !strings.Contains(got.Violation.Message, "safety training") {
		t.Errorf("message %q does not name the document", got.Violation.Message)
	}
	if got := evalRule(t, "RULE-001", c); got.Status != StatusPass {
		t.Errorf("RULE-001 status = %s, want pass", got.Status)
	}
}

func TestDocumentExpiredBeforeWeek(t *testing.T) {
	docs := fullDocuments(t, "emp-1")
	for i := range docs {
		if docs[i].Type == timesheet.DocWorkPermit {
			docs[i].ExpiresAt = mustDate(t, "2026-02-15")
		}
	}
	c := buildTestContext(t, birth15, schoolWeekStart, nil, docs)

	got := evalRule(t, "RULE-001", c)
	if got.Status != StatusFail {
		t.Fatalf("RULE-001 status = %s, want fail", got.Status)
	}
	if !strings.Contains(got.Violation.Message, "2026-02-15") {
		t.Errorf("message %q does not name the expiry date", got.Violation.Message)
	}
	// Already-expired documents are not RULE-005's concern.
	if got := evalRule(t, "RULE-005", c); got.Status != StatusPass {
		t.Errorf("RULE-005 status = %s, want pass", got.Status)
	}
}

func TestDocumentValidOnWeekStartPasses(t *testing.T) {
	docs := fullDocuments(t, "emp-1")
	for i := range docs {
		if docs[i].Type == timesheet.DocWorkPermit {
			docs[i].ExpiresAt = mustDate(t, schoolWeekStart)
		}
	}
	c := buildTestContext(t, birth15, schoolWeekStart, nil, docs)
	if got := evalRule(t, "RULE-001", c); got.Status != StatusPass {
		t.Errorf("document expiring on the week start day: status = %s, want pass", got.Status)
	}
}

func TestDocumentLapsesMidWeek(t *testing.T) {
	docs := fullDocuments(t, "emp-1")
	for i := range docs {
		if docs[i].Type == timesheet.DocWorkPermit {
			docs[i].ExpiresAt = mustDate(t, "2026-03-03") // Tuesday
		}
	}
	entries := []timesheet.Entry{
		shift(t, "tue", "2026-03-03", "16:00", "18:00"),
		shift(t, "thu", "2026-03-05", "16:00", "18:00"),
	}
	c := buildTestContext(t, birth15, schoolWeekStart, entries, docs)

	// Valid at week start, so the presence check passes.
	if got := evalRule(t, "RULE-001", c); got.Status != StatusPass {
		t.Errorf("RULE-001 status = %s, want pass", got.Status)
	}

	got := evalRule(t, "RULE-005", c)
	if got.Status != StatusFail {
		t.Fatalf("RULE-005 status = %s, want fail", got.Status)
	}
	if len(got.Violation.AffectedDates) != 1 || got.Violation.AffectedDates[0] != "2026-03-05" {
		t.Errorf("AffectedDates = %v, want only the uncovered worked day", got.Violation.AffectedDates)
	}
}

func TestDocumentLapseWithoutWorkedDaysPasses(t *testing.T) {
	docs := fullDocuments(t, "emp-1")
	for i := range docs {
		if docs[i].Type == timesheet.DocWorkPermit {
			docs[i].ExpiresAt = mustDate(t, "2026-03-03")
		}
	}
	entries := []timesheet.Entry{
		shift(t, "mon", "2026-03-02", "16:00", "18:00"),
	}
	c := buildTestContext(t, birth15, schoolWeekStart, entries, docs)
	if got := evalRule(t, "RULE-005", c); got.Status != StatusPass {
		t.Errorf("no work after the lapse: status = %s, want pass", got.Status)
	}
}

func TestBestDocumentPrefersLongestValidity(t *testing.T) {
	issued := mustDate(t, "2025-09-01")
	docs := []timesheet.Document{
		{ID: "old", EmployeeID: "emp-1", Type: timesheet.DocWorkPermit, IssuedAt: issued, ExpiresAt: mustDate(t, "2026-01-01")},
		{ID: "renewed", EmployeeID: "emp-1", Type: timesheet.DocWorkPermit, IssuedAt: issued, ExpiresAt: mustDate(t, "2027-01-01")},
		{ID: "consent", EmployeeID: "emp-1", Type: timesheet.DocParentalConsent, IssuedAt: issued},
		{ID: "age", EmployeeID: "emp-1", Type: timesheet.DocProofOfAge, IssuedAt: issued},
		{ID: "training", EmployeeID: "emp-1", Type: timesheet.DocSafetyTraining, IssuedAt: issued},
	}
	c := buildTestContext(t, birth15, schoolWeekStart, nil, docs)

	// The expired permit is shadowed by the renewal.
	if got := evalRule(t, "RULE-001", c); got.Status != StatusPass {
		t.Errorf("RULE-001 status = %s with a renewed permit, want pass", got.Status)
	}

	doc, ok := bestDocument(c, timesheet.DocWorkPermit)
	if !ok || doc.ID != "renewed" {
		t.Errorf("bestDocument = %+v, want the renewal", doc)
	}
}
