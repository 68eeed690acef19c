// Package timesheet holds the persistent domain types shared by the
// compliance engine, the stores, and the HTTP layer.
package timesheet

import "time"

// Employee is a worker whose submitted hours are subject to youth-labor
// checks. BirthDate is a civil date (midnight in the business timezone);
// age is always computed against a specific calendar date, never against
// the submission time.
type Employee struct {
	ID        string
	FirstName string
	LastName  string
	BirthDate time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentType identifies one of the employment documents a minor must
// have on file.
type DocumentType string

const (
	DocWorkPermit      DocumentType = "work_permit"
	DocParentalConsent DocumentType = "parental_consent"
	DocProofOfAge      DocumentType = "proof_of_age"
	DocSafetyTraining  DocumentType = "safety_training"
)

// Document is an employment document on file for an employee. A zero
// ExpiresAt means the document never expires.
type Document struct {
	ID         string
	EmployeeID string
	Type       DocumentType
	IssuedAt   time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the document is invalid on the given civil
// date. Both values are compared by their own calendar fields, so a
// DATE scanned as midnight UTC and a date anchored in the business
// timezone agree on the expiry day.
func (d Document) Expired(on time.Time) bool {
	if d.ExpiresAt.IsZero() {
		return false
	}
	ey, em, ed := d.ExpiresAt.Date()
	oy, om, od := on.Date()
	if ey != oy {
		return ey < oy
	}
	if em != om {
		return em < om
	}
	return ed < od
}

// Timesheet is one employee's submitted week. WeekStart is the Sunday
// that opens the week, as a civil date.
type Timesheet struct {
	ID          string
	EmployeeID  string
	WeekStart   time.Time
	Status      string
	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Entry is a single worked shift segment within a timesheet. BreakTaken
// records the employee's confirmation that a meal break was taken during
// this shift.
type Entry struct {
	ID          string
	TimesheetID string
	Start       time.Time
	End         time.Time
	TaskCode    string
	BreakTaken  bool
}

// Minutes returns the worked duration of the entry in whole minutes.
// Whole-minute bookkeeping keeps daily and weekly totals exact.
func (e Entry) Minutes() int {
	return int(e.End.Sub(e.Start) / time.Minute)
}

// DateIn returns the ISO civil date (YYYY-MM-DD) the entry starts on in
// the given location.
func (e Entry) DateIn(loc *time.Location) string {
	return e.Start.In(loc).Format("2006-01-02")
}

// AgeOn computes a whole-year age on a given date from a birth date.
// Both are treated as civil dates; the birthday itself counts.
func AgeOn(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() ||
		(on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}
