package compliance

import (
	"fmt"
	"time"

	"github.com/shiftwise/compliance/timesheet"
)

// requiredDocuments lists the documents every minor must have on file,
// with display names for violation messages.
var requiredDocuments = []struct {
	docType timesheet.DocumentType
	display string
}{
	{timesheet.DocWorkPermit, "work permit"},
	{timesheet.DocParentalConsent, "parental consent form"},
	{timesheet.DocProofOfAge, "proof of age"},
	{timesheet.DocSafetyTraining, "safety training certificate"},
}

// DocumentationRules returns the document-validity family. These rules
// apply to every context: adults pass trivially, so not_applicable is
// never produced here.
func DocumentationRules() []Rule {
	rules := []Rule{
		documentRule("RULE-001", "Work permit on file",
			timesheet.DocWorkPermit, "work permit",
			"Obtain a work permit from the issuing school district and upload it to the employee's file."),
		documentRule("RULE-002", "Parental consent on file",
			timesheet.DocParentalConsent, "parental consent form",
			"Have a parent or guardian sign the consent form and upload it to the employee's file."),
		documentRule("RULE-003", "Proof of age on file",
			timesheet.DocProofOfAge, "proof of age",
			"Upload a birth certificate, passport, or state ID establishing the employee's date of birth."),
		documentRule("RULE-004", "Safety training completed",
			timesheet.DocSafetyTraining, "safety training certificate",
			"Schedule the employee for the required safety training and record the completion certificate."),
	}

	rules = append(rules, Rule{
		ID:        "RULE-005",
		Name:      "Documents valid for the full week",
		Category:  CategoryDocumentation,
		AppliesTo: AllBands,
		Evaluate:  documentsCoverWeek,
	})

	return rules
}

// documentRule builds one presence/validity check. The document must be
// on file and valid on the first day of the week; mid-week lapses are
// RULE-005's concern.
func documentRule(id, name string, docType timesheet.DocumentType, display, remediation string) Rule {
	r := Rule{ID: id, Name: name, Category: CategoryDocumentation, AppliesTo: AllBands}
	r.Evaluate = func(c *Context) RuleResult {
		if !c.HasMinorDay() {
			return r.pass()
		}

		doc, ok := bestDocument(c, docType)
		if !ok {
			return r.fail(Violation{
				Message: fmt.Sprintf("No %s on file for %s %s",
					display, c.Employee.FirstName, c.Employee.LastName),
				Remediation: remediation,
			})
		}
		if doc.Expired(civilDate(c.Dates[0])) {
			return r.fail(Violation{
				Message: fmt.Sprintf("The %s on file expired on %s, before the week of %s",
					display, doc.ExpiresAt.Format("2006-01-02"), c.Dates[0]),
				Remediation: remediation,
			})
		}
		return r.pass()
	}
	return r
}

// documentsCoverWeek flags required documents that lapse mid-week while
// the minor still has worked days. Missing or already-expired documents
// are reported by RULE-001 through RULE-004, not here.
func documentsCoverWeek(c *Context) (rr RuleResult) {
	r := Rule{ID: "RULE-005", Name: "Documents valid for the full week", Category: CategoryDocumentation, AppliesTo: AllBands}
	if !c.HasMinorDay() {
		return r.pass()
	}

	var dates []string
	var firstDoc string
	seen := make(map[string]bool)
	for _, req := range requiredDocuments {
		doc, ok := bestDocument(c, req.docType)
		if !ok || doc.Expired(civilDate(c.Dates[0])) {
			continue
		}
		for _, date := range c.Dates {
			if !c.DailyBands[date].Minor() || c.DailyMinutes[date] == 0 {
				continue
			}
			if doc.Expired(civilDate(date)) {
				if !seen[date] {
					dates = append(dates, date)
					seen[date] = true
				}
				if firstDoc == "" {
					firstDoc = req.display
				}
			}
		}
	}

	if len(dates) == 0 {
		return r.pass()
	}
	return r.fail(Violation{
		Message: fmt.Sprintf("The %s expires mid-week and does not cover hours worked on %s",
			firstDoc, dates[0]),
		Remediation:   "Renew the lapsing document so it covers every worked day, or remove the uncovered entries.",
		AffectedDates: dates,
	})
}

// bestDocument returns the employee's document of the given type with
// the longest validity, preferring one that never expires.
func bestDocument(c *Context, docType timesheet.DocumentType) (timesheet.Document, bool) {
	var best timesheet.Document
	found := false
	for _, d := range c.Documents {
		if d.Type != docType {
			continue
		}
		if !found {
			best, found = d, true
			continue
		}
		if best.ExpiresAt.IsZero() {
			continue
		}
		if d.ExpiresAt.IsZero() || d.ExpiresAt.After(best.ExpiresAt) {
			best = d
		}
	}
	return best, found
}

// civilDate parses an ISO week date into midnight Eastern.
func civilDate(date string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, Eastern)
	if err != nil {
		panic(invariantf("malformed context date %q", date))
	}
	return t
}
