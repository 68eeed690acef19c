package compliance

import (
	"testing"

	"github.com/shiftwise/compliance/timesheet"
)

func TestMealBreakExactlySixHoursPasses(t *testing.T) {
	entries := []timesheet.Entry{
		shift(t, "e1", "2026-07-06", "09:00", "15:00"),
	}
	c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))

	if got := evalRule(t, "RULE-025", c); got.Status != StatusPass {
		t.Errorf("exactly 6 hours: status = %s, want pass", got.Status)
	}
}

func TestMealBreakOverSixHoursNeedsConfirmation(t *testing.T) {
	t.Run("unconfirmed", func(t *testing.T) {
		entries := []timesheet.Entry{
			shift(t, "e1", "2026-07-06", "09:00", "15:01"),
		}
		c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))
		got := evalRule(t, "RULE-025", c)
		if got.Status != StatusFail {
			t.Fatalf("status = %s, want fail", got.Status)
		}
		if got.Violation.AffectedDates[0] != "2026-07-06" {
			t.Errorf("AffectedDates = %v", got.Violation.AffectedDates)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		entries := []timesheet.Entry{
			shiftWithBreak(t, "e1", "2026-07-06", "09:00", "16:30"),
		}
		c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))
		if got := evalRule(t, "RULE-025", c); got.Status != StatusPass {
			t.Errorf("status = %s, want pass", got.Status)
		}
	})
}

// The threshold applies to the day's total, not to any single entry.
func TestMealBreakSplitShiftsAggregate(t *testing.T) {
	entries := []timesheet.Entry{
		shift(t, "e1", "2026-07-06", "08:00", "12:00"),
		shift(t, "e2", "2026-07-06", "13:00", "16:30"),
	}
	c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))

	got := evalRule(t, "RULE-025", c)
	if got.Status != StatusFail {
		t.Fatalf("7.5 aggregate hours, no break: status = %s, want fail", got.Status)
	}
	if len(got.Violation.AffectedEntries) != 2 {
		t.Errorf("AffectedEntries = %v, want both entries of the day", got.Violation.AffectedEntries)
	}

	// A confirmed break on either entry of the day satisfies the rule.
	entries[1].BreakTaken = true
	c = buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))
	if got := evalRule(t, "RULE-025", c); got.Status != StatusPass {
		t.Errorf("status = %s after confirming break, want pass", got.Status)
	}
}

func TestMealBreakCollectsEveryViolatingDay(t *testing.T) {
	entries := []timesheet.Entry{
		shift(t, "mon", "2026-07-06", "09:00", "16:30"),
		shiftWithBreak(t, "tue", "2026-07-07", "09:00", "16:30"),
		shift(t, "wed", "2026-07-08", "09:00", "16:30"),
	}
	c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))

	got := evalRule(t, "RULE-025", c)
	if got.Status != StatusFail {
		t.Fatalf("status = %s, want fail", got.Status)
	}
	want := []string{"2026-07-06", "2026-07-08"}
	if len(got.Violation.AffectedDates) != len(want) {
		t.Fatalf("AffectedDates = %v, want %v", got.Violation.AffectedDates, want)
	}
	for i, d := range want {
		if got.Violation.AffectedDates[i] != d {
			t.Errorf("AffectedDates[%d] = %s, want %s", i, got.Violation.AffectedDates[i], d)
		}
	}
}

func TestMealBreakNotRequiredForAdults(t *testing.T) {
	// Born 2008-07-08: adult from Wednesday of the July week on.
	entries := []timesheet.Entry{
		shift(t, "tue", "2026-07-07", "09:00", "16:30"),
		shift(t, "thu", "2026-07-09", "09:00", "16:30"),
	}
	c := buildTestContext(t, "2008-07-08", summerWeekStart, entries, fullDocuments(t, "emp-1"))

	got := evalRule(t, "RULE-025", c)
	if got.Status != StatusFail {
		t.Fatalf("status = %s, want fail for the minor day only", got.Status)
	}
	if len(got.Violation.AffectedDates) != 1 || got.Violation.AffectedDates[0] != "2026-07-07" {
		t.Errorf("AffectedDates = %v, want only the day before the birthday", got.Violation.AffectedDates)
	}
}

func TestRestPeriodBetweenConsecutiveDays(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		entries := []timesheet.Entry{
			shift(t, "mon", "2026-07-06", "14:00", "21:00"),
			shiftWithBreak(t, "mon2", "2026-07-06", "12:00", "13:00"),
			shift(t, "tue", "2026-07-07", "08:00", "12:00"),
		}
		c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))
		got := evalRule(t, "RULE-026", c)
		if got.Status != StatusFail {
			t.Fatalf("11 hour gap: status = %s, want fail", got.Status)
		}
		if len(got.Violation.AffectedDates) != 1 || got.Violation.AffectedDates[0] != "2026-07-07" {
			t.Errorf("AffectedDates = %v, want [2026-07-07]", got.Violation.AffectedDates)
		}
	})

	t.Run("exactly twelve hours", func(t *testing.T) {
		entries := []timesheet.Entry{
			shift(t, "mon", "2026-07-06", "14:00", "20:00"),
			shift(t, "tue", "2026-07-07", "08:00", "12:00"),
		}
		c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))
		if got := evalRule(t, "RULE-026", c); got.Status != StatusPass {
			t.Errorf("12 hour gap: status = %s, want pass", got.Status)
		}
	})

	t.Run("day off in between", func(t *testing.T) {
		entries := []timesheet.Entry{
			shift(t, "mon", "2026-07-06", "14:00", "21:00"),
			shift(t, "wed", "2026-07-08", "08:00", "12:00"),
		}
		c := buildTestContext(t, birth16, summerWeekStart, entries, fullDocuments(t, "emp-1"))
		if got := evalRule(t, "RULE-026", c); got.Status != StatusPass {
			t.Errorf("non-consecutive days: status = %s, want pass", got.Status)
		}
	})
}

func TestBreakRulesNotApplicableToAdultWeek(t *testing.T) {
	entries := []timesheet.Entry{
		shift(t, "e1", "2026-07-06", "08:00", "18:00"),
	}
	c := buildTestContext(t, birth19, summerWeekStart, entries, nil)

	for _, id := range []string{"RULE-025", "RULE-026"} {
		if got := evalRule(t, id, c); got.Status != StatusNotApplicable {
			t.Errorf("%s status = %s for adult week, want not_applicable", id, got.Status)
		}
	}
}
