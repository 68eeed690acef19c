package compliance

import (
	"fmt"
	"time"
)

const (
	// A minor working more than this on one day must have a confirmed
	// meal break that day.
	mealBreakThresholdMinutes = 6 * 60

	// Minimum rest between the last shift of one day and the first
	// shift of the next for a minor.
	minRestBetweenShifts = 12 * time.Hour
)

// BreakRules returns the mandatory-break family.
func BreakRules() []Rule {
	return []Rule{
		mealBreakRule(),
		restPeriodRule(),
	}
}

// mealBreakRule (RULE-025): every day a minor works more than six hours
// must carry at least one entry with a confirmed break. All violating
// dates are collected; the message is built from the first by calendar
// order so the supervisor sees a concrete day, while AffectedDates and
// AffectedEntries carry the full set.
func mealBreakRule() Rule {
	r := Rule{ID: "RULE-025", Name: "Meal break after six hours", Category: CategoryBreak, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string

		for _, date := range c.Dates {
			if c.DailyAges[date] >= 18 {
				continue
			}
			if c.DailyMinutes[date] <= mealBreakThresholdMinutes {
				continue
			}
			confirmed := false
			for _, e := range c.DailyEntries[date] {
				if e.BreakTaken {
					confirmed = true
					break
				}
			}
			if !confirmed {
				dates = append(dates, date)
				entries = append(entries, entryIDs(c.DailyEntries[date])...)
			}
		}

		if len(dates) == 0 {
			return r.pass()
		}

		first := dates[0]
		return r.fail(Violation{
			Message: fmt.Sprintf("Worked %s hours on %s with no confirmed meal break; minors must take a 30-minute break when working more than 6 hours",
				describeHours(c.DailyMinutes[first]), first),
			Remediation:     "Record the meal break taken on each flagged day, or correct the entry hours if the day was shorter.",
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}

// restPeriodRule (RULE-026): a minor's first shift of a day must start
// at least twelve hours after the previous day's last shift ended.
func restPeriodRule() Rule {
	r := Rule{ID: "RULE-026", Name: "Twelve-hour rest between shifts", Category: CategoryBreak, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string
		var first string

		for i := 1; i < len(c.Dates); i++ {
			prev, cur := c.Dates[i-1], c.Dates[i]
			if c.DailyAges[cur] >= 18 {
				continue
			}
			prevEntries := c.DailyEntries[prev]
			curEntries := c.DailyEntries[cur]
			if len(prevEntries) == 0 || len(curEntries) == 0 {
				continue
			}

			lastEnd := prevEntries[0].End
			for _, e := range prevEntries[1:] {
				if e.End.After(lastEnd) {
					lastEnd = e.End
				}
			}
			firstStart := curEntries[0].Start

			if firstStart.Sub(lastEnd) < minRestBetweenShifts {
				dates = append(dates, cur)
				entries = append(entries, curEntries[0].ID)
				if first == "" {
					first = cur
				}
			}
		}

		if len(dates) == 0 {
			return r.pass()
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Shift on %s starts less than 12 hours after the previous day's shift ended",
				first),
			Remediation:     "Schedule at least twelve hours between a minor's shifts on consecutive days.",
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}
