package compliance

import (
	"fmt"
	"time"

	"github.com/shiftwise/compliance/timesheet"
)

// Time-of-day limits per band, as minutes after midnight Eastern.
// Latest-end limits are keyed to the worked date's school-day status.
type dayWindow struct {
	earliestStart   int
	latestSchool    int
	latestNonSchool int
}

var windowByBand = map[AgeBand]dayWindow{
	Band12To13: {earliestStart: 7 * 60, latestSchool: 19 * 60, latestNonSchool: 21 * 60},
	Band14To15: {earliestStart: 7 * 60, latestSchool: 19 * 60, latestNonSchool: 21 * 60},
	Band16To17: {earliestStart: 6 * 60, latestSchool: 22 * 60, latestNonSchool: 24 * 60},
}

// TimeWindowRules returns the time-of-day family.
func TimeWindowRules() []Rule {
	return []Rule{
		schoolHoursRule(),
		earliestStartRule(),
		latestEndRule(),
	}
}

// schoolHoursRule forbids under-16 employees from working during school
// hours on a school day.
func schoolHoursRule() Rule {
	r := Rule{
		ID:        "RULE-015",
		Name:      "No work during school hours",
		Category:  CategoryTimeWindow,
		AppliesTo: []AgeBand{Band12To13, Band14To15},
	}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string

		for _, date := range c.Dates {
			band := c.DailyBands[date]
			if band != Band12To13 && band != Band14To15 {
				continue
			}
			if !c.SchoolDays[date] {
				continue
			}
			dayFlagged := false
			for _, e := range c.DailyEntries[date] {
				if overlapsSchoolHours(e) {
					entries = append(entries, e.ID)
					dayFlagged = true
				}
			}
			if dayFlagged {
				dates = append(dates, date)
			}
		}

		if len(dates) == 0 {
			return r.pass()
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Shift on %s overlaps school hours (%02d:00-%02d:00); employees under 16 may not work while school is in session",
				dates[0], schoolStartMinute/60, schoolEndMinute/60),
			Remediation:     "Move the flagged shifts outside school hours or confirm the day was not a school day.",
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}

func earliestStartRule() Rule {
	r := Rule{ID: "RULE-016", Name: "Earliest daily start time", Category: CategoryTimeWindow, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string
		var first string
		var firstLimit int

		for _, date := range c.Dates {
			band := c.DailyBands[date]
			if !band.Minor() {
				continue
			}
			limit := windowByBand[band].earliestStart
			dayFlagged := false
			for _, e := range c.DailyEntries[date] {
				if minuteOfDay(e.Start) < limit {
					entries = append(entries, e.ID)
					dayFlagged = true
				}
			}
			if dayFlagged {
				dates = append(dates, date)
				if first == "" {
					first, firstLimit = date, limit
				}
			}
		}

		if len(dates) == 0 {
			return r.pass()
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Shift on %s starts before %s, the earliest permitted start for a %s-year-old",
				first, formatMinute(firstLimit), c.DailyBands[first]),
			Remediation:     "Reschedule the flagged shifts to start no earlier than the permitted time.",
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}

func latestEndRule() Rule {
	r := Rule{ID: "RULE-017", Name: "Latest daily end time", Category: CategoryTimeWindow, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string
		var first string
		var firstLimit int

		for _, date := range c.Dates {
			band := c.DailyBands[date]
			if !band.Minor() {
				continue
			}
			w := windowByBand[band]
			limit := w.latestNonSchool
			if c.SchoolDays[date] {
				limit = w.latestSchool
			}
			dayFlagged := false
			for _, e := range c.DailyEntries[date] {
				if endOffsetMinutes(e) > limit {
					entries = append(entries, e.ID)
					dayFlagged = true
				}
			}
			if dayFlagged {
				dates = append(dates, date)
				if first == "" {
					first, firstLimit = date, limit
				}
			}
		}

		if len(dates) == 0 {
			return r.pass()
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Shift on %s ends after %s, the latest permitted end for a %s-year-old that day",
				first, formatMinute(firstLimit), c.DailyBands[first]),
			Remediation:     "End the flagged shifts by the permitted time for the employee's age band.",
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}

func minuteOfDay(t time.Time) int {
	lt := t.In(Eastern)
	return lt.Hour()*60 + lt.Minute()
}

// endOffsetMinutes returns the entry's end as minutes after its start
// date's midnight. A shift crossing midnight yields a value past 1440,
// so late-night overruns are caught without special-casing the date.
func endOffsetMinutes(e timesheet.Entry) int {
	return minuteOfDay(e.Start) + e.Minutes()
}

func overlapsSchoolHours(e timesheet.Entry) bool {
	return minuteOfDay(e.Start) < schoolEndMinute && endOffsetMinutes(e) > schoolStartMinute
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", (m/60)%24, m%60)
}
