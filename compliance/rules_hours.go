package compliance

import "fmt"

// hourCaps holds the statutory hour limits for one minor band, in
// minutes. Weekly caps depend on whether any day of the week is a
// school day; daily caps on whether that specific day is.
type hourCaps struct {
	schoolDay     int
	nonSchoolDay  int
	schoolWeek    int
	nonSchoolWeek int
	maxDays       int
}

var hourCapsByBand = map[AgeBand]hourCaps{
	Band12To13: {schoolDay: 2 * 60, nonSchoolDay: 4 * 60, schoolWeek: 12 * 60, nonSchoolWeek: 24 * 60, maxDays: 6},
	Band14To15: {schoolDay: 3 * 60, nonSchoolDay: 8 * 60, schoolWeek: 18 * 60, nonSchoolWeek: 40 * 60, maxDays: 6},
	Band16To17: {schoolDay: 8 * 60, nonSchoolDay: 10 * 60, schoolWeek: 32 * 60, nonSchoolWeek: 48 * 60, maxDays: 6},
}

// HourLimitRules returns the hour-cap family. No statutory cap exists
// for adults, so every rule here is not_applicable to an 18+ week.
func HourLimitRules() []Rule {
	return []Rule{
		dailyCapRule("RULE-010", "School-day hour limit", true),
		dailyCapRule("RULE-011", "Non-school-day hour limit", false),
		weeklyCapRule("RULE-012", "School-week hour limit", true),
		weeklyCapRule("RULE-013", "Non-school-week hour limit", false),
		maxDaysRule(),
	}
}

func dailyCapRule(id, name string, schoolDay bool) Rule {
	r := Rule{ID: id, Name: name, Category: CategoryHourLimit, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string
		var first string
		var firstCap int

		for _, date := range c.Dates {
			band := c.DailyBands[date]
			if !band.Minor() || c.SchoolDays[date] != schoolDay {
				continue
			}
			caps := hourCapsByBand[band]
			limit := caps.nonSchoolDay
			if schoolDay {
				limit = caps.schoolDay
			}
			if c.DailyMinutes[date] > limit {
				dates = append(dates, date)
				entries = append(entries, entryIDs(c.DailyEntries[date])...)
				if first == "" {
					first, firstCap = date, limit
				}
			}
		}

		if len(dates) == 0 {
			return r.pass()
		}

		kind := "non-school day"
		if schoolDay {
			kind = "school day"
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Worked %s hours on %s; the limit for a %s-year-old on a %s is %s hours",
				describeHours(c.DailyMinutes[first]), first, c.DailyBands[first], kind, describeHours(firstCap)),
			Remediation:     "Reduce the scheduled hours on the flagged days to the statutory daily limit.",
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}

func weeklyCapRule(id, name string, schoolWeek bool) Rule {
	r := Rule{ID: id, Name: name, Category: CategoryHourLimit, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		if c.IsSchoolWeek() != schoolWeek {
			return r.pass()
		}

		// A mid-week birthday never loosens the week's cap: the
		// youngest band present sets the limit.
		band := c.YoungestBand()
		if band == BandAdult {
			return r.pass()
		}
		caps := hourCapsByBand[band]
		limit := caps.nonSchoolWeek
		kind := "non-school week"
		if schoolWeek {
			limit = caps.schoolWeek
			kind = "school week"
		}

		if c.WeekMinutes <= limit {
			return r.pass()
		}

		var dates []string
		for _, date := range c.Dates {
			if c.DailyMinutes[date] > 0 {
				dates = append(dates, date)
			}
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Worked %s hours in the week of %s; the limit for a %s-year-old in a %s is %s hours",
				describeHours(c.WeekMinutes), c.Dates[0], band, kind, describeHours(limit)),
			Remediation:   "Reduce total weekly hours to the statutory limit before resubmitting.",
			AffectedDates: dates,
		})
	}
	return r
}

func maxDaysRule() Rule {
	r := Rule{ID: "RULE-014", Name: "Maximum worked days per week", Category: CategoryHourLimit, AppliesTo: MinorBands}
	r.Evaluate = func(c *Context) RuleResult {
		band := c.YoungestBand()
		if band == BandAdult {
			return r.pass()
		}
		if c.DaysWorked <= hourCapsByBand[band].maxDays {
			return r.pass()
		}

		var dates []string
		for _, date := range c.Dates {
			if c.DailyMinutes[date] > 0 {
				dates = append(dates, date)
			}
		}
		return r.fail(Violation{
			Message: fmt.Sprintf("Worked %d days in the week of %s; minors may work at most %d days per week",
				c.DaysWorked, c.Dates[0], hourCapsByBand[band].maxDays),
			Remediation:   "Give the employee at least one full day off during the week.",
			AffectedDates: dates,
		})
	}
	return r
}
