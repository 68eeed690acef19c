package compliance

import "fmt"

// Task code tables. Codes come from the scheduling system's task
// catalog; each table maps code to a display name for messages.
var (
	// Prohibited for every minor.
	hazardousTasks = map[string]string{
		"ROOFING":     "roofing work",
		"EXCAVATION":  "excavation",
		"DEMOLITION":  "demolition",
		"MEAT_SLICER": "operating a power meat slicer",
		"WOOD_SAW":    "operating a power woodworking saw",
		"MINING":      "mining work",
	}

	// Prohibited under 16.
	powerMachineryTasks = map[string]string{
		"BAKERY_MIXER":     "operating a commercial bakery mixer",
		"DOUGH_MACHINE":    "operating a dough machine",
		"BOX_CRUSHER":      "operating a box crusher or baler",
		"POWER_MOWER":      "operating a power mower",
		"FREIGHT_ELEVATOR": "operating a freight elevator",
	}

	// Prohibited under 14.
	cookingTasks = map[string]string{
		"COOKING": "cooking",
		"BAKING":  "baking",
		"FRYER":   "operating a deep fryer",
	}

	// Prohibited for every minor.
	drivingTasks = map[string]string{
		"DRIVING":          "driving a motor vehicle",
		"DELIVERY_DRIVING": "making deliveries by motor vehicle",
	}
)

// TaskRestrictionRules returns the task-eligibility family. Each rule
// checks entry task codes against an age-banded prohibition table.
func TaskRestrictionRules() []Rule {
	return []Rule{
		taskRule("RULE-020", "No hazardous occupations for minors",
			hazardousTasks, MinorBands,
			"Reassign the flagged shifts to tasks approved for minors."),
		taskRule("RULE-021", "No power machinery under 16",
			powerMachineryTasks, []AgeBand{Band12To13, Band14To15},
			"Reassign the flagged shifts; power machinery requires the employee to be at least 16."),
		taskRule("RULE-022", "No cooking tasks under 14",
			cookingTasks, []AgeBand{Band12To13},
			"Reassign the flagged shifts; cooking tasks require the employee to be at least 14."),
		taskRule("RULE-023", "No motor-vehicle operation by minors",
			drivingTasks, MinorBands,
			"Reassign the flagged shifts; driving on the job requires the employee to be 18."),
	}
}

// taskRule flags any entry whose task code is prohibited for the band
// in effect on the entry's date.
func taskRule(id, name string, prohibited map[string]string, bands []AgeBand, remediation string) Rule {
	banded := make(map[AgeBand]bool, len(bands))
	for _, b := range bands {
		banded[b] = true
	}

	r := Rule{ID: id, Name: name, Category: CategoryTaskRestriction, AppliesTo: bands}
	r.Evaluate = func(c *Context) RuleResult {
		var dates []string
		var entries []string
		var firstTask string
		var firstDate string

		for _, date := range c.Dates {
			if !banded[c.DailyBands[date]] {
				continue
			}
			dayFlagged := false
			for _, e := range c.DailyEntries[date] {
				display, bad := prohibited[e.TaskCode]
				if !bad {
					continue
				}
				entries = append(entries, e.ID)
				dayFlagged = true
				if firstTask == "" {
					firstTask, firstDate = display, date
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
			Message: fmt.Sprintf("Entry on %s assigns %s, which is not permitted for a %s-year-old",
				firstDate, firstTask, c.DailyBands[firstDate]),
			Remediation:     remediation,
			AffectedDates:   dates,
			AffectedEntries: entries,
		})
	}
	return r
}
