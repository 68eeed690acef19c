package compliance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shiftwise/compliance/store"
	"github.com/shiftwise/compliance/timesheet"
)

// Context is the derived dataset all rules evaluate against. It is
// built once per check and immutable thereafter. Daily maps share the
// same key set: the seven ISO dates of the timesheet's Sunday-to-
// Saturday week.
type Context struct {
	Timesheet timesheet.Timesheet
	Employee  timesheet.Employee
	Documents []timesheet.Document

	// Dates holds the week's ISO dates in calendar order. Rules
	// iterate Dates rather than ranging over maps so violation
	// ordering is deterministic.
	Dates []string

	DailyMinutes map[string]int
	DailyAges    map[string]int
	DailyBands   map[string]AgeBand
	DailyEntries map[string][]timesheet.Entry
	SchoolDays   map[string]bool

	WeekMinutes int
	DaysWorked  int

	bandPresent map[AgeBand]bool
}

// HoursOn returns the worked hours for a date. The date must be one of
// the context's week dates.
func (c *Context) HoursOn(date string) float64 {
	minutes, ok := c.DailyMinutes[date]
	if !ok {
		panic(invariantf("date %s missing from daily hours", date))
	}
	return float64(minutes) / 60
}

// WeekHours returns the total worked hours across the week.
func (c *Context) WeekHours() float64 {
	return float64(c.WeekMinutes) / 60
}

// HasMinorDay reports whether any day of the week falls in a minor band.
func (c *Context) HasMinorDay() bool {
	for _, band := range MinorBands {
		if c.bandPresent[band] {
			return true
		}
	}
	return false
}

// YoungestBand returns the most restrictive minor band present in the
// week, or BandAdult if there is none. Weekly caps use the youngest
// band so a mid-week birthday never loosens the week's limit.
func (c *Context) YoungestBand() AgeBand {
	for _, band := range MinorBands {
		if c.bandPresent[band] {
			return band
		}
	}
	return BandAdult
}

// IsSchoolWeek reports whether any day of the week is a school day.
func (c *Context) IsSchoolWeek() bool {
	for _, date := range c.Dates {
		if c.SchoolDays[date] {
			return true
		}
	}
	return false
}

// ContextBuilder loads a timesheet's data and derives the compliance
// context. It borrows timesheet data from the store for the duration of
// one check and never writes.
type ContextBuilder struct {
	store    store.TimesheetStore
	calendar SchoolCalendar
}

func NewContextBuilder(ts store.TimesheetStore) *ContextBuilder {
	return NewContextBuilderWithCalendar(ts, StandardCalendar{})
}

func NewContextBuilderWithCalendar(ts store.TimesheetStore, cal SchoolCalendar) *ContextBuilder {
	return &ContextBuilder{store: ts, calendar: cal}
}

// Build loads and derives the context for a timesheet. store.ErrNotFound
// propagates when the id, or the owning employee, does not resolve.
func (b *ContextBuilder) Build(ctx context.Context, timesheetID string) (*Context, error) {
	ts, entries, err := b.store.LoadTimesheetWithEntries(ctx, timesheetID)
	if err != nil {
		return nil, err
	}

	emp, err := b.store.LoadEmployee(ctx, ts.EmployeeID)
	if err != nil {
		return nil, err
	}

	docs, err := b.store.LoadEmployeeDocuments(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	// week_start is a DATE column, scanned as midnight UTC. Take the
	// stored calendar fields rather than converting the instant, which
	// would land on the previous Eastern evening.
	y, m, d := ts.WeekStart.Date()
	weekStart := time.Date(y, m, d, 0, 0, 0, 0, Eastern)
	if weekStart.Weekday() != time.Sunday {
		return nil, invariantf("timesheet %s week start %s is not a Sunday",
			ts.ID, weekStart.Format("2006-01-02"))
	}

	c := &Context{
		Timesheet:    ts,
		Employee:     emp,
		Documents:    docs,
		DailyMinutes: make(map[string]int, 7),
		DailyAges:    make(map[string]int, 7),
		DailyBands:   make(map[string]AgeBand, 7),
		DailyEntries: make(map[string][]timesheet.Entry, 7),
		SchoolDays:   make(map[string]bool, 7),
		bandPresent:  make(map[AgeBand]bool),
	}

	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		date := day.Format("2006-01-02")
		c.Dates = append(c.Dates, date)

		// Age on each individual day, not on the submission date: a
		// minor's band can change mid-week on a birthday and each
		// day gets the band in effect that day.
		age := timesheet.AgeOn(emp.BirthDate, day)
		c.DailyAges[date] = age
		c.DailyBands[date] = BandForAge(age)
		c.bandPresent[BandForAge(age)] = true
		c.SchoolDays[date] = b.calendar.IsSchoolDay(day)
		c.DailyMinutes[date] = 0
	}

	for _, e := range entries {
		date := e.DateIn(Eastern)
		if _, ok := c.DailyMinutes[date]; !ok {
			return nil, invariantf("entry %s dated %s falls outside week of %s",
				e.ID, date, c.Dates[0])
		}
		if e.Minutes() < 0 {
			return nil, invariantf("entry %s ends before it starts", e.ID)
		}
		c.DailyEntries[date] = append(c.DailyEntries[date], e)
		c.DailyMinutes[date] += e.Minutes()
		c.WeekMinutes += e.Minutes()
	}

	for _, date := range c.Dates {
		day := c.DailyEntries[date]
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].Start.Before(day[j].Start)
		})
		if c.DailyMinutes[date] > 0 {
			c.DaysWorked++
		}
	}

	return c, nil
}

// entryIDs extracts entry ids in slice order, for violation evidence.
func entryIDs(entries []timesheet.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// describeHours renders an hour count the way supervisors read it.
func describeHours(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%d", minutes/60)
	}
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}
