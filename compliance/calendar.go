package compliance

import "time"

// Eastern is the single civil timezone for all date and time-of-day
// derivations. Rules never consult the host's local timezone.
var Eastern = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("compliance: cannot load America/New_York: " + err.Error())
	}
	return loc
}

// School hours on a school day, as minutes after midnight Eastern.
const (
	schoolStartMinute = 8 * 60  // 08:00
	schoolEndMinute   = 15 * 60 // 15:00
)

// SchoolCalendar answers whether a civil date is a school day. Stricter
// hour and scheduling limits apply to minors on school days.
type SchoolCalendar interface {
	IsSchoolDay(date time.Time) bool
}

// StandardCalendar is the default calendar: weekdays are school days
// except during summer recess (June 15 through August 31) and winter
// break (December 21 through January 2). District-specific calendars
// can replace it at the composition root.
type StandardCalendar struct{}

func (StandardCalendar) IsSchoolDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	m, d := date.Month(), date.Day()
	switch {
	case m == time.July || m == time.August:
		return false
	case m == time.June && d >= 15:
		return false
	case m == time.December && d >= 21:
		return false
	case m == time.January && d <= 2:
		return false
	}
	return true
}
