package calendar

import "time"

// ID identifies a holiday calendar.
type ID string

const (
	// Weekend treats only Saturdays and Sundays as non-business days.
	Weekend ID = "WEEKEND"
	// TARGET is the Eurosystem calendar (fixed-date holidays only).
	TARGET ID = "TARGET"
	// USNY covers New York with fixed-date holidays only.
	USNY ID = "USNY"
)

// Convention selects how scheduled dates are rolled off non-business days.
// ModifiedFollowing is the zero value, so schedules built without an
// explicit convention roll Modified Following.
type Convention int

const (
	// ModifiedFollowing rolls forward unless that leaves the month, then backward.
	ModifiedFollowing Convention = iota
	// Following rolls forward to the next business day.
	Following
	// Unadjusted leaves dates as generated.
	Unadjusted
)

func isHoliday(cal ID, t time.Time) bool {
	m, d := t.Month(), t.Day()
	switch cal {
	case TARGET:
		return (m == time.January && d == 1) ||
			(m == time.May && d == 1) ||
			(m == time.December && (d == 25 || d == 26))
	case USNY:
		return (m == time.January && d == 1) ||
			(m == time.July && d == 4) ||
			(m == time.December && d == 25)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and the calendar's holiday set.
func IsBusinessDay(cal ID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Apply rolls t according to the given convention.
func Apply(conv Convention, cal ID, t time.Time) time.Time {
	switch conv {
	case Following:
		return AdjustFollowing(cal, t)
	case ModifiedFollowing:
		return Adjust(cal, t)
	default:
		return t
	}
}

// Adjust applies Modified Following.
func Adjust(cal ID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal ID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal ID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
