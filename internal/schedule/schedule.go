package schedule

import (
	"fmt"
	"time"
)

// DueSoonWindowDays is the inclusive 0–7 day window before a due date in
// which an obligation counts as imminent rather than merely upcoming.
const DueSoonWindowDays = 7

// NextDue advances anchor by the given number of calendar months, preserving
// the day of month where the target month has that day and clamping to the
// last valid day otherwise (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap
// year). Non-positive months are rejected; non-recurring items must never
// reach this function.
func NextDue(anchor time.Time, months int) (time.Time, error) {
	if months <= 0 {
		return time.Time{}, fmt.Errorf("frequency must be a positive number of months, got %d", months)
	}

	y, m, d := anchor.Date()
	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)

	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, anchor.Location()), nil
}

// daysIn returns the number of days in the given month. Day 0 of the
// following month normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween counts whole calendar days from one date to another, ignoring
// the time-of-day components. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// Label returns a human-readable description of a maintenance frequency.
func Label(frequencyMonths *int, recurring bool) string {
	if !recurring {
		return "One-time"
	}
	if frequencyMonths == nil {
		return "Custom"
	}
	switch *frequencyMonths {
	case 1:
		return "Monthly"
	case 3:
		return "Quarterly"
	case 6:
		return "Semi-annually"
	case 12:
		return "Annually"
	default:
		return fmt.Sprintf("Every %d months", *frequencyMonths)
	}
}
