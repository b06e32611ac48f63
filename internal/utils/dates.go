package utils

import (
	"time"

	"mobility-rental-backend/internal/domain"
)

// EventDurationDays is the length of the CNE, ending on Labour Day.
const EventDurationDays = 18

// EventDates returns the first and last day of the CNE for a year.
// The event ends on the Monday on or before September 7.
func EventDates(year int) (time.Time, time.Time) {
	end := time.Date(year, time.September, 7, 0, 0, 0, 0, time.UTC)
	daysSinceMonday := (int(end.Weekday()) + 6) % 7
	end = end.AddDate(0, 0, -daysSinceMonday)
	start := end.AddDate(0, 0, -(EventDurationDays - 1))
	return start, end
}

// EventDateList returns every event day of a year formatted as YYYY-MM-DD
func EventDateList(year int) []string {
	start, end := EventDates(year)
	dates := make([]string, 0, EventDurationDays)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(domain.DateLayout))
	}
	return dates
}

// DefaultDate is today's date clamped to the event range of the current year
func DefaultDate(now time.Time) string {
	return clampToEvent(now)
}

// DefaultNewReservationDate is tomorrow's date clamped to the event range
func DefaultNewReservationDate(now time.Time) string {
	return clampToEvent(now.AddDate(0, 0, 1))
}

func clampToEvent(t time.Time) string {
	start, end := EventDates(t.Year())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(start) {
		day = start
	}
	if day.After(end) {
		day = end
	}
	return day.Format(domain.DateLayout)
}
