package domain

import (
	"fmt"
	"regexp"
	"time"
)

const DateLayout = "2006-01-02"

// WalkInReservationID is what the rental form submits when there is no reservation.
const WalkInReservationID = "Walk-In"

var (
	DeviceIDPattern      = regexp.MustCompile(`^[A-Z][0-9]{2}$`)
	RentalIDPattern      = regexp.MustCompile(`^[A-Z]0[89][0-9]{2}[0-9]{3}$`)
	ReservationIDPattern = regexp.MustCompile(`^[A-Z]0[89][0-9]{2}[0-9]{3}$`)
)

// MaxSequence is the largest per-day sequence the three-digit suffix can hold.
const MaxSequence = 999

// IDPrefix builds the date-scoped part of a reservation or rental id:
// the device type letter followed by the zero-padded month and day.
// Only August and September dates fit the id pattern.
func IDPrefix(deviceType DeviceType, date string) (string, error) {
	letter, err := deviceType.Prefix()
	if err != nil {
		return "", err
	}
	d, err := ParseDate(date)
	if err != nil {
		return "", NewValidationError("date", "must be a date in YYYY-MM-DD format")
	}
	if d.Month() != time.August && d.Month() != time.September {
		return "", NewValidationError("date", "must fall in August or September, got %s", date)
	}
	return fmt.Sprintf("%s%02d%02d", letter, int(d.Month()), d.Day()), nil
}

// FormatID appends a sequence number to a prefix produced by IDPrefix.
func FormatID(prefix string, seq int) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", NewConflictError("id sequence for %s exhausted", prefix)
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}
