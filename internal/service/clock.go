package service

import (
	"time"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/utils"
)

// Clock supplies the current time in the business timezone.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Location: loc, Now: time.Now}
}

func (c Clock) Current() time.Time {
	return c.Now().In(c.Location)
}

// DefaultDate is today clamped to the event dates.
func (c Clock) DefaultDate() string {
	return utils.DefaultDate(c.Current())
}

func (c Clock) localize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(c.Location)
}

func (c Clock) localizeReservation(r *domain.Reservation) {
	r.PickupTime = c.localize(r.PickupTime)
}

func (c Clock) localizeRental(r *domain.Rental) {
	r.PickupTime = c.localize(r.PickupTime)
	if r.ReturnTime != nil {
		t := c.localize(*r.ReturnTime)
		r.ReturnTime = &t
	}
}
