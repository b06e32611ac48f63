package domain

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPendingConfirmation ReservationStatus = "Pending Confirmation"
	ReservationStatusConfirmed           ReservationStatus = "Confirmed"
	ReservationStatusReserved            ReservationStatus = "Reserved"
	ReservationStatusPickedUp            ReservationStatus = "Picked Up"
	ReservationStatusCompleted           ReservationStatus = "Completed"
	ReservationStatusCancelled           ReservationStatus = "Cancelled"
)

var ReservationStatuses = []ReservationStatus{
	ReservationStatusPendingConfirmation,
	ReservationStatusConfirmed,
	ReservationStatusReserved,
	ReservationStatusPickedUp,
	ReservationStatusCompleted,
	ReservationStatusCancelled,
}

// Finished reports whether no lifecycle event may move the reservation any further.
func (s ReservationStatus) Finished() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

// DefaultReservationStatus: wheelchair reservations are pre-confirmed,
// scooter reservations wait for staff confirmation.
func DefaultReservationStatus(deviceType DeviceType) (ReservationStatus, error) {
	switch deviceType {
	case DeviceTypeScooter:
		return ReservationStatusPendingConfirmation, nil
	case DeviceTypeWheelchair:
		return ReservationStatusReserved, nil
	default:
		return "", &UnknownDeviceTypeError{Value: string(deviceType)}
	}
}

const DefaultNotes = "N/A"

type Reservation struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	DeviceType  DeviceType        `json:"device_type"`
	Name        string            `json:"name"`
	PhoneNumber string            `json:"phone_number"`
	Location    Location          `json:"location"`
	PickupTime  time.Time         `json:"pickup_time"`
	Status      ReservationStatus `json:"status"`
	DeviceID    *string           `json:"device_id"`
	RentalID    *string           `json:"rental_id"`
	Notes       string            `json:"notes"`
}

// NewReservation is the create payload; id and status are assigned by the server.
type NewReservation struct {
	Date        string     `json:"date"`
	DeviceType  DeviceType `json:"device_type"`
	Name        string     `json:"name"`
	PhoneNumber string     `json:"phone_number"`
	Location    Location   `json:"location"`
	PickupTime  time.Time  `json:"pickup_time"`
	Notes       string     `json:"notes"`
}

func (r *NewReservation) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	if strings.TrimSpace(r.Notes) == "" {
		r.Notes = DefaultNotes
	}
}

func (r *Reservation) Normalize() {
	r.ID = NormalizeID(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.DeviceID = normalizeOptionalID(r.DeviceID)
	r.RentalID = normalizeOptionalID(r.RentalID)
	if strings.TrimSpace(r.Notes) == "" {
		r.Notes = DefaultNotes
	}
}

func normalizeOptionalID(id *string) *string {
	if id == nil {
		return nil
	}
	v := NormalizeID(*id)
	if v == "" {
		return nil
	}
	return &v
}

type ReservationFilter struct {
	Date            string
	DeviceType      *DeviceType
	ExcludePickedUp bool
}
