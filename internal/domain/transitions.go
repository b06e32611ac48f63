package domain

// Lifecycle events driven by the rental workflow. Administrative status edits
// bypass these tables: staff may overwrite a reservation status freely.
const (
	EventStartRental    = "start_rental"
	EventCompleteRental = "complete_rental"
	EventChangeDevice   = "change_device"
)

type reservationTransition struct {
	from []ReservationStatus
	to   ReservationStatus
}

var reservationTransitions = map[string]reservationTransition{
	EventStartRental: {
		from: []ReservationStatus{
			ReservationStatusPendingConfirmation,
			ReservationStatusConfirmed,
			ReservationStatusReserved,
		},
		to: ReservationStatusPickedUp,
	},
	EventCompleteRental: {
		from: []ReservationStatus{
			ReservationStatusPendingConfirmation,
			ReservationStatusConfirmed,
			ReservationStatusReserved,
			ReservationStatusPickedUp,
		},
		to: ReservationStatusCompleted,
	},
}

// NextReservationStatus returns the status a reservation moves to on event,
// or a ConflictError when the event is not allowed from the current status.
func NextReservationStatus(event string, current ReservationStatus) (ReservationStatus, error) {
	t, ok := reservationTransitions[event]
	if !ok {
		return "", NewConflictError("unknown reservation event %q", event)
	}
	for _, s := range t.from {
		if s == current {
			return t.to, nil
		}
	}
	return "", NewConflictError("reservation in status %q cannot %s", current, event)
}

type rentalTransition struct {
	from RentalState
	to   RentalState
}

var rentalTransitions = map[string]rentalTransition{
	EventChangeDevice:   {from: RentalStateOpen, to: RentalStateOpen},
	EventCompleteRental: {from: RentalStateOpen, to: RentalStateClosed},
}

// NextRentalState guards rental lifecycle events. A closed rental accepts none.
func NextRentalState(event string, current RentalState) (RentalState, error) {
	t, ok := rentalTransitions[event]
	if !ok {
		return "", NewConflictError("unknown rental event %q", event)
	}
	if t.from != current {
		return "", NewConflictError("rental is %s and cannot %s", current, event)
	}
	return t.to, nil
}

// deviceTransitions lists the status a device must hold before each lifecycle move.
var deviceTransitions = map[DeviceStatus]DeviceStatus{
	DeviceStatusRented:    DeviceStatusAvailable,
	DeviceStatusAvailable: DeviceStatusRented,
}

// RequiredDeviceStatus returns the status a device must currently hold to be moved to next.
func RequiredDeviceStatus(next DeviceStatus) (DeviceStatus, bool) {
	from, ok := deviceTransitions[next]
	return from, ok
}
