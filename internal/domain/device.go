package domain

import "strings"

type DeviceType string

const (
	DeviceTypeScooter    DeviceType = "Scooter"
	DeviceTypeWheelchair DeviceType = "Wheelchair"
)

var DeviceTypes = []DeviceType{DeviceTypeScooter, DeviceTypeWheelchair}

// Prefix returns the id letter shared by devices, reservations and rentals of this type.
func (t DeviceType) Prefix() (string, error) {
	switch t {
	case DeviceTypeScooter:
		return "S", nil
	case DeviceTypeWheelchair:
		return "W", nil
	default:
		return "", &UnknownDeviceTypeError{Value: string(t)}
	}
}

func (t DeviceType) Valid() bool {
	_, err := t.Prefix()
	return err == nil
}

type DeviceStatus string

const (
	DeviceStatusAvailable    DeviceStatus = "Available"
	DeviceStatusBackup       DeviceStatus = "Backup"
	DeviceStatusOutOfService DeviceStatus = "Out of Service"
	DeviceStatusRented       DeviceStatus = "Rented"
)

var DeviceStatuses = []DeviceStatus{
	DeviceStatusAvailable,
	DeviceStatusBackup,
	DeviceStatusOutOfService,
	DeviceStatusRented,
}

type Location string

const (
	LocationBLC Location = "BLC"
	LocationPG  Location = "PG"
)

var Locations = []Location{LocationBLC, LocationPG}

type Device struct {
	ID       string       `json:"id"`
	Type     DeviceType   `json:"type"`
	Status   DeviceStatus `json:"status"`
	Location Location     `json:"location"`
}

// Normalize uppercases the id and trims surrounding whitespace.
func (d *Device) Normalize() {
	d.ID = NormalizeID(d.ID)
}

func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// DuplicateDeviceIDs returns every id that appears more than once in devices.
func DuplicateDeviceIDs(devices []Device) []string {
	seen := make(map[string]int, len(devices))
	var dups []string
	for _, d := range devices {
		seen[d.ID]++
		if seen[d.ID] == 2 {
			dups = append(dups, d.ID)
		}
	}
	return dups
}
