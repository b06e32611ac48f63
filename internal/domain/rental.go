package domain

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "Cash"
	PaymentMethodCreditCard PaymentMethod = "Credit Card"
	PaymentMethodDebitCard  PaymentMethod = "Debit Card"
)

// HoldItem is something a renter leaves with staff for the duration of a rental.
type HoldItem string

const (
	HoldItemBag      HoldItem = "Bag"
	HoldItemCane     HoldItem = "Cane"
	HoldItemCrutches HoldItem = "Crutches"
	HoldItemStroller HoldItem = "Stroller"
	HoldItemWalker   HoldItem = "Walker"
	HoldItemOther    HoldItem = "Other"
)

var HoldItems = []HoldItem{HoldItemBag, HoldItemCane, HoldItemCrutches, HoldItemStroller, HoldItemWalker, HoldItemOther}

type RentalState string

const (
	RentalStateOpen   RentalState = "Open"
	RentalStateClosed RentalState = "Closed"
)

type Rental struct {
	ID             string     `json:"id"`
	ReservationID  *string    `json:"reservation_id"`
	Date           string     `json:"date"`
	DeviceType     DeviceType `json:"device_type"`
	DeviceID       string     `json:"device_id"`
	PickupLocation Location   `json:"pickup_location"`
	PickupTime     time.Time  `json:"pickup_time"`

	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Province    string  `json:"province"`
	PostalCode  *string `json:"postal_code"`
	Country     string  `json:"country"`

	DepositPaymentMethod PaymentMethod `json:"deposit_payment_method"`
	DepositPaymentAmount int32         `json:"deposit_payment_amount"`
	FeePaymentMethod     PaymentMethod `json:"fee_payment_method"`
	FeePaymentAmount     int32         `json:"fee_payment_amount"`

	StaffName       string     `json:"staff_name"`
	Signature       []byte     `json:"signature"`
	ItemsLeftBehind []HoldItem `json:"items_left_behind"`
	Notes           string     `json:"notes"`

	ReturnLocation  *Location  `json:"return_location"`
	ReturnTime      *time.Time `json:"return_time"`
	ReturnStaffName *string    `json:"return_staff_name"`
	ReturnSignature []byte     `json:"return_signature,omitempty"`
}

// State derives the lifecycle state from the return stamp.
func (r *Rental) State() RentalState {
	if r.ReturnTime == nil {
		return RentalStateOpen
	}
	return RentalStateClosed
}

func (r *Rental) Normalize() {
	r.ID = NormalizeID(r.ID)
	r.DeviceID = NormalizeID(r.DeviceID)
	if r.ReservationID != nil {
		v := strings.TrimSpace(*r.ReservationID)
		if v == "" || strings.EqualFold(v, WalkInReservationID) {
			r.ReservationID = nil
		} else {
			v = strings.ToUpper(v)
			r.ReservationID = &v
		}
	}
	r.Name = strings.TrimSpace(r.Name)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.Province = strings.TrimSpace(r.Province)
	r.Country = strings.TrimSpace(r.Country)
	r.StaffName = strings.TrimSpace(r.StaffName)
	if r.PostalCode != nil && strings.TrimSpace(*r.PostalCode) == "" {
		r.PostalCode = nil
	}
	if r.ItemsLeftBehind == nil {
		r.ItemsLeftBehind = []HoldItem{}
	}
	if strings.TrimSpace(r.Notes) == "" {
		r.Notes = DefaultNotes
	}
}

type ChangeDeviceInfo struct {
	RentalID    string     `json:"rental_id"`
	OldDeviceID string     `json:"old_device_id"`
	NewDeviceID string     `json:"new_device_id"`
	DeviceType  DeviceType `json:"device_type"`
	Location    Location   `json:"location"`
}

func (c *ChangeDeviceInfo) Normalize() {
	c.RentalID = NormalizeID(c.RentalID)
	c.OldDeviceID = NormalizeID(c.OldDeviceID)
	c.NewDeviceID = NormalizeID(c.NewDeviceID)
}

type CompletedRental struct {
	ID              string    `json:"id"`
	DeviceID        string    `json:"device_id,omitempty"`
	ReturnLocation  Location  `json:"return_location"`
	ReturnTime      time.Time `json:"return_time"`
	ReturnStaffName string    `json:"return_staff_name"`
	ReturnSignature []byte    `json:"return_signature"`
}

func (c *CompletedRental) Normalize() {
	c.ID = NormalizeID(c.ID)
	c.DeviceID = NormalizeID(c.DeviceID)
	c.ReturnStaffName = strings.TrimSpace(c.ReturnStaffName)
}

type RentalFilter struct {
	Date           string
	DeviceType     *DeviceType
	InProgressOnly bool
}
