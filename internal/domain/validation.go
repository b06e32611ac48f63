package domain

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newValidator() *validator.Validate {
	v := validator.New()
	rules := map[string]validator.Func{
		"device_id":      matchPattern(DeviceIDPattern.MatchString),
		"rental_id":      matchPattern(RentalIDPattern.MatchString),
		"reservation_id": matchPattern(ReservationIDPattern.MatchString),
		"device_type":    oneOf(DeviceTypes),
		"device_status":  oneOf(DeviceStatuses),
		"location":       oneOf(Locations),
		"res_status":     oneOf(ReservationStatuses),
		"hold_item":      oneOf(HoldItems),
		"png":            isPNG,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic("register validation " + tag + ": " + err.Error())
		}
	}
	return v
}

func matchPattern(match func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return match(fl.Field().String())
	}
}

func oneOf[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if string(a) == s {
				return true
			}
		}
		return false
	}
}

func isPNG(fl validator.FieldLevel) bool {
	b, ok := fl.Field().Interface().([]byte)
	return ok && bytes.HasPrefix(b, pngSignature)
}

// fieldChecker collects field errors so a caller sees every problem at once.
type fieldChecker struct {
	errs []FieldError
}

func (c *fieldChecker) check(field string, value any, tag, message string) bool {
	if err := validate.Var(value, tag); err != nil {
		c.add(field, message)
		return false
	}
	return true
}

func (c *fieldChecker) add(field, format string, args ...any) {
	c.errs = append(c.errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *fieldChecker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.errs}
}

// checkPrefix enforces that an id starts with the letter of its device type.
func (c *fieldChecker) checkPrefix(field, id string, deviceType DeviceType) {
	prefix, err := deviceType.Prefix()
	if err != nil || id == "" {
		return
	}
	if id[:1] != prefix {
		c.add(field, "ID for %ss should start with '%s' - got %s instead", deviceType, prefix, id)
	}
}

func (c *fieldChecker) checkTime(field string, t time.Time) {
	if t.IsZero() {
		c.add(field, "is required")
	}
}

func (c *fieldChecker) checkEnums(deviceType DeviceType, location Location, locationField string) {
	c.check("device_type", string(deviceType), "device_type", fmt.Sprintf("must be one of %v", DeviceTypes))
	c.check(locationField, string(location), "location", fmt.Sprintf("must be one of %v", Locations))
}

func (d Device) Validate() error {
	c := &fieldChecker{}
	if c.check("id", d.ID, "device_id", "must be one letter followed by two digits") {
		c.checkPrefix("id", d.ID, d.Type)
	}
	c.check("type", string(d.Type), "device_type", fmt.Sprintf("must be one of %v", DeviceTypes))
	c.check("status", string(d.Status), "device_status", fmt.Sprintf("must be one of %v", DeviceStatuses))
	c.check("location", string(d.Location), "location", fmt.Sprintf("must be one of %v", Locations))
	return c.err()
}

// ValidateDevices checks a batch and prefixes field names with the row index.
func ValidateDevices(devices []Device) error {
	c := &fieldChecker{}
	if len(devices) == 0 {
		c.add("devices", "at least one device is required")
	}
	for i, d := range devices {
		var ve *ValidationError
		if err := d.Validate(); errors.As(err, &ve) {
			for _, f := range ve.Fields {
				c.add(fmt.Sprintf("devices[%d].%s", i, f.Field), "%s", f.Message)
			}
		}
	}
	return c.err()
}

func (r NewReservation) Validate() error {
	c := &fieldChecker{}
	c.check("date", r.Date, "required,datetime=2006-01-02", "must be a date in YYYY-MM-DD format")
	c.checkEnums(r.DeviceType, r.Location, "location")
	c.check("name", r.Name, "min=5", "must be at least 5 characters")
	c.check("phone_number", r.PhoneNumber, "min=5", "must be at least 5 characters")
	c.checkTime("pickup_time", r.PickupTime)
	return c.err()
}

func (r Reservation) Validate() error {
	c := &fieldChecker{}
	if c.check("id", r.ID, "reservation_id", "must match "+ReservationIDPattern.String()) {
		c.checkPrefix("id", r.ID, r.DeviceType)
	}
	c.check("date", r.Date, "required,datetime=2006-01-02", "must be a date in YYYY-MM-DD format")
	c.checkEnums(r.DeviceType, r.Location, "location")
	c.check("name", r.Name, "min=5", "must be at least 5 characters")
	c.check("phone_number", r.PhoneNumber, "min=5", "must be at least 5 characters")
	c.checkTime("pickup_time", r.PickupTime)
	c.check("status", string(r.Status), "res_status", fmt.Sprintf("must be one of %v", ReservationStatuses))
	if r.DeviceID != nil && c.check("device_id", *r.DeviceID, "device_id", "must be one letter followed by two digits") {
		c.checkPrefix("device_id", *r.DeviceID, r.DeviceType)
	}
	if r.RentalID != nil {
		c.check("rental_id", *r.RentalID, "rental_id", "must match "+RentalIDPattern.String())
	}
	return c.err()
}

func (r Rental) Validate() error {
	c := &fieldChecker{}
	if r.ID != "" && c.check("id", r.ID, "rental_id", "must match "+RentalIDPattern.String()) {
		c.checkPrefix("id", r.ID, r.DeviceType)
	}
	if r.ReservationID != nil && c.check("reservation_id", *r.ReservationID, "reservation_id", "must match "+ReservationIDPattern.String()) {
		c.checkPrefix("reservation_id", *r.ReservationID, r.DeviceType)
	}
	c.check("date", r.Date, "required,datetime=2006-01-02", "must be a date in YYYY-MM-DD format")
	c.checkEnums(r.DeviceType, r.PickupLocation, "pickup_location")
	if c.check("device_id", r.DeviceID, "device_id", "must be one letter followed by two digits") {
		c.checkPrefix("device_id", r.DeviceID, r.DeviceType)
	}
	c.checkTime("pickup_time", r.PickupTime)

	c.check("name", r.Name, "min=3", "must be at least 3 characters")
	c.check("phone_number", r.PhoneNumber, "min=5", "must be at least 5 characters")
	c.check("address", r.Address, "min=5", "must be at least 5 characters")
	c.check("city", r.City, "min=5", "must be at least 5 characters")
	c.check("province", r.Province, "min=2", "must be at least 2 characters")
	if r.PostalCode != nil {
		c.check("postal_code", *r.PostalCode, "min=3", "must be at least 3 characters")
	}
	c.check("country", r.Country, "min=3", "must be at least 3 characters")

	c.check("fee_payment_amount", r.FeePaymentAmount, "gt=0", "must be greater than 0")
	c.check("deposit_payment_amount", r.DepositPaymentAmount, "gt=0", "must be greater than 0")
	c.check("staff_name", r.StaffName, "min=5", "must be at least 5 characters")
	c.check("signature", r.Signature, "png", "must be a PNG image")

	seen := make(map[HoldItem]bool, len(r.ItemsLeftBehind))
	for i, item := range r.ItemsLeftBehind {
		field := fmt.Sprintf("items_left_behind[%d]", i)
		c.check(field, string(item), "hold_item", fmt.Sprintf("must be one of %v", HoldItems))
		if seen[item] {
			c.add(field, "duplicate item %s", item)
		}
		seen[item] = true
	}
	return c.err()
}

func (c ChangeDeviceInfo) Validate() error {
	fc := &fieldChecker{}
	if fc.check("rental_id", c.RentalID, "rental_id", "must match "+RentalIDPattern.String()) {
		fc.checkPrefix("rental_id", c.RentalID, c.DeviceType)
	}
	fc.checkEnums(c.DeviceType, c.Location, "location")
	if fc.check("old_device_id", c.OldDeviceID, "device_id", "must be one letter followed by two digits") {
		fc.checkPrefix("old_device_id", c.OldDeviceID, c.DeviceType)
	}
	if fc.check("new_device_id", c.NewDeviceID, "device_id", "must be one letter followed by two digits") {
		fc.checkPrefix("new_device_id", c.NewDeviceID, c.DeviceType)
	}
	if c.OldDeviceID != "" && c.OldDeviceID == c.NewDeviceID {
		fc.add("new_device_id", "must differ from old_device_id")
	}
	return fc.err()
}

func (c CompletedRental) Validate() error {
	fc := &fieldChecker{}
	fc.check("id", c.ID, "rental_id", "must match "+RentalIDPattern.String())
	if c.DeviceID != "" {
		fc.check("device_id", c.DeviceID, "device_id", "must be one letter followed by two digits")
	}
	fc.check("return_location", string(c.ReturnLocation), "location", fmt.Sprintf("must be one of %v", Locations))
	fc.checkTime("return_time", c.ReturnTime)
	fc.check("return_staff_name", c.ReturnStaffName, "min=5", "must be at least 5 characters")
	fc.check("return_signature", c.ReturnSignature, "png", "must be a PNG image")
	return fc.err()
}
