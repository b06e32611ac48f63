package utils

import (
	"strconv"

	"mobility-rental-backend/internal/domain"
)

// FeeSchedule is the fixed fee and refundable deposit for one device type, in dollars.
type FeeSchedule struct {
	DeviceType             domain.DeviceType      `json:"device_type"`
	Fee                    int32                  `json:"fee"`
	Deposit                int32                  `json:"deposit"`
	AcceptedFeeMethods     []domain.PaymentMethod `json:"accepted_fee_payment_methods"`
	AcceptedDepositMethods []domain.PaymentMethod `json:"accepted_deposit_payment_methods"`
}

var fees = map[domain.DeviceType]int32{
	domain.DeviceTypeScooter:    45,
	domain.DeviceTypeWheelchair: 20,
}

var deposits = map[domain.DeviceType]int32{
	domain.DeviceTypeScooter:    100,
	domain.DeviceTypeWheelchair: 50,
}

// GetFee returns the rental fee for a device type
func GetFee(deviceType domain.DeviceType) (int32, error) {
	fee, ok := fees[deviceType]
	if !ok {
		return 0, &domain.UnknownDeviceTypeError{Value: string(deviceType)}
	}
	return fee, nil
}

// GetDeposit returns the deposit for a device type
func GetDeposit(deviceType domain.DeviceType) (int32, error) {
	deposit, ok := deposits[deviceType]
	if !ok {
		return 0, &domain.UnknownDeviceTypeError{Value: string(deviceType)}
	}
	return deposit, nil
}

// AcceptedFeePaymentMethods lists how a rental fee may be paid
func AcceptedFeePaymentMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodCreditCard, domain.PaymentMethodDebitCard}
}

// AcceptedDepositPaymentMethods lists how a deposit may be held. Debit cannot be held.
func AcceptedDepositPaymentMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodCreditCard}
}

// GetFeeSchedule bundles the amounts and accepted methods for a device type
func GetFeeSchedule(deviceType domain.DeviceType) (FeeSchedule, error) {
	fee, err := GetFee(deviceType)
	if err != nil {
		return FeeSchedule{}, err
	}
	deposit, err := GetDeposit(deviceType)
	if err != nil {
		return FeeSchedule{}, err
	}
	return FeeSchedule{
		DeviceType:             deviceType,
		Fee:                    fee,
		Deposit:                deposit,
		AcceptedFeeMethods:     AcceptedFeePaymentMethods(),
		AcceptedDepositMethods: AcceptedDepositPaymentMethods(),
	}, nil
}

// CheckPayment validates the payment fields of a new rental against the schedule.
// UnknownDeviceTypeError is returned as-is; payment problems come back as a ValidationError.
func CheckPayment(rental *domain.Rental) error {
	schedule, err := GetFeeSchedule(rental.DeviceType)
	if err != nil {
		return err
	}

	var fields []domain.FieldError
	if rental.FeePaymentAmount != schedule.Fee {
		fields = append(fields, domain.FieldError{
			Field:   "fee_payment_amount",
			Message: "must be " + strconv.Itoa(int(schedule.Fee)) + " for a " + string(rental.DeviceType),
		})
	}
	if rental.DepositPaymentAmount != schedule.Deposit {
		fields = append(fields, domain.FieldError{
			Field:   "deposit_payment_amount",
			Message: "must be " + strconv.Itoa(int(schedule.Deposit)) + " for a " + string(rental.DeviceType),
		})
	}
	if !containsMethod(schedule.AcceptedFeeMethods, rental.FeePaymentMethod) {
		fields = append(fields, domain.FieldError{Field: "fee_payment_method", Message: "is not accepted for fees"})
	}
	if !containsMethod(schedule.AcceptedDepositMethods, rental.DepositPaymentMethod) {
		fields = append(fields, domain.FieldError{Field: "deposit_payment_method", Message: "is not accepted for deposits"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func containsMethod(methods []domain.PaymentMethod, m domain.PaymentMethod) bool {
	for _, accepted := range methods {
		if accepted == m {
			return true
		}
	}
	return false
}
