package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/logger"

	"github.com/xuri/excelize/v2"
)

const (
	reservationsSheet = "Reservations"
	rentalsSheet      = "Rentals"
	timeLayout        = "2006-01-02 15:04"
)

var reservationHeaders = []interface{}{
	"ID", "Date", "Device Type", "Name", "Phone Number", "Location", "Pickup Time",
	"Status", "Device ID", "Rental ID", "Notes",
}

var rentalHeaders = []interface{}{
	"ID", "Reservation ID", "Date", "Device Type", "Device ID", "Pickup Location", "Pickup Time",
	"Name", "Phone Number", "Address", "City", "Province", "Postal Code", "Country",
	"Fee Method", "Fee", "Deposit Method", "Deposit", "Staff", "Items Left Behind", "Notes",
	"Return Location", "Return Time", "Return Staff",
}

type reportService struct {
	reservations ReservationService
	rentals      RentalService
}

func NewReportService(reservations ReservationService, rentals RentalService) ReportService {
	return &reportService{reservations: reservations, rentals: rentals}
}

func (s *reportService) ExportDay(ctx context.Context, date string, w io.Writer) error {
	reservations, err := s.reservations.ListByDate(ctx, domain.ReservationFilter{Date: date})
	if err != nil {
		return err
	}
	rentals, err := s.rentals.ListByDate(ctx, domain.RentalFilter{Date: date})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reservationsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(rentalsSheet); err != nil {
		return err
	}

	resRows := make([][]interface{}, 0, len(reservations))
	for _, r := range reservations {
		resRows = append(resRows, reservationRow(r))
	}
	if err := writeSheet(f, reservationsSheet, reservationHeaders, resRows); err != nil {
		return err
	}

	rentalRows := make([][]interface{}, 0, len(rentals))
	for _, r := range rentals {
		rentalRows = append(rentalRows, rentalRow(r))
	}
	if err := writeSheet(f, rentalsSheet, rentalHeaders, rentalRows); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Exported day report", "date", date, "reservations", len(reservations), "rentals", len(rentals))
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return f.SetColWidth(sheet, "A", "Z", 16)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func reservationRow(r domain.Reservation) []interface{} {
	return []interface{}{
		r.ID, r.Date, string(r.DeviceType), r.Name, r.PhoneNumber, string(r.Location),
		r.PickupTime.Format(timeLayout), string(r.Status), optional(r.DeviceID), optional(r.RentalID), r.Notes,
	}
}

func rentalRow(r domain.Rental) []interface{} {
	items := make([]string, 0, len(r.ItemsLeftBehind))
	for _, item := range r.ItemsLeftBehind {
		items = append(items, string(item))
	}
	var returnLocation, returnTime string
	if r.ReturnLocation != nil {
		returnLocation = string(*r.ReturnLocation)
	}
	if r.ReturnTime != nil {
		returnTime = r.ReturnTime.Format(timeLayout)
	}
	reservationID := optional(r.ReservationID)
	if reservationID == "" {
		reservationID = domain.WalkInReservationID
	}
	return []interface{}{
		r.ID, reservationID, r.Date, string(r.DeviceType), r.DeviceID, string(r.PickupLocation),
		r.PickupTime.Format(timeLayout), r.Name, r.PhoneNumber, r.Address, r.City, r.Province,
		optional(r.PostalCode), r.Country, string(r.FeePaymentMethod), r.FeePaymentAmount,
		string(r.DepositPaymentMethod), r.DepositPaymentAmount, r.StaffName, strings.Join(items, ", "),
		r.Notes, returnLocation, returnTime, optional(r.ReturnStaffName),
	}
}
