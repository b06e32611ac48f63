package http

import (
	"net/http"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/service"
	"mobility-rental-backend/internal/utils"

	"github.com/gorilla/mux"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

func (h *RentalHandler) AddNewRental(w http.ResponseWriter, r *http.Request) {
	var req domain.Rental
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.rentalSvc.StartRental(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *RentalHandler) ChangeDevice(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangeDeviceInfo
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.rentalSvc.ChangeDevice(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *RentalHandler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	var req domain.CompletedRental
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.rentalSvc.CompleteRental(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	id := q.required("id")
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) GetRentalsOnDate(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.RentalFilter{
		Date:           q.get("date"),
		DeviceType:     q.deviceType("device_type", false),
		InProgressOnly: q.boolean("in_progress_only"),
	}
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListByDate(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *RentalHandler) GetFeeSchedule(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	deviceType := q.deviceType("device_type", true)
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	schedule, err := utils.GetFeeSchedule(*deviceType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func RegisterRentalRoutes(router *mux.Router, rentalSvc service.RentalService) {
	h := NewRentalHandler(rentalSvc)
	s := router.PathPrefix("/rentals").Subrouter()
	s.HandleFunc("/add_new_rental", h.AddNewRental).Methods("POST")
	s.HandleFunc("/change_device", h.ChangeDevice).Methods("POST")
	s.HandleFunc("/complete_rental", h.CompleteRental).Methods("POST")
	s.HandleFunc("/get_rental", h.GetRental).Methods("GET")
	s.HandleFunc("/get_rentals_on_date", h.GetRentalsOnDate).Methods("GET")
	s.HandleFunc("/get_fee_schedule", h.GetFeeSchedule).Methods("GET")
}
