package http

import (
	"net/http"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

type ReservationHandler struct {
	reservationSvc service.ReservationService
}

func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

type CountResponse struct {
	Count int `json:"count"`
}

func (h *ReservationHandler) AddNewReservation(w http.ResponseWriter, r *http.Request) {
	var req domain.NewReservation
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.reservationSvc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	var req domain.Reservation
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.reservationSvc.Update(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	id := q.required("id")
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservationSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) GetReservationsOnDate(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	filter := domain.ReservationFilter{
		Date:            q.get("date"),
		DeviceType:      q.deviceType("device_type", false),
		ExcludePickedUp: q.boolean("exclude_picked_up"),
	}
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	reservations, err := h.reservationSvc.ListByDate(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *ReservationHandler) GetNumberOfReservationsOnDate(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	date := q.get("date")
	deviceType := q.deviceType("device_type", true)
	location := domain.Location(q.required("location"))
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.reservationSvc.CountByDate(r.Context(), date, *deviceType, location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

func RegisterReservationRoutes(router *mux.Router, reservationSvc service.ReservationService) {
	h := NewReservationHandler(reservationSvc)
	s := router.PathPrefix("/reservations").Subrouter()
	s.HandleFunc("/add_new_reservation", h.AddNewReservation).Methods("POST")
	s.HandleFunc("/update_reservation", h.UpdateReservation).Methods("POST")
	s.HandleFunc("/get_reservation", h.GetReservation).Methods("GET")
	s.HandleFunc("/get_reservations_on_date", h.GetReservationsOnDate).Methods("GET")
	s.HandleFunc("/get_number_of_reservations_on_date", h.GetNumberOfReservationsOnDate).Methods("GET")
}
