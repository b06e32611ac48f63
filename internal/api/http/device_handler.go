package http

import (
	"net/http"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

type DeviceHandler struct {
	inventorySvc service.InventoryService
}

func NewDeviceHandler(inventorySvc service.InventoryService) *DeviceHandler {
	return &DeviceHandler{inventorySvc: inventorySvc}
}

type UpdateLocationRequest struct {
	DeviceIDs []string        `json:"device_ids"`
	Location  domain.Location `json:"location"`
}

type AvailableDevicesResponse struct {
	DeviceIDs []string `json:"device_ids"`
}

func (h *DeviceHandler) GetFullInventory(w http.ResponseWriter, r *http.Request) {
	devices, err := h.inventorySvc.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) GetAvailableDevices(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	deviceType := q.deviceType("device_type", true)
	location := domain.Location(q.required("location"))
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}

	ids, err := h.inventorySvc.ListAvailable(r.Context(), *deviceType, location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailableDevicesResponse{DeviceIDs: ids})
}

// writeDevices decodes a device batch and applies it with apply.
func (h *DeviceHandler) writeDevices(apply func(r *http.Request, devices []domain.Device) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var devices []domain.Device
		if err := decodeJSON(w, r, &devices); err != nil {
			writeError(w, r, err)
			return
		}
		if err := apply(r, devices); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ok)
	}
}

func (h *DeviceHandler) AddToInventory(w http.ResponseWriter, r *http.Request) {
	h.writeDevices(func(r *http.Request, devices []domain.Device) error {
		return h.inventorySvc.Insert(r.Context(), devices)
	})(w, r)
}

func (h *DeviceHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	h.writeDevices(func(r *http.Request, devices []domain.Device) error {
		return h.inventorySvc.Upsert(r.Context(), devices)
	})(w, r)
}

func (h *DeviceHandler) SetFullInventory(w http.ResponseWriter, r *http.Request) {
	h.writeDevices(func(r *http.Request, devices []domain.Device) error {
		return h.inventorySvc.ReplaceAll(r.Context(), devices)
	})(w, r)
}

func (h *DeviceHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.inventorySvc.UpdateLocations(r.Context(), req.DeviceIDs, req.Location); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func RegisterDeviceRoutes(router *mux.Router, inventorySvc service.InventoryService) {
	h := NewDeviceHandler(inventorySvc)
	s := router.PathPrefix("/devices").Subrouter()
	s.HandleFunc("/get_full_inventory", h.GetFullInventory).Methods("GET")
	s.HandleFunc("/get_available_devices", h.GetAvailableDevices).Methods("GET")
	s.HandleFunc("/add_to_inventory", h.AddToInventory).Methods("POST")
	s.HandleFunc("/update_inventory", h.UpdateInventory).Methods("POST")
	s.HandleFunc("/set_full_inventory", h.SetFullInventory).Methods("POST")
	s.HandleFunc("/update_location", h.UpdateLocation).Methods("POST")
}
