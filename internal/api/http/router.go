package http

import (
	"net/http"

	"mobility-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services bundles what the router dispatches to.
type Services struct {
	Inventory    service.InventoryService
	Reservations service.ReservationService
	Rentals      service.RentalService
	Reports      service.ReportService
	Clock        service.Clock
	Store        Pinger
}

func NewRouter(svcs Services) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger)

	RegisterDeviceRoutes(router, svcs.Inventory)
	RegisterReservationRoutes(router, svcs.Reservations)
	RegisterRentalRoutes(router, svcs.Rentals)
	RegisterReportRoutes(router, svcs.Reports, svcs.Clock)
	router.HandleFunc("/healthz", HealthCheck(svcs.Store)).Methods("GET")

	router.NotFoundHandler = RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no route for " + r.URL.Path})
	}))
	return router
}
