package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/service"
	"mobility-rental-backend/internal/utils"

	"github.com/gorilla/mux"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportSvc service.ReportService
	clock     service.Clock
}

func NewReportHandler(reportSvc service.ReportService, clock service.Clock) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, clock: clock}
}

type EventDatesResponse struct {
	Year  int      `json:"year"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Dates []string `json:"dates"`
}

func (h *ReportHandler) GetEventDates(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	year := q.integer("year", h.clock.Current().Year())
	if err := q.err(); err != nil {
		writeError(w, r, err)
		return
	}
	start, end := utils.EventDates(year)
	writeJSON(w, http.StatusOK, EventDatesResponse{
		Year:  year,
		Start: start.Format(domain.DateLayout),
		End:   end.Format(domain.DateLayout),
		Dates: utils.EventDateList(year),
	})
}

// ExportDay streams the day's workbook as an attachment. The workbook is
// built in memory first so a failure can still be reported as JSON.
func (h *ReportHandler) ExportDay(w http.ResponseWriter, r *http.Request) {
	date := newQuery(r).get("date")
	if date == "" {
		date = h.clock.DefaultDate()
	}
	if _, err := domain.ParseDate(date); err != nil {
		writeError(w, r, domain.NewValidationError("date", "must be a date in YYYY-MM-DD format"))
		return
	}

	var buf bytes.Buffer
	if err := h.reportSvc.ExportDay(r.Context(), date, &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rentals-%s.xlsx"`, date))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthCheck(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func RegisterReportRoutes(router *mux.Router, reportSvc service.ReportService, clock service.Clock) {
	h := NewReportHandler(reportSvc, clock)
	router.HandleFunc("/event/get_event_dates", h.GetEventDates).Methods("GET")
	router.HandleFunc("/reports/export_day", h.ExportDay).Methods("GET")
}
