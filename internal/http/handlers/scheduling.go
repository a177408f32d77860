package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

const (
	minSlotDurationMinutes = 15
	maxNextDays            = 14
)

// SchedulingHandler serves the public availability and booking endpoints.
type SchedulingHandler struct {
	svc    *scheduling.Service
	logger *logging.Logger
}

func NewSchedulingHandler(svc *scheduling.Service, logger *logging.Logger) *SchedulingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SchedulingHandler{svc: svc, logger: logger}
}

type slotsResponse struct {
	*scheduling.Availability
	DurationMinutes int    `json:"duration_minutes"`
	RequestedDate   string `json:"requested_date,omitempty"`
}

// Slots lists open slots for a date.
// GET /api/slots?date=2026-07-21|next friday&duration=60
func (h *SchedulingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("date"))
	if raw == "" {
		jsonError(w, "date is required", http.StatusBadRequest)
		return
	}
	date, err := scheduling.ParseDate(raw)
	if err != nil {
		if date, err = h.svc.ResolveNaturalDate(raw); err != nil {
			jsonError(w, "could not understand date "+strconv.Quote(raw), http.StatusBadRequest)
			return
		}
	}

	duration := h.svc.Config().DefaultDurationMinutes
	if v := strings.TrimSpace(q.Get("duration")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minSlotDurationMinutes || n > scheduling.MaxDurationMinutes {
			jsonError(w, "duration must be between 15 and 240 minutes", http.StatusBadRequest)
			return
		}
		duration = n
	}

	availability, err := h.svc.GetAvailableSlots(r.Context(), date, duration)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{
		Availability:    availability,
		DurationMinutes: duration,
		RequestedDate:   raw,
	})
}

// Today lists the remaining slots for today.
// GET /api/availability/today
func (h *SchedulingHandler) Today(w http.ResponseWriter, r *http.Request) {
	availability, err := h.svc.CheckTodayAvailability(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

// NextDays summarizes the next open days with slots.
// GET /api/availability/next-days?days=3
func (h *SchedulingHandler) NextDays(w http.ResponseWriter, r *http.Request) {
	days := 3
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxNextDays {
			jsonError(w, "days must be between 1 and 14", http.StatusBadRequest)
			return
		}
		days = n
	}
	out, err := h.svc.NextDaysAvailability(r.Context(), days)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": out, "count": len(out)})
}

// Book commits an appointment.
// POST /api/appointments
func (h *SchedulingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req scheduling.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.svc.Book(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, bookingStatus(result, http.StatusCreated), result)
}

// BusinessHours reports the clinic rules.
// GET /calendar/business-hours
func (h *SchedulingHandler) BusinessHours(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.BusinessInfo())
}
