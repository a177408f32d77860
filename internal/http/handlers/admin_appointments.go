package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/dental-receptionist/internal/http/middleware"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

const defaultListDays = 7

// AdminAppointmentsHandler lets front-desk staff inspect and change bookings.
type AdminAppointmentsHandler struct {
	svc    *scheduling.Service
	logger *logging.Logger
}

func NewAdminAppointmentsHandler(svc *scheduling.Service, logger *logging.Logger) *AdminAppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{svc: svc, logger: logger}
}

// List returns appointments in [from, to]. Both default around today.
// GET /admin/appointments?from=2026-07-20&to=2026-07-27
func (h *AdminAppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	today := h.svc.Today()
	from, to := today, today.AddDays(defaultListDays)

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := scheduling.ParseDate(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		from = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := scheduling.ParseDate(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		to = d
	}

	appts, err := h.svc.ListAppointments(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":         from,
		"to":           to,
		"appointments": appts,
		"count":        len(appts),
	})
}

// Get returns one appointment.
// GET /admin/appointments/{eventID}
func (h *AdminAppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.svc.GetAppointment(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel marks an appointment cancelled. The body is optional.
// POST /admin/appointments/{eventID}/cancel
func (h *AdminAppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	eventID := chi.URLParam(r, "eventID")
	appt, err := h.svc.Cancel(r.Context(), eventID, req.Reason)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("appointment cancelled by staff",
		"event_id", eventID,
		"staff", middleware.AdminSubject(r.Context()),
	)
	writeJSON(w, http.StatusOK, appt)
}

// Reschedule moves an appointment.
// POST /admin/appointments/{eventID}/reschedule
func (h *AdminAppointmentsHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req scheduling.RescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.EventID = chi.URLParam(r, "eventID")

	result, err := h.svc.Reschedule(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if result.Booked() {
		h.logger.Info("appointment rescheduled by staff",
			"event_id", req.EventID,
			"staff", middleware.AdminSubject(r.Context()),
		)
	}
	writeJSON(w, bookingStatus(result, http.StatusOK), result)
}
