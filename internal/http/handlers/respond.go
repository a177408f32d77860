// Package handlers exposes the scheduling service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeServiceError maps scheduling errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		jsonError(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, scheduling.ErrInvalidRange):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, scheduling.ErrExternalService):
		logger.Error("calendar unavailable", "error", err)
		jsonError(w, "The calendar service is temporarily unavailable. Please try again shortly.", http.StatusServiceUnavailable)
	default:
		logger.Error("unexpected scheduling error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// bookingStatus picks the response code for a booking outcome.
func bookingStatus(result *scheduling.BookingResult, created int) int {
	if result.Booked() {
		return created
	}
	if result.Rejection == nil {
		return http.StatusBadRequest
	}
	switch result.Rejection.Kind {
	case scheduling.KindConflict:
		return http.StatusConflict
	case scheduling.KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
