package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalService matches any failure of a downstream dependency.
	ErrExternalService = errors.New("scheduling: external service failure")
	// ErrAppointmentNotFound is returned when an event id is unknown to the calendar.
	ErrAppointmentNotFound = errors.New("scheduling: appointment not found")
)

// Calendar operations reported in ExternalServiceError.Op.
const (
	OpList   = "list"
	OpInsert = "insert"
	OpGet    = "get"
	OpUpdate = "update"
	OpLock   = "lock"
)

// ExternalServiceError wraps a failed call to the calendar or lock backend. It is
// the only scheduling outcome surfaced as a Go error; rejections are results.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("scheduling: calendar %s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrExternalService) match every ExternalServiceError.
func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}

func externalErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalServiceError{Op: op, Err: err}
}

// ErrInvalidRange is returned when a listing range ends before it starts.
var ErrInvalidRange = errors.New("scheduling: range end before start")
