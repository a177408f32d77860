package scheduling

import (
	"context"
	"time"
)

// Calendar is the external appointment store. Implementations must return events
// overlapping [start, end) and wrap ErrAppointmentNotFound for unknown ids.
type Calendar interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]Appointment, error)
	InsertEvent(ctx context.Context, event NewEvent) (*Appointment, error)
	GetEvent(ctx context.Context, id string) (*Appointment, error)
	UpdateEvent(ctx context.Context, appt Appointment) (*Appointment, error)
}

// DayLocker serializes the read-check-write sequence for one business day.
// The returned function releases the lock.
type DayLocker interface {
	Lock(ctx context.Context, day Date) (func(), error)
}

// Confirmation describes a committed booking for patient notification.
type Confirmation struct {
	EventID         string
	EventURL        string
	PatientName     string
	Phone           string
	Email           string
	AppointmentType string
	Interval        Interval
	DurationMinutes int
}

// Notifier is told about committed bookings. Errors are logged, never surfaced.
type Notifier interface {
	AppointmentBooked(ctx context.Context, c Confirmation) error
}

// Audit actions.
const (
	AuditBook       = "book"
	AuditReschedule = "reschedule"
	AuditCancel     = "cancel"
)

// AuditRecord is one booking decision.
type AuditRecord struct {
	Action         string
	Outcome        string
	Reason         string
	EventID        string
	RequestedStart time.Time
	Phone          string
}

// Auditor persists booking decisions. Errors are logged, never surfaced.
type Auditor interface {
	Record(ctx context.Context, rec AuditRecord) error
}
