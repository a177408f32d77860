package scheduling

// Booking statuses.
const (
	StatusBooked   = "booked"
	StatusRejected = "rejected"
)

// RejectionKind classifies why a booking was refused.
type RejectionKind string

const (
	KindValidation   RejectionKind = "validation_error"
	KindBusinessRule RejectionKind = "business_rule_violation"
	KindConflict     RejectionKind = "scheduling_conflict"
)

// Rejection reasons.
const (
	ReasonMissingField    = "missing_field"
	ReasonInvalidPhone    = "invalid_phone"
	ReasonInvalidEmail    = "invalid_email"
	ReasonInvalidDate     = "invalid_date"
	ReasonInvalidTime     = "invalid_time"
	ReasonInvalidDuration = "invalid_duration"
	ReasonPast            = "past_appointment"
	ReasonTooSoon         = "too_soon"
	ReasonOutsideHours    = "outside_hours"
	ReasonClosedDay       = "closed_day"
	ReasonExceedsHours    = "exceeds_hours"
	ReasonConflict        = "conflict"
	ReasonCancelled       = "appointment_cancelled"
)

// Rejection explains a refused booking. Conflict and Alternatives are set only
// for scheduling conflicts.
type Rejection struct {
	Kind         RejectionKind `json:"kind"`
	Reason       string        `json:"reason"`
	Message      string        `json:"message"`
	Conflict     *Appointment  `json:"conflict,omitempty"`
	Alternatives []Slot        `json:"alternatives,omitempty"`
}

// BookingRequest is a patient's request for an appointment. Date is YYYY-MM-DD,
// Time is HH:MM (24h) or "HH:MM AM/PM" in the business timezone.
type BookingRequest struct {
	PatientName     string `json:"patient_name"`
	ContactPhone    string `json:"contact_phone"`
	ContactEmail    string `json:"contact_email,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	AppointmentType string `json:"appointment_type,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// RescheduleRequest moves an existing event. A zero DurationMinutes keeps the
// event's current length.
type RescheduleRequest struct {
	EventID         string `json:"event_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// BookingResult is the outcome of Book or Reschedule.
type BookingResult struct {
	Status    string     `json:"status"`
	EventID   string     `json:"event_id,omitempty"`
	EventURL  string     `json:"event_url,omitempty"`
	Interval  *Interval  `json:"interval,omitempty"`
	Message   string     `json:"message,omitempty"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

// Booked reports whether the request was committed.
func (r *BookingResult) Booked() bool {
	return r != nil && r.Status == StatusBooked
}

func rejected(kind RejectionKind, reason, message string) *BookingResult {
	return &BookingResult{
		Status:    StatusRejected,
		Message:   message,
		Rejection: &Rejection{Kind: kind, Reason: reason, Message: message},
	}
}

// Availability lists open slots for one day.
type Availability struct {
	Date      Date   `json:"date"`
	Available bool   `json:"available"`
	Slots     []Slot `json:"slots"`
	Message   string `json:"message"`
}

// DayAvailability is a day summary used by NextDaysAvailability.
type DayAvailability struct {
	Date       Date   `json:"date"`
	DayName    string `json:"day_name"`
	Formatted  string `json:"formatted_date"`
	Slots      []Slot `json:"slots"`
	TotalSlots int    `json:"total_slots"`
}
