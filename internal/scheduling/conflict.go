package scheduling

import "time"

// ConflictDetector decides whether a candidate interval collides with booked
// appointments. A candidate conflicts when it overlaps an appointment directly,
// or when it overlaps after being widened by the buffer on both ends.
type ConflictDetector struct {
	buffer time.Duration
}

// NewConflictDetector creates a detector enforcing the given buffer.
func NewConflictDetector(buffer time.Duration) ConflictDetector {
	if buffer < 0 {
		buffer = 0
	}
	return ConflictDetector{buffer: buffer}
}

// HasConflict returns the first appointment, in list order, that blocks the
// candidate. All-day and cancelled entries never block timed slots.
func (d ConflictDetector) HasConflict(candidate Interval, existing []Appointment) (bool, *Appointment) {
	buffered := candidate.Expand(d.buffer)
	for _, appt := range existing {
		if appt.AllDay || appt.IsCancelled() {
			continue
		}
		booked := appt.Interval()
		direct := candidate.Overlaps(booked)
		padded := buffered.Overlaps(booked)
		if direct || padded {
			conflict := appt
			return true, &conflict
		}
	}
	return false, nil
}
