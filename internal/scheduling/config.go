// Package scheduling computes bookable appointment slots for the clinic and
// decides, against fresh calendar data, whether a requested slot may be booked.
package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate for unusable business calendar settings.
var ErrInvalidConfig = errors.New("scheduling: invalid business calendar config")

// BusinessCalendarConfig holds the clinic's scheduling rules. It is built once at
// startup and treated as read-only afterwards.
type BusinessCalendarConfig struct {
	OpenHour               int // 24h, inclusive
	CloseHour              int // 24h, exclusive
	ClosedWeekday          int // 0=Monday .. 6=Sunday
	SlotStrideMinutes      int
	DefaultDurationMinutes int
	BufferMinutes          int
	MinLeadTimeMinutes     int
	UTCOffsetMinutes       int    // fixed offset, e.g. 300 for +05:00
	TimezoneName           string // label sent to the calendar, e.g. "Asia/Karachi"
}

// DefaultBusinessCalendar returns the clinic defaults: 09:00-19:00, closed Sundays,
// 30 minute stride, 60 minute appointments, 15 minute buffer, one hour notice, PKT.
func DefaultBusinessCalendar() BusinessCalendarConfig {
	return BusinessCalendarConfig{
		OpenHour:               9,
		CloseHour:              19,
		ClosedWeekday:          6,
		SlotStrideMinutes:      30,
		DefaultDurationMinutes: 60,
		BufferMinutes:          15,
		MinLeadTimeMinutes:     60,
		UTCOffsetMinutes:       5 * 60,
		TimezoneName:           "Asia/Karachi",
	}
}

// Validate reports the first unusable setting.
func (c BusinessCalendarConfig) Validate() error {
	switch {
	case c.OpenHour < 0 || c.OpenHour > 23:
		return fmt.Errorf("%w: open hour %d out of range", ErrInvalidConfig, c.OpenHour)
	case c.CloseHour < 1 || c.CloseHour > 24:
		return fmt.Errorf("%w: close hour %d out of range", ErrInvalidConfig, c.CloseHour)
	case c.OpenHour >= c.CloseHour:
		return fmt.Errorf("%w: open hour %d must be before close hour %d", ErrInvalidConfig, c.OpenHour, c.CloseHour)
	case c.ClosedWeekday < 0 || c.ClosedWeekday > 6:
		return fmt.Errorf("%w: closed weekday %d out of range", ErrInvalidConfig, c.ClosedWeekday)
	case c.SlotStrideMinutes <= 0:
		return fmt.Errorf("%w: slot stride must be positive", ErrInvalidConfig)
	case c.DefaultDurationMinutes <= 0:
		return fmt.Errorf("%w: default duration must be positive", ErrInvalidConfig)
	case c.BufferMinutes < 0:
		return fmt.Errorf("%w: buffer must not be negative", ErrInvalidConfig)
	case c.MinLeadTimeMinutes < 0:
		return fmt.Errorf("%w: lead time must not be negative", ErrInvalidConfig)
	case c.UTCOffsetMinutes < -14*60 || c.UTCOffsetMinutes > 14*60:
		return fmt.Errorf("%w: utc offset %d minutes out of range", ErrInvalidConfig, c.UTCOffsetMinutes)
	}
	return nil
}

// Location returns the business timezone as a fixed UTC offset. Rule-based zones
// are never used, so DST tables cannot shift appointment times.
func (c BusinessCalendarConfig) Location() *time.Location {
	name := c.TimezoneName
	if name == "" {
		name = formatOffset(c.UTCOffsetMinutes)
	}
	return time.FixedZone(name, c.UTCOffsetMinutes*60)
}

// Stride is the distance between consecutive candidate slot starts.
func (c BusinessCalendarConfig) Stride() time.Duration {
	return time.Duration(c.SlotStrideMinutes) * time.Minute
}

// Buffer is the minimum gap enforced around existing appointments.
func (c BusinessCalendarConfig) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

// LeadTime is the minimum notice between now and a bookable start.
func (c BusinessCalendarConfig) LeadTime() time.Duration {
	return time.Duration(c.MinLeadTimeMinutes) * time.Minute
}

// DefaultDuration is the appointment length used when a request omits one.
func (c BusinessCalendarConfig) DefaultDuration() time.Duration {
	return time.Duration(c.DefaultDurationMinutes) * time.Minute
}

// ClosedDay returns the weekday the clinic does not operate.
func (c BusinessCalendarConfig) ClosedDay() time.Weekday {
	return time.Weekday((c.ClosedWeekday + 1) % 7)
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}
