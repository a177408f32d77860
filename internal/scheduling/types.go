package scheduling

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a civil calendar date, interpreted in the business timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing overflow the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("scheduling: invalid date %q: use YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.utc().Before(o.utc())
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.utc().After(o.utc())
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string {
	return d.utc().Format(layout)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD"; an empty string yields the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// Expand widens the interval by pad on both ends.
func (i Interval) Expand(pad time.Duration) Interval {
	return Interval{Start: i.Start.Add(-pad), End: i.End.Add(pad)}
}

// Appointment is a snapshot of an event read from the external calendar.
type Appointment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day,omitempty"`
	Status      string    `json:"status,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// CancelledPrefix marks events cancelled through this service.
const CancelledPrefix = "[CANCELLED]"

// Interval returns the appointment's time range.
func (a Appointment) Interval() Interval {
	return Interval{Start: a.Start, End: a.End}
}

// IsCancelled reports whether the event no longer occupies its time.
func (a Appointment) IsCancelled() bool {
	return strings.EqualFold(a.Status, "cancelled") || strings.HasPrefix(a.Title, CancelledPrefix)
}

// DisplayName is the title shown to patients when describing a conflict.
func (a Appointment) DisplayName() string {
	if strings.TrimSpace(a.Title) == "" {
		return "Unknown appointment"
	}
	return a.Title
}

// Slot is a candidate appointment window.
type Slot struct {
	Interval
	Available bool
}

type slotJSON struct {
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	FormattedTime string `json:"formatted_time"`
	Time24h       string `json:"time_24h"`
	Timezone      string `json:"timezone"`
	UTCStart      string `json:"utc_start"`
	UTCEnd        string `json:"utc_end"`
	Available     bool   `json:"available"`
}

// MarshalJSON renders the slot with zone-qualified ISO times and display forms.
func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{
		StartTime:     s.Start.Format(time.RFC3339),
		EndTime:       s.End.Format(time.RFC3339),
		FormattedTime: s.Start.Format("03:04 PM"),
		Time24h:       s.Start.Format("15:04"),
		Timezone:      s.Start.Location().String(),
		UTCStart:      s.Start.UTC().Format(time.RFC3339),
		UTCEnd:        s.End.UTC().Format(time.RFC3339),
		Available:     s.Available,
	})
}

// Attendee is a guest on a calendar event.
type Attendee struct {
	Email       string
	DisplayName string
}

// NewEvent is the payload written to the external calendar on commit.
type NewEvent struct {
	Interval
	Title       string
	Description string
	Location    string
	TimeZone    string
	Attendees   []Attendee
}
