package scheduling

import "time"

// IsWithinBusinessHours reports whether t falls in [OpenHour, CloseHour) in the
// business timezone.
func (c BusinessCalendarConfig) IsWithinBusinessHours(t time.Time) bool {
	hour := t.In(c.Location()).Hour()
	return c.OpenHour <= hour && hour < c.CloseHour
}

// IsClosedDay reports whether d is the clinic's weekly closure day.
func (c BusinessCalendarConfig) IsClosedDay(d Date) bool {
	return d.Weekday() == c.ClosedDay()
}

// EndOfBusinessDay returns d at CloseHour:00.
func (c BusinessCalendarConfig) EndOfBusinessDay(d Date) time.Time {
	return c.At(d, c.CloseHour, 0)
}

// OpeningTime returns d at OpenHour:00.
func (c BusinessCalendarConfig) OpeningTime(d Date) time.Time {
	return c.At(d, c.OpenHour, 0)
}

// At returns the instant hour:minute on d in the business timezone.
func (c BusinessCalendarConfig) At(d Date, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, c.Location())
}

// Today returns the business-local date of now.
func (c BusinessCalendarConfig) Today(now time.Time) Date {
	return DateOf(now.In(c.Location()))
}

// NextOpenDay returns d, or the first following day that is not closed.
func (c BusinessCalendarConfig) NextOpenDay(d Date) Date {
	for c.IsClosedDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// HoursLabel renders the opening window, e.g. "9:00 AM - 7:00 PM".
func (c BusinessCalendarConfig) HoursLabel() string {
	return formatHour(c.OpenHour) + " - " + formatHour(c.CloseHour)
}

func formatHour(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3:04 PM")
}
