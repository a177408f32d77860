package scheduling

import "time"

// Clock supplies the current instant. Tests inject a fixed clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return ClockFunc(func() time.Time { return time.Now().In(loc) })
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
