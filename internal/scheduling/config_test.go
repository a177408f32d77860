package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBusinessCalendarIsValid(t *testing.T) {
	cfg := DefaultBusinessCalendar()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Sunday, cfg.ClosedDay())
	assert.Equal(t, 30*time.Minute, cfg.Stride())
	assert.Equal(t, 15*time.Minute, cfg.Buffer())
	assert.Equal(t, time.Hour, cfg.LeadTime())
	assert.Equal(t, time.Hour, cfg.DefaultDuration())
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*BusinessCalendarConfig){
		"open after close":  func(c *BusinessCalendarConfig) { c.OpenHour = 20 },
		"open equals close": func(c *BusinessCalendarConfig) { c.OpenHour = 19 },
		"close past 24":     func(c *BusinessCalendarConfig) { c.CloseHour = 25 },
		"weekday range":     func(c *BusinessCalendarConfig) { c.ClosedWeekday = 7 },
		"zero stride":       func(c *BusinessCalendarConfig) { c.SlotStrideMinutes = 0 },
		"zero duration":     func(c *BusinessCalendarConfig) { c.DefaultDurationMinutes = 0 },
		"negative buffer":   func(c *BusinessCalendarConfig) { c.BufferMinutes = -1 },
		"negative lead":     func(c *BusinessCalendarConfig) { c.MinLeadTimeMinutes = -5 },
		"offset range":      func(c *BusinessCalendarConfig) { c.UTCOffsetMinutes = 15 * 60 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultBusinessCalendar()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLocationIsFixedOffset(t *testing.T) {
	cfg := DefaultBusinessCalendar()
	loc := cfg.Location()
	assert.Equal(t, "Asia/Karachi", loc.String())
	for _, month := range []time.Month{time.January, time.July} {
		_, offset := time.Date(2026, month, 1, 12, 0, 0, 0, loc).Zone()
		assert.Equal(t, 5*3600, offset)
	}

	cfg.TimezoneName = ""
	cfg.UTCOffsetMinutes = -330
	assert.Equal(t, "UTC-05:30", cfg.Location().String())
}

func TestClosedWeekdayMapping(t *testing.T) {
	cfg := DefaultBusinessCalendar()
	cfg.ClosedWeekday = 0
	assert.Equal(t, time.Monday, cfg.ClosedDay())
	assert.True(t, cfg.IsClosedDay(NewDate(2026, time.July, 13)))
	assert.False(t, cfg.IsClosedDay(NewDate(2026, time.July, 19)))
}
