package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNaturalDates(t *testing.T) {
	resolver := NewDateResolver(DefaultBusinessCalendar())
	tuesdayMorning := at(2026, time.July, 14, 10, 0)

	cases := []struct {
		input string
		want  Date
	}{
		{"today", NewDate(2026, time.July, 14)},
		{"can I come in TODAY?", NewDate(2026, time.July, 14)},
		{"tomorrow", NewDate(2026, time.July, 15)},
		{"friday", NewDate(2026, time.July, 17)},
		{"this Wednesday please", NewDate(2026, time.July, 15)},
		{"tuesday", NewDate(2026, time.July, 21)},
		{"sunday", NewDate(2026, time.July, 20)},
		{"next week", NewDate(2026, time.July, 21)},
		{"2026-07-21", NewDate(2026, time.July, 21)},
		{"July 21", NewDate(2026, time.July, 21)},
		{"jul. 21st", NewDate(2026, time.July, 21)},
		{"21st July", NewDate(2026, time.July, 21)},
		{"the 21st of july", NewDate(2026, time.July, 21)},
		{"Jul 21 2026", NewDate(2026, time.July, 21)},
		{"December 25, 2026", NewDate(2026, time.December, 25)},
		{"7/21", NewDate(2026, time.July, 21)},
		{"7/21/2026", NewDate(2026, time.July, 21)},
		{"march 3", NewDate(2027, time.March, 3)},
		{"July 14", NewDate(2027, time.July, 14)},
		{"July 19", NewDate(2026, time.July, 20)},
		{"2025-01-01", NewDate(2027, time.January, 1)},
		{"7/14/2026", NewDate(2027, time.July, 14)},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := resolver.Resolve(tc.input, tuesdayMorning)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveExplicitPastYearRollsForward(t *testing.T) {
	resolver := NewDateResolver(DefaultBusinessCalendar())
	now := at(2026, time.October, 16, 10, 0)

	got, err := resolver.Resolve("2020-01-05", now)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2027, time.January, 5), got)
	assert.True(t, got.After(DateOf(now)))

	got, err = resolver.Resolve("2026-12-01", now)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.December, 1), got, "future explicit dates are kept")
}

func TestResolveTodayAfterClosing(t *testing.T) {
	resolver := NewDateResolver(DefaultBusinessCalendar())
	got, err := resolver.Resolve("today", at(2026, time.July, 14, 19, 30))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.July, 15), got)

	got, err = resolver.Resolve("today", at(2026, time.July, 19, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.July, 20), got, "closed day rolls to the next open day")
}

func TestResolveTomorrowSkipsClosedDay(t *testing.T) {
	resolver := NewDateResolver(DefaultBusinessCalendar())
	got, err := resolver.Resolve("tomorrow", at(2026, time.July, 18, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.July, 20), got)
}

func TestResolveRejectsUnknownInput(t *testing.T) {
	resolver := NewDateResolver(DefaultBusinessCalendar())
	now := at(2026, time.July, 14, 10, 0)

	for _, input := range []string{"whenever works", "february 30", "13/40", ""} {
		_, err := resolver.Resolve(input, now)
		var parseErr *DateParseError
		require.True(t, errors.As(err, &parseErr), "input %q", input)
		assert.Equal(t, input, parseErr.Input)
	}
}

func TestResolveOrFallback(t *testing.T) {
	resolver := NewDateResolver(DefaultBusinessCalendar())
	now := at(2026, time.July, 18, 10, 0)

	d, fellBack := resolver.ResolveOrFallback("sometime soon", now)
	assert.True(t, fellBack)
	assert.Equal(t, NewDate(2026, time.July, 20), d)

	d, fellBack = resolver.ResolveOrFallback("monday", now)
	assert.False(t, fellBack)
	assert.Equal(t, NewDate(2026, time.July, 20), d)
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, time.July, 21)
	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-07-21"`, string(raw))

	var decoded Date
	require.NoError(t, decoded.UnmarshalJSON([]byte(`"2026-07-21"`)))
	assert.Equal(t, d, decoded)
	require.NoError(t, decoded.UnmarshalJSON([]byte(`""`)))
	assert.True(t, decoded.IsZero())
	assert.Error(t, decoded.UnmarshalJSON([]byte(`"21/07/2026"`)))
}
