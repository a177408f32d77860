package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasConflictDirectOverlap(t *testing.T) {
	detector := NewConflictDetector(15 * time.Minute)
	existing := []Appointment{appt("a", at(2026, time.July, 14, 10, 0), 60)}

	candidate := Interval{Start: at(2026, time.July, 14, 10, 30), End: at(2026, time.July, 14, 11, 30)}
	conflict, blocking := detector.HasConflict(candidate, existing)
	require.True(t, conflict)
	require.NotNil(t, blocking)
	assert.Equal(t, "a", blocking.ID)
}

func TestHasConflictWithinBuffer(t *testing.T) {
	detector := NewConflictDetector(15 * time.Minute)
	existing := []Appointment{appt("a", at(2026, time.July, 14, 10, 0), 60)}

	cases := []struct {
		name     string
		start    time.Time
		conflict bool
	}{
		{"adjacent after", at(2026, time.July, 14, 11, 0), true},
		{"adjacent before", at(2026, time.July, 14, 9, 0), true},
		{"ten minute gap", at(2026, time.July, 14, 11, 10), true},
		{"exact buffer gap after", at(2026, time.July, 14, 11, 15), false},
		{"exact buffer gap before", at(2026, time.July, 14, 8, 45), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := Interval{Start: tc.start, End: tc.start.Add(time.Hour)}
			conflict, _ := detector.HasConflict(candidate, existing)
			assert.Equal(t, tc.conflict, conflict)
		})
	}
}

func TestHasConflictZeroBufferAllowsAdjacency(t *testing.T) {
	detector := NewConflictDetector(0)
	existing := []Appointment{appt("a", at(2026, time.July, 14, 10, 0), 60)}
	candidate := Interval{Start: at(2026, time.July, 14, 11, 0), End: at(2026, time.July, 14, 12, 0)}
	conflict, blocking := detector.HasConflict(candidate, existing)
	assert.False(t, conflict)
	assert.Nil(t, blocking)
}

func TestHasConflictIgnoresAllDayAndCancelled(t *testing.T) {
	detector := NewConflictDetector(15 * time.Minute)
	allDay := Appointment{ID: "holiday", Title: "Staff training", AllDay: true,
		Start: at(2026, time.July, 14, 0, 0), End: at(2026, time.July, 15, 0, 0)}
	cancelled := appt("c", at(2026, time.July, 14, 10, 0), 60)
	cancelled.Title = CancelledPrefix + " " + cancelled.Title
	declined := appt("d", at(2026, time.July, 14, 10, 0), 60)
	declined.Status = "cancelled"

	candidate := Interval{Start: at(2026, time.July, 14, 10, 0), End: at(2026, time.July, 14, 11, 0)}
	conflict, _ := detector.HasConflict(candidate, []Appointment{allDay, cancelled, declined})
	assert.False(t, conflict)
}

func TestHasConflictReturnsFirstInListOrder(t *testing.T) {
	detector := NewConflictDetector(15 * time.Minute)
	existing := []Appointment{
		appt("second", at(2026, time.July, 14, 11, 0), 30),
		appt("first", at(2026, time.July, 14, 10, 0), 30),
	}
	candidate := Interval{Start: at(2026, time.July, 14, 10, 0), End: at(2026, time.July, 14, 11, 30)}
	_, blocking := detector.HasConflict(candidate, existing)
	require.NotNil(t, blocking)
	assert.Equal(t, "second", blocking.ID)

	blocking.Title = "mutated"
	assert.NotEqual(t, "mutated", existing[0].Title, "returned appointment is a copy")
}
