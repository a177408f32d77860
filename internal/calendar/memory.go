package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
)

// MemoryCalendar is an in-process scheduling.Calendar. It backs local demos
// and tests and is safe for concurrent use.
type MemoryCalendar struct {
	mu     sync.RWMutex
	events map[string]scheduling.Appointment
	loc    *time.Location
}

// NewMemoryCalendar returns an empty calendar reporting times in loc.
func NewMemoryCalendar(loc *time.Location) *MemoryCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return &MemoryCalendar{events: make(map[string]scheduling.Appointment), loc: loc}
}

// Seed adds events as-is, assigning ids to those without one.
func (m *MemoryCalendar) Seed(events ...scheduling.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		m.events[e.ID] = e
	}
}

func (m *MemoryCalendar) ListEvents(_ context.Context, start, end time.Time) ([]scheduling.Appointment, error) {
	window := scheduling.Interval{Start: start, End: end}
	m.mu.RLock()
	out := make([]scheduling.Appointment, 0, len(m.events))
	for _, e := range m.events {
		if e.Interval().Overlaps(window) {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (m *MemoryCalendar) InsertEvent(_ context.Context, ev scheduling.NewEvent) (*scheduling.Appointment, error) {
	if !ev.End.After(ev.Start) {
		return nil, fmt.Errorf("calendar: event end %s not after start %s", ev.End, ev.Start)
	}
	id := uuid.NewString()
	appt := scheduling.Appointment{
		ID:          id,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       ev.Start.In(m.loc),
		End:         ev.End.In(m.loc),
		Status:      "confirmed",
		URL:         "https://calendar.local/event/" + id,
	}
	m.mu.Lock()
	m.events[id] = appt
	m.mu.Unlock()
	return &appt, nil
}

func (m *MemoryCalendar) GetEvent(_ context.Context, id string) (*scheduling.Appointment, error) {
	m.mu.RLock()
	appt, ok := m.events[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("calendar: get event %s: %w", id, scheduling.ErrAppointmentNotFound)
	}
	return &appt, nil
}

func (m *MemoryCalendar) UpdateEvent(_ context.Context, appt scheduling.Appointment) (*scheduling.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.events[appt.ID]
	if !ok {
		return nil, fmt.Errorf("calendar: update event %s: %w", appt.ID, scheduling.ErrAppointmentNotFound)
	}
	current.Title = appt.Title
	current.Description = appt.Description
	current.Start = appt.Start.In(m.loc)
	current.End = appt.End.In(m.loc)
	m.events[appt.ID] = current
	return &current, nil
}
