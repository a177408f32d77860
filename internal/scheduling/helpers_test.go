package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var pkt = DefaultBusinessCalendar().Location()

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, pkt)
}

func appt(id string, start time.Time, minutes int) Appointment {
	return Appointment{ID: id, Title: "Checkup - " + id, Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

type fakeCalendar struct {
	mu        sync.Mutex
	events    []Appointment
	listErr   error
	insertErr error
	updateErr error
	listCalls int
	inserted  []NewEvent
	nextID    int
}

func (f *fakeCalendar) ListEvents(_ context.Context, start, end time.Time) ([]Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	window := Interval{Start: start, End: end}
	var out []Appointment
	for _, e := range f.events {
		if e.Interval().Overlaps(window) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeCalendar) InsertEvent(_ context.Context, ev NewEvent) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	a := Appointment{ID: id, Title: ev.Title, Description: ev.Description, Location: ev.Location,
		Start: ev.Start, End: ev.End, Status: "confirmed", URL: "https://calendar.test/" + id}
	f.events = append(f.events, a)
	f.inserted = append(f.inserted, ev)
	return &a, nil
}

func (f *fakeCalendar) GetEvent(_ context.Context, id string) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, fmt.Errorf("fake calendar: %s: %w", id, ErrAppointmentNotFound)
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, a Appointment) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i, e := range f.events {
		if e.ID == a.ID {
			f.events[i] = a
			return &a, nil
		}
	}
	return nil, fmt.Errorf("fake calendar: %s: %w", a.ID, ErrAppointmentNotFound)
}

type recordingNotifier struct {
	sent []Confirmation
	err  error
}

func (n *recordingNotifier) AppointmentBooked(_ context.Context, c Confirmation) error {
	n.sent = append(n.sent, c)
	return n.err
}

type recordingAuditor struct {
	records []AuditRecord
}

func (a *recordingAuditor) Record(_ context.Context, rec AuditRecord) error {
	a.records = append(a.records, rec)
	return nil
}

type stubLocker struct {
	locked   []Date
	released int
	err      error
}

func (l *stubLocker) Lock(_ context.Context, d Date) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, d)
	return func() { l.released++ }, nil
}

var errCalendarDown = errors.New("calendar unavailable")
