package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-receptionist/internal/calendar"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

var (
	testCal = scheduling.DefaultBusinessCalendar()
	pkt     = testCal.Location()
	// Monday 2026-07-20 10:00 clinic time.
	testNow = time.Date(2026, time.July, 20, 10, 0, 0, 0, pkt)
)

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func newTestService(t *testing.T, cal scheduling.Calendar) *scheduling.Service {
	t.Helper()
	svc, err := scheduling.NewService(testCal, cal, scheduling.Options{
		Clock:  scheduling.FixedClock(testNow),
		Logger: quietLogger(),
		Profile: scheduling.BusinessProfile{
			Name:    "Smile Dental",
			Phone:   "+92-300-1234567",
			Email:   "desk@smile.example",
			Address: "12 Main Boulevard, Lahore",
		},
	})
	require.NoError(t, err)
	return svc
}

// seededCalendar holds one appointment on Tuesday 2026-07-21 10:00-11:00.
func seededCalendar() *calendar.MemoryCalendar {
	cal := calendar.NewMemoryCalendar(pkt)
	start := time.Date(2026, time.July, 21, 10, 0, 0, 0, pkt)
	cal.Seed(scheduling.Appointment{
		ID:     "existing-1",
		Title:  "Dental Checkup - Sara",
		Start:  start,
		End:    start.Add(time.Hour),
		Status: "confirmed",
	})
	return cal
}

var errCalendarDown = errors.New("calendar: 500 backend error")

type downCalendar struct{}

func (downCalendar) ListEvents(context.Context, time.Time, time.Time) ([]scheduling.Appointment, error) {
	return nil, errCalendarDown
}

func (downCalendar) InsertEvent(context.Context, scheduling.NewEvent) (*scheduling.Appointment, error) {
	return nil, errCalendarDown
}

func (downCalendar) GetEvent(context.Context, string) (*scheduling.Appointment, error) {
	return nil, errCalendarDown
}

func (downCalendar) UpdateEvent(context.Context, scheduling.Appointment) (*scheduling.Appointment, error) {
	return nil, errCalendarDown
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type slotView struct {
	StartTime     string `json:"start_time"`
	FormattedTime string `json:"formatted_time"`
}

type availabilityView struct {
	Date            string     `json:"date"`
	Available       bool       `json:"available"`
	Slots           []slotView `json:"slots"`
	Message         string     `json:"message"`
	DurationMinutes int        `json:"duration_minutes"`
}

type resultView struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Message   string `json:"message"`
	Rejection *struct {
		Kind         string     `json:"kind"`
		Reason       string     `json:"reason"`
		Alternatives []slotView `json:"alternatives"`
		Conflict     *struct {
			ID string `json:"id"`
		} `json:"conflict"`
	} `json:"rejection"`
}
