package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-receptionist/internal/compliance"
	"github.com/wolfman30/dental-receptionist/internal/intent"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
)

type stubAnalyzer struct {
	analysis intent.Analysis
	date     scheduling.Date
	resolves bool
}

func (s stubAnalyzer) Analyze(context.Context, string) intent.Analysis { return s.analysis }

func (s stubAnalyzer) ResolveDate(intent.Analysis) (scheduling.Date, bool) { return s.date, s.resolves }

var tuesday = scheduling.NewDate(2026, time.July, 21)

type chatView struct {
	Intent        string            `json:"intent"`
	Reply         string            `json:"reply"`
	MissingFields []string          `json:"missing_fields"`
	Availability  *availabilityView `json:"availability"`
	Booking       *resultView       `json:"booking"`
}

func postChat(t *testing.T, svc *scheduling.Service, analyzer IntentAnalyzer, body any) (*chatView, int) {
	t.Helper()
	disclaimer := compliance.NewDisclaimerService(compliance.DefaultDisclaimerConfig())
	h := NewChatHandler(svc, analyzer, disclaimer, quietLogger())
	rec := doJSON(t, http.HandlerFunc(h.Message), http.MethodPost, "/chat", body)
	if rec.Code != http.StatusOK {
		return nil, rec.Code
	}
	var got chatView
	decodeBody(t, rec, &got)
	return &got, rec.Code
}

func TestChatAvailability(t *testing.T) {
	analyzer := stubAnalyzer{
		analysis: intent.Analysis{Intent: intent.IntentAvailability, Date: "tomorrow"},
		date:     tuesday,
		resolves: true,
	}
	got, code := postChat(t, newTestService(t, seededCalendar()), analyzer, map[string]string{"message": "Any openings tomorrow?"})
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "check_availability", got.Intent)
	require.NotNil(t, got.Availability)
	assert.Len(t, got.Availability.Slots, 14)
	assert.Equal(t, "Found 14 available slots for July 21, 2026. Open times include 11:30 AM, 12:00 PM, 12:30 PM, 01:00 PM, 01:30 PM.", got.Reply)
}

func TestChatBookingNeedsFields(t *testing.T) {
	analyzer := stubAnalyzer{analysis: intent.Analysis{Intent: intent.IntentBook, Date: "tomorrow"}}
	got, code := postChat(t, newTestService(t, seededCalendar()), analyzer, map[string]string{
		"message":      "I want to book a cleaning tomorrow",
		"patient_name": "Ali Khan",
	})
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, []string{"phone", "time"}, got.MissingFields)
	assert.Equal(t, "I'd be happy to book that for you. I still need your phone number and preferred time.", got.Reply)
	assert.Nil(t, got.Booking)
}

func TestChatBooksAndReportsConflicts(t *testing.T) {
	svc := newTestService(t, seededCalendar())
	analysis := intent.Analysis{
		Intent:      intent.IntentBook,
		Date:        "tomorrow",
		Time:        "11:30",
		PatientName: "Ali Khan",
		Phone:       "03001234567",
	}
	analyzer := stubAnalyzer{analysis: analysis, date: tuesday, resolves: true}

	got, code := postChat(t, svc, analyzer, map[string]string{"message": "Book me tomorrow 11:30, Ali Khan 03001234567"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, got.Booking)
	assert.Equal(t, scheduling.StatusBooked, got.Booking.Status)
	assert.Equal(t, "Appointment successfully booked for Ali Khan on Tuesday, July 21 at 11:30 AM.", got.Reply)

	// The same slot is now taken.
	got, code = postChat(t, svc, analyzer, map[string]string{"message": "Book me tomorrow 11:30, Ali Khan 03001234567"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, got.Booking)
	require.NotNil(t, got.Booking.Rejection)
	assert.Equal(t, string(scheduling.KindConflict), got.Booking.Rejection.Kind)
	assert.Contains(t, got.Reply, "Available alternatives: 01:00 PM")
}

func TestChatEmergencyCarriesDisclaimer(t *testing.T) {
	analyzer := stubAnalyzer{analysis: intent.Analysis{Intent: intent.IntentEmergency}}
	got, code := postChat(t, newTestService(t, seededCalendar()), analyzer, map[string]string{"message": "My tooth broke"})
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, got.Reply, "+92-300-1234567")
	assert.Contains(t, got.Reply, compliance.NewDisclaimerService(compliance.DefaultDisclaimerConfig()).Text())
}

func TestChatErrors(t *testing.T) {
	analyzer := stubAnalyzer{analysis: intent.Analysis{Intent: intent.IntentAvailability}}

	_, code := postChat(t, newTestService(t, seededCalendar()), analyzer, map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = postChat(t, newTestService(t, downCalendar{}), analyzer, map[string]string{"message": "Open tomorrow?"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
