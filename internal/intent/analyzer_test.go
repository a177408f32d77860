package intent

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

type stubLLM struct {
	text     string
	err      error
	requests []LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return LLMResponse{Text: s.text}, nil
}

func testAnalyzer(llm LLMClient) *Analyzer {
	cal := scheduling.DefaultBusinessCalendar()
	// Monday 2026-07-20 10:00 clinic time.
	now := time.Date(2026, time.July, 20, 10, 0, 0, 0, cal.Location())
	return NewAnalyzer(llm, AnalyzerConfig{
		Model:         "test-model",
		BusinessName:  "Smile Dental",
		BusinessPhone: "+92-300-1234567",
		Calendar:      cal,
		Clock:         scheduling.FixedClock(now),
	}, logging.NewWithWriter("error", &bytes.Buffer{}))
}

func TestAnalyzeParsesModelJSON(t *testing.T) {
	llm := &stubLLM{text: "```json\n{\"intent\": \"book_appointment\", \"date\": \"2026-07-21\", \"time\": \"11:30\", " +
		"\"patient_name\": \"Ali Khan\", \"phone\": \"03001234567\", \"email\": null, " +
		"\"appointment_type\": \"Root canal\", \"confidence\": \"high\", \"sentiment\": \"neutral\"}\n```"}
	a := testAnalyzer(llm)

	got := a.Analyze(context.Background(), "Book me a root canal tomorrow 11:30, Ali Khan 03001234567")

	assert.Equal(t, IntentBook, got.Intent)
	assert.Equal(t, "2026-07-21", got.Date)
	assert.Equal(t, "11:30", got.Time)
	assert.Equal(t, "Ali Khan", got.PatientName)
	assert.Empty(t, got.Email)
	assert.Equal(t, "root_canal", got.AppointmentType)
	assert.Equal(t, "high", got.Confidence)
	assert.Equal(t, SourceLLM, got.Source)
	assert.Empty(t, got.MissingBookingFields())

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, "test-model", req.Model)
	assert.Contains(t, req.System[0], "Smile Dental")
	assert.Contains(t, req.System[0], "2026-07-20 10:00, Monday")
	assert.Contains(t, req.System[0], "root_canal")

	d, ok := a.ResolveDate(got)
	require.True(t, ok)
	assert.Equal(t, scheduling.NewDate(2026, time.July, 21), d)
}

func TestAnalyzeFallsBackToKeywords(t *testing.T) {
	tests := []struct {
		name string
		llm  LLMClient
	}{
		{"no model", nil},
		{"model error", &stubLLM{err: errors.New("throttled")}},
		{"not json", &stubLLM{text: "Sure! I can help with that."}},
		{"broken json", &stubLLM{text: `{"intent": "book_appointment",`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testAnalyzer(tt.llm).Analyze(context.Background(), "My tooth is broken and I'm in pain")
			assert.Equal(t, IntentEmergency, got.Intent)
			assert.Equal(t, "urgent", got.Sentiment)
			assert.Equal(t, "low", got.Confidence)
			assert.Equal(t, SourceKeywords, got.Source)
		})
	}
}

func TestParseAnalysisNormalizes(t *testing.T) {
	got, err := ParseAnalysis(`Here you go: {"intent": "availability_check", "confidence": 0.92, "sentiment": "happy"} thanks`)
	require.NoError(t, err)
	assert.Equal(t, IntentAvailability, got.Intent)
	assert.Equal(t, "high", got.Confidence)
	assert.Equal(t, "neutral", got.Sentiment)

	got, err = ParseAnalysis(`{"intent": "order_pizza", "date": "null"}`)
	require.NoError(t, err)
	assert.Equal(t, IntentGeneralInquiry, got.Intent)
	assert.Equal(t, "medium", got.Confidence)
	assert.Empty(t, got.Date)
	assert.ElementsMatch(t, []string{"patient_name", "phone", "date", "time"}, got.MissingBookingFields())
}

func TestKeywordAnalysis(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"I need to cancel my appointment", IntentCancel},
		{"Can I reschedule to Friday?", IntentReschedule},
		{"I'd like to book a cleaning", IntentBook},
		{"Are you available on Saturday?", IntentAvailability},
		{"Hi there", IntentGreeting},
		{"Assalam o alaikum", IntentGreeting},
		{"Which insurance do you take?", IntentGeneralInquiry},
		{"This is urgent, my gum is swollen", IntentEmergency},
		// "this" must not read as a greeting.
		{"Is this the right number", IntentGeneralInquiry},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordAnalysis(tt.message).Intent)
		})
	}
}

func TestCannedReply(t *testing.T) {
	assert.Contains(t, CannedReply(IntentEmergency, "Smile Dental", "+92-300-1234567"), "+92-300-1234567")
	assert.Contains(t, CannedReply(IntentGreeting, "Smile Dental", ""), "Smile Dental")
	assert.Contains(t, CannedReply(IntentGeneralInquiry, "", "123"), "our clinic")
}
