package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "BUSINESS_HOURS_START", "BUSINESS_HOURS_END", "CLOSED_WEEKDAY",
		"SLOT_STRIDE_MINUTES", "APPOINTMENT_DURATION_MINUTES", "BUFFER_TIME_MINUTES", "MIN_LEAD_TIME_MINUTES",
		"TIMEZONE", "TIMEZONE_OFFSET", "CALENDAR_BACKEND", "CORS_ALLOWED_ORIGINS", "REDIS_ADDR", "BOOKING_LOCK_TTL",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.CalendarBackend != CalendarGoogle {
		t.Fatalf("expected google calendar backend, got %s", cfg.CalendarBackend)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected day lock disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.BookingLockTTL != 15*time.Second {
		t.Fatalf("expected default lock ttl, got %s", cfg.BookingLockTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}

	cal, err := cfg.BusinessCalendar()
	require.NoError(t, err)
	assert.Equal(t, scheduling.DefaultBusinessCalendar(), cal)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BUSINESS_NAME", "Smile Dental")
	t.Setenv("BUSINESS_HOURS_START", "8")
	t.Setenv("BUSINESS_HOURS_END", "17")
	t.Setenv("CLOSED_WEEKDAY", "4")
	t.Setenv("BUFFER_TIME_MINUTES", "10")
	t.Setenv("TIMEZONE", "Asia/Dubai")
	t.Setenv("TIMEZONE_OFFSET", "+04:00")
	t.Setenv("CALENDAR_BACKEND", " Memory ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://smile.example, ,https://book.smile.example")
	t.Setenv("BOOKING_LOCK_TTL", "30s")
	t.Setenv("PUBLIC_RATE_LIMIT", "0.5")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, CalendarMemory, cfg.CalendarBackend)
	assert.Equal(t, []string{"https://smile.example", "https://book.smile.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.BookingLockTTL)
	assert.Equal(t, 0.5, cfg.PublicRateLimit)
	assert.Equal(t, "Smile Dental", cfg.Profile().Name)

	cal, err := cfg.BusinessCalendar()
	require.NoError(t, err)
	assert.Equal(t, 8, cal.OpenHour)
	assert.Equal(t, 17, cal.CloseHour)
	assert.Equal(t, time.Friday, cal.ClosedDay())
	assert.Equal(t, 240, cal.UTCOffsetMinutes)
	assert.Equal(t, "Asia/Dubai", cal.Location().String())
}

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"+05:00", 300, false},
		{"-0330", -210, false},
		{"Z", 0, false},
		{"", 0, false},
		{"05:00", 0, true},
		{"+5", 0, true},
		{"+15:00", 0, true},
		{"+05:75", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUTCOffset(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			CalendarBackend:            CalendarMemory,
			LLMProvider:                LLMNone,
			EmailProvider:              EmailStub,
			BusinessHoursStart:         9,
			BusinessHoursEnd:           19,
			ClosedWeekday:              6,
			SlotStrideMinutes:          30,
			AppointmentDurationMinutes: 60,
			BufferTimeMinutes:          15,
			MinLeadTimeMinutes:         60,
			Timezone:                   "Asia/Karachi",
			TimezoneOffset:             "+05:00",
		}
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.CalendarBackend = CalendarGoogle
	cfg.LLMProvider = LLMGemini
	cfg.EmailProvider = EmailSendGrid
	cfg.BusinessHoursEnd = 8
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "GOOGLE_CALENDAR_TOKEN_PATH")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
	assert.ErrorContains(t, err, "SENDGRID_API_KEY")
	assert.ErrorIs(t, err, scheduling.ErrInvalidConfig)

	cfg = base()
	cfg.LLMFallback = "openai"
	assert.ErrorContains(t, cfg.Validate(), `unknown LLM provider "openai"`)
}
