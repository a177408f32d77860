package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
)

// Calendar backends.
const (
	CalendarGoogle = "google"
	CalendarMemory = "memory"
)

// LLM providers.
const (
	LLMGemini  = "gemini"
	LLMBedrock = "bedrock"
	LLMNone    = "none"
)

// Email providers.
const (
	EmailSendGrid = "sendgrid"
	EmailSES      = "ses"
	EmailStub     = "stub"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Clinic profile
	BusinessName    string
	BusinessPhone   string
	BusinessEmail   string
	BusinessAddress string

	// Scheduling rules
	BusinessHoursStart         int
	BusinessHoursEnd           int
	ClosedWeekday              int
	SlotStrideMinutes          int
	AppointmentDurationMinutes int
	BufferTimeMinutes          int
	MinLeadTimeMinutes         int
	Timezone                   string
	TimezoneOffset             string

	// Calendar
	CalendarBackend               string
	CalendarID                    string
	GoogleCalendarTokenPath       string
	GoogleCalendarCredentialsPath string

	// Intent analysis
	LLMProvider    string
	LLMFallback    string
	GeminiAPIKey   string
	GeminiModel    string
	BedrockModelID string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Day lock; empty RedisAddr disables it.
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	BookingLockTTL  time.Duration
	BookingLockWait time.Duration

	// Confirmation email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	// Audit trail; empty DatabaseURL disables it.
	DatabaseURL string

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	PublicRateLimit    float64
	PublicRateBurst    int
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables, after loading an
// optional .env file. Variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BusinessName:    getEnv("BUSINESS_NAME", "Dental Clinic"),
		BusinessPhone:   getEnv("BUSINESS_PHONE", ""),
		BusinessEmail:   getEnv("BUSINESS_EMAIL", ""),
		BusinessAddress: getEnv("BUSINESS_ADDRESS", ""),

		BusinessHoursStart:         getEnvAsInt("BUSINESS_HOURS_START", 9),
		BusinessHoursEnd:           getEnvAsInt("BUSINESS_HOURS_END", 19),
		ClosedWeekday:              getEnvAsInt("CLOSED_WEEKDAY", 6),
		SlotStrideMinutes:          getEnvAsInt("SLOT_STRIDE_MINUTES", 30),
		AppointmentDurationMinutes: getEnvAsInt("APPOINTMENT_DURATION_MINUTES", 60),
		BufferTimeMinutes:          getEnvAsInt("BUFFER_TIME_MINUTES", 15),
		MinLeadTimeMinutes:         getEnvAsInt("MIN_LEAD_TIME_MINUTES", 60),
		Timezone:                   getEnv("TIMEZONE", "Asia/Karachi"),
		TimezoneOffset:             getEnv("TIMEZONE_OFFSET", "+05:00"),

		CalendarBackend:               strings.ToLower(strings.TrimSpace(getEnv("CALENDAR_BACKEND", CalendarGoogle))),
		CalendarID:                    getEnv("CALENDAR_ID", "primary"),
		GoogleCalendarTokenPath:       getEnv("GOOGLE_CALENDAR_TOKEN_PATH", ""),
		GoogleCalendarCredentialsPath: getEnv("GOOGLE_CALENDAR_CREDENTIALS_PATH", ""),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", LLMGemini))),
		LLMFallback:    strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		BookingLockTTL:  getEnvAsDuration("BOOKING_LOCK_TTL", 15*time.Second),
		BookingLockWait: getEnvAsDuration("BOOKING_LOCK_WAIT", 5*time.Second),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailStub))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Dental Front Desk"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		PublicRateLimit:    getEnvAsFloat("PUBLIC_RATE_LIMIT", 2),
		PublicRateBurst:    getEnvAsInt("PUBLIC_RATE_BURST", 10),
		ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// BusinessCalendar builds the scheduling rules and validates them.
func (c *Config) BusinessCalendar() (scheduling.BusinessCalendarConfig, error) {
	offset, err := ParseUTCOffset(c.TimezoneOffset)
	if err != nil {
		return scheduling.BusinessCalendarConfig{}, err
	}
	cal := scheduling.BusinessCalendarConfig{
		OpenHour:               c.BusinessHoursStart,
		CloseHour:              c.BusinessHoursEnd,
		ClosedWeekday:          c.ClosedWeekday,
		SlotStrideMinutes:      c.SlotStrideMinutes,
		DefaultDurationMinutes: c.AppointmentDurationMinutes,
		BufferMinutes:          c.BufferTimeMinutes,
		MinLeadTimeMinutes:     c.MinLeadTimeMinutes,
		UTCOffsetMinutes:       offset,
		TimezoneName:           c.Timezone,
	}
	if err := cal.Validate(); err != nil {
		return scheduling.BusinessCalendarConfig{}, err
	}
	return cal, nil
}

// Profile returns the clinic contact details.
func (c *Config) Profile() scheduling.BusinessProfile {
	return scheduling.BusinessProfile{
		Name:    c.BusinessName,
		Phone:   c.BusinessPhone,
		Email:   c.BusinessEmail,
		Address: c.BusinessAddress,
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.CalendarBackend {
	case CalendarMemory:
	case CalendarGoogle:
		if c.GoogleCalendarTokenPath == "" && c.GoogleCalendarCredentialsPath == "" {
			errs = append(errs, errors.New("config: GOOGLE_CALENDAR_TOKEN_PATH or GOOGLE_CALENDAR_CREDENTIALS_PATH is required for the google calendar backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown CALENDAR_BACKEND %q", c.CalendarBackend))
	}

	for _, p := range []string{c.LLMProvider, c.LLMFallback} {
		switch p {
		case "", LLMNone:
		case LLMGemini:
			if c.GeminiAPIKey == "" {
				errs = append(errs, errors.New("config: GEMINI_API_KEY is required for the gemini provider"))
			}
		case LLMBedrock:
			if c.BedrockModelID == "" {
				errs = append(errs, errors.New("config: BEDROCK_MODEL_ID is required for the bedrock provider"))
			}
		default:
			errs = append(errs, fmt.Errorf("config: unknown LLM provider %q", p))
		}
	}

	switch c.EmailProvider {
	case EmailStub:
	case EmailSendGrid:
		if c.SendGridAPIKey == "" || c.SendGridFromEmail == "" {
			errs = append(errs, errors.New("config: SENDGRID_API_KEY and SENDGRID_FROM_EMAIL are required for sendgrid"))
		}
	case EmailSES:
		if c.SESFromEmail == "" {
			errs = append(errs, errors.New("config: SES_FROM_EMAIL is required for ses"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}

	if _, err := c.BusinessCalendar(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseUTCOffset converts "+05:00", "-0330" or "Z" to minutes east of UTC.
func ParseUTCOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "Z") {
		return 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("config: invalid TIMEZONE_OFFSET %q", s)
	}
	body := strings.ReplaceAll(s[1:], ":", "")
	if len(body) != 4 {
		return 0, fmt.Errorf("config: invalid TIMEZONE_OFFSET %q", s)
	}
	hours, errH := strconv.Atoi(body[:2])
	minutes, errM := strconv.Atoi(body[2:])
	if errH != nil || errM != nil || hours > 14 || minutes > 59 {
		return 0, fmt.Errorf("config: invalid TIMEZONE_OFFSET %q", s)
	}
	return sign * (hours*60 + minutes), nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
