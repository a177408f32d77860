package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// Intent is what the patient is trying to do.
type Intent string

const (
	IntentBook           Intent = "book_appointment"
	IntentAvailability   Intent = "check_availability"
	IntentEmergency      Intent = "emergency"
	IntentCancel         Intent = "cancel"
	IntentReschedule     Intent = "reschedule"
	IntentGreeting       Intent = "greeting"
	IntentGeneralInquiry Intent = "general_inquiry"
)

const (
	SourceLLM      = "llm"
	SourceKeywords = "keywords"
)

var validIntents = map[Intent]bool{
	IntentBook:           true,
	IntentAvailability:   true,
	IntentEmergency:      true,
	IntentCancel:         true,
	IntentReschedule:     true,
	IntentGreeting:       true,
	IntentGeneralInquiry: true,
}

// intentAliases maps names models tend to invent onto known intents.
var intentAliases = map[string]Intent{
	"booking":            IntentBook,
	"book":               IntentBook,
	"schedule":           IntentBook,
	"availability":       IntentAvailability,
	"availability_check": IntentAvailability,
	"cancellation":       IntentCancel,
	"greet":              IntentGreeting,
	"inquiry":            IntentGeneralInquiry,
}

// Analysis is the structured reading of one patient message. Empty strings
// mean the model found nothing for that field.
type Analysis struct {
	Intent          Intent `json:"intent"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	PatientName     string `json:"patient_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	AppointmentType string `json:"appointment_type,omitempty"`
	Confidence      string `json:"confidence"`
	Sentiment       string `json:"sentiment"`
	Source          string `json:"source"`
}

// MissingBookingFields lists the fields a booking still needs.
func (a Analysis) MissingBookingFields() []string {
	var missing []string
	if a.PatientName == "" {
		missing = append(missing, "patient_name")
	}
	if a.Phone == "" {
		missing = append(missing, "phone")
	}
	if a.Date == "" {
		missing = append(missing, "date")
	}
	if a.Time == "" {
		missing = append(missing, "time")
	}
	return missing
}

// AnalyzerConfig describes the clinic to the model.
type AnalyzerConfig struct {
	Model         string
	BusinessName  string
	BusinessPhone string
	Calendar      scheduling.BusinessCalendarConfig
	Clock         scheduling.Clock
	MaxTokens     int32
}

// Analyzer extracts intents. With a nil LLM it uses keyword matching only.
type Analyzer struct {
	llm    LLMClient
	cfg    AnalyzerConfig
	logger *logging.Logger
}

// NewAnalyzer creates an analyzer. llm may be nil.
func NewAnalyzer(llm LLMClient, cfg AnalyzerConfig, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = scheduling.SystemClock(cfg.Calendar.Location())
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	return &Analyzer{llm: llm, cfg: cfg, logger: logger}
}

// Analyze classifies message. Model failures and unparseable output degrade to
// keyword analysis; Analyze itself never fails.
func (a *Analyzer) Analyze(ctx context.Context, message string) Analysis {
	message = strings.TrimSpace(message)
	if a.llm == nil || message == "" {
		return KeywordAnalysis(message)
	}

	resp, err := a.llm.Complete(ctx, LLMRequest{
		Model:     a.cfg.Model,
		System:    []string{a.systemPrompt()},
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: message}},
		MaxTokens: a.cfg.MaxTokens,
		// Deterministic extraction.
		Temperature: 0,
	})
	if err != nil {
		a.logger.Warn("intent analysis failed, using keywords", "error", err)
		return KeywordAnalysis(message)
	}

	analysis, err := ParseAnalysis(resp.Text)
	if err != nil {
		a.logger.Warn("intent response unparseable, using keywords", "error", err)
		return KeywordAnalysis(message)
	}
	return analysis
}

func (a *Analyzer) systemPrompt() string {
	now := a.cfg.Clock.Now().In(a.cfg.Calendar.Location())
	name := a.cfg.BusinessName
	if name == "" {
		name = "the dental office"
	}

	var b strings.Builder
	b.WriteString("You analyze patient messages for the receptionist of a dental office.\n\n")
	b.WriteString("BUSINESS CONTEXT:\n")
	fmt.Fprintf(&b, "- Office: %s\n", name)
	fmt.Fprintf(&b, "- Hours: %s, closed %ss\n", a.cfg.Calendar.HoursLabel(), a.cfg.Calendar.ClosedDay())
	if a.cfg.BusinessPhone != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", a.cfg.BusinessPhone)
	}
	fmt.Fprintf(&b, "- Appointment types: %s\n\n", strings.Join(scheduling.AppointmentTypeKeys(), ", "))
	b.WriteString("INTENTS:\n")
	b.WriteString("- book_appointment: wants to schedule a visit\n")
	b.WriteString("- check_availability: asks which times are free\n")
	b.WriteString("- emergency: urgent pain, swelling, bleeding or trauma\n")
	b.WriteString("- cancel: wants to cancel an existing appointment\n")
	b.WriteString("- reschedule: wants to move an existing appointment\n")
	b.WriteString("- greeting: hello with no request\n")
	b.WriteString("- general_inquiry: anything else (services, hours, location)\n\n")
	b.WriteString("Reply with JSON only, using null for unknown values:\n")
	b.WriteString(`{"intent": "...", "date": "YYYY-MM-DD or natural text like 'next friday'", "time": "HH:MM (24h)", ` +
		`"patient_name": "...", "phone": "...", "email": "...", "appointment_type": "one of the types", ` +
		`"confidence": "high|medium|low", "sentiment": "positive|neutral|negative|urgent"}`)
	fmt.Fprintf(&b, "\n\nCurrent date/time: %s (%s)", now.Format("2006-01-02 15:04, Monday"), a.cfg.Calendar.Location())
	return b.String()
}

// rawAnalysis tolerates nulls and numeric confidence from the model.
type rawAnalysis struct {
	Intent          string          `json:"intent"`
	Date            *string         `json:"date"`
	Time            *string         `json:"time"`
	PatientName     *string         `json:"patient_name"`
	Phone           *string         `json:"phone"`
	Email           *string         `json:"email"`
	AppointmentType *string         `json:"appointment_type"`
	Confidence      json.RawMessage `json:"confidence"`
	Sentiment       string          `json:"sentiment"`
}

// ParseAnalysis decodes a model reply. Code fences and chatter around the JSON
// object are ignored; unknown intents become general_inquiry.
func ParseAnalysis(text string) (Analysis, error) {
	body := stripCodeFence(text)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return Analysis{}, fmt.Errorf("intent: no JSON object in %q", truncate(text, 80))
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return Analysis{}, fmt.Errorf("intent: decode analysis: %w", err)
	}

	a := Analysis{
		Intent:      normalizeIntent(raw.Intent),
		Date:        clean(raw.Date),
		Time:        clean(raw.Time),
		PatientName: clean(raw.PatientName),
		Phone:       clean(raw.Phone),
		Email:       clean(raw.Email),
		Confidence:  normalizeConfidence(raw.Confidence),
		Sentiment:   normalizeSentiment(raw.Sentiment),
		Source:      SourceLLM,
	}
	if t := clean(raw.AppointmentType); t != "" {
		a.AppointmentType = scheduling.NormalizeAppointmentType(t)
	}
	return a, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		// Drop the language tag line.
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func normalizeIntent(s string) Intent {
	key := strings.ToLower(strings.TrimSpace(s))
	if validIntents[Intent(key)] {
		return Intent(key)
	}
	if alias, ok := intentAliases[key]; ok {
		return alias
	}
	return IntentGeneralInquiry
}

func normalizeConfidence(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "medium"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s = strings.ToLower(strings.TrimSpace(s)); s {
		case "high", "medium", "low":
			return s
		}
		return "medium"
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		switch {
		case f >= 0.8:
			return "high"
		case f >= 0.5:
			return "medium"
		default:
			return "low"
		}
	}
	return "medium"
}

func normalizeSentiment(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "positive", "neutral", "negative", "urgent":
		return s
	}
	return "neutral"
}

func clean(p *string) string {
	if p == nil {
		return ""
	}
	s := strings.TrimSpace(*p)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var keywordRules = []struct {
	intent    Intent
	sentiment string
	words     []string
}{
	{IntentEmergency, "urgent", []string{"emergency", "urgent", "pain", "hurt", "broken", "bleeding", "swelling", "swollen"}},
	{IntentCancel, "neutral", []string{"cancel"}},
	{IntentReschedule, "neutral", []string{"reschedule", "change my appointment", "move my appointment"}},
	{IntentBook, "neutral", []string{"book", "schedule", "appointment"}},
	{IntentAvailability, "neutral", []string{"available", "availability", "open", "free", "slot", "when"}},
	{IntentGreeting, "positive", []string{"hello", "hi", "hey", "salam", "assalam", "good morning", "good afternoon", "good evening"}},
}

// KeywordAnalysis classifies message without a model. Rules are checked in
// order; greetings match whole words only.
func KeywordAnalysis(message string) Analysis {
	lower := strings.ToLower(message)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	result := Analysis{
		Intent:     IntentGeneralInquiry,
		Confidence: "low",
		Sentiment:  "neutral",
		Source:     SourceKeywords,
	}
	for _, rule := range keywordRules {
		if matchesAny(rule.intent, lower, wordSet, rule.words) {
			result.Intent = rule.intent
			result.Sentiment = rule.sentiment
			break
		}
	}
	return result
}

func matchesAny(intent Intent, lower string, wordSet map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if intent == IntentGreeting && !strings.Contains(kw, " ") {
			if wordSet[kw] {
				return true
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ResolveDate maps an analysis date onto a clinic date.
func (a *Analyzer) ResolveDate(analysis Analysis) (scheduling.Date, bool) {
	if analysis.Date == "" {
		return scheduling.Date{}, false
	}
	d, err := scheduling.NewDateResolver(a.cfg.Calendar).Resolve(analysis.Date, a.cfg.Clock.Now())
	if err != nil {
		return scheduling.Date{}, false
	}
	return d, true
}
