package compliance

import (
	"fmt"
	"strings"
)

// DisclaimerLevel represents the verbosity of the disclaimer.
type DisclaimerLevel string

const (
	DisclaimerShort  DisclaimerLevel = "short"
	DisclaimerMedium DisclaimerLevel = "medium"
	DisclaimerFull   DisclaimerLevel = "full"
)

const (
	disclaimerShortText = "Automated receptionist. Not dental advice."

	disclaimerMediumText = "This is an automated receptionist. For advice about your teeth, please speak with our dentist."

	disclaimerFullText = "This is an automated scheduling assistant. It cannot diagnose or give dental or medical advice. If you have severe pain, swelling, bleeding or trauma, call the clinic or your local emergency number right away."
)

// DisclaimerConfig configures the disclaimer service.
type DisclaimerConfig struct {
	Level   DisclaimerLevel
	Enabled bool
	// OnlyFor limits disclaimers to these chat intents; empty means every reply.
	OnlyFor []string
	// CustomText overrides the default template.
	CustomText string
}

// DefaultDisclaimerConfig attaches the full disclaimer to emergency replies.
func DefaultDisclaimerConfig() DisclaimerConfig {
	return DisclaimerConfig{
		Level:   DisclaimerFull,
		Enabled: true,
		OnlyFor: []string{"emergency"},
	}
}

// DisclaimerService appends a fixed notice to assistant replies.
type DisclaimerService struct {
	config DisclaimerConfig
}

// NewDisclaimerService creates a new disclaimer service.
func NewDisclaimerService(config DisclaimerConfig) *DisclaimerService {
	return &DisclaimerService{config: config}
}

// Text returns the configured disclaimer.
func (s *DisclaimerService) Text() string {
	if s.config.CustomText != "" {
		return s.config.CustomText
	}
	switch s.config.Level {
	case DisclaimerShort:
		return disclaimerShortText
	case DisclaimerMedium:
		return disclaimerMediumText
	default:
		return disclaimerFullText
	}
}

// Applies reports whether replies for intent carry the disclaimer.
func (s *DisclaimerService) Applies(intent string) bool {
	if s == nil || !s.config.Enabled {
		return false
	}
	if len(s.config.OnlyFor) == 0 {
		return true
	}
	for _, i := range s.config.OnlyFor {
		if strings.EqualFold(i, intent) {
			return true
		}
	}
	return false
}

// Append adds the disclaimer to message once, when it applies to intent.
func (s *DisclaimerService) Append(message, intent string) string {
	if !s.Applies(intent) {
		return message
	}
	disclaimer := s.Text()
	if strings.Contains(message, disclaimer) {
		return message
	}
	return fmt.Sprintf("%s\n\n%s", strings.TrimSpace(message), disclaimer)
}
