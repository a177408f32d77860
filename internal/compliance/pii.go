package compliance

import (
	"regexp"
	"unicode/utf8"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// Candidate phone spans; minPhoneDigits filters out dates and times.
	phoneRe = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{6,}\d`)
)

const minPhoneDigits = 10

// RedactPII replaces emails with [EMAIL] and phone numbers with [PHONE] so patient
// messages can be logged. Names are kept.
func RedactPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	return phoneRe.ReplaceAllStringFunc(text, func(m string) string {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < minPhoneDigits {
			return m
		}
		return "[PHONE]"
	})
}

// LogPreview redacts text and cuts it to at most limit runes.
func LogPreview(text string, limit int) string {
	text = RedactPII(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}
