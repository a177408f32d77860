package scheduling

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\+92\d{10}$`),
		regexp.MustCompile(`^92\d{10}$`),
		regexp.MustCompile(`^0\d{10}$`),
		regexp.MustCompile(`^\d{11}$`),
		regexp.MustCompile(`^\d{10,}$`),
	}
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	clockRe  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
	clock12h = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)$`)
)

// ValidPhone accepts Pakistani formats (+92, 92, 0 prefixes) and any bare run of
// at least ten digits once spaces, dashes and parentheses are removed. A leading
// "+" is only accepted as +92.
func ValidPhone(phone string) bool {
	cleaned := phoneStripper.Replace(strings.TrimSpace(phone))
	if cleaned == "" {
		return false
	}
	for _, re := range phonePatterns {
		if re.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// ValidEmail performs a basic shape check on an email address.
func ValidEmail(email string) bool {
	return emailRe.MatchString(strings.TrimSpace(email))
}

// ParseClock parses "HH:MM", "HH:MM:SS" or "HH:MM AM/PM" into hour and minute.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if m := clockRe.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	} else if m := clock12h.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		switch {
		case m[3] == "PM" && hour != 12:
			hour += 12
		case m[3] == "AM" && hour == 12:
			hour = 0
		}
	} else {
		return 0, 0, false
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
