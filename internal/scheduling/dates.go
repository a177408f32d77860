package scheduling

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateParseError is returned when a date expression matches no known form.
type DateParseError struct {
	Input string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("scheduling: could not parse date %q", e.Input)
}

var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

var monthNames = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"february":  time.February,
	"feb":       time.February,
	"march":     time.March,
	"mar":       time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sept":      time.September,
	"sep":       time.September,
	"october":   time.October,
	"oct":       time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
}

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`

var (
	isoDateRe      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericDateRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
	monthDayRe     = regexp.MustCompile(`\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	dayMonthRe     = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `\b(?:,?\s+(\d{4})\b)?`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	errNoDateMatch = errors.New("scheduling: no date found")
)

// DateResolver maps natural date expressions to concrete clinic dates.
type DateResolver struct {
	cfg BusinessCalendarConfig
}

// NewDateResolver creates a resolver bound to the clinic calendar.
func NewDateResolver(cfg BusinessCalendarConfig) DateResolver {
	return DateResolver{cfg: cfg}
}

// Resolve maps input such as "today", "tomorrow", "friday", "next week" or
// "July 21" to a date, evaluated against now in the business timezone. Rules are
// tried in that order and the first match wins. Explicit dates never resolve to
// today or earlier.
func (r DateResolver) Resolve(input string, now time.Time) (Date, error) {
	now = now.In(r.cfg.Location())
	today := DateOf(now)
	text := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), " ")

	if strings.Contains(text, "today") {
		if now.Hour() < r.cfg.CloseHour && !r.cfg.IsClosedDay(today) {
			return today, nil
		}
		return r.cfg.NextOpenDay(today.AddDays(1)), nil
	}

	if strings.Contains(text, "tomorrow") {
		return r.cfg.NextOpenDay(today.AddDays(1)), nil
	}

	for _, wd := range weekdayNames {
		if !strings.Contains(text, wd.name) {
			continue
		}
		ahead := (int(wd.day) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		target := today.AddDays(ahead)
		if r.cfg.IsClosedDay(target) {
			target = target.AddDays(1)
		}
		return target, nil
	}

	if strings.Contains(text, "next week") {
		return r.cfg.NextOpenDay(today.AddDays(7)), nil
	}

	parsed, explicitYear, err := parseCalendarDate(text)
	if err != nil {
		return Date{}, &DateParseError{Input: input}
	}
	// Dates on or before today, with or without a year, move to the next
	// occurrence of that month and day.
	if !explicitYear || !parsed.After(today) {
		parsed = Date{Year: today.Year, Month: parsed.Month, Day: parsed.Day}
		if !parsed.After(today) {
			parsed.Year++
		}
		if !validDate(parsed) {
			return Date{}, &DateParseError{Input: input}
		}
	}
	if r.cfg.IsClosedDay(parsed) {
		parsed = parsed.AddDays(1)
	}
	return parsed, nil
}

// ResolveOrFallback resolves input and, when it cannot be parsed, falls back to
// the next open day after today. fellBack reports that the fallback was used.
func (r DateResolver) ResolveOrFallback(input string, now time.Time) (d Date, fellBack bool) {
	d, err := r.Resolve(input, now)
	if err == nil {
		return d, false
	}
	today := r.cfg.Today(now)
	return r.cfg.NextOpenDay(today.AddDays(1)), true
}

// parseCalendarDate extracts an explicit date. Year-less forms return year 0
// and explicitYear=false.
func parseCalendarDate(text string) (d Date, explicitYear bool, err error) {
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		return buildDate(m[1], monthNumber(m[2]), m[3])
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		return buildDate(m[3], monthNames[m[1]], m[2])
	}
	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		return buildDate(m[3], monthNames[m[2]], m[1])
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		return buildDate(m[3], monthNumber(m[1]), m[2])
	}
	return Date{}, false, errNoDateMatch
}

func monthNumber(s string) time.Month {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0
	}
	return time.Month(n)
}

func buildDate(yearStr string, month time.Month, dayStr string) (Date, bool, error) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || month == 0 || day < 1 || day > 31 {
		return Date{}, false, errNoDateMatch
	}
	if yearStr == "" {
		// Validated later against the year it lands in.
		return Date{Month: month, Day: day}, false, nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Date{}, false, errNoDateMatch
	}
	d := Date{Year: year, Month: month, Day: day}
	if !validDate(d) {
		return Date{}, false, errNoDateMatch
	}
	return d, true, nil
}

func validDate(d Date) bool {
	return NewDate(d.Year, d.Month, d.Day) == d
}
