// Package timeparse resolves natural-language date and time expressions
// found in email bodies into concrete timestamps.
package timeparse

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrNoDateTime is returned when a string contains no parseable date or time.
var ErrNoDateTime = errors.New("no parseable date/time")

// tzAliases maps common timezone abbreviations to IANA zone names.
// Abbreviations are ambiguous in general; these are the conventional
// North American and European readings.
var tzAliases = map[string]string{
	"EST": "America/New_York",
	"EDT": "America/New_York",
	"ET":  "America/New_York",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"CT":  "America/Chicago",
	"MST": "America/Phoenix",
	"MDT": "America/Denver",
	"MT":  "America/Denver",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"PT":  "America/Los_Angeles",
	"GMT": "Etc/GMT",
	"UTC": "UTC",
	"BST": "Europe/London",
	"CET": "Europe/Paris",
	"CEST": "Europe/Paris",
	"IST": "Asia/Kolkata",
	"JST": "Asia/Tokyo",
}

var tzTokenPattern = regexp.MustCompile(`(?i)\(?\b(EST|EDT|ET|CST|CDT|CT|MST|MDT|MT|PST|PDT|PT|GMT|UTC|BST|CET|CEST|IST|JST)\b\)?`)

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDatePattern = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)
	clockPattern     = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b|\b(\d{1,2}):(\d{2})\b`)
)

// TimezoneLocation resolves a timezone abbreviation found in s. It returns
// the location and true when an alias matches and loads, otherwise nil and
// false.
func TimezoneLocation(s string) (*time.Location, bool) {
	m := tzTokenPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	zone, ok := tzAliases[strings.ToUpper(m[1])]
	if !ok {
		return nil, false
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// StripTimezoneToken removes a recognized timezone abbreviation (with any
// surrounding parentheses) from s.
func StripTimezoneToken(s string) string {
	return strings.TrimSpace(tzTokenPattern.ReplaceAllString(s, ""))
}

// ParseDateTime parses a free-form date/time expression in the given
// location. A timezone abbreviation inside the string overrides loc.
// When no year is present the reference time supplies one; when no time of
// day is present midnight is used.
func ParseDateTime(s string, loc *time.Location, ref time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoDateTime
	}
	if tzLoc, ok := TimezoneLocation(s); ok {
		loc = tzLoc
		s = StripTimezoneToken(s)
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := dateparse.ParseIn(s, loc); err == nil {
		return normalizeYear(t, ref, loc), nil
	}

	// Fall back to composing an explicit date and clock time out of the
	// fragments dateparse could not handle as a whole.
	date, haveDate := findDate(s, ref, loc)
	hour, minute, haveTime := findClock(s)
	if !haveDate && !haveTime {
		return time.Time{}, ErrNoDateTime
	}
	if !haveDate {
		date = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}

// normalizeYear repairs parses where dateparse defaulted a missing year to 0.
func normalizeYear(t time.Time, ref time.Time, loc *time.Location) time.Time {
	if t.Year() > 0 {
		return t
	}
	return time.Date(ref.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func findDate(s string, ref time.Time, loc *time.Location) (time.Time, bool) {
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		if t, err := time.ParseInLocation("2006-1-2", m[1]+"-"+m[2]+"-"+m[3], loc); err == nil {
			return t, true
		}
	}
	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		if t, err := time.ParseInLocation("1/2/2006", m[1]+"/"+m[2]+"/"+m[3], loc); err == nil {
			return t, true
		}
	}
	if m := monthDatePattern.FindStringSubmatch(s); m != nil {
		year := m[3]
		if year == "" {
			year = ref.Format("2006")
		}
		month := strings.TrimSuffix(m[1], ".")
		month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
		if month == "Sept" {
			month = "Sep"
		}
		for _, layout := range []string{"January 2 2006", "Jan 2 2006"} {
			if t, err := time.ParseInLocation(layout, month+" "+m[2]+" "+year, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func findClock(s string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	if m[3] != "" { // am/pm form
		hour = atoi(m[1])
		minute = atoi(m[2])
		if strings.EqualFold(m[3], "pm") && hour < 12 {
			hour += 12
		}
		if strings.EqualFold(m[3], "am") && hour == 12 {
			hour = 0
		}
	} else {
		hour = atoi(m[4])
		minute = atoi(m[5])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

var rangeSeparators = []string{"–", "—", " - ", " to ", "-"}

// SplitTimeRange splits an expression like "3pm - 4pm" or "10:00–11:30"
// into its start and end parts. When no separator is present the whole
// string is returned as the start with an empty end.
func SplitTimeRange(s string) (start, end string) {
	s = strings.TrimSpace(s)
	for _, sep := range rangeSeparators {
		// A bare hyphen also appears inside ISO dates; only treat it as a
		// range separator when the string is not itself a date.
		if sep == "-" && (isoDatePattern.MatchString(s) || slashDatePattern.MatchString(s)) {
			continue
		}
		if idx := strings.Index(s, sep); idx > 0 {
			left := strings.TrimSpace(s[:idx])
			right := strings.TrimSpace(s[idx+len(sep):])
			if left != "" && right != "" {
				return left, right
			}
		}
	}
	return s, ""
}
