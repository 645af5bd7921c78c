package signals

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/focusmate/core/internal/timeparse"
)

// DefaultMeetingDuration is used when a meeting line gives only a start time.
const DefaultMeetingDuration = 45 * time.Minute

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(hours?|hrs?|h|minutes?|mins?|m)\b`)

// MeetingWindow is a resolved meeting start/end pair.
type MeetingWindow struct {
	Start time.Time
	End   time.Time
}

// ExtractMeetingWindow scans body lines labeled "Date:", "Time:" and
// "Duration:" and resolves them into a concrete window. A timezone token in
// either the date or time line sets the window's zone. The result always
// satisfies End > Start; when no usable end can be derived the default
// meeting duration applies. Returns nil when no date/time lines resolve.
func ExtractMeetingWindow(body string, ref time.Time) *MeetingWindow {
	var dateText, timeText, durationText string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "date:") && dateText == "":
			dateText = strings.TrimSpace(trimmed[len("date:"):])
		case strings.HasPrefix(lower, "time:") && timeText == "":
			timeText = strings.TrimSpace(trimmed[len("time:"):])
		case strings.HasPrefix(lower, "duration:") && durationText == "":
			durationText = strings.TrimSpace(trimmed[len("duration:"):])
		}
	}
	if dateText == "" && timeText == "" {
		return nil
	}

	loc := time.UTC
	if l, ok := timeparse.TimezoneLocation(dateText); ok {
		loc = l
	} else if l, ok := timeparse.TimezoneLocation(timeText); ok {
		loc = l
	}
	dateText = timeparse.StripTimezoneToken(dateText)
	timeText = timeparse.StripTimezoneToken(timeText)

	startText, endText := timeparse.SplitTimeRange(timeText)

	start, err := timeparse.ParseDateTime(joinDateTime(dateText, startText), loc, ref)
	if err != nil {
		return nil
	}

	end := start.Add(resolveDuration(durationText))
	if endText != "" {
		if e, err := timeparse.ParseDateTime(joinDateTime(dateText, endText), loc, ref); err == nil && e.After(start) {
			end = e
		}
	}
	return &MeetingWindow{Start: start, End: end}
}

func joinDateTime(dateText, timeText string) string {
	switch {
	case dateText == "":
		return timeText
	case timeText == "":
		return dateText
	default:
		return dateText + " " + timeText
	}
}

func resolveDuration(text string) time.Duration {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultMeetingDuration
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultMeetingDuration
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		return time.Duration(n) * time.Hour
	}
	return time.Duration(n) * time.Minute
}
