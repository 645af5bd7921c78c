package signals

import (
	"regexp"
	"strings"
	"time"

	"github.com/focusmate/core/internal/timeparse"
)

// deadlinePrefixes are first tokens that mark a line as a labeled deadline.
var deadlinePrefixes = []string{"deadline", "due date", "due"}

// deadlineTrigger matches inline deadline phrasing ("submit by ...",
// "no later than ...") on lines without a labeled prefix.
var deadlineTrigger = regexp.MustCompile(`(?i)\b(?:due|deadline|by|before|no later than)\b`)

// ExtractDeadlineDatetime scans body lines for a deadline expression and
// returns the first instant it can resolve. Labeled lines ("Deadline:
// March 3") are tried first on each line, then inline phrasing. Returns nil
// when nothing parses.
func ExtractDeadlineDatetime(body string, ref time.Time) *time.Time {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if t, ok := parseLabeledDeadline(trimmed, ref); ok {
			return &t
		}
		if t, ok := parseInlineDeadline(trimmed, ref); ok {
			return &t
		}
	}
	return nil
}

func parseLabeledDeadline(line string, ref time.Time) (time.Time, bool) {
	lower := strings.ToLower(line)
	for _, prefix := range deadlinePrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := strings.TrimSpace(line[len(prefix):])
		rest = strings.TrimLeft(rest, ":- \t")
		if rest == "" {
			continue
		}
		if t, err := timeparse.ParseDateTime(rest, time.UTC, ref); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseInlineDeadline(line string, ref time.Time) (time.Time, bool) {
	loc := deadlineTrigger.FindStringIndex(line)
	if loc == nil {
		return time.Time{}, false
	}
	rest := strings.TrimSpace(line[loc[1]:])
	// Clip at sentence end so trailing prose does not confuse the parser.
	if idx := strings.IndexAny(rest, ".!?;"); idx > 0 {
		// Keep dots that are part of a date like 10.03.2025.
		if idx+1 >= len(rest) || rest[idx+1] == ' ' {
			rest = rest[:idx]
		}
	}
	if rest == "" {
		return time.Time{}, false
	}
	if t, err := timeparse.ParseDateTime(rest, time.UTC, ref); err == nil {
		return t, true
	}
	return time.Time{}, false
}
