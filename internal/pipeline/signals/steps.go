package signals

import (
	"regexp"
	"strings"
)

// DefaultMaxSteps bounds how many instruction steps are extracted from a
// single message.
const DefaultMaxSteps = 12

// stepPattern matches a line that starts a new instruction step: the word
// "step" with a number, a leading ordinal, or a bullet marker. The capture
// group holds the step text with the marker stripped.
var stepPattern = regexp.MustCompile(`(?i)^\s*(?:step\s*\d+\s*[:.)\-]?|\d+\s*[.)\-]|[-*•])\s+(.*)$`)

// maxContinuationLen caps how long a wrapped continuation line may be
// before it is treated as body prose instead.
const maxContinuationLen = 120

// ExtractInstructionSteps scans body lines for step markers and returns the
// ordered step texts, capped at maxSteps. A short non-empty line following a
// step that does not end with a colon is treated as a wrapped continuation
// of that step. Fewer than two recognized steps yields an empty result to
// avoid false positives on stray bullets.
func ExtractInstructionSteps(body string, maxSteps int) []string {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	var steps []string
	open := false // last appended step may still absorb a continuation

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			open = false
			continue
		}
		if m := stepPattern.FindStringSubmatch(trimmed); m != nil {
			text := strings.TrimSpace(m[1])
			if text == "" {
				open = false
				continue
			}
			if len(steps) >= maxSteps {
				break
			}
			steps = append(steps, text)
			open = true
			continue
		}
		if open && len(trimmed) <= maxContinuationLen && !strings.HasSuffix(trimmed, ":") {
			steps[len(steps)-1] += " " + trimmed
		}
		open = false
	}

	if len(steps) < 2 {
		return nil
	}
	return steps
}
