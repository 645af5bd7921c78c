// Package signals derives deterministic hints from raw message text.
// Everything here is pure: no model calls, no I/O.
package signals

import "strings"

// Keyword sets for intent detection. Matching is case-insensitive
// substring match over subject+body.
var taskKeywords = []string{
	"deadline", "due", "submit", "confirm", "rsvp", "schedule",
	"interview", "respond", "reply by", "action required", "complete",
	"register", "sign up", "review", "approve", "payment",
}

var deadlineKeywords = []string{
	"deadline", "due date", "due by", "by end of day", "eod",
	"no later than", "expires", "closing date", "submit by", "before",
}

var instructionKeywords = []string{
	"step 1", "step one", "instructions", "how to", "follow these",
	"first,", "guide", "tutorial", "procedure", "setup",
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DetectTaskIntent reports whether the subject or body suggests an
// obligation the user must act on.
func DetectTaskIntent(subject, body string) bool {
	return containsAny(subject+"\n"+body, taskKeywords)
}

// DetectDeadline reports whether the body mentions a deadline.
func DetectDeadline(body string) bool {
	return containsAny(body, deadlineKeywords)
}

// DetectInstruction reports whether the body looks like step-by-step
// instructions.
func DetectInstruction(body string) bool {
	return containsAny(body, instructionKeywords)
}
