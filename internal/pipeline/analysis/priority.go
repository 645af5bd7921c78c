package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Priority buckets.
const (
	BucketUrgent       = "Urgent"
	BucketImportant    = "Important"
	BucketNotImportant = "Not important"
)

// Score thresholds for bucket derivation.
const (
	urgentThreshold    = 70
	importantThreshold = 40
)

// vipKeywords mark a sender as VIP by case-insensitive substring match.
var vipKeywords = []string{"@yourcompany.com", "ceo@", "manager@"}

// actionCategories are the categories that carry the base action bonus.
var actionCategories = map[string]bool{
	CategoryTask:        true,
	CategoryMeeting:     true,
	CategoryDeadline:    true,
	CategoryInstruction: true,
}

// BucketForScore derives the priority bucket from a score. Both the model
// path and the heuristic fallback derive their bucket through this function
// so the two can never disagree on the mapping.
func BucketForScore(score int) string {
	switch {
	case score >= urgentThreshold:
		return BucketUrgent
	case score >= importantThreshold:
		return BucketImportant
	default:
		return BucketNotImportant
	}
}

// ClampScore bounds a score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// IsVIP reports whether a sender address matches the VIP allowlist.
func IsVIP(sender string) bool {
	lower := strings.ToLower(sender)
	for _, kw := range vipKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DaysUntil computes the whole days from now until t, floored (a due
// instant later today is 0, yesterday is -1).
func DaysUntil(t time.Time, now time.Time) int {
	d := t.Sub(now).Hours() / 24
	days := int(d)
	if d < 0 && d != float64(days) {
		days--
	}
	return days
}

// BuildContext assembles the immutable priority context from a reconciled
// analysis.
func BuildContext(subject, sender string, a *Analysis, now time.Time) Context {
	ctx := Context{
		Subject:      subject,
		Sender:       sender,
		Category:     strings.ToLower(strings.TrimSpace(a.Category)),
		Summary:      a.Summary,
		IsTask:       a.IsTask,
		Steps:        a.Steps,
		PriorityHint: a.PriorityHint,
		HasDeadline:  a.Deadline.HasDeadline,
		VIPSender:    IsVIP(sender),
		Meeting:      a.Meeting,
	}
	if due := a.DueTime(); due != nil {
		ctx.Due = due
		days := DaysUntil(*due, now)
		ctx.DaysUntilDue = &days
	}
	return ctx
}

// Heuristic is the deterministic fallback priority decision. It never
// fails and depends only on the context.
func Heuristic(ctx Context) Decision {
	score := 0
	var reasons []string

	if actionCategories[ctx.Category] {
		score += 30
		reasons = append(reasons, fmt.Sprintf("category %q requires action", ctx.Category))
	}
	if ctx.HasDeadline {
		score += 25
		reasons = append(reasons, "has a deadline")
	}
	if ctx.VIPSender {
		score += 15
		reasons = append(reasons, "VIP sender")
	}
	if ctx.DaysUntilDue != nil {
		switch days := *ctx.DaysUntilDue; {
		case days <= 1:
			score += 25
			reasons = append(reasons, "due within a day")
		case days <= 3:
			score += 15
			reasons = append(reasons, "due within 3 days")
		case days <= 7:
			score += 8
			reasons = append(reasons, "due within a week")
		}
	}
	if ctx.Category == CategoryMarketing {
		score -= 30
		reasons = append(reasons, "marketing content")
	}

	score = ClampScore(score)
	reasoning := "Heuristic: " + strings.Join(reasons, "; ")
	if len(reasons) == 0 {
		reasoning = "Heuristic: no priority signals"
	}
	return Decision{
		Bucket:    BucketForScore(score),
		Score:     score,
		Reasoning: reasoning,
	}
}
