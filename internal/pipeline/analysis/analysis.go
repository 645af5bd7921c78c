// Package analysis defines the structured result of analyzing a message,
// the reconciliation of model output with deterministic signals, and the
// priority decision over the reconciled context.
package analysis

import "time"

// Category values a model analysis may carry.
const (
	CategoryTask        = "task"
	CategoryInstruction = "instruction"
	CategoryArticle     = "article"
	CategoryMeeting     = "meeting"
	CategoryDeadline    = "deadline"
	CategoryMarketing   = "marketing"
	CategoryInfo        = "info"
	CategoryOther       = "other"
)

// Meeting is the meeting sub-record of an analysis.
type Meeting struct {
	HasMeeting bool   `json:"has_meeting"`
	StartISO   string `json:"start_iso,omitempty"`
	EndISO     string `json:"end_iso,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Deadline is the deadline sub-record of an analysis.
type Deadline struct {
	HasDeadline bool   `json:"has_deadline"`
	DueISO      string `json:"due_iso,omitempty"`
}

// Analysis is the structured result for one message. The model produces it;
// reconciliation may upgrade unset fields from deterministic signals but
// never downgrades what the model set.
type Analysis struct {
	Category     string   `json:"category"`
	Title        string   `json:"title,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	IsTask       bool     `json:"is_task"`
	PriorityHint string   `json:"priority_hint,omitempty"`
	Steps        []string `json:"steps,omitempty"`
	Meeting      Meeting  `json:"meeting"`
	Deadline     Deadline `json:"deadline"`
}

// Signals carries the deterministic extractor output for the same message.
type Signals struct {
	TaskIntent    bool
	DeadlineHint  bool
	Instruction   bool
	Steps         []string
	Due           *time.Time
	MeetingStart  *time.Time
	MeetingEnd    *time.Time
}

// Context is the immutable input to the priority decision, built once per
// message after reconciliation.
type Context struct {
	Subject      string     `json:"subject"`
	Sender       string     `json:"sender"`
	Category     string     `json:"category"`
	Summary      string     `json:"summary,omitempty"`
	IsTask       bool       `json:"is_task"`
	Steps        []string   `json:"steps,omitempty"`
	PriorityHint string     `json:"priority_hint,omitempty"`
	HasDeadline  bool       `json:"has_deadline"`
	Due          *time.Time `json:"due,omitempty"`
	DaysUntilDue *int       `json:"days_until_due,omitempty"`
	VIPSender    bool       `json:"vip_sender"`
	Meeting      Meeting    `json:"meeting"`
}

// Decision is the outcome of the priority engine.
type Decision struct {
	Bucket    string `json:"bucket"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}
