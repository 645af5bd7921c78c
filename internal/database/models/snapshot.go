package models

import (
	"encoding/json"
	"time"
)

// Final classification values a pipeline run can end in.
const (
	ClassificationTask        = "task"
	ClassificationInstruction = "instruction"
	ClassificationArticle     = "article"
)

// Classifications lists the terminal classifications in display order.
var Classifications = []string{ClassificationTask, ClassificationArticle, ClassificationInstruction}

// ProcessedEmail is the terminal artifact of one pipeline run for a message.
type ProcessedEmail struct {
	MessageID         string     `json:"message_id"`
	Subject           string     `json:"subject"`
	Sender            string     `json:"sender"`
	ReceivedAt        *time.Time `json:"received_at,omitempty"`
	PriorityBucket    string     `json:"priority_bucket"`
	PriorityScore     int        `json:"priority_score"`
	PriorityReasoning string     `json:"priority_reasoning"`
	Classification    string     `json:"classification"`
	Notes             []string   `json:"notes"`
	ThemeImage        string     `json:"theme_image,omitempty"`
	Flowchart         string     `json:"flowchart,omitempty"`
	FlowchartType     string     `json:"flowchart_type,omitempty"`
	Summary           string     `json:"summary,omitempty"`
	CalendarEventLink string     `json:"calendar_event_link,omitempty"`
}

// ProcessedEmailSnapshot is the persisted snapshot row for a ProcessedEmail.
// The payload column round-trips the full record; the remaining columns exist
// for category and keyword queries.
type ProcessedEmailSnapshot struct {
	MessageID         string    `gorm:"primaryKey;size:255" json:"message_id"`
	Category          string    `gorm:"index;size:50" json:"category"`
	Subject           string    `gorm:"size:500" json:"subject"`
	Sender            string    `gorm:"size:255" json:"sender"`
	PriorityBucket    string    `gorm:"size:20" json:"priority_bucket"`
	PriorityScore     int       `json:"priority_score"`
	PriorityReasoning string    `gorm:"type:text" json:"priority_reasoning"`
	Summary           string    `gorm:"type:text" json:"summary"`
	NotesJSON         string    `gorm:"type:text" json:"notes_json"`
	ThemeImage        string    `gorm:"size:500" json:"theme_image"`
	Flowchart         string    `gorm:"type:text" json:"flowchart"`
	Payload           string    `gorm:"type:text" json:"payload"`
	CachedAt          time.Time `gorm:"index" json:"cached_at"`
}

// ToSnapshot encodes the processed email into its snapshot row.
func (e *ProcessedEmail) ToSnapshot() (*ProcessedEmailSnapshot, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	notes, err := json.Marshal(e.Notes)
	if err != nil {
		return nil, err
	}
	return &ProcessedEmailSnapshot{
		MessageID:         e.MessageID,
		Category:          e.Classification,
		Subject:           e.Subject,
		Sender:            e.Sender,
		PriorityBucket:    e.PriorityBucket,
		PriorityScore:     e.PriorityScore,
		PriorityReasoning: e.PriorityReasoning,
		Summary:           e.Summary,
		NotesJSON:         string(notes),
		ThemeImage:        e.ThemeImage,
		Flowchart:         e.Flowchart,
		Payload:           string(payload),
		CachedAt:          time.Now().UTC(),
	}, nil
}

// Decode restores the full processed email from the snapshot payload.
func (s *ProcessedEmailSnapshot) Decode() (*ProcessedEmail, error) {
	var email ProcessedEmail
	if err := json.Unmarshal([]byte(s.Payload), &email); err != nil {
		return nil, err
	}
	return &email, nil
}
