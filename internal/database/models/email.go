package models

import (
	"time"
)

// EmailItem is the first-seen record of an inbound message that entered the
// pipeline. Inserted once per message id; later runs leave it untouched.
type EmailItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MessageID      string    `gorm:"uniqueIndex;size:255;not null" json:"message_id"`
	Subject        string    `gorm:"size:500" json:"subject"`
	Sender         string    `gorm:"size:255" json:"sender"`
	Category       string    `gorm:"size:50" json:"category"`
	Summary        string    `gorm:"type:text" json:"summary"`
	PriorityBucket string    `gorm:"size:20" json:"priority_bucket"`
	RawJSON        string    `gorm:"type:text" json:"raw_json"`
	CreatedAt      time.Time `json:"created_at"`
}
