package models

import (
	"time"
)

// CalendarSync links a processed message to the calendar event created for it.
// One row per message id; re-processing replaces the event reference.
type CalendarSync struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID string    `gorm:"uniqueIndex;size:255;not null" json:"message_id"`
	EventID   string    `gorm:"size:255" json:"event_id"`
	EventLink string    `gorm:"size:500" json:"event_link"`
	CreatedAt time.Time `json:"created_at"`
}
