package models

import (
	"time"
)

// Task is a tracked obligation extracted from a message.
type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	MessageID string     `gorm:"index;size:255;not null" json:"message_id"`
	Title     string     `gorm:"size:500" json:"title"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	Priority  string     `gorm:"size:20;default:'medium'" json:"priority"` // low, medium, high
	StepsJSON string     `gorm:"type:text" json:"steps_json"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskPriority represents the priority tier of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid checks if the task priority is valid
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// TaskPriorityForScore maps a priority score to a task priority tier.
func TaskPriorityForScore(score int) TaskPriority {
	switch {
	case score >= 70:
		return TaskPriorityHigh
	case score >= 40:
		return TaskPriorityMedium
	default:
		return TaskPriorityLow
	}
}
