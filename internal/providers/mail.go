// Package providers holds the external collaborators the pipeline depends
// on: the mailbox, the calendar. Implementations live here; the pipeline
// only sees the interfaces.
package providers

import "time"

// RawMessage is one fetched message as the pipeline consumes it. The
// provider owns it; the pipeline never mutates it.
type RawMessage struct {
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt *time.Time
	Body       string
}

// MailProvider is the mailbox collaborator.
type MailProvider interface {
	// Fetch loads one message by its message id.
	Fetch(messageID string) (*RawMessage, error)
	// ListRecent returns the message ids of unread messages received in
	// the last windowDays days.
	ListRecent(windowDays int) ([]string, error)
	// MarkProcessed flags the source message as read. Best-effort and
	// idempotent; callers ignore failures.
	MarkProcessed(messageID string) error
}

// EventRef identifies a created calendar event.
type EventRef struct {
	EventID string `json:"event_id"`
	Link    string `json:"link"`
}

// Event is a calendar event as listed from the provider.
type Event struct {
	EventID  string     `json:"event_id"`
	Title    string     `json:"title"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Location string     `json:"location,omitempty"`
	Link     string     `json:"link,omitempty"`
}

// CalendarProvider is the calendar collaborator. All methods may fail; the
// orchestrator catches failures and degrades instead of aborting.
type CalendarProvider interface {
	CreateEvent(title string, start, end time.Time, location string) (*EventRef, error)
	// CreateDeadlineHold books a fixed 30-minute placeholder on the
	// morning of the due date.
	CreateDeadlineHold(title string, dueDate time.Time) (*EventRef, error)
	ListEvents(from, to time.Time) ([]Event, error)
	DeleteEvent(eventID string) error
}
