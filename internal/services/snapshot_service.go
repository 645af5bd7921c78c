package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/focusmate/core/internal/database/models"
	"gorm.io/gorm"
)

// SnapshotService owns the processed-email snapshot store plus the task and
// calendar-sync records the pipeline produces.
type SnapshotService struct {
	db *gorm.DB
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// Exists reports whether a snapshot exists for the message id.
func (s *SnapshotService) Exists(messageID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProcessedEmailSnapshot{}).
		Where("message_id = ?", messageID).Count(&count).Error
	return count > 0, err
}

// Load returns the processed email for one message id.
func (s *SnapshotService) Load(messageID string) (*models.ProcessedEmail, error) {
	var row models.ProcessedEmailSnapshot
	if err := s.db.Where("message_id = ?", messageID).First(&row).Error; err != nil {
		return nil, err
	}
	return row.Decode()
}

// UpsertSnapshot persists the processed email, replacing any existing
// snapshot for the same message id.
func (s *SnapshotService) UpsertSnapshot(email *models.ProcessedEmail) error {
	snapshot, err := email.ToSnapshot()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %v", err)
	}

	var existing models.ProcessedEmailSnapshot
	result := s.db.Where("message_id = ?", snapshot.MessageID).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return s.db.Create(snapshot).Error
		}
		return result.Error
	}
	return s.db.Model(&existing).Select("*").Updates(snapshot).Error
}

// LoadRecent returns the most recent processed emails, newest first. Rows
// whose payload no longer decodes are skipped with a warning.
func (s *SnapshotService) LoadRecent(limit int) ([]*models.ProcessedEmail, error) {
	return s.loadSnapshots(s.db.Order("cached_at DESC"), limit)
}

// LoadRecentByCategory returns the most recent processed emails in one
// category, newest first.
func (s *SnapshotService) LoadRecentByCategory(category string, limit int) ([]*models.ProcessedEmail, error) {
	query := s.db.Where("category = ?", strings.ToLower(category)).Order("cached_at DESC")
	return s.loadSnapshots(query, limit)
}

// Search returns processed emails whose subject, summary or notes contain
// the query string, newest first.
func (s *SnapshotService) Search(query string, limit int) ([]*models.ProcessedEmail, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := s.db.Where(
		"lower(subject) LIKE ? OR lower(summary) LIKE ? OR lower(notes_json) LIKE ?",
		pattern, pattern, pattern,
	).Order("cached_at DESC")
	return s.loadSnapshots(q, limit)
}

func (s *SnapshotService) loadSnapshots(query *gorm.DB, limit int) ([]*models.ProcessedEmail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.ProcessedEmailSnapshot
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	emails := make([]*models.ProcessedEmail, 0, len(rows))
	for _, row := range rows {
		email, err := row.Decode()
		if err != nil {
			log.Printf("[SnapshotService] Skipping malformed snapshot %s: %v", row.MessageID, err)
			continue
		}
		emails = append(emails, email)
	}
	return emails, nil
}

// RecordEmail stores the basic email record if it is not already present.
func (s *SnapshotService) RecordEmail(item *models.EmailItem) error {
	var existing models.EmailItem
	result := s.db.Where("message_id = ?", item.MessageID).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return s.db.Create(item).Error
		}
		return result.Error
	}
	return nil
}

// RecordTask stores a task extracted from a message.
func (s *SnapshotService) RecordTask(task *models.Task) error {
	return s.db.Create(task).Error
}

// UpsertCalendarSync records the calendar event created for a message,
// replacing any previous event reference.
func (s *SnapshotService) UpsertCalendarSync(messageID, eventID, eventLink string) error {
	var existing models.CalendarSync
	result := s.db.Where("message_id = ?", messageID).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return s.db.Create(&models.CalendarSync{
				MessageID: messageID,
				EventID:   eventID,
				EventLink: eventLink,
			}).Error
		}
		return result.Error
	}
	existing.EventID = eventID
	existing.EventLink = eventLink
	return s.db.Save(&existing).Error
}

// TasksDueBefore returns tasks with a due time before the cutoff, soonest
// first.
func (s *SnapshotService) TasksDueBefore(cutoff time.Time, limit int) ([]models.Task, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var tasks []models.Task
	err := s.db.Where("due_at IS NOT NULL AND due_at < ?", cutoff).
		Order("due_at ASC").Limit(limit).Find(&tasks).Error
	return tasks, err
}
