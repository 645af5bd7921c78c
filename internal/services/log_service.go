package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/focusmate/core/internal/database/models"
	"gorm.io/gorm"
)

// LogService handles logging operations
type LogService struct {
	db       *gorm.DB
	logLevel models.LogLevel
}

// NewLogService creates a new LogService instance
func NewLogService(db *gorm.DB) *LogService {
	return &LogService{
		db:       db,
		logLevel: models.LogLevelInfo, // Default log level
	}
}

// NewLogServiceWithLevel creates a new LogService instance with specified log level
func NewLogServiceWithLevel(db *gorm.DB, level string) *LogService {
	return &LogService{
		db:       db,
		logLevel: parseLogLevel(level),
	}
}

// parseLogLevel converts a string to LogLevel
func parseLogLevel(level string) models.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return models.LogLevelDebug
	case "INFO":
		return models.LogLevelInfo
	case "WARN", "WARNING":
		return models.LogLevelWarn
	case "ERROR":
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// SetLogLevel sets the minimum log level
func (s *LogService) SetLogLevel(level string) {
	s.logLevel = parseLogLevel(level)
}

// GetLogLevel returns the current log level
func (s *LogService) GetLogLevel() models.LogLevel {
	return s.logLevel
}

// shouldLog checks if a log entry should be recorded based on log level
func (s *LogService) shouldLog(level models.LogLevel) bool {
	levelPriority := map[models.LogLevel]int{
		models.LogLevelDebug: 0,
		models.LogLevelInfo:  1,
		models.LogLevelWarn:  2,
		models.LogLevelError: 3,
	}

	return levelPriority[level] >= levelPriority[s.logLevel]
}

// LogEntry represents a log entry to be created
type LogEntry struct {
	Level   models.LogLevel
	Module  models.LogModule
	Action  string
	Message string
	Details interface{} // Will be serialized to JSON
}

// Log creates a new log entry
func (s *LogService) Log(entry LogEntry) error {
	if !s.shouldLog(entry.Level) {
		return nil
	}

	var detailsJSON string
	if entry.Details != nil {
		bytes, err := json.Marshal(entry.Details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(bytes)
		}
	}

	log := &models.Log{
		Level:   string(entry.Level),
		Module:  string(entry.Module),
		Action:  entry.Action,
		Message: entry.Message,
		Details: detailsJSON,
	}

	return s.db.Create(log).Error
}

// LogInfo creates an INFO level log entry
func (s *LogService) LogInfo(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelInfo,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// LogWarn creates a WARN level log entry
func (s *LogService) LogWarn(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelWarn,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// LogError creates an ERROR level log entry
func (s *LogService) LogError(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelError,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// LogDebug creates a DEBUG level log entry
func (s *LogService) LogDebug(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelDebug,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// GetLogs returns log entries, newest first, optionally filtered by level
// and module.
func (s *LogService) GetLogs(level, module string, limit int) ([]models.Log, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := s.db.Model(&models.Log{})
	if level != "" {
		query = query.Where("level = ?", strings.ToUpper(level))
	}
	if module != "" {
		query = query.Where("module = ?", module)
	}

	var logs []models.Log
	err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// CleanupOldLogs deletes log entries older than the retention window.
func (s *LogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.Log{})
	return result.RowsAffected, result.Error
}
