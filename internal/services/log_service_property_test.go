package services

import (
	"os"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/focusmate/core/internal/database/models"
)

func setupLogTestDB(t *testing.T) (*gorm.DB, func()) {
	tmpFile, err := os.CreateTemp("", "log_test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()

	db, err := gorm.Open(sqlite.Open(tmpFile.Name()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to open database: %v", err)
	}

	err = db.AutoMigrate(&models.Log{})
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.Remove(tmpFile.Name())
	}

	return db, cleanup
}

// TestProperty_LogLevelFiltering tests that entries below the configured
// level are never persisted and entries at or above it always are.
func TestProperty_LogLevelFiltering(t *testing.T) {
	db, cleanup := setupLogTestDB(t)
	defer cleanup()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	messageGen := gen.SliceOfN(20, gen.AlphaChar()).Map(func(chars []rune) string {
		return string(chars)
	})

	properties.Property("debug_suppressed_at_info_level", prop.ForAll(
		func(message string) bool {
			service := NewLogServiceWithLevel(db, "INFO")

			var before int64
			db.Model(&models.Log{}).Count(&before)

			if err := service.LogDebug(models.LogModulePipeline, "test", message, nil); err != nil {
				return false
			}
			var afterDebug int64
			db.Model(&models.Log{}).Count(&afterDebug)
			if afterDebug != before {
				return false
			}

			if err := service.LogError(models.LogModulePipeline, "test", message, nil); err != nil {
				return false
			}
			var afterError int64
			db.Model(&models.Log{}).Count(&afterError)
			return afterError == before+1
		},
		messageGen,
	))

	properties.Property("logged_entry_round_trips", prop.ForAll(
		func(action, message string) bool {
			service := NewLogService(db)
			if err := service.LogWarn(models.LogModuleCalendar, action, message, map[string]interface{}{"k": action}); err != nil {
				return false
			}
			var entry models.Log
			if err := db.Order("id DESC").First(&entry).Error; err != nil {
				return false
			}
			return entry.Level == string(models.LogLevelWarn) &&
				entry.Module == string(models.LogModuleCalendar) &&
				entry.Action == action &&
				entry.Message == message
		},
		gen.SliceOfN(8, gen.AlphaLowerChar()).Map(func(chars []rune) string { return string(chars) }),
		messageGen,
	))

	properties.TestingRun(t)
}

// TestGetLogsFiltering verifies level and module filters.
func TestGetLogsFiltering(t *testing.T) {
	db, cleanup := setupLogTestDB(t)
	defer cleanup()

	service := NewLogServiceWithLevel(db, "DEBUG")
	service.LogInfo(models.LogModulePipeline, "a", "pipeline info", nil)
	service.LogError(models.LogModulePipeline, "b", "pipeline error", nil)
	service.LogError(models.LogModuleCalendar, "c", "calendar error", nil)

	logs, err := service.GetLogs("ERROR", "", 10)
	if err != nil {
		t.Fatalf("GetLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("expected 2 error logs, got %d", len(logs))
	}

	logs, err = service.GetLogs("", "calendar", 10)
	if err != nil {
		t.Fatalf("GetLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Message != "calendar error" {
		t.Errorf("unexpected module filter result: %+v", logs)
	}
}
