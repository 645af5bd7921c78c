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

func setupSnapshotTestDB(t *testing.T) (*gorm.DB, func()) {
	tmpFile, err := os.CreateTemp("", "snapshot_test_*.db")
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

	err = db.AutoMigrate(
		&models.EmailItem{},
		&models.Task{},
		&models.CalendarSync{},
		&models.ProcessedEmailSnapshot{},
	)
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

// TestProperty_SnapshotUpsert tests that repeated upserts for one message id
// keep exactly one row carrying the latest content.
func TestProperty_SnapshotUpsert(t *testing.T) {
	db, cleanup := setupSnapshotTestDB(t)
	defer cleanup()

	service := NewSnapshotService(db)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	idGen := gen.SliceOfN(12, gen.AlphaLowerChar()).Map(func(chars []rune) string {
		return "<" + string(chars) + "@test.example>"
	})
	textGen := gen.SliceOfN(16, gen.AlphaChar()).Map(func(chars []rune) string {
		return string(chars)
	})

	properties.Property("upsert_twice_keeps_one_row_with_latest", prop.ForAll(
		func(messageID, firstSummary, secondSummary string) bool {
			first := &models.ProcessedEmail{
				MessageID:      messageID,
				Subject:        "subject " + firstSummary,
				PriorityBucket: "Important",
				PriorityScore:  55,
				Classification: models.ClassificationTask,
				Notes:          []string{"first pass"},
				Summary:        firstSummary,
			}
			if err := service.UpsertSnapshot(first); err != nil {
				return false
			}

			second := &models.ProcessedEmail{
				MessageID:      messageID,
				Subject:        "subject " + secondSummary,
				PriorityBucket: "Urgent",
				PriorityScore:  80,
				Classification: models.ClassificationArticle,
				Notes:          []string{"second pass"},
				Summary:        secondSummary,
			}
			if err := service.UpsertSnapshot(second); err != nil {
				return false
			}

			var count int64
			db.Model(&models.ProcessedEmailSnapshot{}).
				Where("message_id = ?", messageID).Count(&count)
			if count != 1 {
				return false
			}

			var row models.ProcessedEmailSnapshot
			if err := db.Where("message_id = ?", messageID).First(&row).Error; err != nil {
				return false
			}
			decoded, err := row.Decode()
			if err != nil {
				return false
			}
			return decoded.Summary == secondSummary &&
				decoded.PriorityScore == 80 &&
				decoded.Classification == models.ClassificationArticle
		},
		idGen, textGen, textGen,
	))

	properties.Property("snapshot_round_trips_all_fields", prop.ForAll(
		func(messageID, summary, reasoning string, score int) bool {
			email := &models.ProcessedEmail{
				MessageID:         messageID,
				Subject:           "s:" + summary,
				Sender:            "sender@test.example",
				PriorityBucket:    "Important",
				PriorityScore:     score,
				PriorityReasoning: reasoning,
				Classification:    models.ClassificationInstruction,
				Notes:             []string{"a", "b " + summary},
				Flowchart:         `{"steps":["x"]}`,
				FlowchartType:     "json",
				Summary:           summary,
			}
			if err := service.UpsertSnapshot(email); err != nil {
				return false
			}
			var row models.ProcessedEmailSnapshot
			if err := db.Where("message_id = ?", messageID).First(&row).Error; err != nil {
				return false
			}
			decoded, err := row.Decode()
			if err != nil {
				return false
			}
			return decoded.MessageID == email.MessageID &&
				decoded.PriorityScore == email.PriorityScore &&
				decoded.PriorityReasoning == email.PriorityReasoning &&
				decoded.Flowchart == email.Flowchart &&
				decoded.FlowchartType == email.FlowchartType &&
				len(decoded.Notes) == 2 && decoded.Notes[1] == email.Notes[1]
		},
		idGen, textGen, textGen, gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// TestSnapshotSearch verifies keyword search over subject, summary and notes.
func TestSnapshotSearch(t *testing.T) {
	db, cleanup := setupSnapshotTestDB(t)
	defer cleanup()

	service := NewSnapshotService(db)

	emails := []*models.ProcessedEmail{
		{MessageID: "<a@x>", Subject: "Quarterly budget review", Classification: models.ClassificationTask, Notes: []string{"task registered"}},
		{MessageID: "<b@x>", Subject: "Lunch plans", Summary: "Team lunch at the budget bistro", Classification: models.ClassificationArticle, Notes: []string{}},
		{MessageID: "<c@x>", Subject: "Server setup", Classification: models.ClassificationInstruction, Notes: []string{"flowchart built from 3 steps"}},
	}
	for _, e := range emails {
		if err := service.UpsertSnapshot(e); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	results, err := service.Search("BUDGET", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 matches for budget, got %d", len(results))
	}

	results, err = service.Search("flowchart", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].MessageID != "<c@x>" {
		t.Errorf("unexpected notes search result: %+v", results)
	}
}

// TestMalformedSnapshotSkipped verifies bulk loads skip undecodable rows.
func TestMalformedSnapshotSkipped(t *testing.T) {
	db, cleanup := setupSnapshotTestDB(t)
	defer cleanup()

	service := NewSnapshotService(db)

	good := &models.ProcessedEmail{MessageID: "<good@x>", Subject: "ok", Classification: models.ClassificationTask, Notes: []string{}}
	if err := service.UpsertSnapshot(good); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	bad := &models.ProcessedEmailSnapshot{MessageID: "<bad@x>", Category: "task", Payload: "{not json"}
	if err := db.Create(bad).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	results, err := service.LoadRecent(10)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(results) != 1 || results[0].MessageID != "<good@x>" {
		t.Errorf("expected only the good row, got %+v", results)
	}
}

// TestRecordEmailIdempotent verifies duplicate email records are not created.
func TestRecordEmailIdempotent(t *testing.T) {
	db, cleanup := setupSnapshotTestDB(t)
	defer cleanup()

	service := NewSnapshotService(db)
	item := &models.EmailItem{MessageID: "<dup@x>", Subject: "first"}
	if err := service.RecordEmail(item); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	again := &models.EmailItem{MessageID: "<dup@x>", Subject: "second"}
	if err := service.RecordEmail(again); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	var count int64
	db.Model(&models.EmailItem{}).Where("message_id = ?", "<dup@x>").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
	var row models.EmailItem
	db.Where("message_id = ?", "<dup@x>").First(&row)
	if row.Subject != "first" {
		t.Errorf("expected first write to win, got %q", row.Subject)
	}
}
