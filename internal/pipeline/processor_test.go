package pipeline

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/focusmate/core/internal/database/models"
	"github.com/focusmate/core/internal/pipeline/analysis"
	"github.com/focusmate/core/internal/providers"
	"github.com/focusmate/core/internal/services"
)

func setupPipelineTestDB(t *testing.T) (*gorm.DB, func()) {
	tmpFile, err := os.CreateTemp("", "pipeline_test_*.db")
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
		&models.Log{},
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

type stubMail struct {
	messages map[string]*providers.RawMessage
	marked   []string
}

func (m *stubMail) Fetch(messageID string) (*providers.RawMessage, error) {
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, providers.ErrMessageNotFound
	}
	return msg, nil
}

func (m *stubMail) ListRecent(windowDays int) ([]string, error) {
	ids := make([]string, 0, len(m.messages))
	for id := range m.messages {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *stubMail) MarkProcessed(messageID string) error {
	m.marked = append(m.marked, messageID)
	return nil
}

type calendarCall struct {
	kind  string
	title string
	start time.Time
	end   time.Time
}

type stubCalendar struct {
	calls []calendarCall
	fail  bool
}

func (c *stubCalendar) CreateEvent(title string, start, end time.Time, location string) (*providers.EventRef, error) {
	if c.fail {
		return nil, providers.ErrCalendarCallFailed
	}
	c.calls = append(c.calls, calendarCall{kind: "event", title: title, start: start, end: end})
	return &providers.EventRef{EventID: "evt-1", Link: "https://calendar.test/evt-1"}, nil
}

func (c *stubCalendar) CreateDeadlineHold(title string, dueDate time.Time) (*providers.EventRef, error) {
	if c.fail {
		return nil, providers.ErrCalendarCallFailed
	}
	start := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 9, 0, 0, 0, dueDate.Location())
	c.calls = append(c.calls, calendarCall{kind: "hold", title: title, start: start, end: start.Add(30 * time.Minute)})
	return &providers.EventRef{EventID: "hold-1", Link: "https://calendar.test/hold-1"}, nil
}

func (c *stubCalendar) ListEvents(from, to time.Time) ([]providers.Event, error) {
	return nil, nil
}

func (c *stubCalendar) DeleteEvent(eventID string) error { return nil }

type stubAnalyzer struct {
	result *analysis.Analysis
	err    error
}

func (a *stubAnalyzer) AnalyzeEmail(subject, sender, body string) (*analysis.Analysis, error) {
	if a.err != nil {
		return nil, a.err
	}
	// Return a copy so reconciliation in one run cannot leak into the next.
	result := *a.result
	result.Steps = append([]string(nil), a.result.Steps...)
	return &result, nil
}

type stubPriority struct {
	decision *analysis.Decision
	err      error
}

func (p *stubPriority) DecidePriority(ctx analysis.Context) (*analysis.Decision, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.decision, nil
}

func newTestProcessor(t *testing.T, mail *stubMail, cal providers.CalendarProvider, analyzer AnalysisModel, prioritizer PriorityModel) (*Processor, *gorm.DB, func()) {
	db, cleanup := setupPipelineTestDB(t)
	snapshots := services.NewSnapshotService(db)
	logs := services.NewLogService(db)
	proc := NewProcessor(mail, cal, analyzer, prioritizer, nil, snapshots, logs)
	proc.now = func() time.Time {
		return time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	}
	return proc, db, cleanup
}

func TestProcessSubmitReportDeadlineHold(t *testing.T) {
	mail := &stubMail{messages: map[string]*providers.RawMessage{
		"<report@x>": {
			MessageID: "<report@x>",
			Subject:   "Submit report",
			Sender:    "boss@company.com",
			Body:      "Please submit by 2025-03-10. No later than EOD.",
		},
	}}
	cal := &stubCalendar{}
	analyzer := &stubAnalyzer{result: &analysis.Analysis{
		Category: analysis.CategoryTask,
		Summary:  "Submit the report by March 10.",
	}}
	prioritizer := &stubPriority{err: errors.New("model offline")}

	proc, db, cleanup := newTestProcessor(t, mail, cal, analyzer, prioritizer)
	defer cleanup()

	result, err := proc.ProcessMessage("<report@x>")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if result.Classification != models.ClassificationTask {
		t.Errorf("expected task classification, got %s", result.Classification)
	}
	if len(cal.calls) != 1 || cal.calls[0].kind != "hold" {
		t.Fatalf("expected one deadline hold, got %+v", cal.calls)
	}
	hold := cal.calls[0]
	if hold.start.Format("2006-01-02 15:04") != "2025-03-10 09:00" {
		t.Errorf("unexpected hold start: %v", hold.start)
	}
	if hold.end.Sub(hold.start) != 30*time.Minute {
		t.Errorf("unexpected hold length: %v", hold.end.Sub(hold.start))
	}
	if !strings.Contains(result.PriorityReasoning, "Fallback heuristic due to error") {
		t.Errorf("expected fallback reasoning, got %q", result.PriorityReasoning)
	}
	if result.PriorityBucket != analysis.BucketForScore(result.PriorityScore) {
		t.Errorf("bucket %s inconsistent with score %d", result.PriorityBucket, result.PriorityScore)
	}
	if result.CalendarEventLink == "" {
		t.Error("expected calendar event link on result")
	}

	var taskCount int64
	db.Model(&models.Task{}).Where("message_id = ?", "<report@x>").Count(&taskCount)
	if taskCount != 1 {
		t.Errorf("expected 1 task record, got %d", taskCount)
	}
	if len(mail.marked) != 1 || mail.marked[0] != "<report@x>" {
		t.Errorf("expected message marked processed, got %v", mail.marked)
	}
}

func TestProcessInstructionFlowchart(t *testing.T) {
	mail := &stubMail{messages: map[string]*providers.RawMessage{
		"<pasta@x>": {
			MessageID: "<pasta@x>",
			Subject:   "How to cook pasta",
			Sender:    "chef@kitchen.example",
			Body:      "Step 1: boil water\nStep 2: add pasta\n",
		},
	}}
	analyzer := &stubAnalyzer{result: &analysis.Analysis{
		Category: analysis.CategoryInstruction,
		Summary:  "Cooking instructions.",
	}}
	prioritizer := &stubPriority{decision: &analysis.Decision{
		Bucket: analysis.BucketNotImportant, Score: 10, Reasoning: "informational",
	}}

	proc, _, cleanup := newTestProcessor(t, mail, &stubCalendar{}, analyzer, prioritizer)
	defer cleanup()

	result, err := proc.ProcessMessage("<pasta@x>")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.Classification != models.ClassificationInstruction {
		t.Errorf("expected instruction classification, got %s", result.Classification)
	}
	if result.Flowchart != `{"steps":["boil water","add pasta"]}` {
		t.Errorf("unexpected flowchart: %s", result.Flowchart)
	}
	if result.FlowchartType != FlowchartTypeJSON {
		t.Errorf("unexpected flowchart type: %s", result.FlowchartType)
	}
}

func TestProcessTwiceUpsertsOnce(t *testing.T) {
	mail := &stubMail{messages: map[string]*providers.RawMessage{
		"<again@x>": {
			MessageID: "<again@x>",
			Subject:   "An article about tech",
			Sender:    "news@site.example",
			Body:      "Long form reading.",
		},
	}}
	analyzer := &stubAnalyzer{result: &analysis.Analysis{
		Category: analysis.CategoryArticle,
		Summary:  "A tech article.",
	}}
	prioritizer := &stubPriority{decision: &analysis.Decision{
		Bucket: analysis.BucketNotImportant, Score: 5, Reasoning: "reading material",
	}}

	proc, db, cleanup := newTestProcessor(t, mail, &stubCalendar{}, analyzer, prioritizer)
	defer cleanup()

	if _, err := proc.ProcessMessage("<again@x>"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	analyzer.result.Summary = "A revised tech article."
	if _, err := proc.ProcessMessage("<again@x>"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	var count int64
	db.Model(&models.ProcessedEmailSnapshot{}).Where("message_id = ?", "<again@x>").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 snapshot row, got %d", count)
	}
	var row models.ProcessedEmailSnapshot
	db.Where("message_id = ?", "<again@x>").First(&row)
	decoded, err := row.Decode()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Summary != "A revised tech article." {
		t.Errorf("expected later run's content, got %q", decoded.Summary)
	}
}

func TestProcessCalendarFailureDegrades(t *testing.T) {
	mail := &stubMail{messages: map[string]*providers.RawMessage{
		"<due@x>": {
			MessageID: "<due@x>",
			Subject:   "Submit timesheet",
			Sender:    "hr@company.example",
			Body:      "Deadline: 2025-03-09",
		},
	}}
	cal := &stubCalendar{fail: true}
	analyzer := &stubAnalyzer{result: &analysis.Analysis{
		Category: analysis.CategoryTask,
		Summary:  "Timesheet due.",
	}}
	prioritizer := &stubPriority{err: errors.New("model offline")}

	proc, _, cleanup := newTestProcessor(t, mail, cal, analyzer, prioritizer)
	defer cleanup()

	result, err := proc.ProcessMessage("<due@x>")
	if err != nil {
		t.Fatalf("process should not fail on calendar errors: %v", err)
	}

	found := false
	for _, note := range result.Notes {
		if strings.Contains(note, "calendar unavailable") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected degradation note, got %v", result.Notes)
	}
	if result.CalendarEventLink != "" {
		t.Errorf("expected no calendar link, got %q", result.CalendarEventLink)
	}
	if result.Classification != models.ClassificationTask {
		t.Errorf("expected task classification, got %s", result.Classification)
	}
}

func TestProcessAnalysisFailureIsFatalForMessage(t *testing.T) {
	mail := &stubMail{messages: map[string]*providers.RawMessage{
		"<broken@x>": {MessageID: "<broken@x>", Subject: "x", Sender: "a@b.c", Body: "y"},
	}}
	analyzer := &stubAnalyzer{err: errors.New("empty AI response")}
	prioritizer := &stubPriority{}

	proc, db, cleanup := newTestProcessor(t, mail, &stubCalendar{}, analyzer, prioritizer)
	defer cleanup()

	if _, err := proc.ProcessMessage("<broken@x>"); err == nil {
		t.Fatal("expected error when analysis fails")
	}
	var count int64
	db.Model(&models.ProcessedEmailSnapshot{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no snapshot after fatal analysis failure, got %d", count)
	}
	if len(mail.marked) != 0 {
		t.Errorf("message should not be marked processed, got %v", mail.marked)
	}
}

func TestProcessArticleThemeImage(t *testing.T) {
	mail := &stubMail{messages: map[string]*providers.RawMessage{
		"<read@x>": {
			MessageID: "<read@x>",
			Subject:   "Weekly tech roundup",
			Sender:    "news@site.example",
			Body:      "Interesting links inside.",
		},
	}}
	analyzer := &stubAnalyzer{result: &analysis.Analysis{
		Category: analysis.CategoryArticle,
		Summary:  "Tech links.",
	}}
	prioritizer := &stubPriority{decision: &analysis.Decision{
		Bucket: analysis.BucketNotImportant, Score: 5, Reasoning: "newsletter",
	}}

	proc, _, cleanup := newTestProcessor(t, mail, &stubCalendar{}, analyzer, prioritizer)
	defer cleanup()

	result, err := proc.ProcessMessage("<read@x>")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.ThemeImage != ThemeImageForSubject("Weekly tech roundup") {
		t.Errorf("unexpected theme image: %s", result.ThemeImage)
	}
	if result.ThemeImage == DefaultThemeImage {
		t.Error("expected a keyword-matched image for a tech subject")
	}
}
