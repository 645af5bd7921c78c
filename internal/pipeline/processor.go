// Package pipeline runs the per-message processing flow: signal
// extraction, model analysis, reconciliation, priority decision, category
// routing and snapshot persistence.
package pipeline

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/focusmate/core/internal/database/models"
	"github.com/focusmate/core/internal/pipeline/analysis"
	"github.com/focusmate/core/internal/pipeline/signals"
	"github.com/focusmate/core/internal/providers"
	"github.com/focusmate/core/internal/services"
)

// AnalysisModel produces a structured analysis for one message.
type AnalysisModel interface {
	AnalyzeEmail(subject, sender, body string) (*analysis.Analysis, error)
}

// PriorityModel produces a priority decision for a reconciled context.
type PriorityModel interface {
	DecidePriority(ctx analysis.Context) (*analysis.Decision, error)
}

// ThemeImageModel generates a theme image for an article subject.
type ThemeImageModel interface {
	GenerateThemeImage(subject string) (string, error)
}

// Processor orchestrates the processing of individual messages.
type Processor struct {
	mail        providers.MailProvider
	calendar    providers.CalendarProvider
	analyzer    AnalysisModel
	prioritizer PriorityModel
	imageModel  ThemeImageModel
	snapshots   *services.SnapshotService
	logs        *services.LogService
	images      *ImageCache

	// locks serializes concurrent runs for the same message id so
	// snapshot upserts cannot race.
	locks sync.Map

	now func() time.Time
}

// NewProcessor creates a processor. calendar and imageModel may be nil; the
// corresponding actions then degrade to notes.
func NewProcessor(
	mail providers.MailProvider,
	calendar providers.CalendarProvider,
	analyzer AnalysisModel,
	prioritizer PriorityModel,
	imageModel ThemeImageModel,
	snapshots *services.SnapshotService,
	logs *services.LogService,
) *Processor {
	return &Processor{
		mail:        mail,
		calendar:    calendar,
		analyzer:    analyzer,
		prioritizer: prioritizer,
		imageModel:  imageModel,
		snapshots:   snapshots,
		logs:        logs,
		images:      NewImageCache(64),
		now:         time.Now,
	}
}

func (p *Processor) lockMessage(messageID string) func() {
	actual, _ := p.locks.LoadOrStore(messageID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ProcessMessage runs the full pipeline for one message id and returns the
// persisted result. A mail-fetch or analysis failure aborts this message
// only; every downstream failure degrades.
func (p *Processor) ProcessMessage(messageID string) (*models.ProcessedEmail, error) {
	unlock := p.lockMessage(messageID)
	defer unlock()

	msg, err := p.mail.Fetch(messageID)
	if err != nil {
		return nil, fmt.Errorf("fetch failed for %s: %w", messageID, err)
	}
	return p.processFetched(msg)
}

func (p *Processor) processFetched(msg *providers.RawMessage) (*models.ProcessedEmail, error) {
	a, err := p.analyzer.AnalyzeEmail(msg.Subject, msg.Sender, msg.Body)
	if err != nil {
		p.logs.LogError(models.LogModulePipeline, "analyze", "Analysis failed", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("analysis failed for %s: %w", msg.MessageID, err)
	}

	ref := p.now()
	if msg.ReceivedAt != nil {
		ref = *msg.ReceivedAt
	}
	sig := p.extractSignals(msg, ref)
	analysis.Reconcile(a, sig)

	ctx := analysis.BuildContext(msg.Subject, msg.Sender, a, p.now())
	decision := p.decidePriority(ctx)

	if err := p.snapshots.RecordEmail(&models.EmailItem{
		MessageID:      msg.MessageID,
		Subject:        msg.Subject,
		Sender:         msg.Sender,
		Category:       ctx.Category,
		Summary:        a.Summary,
		PriorityBucket: decision.Bucket,
	}); err != nil {
		p.logs.LogWarn(models.LogModulePipeline, "record", "Email record failed", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
	}

	result := &models.ProcessedEmail{
		MessageID:         msg.MessageID,
		Subject:           msg.Subject,
		Sender:            msg.Sender,
		ReceivedAt:        msg.ReceivedAt,
		PriorityBucket:    decision.Bucket,
		PriorityScore:     decision.Score,
		PriorityReasoning: decision.Reasoning,
		Summary:           a.Summary,
		Notes:             []string{},
	}
	if a.Summary != "" {
		result.Notes = append(result.Notes, "ADHD-friendly summary: "+a.Summary)
	}

	p.route(msg, a, ctx, decision, result)

	if err := p.snapshots.UpsertSnapshot(result); err != nil {
		p.logs.LogError(models.LogModulePipeline, "snapshot", "Snapshot upsert failed", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
		return result, fmt.Errorf("snapshot upsert failed for %s: %v", msg.MessageID, err)
	}

	if err := p.mail.MarkProcessed(msg.MessageID); err != nil {
		log.Printf("[Processor] Mark processed failed for %s: %v", msg.MessageID, err)
	}

	p.logs.LogInfo(models.LogModulePipeline, "process", "Message processed", map[string]interface{}{
		"message_id":     msg.MessageID,
		"classification": result.Classification,
		"bucket":         result.PriorityBucket,
		"score":          result.PriorityScore,
	})
	return result, nil
}

func (p *Processor) extractSignals(msg *providers.RawMessage, ref time.Time) analysis.Signals {
	sig := analysis.Signals{
		TaskIntent:   signals.DetectTaskIntent(msg.Subject, msg.Body),
		DeadlineHint: signals.DetectDeadline(msg.Body),
		Instruction:  signals.DetectInstruction(msg.Body),
		Steps:        signals.ExtractInstructionSteps(msg.Body, signals.DefaultMaxSteps),
		Due:          signals.ExtractDeadlineDatetime(msg.Body, ref),
	}
	if w := signals.ExtractMeetingWindow(msg.Body, ref); w != nil {
		sig.MeetingStart = &w.Start
		sig.MeetingEnd = &w.End
	}
	return sig
}

func (p *Processor) decidePriority(ctx analysis.Context) analysis.Decision {
	decision, err := p.prioritizer.DecidePriority(ctx)
	if err == nil && decision != nil {
		return *decision
	}
	fallback := analysis.Heuristic(ctx)
	fallback.Reasoning = fmt.Sprintf("Fallback heuristic due to error: %v. %s", err, fallback.Reasoning)
	p.logs.LogWarn(models.LogModulePipeline, "priority", "Priority model failed, using heuristic", map[string]interface{}{
		"error": fmt.Sprint(err),
	})
	return fallback
}

// route resolves the terminal classification and performs the category
// side effect. It only ever appends to the result; failures degrade to
// notes.
func (p *Processor) route(msg *providers.RawMessage, a *analysis.Analysis, ctx analysis.Context, decision analysis.Decision, result *models.ProcessedEmail) {
	switch ctx.Category {
	case analysis.CategoryTask, analysis.CategoryDeadline, analysis.CategoryMeeting:
		p.handleTask(msg, a, ctx, decision, result)
	case analysis.CategoryInstruction:
		p.handleInstruction(msg, a, result)
	case analysis.CategoryArticle:
		p.handleArticle(msg, result)
	default:
		switch {
		case len(a.Steps) > 0:
			p.handleInstruction(msg, a, result)
		case ctx.IsTask || ctx.HasDeadline:
			p.handleTask(msg, a, ctx, decision, result)
		default:
			p.handleArticle(msg, result)
		}
	}
}

func (p *Processor) handleTask(msg *providers.RawMessage, a *analysis.Analysis, ctx analysis.Context, decision analysis.Decision, result *models.ProcessedEmail) {
	result.Classification = models.ClassificationTask

	title := a.Title
	if title == "" {
		title = msg.Subject
	}

	task := &models.Task{
		MessageID: msg.MessageID,
		Title:     title,
		DueAt:     ctx.Due,
		Priority:  string(models.TaskPriorityForScore(decision.Score)),
	}
	if len(a.Steps) > 0 {
		if steps, err := marshalSteps(a.Steps); err == nil {
			task.StepsJSON = steps
		}
	}
	if err := p.snapshots.RecordTask(task); err != nil {
		p.logs.LogWarn(models.LogModulePipeline, "task", "Task record failed", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
	} else {
		result.Notes = append(result.Notes, fmt.Sprintf("Task registered (%s priority).", task.Priority))
	}

	p.scheduleCalendar(msg, a, ctx, title, result)
}

// scheduleCalendar attempts exactly one calendar action: a meeting event
// when a full window exists, else a deadline hold when a due date exists.
func (p *Processor) scheduleCalendar(msg *providers.RawMessage, a *analysis.Analysis, ctx analysis.Context, title string, result *models.ProcessedEmail) {
	start, end := a.MeetingWindow()

	var ref *providers.EventRef
	var err error
	switch {
	case start != nil && end != nil:
		if p.calendar == nil {
			err = providers.ErrCalendarNotConfigured
			break
		}
		ref, err = p.calendar.CreateEvent(title, *start, *end, a.Meeting.Location)
	case ctx.Due != nil:
		if p.calendar == nil {
			err = providers.ErrCalendarNotConfigured
			break
		}
		ref, err = p.calendar.CreateDeadlineHold(title, *ctx.Due)
	default:
		return
	}

	if err != nil {
		p.logs.LogWarn(models.LogModuleCalendar, "create", "Calendar sync failed", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
		result.Notes = append(result.Notes, "Task captured for follow-up (calendar unavailable).")
		return
	}

	result.CalendarEventLink = ref.Link
	result.Notes = append(result.Notes, fmt.Sprintf("Acknowledgement: Calendar event created (id: %s).", ref.EventID))
	if err := p.snapshots.UpsertCalendarSync(msg.MessageID, ref.EventID, ref.Link); err != nil {
		p.logs.LogWarn(models.LogModuleCalendar, "sync", "Calendar sync record failed", map[string]interface{}{
			"message_id": msg.MessageID,
			"error":      err.Error(),
		})
	}
}

func (p *Processor) handleInstruction(msg *providers.RawMessage, a *analysis.Analysis, result *models.ProcessedEmail) {
	result.Classification = models.ClassificationInstruction

	steps := a.Steps
	if len(steps) == 0 {
		steps = signals.ExtractInstructionSteps(msg.Body, signals.DefaultMaxSteps)
	}

	payload, encoding := BuildFlowchart(steps, a.Summary)
	result.Flowchart = payload
	result.FlowchartType = encoding
	result.Notes = append(result.Notes, fmt.Sprintf("Instructions broken into %d steps.", countFlowchartSteps(payload)))
}

func (p *Processor) handleArticle(msg *providers.RawMessage, result *models.ProcessedEmail) {
	result.Classification = models.ClassificationArticle
	result.ThemeImage = p.themeImage(msg.Subject)
	result.Notes = append(result.Notes, "Saved for reading later.")
}

// themeImage prefers a cached or freshly generated image, falling back to
// the static topic table.
func (p *Processor) themeImage(subject string) string {
	if url, ok := p.images.Get(subject); ok {
		return url
	}
	if p.imageModel != nil {
		if url, err := p.imageModel.GenerateThemeImage(subject); err == nil && url != "" {
			p.images.Put(subject, url)
			return url
		}
	}
	return ThemeImageForSubject(subject)
}
