package pipeline

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/focusmate/core/internal/database/models"
)

// BatchResult summarizes one batch run.
type BatchResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// ProcessBatch runs the pipeline over many message ids concurrently,
// bounded by maxConcurrent. Messages that already have a snapshot are
// skipped. Per-message failures are logged and counted, never fatal for
// the batch. Cancelling ctx stops submitting new messages; in-flight
// messages run to completion.
func (p *Processor) ProcessBatch(ctx context.Context, messageIDs []string, maxConcurrent int) BatchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrent)

	results := make(chan string, len(messageIDs))
	failures := make(chan string, len(messageIDs))
	skips := make(chan string, len(messageIDs))

	for _, messageID := range messageIDs {
		if ctx.Err() != nil {
			break
		}
		messageID := messageID
		g.Go(func() error {
			exists, err := p.snapshots.Exists(messageID)
			if err == nil && exists {
				skips <- messageID
				return nil
			}
			if _, err := p.ProcessMessage(messageID); err != nil {
				log.Printf("[Processor] Batch: message %s failed: %v", messageID, err)
				failures <- messageID
				return nil
			}
			results <- messageID
			return nil
		})
	}
	g.Wait()
	close(results)
	close(failures)
	close(skips)

	batch := BatchResult{
		Processed: len(results),
		Failed:    len(failures),
		Skipped:   len(skips),
	}

	p.logs.LogInfo(models.LogModulePipeline, "batch", "Batch completed", map[string]interface{}{
		"processed": batch.Processed,
		"failed":    batch.Failed,
		"skipped":   batch.Skipped,
	})
	return batch
}

// ProcessRecent lists unread messages in the provider's recent window and
// processes them as one batch.
func (p *Processor) ProcessRecent(ctx context.Context, windowDays, maxConcurrent int) (BatchResult, error) {
	ids, err := p.mail.ListRecent(windowDays)
	if err != nil {
		return BatchResult{}, err
	}
	return p.ProcessBatch(ctx, ids, maxConcurrent), nil
}
