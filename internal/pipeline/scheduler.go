package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/focusmate/core/internal/database/models"
)

// Scheduler periodically processes the recent unread window.
type Scheduler struct {
	processor     *Processor
	interval      time.Duration
	windowDays    int
	maxConcurrent int
	stopChan      chan struct{}
	running       bool
	mu            sync.Mutex
	cycling       sync.Mutex // prevents overlapping cycles
}

// NewScheduler creates a scheduler that runs the processor every interval.
func NewScheduler(processor *Processor, interval time.Duration, windowDays, maxConcurrent int) *Scheduler {
	return &Scheduler{
		processor:     processor,
		interval:      interval,
		windowDays:    windowDays,
		maxConcurrent: maxConcurrent,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the periodic processing loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Scheduler] Starting with interval: %v", s.interval)

	go func() {
		// Give the server a moment to come up before the first cycle.
		select {
		case <-time.After(10 * time.Second):
			s.runCycle()
		case <-s.stopChan:
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle()
			case <-s.stopChan:
				log.Println("[Scheduler] Stopping")
				return
			}
		}
	}()
}

// Stop stops the periodic processing loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopChan)
	s.running = false
}

// runCycle processes one recent window, with retries on listing failures.
func (s *Scheduler) runCycle() {
	if !s.cycling.TryLock() {
		log.Println("[Scheduler] Previous cycle still running, skipping")
		return
	}
	defer s.cycling.Unlock()

	const maxRetries = 2
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[Scheduler] Retry %d/%d after %v", attempt, maxRetries, backoff)
			select {
			case <-time.After(backoff):
			case <-s.stopChan:
				return
			}
		}

		batch, err := s.processor.ProcessRecent(context.Background(), s.windowDays, s.maxConcurrent)
		if err == nil {
			if batch.Processed > 0 || batch.Failed > 0 {
				log.Printf("[Scheduler] Cycle done: processed=%d failed=%d skipped=%d",
					batch.Processed, batch.Failed, batch.Skipped)
			}
			return
		}

		lastErr = err
		log.Printf("[Scheduler] Cycle attempt %d failed: %v", attempt+1, err)
	}

	log.Printf("[Scheduler] Cycle failed after %d attempts: %v", maxRetries+1, lastErr)
	s.processor.logs.LogWarn(models.LogModulePipeline, "schedule", "Scheduled processing failed", map[string]interface{}{
		"error":   lastErr.Error(),
		"retries": maxRetries,
	})
}
