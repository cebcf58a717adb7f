package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/app/repository"
)

// DefaultBatchSize is the ProcessQueue limit when none is given
const DefaultBatchSize = 10

// DefaultStaleAfter is how long an entry may sit in processing before it is reclaimed
const DefaultStaleAfter = 10 * time.Minute

// Enqueue schedules a submission for verification. Re-enqueueing an image resets its entry.
func (s *Service) Enqueue(ctx context.Context, sub models.ImageSubmission, priority models.QueuePriority) (*models.VerificationQueueEntry, error) {
	if err := s.validate.Struct(sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if priority < models.QueuePriorityLow || priority > models.QueuePriorityHigh {
		return nil, fmt.Errorf("%w: priority %d out of range", ErrInvalidRequest, priority)
	}

	entry := &models.VerificationQueueEntry{
		ImageID:    sub.ImageID,
		ImageType:  sub.ImageType,
		FilePath:   sub.FilePath,
		UserID:     sub.UploaderID,
		TutorialID: sub.TutorialID,
		Priority:   priority,
		QueuedAt:   s.now(),
	}

	status := string(models.QueueStatusQueued)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Queue.Enqueue(ctx, entry); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		return tx.Audit.Append(ctx, &models.AuditLogEntry{
			ImageID:         sub.ImageID,
			ImageType:       sub.ImageType,
			Action:          models.AuditActionVerificationQueued,
			NewStatus:       &status,
			PerformedBy:     &sub.UploaderID,
			PerformedByType: models.PerformerUser,
			Details: models.NewJSON(map[string]interface{}{
				"queue_id":  entry.ID,
				"priority":  priority.String(),
				"file_path": sub.FilePath,
			}),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.publish(ctx, sub.Ref(), status)
	log.Infof("[Verification] Queued %s with %s priority (entry %d)", sub.Ref(), priority, entry.ID)
	return entry, nil
}

// ProcessQueue verifies up to limit queued entries, highest priority and oldest first.
// Each entry is claimed before any work starts; entries claimed by another worker in
// the meantime are skipped. A failing entry never aborts the batch.
func (s *Service) ProcessQueue(ctx context.Context, limit int) (*BatchResult, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	if err := ctx.Err(); err != nil {
		return &BatchResult{Details: []ItemResult{}}, err
	}

	entries, err := s.repos.Queue.ListQueued(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list queue: %v", ErrPersistence, err)
	}

	batch := &BatchResult{Details: []ItemResult{}}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			log.Warnf("[Verification] Batch interrupted after %d entries: %v", batch.Processed, err)
			return batch, err
		}

		claimed, err := s.repos.Queue.Claim(ctx, &entry)
		if err != nil {
			log.Errorf("[Verification] %v", err)
			batch.Skipped++
			continue
		}
		if !claimed {
			log.Infof("[Verification] Queue entry %d was claimed by another worker", entry.ID)
			batch.Skipped++
			continue
		}

		batch.Processed++
		item := s.processEntry(ctx, entry)
		if item.QueueStatus == models.QueueStatusCompleted {
			batch.Successful++
		} else {
			batch.Failed++
		}
		batch.Details = append(batch.Details, item)
	}

	log.Infof("[Verification] Batch done: %d processed, %d successful, %d failed, %d skipped",
		batch.Processed, batch.Successful, batch.Failed, batch.Skipped)
	return batch, nil
}

func (s *Service) processEntry(ctx context.Context, entry models.VerificationQueueEntry) ItemResult {
	item := ItemResult{
		QueueID:   entry.ID,
		ImageID:   entry.ImageID,
		ImageType: entry.ImageType,
	}

	// Cancellation is honoured between items only: a claimed entry always runs to the end
	runCtx := context.WithoutCancel(ctx)

	res := s.VerifyImage(runCtx, entry.Submission())
	item.VerificationStatus = res.VerificationStatus
	item.AuthenticityScore = res.AuthenticityScore

	if res.Failed() {
		item.QueueStatus = models.QueueStatusFailed
		item.Error = strings.Join(res.ProcessingErrors, "; ")
		if err := s.repos.Queue.Fail(runCtx, &entry, item.Error); err != nil {
			log.Errorf("[Verification] Marking queue entry %d failed: %v", entry.ID, err)
		}
		return item
	}

	item.QueueStatus = models.QueueStatusCompleted
	if err := s.repos.Queue.Complete(runCtx, &entry); err != nil {
		log.Errorf("[Verification] Marking queue entry %d completed: %v", entry.ID, err)
	}
	return item
}

// ReclaimStale puts entries stuck in processing for longer than olderThan back into the queue
func (s *Service) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = DefaultStaleAfter
	}
	n, err := s.repos.Queue.ReclaimStale(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if n > 0 {
		log.Warnf("[Verification] Reclaimed %d stale queue entries", n)
	}
	return n, nil
}
