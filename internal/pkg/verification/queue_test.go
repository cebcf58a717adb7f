package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/app/repository"
	"github.com/ManuelReschke/PixelProof/internal/pkg/verification"
)

// stealingQueue lets another worker win every claim race
type stealingQueue struct {
	repository.VerificationQueueRepository
}

func (q stealingQueue) Claim(ctx context.Context, entry *models.VerificationQueueEntry) (bool, error) {
	other := *entry
	if _, err := q.VerificationQueueRepository.Claim(ctx, &other); err != nil {
		return false, err
	}
	return q.VerificationQueueRepository.Claim(ctx, entry)
}

// cancelingCache cancels the batch as soon as an item starts processing
type cancelingCache struct {
	cancel context.CancelFunc
}

func (c cancelingCache) SetStatus(_ context.Context, _, _, status string) error {
	if status == verification.StatusProcessing {
		c.cancel()
	}
	return nil
}

func (e *env) enqueue(t *testing.T, sub models.ImageSubmission, priority models.QueuePriority) *models.VerificationQueueEntry {
	t.Helper()
	entry, err := e.svc.Enqueue(context.Background(), sub, priority)
	require.NoError(t, err)
	return entry
}

func queueStatus(t *testing.T, e *env, id uint) models.QueueStatus {
	t.Helper()
	entry, err := e.repos.Queue.GetByID(context.Background(), id)
	require.NoError(t, err)
	return entry.Status
}

func TestEnqueue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.submit(t, "100", "a.png", plainPNG(t, 10))

	entry := e.enqueue(t, sub, models.QueuePriorityHigh)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, models.QueueStatusQueued, entry.Status)
	assert.Equal(t, models.QueuePriorityHigh, entry.Priority)
	assert.Equal(t, 0, entry.Attempts)

	audit, err := e.repos.Audit.ListByImage(ctx, sub.Ref())
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.AuditActionVerificationQueued, audit[0].Action)
	assert.Equal(t, models.PerformerUser, audit[0].PerformedByType)
	require.NotNil(t, audit[0].PerformedBy)
	assert.Equal(t, uint(7), *audit[0].PerformedBy)
	assert.Equal(t, []string{"queued"}, e.cache.statuses["tutorial_step:100"])

	_, err = e.svc.Enqueue(ctx, sub, models.QueuePriority(9))
	assert.ErrorIs(t, err, verification.ErrInvalidRequest)
	_, err = e.svc.Enqueue(ctx, models.ImageSubmission{ImageID: "x"}, models.QueuePriorityLow)
	assert.ErrorIs(t, err, verification.ErrInvalidRequest)
}

func TestEnqueueResetsExistingEntry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.submit(t, "101", "missing.png", nil)

	entry := e.enqueue(t, sub, models.QueuePriorityLow)
	batch, err := e.svc.ProcessQueue(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, batch.Failed)

	failed, err := e.repos.Queue.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusFailed, failed.Status)
	assert.Equal(t, 1, failed.Attempts)
	require.NotNil(t, failed.ErrorMessage)
	require.NotNil(t, failed.ProcessedAt)

	again := e.enqueue(t, sub, models.QueuePriorityHigh)
	assert.Equal(t, entry.ID, again.ID)
	assert.Equal(t, models.QueueStatusQueued, again.Status)
	assert.Equal(t, models.QueuePriorityHigh, again.Priority)
	assert.Equal(t, 0, again.Attempts)
	assert.Nil(t, again.ErrorMessage)
	assert.Nil(t, again.ProcessedAt)
}

func TestProcessQueueOrderAndLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	low := e.enqueue(t, e.submit(t, "200", "low.png", plainPNG(t, 20)), models.QueuePriorityLow)
	medium := e.enqueue(t, e.submit(t, "201", "medium.png", plainPNG(t, 21)), models.QueuePriorityMedium)
	high := e.enqueue(t, e.submit(t, "202", "gone.png", nil), models.QueuePriorityHigh)

	batch, err := e.svc.ProcessQueue(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, 1, batch.Successful)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 0, batch.Skipped)

	require.Len(t, batch.Details, 2)
	assert.Equal(t, high.ID, batch.Details[0].QueueID)
	assert.Equal(t, models.QueueStatusFailed, batch.Details[0].QueueStatus)
	assert.Equal(t, models.VerificationStatusFailed, batch.Details[0].VerificationStatus)
	assert.NotEmpty(t, batch.Details[0].Error)
	assert.Equal(t, medium.ID, batch.Details[1].QueueID)
	assert.Equal(t, models.QueueStatusCompleted, batch.Details[1].QueueStatus)
	assert.Equal(t, models.VerificationStatusVerified, batch.Details[1].VerificationStatus)

	assert.Equal(t, models.QueueStatusFailed, queueStatus(t, e, high.ID))
	assert.Equal(t, models.QueueStatusCompleted, queueStatus(t, e, medium.ID))
	assert.Equal(t, models.QueueStatusQueued, queueStatus(t, e, low.ID))

	batch, err = e.svc.ProcessQueue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Processed)
	assert.Equal(t, models.QueueStatusCompleted, queueStatus(t, e, low.ID))

	counts, err := e.repos.Queue.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts["processing"])
	assert.Zero(t, counts["queued"])
	assert.Equal(t, int64(2), counts["completed"])
	assert.Equal(t, int64(1), counts["failed"])
}

func TestProcessQueueEmpty(t *testing.T) {
	e := newEnv(t)
	batch, err := e.svc.ProcessQueue(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Processed)
	assert.NotNil(t, batch.Details)
}

func TestProcessQueueSkipsLostClaims(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.enqueue(t, e.submit(t, "300", "a.png", plainPNG(t, 30)), models.QueuePriorityMedium)

	e.repos.Queue = stealingQueue{VerificationQueueRepository: e.repos.Queue}

	batch, err := e.svc.ProcessQueue(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Processed)
	assert.Equal(t, 1, batch.Skipped)
	assert.Empty(t, batch.Details)

	// the other worker owns the entry now
	assert.Equal(t, models.QueueStatusProcessing, queueStatus(t, e, entry.ID))
	_, err = e.repos.Authenticity.GetByImage(ctx, models.ImageRef{ImageID: "300", ImageType: "tutorial_step"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProcessQueueStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	entry := e.enqueue(t, e.submit(t, "400", "a.png", plainPNG(t, 40)), models.QueuePriorityMedium)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := e.svc.ProcessQueue(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, batch.Processed)
	assert.Equal(t, models.QueueStatusQueued, queueStatus(t, e, entry.ID))
}

func TestProcessQueueFinishesItemCanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newEnv(t, verification.WithStatusCache(cancelingCache{cancel: cancel}))

	first := e.enqueue(t, e.submit(t, "410", "a.png", plainPNG(t, 41)), models.QueuePriorityHigh)
	second := e.enqueue(t, e.submit(t, "411", "b.png", plainPNG(t, 42)), models.QueuePriorityLow)

	batch, err := e.svc.ProcessQueue(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, batch.Processed)
	assert.Equal(t, 1, batch.Successful)
	require.Len(t, batch.Details, 1)
	assert.Equal(t, models.VerificationStatusVerified, batch.Details[0].VerificationStatus)

	assert.Equal(t, models.QueueStatusCompleted, queueStatus(t, e, first.ID))
	assert.Equal(t, models.QueueStatusQueued, queueStatus(t, e, second.ID))

	bg := context.Background()
	record, err := e.repos.Authenticity.GetByImage(bg, first.Submission().Ref())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, record.VerificationStatus)

	audit, err := e.repos.Audit.ListByImage(bg, first.Submission().Ref())
	require.NoError(t, err)
	var completed int
	for _, a := range audit {
		if a.Action == models.AuditActionVerificationCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestReclaimStale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.enqueue(t, e.submit(t, "500", "a.png", plainPNG(t, 50)), models.QueuePriorityMedium)

	claimed, err := e.repos.Queue.Claim(ctx, entry)
	require.NoError(t, err)
	require.True(t, claimed)

	n, err := e.svc.ReclaimStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, models.QueueStatusProcessing, queueStatus(t, e, entry.ID))

	later, err := verification.NewService(ctx, e.repos, nil,
		verification.WithClock(func() time.Time { return time.Now().Add(11 * time.Minute) }))
	require.NoError(t, err)

	n, err = later.ReclaimStale(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	reclaimed, err := e.repos.Queue.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusQueued, reclaimed.Status)
	assert.Nil(t, reclaimed.ClaimedAt)
	assert.Equal(t, 1, reclaimed.Attempts)

	batch, err := e.svc.ProcessQueue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Successful)
}
