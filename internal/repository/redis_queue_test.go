package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))
	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{FileID: "f2", UserID: "u1"}))

	d1, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "f1", d1.Job.Payload.FileID)
	assert.Equal(t, 1, d1.Job.Attempts)
	assert.NotEmpty(t, d1.Job.ID)

	d2, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "f2", d2.Job.Payload.FileID)
}

func TestQueueAckDropsJob(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	d, err := q.Dequeue(ctx)
	require.NoError(t, err)

	// In flight: parked on the processing list, not pending.
	assert.Equal(t, int64(0), client.LLen(ctx, "queue:fileQueue:pending").Val())
	assert.Equal(t, int64(1), client.LLen(ctx, "queue:fileQueue:processing").Val())

	require.NoError(t, q.Ack(ctx, d))
	assert.Equal(t, int64(0), client.LLen(ctx, "queue:fileQueue:processing").Val())
}

func TestQueueNackRetries(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	d, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Nack(ctx, d, true))

	// The attempt count travels with the re-queued envelope.
	d, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Job.Attempts)
	assert.Equal(t, int64(0), client.LLen(ctx, "queue:fileQueue:pending").Val())
	assert.Equal(t, int64(1), client.LLen(ctx, "queue:fileQueue:processing").Val())
}

func TestQueueRetryBudgetExhausted(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	for i := 0; i < 2; i++ {
		d, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NoError(t, q.Nack(ctx, d, true))
	}

	// Budget spent: the job is dead-lettered, not pending.
	assert.Equal(t, int64(0), client.LLen(ctx, "queue:fileQueue:pending").Val())
	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "f1", dead[0].Payload.FileID)
	assert.Equal(t, 2, dead[0].Attempts)
}

func TestQueueNackPermanent(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 5)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{UserID: "u1"}))

	d, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Nack(ctx, d, false))

	// Permanent failures skip the remaining budget entirely.
	assert.Equal(t, int64(0), client.LLen(ctx, "queue:fileQueue:pending").Val())
	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	assert.Len(t, dead, 1)
}

func TestQueueRecover(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	_, err := q.Dequeue(ctx)
	require.NoError(t, err)
	// Simulate a crash: the delivery is never acked or nacked.

	n, err := q.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), client.LLen(ctx, "queue:fileQueue:pending").Val())

	d, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "f1", d.Job.Payload.FileID)
}

func TestQueueDequeueHonorsContext(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client, "fileQueue", 3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := q.Dequeue(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
