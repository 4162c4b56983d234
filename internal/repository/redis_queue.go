package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

const dequeueBlock = time.Second

// RedisQueue implements domain.Queue on Redis lists using the reliable
// queue pattern: BRPOPLPUSH moves an envelope from the pending list to a
// processing list, where it stays until acked or nacked. An envelope left
// on the processing list by a crashed consumer is recovered on the next
// worker start, giving at-least-once delivery.
type RedisQueue struct {
	client      *redis.Client
	name        string
	maxAttempts int
}

// NewRedisQueue creates a queue with the given name and retry budget.
// A job is moved to the dead-letter list after maxAttempts deliveries.
func NewRedisQueue(client *redis.Client, name string, maxAttempts int) *RedisQueue {
	return &RedisQueue{
		client:      client,
		name:        name,
		maxAttempts: maxAttempts,
	}
}

func (q *RedisQueue) pendingKey() string    { return "queue:" + q.name + ":pending" }
func (q *RedisQueue) processingKey() string { return "queue:" + q.name + ":processing" }
func (q *RedisQueue) deadKey() string       { return "queue:" + q.name + ":dead" }

func (q *RedisQueue) Enqueue(ctx context.Context, payload domain.JobPayload) error {
	job := domain.Job{
		ID:         ulid.Make().String(),
		Payload:    payload,
		Attempts:   0,
		EnqueuedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LPush(ctx, q.pendingKey(), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*domain.Delivery, error) {
	for {
		raw, err := q.client.BRPopLPush(ctx, q.pendingKey(), q.processingKey(), dequeueBlock).Result()
		if err == redis.Nil {
			// Nothing pending within the block window; poll again until
			// the caller cancels.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to dequeue job: %w", err)
		}

		var job domain.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			// Unparseable envelope: dead-letter it rather than loop on it.
			_ = q.client.LRem(ctx, q.processingKey(), 1, raw).Err()
			_ = q.client.LPush(ctx, q.deadKey(), raw).Err()
			continue
		}
		job.Attempts++

		return &domain.Delivery{Job: job, Raw: raw}, nil
	}
}

func (q *RedisQueue) Ack(ctx context.Context, d *domain.Delivery) error {
	if err := q.client.LRem(ctx, q.processingKey(), 1, d.Raw).Err(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Nack(ctx context.Context, d *domain.Delivery, retryable bool) error {
	data, err := json.Marshal(d.Job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	target := q.pendingKey()
	if !retryable || d.Job.Attempts >= q.maxAttempts {
		target = q.deadKey()
	}

	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processingKey(), 1, d.Raw)
	pipe.LPush(ctx, target, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to nack job: %w", err)
	}
	return nil
}

// Recover moves every envelope stranded on the processing list back to the
// pending list. Workers call this on startup; redelivered jobs are safe
// because processing is idempotent.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	recovered := 0
	for {
		_, err := q.client.RPopLPush(ctx, q.processingKey(), q.pendingKey()).Result()
		if err == redis.Nil {
			return recovered, nil
		}
		if err != nil {
			return recovered, fmt.Errorf("failed to recover jobs: %w", err)
		}
		recovered++
	}
}

// DeadLetters returns the raw envelopes on the dead-letter list, newest
// first, for operator inspection.
func (q *RedisQueue) DeadLetters(ctx context.Context) ([]domain.Job, error) {
	raws, err := q.client.LRange(ctx, q.deadKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}

	jobs := make([]domain.Job, 0, len(raws))
	for _, raw := range raws {
		var job domain.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
