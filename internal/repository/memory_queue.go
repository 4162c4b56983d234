package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/oklog/ulid/v2"
)

// MemoryQueue is an in-process domain.Queue with the same retry and
// dead-letter behavior as RedisQueue. It backs worker tests and is not
// durable.
type MemoryQueue struct {
	mu          sync.Mutex
	pending     []domain.Job
	dead        []domain.Job
	maxAttempts int
	notify      chan struct{}
}

func NewMemoryQueue(maxAttempts int) *MemoryQueue {
	return &MemoryQueue{
		maxAttempts: maxAttempts,
		notify:      make(chan struct{}, 1),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, payload domain.JobPayload) error {
	q.mu.Lock()
	q.pending = append(q.pending, domain.Job{
		ID:         ulid.Make().String(),
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	})
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*domain.Delivery, error) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			job := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			job.Attempts++
			return &domain.Delivery{Job: job}, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *MemoryQueue) Ack(ctx context.Context, d *domain.Delivery) error {
	return nil
}

func (q *MemoryQueue) Nack(ctx context.Context, d *domain.Delivery, retryable bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !retryable || d.Job.Attempts >= q.maxAttempts {
		q.dead = append(q.dead, d.Job)
		return nil
	}

	q.pending = append(q.pending, d.Job)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// DeadLetters returns the jobs that exhausted their retry budget.
func (q *MemoryQueue) DeadLetters() []domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.Job, len(q.dead))
	copy(out, q.dead)
	return out
}

// Len reports the number of pending jobs.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
