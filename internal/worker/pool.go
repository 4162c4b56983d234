package worker

import (
	"context"
	"errors"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PermanentError marks a failure that must not be retried: a malformed
// payload or an entity that is genuinely gone. Everything else is treated
// as transient and handed back to the queue's retry policy.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as non-retryable.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is a permanent failure.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Handler processes one job. A nil return acks the job; a PermanentError
// dead-letters it; any other error nacks it for retry.
type Handler interface {
	Process(ctx context.Context, job domain.Job) error
}

// Pool drains a queue with a fixed number of concurrent consumers.
type Pool struct {
	name        string
	queue       domain.Queue
	handler     Handler
	concurrency int
}

// NewPool creates a worker pool for the named queue.
func NewPool(name string, queue domain.Queue, handler Handler, concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{
		name:        name,
		queue:       queue,
		handler:     handler,
		concurrency: concurrency,
	}
}

// Run blocks until ctx is cancelled, then returns ctx.Err.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.concurrency; i++ {
		g.Go(func() error {
			return p.consume(ctx)
		})
	}
	return g.Wait()
}

func (p *Pool) consume(ctx context.Context) error {
	for {
		d, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("queue", p.name).Msg("dequeue failed")
			continue
		}

		if err := p.handler.Process(ctx, d.Job); err != nil {
			retryable := !IsPermanent(err)
			log.Error().Err(err).
				Str("queue", p.name).
				Str("job_id", d.Job.ID).
				Int("attempts", d.Job.Attempts).
				Bool("retryable", retryable).
				Msg("job failed")
			if nackErr := p.queue.Nack(ctx, d, retryable); nackErr != nil {
				log.Error().Err(nackErr).Str("queue", p.name).Str("job_id", d.Job.ID).Msg("nack failed")
			}
			continue
		}

		if err := p.queue.Ack(ctx, d); err != nil {
			// The job already ran to completion; redelivery is harmless
			// because processing is idempotent.
			log.Error().Err(err).Str("queue", p.name).Str("job_id", d.Job.ID).Msg("ack failed")
		}
	}
}
