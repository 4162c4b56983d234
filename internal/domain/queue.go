package domain

import (
	"context"
	"time"
)

// Queue names used by the service.
const (
	FileQueue = "fileQueue"
	UserQueue = "userQueue"
)

// JobPayload references the entities a worker needs to process a job.
// Thumbnail jobs carry FileID+UserID, welcome jobs only UserID.
type JobPayload struct {
	FileID string `json:"fileId,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// Job is the envelope stored on the queue. Attempts counts deliveries so the
// retry budget survives process restarts along with the job itself.
type Job struct {
	ID         string     `json:"id"`
	Payload    JobPayload `json:"payload"`
	Attempts   int        `json:"attempts"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}

// Delivery is a dequeued job held by a consumer until acked or nacked.
type Delivery struct {
	Job Job
	// Raw is the wire form of the envelope as it sits on the processing
	// list; the queue needs it to ack the exact entry.
	Raw string
}

// Queue is a durable FIFO channel of jobs with at-least-once delivery.
// A dequeued-but-unacknowledged delivery is redelivered after a crash.
type Queue interface {
	Enqueue(ctx context.Context, payload JobPayload) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*Delivery, error)
	// Ack drops the delivery permanently.
	Ack(ctx context.Context, d *Delivery) error
	// Nack returns the delivery to the queue when retryable and the retry
	// budget allows; otherwise it is moved to the dead-letter list.
	Nack(ctx context.Context, d *Delivery, retryable bool) error
}
