package generation_engine

import (
	"math/rand"
	"time"
)

// ProcessingTask statuses. pending → started → {succeeded | retrying →
// started | failed}.
const (
	TaskStatusPending   = "pending"
	TaskStatusStarted   = "started"
	TaskStatusRetrying  = "retrying"
	TaskStatusSucceeded = "succeeded"
	TaskStatusFailed    = "failed"
)

// ProcessingTask tracks one asynchronous document run. Owned by the
// Processor's registry; its lifecycle is independent of, but reported
// into, the document's own status.
type ProcessingTask struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// backoffDelay computes the wait before the next attempt: base * 2^(n-1),
// capped at one minute, plus up to 50% jitter. Derived from the attempt
// number, not wall-clock drift, so retries are deterministic given the
// attempt count.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = 2 * time.Second
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= time.Minute {
			d = time.Minute
			break
		}
	}
	return d + time.Duration(rand.Int63n(int64(d/2)+1))
}
