package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/YasiruR/didcomm-resolver/domain/models"
)

/* core services */

type Agent interface {
	// Resolve asks the agent listening on endpoint to resolve did and
	// blocks until the correlated result arrives or the deadline passes
	Resolve(endpoint, did string) (doc json.RawMessage, err error)
	// Pending returns the number of in-flight resolutions held by the store
	Pending() int
	Close() error
}

// Resolver performs a single bounded lookup against the external resolver
// service. Expected failures (rejected did, unreachable backend, timeout)
// are returned as failed results, never as panics or fatal errors.
type Resolver interface {
	Resolve(ctx context.Context, did string) models.Result
}

// Store is the correlation table for in-flight resolutions. Take removes
// and returns atomically so that at most one caller ever observes a given
// entry, which guards the at-most-one-reply invariant under concurrent
// completions.
type Store interface {
	Put(id string, req models.PendingRequest)
	Take(id string) (req models.PendingRequest, ok bool)
	SweepExpired(now time.Time, ttl time.Duration) (expired []string)
	Pending() int
}
