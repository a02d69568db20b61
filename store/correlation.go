package store

import (
	"sync"
	"time"

	"github.com/YasiruR/didcomm-resolver/domain/models"
)

// Correlation maps correlation ids to pending resolutions. It is the only
// shared mutable state of the relay and is safe for concurrent use by the
// per-request goroutines and the expiry sweeper.
type Correlation struct {
	mu      sync.Mutex
	pending map[string]models.PendingRequest
}

func NewCorrelation() *Correlation {
	return &Correlation{pending: map[string]models.PendingRequest{}}
}

func (c *Correlation) Put(id string, req models.PendingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = req
}

// Take removes and returns the entry in a single critical section, hence
// at most one caller observes a given entry as present. An absent id means
// the request was never issued, already completed or expired.
func (c *Correlation) Take(id string) (models.PendingRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.pending[id]
	if !ok {
		return models.PendingRequest{}, false
	}

	delete(c.pending, id)
	return req, true
}

// SweepExpired reclaims entries older than ttl. Removal is bookkeeping
// only, an in-flight lookup for a swept entry simply finds Take empty on
// completion and discards its result.
func (c *Correlation) SweepExpired(now time.Time, ttl time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []string
	for id, req := range c.pending {
		if req.ReceivedAt.Add(ttl).Before(now) {
			delete(c.pending, id)
			expired = append(expired, id)
		}
	}

	return expired
}

func (c *Correlation) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
