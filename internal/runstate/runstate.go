// Package runstate holds the cross-record state a run is allowed to share:
// a record counter and a failure collector. Both are safe for concurrent use
// by parallel workers and are created per run invocation, never process-wide.
package runstate

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter is an atomic record counter.
type Counter struct {
	n atomic.Int64
}

// Inc adds one and returns the new total.
func (c *Counter) Inc() int64 { return c.n.Add(1) }

// Value returns the current total.
func (c *Counter) Value() int64 { return c.n.Load() }

// Failure records one rejected record.
type Failure struct {
	RecordID string
	Source   string
	Err      error
	At       time.Time
}

// Collector is an append-only concurrent list of failures.
type Collector struct {
	mu       sync.Mutex
	failures []Failure
}

// Append records a failure.
func (c *Collector) Append(f Failure) {
	if f.At.IsZero() {
		f.At = time.Now()
	}
	c.mu.Lock()
	c.failures = append(c.failures, f)
	c.mu.Unlock()
}

// List returns a snapshot of the collected failures.
func (c *Collector) List() []Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Failure(nil), c.failures...)
}

// Len returns the number of collected failures.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures)
}
