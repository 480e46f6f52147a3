// Package metrics records what the conversion pipeline has done: message
// and proof counts per stage, schema-cache effectiveness, and per-stage
// latencies. The metric set is fixed at compile time, so all state lives
// in the Pipeline struct rather than behind a string-keyed registry; the
// CLI prints one Snapshot of the process-wide Default at exit.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing event count.
type Counter struct {
	n atomic.Int64
}

// Inc records one event.
func (c *Counter) Inc() { c.n.Add(1) }

// Add records n events at once, e.g. one per enumerated leaf. Negative n
// is ignored.
func (c *Counter) Add(n int64) {
	if n > 0 {
		c.n.Add(n)
	}
}

// Value returns the number of events recorded so far.
func (c *Counter) Value() int64 { return c.n.Load() }

// Gauge is an instantaneous level, such as the number of schemas held in
// the loader cache.
type Gauge struct {
	n atomic.Int64
}

// Set records the current level.
func (g *Gauge) Set(v int64) { g.n.Store(v) }

// Value returns the most recently recorded level.
func (g *Gauge) Value() int64 { return g.n.Load() }

// Latency accumulates the durations of one pipeline stage's operations.
type Latency struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	max   time.Duration
}

// Observe records one operation's duration.
func (l *Latency) Observe(d time.Duration) {
	l.mu.Lock()
	l.count++
	l.total += d
	if d > l.max {
		l.max = d
	}
	l.mu.Unlock()
}

// Start begins timing one operation. The returned func records the
// elapsed time when called, so a stage reads
//
//	defer metrics.Default.EncodeLatency.Start()()
func (l *Latency) Start() func() {
	t0 := time.Now()
	return func() { l.Observe(time.Since(t0)) }
}

// Count returns the number of observed operations.
func (l *Latency) Count() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Mean returns the mean observed duration, or 0 before any observation.
func (l *Latency) Mean() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return 0
	}
	return l.total / time.Duration(l.count)
}

// Max returns the largest observed duration.
func (l *Latency) Max() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.max
}
