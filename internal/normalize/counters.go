package normalize

import "sync"

// Counters mints the n in synthetic-error keys ("{category}_error_{n}").
// Values are per-category, strictly increasing, and never reset for the life
// of the process. Numbering spans invocations, matching the legacy collector,
// so two runs in one process cannot reuse a key.
type Counters struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewCounters returns an empty counter set. Inject one instance into the
// orchestrator; do not share it across unrelated orchestrators.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Next increments and returns the counter for category. Safe for concurrent
// use when checks run in parallel.
func (c *Counters) Next(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[category]++
	return c.counts[category]
}

// Peek returns the current value without incrementing. Used by status
// reporting and tests.
func (c *Counters) Peek(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[category]
}
