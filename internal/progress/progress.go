// Package progress provides pass-level progress reporting for batch runs.
package progress

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Tracker reports progress through a fixed number of steps. Safe for
// concurrent Increment calls.
type Tracker struct {
	mu      sync.Mutex
	name    string
	total   int
	current int
	start   time.Time
	log     zerolog.Logger
}

// NewTracker creates a tracker for an operation with a known step count.
func NewTracker(name string, total int, logger zerolog.Logger) *Tracker {
	return &Tracker{name: name, total: total, start: time.Now(), log: logger}
}

// Step marks one step complete and logs it with elapsed time.
func (t *Tracker) Step(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	t.log.Debug().
		Str("operation", t.name).
		Str("step", label).
		Int("completed", t.current).
		Int("total", t.total).
		Dur("elapsed", time.Since(t.start)).
		Msg("step complete")
}

// Done logs the final summary and returns the total elapsed time.
func (t *Tracker) Done() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.start)
	t.log.Info().
		Str("operation", t.name).
		Int("steps", t.current).
		Dur("elapsed", elapsed).
		Msg("operation complete")
	return elapsed
}
