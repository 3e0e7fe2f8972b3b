package analysis

import (
	"sync"
	"time"
)

// Breaker marks the AI layer unavailable after a terminal failure so the
// pipeline can skip straight to rule-only results instead of burning
// attempts against a broken endpoint. With a cooldown, one probe call is
// allowed after the cooldown elapses; a zero cooldown keeps the breaker
// open for the rest of the process session.
type Breaker struct {
	mu       sync.Mutex
	open     bool
	openedAt time.Time
	cooldown time.Duration
}

// NewBreaker creates a closed breaker with the given recovery cooldown.
func NewBreaker(cooldown time.Duration) *Breaker {
	return &Breaker{cooldown: cooldown}
}

// Allow reports whether an analysis call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.cooldown > 0 && time.Since(b.openedAt) >= b.cooldown {
		// Half-open: let one probe through. A terminal failure re-trips.
		b.open = false
		return true
	}
	return false
}

// Trip opens the breaker. Called on terminal analysis failures.
func (b *Breaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = true
	b.openedAt = time.Now()
}

// Reset closes the breaker. Called after a successful analysis.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
}

// IsOpen reports whether the breaker currently blocks analysis calls.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && (b.cooldown == 0 || time.Since(b.openedAt) < b.cooldown)
}
