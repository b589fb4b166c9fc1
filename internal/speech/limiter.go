package speech

import "sync"

// DefaultPerPrompt is how many utterances a single prompt may produce.
const DefaultPerPrompt = 2

// Limiter caps repeated utterances for one prompt. The caller resets it
// when a new prompt begins.
type Limiter struct {
	mu    sync.Mutex
	max   int
	count int
}

// NewLimiter returns a limiter allowing max utterances per prompt.
func NewLimiter(max int) *Limiter {
	if max <= 0 {
		max = DefaultPerPrompt
	}
	return &Limiter{max: max}
}

// Allow consumes one utterance and reports whether it may be spoken.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count >= l.max {
		return false
	}
	l.count++
	return true
}

// Reset starts a new prompt.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.count = 0
	l.mu.Unlock()
}

// Remaining returns how many utterances are left for this prompt.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.max - l.count
}
