package accessibility

import (
	"sync"
	"time"
)

// DefaultAnnouncementTTL is how long an unrendered announcement survives.
const DefaultAnnouncementTTL = 5 * time.Second

type announcement struct {
	text    string
	expires time.Time
}

// Announcer queues messages for a visitor's aria-live region.
type Announcer struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	messages []announcement
}

// NewAnnouncer returns an announcer whose messages expire after ttl.
func NewAnnouncer(ttl time.Duration) *Announcer {
	if ttl <= 0 {
		ttl = DefaultAnnouncementTTL
	}
	return &Announcer{ttl: ttl, now: time.Now}
}

// Announce queues message.
func (a *Announcer) Announce(message string) {
	if message == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, announcement{text: message, expires: a.now().Add(a.ttl)})
}

// Drain returns the live messages in order and clears the queue.
func (a *Announcer) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	var out []string
	for _, m := range a.messages {
		if now.Before(m.expires) {
			out = append(out, m.text)
		}
	}
	a.messages = nil
	return out
}
