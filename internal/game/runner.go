package game

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Runner drives a Game's clock from its own goroutine.
type Runner struct {
	game     *Game
	interval time.Duration
	active   prometheus.Gauge

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner returns a stopped runner ticking every interval. active, if not
// nil, counts running games.
func NewRunner(g *Game, interval time.Duration, active prometheus.Gauge) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{game: g, interval: interval, active: active}
}

// Start launches the tick loop unless it is already running. The loop exits
// when ctx is cancelled, Stop is called or the game ends.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		select {
		case <-r.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	if r.active != nil {
		r.active.Inc()
	}
	go r.loop(ctx, done)
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	if r.active != nil {
		defer r.active.Dec()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.game.Tick()
			if r.game.Snapshot().Over {
				return
			}
		}
	}
}

// Stop cancels the loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}
