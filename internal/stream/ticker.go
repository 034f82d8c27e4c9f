package stream

import (
	"sync"
	"time"
)

// Ticker owns at most one periodic task, keyed by the identity of the
// device it polls. Binding to a new key stops the previous task before the
// new one starts.
type Ticker struct {
	mu       sync.Mutex
	interval time.Duration
	key      string
	stop     chan struct{}
	done     chan struct{}
	started  int
}

// NewTicker creates a ticker that fires every interval once bound.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = 2500 * time.Millisecond
	}
	return &Ticker{interval: interval}
}

// Bind starts calling fn(key) every interval. Binding to the key that is
// already active is a no-op; binding to another key cancels the active task
// first. Stop waits for an in-flight fn, so fn must not block.
func (t *Ticker) Bind(key string, fn func(key string)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil && t.key == key {
		return
	}
	t.stopLocked()

	stop := make(chan struct{})
	done := make(chan struct{})
	t.key = key
	t.stop = stop
	t.done = done
	t.started++

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn(key)
			}
		}
	}()
}

// Stop cancels the active task, if any, and waits for it to exit.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Ticker) stopLocked() {
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop = nil
	t.done = nil
	t.key = ""
}

// Active returns the key of the running task.
func (t *Ticker) Active() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.key, t.stop != nil
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Started returns how many tasks have been started over the ticker's life.
func (t *Ticker) Started() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}
