// Package scheduler runs one-shot deferred tasks keyed by room identifier.
// Any path that deletes a room cancels its pending task instead of relying
// on the task to detect the room's absence.
package scheduler

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func New() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms a one-shot task for the key, replacing any pending one.
// The callback runs on its own goroutine and must not assume the key still
// refers to live state.
func (that *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stopped {
		return
	}

	if timer, ok := that.timers[key]; ok {
		timer.Stop()
	}

	that.timers[key] = time.AfterFunc(delay, func() {
		that.mu.Lock()
		delete(that.timers, key)
		stopped := that.stopped
		that.mu.Unlock()

		if !stopped {
			fn()
		}
	})
}

// Cancel drops the pending task for the key, if any.
func (that *Scheduler) Cancel(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if timer, ok := that.timers[key]; ok {
		timer.Stop()
		delete(that.timers, key)
	}
}

// Stop cancels every pending task. The scheduler accepts no new tasks after.
func (that *Scheduler) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.stopped = true
	for key, timer := range that.timers {
		timer.Stop()
		delete(that.timers, key)
	}
}
