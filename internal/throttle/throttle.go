// Package throttle provides the coalescing redraw scheduler that sits
// between sample arrival and the presentation layer.
package throttle

import (
	"sync"
	"time"
)

// Scheduler rate-limits draw callbacks. Request may be called
// arbitrarily often and from any goroutine; the draw function runs at
// most once per interval, and a request arriving inside a window is
// satisfied by exactly one trailing draw once the window elapses. The
// draw function observes state at draw time, not request time.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	draw     func()
	timer    *time.Timer
	lastDraw time.Time
	closed   bool
}

// New returns a Scheduler invoking draw at most once per interval.
// A zero interval draws on every request.
func New(interval time.Duration, draw func()) *Scheduler {
	return &Scheduler{interval: interval, draw: draw}
}

// Request asks for a redraw. It never blocks on drawing being
// throttled: either the draw runs now, or a single trailing draw is
// already scheduled for the end of the current window.
func (s *Scheduler) Request() {
	s.mu.Lock()
	if s.closed || s.draw == nil {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		// A trailing draw is pending; it will observe this request's
		// state when it fires.
		s.mu.Unlock()
		return
	}
	now := time.Now()
	wait := s.interval - now.Sub(s.lastDraw)
	if s.interval <= 0 || wait <= 0 {
		s.lastDraw = now
		s.mu.Unlock()
		s.draw()
		return
	}
	s.timer = time.AfterFunc(wait, s.fire)
	s.mu.Unlock()
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastDraw = time.Now()
	s.mu.Unlock()
	s.draw()
}

// SetInterval replaces the throttle window. It applies to subsequent
// requests; an already scheduled trailing draw keeps its deadline.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()
}

// Close cancels any pending trailing draw and ignores further
// requests.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}
