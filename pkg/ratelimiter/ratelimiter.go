package ratelimiter

import (
	"sync"
	"time"
)

// Policy allows Limit events per Window for each key
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Take call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a sliding-window log limiter keyed by an arbitrary string such
// as a client IP. A Limit of zero or less disables limiting.
type Limiter struct {
	policy Policy

	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter and starts a goroutine that forgets idle keys
func New(policy Policy) *Limiter {
	l := &Limiter{
		policy: policy,
		events: make(map[string][]time.Time),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	if policy.Limit > 0 && policy.Window > 0 {
		go l.sweepLoop()
	}
	return l
}

// Policy returns the configured policy
func (l *Limiter) Policy() Policy {
	return l.policy
}

// Take records an event for key if the window has room left
func (l *Limiter) Take(key string) Decision {
	if l.policy.Limit <= 0 || l.policy.Window <= 0 {
		return Decision{Allowed: true, Remaining: -1}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := prune(l.events[key], now.Add(-l.policy.Window))

	if len(recent) >= l.policy.Limit {
		l.events[key] = recent
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: recent[0].Add(l.policy.Window).Sub(now),
		}
	}

	recent = append(recent, now)
	l.events[key] = recent
	return Decision{Allowed: true, Remaining: l.policy.Limit - len(recent)}
}

// Reset forgets every event recorded for key
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.events, key)
}

// Stop ends the sweep goroutine
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// prune drops the leading events at or before cutoff; events are kept in
// insertion order so the slice stays sorted
func prune(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && !events[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return events
	}
	return append(events[:0:0], events[i:]...)
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.policy.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.policy.Window)
	for key, events := range l.events {
		recent := prune(events, cutoff)
		if len(recent) == 0 {
			delete(l.events, key)
			continue
		}
		l.events[key] = recent
	}
}
