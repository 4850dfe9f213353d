// Package session holds the client-companion idle policy: a session that
// sees no interaction for the inactivity window is logged out locally before
// the token's hard expiry.
package session

import (
	"sync"
	"time"
)

// IdleMonitor watches a single session for inactivity. Touch is called on
// every recognized interaction; a periodic check compares the elapsed idle
// time against the timeout and invokes the expiry callback exactly once.
//
// Start and Stop are idempotent, so repeated login/logout cycles never stack
// duplicate timers.
type IdleMonitor struct {
	timeout  time.Duration
	interval time.Duration
	onExpire func()
	now      func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
	ticker       *time.Ticker
	done         chan struct{}
	running      bool
	expired      bool
}

// NewIdleMonitor builds a monitor. onExpire runs on the monitor goroutine
// when the idle timeout elapses.
func NewIdleMonitor(timeout, checkInterval time.Duration, onExpire func()) *IdleMonitor {
	if timeout <= 0 {
		timeout = time.Hour
	}
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &IdleMonitor{
		timeout:  timeout,
		interval: checkInterval,
		onExpire: onExpire,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (m *IdleMonitor) WithClock(now func() time.Time) *IdleMonitor {
	m.now = now
	return m
}

// Start begins watching. Calling Start on a running monitor is a no-op.
func (m *IdleMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.expired = false
	m.lastActivity = m.now()
	m.ticker = time.NewTicker(m.interval)
	m.done = make(chan struct{})

	go m.loop(m.ticker, m.done)
}

func (m *IdleMonitor) loop(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if m.checkExpired() {
				return
			}
		}
	}
}

// checkExpired fires the callback at most once per Start.
func (m *IdleMonitor) checkExpired() bool {
	m.mu.Lock()
	if !m.running || m.expired {
		m.mu.Unlock()
		return true
	}
	if m.now().Sub(m.lastActivity) < m.timeout {
		m.mu.Unlock()
		return false
	}
	m.expired = true
	m.stopLocked()
	cb := m.onExpire
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// Touch records an interaction, pushing the idle deadline forward.
func (m *IdleMonitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.lastActivity = m.now()
}

// Stop halts watching. Calling Stop on a stopped monitor is a no-op.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *IdleMonitor) stopLocked() {
	if !m.running {
		return
	}
	m.running = false
	m.ticker.Stop()
	close(m.done)
	m.ticker = nil
	m.done = nil
}

// Running reports whether the monitor is active.
func (m *IdleMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// IdleFor returns how long the session has been without interaction. Zero
// when the monitor is not running.
func (m *IdleMonitor) IdleFor() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return 0
	}
	return m.now().Sub(m.lastActivity)
}
