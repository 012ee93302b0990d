package session

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler holds callbacks until Fire is called. It ignores delays.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f, delay: d}
	m.pending = append(m.pending, t)
	return t
}

// Pending returns the number of callbacks that are neither stopped nor fired.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// LastDelay returns the delay of the most recently scheduled callback.
func (m *ManualScheduler) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return 0
	}
	return m.pending[len(m.pending)-1].delay
}

// Fire runs every pending callback in scheduling order and returns how
// many ran. Callbacks scheduled while firing wait for the next call.
func (m *ManualScheduler) Fire() int {
	m.mu.Lock()
	due := m.pending
	m.pending = nil
	m.mu.Unlock()

	ran := 0
	for _, t := range due {
		t.mu.Lock()
		run := !t.stopped && !t.fired
		t.fired = true
		t.mu.Unlock()
		if run {
			t.f()
			ran++
		}
	}
	return ran
}
