// internal/game/scheduler.go
package game

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	// Stop cancels the call. It reports false if the call already ran or was stopped.
	Stop() bool
}

// Scheduler runs f once after d. Callbacks run without the game lock held.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock via time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler is a virtual clock for tests: nothing fires until Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
}

// NewManualScheduler returns a ManualScheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTask{s: s, at: s.now + d, seq: s.seq, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, o := range t.s.tasks {
		if o == t {
			t.s.tasks = append(t.s.tasks[:i], t.s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, running every task that falls due in
// time order (scheduling order on ties). Tasks scheduled by a running task
// fire too if they fall within the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		next := s.popDue(target)
		if next == nil {
			break
		}
		s.now = next.at
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

// RunNext advances straight to the earliest pending task and runs it.
// It reports false if nothing is pending.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	s.sortTasks()
	at := s.tasks[0].at
	s.mu.Unlock()
	s.Advance(at - s.Now())
	return true
}

// Now returns the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of tasks not yet run or stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// popDue removes and returns the earliest task due by target. Caller holds mu.
func (s *ManualScheduler) popDue(target time.Duration) *manualTask {
	if len(s.tasks) == 0 {
		return nil
	}
	s.sortTasks()
	t := s.tasks[0]
	if t.at > target {
		return nil
	}
	s.tasks = s.tasks[1:]
	t.stopped = true
	return t
}

func (s *ManualScheduler) sortTasks() {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
}
