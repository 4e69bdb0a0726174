package memory

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is an app.Scheduler driven by explicit Tick calls instead of wall time.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	started int
	tasks   map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

func (s *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.started++
	s.tasks[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
	}
}

// Tick fires every live task once. Tasks cancelled by an earlier task in the same
// tick are skipped.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Ints(ids)

	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.tasks[id]
		s.mu.Unlock()
		if ok {
			fn()
		}
	}
}

// Advance calls Tick n times.
func (s *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// Live reports how many tasks are currently scheduled.
func (s *ManualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Started reports how many tasks were ever scheduled.
func (s *ManualScheduler) Started() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
