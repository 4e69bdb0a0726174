package memory

import (
	"testing"
	"time"
)

func TestManualSchedulerTicksLiveTasks(t *testing.T) {
	s := NewManualScheduler()

	var a, b int
	cancelA := s.Every(time.Second, func() { a++ })
	s.Every(time.Second, func() { b++ })

	s.Advance(2)
	cancelA()
	cancelA()
	s.Tick()

	if a != 2 || b != 3 {
		t.Fatalf("expected a=2 b=3, got a=%d b=%d", a, b)
	}
	if s.Live() != 1 || s.Started() != 2 {
		t.Fatalf("expected 1 live of 2 started, got %d of %d", s.Live(), s.Started())
	}
}

func TestManualSchedulerSkipsTaskCancelledMidTick(t *testing.T) {
	s := NewManualScheduler()

	var fired bool
	var cancelSecond func()
	s.Every(time.Second, func() { cancelSecond() })
	cancelSecond = s.Every(time.Second, func() { fired = true })

	s.Tick()
	if fired {
		t.Fatalf("expected cancelled task to be skipped")
	}
}
