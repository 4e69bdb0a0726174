package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerStopsOnCancel(t *testing.T) {
	var ticks atomic.Int32
	cancel := TickerScheduler{}.Every(2*time.Millisecond, func() { ticks.Add(1) })

	deadline := time.Now().Add(time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() < 3 {
		t.Fatalf("expected ticks, got %d", ticks.Load())
	}

	cancel()
	cancel()
	time.Sleep(10 * time.Millisecond)
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if ticks.Load() != after {
		t.Fatalf("expected no ticks after cancel, got %d more", ticks.Load()-after)
	}
}

func TestConfigUnits(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"default", DefaultConfig(), 30},
		{"half-second ticks", Config{TimeLimit: 10 * time.Second, Tick: 500 * time.Millisecond}, 20},
		{"zero tick falls back", Config{TimeLimit: 5 * time.Second}, 30},
		{"limit shorter than tick", Config{TimeLimit: time.Millisecond, Tick: time.Second}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.units(); got != tt.want {
				t.Fatalf("units() = %d, want %d", got, tt.want)
			}
		})
	}
}
