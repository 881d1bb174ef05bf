package stats

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration {
	return c.now
}

func TestFrameCounterReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{}
	var reports []float64

	counter := newFrameCounter(time.Second, func(fps float64) {
		reports = append(reports, fps)
	}, clock.Now)

	for i := 0; i < 59; i++ {
		clock.now += 10 * time.Millisecond
		counter.Tick()
	}
	if len(reports) != 0 {
		t.Fatalf("reported %v before the interval elapsed", reports)
	}

	clock.now = time.Second
	counter.Tick()

	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if math.Abs(reports[0]-60) > 1e-9 {
		t.Errorf("fps = %v, want 60", reports[0])
	}

	// The window restarts after each report.
	clock.now += 500 * time.Millisecond
	counter.Tick()
	if len(reports) != 1 {
		t.Errorf("got %d reports half way through the next interval, want 1", len(reports))
	}

	if counter.Total() != 61 {
		t.Errorf("Total() = %d, want 61", counter.Total())
	}
}

func TestFrameCounterDisabled(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		report   func(float64)
	}{
		{name: "zero interval", interval: 0, report: func(float64) { t.Error("reported with zero interval") }},
		{name: "nil report", interval: time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{}
			counter := newFrameCounter(tt.interval, tt.report, clock.Now)
			for i := 0; i < 10; i++ {
				clock.now += time.Second
				counter.Tick()
			}
			if counter.Total() != 10 {
				t.Errorf("Total() = %d, want 10", counter.Total())
			}
		})
	}
}

func TestNewFrameCounterUsesHighResolutionClock(t *testing.T) {
	counter := NewFrameCounter(time.Hour, func(float64) {
		t.Error("reported before an hour passed")
	})
	counter.Tick()
	if counter.Total() != 1 {
		t.Errorf("Total() = %d, want 1", counter.Total())
	}
}
