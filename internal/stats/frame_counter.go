// Package stats measures frame rate using the high-resolution timer.
package stats

import (
	"time"

	"github.com/loov/hrtime"
)

// FrameCounter counts presented frames and reports the average frame rate
// once per interval.
type FrameCounter struct {
	interval time.Duration
	report   func(fps float64)
	now      func() time.Duration

	start  time.Duration
	frames int
	total  int
}

// NewFrameCounter reports through report every interval. A non-positive
// interval disables reporting; frames are still counted.
func NewFrameCounter(interval time.Duration, report func(fps float64)) *FrameCounter {
	return newFrameCounter(interval, report, hrtime.Now)
}

func newFrameCounter(interval time.Duration, report func(fps float64), now func() time.Duration) *FrameCounter {
	return &FrameCounter{
		interval: interval,
		report:   report,
		now:      now,
		start:    now(),
	}
}

// Tick records one frame.
func (c *FrameCounter) Tick() {
	c.frames++
	c.total++

	if c.interval <= 0 || c.report == nil {
		return
	}

	current := c.now()
	elapsed := current - c.start
	if elapsed < c.interval {
		return
	}

	c.report(float64(c.frames) / elapsed.Seconds())
	c.frames = 0
	c.start = current
}

// Total is the number of frames recorded since creation.
func (c *FrameCounter) Total() int {
	return c.total
}
