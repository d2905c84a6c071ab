package engine

import "time"

// Clock supplies monotonic time in seconds. The transport's notion of the
// current timeline position is derived from it; tests substitute a manual
// clock.
type Clock interface {
	Now() float64
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a Clock backed by the runtime's monotonic clock.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() float64 {
	return time.Since(c.start).Seconds()
}
