package utils

import (
	"fmt"
	"math"
)

// tickLadder holds the allowed ruler tick intervals, in seconds.
var tickLadder = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30, 60, 120, 300}

// Tick is one labeled marker on the timeline ruler.
type Tick struct {
	Time  float64 `json:"time"`
	Label string  `json:"label"`
}

// TickInterval picks the smallest ladder interval that keeps ruler labels
// at least minSpacing pixels apart at the given zoom (pixels per second).
func TickInterval(pixelsPerSecond, minSpacing float64) float64 {
	if pixelsPerSecond <= 0 {
		return tickLadder[len(tickLadder)-1]
	}
	for _, step := range tickLadder {
		if step*pixelsPerSecond >= minSpacing {
			return step
		}
	}
	return tickLadder[len(tickLadder)-1]
}

// Ticks returns the labeled ruler marks covering [start, end] at the given
// interval. The first tick is the first multiple of interval at or after
// start.
func Ticks(start, end, interval float64) []Tick {
	if interval <= 0 || end < start {
		return nil
	}
	var ticks []Tick
	t := math.Ceil(start/interval) * interval
	for ; t <= end+1e-9; t += interval {
		ticks = append(ticks, Tick{Time: t, Label: FormatTime(t)})
	}
	return ticks
}

// FormatTime renders a timeline position as mm:ss.cc.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds * 100))
	mins := total / 6000
	secs := total / 100 % 60
	cents := total % 100
	return fmt.Sprintf("%02d:%02d.%02d", mins, secs, cents)
}
