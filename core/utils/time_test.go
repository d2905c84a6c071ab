package utils

import (
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00.00"},
		{0.5, "00:00.50"},
		{1.234, "00:01.23"},
		{59.999, "01:00.00"},
		{60, "01:00.00"},
		{61.05, "01:01.05"},
		{125.5, "02:05.50"},
		{-3, "00:00.00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		pps     float64
		spacing float64
		want    float64
	}{
		{100, 50, 0.5},
		{100, 10, 0.1},
		{10, 50, 5},
		{1, 50, 60},
		{0.01, 50, 300}, // zoomed all the way out, ladder tops out
		{0, 50, 300},
	}
	for _, tt := range tests {
		if got := TickInterval(tt.pps, tt.spacing); got != tt.want {
			t.Errorf("TickInterval(%v, %v) = %v, want %v", tt.pps, tt.spacing, got, tt.want)
		}
	}
}

func TestTicks(t *testing.T) {
	got := Ticks(0, 2, 0.5)
	want := []float64{0, 0.5, 1, 1.5, 2}
	if len(got) != len(want) {
		t.Fatalf("got %d ticks, want %d", len(got), len(want))
	}
	for i, tick := range got {
		if math.Abs(tick.Time-want[i]) > 1e-9 {
			t.Errorf("tick %d at %v, want %v", i, tick.Time, want[i])
		}
	}
	if got[3].Label != "00:01.50" {
		t.Errorf("tick label = %q, want %q", got[3].Label, "00:01.50")
	}
}

func TestTicksStartsAtNextMultiple(t *testing.T) {
	got := Ticks(0.3, 2.1, 1)
	if len(got) != 2 {
		t.Fatalf("got %d ticks, want 2", len(got))
	}
	if got[0].Time != 1 || got[1].Time != 2 {
		t.Errorf("ticks at %v and %v, want 1 and 2", got[0].Time, got[1].Time)
	}
}

func TestTicksDegenerate(t *testing.T) {
	if got := Ticks(5, 1, 0.5); got != nil {
		t.Errorf("reversed range produced %v", got)
	}
	if got := Ticks(0, 10, 0); got != nil {
		t.Errorf("zero interval produced %v", got)
	}
}
