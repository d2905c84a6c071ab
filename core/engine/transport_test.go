package engine

import (
	"math"
	"testing"

	"soundstage/core/synth"
)

func TestPlayNoTracksIsNoop(t *testing.T) {
	rec := &recorder{}
	s, _ := newTestSession(rec)

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if s.Snapshot().IsPlaying {
		t.Error("transport playing with zero tracks")
	}
	if len(rec.graphs) != 0 {
		t.Error("a graph was started with zero tracks")
	}
}

func TestPlayWhilePlayingIsNoop(t *testing.T) {
	rec := &recorder{}
	s, _ := newTestSession(rec)
	addTrackWithClip(s, 3.0)

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("second Play: %v", err)
	}
	if len(rec.graphs) != 1 {
		t.Errorf("started %d graphs, want 1", len(rec.graphs))
	}
}

func TestPlayPauseRoundTrip(t *testing.T) {
	s, clock := newTestSession(synth.Null{})
	addTrackWithClip(s, 3.0)

	if err := s.Seek(1.25); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	// Pause immediately: the offset must be unchanged.
	s.Pause()
	if got := s.Position(); got != 1.25 {
		t.Errorf("position after play+pause = %v, want 1.25", got)
	}
	_ = clock
}

func TestPauseAccumulatesElapsed(t *testing.T) {
	s, clock := newTestSession(synth.Null{})
	addTrackWithClip(s, 3.0)

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	clock.Advance(1.5)
	if got := s.Position(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("position while playing = %v, want 1.5", got)
	}
	s.Pause()
	if got := s.Position(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("position after pause = %v, want 1.5", got)
	}

	// Position is frozen while paused.
	clock.Advance(10)
	if got := s.Position(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("paused position drifted to %v", got)
	}
}

func TestSeekIdempotent(t *testing.T) {
	s, _ := newTestSession(synth.Null{})
	addTrackWithClip(s, 3.0)

	if err := s.Seek(2.0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	first := s.Position()
	if err := s.Seek(2.0); err != nil {
		t.Fatalf("second Seek: %v", err)
	}
	if got := s.Position(); got != first {
		t.Errorf("seek not idempotent: %v then %v", first, got)
	}
	if first != 2.0 {
		t.Errorf("position = %v, want 2.0", first)
	}
}

func TestSeekClamps(t *testing.T) {
	s, _ := newTestSession(synth.Null{})
	addTrackWithClip(s, 3.0)

	tests := []struct {
		seek float64
		want float64
	}{
		{-5, 0},
		{1.5, 1.5},
		{99, 3.0},
	}
	for _, tt := range tests {
		if err := s.Seek(tt.seek); err != nil {
			t.Fatalf("Seek(%v): %v", tt.seek, err)
		}
		if got := s.Position(); got != tt.want {
			t.Errorf("Seek(%v): position = %v, want %v", tt.seek, got, tt.want)
		}
	}
}

func TestSeekWhilePlayingRestarts(t *testing.T) {
	rec := &recorder{}
	s, clock := newTestSession(rec)
	addTrackWithClip(s, 3.0)

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	clock.Advance(0.5)
	if err := s.Seek(2.0); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	// Stop, retarget, restart: two graphs, a stop in between.
	if len(rec.graphs) != 2 {
		t.Fatalf("started %d graphs, want 2", len(rec.graphs))
	}
	if !s.Snapshot().IsPlaying {
		t.Error("transport stopped by seek while playing")
	}
	if got := s.Position(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("position = %v, want 2.0", got)
	}

	// The restarted graph is scheduled from the seek point: the single
	// clip [0,3) plays its last second, offset by the seek.
	g := rec.lastGraph()
	if len(g.Tracks) != 1 || len(g.Tracks[0].Voices) != 1 {
		t.Fatalf("unexpected graph shape: %+v", g)
	}
	v := g.Tracks[0].Voices[0]
	if v.DelayFrames != 0 {
		t.Errorf("delayFrames = %d, want 0", v.DelayFrames)
	}
	if v.StartFrame != 2*testRate {
		t.Errorf("startFrame = %d, want %d", v.StartFrame, 2*testRate)
	}
	if v.EndFrame != 3*testRate {
		t.Errorf("endFrame = %d, want %d", v.EndFrame, 3*testRate)
	}
}

func TestPlaySchedulesFutureClipWithDelay(t *testing.T) {
	rec := &recorder{}
	s, _ := newTestSession(rec)
	_, clipID := addTrackWithClip(s, 3.0)

	if err := s.MoveClip(clipID, 2.0); err != nil {
		t.Fatalf("MoveClip: %v", err)
	}
	if err := s.Seek(0.5); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	v := rec.lastGraph().Tracks[0].Voices[0]
	// Clip starts at 2.0, transport at 0.5: 1.5s of scheduled silence,
	// then the whole clip.
	if want := int(1.5 * testRate); v.DelayFrames != want {
		t.Errorf("delayFrames = %d, want %d", v.DelayFrames, want)
	}
	if v.StartFrame != 0 {
		t.Errorf("startFrame = %d, want 0", v.StartFrame)
	}
	if v.EndFrame != 3*testRate {
		t.Errorf("endFrame = %d, want %d", v.EndFrame, 3*testRate)
	}
}

func TestPlaySkipsFullyPastClips(t *testing.T) {
	rec := &recorder{}
	s, _ := newTestSession(rec)
	trackID, _ := addTrackWithClip(s, 3.0)
	_, lateClip := addTrackWithClip(s, 3.0)
	if err := s.MoveClip(lateClip, 4.0); err != nil {
		t.Fatalf("MoveClip: %v", err)
	}

	if err := s.Seek(3.5); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	g := rec.lastGraph()
	for _, bus := range g.Tracks {
		if bus.TrackID == trackID && len(bus.Voices) != 0 {
			t.Errorf("clip entirely before the playhead was scheduled")
		}
	}
}

func TestEndOfTimelineAutoPause(t *testing.T) {
	rec := &recorder{}
	s, clock := newTestSession(rec)
	addTrackWithClip(s, 2.0)

	if err := s.Seek(2.0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	clock.Advance(0.01)

	position, playing := s.Tick()
	if playing {
		t.Error("transport still playing past the end of the timeline")
	}
	if position != 0 {
		t.Errorf("position = %v, want rewind to 0", position)
	}
	// It pauses and rewinds; it does not loop.
	if s.Snapshot().IsPlaying {
		t.Error("snapshot still playing after auto-pause")
	}
	if got := s.Position(); got != 0 {
		t.Errorf("position = %v, want 0", got)
	}
}

func TestTickWhileStoppedReportsOffset(t *testing.T) {
	s, clock := newTestSession(synth.Null{})
	addTrackWithClip(s, 3.0)

	if err := s.Seek(1.0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	clock.Advance(5)
	position, playing := s.Tick()
	if playing || position != 1.0 {
		t.Errorf("tick = (%v, %v), want (1.0, false)", position, playing)
	}
}

func TestGainAppliedToGraph(t *testing.T) {
	rec := &recorder{}
	s, _ := newTestSession(rec)
	trackID, clipID := addTrackWithClip(s, 3.0)

	if err := s.AdjustClipGain(clipID, -0.4); err != nil {
		t.Fatalf("AdjustClipGain: %v", err)
	}
	gain := 1.2
	if err := s.UpdateTrack(trackID, TrackUpdate{Gain: &gain}); err != nil {
		t.Fatalf("UpdateTrack: %v", err)
	}
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	g := rec.lastGraph()
	bus := g.Tracks[0]
	if math.Abs(bus.Gain-1.2) > 1e-9 {
		t.Errorf("bus gain = %v, want 1.2", bus.Gain)
	}
	if math.Abs(bus.Voices[0].Gain-0.6) > 1e-9 {
		t.Errorf("voice gain = %v, want 0.6", bus.Voices[0].Gain)
	}
}
