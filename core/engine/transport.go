package engine

import (
	"fmt"
	"math"

	"soundstage/core/spatial"
	"soundstage/core/synth"
	"soundstage/logger"
)

// Play starts the transport from the current offset. A no-op while already
// playing or when the timeline has no tracks. Every clip overlapping
// [startOffset, globalDuration) is scheduled with its audible sub-window.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked()
}

func (s *Session) playLocked() error {
	if s.playing || len(s.tracks) == 0 {
		return nil
	}

	graph := s.buildGraphLocked(s.startOffset, false)
	s.startClock = s.clock.Now()
	if err := s.out.Start(graph); err != nil {
		logger.Error("playback start failed", logger.ErrorField(err))
		return fmt.Errorf("play: %w", err)
	}
	s.playing = true
	logger.Debug("transport playing", logger.Float64("offset", s.startOffset))
	return nil
}

// Pause stops the transport, folding the elapsed play time into the
// offset. A no-op while stopped.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

func (s *Session) pauseLocked() {
	if !s.playing {
		return
	}
	elapsed := s.clock.Now() - s.startClock
	s.startOffset = math.Min(s.startOffset+elapsed, s.globalDuration)
	// Releasing handles that already ran out is fine; the backend treats
	// stopping a finished voice as a no-op.
	s.out.Stop()
	s.playing = false
	logger.Debug("transport paused", logger.Float64("offset", s.startOffset))
}

// Seek moves the transport to t, clamped into the timeline. While playing
// the audible set is recomputed for the new position: stop, retarget,
// restart.
func (s *Session) Seek(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = clamp(t, 0, s.globalDuration)
	if !s.playing {
		s.startOffset = t
		return nil
	}
	s.pauseLocked()
	s.startOffset = t
	return s.playLocked()
}

// Position returns the current timeline position.
func (s *Session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *Session) positionLocked() float64 {
	if !s.playing {
		return s.startOffset
	}
	return s.startOffset + (s.clock.Now() - s.startClock)
}

// Tick is the render-loop step: it samples the position and, when the
// playhead has run off the end of the timeline, auto-pauses and rewinds
// to the start. Playback does not loop.
func (s *Session) Tick() (position float64, playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position = s.positionLocked()
	if s.playing && position >= s.globalDuration {
		s.out.Stop()
		s.playing = false
		s.startOffset = 0
		position = 0
		logger.Debug("transport reached end of timeline")
	}
	return position, s.playing
}

// buildGraphLocked assembles the synthesis graph for one pass. For live
// playback (full=false) clips are truncated to the part audible from
// `from`; for export (full=true) every clip is scheduled whole from t=0.
// Clips whose source buffer is unresolvable are skipped.
func (s *Session) buildGraphLocked(from float64, full bool) synth.Graph {
	sr := float64(s.sampleRate)
	g := synth.Graph{SampleRate: s.sampleRate}

	for _, t := range s.tracks {
		left, right := spatial.StereoGains(t.Position)
		bus := synth.TrackBus{
			TrackID: t.ID,
			Gain:    t.Gain,
			Left:    left,
			Right:   right,
		}

		for _, c := range t.Clips {
			src, ok := s.sources[c.SourceID]
			if !ok {
				continue
			}

			var delay, readOffset, readDuration float64
			if full {
				delay = c.StartTime
				readOffset = c.Offset
				readDuration = c.Duration
			} else {
				if c.EndTime() <= from || c.StartTime >= s.globalDuration {
					continue
				}
				skip := math.Max(0, from-c.StartTime)
				delay = math.Max(0, c.StartTime-from)
				readOffset = c.Offset + skip
				readDuration = c.Duration - skip
			}
			if readDuration <= 0 {
				continue
			}

			startFrame := int(math.Round(readOffset * sr))
			endFrame := startFrame + int(math.Round(readDuration*sr))
			if max := src.Buffer.NumFrames(); endFrame > max {
				endFrame = max
			}
			if endFrame <= startFrame {
				continue
			}

			bus.Voices = append(bus.Voices, synth.Voice{
				ClipID:      c.ID,
				TrackID:     t.ID,
				Buffer:      src.Buffer,
				DelayFrames: int(math.Round(delay * sr)),
				StartFrame:  startFrame,
				EndFrame:    endFrame,
				Gain:        c.Gain,
			})
		}
		g.Tracks = append(g.Tracks, bus)
	}
	return g
}
