package engine

import (
	"math"

	"github.com/google/uuid"

	"soundstage/logger"
	"soundstage/model"
)

// CreateClip places a full-length clip of a registered source at startTime
// on a track. Unlike moving, creation clamps a negative start to zero.
func (s *Session) CreateClip(sourceID, trackID string, startTime float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[sourceID]
	if !ok {
		return "", ErrNotFound
	}
	t := s.findTrackLocked(trackID)
	if t == nil {
		return "", ErrNotFound
	}
	clip := s.createClipLocked(src, t, startTime)
	s.recomputeDurationLocked()
	return clip.ID, nil
}

// createClipLocked appends a full-length clip of src to t. The caller
// recomputes the global duration.
func (s *Session) createClipLocked(src *model.SoundSource, t *model.Track, startTime float64) model.AudioClip {
	clip := model.AudioClip{
		ID:        uuid.NewString(),
		SourceID:  src.ID,
		TrackID:   t.ID,
		Name:      src.Name,
		StartTime: math.Max(0, startTime),
		Offset:    0,
		Duration:  src.Buffer.Duration(),
		Gain:      1.0,
	}
	t.Clips = append(t.Clips, clip)
	return clip
}

// MoveClip shifts a clip along the timeline. The clip cannot move before
// t=0; there is no upper bound, the timeline grows to fit.
func (s *Session) MoveClip(id string, dTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}
	c := &t.Clips[i]
	c.StartTime = math.Max(0, c.StartTime+dTime)
	s.recomputeDurationLocked()
	return nil
}

// TrimStart drags a clip's left edge. The delta is clamped so the clip
// never reads before its source buffer and never shrinks below the
// minimum clip length.
func (s *Session) TrimStart(id string, dTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}
	c := &t.Clips[i]

	maxTrim := c.Duration - model.MinClipLen
	d := clamp(dTime, -c.Offset, maxTrim)
	c.StartTime += d
	c.Offset += d
	c.Duration -= d
	s.recomputeDurationLocked()
	return nil
}

// TrimEnd drags a clip's right edge. The delta is clamped so the clip
// never reads past the end of its source buffer and never shrinks below
// the minimum clip length.
func (s *Session) TrimEnd(id string, dTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}
	c := &t.Clips[i]

	srcDur := s.sourceDurationLocked(c.SourceID)
	d := clamp(dTime, -(c.Duration - model.MinClipLen), srcDur-c.Offset-c.Duration)
	c.Duration += d
	s.recomputeDurationLocked()
	return nil
}

// AdjustClipGain nudges a clip's gain, clamped to [0, MaxClipGain]. If the
// clip is sounding the live gain handle is retargeted without restarting
// the voice.
func (s *Session) AdjustClipGain(id string, dGain float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}
	c := &t.Clips[i]
	c.Gain = clamp(c.Gain+dGain, 0, model.MaxClipGain)
	if s.playing {
		s.out.SetClipGain(c.ID, c.Gain)
	}
	return nil
}

// SliceAt splits a clip at an absolute timeline position. The cut must
// fall strictly inside the clip with a small margin from both edges,
// otherwise the model is left unchanged. The split is exact: the two
// durations sum to the original and the second clip reads on from where
// the first stops.
func (s *Session) SliceAt(id string, absoluteTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}
	c := t.Clips[i]

	if absoluteTime < c.StartTime+model.SliceMargin || absoluteTime > c.EndTime()-model.SliceMargin {
		logger.Debug("slice rejected",
			logger.String("clip", id),
			logger.Float64("at", absoluteTime))
		return ErrInvalidEdit
	}

	cut := absoluteTime - c.StartTime
	first := c
	first.Duration = cut

	second := c
	second.ID = uuid.NewString()
	second.StartTime = absoluteTime
	second.Offset = c.Offset + cut
	second.Duration = c.Duration - cut

	t.Clips[i] = first
	t.Clips = append(t.Clips, model.AudioClip{})
	copy(t.Clips[i+2:], t.Clips[i+1:])
	t.Clips[i+1] = second

	if s.selectedClipID == c.ID {
		s.selectedClipID = first.ID
	}
	s.recomputeDurationLocked()
	return nil
}

// SliceSelected splits the selected clip at the given position.
func (s *Session) SliceSelected(absoluteTime float64) error {
	s.mu.Lock()
	id := s.selectedClipID
	s.mu.Unlock()
	if id == "" {
		return ErrNotFound
	}
	return s.SliceAt(id, absoluteTime)
}

// DeleteClip removes a clip, stopping its live audio first.
func (s *Session) DeleteClip(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}

	// Stop-then-mutate: never leave a live voice pointing at a removed clip.
	s.out.StopClip(id)
	t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
	if s.selectedClipID == id {
		s.selectedClipID = ""
	}
	s.recomputeDurationLocked()
	return nil
}

// SelectClip marks a clip as the target for slice/copy commands.
func (s *Session) SelectClip(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.selectedClipID = ""
		return nil
	}
	if t, _ := s.findClipLocked(id); t == nil {
		return ErrNotFound
	}
	s.selectedClipID = id
	return nil
}

// Copy stores a value snapshot of a clip on the clipboard.
func (s *Session) Copy(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return ErrNotFound
	}
	snapshot := t.Clips[i]
	s.clipboard = &snapshot
	return nil
}

// CopySelected copies the selected clip.
func (s *Session) CopySelected() error {
	s.mu.Lock()
	id := s.selectedClipID
	s.mu.Unlock()
	if id == "" {
		return ErrNotFound
	}
	return s.Copy(id)
}

// PasteAt clones the clipboard clip at the given time on its original
// track. A no-op if the clipboard is empty or the track is gone.
func (s *Session) PasteAt(atTime float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clipboard == nil {
		return "", ErrNotFound
	}
	t := s.findTrackLocked(s.clipboard.TrackID)
	if t == nil {
		return "", ErrNotFound
	}

	clip := *s.clipboard
	clip.ID = uuid.NewString()
	clip.StartTime = math.Max(0, atTime)
	t.Clips = append(t.Clips, clip)
	s.recomputeDurationLocked()
	return clip.ID, nil
}

// PasteAtPlayhead pastes at the transport's current position.
func (s *Session) PasteAtPlayhead() (string, error) {
	s.mu.Lock()
	at := s.positionLocked()
	s.mu.Unlock()
	return s.PasteAt(at)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
