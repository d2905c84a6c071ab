// Package engine holds the editing session: the source registry, the
// track/clip model, the clip editor and the playback transport. All
// mutations go through the Session, which serializes them and keeps the
// synthesis backend's live handles consistent with the model.
package engine

import (
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"soundstage/core/audio"
	"soundstage/core/spatial"
	"soundstage/core/synth"
	"soundstage/logger"
	"soundstage/model"
)

// trackPalette cycles through lane colors in creation order.
var trackPalette = []string{
	"#e06c75", "#61afef", "#98c379", "#c678dd",
	"#e5c07b", "#56b6c2", "#d19a66", "#abb2bf",
}

const defaultTrackHeight = 64

// Session is one editing session. It owns the sources, tracks and clips,
// the clipboard, the transport state and the connection to the synthesis
// backend.
type Session struct {
	mu         sync.Mutex
	sampleRate int
	project    string
	clock      Clock
	out        synth.Output

	sources map[string]*model.SoundSource
	tracks  []*model.Track

	mode           model.Mode
	selectedClipID string
	clipboard      *model.AudioClip

	playing     bool
	startOffset float64
	startClock  float64

	globalDuration float64
	loading        bool
	exporting      bool

	trackSeq int
}

// NewSession creates an empty session.
func NewSession(project string, sampleRate int, clock Clock, out synth.Output) *Session {
	return &Session{
		sampleRate: sampleRate,
		project:    project,
		clock:      clock,
		out:        out,
		sources:    make(map[string]*model.SoundSource),
		mode:       model.Mode3D,
	}
}

// SampleRate returns the session sample rate.
func (s *Session) SampleRate() int {
	return s.sampleRate
}

// NamedBytes is one file of a batch import.
type NamedBytes struct {
	Name string
	Data []byte
}

// ImportResult reports the outcome of one file of a batch import.
type ImportResult struct {
	Name     string `json:"name"`
	SourceID string `json:"sourceId,omitempty"`
	TrackID  string `json:"trackId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ImportFiles decodes each file and creates one track per success. A file
// that fails to decode is logged and skipped; it never aborts the batch.
func (s *Session) ImportFiles(files []NamedBytes) []ImportResult {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	results := make([]ImportResult, 0, len(files))
	for _, f := range files {
		track, err := s.ImportFile(f.Data, f.Name)
		if err != nil {
			logger.Warn("import skipped",
				logger.String("file", f.Name),
				logger.ErrorField(err))
			results = append(results, ImportResult{Name: f.Name, Error: err.Error()})
			continue
		}
		results = append(results, ImportResult{
			Name:     f.Name,
			SourceID: track.Clips[0].SourceID,
			TrackID:  track.ID,
		})
	}
	return results
}

// ImportFile decodes one file into a new source and places it as a
// full-length clip on a fresh track.
func (s *Session) ImportFile(data []byte, name string) (*model.Track, error) {
	buf, err := audio.Decode(data, name, s.sampleRate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source := &model.SoundSource{
		ID:     uuid.NewString(),
		Name:   name,
		Buffer: buf,
	}
	s.sources[source.ID] = source

	base := strings.TrimSuffix(name, filepath.Ext(name))
	track := &model.Track{
		ID:       uuid.NewString(),
		Name:     base,
		Color:    trackPalette[s.trackSeq%len(trackPalette)],
		Position: spatial.Clamp(spatial.RandomOnSphere(model.StageRadius), s.mode),
		Gain:     1.0,
		Height:   defaultTrackHeight,
	}
	s.trackSeq++

	s.tracks = append(s.tracks, track)
	s.createClipLocked(source, track, 0)
	s.recomputeDurationLocked()

	logger.Info("imported source",
		logger.String("file", name),
		logger.String("track", track.ID),
		logger.Float64("duration", buf.Duration()))
	return track, nil
}

// Snapshot returns the read-only state handed to the UI layer.
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources := make([]model.SourceSnapshot, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, model.SourceSnapshot{
			ID:       src.ID,
			Name:     src.Name,
			Duration: src.Buffer.Duration(),
		})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Name != sources[j].Name {
			return sources[i].Name < sources[j].Name
		}
		return sources[i].ID < sources[j].ID
	})

	tracks := make([]model.TrackSnapshot, 0, len(s.tracks))
	for _, t := range s.tracks {
		clips := make([]model.AudioClip, len(t.Clips))
		copy(clips, t.Clips)
		tracks = append(tracks, model.TrackSnapshot{
			ID:       t.ID,
			Name:     t.Name,
			Color:    t.Color,
			Position: model.FromVec3(t.Position),
			Gain:     t.Gain,
			Height:   t.Height,
			Clips:    clips,
		})
	}
	return model.SessionSnapshot{
		Sources:        sources,
		Tracks:         tracks,
		GlobalDuration: s.globalDuration,
		CurrentTime:    s.positionLocked(),
		IsPlaying:      s.playing,
		Mode:           s.mode,
		SelectedClipID: s.selectedClipID,
		Loading:        s.loading,
		Exporting:      s.exporting,
	}
}

// SetMode switches between 3D and flattened 2D positioning. Entering 2D
// projects every track onto the horizontal plane and re-aims the panners.
func (s *Session) SetMode(mode model.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != model.Mode2D && mode != model.Mode3D {
		return
	}
	if mode == s.mode {
		return
	}
	s.mode = mode
	if mode == model.Mode2D {
		for _, t := range s.tracks {
			t.Position = spatial.Project2D(t.Position)
			l, r := spatial.StereoGains(t.Position)
			s.out.SetTrackPan(t.ID, l, r)
		}
	}
}

// MoveTrack places a track at the requested stage position, clamped, and
// ramps the live panner to match.
func (s *Session) MoveTrack(id string, to model.Vec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTrackLocked(id)
	if t == nil {
		return ErrNotFound
	}
	t.Position = spatial.Clamp(to.ToVec3(), s.mode)
	l, r := spatial.StereoGains(t.Position)
	s.out.SetTrackPan(t.ID, l, r)
	return nil
}

// AdjustTrackDepth moves a track along its current direction from the
// listener, clamped to the stage.
func (s *Session) AdjustTrackDepth(id string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTrackLocked(id)
	if t == nil {
		return ErrNotFound
	}
	t.Position = spatial.AdjustDepth(t.Position, delta)
	l, r := spatial.StereoGains(t.Position)
	s.out.SetTrackPan(t.ID, l, r)
	return nil
}

// TrackUpdate is a partial track update; nil fields are left unchanged.
type TrackUpdate struct {
	Name   *string  `json:"name"`
	Gain   *float64 `json:"gain"`
	Height *float64 `json:"height"`
}

// UpdateTrack applies a partial update. Gain changes reach the live bus
// ramped.
func (s *Session) UpdateTrack(id string, upd TrackUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTrackLocked(id)
	if t == nil {
		return ErrNotFound
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Gain != nil {
		g := *upd.Gain
		if g < 0 {
			g = 0
		} else if g > model.MaxClipGain {
			g = model.MaxClipGain
		}
		t.Gain = g
		s.out.SetTrackGain(t.ID, g)
	}
	if upd.Height != nil && *upd.Height > 0 {
		t.Height = *upd.Height
	}
	return nil
}

// DeleteTrack removes a track and all of its clips. Live audio is stopped
// before the model is mutated so no handle is left dangling.
func (s *Session) DeleteTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, t := range s.tracks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	s.out.StopTrack(id)
	for _, c := range s.tracks[idx].Clips {
		if c.ID == s.selectedClipID {
			s.selectedClipID = ""
		}
	}
	s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)
	s.recomputeDurationLocked()
	return nil
}

func (s *Session) findTrackLocked(id string) *model.Track {
	for _, t := range s.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// findClipLocked returns the owning track and clip index, or nil and -1.
func (s *Session) findClipLocked(id string) (*model.Track, int) {
	for _, t := range s.tracks {
		for i := range t.Clips {
			if t.Clips[i].ID == id {
				return t, i
			}
		}
	}
	return nil, -1
}

func (s *Session) sourceDurationLocked(sourceID string) float64 {
	if src, ok := s.sources[sourceID]; ok {
		return src.Buffer.Duration()
	}
	return 0
}

// recomputeDurationLocked refreshes the derived timeline length and pulls
// the transport position back inside it.
func (s *Session) recomputeDurationLocked() {
	dur := 0.0
	for _, t := range s.tracks {
		for _, c := range t.Clips {
			dur = math.Max(dur, c.EndTime())
		}
	}
	s.globalDuration = dur
	if !s.playing && s.startOffset > dur {
		s.startOffset = dur
	}
}
