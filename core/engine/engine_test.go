package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"soundstage/core/synth"
	"soundstage/model"
)

// fakeClock is a manual monotonic clock.
type fakeClock struct {
	t float64
}

func (c *fakeClock) Now() float64      { return c.t }
func (c *fakeClock) Advance(d float64) { c.t += d }

// recorder is a synth.Output that records the call sequence and the last
// started graph.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	graphs []synth.Graph
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recorder) Start(g synth.Graph) error {
	r.mu.Lock()
	r.graphs = append(r.graphs, g)
	r.calls = append(r.calls, "start")
	r.mu.Unlock()
	return nil
}

func (r *recorder) Stop()              { r.record("stop") }
func (r *recorder) StopClip(id string) { r.record("stopClip:" + id) }
func (r *recorder) StopTrack(id string) {
	r.record("stopTrack:" + id)
}
func (r *recorder) SetClipGain(id string, g float64) {
	r.record(fmt.Sprintf("clipGain:%s:%.2f", id, g))
}
func (r *recorder) SetTrackGain(id string, g float64) {
	r.record(fmt.Sprintf("trackGain:%s:%.2f", id, g))
}
func (r *recorder) SetTrackPan(id string, l, rg float64) {
	r.record(fmt.Sprintf("trackPan:%s", id))
}

func (r *recorder) lastGraph() synth.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.graphs) == 0 {
		return synth.Graph{}
	}
	return r.graphs[len(r.graphs)-1]
}

const testRate = 100

func newTestSession(out synth.Output) (*Session, *fakeClock) {
	clock := &fakeClock{}
	return NewSession("test", testRate, clock, out), clock
}

// addTrackWithClip wires a synthetic source of the given duration straight
// into the session and returns the track and clip ids.
func addTrackWithClip(s *Session, seconds float64) (trackID, clipID string) {
	frames := int(seconds * testRate)
	buf := &model.Buffer{
		SampleRate: testRate,
		Data:       [][]float64{make([]float64, frames)},
	}
	for i := range buf.Data[0] {
		buf.Data[0][i] = 0.5
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source := &model.SoundSource{ID: uuid.NewString(), Name: "test", Buffer: buf}
	s.sources[source.ID] = source

	track := &model.Track{
		ID:       uuid.NewString(),
		Name:     "test",
		Gain:     1.0,
		Height:   defaultTrackHeight,
		Position: [3]float64{0, 0, -model.StageRadius},
	}
	clip := model.AudioClip{
		ID:       uuid.NewString(),
		SourceID: source.ID,
		TrackID:  track.ID,
		Name:     "test",
		Duration: seconds,
		Gain:     1.0,
	}
	track.Clips = append(track.Clips, clip)
	s.tracks = append(s.tracks, track)
	s.recomputeDurationLocked()
	return track.ID, clip.ID
}

func clipByID(s *Session, id string) (model.AudioClip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, i := s.findClipLocked(id)
	if t == nil {
		return model.AudioClip{}, false
	}
	return t.Clips[i], true
}

func checkInvariants(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tracks {
		for _, c := range t.Clips {
			srcDur := s.sourceDurationLocked(c.SourceID)
			if c.StartTime < 0 {
				return fmt.Errorf("clip %s: startTime %v < 0", c.ID, c.StartTime)
			}
			if c.Offset < 0 {
				return fmt.Errorf("clip %s: offset %v < 0", c.ID, c.Offset)
			}
			if c.Duration < model.MinClipLen-1e-9 {
				return fmt.Errorf("clip %s: duration %v below minimum", c.ID, c.Duration)
			}
			if c.Offset+c.Duration > srcDur+1e-9 {
				return fmt.Errorf("clip %s: window %v+%v exceeds source %v", c.ID, c.Offset, c.Duration, srcDur)
			}
			if c.Gain < 0 || c.Gain > model.MaxClipGain {
				return fmt.Errorf("clip %s: gain %v out of range", c.ID, c.Gain)
			}
		}
	}
	return nil
}
