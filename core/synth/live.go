package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"soundstage/logger"
)

// Engine is the live synthesis backend: it plays graphs through the
// machine's audio device via the beep speaker. It owns the side table of
// live handles (clip id -> voice, track id -> bus); nothing outside this
// package holds a streamer pointer.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	inited     bool
	voices     map[string]*voiceStreamer
	buses      map[string]*busStreamer
}

// NewEngine creates a live backend for the given session sample rate. The
// audio device is opened lazily on the first Start.
func NewEngine(sampleRate int) *Engine {
	return &Engine{
		sampleRate: sampleRate,
		voices:     make(map[string]*voiceStreamer),
		buses:      make(map[string]*busStreamer),
	}
}

// Start realizes a graph: any previous pass is cleared, fresh streamers
// are built and handed to the speaker.
func (e *Engine) Start(g Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inited {
		sr := beep.SampleRate(e.sampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return fmt.Errorf("%w: %v", ErrBackend, err)
		}
		e.inited = true
	}

	speaker.Clear()
	e.voices = make(map[string]*voiceStreamer)
	e.buses = make(map[string]*busStreamer)

	streamers := make([]beep.Streamer, 0, len(g.Tracks))
	for _, t := range g.Tracks {
		bus, voices := newBusStreamer(t, g.SampleRate)
		e.buses[t.TrackID] = bus
		for _, v := range voices {
			e.voices[v.clipID] = v
		}
		streamers = append(streamers, bus)
	}
	speaker.Play(streamers...)

	logger.Debug("live graph started",
		logger.Int("tracks", len(g.Tracks)),
		logger.Int("voices", len(e.voices)))
	return nil
}

// Stop releases every live handle. Safe when nothing is sounding.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inited {
		speaker.Clear()
	}
	e.voices = make(map[string]*voiceStreamer)
	e.buses = make(map[string]*busStreamer)
}

// StopClip silences one clip's voice. Unknown or already-stopped clips
// are not an error.
func (e *Engine) StopClip(clipID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.voices[clipID]
	if !ok {
		return
	}
	speaker.Lock()
	v.stop()
	speaker.Unlock()
	delete(e.voices, clipID)
}

// StopTrack silences a track's bus and all of its voices.
func (e *Engine) StopTrack(trackID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.buses[trackID]
	if !ok {
		return
	}
	speaker.Lock()
	b.stop()
	speaker.Unlock()
	delete(e.buses, trackID)
	for id, v := range e.voices {
		if v.trackID == trackID {
			delete(e.voices, id)
		}
	}
}

// SetClipGain retargets a sounding clip's gain, ramped.
func (e *Engine) SetClipGain(clipID string, gain float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.voices[clipID]; ok {
		speaker.Lock()
		v.gain.set(gain)
		speaker.Unlock()
	}
}

// SetTrackGain retargets a track bus gain, ramped.
func (e *Engine) SetTrackGain(trackID string, gain float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.buses[trackID]; ok {
		speaker.Lock()
		b.gain.set(gain)
		speaker.Unlock()
	}
}

// SetTrackPan retargets a track's stereo pan gains, ramped.
func (e *Engine) SetTrackPan(trackID string, left, right float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.buses[trackID]; ok {
		speaker.Lock()
		b.left.set(left)
		b.right.set(right)
		speaker.Unlock()
	}
}
