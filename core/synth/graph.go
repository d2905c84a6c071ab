// Package synth realizes playback graphs. A graph is one pass over the
// timeline: per track a pan/gain bus, per audible clip a voice reading a
// window of a source buffer after a scheduled delay. The same graph type
// drives the live speaker output and the offline export renderer.
package synth

import (
	"errors"

	"soundstage/model"
)

// ErrBackend marks a failure inside the synthesis layer (for example the
// audio device refusing to open).
var ErrBackend = errors.New("synthesis backend failure")

// Voice schedules one clip: after DelayFrames of silence it reads frames
// [StartFrame, EndFrame) of Buffer at Gain.
type Voice struct {
	ClipID      string
	TrackID     string
	Buffer      *model.Buffer
	DelayFrames int
	StartFrame  int
	EndFrame    int
	Gain        float64
}

// TrackBus is the per-track mixing stage: all of the track's voices
// summed, scaled by the track gain and the stereo pan gains derived from
// its stage position.
type TrackBus struct {
	TrackID string
	Gain    float64
	Left    float64
	Right   float64
	Voices  []Voice
}

// Graph is everything needed to realize one play() pass.
type Graph struct {
	SampleRate int
	Tracks     []TrackBus
}

// Output is the synthesis backend the playback scheduler talks to. Start
// begins audible playback of a graph immediately; the Set/Stop calls
// address live handles by clip or track id and tolerate ids that are not
// (or no longer) sounding.
type Output interface {
	Start(g Graph) error
	Stop()
	StopClip(clipID string)
	StopTrack(trackID string)
	SetClipGain(clipID string, gain float64)
	SetTrackGain(trackID string, gain float64)
	SetTrackPan(trackID string, left, right float64)
}
