package synth

import (
	"github.com/gopxl/beep/v2"

	"soundstage/model"
)

// rampSeconds is how long gain and pan changes take to reach their target.
// Long enough to avoid clicks, short enough to feel immediate.
const rampSeconds = 0.03

// smoothed is a control value that moves linearly towards its target over
// the ramp window instead of jumping.
type smoothed struct {
	current float64
	target  float64
	step    float64
	ramp    int
}

func newSmoothed(v float64, sampleRate int) *smoothed {
	ramp := int(rampSeconds * float64(sampleRate))
	if ramp < 1 {
		ramp = 1
	}
	return &smoothed{current: v, target: v, ramp: ramp}
}

func (s *smoothed) set(target float64) {
	s.target = target
	s.step = (target - s.current) / float64(s.ramp)
}

func (s *smoothed) next() float64 {
	if s.current != s.target {
		s.current += s.step
		if (s.step > 0 && s.current > s.target) || (s.step < 0 && s.current < s.target) {
			s.current = s.target
		}
	}
	return s.current
}

// voiceStreamer plays one scheduled clip window. It emits silence until
// its delay elapses, then the buffer window scaled by the clip gain, then
// reports itself finished so the mixer drops it.
type voiceStreamer struct {
	clipID  string
	trackID string
	buf     *model.Buffer
	delay   int
	pos     int
	end     int
	gain    *smoothed
	done    bool
}

func newVoiceStreamer(v Voice, sampleRate int) *voiceStreamer {
	return &voiceStreamer{
		clipID:  v.ClipID,
		trackID: v.TrackID,
		buf:     v.Buffer,
		delay:   v.DelayFrames,
		pos:     v.StartFrame,
		end:     v.EndFrame,
		gain:    newSmoothed(v.Gain, sampleRate),
	}
}

func (v *voiceStreamer) Stream(samples [][2]float64) (int, bool) {
	if v.done {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		if v.delay > 0 {
			samples[n] = [2]float64{}
			v.delay--
			n++
			continue
		}
		if v.pos >= v.end {
			v.done = true
			break
		}
		g := v.gain.next()
		samples[n][0] = v.buf.Sample(0, v.pos) * g
		samples[n][1] = v.buf.Sample(1, v.pos) * g
		v.pos++
		n++
	}
	if n == 0 {
		v.done = true
		return 0, false
	}
	return n, true
}

func (v *voiceStreamer) Err() error { return nil }

// stop silences the voice immediately. Stopping a finished voice is fine.
func (v *voiceStreamer) stop() { v.done = true }

// busStreamer sums a track's voices and applies the track gain plus the
// stereo pan gains, all smoothed.
type busStreamer struct {
	trackID string
	mix     beep.Mixer
	gain    *smoothed
	left    *smoothed
	right   *smoothed
	stopped bool
}

func newBusStreamer(t TrackBus, sampleRate int) (*busStreamer, []*voiceStreamer) {
	b := &busStreamer{
		trackID: t.TrackID,
		gain:    newSmoothed(t.Gain, sampleRate),
		left:    newSmoothed(t.Left, sampleRate),
		right:   newSmoothed(t.Right, sampleRate),
	}
	voices := make([]*voiceStreamer, 0, len(t.Voices))
	for _, v := range t.Voices {
		vs := newVoiceStreamer(v, sampleRate)
		voices = append(voices, vs)
		b.mix.Add(vs)
	}
	return b, voices
}

func (b *busStreamer) Stream(samples [][2]float64) (int, bool) {
	if b.stopped {
		return 0, false
	}
	n, ok := b.mix.Stream(samples)
	for i := 0; i < n; i++ {
		g := b.gain.next()
		samples[i][0] *= g * b.left.next()
		samples[i][1] *= g * b.right.next()
	}
	return n, ok
}

func (b *busStreamer) Err() error { return nil }

func (b *busStreamer) stop() { b.stopped = true }
