package synth

import (
	"github.com/gopxl/beep/v2"

	"soundstage/model"
)

// RenderOffline pulls the same streamer graph used for live playback to
// completion without touching an audio device, producing exactly frames
// stereo sample frames. Given the same graph it always produces the same
// buffer, which makes export reproducible.
func RenderOffline(g Graph, frames int) *model.Buffer {
	mix := &beep.Mixer{}
	for _, t := range g.Tracks {
		bus, _ := newBusStreamer(t, g.SampleRate)
		mix.Add(bus)
	}

	out := &model.Buffer{
		SampleRate: g.SampleRate,
		Data:       [][]float64{make([]float64, frames), make([]float64, frames)},
	}

	chunk := make([][2]float64, 512)
	written := 0
	for written < frames {
		n := len(chunk)
		if frames-written < n {
			n = frames - written
		}
		// The mixer always fills the requested window, emitting silence
		// once every voice has finished.
		mix.Stream(chunk[:n])
		for i := 0; i < n; i++ {
			out.Data[0][written+i] = chunk[i][0]
			out.Data[1][written+i] = chunk[i][1]
		}
		written += n
	}
	return out
}
