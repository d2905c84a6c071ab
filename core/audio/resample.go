package audio

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"

	"soundstage/logger"
	"soundstage/model"
)

// Conform brings a decoded buffer to the session sample rate, resampling
// when the file was recorded at a different rate. Buffers already at the
// session rate pass through untouched.
func Conform(buf *model.Buffer, sampleRate int) (*model.Buffer, error) {
	if buf.SampleRate == sampleRate {
		return buf, nil
	}

	nchannels := buf.NumChannels()
	nframes := buf.NumFrames()
	interleaved := make([]float32, nchannels*nframes)
	for ch := 0; ch < nchannels; ch++ {
		for i := 0; i < nframes; i++ {
			interleaved[i*nchannels+ch] = float32(buf.Data[ch][i])
		}
	}

	ratio := float64(sampleRate) / float64(buf.SampleRate)
	resampled, err := gosamplerate.Simple(interleaved, ratio, nchannels, gosamplerate.SRC_SINC_BEST_QUALITY)
	if err != nil {
		return nil, fmt.Errorf("resample %d -> %d: %w", buf.SampleRate, sampleRate, err)
	}

	outFrames := len(resampled) / nchannels
	out := &model.Buffer{
		SampleRate: sampleRate,
		Data:       make([][]float64, nchannels),
	}
	for ch := 0; ch < nchannels; ch++ {
		out.Data[ch] = make([]float64, outFrames)
		for i := 0; i < outFrames; i++ {
			out.Data[ch][i] = float64(resampled[i*nchannels+ch])
		}
	}

	logger.Debug("resampled import",
		logger.Int("from", buf.SampleRate),
		logger.Int("to", sampleRate),
		logger.Int("frames", outFrames))

	return out, nil
}
