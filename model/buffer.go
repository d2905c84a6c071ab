package model

// Buffer holds decoded PCM audio: one sample slice per channel, all the
// same length, at a fixed sample rate. Buffers are created once on import
// and never mutated afterwards.
type Buffer struct {
	SampleRate int
	Data       [][]float64 // [channel][frame], samples in [-1, 1]
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Data)
}

// NumFrames returns the number of sample frames per channel.
func (b *Buffer) NumFrames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// Sample returns the sample at frame for channel, mapping any channel
// index onto the available ones (mono buffers answer for both stereo
// channels). Out-of-range frames read as silence.
func (b *Buffer) Sample(channel, frame int) float64 {
	if len(b.Data) == 0 || frame < 0 || frame >= b.NumFrames() {
		return 0
	}
	if channel >= len(b.Data) {
		channel = len(b.Data) - 1
	}
	return b.Data[channel][frame]
}
