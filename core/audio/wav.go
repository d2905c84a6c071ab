package audio

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"soundstage/model"
)

// EncodeWAV serializes a rendered stereo mix as a 16-bit PCM WAV file
// (format tag 1, little endian) and returns the file bytes.
func EncodeWAV(buf *model.Buffer) ([]byte, error) {
	nchannels := buf.NumChannels()
	if nchannels == 0 {
		return nil, fmt.Errorf("encode wav: empty buffer")
	}
	nframes := buf.NumFrames()

	w := &seekBuffer{}
	enc := wav.NewEncoder(w, buf.SampleRate, 16, nchannels, 1)

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: nchannels,
			SampleRate:  buf.SampleRate,
		},
		Data:           make([]int, nframes*nchannels),
		SourceBitDepth: 16,
	}
	for i := 0; i < nframes; i++ {
		for ch := 0; ch < nchannels; ch++ {
			s := buf.Data[ch][i]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			intBuf.Data[i*nchannels+ch] = int(s * 32767)
		}
	}

	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	return w.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker. The WAV encoder seeks back
// to patch chunk sizes after writing the samples, so a plain bytes.Buffer
// is not enough.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case io.SeekStart:
		next = int(offset)
	case io.SeekCurrent:
		next = b.pos + int(offset)
	case io.SeekEnd:
		next = len(b.data) + int(offset)
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("seek: negative position")
	}
	b.pos = next
	return int64(next), nil
}
