// Package audio decodes imported files into session-rate PCM buffers and
// serializes rendered mixes back out as WAV.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"soundstage/logger"
	"soundstage/model"
)

// ErrDecode marks a file that is not a supported audio container. A batch
// import skips the file and keeps going.
var ErrDecode = errors.New("unsupported or corrupt audio file")

// Decode turns raw file bytes into a PCM buffer at the session sample
// rate. WAV and MP3 containers are supported; the extension is tried
// first, then the content is sniffed.
func Decode(data []byte, name string, sampleRate int) (*model.Buffer, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return decodeWAV(data, sampleRate)
	case ".mp3":
		return decodeMP3(data, sampleRate)
	}
	if len(data) >= 4 && bytes.Equal(data[:4], []byte("RIFF")) {
		return decodeWAV(data, sampleRate)
	}
	if looksLikeMP3(data) {
		return decodeMP3(data, sampleRate)
	}
	return nil, fmt.Errorf("%w: %s", ErrDecode, name)
}

func looksLikeMP3(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	if bytes.Equal(data[:3], []byte("ID3")) {
		return true
	}
	// Bare MPEG frame sync.
	return data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func decodeWAV(data []byte, sampleRate int) (*model.Buffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV", ErrDecode)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 || format.NumChannels == 0 {
		return nil, fmt.Errorf("%w: unknown WAV format", ErrDecode)
	}
	bytesPerSample := (bitDepth-1)/8 + 1
	nsamples := int(decoder.PCMLen()) / bytesPerSample

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, nsamples),
		SourceBitDepth: bitDepth,
	}
	if _, err := decoder.PCMBuffer(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	nchannels := format.NumChannels
	nframes := nsamples / nchannels
	factor := math.Pow(2, float64(bitDepth-1))

	out := &model.Buffer{
		SampleRate: format.SampleRate,
		Data:       make([][]float64, nchannels),
	}
	for ch := 0; ch < nchannels; ch++ {
		out.Data[ch] = make([]float64, nframes)
	}
	for i := 0; i < nframes*nchannels; i++ {
		out.Data[i%nchannels][i/nchannels] = float64(buf.Data[i]) / factor
	}

	logger.Debug("decoded wav",
		logger.Int("sampleRate", format.SampleRate),
		logger.Int("channels", nchannels),
		logger.Int("frames", nframes),
		logger.Int("bitDepth", bitDepth))

	return Conform(out, sampleRate)
}

func decodeMP3(data []byte, sampleRate int) (*model.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// go-mp3 always yields interleaved stereo signed 16-bit little endian.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	nframes := len(raw) / 4

	out := &model.Buffer{
		SampleRate: decoder.SampleRate(),
		Data:       [][]float64{make([]float64, nframes), make([]float64, nframes)},
	}
	for i := 0; i < nframes; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		out.Data[0][i] = float64(l) / 32768
		out.Data[1][i] = float64(r) / 32768
	}

	logger.Debug("decoded mp3",
		logger.Int("sampleRate", out.SampleRate),
		logger.Int("frames", nframes))

	return Conform(out, sampleRate)
}
