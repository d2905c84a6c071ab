package engine

import (
	"fmt"
	"math"

	"soundstage/core/audio"
	"soundstage/core/synth"
	"soundstage/logger"
)

// Export renders the whole timeline offline and returns the WAV file
// bytes plus the suggested file name. The graph is frozen at invocation,
// so edits and transport activity during the render do not leak into the
// result. Only one export may run at a time.
func (s *Session) Export() ([]byte, string, error) {
	s.mu.Lock()
	if s.exporting {
		s.mu.Unlock()
		return nil, "", ErrExportInFlight
	}
	if s.globalDuration <= 0 {
		s.mu.Unlock()
		return nil, "", ErrEmptyTimeline
	}
	s.exporting = true
	graph := s.buildGraphLocked(0, true)
	frames := int(math.Round(s.globalDuration * float64(s.sampleRate)))
	name := fmt.Sprintf("%s.wav", s.project)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.exporting = false
		s.mu.Unlock()
	}()

	buf := synth.RenderOffline(graph, frames)
	data, err := audio.EncodeWAV(buf)
	if err != nil {
		logger.Error("export failed", logger.ErrorField(err))
		return nil, "", fmt.Errorf("export: %w", err)
	}

	logger.Info("exported mix",
		logger.String("file", name),
		logger.Int("frames", frames),
		logger.Int("bytes", len(data)))
	return data, name, nil
}
