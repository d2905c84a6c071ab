package synth

// Null is an Output that discards everything. Used for headless runs and
// by tests that exercise the scheduler without an audio device.
type Null struct{}

func (Null) Start(Graph) error                  { return nil }
func (Null) Stop()                              {}
func (Null) StopClip(string)                    {}
func (Null) StopTrack(string)                   {}
func (Null) SetClipGain(string, float64)        {}
func (Null) SetTrackGain(string, float64)       {}
func (Null) SetTrackPan(string, float64, float64) {}
