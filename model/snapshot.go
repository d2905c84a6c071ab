package model

// SourceSnapshot is the read-only view of a registered sound source.
type SourceSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

// TrackSnapshot is the read-only view of a track handed to the UI layer.
type TrackSnapshot struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    string      `json:"color"`
	Position Vec         `json:"position"`
	Gain     float64     `json:"gain"`
	Height   float64     `json:"height"`
	Clips    []AudioClip `json:"clips"`
}

// SessionSnapshot is the full read-only editor state for the UI layer.
type SessionSnapshot struct {
	Sources        []SourceSnapshot `json:"sources"`
	Tracks         []TrackSnapshot  `json:"tracks"`
	GlobalDuration float64          `json:"globalDuration"`
	CurrentTime    float64          `json:"currentTime"`
	IsPlaying      bool             `json:"isPlaying"`
	Mode           Mode             `json:"mode"`
	SelectedClipID string           `json:"selectedClipId"`
	Loading        bool             `json:"loading"`
	Exporting      bool             `json:"exporting"`
}
