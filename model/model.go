package model

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Editing limits shared by the clip editor and the transport.
const (
	// MinClipLen is the shortest a clip may become through trimming, in seconds.
	MinClipLen = 0.1
	// SliceMargin is the minimum distance from either clip edge at which a
	// slice is allowed, in seconds.
	SliceMargin = 0.01
	// MaxClipGain caps per-clip gain.
	MaxClipGain = 1.5
	// StageRadius is the maximum distance of a track from the listener.
	StageRadius = 10.0
	// MinDepth is the closest a track may be pulled towards the listener.
	MinDepth = 1.0
)

// Mode selects between full 3D positioning and the flattened 2D stage.
type Mode string

const (
	Mode3D Mode = "3d"
	Mode2D Mode = "2d"
)

// SoundSource is a decoded, immutable audio file. Many clips may reference
// the same source (for example after slicing).
type SoundSource struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Buffer *Buffer `json:"-"`
}

// AudioClip is a window into a SoundSource's buffer, placed at StartTime on
// the global timeline, reading Duration seconds of source audio beginning
// at Offset. Clips are plain values; live playback handles are kept in a
// side table owned by the synthesis backend, never on the clip itself.
type AudioClip struct {
	ID        string  `json:"id"`
	SourceID  string  `json:"sourceId"`
	TrackID   string  `json:"trackId"`
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	Offset    float64 `json:"offset"`
	Duration  float64 `json:"duration"`
	Gain      float64 `json:"gain"`
}

// EndTime returns the clip's end position on the timeline.
func (c AudioClip) EndTime() float64 {
	return c.StartTime + c.Duration
}

// Track is one spatial voice: a position on the stage, a gain, and the
// clips laid out on its lane.
type Track struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    string      `json:"color"`
	Position mgl64.Vec3  `json:"-"`
	Gain     float64     `json:"gain"`
	Height   float64     `json:"height"`
	Clips    []AudioClip `json:"clips"`
}

// Vec is the JSON shape of a 3D position.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ToVec3 converts to the internal vector type.
func (v Vec) ToVec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 converts an internal vector to its JSON shape.
func FromVec3(p mgl64.Vec3) Vec {
	return Vec{X: p.X(), Y: p.Y(), Z: p.Z()}
}
