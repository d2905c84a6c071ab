package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// refDistance is the distance at which a source plays at unity gain.
// Inside it there is no boost; beyond it gain falls off as 1/distance.
const refDistance = 1.0

// StereoGains maps a position around the listener (at the origin, facing
// -Z) to left/right channel gains: equal-power panning on the horizontal
// angle combined with inverse-distance attenuation. Live playback and the
// offline export renderer share this mapping, which is what keeps the
// exported mix identical to what the transport plays.
func StereoGains(p mgl64.Vec3) (left, right float64) {
	dist := p.Len()

	att := 1.0
	if dist > refDistance {
		att = refDistance / dist
	}

	// Horizontal pan position in [-1, 1]. A source straight above or at
	// the listener has no lateral direction and sits in the center.
	pan := 0.0
	if h := math.Hypot(p.X(), p.Z()); h > 1e-9 {
		pan = p.X() / h
	}

	angle := (pan + 1) * math.Pi / 4
	left = math.Cos(angle) * att
	right = math.Sin(angle) * att
	return left, right
}
