// Package spatial maps interaction events to constrained track positions
// and turns positions into the stereo gains that drive panning.
package spatial

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"soundstage/model"
)

// Clamp constrains a requested position to the stage. Magnitude is capped
// at the stage radius; in 2D mode the vertical component is zeroed before
// the cap is applied.
func Clamp(p mgl64.Vec3, mode model.Mode) mgl64.Vec3 {
	if mode == model.Mode2D {
		p[1] = 0
	}
	if l := p.Len(); l > model.StageRadius {
		p = p.Mul(model.StageRadius / l)
	}
	return p
}

// Project2D flattens a 3D position onto the horizontal plane for the 2D
// stage. If the projection still exceeds the stage radius it is pulled
// back onto the radius along its direction.
func Project2D(p mgl64.Vec3) mgl64.Vec3 {
	p[1] = 0
	if l := p.Len(); l > model.StageRadius {
		p = p.Mul(model.StageRadius / l)
	}
	return p
}

// AdjustDepth moves a position along its current direction from the
// listener by delta, keeping the distance inside [MinDepth, StageRadius].
// A position at the origin has no direction and is left unchanged.
func AdjustDepth(p mgl64.Vec3, delta float64) mgl64.Vec3 {
	dist := p.Len()
	if dist < 1e-9 {
		return p
	}
	next := dist + delta
	if next < model.MinDepth {
		next = model.MinDepth
	}
	if next > model.StageRadius {
		next = model.StageRadius
	}
	return p.Mul(next / dist)
}

// RandomOnSphere returns a uniformly distributed point on the sphere of
// the given radius. Used for initial track placement.
func RandomOnSphere(radius float64) mgl64.Vec3 {
	// Marsaglia: z uniform in [-1,1], azimuth uniform in [0,2pi).
	z := 2*rand.Float64() - 1
	theta := 2 * math.Pi * rand.Float64()
	r := math.Sqrt(1 - z*z)
	return mgl64.Vec3{r * math.Cos(theta), z, r * math.Sin(theta)}.Mul(radius)
}
