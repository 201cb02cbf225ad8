package panorama

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a regular polygon with the given number of sides, centered on the
// body. Radius is in panel pixels.
type Shape struct {
	Sides  int     `json:"sides"`
	Radius float64 `json:"radius"`
}

// MassParams configures a body's material.
type MassParams struct {
	Density     float64 `json:"density"`
	FrictionAir float64 `json:"frictionAir"`
	Restitution float64 `json:"restitution"`
	Friction    float64 `json:"friction"`
}

// linearDamping converts a per-frame air friction fraction (at 60 frames per
// second) into a continuous damping coefficient.
func (m MassParams) linearDamping() float64 {
	fa := Clamp(m.FrictionAir, 0, 0.99)
	return -60 * math.Log(1-fa)
}

// BodySpec describes a body to create at initialization.
type BodySpec struct {
	Sprite string `json:"sprite"`
	// X and Y are the initial center in panel pixels (y down).
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Shape  Shape      `json:"shape"`
	Mass   MassParams `json:"mass"`
	// GravityScale multiplies the ambient gravity for this body.
	GravityScale float64 `json:"gravityScale"`
}

// MotionProfile holds the per-body ambient motion parameters. It is generated
// once when the body is created and never changes. Frequencies are in radians
// per millisecond of simulated time; amplitudes are accelerations in m/s².
type MotionProfile struct {
	PhaseX, PhaseY float64
	FreqX, FreqY   float64
	AmpX, AmpY     float64
	Buoyancy       float64
	TorqueJitter   float64
	GustPhase      float64
	GustFreq       float64
	GustAmp        float64
	GravityScale   float64
}

// newMotionProfile draws a motion profile from rng.
func newMotionProfile(rng *rand.Rand, gravityScale float64) MotionProfile {
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	return MotionProfile{
		PhaseX:       between(0, 2*math.Pi),
		PhaseY:       between(0, 2*math.Pi),
		FreqX:        between(0.0008, 0.0012),
		FreqY:        between(0.0007, 0.0011),
		AmpX:         between(0.24, 0.38),
		AmpY:         between(0.17, 0.31),
		Buoyancy:     between(0.12, 0.18),
		TorqueJitter: between(0.0048, 0.0084),
		GravityScale: gravityScale,
		GustPhase:    between(0, 2*math.Pi),
		GustFreq:     between(0.002, 0.004),
		GustAmp:      between(0.24, 0.54),
	}
}

// buoyancyForce returns the sinusoidal drift acceleration at time t (ms).
func (m MotionProfile) buoyancyForce(t float64) mgl64.Vec2 {
	return mgl64.Vec2{
		math.Sin(t*m.FreqX+m.PhaseX) * m.AmpX,
		m.Buoyancy + math.Sin(t*m.FreqY+m.PhaseY)*m.AmpY,
	}
}

// gustForce returns the gust acceleration at time t (ms). The vertical
// component is always upward.
func (m MotionProfile) gustForce(t float64) mgl64.Vec2 {
	g := math.Sin(t*m.GustFreq + m.GustPhase)
	return mgl64.Vec2{g * m.GustAmp * 0.6, math.Abs(g) * m.GustAmp}
}

// PhysicsBody is a read-only view of a simulated body. Position and Velocity
// are in physics-world units (metres, y up).
type PhysicsBody struct {
	Position        mgl64.Vec2
	Velocity        mgl64.Vec2
	Angle           float64
	AngularVelocity float64
	Shape           Shape
	Mass            MassParams
	Motion          MotionProfile
}

// BodyTransform is the screen-space transform of a body's visual element in
// panel pixels: translate to (TranslateX, TranslateY), the element's top-left,
// then rotate by Angle (clockwise radians) about the element's center.
type BodyTransform struct {
	Sprite     string
	TranslateX float64
	TranslateY float64
	Angle      float64
	Width      float64
	Height     float64
}

// Center returns the element's center in panel pixels.
func (t BodyTransform) Center() mgl64.Vec2 {
	return mgl64.Vec2{t.TranslateX + t.Width/2, t.TranslateY + t.Height/2}
}
