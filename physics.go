package panorama

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

var (
	// ErrNoBodies is returned by Initialize when no body specs are given.
	ErrNoBodies = errors.New("panorama: no bodies to simulate")
	// ErrInvalidArena is returned by Initialize for a degenerate arena.
	ErrInvalidArena = errors.New("panorama: invalid arena")
)

// ImpulseConfig tunes the scroll-driven kick. Forces are accelerations in
// m/s², velocities in m/s, spins in rad/s.
type ImpulseConfig struct {
	// MinMagnitude is the delta magnitude (pixels) below which input is noise.
	MinMagnitude float64 `json:"minMagnitude"`
	ForceBase    float64 `json:"forceBase"`
	ForceScale   float64 `json:"forceScale"`
	ForceMax     float64 `json:"forceMax"`
	XFactor      float64 `json:"xFactor"`
	XRandom      float64 `json:"xRandom"`
	// VelocityGain converts the horizontal force into an immediate velocity change.
	VelocityGain float64 `json:"velocityGain"`
	// BoostVY is the minimum upward velocity a body has after a kick.
	BoostVY    float64 `json:"boostVY"`
	TorqueKick float64 `json:"torqueKick"`
	TorqueMax  float64 `json:"torqueMax"`
}

// HoverConfig tunes the pointer hover field.
type HoverConfig struct {
	// Radius is the field radius in panel pixels.
	Radius float64 `json:"radius"`
	// MinSpeed is the pointer speed (px/ms) below which motion is ignored.
	MinSpeed float64 `json:"minSpeed"`
	// ForceScale converts pointer speed (px/ms) into an acceleration (m/s²).
	ForceScale float64 `json:"forceScale"`
	ForceMax   float64 `json:"forceMax"`
	Torque     float64 `json:"torque"`
	SpinMax    float64 `json:"spinMax"`
}

// PhysicsConfig tunes the physics engine.
type PhysicsConfig struct {
	PixelsPerMeter     float64  `json:"pixelsPerMeter"`
	TimeStep           Duration `json:"timeStep"`
	VelocityIterations int      `json:"velocityIterations"`
	PositionIterations int      `json:"positionIterations"`
	// AmbientGravity is the downward acceleration (m/s²) at GravityScale 1.
	AmbientGravity float64 `json:"ambientGravity"`
	// MaxAmbientSpin clamps the angular velocity after torque jitter.
	MaxAmbientSpin float64       `json:"maxAmbientSpin"`
	Impulse        ImpulseConfig `json:"impulse"`
	Hover          HoverConfig   `json:"hover"`
}

// DefaultPhysicsConfig returns the page's physics tuning.
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		PixelsPerMeter:     100,
		TimeStep:           Duration(time.Second / 60),
		VelocityIterations: 8,
		PositionIterations: 3,
		AmbientGravity:     9,
		MaxAmbientSpin:     1.8,
		Impulse: ImpulseConfig{
			MinMagnitude: 0.25,
			ForceBase:    0.18,
			ForceScale:   0.006,
			ForceMax:     7.7,
			XFactor:      0.6,
			XRandom:      0.2,
			VelocityGain: 0.8,
			BoostVY:      1.56,
			TorqueKick:   1.68,
			TorqueMax:    3.2,
		},
		Hover: HoverConfig{
			Radius:     200,
			MinSpeed:   0.025,
			ForceScale: 500,
			ForceMax:   12.7,
			Torque:     1.5,
			SpinMax:    3,
		},
	}
}

type simBody struct {
	body   *box2d.B2Body
	spec   BodySpec
	motion MotionProfile
}

// Engine simulates the floating bodies of the physics panel. It owns the
// body list exclusively: callers can apply forces but never add or remove
// bodies after Initialize.
//
// The physics world is y-up and measured in metres; transforms are published
// in panel pixels (y down) after every step.
type Engine struct {
	cfg  PhysicsConfig
	log  *zap.Logger
	seed uint64
	rng  *rand.Rand

	arena  ArenaConfig
	world  *box2d.B2World
	walls  []*box2d.B2Body
	bodies []*simBody
	steps  int

	front, back []BodyTransform
	handles     []TaskHandle
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithEngineSeed fixes the seed of the engine's random source so motion profiles
// and jitter are replayable.
func WithEngineSeed(seed uint64) EngineOption {
	return func(e *Engine) { e.seed = seed }
}

// NewEngine creates an engine with no world. Call Initialize to build one.
func NewEngine(cfg PhysicsConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:  cfg,
		log:  zap.NewNop(),
		seed: uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.PixelsPerMeter <= 0 {
		e.cfg.PixelsPerMeter = 100
	}
	if e.cfg.TimeStep <= 0 {
		e.cfg.TimeStep = Duration(time.Second / 60)
	}
	return e
}

// Initialize tears down any previous world and builds a new one with the
// arena walls and one body per spec.
func (e *Engine) Initialize(specs []BodySpec, arena ArenaConfig) error {
	e.Teardown()

	if len(specs) == 0 {
		return ErrNoBodies
	}
	if err := arena.validate(); err != nil {
		return err
	}

	e.arena = arena
	e.rng = rand.New(rand.NewPCG(e.seed, e.seed^0x9e3779b97f4a7c15))
	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	e.world = &world
	e.buildWalls()

	for i, spec := range specs {
		sb, err := e.createBody(spec)
		if err != nil {
			e.Teardown()
			return fmt.Errorf("create body %d: %w", i, err)
		}
		e.bodies = append(e.bodies, sb)
	}

	e.front = make([]BodyTransform, len(e.bodies))
	e.back = make([]BodyTransform, len(e.bodies))
	e.publish()

	e.log.Info("physics initialized",
		zap.Int("bodies", len(e.bodies)),
		zap.Uint64("seed", e.seed))
	return nil
}

// createBody adds a dynamic body for spec. Shapes with more sides than the
// solver's polygon limit become circles of the same radius.
func (e *Engine) createBody(spec BodySpec) (*simBody, error) {
	if spec.Shape.Radius <= 0 {
		return nil, fmt.Errorf("radius %v must be positive", spec.Shape.Radius)
	}

	def := box2d.MakeB2BodyDef()
	def.Type = box2d.B2BodyType.B2_dynamicBody
	def.Position = e.toWorld(mgl64.Vec2{spec.X, spec.Y})
	def.LinearDamping = spec.Mass.linearDamping()
	def.AllowSleep = false
	body := e.world.CreateBody(&def)

	radius := spec.Shape.Radius / e.cfg.PixelsPerMeter
	fd := box2d.MakeB2FixtureDef()
	fd.Density = spec.Mass.Density
	fd.Friction = spec.Mass.Friction
	fd.Restitution = spec.Mass.Restitution

	sides := spec.Shape.Sides
	if sides >= 3 && sides <= box2d.B2_maxPolygonVertices {
		verts := make([]box2d.B2Vec2, sides)
		for i := range verts {
			a := 2*math.Pi*float64(i)/float64(sides) + math.Pi/2
			verts[i] = box2d.MakeB2Vec2(radius*math.Cos(a), radius*math.Sin(a))
		}
		shape := box2d.MakeB2PolygonShape()
		shape.Set(verts, sides)
		fd.Shape = &shape
	} else {
		shape := box2d.MakeB2CircleShape()
		shape.M_radius = radius
		fd.Shape = &shape
	}
	body.CreateFixtureFromDef(&fd)

	gs := spec.GravityScale
	return &simBody{body: body, spec: spec, motion: newMotionProfile(e.rng, gs)}, nil
}

// Ready reports whether a world is initialized.
func (e *Engine) Ready() bool {
	return e.world != nil
}

// Attach schedules the physics tick on tick and the render sync on display.
// sync receives the latest published transforms; the slice is reused and must
// not be retained past the call. The tasks are cancelled by Teardown.
func (e *Engine) Attach(tick, display *Scheduler, sync func([]BodyTransform)) {
	for _, h := range e.handles {
		h.Cancel()
	}
	e.handles = e.handles[:0]
	e.handles = append(e.handles,
		tick.Schedule("physics", func(time.Time) bool {
			e.StepFrame()
			return true
		}),
		display.Schedule("render-sync", func(time.Time) bool {
			sync(e.Snapshot())
			return true
		}),
	)
}

// StepFrame applies the ambient forces, advances the world by one fixed step
// and publishes the settled transforms.
func (e *Engine) StepFrame() {
	if e.world == nil {
		return
	}
	t := e.SimTime().Seconds() * 1000
	for _, sb := range e.bodies {
		e.applyAmbient(sb, t)
	}

	dt := time.Duration(e.cfg.TimeStep).Seconds()
	e.world.Step(dt, e.cfg.VelocityIterations, e.cfg.PositionIterations)
	e.steps++
	e.publish()
}

// SimTime returns the simulated time elapsed since Initialize.
func (e *Engine) SimTime() time.Duration {
	return time.Duration(e.steps) * time.Duration(e.cfg.TimeStep)
}

// applyAmbient adds gravity, buoyancy, gust and torque jitter to one body.
func (e *Engine) applyAmbient(sb *simBody, t float64) {
	m := sb.motion
	mass := sb.body.GetMass()

	accel := mgl64.Vec2{0, -m.GravityScale * e.cfg.AmbientGravity}
	accel = accel.Add(m.buoyancyForce(t)).Add(m.gustForce(t))
	sb.body.ApplyForceToCenter(vec(accel.Mul(mass)), true)

	w := sb.body.GetAngularVelocity() + (e.rng.Float64()-0.5)*m.TorqueJitter
	sb.body.SetAngularVelocity(Clamp(w, -e.cfg.MaxAmbientSpin, e.cfg.MaxAmbientSpin))
}

// ApplyImpulse kicks every body in response to a scroll delta (pixels).
// Deltas below the configured minimum magnitude are ignored.
func (e *Engine) ApplyImpulse(dx, dy float64) {
	ic := e.cfg.Impulse
	mag := math.Hypot(dx, dy)
	if e.world == nil || mag < ic.MinMagnitude {
		return
	}

	base := math.Min(ic.ForceMax, ic.ForceBase+ic.ForceScale*mag)
	dir := sign(dx)
	if dir == 0 {
		dir = sign(dy)
	}
	spin := dir
	if spin == 0 {
		spin = 1
	}

	for _, sb := range e.bodies {
		fx := dir*base*ic.XFactor + (e.rng.Float64()-0.5)*base*ic.XRandom
		fy := base
		mass := sb.body.GetMass()
		sb.body.ApplyForceToCenter(box2d.MakeB2Vec2(fx*mass, fy*mass), true)

		v := sb.body.GetLinearVelocity()
		sb.body.SetLinearVelocity(box2d.MakeB2Vec2(v.X+fx*ic.VelocityGain, math.Max(v.Y, ic.BoostVY)))

		w := sb.body.GetAngularVelocity() + (e.rng.Float64()-0.5)*ic.TorqueKick*spin
		sb.body.SetAngularVelocity(Clamp(w, -ic.TorqueMax, ic.TorqueMax))
	}
}

// ApplyHoverField pushes bodies near the pointer along the pointer's motion.
// pointer is in panel pixels, velocity in panel pixels per millisecond
// (y down).
func (e *Engine) ApplyHoverField(pointer, velocity mgl64.Vec2) {
	hc := e.cfg.Hover
	speed := velocity.Len()
	if e.world == nil || speed < hc.MinSpeed || hc.Radius <= 0 {
		return
	}

	dir := velocity.Mul(1 / speed)
	dir[1] = -dir[1]
	base := math.Min(hc.ForceMax, hc.ForceScale*speed)

	for _, sb := range e.bodies {
		d := e.toPanel(sb.body.GetPosition()).Sub(pointer).Len()
		if d > hc.Radius {
			continue
		}
		w := 1 - math.Pow(d/hc.Radius, 1.5)
		mass := sb.body.GetMass()
		sb.body.ApplyForceToCenter(vec(dir.Mul(base*w*mass)), true)

		spin := sb.body.GetAngularVelocity() + (e.rng.Float64()-0.5)*hc.Torque*w
		sb.body.SetAngularVelocity(Clamp(spin, -hc.SpinMax, hc.SpinMax))
	}
}

// Snapshot returns the transforms published by the last step. The slice is
// owned by the engine and is only valid until the next StepFrame.
func (e *Engine) Snapshot() []BodyTransform {
	return e.front
}

// Bodies returns copies of the current body states.
func (e *Engine) Bodies() []PhysicsBody {
	out := make([]PhysicsBody, len(e.bodies))
	for i, sb := range e.bodies {
		p := sb.body.GetPosition()
		v := sb.body.GetLinearVelocity()
		out[i] = PhysicsBody{
			Position:        mgl64.Vec2{p.X, p.Y},
			Velocity:        mgl64.Vec2{v.X, v.Y},
			Angle:           sb.body.GetAngle(),
			AngularVelocity: sb.body.GetAngularVelocity(),
			Shape:           sb.spec.Shape,
			Mass:            sb.spec.Mass,
			Motion:          sb.motion,
		}
	}
	return out
}

// Teardown cancels the engine's scheduled tasks, destroys every body and
// releases the world. It is safe to call repeatedly.
func (e *Engine) Teardown() {
	for _, h := range e.handles {
		h.Cancel()
	}
	e.handles = e.handles[:0]

	if e.world == nil {
		return
	}
	for _, sb := range e.bodies {
		e.world.DestroyBody(sb.body)
	}
	for _, w := range e.walls {
		e.world.DestroyBody(w)
	}
	e.bodies = nil
	e.walls = nil
	e.world = nil
	e.front, e.back = nil, nil
	e.steps = 0
	e.log.Debug("physics torn down")
}

// publish writes the current transforms into the back buffer and swaps it
// to the front, so readers only ever see a fully written frame.
func (e *Engine) publish() {
	for i, sb := range e.bodies {
		c := e.toPanel(sb.body.GetPosition())
		w, h := sb.spec.Width, sb.spec.Height
		e.back[i] = BodyTransform{
			Sprite:     sb.spec.Sprite,
			TranslateX: c.X() - w/2,
			TranslateY: c.Y() - h/2,
			Angle:      -sb.body.GetAngle(),
			Width:      w,
			Height:     h,
		}
	}
	e.front, e.back = e.back, e.front
}

// toWorld converts panel pixels (y down) into world metres (y up).
func (e *Engine) toWorld(p mgl64.Vec2) box2d.B2Vec2 {
	ppm := e.cfg.PixelsPerMeter
	return box2d.MakeB2Vec2(p.X()/ppm, (e.arena.Panel.Height-p.Y())/ppm)
}

// toPanel converts world metres (y up) into panel pixels (y down).
func (e *Engine) toPanel(p box2d.B2Vec2) mgl64.Vec2 {
	ppm := e.cfg.PixelsPerMeter
	return mgl64.Vec2{p.X * ppm, e.arena.Panel.Height - p.Y*ppm}
}

func vec(v mgl64.Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X(), v.Y())
}
