package panorama

import (
	"fmt"

	"github.com/ByteArena/box2d"
)

// ArenaConfig describes the walled playable rectangle inside the physics
// panel, in panel pixels (y down).
type ArenaConfig struct {
	// Panel is the reference size of the physics panel.
	Panel Size `json:"panel"`
	// Play is the playable rectangle the walls enclose.
	Play Rect `json:"play"`

	WallLeft  float64 `json:"wallLeft"`
	WallRight float64 `json:"wallRight"`
	WallTop   float64 `json:"wallTop"`
	// FloorRaise lifts the floor above the bottom of Play.
	FloorRaise float64 `json:"floorRaise"`
	WallBottom float64 `json:"wallBottom"`
}

// DefaultArenaConfig returns the arena of the page's physics panel.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		Panel:      Size{Width: 3840, Height: 1080},
		Play:       Rect{X: 960, Y: 0, Width: 1920, Height: 1080},
		WallLeft:   50,
		WallRight:  50,
		WallTop:    50,
		FloorRaise: 140,
		WallBottom: 300,
	}
}

func (a ArenaConfig) validate() error {
	if a.Panel.Width <= 0 || a.Panel.Height <= 0 {
		return fmt.Errorf("%w: panel %vx%v", ErrInvalidArena, a.Panel.Width, a.Panel.Height)
	}
	if a.Play.Width <= 0 || a.Play.Height-a.FloorRaise <= 0 {
		return fmt.Errorf("%w: play area %vx%v with floor raise %v",
			ErrInvalidArena, a.Play.Width, a.Play.Height, a.FloorRaise)
	}
	if a.WallLeft <= 0 || a.WallRight <= 0 || a.WallTop <= 0 || a.WallBottom <= 0 {
		return fmt.Errorf("%w: wall thickness must be positive", ErrInvalidArena)
	}
	return nil
}

// Walls returns the four wall rectangles: left, right, top and floor.
func (a ArenaConfig) Walls() [4]Rect {
	p := a.Play
	floorY := p.Y + p.Height - a.FloorRaise
	return [4]Rect{
		{X: p.X - a.WallLeft, Y: p.Y, Width: a.WallLeft, Height: p.Height},
		{X: p.X + p.Width, Y: p.Y, Width: a.WallRight, Height: p.Height},
		{X: p.X, Y: p.Y - a.WallTop, Width: p.Width, Height: a.WallTop},
		{X: p.X, Y: floorY, Width: p.Width, Height: a.WallBottom},
	}
}

// Inner returns the rectangle bodies are contained in.
func (a ArenaConfig) Inner() Rect {
	return Rect{X: a.Play.X, Y: a.Play.Y, Width: a.Play.Width, Height: a.Play.Height - a.FloorRaise}
}

// buildWalls creates the static wall bodies in world.
func (e *Engine) buildWalls() {
	for _, r := range e.arena.Walls() {
		def := box2d.MakeB2BodyDef()
		def.Type = box2d.B2BodyType.B2_staticBody
		def.Position = e.toWorld(r.Center())
		body := e.world.CreateBody(&def)

		shape := box2d.MakeB2PolygonShape()
		shape.SetAsBox(r.Width/2/e.cfg.PixelsPerMeter, r.Height/2/e.cfg.PixelsPerMeter)
		fd := box2d.MakeB2FixtureDef()
		fd.Shape = &shape
		fd.Friction = 0.1
		body.CreateFixtureFromDef(&fd)

		e.walls = append(e.walls, body)
	}
}
