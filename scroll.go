package panorama

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// Viewport is the real scroll surface the controller drives. ScrollTo is
// expected to clamp to the surface's own range, the way a browser does.
type Viewport interface {
	ScrollPosition() float64
	ScrollTo(pos float64)
}

// ScrollMode identifies which driver currently owns the scroll position.
type ScrollMode uint8

const (
	ScrollIdle        ScrollMode = iota // no programmatic motion
	ScrollWheelEasing                   // exponential ease toward the wheel target
	ScrollSwiping                       // timed in-out cubic swipe from a menu click
)

func (m ScrollMode) String() string {
	switch m {
	case ScrollIdle:
		return "idle"
	case ScrollWheelEasing:
		return "wheel-easing"
	case ScrollSwiping:
		return "swiping"
	}
	return "unknown"
}

// ScrollConfig holds the tuning constants of the scroll controller.
type ScrollConfig struct {
	// Step is added to the target per wheel notch.
	Step float64 `json:"step"`
	// EaseFactor is the fraction of the remaining distance covered per frame.
	EaseFactor float64 `json:"easeFactor"`
	// StopEpsilon ends the wheel ease once the remaining distance is smaller.
	StopEpsilon float64 `json:"stopEpsilon"`
	// SwipeSpeed is the nominal swipe speed in pixels per millisecond.
	SwipeSpeed float64  `json:"swipeSpeed"`
	SwipeMin   Duration `json:"swipeMin"`
	SwipeMax   Duration `json:"swipeMax"`
}

// DefaultScrollConfig returns the page's scroll tuning.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		Step:        50,
		EaseFactor:  0.15,
		StopEpsilon: 0.4,
		SwipeSpeed:  0.2,
		SwipeMin:    Duration(2500 * time.Millisecond),
		SwipeMax:    Duration(3500 * time.Millisecond),
	}
}

// SwipeDuration derives a swipe duration from the distance to travel.
func (c ScrollConfig) SwipeDuration(distance float64) time.Duration {
	lo := float64(time.Duration(c.SwipeMin).Milliseconds())
	hi := float64(time.Duration(c.SwipeMax).Milliseconds())
	ms := hi
	if c.SwipeSpeed > 0 {
		ms = math.Abs(distance) / c.SwipeSpeed
	}
	return time.Duration(Clamp(ms, lo, hi) * float64(time.Millisecond))
}

// ScrollState is a snapshot of the controller.
type ScrollState struct {
	LivePosition   float64
	TargetPosition float64
	MaxPosition    float64
	Programmatic   bool
}

// SwipeAnimation is a timed programmatic scroll between two positions.
type SwipeAnimation struct {
	Start     float64
	End       float64
	StartTime time.Time
	Duration  time.Duration
}

// scrollAnimation is the active programmatic motion. The controller holds at
// most one; nil means idle.
type scrollAnimation interface {
	mode() ScrollMode
	// step advances the animation and reports whether it has settled.
	step(c *ScrollController, now time.Time) bool
}

type wheelEase struct{}

func (wheelEase) mode() ScrollMode { return ScrollWheelEasing }

func (wheelEase) step(c *ScrollController, _ time.Time) bool {
	cur := c.viewport.ScrollPosition()
	diff := c.target - cur
	if math.Abs(diff) < c.cfg.StopEpsilon {
		if cur > c.max {
			c.write(cur)
		}
		return true
	}
	c.programmatic = true
	c.write(cur + diff*c.cfg.EaseFactor)
	return false
}

type swipe struct {
	SwipeAnimation
	tween *gween.Tween
}

func newSwipe(a SwipeAnimation) *swipe {
	ms := float32(a.Duration.Milliseconds())
	return &swipe{
		SwipeAnimation: a,
		tween:          gween.New(float32(a.Start), float32(a.End), ms, ease.InOutCubic),
	}
}

func (*swipe) mode() ScrollMode { return ScrollSwiping }

func (s *swipe) step(c *ScrollController, now time.Time) bool {
	elapsed := float32(now.Sub(s.StartTime).Seconds() * 1000)
	pos, done := s.tween.Set(max(0, elapsed))
	end := Clamp(s.End, 0, c.max)
	c.target = end
	if done {
		c.write(end)
		return true
	}
	c.write(float64(pos))
	return false
}

// ScrollController reconciles the three scroll drivers (raw scroll, wheel
// steps and menu swipes) into one trajectory applied to a Viewport.
//
// All methods must be called from the frame goroutine.
type ScrollController struct {
	viewport Viewport
	cfg      ScrollConfig
	log      *zap.Logger
	now      func() time.Time

	target       float64
	max          float64
	programmatic bool
	anim         scrollAnimation

	lastWrite float64
	wrote     bool

	superseded int
}

// ScrollOption configures a ScrollController.
type ScrollOption func(*ScrollController)

// WithScrollLogger sets the controller's logger.
func WithScrollLogger(l *zap.Logger) ScrollOption {
	return func(c *ScrollController) { c.log = l }
}

// WithScrollClock overrides the clock used to stamp swipe start times.
func WithScrollClock(now func() time.Time) ScrollOption {
	return func(c *ScrollController) { c.now = now }
}

// NewScrollController creates an idle controller with a zero max scroll.
func NewScrollController(viewport Viewport, cfg ScrollConfig, opts ...ScrollOption) *ScrollController {
	c := &ScrollController{
		viewport: viewport,
		cfg:      cfg,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMaxScroll updates the scroll range and re-clamps the target.
func (c *ScrollController) SetMaxScroll(maxScroll float64) {
	c.max = math.Max(0, maxScroll)
	c.target = Clamp(c.target, 0, c.max)
}

// OnWheelInput steps the target by one notch in the wheel direction and
// (re)starts the exponential ease. Any swipe in flight is superseded.
func (c *ScrollController) OnWheelInput(deltaX, deltaY float64) {
	dir := sign(deltaY)
	if dir == 0 {
		dir = sign(deltaX)
	}
	if dir == 0 {
		return
	}

	c.cancel()
	c.target = Clamp(c.target+dir*c.cfg.Step, 0, c.max)
	c.programmatic = true
	c.anim = wheelEase{}
}

// RequestSwipeTo starts a timed swipe to target. Requests closer than the
// stop epsilon to the current position are ignored.
func (c *ScrollController) RequestSwipeTo(target float64) {
	end := Clamp(target, 0, c.max)
	start := c.viewport.ScrollPosition()
	dist := math.Abs(end - start)
	if dist < c.cfg.StopEpsilon {
		return
	}

	c.cancel()
	c.programmatic = true
	c.target = end
	a := SwipeAnimation{
		Start:     start,
		End:       end,
		StartTime: c.now(),
		Duration:  c.cfg.SwipeDuration(dist),
	}
	c.anim = newSwipe(a)
	c.log.Debug("swipe started",
		zap.Float64("from", start),
		zap.Float64("to", end),
		zap.Duration("duration", a.Duration))
}

// OnUserScroll reports a scroll position observed on the viewport. While a
// programmatic animation runs, or when raw is the echo of the controller's
// own last write, the observation is ignored. Otherwise the target is resynced
// to raw, any animation is cancelled and true is returned.
func (c *ScrollController) OnUserScroll(raw float64) bool {
	if c.programmatic {
		return false
	}
	if c.wrote && raw == c.lastWrite {
		c.wrote = false
		return false
	}
	c.cancel()
	c.wrote = false
	c.target = Clamp(raw, 0, c.max)
	return true
}

// Tick advances the active animation. Call once per frame.
func (c *ScrollController) Tick(now time.Time) {
	if c.anim == nil {
		return
	}
	if c.anim.step(c, now) {
		c.anim = nil
		c.programmatic = false
	}
}

// State returns a snapshot of the controller.
func (c *ScrollController) State() ScrollState {
	return ScrollState{
		LivePosition:   c.viewport.ScrollPosition(),
		TargetPosition: c.target,
		MaxPosition:    c.max,
		Programmatic:   c.programmatic,
	}
}

// Mode reports the active driver.
func (c *ScrollController) Mode() ScrollMode {
	if c.anim == nil {
		return ScrollIdle
	}
	return c.anim.mode()
}

// Swipe returns the active swipe, if any.
func (c *ScrollController) Swipe() (SwipeAnimation, bool) {
	if s, ok := c.anim.(*swipe); ok {
		return s.SwipeAnimation, true
	}
	return SwipeAnimation{}, false
}

// Superseded returns how many animations were cancelled before settling.
func (c *ScrollController) Superseded() int {
	return c.superseded
}

// cancel drops the active animation and clears the programmatic flag.
func (c *ScrollController) cancel() {
	if c.anim != nil {
		c.superseded++
		c.anim = nil
	}
	c.programmatic = false
}

// write sets the viewport position, clamped to the current range.
func (c *ScrollController) write(pos float64) {
	pos = Clamp(pos, 0, c.max)
	c.lastWrite = pos
	c.wrote = true
	c.viewport.ScrollTo(pos)
}
