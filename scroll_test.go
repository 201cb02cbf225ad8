package panorama

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"
)

func newTestController(maxScroll float64) (*ScrollController, *fakeViewport, *fakeClock) {
	vp := &fakeViewport{max: maxScroll}
	clock := newFakeClock()
	c := NewScrollController(vp, DefaultScrollConfig(), WithScrollClock(clock.Now))
	c.SetMaxScroll(maxScroll)
	return c, vp, clock
}

// settle ticks every 16ms until the controller goes idle.
func settle(t *testing.T, c *ScrollController, clock *fakeClock) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if c.Mode() == ScrollIdle {
			return
		}
		c.Tick(clock.Advance(16 * time.Millisecond))
	}
	t.Fatalf("controller never settled, mode %v", c.Mode())
}

func TestWheelScenarioC(t *testing.T) {
	c, vp, clock := newTestController(9580)

	c.OnWheelInput(0, 100)

	st := c.State()
	assertNear(t, "target", st.TargetPosition, 50)
	if !st.Programmatic {
		t.Error("wheel ease should be programmatic")
	}
	if c.Mode() != ScrollWheelEasing {
		t.Errorf("mode = %v, want wheel-easing", c.Mode())
	}

	c.Tick(clock.Advance(16 * time.Millisecond))
	assertNear(t, "first step", vp.pos, 7.5)
}

func TestWheelEaseConverges(t *testing.T) {
	c, vp, clock := newTestController(9580)
	c.OnWheelInput(0, 100)
	c.OnWheelInput(0, 100)
	settle(t, c, clock)

	if vp.pos < 100-DefaultScrollConfig().StopEpsilon || vp.pos > 100 {
		t.Errorf("settled at %v, want within epsilon below 100", vp.pos)
	}
	if c.State().Programmatic {
		t.Error("programmatic flag should clear once settled")
	}
}

func TestWheelDirection(t *testing.T) {
	c, _, _ := newTestController(9580)
	c.OnWheelInput(0, 3)
	c.OnWheelInput(0, 3)
	assertNear(t, "after two notches", c.State().TargetPosition, 100)

	c.OnWheelInput(-7, 0)
	assertNear(t, "horizontal delta", c.State().TargetPosition, 50)

	c.OnWheelInput(5, -1)
	assertNear(t, "vertical wins", c.State().TargetPosition, 0)

	c.OnWheelInput(0, 0)
	assertNear(t, "zero delta ignored", c.State().TargetPosition, 0)
}

func TestWheelClampsAtEnds(t *testing.T) {
	c, _, _ := newTestController(120)
	c.OnWheelInput(0, -100)
	assertNear(t, "below zero", c.State().TargetPosition, 0)
	for range 5 {
		c.OnWheelInput(0, 100)
	}
	assertNear(t, "above max", c.State().TargetPosition, 120)
}

func TestSwipeScenarioD(t *testing.T) {
	c, vp, clock := newTestController(9580)

	c.RequestSwipeTo(6800)
	sw, ok := c.Swipe()
	if !ok {
		t.Fatal("no swipe in flight")
	}
	if sw.Duration != 3500*time.Millisecond {
		t.Errorf("duration = %v, want 3.5s", sw.Duration)
	}
	if c.Mode() != ScrollSwiping {
		t.Errorf("mode = %v, want swiping", c.Mode())
	}

	rng := rand.New(rand.NewPCG(7, 11))
	prev := 0.0
	for c.Mode() == ScrollSwiping {
		jitter := time.Duration(8+rng.IntN(30)) * time.Millisecond
		c.Tick(clock.Advance(jitter))
		if vp.pos < prev-1e-3 || vp.pos > 6800 {
			t.Fatalf("position %v after %v (prev %v)", vp.pos, prev, vp.pos)
		}
		prev = vp.pos
	}
	if vp.pos != 6800 {
		t.Errorf("swipe ended at %v, want exactly 6800", vp.pos)
	}
	if c.State().Programmatic {
		t.Error("programmatic flag should clear at the end of the swipe")
	}
}

func TestSwipeEndsExactlyWithSingleLateTick(t *testing.T) {
	c, vp, clock := newTestController(9580)
	c.RequestSwipeTo(6800)
	c.Tick(clock.Advance(10 * time.Second))
	if vp.pos != 6800 || c.Mode() != ScrollIdle {
		t.Errorf("pos %v mode %v, want 6800 idle", vp.pos, c.Mode())
	}
}

func TestSwipeClampsTarget(t *testing.T) {
	c, vp, clock := newTestController(1000)
	c.RequestSwipeTo(13000)
	assertNear(t, "target", c.State().TargetPosition, 1000)
	settle(t, c, clock)
	assertNear(t, "end", vp.pos, 1000)
}

func TestSwipeDuration(t *testing.T) {
	cfg := DefaultScrollConfig()
	tests := []struct {
		distance float64
		want     time.Duration
	}{
		{100, 2500 * time.Millisecond},
		{600, 3000 * time.Millisecond},
		{-600, 3000 * time.Millisecond},
		{6800, 3500 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := cfg.SwipeDuration(tt.distance); got != tt.want {
			t.Errorf("SwipeDuration(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestNewSwipeCancelsPrevious(t *testing.T) {
	c, _, clock := newTestController(9580)
	c.RequestSwipeTo(6800)
	c.Tick(clock.Advance(500 * time.Millisecond))

	c.RequestSwipeTo(100)
	sw, ok := c.Swipe()
	if !ok || sw.End != 100 {
		t.Fatalf("swipe = %+v, %v; want end 100", sw, ok)
	}
	if c.Superseded() != 1 {
		t.Errorf("superseded = %d, want 1", c.Superseded())
	}

	c.OnWheelInput(0, 1)
	if c.Mode() != ScrollWheelEasing {
		t.Errorf("mode = %v, want wheel-easing", c.Mode())
	}
	if _, ok := c.Swipe(); ok {
		t.Error("wheel input should cancel the swipe")
	}
	if c.Superseded() != 2 {
		t.Errorf("superseded = %d, want 2", c.Superseded())
	}
}

func TestZeroDistanceSwipeIgnored(t *testing.T) {
	c, vp, _ := newTestController(9580)
	c.RequestSwipeTo(0.2)
	if c.Mode() != ScrollIdle || vp.writes != 0 {
		t.Errorf("mode %v writes %d, want idle with no writes", c.Mode(), vp.writes)
	}
}

func TestUserScrollIgnoredWhileProgrammatic(t *testing.T) {
	c, _, clock := newTestController(9580)
	c.RequestSwipeTo(6800)
	c.Tick(clock.Advance(100 * time.Millisecond))

	if c.OnUserScroll(3000) {
		t.Error("raw scroll accepted during a swipe")
	}
	assertNear(t, "target", c.State().TargetPosition, 6800)
	if c.Mode() != ScrollSwiping {
		t.Errorf("mode = %v, want swiping", c.Mode())
	}
}

func TestUserScrollIgnoresOwnEcho(t *testing.T) {
	c, vp, clock := newTestController(9580)
	c.RequestSwipeTo(6800)
	settle(t, c, clock)

	if c.OnUserScroll(vp.pos) {
		t.Error("echo of the final write should be ignored")
	}
	if !c.OnUserScroll(6000) {
		t.Fatal("genuine raw scroll rejected")
	}
	assertNear(t, "resynced target", c.State().TargetPosition, 6000)
}

func TestUserScrollResyncsAndCancels(t *testing.T) {
	c, _, _ := newTestController(9580)
	if !c.OnUserScroll(20000) {
		t.Fatal("raw scroll rejected while idle")
	}
	assertNear(t, "clamped target", c.State().TargetPosition, 9580)

	c.OnUserScroll(-5)
	assertNear(t, "clamped low", c.State().TargetPosition, 0)
}

func TestSetMaxScrollReclamps(t *testing.T) {
	c, _, _ := newTestController(9580)
	c.OnUserScroll(9000)
	c.SetMaxScroll(100)
	assertNear(t, "target", c.State().TargetPosition, 100)
	c.SetMaxScroll(-10)
	assertNear(t, "max", c.State().MaxPosition, 0)
	assertNear(t, "target", c.State().TargetPosition, 0)
}

func TestTargetAlwaysInRange(t *testing.T) {
	c, _, clock := newTestController(2000)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 2000 {
		switch rng.IntN(5) {
		case 0:
			c.OnWheelInput(rng.Float64()*10-5, rng.Float64()*400-200)
		case 1:
			c.RequestSwipeTo(rng.Float64()*6000 - 2000)
		case 2:
			c.OnUserScroll(rng.Float64()*6000 - 2000)
		case 3:
			c.SetMaxScroll(rng.Float64() * 3000)
		default:
			c.Tick(clock.Advance(time.Duration(rng.IntN(40)) * time.Millisecond))
		}
		st := c.State()
		if st.TargetPosition < 0 || st.TargetPosition > st.MaxPosition {
			t.Fatalf("op %d: target %v outside [0, %v]", i, st.TargetPosition, st.MaxPosition)
		}
	}
}

func TestScrollModeString(t *testing.T) {
	if ScrollIdle.String() != "idle" || ScrollWheelEasing.String() != "wheel-easing" || ScrollSwiping.String() != "swiping" {
		t.Error("mode names")
	}
	if ScrollMode(9).String() != "unknown" {
		t.Error("unknown mode name")
	}
}

// looseViewport accepts any position, so overshoot by the controller shows.
type looseViewport struct{ pos float64 }

func (v *looseViewport) ScrollPosition() float64 { return v.pos }
func (v *looseViewport) ScrollTo(pos float64)    { v.pos = pos }

func TestWritesStayInRangeWhenMaxShrinks(t *testing.T) {
	vp := &looseViewport{}
	clock := newFakeClock()
	c := NewScrollController(vp, DefaultScrollConfig(), WithScrollClock(clock.Now))
	c.SetMaxScroll(5000)

	tick := func(label string) {
		t.Helper()
		active := c.Mode() != ScrollIdle
		c.Tick(clock.Advance(16 * time.Millisecond))
		if !active {
			return
		}
		if st := c.State(); vp.pos < 0 || vp.pos > st.MaxPosition {
			t.Fatalf("%s: wrote %v outside [0, %v]", label, vp.pos, st.MaxPosition)
		}
	}

	c.RequestSwipeTo(5000)
	for range 100 {
		tick("swipe")
	}
	c.SetMaxScroll(800)
	for c.Mode() == ScrollSwiping {
		tick("shrunk swipe")
	}
	assertNear(t, "swipe end", vp.pos, 800)

	for range 10 {
		c.OnWheelInput(0, -100)
	}
	for range 5 {
		tick("ease")
	}
	c.SetMaxScroll(600)
	for c.Mode() == ScrollWheelEasing {
		tick("shrunk ease")
	}

	rng := rand.New(rand.NewPCG(7, 8))
	c.SetMaxScroll(4000)
	for i := range 5000 {
		switch rng.IntN(4) {
		case 0:
			c.OnWheelInput(0, rng.Float64()*400-200)
		case 1:
			c.RequestSwipeTo(rng.Float64() * 5000)
		case 2:
			c.SetMaxScroll(rng.Float64() * 4000)
		default:
			tick(fmt.Sprintf("op %d", i))
		}
	}
}
