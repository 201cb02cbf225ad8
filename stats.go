package panorama

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
)

// frameStats accumulates per-frame timings. Only populated in debug mode.
type frameStats struct {
	log      *zap.Logger
	enabled  bool
	interval time.Duration

	frames     int
	updateTime time.Duration
	drawTime   time.Duration
	lastReport time.Time
}

func (s *frameStats) addUpdate(d time.Duration) {
	if !s.enabled {
		return
	}
	s.frames++
	s.updateTime += d
}

func (s *frameStats) addDraw(d time.Duration) {
	if s.enabled {
		s.drawTime += d
	}
}

// report logs the averages once per interval and resets them.
func (s *frameStats) report(now time.Time, p *Page) {
	if !s.enabled || s.frames == 0 {
		return
	}
	if s.lastReport.IsZero() {
		s.lastReport = now
		return
	}
	if now.Sub(s.lastReport) < s.interval {
		return
	}
	n := time.Duration(s.frames)
	st := p.scroll.State()
	s.log.Debug("frame stats",
		zap.Int("frames", s.frames),
		zap.Duration("update", s.updateTime/n),
		zap.Duration("draw", s.drawTime/n),
		zap.Float64("scroll", st.LivePosition),
		zap.Float64("target", st.TargetPosition),
		zap.Stringer("mode", p.scroll.Mode()),
		zap.Int("superseded", p.scroll.Superseded()),
		zap.Int("tasks", p.tick.Len()+p.display.Len()),
		zap.Duration("simTime", p.engine.SimTime()))
	s.frames = 0
	s.updateTime, s.drawTime = 0, 0
	s.lastReport = now
}

// drawDebug prints FPS, TPS and the scroll state in the top-left corner.
func (p *Page) drawDebug(screen *ebiten.Image) {
	st := p.scroll.State()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f\nTPS: %.1f\nscroll: %.1f / %.1f\ntarget: %.1f\nmode: %s\nbodies: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		st.LivePosition, st.MaxPosition, st.TargetPosition,
		p.scroll.Mode(), len(p.bodies)))
}
