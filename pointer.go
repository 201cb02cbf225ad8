package panorama

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// PointerSample is one pointer position in panel-relative screen pixels.
type PointerSample struct {
	X, Y float64
	Time time.Time
}

// PointerSampler turns consecutive pointer samples into an instantaneous
// velocity in pixels per millisecond.
type PointerSampler struct {
	last PointerSample
	has  bool
}

// minSampleInterval keeps velocities finite for samples with equal stamps.
const minSampleInterval = time.Millisecond

// Add records s and returns the velocity since the previous sample. The
// first sample after a reset only primes the sampler and returns false.
func (p *PointerSampler) Add(s PointerSample) (mgl64.Vec2, bool) {
	if !p.has {
		p.last = s
		p.has = true
		return mgl64.Vec2{}, false
	}

	dt := max(minSampleInterval, s.Time.Sub(p.last.Time))
	ms := float64(dt) / float64(time.Millisecond)
	v := mgl64.Vec2{(s.X - p.last.X) / ms, (s.Y - p.last.Y) / ms}
	p.last = s
	return v, true
}

// Reset forgets the previous sample, e.g. when the pointer leaves the panel.
func (p *PointerSampler) Reset() {
	p.has = false
}
