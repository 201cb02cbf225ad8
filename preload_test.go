package panorama

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// sizeLoader reports fixed sizes per base name without decoding anything.
func sizeLoader(sizes map[string]ImageSize, fail map[string]bool) LoadFunc {
	return func(_ context.Context, path string) (*ebiten.Image, ImageSize, error) {
		name := filepath.Base(path)
		if fail[name] {
			return nil, ImageSize{}, errors.New("decode failed")
		}
		s, ok := sizes[name]
		if !ok {
			s = ImageSize{Width: 100, Height: 100}
		}
		return nil, s, nil
	}
}

// drainUntilComplete polls the preloader the way the frame loop does.
func drainUntilComplete(t *testing.T, p *Preloader, now time.Time) []LoadResult {
	t.Helper()
	var out []LoadResult
	deadline := time.Now().Add(5 * time.Second)
	for !p.Complete() {
		out = append(out, p.Drain(now)...)
		if time.Now().After(deadline) {
			t.Fatalf("preload stuck at %.2f", p.Progress())
		}
		time.Sleep(time.Millisecond)
	}
	return out
}

func testAssets() []Asset {
	return []Asset{
		{Name: AssetPanorama, Path: "images/pano.jpg"},
		{Name: "say1", Path: "images/say1.png"},
		{Name: "say2", Path: "images/say2.png"},
		{Name: "sprite", Path: "pngs/01.png"},
	}
}

func TestPreloaderLoadsEverything(t *testing.T) {
	cfg := DefaultConfig().Preload
	var mu sync.Mutex
	var paths []string
	load := func(ctx context.Context, path string) (*ebiten.Image, ImageSize, error) {
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return sizeLoader(map[string]ImageSize{"pano.jpg": {Width: 2000, Height: 1000}}, nil)(ctx, path)
	}
	p := NewPreloader("assets", testAssets(), cfg, WithLoadFunc(load))
	defer p.Close()

	start := newFakeClock().Now()
	if p.Progress() != 0 {
		t.Errorf("progress before start = %v", p.Progress())
	}
	p.Start(context.Background(), start)
	results := drainUntilComplete(t, p, start)

	if len(results) != 4 || p.Progress() != 1 {
		t.Errorf("results %d progress %v", len(results), p.Progress())
	}
	if s, ok := p.Size(AssetPanorama); !ok || s != (ImageSize{Width: 2000, Height: 1000}) {
		t.Errorf("panorama size = %v, %v", s, ok)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, path := range paths {
		if filepath.Dir(filepath.Dir(path)) != "assets" {
			t.Errorf("path %q not joined onto the asset dir", path)
		}
	}
}

func TestPreloaderFailuresCountAsDone(t *testing.T) {
	p := NewPreloader("", testAssets(), DefaultConfig().Preload,
		WithLoadFunc(sizeLoader(nil, map[string]bool{"say2.png": true})))
	defer p.Close()

	now := newFakeClock().Now()
	p.Start(context.Background(), now)
	drainUntilComplete(t, p, now)

	if p.Progress() != 1 {
		t.Errorf("progress = %v, want 1", p.Progress())
	}
	if p.loadErr("say2") == nil {
		t.Error("failure not recorded")
	}
	if _, ok := p.Size("say2"); ok {
		t.Error("failed asset has a size")
	}
}

func TestPreloaderLoadedSignal(t *testing.T) {
	cfg := PreloadConfig{
		MinDisplay: Duration(1200 * time.Millisecond),
		FadeHold:   Duration(350 * time.Millisecond),
	}
	p := NewPreloader("", testAssets(), cfg, WithLoadFunc(sizeLoader(nil, nil)))
	defer p.Close()

	clock := newFakeClock()
	start := clock.Now()
	if p.Loaded(start) {
		t.Fatal("loaded before start")
	}
	p.Start(context.Background(), start)
	drainUntilComplete(t, p, clock.Advance(100*time.Millisecond))

	if p.Loaded(start.Add(1200 * time.Millisecond)) {
		t.Error("loaded before the fade hold")
	}
	if op := p.Opacity(start.Add(1200*time.Millisecond + 175*time.Millisecond)); !approxEqual(op, 0.5, 1e-9) {
		t.Errorf("opacity mid-fade = %v, want 0.5", op)
	}
	if !p.Loaded(start.Add(1550 * time.Millisecond)) {
		t.Error("not loaded after min display and fade hold")
	}
	if p.Opacity(start.Add(2*time.Second)) != 0 {
		t.Error("loading screen still visible")
	}
}

func TestPreloaderSlowAssetsDelayLoaded(t *testing.T) {
	cfg := PreloadConfig{MinDisplay: Duration(time.Second), FadeHold: Duration(100 * time.Millisecond)}
	p := NewPreloader("", testAssets(), cfg, WithLoadFunc(sizeLoader(nil, nil)))
	defer p.Close()

	start := newFakeClock().Now()
	p.Start(context.Background(), start)
	done := start.Add(3 * time.Second)
	drainUntilComplete(t, p, done)

	if p.Loaded(done.Add(50 * time.Millisecond)) {
		t.Error("fade hold skipped for slow assets")
	}
	if !p.Loaded(done.Add(100 * time.Millisecond)) {
		t.Error("not loaded after the fade hold")
	}
}

func TestPreloaderRespectsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	load := func(context.Context, string) (*ebiten.Image, ImageSize, error) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil, ImageSize{Width: 1, Height: 1}, nil
	}

	assets := make([]Asset, 12)
	for i := range assets {
		assets[i] = Asset{Name: string(rune('a' + i)), Path: string(rune('a' + i))}
	}
	p := NewPreloader("", assets, PreloadConfig{Concurrency: 2}, WithLoadFunc(load))
	defer p.Close()

	now := newFakeClock().Now()
	p.Start(context.Background(), now)
	drainUntilComplete(t, p, now)
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak.Load())
	}
}

func TestPreloaderEmptyAndClose(t *testing.T) {
	p := NewPreloader("", nil, PreloadConfig{}, WithLoadFunc(sizeLoader(nil, nil)))
	p.Close()

	now := newFakeClock().Now()
	p.Start(context.Background(), now)
	if !p.Complete() || p.Progress() != 1 || !p.Loaded(now) {
		t.Error("empty preloader should be loaded immediately")
	}
	p.Close()
	p.Close()
}
