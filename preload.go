package panorama

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Asset is one image the page needs before it is considered loaded.
type Asset struct {
	Name string
	Path string
}

// LoadResult is the outcome of loading one asset. Image may be nil when the
// loader only reports dimensions.
type LoadResult struct {
	Name  string
	Image *ebiten.Image
	Size  ImageSize
	Err   error
}

// LoadFunc loads the image at path.
type LoadFunc func(ctx context.Context, path string) (*ebiten.Image, ImageSize, error)

// LoadImageFile decodes an image file into an ebiten image.
func LoadImageFile(_ context.Context, path string) (*ebiten.Image, ImageSize, error) {
	img, src, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, ImageSize{}, err
	}
	b := src.Bounds()
	return img, ImageSize{Width: b.Dx(), Height: b.Dy()}, nil
}

// Preloader loads a fixed set of assets concurrently. Workers only send
// results; the frame goroutine collects them with Drain, so every other
// method must be called from the frame goroutine.
type Preloader struct {
	assets []Asset
	load   LoadFunc
	cfg    PreloadConfig
	log    *zap.Logger

	results  chan LoadResult
	cancel   context.CancelFunc
	finished chan struct{}

	started    time.Time
	completeAt time.Time
	done       int
	images     map[string]*ebiten.Image
	sizes      map[string]ImageSize
	failed     map[string]error
}

// PreloadOption configures a Preloader.
type PreloadOption func(*Preloader)

// WithLoadFunc replaces the image loader.
func WithLoadFunc(fn LoadFunc) PreloadOption {
	return func(p *Preloader) { p.load = fn }
}

// WithPreloadLogger sets the preloader's logger.
func WithPreloadLogger(l *zap.Logger) PreloadOption {
	return func(p *Preloader) { p.log = l }
}

// NewPreloader creates a preloader for assets. Paths are joined onto dir.
func NewPreloader(dir string, assets []Asset, cfg PreloadConfig, opts ...PreloadOption) *Preloader {
	p := &Preloader{
		load:    LoadImageFile,
		cfg:     cfg,
		log:     zap.NewNop(),
		results: make(chan LoadResult, len(assets)),
		images:  make(map[string]*ebiten.Image, len(assets)),
		sizes:   make(map[string]ImageSize, len(assets)),
		failed:  make(map[string]error),
	}
	for _, a := range assets {
		if dir != "" && !filepath.IsAbs(a.Path) {
			a.Path = filepath.Join(dir, a.Path)
		}
		p.assets = append(p.assets, a)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. It does not block.
func (p *Preloader) Start(ctx context.Context, now time.Time) {
	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.started = now
	p.finished = make(chan struct{})
	if len(p.assets) == 0 {
		p.completeAt = now
	}

	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.Concurrency > 0 {
		g.SetLimit(p.cfg.Concurrency)
	}
	go func() {
		defer close(p.finished)
		for _, a := range p.assets {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				img, size, err := p.load(gctx, a.Path)
				if err != nil {
					err = fmt.Errorf("load %s: %w", a.Path, err)
				}
				select {
				case p.results <- LoadResult{Name: a.Name, Image: img, Size: size, Err: err}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Drain collects the results that arrived since the last call without
// blocking. Failed loads count as done and are logged.
func (p *Preloader) Drain(now time.Time) []LoadResult {
	var out []LoadResult
	for {
		select {
		case r := <-p.results:
			p.record(r, now)
			out = append(out, r)
		default:
			return out
		}
	}
}

func (p *Preloader) record(r LoadResult, now time.Time) {
	p.done++
	if r.Err != nil {
		p.failed[r.Name] = r.Err
		p.log.Warn("asset failed", zap.String("asset", r.Name), zap.Error(r.Err))
	} else {
		if r.Image != nil {
			p.images[r.Name] = r.Image
		}
		p.sizes[r.Name] = r.Size
	}
	if p.done == len(p.assets) {
		p.completeAt = now
		p.log.Info("assets loaded",
			zap.Int("total", len(p.assets)),
			zap.Int("failed", len(p.failed)),
			zap.Duration("elapsed", now.Sub(p.started)))
	}
}

// Progress returns the fraction of assets done, in [0, 1].
func (p *Preloader) Progress() float64 {
	if len(p.assets) == 0 {
		return 1
	}
	return float64(p.done) / float64(len(p.assets))
}

// Complete reports whether every asset has finished loading or failed.
func (p *Preloader) Complete() bool {
	return p.done == len(p.assets)
}

// readyAt is when the loading screen starts to fade: all assets are done and
// the minimum display time has passed.
func (p *Preloader) readyAt() time.Time {
	shown := p.started.Add(time.Duration(p.cfg.MinDisplay))
	if p.completeAt.After(shown) {
		return p.completeAt
	}
	return shown
}

// Loaded reports whether the content-loaded signal has fired: everything is
// done, the minimum display time has passed and the fade hold has elapsed.
func (p *Preloader) Loaded(now time.Time) bool {
	if p.cancel == nil || !p.Complete() {
		return false
	}
	return !now.Before(p.readyAt().Add(time.Duration(p.cfg.FadeHold)))
}

// Opacity returns the loading screen's opacity at now.
func (p *Preloader) Opacity(now time.Time) float64 {
	if p.cancel == nil || !p.Complete() {
		return 1
	}
	hold := time.Duration(p.cfg.FadeHold)
	since := now.Sub(p.readyAt())
	if since <= 0 {
		return 1
	}
	if hold <= 0 || since >= hold {
		return 0
	}
	return Lerp(1, 0, float64(since)/float64(hold))
}

// Image returns the loaded image for name, or nil.
func (p *Preloader) Image(name string) *ebiten.Image {
	return p.images[name]
}

// Size returns the decoded size of name.
func (p *Preloader) Size(name string) (ImageSize, bool) {
	s, ok := p.sizes[name]
	return s, ok
}

// loadErr returns the load error of name, if it failed.
func (p *Preloader) loadErr(name string) error {
	return p.failed[name]
}

// Close stops outstanding loads and waits for the workers to exit.
func (p *Preloader) Close() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.finished
}
