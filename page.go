package panorama

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

// Asset names of the track images. Every other asset is named by its path.
const (
	AssetPanorama    = "panorama"
	AssetBackground0 = "background0"
	AssetVideoPoster = "video-poster"
	AssetBackground1 = "background1"
)

const (
	// wheelLinePixels converts one wheel notch into a pixel delta.
	wheelLinePixels = 100
	arrowScroll     = 80
	scrollbarHeight = 8
	scrollbarMinW   = 40
)

// pageViewport is the page's scroll surface. Like a browser document it
// clamps every write to its own range.
type pageViewport struct {
	pos, max float64
}

func (v *pageViewport) ScrollPosition() float64 { return v.pos }

func (v *pageViewport) ScrollTo(pos float64) { v.pos = Clamp(pos, 0, v.max) }

func (v *pageViewport) setMax(m float64) {
	v.max = m
	v.pos = Clamp(v.pos, 0, m)
}

// Page is the horizontally scrolling page. It implements ebiten.Game.
//
// Update runs, in order: asset results, relayout, scripted or real input,
// raw scroll observation, the tick scheduler (scroll then physics) and the
// overlay pass. Draw runs the display scheduler (render sync) and paints.
type Page struct {
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
	seed   uint64
	seeded bool
	debug  bool
	script *Script
	load   LoadFunc
	open   URLOpener

	viewport *pageViewport
	scroll   *ScrollController
	engine   *Engine
	tick     *Scheduler
	display  *Scheduler
	sampler  PointerSampler
	menu     *Menu
	caption  *Caption
	preload  *Preloader
	stats    frameStats
	fonts    *text.GoTextFaceSource

	size     Size
	img      ImageSize
	geo      Geometry
	dirty    bool
	lastSeen float64

	overlays []OverlayRenderState
	bodies   []BodyTransform
	modal    string
	shots    []string
	shotDir  string

	dragging   bool
	dragOffset float64
	ctx        context.Context
	started    bool
	closed     bool
}

// Option configures a Page.
type Option func(*Page)

// WithLogger sets the page's logger. Components log under named children.
func WithLogger(l *zap.Logger) Option {
	return func(p *Page) { p.log = l }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Page) { p.now = now }
}

// WithSeed fixes the physics random seed.
func WithSeed(seed uint64) Option {
	return func(p *Page) { p.seed, p.seeded = seed, true }
}

// WithScript replays s instead of reading real input. The script starts once
// the content-loaded signal fires.
func WithScript(s *Script) Option {
	return func(p *Page) { p.script = s }
}

// WithDebug enables the stats overlay and per-second stats logging.
func WithDebug(debug bool) Option {
	return func(p *Page) { p.debug = debug }
}

// WithLoader replaces the asset loader.
func WithLoader(fn LoadFunc) Option {
	return func(p *Page) { p.load = fn }
}

// WithScreenshotDir sets where Screenshot writes its files.
func WithScreenshotDir(dir string) Option {
	return func(p *Page) { p.shotDir = dir }
}

// WithURLOpener replaces the caption's link opener.
func WithURLOpener(fn URLOpener) Option {
	return func(p *Page) { p.open = fn }
}

// NewPage builds a page from cfg. Call Start before the first frame.
func NewPage(cfg Config, opts ...Option) (*Page, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	p := &Page{
		cfg:      cfg,
		log:      zap.NewNop(),
		now:      time.Now,
		viewport: &pageViewport{},
		tick:     &Scheduler{},
		display:  &Scheduler{},
		size:     Size{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)},
		dirty:    true,
		overlays: make([]OverlayRenderState, len(cfg.Overlays)),
		shotDir:  "screenshots",
	}
	for _, opt := range opts {
		opt(p)
	}

	fonts, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	p.fonts = fonts

	p.scroll = NewScrollController(p.viewport, cfg.Scroll,
		WithScrollLogger(p.log.Named("scroll")),
		WithScrollClock(p.now))

	eopts := []EngineOption{WithEngineLogger(p.log.Named("physics"))}
	if p.seeded {
		eopts = append(eopts, WithEngineSeed(p.seed))
	}
	p.engine = NewEngine(cfg.Physics, eopts...)

	popts := []PreloadOption{WithPreloadLogger(p.log.Named("preload"))}
	if p.load != nil {
		popts = append(popts, WithLoadFunc(p.load))
	}
	p.preload = NewPreloader(cfg.Assets.Dir, pageAssets(cfg), cfg.Preload, popts...)

	p.menu = NewMenu(cfg.Menu)
	p.caption = NewCaption(cfg.Caption, p.open)
	p.stats = frameStats{log: p.log.Named("stats"), enabled: p.debug, interval: time.Second}
	return p, nil
}

// pageAssets lists every image the page loads, without duplicates.
func pageAssets(cfg Config) []Asset {
	assets := []Asset{
		{Name: AssetPanorama, Path: cfg.Assets.Panorama},
		{Name: AssetBackground0, Path: cfg.Assets.Background0},
		{Name: AssetVideoPoster, Path: cfg.Assets.VideoPoster},
		{Name: AssetBackground1, Path: cfg.Assets.Background1},
	}
	seen := map[string]bool{}
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		assets = append(assets, Asset{Name: path, Path: path})
	}
	for _, o := range cfg.Overlays {
		add(o.Image)
	}
	for _, b := range cfg.Bodies {
		add(b.Sprite)
	}
	for _, it := range cfg.Menu.Items {
		add(it.Modal)
	}
	return assets
}

// Start begins asset loading and builds the physics world. A physics failure
// is logged and leaves scrolling and overlays running.
func (p *Page) Start(ctx context.Context) {
	if p.started {
		return
	}
	p.started = true
	p.ctx = ctx
	now := p.now()
	p.preload.Start(ctx, now)

	p.tick.Schedule("scroll", func(now time.Time) bool {
		p.scroll.Tick(now)
		return true
	})
	if err := p.engine.Initialize(p.cfg.Bodies, p.cfg.Arena); err != nil {
		p.log.Error("physics disabled", zap.Error(err))
		return
	}
	p.engine.Attach(p.tick, p.display, p.syncBodies)
}

// Close cancels every scheduled task, tears down the physics world and stops
// the preloader. It is safe to call more than once.
func (p *Page) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.tick.CancelAll()
	p.display.CancelAll()
	p.engine.Teardown()
	p.preload.Close()
}

// Update implements ebiten.Game.
func (p *Page) Update() error {
	if p.ctx != nil && p.ctx.Err() != nil {
		return ebiten.Termination
	}
	p.frame(p.now(), p.script == nil)
	if p.script != nil && p.script.Done() && p.script.Exit {
		return ebiten.Termination
	}
	return nil
}

// Step advances one frame at now without reading real input. Scripts still
// run.
func (p *Page) Step(now time.Time) {
	p.frame(now, false)
}

func (p *Page) frame(now time.Time, poll bool) {
	start := time.Now()

	for _, r := range p.preload.Drain(now) {
		if r.Err == nil {
			p.OnImageLoaded(r.Name, r.Size)
		}
	}
	if p.dirty {
		p.relayout()
	}

	if p.script != nil && p.preload.Loaded(now) {
		p.script.step(p, now)
	}
	if poll {
		p.pollInput(now)
	}

	p.observeScroll()
	p.tick.RunFrame(now)
	p.updateOverlays()

	p.stats.addUpdate(time.Since(start))
	p.stats.report(now, p)
}

// Layout implements ebiten.Game.
func (p *Page) Layout(outsideWidth, outsideHeight int) (int, int) {
	p.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Resize sets the viewport size; geometry is recomputed on the next frame.
func (p *Page) Resize(width, height float64) {
	s := Size{Width: width, Height: height}
	if s != p.size {
		p.size = s
		p.dirty = true
	}
}

// OnImageLoaded records a decoded image size. The panorama's size resolves
// the track geometry; other sizes size the overlays.
func (p *Page) OnImageLoaded(name string, size ImageSize) {
	if name == AssetPanorama {
		p.img = size
	}
	p.dirty = true
}

func (p *Page) relayout() {
	p.dirty = false
	p.geo = ComputeGeometry(p.img, p.size, p.cfg.Panels.Widths())
	p.viewport.setMax(p.geo.MaxScroll)
	p.scroll.SetMaxScroll(p.geo.MaxScroll)
	p.menu.Layout(p.geo, p.measure)
	p.caption.Layout(p.geo, p.geo.PanelOffset(PanelPhysics), p.measure)
	p.log.Debug("layout",
		zap.Float64("width", p.geo.Viewport.Width),
		zap.Float64("height", p.geo.Viewport.Height),
		zap.Float64("maxScroll", p.geo.MaxScroll))
}

func (p *Page) measure(s string, size float64) (float64, float64) {
	return text.Measure(s, &text.GoTextFace{Source: p.fonts, Size: size}, 0)
}

// Wheel handles a wheel event with browser-style pixel deltas (positive y
// scrolls forward). The physics kick lands in the same frame as the target
// step.
func (p *Page) Wheel(dx, dy float64) {
	if p.modal != "" {
		return
	}
	p.scroll.OnWheelInput(dx, dy)
	p.engine.ApplyImpulse(dx, dy)
}

// ScrollRaw moves the viewport directly, the way native scrolling does. The
// controller sees the change on the next observation.
func (p *Page) ScrollRaw(pos float64) {
	if p.modal != "" {
		return
	}
	p.viewport.ScrollTo(pos)
}

// Navigate activates a menu label: a swipe to its target, or its modal.
func (p *Page) Navigate(label string) {
	if p.modal != "" {
		return
	}
	it := p.menu.Activate(label, p.now())
	if it.Modal != "" {
		p.modal = it.Modal
		p.log.Debug("modal opened", zap.String("image", it.Modal))
		return
	}
	p.scroll.RequestSwipeTo(it.Target)
}

// CloseModal dismisses the open modal, if any.
func (p *Page) CloseModal() {
	p.modal = ""
}

// Modal returns the image of the open modal, or "".
func (p *Page) Modal() string {
	return p.modal
}

// PointerMove feeds a pointer sample in screen pixels. Motion over the
// physics panel becomes a hover field; leaving the panel resets the sampler
// so re-entry starts a fresh velocity.
func (p *Page) PointerMove(x, y float64, t time.Time) {
	pt, ok := p.hoverPoint(x, y)
	if !ok {
		p.sampler.Reset()
		return
	}
	vel, ok := p.sampler.Add(PointerSample{X: pt.X(), Y: pt.Y(), Time: t})
	if !ok || !p.engine.Ready() {
		return
	}
	p.engine.ApplyHoverField(pt, vel)
}

// hoverPoint maps a screen point into physics panel pixels, reporting false
// when the point is outside the panel.
func (p *Page) hoverPoint(x, y float64) (mgl64.Vec2, bool) {
	px := p.physicsPanel()
	if x < px || x > px+p.geo.PanelWidth(PanelPhysics) || y < 0 || y > p.geo.Viewport.Height {
		return mgl64.Vec2{}, false
	}
	return mgl64.Vec2{x - px, y}, true
}

// physicsPanel returns the screen x of the physics panel. The panel content
// is pixel-fixed: arena pixels are screen pixels at any viewport size.
func (p *Page) physicsPanel() float64 {
	return p.geo.PanelOffset(PanelPhysics) - p.viewport.ScrollPosition()
}

// Click handles a primary-button press at (x, y) in screen pixels.
func (p *Page) Click(x, y float64) {
	if p.modal != "" {
		p.CloseModal()
		return
	}
	if label, ok := p.menu.HitTest(x, y); ok {
		p.Navigate(label)
		return
	}
	if p.captionScreen().Contains(x, y) {
		p.caption.SetFocused(true)
		p.activateCaption()
		return
	}
	if r, thumb := p.scrollbar(); r.Contains(x, y) {
		p.dragging = true
		p.dragOffset = x - thumb.X
		if !thumb.Contains(x, y) {
			p.dragOffset = thumb.Width / 2
		}
		p.dragScrollbar(x)
	}
}

func (p *Page) captionScreen() Rect {
	r := p.caption.Bounds()
	r.X -= p.viewport.ScrollPosition()
	return r
}

func (p *Page) activateCaption() {
	log := p.log
	p.caption.Activate(func(err error) {
		if err != nil {
			log.Warn("open link", zap.Error(err))
		}
	})
}

// scrollbar returns the track and thumb rectangles along the bottom edge.
func (p *Page) scrollbar() (track, thumb Rect) {
	vw, vh := p.geo.Viewport.Width, p.geo.Viewport.Height
	track = Rect{X: 0, Y: vh - scrollbarHeight, Width: vw, Height: scrollbarHeight}
	if p.geo.MaxScroll <= 0 || p.geo.TrackWidth <= 0 {
		return track, Rect{}
	}
	w := Clamp(vw*vw/p.geo.TrackWidth, scrollbarMinW, vw)
	x := p.viewport.ScrollPosition() / p.geo.MaxScroll * (vw - w)
	return track, Rect{X: x, Y: track.Y, Width: w, Height: scrollbarHeight}
}

func (p *Page) dragScrollbar(x float64) {
	track, thumb := p.scrollbar()
	room := track.Width - thumb.Width
	if room <= 0 {
		return
	}
	p.ScrollRaw((x - p.dragOffset) / room * p.geo.MaxScroll)
}

// observeScroll compares the viewport with the last observed position. A
// change the controller accepts as user input kicks the bodies.
func (p *Page) observeScroll() {
	pos := p.viewport.ScrollPosition()
	if pos == p.lastSeen {
		return
	}
	dy := pos - p.lastSeen
	p.lastSeen = pos
	if p.scroll.OnUserScroll(pos) {
		p.engine.ApplyImpulse(0, dy)
	}
}

func (p *Page) updateOverlays() {
	pos := p.viewport.ScrollPosition()
	for i, o := range p.cfg.Overlays {
		p.overlays[i] = ComputeOverlayState(o, pos, p.overlayWidth(i), p.geo, p.cfg.Reveal)
	}
}

// overlaySize is the unscaled size of overlay i: the image at its natural
// size, shrunk to fit the box height but never enlarged. Zero until the
// image is decoded.
func (p *Page) overlaySize(i int) (float64, float64) {
	o := p.cfg.Overlays[i]
	s, ok := p.preload.Size(o.Image)
	if !ok || !s.Known() {
		return 0, 0
	}
	k := 1.0
	if h := o.Box(p.geo).MaxHeight; h > 0 {
		k = min(1, h/float64(s.Height))
	}
	return float64(s.Width) * k, float64(s.Height) * k
}

func (p *Page) overlayWidth(i int) float64 {
	w, _ := p.overlaySize(i)
	return w
}

// overlayRect is where overlay i lands on screen this frame. Scaling is
// anchored at the top-left corner, so the left edge follows TranslateX.
func (p *Page) overlayRect(i int) Rect {
	st := p.overlays[i]
	box := p.cfg.Overlays[i].Box(p.geo)
	w, h := p.overlaySize(i)
	return Rect{X: box.Left + st.TranslateX, Y: box.Top, Width: w * st.Scale, Height: h * st.Scale}
}

func (p *Page) syncBodies(ts []BodyTransform) {
	p.bodies = append(p.bodies[:0], ts...)
}

// pollInput reads real input from ebiten.
func (p *Page) pollInput(now time.Time) {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	p.PointerMove(x, y, now)

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		p.Wheel(-wx*wheelLinePixels, -wy*wheelLinePixels)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		p.Click(x, y)
	}
	if p.dragging {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			p.dragScrollbar(x)
		} else {
			p.dragging = false
		}
	}

	p.pollKeys()

	_, onMenu := p.menu.HitTest(x, y)
	if onMenu || p.captionScreen().Contains(x, y) {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

func (p *Page) pollKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		p.CloseModal()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		p.caption.SetFocused(!p.caption.Focused())
	}
	if p.caption.Focused() && (inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace)) {
		p.activateCaption()
	}

	for i, it := range p.cfg.Menu.Items {
		if i < len(digitKeys) && inpututil.IsKeyJustPressed(digitKeys[i]) {
			p.Navigate(it.Label)
		}
	}

	pos := p.viewport.ScrollPosition()
	page := p.geo.Viewport.Width * 0.9
	switch {
	case repeating(ebiten.KeyArrowRight), repeating(ebiten.KeyArrowDown):
		p.ScrollRaw(pos + arrowScroll)
	case repeating(ebiten.KeyArrowLeft), repeating(ebiten.KeyArrowUp):
		p.ScrollRaw(pos - arrowScroll)
	case repeating(ebiten.KeyPageDown):
		p.ScrollRaw(pos + page)
	case repeating(ebiten.KeyPageUp):
		p.ScrollRaw(pos - page)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		p.ScrollRaw(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		p.ScrollRaw(p.geo.MaxScroll)
	}
}

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// repeating reports a key press and its auto-repeat.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > 30 && d%4 == 0)
}

// ScrollState returns the controller snapshot.
func (p *Page) ScrollState() ScrollState {
	return p.scroll.State()
}

// ScrollMode returns the active scroll driver.
func (p *Page) ScrollMode() ScrollMode {
	return p.scroll.Mode()
}

// Geometry returns the current layout.
func (p *Page) Geometry() Geometry {
	return p.geo
}

// Overlays returns the overlay states of the last frame.
func (p *Page) Overlays() []OverlayRenderState {
	return p.overlays
}

// Bodies returns the body transforms of the last render sync.
func (p *Page) Bodies() []BodyTransform {
	return p.bodies
}

// Engine returns the physics engine.
func (p *Page) Engine() *Engine {
	return p.engine
}

// Menu returns the navigation bar.
func (p *Page) Menu() *Menu {
	return p.menu
}

// Loaded reports whether the content-loaded signal has fired.
func (p *Page) Loaded() bool {
	return p.preload.Loaded(p.now())
}

// Progress returns the asset loading progress in [0, 1].
func (p *Page) Progress() float64 {
	return p.preload.Progress()
}
