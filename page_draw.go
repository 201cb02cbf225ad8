package panorama

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorBackground  = Color{R: 0.09, G: 0.09, B: 0.11, A: 1}
	colorPlaceholder = Color{R: 0.18, G: 0.18, B: 0.22, A: 1}
	colorBody        = Color{R: 0.95, G: 0.78, B: 0.35, A: 0.9}
	colorMenu        = Color{R: 1, G: 1, B: 1, A: 0.85}
	colorMenuActive  = Color{R: 1, G: 0.82, B: 0.2, A: 1}
	colorScrollTrack = Color{R: 1, G: 1, B: 1, A: 0.12}
	colorScrollThumb = Color{R: 1, G: 1, B: 1, A: 0.55}
	colorScrim       = Color{R: 0, G: 0, B: 0, A: 0.7}
	colorFocus       = Color{R: 1, G: 0.82, B: 0.2, A: 1}
)

// Draw implements ebiten.Game.
func (p *Page) Draw(screen *ebiten.Image) {
	start := time.Now()
	now := p.now()
	p.display.RunFrame(now)

	screen.Fill(colorBackground.RGBA())
	scroll := p.viewport.ScrollPosition()

	p.drawTrack(screen, scroll)
	p.drawBodies(screen)
	p.drawOverlays(screen)
	p.drawCaption(screen)
	p.drawMenu(screen, now)
	p.drawScrollbar(screen)
	p.drawModal(screen)
	p.drawPreloader(screen, now)
	if p.debug {
		p.drawDebug(screen)
	}
	p.flushScreenshots(screen)
	p.stats.addDraw(time.Since(start))
}

// drawImage draws img stretched into the rectangle, or a placeholder while
// the image is missing.
func drawImage(dst, img *ebiten.Image, r Rect, alpha float64) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	if img == nil {
		c := colorPlaceholder
		c.A *= alpha
		fillRect(dst, r, c)
		return
	}
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.Width/float64(b.Dx()), r.Height/float64(b.Dy()))
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

func fillRect(dst *ebiten.Image, r Rect, c Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), c.RGBA(), false)
}

// drawTrack draws the panorama and the panels that intersect the viewport.
func (p *Page) drawTrack(screen *ebiten.Image, scroll float64) {
	g := p.geo
	vw, vh := g.Viewport.Width, g.Viewport.Height
	visible := func(r Rect) bool { return r.X < vw && r.X+r.Width > 0 }

	pano := Rect{X: -scroll, Y: 0, Width: g.PanoramaWidth, Height: vh}
	if visible(pano) {
		drawImage(screen, p.preload.Image(AssetPanorama), pano, 1)
	}
	for i, name := range [...]string{AssetBackground0, AssetVideoPoster, AssetBackground1} {
		r := Rect{X: g.PanelOffset(i) - scroll, Y: 0, Width: g.PanelWidth(i), Height: vh}
		if visible(r) {
			drawImage(screen, p.preload.Image(name), r, 1)
		}
	}
}

// drawBodies draws the published body transforms onto the physics panel.
func (p *Page) drawBodies(screen *ebiten.Image) {
	px := p.physicsPanel()
	for _, b := range p.bodies {
		img := p.preload.Image(b.Sprite)
		c := b.Center()
		sx, sy := px+c.X(), c.Y()
		if img == nil {
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(b.Width/2), colorBody.RGBA(), true)
			continue
		}
		ib := img.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-float64(ib.Dx())/2, -float64(ib.Dy())/2)
		op.GeoM.Scale(b.Width/float64(ib.Dx()), b.Height/float64(ib.Dy()))
		op.GeoM.Rotate(b.Angle)
		op.GeoM.Translate(sx, sy)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(img, op)
	}
}

// drawOverlays draws the visible overlays, scaled from their top-left corner.
func (p *Page) drawOverlays(screen *ebiten.Image) {
	for i, st := range p.overlays {
		if !st.Visible {
			continue
		}
		img := p.preload.Image(p.cfg.Overlays[i].Image)
		if img == nil {
			continue
		}
		drawImage(screen, img, p.overlayRect(i), 1)
	}
}

func (p *Page) face(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: p.fonts, Size: size}
}

func drawText(dst *ebiten.Image, s string, face text.Face, x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.RGBA())
	text.Draw(dst, s, face, op)
}

func (p *Page) drawCaption(screen *ebiten.Image) {
	r := p.captionScreen()
	if r.X > p.geo.Viewport.Width || r.X+r.Width < 0 {
		return
	}
	drawText(screen, p.caption.Text(), p.face(p.caption.FontSize(p.geo)), r.X, r.Y, ColorWhite)
	if p.caption.Focused() {
		vector.StrokeRect(screen, float32(r.X-6), float32(r.Y-4), float32(r.Width+12), float32(r.Height+8), 2, colorFocus.RGBA(), true)
	}
}

func (p *Page) drawMenu(screen *ebiten.Image, now time.Time) {
	face := p.face(p.menu.FontSize(p.geo))
	active := p.menu.Active(now)
	for i, it := range p.menu.Items() {
		r := p.menu.Bounds(i)
		c := colorMenu
		if it.Label == active {
			c = colorMenuActive
		}
		drawText(screen, it.Label, face, r.X, r.Y, c)
	}
}

func (p *Page) drawScrollbar(screen *ebiten.Image) {
	track, thumb := p.scrollbar()
	if thumb.Width <= 0 {
		return
	}
	fillRect(screen, track, colorScrollTrack)
	fillRect(screen, thumb, colorScrollThumb)
}

// drawModal draws the open modal image centered over a scrim.
func (p *Page) drawModal(screen *ebiten.Image) {
	if p.modal == "" {
		return
	}
	vw, vh := p.geo.Viewport.Width, p.geo.Viewport.Height
	fillRect(screen, Rect{Width: vw, Height: vh}, colorScrim)

	img := p.preload.Image(p.modal)
	if img == nil {
		return
	}
	b := img.Bounds()
	s := min(vw*0.9/float64(b.Dx()), vh*0.9/float64(b.Dy()), 1)
	w, h := float64(b.Dx())*s, float64(b.Dy())*s
	drawImage(screen, img, Rect{X: (vw - w) / 2, Y: (vh - h) / 2, Width: w, Height: h}, 1)
}

// drawPreloader draws the loading screen with its progress bar until the
// fade completes.
func (p *Page) drawPreloader(screen *ebiten.Image, now time.Time) {
	alpha := p.preload.Opacity(now)
	if alpha <= 0 {
		return
	}
	vw, vh := p.geo.Viewport.Width, p.geo.Viewport.Height
	bg := colorBackground
	bg.A = alpha
	fillRect(screen, Rect{Width: vw, Height: vh}, bg)

	bar := Rect{X: vw * 0.3, Y: vh/2 - 2, Width: vw * 0.4, Height: 4}
	track := colorScrollTrack
	track.A *= alpha
	fillRect(screen, bar, track)
	bar.Width *= p.preload.Progress()
	fill := ColorWhite
	fill.A = alpha
	fillRect(screen, bar, fill)
}
