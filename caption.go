package panorama

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/ncruces/zenity"
)

// URLOpener opens an external link. It runs off the frame goroutine.
type URLOpener func(url string) error

// Caption is the focusable link control on the physics panel. It can be
// activated by click, or by Enter/Space while focused.
type Caption struct {
	cfg     CaptionConfig
	focused bool
	bounds  Rect
	open    URLOpener
}

// NewCaption creates an unfocused caption.
func NewCaption(cfg CaptionConfig, open URLOpener) *Caption {
	if open == nil {
		open = ConfirmAndOpen
	}
	return &Caption{cfg: cfg, open: open}
}

// Text returns the caption label.
func (c *Caption) Text() string { return c.cfg.Text }

// Focused reports whether the caption holds keyboard focus.
func (c *Caption) Focused() bool { return c.focused }

// SetFocused moves keyboard focus onto or off the caption.
func (c *Caption) SetFocused(f bool) { c.focused = f }

// Layout places the caption inside the physics panel, whose left edge is at
// panelX on the track. Bounds are in track coordinates.
func (c *Caption) Layout(geo Geometry, panelX float64, measure func(string, float64) (float64, float64)) {
	left, _ := ResolveLength(c.cfg.Left, geo)
	top, _ := ResolveLength(c.cfg.Top, geo)
	w, h := measure(c.cfg.Text, c.FontSize(geo))
	c.bounds = Rect{X: panelX + left, Y: top, Width: w, Height: h}
}

// FontSize returns min(vw, vh) font sizing in pixels.
func (c *Caption) FontSize(geo Geometry) float64 {
	return max(8, min(geo.Viewport.Width*c.cfg.FontSizeVW/100, geo.Viewport.Height*c.cfg.FontSizeVH/100))
}

// Bounds returns the caption's hit box from the last Layout.
func (c *Caption) Bounds() Rect { return c.bounds }

// Activate opens the caption URL asynchronously. done, if non-nil, receives
// the opener's result on the opener's goroutine.
func (c *Caption) Activate(done func(error)) {
	url, open := c.cfg.URL, c.open
	go func() {
		err := open(url)
		if done != nil {
			done(err)
		}
	}()
}

// ConfirmAndOpen asks for confirmation with a native dialog and then opens
// url in the system browser. Declining is not an error.
func ConfirmAndOpen(url string) error {
	err := zenity.Question("Open the external test in your browser?\n"+url,
		zenity.Title("Open link"),
		zenity.OKLabel("Open"),
		zenity.CancelLabel("Stay"))
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("confirm dialog: %w", err)
	}
	return openBrowser(url)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return cmd.Process.Release()
}
