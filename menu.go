package panorama

import (
	"time"
)

// MenuItem maps a menu label to a scroll target. Items with a Modal image
// open that image in a modal overlay instead of scrolling.
type MenuItem struct {
	Label  string  `json:"label"`
	Target float64 `json:"target"`
	Modal  string  `json:"modal,omitempty"`
}

// MenuConfig describes the navigation bar.
type MenuConfig struct {
	Items []MenuItem `json:"items"`
	// Hold is how long a clicked label stays highlighted.
	Hold       Duration `json:"hold"`
	Left       string   `json:"left"`
	Top        string   `json:"top"`
	Gap        string   `json:"gap"`
	FontSizeVW float64  `json:"fontSizeVW"`
}

// DefaultMenuConfig returns the page's navigation bar.
func DefaultMenuConfig() MenuConfig {
	return MenuConfig{
		Items: []MenuItem{
			{Label: "Character", Target: 0},
			{Label: "Animation", Target: 10000},
			{Label: "Test", Target: 13000},
			{Label: "Goods", Target: 6800},
			{Label: "About Us", Target: 9800, Modal: "images/about.png"},
		},
		Hold:       Duration(900 * time.Millisecond),
		Left:       "14.0625vw",
		Top:        "5.5556vh",
		Gap:        "3.125vw",
		FontSizeVW: 1.1458,
	}
}

// Menu tracks the navigation bar's highlight and hit boxes.
type Menu struct {
	cfg         MenuConfig
	active      int
	activeUntil time.Time
	bounds      []Rect
}

// NewMenu creates a menu with no highlighted label.
func NewMenu(cfg MenuConfig) *Menu {
	return &Menu{cfg: cfg, active: -1}
}

// Items returns the configured items.
func (m *Menu) Items() []MenuItem {
	return m.cfg.Items
}

// Lookup finds the item for label. Unknown labels map to a scroll to the
// start of the page.
func (m *Menu) Lookup(label string) (MenuItem, bool) {
	for _, it := range m.cfg.Items {
		if it.Label == label {
			return it, true
		}
	}
	return MenuItem{Label: label}, false
}

// Activate highlights label until the hold time elapses and returns its item.
func (m *Menu) Activate(label string, now time.Time) MenuItem {
	it, ok := m.Lookup(label)
	m.active = -1
	if ok {
		for i := range m.cfg.Items {
			if m.cfg.Items[i].Label == label {
				m.active = i
				break
			}
		}
	}
	m.activeUntil = now.Add(time.Duration(m.cfg.Hold))
	return it
}

// Active returns the highlighted label, or "" when none is.
func (m *Menu) Active(now time.Time) string {
	if m.active < 0 || !now.Before(m.activeUntil) {
		return ""
	}
	return m.cfg.Items[m.active].Label
}

// Layout computes the hit boxes of every label. measure returns the rendered
// width and height of a label at the given font size.
func (m *Menu) Layout(geo Geometry, measure func(label string, size float64) (float64, float64)) {
	x, _ := ResolveLength(m.cfg.Left, geo)
	y, _ := ResolveLength(m.cfg.Top, geo)
	gap, _ := ResolveLength(m.cfg.Gap, geo)
	size := m.FontSize(geo)

	m.bounds = m.bounds[:0]
	for _, it := range m.cfg.Items {
		w, h := measure(it.Label, size)
		m.bounds = append(m.bounds, Rect{X: x, Y: y, Width: w, Height: h})
		x += w + gap
	}
}

// FontSize returns the label font size in pixels.
func (m *Menu) FontSize(geo Geometry) float64 {
	return max(8, geo.Viewport.Width*m.cfg.FontSizeVW/100)
}

// Bounds returns the hit box of item i from the last Layout.
func (m *Menu) Bounds(i int) Rect {
	if i < 0 || i >= len(m.bounds) {
		return Rect{}
	}
	return m.bounds[i]
}

// HitTest returns the label under (x, y).
func (m *Menu) HitTest(x, y float64) (string, bool) {
	for i, r := range m.bounds {
		if r.Contains(x, y) {
			return m.cfg.Items[i].Label, true
		}
	}
	return "", false
}
