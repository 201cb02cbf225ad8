package panorama

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration is a time.Duration that reads and writes JSON as a Go duration
// string ("3500ms", "1.2s"). Bare numbers are read as milliseconds.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var ms float64
	if err := json.Unmarshal(b, &ms); err == nil {
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*d = Duration(v)
	return nil
}

// WindowConfig sets up the host window.
type WindowConfig struct {
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AssetConfig names the image files of the page, relative to Dir.
type AssetConfig struct {
	Dir         string `json:"dir"`
	Panorama    string `json:"panorama"`
	Background0 string `json:"background0"`
	VideoPoster string `json:"videoPoster"`
	Background1 string `json:"background1"`
}

// PanelConfig holds the fixed widths of the panels after the panorama.
type PanelConfig struct {
	Background0Width float64 `json:"background0Width"`
	VideoWidth       float64 `json:"videoWidth"`
	PhysicsWidth     float64 `json:"physicsWidth"`
}

// Widths returns the panel widths in track order.
func (p PanelConfig) Widths() []float64 {
	return []float64{p.Background0Width, p.VideoWidth, p.PhysicsWidth}
}

// Panel indices in track order.
const (
	PanelBackground0 = iota
	PanelVideo
	PanelPhysics
)

// CaptionConfig places the external-link caption on the physics panel.
type CaptionConfig struct {
	Text   string `json:"text"`
	URL    string `json:"url"`
	Left   string `json:"left"`
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
	// FontSize is resolved against the viewport; the smaller of the two
	// values wins, like CSS min(vw, vh).
	FontSizeVW float64 `json:"fontSizeVW"`
	FontSizeVH float64 `json:"fontSizeVH"`
}

// PreloadConfig tunes the preloader.
type PreloadConfig struct {
	MinDisplay  Duration `json:"minDisplay"`
	FadeHold    Duration `json:"fadeHold"`
	Concurrency int      `json:"concurrency"`
}

// Config is the static configuration of the page, loaded once at startup.
type Config struct {
	Window   WindowConfig    `json:"window"`
	Assets   AssetConfig     `json:"assets"`
	Panels   PanelConfig     `json:"panels"`
	Scroll   ScrollConfig    `json:"scroll"`
	Reveal   RevealParams    `json:"reveal"`
	Overlays []OverlayConfig `json:"overlays"`
	Menu     MenuConfig      `json:"menu"`
	Caption  CaptionConfig   `json:"caption"`
	Physics  PhysicsConfig   `json:"physics"`
	Arena    ArenaConfig     `json:"arena"`
	Bodies   []BodySpec      `json:"bodies"`
	Preload  PreloadConfig   `json:"preload"`
}

// DefaultConfig returns the stock page: its assets, panels, overlays, menu and tuning.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{Title: "Panorama", Width: 1280, Height: 720},
		Assets: AssetConfig{
			Dir:         "assets",
			Panorama:    "images/002-1.jpg",
			Background0: "images/background0.png",
			VideoPoster: "images/video-poster.png",
			Background1: "images/background1.png",
		},
		Panels: PanelConfig{
			Background0Width: 2820,
			VideoWidth:       1920,
			PhysicsWidth:     3840,
		},
		Scroll: DefaultScrollConfig(),
		Reveal: DefaultRevealParams(),
		Overlays: []OverlayConfig{
			{Image: "images/say1.png", Show: "1.0%", Left: "2.25vw", Top: "14vh", Bottom: "46.3vh"},
			{Image: "images/say2.png", Show: "2.4%", Left: "40vw", Top: "34vh", Bottom: "25vh"},
			{Image: "images/say3.png", Show: "4.0%", Left: "50vw", Top: "9.2vh", Bottom: "56.8vh"},
			{Image: "images/say4.png", Show: "7.5%", Left: "70vw", Top: "20.4vh", Bottom: "26vh"},
			{Image: "images/say5.png", Show: "18%", Left: "36vw", Top: "7.4vh", Bottom: "63vh"},
			{Image: "images/say6.png", Show: "32%", Left: "60vw", Top: "0vh", Bottom: "51vh"},
		},
		Menu: DefaultMenuConfig(),
		Caption: CaptionConfig{
			Text:       "GOING FOR A TEST   →",
			URL:        "https://smore.im/quiz/aFbN246J8S",
			Left:       "75vw",
			Top:        "49.0741vh",
			Bottom:     "5.5556vh",
			FontSizeVW: 2.0833,
			FontSizeVH: 3.7037,
		},
		Physics: DefaultPhysicsConfig(),
		Arena:   DefaultArenaConfig(),
		Bodies:  DefaultBodies(),
		Preload: PreloadConfig{
			MinDisplay:  Duration(1200 * time.Millisecond),
			FadeHold:    Duration(350 * time.Millisecond),
			Concurrency: 4,
		},
	}
}

// DefaultBodies returns the five floating sprites of the physics panel.
func DefaultBodies() []BodySpec {
	weights := []struct {
		mass MassParams
		g    float64
	}{
		{MassParams{Density: 0.4, FrictionAir: 0.035, Restitution: 0.92, Friction: 0.18}, 0.32},
		{MassParams{Density: 0.4, FrictionAir: 0.040, Restitution: 0.90, Friction: 0.18}, 0.40},
		{MassParams{Density: 0.4, FrictionAir: 0.046, Restitution: 0.88, Friction: 0.18}, 0.50},
		{MassParams{Density: 0.4, FrictionAir: 0.052, Restitution: 0.86, Friction: 0.18}, 0.62},
		{MassParams{Density: 0.4, FrictionAir: 0.060, Restitution: 0.84, Friction: 0.18}, 0.78},
	}
	sprites := []struct {
		src  string
		x, y float64
	}{
		{"pngs/01-2.png", 960 + 340, 120},
		{"pngs/02-2.png", 960 + 720, 160},
		{"pngs/03.png", 960 + 1120, 90},
		{"pngs/04.png", 960 + 1460, 130},
		{"pngs/05-2.png", 960 + 980, 80},
	}

	const size = 170
	specs := make([]BodySpec, len(sprites))
	for i, s := range sprites {
		w := weights[i%len(weights)]
		specs[i] = BodySpec{
			Sprite:       s.src,
			X:            s.x,
			Y:            s.y,
			Width:        size,
			Height:       size,
			Shape:        Shape{Sides: 8 + i*2, Radius: max(8, size*0.48)},
			Mass:         w.mass,
			GravityScale: w.g,
		}
	}
	return specs
}

// LoadConfig reads a JSON file and overlays it onto DefaultConfig. Fields
// missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every nonsensical value in c.
func (c Config) Validate() error {
	var errs []error
	s := c.Scroll
	if s.Step <= 0 {
		errs = append(errs, fmt.Errorf("scroll.step %v must be positive", s.Step))
	}
	if s.EaseFactor <= 0 || s.EaseFactor > 1 {
		errs = append(errs, fmt.Errorf("scroll.easeFactor %v must be in (0, 1]", s.EaseFactor))
	}
	if s.StopEpsilon <= 0 {
		errs = append(errs, fmt.Errorf("scroll.stopEpsilon %v must be positive", s.StopEpsilon))
	}
	if s.SwipeMin > s.SwipeMax {
		errs = append(errs, fmt.Errorf("scroll.swipeMin %v exceeds swipeMax %v",
			time.Duration(s.SwipeMin), time.Duration(s.SwipeMax)))
	}
	if c.Reveal.AppearRange < 0 {
		errs = append(errs, fmt.Errorf("reveal.appearRange %v must not be negative", c.Reveal.AppearRange))
	}
	for i, w := range c.Panels.Widths() {
		if w < 0 {
			errs = append(errs, fmt.Errorf("panel %d width %v must not be negative", i, w))
		}
	}
	if c.Physics.PixelsPerMeter <= 0 {
		errs = append(errs, fmt.Errorf("physics.pixelsPerMeter %v must be positive", c.Physics.PixelsPerMeter))
	}
	if err := c.Arena.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
