package panorama

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrEmptyScript is returned when a script has no steps.
var ErrEmptyScript = errors.New("panorama: script has no steps")

// ScriptStep is a single action in an input script.
type ScriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// Script replays input into a Page, one step per frame. Attach it with
// WithScript.
type Script struct {
	// Exit ends the game loop once every step has run.
	Exit  bool         `json:"exit"`
	Steps []ScriptStep `json:"steps"`

	cursor    int
	waitCount int
	done      bool
}

// ParseScript parses a JSON input script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrEmptyScript)
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "wheel", "scroll", "menu", "pointer", "click", "resize", "wait", "close", "screenshot":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &s, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// Done reports whether every step has run.
func (s *Script) Done() bool {
	return s.done
}

// step runs at most one action. Called from the page's frame before input.
func (s *Script) step(p *Page, now time.Time) {
	if s.done {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.Steps) {
		s.done = true
		return
	}

	st := s.Steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "wheel":
		p.Wheel(st.DX, st.DY)
	case "scroll":
		p.ScrollRaw(st.Y)
	case "menu":
		p.Navigate(st.Label)
	case "pointer":
		p.PointerMove(st.X, st.Y, now)
	case "click":
		p.Click(st.X, st.Y)
	case "resize":
		p.Resize(st.Width, st.Height)
	case "close":
		p.CloseModal()
	case "screenshot":
		p.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.Steps) && s.waitCount == 0 {
		s.done = true
	}
}
