package panorama

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(`{
		"exit": true,
		"steps": [
			{"action": "wheel", "dy": 100},
			{"action": "wait", "frames": 3},
			{"action": "menu", "label": "Goods"},
			{"action": "resize", "width": 800, "height": 600}
		]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Exit || len(s.Steps) != 4 {
		t.Fatalf("exit %v steps %d", s.Exit, len(s.Steps))
	}
	if s.Steps[0].DY != 100 || s.Steps[1].Frames != 3 || s.Steps[2].Label != "Goods" || s.Steps[3].Width != 800 {
		t.Errorf("steps = %+v", s.Steps)
	}
}

func TestParseScriptErrors(t *testing.T) {
	if _, err := ParseScript([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ParseScript([]byte(`{"steps": []}`)); !errors.Is(err, ErrEmptyScript) {
		t.Errorf("err = %v, want ErrEmptyScript", err)
	}
	if _, err := ParseScript([]byte(`{"steps": [{"action": "dance"}]}`)); err == nil {
		t.Error("unknown action accepted")
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	if err := os.WriteFile(path, []byte(`{"steps": [{"action": "wait", "frames": 1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScript(path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScript(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing script accepted")
	}
}

func TestScriptQueuesScreenshot(t *testing.T) {
	s, err := ParseScript([]byte(`{"steps": [{"action": "screenshot", "label": "after swipe"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	p := newTestPage(t, nil, WithScript(s))
	p.stepFor(2 * time.Second)
	if !s.Done() {
		t.Fatal("script did not finish")
	}
	if len(p.shots) != 1 || p.shots[0] != "after swipe" {
		t.Errorf("queued shots = %q", p.shots)
	}
}
