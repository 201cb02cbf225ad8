package panorama

import (
	"errors"
	"testing"
	"time"
)

func TestCaptionActivateOpensURL(t *testing.T) {
	opened := make(chan string, 1)
	c := NewCaption(DefaultConfig().Caption, func(url string) error {
		opened <- url
		return errors.New("no browser")
	})

	errs := make(chan error, 1)
	c.Activate(func(err error) { errs <- err })

	select {
	case url := <-opened:
		if url != DefaultConfig().Caption.URL {
			t.Errorf("opened %q", url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("opener never called")
	}
	if err := <-errs; err == nil {
		t.Error("opener error not reported")
	}
}

func TestCaptionLayout(t *testing.T) {
	c := NewCaption(DefaultConfig().Caption, func(string) error { return nil })
	geo := scenarioGeometry()
	c.Layout(geo, geo.PanelOffset(PanelPhysics), fixedMeasure)

	r := c.Bounds()
	if !approxEqual(r.X, 6740+750, 1e-9) || !approxEqual(r.Y, 490.741, 1e-9) {
		t.Errorf("bounds = %+v", r)
	}
	if !approxEqual(c.FontSize(geo), 20.833, 1e-9) {
		t.Errorf("font size = %v, want the vw size", c.FontSize(geo))
	}
}

func TestCaptionFocus(t *testing.T) {
	c := NewCaption(CaptionConfig{Text: "go"}, nil)
	if c.Focused() {
		t.Error("caption starts focused")
	}
	c.SetFocused(true)
	if !c.Focused() || c.Text() != "go" {
		t.Error("focus or text mismatch")
	}
}
