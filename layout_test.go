package panorama

import "testing"

var pagePanels = []float64{2820, 1920, 3840}

func TestComputeGeometryScenarioA(t *testing.T) {
	geo := ComputeGeometry(ImageSize{Width: 2000, Height: 1000}, Size{Width: 1000, Height: 1000}, pagePanels)

	assertNear(t, "panorama width", geo.PanoramaWidth, 2000)
	assertNear(t, "track width", geo.TrackWidth, 10580)
	assertNear(t, "max scroll", geo.MaxScroll, 9580)
	assertNear(t, "page height", geo.PageHeight, 10580)
	if !geo.Known() {
		t.Error("geometry should be known")
	}
}

func TestComputeGeometryUnknownImage(t *testing.T) {
	geo := ComputeGeometry(ImageSize{}, Size{Width: 1280, Height: 720}, pagePanels)
	if geo.Known() {
		t.Error("geometry should be unknown")
	}
	assertNear(t, "max scroll", geo.MaxScroll, 0)
	assertNear(t, "page height", geo.PageHeight, 720)
}

func TestComputeGeometryNeverNegative(t *testing.T) {
	geo := ComputeGeometry(ImageSize{Width: 100, Height: 100}, Size{Width: 50000, Height: 100}, nil)
	assertNear(t, "max scroll", geo.MaxScroll, 0)
}

func TestComputeGeometryScalesWithViewportHeight(t *testing.T) {
	geo := ComputeGeometry(ImageSize{Width: 2000, Height: 1000}, Size{Width: 1000, Height: 500}, pagePanels)
	assertNear(t, "panorama width", geo.PanoramaWidth, 1000)
	assertNear(t, "max scroll", geo.MaxScroll, 1000+2820+1920+3840-1000)
}

func TestPanelOffsets(t *testing.T) {
	geo := ComputeGeometry(ImageSize{Width: 2000, Height: 1000}, Size{Width: 1000, Height: 1000}, pagePanels)
	if len(geo.panels) != 3 {
		t.Fatalf("panels = %v, want 3", geo.panels)
	}
	assertNear(t, "offset 0", geo.PanelOffset(0), 2000)
	assertNear(t, "offset 1", geo.PanelOffset(1), 4820)
	assertNear(t, "offset 2", geo.PanelOffset(PanelPhysics), 6740)
	assertNear(t, "offset past end", geo.PanelOffset(7), 10580)
	assertNear(t, "width 1", geo.PanelWidth(PanelVideo), 1920)
	assertNear(t, "width out of range", geo.PanelWidth(-1), 0)
}

func TestComputeGeometryCopiesPanels(t *testing.T) {
	panels := []float64{100, 200}
	geo := ComputeGeometry(ImageSize{Width: 10, Height: 10}, Size{Width: 10, Height: 10}, panels)
	panels[0] = 999
	assertNear(t, "width 0", geo.PanelWidth(0), 100)
}
