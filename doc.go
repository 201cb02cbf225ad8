// Package panorama is a horizontally scrolling showcase page for
// [Ebitengine].
//
// The page lays a wide panorama image and a row of fixed-width panels on a
// single horizontal track. Vertical wheel input becomes horizontal scroll,
// menu entries swipe to named positions, overlay images reveal and zoom as
// they approach the viewport, and a strip of physics bodies reacts to scroll
// velocity and pointer hover.
//
// # Quick start
//
// Load a [Config], build a [Page], and hand it to ebiten:
//
//	cfg, err := panorama.LoadConfig("panorama.json")
//	if err != nil {
//		return err
//	}
//	page, err := panorama.NewPage(cfg, panorama.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer page.Close()
//	page.Start(ctx)
//	return ebiten.RunGame(page)
//
// # Frame order
//
// Each Update drains finished image loads, recomputes [Geometry] after a
// resize, replays any attached [Script], polls input, and runs the
// per-frame tasks in registration order: the [ScrollController] first, then
// the physics [Engine]. Draw runs the render-synchronized tasks, which copy
// the latest body transforms, and then paints the track, bodies, overlays,
// caption, menu, scrollbar, modal and loading screen.
//
// # Scrolling
//
// [ScrollController] owns the target and live scroll positions. Wheel input
// moves the target and the live position eases toward it every frame.
// [ScrollController.RequestSwipeTo] runs a timed eased animation that
// supersedes any earlier swipe. Writes made by the controller itself are
// recognized when they echo back so they are not mistaken for user input.
//
// # Physics
//
// The [Engine] wraps a Box2D world sized to the physics panel. Scroll
// impulses kick every body in the scroll direction, a gust field lifts
// bodies on a per-body motion profile, and the pointer pushes nearby bodies
// away. Bodies are published through a double buffer so Draw never sees a
// half-stepped world.
//
// # Testing
//
// Everything time dependent takes its clock from [WithClock], and [Page.Step]
// advances one frame without polling the real keyboard or mouse. Scripts
// attached with [WithScript] replay wheel, menu, pointer and screenshot
// actions one per frame once the loading screen has faded.
//
// [Ebitengine]: https://ebitengine.org
package panorama
