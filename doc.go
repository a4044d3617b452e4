// Package hitplot is an interactive hit-testing engine for ellipse plots.
//
// Hitplot derives the x and y scales of a plot from the extents of a set of
// axis-aligned ellipses, tracks which shapes changed between updates, and
// routes pointer events to the nearest shape through a Voronoi tessellation
// of shape centers, so small or overlapping shapes stay easy to hover and
// click.
//
// # Quick start
//
//	chart := hitplot.NewChart(hitplot.DefaultOptions())
//	chart.OnHoverEnter(func(ev hitplot.Event) {
//		fmt.Println("over", ev.EntityIndex, ev.DataPosition)
//	})
//
//	frame := chart.Update(shapes, hitplot.Size{Width: 640, Height: 480})
//	for _, g := range frame.Shapes {
//		if g.PositionChanged {
//			// move the ellipse to g.CX, g.CY with radii g.RX, g.RY
//		}
//	}
//
// Hitplot owns no goroutines and no window. Call [Chart.Tick] once per frame
// and feed pointer input with [Chart.HandlePointer]. The ebitenplot package
// does both for an Ebitengine game:
//
//	layer := ebitenplot.NewLayer(chart, ebitenplot.DefaultStyle(), nil)
//	layer.SetShapes(shapes, hitplot.Rect{X: 20, Y: 20, Width: 600, Height: 440})
//	func (g *Game) Update() error        { return layer.Update() }
//	func (g *Game) Draw(s *ebiten.Image) { layer.Draw(s) }
//
// # Scales
//
// [ComputeScales] inflates each radius by [DefaultBoundMultiplier] so outlines
// are not clipped at the plot edge. A domain collapsed to a single value is
// widened by one percent, or to [-1, 1] around zero, and [ScaleResult]
// reports SinglePoint so renderers can choose a point style.
//
// # Incremental updates
//
// [Chart.Update] runs every shape through a [DiffCache] and reports, per
// shape, whether its position or appearance changed. A scale, domain or
// viewport change marks every shape changed.
//
// # Interaction
//
// Each Update invalidates the interaction layer. Rebuilds are debounced by
// Options.DebounceDelay (300ms by default): a burst of updates produces one
// rebuild after the last of them. Until that rebuild runs the chart is stale
// and drops pointer events rather than dispatch them against geometry that no
// longer matches the data.
//
// Register handlers with [Chart.OnHoverEnter], [Chart.OnHoverMove],
// [Chart.OnHoverExit], [Chart.OnClick] and [Chart.OnDoubleClick]. Hover enter
// and exit also drive [Chart.Highlight], which a legend can call directly.
//
// # Testing
//
// Drive the scheduler with a [ManualClock] and inject input with
// [Chart.InjectMove] and friends, or replay a JSON script with [LoadScript].
// Jitter applied to tessellation sites is seeded by Options.Seed, so the same
// inputs always build the same cells.
//
// # ECS integration
//
// [Chart.SetEntityStore] forwards every dispatched event to an [EntityStore].
// The hitplot/ecs package provides a Donburi adapter and hitplot/metrics a
// Prometheus [MetricsSink].
package hitplot
