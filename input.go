package hitplot

import "slices"

// PointerInput is one raw pointer event in plot-relative pixels.
type PointerInput struct {
	Kind PointerKind
	X, Y float64
	// Raw is the source event, passed through to handlers untouched.
	Raw any
}

// Event is the payload delivered to interaction handlers.
type Event struct {
	Type        EventType
	Entity      Shape
	EntityIndex int

	// PlotRelativePosition is the entity's center in container pixels:
	// origin + margin + (x(cx), y(cy)).
	PlotRelativePosition Vec2
	// ScreenPosition is PlotRelativePosition shifted by the tooltip offset.
	ScreenPosition Vec2
	// PointerPosition is where the pointer was, in plot-relative pixels.
	PointerPosition Vec2
	// DataPosition is PointerPosition mapped back through the scales.
	DataPosition Vec2

	Raw any
}

// EntityStore is the interface for optional ECS integration.
// When set on a Chart, dispatched events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type        EventType
	EntityIndex int
	Series      int
	PointerX    float64
	PointerY    float64
	DataX       float64
	DataY       float64
}

// --- Handler registry ---

type eventHandler struct {
	id uint32
	fn func(Event)
}

type handlerRegistry struct {
	hoverEnter  []eventHandler
	hoverMove   []eventHandler
	hoverExit   []eventHandler
	click       []eventHandler
	doubleClick []eventHandler
	nextID      uint32
}

func (r *handlerRegistry) list(t EventType) *[]eventHandler {
	switch t {
	case EventHoverEnter:
		return &r.hoverEnter
	case EventHoverMove:
		return &r.hoverMove
	case EventHoverExit:
		return &r.hoverExit
	case EventClick:
		return &r.click
	case EventDoubleClick:
		return &r.doubleClick
	}
	return nil
}

func (r *handlerRegistry) add(t EventType, fn func(Event)) CallbackHandle {
	r.nextID++
	l := r.list(t)
	*l = append(*l, eventHandler{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, event: t}
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires. Removing twice is
// a no-op.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	l := h.reg.list(h.event)
	if l == nil {
		return
	}
	*l = removeHandler(*l, h.id)
}

// removeHandler returns s without the handler id in a new backing array, so
// a dispatch loop ranging over s is unaffected.
func removeHandler(s []eventHandler, id uint32) []eventHandler {
	i := slices.IndexFunc(s, func(h eventHandler) bool { return h.id == id })
	if i < 0 {
		return s
	}
	out := make([]eventHandler, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// --- Chart-level event registration ---

// OnHoverEnter registers a callback for the pointer entering an entity.
func (c *Chart) OnHoverEnter(fn func(Event)) CallbackHandle {
	return c.handlers.add(EventHoverEnter, fn)
}

// OnHoverMove registers a callback for pointer movement over an entity.
func (c *Chart) OnHoverMove(fn func(Event)) CallbackHandle {
	return c.handlers.add(EventHoverMove, fn)
}

// OnHoverExit registers a callback for the pointer leaving an entity.
func (c *Chart) OnHoverExit(fn func(Event)) CallbackHandle {
	return c.handlers.add(EventHoverExit, fn)
}

// OnClick registers a callback for clicks on an entity.
func (c *Chart) OnClick(fn func(Event)) CallbackHandle {
	return c.handlers.add(EventClick, fn)
}

// OnDoubleClick registers a callback for double clicks on an entity.
func (c *Chart) OnDoubleClick(fn func(Event)) CallbackHandle {
	return c.handlers.add(EventDoubleClick, fn)
}

// --- Pointer handling ---

// HandlePointer routes a pointer event to the entity under it. Events are
// dropped while the interaction layer is stale, when the chart is not
// interactive, and when the resolved entity no longer exists.
func (c *Chart) HandlePointer(in PointerInput) {
	if !c.opts.Interactive {
		return
	}
	if c.sched.Stale() {
		c.suppressed++
		if c.metrics != nil {
			c.metrics.EventSuppressed(in.Kind)
		}
		if c.debug {
			c.logger.Debug("pointer event suppressed",
				zapPointerKind(in.Kind), zapState(c.sched.State()))
		}
		return
	}

	target := -1
	if in.Kind != PointerLeave {
		target = c.hitTest(in.X, in.Y)
	}

	// Fire hover exit/enter when the hovered entity changes.
	if target != c.hovered {
		if c.hovered >= 0 {
			prev := c.hovered
			c.hovered = -1
			c.fire(EventHoverExit, prev, in)
		}
		if target >= 0 {
			c.hovered = target
			c.fire(EventHoverEnter, target, in)
		}
	}

	if target < 0 {
		return
	}
	switch in.Kind {
	case PointerMove:
		c.fire(EventHoverMove, target, in)
	case PointerClick:
		c.fire(EventClick, target, in)
	case PointerDoubleClick:
		c.fire(EventDoubleClick, target, in)
	}
}

// Hovered returns the entity index under the pointer, or -1.
func (c *Chart) Hovered() int {
	return c.hovered
}

// hitTest returns the entity index under (x, y) in the current interaction
// layer, or -1.
func (c *Chart) hitTest(x, y float64) int {
	if c.opts.UseTessellation {
		if c.tess == nil {
			return -1
		}
		cell, ok := c.tess.Locate(x, y)
		if !ok {
			return -1
		}
		return cell.EntityIndex
	}
	// Later shapes are drawn on top.
	for i := len(c.direct) - 1; i >= 0; i-- {
		if c.direct[i].hit.Contains(x, y) {
			return c.direct[i].index
		}
	}
	return -1
}

// fire builds the event for entity idx and delivers it to the handlers of
// its channel and the entity store.
func (c *Chart) fire(t EventType, idx int, in PointerInput) {
	ev, ok := c.newEvent(t, idx, in)
	if !ok {
		return
	}
	switch t {
	case EventHoverEnter:
		c.Highlight(idx, true)
	case EventHoverExit:
		c.Highlight(idx, false)
	}
	for _, h := range *c.handlers.list(t) {
		h.fn(ev)
	}
	if c.metrics != nil {
		c.metrics.EventDispatched(t)
	}
	c.emitInteractionEvent(ev)
}

// newEvent resolves idx against the live shapes. It fails when the entity
// was removed since the layer was built.
func (c *Chart) newEvent(t EventType, idx int, in PointerInput) (Event, bool) {
	if idx < 0 || idx >= len(c.shapes) || c.scales.X == nil {
		return Event{}, false
	}
	s := c.shapes[idx]
	px := nanToZero(c.scales.X.Map(s.X.Center))
	py := nanToZero(c.scales.Y.Map(s.Y.Center))
	rel := Vec2{
		X: c.origin.X + c.opts.Margin.Left + px,
		Y: c.origin.Y + c.opts.Margin.Top + py,
	}
	return Event{
		Type:                 t,
		Entity:               s,
		EntityIndex:          idx,
		PlotRelativePosition: rel,
		ScreenPosition: Vec2{
			X: rel.X + c.opts.TooltipOffset.X,
			Y: rel.Y + c.opts.TooltipOffset.Y,
		},
		PointerPosition: Vec2{X: in.X, Y: in.Y},
		DataPosition: Vec2{
			X: c.scales.X.Invert(in.X),
			Y: c.scales.Y.Invert(in.Y),
		},
		Raw: in.Raw,
	}, true
}

// --- Highlights ---

// Highlight sets the highlighted flag of every entity sharing the series of
// entity idx. Unknown indices are ignored.
func (c *Chart) Highlight(idx int, on bool) {
	if idx < 0 || idx >= len(c.shapes) {
		return
	}
	series := c.shapes[idx].Series
	if on {
		c.highlights[series] = struct{}{}
	} else {
		delete(c.highlights, series)
	}
}

// ClearHighlights removes every highlight.
func (c *Chart) ClearHighlights() {
	clear(c.highlights)
}

// Highlighted reports whether entity idx is highlighted.
func (c *Chart) Highlighted(idx int) bool {
	if idx < 0 || idx >= len(c.shapes) {
		return false
	}
	_, ok := c.highlights[c.shapes[idx].Series]
	return ok
}

// --- ECS bridge ---

func (c *Chart) emitInteractionEvent(ev Event) {
	if c.store == nil {
		return
	}
	c.store.EmitEvent(InteractionEvent{
		Type:        ev.Type,
		EntityIndex: ev.EntityIndex,
		Series:      ev.Entity.Series,
		PointerX:    ev.PointerPosition.X,
		PointerY:    ev.PointerPosition.Y,
		DataX:       ev.DataPosition.X,
		DataY:       ev.DataPosition.Y,
	})
}
