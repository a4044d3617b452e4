package ecs

import (
	"github.com/phanxgames/hitplot"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for hitplot interaction
// events. Subscribe to this in your ECS systems to receive hover and click
// events.
var InteractionEventType = events.NewEventType[hitplot.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) hitplot.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event hitplot.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// HoverState tracks the entity under the pointer from the event stream.
// Attach with Subscribe, then read Current after ProcessEvents.
type HoverState struct {
	current int
	clicks  map[int]int
}

// NewHoverState creates a tracker with nothing hovered.
func NewHoverState() *HoverState {
	return &HoverState{current: -1, clicks: make(map[int]int)}
}

// Subscribe registers the tracker on world.
func (h *HoverState) Subscribe(world donburi.World) {
	InteractionEventType.Subscribe(world, h.handle)
}

func (h *HoverState) handle(_ donburi.World, e hitplot.InteractionEvent) {
	switch e.Type {
	case hitplot.EventHoverEnter:
		h.current = e.EntityIndex
	case hitplot.EventHoverExit:
		if h.current == e.EntityIndex {
			h.current = -1
		}
	case hitplot.EventClick, hitplot.EventDoubleClick:
		h.clicks[e.EntityIndex]++
	}
}

// Current returns the hovered entity index, or -1.
func (h *HoverState) Current() int {
	return h.current
}

// Clicks returns how many clicks and double clicks entity idx received.
func (h *HoverState) Clicks(idx int) int {
	return h.clicks[idx]
}
