// Package ecs provides ECS adapters for hitplot's interaction events.
//
// The primary adapter is [NewDonburiStore], which bridges hitplot
// interaction events (hover, click, double click) into a [Donburi] world as
// typed events. Subscribe to [InteractionEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	chart.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
