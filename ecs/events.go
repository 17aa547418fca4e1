package ecs

import "github.com/milk9111/tileworlds/common"

// EntitySwitchedWorld asks for an entity's body to move to another world.
// Spawn coordinates are in tiles.
type EntitySwitchedWorld struct {
	Entity  Entity
	WorldID common.WorldID
	SpawnX  float64
	SpawnY  float64
}

// CameraSwitchWorld tells the view to follow its target into a new world.
type CameraSwitchWorld struct {
	WorldID common.WorldID
	CentreX float64
	CentreY float64
}

// EventBus is a fire-and-forget FIFO queue. Events published during a
// dispatch are held for the next one, so every event is delivered once and
// a tick never loops on its own output.
type EventBus struct {
	pending  []any
	handlers []func(any)
}

func (b *EventBus) Publish(evt any) {
	if b == nil || evt == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Subscribe registers fn for every event of type E.
func Subscribe[E any](b *EventBus, fn func(E)) {
	b.handlers = append(b.handlers, func(evt any) {
		if e, ok := evt.(E); ok {
			fn(e)
		}
	})
}

// Dispatch delivers the events queued before the call and returns how many
// there were.
func (b *EventBus) Dispatch() int {
	if b == nil || len(b.pending) == 0 {
		return 0
	}
	batch := b.pending
	b.pending = nil
	for _, evt := range batch {
		for _, h := range b.handlers {
			h(evt)
		}
	}
	return len(batch)
}

// Pending returns how many events wait for the next dispatch.
func (b *EventBus) Pending() int {
	if b == nil {
		return 0
	}
	return len(b.pending)
}
