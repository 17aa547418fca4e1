package system

import (
	"github.com/milk9111/tileworlds/ecs"
	"github.com/milk9111/tileworlds/ecs/component"
	"github.com/milk9111/tileworlds/worldgraph"
)

type CameraSystem struct {
	graph *worldgraph.Graph
	bus   *ecs.EventBus
}

func NewCameraSystem(g *worldgraph.Graph) *CameraSystem {
	return &CameraSystem{graph: g}
}

// Update keeps every camera centred on its target, in tiles. World switches
// arrive as CameraSwitchWorld events.
func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	if cs.bus != w.Events() {
		cs.bus = w.Events()
		ecs.Subscribe(cs.bus, func(evt ecs.CameraSwitchWorld) {
			ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, c *component.Camera) {
				c.WorldID = evt.WorldID
				c.CentreX = evt.CentreX
				c.CentreY = evt.CentreY
			})
		})
	}

	ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, c *component.Camera) {
		target := ecs.Entity(c.Target)
		t, ok := ecs.Get(w, target, component.TransformComponent.Kind())
		if !ok {
			return
		}
		pb, ok := ecs.Get(w, target, component.PhysicsBodyComponent.Kind())
		if !ok || pb.WorldID != c.WorldID {
			return
		}
		gw := cs.graph.World(pb.WorldID)
		if gw == nil || gw.Collision == nil {
			return
		}
		c.CentreX = t.X / gw.Collision.Scale()
		c.CentreY = t.Y / gw.Collision.Scale()
	})
}
