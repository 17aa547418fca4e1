package system

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tileworlds/collision"
	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/ecs"
	"github.com/milk9111/tileworlds/ecs/component"
	"github.com/milk9111/tileworlds/worldgraph"
)

type doorContact struct {
	entity ecs.Entity
	world  common.WorldID
	door   collision.DoorLink
}

// PhysicsSystem owns the per-tick simulation of every world. Bodies are
// created lazily for PhysicsBody components that have none, only worlds
// holding entities are stepped, and door contacts become world switch
// events once the step is over.
type PhysicsSystem struct {
	graph *worldgraph.Graph
	dt    float64

	hooked   map[common.WorldID]bool
	contacts []doorContact
}

func NewPhysicsSystem(g *worldgraph.Graph, dt float64) *PhysicsSystem {
	if dt <= 0 {
		dt = common.DefaultTimeStep
	}
	return &PhysicsSystem{
		graph:  g,
		dt:     dt,
		hooked: make(map[common.WorldID]bool),
	}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.graph == nil || w == nil {
		return
	}

	ps.syncEntities(w)
	ps.applyInput(w)

	for _, gw := range ps.graph.Worlds() {
		if gw.Collision == nil {
			continue
		}
		ps.hook(gw)
		gw.Collision.Step(ps.dt)
	}

	ps.syncTransforms(w)
	ps.flushContacts(w)
}

// Stepped counts the worlds that would be stepped this tick.
func (ps *PhysicsSystem) Stepped() int {
	n := 0
	for _, gw := range ps.graph.Worlds() {
		if gw.Collision != nil && gw.Collision.Active() {
			n++
		}
	}
	return n
}

func (ps *PhysicsSystem) hook(gw *worldgraph.World) {
	if ps.hooked[gw.ID] {
		return
	}
	id := gw.ID
	gw.Collision.OnDoorContact(func(e ecs.Entity, door collision.DoorLink) {
		ps.contacts = append(ps.contacts, doorContact{entity: e, world: id, door: door})
	})
	ps.hooked[gw.ID] = true
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Body != nil {
			return
		}
		gw := ps.graph.World(pb.WorldID)
		if gw == nil || gw.Collision == nil {
			return
		}
		body, shape := newEntityBody(pb, t.X, t.Y)
		gw.Collision.AttachEntity(e, body, shape)
		pb.Body = body
		pb.Shape = shape
		pb.Space = gw.Collision.Space()
	})
}

// newEntityBody builds a dynamic box that never rotates.
func newEntityBody(pb *component.PhysicsBody, x, y float64) (*cp.Body, *cp.Shape) {
	mass := pb.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewBox(body, pb.Width, pb.Height, 0)
	shape.SetFriction(pb.Friction)
	return body, shape
}

func (ps *PhysicsSystem) applyInput(w *ecs.World) {
	ecs.ForEach3(w, component.InputComponent.Kind(), component.PlayerComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, in *component.Input, p *component.Player, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		scale := common.TileSize * 1.0
		if gw := ps.graph.World(pb.WorldID); gw != nil && gw.Collision != nil {
			scale = gw.Collision.Scale()
		}
		v := p.MoveSpeed * scale
		pb.Body.SetVelocity(in.MoveX*v, in.MoveY*v)
	})
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
		t.Rotation = pb.Body.Angle()
	})
}

// flushContacts turns the door contacts of this tick into switch events.
// An entity already waiting on a transfer is not switched twice.
func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	contacts := ps.contacts
	ps.contacts = ps.contacts[:0]

	for _, c := range contacts {
		if !ecs.IsAlive(w, c.entity) || ecs.Has(w, c.entity, component.TransferPendingComponent.Kind()) {
			continue
		}
		pb, ok := ecs.Get(w, c.entity, component.PhysicsBodyComponent.Kind())
		if !ok || pb.WorldID != c.world {
			continue
		}
		dest, x, y, err := ps.graph.Arrival(c.door.Door)
		if err != nil {
			panic("physics system: door contact: " + err.Error())
		}
		if err := ecs.Add(w, c.entity, component.TransferPendingComponent.Kind(), &component.TransferPending{WorldID: dest}); err != nil {
			panic("physics system: mark transfer: " + err.Error())
		}
		w.Events().Publish(ecs.EntitySwitchedWorld{Entity: c.entity, WorldID: dest, SpawnX: x, SpawnY: y})
	}
}
