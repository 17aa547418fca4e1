package system

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/ecs"
	"github.com/milk9111/tileworlds/ecs/component"
	"github.com/milk9111/tileworlds/metrics"
	"github.com/milk9111/tileworlds/worldgraph"
)

var (
	ErrNilDestination = errors.New("transfer: destination world has no physics space")
	ErrNoBody         = errors.New("transfer: entity has no physics body")
)

// TransferSystem moves entity bodies between world physics spaces in
// response to EntitySwitchedWorld events.
type TransferSystem struct {
	graph   *worldgraph.Graph
	metrics *metrics.Metrics
	bus     *ecs.EventBus
}

func NewTransferSystem(g *worldgraph.Graph, m *metrics.Metrics) *TransferSystem {
	return &TransferSystem{graph: g, metrics: m}
}

// Update subscribes to the world's bus on first use. Events are applied as
// they are dispatched, after every physics space has finished stepping.
func (ts *TransferSystem) Update(w *ecs.World) {
	if ts == nil || w == nil || ts.bus == w.Events() {
		return
	}
	ts.bus = w.Events()
	ecs.Subscribe(ts.bus, func(evt ecs.EntitySwitchedWorld) {
		if err := ts.Transfer(w, evt); err != nil {
			panic("transfer system: " + err.Error())
		}
	})
}

// Transfer clones the entity's body into the destination world at the spawn
// tile, removes the old body from its source space and rebinds the
// entity's PhysicsBody. Interior arrivals move one tile north so the body
// does not land on the door it came through. A camera tracking the entity is
// told to follow.
func (ts *TransferSystem) Transfer(w *ecs.World, evt ecs.EntitySwitchedWorld) error {
	defer ecs.Remove(w, evt.Entity, component.TransferPendingComponent.Kind())

	pb, ok := ecs.Get(w, evt.Entity, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		return fmt.Errorf("%w: %v", ErrNoBody, evt.Entity)
	}
	dst := ts.graph.World(evt.WorldID)
	if dst == nil || dst.Collision == nil {
		return fmt.Errorf("%w: world %d", ErrNilDestination, evt.WorldID)
	}

	x, y := evt.SpawnX, evt.SpawnY
	if !dst.Outside {
		y--
	}
	scale := dst.Collision.Scale()
	pos := cp.Vector{X: x * scale, Y: y * scale}

	body, shape := cloneBody(pb, pos)
	if src := ts.graph.World(pb.WorldID); src != nil && src.Collision != nil {
		src.Collision.DetachEntity(pb.Body, pb.Shape)
	}
	dst.Collision.AttachEntity(evt.Entity, body, shape)

	pb.Body = body
	pb.Shape = shape
	pb.Space = dst.Collision.Space()
	pb.WorldID = dst.ID
	if t, ok := ecs.Get(w, evt.Entity, component.TransformComponent.Kind()); ok {
		t.X, t.Y = pos.X, pos.Y
	}

	ts.metrics.Transferred()
	if tracked(w, evt.Entity) {
		w.Events().Publish(ecs.CameraSwitchWorld{WorldID: dst.ID, CentreX: evt.SpawnX, CentreY: evt.SpawnY})
	}
	return nil
}

// cloneBody copies mass, moment, velocity and the box shape of pb onto a
// fresh body at pos.
func cloneBody(pb *component.PhysicsBody, pos cp.Vector) (*cp.Body, *cp.Shape) {
	old := pb.Body
	body := cp.NewBody(old.Mass(), old.Moment())
	body.SetPosition(pos)
	body.SetAngle(old.Angle())
	body.SetVelocityVector(old.Velocity())

	w, h := pb.Width, pb.Height
	if (w <= 0 || h <= 0) && pb.Shape != nil {
		bb := pb.Shape.BB()
		w, h = bb.R-bb.L, bb.T-bb.B
	}
	if w <= 0 || h <= 0 {
		w, h = common.TileSize/2, common.TileSize/2
	}
	shape := cp.NewBox(body, w, h, 0)
	if pb.Shape != nil {
		shape.SetFriction(pb.Shape.Friction())
	}
	return body, shape
}

func tracked(w *ecs.World, e ecs.Entity) bool {
	found := false
	ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, c *component.Camera) {
		if ecs.Entity(c.Target) == e {
			found = true
		}
	})
	return found
}
