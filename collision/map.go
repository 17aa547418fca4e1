package collision

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/ecs"
)

const (
	CollisionSolid cp.CollisionType = iota + 1
	CollisionDoor
	CollisionEntity
)

type Options struct {
	// Scale is physics units per tile.
	Scale      float64
	Iterations int
	GravityY   float64
}

// Map owns one world's physics space, its static fixtures and the side table
// from fixture to body data.
type Map struct {
	name  string
	space *cp.Space
	scale float64

	rects    []Rect
	data     map[*cp.Shape]BodyData
	statics  int
	sensors  int
	degraded int
	dynamic  int

	onDoor func(e ecs.Entity, door DoorLink)
}

func NewMap(name string, opts Options) *Map {
	if opts.Scale <= 0 {
		opts.Scale = common.TileSize
	}
	if opts.Iterations <= 0 {
		opts.Iterations = common.DefaultSolverIterations
	}
	space := cp.NewSpace()
	space.Iterations = uint(opts.Iterations)
	space.SetGravity(cp.Vector{X: 0, Y: opts.GravityY})

	m := &Map{
		name:  name,
		space: space,
		scale: opts.Scale,
		data:  make(map[*cp.Shape]BodyData),
	}
	m.setupHandlers()
	return m
}

func (m *Map) Space() *cp.Space { return m.space }
func (m *Map) Scale() float64   { return m.scale }

// Rects returns every rectangle registered so far, borders included.
func (m *Map) Rects() []Rect { return m.rects }

// Fixtures counts static fixtures, sensors included.
func (m *Map) Fixtures() int { return m.statics }
func (m *Map) Sensors() int  { return m.sensors }

// Degraded counts interactable rectangles registered without a door.
func (m *Map) Degraded() int { return m.degraded }

// Dynamic counts attached entity bodies.
func (m *Map) Dynamic() int { return m.dynamic }

// Active reports whether the space holds anything besides static geometry.
func (m *Map) Active() bool { return m.dynamic > 0 }

// Lookup returns the body data stored for a fixture.
func (m *Map) Lookup(s *cp.Shape) (BodyData, bool) {
	d, ok := m.data[s]
	return d, ok
}

// Register adds a fixture per rectangle. Interactable rectangles become door
// sensors when resolve knows their cell; the rest are logged and kept as
// plain solid geometry.
func (m *Map) Register(rects []Rect, resolve DoorResolver) {
	for _, r := range rects {
		m.rects = append(m.rects, r)
		m.add(r, resolve)
	}
}

// AddDoorSensor registers a door that has no interactable tile under it.
// Door sensors are not part of Rects.
func (m *Map) AddDoorSensor(bounds common.Rect, link DoorLink) {
	r := Rect{Bounds: bounds, Interactable: true}
	m.add(r, func(common.TilePoint) (DoorLink, bool) { return link, true })
}

func (m *Map) add(r Rect, resolve DoorResolver) {
	if !r.Interactable {
		shape := m.addStatic(r)
		shape.SetCollisionType(CollisionSolid)
		m.data[shape] = BodyData{Kind: BodyBlock, Block: r.Block}
		return
	}

	var link DoorLink
	ok := false
	if resolve != nil {
		link, ok = resolve(r.Cell())
	}
	if !ok {
		log.Printf("collision: %s: warning: %s at %v has no door, registering as inert", m.name, r.Block, r.Cell())
		m.degraded++
		r.Interactable = false
		m.add(r, nil)
		return
	}
	shape := m.addStatic(r)
	shape.SetSensor(true)
	m.sensors++
	shape.SetCollisionType(CollisionDoor)
	m.data[shape] = BodyData{Kind: BodyBlock, Block: r.Block, Door: &link}
}

func (m *Map) addStatic(r Rect) *cp.Shape {
	b := r.Bounds.Scale(m.scale)
	var shape *cp.Shape
	if r.Rotation == 0 {
		shape = cp.NewBox2(m.space.StaticBody, cp.BB{L: b.X, B: b.Y, R: b.Right(), T: b.Bottom()}, 0)
	} else {
		// Authored rotation pivots on the bottom-left corner.
		cx, cy := common.RotatePoint(b.X+b.Width/2, b.Y+b.Height/2, b.X, b.Bottom(), r.Rotation)
		body := cp.NewStaticBody()
		body.SetPosition(cp.Vector{X: cx, Y: cy})
		body.SetAngle(r.Rotation * math.Pi / 180)
		m.space.AddBody(body)
		shape = cp.NewBox(body, b.Width, b.Height, 0)
	}
	m.space.AddShape(shape)
	m.statics++
	return shape
}

// AttachEntity adds an entity's body and shape to the space.
func (m *Map) AttachEntity(e ecs.Entity, body *cp.Body, shape *cp.Shape) {
	shape.SetCollisionType(CollisionEntity)
	m.space.AddBody(body)
	m.space.AddShape(shape)
	m.data[shape] = BodyData{Kind: BodyEntity, Entity: e}
	m.dynamic++
}

// DetachEntity removes a body and shape previously attached. It must not run
// while the space is stepping.
func (m *Map) DetachEntity(body *cp.Body, shape *cp.Shape) {
	if shape != nil && m.space.ContainsShape(shape) {
		m.space.RemoveShape(shape)
		delete(m.data, shape)
	}
	if body != nil && m.space.ContainsBody(body) {
		m.space.RemoveBody(body)
		m.dynamic--
	}
}

// Contains reports whether body lives in this map's space.
func (m *Map) Contains(body *cp.Body) bool {
	return body != nil && m.space.ContainsBody(body)
}

// OnDoorContact sets the callback for an entity starting to touch a door.
// The space is locked while it runs, so fn must not add or remove bodies.
func (m *Map) OnDoorContact(fn func(e ecs.Entity, door DoorLink)) {
	m.onDoor = fn
}

// Step advances the space. Worlds without entities are skipped.
func (m *Map) Step(dt float64) bool {
	if m.dynamic == 0 {
		return false
	}
	m.space.Step(dt)
	return true
}

func (m *Map) setupHandlers() {
	doorHandler := m.space.NewCollisionHandler(CollisionEntity, CollisionDoor)
	doorHandler.UserData = m
	doorHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		cm, ok := userData.(*Map)
		if !ok || cm.onDoor == nil {
			return true
		}
		a, b := arb.Shapes()
		da, okA := cm.data[a]
		db, okB := cm.data[b]
		if !okA || !okB {
			return true
		}
		if da.Kind != BodyEntity {
			da, db = db, da
		}
		if da.Kind == BodyEntity && db.IsDoor() {
			cm.onDoor(da.Entity, *db.Door)
		}
		return true
	}
}
