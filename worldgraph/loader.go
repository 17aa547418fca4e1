package worldgraph

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/milk9111/tileworlds/collision"
	"github.com/milk9111/tileworlds/common"
	"github.com/milk9111/tileworlds/metrics"
	"github.com/milk9111/tileworlds/terrain"
	"github.com/milk9111/tileworlds/tmx"
)

var (
	ErrDoorOutsideBuilding = errors.New("worldgraph: door is not in any building")
	ErrUnmatchedShare      = errors.New("worldgraph: share tag has no partner")
	ErrUnresolvedDoor      = errors.New("worldgraph: door has no destination")
	ErrBadAnnotation       = errors.New("worldgraph: malformed annotation")
)

type Options struct {
	// FS holds the map documents, looked up by world name.
	FS            fs.FS
	Physics       collision.Options
	BorderPadding float64
	Metrics       *metrics.Metrics
}

type sequence struct {
	last int
}

func (s *sequence) next() int {
	s.last++
	return s.last
}

// Loader runs load passes. Identifier sequences belong to the pass, so
// independent loads never share IDs.
type Loader struct {
	opts Options

	worldIDs    sequence
	buildingIDs sequence
	doorIDs     sequence
	g           *Graph
}

func NewLoader(opts Options) *Loader {
	if opts.BorderPadding <= 0 {
		opts.BorderPadding = 1
	}
	return &Loader{opts: opts}
}

// Load builds the graph reachable from root. Any error aborts the whole
// pass and no graph is returned.
func (l *Loader) Load(root string) (*Graph, error) {
	l.worldIDs, l.buildingIDs, l.doorIDs = sequence{}, sequence{}, sequence{}
	l.g = newGraph()
	defer func() { l.g = nil }()

	rootID := l.ensureWorld(root, true)
	l.g.Root = rootID
	if err := l.loadWorld(rootID); err != nil {
		return nil, err
	}
	// Root interiors load before any door is resolved so untagged doors can
	// be matched against building footprints.
	for _, bid := range l.g.World(rootID).Buildings {
		if err := l.loadWorld(l.g.buildings[bid].InsideWorldID); err != nil {
			return nil, err
		}
	}

	if err := l.checkRootDoors(rootID); err != nil {
		return nil, err
	}
	if err := l.discover(rootID); err != nil {
		return nil, err
	}
	if err := l.pair(); err != nil {
		return nil, err
	}
	l.register()

	g := l.g
	log.Printf("worldgraph: loaded %d worlds, %d buildings, %d doors from %s", len(g.worlds), len(g.buildings), len(g.doors), root)
	return g, nil
}

func worldName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".tmx")
}

// ensureWorld returns the ID for name, allocating an unvisited world the
// first time the name is seen.
func (l *Loader) ensureWorld(name string, outside bool) common.WorldID {
	name = worldName(name)
	if id, ok := l.g.byName[name]; ok {
		return id
	}
	id := common.WorldID(l.worldIDs.next())
	l.g.worlds = append(l.g.worlds, &World{ID: id, Name: name, Outside: outside})
	l.g.byName[name] = id
	return id
}

func (l *Loader) loadWorld(id common.WorldID) error {
	w := l.g.World(id)
	switch w.State {
	case Loaded, Loading:
		return nil
	case Failed:
		return fmt.Errorf("worldgraph: world %s failed earlier", w.Name)
	}

	w.State = Loading
	if err := l.build(w); err != nil {
		w.State = Failed
		return err
	}
	w.State = Loaded
	l.opts.Metrics.WorldLoaded()
	log.Printf("worldgraph: world %d %q loaded (outside=%t, %d buildings, %d doors)", w.ID, w.Name, w.Outside, len(w.Buildings), len(w.Doors))
	return nil
}

func (l *Loader) build(w *World) error {
	m, err := tmx.Load(l.opts.FS, w.Name)
	if err != nil {
		return fmt.Errorf("worldgraph: load %s: %w", w.Name, err)
	}
	model, err := terrain.New(m)
	if err != nil {
		return fmt.Errorf("worldgraph: build %s: %w", w.Name, err)
	}
	w.Terrain = model
	w.Spawn = common.TilePoint{X: model.Width / 2, Y: model.Height / 2}

	var windows []Window
	for _, ly := range model.LayersOf(terrain.KindBuildings) {
		for _, s := range ly.Shapes {
			win, err := l.annotate(w, s)
			if err != nil {
				return fmt.Errorf("worldgraph: %s: shape %d: %w", w.Name, s.ID, err)
			}
			if win != nil {
				windows = append(windows, *win)
			}
		}
	}
	for _, win := range windows {
		b := l.owner(w, win.Cell)
		if b == nil {
			log.Printf("worldgraph: %s: warning: window %d at %v is not in a building", w.Name, win.ID, win.Cell)
			continue
		}
		b.Windows[win.ID] = win
	}
	return nil
}

// annotate records one shape from a buildings layer. Windows are returned so
// they can be placed once every footprint is known.
func (l *Loader) annotate(w *World, s terrain.Shape) (*Window, error) {
	p := s.Properties
	switch {
	case p.Has("building-world"):
		name, _ := p.Get("building-world")
		if worldName(name) == "" {
			return nil, fmt.Errorf("%w: empty building-world", ErrBadAnnotation)
		}
		b := &Building{
			ID:             common.BuildingID(l.buildingIDs.next()),
			Bounds:         s.Bounds,
			OutsideWorldID: w.ID,
			Windows:        make(map[common.WindowID]Window),
			Doors:          make(map[common.DoorID]*Door),
		}
		b.InsideWorldID = l.ensureWorld(name, false)
		inside := l.g.World(b.InsideWorldID)
		if inside.Building == 0 {
			inside.Building = b.ID
		}
		if inside.ID != l.g.Root {
			inside.Outside = false
		}
		l.g.buildings[b.ID] = b
		w.Buildings = append(w.Buildings, b.ID)

	case p.Has("door-id"):
		idx, _, err := p.Int("door-id")
		if err != nil {
			return nil, err
		}
		if idx <= 0 {
			log.Printf("worldgraph: %s: ignoring door with index %d", w.Name, idx)
			return nil, nil
		}
		d := &Door{
			ID:      common.DoorID(l.doorIDs.next()),
			Index:   idx,
			WorldID: w.ID,
			Cell:    s.Cell(),
			Bounds:  s.Bounds,
		}
		if d.Bounds.Width <= 0 || d.Bounds.Height <= 0 {
			d.Bounds = common.Rect{X: float64(d.Cell.X), Y: float64(d.Cell.Y), Width: 1, Height: 1}
		}
		if err := parseTag(d, p); err != nil {
			return nil, err
		}
		l.g.doors[d.ID] = d
		w.Doors = append(w.Doors, d.ID)

	case p.Has("window-id"):
		id, _, err := p.Int("window-id")
		if err != nil {
			return nil, err
		}
		lit, _, err := p.Bool("lit")
		if err != nil {
			return nil, err
		}
		return &Window{ID: common.WindowID(id), Cell: s.Cell(), Lit: lit}, nil

	case p.Has("spawn"):
		w.Spawn = s.Cell()

	default:
		log.Printf("worldgraph: %s: ignoring unannotated shape %d", w.Name, s.ID)
	}
	return nil, nil
}

func parseTag(d *Door, p tmx.Properties) error {
	if id, ok, err := p.Int("destination-world-id"); err != nil {
		return err
	} else if ok {
		d.Tag, d.DestID = TagExplicit, common.WorldID(id)
		return nil
	}
	if name, ok := p.Get("destination-world"); ok && worldName(name) != "" {
		d.Tag, d.DestName = TagNamed, worldName(name)
		return nil
	}
	if key, ok := p.Get("share-specifier"); ok {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: empty share-specifier on door %d", ErrBadAnnotation, d.Index)
		}
		src, _ := p.Get("share-source")
		d.Tag, d.ShareKey, d.ShareSource = TagShare, key, worldName(src)
	}
	return nil
}

// owner returns the building a cell of w belongs to: the interior's own
// building, or the footprint containing the cell.
func (l *Loader) owner(w *World, cell common.TilePoint) *Building {
	if w.Building != 0 && !w.Outside {
		return l.g.buildings[w.Building]
	}
	cx, cy := cell.Centre()
	for _, bid := range w.Buildings {
		if b := l.g.buildings[bid]; b.Bounds.Contains(cx, cy) {
			return b
		}
	}
	return nil
}

// checkRootDoors requires every door of the root world to sit inside one of
// its building footprints, whatever its tag.
func (l *Loader) checkRootDoors(rootID common.WorldID) error {
	root := l.g.World(rootID)
	for _, did := range root.Doors {
		d := l.g.doors[did]
		if l.owner(root, d.Cell) == nil {
			return fmt.Errorf("%w: %s door %d at %v", ErrDoorOutsideBuilding, root.Name, d.Index, d.Cell)
		}
	}
	return nil
}

// discover walks the graph breadth-first from root, loading every world a
// door leads to. The visited set makes door cycles harmless.
func (l *Loader) discover(root common.WorldID) error {
	queue := []common.WorldID{root}
	visited := make(map[common.WorldID]bool)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		if err := l.loadWorld(id); err != nil {
			return err
		}
		w := l.g.World(id)
		for _, bid := range w.Buildings {
			queue = append(queue, l.g.buildings[bid].InsideWorldID)
		}
		for _, did := range w.Doors {
			d := l.g.doors[did]
			if err := l.resolve(w, d); err != nil {
				return err
			}
			queue = append(queue, d.Destination)
		}
	}
	return nil
}

func (l *Loader) resolve(w *World, d *Door) error {
	if b := l.owner(w, d.Cell); b != nil {
		d.Building = b.ID
		b.Doors[d.ID] = d
	}

	switch d.Tag {
	case TagNone:
		b := l.g.buildings[d.Building]
		if b == nil {
			return fmt.Errorf("%w: %s door %d at %v", ErrDoorOutsideBuilding, w.Name, d.Index, d.Cell)
		}
		if w.ID == b.OutsideWorldID {
			d.Destination = b.InsideWorldID
		} else {
			d.Destination = b.OutsideWorldID
		}

	case TagExplicit:
		if l.g.World(d.DestID) == nil {
			return fmt.Errorf("%w: %s door %d names world %d", ErrUnresolvedDoor, w.Name, d.Index, d.DestID)
		}
		d.Destination = d.DestID

	case TagNamed:
		id := l.ensureWorld(d.DestName, true)
		if err := l.loadWorld(id); err != nil {
			return err
		}
		d.Destination = id

	case TagShare:
		src := w.ID
		if d.ShareSource != "" {
			src = l.ensureWorld(d.ShareSource, true)
			if err := l.loadWorld(src); err != nil {
				return err
			}
		}
		p := l.sharePartner(src, d)
		if p == nil {
			return fmt.Errorf("%w: %s door %d key %q in %s", ErrUnmatchedShare, w.Name, d.Index, d.ShareKey, l.g.World(src).Name)
		}
		d.Destination = src
		d.Partner = p.ID
	}

	l.opts.Metrics.DoorResolved()
	return nil
}

func (l *Loader) sharePartner(src common.WorldID, d *Door) *Door {
	for _, did := range l.g.World(src).Doors {
		p := l.g.doors[did]
		if p.ID != d.ID && p.Tag == TagShare && p.ShareKey == d.ShareKey {
			return p
		}
	}
	return nil
}

// pair links each door to the door with the same index in its destination,
// preferring one that leads back.
func (l *Loader) pair() error {
	for _, d := range l.g.Doors() {
		if !d.Resolved() {
			return fmt.Errorf("%w: %s door %d", ErrUnresolvedDoor, l.g.World(d.WorldID).Name, d.Index)
		}
		if d.Partner != 0 {
			continue
		}
		var match *Door
		for _, did := range l.g.World(d.Destination).Doors {
			p := l.g.doors[did]
			if p.ID == d.ID || p.Index != d.Index {
				continue
			}
			if p.Destination == d.WorldID {
				match = p
				break
			}
			if match == nil {
				match = p
			}
		}
		if match == nil {
			log.Printf("worldgraph: warning: %s door %d has no partner in %s, arrivals use its spawn",
				l.g.World(d.WorldID).Name, d.Index, l.g.World(d.Destination).Name)
			continue
		}
		d.Partner = match.ID
	}
	return nil
}

// register builds every world's collision map. Interactable tiles inside a
// door's bounds become that door's sensor; doors without one get their own.
func (l *Loader) register() {
	for _, w := range l.g.worlds {
		cm := collision.NewMap(w.Name, l.opts.Physics)
		used := make(map[common.DoorID]bool)

		cm.Register(collision.Extract(w.Terrain, l.opts.BorderPadding), func(cell common.TilePoint) (collision.DoorLink, bool) {
			cx, cy := cell.Centre()
			for _, did := range w.Doors {
				d := l.g.doors[did]
				if d.Bounds.Contains(cx, cy) {
					used[did] = true
					return collision.DoorLink{Building: d.Building, Door: d.ID}, true
				}
			}
			return collision.DoorLink{}, false
		})
		for _, did := range w.Doors {
			if used[did] {
				continue
			}
			d := l.g.doors[did]
			cm.AddDoorSensor(d.Bounds, collision.DoorLink{Building: d.Building, Door: d.ID})
		}

		w.Collision = cm
		l.opts.Metrics.SetFixtures(w.Name, cm.Fixtures(), cm.Degraded())
	}
}
