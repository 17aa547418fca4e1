package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/image/colornames"

	"github.com/milk9111/tileworlds/assets"
	"github.com/milk9111/tileworlds/atlas"
	"github.com/milk9111/tileworlds/config"
	"github.com/milk9111/tileworlds/ecs"
	"github.com/milk9111/tileworlds/ecs/component"
	"github.com/milk9111/tileworlds/ecs/system"
	"github.com/milk9111/tileworlds/maps"
	"github.com/milk9111/tileworlds/metrics"
	"github.com/milk9111/tileworlds/render"
	"github.com/milk9111/tileworlds/worldgraph"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int

	cfg     config.Config
	metrics *metrics.Metrics
	watcher *maps.Watcher

	graph    *worldgraph.Graph
	world    *ecs.World
	renderer *render.Renderer
	camera   ecs.Entity
}

func NewGame(cfg config.Config, m *metrics.Metrics) (*Game, error) {
	g := &Game{cfg: cfg, metrics: m}
	if err := g.load(); err != nil {
		return nil, err
	}
	if cfg.Watch && cfg.MapsDir != "" {
		w, err := maps.NewWatcher(cfg.MapsDir)
		if err != nil {
			return nil, fmt.Errorf("worldview: watch %s: %w", cfg.MapsDir, err)
		}
		g.watcher = w
	}
	return g, nil
}

// load builds the graph, the atlas and a fresh simulation. On error the
// previous state is kept.
func (g *Game) load() error {
	graph, err := worldgraph.NewLoader(worldgraph.Options{
		FS:            maps.FS(g.cfg.MapsDir),
		Physics:       g.cfg.Physics(),
		BorderPadding: g.cfg.BorderPadding,
		Metrics:       g.metrics,
	}).Load(g.cfg.RootMap)
	if err != nil {
		return err
	}

	base, err := assets.Tileset(g.cfg.Tileset, g.cfg.TileSize, g.cfg.TilesetColumns)
	if err != nil {
		return err
	}
	builder, err := atlas.NewBuilder(base, g.cfg.TileSize)
	if err != nil {
		return err
	}
	a, err := builder.Convert(graph.FlipKeys())
	if err != nil {
		return err
	}
	graph.BuildGeometry(a)

	if g.renderer == nil {
		g.renderer = render.New(a)
	} else {
		g.renderer.SetAtlas(a)
	}
	g.graph = graph
	g.world = g.newWorld()
	return nil
}

func (g *Game) newWorld() *ecs.World {
	w := ecs.NewWorld()
	w.AddSystem(system.NewInputSystem())
	w.AddSystem(system.NewPhysicsSystem(g.graph, g.cfg.TimeStep))
	w.AddSystem(system.NewTransferSystem(g.graph, g.metrics))
	w.AddSystem(system.NewCameraSystem(g.graph))

	root := g.graph.World(g.graph.Root)
	scale := g.cfg.PhysicsScale
	sx, sy := root.Spawn.Centre()

	player := ecs.CreateEntity(w)
	mustAdd(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	mustAdd(w, player, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: 4})
	mustAdd(w, player, component.InputComponent.Kind(), &component.Input{})
	mustAdd(w, player, component.TransformComponent.Kind(), &component.Transform{X: sx * scale, Y: sy * scale})
	mustAdd(w, player, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		WorldID: root.ID,
		Width:   scale / 2,
		Height:  scale / 2,
		Mass:    1,
	})
	mustAdd(w, player, component.RenderBoxComponent.Kind(), &component.RenderBox{Color: colornames.Orange})

	g.camera = ecs.CreateEntity(w)
	mustAdd(w, g.camera, component.CameraComponent.Kind(), &component.Camera{
		Target:  uint64(player),
		WorldID: root.ID,
		CentreX: sx,
		CentreY: sy,
		Zoom:    2,
	})
	return w
}

func mustAdd[T any](w *ecs.World, e ecs.Entity, kind component.ComponentKind[T], v *T) {
	if err := ecs.Add(w, e, kind, v); err != nil {
		panic("worldview: add component: " + err.Error())
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()
	g.world.Update()
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed := false
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("worldview: %s changed", name)
			changed = true
			continue
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("worldview: watch error: %v", err)
			continue
		default:
		}
		break
	}
	if !changed {
		return
	}
	if err := g.load(); err != nil {
		log.Printf("worldview: reload failed, keeping previous graph: %v", err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	cam, ok := ecs.Get(g.world, g.camera, component.CameraComponent.Kind())
	if !ok {
		return
	}
	gw := g.graph.World(cam.WorldID)
	if gw == nil {
		return
	}

	screen.Fill(color.Black)
	ts := float64(g.cfg.TileSize)
	view := render.Centred(cam.CentreX*ts, cam.CentreY*ts, baseWidth, baseHeight, cam.Zoom)
	g.renderer.DrawWorld(screen, gw.Terrain, view, func(dst *ebiten.Image) {
		g.drawEntities(dst, gw, view)
	})

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s (world %d)    FPS: %.2f", gw.Name, gw.ID, ebiten.ActualFPS()))
}

// drawEntities draws the boxes of entities living in gw, converting from
// physics units to pixels.
func (g *Game) drawEntities(dst *ebiten.Image, gw *worldgraph.World, view render.View) {
	px := float64(g.cfg.TileSize) / g.cfg.PhysicsScale
	ecs.ForEach3(g.world, component.RenderBoxComponent.Kind(), component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(),
		func(_ ecs.Entity, box *component.RenderBox, t *component.Transform, pb *component.PhysicsBody) {
			if pb.WorldID != gw.ID {
				return
			}
			w, h := pb.Width*px, pb.Height*px
			g.renderer.DrawBox(dst, t.X*px-w/2, t.Y*px-h/2, w, h, box.Color, view)
		})
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}
