// Command worldcheck loads a world graph and prints what it found. It exits
// non-zero when the graph does not load.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/milk9111/tileworlds/config"
	"github.com/milk9111/tileworlds/maps"
	"github.com/milk9111/tileworlds/metrics"
	"github.com/milk9111/tileworlds/worldgraph"
)

func main() {
	configPath := flag.String("config", "tileworlds.yaml", "path to the YAML config")
	root := flag.String("root", "", "root map name (overrides root_map)")
	mapsDir := flag.String("maps", "", "map directory layered over the built-in maps (overrides maps_dir)")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	watch := flag.Bool("watch", false, "re-check whenever a map changes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *root != "" {
		cfg.RootMap = *root
	}
	if *mapsDir != "" {
		cfg.MapsDir = *mapsDir
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	cfg.Watch = cfg.Watch || *watch

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		metrics.Serve(cfg.MetricsAddr, reg)
	}

	ok := check(os.Stdout, cfg, m)
	if !cfg.Watch {
		if !ok {
			os.Exit(1)
		}
		return
	}
	if cfg.MapsDir == "" {
		log.Fatal("worldcheck: -watch needs a maps directory")
	}

	w, err := maps.NewWatcher(cfg.MapsDir)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()
	log.Printf("worldcheck: watching %s", cfg.MapsDir)
	for {
		select {
		case name, open := <-w.Events:
			if !open {
				return
			}
			log.Printf("worldcheck: %s changed", name)
			check(os.Stdout, cfg, m)
		case err, open := <-w.Errors:
			if !open {
				return
			}
			log.Printf("worldcheck: watch error: %v", err)
		}
	}
}

func check(out io.Writer, cfg config.Config, m *metrics.Metrics) bool {
	g, err := worldgraph.NewLoader(worldgraph.Options{
		FS:            maps.FS(cfg.MapsDir),
		Physics:       cfg.Physics(),
		BorderPadding: cfg.BorderPadding,
		Metrics:       m,
	}).Load(cfg.RootMap)
	if err != nil {
		fmt.Fprintf(out, "FAIL %s: %v\n", cfg.RootMap, err)
		return false
	}
	summarize(out, g)
	return true
}

func summarize(out io.Writer, g *worldgraph.Graph) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "WORLD\tNAME\tOUTSIDE\tSIZE\tLAYERS\tRECTS\tSENSORS\tDEGRADED")
	for _, w := range g.Worlds() {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%dx%d\t%d\t%d\t%d\t%d\n",
			w.ID, w.Name, w.Outside, w.Terrain.Width, w.Terrain.Height, len(w.Terrain.Layers()),
			len(w.Collision.Rects()), w.Collision.Sensors(), w.Collision.Degraded())
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "BUILDING\tOUTSIDE\tINSIDE\tDOORS\tWINDOWS")
	for _, b := range g.Buildings() {
		lit := 0
		for _, win := range b.Windows {
			if win.Lit {
				lit++
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d (%d lit)\n",
			b.ID, g.World(b.OutsideWorldID).Name, g.World(b.InsideWorldID).Name, len(b.Doors), len(b.Windows), lit)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "DOOR\tWORLD\tINDEX\tCELL\tTAG\tDESTINATION\tPARTNER")
	doors := g.Doors()
	sort.SliceStable(doors, func(i, j int) bool { return doors[i].WorldID < doors[j].WorldID })
	for _, d := range doors {
		partner := "-"
		if d.Partner != 0 {
			partner = fmt.Sprint(d.Partner)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d,%d\t%s\t%s\t%s\n",
			d.ID, g.World(d.WorldID).Name, d.Index, d.Cell.X, d.Cell.Y, d.Tag, g.World(d.Destination).Name, partner)
	}

	fmt.Fprintf(tw, "\n%d worlds, %d buildings, %d doors, %d pairs\n", len(g.Worlds()), len(g.Buildings()), len(g.Doors()), g.DoorPairs())
}
