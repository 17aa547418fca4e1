package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/milk9111/tileworlds/config"
	"github.com/milk9111/tileworlds/metrics"
)

func main() {
	configPath := flag.String("config", "tileworlds.yaml", "path to the YAML config")
	root := flag.String("root", "", "root map name (overrides root_map)")
	mapsDir := flag.String("maps", "", "map directory layered over the built-in maps (overrides maps_dir)")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address (overrides metrics_addr)")
	watch := flag.Bool("watch", false, "reload the world graph when maps change")
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

	game, err := NewGame(cfg, m)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("tileworlds")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
