package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/jaintle/tracepath/pkg/cablemap"
	"github.com/jaintle/tracepath/pkg/geo"
	"github.com/jaintle/tracepath/pkg/sources"
	"github.com/jaintle/tracepath/pkg/traceengine"
	"github.com/jaintle/tracepath/pkg/utils"
)

var (
	headlessFlag = flag.Bool("headless", false, "Run without a local window (Xvfb rendering active)")
	renderWidth  = flag.Int("width", 1920, "Internal rendering width")
	renderHeight = flag.Int("height", 1080, "Internal rendering height")
	renderScale  = flag.Float64("scale", 300.0, "Internal rendering scale")
	windowWidth  = flag.Int("window-width", 1280, "Initial window width (non-headless only)")
	windowHeight = flag.Int("window-height", 720, "Initial window height (non-headless only)")
	tpsFlag      = flag.Int("tps", 30, "Ticks per second (engine updates)")
	streamURL    = flag.String("stream", "ws://127.0.0.1:8799/hops", "Hop stream websocket URL")
	cacheDir     = flag.String("cache-dir", "data/cache", "Directory for downloaded dataset cache")
	mmdbPath     = flag.String("mmdb", "", "GeoLite2-City database path (optional, streamer-enriched hops need none)")
	geoCachePath = flag.String("geo-cache", "data/geocache", "Badger database for IP geolocation cache")
	audioDir     = flag.String("audio-dir", "", "Directory of soundtrack MP3s (optional)")
	traceFlag    = flag.Bool("trace-routing", false, "Log a diagnostic line per routed hop pair")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	engine := traceengine.NewEngine(*renderWidth, *renderHeight, *renderScale)

	// Basemap and cable datasets are best-effort: the viewer still runs on a
	// plain ocean with direct-line routing when a download fails.
	if world, err := sources.FetchWorld(*cacheDir); err != nil {
		log.Printf("Warning: world map unavailable: %v", err)
		engine.LoadBasemap(nil)
	} else {
		engine.LoadBasemap(world)
	}

	var graph *cablemap.Graph
	cables, landings, err := sources.FetchCableMap(*cacheDir)
	if err != nil {
		log.Printf("Warning: cable datasets unavailable, routing falls back to direct lines: %v", err)
	} else {
		graph = cablemap.Build(cables, landings)
		log.Printf("Cable graph: %d landings, %d connected", graph.NumLandings(), graph.NumVertices())
	}
	planner := cablemap.NewPlanner(graph)
	planner.Trace = *traceFlag

	var resolver *geo.Resolver
	if *mmdbPath != "" {
		cache, err := utils.OpenGeoCache(*geoCachePath)
		if err != nil {
			log.Fatalf("Failed to open geo cache: %v", err)
		}
		defer cache.Close()
		resolver, err = geo.NewResolver(*mmdbPath, cache)
		if err != nil {
			log.Fatalf("Failed to open geo database: %v", err)
		}
		defer resolver.Close()
	}

	session := traceengine.NewSession(engine, engine, planner, resolver)
	defer session.Close()

	listener := &traceengine.Listener{
		URL: *streamURL,
		OnStart: func(target string) {
			engine.ResetView()
			session.Start(target)
		},
		OnHop: session.OnHop,
		OnEnd: session.OnEnd,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Listen(ctx)

	if *audioDir != "" {
		player := traceengine.NewSoundtrackPlayer(*audioDir, func(song, artist string) {
			if artist != "" {
				song += "  /  " + artist
			}
			engine.SetNowPlaying(song)
		})
		player.Start()
		defer player.Shutdown()
	}

	ebiten.SetTPS(*tpsFlag)
	if *headlessFlag {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(*windowWidth, *windowHeight)
		ebiten.SetWindowTitle("Traceroute Cable Map Viewer")
	}
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}
