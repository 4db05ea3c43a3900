package main

import (
	"bufio"
	"errors"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gorilla/websocket"

	"github.com/jaintle/tracepath/pkg/geo"
	"github.com/jaintle/tracepath/pkg/trace"
	"github.com/jaintle/tracepath/pkg/utils"
)

var cli struct {
	Target   string        `arg:"" help:"Host or IP to trace."`
	Listen   string        `default:":8799" help:"HTTP listen address for the hop stream."`
	Path     string        `default:"/hops" help:"Websocket path clients connect to."`
	Interval time.Duration `default:"60s" help:"Pause between trace runs."`
	Once     bool          `help:"Run a single trace and exit after the last client drains."`

	Traceroute string `default:"traceroute" help:"Traceroute binary to run."`
	MaxHops    int    `default:"30" help:"Maximum hops per trace."`

	Mmdb     string `help:"GeoLite2-City database path for hop enrichment (optional)."`
	GeoCache string `default:"data/geocache" help:"Badger database for the IP geolocation cache."`
}

// streamer fans parsed hop messages out to every connected viewer.
type streamer struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newStreamer() *streamer {
	return &streamer{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

func (s *streamer) handle(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade error: %v", err)
		return
	}
	log.Printf("Viewer connected: %s", r.RemoteAddr)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	// Viewers never send anything meaningful; the read loop just notices
	// the close.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.clients, c)
				s.mu.Unlock()
				c.Close()
				log.Printf("Viewer disconnected: %s", r.RemoteAddr)
				return
			}
		}
	}()
}

func (s *streamer) broadcast(msg trace.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if err := c.WriteJSON(msg); err != nil {
			delete(s.clients, c)
			c.Close()
		}
	}
}

func main() {
	kong.Parse(&cli,
		kong.Name("hop-streamer"),
		kong.Description("Runs traceroute on a loop and streams enriched hops over a websocket."))
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var resolver *geo.Resolver
	if cli.Mmdb != "" {
		cache, err := utils.OpenGeoCache(cli.GeoCache)
		if err != nil {
			log.Fatalf("Failed to open geo cache: %v", err)
		}
		defer cache.Close()
		resolver, err = geo.NewResolver(cli.Mmdb, cache)
		if err != nil {
			log.Fatalf("Failed to open geo database: %v", err)
		}
		defer resolver.Close()
	}

	s := newStreamer()
	http.HandleFunc(cli.Path, s.handle)
	go func() {
		log.Printf("Serving hop stream on %s%s", cli.Listen, cli.Path)
		if err := http.ListenAndServe(cli.Listen, nil); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	for {
		if err := runTrace(s, resolver); err != nil {
			log.Printf("Trace failed: %v", err)
			s.broadcast(trace.Message{Type: trace.MsgError, Error: err.Error()})
		}
		if cli.Once {
			return
		}
		time.Sleep(cli.Interval)
	}
}

// runTrace executes one traceroute and streams its hops as they are printed,
// so viewers watch the path grow in real time.
func runTrace(s *streamer, resolver *geo.Resolver) error {
	log.Printf("Tracing route to %s", cli.Target)
	cmd := exec.Command(cli.Traceroute, "-m", strconv.Itoa(cli.MaxHops), cli.Target)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	s.broadcast(trace.Message{Type: trace.MsgStart, Target: cli.Target})

	scanner := bufio.NewScanner(stdout)
	hops := 0
	for scanner.Scan() {
		line := scanner.Text()
		h, err := trace.ParseLine(line)
		if err != nil {
			// Silent hops keep their index on the stream; anything else
			// unparseable is dropped.
			if !errors.Is(err, trace.ErrNoReply) {
				continue
			}
		}
		if resolver != nil && h.IP != "" {
			resolver.Enrich(&h)
		}
		s.broadcast(trace.Message{Type: trace.MsgHop, Hop: &h})
		hops++
	}

	if err := cmd.Wait(); err != nil {
		return err
	}
	log.Printf("Trace to %s complete: %d hops", cli.Target, hops)
	s.broadcast(trace.Message{Type: trace.MsgEnd})
	return scanner.Err()
}
