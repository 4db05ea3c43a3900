package traceengine

import (
	"strings"
	"testing"
	"time"

	"github.com/jaintle/tracepath/pkg/cablemap"
	"github.com/jaintle/tracepath/pkg/trace"
)

type fakeSink struct {
	target string
	rows   []HopStatus
}

func (s *fakeSink) SetHopStatus(target string, rows []HopStatus) {
	s.target = target
	s.rows = rows
}

func markerSurface() *fakeSurface { return newFakeSurface() }

func locatedHop(idx int, ip string, lat, lng float64) trace.Hop {
	h := trace.Hop{Index: idx, IP: ip}
	h.Locate(lat, lng)
	return h
}

func newTestSession(s Surface, sink StatusSink) *Session {
	sess := NewSession(s, sink, cablemap.NewPlanner(nil), nil)
	sess.driver.StepDelay = time.Microsecond
	sess.driver.SegmentPause = time.Microsecond
	return sess
}

func TestSessionAccumulatesHopsAndStatus(t *testing.T) {
	surf := markerSurface()
	sink := &fakeSink{}
	sess := newTestSession(surf, sink)
	defer sess.Close()

	sess.Start("example.com")
	if sink.target != "example.com" {
		t.Fatalf("target = %q, want example.com", sink.target)
	}

	sess.OnHop(locatedHop(1, "192.0.2.1", 51.5, -0.1))
	sess.OnHop(locatedHop(2, "192.0.2.2", 40.7, -74.0))

	hops := sess.Hops()
	if len(hops) != 2 {
		t.Fatalf("got %d hops, want 2", len(hops))
	}
	if len(sink.rows) != 2 {
		t.Fatalf("got %d status rows, want 2", len(sink.rows))
	}
	// With no cable graph every located pair falls back to a direct leg.
	if sink.rows[1].Decision != "direct-fallback" {
		t.Errorf("second hop decision = %q, want direct-fallback", sink.rows[1].Decision)
	}

	legs := sess.Legs()
	if len(legs) != 1 {
		t.Fatalf("got %d legs, want 1", len(legs))
	}
}

func TestSessionUnlocatedHopGetsNoMarker(t *testing.T) {
	surf := markerSurface()
	sess := newTestSession(surf, &fakeSink{})
	defer sess.Close()

	sess.Start("example.com")
	sess.OnHop(trace.Hop{Index: 1, IP: "10.0.0.1"})

	surf.mu.Lock()
	defer surf.mu.Unlock()
	if len(surf.layers) != 0 {
		t.Fatalf("unlocated hop placed layers: %v", surf.layers)
	}
}

func TestSessionRestartClearsState(t *testing.T) {
	surf := markerSurface()
	sink := &fakeSink{}
	sess := newTestSession(surf, sink)
	defer sess.Close()

	sess.Start("first.example")
	sess.OnHop(locatedHop(1, "192.0.2.1", 51.5, -0.1))
	sess.OnHop(locatedHop(2, "192.0.2.2", 40.7, -74.0))

	sess.Start("second.example")
	if got := len(sess.Hops()); got != 0 {
		t.Fatalf("hops survived restart: %d", got)
	}
	if len(sink.rows) != 0 {
		t.Fatalf("status rows survived restart: %v", sink.rows)
	}

	surf.mu.Lock()
	defer surf.mu.Unlock()
	if len(surf.layers) != 0 {
		t.Fatalf("layers survived restart: %v", surf.layers)
	}
}

func TestHopPopupContents(t *testing.T) {
	h := locatedHop(3, "203.0.113.9", 35.7, 139.7)
	h.City = "Tokyo"
	h.Country = "JP"
	h.Org = "IIJ"
	h.RTTms = 182.4

	txt := hopPopup(h)
	for _, want := range []string{"hop 3", "203.0.113.9", "Tokyo", "IIJ", "182.4 ms"} {
		if !strings.Contains(txt, want) {
			t.Errorf("popup missing %q:\n%s", want, txt)
		}
	}
}
