// Package traceengine renders traceroute sessions on an animated world map:
// it owns the drawing surface, the sequential segment animator, the hop
// stream listener and the per-trace session state.
package traceengine

import (
	"image/color"
	"time"

	"github.com/jaintle/tracepath/pkg/cablemap"
)

// LineStyle controls how a polyline layer is stroked. Progress is the
// fraction of the line revealed so far; the animation driver advances it from
// 0 to 1 in fixed steps. DashPx of zero draws a solid line.
type LineStyle struct {
	Color    color.RGBA
	Width    float32
	Progress float64
	DashPx   float64
	GapPx    float64
}

// PointStyle controls a point layer.
type PointStyle struct {
	Color  color.RGBA
	Radius float32
}

// Surface is the drawing sink the animation driver and session mutate. The
// engine implements it; the core never sees ebiten directly, which keeps the
// driver testable against a fake.
type Surface interface {
	AddLine(id string, coords []cablemap.Coordinate, style LineStyle)
	SetLineStyle(id string, style LineStyle)
	AddPoint(id string, at cablemap.Coordinate, style PointStyle)
	AddMarker(id string, at cablemap.Coordinate, label string)
	ShowPopup(at cablemap.Coordinate, text string, ttl time.Duration)
	RemoveLayer(id string)
	FlyTo(at cablemap.Coordinate, zoom float64)
}

// Palette shared by the session and the HUD legend.
var (
	ColorCable    = color.RGBA{0, 191, 255, 255}   // cable-routed legs
	ColorFallback = color.RGBA{255, 170, 0, 255}   // direct-line fallbacks
	ColorHop      = color.RGBA{173, 255, 47, 255}  // hop markers
	ColorText     = color.RGBA{255, 255, 255, 255} // labels and popups
)
