package traceengine

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	geojson "github.com/paulmach/go.geojson"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jaintle/tracepath/pkg/cablemap"
)

type layerKind int

const (
	layerLine layerKind = iota
	layerPoint
	layerMarker
)

type layer struct {
	id     string
	kind   layerKind
	coords []cablemap.Coordinate
	line   LineStyle
	point  PointStyle
	label  string
}

type popup struct {
	at    cablemap.Coordinate
	text  string
	until time.Time
}

// Engine is the ebiten game and the Surface the animation driver draws on.
// Layer mutations arrive from the session and driver goroutines; Draw runs on
// ebiten's render thread, so the layer table sits behind one mutex.
type Engine struct {
	Width, Height int
	Scale         float64

	bgImage *ebiten.Image

	mu         sync.Mutex
	layers     map[string]*layer
	layerOrder []string
	popup      *popup

	// View state for FlyTo. cx/cy are projected-plane coordinates of the
	// view center; zoom eases toward zoomTarget each tick.
	cx, cy             float64
	zoom               float64
	cxTarget, cyTarget float64
	zoomTarget         float64

	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource

	// HUD state, pushed in by the session and soundtrack player.
	hudMu      sync.Mutex
	hudHops    []HopStatus
	hudTarget  string
	nowPlaying string
}

// HopStatus is one row of the HUD hop panel.
type HopStatus struct {
	Index    int
	IP       string
	Place    string
	Provider string
	Decision string
}

func NewEngine(width, height int, scale float64) *Engine {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	m, _ := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))

	return &Engine{
		Width:      width,
		Height:     height,
		Scale:      scale,
		layers:     make(map[string]*layer),
		cx:         float64(width) / 2,
		cy:         float64(height) / 2,
		cxTarget:   float64(width) / 2,
		cyTarget:   float64(height) / 2,
		zoom:       1.0,
		zoomTarget: 1.0,
		fontSource: s,
		monoSource: m,
	}
}

// LoadBasemap rasterizes the world geometry once into the background image.
// A nil collection leaves a plain ocean background.
func (e *Engine) LoadBasemap(fc *geojson.FeatureCollection) {
	cpuImg := image.NewRGBA(image.Rect(0, 0, e.Width, e.Height))
	draw.Draw(cpuImg, cpuImg.Bounds(), &image.Uniform{color.RGBA{8, 10, 15, 255}}, image.Point{}, draw.Src)
	if fc != nil {
		landColor, outlineColor := color.RGBA{26, 29, 35, 255}, color.RGBA{36, 42, 53, 255}
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			if f.Geometry.IsPolygon() {
				e.fillPolygon(cpuImg, f.Geometry.Polygon, landColor)
				for _, ring := range f.Geometry.Polygon {
					e.drawRing(cpuImg, ring, outlineColor)
				}
			} else if f.Geometry.IsMultiPolygon() {
				for _, poly := range f.Geometry.MultiPolygon {
					e.fillPolygon(cpuImg, poly, landColor)
					for _, ring := range poly {
						e.drawRing(cpuImg, ring, outlineColor)
					}
				}
			}
		}
	}
	e.bgImage = ebiten.NewImageFromImage(cpuImg)
}

func (e *Engine) Update() error {
	// Ease the view toward its target; the popup expires on its own.
	e.mu.Lock()
	e.cx += (e.cxTarget - e.cx) * 0.08
	e.cy += (e.cyTarget - e.cy) * 0.08
	e.zoom += (e.zoomTarget - e.zoom) * 0.08
	if e.popup != nil && time.Now().After(e.popup.until) {
		e.popup = nil
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) Draw(screen *ebiten.Image) {
	e.mu.Lock()
	if e.bgImage != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-e.cx, -e.cy)
		op.GeoM.Scale(e.zoom, e.zoom)
		op.GeoM.Translate(float64(e.Width)/2, float64(e.Height)/2)
		screen.DrawImage(e.bgImage, op)
	}

	for _, id := range e.layerOrder {
		l, ok := e.layers[id]
		if !ok {
			continue
		}
		switch l.kind {
		case layerLine:
			e.strokePolyline(screen, l.coords, l.line)
		case layerPoint:
			x, y := e.toScreen(l.coords[0])
			vector.DrawFilledCircle(screen, float32(x), float32(y), l.point.Radius, l.point.Color, true)
		case layerMarker:
			x, y := e.toScreen(l.coords[0])
			vector.DrawFilledCircle(screen, float32(x), float32(y), 4, ColorHop, true)
			e.drawLabel(screen, l.label, x+8, y-8, 14, ColorText)
		}
	}
	pop := e.popup
	e.mu.Unlock()

	if pop != nil {
		e.mu.Lock()
		x, y := e.toScreen(pop.at)
		e.mu.Unlock()
		e.drawPopupBox(screen, pop.text, x, y)
	}
	e.drawHUD(screen)
}

func (e *Engine) Layout(w, h int) (int, int) { return e.Width, e.Height }

// project maps a coordinate to the fixed projection plane using the same
// iterative pseudocylindrical projection the basemap raster uses.
func (e *Engine) project(lat, lng float64) (x, y float64) {
	if lat > 89.5 {
		lat = 89.5
	}
	if lat < -89.5 {
		lat = -89.5
	}
	latRad, lngRad := lat*math.Pi/180, lng*math.Pi/180
	theta := latRad
	for i := 0; i < 10; i++ {
		denom := 2 + 2*math.Cos(2*theta)
		if math.Abs(denom) < 1e-9 {
			break
		}
		delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(latRad)) / denom
		theta -= delta
		if math.Abs(delta) < 1e-7 {
			break
		}
	}
	r := e.Scale
	x = (float64(e.Width) / 2) + r*(2*math.Sqrt(2)/math.Pi)*lngRad*math.Cos(theta)
	y = (float64(e.Height) / 2) - r*math.Sqrt(2)*math.Sin(theta)
	return x, y
}

// toScreen applies the current view transform on top of the projection.
// Callers hold e.mu.
func (e *Engine) toScreen(c cablemap.Coordinate) (float64, float64) {
	x, y := e.project(c.Lat, c.Lng)
	return (x-e.cx)*e.zoom + float64(e.Width)/2, (y-e.cy)*e.zoom + float64(e.Height)/2
}

func (e *Engine) strokePolyline(screen *ebiten.Image, coords []cablemap.Coordinate, style LineStyle) {
	if len(coords) < 2 || style.Progress <= 0 {
		return
	}

	type pt struct{ x, y float64 }
	pts := make([]pt, len(coords))
	total := 0.0
	for i, c := range coords {
		x, y := e.toScreen(c)
		pts[i] = pt{x, y}
		if i > 0 {
			total += math.Hypot(x-pts[i-1].x, y-pts[i-1].y)
		}
	}
	if total == 0 {
		return
	}
	limit := total * math.Min(style.Progress, 1)

	dash, gap := style.DashPx, style.GapPx
	solid := dash <= 0
	pos := 0.0
	for i := 1; i < len(pts); i++ {
		segLen := math.Hypot(pts[i].x-pts[i-1].x, pts[i].y-pts[i-1].y)
		if segLen == 0 {
			continue
		}
		start := pos
		end := pos + segLen
		pos = end
		if start >= limit {
			break
		}
		drawEnd := math.Min(end, limit)

		if solid {
			t0, t1 := 0.0, (drawEnd-start)/segLen
			e.strokeSub(screen, pts[i-1].x, pts[i-1].y, pts[i].x, pts[i].y, t0, t1, style)
			continue
		}
		// Walk dash/gap cells across this piece of the polyline.
		cell := dash + gap
		for d := math.Floor(start/cell) * cell; d < drawEnd; d += cell {
			d0 := math.Max(d, start)
			d1 := math.Min(d+dash, drawEnd)
			if d1 <= d0 {
				continue
			}
			t0 := (d0 - start) / segLen
			t1 := (d1 - start) / segLen
			e.strokeSub(screen, pts[i-1].x, pts[i-1].y, pts[i].x, pts[i].y, t0, t1, style)
		}
	}
}

func (e *Engine) strokeSub(screen *ebiten.Image, x0, y0, x1, y1, t0, t1 float64, style LineStyle) {
	sx := x0 + (x1-x0)*t0
	sy := y0 + (y1-y0)*t0
	ex := x0 + (x1-x0)*t1
	ey := y0 + (y1-y0)*t1
	vector.StrokeLine(screen, float32(sx), float32(sy), float32(ex), float32(ey), style.Width, style.Color, true)
}

// --- Surface implementation ---

func (e *Engine) AddLine(id string, coords []cablemap.Coordinate, style LineStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.putLayer(&layer{id: id, kind: layerLine, coords: coords, line: style})
}

func (e *Engine) SetLineStyle(id string, style LineStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.layers[id]; ok && l.kind == layerLine {
		l.line = style
	}
}

func (e *Engine) AddPoint(id string, at cablemap.Coordinate, style PointStyle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.putLayer(&layer{id: id, kind: layerPoint, coords: []cablemap.Coordinate{at}, point: style})
}

func (e *Engine) AddMarker(id string, at cablemap.Coordinate, label string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.putLayer(&layer{id: id, kind: layerMarker, coords: []cablemap.Coordinate{at}, label: label})
}

func (e *Engine) ShowPopup(at cablemap.Coordinate, txt string, ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.popup = &popup{at: at, text: txt, until: time.Now().Add(ttl)}
}

func (e *Engine) RemoveLayer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.layers[id]; !ok {
		return
	}
	delete(e.layers, id)
	for i, o := range e.layerOrder {
		if o == id {
			e.layerOrder = append(e.layerOrder[:i], e.layerOrder[i+1:]...)
			break
		}
	}
}

func (e *Engine) FlyTo(at cablemap.Coordinate, zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	x, y := e.project(at.Lat, at.Lng)
	e.cxTarget, e.cyTarget = x, y
	if zoom > 0 {
		e.zoomTarget = zoom
	}
}

// ResetView recenters on the whole map at unit zoom, used on session restart.
func (e *Engine) ResetView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cxTarget, e.cyTarget = float64(e.Width)/2, float64(e.Height)/2
	e.zoomTarget = 1.0
}

func (e *Engine) putLayer(l *layer) {
	if _, ok := e.layers[l.id]; !ok {
		e.layerOrder = append(e.layerOrder, l.id)
	}
	e.layers[l.id] = l
}

// LayerIDs returns a sorted snapshot of live layer ids, for tests and
// diagnostics.
func (e *Engine) LayerIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.layers))
	for id := range e.layers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// --- basemap rasterization (CPU-side, done once) ---

func (e *Engine) fillPolygon(img *image.RGBA, rings [][][]float64, c color.RGBA) {
	if len(rings) == 0 {
		return
	}
	type point struct{ x, y float64 }
	projectedRings := make([][]point, len(rings))
	minY, maxY := float64(e.Height), 0.0
	for i, ring := range rings {
		projectedRings[i] = make([]point, len(ring))
		for j, p := range ring {
			x, y := e.project(p[1], p[0])
			projectedRings[i][j] = point{x, y}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= e.Height {
			continue
		}
		var nodes []int
		fy := float64(y)
		for _, ring := range projectedRings {
			for i := 0; i < len(ring); i++ {
				j := (i + 1) % len(ring)
				if (ring[i].y < fy && ring[j].y >= fy) || (ring[j].y < fy && ring[i].y >= fy) {
					nodeX := ring[i].x + (fy-ring[i].y)/(ring[j].y-ring[i].y)*(ring[j].x-ring[i].x)
					nodes = append(nodes, int(nodeX))
				}
			}
		}
		sort.Ints(nodes)
		for i := 0; i < len(nodes)-1; i += 2 {
			xs, xe := nodes[i], nodes[i+1]
			if xs < 0 {
				xs = 0
			}
			if xe >= e.Width {
				xe = e.Width - 1
			}
			for x := xs; x < xe; x++ {
				off := y*img.Stride + x*4
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
			}
		}
	}
}

func (e *Engine) drawRing(img *image.RGBA, coords [][]float64, c color.RGBA) {
	for i := 0; i < len(coords)-1; i++ {
		x1, y1 := e.project(coords[i][1], coords[i][0])
		x2, y2 := e.project(coords[i+1][1], coords[i+1][0])
		e.drawLineFast(img, int(x1), int(y1), int(x2), int(y2), c)
	}
}

func (e *Engine) drawLineFast(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < e.Width && y1 >= 0 && y1 < e.Height {
			off := y1*img.Stride + x1*4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
