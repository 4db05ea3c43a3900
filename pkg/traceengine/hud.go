package traceengine

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// SetHopStatus replaces the HUD hop table. The session pushes a full snapshot
// after every hop instead of mutating rows in place.
func (e *Engine) SetHopStatus(target string, rows []HopStatus) {
	e.hudMu.Lock()
	defer e.hudMu.Unlock()
	e.hudTarget = target
	e.hudHops = rows
}

// SetNowPlaying updates the soundtrack line at the bottom of the HUD.
func (e *Engine) SetNowPlaying(s string) {
	e.hudMu.Lock()
	defer e.hudMu.Unlock()
	e.nowPlaying = s
}

func (e *Engine) drawHUD(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	margin, fontSize := 40.0, 16.0
	if e.Width > 2000 {
		margin, fontSize = 80.0, 32.0
	}

	e.hudMu.Lock()
	target := e.hudTarget
	rows := e.hudHops
	song := e.nowPlaying
	e.hudMu.Unlock()

	face := &text.GoTextFace{Source: e.monoSource, Size: fontSize}
	lineH := fontSize + 8

	// Hop table, upper left. Grows downward as hops arrive.
	if target != "" {
		boxW := 560.0
		if e.Width > 2000 {
			boxW = 1120.0
		}
		boxH := lineH*float64(len(rows)) + fontSize + 30
		x, y := margin, margin+fontSize

		vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), float32(boxW), float32(boxH), color.RGBA{0, 0, 0, 100}, false)
		vector.StrokeRect(screen, float32(x-10), float32(y-fontSize-15), float32(boxW), float32(boxH), 1, color.RGBA{36, 42, 53, 255}, false)
		vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), 4, float32(fontSize+10), ColorHop, false)

		titleFace := &text.GoTextFace{Source: e.fontSource, Size: fontSize * 0.8}
		titleOp := &text.DrawOptions{}
		titleOp.GeoM.Translate(x+5, y-fontSize-5)
		titleOp.ColorScale.Scale(1, 1, 1, 0.5)
		text.Draw(screen, "TRACE TO "+strings.ToUpper(target), titleFace, titleOp)

		for i, r := range rows {
			label := fmt.Sprintf("%2d  %-15s  %s", r.Index, r.IP, truncate(r.Place, 24))
			if r.Provider != "" {
				label += "  [" + r.Provider + "]"
			}
			rowOp := &text.DrawOptions{}
			rowOp.GeoM.Translate(x, y+10+float64(i)*lineH)
			rowOp.ColorScale.Scale(1, 1, 1, 0.8)
			text.Draw(screen, label, face, rowOp)

			if r.Decision != "" {
				tw, _ := text.Measure(r.Decision, face, 0)
				decOp := &text.DrawOptions{}
				decOp.GeoM.Translate(x+boxW-tw-25, y+10+float64(i)*lineH)
				col := ColorCable
				if r.Decision != "cable-routed" {
					col = ColorFallback
				}
				decOp.ColorScale.Scale(float32(col.R)/255, float32(col.G)/255, float32(col.B)/255, 0.9)
				text.Draw(screen, r.Decision, face, decOp)
			}
		}
	}

	e.drawLegend(screen, margin, fontSize)

	if song != "" {
		songOp := &text.DrawOptions{}
		songOp.GeoM.Translate(margin, float64(e.Height)-margin)
		songOp.ColorScale.Scale(1, 1, 1, 0.4)
		text.Draw(screen, "NOW PLAYING  "+song, face, songOp)
	}
}

func (e *Engine) drawLegend(screen *ebiten.Image, margin, fontSize float64) {
	face := &text.GoTextFace{Source: e.fontSource, Size: fontSize}
	legendW, legendH := 280.0, 120.0
	if e.Width > 2000 {
		legendW, legendH = 560.0, 240.0
	}
	x := float64(e.Width) - margin - legendW
	y := float64(e.Height) - margin - legendH + fontSize

	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), float32(legendW), float32(legendH), color.RGBA{0, 0, 0, 100}, false)
	vector.StrokeRect(screen, float32(x-10), float32(y-fontSize-15), float32(legendW), float32(legendH), 1, color.RGBA{36, 42, 53, 255}, false)
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), 4, float32(fontSize+10), ColorCable, false)

	titleFace := &text.GoTextFace{Source: e.fontSource, Size: fontSize * 0.8}
	titleOp := &text.DrawOptions{}
	titleOp.GeoM.Translate(x+5, y-fontSize-5)
	titleOp.ColorScale.Scale(1, 1, 1, 0.5)
	text.Draw(screen, "LEGEND", titleFace, titleOp)

	entries := []struct {
		label string
		col   color.RGBA
	}{
		{"SUBMARINE CABLE", ColorCable},
		{"DIRECT FALLBACK", ColorFallback},
		{"HOP", ColorHop},
	}
	for i, en := range entries {
		ly := y + 10 + float64(i)*(fontSize+10)
		vector.DrawFilledCircle(screen, float32(x+fontSize/2), float32(ly+fontSize/2), float32(fontSize/3), en.col, true)
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+fontSize+15, ly)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, en.label, face, op)
	}
}

func (e *Engine) drawLabel(screen *ebiten.Image, label string, x, y, size float64, col color.RGBA) {
	if e.fontSource == nil || label == "" {
		return
	}
	face := &text.GoTextFace{Source: e.fontSource, Size: size}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(float32(col.R)/255, float32(col.G)/255, float32(col.B)/255, 0.9)
	text.Draw(screen, label, face, op)
}

func (e *Engine) drawPopupBox(screen *ebiten.Image, txt string, x, y float64) {
	if e.fontSource == nil || txt == "" {
		return
	}
	fontSize := 14.0
	if e.Width > 2000 {
		fontSize = 28.0
	}
	face := &text.GoTextFace{Source: e.monoSource, Size: fontSize}
	lines := strings.Split(txt, "\n")

	maxW := 0.0
	for _, l := range lines {
		if w, _ := text.Measure(l, face, 0); w > maxW {
			maxW = w
		}
	}
	pad := 8.0
	boxW := maxW + 2*pad
	boxH := float64(len(lines))*(fontSize+4) + 2*pad

	// Anchor above and to the right of the point; clamp inside the window.
	bx, by := x+12, y-boxH-12
	if bx+boxW > float64(e.Width) {
		bx = float64(e.Width) - boxW
	}
	if by < 0 {
		by = y + 12
	}

	vector.DrawFilledRect(screen, float32(bx), float32(by), float32(boxW), float32(boxH), color.RGBA{0, 0, 0, 180}, false)
	vector.StrokeRect(screen, float32(bx), float32(by), float32(boxW), float32(boxH), 1, ColorHop, false)

	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(bx+pad, by+pad+float64(i)*(fontSize+4))
		op.ColorScale.Scale(1, 1, 1, 0.9)
		text.Draw(screen, l, face, op)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
