package traceengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jaintle/tracepath/pkg/cablemap"
)

const (
	// AnimationSteps is how many dash-progression ticks each segment gets
	// before the driver advances to the next one.
	AnimationSteps = 40

	defaultStepDelay    = 25 * time.Millisecond
	defaultSegmentPause = 250 * time.Millisecond
)

// AnimationDriver plays route segments strictly sequentially on a Surface:
// remove-then-add the segment's line layer, walk its dash progression over a
// fixed number of timer ticks, pause briefly, move on. Starting a new run
// cancels the in-flight one, waits for it to stop at its next suspension
// point, and sweeps every drawable of the previous run off the surface, so
// at most the new run's segments are ever visible.
type AnimationDriver struct {
	surface Surface

	StepDelay    time.Duration
	SegmentPause time.Duration
	Style        LineStyle

	// StyleFunc, when set, picks the style per segment (the session uses it
	// to color fallback legs differently). Defaults to Style.
	StyleFunc func(cablemap.Segment) LineStyle

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	placed []string // layer ids currently on the surface
	gen    int
}

func NewAnimationDriver(surface Surface) *AnimationDriver {
	return &AnimationDriver{
		surface:      surface,
		StepDelay:    defaultStepDelay,
		SegmentPause: defaultSegmentPause,
		Style: LineStyle{
			Color:  ColorCable,
			Width:  2,
			DashPx: 8,
			GapPx:  5,
		},
	}
}

// Play starts playback of segments, tearing down any previous run first.
// It returns a channel that closes when this run finishes or is cancelled.
func (d *AnimationDriver) Play(segments []cablemap.Segment) <-chan struct{} {
	d.Stop()

	d.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	go d.run(ctx, gen, segments, done)
	return done
}

// Stop cancels the in-flight run, waits for it to exit, and removes every
// drawable playback has put on the surface.
func (d *AnimationDriver) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}

	d.mu.Lock()
	placed := d.placed
	d.placed = nil
	d.mu.Unlock()
	for _, id := range placed {
		d.surface.RemoveLayer(id)
	}
}

func (d *AnimationDriver) track(id string) {
	d.mu.Lock()
	d.placed = append(d.placed, id)
	d.mu.Unlock()
}

func (d *AnimationDriver) run(ctx context.Context, gen int, segments []cablemap.Segment, done chan struct{}) {
	defer close(done)

	for i, seg := range segments {
		if len(seg.Coords) < 2 {
			continue
		}
		id := fmt.Sprintf("route/%d/%d", gen, i)

		style := d.Style
		if d.StyleFunc != nil {
			style = d.StyleFunc(seg)
		}
		style.Progress = 0
		d.surface.RemoveLayer(id)
		d.surface.AddLine(id, seg.Coords, style)
		d.track(id)

		for step := 1; step <= AnimationSteps; step++ {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.StepDelay):
			}
			style.Progress = float64(step) / AnimationSteps
			d.surface.SetLineStyle(id, style)
		}

		if i+1 < len(segments) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.SegmentPause):
			}
		}
	}
}
