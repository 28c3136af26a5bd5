package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// humanize performs a randomized burst of mouse movement, scrolling and
// the occasional element hover on the freshly loaded page. Every step
// is best-effort: simulation failures are logged and skipped, never
// surfaced — a page that rejects a synthetic mouse move is still a
// perfectly extractable page.
func humanize(ctx context.Context, page *rod.Page) {
	p := page.Context(ctx)

	moves := 2 + rand.Intn(4)
	for i := 0; i < moves; i++ {
		target := proto.Point{
			X: float64(100 + rand.Intn(700)),
			Y: float64(100 + rand.Intn(500)),
		}
		if err := p.Mouse.MoveLinear(target, 10+rand.Intn(20)); err != nil {
			slog.Debug("mouse move failed", "error", err)
		}
		if !sleepBetween(ctx, 100*time.Millisecond, 2*time.Second) {
			return
		}
	}

	scrolls := 1 + rand.Intn(4)
	for i := 0; i < scrolls; i++ {
		if err := p.Mouse.Scroll(0, float64(200+rand.Intn(400)), 1); err != nil {
			slog.Debug("scroll failed", "error", err)
		}
		if !sleepBetween(ctx, 500*time.Millisecond, 1500*time.Millisecond) {
			return
		}
	}

	if rand.Float64() < 0.3 {
		hoverRandomElement(p)
	}
}

// hoverRandomElement hovers one random link or button. Stale elements
// panic inside rod, so the whole step runs under recover.
func hoverRandomElement(p *rod.Page) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("hover skipped", "panic", r)
		}
	}()

	els, err := p.Elements("a, button")
	if err != nil || len(els) == 0 {
		return
	}
	if err := els[rand.Intn(len(els))].Hover(); err != nil {
		slog.Debug("hover failed", "error", err)
	}
}

// sleepBetween sleeps a uniformly random duration in [min, max],
// returning false if the context expired first.
func sleepBetween(ctx context.Context, min, max time.Duration) bool {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
