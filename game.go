package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"

	"waterdemo/internal/app"
	"waterdemo/internal/config"
)

// Game adapts the pipeline to ebiten: Update produces a frame, Draw shows
// the latest image published by the consumer.
type Game struct {
	ctx   context.Context
	cfg   config.Config
	log   *slog.Logger
	pipe  *pipeline
	group *errgroup.Group
	stop  context.CancelFunc

	rows, cols int
	pixels     []byte

	last     time.Time
	brush    app.Brush
	clickMag float32
	debug    bool
}

// newGame builds the pipeline and starts the consumer goroutine.
func newGame(ctx context.Context, cfg config.Config, log *slog.Logger) (*Game, error) {
	p, err := newPipeline(cfg, log)
	if err != nil {
		return nil, err
	}
	qctx, stop := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(qctx)
	group.Go(func() error { return p.queue.Run(gctx) })

	rows, cols := p.app.Grid()
	return &Game{
		ctx:      gctx,
		cfg:      cfg,
		log:      log,
		pipe:     p,
		group:    group,
		stop:     stop,
		rows:     rows,
		cols:     cols,
		pixels:   make([]byte, rows*cols*4),
		brush:    app.NewBrush(cfg.Brush.Radius),
		clickMag: cfg.Brush.Magnitude,
		debug:    cfg.Window.Debug,
	}, nil
}

// Update advances the simulation by the wall time since the previous tick.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if g.handleControls() {
		return ebiten.Termination
	}

	now := time.Now()
	var dt float32
	if !g.last.IsZero() {
		dt = float32(now.Sub(g.last).Seconds())
	}
	g.last = now

	if err := g.pipe.app.Frame(g.ctx, dt); err != nil {
		if g.ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

// shutdown drains in-flight frames and stops the consumer.
func (g *Game) shutdown() error {
	dctx, cancel := context.WithTimeout(context.Background(), g.cfg.Frames.SyncTimeout.Duration)
	defer cancel()
	drainErr := g.pipe.app.Close(dctx)
	if g.ctx.Err() != nil {
		drainErr = nil
	}
	g.stop()
	return errors.Join(drainErr, g.group.Wait())
}

// runWindow opens the window and runs until it is closed, Escape is
// pressed or ctx is cancelled.
func runWindow(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	g, err := newGame(ctx, cfg, log)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(g.cols*cfg.Window.Scale, g.rows*cfg.Window.Scale)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Window.TPS)

	runErr := ebiten.RunGame(g)
	if errors.Is(runErr, ebiten.Termination) {
		runErr = nil
	}
	st := g.pipe.app.Stats()
	log.Info("window closed", "frames", st.Frames, "steps", st.Steps, "executed", g.pipe.queue.Executed())
	return errors.Join(runErr, g.shutdown())
}
