package main

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"waterdemo/internal/config"
)

// runHeadless drives frames at the configured tick rate as fast as the
// consumer allows, without a window.
func runHeadless(ctx context.Context, cfg config.Config, log *slog.Logger, frames int) error {
	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	qctx, stopQueue := context.WithCancel(gctx)
	g.Go(func() error { return p.queue.Run(qctx) })
	g.Go(func() error {
		defer stopQueue()
		dt := 1 / float32(cfg.Window.TPS)
		nextReport := float32(headlessReportSecs)
		for i := 0; i < frames && gctx.Err() == nil; i++ {
			if err := p.app.Frame(gctx, dt); err != nil {
				if gctx.Err() != nil && errors.Is(err, context.Canceled) {
					break
				}
				return err
			}
			if p.app.SimTime() >= nextReport {
				st := p.app.Stats()
				log.Info("simulating", "frame", st.Frames, "sim_time", st.SimTime, "steps", st.Steps,
					"marker", st.Marker, "completed", st.Completed, "energy", st.Energy)
				nextReport += headlessReportSecs
			}
		}

		if gctx.Err() != nil {
			log.Info("interrupted, skipping drain")
			_ = p.app.Close(gctx)
			return nil
		}
		dctx, cancel := context.WithTimeout(context.Background(), cfg.Frames.SyncTimeout.Duration)
		defer cancel()
		return p.app.Close(dctx)
	})

	err = g.Wait()
	st := p.app.Stats()
	log.Info("headless run finished", "frames", st.Frames, "steps", st.Steps,
		"executed", p.queue.Executed(), "accelerated", st.Accelerated)
	return err
}
