package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"waterdemo/internal/app"
	"waterdemo/internal/config"
	"waterdemo/internal/frame"
	"waterdemo/internal/render"
	"waterdemo/internal/waves"
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevelFlag)); err != nil {
		return fmt.Errorf("parsing -log-level: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	waves.SetLogger(log.With("component", "waves"))
	frame.SetLogger(log.With("component", "frame"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	prof, err := startProfiling(log, *cpuProfileFlag, *memProfileFlag)
	if err != nil {
		return err
	}
	defer func() {
		if err := prof.stop(); err != nil {
			log.Error("writing profiles", "err", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *headlessFlag {
		return runHeadless(ctx, cfg, log, *framesFlag)
	}
	return runWindow(ctx, cfg, log)
}

// pipeline is the producer and consumer pair shared by both front ends.
type pipeline struct {
	app   *app.App
	queue *render.Queue
}

func newPipeline(cfg config.Config, log *slog.Logger) (*pipeline, error) {
	fence := frame.NewFence()
	queue, err := render.NewQueue(fence, render.Config{
		Rows:    cfg.Waves.Rows,
		Columns: cfg.Waves.Columns,
		Depth:   cfg.Frames.Depth,
		Latency: cfg.Frames.ConsumerLatency.Duration,
		Logger:  log.With("component", "render"),
	})
	if err != nil {
		return nil, err
	}
	a, err := app.New(app.Options{
		Waves:        cfg.WaveParams(),
		Scheduler:    cfg.SchedulerConfig(),
		Seed:         cfg.Disturb.Seed,
		Depth:        cfg.Frames.Depth,
		SyncTimeout:  cfg.Frames.SyncTimeout.Duration,
		MaxFrameTime: cfg.Frames.MaxFrameTime.Seconds(),
		TargetWidth:  cfg.Waves.Columns * cfg.Window.Scale,
		TargetHeight: cfg.Waves.Rows * cfg.Window.Scale,
		OpenCL:       cfg.Waves.OpenCL,
		Logger:       log.With("component", "app"),
	}, fence, queue)
	if err != nil {
		return nil, err
	}
	return &pipeline{app: a, queue: queue}, nil
}
