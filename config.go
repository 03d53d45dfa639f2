package main

import (
	"flag"

	"waterdemo/internal/config"
)

// Interaction constants for the windowed front end.
const (
	orbitStep          = 0.03 // radians per tick
	zoomStep           = 0.5
	clickMagStep       = 0.1
	minClickMag        = 0.1
	maxClickMag        = 3.0
	headlessReportSecs = 1.0
)

// loadConfig reads -config, if given, over the defaults and applies every
// flag the user set explicitly.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			return config.Config{}, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "opencl":
			cfg.Waves.OpenCL = *openclFlag
		case "workers":
			cfg.Waves.Workers = *workersFlag
		case "seed":
			cfg.Disturb.Seed = *seedFlag
		case "brush-radius":
			cfg.Brush.Radius = *brushRadiusFlag
		case "debug":
			cfg.Window.Debug = *debugFlag
		case "consumer-latency":
			cfg.Frames.ConsumerLatency = config.Duration{Duration: *consumerLatencyFlag}
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
