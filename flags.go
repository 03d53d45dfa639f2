package main

import "flag"

// Command-line flags. Any flag set explicitly overrides the matching value
// from the configuration file.
var (
	// configFlag points at an optional TOML settings file.
	configFlag = flag.String("config", "", "path to a TOML configuration file")

	// headlessFlag runs the simulation without opening a window.
	headlessFlag = flag.Bool("headless", false, "run without a window for -frames frames")

	framesFlag = flag.Int("frames", 600, "number of frames to run in headless mode")

	// openclFlag moves wave stepping onto an OpenCL device when the binary
	// was built with -tags opencl.
	openclFlag = flag.Bool("opencl", false, "step the wave field with OpenCL (requires -tags opencl)")

	workersFlag = flag.Int("workers", 0, "goroutines sharing the rows of a wave step (0 or 1 steps inline)")

	seedFlag = flag.Uint64("seed", 1, "seed of the disturbance scheduler")

	// debugFlag enables the overlay and the magnitude hotkeys.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation overlay")

	logLevelFlag = flag.String("log-level", "info", "log level: debug, info, warn or error")

	// cpuProfileFlag records a CPU profile for the lifetime of the process.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")

	// memProfileFlag writes a heap profile when the process exits.
	memProfileFlag = flag.String("memprofile", "", "write a heap profile to this file on exit")

	brushRadiusFlag = flag.Int("brush-radius", 1, "radius in cells of the mouse brush")

	consumerLatencyFlag = flag.Duration("consumer-latency", 0, "artificial delay per frame in the render consumer")
)
