// Package config loads the demo settings from an optional TOML file layered
// over built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"waterdemo/internal/waves"
)

// ErrInvalid reports a setting outside its allowed range.
var ErrInvalid = errors.New("config: invalid setting")

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Seconds returns d in seconds as a float32.
func (d Duration) Seconds() float32 { return float32(d.Duration.Seconds()) }

// Config is the complete set of settings.
type Config struct {
	Waves   Waves   `toml:"waves"`
	Disturb Disturb `toml:"disturb"`
	Frames  Frames  `toml:"frames"`
	Window  Window  `toml:"window"`
	Brush   Brush   `toml:"brush"`
}

// Waves configures the solver.
type Waves struct {
	Rows     int     `toml:"rows"`
	Columns  int     `toml:"columns"`
	Spacing  float32 `toml:"spacing"`
	TimeStep float32 `toml:"time_step"`
	Speed    float32 `toml:"speed"`
	Damping  float32 `toml:"damping"`
	Workers  int     `toml:"workers"`
	OpenCL   bool    `toml:"opencl"`
}

// Disturb configures the automatic disturbances.
type Disturb struct {
	Interval     Duration `toml:"interval"`
	MinMagnitude float32  `toml:"min_magnitude"`
	MaxMagnitude float32  `toml:"max_magnitude"`
	Margin       int      `toml:"margin"`
	Seed         uint64   `toml:"seed"`
}

// Frames configures the frame ring and its consumer.
type Frames struct {
	Depth           int      `toml:"depth"`
	SyncTimeout     Duration `toml:"sync_timeout"`
	MaxFrameTime    Duration `toml:"max_frame_time"`
	ConsumerLatency Duration `toml:"consumer_latency"`
}

// Window configures presentation.
type Window struct {
	Title string `toml:"title"`
	Scale int    `toml:"scale"`
	TPS   int    `toml:"tps"`
	Debug bool   `toml:"debug"`
}

// Brush configures mouse disturbances.
type Brush struct {
	Radius    int     `toml:"radius"`
	Magnitude float32 `toml:"magnitude"`
}

// Default returns the settings of the stock demo: a 128x128 pool stepped
// every 30 ms and disturbed four times a second.
func Default() Config {
	return Config{
		Waves: Waves{
			Rows:     128,
			Columns:  128,
			Spacing:  1,
			TimeStep: 0.03,
			Speed:    4,
			Damping:  0.2,
		},
		Disturb: Disturb{
			Interval:     Duration{250 * time.Millisecond},
			MinMagnitude: 0.2,
			MaxMagnitude: 0.5,
			Margin:       4,
			Seed:         1,
		},
		Frames: Frames{
			Depth:        3,
			SyncTimeout:  Duration{2 * time.Second},
			MaxFrameTime: Duration{250 * time.Millisecond},
		},
		Window: Window{
			Title: "Water",
			Scale: 4,
			TPS:   60,
		},
		Brush: Brush{
			Radius:    1,
			Magnitude: 0.6,
		},
	}
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("decoding config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that do not depend on the solver. Stability of the
// wave parameters is checked by waves.New.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.Waves.Rows >= 3, "waves.rows %d < 3", c.Waves.Rows)
	check(c.Waves.Columns >= 3, "waves.columns %d < 3", c.Waves.Columns)
	check(c.Waves.Workers >= 0, "waves.workers %d is negative", c.Waves.Workers)
	check(c.Disturb.Interval.Duration >= 0, "disturb.interval %v is negative", c.Disturb.Interval)
	check(c.Disturb.MinMagnitude <= c.Disturb.MaxMagnitude,
		"disturb.min_magnitude %v exceeds max_magnitude %v", c.Disturb.MinMagnitude, c.Disturb.MaxMagnitude)
	check(c.Disturb.Margin >= 1, "disturb.margin %d < 1", c.Disturb.Margin)
	check(c.Frames.Depth >= 2, "frames.depth %d < 2", c.Frames.Depth)
	check(c.Frames.SyncTimeout.Duration > 0, "frames.sync_timeout must be positive")
	check(c.Frames.MaxFrameTime.Duration > 0, "frames.max_frame_time must be positive")
	check(c.Frames.ConsumerLatency.Duration >= 0, "frames.consumer_latency %v is negative", c.Frames.ConsumerLatency)
	check(c.Window.Scale >= 1, "window.scale %d < 1", c.Window.Scale)
	check(c.Window.TPS >= 1, "window.tps %d < 1", c.Window.TPS)
	check(c.Brush.Radius >= 0, "brush.radius %d is negative", c.Brush.Radius)
	check(c.Brush.Magnitude > 0, "brush.magnitude %v must be positive", c.Brush.Magnitude)
	return errors.Join(errs...)
}

// WaveParams returns the solver parameters.
func (c Config) WaveParams() waves.Params {
	return waves.Params{
		Rows:     c.Waves.Rows,
		Columns:  c.Waves.Columns,
		Spacing:  c.Waves.Spacing,
		TimeStep: c.Waves.TimeStep,
		Speed:    c.Waves.Speed,
		Damping:  c.Waves.Damping,
		Workers:  c.Waves.Workers,
	}
}

// SchedulerConfig returns the disturbance scheduler settings.
func (c Config) SchedulerConfig() waves.SchedulerConfig {
	return waves.SchedulerConfig{
		Interval:     c.Disturb.Interval.Seconds(),
		MinMagnitude: c.Disturb.MinMagnitude,
		MaxMagnitude: c.Disturb.MaxMagnitude,
		Margin:       c.Disturb.Margin,
	}
}
