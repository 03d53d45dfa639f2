package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterdemo/internal/waves"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	f, err := waves.New(cfg.WaveParams())
	require.NoError(t, err)
	f.Close()

	assert.Equal(t, waves.DefaultSchedulerConfig(), cfg.SchedulerConfig())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[waves]
rows = 64
damping = 0.5

[disturb]
interval = "500ms"
seed = 99

[frames]
sync_timeout = "5s"
consumer_latency = "3ms"

[brush]
radius = 3
`))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Waves.Rows)
	assert.Equal(t, 128, cfg.Waves.Columns)
	assert.Equal(t, float32(0.5), cfg.Waves.Damping)
	assert.Equal(t, float32(0.5), cfg.SchedulerConfig().Interval)
	assert.Equal(t, uint64(99), cfg.Disturb.Seed)
	assert.Equal(t, 5*time.Second, cfg.Frames.SyncTimeout.Duration)
	assert.Equal(t, 3*time.Millisecond, cfg.Frames.ConsumerLatency.Duration)
	assert.Equal(t, 3, cfg.Frames.Depth)
	assert.Equal(t, 3, cfg.Brush.Radius)
	assert.Equal(t, float32(0.6), cfg.Brush.Magnitude)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[waves]\nheight = 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "height")
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("[frames]\nsync_timeout = \"soon\"\n"))
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Waves.Rows = 2
	cfg.Frames.Depth = 1
	cfg.Disturb.MinMagnitude = 2
	cfg.Brush.Radius = -1
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"waves.rows", "frames.depth", "min_magnitude", "brush.radius"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte("[window]\nscale = 2\n"), 0o644))
	cfg, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Window.Scale)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[frames]\ndepth = 1\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
