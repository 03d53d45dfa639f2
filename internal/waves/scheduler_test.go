package waves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// impulse records the cell and magnitude of a single disturbance by
// comparing a field against its state before the tick.
func impulse(t *testing.T, f *Field, before []float32) (int, int, float32) {
	t.Helper()
	best, idx := float32(0), -1
	for k, h := range f.curr {
		if d := h - before[k]; d > best {
			best, idx = d, k
		}
	}
	require.GreaterOrEqual(t, idx, 0, "no disturbance found")
	return idx / f.cols, idx % f.cols, 2 * best
}

func TestSchedulerInterval(t *testing.T) {
	f := newTestField(t, demoParams())
	s := NewScheduler(DefaultSchedulerConfig(), 1)

	fired, err := s.Tick(f, 0.1)
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Zero(t, f.SumSquares())

	fired, err = s.Tick(f, 0.25)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, float32(0.25), s.Last())

	fired, err = s.Tick(f, 0.3)
	require.NoError(t, err)
	assert.False(t, fired)

	// A long gap fires once per tick and lets last trail behind total.
	fired, err = s.Tick(f, 1.0)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, float32(0.5), s.Last())
	fired, err = s.Tick(f, 1.0)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, float32(0.75), s.Last())
}

func TestSchedulerDisabled(t *testing.T) {
	f := newTestField(t, demoParams())
	cfg := DefaultSchedulerConfig()
	cfg.Interval = 0
	s := NewScheduler(cfg, 1)
	fired, err := s.Tick(f, 100)
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Zero(t, f.SumSquares())
}

func TestSchedulerRespectsMarginAndMagnitude(t *testing.T) {
	p := demoParams()
	p.Rows, p.Columns = 20, 12
	f := newTestField(t, p)
	s := NewScheduler(DefaultSchedulerConfig(), 42)

	before := make([]float32, f.VertexCount())
	total := float32(0)
	for n := 0; n < 500; n++ {
		copy(before, f.curr)
		total += 0.25
		fired, err := s.Tick(f, total)
		require.NoError(t, err)
		require.True(t, fired)

		i, j, mag := impulse(t, f, before)
		assert.True(t, i >= 4 && i <= 15, "row %d", i)
		assert.True(t, j >= 4 && j <= 7, "column %d", j)
		assert.InDelta(t, 0.35, mag, 0.15+1e-4)
	}
}

func TestSchedulerMarginClampedOnSmallGrid(t *testing.T) {
	p := demoParams()
	p.Rows, p.Columns = 3, 4
	f := newTestField(t, p)
	cfg := DefaultSchedulerConfig()
	cfg.Margin = 10
	s := NewScheduler(cfg, 3)

	before := make([]float32, f.VertexCount())
	for n := 1; n <= 50; n++ {
		copy(before, f.curr)
		fired, err := s.Tick(f, float32(n)*cfg.Interval)
		require.NoError(t, err)
		require.True(t, fired)
		i, j, _ := impulse(t, f, before)
		assert.Equal(t, 1, i)
		assert.Contains(t, []int{1, 2}, j)
	}
}

func TestSchedulerDeterministic(t *testing.T) {
	run := func(seed uint64) []float32 {
		p := demoParams()
		p.Rows, p.Columns = 16, 16
		f := newTestField(t, p)
		s := NewScheduler(DefaultSchedulerConfig(), seed)
		for n := 1; n <= 20; n++ {
			_, err := s.Tick(f, float32(n)*0.25)
			require.NoError(t, err)
		}
		out := make([]float32, f.VertexCount())
		copy(out, f.curr)
		return out
	}
	assert.Equal(t, run(9), run(9))
	assert.NotEqual(t, run(9), run(10))
}

func TestSchedulerSwapsInvertedMagnitudes(t *testing.T) {
	cfg := DefaultSchedulerConfig()
	cfg.MinMagnitude, cfg.MaxMagnitude = 0.5, 0.2
	s := NewScheduler(cfg, 1)
	assert.Equal(t, float32(0.2), s.cfg.MinMagnitude)
	assert.Equal(t, float32(0.5), s.cfg.MaxMagnitude)
}
