package app

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterdemo/internal/frame"
	"waterdemo/internal/render"
	"waterdemo/internal/waves"
)

// recorder keeps every submission and, when signal is set, releases the
// slot immediately.
type recorder struct {
	mu     sync.Mutex
	fence  *frame.Fence
	signal bool
	subs   []render.Submission
}

func (r *recorder) Submit(_ context.Context, s render.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
	if r.signal {
		r.fence.Signal(s.Marker)
	}
	return nil
}

func testOptions() Options {
	return Options{
		Waves:        waves.Params{Rows: 9, Columns: 9, Spacing: 1, TimeStep: 0.03, Speed: 4, Damping: 0.2},
		Scheduler:    waves.DefaultSchedulerConfig(),
		Seed:         1,
		Depth:        3,
		SyncTimeout:  time.Second,
		MaxFrameTime: 0.25,
	}
}

func newTestApp(t *testing.T, opts Options, signal bool) (*App, *recorder) {
	t.Helper()
	fence := frame.NewFence()
	rec := &recorder{fence: fence, signal: signal}
	a, err := New(opts, fence, rec)
	require.NoError(t, err)
	t.Cleanup(func() { a.field.Close() })
	return a, rec
}

func TestNewRejectsBadOptions(t *testing.T) {
	opts := testOptions()
	opts.Waves.TimeStep = 1
	_, err := New(opts, frame.NewFence(), &recorder{})
	assert.ErrorIs(t, err, waves.ErrInvalidParameters)

	opts = testOptions()
	opts.Depth = 1
	_, err = New(opts, frame.NewFence(), &recorder{})
	assert.ErrorIs(t, err, frame.ErrInvalidLayout)

	_, err = New(testOptions(), frame.NewFence(), nil)
	assert.Error(t, err)
}

func TestFrameCopiesFieldIntoSlot(t *testing.T) {
	a, rec := newTestApp(t, testOptions(), true)
	ctx := context.Background()

	require.NoError(t, a.DisturbAt(4, 4, 0.4))
	require.NoError(t, a.Frame(ctx, 0.03))

	require.Len(t, rec.subs, 1)
	s := rec.subs[0]
	assert.Equal(t, uint64(1), s.Marker)
	assert.Same(t, a.ring.Current(), s.Slot)
	assert.Equal(t, waterObject, s.Object)
	assert.Equal(t, waterMaterial, s.Material)
	require.Len(t, s.Slot.Vertices, 81)
	for k, v := range s.Slot.Vertices {
		assert.Equal(t, a.field.Position(k), v.Pos)
		assert.Equal(t, a.field.Normal(k), v.Normal)
		assert.Equal(t, a.field.TexCoord(k), v.TexC)
	}
	assert.NotEqual(t, float32(0.2), s.Slot.Vertices[40].Pos.Y())
	assert.Equal(t, s.Slot.Pass.EyePos, a.Camera().Eye())

	st := a.Stats()
	assert.Equal(t, uint64(1), st.Frames)
	assert.Equal(t, uint64(1), st.Steps)
	assert.Equal(t, uint64(1), st.Marker)
	assert.Equal(t, uint64(1), st.Completed)
}

func TestFrameClampsElapsedTime(t *testing.T) {
	a, _ := newTestApp(t, testOptions(), true)
	require.NoError(t, a.Frame(context.Background(), 10))
	st := a.Stats()
	assert.Equal(t, uint64(8), st.Steps)
	assert.Equal(t, float32(0.25), st.SimTime)

	require.NoError(t, a.Frame(context.Background(), -1))
	assert.Equal(t, uint64(8), a.Stats().Steps)

	require.NoError(t, a.Frame(context.Background(), float32(math.Inf(1))))
	assert.Equal(t, uint64(16), a.Stats().Steps)
}

func TestSimTimeTracksFrames(t *testing.T) {
	a, _ := newTestApp(t, testOptions(), true)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Frame(context.Background(), 0.1))
	}
	assert.InDelta(t, 0.3, a.SimTime(), 1e-6)
	assert.Equal(t, a.Stats().SimTime, a.SimTime())
}

func TestDirtyRecordsWrittenOncePerSlot(t *testing.T) {
	a, _ := newTestApp(t, testOptions(), true)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Frame(ctx, 0.01))
	}
	for _, it := range a.items {
		assert.Zero(t, it.dirty.Pending(), it.name)
	}
	assert.Zero(t, a.materials[grassMaterial].dirty.Pending())

	// Wipe every slot; the static records must stay wiped while the
	// animated water material is rewritten.
	for i := 0; i < a.ring.Depth(); i++ {
		require.NoError(t, a.ring.Advance(ctx))
		s := a.ring.Current()
		for k := range s.Objects {
			s.Objects[k] = frame.ObjectConstants{}
		}
		for k := range s.Materials {
			s.Materials[k] = frame.MaterialConstants{}
		}
	}
	require.NoError(t, a.Frame(ctx, 0.01))
	s := a.ring.Current()
	assert.Equal(t, frame.ObjectConstants{}, s.Objects[landObject])
	assert.Equal(t, frame.MaterialConstants{}, s.Materials[grassMaterial])
	assert.Equal(t, a.materials[waterMaterial].consts, s.Materials[waterMaterial])
}

func TestWaterTextureScrolls(t *testing.T) {
	a, _ := newTestApp(t, testOptions(), true)
	for i := 0; i < 30; i++ {
		require.NoError(t, a.Frame(context.Background(), 0.25))
	}
	m := &a.materials[waterMaterial].consts.MatTransform
	assert.InDelta(t, 0.75, m[12], 1e-4)
	assert.InDelta(t, 0.15, m[13], 1e-4)

	m[12] = 0.99
	a.animateMaterials(0.25)
	assert.InDelta(t, 0.015, m[12], 1e-4)
	assert.Equal(t, 3, a.materials[waterMaterial].dirty.Pending())
}

func TestFrameSyncTimeout(t *testing.T) {
	opts := testOptions()
	opts.Depth = 2
	opts.SyncTimeout = 20 * time.Millisecond
	a, rec := newTestApp(t, opts, false)
	ctx := context.Background()

	require.NoError(t, a.Frame(ctx, 0.03))
	require.NoError(t, a.Frame(ctx, 0.03))
	err := a.Frame(ctx, 0.03)
	require.ErrorIs(t, err, frame.ErrSyncTimeout)
	assert.Len(t, rec.subs, 2)
}

func TestDisturbAtOutOfRange(t *testing.T) {
	a, _ := newTestApp(t, testOptions(), true)
	assert.ErrorIs(t, a.DisturbAt(0, 4, 1), waves.ErrOutOfRange)
	assert.ErrorIs(t, a.DisturbAt(4, 8, 1), waves.ErrOutOfRange)
}

func TestAppWithRenderQueue(t *testing.T) {
	fence := frame.NewFence()
	q, err := render.NewQueue(fence, render.Config{Rows: 9, Columns: 9, Depth: 3, Latency: time.Millisecond})
	require.NoError(t, err)
	a, err := New(testOptions(), fence, q)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	for i := 0; i < 30; i++ {
		require.NoError(t, a.Frame(ctx, 1.0/60))
	}
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, uint64(30), fence.Completed())
	assert.Equal(t, uint64(30), q.Executed())
	assert.True(t, q.Snapshot(make([]byte, 9*9*4)))

	cancel()
	require.NoError(t, <-done)
}

func TestCameraClamps(t *testing.T) {
	c := DefaultCamera()
	c.Orbit(0, 10)
	assert.InDelta(t, maxPhi, c.Phi, 1e-6)
	c.Orbit(0, -10)
	assert.InDelta(t, minPhi, c.Phi, 1e-6)
	c.Zoom(1000)
	assert.Equal(t, float32(maxRadius), c.Radius)
	c.Zoom(-1000)
	assert.Equal(t, float32(minRadius), c.Radius)
	assert.InDelta(t, minRadius, c.Eye().Len(), 1e-4)

	d := DefaultCamera()
	eye := d.Eye()
	assert.InDelta(t, 0, eye.X(), 1e-4)
	assert.Less(t, eye.Z(), float32(0))
	assert.True(t, d.View().Mul4x1(eye.Vec4(1)).Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-3),
		"view matrix must move the eye to the origin")
}
