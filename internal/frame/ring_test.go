package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRing(t *testing.T, depth int) (*Ring, *Fence) {
	t.Helper()
	fence := NewFence()
	r, err := NewRing(depth, fence, Layout{Objects: 2, Materials: 2, Vertices: 81})
	require.NoError(t, err)
	return r, fence
}

func TestNewRingRejectsInvalidLayout(t *testing.T) {
	fence := NewFence()
	cases := []struct {
		name   string
		depth  int
		fence  *Fence
		layout Layout
	}{
		{"depth one", 1, fence, Layout{}},
		{"depth zero", 0, fence, Layout{}},
		{"nil fence", 3, nil, Layout{}},
		{"negative objects", 3, fence, Layout{Objects: -1}},
		{"negative vertices", 3, fence, Layout{Vertices: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRing(tc.depth, tc.fence, tc.layout)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrInvalidLayout)
		})
	}
}

func TestRingAllocatesSlots(t *testing.T) {
	r, _ := newTestRing(t, 3)
	assert.Equal(t, 3, r.Depth())
	assert.Equal(t, 0, r.Index())
	seen := map[*Slot]bool{}
	for i := 0; i < 3; i++ {
		s := r.Current()
		assert.Len(t, s.Objects, 2)
		assert.Len(t, s.Materials, 2)
		assert.Len(t, s.Vertices, 81)
		assert.Zero(t, s.Marker())
		seen[s] = true
		require.NoError(t, r.Advance(context.Background()))
	}
	assert.Len(t, seen, 3)
}

func TestAdvanceBlocksUntilConsumerCatchesUp(t *testing.T) {
	r, fence := newTestRing(t, 3)
	ctx := context.Background()

	var marker uint64
	for frame := 0; frame < 3; frame++ {
		require.NoError(t, r.Advance(ctx))
		marker++
		r.Retire(marker)
	}
	assert.Equal(t, 0, r.Index())

	done := make(chan error, 1)
	go func() { done <- r.Advance(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("fourth advance returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	fence.Signal(1)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("fourth advance still blocked after the fence reached its marker")
	}
	assert.Equal(t, 1, r.Index())
}

func TestAdvanceTimesOut(t *testing.T) {
	r, fence := newTestRing(t, 2)
	ctx := context.Background()
	for marker := uint64(1); marker <= 2; marker++ {
		require.NoError(t, r.Advance(ctx))
		r.Retire(marker)
	}
	before := r.Index()

	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := r.Advance(tctx)
	require.ErrorIs(t, err, ErrSyncTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, before, r.Index(), "failed advance must not move the ring")

	fence.Signal(2)
	require.NoError(t, r.Advance(ctx))
}

func TestRetireTwiceDoesNotDeadlock(t *testing.T) {
	r, fence := newTestRing(t, 2)
	ctx := context.Background()

	require.NoError(t, r.Advance(ctx))
	r.Retire(1)
	r.Retire(2)
	assert.Equal(t, uint64(2), r.Current().Marker())
	r.Retire(1)
	assert.Equal(t, uint64(2), r.Current().Marker())
	fence.Signal(2)

	require.NoError(t, r.Advance(ctx))
	r.Retire(3)
	fence.Signal(3)

	tctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, r.Advance(tctx))
	require.NoError(t, r.Advance(tctx))
}

func TestDrain(t *testing.T) {
	r, fence := newTestRing(t, 3)
	ctx := context.Background()
	require.NoError(t, r.Drain(ctx))

	for marker := uint64(1); marker <= 3; marker++ {
		require.NoError(t, r.Advance(ctx))
		r.Retire(marker)
	}
	fence.Signal(2)

	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Drain(tctx), ErrSyncTimeout)

	go func() {
		time.Sleep(10 * time.Millisecond)
		fence.Signal(3)
	}()
	assert.NoError(t, r.Drain(ctx))
}
