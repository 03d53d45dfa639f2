// Package render consumes submitted frame slots on its own goroutine. It
// stands in for a GPU command queue: each submission is shaded into an RGBA
// image and its marker is signalled on the fence once the slot has been read.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"waterdemo/internal/frame"
)

// Submission asks the queue to draw one slot.
type Submission struct {
	Slot   *frame.Slot
	Marker uint64

	// Object and Material index the water item within the slot.
	Object   int
	Material int
}

// Config sizes the queue.
type Config struct {
	// Rows and Columns are the dimensions of the water mesh; the image has
	// one pixel per vertex.
	Rows    int
	Columns int

	// Depth bounds the number of queued submissions.
	Depth int

	// Latency delays every submission, emulating a slow device.
	Latency time.Duration

	Logger *slog.Logger
}

// Queue shades submissions and publishes the latest image.
type Queue struct {
	fence *frame.Fence
	cfg   Config
	log   *slog.Logger
	subs  chan Submission

	mu        sync.Mutex
	front     []byte
	back      []byte
	published bool

	executed atomic.Uint64
}

// NewQueue returns a queue that signals fence after each submission.
func NewQueue(fence *frame.Fence, cfg Config) (*Queue, error) {
	if fence == nil {
		return nil, errors.New("render: nil fence")
	}
	if cfg.Rows < 1 || cfg.Columns < 1 {
		return nil, fmt.Errorf("render: invalid image size %dx%d", cfg.Columns, cfg.Rows)
	}
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	size := cfg.Rows * cfg.Columns * 4
	return &Queue{
		fence: fence,
		cfg:   cfg,
		log:   log,
		subs:  make(chan Submission, cfg.Depth),
		front: make([]byte, size),
		back:  make([]byte, size),
	}, nil
}

// Size returns the width and height of the published image.
func (q *Queue) Size() (int, int) { return q.cfg.Columns, q.cfg.Rows }

// Executed returns the number of submissions processed.
func (q *Queue) Executed() uint64 { return q.executed.Load() }

// Submit enqueues s. It blocks only when Depth submissions are pending.
func (q *Queue) Submit(ctx context.Context, s Submission) error {
	if s.Slot == nil {
		return errors.New("render: submission without slot")
	}
	select {
	case q.subs <- s:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("render: submitting marker %d: %w", s.Marker, ctx.Err())
	}
}

// Run processes submissions until ctx is cancelled, which is not an error.
func (q *Queue) Run(ctx context.Context) error {
	q.log.Debug("render queue started", "width", q.cfg.Columns, "height", q.cfg.Rows, "latency", q.cfg.Latency)
	for {
		select {
		case <-ctx.Done():
			q.log.Debug("render queue stopped", "executed", q.Executed())
			return nil
		case s := <-q.subs:
			if q.cfg.Latency > 0 {
				t := time.NewTimer(q.cfg.Latency)
				select {
				case <-ctx.Done():
					t.Stop()
					return nil
				case <-t.C:
				}
			}
			if err := q.execute(s); err != nil {
				return err
			}
		}
	}
}

func (q *Queue) execute(s Submission) error {
	slot := s.Slot
	want := q.cfg.Rows * q.cfg.Columns
	if len(slot.Vertices) != want {
		return fmt.Errorf("render: slot has %d vertices, want %d", len(slot.Vertices), want)
	}
	if s.Object < 0 || s.Object >= len(slot.Objects) || s.Material < 0 || s.Material >= len(slot.Materials) {
		return fmt.Errorf("render: object %d or material %d out of range", s.Object, s.Material)
	}

	sh := newShader(slot.Objects[s.Object], slot.Materials[s.Material], &slot.Pass)
	for k, v := range slot.Vertices {
		c := sh.shade(v)
		p := q.back[k*4 : k*4+4 : k*4+4]
		p[0] = toByte(c[0])
		p[1] = toByte(c[1])
		p[2] = toByte(c[2])
		p[3] = 0xff
	}

	q.mu.Lock()
	q.front, q.back = q.back, q.front
	q.published = true
	q.mu.Unlock()

	q.executed.Add(1)
	q.fence.Signal(s.Marker)
	return nil
}

// Snapshot copies the latest image into dst and reports whether one has been
// published. dst must hold Columns*Rows*4 bytes.
func (q *Queue) Snapshot(dst []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.published {
		return false
	}
	copy(dst, q.front)
	return true
}
