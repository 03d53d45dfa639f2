// Package app drives one frame of the demo: it advances the frame ring,
// disturbs and integrates the water, fills the current slot and hands it to
// the consumer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"waterdemo/internal/frame"
	"waterdemo/internal/render"
	"waterdemo/internal/waves"
)

const (
	nearZ = 1
	farZ  = 1000
)

// Options configures an App.
type Options struct {
	Waves     waves.Params
	Scheduler waves.SchedulerConfig
	Seed      uint64

	// Depth is the number of frame slots in flight.
	Depth int

	// SyncTimeout bounds the wait for a slot to be released.
	SyncTimeout time.Duration

	// MaxFrameTime caps the elapsed seconds fed to the solver in one frame.
	MaxFrameTime float32

	TargetWidth  int
	TargetHeight int

	OpenCL bool
	Logger *slog.Logger
}

// Submitter accepts filled slots. render.Queue implements it.
type Submitter interface {
	Submit(ctx context.Context, s render.Submission) error
}

// Stats summarises the progress of an App.
type Stats struct {
	Frames      uint64
	Steps       uint64
	Marker      uint64
	Completed   uint64
	SimTime     float32
	Energy      float64
	Accelerated bool
}

// App owns the water field, the frame ring and the scene constants. All
// methods must be called from the producer goroutine.
type App struct {
	opts Options
	log  *slog.Logger

	field *waves.Field
	sched *waves.Scheduler
	fence *frame.Fence
	ring  *frame.Ring
	sub   Submitter

	items     []renderItem
	materials []material
	camera    Camera

	total      float32
	fenceValue uint64
	frames     uint64
	steps      uint64
}

// New builds the field and the ring. Slots are submitted to sub, which must
// signal fence with each submission's marker once done with the slot.
func New(opts Options, fence *frame.Fence, sub Submitter) (*App, error) {
	if sub == nil {
		return nil, errors.New("app: nil submitter")
	}
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		opts.TargetWidth, opts.TargetHeight = opts.Waves.Columns, opts.Waves.Rows
	}
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		opts.TargetWidth, opts.TargetHeight = 1, 1
	}
	if opts.MaxFrameTime <= 0 {
		opts.MaxFrameTime = 0.25
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = 2 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	field, err := waves.New(opts.Waves)
	if err != nil {
		return nil, err
	}
	ring, err := frame.NewRing(opts.Depth, fence, frame.Layout{
		Objects:   objectCount,
		Materials: materialCount,
		Vertices:  field.VertexCount(),
	})
	if err != nil {
		field.Close()
		return nil, err
	}
	if opts.OpenCL {
		if err := field.EnableOpenCL(); err != nil {
			log.Warn("OpenCL unavailable, stepping on the CPU", "err", err)
		}
	}

	a := &App{
		opts:      opts,
		log:       log,
		field:     field,
		sched:     waves.NewScheduler(opts.Scheduler, opts.Seed),
		fence:     fence,
		ring:      ring,
		sub:       sub,
		items:     buildRenderItems(opts.Depth),
		materials: buildMaterials(opts.Depth),
		camera:    DefaultCamera(),
	}
	c := field.Coefficients()
	log.Info("water field ready",
		"rows", field.RowCount(), "columns", field.ColumnCount(),
		"k1", c.K1, "k2", c.K2, "k3", c.K3, "courant", c.Courant,
		"depth", ring.Depth(), "accelerated", field.Accelerated())
	return a, nil
}

// Frame advances the simulation by dt seconds and submits the result.
func (a *App) Frame(ctx context.Context, dt float32) error {
	if !(dt > 0) {
		dt = 0
	}
	if dt > a.opts.MaxFrameTime {
		dt = a.opts.MaxFrameTime
	}

	wctx, cancel := context.WithTimeout(ctx, a.opts.SyncTimeout)
	err := a.ring.Advance(wctx)
	cancel()
	if err != nil {
		return err
	}
	slot := a.ring.Current()
	a.total += dt

	a.animateMaterials(dt)
	a.updateObjectConstants(slot)
	a.updateMaterialConstants(slot)
	a.updatePassConstants(slot, dt)

	if _, err := a.sched.Tick(a.field, a.total); err != nil {
		if !errors.Is(err, waves.ErrOutOfRange) {
			return err
		}
		a.log.Warn("skipping disturbance", "err", err)
	}
	steps, err := a.field.Update(dt)
	if err != nil {
		return fmt.Errorf("updating water: %w", err)
	}
	a.steps += uint64(steps)

	for k := range slot.Vertices {
		slot.Vertices[k] = frame.Vertex{
			Pos:    a.field.Position(k),
			Normal: a.field.Normal(k),
			TexC:   a.field.TexCoord(k),
		}
	}

	a.fenceValue++
	a.ring.Retire(a.fenceValue)
	a.frames++
	return a.sub.Submit(ctx, render.Submission{
		Slot:     slot,
		Marker:   a.fenceValue,
		Object:   waterObject,
		Material: waterMaterial,
	})
}

// DisturbAt disturbs cell (i, j) of the water.
func (a *App) DisturbAt(i, j int, magnitude float32) error {
	return a.field.Disturb(i, j, magnitude)
}

// Orbit rotates the camera by the given angles in radians.
func (a *App) Orbit(dTheta, dPhi float32) { a.camera.Orbit(dTheta, dPhi) }

// Zoom changes the camera distance.
func (a *App) Zoom(d float32) { a.camera.Zoom(d) }

// Camera returns the current camera.
func (a *App) Camera() Camera { return a.camera }

// Grid returns the rows and columns of the water mesh.
func (a *App) Grid() (int, int) { return a.field.RowCount(), a.field.ColumnCount() }

// SimTime returns the simulated seconds driven so far.
func (a *App) SimTime() float32 { return a.total }

// Stats reports progress counters. It walks the whole field to measure the
// energy.
func (a *App) Stats() Stats {
	return Stats{
		Frames:      a.frames,
		Steps:       a.steps,
		Marker:      a.fenceValue,
		Completed:   a.fence.Completed(),
		SimTime:     a.total,
		Energy:      a.field.Energy(),
		Accelerated: a.field.Accelerated(),
	}
}

// Close waits for in-flight frames and releases the field.
func (a *App) Close(ctx context.Context) error {
	err := a.ring.Drain(ctx)
	a.field.Close()
	return err
}
