package frame

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidLayout reports a ring that cannot be built.
var ErrInvalidLayout = errors.New("frame: invalid ring layout")

// Layout sizes the buffers owned by every slot.
type Layout struct {
	Objects   int
	Materials int
	Vertices  int
}

// Slot is the set of resources written by the producer for one frame.
type Slot struct {
	Objects   []ObjectConstants
	Materials []MaterialConstants
	Pass      PassConstants
	Vertices  []Vertex

	marker uint64
}

// Marker returns the fence value that must be reached before the slot is
// written again. Zero means the slot was never submitted.
func (s *Slot) Marker() uint64 { return s.marker }

// Ring cycles through a fixed number of slots. It is owned by a single
// producer goroutine.
type Ring struct {
	fence   *Fence
	slots   []*Slot
	current int
}

// NewRing allocates depth slots sized by layout.
func NewRing(depth int, fence *Fence, layout Layout) (*Ring, error) {
	switch {
	case depth < 2:
		return nil, fmt.Errorf("%w: depth %d, need at least 2", ErrInvalidLayout, depth)
	case fence == nil:
		return nil, fmt.Errorf("%w: nil fence", ErrInvalidLayout)
	case layout.Objects < 0 || layout.Materials < 0 || layout.Vertices < 0:
		return nil, fmt.Errorf("%w: negative buffer size in %+v", ErrInvalidLayout, layout)
	}
	r := &Ring{fence: fence, slots: make([]*Slot, depth)}
	for i := range r.slots {
		r.slots[i] = &Slot{
			Objects:   make([]ObjectConstants, layout.Objects),
			Materials: make([]MaterialConstants, layout.Materials),
			Vertices:  make([]Vertex, layout.Vertices),
		}
	}
	return r, nil
}

// Depth returns the number of slots.
func (r *Ring) Depth() int { return len(r.slots) }

// Index returns the position of the current slot.
func (r *Ring) Index() int { return r.current }

// Current returns the slot the producer is writing.
func (r *Ring) Current() *Slot { return r.slots[r.current] }

// Fence returns the fence the ring waits on.
func (r *Ring) Fence() *Fence { return r.fence }

// Advance moves to the next slot, waiting until the consumer has finished
// with it. On error the ring stays on the previous slot.
func (r *Ring) Advance(ctx context.Context) error {
	next := (r.current + 1) % len(r.slots)
	slot := r.slots[next]
	if slot.marker != 0 && r.fence.Completed() < slot.marker {
		logger().Debug("waiting for frame slot", "slot", next, "marker", slot.marker)
		if err := r.fence.Wait(ctx, slot.marker); err != nil {
			return fmt.Errorf("advancing to slot %d: %w", next, err)
		}
	}
	r.current = next
	return nil
}

// Retire records the marker the consumer will signal once it has read the
// current slot. A smaller marker than the recorded one is ignored.
func (r *Ring) Retire(marker uint64) {
	slot := r.slots[r.current]
	if marker > slot.marker {
		slot.marker = marker
	}
}

// Drain waits until every retired slot has been released by the consumer.
func (r *Ring) Drain(ctx context.Context) error {
	var highest uint64
	for _, s := range r.slots {
		highest = max(highest, s.marker)
	}
	if highest == 0 {
		return nil
	}
	if err := r.fence.Wait(ctx, highest); err != nil {
		return fmt.Errorf("draining frame ring: %w", err)
	}
	return nil
}
