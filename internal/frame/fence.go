// Package frame holds the per-frame resources shared between the simulation
// producer and the consumer that reads them, together with the progress fence
// that tells the producer when a slot may be rewritten.
package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSyncTimeout reports that the consumer did not reach a required marker
// before the caller's context expired.
var ErrSyncTimeout = errors.New("frame: timed out waiting for consumer")

// Fence is a monotonically increasing progress counter. The consumer signals
// the marker of every slot it finished reading; the producer waits for the
// marker of a slot before reusing it.
type Fence struct {
	mu        sync.Mutex
	cond      *sync.Cond
	completed uint64
}

// NewFence returns a fence whose counter starts at zero.
func NewFence() *Fence {
	f := &Fence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Completed returns the highest marker signalled so far.
func (f *Fence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Signal raises the counter to value. Lower values are ignored.
func (f *Fence) Signal(value uint64) {
	f.mu.Lock()
	if value > f.completed {
		f.completed = value
		f.cond.Broadcast()
	}
	f.mu.Unlock()
}

// Wait blocks until the counter reaches value or ctx is done. Expiry is
// reported as ErrSyncTimeout wrapping the context error.
func (f *Fence) Wait(ctx context.Context, value uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed >= value {
		return nil
	}

	stop := context.AfterFunc(ctx, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer stop()

	for f.completed < value {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: marker %d, completed %d: %w", ErrSyncTimeout, value, f.completed, err)
		}
		f.cond.Wait()
	}
	return nil
}
