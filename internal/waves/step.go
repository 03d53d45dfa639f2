package waves

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Update accumulates elapsed seconds and performs one fixed-dt step for every
// whole time step accumulated, at most MaxCatchUpSteps per call, returning the
// number of steps taken. Normals reflect the field after the last step.
func (f *Field) Update(elapsed float32) (int, error) {
	if !(elapsed > 0) {
		return 0, nil
	}
	if math.IsInf(float64(elapsed), 1) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidElapsed, elapsed)
	}
	f.accum += float64(elapsed)
	steps := f.dueSteps()
	if steps == 0 {
		return 0, nil
	}
	if f.gpu != nil {
		if err := f.gpu.Step(f, steps); err != nil {
			return 0, err
		}
	} else {
		for s := 0; s < steps; s++ {
			f.step()
		}
	}
	f.computeNormals()
	return steps, nil
}

// dueSteps takes the whole steps owed from the accumulator.
func (f *Field) dueSteps() int {
	dt := float64(f.dt)
	n := math.Floor(f.accum / dt)
	capped := n > MaxCatchUpSteps
	if capped {
		n = MaxCatchUpSteps
	}
	f.accum = max(f.accum-n*dt, 0)
	if capped {
		logger().Warn("wave catch-up capped", "steps", int(n), "owed_seconds", f.accum)
	}
	return int(n)
}

// step executes one CPU tick: the interior stencil, the boundary clamp and
// the layer rotation.
func (f *Field) step() {
	if f.pool != nil {
		f.pool.run(f.stepRow)
	} else {
		for i := 1; i < f.rows-1; i++ {
			f.stepRow(i)
		}
	}
	f.clampBoundary()
	f.swap()
}

// stepRow writes next for the interior cells of row i.
func (f *Field) stepRow(i int) {
	n := f.cols
	base := i * n
	center := f.curr[base : base+n]
	prev := f.prev[base : base+n]
	top := f.curr[base-n : base]
	bottom := f.curr[base+n : base+2*n]
	next := f.next[base : base+n]

	k1, k2, k3 := f.coef.K1, f.coef.K2, f.coef.K3
	j := 1
	for ; j+1 < n-1; j += 2 {
		next[j] = k1*prev[j] + k2*center[j] + k3*(top[j]+bottom[j]+center[j-1]+center[j+1])
		j1 := j + 1
		next[j1] = k1*prev[j1] + k2*center[j1] + k3*(top[j1]+bottom[j1]+center[j1-1]+center[j1+1])
	}
	for ; j < n-1; j++ {
		next[j] = k1*prev[j] + k2*center[j] + k3*(top[j]+bottom[j]+center[j-1]+center[j+1])
	}
}

// clampBoundary holds the edge of the new layer at zero height.
func (f *Field) clampBoundary() {
	n := f.cols
	last := (f.rows - 1) * n
	for j := 0; j < n; j++ {
		f.next[j] = 0
		f.next[last+j] = 0
	}
	for i := 1; i < f.rows-1; i++ {
		f.next[i*n] = 0
		f.next[i*n+n-1] = 0
	}
}

// swap rotates the layers so that next becomes current and current becomes
// previous.
func (f *Field) swap() {
	f.prev, f.curr, f.next = f.curr, f.next, f.prev
}

func (f *Field) computeNormals() {
	if f.pool != nil {
		f.pool.run(f.normalRow)
		return
	}
	for i := 1; i < f.rows-1; i++ {
		f.normalRow(i)
	}
}

// normalRow estimates the interior normals of row i from central differences.
// Boundary normals keep pointing straight up.
func (f *Field) normalRow(i int) {
	n := f.cols
	base := i * n
	twoDx := 2 * f.spacing
	for j := 1; j < n-1; j++ {
		k := base + j
		l := f.curr[k-1]
		r := f.curr[k+1]
		t := f.curr[k-n]
		b := f.curr[k+n]
		f.normals[k] = mgl32.Vec3{l - r, twoDx, b - t}.Normalize()
	}
}
