// Package waves evolves a water height field with an explicit finite
// difference solver for the damped 2-D wave equation.
package waves

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidParameters reports a malformed or unstable configuration.
	ErrInvalidParameters = errors.New("waves: invalid parameters")

	// ErrOutOfRange reports a disturbance outside the grid interior.
	ErrOutOfRange = errors.New("waves: disturbance out of range")

	// ErrInvalidElapsed reports an infinite elapsed time passed to Update.
	ErrInvalidElapsed = errors.New("waves: invalid elapsed time")
)

// MaxCatchUpSteps bounds the steps one Update call performs. Time beyond the
// bound stays accumulated and is worked off by later calls.
const MaxCatchUpSteps = 4096

// maxCourant is the largest e = speed²·dt²/spacing² for which the five point
// scheme stays bounded.
const maxCourant = 0.5

// Params describes the grid and the physical constants of a Field.
type Params struct {
	Rows     int
	Columns  int
	Spacing  float32
	TimeStep float32
	Speed    float32
	Damping  float32

	// Workers is the number of goroutines sharing the rows of a step.
	// Values below 2 step on the calling goroutine.
	Workers int
}

// Coefficients are the weights of the update
//
//	next = K1*prev + K2*curr + K3*(up + down + left + right)
//
// A stable configuration has -1 <= K1 < 1, K2 >= 0 and 0 < K3 <= 1/D.
type Coefficients struct {
	K1, K2, K3 float32

	// D is damping*dt + 2, the common denominator.
	D float32

	// Courant is speed²·dt²/spacing².
	Courant float32
}

// Stable reports whether c lies inside the stability bound of the scheme.
func (c Coefficients) Stable() bool {
	if c.D <= 0 || math32.IsNaN(c.K1) || math32.IsNaN(c.K2) || math32.IsNaN(c.K3) {
		return false
	}
	return c.K1 >= -1 && c.K1 < 1 &&
		c.K2 >= 0 &&
		c.K3 > 0 && c.K3 <= 1/c.D &&
		c.Courant <= maxCourant
}

func computeCoefficients(p Params) (Coefficients, error) {
	if !finitePositive(p.Spacing) {
		return Coefficients{}, fmt.Errorf("%w: spacing %v must be positive", ErrInvalidParameters, p.Spacing)
	}
	if !finitePositive(p.TimeStep) {
		return Coefficients{}, fmt.Errorf("%w: time step %v must be positive", ErrInvalidParameters, p.TimeStep)
	}
	if !finitePositive(p.Speed) {
		return Coefficients{}, fmt.Errorf("%w: speed %v must be positive", ErrInvalidParameters, p.Speed)
	}
	if math32.IsNaN(p.Damping) || math32.IsInf(p.Damping, 0) || p.Damping < 0 {
		return Coefficients{}, fmt.Errorf("%w: damping %v must be non-negative", ErrInvalidParameters, p.Damping)
	}

	dt := float64(p.TimeStep)
	dx := float64(p.Spacing)
	speed := float64(p.Speed)
	mu := float64(p.Damping)

	d := mu*dt + 2
	e := speed * speed * dt * dt / (dx * dx)
	if math.IsInf(d, 0) || math.IsInf(e, 0) || math.IsNaN(e) {
		return Coefficients{}, fmt.Errorf("%w: coefficients overflow", ErrInvalidParameters)
	}
	if e > maxCourant {
		return Coefficients{}, fmt.Errorf("%w: speed*dt/spacing = %.4f exceeds 1/sqrt(2) (e = %.4f > %.1f)",
			ErrInvalidParameters, math.Sqrt(e), e, maxCourant)
	}

	c := Coefficients{
		K1:      float32((mu*dt - 2) / d),
		K2:      float32((4 - 8*e) / d),
		K3:      float32(2 * e / d),
		D:       float32(d),
		Courant: float32(e),
	}
	if !c.Stable() {
		return Coefficients{}, fmt.Errorf("%w: coefficients k1=%g k2=%g k3=%g outside the stability bound",
			ErrInvalidParameters, c.K1, c.K2, c.K3)
	}
	return c, nil
}

func finitePositive(v float32) bool {
	return v > 0 && !math32.IsInf(v, 1)
}

// Field stores the three height layers of the solver together with the
// derived per-vertex normals.
type Field struct {
	rows, cols int
	spacing    float32
	dt         float32
	speed      float32
	damping    float32
	coef       Coefficients

	halfWidth float32
	halfDepth float32

	prev []float32
	curr []float32
	next []float32

	normals []mgl32.Vec3

	accum float64

	// hostDirty is set when curr or prev changed outside a device step.
	hostDirty bool

	pool *rowPool
	gpu  *openCLSolver
}

// New allocates a Field at rest. It fails with ErrInvalidParameters when the
// grid is smaller than 3x3 or the parameters violate the stability bound.
func New(p Params) (*Field, error) {
	if p.Rows < 3 || p.Columns < 3 {
		return nil, fmt.Errorf("%w: grid %dx%d, need at least 3x3", ErrInvalidParameters, p.Rows, p.Columns)
	}
	coef, err := computeCoefficients(p)
	if err != nil {
		return nil, err
	}
	size := p.Rows * p.Columns
	f := &Field{
		rows:      p.Rows,
		cols:      p.Columns,
		spacing:   p.Spacing,
		dt:        p.TimeStep,
		speed:     p.Speed,
		damping:   p.Damping,
		coef:      coef,
		halfWidth: float32(p.Columns-1) * p.Spacing * 0.5,
		halfDepth: float32(p.Rows-1) * p.Spacing * 0.5,
		prev:      make([]float32, size),
		curr:      make([]float32, size),
		next:      make([]float32, size),
		normals:   make([]mgl32.Vec3, size),
		hostDirty: true,
	}
	for k := range f.normals {
		f.normals[k] = mgl32.Vec3{0, 1, 0}
	}
	if p.Workers > 1 {
		f.pool = newRowPool(p.Workers, 1, p.Rows-2)
	}
	return f, nil
}

// Close stops the row workers and releases the OpenCL backend, if any.
func (f *Field) Close() {
	if f.pool != nil {
		f.pool.close()
		f.pool = nil
	}
	if f.gpu != nil {
		f.gpu.Close()
		f.gpu = nil
	}
}

// Disturb adds an impulse centred on interior cell (i, j): magnitude/2 at the
// cell and magnitude/4 on each of its four axis neighbours.
func (f *Field) Disturb(i, j int, magnitude float32) error {
	if i < 1 || i > f.rows-2 || j < 1 || j > f.cols-2 {
		return fmt.Errorf("%w: (%d, %d) not in [1, %d]x[1, %d]", ErrOutOfRange, i, j, f.rows-2, f.cols-2)
	}
	half := 0.5 * magnitude
	quarter := 0.25 * magnitude
	n := f.cols
	k := i*n + j
	f.curr[k] += half
	f.curr[k+1] += quarter
	f.curr[k-1] += quarter
	f.curr[k+n] += quarter
	f.curr[k-n] += quarter
	f.hostDirty = true
	return nil
}

// RowCount returns m.
func (f *Field) RowCount() int { return f.rows }

// ColumnCount returns n.
func (f *Field) ColumnCount() int { return f.cols }

// VertexCount returns m*n.
func (f *Field) VertexCount() int { return f.rows * f.cols }

// TriangleCount returns the triangles of the grid mesh, 2*(m-1)*(n-1).
func (f *Field) TriangleCount() int { return 2 * (f.rows - 1) * (f.cols - 1) }

// Width returns the extent along x.
func (f *Field) Width() float32 { return float32(f.cols) * f.spacing }

// Depth returns the extent along z.
func (f *Field) Depth() float32 { return float32(f.rows) * f.spacing }

// TimeStep returns the fixed integration step.
func (f *Field) TimeStep() float32 { return f.dt }

// Coefficients returns the update weights computed at construction.
func (f *Field) Coefficients() Coefficients { return f.coef }

// Height returns the current height of cell (i, j).
func (f *Field) Height(i, j int) float32 { return f.curr[i*f.cols+j] }

// Position returns the position of vertex k = i*n + j. The grid is centred on
// the origin with row 0 at the far (+z) edge.
func (f *Field) Position(k int) mgl32.Vec3 {
	i, j := k/f.cols, k%f.cols
	return mgl32.Vec3{
		-f.halfWidth + float32(j)*f.spacing,
		f.curr[k],
		f.halfDepth - float32(i)*f.spacing,
	}
}

// Normal returns the unit normal of vertex k.
func (f *Field) Normal(k int) mgl32.Vec3 { return f.normals[k] }

// TexCoord maps the (x, z) of vertex k into [0,1]².
func (f *Field) TexCoord(k int) mgl32.Vec2 {
	p := f.Position(k)
	return mgl32.Vec2{0.5 + p.X()/f.Width(), 0.5 - p.Z()/f.Depth()}
}
