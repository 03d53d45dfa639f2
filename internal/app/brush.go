package app

import (
	"errors"

	"github.com/chewxy/math32"

	"waterdemo/internal/waves"
)

// BrushCell is one cell of a brush relative to its centre. Weight scales the
// click magnitude and falls off linearly towards the rim.
type BrushCell struct {
	DI, DJ int
	Weight float32
}

// Brush is the footprint disturbed by a single click.
type Brush []BrushCell

// NewBrush returns the cells within radius of the centre. Radius zero is the
// centre cell alone.
func NewBrush(radius int) Brush {
	if radius < 0 {
		radius = 0
	}
	b := make(Brush, 0, (2*radius+1)*(2*radius+1))
	r2 := radius * radius
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			d2 := di*di + dj*dj
			if d2 > r2 {
				continue
			}
			w := 1 - math32.Sqrt(float32(d2))/float32(radius+1)
			b = append(b, BrushCell{DI: di, DJ: dj, Weight: w})
		}
	}
	return b
}

// Radius returns the largest offset of the brush along either axis.
func (b Brush) Radius() int {
	r := 0
	for _, c := range b {
		r = max(r, c.DI, c.DJ)
	}
	return r
}

// DisturbBrush applies b centred on (i, j) and returns the number of cells
// disturbed. Cells off the interior are skipped.
func (a *App) DisturbBrush(i, j int, magnitude float32, b Brush) (int, error) {
	hits := 0
	for _, c := range b {
		err := a.field.Disturb(i+c.DI, j+c.DJ, magnitude*c.Weight)
		switch {
		case err == nil:
			hits++
		case errors.Is(err, waves.ErrOutOfRange):
		default:
			return hits, err
		}
	}
	return hits, nil
}
