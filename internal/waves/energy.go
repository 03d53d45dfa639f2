package waves

// Energy returns the discrete energy carried between the previous and the
// current layer,
//
//	E = Σ (curr-prev)²/dt² + (speed/spacing)² · Σ_edges Δcurr·Δprev
//
// where the second sum runs over every pair of adjacent cells. With zero
// boundaries and damping >= 0 the scheme never increases E from one step to
// the next; a Disturb injects energy.
func (f *Field) Energy() float64 {
	dt := float64(f.dt)
	c := float64(f.speed) / float64(f.spacing)
	n := f.cols

	var kinetic, potential float64
	for k := range f.curr {
		d := float64(f.curr[k]) - float64(f.prev[k])
		kinetic += d * d
	}
	for i := 0; i < f.rows; i++ {
		base := i * n
		for j := 0; j < n; j++ {
			k := base + j
			if j+1 < n {
				potential += (float64(f.curr[k]) - float64(f.curr[k+1])) *
					(float64(f.prev[k]) - float64(f.prev[k+1]))
			}
			if i+1 < f.rows {
				potential += (float64(f.curr[k]) - float64(f.curr[k+n])) *
					(float64(f.prev[k]) - float64(f.prev[k+n]))
			}
		}
	}
	return kinetic/(dt*dt) + c*c*potential
}

// SumSquares returns the sum of squared current heights.
func (f *Field) SumSquares() float64 {
	var sum float64
	for _, h := range f.curr {
		sum += float64(h) * float64(h)
	}
	return sum
}
