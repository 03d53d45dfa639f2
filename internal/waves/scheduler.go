package waves

import "math/rand/v2"

// SchedulerConfig controls the automatic disturbances.
type SchedulerConfig struct {
	// Interval is the simulated time between disturbances, in seconds.
	// Zero disables the scheduler.
	Interval float32

	MinMagnitude float32
	MaxMagnitude float32

	// Margin keeps disturbances this many cells away from each edge. It is
	// clamped so that at least one interior cell remains eligible.
	Margin int
}

// DefaultSchedulerConfig fires every quarter second with magnitudes in
// [0.2, 0.5], four cells away from the edges.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     0.25,
		MinMagnitude: 0.2,
		MaxMagnitude: 0.5,
		Margin:       4,
	}
}

// Scheduler disturbs a Field at random interior cells on a fixed interval of
// simulated time.
type Scheduler struct {
	cfg  SchedulerConfig
	last float32
	rng  *rand.Rand
}

// NewScheduler returns a Scheduler whose choices are determined by seed.
func NewScheduler(cfg SchedulerConfig, seed uint64) *Scheduler {
	if cfg.MaxMagnitude < cfg.MinMagnitude {
		cfg.MinMagnitude, cfg.MaxMagnitude = cfg.MaxMagnitude, cfg.MinMagnitude
	}
	return &Scheduler{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, 0)),
	}
}

// Last returns the simulated time of the most recent trigger.
func (s *Scheduler) Last() float32 { return s.last }

// Tick fires at most one disturbance when total has moved at least one
// interval past the last trigger. It reports whether a disturbance fired.
func (s *Scheduler) Tick(f *Field, total float32) (bool, error) {
	if s.cfg.Interval <= 0 || total-s.last < s.cfg.Interval {
		return false, nil
	}
	s.last += s.cfg.Interval

	i := s.pick(f.RowCount())
	j := s.pick(f.ColumnCount())
	mag := s.cfg.MinMagnitude + s.rng.Float32()*(s.cfg.MaxMagnitude-s.cfg.MinMagnitude)
	if err := f.Disturb(i, j, mag); err != nil {
		return false, err
	}
	return true, nil
}

// pick returns a uniform index in [margin, size-1-margin].
func (s *Scheduler) pick(size int) int {
	margin := clampCoord(s.cfg.Margin, 1, (size-1)/2)
	return margin + s.rng.IntN(size-2*margin)
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
