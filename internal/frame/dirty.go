package frame

// Dirty counts how many more slots still need a copy of a changed record.
// Each slot holds its own copy, so a change must be written once per slot.
type Dirty struct {
	frames int
	depth  int
}

// NewDirty returns a countdown for a ring of the given depth. It starts
// dirty so that every slot receives the initial value.
func NewDirty(depth int) Dirty {
	return Dirty{frames: depth, depth: depth}
}

// Mark flags the record as changed.
func (d *Dirty) Mark() { d.frames = d.depth }

// Consume reports whether the current slot must be updated and counts the
// write.
func (d *Dirty) Consume() bool {
	if d.frames <= 0 {
		return false
	}
	d.frames--
	return true
}

// Pending returns the number of slots still waiting for the record.
func (d Dirty) Pending() int { return d.frames }
