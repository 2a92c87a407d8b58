package dyntask

// A Policy decides when a latch adopts the value of a new impulse.
type Policy int

const (
	// Immediate latches adopt an impulse at the timestep it fires.
	Immediate Policy = iota
	// Delayed latches expose the previously latched value when an impulse
	// fires, and only adopt the new value at the following impulse.
	Delayed
)

func (p Policy) String() string {
	switch p {
	case Immediate:
		return "immediate"
	case Delayed:
		return "delayed"
	}
	return "unknown"
}

// Reconstruct converts a sparse impulse signal into the piecewise constant
// signal held by a latch. Zero entries hold the previous value.
// When impulses[0] is non-zero, as it is for every EventTrain, the result
// never contains zeros.
func Reconstruct(impulses []float64, p Policy) []float64 {
	held := make([]float64, len(impulses))
	if len(impulses) == 0 {
		return held
	}
	held[0] = impulses[0]
	pending := impulses[0]
	for t := 1; t < len(impulses); t++ {
		u := impulses[t]
		if u == 0 {
			held[t] = held[t-1]
			continue
		}
		switch p {
		case Delayed:
			held[t] = pending
			pending = u
		default:
			held[t] = u
		}
	}
	return held
}
