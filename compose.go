package dyntask

import (
	"fmt"

	"github.com/gonum/floats"
)

// A Mode selects how reconstructed latch channels combine into targets.
type Mode int

const (
	// Product emits a single channel, the elementwise product of two latches.
	Product Mode = iota
	// Identity emits every latch channel unchanged.
	Identity
	// MixedProducts takes three latches b1, b2, b3 and emits
	// b1·b2, b2·b3 and b1·b2·b3.
	MixedProducts
)

func (m Mode) String() string {
	switch m {
	case Product:
		return "product"
	case Identity:
		return "identity"
	case MixedProducts:
		return "mixed-products"
	}
	return "unknown"
}

// Compose combines latch channels into target channels. Both the arguments
// and the result are channel-major.
func Compose(mode Mode, latches ...[]float64) ([][]float64, error) {
	if len(latches) == 0 {
		return nil, fmt.Errorf("%w: compose %v with no channels", ErrInvalidParameter, mode)
	}
	n := len(latches[0])
	for i, l := range latches {
		if len(l) != n {
			return nil, fmt.Errorf("%w: channel %d has length %d, want %d", ErrShapeMismatch, i, len(l), n)
		}
	}

	switch mode {
	case Product:
		if len(latches) != 2 {
			return nil, fmt.Errorf("%w: %v needs 2 channels, got %d", ErrInvalidParameter, mode, len(latches))
		}
		z := make([]float64, n)
		floats.MulTo(z, latches[0], latches[1])
		return [][]float64{z}, nil
	case Identity:
		out := make([][]float64, len(latches))
		for i, l := range latches {
			out[i] = append([]float64(nil), l...)
		}
		return out, nil
	case MixedProducts:
		if len(latches) != 3 {
			return nil, fmt.Errorf("%w: %v needs 3 channels, got %d", ErrInvalidParameter, mode, len(latches))
		}
		b1, b2, b3 := latches[0], latches[1], latches[2]
		z1 := make([]float64, n)
		z2 := make([]float64, n)
		z3 := make([]float64, n)
		floats.MulTo(z1, b1, b2)
		floats.MulTo(z2, b2, b3)
		floats.MulTo(z3, z1, b3)
		return [][]float64{z1, z2, z3}, nil
	}
	return nil, fmt.Errorf("%w: unknown compose mode %d", ErrInvalidParameter, int(mode))
}
