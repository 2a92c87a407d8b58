package dyntask

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when sequences or channels disagree in size.
// Collaborators feeding samples into a model use it through CheckInputWidth.
var ErrShapeMismatch = errors.New("dyntask: shape mismatch")

func MakeTensor2(n, m int) [][]float64 {
	t := make([][]float64, n)
	for i := 0; i < len(t); i++ {
		t[i] = make([]float64, m)
	}
	return t
}

// Stack turns channel-major columns into a time-major T × len(channels)
// sequence. All channels must have the same length.
func Stack(channels ...[]float64) [][]float64 {
	if len(channels) == 0 {
		return nil
	}
	seq := MakeTensor2(len(channels[0]), len(channels))
	for j, c := range channels {
		if len(c) != len(seq) {
			panic(fmt.Sprintf("channel %d has length %d, want %d", j, len(c), len(seq)))
		}
		for t, v := range c {
			seq[t][j] = v
		}
	}
	return seq
}

// Column extracts channel j of a time-major sequence.
func Column(seq [][]float64, j int) []float64 {
	c := make([]float64, len(seq))
	for t := range seq {
		c[t] = seq[t][j]
	}
	return c
}

func constant(v float64, n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = v
	}
	return c
}

// CheckInputWidth reports whether every timestep of the sample input has
// exactly width channels.
func CheckInputWidth(s Sample, width int) error {
	for t, x := range s.Input {
		if len(x) != width {
			return fmt.Errorf("%w: input at t=%d has %d channels, model expects %d", ErrShapeMismatch, t, len(x), width)
		}
	}
	return nil
}
