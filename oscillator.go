package dyntask

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/gonum/blas/blas64"
)

const (
	sineDt  = 0.025
	torusDt = 0.3

	// torusFreq2 is the fixed frequency of the second torus component.
	torusFreq2 = 2
	// pulseSteps is the number of leading timesteps carrying the phase or
	// amplitude pulse.
	pulseSteps = 5
)

// An Oscillator generates the continuous tasks: SineWave, Torus, TorusPhase
// and TorusAmp. Inputs are constant conditioning channels encoding the drawn
// frequency, plus a short pulse channel for TorusPhase and TorusAmp.
type Oscillator struct {
	Kind       Kind
	TimeLength int
	FreqRange  int
}

func (o Oscillator) Validate() error {
	switch o.Kind {
	case SineWave, Torus, TorusPhase, TorusAmp:
	default:
		return fmt.Errorf("%w: %q is not an oscillator task", ErrInvalidParameter, o.Kind)
	}
	if o.TimeLength <= 0 {
		return fmt.Errorf("%w: time length %d", ErrInvalidParameter, o.TimeLength)
	}
	if o.FreqRange <= 0 {
		return fmt.Errorf("%w: freq range %d", ErrInvalidParameter, o.FreqRange)
	}
	return nil
}

// Conditioning maps an integer frequency to its conditioning channel value.
func (o Oscillator) Conditioning(freq int) float64 {
	return float64(freq)/float64(o.FreqRange) + 0.25
}

func (o Oscillator) hasPulse() bool {
	return o.Kind == TorusPhase || o.Kind == TorusAmp
}

// Generate draws freq1 uniformly from [1, FreqRange], then, for the pulsed
// variants, u3 uniformly from [0, 1).
func (o Oscillator) Generate(rng *rand.Rand) Sample {
	freq1 := rng.IntN(o.FreqRange) + 1
	var u3 float64
	if o.hasPulse() {
		u3 = rng.Float64()
	}
	return o.SampleAt(freq1, u3)
}

// SampleAt builds the sample for a given frequency and pulse amplitude
// without consuming randomness. u3 is ignored by SineWave and Torus.
func (o Oscillator) SampleAt(freq1 int, u3 float64) Sample {
	T := o.TimeLength
	c1 := constant(o.Conditioning(freq1), T)

	if o.Kind == SineWave {
		y := make([]float64, T)
		for k := range y {
			y[k] = math.Sin(float64(freq1) * float64(k) * sineDt)
		}
		return Sample{Input: Stack(c1), Target: Stack(y)}
	}

	c2 := constant(o.Conditioning(torusFreq2), T)
	var phase, amp float64 = 0, 0.6
	switch o.Kind {
	case TorusPhase:
		phase = u3 * math.Pi
	case TorusAmp:
		amp += u3
	}

	y := make([]float64, T)
	slow := make([]float64, T)
	for k := range y {
		t := float64(k) * torusDt
		y[k] = math.Sin(2.2*float64(freq1)*t - phase)
		slow[k] = math.Sin(0.5 * torusFreq2 * t)
	}
	impl := blas64.Implementation()
	impl.Dscal(T, amp, y, 1)
	impl.Daxpy(T, 0.8, slow, 1, y, 1)

	if !o.hasPulse() {
		return Sample{Input: Stack(c1, c2), Target: Stack(y)}
	}
	pulse := make([]float64, T)
	for k := 0; k < pulseSteps && k < T; k++ {
		pulse[k] = u3 / pulseSteps
	}
	return Sample{Input: Stack(c1, c2, pulse), Target: Stack(y)}
}
