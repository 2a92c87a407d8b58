// Package dyntask synthesizes input/target sequence pairs for training and
// probing recurrent networks on dynamical systems benchmarks: sinusoid and
// torus oscillators, and flip-flop memory tasks driven by Poisson timed
// impulses.
package dyntask

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// A Kind names one of the benchmark tasks.
type Kind string

const (
	SineWave              Kind = "sine"
	Torus                 Kind = "torus"
	TorusPhase            Kind = "torus-phase"
	TorusAmp              Kind = "torus-amp"
	FlipFlop              Kind = "flipflop"
	ThreeBitFlipFlop      Kind = "3bit"
	ThreeBitFlipFlopMixed Kind = "3bit-mixed"
)

// flipFlopPool is the number of gaps each flip-flop channel draws up front.
const flipFlopPool = 100

// A Sample is one input/target pair. Both sequences are time-major, T × C.
type Sample struct {
	Input  [][]float64 `json:"input"`
	Target [][]float64 `json:"target"`
}

// A Task is the full configuration of a generator. FreqRange applies to the
// oscillator kinds and MeanGaps, one per latch channel, to the flip-flop kinds.
type Task struct {
	Kind       Kind      `json:"kind"`
	TimeLength int       `json:"time_length"`
	FreqRange  int       `json:"freq_range,omitempty"`
	MeanGaps   []float64 `json:"mean_gaps,omitempty"`
}

// Tasks holds the default configuration of every task kind.
var Tasks = map[Kind]Task{
	SineWave:              {Kind: SineWave, TimeLength: 200, FreqRange: 3},
	Torus:                 {Kind: Torus, TimeLength: 50, FreqRange: 3},
	TorusPhase:            {Kind: TorusPhase, TimeLength: 50, FreqRange: 3},
	TorusAmp:              {Kind: TorusAmp, TimeLength: 50, FreqRange: 3},
	FlipFlop:              {Kind: FlipFlop, TimeLength: 200, MeanGaps: []float64{4, 16}},
	ThreeBitFlipFlop:      {Kind: ThreeBitFlipFlop, TimeLength: 200, MeanGaps: []float64{10, 10, 10}},
	ThreeBitFlipFlopMixed: {Kind: ThreeBitFlipFlopMixed, TimeLength: 200, MeanGaps: []float64{10, 10, 10}},
}

// Kinds returns the registered task kinds in lexical order.
func Kinds() []Kind {
	ks := make([]Kind, 0, len(Tasks))
	for k := range Tasks {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

// DefaultTask returns a copy of the default configuration of kind.
func DefaultTask(kind Kind) (Task, error) {
	t, ok := Tasks[kind]
	if !ok {
		return Task{}, fmt.Errorf("%w: unknown task %q", ErrInvalidParameter, kind)
	}
	t.MeanGaps = append([]float64(nil), t.MeanGaps...)
	return t, nil
}

func (t Task) isOscillator() bool {
	switch t.Kind {
	case SineWave, Torus, TorusPhase, TorusAmp:
		return true
	}
	return false
}

func (t Task) oscillator() Oscillator {
	return Oscillator{Kind: t.Kind, TimeLength: t.TimeLength, FreqRange: t.FreqRange}
}

// A latchChannel is one event driven input channel of a flip-flop task.
type latchChannel struct {
	process RenewalProcess
	policy  Policy
}

// latches returns the channels of a flip-flop task and the mode composing
// them into targets. The flip-flop task multiplies a fast immediate latch with
// a slow delayed one; the 3-bit tasks use independent immediate latches.
func (t Task) latches() ([]latchChannel, Mode) {
	switch t.Kind {
	case FlipFlop:
		return []latchChannel{
			{process: RenewalProcess{MeanGap: t.MeanGaps[0], PoolSize: flipFlopPool}, policy: Immediate},
			{process: RenewalProcess{MeanGap: t.MeanGaps[1], FirstGap: 10, PoolSize: flipFlopPool}, policy: Delayed},
		}, Product
	case ThreeBitFlipFlop, ThreeBitFlipFlopMixed:
		chs := make([]latchChannel, len(t.MeanGaps))
		for i, m := range t.MeanGaps {
			chs[i] = latchChannel{process: RenewalProcess{MeanGap: m}, policy: Immediate}
		}
		if t.Kind == ThreeBitFlipFlopMixed {
			return chs, MixedProducts
		}
		return chs, Identity
	}
	return nil, Identity
}

func (t Task) numLatches() int {
	switch t.Kind {
	case FlipFlop:
		return 2
	case ThreeBitFlipFlop, ThreeBitFlipFlopMixed:
		return 3
	}
	return 0
}

// Validate checks the task parameters.
func (t Task) Validate() error {
	if _, ok := Tasks[t.Kind]; !ok {
		return fmt.Errorf("%w: unknown task %q", ErrInvalidParameter, t.Kind)
	}
	if t.TimeLength <= 0 {
		return fmt.Errorf("%w: time length %d", ErrInvalidParameter, t.TimeLength)
	}
	if t.isOscillator() {
		return t.oscillator().Validate()
	}
	if len(t.MeanGaps) != t.numLatches() {
		return fmt.Errorf("%w: %s needs %d mean gaps, got %d", ErrInvalidParameter, t.Kind, t.numLatches(), len(t.MeanGaps))
	}
	for i, m := range t.MeanGaps {
		if m < 0 {
			return fmt.Errorf("%w: negative mean gap %g for channel %d", ErrInvalidParameter, m, i)
		}
	}
	return nil
}

// InputSize returns the number of input channels of a sample.
func (t Task) InputSize() int {
	switch t.Kind {
	case SineWave:
		return 1
	case Torus:
		return 2
	case TorusPhase, TorusAmp:
		return 3
	}
	return t.numLatches()
}

// OutputSize returns the number of target channels of a sample.
func (t Task) OutputSize() int {
	switch t.Kind {
	case ThreeBitFlipFlop, ThreeBitFlipFlopMixed:
		return 3
	}
	return 1
}

// Generate validates the task and draws one sample from rng.
func (t Task) Generate(rng *rand.Rand) (Sample, error) {
	if err := t.Validate(); err != nil {
		return Sample{}, err
	}
	return t.sample(rng), nil
}

// sample assumes a validated task.
func (t Task) sample(rng *rand.Rand) Sample {
	if t.isOscillator() {
		return t.oscillator().Generate(rng)
	}

	chs, mode := t.latches()
	impulses := make([][]float64, len(chs))
	held := make([][]float64, len(chs))
	for i, ch := range chs {
		train, err := ch.process.Generate(rng, t.TimeLength)
		if err != nil {
			// Validated parameters and a refilling pool leave no failure path.
			panic(fmt.Sprintf("%s channel %d: %v", t.Kind, i, err))
		}
		impulses[i] = train.Impulses()
		held[i] = Reconstruct(impulses[i], ch.policy)
	}
	targets, err := Compose(mode, held...)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", t.Kind, err))
	}
	return Sample{Input: Stack(impulses...), Target: Stack(targets...)}
}
