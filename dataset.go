package dyntask

import (
	"math/rand/v2"
)

// NominalLen is the length every Dataset reports. It is not the number of
// distinct samples; a Dataset can produce an unbounded number of them.
const NominalLen = 200

// A Dataset is a fixed-length, index-addressable view of a task generator,
// shaped for a training loop that iterates i over [0, Len()).
//
// Item ignores its index: every call draws a fresh sample from the random
// source, so repeated calls with the same index return different samples and
// the results must not be cached by index.
//
// A Dataset is not safe for concurrent use. Workers generating batches in
// parallel must each build their own Dataset with an independent source.
type Dataset struct {
	task Task
	rng  *rand.Rand
}

// NewDataset validates task and binds it to rng. A nil rng is replaced by a
// freshly seeded PCG source.
func NewDataset(task Task, rng *rand.Rand) (*Dataset, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	task.MeanGaps = append([]float64(nil), task.MeanGaps...)
	return &Dataset{task: task, rng: rng}, nil
}

func (d *Dataset) Len() int {
	return NominalLen
}

// Item draws a new sample. The index is ignored.
func (d *Dataset) Item(int) Sample {
	return d.task.sample(d.rng)
}

// Task returns a copy of the configuration the Dataset was built with.
func (d *Dataset) Task() Task {
	t := d.task
	t.MeanGaps = append([]float64(nil), t.MeanGaps...)
	return t
}

// Batch draws n samples.
func (d *Dataset) Batch(n int) []Sample {
	b := make([]Sample, n)
	for i := range b {
		b[i] = d.Item(i)
	}
	return b
}
