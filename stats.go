package dyntask

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Gaps returns the distances between consecutive events of the train.
func (e EventTrain) Gaps() []float64 {
	if len(e.Events) < 2 {
		return nil
	}
	g := make([]float64, len(e.Events)-1)
	for i := 1; i < len(e.Events); i++ {
		g[i-1] = float64(e.Events[i].T - e.Events[i-1].T)
	}
	return g
}

// GapStats returns the mean and standard deviation of the inter-event gaps.
// Both are NaN for a train with fewer than two events.
func GapStats(e EventTrain) (mean, std float64) {
	g := e.Gaps()
	if len(g) == 0 {
		return math.NaN(), math.NaN()
	}
	if len(g) == 1 {
		return g[0], 0
	}
	return stat.MeanStdDev(g, nil)
}

// EventRate returns the mean number of events per timestep over trains.
func EventRate(trains []EventTrain) float64 {
	var events, steps float64
	for _, e := range trains {
		events += float64(len(e.Events))
		steps += float64(e.Length)
	}
	if steps == 0 {
		return 0
	}
	return events / steps
}

// SwitchRate returns the fraction of timesteps at which a held signal
// changes value.
func SwitchRate(held []float64) float64 {
	if len(held) < 2 {
		return 0
	}
	x := make([]float64, len(held)-1)
	for t := 1; t < len(held); t++ {
		if held[t] != held[t-1] {
			x[t-1] = 1
		}
	}
	return stat.Mean(x, nil)
}
