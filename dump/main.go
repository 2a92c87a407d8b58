// Command dump generates samples of one task into a SQLite database and logs
// the event statistics of the generated input channels.
package main

import (
	"context"
	"flag"
	"math"
	"math/rand/v2"
	"os"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/slenderham/dyntask"
	"github.com/slenderham/dyntask/store"
)

var (
	taskKind = flag.String("task", string(dyntask.FlipFlop), "task kind")
	config   = flag.String("config", "", "JSON task configuration, overrides -task")
	dbPath   = flag.String("db", "samples.db", "SQLite database to write")
	n        = flag.Int("n", dyntask.NominalLen, "number of samples")
	batch    = flag.Int("batch", 50, "samples written per transaction")
	seed     = flag.Uint64("seed", 0, "random seed, 0 draws one")
	verbose  = flag.Bool("v", false, "log every batch")
)

func main() {
	flag.Parse()
	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	task, err := loadTask()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *n <= 0 || *batch <= 0 {
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = rand.Uint64()
	}
	d, err := dyntask.NewDataset(task, rand.New(rand.NewPCG(s, s)))
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	st := store.NewSQLiteStore(*dbPath)
	if err := st.Init(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	defer st.Close()
	runID, err := st.NewRun(ctx, task)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.WithFields(logrus.Fields{
		"run":         runID,
		"task":        task.Kind,
		"time_length": task.TimeLength,
		"seed":        s,
		"n":           *n,
	}).Info("generating")

	sum := newSummary(task)
	for first := 0; first < *n; first += *batch {
		k := min(*batch, *n-first)
		samples := d.Batch(k)
		if _, err := st.SaveSamples(ctx, runID, task.Kind, first, samples); err != nil {
			log.Fatalf("%v", err)
		}
		for _, sample := range samples {
			sum.add(sample)
		}
		log.WithFields(logrus.Fields{"first": first, "count": k}).Debug("saved batch")
	}
	sum.log(log.WithField("run", runID))
}

func loadTask() (dyntask.Task, error) {
	if *config != "" {
		return dyntask.LoadTask(*config)
	}
	return dyntask.DefaultTask(dyntask.Kind(*taskKind))
}

// summary accumulates per-channel event statistics of discrete tasks.
type summary struct {
	discrete bool
	trains   [][]dyntask.EventTrain
	switches [][]float64
}

func newSummary(task dyntask.Task) *summary {
	discrete := len(task.MeanGaps) > 0
	s := &summary{discrete: discrete}
	if discrete {
		s.trains = make([][]dyntask.EventTrain, task.InputSize())
		s.switches = make([][]float64, task.OutputSize())
	}
	return s
}

func (s *summary) add(sample dyntask.Sample) {
	if !s.discrete {
		return
	}
	for j := range s.trains {
		s.trains[j] = append(s.trains[j], dyntask.ImpulseTrain(dyntask.Column(sample.Input, j)))
	}
	for j := range s.switches {
		s.switches[j] = append(s.switches[j], dyntask.SwitchRate(dyntask.Column(sample.Target, j)))
	}
}

func (s *summary) log(entry *logrus.Entry) {
	if !s.discrete {
		entry.Info("done")
		return
	}
	for j, trains := range s.trains {
		var means []float64
		for _, e := range trains {
			if m, _ := dyntask.GapStats(e); !math.IsNaN(m) {
				means = append(means, m)
			}
		}
		mean := math.NaN()
		if len(means) > 0 {
			mean = stat.Mean(means, nil)
		}
		entry.WithFields(logrus.Fields{
			"channel":    j,
			"event_rate": dyntask.EventRate(trains),
			"mean_gap":   mean,
		}).Info("input channel")
	}
	for j, rates := range s.switches {
		entry.WithFields(logrus.Fields{
			"channel":     j,
			"switch_rate": stat.Mean(rates, nil),
		}).Info("target channel")
	}
}
