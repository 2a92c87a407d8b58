// Command serve hands out freshly generated samples over HTTP, for training
// loops that run in another process.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/slenderham/dyntask"
)

var (
	port     = flag.Int("port", 8088, "port to listen on")
	maxBatch = flag.Int("maxBatch", 256, "largest batch a single request may ask for")
)

func main() {
	flag.Parse()
	log := logrus.New()

	http.Handle("/", newMux(log, *maxBatch))
	log.WithField("port", *port).Info("listening")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), nil); err != nil {
		log.Fatalf("%v", err)
	}
}

func newMux(log *logrus.Logger, maxBatch int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/Tasks", func(w http.ResponseWriter, r *http.Request) {
		tasks := make([]dyntask.Task, 0, len(dyntask.Tasks))
		for _, k := range dyntask.Kinds() {
			t, _ := dyntask.DefaultTask(k)
			tasks = append(tasks, t)
		}
		writeJSON(log, w, tasks)
	})
	mux.HandleFunc("/Sample", func(w http.ResponseWriter, r *http.Request) {
		d, code, err := datasetFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), code)
			return
		}
		writeJSON(log, w, d.Item(0))
	})
	mux.HandleFunc("/Batch", func(w http.ResponseWriter, r *http.Request) {
		n, err := intParam(r, "n", 1)
		if err != nil || n <= 0 || n > maxBatch {
			http.Error(w, fmt.Sprintf("n must be in [1, %d]", maxBatch), http.StatusBadRequest)
			return
		}
		d, code, err := datasetFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), code)
			return
		}
		log.WithFields(logrus.Fields{"task": d.Task().Kind, "n": n}).Debug("batch")
		writeJSON(log, w, d.Batch(n))
	})
	return mux
}

// datasetFromQuery builds a Dataset with its own random source for one
// request. Requests given the same seed get the same samples.
func datasetFromQuery(r *http.Request) (*dyntask.Dataset, int, error) {
	q := r.URL.Query()
	task, err := dyntask.DefaultTask(dyntask.Kind(q.Get("task")))
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	if task.TimeLength, err = intParam(r, "time_length", task.TimeLength); err != nil {
		return nil, http.StatusBadRequest, err
	}
	if task.FreqRange, err = intParam(r, "freq_range", task.FreqRange); err != nil {
		return nil, http.StatusBadRequest, err
	}

	var rng *rand.Rand
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("seed: %w", err)
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	d, err := dyntask.NewDataset(task, rng)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, dyntask.ErrInvalidParameter) {
			code = http.StatusBadRequest
		}
		return nil, code, err
	}
	return d, http.StatusOK, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func writeJSON(log *logrus.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
	}
}
