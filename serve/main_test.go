package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/slenderham/dyntask"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return resp.StatusCode, b
}

func newServer(t *testing.T) *httptest.Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	srv := httptest.NewServer(newMux(log, 8))
	t.Cleanup(srv.Close)
	return srv
}

func TestSample(t *testing.T) {
	srv := newServer(t)
	code, b := get(t, srv, "/Sample?task=flipflop&time_length=40&seed=3")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, b)
	}
	var s dyntask.Sample
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("%v", err)
	}
	if len(s.Input) != 40 || len(s.Target) != 40 || len(s.Input[0]) != 2 {
		t.Fatalf("shape %dx%d", len(s.Input), len(s.Input[0]))
	}

	_, again := get(t, srv, "/Sample?task=flipflop&time_length=40&seed=3")
	var s2 dyntask.Sample
	if err := json.Unmarshal(again, &s2); err != nil {
		t.Fatalf("%v", err)
	}
	if !reflect.DeepEqual(s, s2) {
		t.Fatalf("same seed served different samples")
	}
}

func TestBatch(t *testing.T) {
	srv := newServer(t)
	code, b := get(t, srv, "/Batch?task=torus-amp&n=3")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, b)
	}
	var batch []dyntask.Sample
	if err := json.Unmarshal(b, &batch); err != nil {
		t.Fatalf("%v", err)
	}
	if len(batch) != 3 || len(batch[0].Input[0]) != 3 {
		t.Fatalf("batch %d", len(batch))
	}

	if code, _ := get(t, srv, "/Batch?task=torus&n=9"); code != http.StatusBadRequest {
		t.Fatalf("oversized batch status %d", code)
	}
}

func TestErrors(t *testing.T) {
	srv := newServer(t)
	for path, want := range map[string]int{
		"/Sample?task=pendulum":             http.StatusNotFound,
		"/Sample?task=sine&time_length=0":   http.StatusBadRequest,
		"/Sample?task=sine&time_length=abc": http.StatusBadRequest,
		"/Sample?task=sine&freq_range=-1":   http.StatusBadRequest,
		"/Sample?task=sine&seed=x":          http.StatusBadRequest,
	} {
		if code, _ := get(t, srv, path); code != want {
			t.Fatalf("%s: status %d, want %d", path, code, want)
		}
	}
}

func TestTasks(t *testing.T) {
	srv := newServer(t)
	_, b := get(t, srv, "/Tasks")
	var tasks []dyntask.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		t.Fatalf("%v", err)
	}
	if len(tasks) != len(dyntask.Tasks) {
		t.Fatalf("got %d tasks", len(tasks))
	}
}
