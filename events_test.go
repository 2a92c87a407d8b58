package dyntask

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// signs returns a sign function replaying vals in order.
func signs(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i]
		i++
		return v
	}
}

func eventTimes(e EventTrain) []int {
	ts := make([]int, len(e.Events))
	for i, ev := range e.Events {
		ts[i] = ev.T
	}
	return ts
}

func TestWalk(t *testing.T) {
	pool := NewGapPool([]int{0, 3, 2, 100})
	e, err := Walk(pool, 10, signs(1, -1, 1, -1))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if got, want := eventTimes(e), []int{0, 1, 4, 6}; !reflect.DeepEqual(got, want) {
		t.Fatalf("event times %v, want %v", got, want)
	}
	want := []float64{1, -1, 0, 0, 1, 0, -1, 0, 0, 0}
	if got := e.Impulses(); !reflect.DeepEqual(got, want) {
		t.Fatalf("impulses %v, want %v", got, want)
	}
	if pool.Remaining() != 0 {
		t.Fatalf("remaining %d", pool.Remaining())
	}
}

func TestWalkNegativeGap(t *testing.T) {
	e, err := Walk(NewGapPool([]int{-3, 5}), 4, signs(1, 1))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if got, want := eventTimes(e), []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("event times %v, want %v", got, want)
	}
}

func TestWalkExhausted(t *testing.T) {
	_, err := Walk(NewGapPool([]int{2, 2}), 10, signs(1, 1, 1))
	if !errors.Is(err, ErrInsufficientEventPool) {
		t.Fatalf("expected ErrInsufficientEventPool, got %v", err)
	}
}

func TestWalkInvalidLength(t *testing.T) {
	_, err := Walk(NewGapPool([]int{1}), 0, signs(1))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestGenerateZeroMean(t *testing.T) {
	e, err := RenewalProcess{MeanGap: 0}.Generate(newRand(1), 10)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(e.Events) != 10 {
		t.Fatalf("got %d events, want 10", len(e.Events))
	}
	for i, ev := range e.Events {
		if ev.T != i {
			t.Fatalf("event %d at %d", i, ev.T)
		}
		if ev.Sign != 1 && ev.Sign != -1 {
			t.Fatalf("event %d sign %v", i, ev.Sign)
		}
	}
}

func TestGenerateRefillsPool(t *testing.T) {
	p := RenewalProcess{MeanGap: 3, PoolSize: 1}
	e, err := p.Generate(newRand(2), 500)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(e.Events) < 2 {
		t.Fatalf("got %d events from a refilled pool", len(e.Events))
	}
	// A truncated walk would leave a gap far larger than the mean at the end.
	last := e.Events[len(e.Events)-1].T
	if e.Length-last > 40 {
		t.Fatalf("last event at %d of %d", last, e.Length)
	}
}

func TestGenerateInvariants(t *testing.T) {
	rng := newRand(3)
	for i := 0; i < 100; i++ {
		e, err := RenewalProcess{MeanGap: 4}.Generate(rng, 200)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if e.Events[0].T != 0 {
			t.Fatalf("first event at %d", e.Events[0].T)
		}
		for j := 1; j < len(e.Events); j++ {
			if e.Events[j].T <= e.Events[j-1].T {
				t.Fatalf("events not increasing: %v", eventTimes(e))
			}
			if e.Events[j].T >= e.Length {
				t.Fatalf("event beyond end: %d", e.Events[j].T)
			}
		}
	}
}

func TestGenerateFirstGap(t *testing.T) {
	rng := newRand(4)
	for i := 0; i < 20; i++ {
		e, err := RenewalProcess{MeanGap: 16, FirstGap: 10, PoolSize: 100}.Generate(rng, 50)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if len(e.Events) < 2 || e.Events[1].T != 10 {
			t.Fatalf("second event at %v, want 10", eventTimes(e))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := RenewalProcess{MeanGap: 5}
	a, err := p.Generate(newRand(7), 300)
	if err != nil {
		t.Fatalf("%v", err)
	}
	b, err := p.Generate(newRand(7), 300)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed, different trains")
	}
}

func TestRenewalProcessValidate(t *testing.T) {
	if err := (RenewalProcess{MeanGap: -1}).Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := (RenewalProcess{MeanGap: 1}).Generate(newRand(1), -5); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
