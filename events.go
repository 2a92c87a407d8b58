package dyntask

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInvalidParameter is returned when a task or process is configured with
	// values outside their domain.
	ErrInvalidParameter = errors.New("dyntask: invalid parameter")
	// ErrInsufficientEventPool is returned by a GapSource that ran out of gaps
	// before an event walk covered the whole sequence.
	ErrInsufficientEventPool = errors.New("dyntask: insufficient event pool")
)

// An Event is a signed impulse at timestep T.
type Event struct {
	T    int     `json:"t"`
	Sign float64 `json:"sign"`
}

// An EventTrain is the output of one renewal process over [0, Length).
// Events[0].T is always 0 and timestamps are strictly increasing.
type EventTrain struct {
	Length int     `json:"length"`
	Events []Event `json:"events"`
}

// Impulses returns the dense impulse signal of the train, zero where no event
// fires.
func (e EventTrain) Impulses() []float64 {
	u := make([]float64, e.Length)
	for _, ev := range e.Events {
		u[ev.T] = ev.Sign
	}
	return u
}

// ImpulseTrain recovers the event train of a dense impulse signal.
func ImpulseTrain(impulses []float64) EventTrain {
	e := EventTrain{Length: len(impulses)}
	for t, u := range impulses {
		if u != 0 {
			e.Events = append(e.Events, Event{T: t, Sign: u})
		}
	}
	return e
}

// Latch reconstructs the held signal of the train under policy p.
func (e EventTrain) Latch(p Policy) []float64 {
	return Reconstruct(e.Impulses(), p)
}

// A GapSource yields the gaps between consecutive events of a renewal process.
type GapSource interface {
	NextGap() (int, error)
}

// A GapPool is a pre-drawn, finite GapSource.
type GapPool struct {
	gaps []int
	next int
}

func NewGapPool(gaps []int) *GapPool {
	return &GapPool{gaps: gaps}
}

func (p *GapPool) NextGap() (int, error) {
	if p.next >= len(p.gaps) {
		return 0, ErrInsufficientEventPool
	}
	g := p.gaps[p.next]
	p.next++
	return g, nil
}

// Extend appends gaps to the unconsumed tail of the pool.
func (p *GapPool) Extend(gaps []int) {
	p.gaps = append(p.gaps, gaps...)
}

// Remaining returns the number of gaps not consumed yet.
func (p *GapPool) Remaining() int {
	return len(p.gaps) - p.next
}

// PoissonGaps draws n independent Poisson(mean) gaps from rng.
func PoissonGaps(rng *rand.Rand, mean float64, n int) []int {
	d := distuv.Poisson{Lambda: mean, Src: rng}
	gaps := make([]int, n)
	for i := range gaps {
		gaps[i] = int(d.Rand())
	}
	return gaps
}

// RandSign returns -1 or +1 with equal probability.
func RandSign(rng *rand.Rand) float64 {
	if rng.IntN(2) == 0 {
		return -1
	}
	return 1
}

// advance converts a drawn gap into a forward step. Gaps are floored at zero,
// and a zero gap lands the next event on the following index.
func advance(gap int) int {
	if gap < 1 {
		return 1
	}
	return gap
}

// Walk folds the gaps of src into an EventTrain of the given length.
// An event is placed at index 0, and then at every index reached by
// accumulating gaps, until the walk passes the end of the sequence.
// If src runs dry first the error wraps ErrInsufficientEventPool and no
// partial train is returned.
func Walk(src GapSource, timeLength int, sign func() float64) (EventTrain, error) {
	if timeLength <= 0 {
		return EventTrain{}, fmt.Errorf("%w: time length %d", ErrInvalidParameter, timeLength)
	}
	train := EventTrain{Length: timeLength, Events: []Event{{T: 0, Sign: sign()}}}
	for index := 0; ; {
		gap, err := src.NextGap()
		if err != nil {
			return EventTrain{}, fmt.Errorf("walk at index %d of %d: %w", index, timeLength, err)
		}
		index += advance(gap)
		if index >= timeLength {
			return train, nil
		}
		train.Events = append(train.Events, Event{T: index, Sign: sign()})
	}
}

// A RenewalProcess draws sparse signed event trains with Poisson distributed
// gaps.
type RenewalProcess struct {
	MeanGap float64
	// FirstGap, if positive, replaces the first drawn gap. It keeps the slow
	// channel of the flip-flop task from switching right at the start.
	FirstGap int
	// PoolSize is the number of gaps drawn up front. Zero means the sequence
	// length, which always suffices.
	PoolSize int
}

func (p RenewalProcess) Validate() error {
	if p.MeanGap < 0 {
		return fmt.Errorf("%w: negative mean gap %g", ErrInvalidParameter, p.MeanGap)
	}
	if p.PoolSize < 0 {
		return fmt.Errorf("%w: negative pool size %d", ErrInvalidParameter, p.PoolSize)
	}
	return nil
}

// Generate draws one event train of the given length. All randomness comes
// from rng. A pool that runs dry is refilled from the same distribution.
func (p RenewalProcess) Generate(rng *rand.Rand, timeLength int) (EventTrain, error) {
	if err := p.Validate(); err != nil {
		return EventTrain{}, err
	}
	if timeLength <= 0 {
		return EventTrain{}, fmt.Errorf("%w: time length %d", ErrInvalidParameter, timeLength)
	}
	n := p.PoolSize
	if n == 0 {
		n = timeLength
	}
	pool := NewGapPool(PoissonGaps(rng, p.MeanGap, n))
	if p.FirstGap > 0 {
		pool.gaps[0] = p.FirstGap
	}
	src := &refillingPool{pool: pool, refill: func() []int { return PoissonGaps(rng, p.MeanGap, n) }}
	return Walk(src, timeLength, func() float64 { return RandSign(rng) })
}

type refillingPool struct {
	pool   *GapPool
	refill func() []int
}

func (r *refillingPool) NextGap() (int, error) {
	g, err := r.pool.NextGap()
	if errors.Is(err, ErrInsufficientEventPool) {
		r.pool.Extend(r.refill())
		return r.pool.NextGap()
	}
	return g, err
}
