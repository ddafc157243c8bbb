package opt

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// ErrSamplerUnavailable is a configuration error, distinct from data errors:
// the optimizer path is down but the baseline still works, so callers are
// expected to fall back rather than abort the cycle.
var ErrSamplerUnavailable = errors.New("opt: annealing sampler unavailable")

// Sample is one decoded assignment with its objective energy.
type Sample struct {
	X      []bool
	Energy float64
}

// Sampler is the single-operation search abstraction over the QUBO energy
// landscape. The default is simulated annealing; tabu search or exact
// enumeration for tiny instances slot in without touching objective code.
type Sampler interface {
	// Sample runs up to reads independent randomized descents and returns
	// the lowest-energy assignment found. The read budget is the only run
	// time control; cancellation returns the best sample so far.
	Sample(ctx context.Context, m *Model, reads int) (Sample, error)
}

// Annealer is a stochastic local-search sampler: each read starts from a
// random assignment and sweeps single-variable flips under a geometric
// temperature schedule with Metropolis acceptance. Reads are independent
// and run in parallel; the arg-min join is the only synchronization point.
type Annealer struct {
	Sweeps  int
	Seed    int64
	Workers int
}

func NewAnnealer(sweeps int, seed int64) *Annealer {
	return &Annealer{Sweeps: sweeps, Seed: seed}
}

func (a *Annealer) Sample(ctx context.Context, m *Model, reads int) (Sample, error) {
	if m == nil || m.N() == 0 {
		return Sample{}, errors.New("opt: empty model")
	}
	if reads < 1 {
		reads = 1
	}
	sweeps := a.Sweeps
	if sweeps < 1 {
		sweeps = 100
	}
	workers := a.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > reads {
		workers = reads
	}

	var (
		mu    sync.Mutex
		best  Sample
		found bool
	)
	readCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range readCh {
				s := a.anneal(m, rand.New(rand.NewSource(a.Seed+int64(r))), sweeps)
				mu.Lock()
				if !found || s.Energy < best.Energy {
					best = s
					found = true
				}
				mu.Unlock()
			}
		}()
	}

	dispatch := 0
	for dispatch < reads {
		select {
		case <-ctx.Done():
			dispatch = reads
		case readCh <- dispatch:
			dispatch++
		}
	}
	close(readCh)
	wg.Wait()

	if !found {
		return Sample{}, ctx.Err()
	}
	return best, nil
}

// anneal is one read: random init, then sweeps of Metropolis flips cooling
// geometrically from a hot start. Returns the best state seen, not the
// final one.
func (a *Annealer) anneal(m *Model, rng *rand.Rand, sweeps int) Sample {
	n := m.N()
	x := make([]bool, n)
	for i := range x {
		x[i] = rng.Intn(2) == 1
	}
	energy := m.Energy(x)
	best := Sample{X: append([]bool(nil), x...), Energy: energy}

	// Hot enough to accept most uphill moves early, cold enough to freeze.
	tempStart := 10.0 * avgAbsLinear(m)
	if tempStart <= 0 {
		tempStart = 1.0
	}
	tempEnd := tempStart / 1e4
	cool := math.Pow(tempEnd/tempStart, 1/float64(sweeps))

	temp := tempStart
	for s := 0; s < sweeps; s++ {
		for k := 0; k < n; k++ {
			i := rng.Intn(n)
			delta := m.FlipDelta(x, i)
			if delta <= 0 || rng.Float64() < math.Exp(-delta/temp) {
				x[i] = !x[i]
				energy += delta
				if energy < best.Energy {
					best.Energy = energy
					copy(best.X, x)
				}
			}
		}
		temp *= cool
	}
	return best
}

func avgAbsLinear(m *Model) float64 {
	total := 0.0
	for _, v := range m.linear {
		total += math.Abs(v)
	}
	return total / float64(len(m.linear))
}
