// SPDX-License-Identifier: MIT

package nn

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Source is a goroutine-safe random stream (PCG) used for initialisation,
// dropout masks and sampling.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a deterministic stream for seed.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// newEntropySource seeds from the runtime's global generator.
func newEntropySource() *Source { return NewSource(rand.Uint64()) }

// Float64 returns a uniform value in [0,1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Float64()
}

// NormFloat64 returns a standard normal value.
func (s *Source) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.NormFloat64()
}

// Uint64 returns a uniform 64-bit value.
func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Uint64()
}

// IntN returns a uniform value in [0,n). n must be positive.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.IntN(n)
}

// Child derives an independent stream. Deriving children in a fixed order
// before a fan-out keeps seeded runs reproducible regardless of scheduling.
func (s *Source) Child() *Source { return NewSource(s.Uint64()) }

// Children derives n streams in order.
func (s *Source) Children(n int) []*Source {
	out := make([]*Source, n)
	for i := range out {
		out[i] = s.Child()
	}

	return out
}

// Dropout applies inverted dropout: each entry is zeroed with probability rate
// and survivors are scaled by 1/(1−rate). With train false or rate ≤ 0 it
// returns x unchanged (same pointer); x is never mutated.
func Dropout(src *Source, x *mat.Dense, rate float64, train bool) *mat.Dense {
	if !train || rate <= 0 {
		return x
	}
	if rate >= 1 {
		r, c := x.Dims()
		return mat.NewDense(r, c, nil)
	}
	keep := 1 / (1 - rate)
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if src.Float64() < rate {
			return 0
		}
		return v * keep
	}, x)

	return &out
}
