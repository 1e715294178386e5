// SPDX-License-Identifier: MIT

package snapshot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/tensor"
)

// Snapshot is one graph observation: features, adjacency and the time gap
// since the previous observation (0 for the first or for untimed data).
type Snapshot struct {
	Features  *mat.Dense
	Adjacency *mat.Dense
	Gap       float64
}

// New validates and returns a snapshot with zero gap.
func New(x, adj *mat.Dense) (Snapshot, error) {
	s := Snapshot{Features: x, Adjacency: adj}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}

	return s, nil
}

// Validate checks rows(X) == rows(A) == cols(A) and a finite, non-negative gap.
func (s Snapshot) Validate() error {
	if _, err := tensor.ValidateGraphInput(s.Features, s.Adjacency); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if s.Gap < 0 || math.IsNaN(s.Gap) || math.IsInf(s.Gap, 0) {
		return fmt.Errorf("snapshot: gap %v: %w", s.Gap, ErrInvalidGap)
	}

	return nil
}

// Nodes returns N.
func (s Snapshot) Nodes() int {
	if s.Adjacency == nil {
		return 0
	}
	n, _ := s.Adjacency.Dims()

	return n
}

// FeatureDim returns F.
func (s Snapshot) FeatureDim() int {
	if s.Features == nil {
		return 0
	}
	_, f := s.Features.Dims()

	return f
}

// Sequence is a temporal list of snapshots over a fixed node set.
type Sequence []Snapshot

// Validate checks every snapshot and that N never changes. Returns N.
func (seq Sequence) Validate() (int, error) {
	if len(seq) == 0 {
		return 0, ErrEmptySequence
	}
	n := -1
	for t, s := range seq {
		if err := s.Validate(); err != nil {
			return 0, fmt.Errorf("step %d: %w", t, err)
		}
		if n < 0 {
			n = s.Nodes()
			continue
		}
		if s.Nodes() != n {
			return 0, fmt.Errorf("step %d: expected %d nodes, got %d: %w", t, n, s.Nodes(), ErrNodeCountChanged)
		}
	}

	return n, nil
}
