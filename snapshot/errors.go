// SPDX-License-Identifier: MIT

// Package snapshot: sentinel error set.
// Shape violations reuse tensor.ErrDimensionMismatch / tensor.ErrNonSquare;
// the sentinels below cover sequence- and generator-level contracts.

package snapshot

import "errors"

var (
	// ErrNodeCountChanged indicates a snapshot whose node count differs from the
	// rest of its sequence.
	ErrNodeCountChanged = errors.New("snapshot: node count changed within sequence")

	// ErrEmptySequence indicates a sequence with no snapshots.
	ErrEmptySequence = errors.New("snapshot: empty sequence")

	// ErrTooFewVertices indicates a generator size below its minimum.
	ErrTooFewVertices = errors.New("snapshot: too few vertices")

	// ErrInvalidGap indicates a negative or non-finite time gap.
	ErrInvalidGap = errors.New("snapshot: invalid time gap")

	// ErrInvalidProbability indicates an edge probability outside [0, 1].
	ErrInvalidProbability = errors.New("snapshot: probability out of range")

	// ErrNeedRandSource indicates a random generator called without a source.
	ErrNeedRandSource = errors.New("snapshot: random source required")

	// ErrInvalidWeight indicates a NaN or ±Inf edge weight.
	ErrInvalidWeight = errors.New("snapshot: invalid edge weight")
)
