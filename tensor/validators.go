// SPDX-License-Identifier: MIT
// Package: tensor
//
// Purpose:
//  - Single source of truth for shape checks shared by every layer.
//  - Return wrapped sentinels with expected vs. actual shapes so a failing
//    forward pass can be diagnosed from the error string alone.
//
// Note:
//  - Composite validators follow a fixed sequence: NotNil → Shape.
//  - All checks are O(1) except ValidateFinite (O(r*c)).

package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ValidateNotNil ensures m is a usable matrix: not a nil interface, not a nil
// *mat.Dense and not an empty (zero-value) Dense.
func ValidateNotNil(m mat.Matrix) error {
	if m == nil {
		return ErrNilMatrix
	}
	if d, ok := m.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return ErrNilMatrix
	}

	return nil
}

// ValidateSquare ensures m is non-nil and square.
func ValidateSquare(m mat.Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	r, c := m.Dims()
	if r != c {
		return fmt.Errorf("%w: got %d×%d", ErrNonSquare, r, c)
	}

	return nil
}

// ValidateRows ensures m has exactly rows rows. what names the operand in the
// error message (e.g. "features", "state").
func ValidateRows(m mat.Matrix, rows int, what string) error {
	if err := ValidateNotNil(m); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if r, _ := m.Dims(); r != rows {
		return fmt.Errorf("%s: expected %d rows, got %d: %w", what, rows, r, ErrDimensionMismatch)
	}

	return nil
}

// ValidateShape ensures m is exactly rows×cols.
func ValidateShape(m mat.Matrix, rows, cols int, what string) error {
	if err := ValidateNotNil(m); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if r, c := m.Dims(); r != rows || c != cols {
		return fmt.Errorf("%s: expected %d×%d, got %d×%d: %w", what, rows, cols, r, c, ErrDimensionMismatch)
	}

	return nil
}

// ValidateSameShape ensures a and b have equal dimensions.
func ValidateSameShape(a, b mat.Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return fmt.Errorf("%w: %d×%d vs %d×%d", ErrDimensionMismatch, ar, ac, br, bc)
	}

	return nil
}

// ValidateGraphInput checks the feature/adjacency pair every graph operator
// consumes: adjacency square, feature rows equal to node count.
// Returns the node count on success.
func ValidateGraphInput(x, adj mat.Matrix) (int, error) {
	if err := ValidateSquare(adj); err != nil {
		return 0, fmt.Errorf("adjacency: %w", err)
	}
	n, _ := adj.Dims()
	if err := ValidateRows(x, n, "features"); err != nil {
		return 0, err
	}

	return n, nil
}

// ValidateFinite rejects NaN and ±Inf entries.
func ValidateFinite(m mat.Matrix, what string) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s: entry (%d,%d)=%v: %w", what, i, j, v, ErrNaNInf)
			}
		}
	}

	return nil
}
