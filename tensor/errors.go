// SPDX-License-Identifier: MIT

// Package tensor: sentinel error set.
// Every message is prefixed with "tensor: ..." so logs grep uniformly. Callers
// wrap with fmt.Errorf("ctx: %w", ErrX) and match with errors.Is.

package tensor

import "errors"

var (
	// ErrNilMatrix indicates that a nil matrix was passed where a value is required.
	ErrNilMatrix = errors.New("tensor: nil matrix")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g. a feature matrix whose row count differs from the adjacency size.
	ErrDimensionMismatch = errors.New("tensor: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("tensor: matrix is not square")

	// ErrEmptyStack is returned when a Stack holds no matrices.
	ErrEmptyStack = errors.New("tensor: empty stack")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("tensor: NaN or Inf encountered")
)
