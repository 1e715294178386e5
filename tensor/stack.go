// SPDX-License-Identifier: MIT

package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stack is an ordered set of equally shaped square matrices, the support×N×N
// basis produced by spectral filters and consumed by graph convolution.
type Stack []*mat.Dense

// Len returns the number of matrices in the stack (the support count).
func (s Stack) Len() int { return len(s) }

// Nodes returns N, the side of every matrix. It is 0 for an empty stack.
func (s Stack) Nodes() int {
	if len(s) == 0 || s[0] == nil {
		return 0
	}
	n, _ := s[0].Dims()

	return n
}

// Validate checks the stack is non-empty and holds non-nil N×N matrices of one size.
func (s Stack) Validate() error {
	if len(s) == 0 {
		return ErrEmptyStack
	}
	n := -1
	for k, m := range s {
		if err := ValidateSquare(m); err != nil {
			return fmt.Errorf("stack[%d]: %w", k, err)
		}
		r, _ := m.Dims()
		if n < 0 {
			n = r
			continue
		}
		if r != n {
			return fmt.Errorf("stack[%d]: expected %d×%d, got %d×%d: %w", k, n, n, r, r, ErrDimensionMismatch)
		}
	}

	return nil
}

// Shape returns (support, N, N).
func (s Stack) Shape() (support, rows, cols int) {
	n := s.Nodes()

	return len(s), n, n
}
