// SPDX-License-Identifier: MIT

package nn

import (
	"fmt"
	"slices"
	"sync"
)

// Lazy is the build-once guard of two-phase construction. The first Ensure
// runs build and records the input dims; later calls only compare dims.
type Lazy struct {
	mu    sync.Mutex
	built bool
	dims  []int
}

// Ensure builds on first use and afterwards rejects different dims with
// ErrShapeChanged. A failed build leaves the guard unbuilt.
func (l *Lazy) Ensure(dims []int, build func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.built {
		if !slices.Equal(l.dims, dims) {
			return fmt.Errorf("%w: expected %v, got %v", ErrShapeChanged, l.dims, dims)
		}

		return nil
	}
	if err := build(); err != nil {
		return err
	}
	l.built = true
	l.dims = slices.Clone(dims)

	return nil
}

// Dims returns the dims recorded at build and whether the build happened.
func (l *Lazy) Dims() ([]int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.dims), l.built
}
