// SPDX-License-Identifier: MIT

package spectral

import "errors"

var (
	// ErrInvalidWeight indicates a negative, NaN or ±Inf adjacency entry.
	ErrInvalidWeight = errors.New("spectral: invalid adjacency weight")

	// ErrEigenFailed indicates the symmetric eigensolver did not converge.
	ErrEigenFailed = errors.New("spectral: eigendecomposition failed")
)
