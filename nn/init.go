// SPDX-License-Identifier: MIT

package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Initializer names a parameter initialisation scheme.
type Initializer string

// Supported initializers.
const (
	GlorotUniform Initializer = "glorot_uniform"
	GlorotNormal  Initializer = "glorot_normal"
	Orthogonal    Initializer = "orthogonal"
	Zeros         Initializer = "zeros"
	Ones          Initializer = "ones"
)

// Valid reports whether k is a supported initializer.
func (k Initializer) Valid() bool {
	switch k {
	case GlorotUniform, GlorotNormal, Orthogonal, Zeros, Ones:
		return true
	}

	return false
}

// Or returns k, or def when k is empty.
func (k Initializer) Or(def Initializer) Initializer {
	if k == "" {
		return def
	}

	return k
}

// New allocates a rows×cols matrix initialised by k, drawing from src.
//
//   - glorot_uniform: U(−l, l), l = sqrt(6/(rows+cols)).
//   - glorot_normal:  N(0, 2/(rows+cols)).
//   - orthogonal:     QR of a Gaussian matrix, sign-corrected by diag(R); rows or
//     columns are orthonormal, whichever is fewer.
//   - zeros / ones:   constants.
func (k Initializer) New(src *Source, rows, cols int) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %s: shape %d×%d", ErrInvalidConfig, k, rows, cols)
	}
	out := mat.NewDense(rows, cols, nil)
	data := out.RawMatrix().Data
	switch k {
	case GlorotUniform:
		limit := math.Sqrt(6 / float64(rows+cols))
		for i := range data {
			data[i] = (2*src.Float64() - 1) * limit
		}
	case GlorotNormal:
		std := math.Sqrt(2 / float64(rows+cols))
		for i := range data {
			data[i] = src.NormFloat64() * std
		}
	case Orthogonal:
		return orthogonal(src, rows, cols), nil
	case Zeros:
	case Ones:
		for i := range data {
			data[i] = 1
		}
	default:
		return nil, fmt.Errorf("%w: unknown initializer %q", ErrInvalidConfig, string(k))
	}

	return out, nil
}

// orthogonal factorises a tall Gaussian matrix; QR needs rows ≥ cols, so a wide
// request is built transposed.
func orthogonal(src *Source, rows, cols int) *mat.Dense {
	tall, short := rows, cols
	if rows < cols {
		tall, short = cols, rows
	}
	g := mat.NewDense(tall, short, nil)
	data := g.RawMatrix().Data
	for i := range data {
		data[i] = src.NormFloat64()
	}
	var qr mat.QR
	qr.Factorize(g)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	out := mat.NewDense(tall, short, nil)
	for j := 0; j < short; j++ {
		sign := 1.0
		if r.At(j, j) < 0 {
			sign = -1
		}
		for i := 0; i < tall; i++ {
			out.Set(i, j, sign*q.At(i, j))
		}
	}
	if rows < cols {
		return mat.DenseCopyOf(out.T())
	}

	return out
}
