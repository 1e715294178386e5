// SPDX-License-Identifier: MIT
// Package: tensor
//
// Purpose:
//   - Row- and column-wise helpers that gonum leaves to the caller: bias
//     broadcast, column concat/split, row softmax, row L2 normalisation and
//     the broadcast outer sum.
//
// Note:
//   - Checked helpers (ConcatCols, SplitCols, AddRowVector, Hadamard) return
//     wrapped sentinels. Mul, Add, Sub and Scale are unchecked conveniences over
//     gonum and panic on mismatched shapes exactly like mat.Dense does; callers
//     validate shapes once at the layer boundary.

package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Zeros returns an r×c zero matrix.
func Zeros(r, c int) *mat.Dense { return mat.NewDense(r, c, nil) }

// Identity returns the n×n identity matrix.
func Identity(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}

	return out
}

// RowVector wraps vals as a 1×len(vals) matrix (vals is copied).
func RowVector(vals []float64) *mat.Dense {
	data := make([]float64, len(vals))
	copy(data, vals)

	return mat.NewDense(1, len(vals), data)
}

// Mul returns a·b.
func Mul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)

	return &out
}

// Add returns a+b.
func Add(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(a, b)

	return &out
}

// Sub returns a−b.
func Sub(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Sub(a, b)

	return &out
}

// Scale returns f·a.
func Scale(f float64, a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(f, a)

	return &out
}

// Hadamard returns the element-wise product a⊙b.
func Hadamard(a, b mat.Matrix) (*mat.Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, fmt.Errorf("hadamard: %w", err)
	}
	var out mat.Dense
	out.MulElem(a, b)

	return &out, nil
}

// RowSums returns d_i = Σ_j m_ij (the out-degree vector for an adjacency).
func RowSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	sums := make([]float64, r)
	for i := 0; i < r; i++ {
		var s float64
		for j := 0; j < c; j++ {
			s += m.At(i, j)
		}
		sums[i] = s
	}

	return sums
}

// Symmetrize returns (m + mᵀ)/2 as a SymDense. m must be square.
func Symmetrize(m mat.Matrix) (*mat.SymDense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, fmt.Errorf("symmetrize: %w", err)
	}
	n, _ := m.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return out, nil
}

// ConcatCols joins matrices with equal row counts left to right.
// Complexity: O(r*Σc).
func ConcatCols(ms ...mat.Matrix) (*mat.Dense, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("concat: %w", ErrEmptyStack)
	}
	for k, m := range ms {
		if err := ValidateNotNil(m); err != nil {
			return nil, fmt.Errorf("concat[%d]: %w", k, err)
		}
	}
	rows, _ := ms[0].Dims()
	total := 0
	for k, m := range ms {
		r, c := m.Dims()
		if r != rows {
			return nil, fmt.Errorf("concat[%d]: expected %d rows, got %d: %w", k, rows, r, ErrDimensionMismatch)
		}
		total += c
	}
	out := mat.NewDense(rows, total, nil)
	off := 0
	for _, m := range ms {
		_, c := m.Dims()
		out.Slice(0, rows, off, off+c).(*mat.Dense).Copy(m)
		off += c
	}

	return out, nil
}

// SplitCols cuts m into consecutive column blocks of the given widths.
// The widths must sum to cols(m). Blocks are copies, not views.
func SplitCols(m mat.Matrix, widths ...int) ([]*mat.Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	r, c := m.Dims()
	total := 0
	for _, w := range widths {
		if w <= 0 {
			return nil, fmt.Errorf("split: width %d: %w", w, ErrDimensionMismatch)
		}
		total += w
	}
	if total != c {
		return nil, fmt.Errorf("split: widths sum to %d, matrix has %d columns: %w", total, c, ErrDimensionMismatch)
	}
	src := mat.DenseCopyOf(m)
	out := make([]*mat.Dense, len(widths))
	off := 0
	for k, w := range widths {
		out[k] = mat.DenseCopyOf(src.Slice(0, r, off, off+w))
		off += w
	}

	return out, nil
}

// AddRowVector broadcasts the 1×c vector v over every row of the r×c matrix m.
func AddRowVector(m, v mat.Matrix) (*mat.Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, fmt.Errorf("bias: %w", err)
	}
	_, c := m.Dims()
	if err := ValidateShape(v, 1, c, "bias"); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, j int, x float64) float64 { return x + v.At(0, j) }, m)

	return &out, nil
}

// OuterSum returns E with E_ij = col_i + row_j (len(col)×len(row)).
// Attention logits use it to combine per-node self and neighbour scores.
func OuterSum(col, row []float64) *mat.Dense {
	out := mat.NewDense(len(col), len(row), nil)
	for i, a := range col {
		dst := out.RawRowView(i)
		for j, b := range row {
			dst[j] = a + b
		}
	}

	return out
}

// RowSoftmax applies a numerically stable softmax to each row (max subtraction
// before exponentiation). Every output row sums to 1.
func RowSoftmax(m mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(m)
	r, _ := out.Dims()
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		mx := floats.Max(row)
		var sum float64
		for j, v := range row {
			e := math.Exp(v - mx)
			row[j] = e
			sum += e
		}
		floats.Scale(1/sum, row)
	}

	return out
}

// NormalizeRowsL2 scales each row to unit L2 norm.
// Implementation:
//   - Stage 1: copy m.
//   - Stage 2: per row compute ‖x‖₂ with floats.Norm.
//   - Stage 3: scale by 1/‖x‖₂; rows with norm 0 are left unchanged.
//
// Returns the normalised copy and the number of zero-norm rows.
// Complexity: O(r*c).
func NormalizeRowsL2(m mat.Matrix) (*mat.Dense, int) {
	out := mat.DenseCopyOf(m)
	r, _ := out.Dims()
	zero := 0
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		n := floats.Norm(row, 2)
		if n == 0 {
			zero++
			continue
		}
		floats.Scale(1/n, row)
	}

	return out, zero
}
