// SPDX-License-Identifier: MIT

// Package tensor holds the thin substrate helpers every layer in graphnn shares.
//
// What & Why:
//
//	Dense linear algebra is delegated to gonum (mat.Dense, mat.EigenSym, mat.QR).
//	This package only adds what layers repeat across files: shape validators with
//	sentinel errors, the Stack type used for spectral supports (support×N×N),
//	row-wise softmax and L2 normalisation, bias broadcast, column concat/split and
//	the broadcast outer sum used by attention logits.
//
// Contracts:
//   - Every helper returns a freshly allocated *mat.Dense; inputs are never mutated.
//   - Shape violations are reported as ErrDimensionMismatch / ErrNonSquare /
//     ErrNilMatrix wrapped with expected and actual dimensions.
//   - Degenerate rows (all-zero norm, empty softmax support) are handled by
//     documented fallbacks and reported back as counts, never as NaN.
//
// Complexity quicksheet:
//   - RowSoftmax, NormalizeRowsL2, AddRowVector, Map: O(r*c).
//   - OuterSum: O(n*m).
//   - ConcatCols: O(r*Σc).
package tensor
