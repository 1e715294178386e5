// SPDX-License-Identifier: MIT

// Package spectral turns an adjacency matrix into the support basis consumed by
// graph convolution.
//
// Modes:
//
//	localpool  one basis, the symmetric degree normalisation D^{-1/2}·Aᵀ·D^{-1/2}
//	           with d_i = Σ_j A_ij. Zero-degree nodes get D^{-1/2}_ii = 0.
//	chebyshev  support+1 bases T_0..T_K of the rescaled Laplacian
//	           L̃ = (2/λ_max)·L − I, L = I − A_norm, by the recurrence
//	           T_0 = I, T_1 = L̃, T_k = 2·L̃·T_{k−1} − T_{k−2}.
//
// SelfLoops adds I to A before normalisation.
//
// Degenerate inputs are not errors:
//   - zero-degree nodes contribute zero rows and columns (reported as
//     nn.DegenerateZeroDegree);
//   - λ_max below DefaultEigenFloor is replaced by 2, so L̃ = L − I stays finite
//     (reported as nn.DegenerateSmallEigenvalue).
//
// Complexity:
//   - localpool: O(N²).
//   - chebyshev: O(N³) for the symmetric eigensolve (gonum mat.EigenSym) plus
//     O(K·N³) for the recurrence. Intended for small and medium graphs.
package spectral
