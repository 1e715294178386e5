// SPDX-License-Identifier: MIT

// Package gcn implements spectral graph convolution over a precomputed support
// basis (see package spectral).
//
// Forward(X, basis):
//
//	H   = [b_0·X ∥ b_1·X ∥ … ∥ b_{K−1}·X]      N × F·K
//	out = act(H·W + bias)                      N × Units
//
// W is (F·K)×Units and is created on the first Forward (or an explicit Init),
// which fixes F and K for the life of the layer. With Dropout > 0 and train set,
// inverted dropout is applied to X before propagation.
package gcn
