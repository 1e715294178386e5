// SPDX-License-Identifier: MIT

// Package sage implements GraphSAGE-style neighbour aggregation.
//
// For node i with in-neighbours N(i) (sources of edges j→i):
//
//	mean  agg_i = mean_{j∈N(i)} x_j
//	pool  agg_i = max_{j∈N(i)} relu(x_j·W_pool + b_pool)      (element-wise max)
//	lstm  agg_i = h_final of an LSTM run over x_j, j∈N(i), in edge order
//
//	out_i = act( combine(x_i·W_self, agg_i·W_neigh) + bias )
//	combine = concatenation (width 2U) or sum (width U)
//
// Unless NoNormalize is set, output rows are L2-normalised; all-zero rows stay
// zero (nn.DegenerateZeroNormRow). A node without neighbours aggregates the
// zero vector in every mode (nn.DegenerateEmptyNeighborhood); no NaN is ever
// produced.
//
// Inputs come either as a dense adjacency (Forward, A[i][j] ≠ 0 ⇔ j→i) or as an
// edge list (ForwardEdges). Both paths share the same parameters.
package sage
