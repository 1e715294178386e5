// SPDX-License-Identifier: MIT

// Package graphnn is a toolkit of composable graph representation-learning
// layers on top of gonum: spectral graph convolution, graph attention,
// neighbourhood aggregation, recurrent cells and graph-recurrent cells for
// temporal graphs.
//
// 🚀 What is in the box?
//
//	snapshot/     graph snapshots (X, A), sequences, edge lists, generators
//	spectral/     localpool and Chebyshev support bases from an adjacency
//	gcn/          graph convolution over a support basis
//	gat/          multi-head masked graph attention
//	sage/         mean / max-pool / LSTM neighbour aggregation
//	operator/     one interface over gcn, gat and sage
//	rnn/          GRU, LSTM and time-aware LSTM cells
//	graphrnn/     graph-recurrent cells (shared and per-gate operators)
//	blocks/       dense, residual, bilinear and sampled-softmax blocks
//	config/       YAML model files → built layers
//	telemetry/    Prometheus recorder for forward and degeneracy counters
//	nn/, tensor/, activation/   parameters, options, randomness, matrix helpers
//
// ✨ Conventions
//
//   - Two-phase construction: New validates a Config; parameters are created on
//     the first Forward (or an explicit Init), which fixes the input widths.
//   - Every layer exposes Parameters(); an optimizer mutates them under
//     ParamSet.Update, which excludes concurrent forward passes.
//   - Errors are sentinels matched with errors.Is; degenerate inputs (isolated
//     nodes, empty neighbourhoods, tiny eigenvalues) get explicit fallbacks
//     that are logged and counted, never NaN.
//   - Randomness comes from an injectable seeded source (nn.WithSeed).
//
// Quick example, a 4-node ring through a one-head attention layer:
//
//	adj, _ := snapshot.Adjacency(4, snapshot.Ring)
//	x, _ := snapshot.OneHot(4, 3)
//	layer, _ := gat.New(gat.Config{Units: 2, Heads: 1}, nn.WithSeed(1))
//	res, _ := layer.ForwardDetailed(x, adj, false)
//	// res.Output is 4×2; each row of res.Attention[0] sums to 1.
package graphnn
