// SPDX-License-Identifier: MIT

// Package snapshot models the graph inputs graphnn layers consume.
//
// A Snapshot pairs node features X (N×F) with a dense adjacency A (N×N) and the
// time Gap elapsed since the previous snapshot. A Sequence is an ordered list of
// snapshots over a fixed node set (N constant, adjacency free to change).
//
// Adjacency convention:
//
//	A[i][j] ≠ 0  ⇔  node j sends a message to node i  ⇔  Edge{Src: j, Dst: i}.
//
// For undirected graphs A is symmetric and the distinction vanishes.
//
// Edge form:
//
//	EdgesFromDense and DenseFromEdges convert between the two forms. The dense
//	builder follows explicit policies set by options:
//	  - WithDirected:  write only A[dst][src]; default mirrors into A[src][dst].
//	  - WithWeighted:  keep Edge.Weight; default writes 1.
//	  - WithLoops:     keep self-loops; default drops them.
//	  - WithMulti:     sum parallel edges; default keeps the first edge per pair.
//
// Generators:
//
//	Ring, Path, Star and Complete emit canonical undirected edge lists in a
//	stable order; OneHot builds the one-hot feature matrix used in tests and
//	examples (node i gets feature i mod F).
package snapshot
