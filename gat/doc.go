// SPDX-License-Identifier: MIT

// Package gat implements multi-head masked graph attention.
//
// Per head h, with kernel K_h (F×U), attention vectors a_self, a_neigh (U×1):
//
//	feats = X·K_h
//	E_ij  = LeakyReLU(s_i + n_j),  s = feats·a_self, n = feats·a_neigh
//	E_ij += MaskValue              where A_ij == 0   (applied exactly once)
//	α     = rowsoftmax(E)
//	out_h = dropout(α)·dropout(feats) + bias_h
//
// Heads are combined by concatenation (width U·Heads) or mean (width U), then
// the activation is applied.
//
// No self-loops are added: a node attends only to its adjacency row. A node
// with an empty row (isolated) receives an all-zero attention row, so its
// output is the bias alone. This keeps attention to non-edges at zero without
// exception; occurrences are reported as nn.DegenerateIsolatedNode.
//
// Concurrency:
//
//	Heads are evaluated concurrently with errgroup. Each head's dropout stream is
//	derived from the layer source in head order before the fan-out, so a seeded
//	layer produces the same output regardless of scheduling.
package gat
