// SPDX-License-Identifier: MIT

// Package operator is the shared capability of graph operators: map node
// features X (N×F) and an adjacency A (N×N) to node embeddings (N×Width()).
//
// New selects the concrete operator (gcn, gat or sage) once from Config.Kind;
// callers then hold an Operator and never dispatch on strings per call. The gcn
// operator builds its spectral basis from A on every Apply, so it accepts the
// same (X, A) pair as the attention and aggregation operators.
package operator
