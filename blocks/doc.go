// SPDX-License-Identifier: MIT

// Package blocks holds the non-graph building blocks that sit on top of node
// embeddings: feed-forward stacks, residual blocks, bilinear link scoring and a
// sampled-softmax loss head.
//
//	Linear          act(x·W + b)
//	LayerNorm       per-row (x − μ)/√(σ² + ε)·γ + β, ε = 1e-3 by default
//	Dense           for each width: dropout → Linear(act) → LayerNorm
//	Residual        dropout(norm(act(branch1(x) + proj(branch2(x)))))
//	Bilinear        out[b,k] = act(Σ_ij a[b,i]·K[i,j,k]·c[b,j] + bias_k)
//	SampledSoftmax  cross-entropy over the true class and a sample of negatives
//
// Every block follows the two-phase construction of the layer packages: New
// validates the config, parameters are created on first Forward (or Init).
package blocks
