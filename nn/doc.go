// SPDX-License-Identifier: MIT

// Package nn is the plumbing every graphnn layer shares.
//
// What & Why:
//
//	Layers are forward-only: gradients and optimizer steps live outside this
//	module. What layers do share is the parameter contract, randomness,
//	configuration checks and observability, and this package owns all of it:
//
//	  - Parameter / ParamSet: named *mat.Dense values owned by one layer. Forward
//	    passes read them under a read lock; an external optimizer writes only
//	    through ParamSet.Update, which takes the write lock and refuses shape
//	    changes. One writer, many readers, enforced by the type.
//	  - Initializer: glorot_uniform, glorot_normal, orthogonal, zeros, ones.
//	  - Source: a mutex-guarded math/rand/v2 PCG stream; Dropout draws fresh
//	    inverted-dropout masks from it.
//	  - Lazy: the build-once guard behind two-phase construction. The first
//	    forward call fixes input widths; later calls with other widths fail with
//	    ErrShapeChanged.
//	  - Settings / Option: layer name, *slog.Logger, Recorder and Source.
//	  - Validate: go-playground/validator/v10 over Config structs, with the
//	    "activation" and "initializer" rules registered.
//
// Lifecycle of a layer:
//
//	l, err := gcn.New(cfg, nn.WithSeed(7))   // configure: validation, activation lookup
//	ps, err := l.Init(features, support)     // initialise parameters (optional, lazy)
//	out, err := l.Forward(x, basis, false)   // calls Init on first use
//
// Degeneracy reporting:
//
//	Numerical fallbacks (zero-degree nodes, tiny eigenvalues, isolated nodes,
//	empty neighbourhoods, zero-norm rows) are never errors. Layers report them
//	through Settings.Degenerate, which logs at debug level and forwards the count
//	to the configured Recorder.
package nn
