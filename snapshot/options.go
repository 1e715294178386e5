// SPDX-License-Identifier: MIT

// Package snapshot: functional options for DenseFromEdges.
// Defaults mirror an undirected, unweighted simple graph.

package snapshot

// Defaults for DenseFromEdges.
const (
	// DefaultDirected false ⇒ every edge is mirrored (A symmetric).
	DefaultDirected = false

	// DefaultWeighted false ⇒ cells are 1 regardless of Edge.Weight.
	DefaultWeighted = false

	// DefaultAllowLoops false ⇒ self-loops are dropped.
	DefaultAllowLoops = false

	// DefaultAllowMulti false ⇒ first edge per pair wins (ordered pair when
	// directed, unordered when undirected).
	DefaultAllowMulti = false

	defaultWeight = 1.0
)

// Option configures DenseFromEdges.
type Option func(*options)

type options struct {
	directed   bool
	weighted   bool
	allowLoops bool
	allowMulti bool
}

func defaultOptions() options {
	return options{
		directed:   DefaultDirected,
		weighted:   DefaultWeighted,
		allowLoops: DefaultAllowLoops,
		allowMulti: DefaultAllowMulti,
	}
}

func gatherOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithDirected writes only A[dst][src].
func WithDirected() Option { return func(o *options) { o.directed = true } }

// WithWeighted keeps Edge.Weight in the adjacency cells.
func WithWeighted() Option { return func(o *options) { o.weighted = true } }

// WithLoops keeps self-loops on the diagonal.
func WithLoops() Option { return func(o *options) { o.allowLoops = true } }

// WithMulti sums parallel edges into one cell instead of keeping the first.
func WithMulti() Option { return func(o *options) { o.allowMulti = true } }
