// SPDX-License-Identifier: MIT

package snapshot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	minRingNodes     = 3
	minPathNodes     = 2
	minStarNodes     = 2
	minCompleteNodes = 1
	minWheelNodes    = 4 // rim cycle needs ≥ 3 nodes
	minGridDim       = 1
	minSparseNodes   = 1
)

// Ring returns the edges i→(i+1) mod n of the cycle C_n (n ≥ 3).
func Ring(n int) ([]Edge, error) {
	if n < minRingNodes {
		return nil, fmt.Errorf("Ring: n=%d < min=%d: %w", n, minRingNodes, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, Edge{Src: i, Dst: (i + 1) % n, Weight: defaultWeight})
	}

	return edges, nil
}

// Path returns the edges i→i+1 of the path P_n (n ≥ 2).
func Path(n int) ([]Edge, error) {
	if n < minPathNodes {
		return nil, fmt.Errorf("Path: n=%d < min=%d: %w", n, minPathNodes, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, Edge{Src: i, Dst: i + 1, Weight: defaultWeight})
	}

	return edges, nil
}

// Star returns the edges 0→i for i=1..n−1 (hub 0, n ≥ 2).
func Star(n int) ([]Edge, error) {
	if n < minStarNodes {
		return nil, fmt.Errorf("Star: n=%d < min=%d: %w", n, minStarNodes, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{Src: 0, Dst: i, Weight: defaultWeight})
	}

	return edges, nil
}

// Complete returns one edge i→j per unordered pair i<j of K_n.
func Complete(n int) ([]Edge, error) {
	if n < minCompleteNodes {
		return nil, fmt.Errorf("Complete: n=%d < min=%d: %w", n, minCompleteNodes, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, Edge{Src: i, Dst: j, Weight: defaultWeight})
		}
	}

	return edges, nil
}

// Wheel returns the rim cycle over nodes 0..n−2 plus spokes from the hub n−1
// to every rim node (n ≥ 4).
func Wheel(n int) ([]Edge, error) {
	if n < minWheelNodes {
		return nil, fmt.Errorf("Wheel: n=%d < min=%d: %w", n, minWheelNodes, ErrTooFewVertices)
	}
	edges, err := Ring(n - 1)
	if err != nil {
		return nil, fmt.Errorf("Wheel: rim C_%d: %w", n-1, err)
	}
	hub := n - 1
	for i := 0; i < hub; i++ {
		edges = append(edges, Edge{Src: hub, Dst: i, Weight: defaultWeight})
	}

	return edges, nil
}

// Grid returns the 4-neighbour lattice on rows×cols nodes, node (r, c) having
// index r·cols + c. Edges point right and down.
func Grid(rows, cols int) ([]Edge, error) {
	if rows < minGridDim || cols < minGridDim {
		return nil, fmt.Errorf("Grid: rows=%d, cols=%d (each must be ≥ %d): %w", rows, cols, minGridDim, ErrTooFewVertices)
	}
	edges := make([]Edge, 0, 2*rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := r*cols + c
			if c+1 < cols {
				edges = append(edges, Edge{Src: u, Dst: u + 1, Weight: defaultWeight})
			}
			if r+1 < rows {
				edges = append(edges, Edge{Src: u, Dst: u + cols, Weight: defaultWeight})
			}
		}
	}

	return edges, nil
}

// Rand is the random stream consumed by RandomSparse; *nn.Source satisfies it.
type Rand interface {
	Float64() float64
}

// RandomSparse returns a Generator for the Erdős–Rényi graph G(n, p): each
// unordered pair i<j is an edge with probability p, visited in ascending
// order so a seeded rng yields the same graph on every run. rng may be nil
// only when p is 0 or 1.
func RandomSparse(rng Rand, p float64) Generator {
	return func(n int) ([]Edge, error) {
		if n < minSparseNodes {
			return nil, fmt.Errorf("RandomSparse: n=%d < min=%d: %w", n, minSparseNodes, ErrTooFewVertices)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("RandomSparse: p=%.6f not in [0,1]: %w", p, ErrInvalidProbability)
		}
		if rng == nil && p > 0 && p < 1 {
			return nil, fmt.Errorf("RandomSparse: %w", ErrNeedRandSource)
		}
		var edges []Edge
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				keep := p == 1
				if rng != nil && p > 0 && p < 1 {
					keep = rng.Float64() < p
				}
				if keep {
					edges = append(edges, Edge{Src: i, Dst: j, Weight: defaultWeight})
				}
			}
		}

		return edges, nil
	}
}

// OneHot returns the n×f matrix with X[i][i mod f] = 1.
func OneHot(n, f int) (*mat.Dense, error) {
	if n < 1 || f < 1 {
		return nil, fmt.Errorf("OneHot: n=%d f=%d: %w", n, f, ErrTooFewVertices)
	}
	x := mat.NewDense(n, f, nil)
	for i := 0; i < n; i++ {
		x.Set(i, i%f, 1)
	}

	return x, nil
}

// Generator is the signature shared by the fixed-shape generators (Ring,
// Path, Star, Complete, Wheel) and RandomSparse.
type Generator func(n int) ([]Edge, error)

// Adjacency runs gen for n nodes and builds the dense adjacency with opts
// (undirected binary by default).
func Adjacency(n int, gen Generator, opts ...Option) (*mat.Dense, error) {
	edges, err := gen(n)
	if err != nil {
		return nil, err
	}

	return DenseFromEdges(n, edges, opts...)
}
