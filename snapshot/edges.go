// SPDX-License-Identifier: MIT

package snapshot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/tensor"
)

// Edge is a message path Src → Dst with an optional weight.
type Edge struct {
	Src, Dst int
	Weight   float64
}

type pairKey struct{ u, v int }

func orderedPair(u, v int) pairKey { return pairKey{u: u, v: v} }

func unorderedPair(u, v int) pairKey {
	if u <= v {
		return pairKey{u: u, v: v}
	}

	return pairKey{u: v, v: u}
}

// ValidateEdges checks every endpoint lies in [0,n).
func ValidateEdges(n int, edges []Edge) error {
	for k, e := range edges {
		if e.Src < 0 || e.Src >= n || e.Dst < 0 || e.Dst >= n {
			return fmt.Errorf("edge %d (%d→%d) outside [0,%d): %w", k, e.Src, e.Dst, n, tensor.ErrDimensionMismatch)
		}
	}

	return nil
}

// DenseFromEdges builds an n×n adjacency from an edge list.
// Implementation:
//   - Stage 1: validate n and endpoints.
//   - Stage 2: walk edges in input order applying loop and multi-edge policy
//     (first-edge-wins, or summation under WithMulti).
//   - Stage 3: write A[dst][src], mirrored into A[src][dst] unless directed.
//
// Complexity: O(n² + E).
func DenseFromEdges(n int, edges []Edge, opts ...Option) (*mat.Dense, error) {
	if n < 1 {
		return nil, fmt.Errorf("DenseFromEdges: n=%d: %w", n, ErrTooFewVertices)
	}
	if err := ValidateEdges(n, edges); err != nil {
		return nil, fmt.Errorf("DenseFromEdges: %w", err)
	}
	o := gatherOptions(opts...)
	adj := mat.NewDense(n, n, nil)
	seen := make(map[pairKey]struct{}, len(edges))

	for _, e := range edges {
		if e.Src == e.Dst && !o.allowLoops {
			continue
		}
		w := defaultWeight
		if o.weighted {
			w = e.Weight
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("DenseFromEdges: %d→%d weight %v: %w", e.Src, e.Dst, w, ErrInvalidWeight)
			}
		}
		if !o.allowMulti {
			key := unorderedPair(e.Src, e.Dst)
			if o.directed {
				key = orderedPair(e.Src, e.Dst)
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		adj.Set(e.Dst, e.Src, adj.At(e.Dst, e.Src)+w)
		if !o.directed && e.Src != e.Dst {
			adj.Set(e.Src, e.Dst, adj.At(e.Src, e.Dst)+w)
		}
	}

	return adj, nil
}

// EdgesFromDense lists every non-zero cell A[i][j] as Edge{Src: j, Dst: i,
// Weight: A[i][j]}, ordered by destination then source.
func EdgesFromDense(adj mat.Matrix) ([]Edge, error) {
	if err := tensor.ValidateSquare(adj); err != nil {
		return nil, fmt.Errorf("EdgesFromDense: %w", err)
	}
	n, _ := adj.Dims()
	var edges []Edge
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if w := adj.At(i, j); w != 0 {
				edges = append(edges, Edge{Src: j, Dst: i, Weight: w})
			}
		}
	}

	return edges, nil
}

// Neighbors groups edges by destination: out[i] lists the sources of messages
// into i in edge order. Endpoints must already be validated.
func Neighbors(n int, edges []Edge) [][]int {
	out := make([][]int, n)
	for _, e := range edges {
		out[e.Dst] = append(out[e.Dst], e.Src)
	}

	return out
}
