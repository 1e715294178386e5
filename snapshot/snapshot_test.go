// SPDX-License-Identifier: MIT

package snapshot_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/tensor"
)

func TestSnapshotValidate(t *testing.T) {
	adj, err := snapshot.Adjacency(4, snapshot.Ring)
	require.NoError(t, err)
	x, err := snapshot.OneHot(4, 3)
	require.NoError(t, err)

	s, err := snapshot.New(x, adj)
	require.NoError(t, err)
	require.Equal(t, 4, s.Nodes())
	require.Equal(t, 3, s.FeatureDim())

	_, err = snapshot.New(mat.NewDense(3, 3, nil), adj)
	require.ErrorIs(t, err, tensor.ErrDimensionMismatch)

	s.Gap = -1
	require.ErrorIs(t, s.Validate(), snapshot.ErrInvalidGap)
	s.Gap = math.NaN()
	require.ErrorIs(t, s.Validate(), snapshot.ErrInvalidGap)
}

func TestSequenceValidate(t *testing.T) {
	_, err := snapshot.Sequence{}.Validate()
	require.ErrorIs(t, err, snapshot.ErrEmptySequence)

	a3, _ := snapshot.Adjacency(3, snapshot.Ring)
	a4, _ := snapshot.Adjacency(4, snapshot.Ring)
	x3, _ := snapshot.OneHot(3, 2)
	x4, _ := snapshot.OneHot(4, 2)

	seq := snapshot.Sequence{{Features: x3, Adjacency: a3}, {Features: x3, Adjacency: a3}}
	n, err := seq.Validate()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	seq = append(seq, snapshot.Snapshot{Features: x4, Adjacency: a4})
	_, err = seq.Validate()
	require.ErrorIs(t, err, snapshot.ErrNodeCountChanged)
}

func TestDenseFromEdges_Policies(t *testing.T) {
	edges := []snapshot.Edge{
		{Src: 0, Dst: 1, Weight: 2},
		{Src: 1, Dst: 0, Weight: 5}, // same unordered pair
		{Src: 2, Dst: 2, Weight: 1}, // loop
	}

	adj, err := snapshot.DenseFromEdges(3, edges)
	require.NoError(t, err)
	require.Equal(t, 1.0, adj.At(1, 0))
	require.Equal(t, 1.0, adj.At(0, 1))
	require.Equal(t, 0.0, adj.At(2, 2))

	adj, err = snapshot.DenseFromEdges(3, edges, snapshot.WithDirected(), snapshot.WithWeighted(), snapshot.WithLoops())
	require.NoError(t, err)
	require.Equal(t, 2.0, adj.At(1, 0))
	require.Equal(t, 5.0, adj.At(0, 1))
	require.Equal(t, 1.0, adj.At(2, 2))

	adj, err = snapshot.DenseFromEdges(3, edges, snapshot.WithWeighted(), snapshot.WithMulti())
	require.NoError(t, err)
	require.Equal(t, 7.0, adj.At(1, 0))
	require.Equal(t, 7.0, adj.At(0, 1))

	_, err = snapshot.DenseFromEdges(3, []snapshot.Edge{{Src: 0, Dst: 3}})
	require.ErrorIs(t, err, tensor.ErrDimensionMismatch)
	_, err = snapshot.DenseFromEdges(2, []snapshot.Edge{{Src: 0, Dst: 1, Weight: math.Inf(1)}}, snapshot.WithWeighted())
	require.ErrorIs(t, err, snapshot.ErrInvalidWeight)
}

func TestEdgesFromDense_Convention(t *testing.T) {
	adj := mat.NewDense(2, 2, []float64{0, 3, 0, 0})
	edges, err := snapshot.EdgesFromDense(adj)
	require.NoError(t, err)
	require.Equal(t, []snapshot.Edge{{Src: 1, Dst: 0, Weight: 3}}, edges)

	back, err := snapshot.DenseFromEdges(2, edges, snapshot.WithDirected(), snapshot.WithWeighted())
	require.NoError(t, err)
	require.True(t, mat.Equal(adj, back))

	nb := snapshot.Neighbors(2, edges)
	require.Equal(t, []int{1}, nb[0])
	require.Empty(t, nb[1])
}

func TestGenerators(t *testing.T) {
	cases := []struct {
		name   string
		gen    snapshot.Generator
		n      int
		degree []float64
	}{
		{"ring", snapshot.Ring, 4, []float64{2, 2, 2, 2}},
		{"path", snapshot.Path, 3, []float64{1, 2, 1}},
		{"star", snapshot.Star, 4, []float64{3, 1, 1, 1}},
		{"complete", snapshot.Complete, 4, []float64{3, 3, 3, 3}},
		{"wheel", snapshot.Wheel, 5, []float64{3, 3, 3, 3, 4}},
		{"dense random", snapshot.RandomSparse(nil, 1), 4, []float64{3, 3, 3, 3}},
		{"empty random", snapshot.RandomSparse(nil, 0), 3, []float64{0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adj, err := snapshot.Adjacency(tc.n, tc.gen)
			require.NoError(t, err)
			require.Equal(t, tc.degree, tensor.RowSums(adj))
		})
	}

	_, err := snapshot.Ring(2)
	require.ErrorIs(t, err, snapshot.ErrTooFewVertices)
	_, err = snapshot.Wheel(3)
	require.ErrorIs(t, err, snapshot.ErrTooFewVertices)
}

func TestGrid(t *testing.T) {
	edges, err := snapshot.Grid(2, 3)
	require.NoError(t, err)
	require.Len(t, edges, 7)
	adj, err := snapshot.DenseFromEdges(6, edges)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 3, 2, 2, 3, 2}, tensor.RowSums(adj))

	_, err = snapshot.Grid(0, 3)
	require.ErrorIs(t, err, snapshot.ErrTooFewVertices)
}

func TestRandomSparse(t *testing.T) {
	a, err := snapshot.Adjacency(8, snapshot.RandomSparse(nn.NewSource(1), 0.4))
	require.NoError(t, err)
	b, err := snapshot.Adjacency(8, snapshot.RandomSparse(nn.NewSource(1), 0.4))
	require.NoError(t, err)
	require.True(t, mat.Equal(a, b))
	require.True(t, mat.Equal(a, a.T()))

	_, err = snapshot.RandomSparse(nil, 0.5)(4)
	require.ErrorIs(t, err, snapshot.ErrNeedRandSource)
	_, err = snapshot.RandomSparse(nn.NewSource(1), 1.5)(4)
	require.ErrorIs(t, err, snapshot.ErrInvalidProbability)
}

func TestOneHot(t *testing.T) {
	x, err := snapshot.OneHot(4, 3)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 0}, x.RawRowView(3))
	require.Equal(t, []float64{0, 0, 1}, x.RawRowView(2))
}
