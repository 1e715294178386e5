// SPDX-License-Identifier: MIT

package sage_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/sage"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/tensor"
)

// isolated returns a 3-node graph where node 2 has no neighbours.
func isolated() (*mat.Dense, *mat.Dense) {
	adj := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	return x, adj
}

func TestEmptyNeighborhoodIsZero(t *testing.T) {
	x, adj := isolated()
	for _, mode := range []sage.Mode{sage.Mean, sage.Pool, sage.LSTM} {
		t.Run(string(mode), func(t *testing.T) {
			l, err := sage.New(sage.Config{
				Units: 2, Mode: mode, Concat: true, NoNormalize: true,
				Activation: activation.Linear, KernelInit: nn.Ones,
			}, nn.WithSeed(1))
			require.NoError(t, err)
			out, err := l.Forward(x, adj, false)
			require.NoError(t, err)
			require.NoError(t, tensor.ValidateFinite(out, "out"))
			// columns 2..3 hold agg·W_neigh
			require.Equal(t, []float64{0, 0}, out.RawRowView(2)[2:])
			require.NotEqual(t, []float64{0, 0}, out.RawRowView(0)[2:])
			// self half: 5+6 per unit with a ones kernel
			require.Equal(t, []float64{11, 11}, out.RawRowView(2)[:2])
		})
	}
}

func TestMeanKnownValues(t *testing.T) {
	adj, err := snapshot.Adjacency(3, snapshot.Path)
	require.NoError(t, err)
	x := mat.NewDense(3, 3, []float64{
		2, 0, 0,
		0, 4, 0,
		0, 0, 6,
	})
	l, err := sage.New(sage.Config{
		Units: 1, NoNormalize: true, Activation: activation.Linear, KernelInit: nn.Ones,
	})
	require.NoError(t, err)
	out, err := l.Forward(x, adj, false)
	require.NoError(t, err)
	// node 0: self 2 + mean(x1)=4 ⇒ 6; node 1: 4 + mean(x0,x2)=(2+6)/2 ⇒ 8; node 2: 6 + 4 ⇒ 10
	require.Equal(t, []float64{6, 8, 10}, out.RawMatrix().Data)
}

func TestPoolTakesElementwiseMax(t *testing.T) {
	adj, err := snapshot.Adjacency(3, snapshot.Star)
	require.NoError(t, err)
	x := mat.NewDense(3, 1, []float64{-5, 1, 3})
	l, err := sage.New(sage.Config{
		Units: 1, Mode: sage.Pool, Concat: true, NoNormalize: true,
		Activation: activation.Linear, KernelInit: nn.Ones,
	})
	require.NoError(t, err)
	out, err := l.Forward(x, adj, false)
	require.NoError(t, err)
	// hub 0 sees relu(1), relu(3) ⇒ 3; leaves see relu(−5) = 0
	require.Equal(t, 3.0, out.At(0, 1))
	require.Equal(t, 0.0, out.At(1, 1))
	require.Equal(t, 0.0, out.At(2, 1))
}

func TestForwardEdgesMatchesDense(t *testing.T) {
	edges := []snapshot.Edge{{Src: 0, Dst: 1}, {Src: 2, Dst: 1}, {Src: 1, Dst: 3}, {Src: 3, Dst: 0}}
	adj, err := snapshot.DenseFromEdges(4, edges, snapshot.WithDirected())
	require.NoError(t, err)
	x, err := snapshot.OneHot(4, 3)
	require.NoError(t, err)

	for _, mode := range []sage.Mode{sage.Mean, sage.Pool, sage.LSTM} {
		l, err := sage.New(sage.Config{Units: 3, Mode: mode, PoolUnits: 5}, nn.WithSeed(2))
		require.NoError(t, err)
		dense, err := l.Forward(x, adj, false)
		require.NoError(t, err)
		sparse, err := l.ForwardEdges(x, edges, false)
		require.NoError(t, err)
		require.True(t, mat.EqualApprox(dense, sparse, 1e-12), mode)
	}
}

func TestOutputRowsNormalised(t *testing.T) {
	x, adj := isolated()
	l, err := sage.New(sage.Config{Units: 4, Concat: true}, nn.WithSeed(3))
	require.NoError(t, err)
	require.Equal(t, 8, l.Width())
	out, err := l.Forward(x, adj, false)
	require.NoError(t, err)
	_, c := out.Dims()
	require.Equal(t, 8, c)
	for i := 0; i < 3; i++ {
		n := floats.Norm(out.RawRowView(i), 2)
		require.True(t, n == 0 || math.Abs(n-1) < 1e-9, "row %d norm %v", i, n)
	}
}

func TestLSTMModeLinksParameters(t *testing.T) {
	l, err := sage.New(sage.Config{Units: 2, Mode: sage.LSTM, PoolUnits: 3})
	require.NoError(t, err)
	ps, err := l.Init(4)
	require.NoError(t, err)
	// self, neigh, bias + 4 gates × 3
	require.Len(t, ps.Parameters(), 15)
	r, c := ps.Get("neigh_kernel").Value.Dims()
	require.Equal(t, []int{3, 2}, []int{r, c})
}

func TestErrors(t *testing.T) {
	_, err := sage.New(sage.Config{Units: 2, Mode: "median"})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)

	l, err := sage.New(sage.Config{Units: 2})
	require.NoError(t, err)
	_, err = l.ForwardEdges(mat.NewDense(2, 2, nil), []snapshot.Edge{{Src: 0, Dst: 2}}, false)
	require.ErrorIs(t, err, tensor.ErrDimensionMismatch)
	_, err = l.Forward(mat.NewDense(2, 2, nil), mat.NewDense(3, 3, nil), false)
	require.ErrorIs(t, err, tensor.ErrDimensionMismatch)
}
