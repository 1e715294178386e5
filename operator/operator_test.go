// SPDX-License-Identifier: MIT

package operator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/gat"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/operator"
	"github.com/katalvlaran/graphnn/sage"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/spectral"
)

func TestNew_AllKinds(t *testing.T) {
	adj, err := snapshot.Adjacency(5, snapshot.Ring)
	require.NoError(t, err)
	x, err := snapshot.OneHot(5, 3)
	require.NoError(t, err)

	cases := []struct {
		cfg   operator.Config
		width int
	}{
		{operator.Config{Kind: operator.GCN, Units: 4}, 4},
		{operator.Config{Kind: operator.GCN, Units: 4, Filter: spectral.Config{Mode: spectral.Chebyshev, Support: 3}}, 4},
		{operator.Config{Kind: operator.GAT, Units: 2, Heads: 3, Combine: gat.Concat}, 6},
		{operator.Config{Kind: operator.GAT, Units: 2}, 2},
		{operator.Config{Kind: operator.SAGE, Units: 3, Concat: true}, 6},
		{operator.Config{Kind: operator.SAGE, Units: 3, Aggregator: sage.Pool}, 3},
	}
	for _, tc := range cases {
		op, err := operator.New(tc.cfg, nn.WithSeed(1))
		require.NoError(t, err)
		require.Equal(t, tc.cfg.Kind, op.Kind())
		require.Equal(t, tc.width, op.Width())

		out, err := op.Apply(x, adj, false)
		require.NoError(t, err)
		r, c := out.Dims()
		require.Equal(t, 5, r)
		require.Equal(t, tc.width, c)
		require.NotEmpty(t, op.Parameters())
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	_, err := operator.New(operator.Config{Units: 2})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = operator.New(operator.Config{Kind: "cheb", Units: 2})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = operator.New(operator.Config{Kind: operator.GCN, Units: 2, Filter: spectral.Config{Mode: "fourier"}})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = operator.New(operator.Config{Kind: operator.SAGE, Units: 2, Aggregator: "median"})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
}

func TestGCNOperatorRebuildsBasisPerCall(t *testing.T) {
	op, err := operator.New(operator.Config{Kind: operator.GCN, Units: 2, Activation: activation.Linear}, nn.WithSeed(4))
	require.NoError(t, err)
	x, err := snapshot.OneHot(4, 2)
	require.NoError(t, err)
	ring, _ := snapshot.Adjacency(4, snapshot.Ring)
	star, _ := snapshot.Adjacency(4, snapshot.Star)

	a, err := op.Apply(x, ring, false)
	require.NoError(t, err)
	b, err := op.Apply(x, star, false)
	require.NoError(t, err)
	require.False(t, mat.Equal(a, b))
}

func TestPreparedGraphMatchesApply(t *testing.T) {
	x, err := snapshot.OneHot(5, 3)
	require.NoError(t, err)
	adj, err := snapshot.Adjacency(5, snapshot.Wheel)
	require.NoError(t, err)
	for _, cfg := range []operator.Config{
		{Kind: operator.GCN, Units: 2, Filter: spectral.Config{Mode: spectral.Chebyshev, Support: 3}},
		{Kind: operator.GAT, Units: 2, Heads: 2},
		{Kind: operator.SAGE, Units: 2},
	} {
		t.Run(string(cfg.Kind), func(t *testing.T) {
			op, err := operator.New(cfg, nn.WithSeed(8))
			require.NoError(t, err)
			want, err := op.Apply(x, adj, false)
			require.NoError(t, err)

			g, err := operator.Prepare(op, adj)
			require.NoError(t, err)
			got, err := operator.ApplyGraph(op, x, g, false)
			require.NoError(t, err)
			require.True(t, mat.EqualApprox(want, got, 1e-12))
		})
	}
}

func TestPrepareRejectsBadAdjacency(t *testing.T) {
	op, err := operator.New(operator.Config{Kind: operator.GCN, Units: 2})
	require.NoError(t, err)
	_, err = operator.Prepare(op, mat.NewDense(2, 3, nil))
	require.Error(t, err)
}
