// SPDX-License-Identifier: MIT

package graphrnn_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/graphrnn"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/operator"
	"github.com/katalvlaran/graphnn/rnn"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/spectral"
	"github.com/katalvlaran/graphnn/tensor"
)

func ringSequence(t *testing.T, n, f, steps int) snapshot.Sequence {
	t.Helper()
	adj, err := snapshot.Adjacency(n, snapshot.Ring)
	require.NoError(t, err)
	seq := make(snapshot.Sequence, steps)
	for s := range seq {
		x := mat.NewDense(n, f, nil)
		for i := 0; i < n; i++ {
			x.Set(i, (i+s)%f, 1)
		}
		seq[s] = snapshot.Snapshot{Features: x, Adjacency: adj}
	}

	return seq
}

func TestRun_Trajectory(t *testing.T) {
	for _, tc := range []struct {
		name string
		mode graphrnn.Mode
		op   operator.Kind
	}{
		{"shared/gcn", graphrnn.Shared, operator.GCN},
		{"shared/gat", graphrnn.Shared, operator.GAT},
		{"per_gate/gcn", graphrnn.PerGate, operator.GCN},
		{"per_gate/sage", graphrnn.PerGate, operator.SAGE},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := graphrnn.New(graphrnn.Config{
				Config:   rnn.Config{Units: 3},
				Operator: operator.Config{Kind: tc.op, Units: 5},
				Mode:     tc.mode,
			}, nn.WithSeed(1))
			require.NoError(t, err)
			require.Equal(t, tc.mode, c.Mode())

			traj, err := graphrnn.Run(c, ringSequence(t, 4, 3, 3), false)
			require.NoError(t, err)
			require.Len(t, traj, 3)
			for _, h := range traj {
				r, cols := h.Dims()
				require.Equal(t, 4, r)
				require.Equal(t, 3, cols)
				require.NoError(t, tensor.ValidateFinite(h, "state"))
			}
			require.NotEmpty(t, c.Parameters())
		})
	}
}

func TestNew_DefaultsAndErrors(t *testing.T) {
	c, err := graphrnn.New(graphrnn.Config{
		Config:   rnn.Config{Units: 2},
		Operator: operator.Config{Kind: operator.GCN},
	})
	require.NoError(t, err)
	require.Equal(t, graphrnn.Shared, c.Mode())
	require.Equal(t, 2, c.Units())

	_, err = graphrnn.New(graphrnn.Config{Config: rnn.Config{Units: 2}})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)

	_, err = graphrnn.New(graphrnn.Config{
		Config:   rnn.Config{Units: 2},
		Operator: operator.Config{Kind: operator.GCN},
		Mode:     "sideways",
	})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
}

func TestPerGate_SixOperators(t *testing.T) {
	c, err := graphrnn.New(graphrnn.Config{
		Config:   rnn.Config{Units: 2},
		Operator: operator.Config{Kind: operator.GCN, Units: 7},
		Mode:     graphrnn.PerGate,
	}, nn.WithName("cell"), nn.WithSeed(2))
	require.NoError(t, err)
	_, err = c.Step(ringSequence(t, 4, 3, 1)[0], c.InitialState(4), false)
	require.NoError(t, err)

	kernels := 0
	for _, p := range c.Parameters() {
		if strings.HasSuffix(p.Name, "/kernel") {
			kernels++
			_, cols := p.Value.Dims()
			require.Equal(t, 2, cols, p.Name)
		}
	}
	require.Equal(t, 6, kernels)
}

type filterCounter struct {
	mu    sync.Mutex
	calls int
}

func (f *filterCounter) ObserveForward(layer string, _ time.Duration) {
	if !strings.HasSuffix(layer, "/filter") {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *filterCounter) ObserveDegenerate(string, string, int) {}

func TestPerGate_OneSpectralBasisPerStep(t *testing.T) {
	rec := &filterCounter{}
	c, err := graphrnn.New(graphrnn.Config{
		Config: rnn.Config{Units: 2},
		Operator: operator.Config{
			Kind:   operator.GCN,
			Filter: spectral.Config{Mode: spectral.Chebyshev},
		},
		Mode: graphrnn.PerGate,
	}, nn.WithSeed(6), nn.WithRecorder(rec))
	require.NoError(t, err)

	traj, err := graphrnn.Run(c, ringSequence(t, 5, 3, 4), false)
	require.NoError(t, err)
	require.Len(t, traj, 4)
	require.Equal(t, 4, rec.calls)
}

func TestPerGate_ClosedUpdateGateKeepsState(t *testing.T) {
	c, err := graphrnn.New(graphrnn.Config{
		Config:   rnn.Config{Units: 2},
		Operator: operator.Config{Kind: operator.GCN},
		Mode:     graphrnn.PerGate,
	}, nn.WithName("cell"), nn.WithSeed(3))
	require.NoError(t, err)

	snap := ringSequence(t, 4, 3, 1)[0]
	h := mat.NewDense(4, 2, []float64{0.1, -0.2, 0.3, 0.4, -0.5, 0.6, 0.7, -0.8})
	_, err = c.Step(snap, h, false)
	require.NoError(t, err)

	// zero every parameter except the update-gate bias, which saturates σ at 0
	require.NoError(t, c.Params().Update(func(params []*nn.Parameter) error {
		for _, p := range params {
			fill := 0.0
			if strings.HasPrefix(p.Name, "cell/wz/") && strings.HasSuffix(p.Name, "/bias") {
				fill = -1000
			}
			data := p.Value.RawMatrix().Data
			for i := range data {
				data[i] = fill
			}
		}
		return nil
	}))

	next, err := c.Step(snap, h, false)
	require.NoError(t, err)
	require.True(t, mat.Equal(h, next))
}

func TestStep_ShapeErrors(t *testing.T) {
	c, err := graphrnn.New(graphrnn.Config{
		Config:   rnn.Config{Units: 2},
		Operator: operator.Config{Kind: operator.GCN},
	})
	require.NoError(t, err)
	snap := ringSequence(t, 4, 3, 1)[0]

	_, err = c.Step(snap, c.InitialState(5), false)
	require.ErrorIs(t, err, tensor.ErrDimensionMismatch)

	seq := append(ringSequence(t, 4, 3, 1), ringSequence(t, 5, 3, 1)...)
	_, err = graphrnn.Run(c, seq, false)
	require.ErrorIs(t, err, snapshot.ErrNodeCountChanged)

	_, err = graphrnn.Run(c, nil, false)
	require.ErrorIs(t, err, snapshot.ErrEmptySequence)
}

func TestStepPacked(t *testing.T) {
	c, err := graphrnn.New(graphrnn.Config{
		Config:   rnn.Config{Units: 3},
		Operator: operator.Config{Kind: operator.SAGE, Units: 4},
	}, nn.WithSeed(4))
	require.NoError(t, err)

	snap := ringSequence(t, 4, 2, 1)[0]
	h := c.InitialState(4)
	want, err := c.Step(snap, h, false)
	require.NoError(t, err)

	packed, err := tensor.ConcatCols(snap.Features, snap.Adjacency)
	require.NoError(t, err)
	got, err := c.StepPacked(packed, h, false)
	require.NoError(t, err)
	require.True(t, mat.Equal(want, got))

	_, err = c.StepPacked(mat.NewDense(4, 4, nil), h, false)
	require.ErrorIs(t, err, tensor.ErrDimensionMismatch)
}

func TestSeededDropoutReproducible(t *testing.T) {
	run := func() []*mat.Dense {
		c, err := graphrnn.New(graphrnn.Config{
			Config:   rnn.Config{Units: 2, Dropout: 0.3, RecurrentDropout: 0.2},
			Operator: operator.Config{Kind: operator.GAT, Heads: 2, Dropout: 0.1},
			Mode:     graphrnn.PerGate,
		}, nn.WithSeed(11))
		require.NoError(t, err)
		traj, err := graphrnn.Run(c, ringSequence(t, 5, 3, 2), true)
		require.NoError(t, err)
		return traj
	}
	a, b := run(), run()
	for i := range a {
		require.True(t, mat.Equal(a[i], b[i]))
	}
}
