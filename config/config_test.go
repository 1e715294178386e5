// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/config"
	"github.com/katalvlaran/graphnn/graphrnn"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/operator"
	"github.com/katalvlaran/graphnn/rnn"
	"github.com/katalvlaran/graphnn/snapshot"
)

const model = `
seed: 7
operators:
  - name: encoder
    kind: gcn
    units: 4
    activation: tanh
    filter: {mode: chebyshev, support: 3}
  - name: attention
    kind: gat
    units: 2
    heads: 3
    combine: concat
recurrent:
  - name: clock
    kind: tlstm
    units: 3
graph_recurrent:
  - name: gcrn
    units: 2
    mode: per_gate
    recurrent_dropout: 0.1
    operator: {kind: sage, aggregator: pool}
dense:
  - name: head
    units: [8, 4]
residual:
  - name: skip
    units1: [4]
    units2: [6]
bilinear:
  - name: link
    units: 1
sampled_softmax:
  - name: vocab
    classes: 20
    sampled: 5
    sampler: uniform
`

func TestParseAndBuild(t *testing.T) {
	f, err := config.Parse([]byte(model))
	require.NoError(t, err)
	require.NotNil(t, f.Seed)
	require.Equal(t, uint64(7), *f.Seed)
	require.Equal(t, activation.Tanh, f.Operators[0].Activation)
	require.Equal(t, rnn.KindTLSTM, f.Recurrent[0].Kind)
	require.Equal(t, graphrnn.PerGate, f.GraphRecurrent[0].Mode)
	require.Equal(t, 0.1, f.GraphRecurrent[0].RecurrentDropout)

	m, err := f.Build()
	require.NoError(t, err)
	require.Len(t, m.Operators, 2)
	require.Equal(t, operator.GAT, m.Operators["attention"].Kind())
	require.Equal(t, 6, m.Operators["attention"].Width())
	require.Equal(t, "clock", m.Recurrent["clock"].Name())
	require.Equal(t, graphrnn.PerGate, m.GraphRecurrent["gcrn"].Mode())
	require.Equal(t, 4, m.Dense["head"].Width())
	require.Equal(t, 4, m.Residual["skip"].Width())
	require.Contains(t, m.Bilinear, "link")
	require.Contains(t, m.SampledSoftmax, "vocab")
	require.Empty(t, m.Parameters())

	adj, err := snapshot.Adjacency(5, snapshot.Ring)
	require.NoError(t, err)
	x, err := snapshot.OneHot(5, 3)
	require.NoError(t, err)
	out, err := m.Operators["encoder"].Apply(x, adj, false)
	require.NoError(t, err)
	r, c := out.Dims()
	require.Equal(t, []int{5, 4}, []int{r, c})
	require.Len(t, m.Parameters(), 2)
	require.Equal(t, "encoder/kernel", m.Parameters()[0].Name)
}

func TestBuild_SeedIsReproducible(t *testing.T) {
	build := func() []*nn.Parameter {
		f, err := config.Parse([]byte(model))
		require.NoError(t, err)
		m, err := f.Build()
		require.NoError(t, err)
		_, err = m.Recurrent["clock"].Init(4)
		require.NoError(t, err)
		_, err = m.Bilinear["link"].Init(3, 3)
		require.NoError(t, err)
		return m.Parameters()
	}
	a, b := build(), build()
	require.Len(t, a, 14+2)
	for i := range a {
		require.Equal(t, a[i].Name, b[i].Name)
		require.True(t, mat.Equal(a[i].Value, b[i].Value), a[i].Name)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "", config.ErrEmpty},
		{"duplicate", "operators: [{name: a, kind: gcn, units: 2}]\ndense: [{name: a, units: [2]}]", config.ErrDuplicateName},
		{"missing name", "operators: [{kind: gcn, units: 2}]", config.ErrMissingName},
		{"bad units", "operators: [{name: a, kind: gcn, units: 0}]", nn.ErrInvalidConfig},
		{"bad kind", "recurrent: [{name: a, kind: elman, units: 2}]", nn.ErrInvalidConfig},
		{"bad activation", "operators: [{name: a, kind: gcn, units: 2, activation: mish}]", activation.ErrUnknown},
		{"bad softmax", "sampled_softmax: [{name: a, classes: 2, sampled: 3}]", nn.ErrInvalidConfig},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.doc))
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := config.Parse([]byte("operators: [{name: a, kind: gcn, units: 2, colour: red}]"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "colour")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(model), 0o600))
	f, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, f.Operators, 2)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
