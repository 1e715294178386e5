// SPDX-License-Identifier: MIT

package activation_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/graphnn/activation"
)

func TestParse(t *testing.T) {
	k, err := activation.Parse(" ReLU ")
	require.NoError(t, err)
	require.Equal(t, activation.ReLU, k)

	_, err = activation.Parse("gelu-ish")
	require.ErrorIs(t, err, activation.ErrUnknown)
}

func TestEveryKindResolves(t *testing.T) {
	for _, k := range activation.Kinds() {
		f, err := k.Func()
		require.NoError(t, err, k)
		require.NotNil(t, f)
		require.True(t, k.Valid())
	}
	_, err := activation.Kind("nope").Func()
	require.ErrorIs(t, err, activation.ErrUnknown)
}

func TestValues(t *testing.T) {
	cases := []struct {
		kind activation.Kind
		in   float64
		want float64
	}{
		{activation.Linear, -3, -3},
		{activation.ReLU, -3, 0},
		{activation.ReLU, 2, 2},
		{activation.Sigmoid, 0, 0.5},
		{activation.Sigmoid, -1000, 0},
		{activation.Sigmoid, 1000, 1},
		{activation.HardSigmoid, 10, 1},
		{activation.HardSigmoid, 0, 0.5},
		{activation.Tanh, 0, 0},
		{activation.LeakyReLU, -1, -0.2},
		{activation.ELU, 0, 0},
		{activation.Swish, 0, 0},
		{activation.Softplus, 100, 100},
	}
	for _, tc := range cases {
		f, err := tc.kind.Func()
		require.NoError(t, err)
		require.InDelta(t, tc.want, f(tc.in), 1e-12, "%s(%v)", tc.kind, tc.in)
	}
}

func TestFuncApply(t *testing.T) {
	f, err := activation.ReLU.Func()
	require.NoError(t, err)
	m := mat.NewDense(1, 3, []float64{-1, 0, 2})
	out := f.Apply(m)
	require.Equal(t, []float64{0, 0, 2}, out.RawRowView(0))
	require.Equal(t, -1.0, m.At(0, 0))
}

func TestOr(t *testing.T) {
	require.Equal(t, activation.ELU, activation.Kind("").Or(activation.ELU))
	require.Equal(t, activation.Tanh, activation.Tanh.Or(activation.ELU))
}

func TestUnmarshalYAML(t *testing.T) {
	var v struct {
		Act activation.Kind `yaml:"act"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("act: Sigmoid\n"), &v))
	require.Equal(t, activation.Sigmoid, v.Act)

	err := yaml.Unmarshal([]byte("act: mystery\n"), &v)
	require.ErrorIs(t, err, activation.ErrUnknown)
}
