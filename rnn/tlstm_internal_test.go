// SPDX-License-Identifier: MIT

package rnn

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
)

func TestTLSTM_DropsMemoryBeforeDecay(t *testing.T) {
	newCell := func() *TLSTM {
		tl, err := NewTLSTM(Config{Units: 3, Dropout: 0.2, RecurrentDropout: 0.4}, nn.WithSeed(21))
		require.NoError(t, err)
		_, err = tl.Init(3)
		require.NoError(t, err)
		return tl
	}
	src := nn.NewSource(22)
	x := mat.NewDense(4, 2, nil)
	state := mat.NewDense(4, 6, nil)
	for _, m := range []*mat.Dense{x, state} {
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				m.Set(i, j, src.NormFloat64())
			}
		}
	}
	gaps := []float64{0.5, 3, 10, 40}

	_, got, err := newCell().StepGap(x, gaps, state, true)
	require.NoError(t, err)

	tl := newCell()
	h, c, err := SplitState(state, 3)
	require.NoError(t, err)
	cd := tl.lstm.drop(c, 0.4, true)
	_, want, err := tl.lstm.update(x, h, tl.discount(cd, gaps), true)
	require.NoError(t, err)

	require.True(t, mat.Equal(want, got))
}
