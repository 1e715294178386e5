// SPDX-License-Identifier: MIT

package rnn

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// LSTM is a long short-term memory cell. State is [h ∥ c] (B×2U), output h.
type LSTM struct {
	*base
	f, i, o, c gate
}

var _ Cell = (*LSTM)(nil)

// NewLSTM validates cfg. Parameters are allocated by Init or the first Step.
func NewLSTM(cfg Config, opts ...nn.Option) (*LSTM, error) {
	b, err := newBase(KindLSTM, cfg, opts)
	if err != nil {
		return nil, err
	}

	return &LSTM{base: b}, nil
}

// StateSize returns 2U.
func (l *LSTM) StateSize() int { return 2 * l.cfg.Units }

// InitialState returns rows×2U zeros.
func (l *LSTM) InitialState(rows int) *mat.Dense { return tensor.Zeros(rows, 2*l.cfg.Units) }

// Init allocates the f, i, o and c gates for inputs of width inputDim.
func (l *LSTM) Init(inputDim int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{inputDim}, func() error {
		if inputDim < 1 {
			return nn.Invalid("lstm: input width %d", inputDim)
		}
		for _, gt := range []struct {
			name string
			dst  *gate
		}{{"f", &l.f}, {"i", &l.i}, {"o", &l.o}, {"c", &l.c}} {
			g, err := l.newGate(gt.name, inputDim)
			if err != nil {
				return err
			}
			*gt.dst = g
		}
		l.built(inputDim)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rnn: %w", err)
	}

	return l.params, nil
}

// Step computes [h' ∥ c'] from x and [h ∥ c]; out is h'.
func (l *LSTM) Step(x, state *mat.Dense, train bool) (*mat.Dense, *mat.Dense, error) {
	start := time.Now()
	f, err := checkStep(x, state, l.StateSize())
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: lstm: %w", err)
	}
	if _, err := l.Init(f); err != nil {
		return nil, nil, err
	}
	h, c, err := SplitState(state, l.cfg.Units)
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: lstm: %w", err)
	}

	l.params.RLock()
	defer l.params.RUnlock()

	out, next, err := l.update(x, h, l.drop(c, l.cfg.RecurrentDropout, train), train)
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: lstm: %w", err)
	}
	l.s.Observe(start)

	return out, next, nil
}

// update is the LSTM recurrence on an explicit (h, cd), where cd already
// carries recurrent dropout. Callers hold RLock.
func (l *LSTM) update(x, h, cd *mat.Dense, train bool) (*mat.Dense, *mat.Dense, error) {
	xd := l.drop(x, l.cfg.Dropout, train)
	hd := l.drop(h, l.cfg.RecurrentDropout, train)

	fg := l.activate(l.f.pre(xd, hd), train)
	ig := l.activate(l.i.pre(xd, hd), train)
	og := l.activate(l.o.pre(xd, hd), train)
	cand := l.activate(l.c.pre(xd, hd), train)

	var cNext, tmp mat.Dense
	cNext.MulElem(fg, cd)
	tmp.MulElem(ig, cand)
	cNext.Add(&cNext, &tmp)

	var hNext mat.Dense
	hNext.MulElem(og, l.act.Apply(&cNext))

	next, err := tensor.ConcatCols(&hNext, &cNext)
	if err != nil {
		return nil, nil, err
	}

	return &hNext, next, nil
}

// SplitState cuts an LSTM state [h ∥ c] into h and c (copies).
func SplitState(state *mat.Dense, units int) (*mat.Dense, *mat.Dense, error) {
	parts, err := tensor.SplitCols(state, units, units)
	if err != nil {
		return nil, nil, err
	}

	return parts[0], parts[1], nil
}
