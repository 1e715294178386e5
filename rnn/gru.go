// SPDX-License-Identifier: MIT

package rnn

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// GRU is a gated recurrent unit. State and output are both h (B×U).
type GRU struct {
	*base
	z, r, h gate
}

var _ Cell = (*GRU)(nil)

// NewGRU validates cfg. Parameters are allocated by Init or the first Step.
func NewGRU(cfg Config, opts ...nn.Option) (*GRU, error) {
	b, err := newBase(KindGRU, cfg, opts)
	if err != nil {
		return nil, err
	}

	return &GRU{base: b}, nil
}

// StateSize returns U.
func (g *GRU) StateSize() int { return g.cfg.Units }

// InitialState returns rows×U zeros.
func (g *GRU) InitialState(rows int) *mat.Dense { return tensor.Zeros(rows, g.cfg.Units) }

// Init allocates the z, r and h gates for inputs of width inputDim.
func (g *GRU) Init(inputDim int) (*nn.ParamSet, error) {
	err := g.lazy.Ensure([]int{inputDim}, func() error {
		if inputDim < 1 {
			return nn.Invalid("gru: input width %d", inputDim)
		}
		var err error
		if g.z, err = g.newGate("z", inputDim); err != nil {
			return err
		}
		if g.r, err = g.newGate("r", inputDim); err != nil {
			return err
		}
		if g.h, err = g.newGate("h", inputDim); err != nil {
			return err
		}
		g.built(inputDim)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rnn: %w", err)
	}

	return g.params, nil
}

// Step computes h' from x and h. out and next are the same matrix.
func (g *GRU) Step(x, state *mat.Dense, train bool) (*mat.Dense, *mat.Dense, error) {
	start := time.Now()
	f, err := checkStep(x, state, g.StateSize())
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: gru: %w", err)
	}
	if _, err := g.Init(f); err != nil {
		return nil, nil, err
	}

	g.params.RLock()
	defer g.params.RUnlock()

	xd := g.drop(x, g.cfg.Dropout, train)
	hd := g.drop(state, g.cfg.RecurrentDropout, train)

	z := g.activate(g.z.pre(xd, hd), train)
	r := g.activate(g.r.pre(xd, hd), train)
	var hr mat.Dense
	hr.MulElem(hd, r)
	cand := g.activate(g.h.pre(xd, &hr), train)

	next := Interpolate(state, z, cand)
	g.s.Observe(start)

	return next, next, nil
}
