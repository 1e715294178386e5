// SPDX-License-Identifier: MIT

package rnn

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// TLSTM is a time-aware LSTM: before the LSTM update the short-term part of the
// memory is discounted by 1/ln(e + Δt), where Δt is the gap since the previous
// step. With Δt = 0 it reduces to the plain LSTM.
//
// Step expects the gap packed as the last column of x; StepGap takes it
// separately. The LSTM parameters live in Base(); the decay parameters
// (W_d: U×U, b_d: 1×U) in the TLSTM's own set, linked to the base set.
type TLSTM struct {
	cfg    Config
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet
	lstm   *LSTM

	decayKernel, decayBias *nn.Parameter
}

var _ Cell = (*TLSTM)(nil)

// NewTLSTM validates cfg. Parameters are allocated by Init or the first Step.
func NewTLSTM(cfg Config, opts ...nn.Option) (*TLSTM, error) {
	s := nn.NewSettings(string(KindTLSTM), opts...)
	lstm, err := NewLSTM(cfg, s.Sub("lstm")...)
	if err != nil {
		return nil, err
	}
	t := &TLSTM{cfg: cfg, s: s, params: nn.NewParamSet(s.Name), lstm: lstm}
	t.params.Link(lstm.params)

	return t, nil
}

func (t *TLSTM) Name() string                { return t.s.Name }
func (t *TLSTM) Kind() Kind                  { return KindTLSTM }
func (t *TLSTM) StateSize() int              { return 2 * t.cfg.Units }
func (t *TLSTM) OutputSize() int             { return t.cfg.Units }
func (t *TLSTM) Params() *nn.ParamSet        { return t.params }
func (t *TLSTM) Parameters() []*nn.Parameter { return t.params.Parameters() }

// Base exposes the underlying LSTM (shared parameters, no decay).
func (t *TLSTM) Base() *LSTM { return t.lstm }

// InitialState returns rows×2U zeros.
func (t *TLSTM) InitialState(rows int) *mat.Dense { return tensor.Zeros(rows, 2*t.cfg.Units) }

// Init allocates parameters for packed inputs of width inputDim (features plus
// the trailing gap column), so inputDim must be at least 2.
func (t *TLSTM) Init(inputDim int) (*nn.ParamSet, error) {
	if inputDim < 2 {
		return nil, fmt.Errorf("rnn: %w", nn.Invalid("tlstm: packed input width %d < 2", inputDim))
	}
	if err := t.initFeatures(inputDim - 1); err != nil {
		return nil, err
	}

	return t.params, nil
}

func (t *TLSTM) initFeatures(features int) error {
	err := t.lazy.Ensure([]int{features}, func() error {
		if _, err := t.lstm.Init(features); err != nil {
			return err
		}
		src := t.lstm.s.Source
		u := t.cfg.Units
		w, err := t.cfg.RecurrentInit.Or(DefaultRecurrentInit).New(src, u, u)
		if err != nil {
			return err
		}
		if t.decayKernel, err = t.params.Add("decay_kernel", w); err != nil {
			return err
		}
		if !t.cfg.NoBias {
			b, err := nn.Zeros.New(src, 1, u)
			if err != nil {
				return err
			}
			if t.decayBias, err = t.params.Add("decay_bias", b); err != nil {
				return err
			}
		}
		t.s.Built(t.params)

		return nil
	})
	if err != nil {
		return fmt.Errorf("rnn: %w", err)
	}

	return nil
}

// Step splits the last column of x off as the per-row gap and calls StepGap.
func (t *TLSTM) Step(x, state *mat.Dense, train bool) (*mat.Dense, *mat.Dense, error) {
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, nil, fmt.Errorf("rnn: tlstm: input: %w", err)
	}
	rows, cols := x.Dims()
	if cols < 2 {
		return nil, nil, fmt.Errorf("rnn: tlstm: packed input has %d columns, need features plus gap: %w",
			cols, tensor.ErrDimensionMismatch)
	}
	feats := mat.DenseCopyOf(x.Slice(0, rows, 0, cols-1))
	gaps := make([]float64, rows)
	mat.Col(gaps, cols-1, x)

	return t.StepGap(feats, gaps, state, train)
}

// StepGap runs one step with explicit per-row gaps (len(gaps) == rows(x)).
func (t *TLSTM) StepGap(x *mat.Dense, gaps []float64, state *mat.Dense, train bool) (*mat.Dense, *mat.Dense, error) {
	start := time.Now()
	f, err := checkStep(x, state, t.StateSize())
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: tlstm: %w", err)
	}
	rows, _ := x.Dims()
	if len(gaps) != rows {
		return nil, nil, fmt.Errorf("rnn: tlstm: %d gaps for %d rows: %w", len(gaps), rows, tensor.ErrDimensionMismatch)
	}
	for i, g := range gaps {
		if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
			return nil, nil, fmt.Errorf("rnn: tlstm: row %d gap %v: %w", i, g, ErrInvalidGap)
		}
	}
	if err := t.initFeatures(f); err != nil {
		return nil, nil, err
	}
	h, c, err := SplitState(state, t.cfg.Units)
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: tlstm: %w", err)
	}

	t.params.RLock()
	defer t.params.RUnlock()
	// memory is dropped before it is decayed
	adjusted := t.discount(t.lstm.drop(c, t.lstm.cfg.RecurrentDropout, train), gaps)

	t.lstm.params.RLock()
	out, next, err := t.lstm.update(x, h, adjusted, train)
	t.lstm.params.RUnlock()
	if err != nil {
		return nil, nil, fmt.Errorf("rnn: tlstm: %w", err)
	}
	t.s.Observe(start)

	return out, next, nil
}

// discount returns (c − cs) + cs/ln(e + Δt) with cs = act(c·W_d + b_d).
func (t *TLSTM) discount(c *mat.Dense, gaps []float64) *mat.Dense {
	cs := tensor.Mul(c, t.decayKernel.Value)
	if t.decayBias != nil {
		addBias(cs, t.decayBias.Value)
	}
	cs = t.lstm.act.Apply(cs)

	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		s := cs.At(i, j)
		return (v - s) + s/math.Log(math.E+gaps[i])
	}, c)

	return &out
}
