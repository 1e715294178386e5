// SPDX-License-Identifier: MIT

package rnn

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// Kind names a cell type.
type Kind string

// Supported kinds.
const (
	KindGRU   Kind = "gru"
	KindLSTM  Kind = "lstm"
	KindTLSTM Kind = "tlstm"
)

// Defaults applied to empty Config fields.
const (
	DefaultActivation          = activation.Tanh
	DefaultRecurrentActivation = activation.Sigmoid
	DefaultKernelInit          = nn.GlorotUniform
	DefaultRecurrentInit       = nn.Orthogonal
	DefaultBiasInit            = nn.Ones
)

// Config holds the hyperparameters shared by every cell kind.
type Config struct {
	Units               int             `yaml:"units" validate:"gt=0"`
	Activation          activation.Kind `yaml:"activation" validate:"activation"`
	RecurrentActivation activation.Kind `yaml:"recurrent_activation" validate:"activation"`
	Dropout             float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	RecurrentDropout    float64         `yaml:"recurrent_dropout" validate:"gte=0,lt=1"`
	NoBias              bool            `yaml:"no_bias"`
	KernelInit          nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	RecurrentInit       nn.Initializer  `yaml:"recurrent_init" validate:"initializer"`
	BiasInit            nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Cell is the capability shared by GRU, LSTM and TLSTM.
type Cell interface {
	Name() string
	Kind() Kind
	// StateSize is the state width S; OutputSize the output width U.
	StateSize() int
	OutputSize() int
	// InitialState returns the zero state for rows rows.
	InitialState(rows int) *mat.Dense
	// Init allocates parameters for inputs of width inputDim.
	Init(inputDim int) (*nn.ParamSet, error)
	// Step advances one time step. It builds lazily on first use.
	Step(x, state *mat.Dense, train bool) (out, next *mat.Dense, err error)
	Parameters() []*nn.Parameter
	Params() *nn.ParamSet
}

// New builds a cell of the given kind.
func New(kind Kind, cfg Config, opts ...nn.Option) (Cell, error) {
	switch kind {
	case KindGRU:
		return NewGRU(cfg, opts...)
	case KindLSTM:
		return NewLSTM(cfg, opts...)
	case KindTLSTM:
		return NewTLSTM(cfg, opts...)
	default:
		return nil, nn.Invalid("rnn: unknown cell kind %q", string(kind))
	}
}

// Run unrolls cell over xs from the zero state and returns each step's output
// and the final state.
func Run(cell Cell, xs []*mat.Dense, train bool) ([]*mat.Dense, *mat.Dense, error) {
	if len(xs) == 0 {
		return nil, nil, ErrEmptySequence
	}
	if err := tensor.ValidateNotNil(xs[0]); err != nil {
		return nil, nil, fmt.Errorf("rnn: step 0: %w", err)
	}
	rows, _ := xs[0].Dims()
	state := cell.InitialState(rows)
	outs := make([]*mat.Dense, len(xs))
	for t, x := range xs {
		out, next, err := cell.Step(x, state, train)
		if err != nil {
			return nil, nil, fmt.Errorf("rnn: step %d: %w", t, err)
		}
		outs[t], state = out, next
	}

	return outs, state, nil
}

// Interpolate returns (1−z)⊙h + z⊙cand, the gated state update shared by the
// GRU and the graph-recurrent cells.
func Interpolate(h, z, cand *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(i, j int, zv float64) float64 {
		return (1-zv)*h.At(i, j) + zv*cand.At(i, j)
	}, z)

	return &out
}

// gate holds the three parameters of one gate.
type gate struct {
	kernel, recurrent, bias *nn.Parameter
}

// pre returns x·W + h·U + b.
func (g gate) pre(x, h mat.Matrix) *mat.Dense {
	out := tensor.Mul(x, g.kernel.Value)
	out.Add(out, tensor.Mul(h, g.recurrent.Value))
	if g.bias != nil {
		addBias(out, g.bias.Value)
	}

	return out
}

func addBias(m, bias *mat.Dense) {
	b := bias.RawRowView(0)
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		floats.Add(m.RawRowView(i), b)
	}
}

// base is the plumbing shared by every cell kind.
type base struct {
	kind   Kind
	cfg    Config
	act    activation.Func
	rec    activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet
}

func newBase(kind Kind, cfg Config, opts []nn.Option) (*base, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("rnn: %w", err)
	}
	act, err := nn.Resolve(cfg.Activation, DefaultActivation)
	if err != nil {
		return nil, fmt.Errorf("rnn: %w", err)
	}
	rec, err := nn.Resolve(cfg.RecurrentActivation, DefaultRecurrentActivation)
	if err != nil {
		return nil, fmt.Errorf("rnn: %w", err)
	}
	s := nn.NewSettings(string(kind), opts...)

	return &base{kind: kind, cfg: cfg, act: act, rec: rec, s: s, params: nn.NewParamSet(s.Name)}, nil
}

func (b *base) Name() string                { return b.s.Name }
func (b *base) Kind() Kind                  { return b.kind }
func (b *base) OutputSize() int             { return b.cfg.Units }
func (b *base) Params() *nn.ParamSet        { return b.params }
func (b *base) Parameters() []*nn.Parameter { return b.params.Parameters() }

// newGate allocates W (in×U), U (U×U) and, unless NoBias, b (1×U).
func (b *base) newGate(name string, in int) (gate, error) {
	var g gate
	u := b.cfg.Units
	w, err := b.cfg.KernelInit.Or(DefaultKernelInit).New(b.s.Source, in, u)
	if err != nil {
		return g, err
	}
	if g.kernel, err = b.params.Add("kernel_"+name, w); err != nil {
		return g, err
	}
	rw, err := b.cfg.RecurrentInit.Or(DefaultRecurrentInit).New(b.s.Source, u, u)
	if err != nil {
		return g, err
	}
	if g.recurrent, err = b.params.Add("recurrent_"+name, rw); err != nil {
		return g, err
	}
	if !b.cfg.NoBias {
		bw, err := b.cfg.BiasInit.Or(DefaultBiasInit).New(b.s.Source, 1, u)
		if err != nil {
			return g, err
		}
		if g.bias, err = b.params.Add("bias_"+name, bw); err != nil {
			return g, err
		}
	}

	return g, nil
}

func (b *base) built(inputDim int) {
	b.s.Built(b.params, slog.String("kind", string(b.kind)), slog.Int("input", inputDim), slog.Int("units", b.cfg.Units))
}

// checkStep validates x (B×F, F ≥ 1) and state (B×stateSize) and returns F.
func checkStep(x, state *mat.Dense, stateSize int) (int, error) {
	if err := tensor.ValidateNotNil(x); err != nil {
		return 0, fmt.Errorf("input: %w", err)
	}
	rows, cols := x.Dims()
	if err := tensor.ValidateShape(state, rows, stateSize, "state"); err != nil {
		return 0, err
	}

	return cols, nil
}

func (b *base) drop(m *mat.Dense, rate float64, train bool) *mat.Dense {
	return nn.Dropout(b.s.Source, m, rate, train)
}

// activate applies σ_r to pre and drops the result with the recurrent rate.
func (b *base) activate(pre *mat.Dense, train bool) *mat.Dense {
	return b.drop(b.rec.Apply(pre), b.cfg.RecurrentDropout, train)
}
