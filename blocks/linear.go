// SPDX-License-Identifier: MIT

package blocks

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// Defaults shared by the blocks.
const (
	DefaultActivation = activation.ELU
	DefaultKernelInit = nn.GlorotUniform
	DefaultBiasInit   = nn.Zeros
)

// LinearConfig describes a fully connected layer. Activation defaults to linear.
type LinearConfig struct {
	Units      int             `yaml:"units" validate:"gt=0"`
	Activation activation.Kind `yaml:"activation" validate:"activation"`
	NoBias     bool            `yaml:"no_bias"`
	KernelInit nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	BiasInit   nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Linear computes act(x·W + b).
type Linear struct {
	cfg    LinearConfig
	act    activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet

	kernel *nn.Parameter
	bias   *nn.Parameter
}

// NewLinear validates cfg.
func NewLinear(cfg LinearConfig, opts ...nn.Option) (*Linear, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("blocks: linear: %w", err)
	}
	act, err := nn.Resolve(cfg.Activation, activation.Linear)
	if err != nil {
		return nil, fmt.Errorf("blocks: linear: %w", err)
	}
	s := nn.NewSettings("linear", opts...)

	return &Linear{cfg: cfg, act: act, s: s, params: nn.NewParamSet(s.Name)}, nil
}

func (l *Linear) Name() string                { return l.s.Name }
func (l *Linear) Units() int                  { return l.cfg.Units }
func (l *Linear) Params() *nn.ParamSet        { return l.params }
func (l *Linear) Parameters() []*nn.Parameter { return l.params.Parameters() }

// Init allocates W (in×Units) and b (1×Units).
func (l *Linear) Init(in int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{in}, func() error {
		if in < 1 {
			return nn.Invalid("blocks: linear input width %d", in)
		}
		w, err := l.cfg.KernelInit.Or(DefaultKernelInit).New(l.s.Source, in, l.cfg.Units)
		if err != nil {
			return err
		}
		if l.kernel, err = l.params.Add("kernel", w); err != nil {
			return err
		}
		if !l.cfg.NoBias {
			b, err := l.cfg.BiasInit.Or(DefaultBiasInit).New(l.s.Source, 1, l.cfg.Units)
			if err != nil {
				return err
			}
			if l.bias, err = l.params.Add("bias", b); err != nil {
				return err
			}
		}
		l.s.Built(l.params, slog.Int("input", in), slog.Int("units", l.cfg.Units))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	return l.params, nil
}

// Forward maps x (B×in) to B×Units.
func (l *Linear) Forward(x *mat.Dense) (*mat.Dense, error) {
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("blocks: linear input: %w", err)
	}
	_, in := x.Dims()
	if _, err := l.Init(in); err != nil {
		return nil, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	out := tensor.Mul(x, l.kernel.Value)
	if l.bias != nil {
		var err error
		if out, err = tensor.AddRowVector(out, l.bias.Value); err != nil {
			return nil, fmt.Errorf("blocks: %w", err)
		}
	}

	return l.act.Apply(out), nil
}
