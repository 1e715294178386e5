// SPDX-License-Identifier: MIT

package gcn

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// Defaults applied to empty Config fields.
const (
	DefaultActivation = activation.ReLU
	DefaultKernelInit = nn.GlorotUniform
	DefaultBiasInit   = nn.Zeros
)

// Config describes a graph convolution layer.
type Config struct {
	Units      int             `yaml:"units" validate:"gt=0"`
	Activation activation.Kind `yaml:"activation" validate:"activation"`
	NoBias     bool            `yaml:"no_bias"`
	Dropout    float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	KernelInit nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	BiasInit   nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Layer is a graph convolution. Safe for concurrent Forward calls.
type Layer struct {
	cfg    Config
	act    activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet

	kernel *nn.Parameter
	bias   *nn.Parameter
}

// New validates cfg and resolves the activation. No parameters are allocated.
func New(cfg Config, opts ...nn.Option) (*Layer, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("gcn: %w", err)
	}
	act, err := nn.Resolve(cfg.Activation, DefaultActivation)
	if err != nil {
		return nil, fmt.Errorf("gcn: %w", err)
	}
	s := nn.NewSettings("gcn", opts...)

	return &Layer{cfg: cfg, act: act, s: s, params: nn.NewParamSet(s.Name)}, nil
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.s.Name }

// Units returns the output width.
func (l *Layer) Units() int { return l.cfg.Units }

// Params returns the layer's parameter set (empty before Init).
func (l *Layer) Params() *nn.ParamSet { return l.params }

// Parameters lists the kernel and, unless NoBias, the bias.
func (l *Layer) Parameters() []*nn.Parameter { return l.params.Parameters() }

// Init allocates W ((features·support)×Units) and the bias for the given input
// widths. Repeating it with the same widths is a no-op; other widths fail with
// nn.ErrShapeChanged.
func (l *Layer) Init(features, support int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{features, support}, func() error {
		if features < 1 || support < 1 {
			return nn.Invalid("gcn: features=%d support=%d", features, support)
		}
		w, err := l.cfg.KernelInit.Or(DefaultKernelInit).New(l.s.Source, features*support, l.cfg.Units)
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
		l.s.Built(l.params, slog.Int("features", features), slog.Int("support", support), slog.Int("units", l.cfg.Units))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gcn: %w", err)
	}

	return l.params, nil
}

// Forward convolves x (N×F) over basis (K matrices of N×N).
func (l *Layer) Forward(x *mat.Dense, basis tensor.Stack, train bool) (*mat.Dense, error) {
	start := time.Now()
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("gcn: features: %w", err)
	}
	if err := basis.Validate(); err != nil {
		return nil, fmt.Errorf("gcn: basis: %w", err)
	}
	n, f := x.Dims()
	if basis.Nodes() != n {
		return nil, fmt.Errorf("gcn: basis is %d×%d, features have %d rows: %w",
			basis.Nodes(), basis.Nodes(), n, tensor.ErrDimensionMismatch)
	}
	if _, err := l.Init(f, basis.Len()); err != nil {
		return nil, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	xd := nn.Dropout(l.s.Source, x, l.cfg.Dropout, train)
	props := make([]mat.Matrix, basis.Len())
	for k, b := range basis {
		props[k] = tensor.Mul(b, xd)
	}
	h, err := tensor.ConcatCols(props...)
	if err != nil {
		return nil, fmt.Errorf("gcn: %w", err)
	}
	out := tensor.Mul(h, l.kernel.Value)
	if l.bias != nil {
		if out, err = tensor.AddRowVector(out, l.bias.Value); err != nil {
			return nil, fmt.Errorf("gcn: %w", err)
		}
	}
	out = l.act.Apply(out)
	l.s.Observe(start)

	return out, nil
}
