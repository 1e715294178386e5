// SPDX-License-Identifier: MIT

package blocks

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// ResidualConfig describes a residual block. Units2 nil means the skip path is
// the input itself; a non-nil Units2 must be non-empty.
type ResidualConfig struct {
	Units1       []int           `yaml:"units1" validate:"min=1,dive,gt=0"`
	Units2       []int           `yaml:"units2" validate:"omitempty,dive,gt=0"`
	Activation   activation.Kind `yaml:"activation" validate:"activation"`
	Dropout      float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	NoProjection bool            `yaml:"no_projection"`
	KernelInit   nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	BiasInit     nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Residual computes dropout(norm(act(branch1(x) + skip(x)))), where skip is
// branch2 or the identity, followed by a linear projection when its width
// differs from branch1's.
type Residual struct {
	cfg    ResidualConfig
	act    activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet

	branch1 *Dense
	branch2 *Dense
	proj    *Linear
	norm    *LayerNorm
}

// NewResidual validates cfg and creates the branches.
func NewResidual(cfg ResidualConfig, opts ...nn.Option) (*Residual, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("blocks: residual: %w", err)
	}
	if cfg.Units2 != nil && len(cfg.Units2) == 0 {
		return nil, nn.Invalid("blocks: residual: units2 must be nil or non-empty")
	}
	act, err := nn.Resolve(cfg.Activation, DefaultActivation)
	if err != nil {
		return nil, fmt.Errorf("blocks: residual: %w", err)
	}
	s := nn.NewSettings("residual", opts...)
	r := &Residual{cfg: cfg, act: act, s: s, params: nn.NewParamSet(s.Name)}

	stack := func(units []int, name string) (*Dense, error) {
		return NewDense(DenseConfig{
			Units:      units,
			Activation: cfg.Activation,
			Dropout:    cfg.Dropout,
			KernelInit: cfg.KernelInit,
			BiasInit:   cfg.BiasInit,
		}, s.Sub(name)...)
	}
	if r.branch1, err = stack(cfg.Units1, "branch1"); err != nil {
		return nil, err
	}
	r.params.Link(r.branch1.Params())
	if cfg.Units2 != nil {
		if r.branch2, err = stack(cfg.Units2, "branch2"); err != nil {
			return nil, err
		}
		r.params.Link(r.branch2.Params())
	}
	if r.norm, err = NewLayerNorm(DefaultEpsilon, s.Sub("norm")...); err != nil {
		return nil, err
	}
	r.params.Link(r.norm.Params())

	return r, nil
}

func (r *Residual) Name() string                { return r.s.Name }
func (r *Residual) Params() *nn.ParamSet        { return r.params }
func (r *Residual) Parameters() []*nn.Parameter { return r.params.Parameters() }

// Width is the output width, the last entry of Units1.
func (r *Residual) Width() int { return r.branch1.Width() }

// Init fixes the input width and decides whether a projection is needed.
// A width mismatch with NoProjection set fails with nn.ErrInvalidConfig.
func (r *Residual) Init(in int) (*nn.ParamSet, error) {
	err := r.lazy.Ensure([]int{in}, func() error {
		skip := in
		if r.branch2 != nil {
			skip = r.branch2.Width()
		}
		if skip == r.Width() {
			r.s.Built(r.params, slog.Int("input", in), slog.Bool("projection", false))
			return nil
		}
		if r.cfg.NoProjection {
			return nn.Invalid("blocks: residual: skip width %d differs from branch width %d", skip, r.Width())
		}
		proj, err := NewLinear(LinearConfig{
			Units:      r.Width(),
			KernelInit: r.cfg.KernelInit,
			BiasInit:   r.cfg.BiasInit,
		}, r.s.Sub("projection")...)
		if err != nil {
			return err
		}
		if _, err := proj.Init(skip); err != nil {
			return err
		}
		r.proj = proj
		r.params.Link(proj.Params())
		r.s.Built(r.params, slog.Int("input", in), slog.Bool("projection", true))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.params, nil
}

// Forward maps x (B×F) to B×Width().
func (r *Residual) Forward(x *mat.Dense, train bool) (*mat.Dense, error) {
	start := time.Now()
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("blocks: residual input: %w", err)
	}
	_, in := x.Dims()
	if _, err := r.Init(in); err != nil {
		return nil, err
	}

	r.params.RLock()
	defer r.params.RUnlock()

	branch, err := r.branch1.Forward(x, train)
	if err != nil {
		return nil, err
	}
	skip := x
	if r.branch2 != nil {
		if skip, err = r.branch2.Forward(x, train); err != nil {
			return nil, err
		}
	}
	if r.proj != nil {
		if skip, err = r.proj.Forward(skip); err != nil {
			return nil, err
		}
	}
	out, err := r.norm.Forward(r.act.Apply(tensor.Add(branch, skip)))
	if err != nil {
		return nil, err
	}
	r.s.Observe(start)

	return nn.Dropout(r.s.Source, out, r.cfg.Dropout, train), nil
}
