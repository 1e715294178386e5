// SPDX-License-Identifier: MIT

package blocks

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// DenseConfig describes a feed-forward stack; one stage per Units entry.
type DenseConfig struct {
	Units      []int           `yaml:"units" validate:"min=1,dive,gt=0"`
	Activation activation.Kind `yaml:"activation" validate:"activation"`
	Dropout    float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	KernelInit nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	BiasInit   nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Dense runs dropout → Linear(act) → LayerNorm for each configured width.
type Dense struct {
	cfg    DenseConfig
	s      nn.Settings
	params *nn.ParamSet

	linears []*Linear
	norms   []*LayerNorm
}

// NewDense validates cfg and creates the stages; parameters stay lazy.
func NewDense(cfg DenseConfig, opts ...nn.Option) (*Dense, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("blocks: dense: %w", err)
	}
	if cfg.Activation == "" {
		cfg.Activation = DefaultActivation
	}
	s := nn.NewSettings("dense", opts...)
	d := &Dense{cfg: cfg, s: s, params: nn.NewParamSet(s.Name)}
	for i, u := range cfg.Units {
		lin, err := NewLinear(LinearConfig{
			Units:      u,
			Activation: cfg.Activation,
			KernelInit: cfg.KernelInit,
			BiasInit:   cfg.BiasInit,
		}, s.Sub(fmt.Sprintf("linear%d", i))...)
		if err != nil {
			return nil, err
		}
		norm, err := NewLayerNorm(DefaultEpsilon, s.Sub(fmt.Sprintf("norm%d", i))...)
		if err != nil {
			return nil, err
		}
		d.linears = append(d.linears, lin)
		d.norms = append(d.norms, norm)
		d.params.Link(lin.Params(), norm.Params())
	}

	return d, nil
}

func (d *Dense) Name() string                { return d.s.Name }
func (d *Dense) Params() *nn.ParamSet        { return d.params }
func (d *Dense) Parameters() []*nn.Parameter { return d.params.Parameters() }

// Width is the last configured width.
func (d *Dense) Width() int { return d.cfg.Units[len(d.cfg.Units)-1] }

// Forward runs every stage on x (B×F) and returns B×Width().
func (d *Dense) Forward(x *mat.Dense, train bool) (*mat.Dense, error) {
	start := time.Now()
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("blocks: dense input: %w", err)
	}

	d.params.RLock()
	defer d.params.RUnlock()

	out := x
	for i := range d.linears {
		h, err := d.linears[i].Forward(nn.Dropout(d.s.Source, out, d.cfg.Dropout, train))
		if err != nil {
			return nil, err
		}
		if out, err = d.norms[i].Forward(h); err != nil {
			return nil, err
		}
	}
	d.s.Observe(start)

	return out, nil
}
