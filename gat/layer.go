// SPDX-License-Identifier: MIT

package gat

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// Combine selects how head outputs are merged.
type Combine string

// Supported combinations.
const (
	Concat Combine = "concat"
	Mean   Combine = "mean"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultCombine       = Mean
	DefaultActivation    = activation.ELU
	DefaultLeakySlope    = 0.2
	DefaultMaskValue     = -1e9
	DefaultKernelInit    = nn.GlorotUniform
	DefaultAttentionInit = nn.GlorotUniform
	DefaultBiasInit      = nn.Zeros
)

// Config describes a graph attention layer.
type Config struct {
	Units         int             `yaml:"units" validate:"gt=0"`
	Heads         int             `yaml:"heads" validate:"gte=1"`
	Combine       Combine         `yaml:"combine" validate:"omitempty,oneof=concat mean"`
	Activation    activation.Kind `yaml:"activation" validate:"activation"`
	Dropout       float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	LeakySlope    float64         `yaml:"leaky_slope" validate:"gte=0"`
	MaskValue     float64         `yaml:"mask_value" validate:"lte=0"`
	NoBias        bool            `yaml:"no_bias"`
	KernelInit    nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	AttentionInit nn.Initializer  `yaml:"attention_init" validate:"initializer"`
	BiasInit      nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Result carries the layer output and each head's attention matrix (N×N,
// taken before dropout; rows sum to 1 except isolated rows, which are 0).
type Result struct {
	Output    *mat.Dense
	Attention []*mat.Dense
}

type head struct {
	kernel, attnSelf, attnNeigh, bias *nn.Parameter
}

// Layer is a multi-head graph attention layer. Safe for concurrent Forward calls.
type Layer struct {
	cfg    Config
	act    activation.Func
	leaky  activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet
	heads  []head
}

// New validates cfg and resolves defaults. No parameters are allocated.
func New(cfg Config, opts ...nn.Option) (*Layer, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("gat: %w", err)
	}
	act, err := nn.Resolve(cfg.Activation, DefaultActivation)
	if err != nil {
		return nil, fmt.Errorf("gat: %w", err)
	}
	if cfg.Combine == "" {
		cfg.Combine = DefaultCombine
	}
	if cfg.LeakySlope == 0 {
		cfg.LeakySlope = DefaultLeakySlope
	}
	if cfg.MaskValue == 0 {
		cfg.MaskValue = DefaultMaskValue
	}
	s := nn.NewSettings("gat", opts...)

	return &Layer{
		cfg:    cfg,
		act:    act,
		leaky:  activation.Leaky(cfg.LeakySlope),
		s:      s,
		params: nn.NewParamSet(s.Name),
	}, nil
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.s.Name }

// Width returns the output width: Units·Heads for concat, Units for mean.
func (l *Layer) Width() int {
	if l.cfg.Combine == Concat {
		return l.cfg.Units * l.cfg.Heads
	}

	return l.cfg.Units
}

// Params returns the parameter set.
func (l *Layer) Params() *nn.ParamSet { return l.params }

// Parameters lists every head's parameters in head order.
func (l *Layer) Parameters() []*nn.Parameter { return l.params.Parameters() }

// Init allocates per-head parameters for input width features.
func (l *Layer) Init(features int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{features}, func() error {
		if features < 1 {
			return nn.Invalid("gat: features=%d", features)
		}
		heads := make([]head, l.cfg.Heads)
		for h := range heads {
			var err error
			if heads[h], err = l.newHead(h, features); err != nil {
				return err
			}
		}
		l.heads = heads
		l.s.Built(l.params, slog.Int("features", features), slog.Int("heads", l.cfg.Heads), slog.Int("units", l.cfg.Units))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gat: %w", err)
	}

	return l.params, nil
}

func (l *Layer) newHead(h, features int) (head, error) {
	var hd head
	add := func(dst **nn.Parameter, name string, init nn.Initializer, rows, cols int) error {
		v, err := init.New(l.s.Source, rows, cols)
		if err != nil {
			return err
		}
		*dst, err = l.params.Add(fmt.Sprintf("head%d/%s", h, name), v)

		return err
	}
	units := l.cfg.Units
	if err := add(&hd.kernel, "kernel", l.cfg.KernelInit.Or(DefaultKernelInit), features, units); err != nil {
		return hd, err
	}
	if err := add(&hd.attnSelf, "attn_self", l.cfg.AttentionInit.Or(DefaultAttentionInit), units, 1); err != nil {
		return hd, err
	}
	if err := add(&hd.attnNeigh, "attn_neigh", l.cfg.AttentionInit.Or(DefaultAttentionInit), units, 1); err != nil {
		return hd, err
	}
	if !l.cfg.NoBias {
		if err := add(&hd.bias, "bias", l.cfg.BiasInit.Or(DefaultBiasInit), 1, units); err != nil {
			return hd, err
		}
	}

	return hd, nil
}

// Forward activates each head's output and then combines the heads.
func (l *Layer) Forward(x, adj *mat.Dense, train bool) (*mat.Dense, error) {
	res, err := l.ForwardDetailed(x, adj, train)
	if err != nil {
		return nil, err
	}

	return res.Output, nil
}

// ForwardDetailed is Forward plus the per-head attention matrices.
func (l *Layer) ForwardDetailed(x, adj *mat.Dense, train bool) (Result, error) {
	start := time.Now()
	n, err := tensor.ValidateGraphInput(x, adj)
	if err != nil {
		return Result{}, fmt.Errorf("gat: %w", err)
	}
	_, f := x.Dims()
	if _, err := l.Init(f); err != nil {
		return Result{}, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	isolated := isolatedRows(adj)
	mask := maskOf(adj, l.cfg.MaskValue)
	srcs := l.s.Source.Children(len(l.heads))
	outs := make([]*mat.Dense, len(l.heads))
	attn := make([]*mat.Dense, len(l.heads))

	var g errgroup.Group
	for h := range l.heads {
		g.Go(func() error {
			var err error
			outs[h], attn[h], err = l.runHead(l.heads[h], srcs[h], x, mask, isolated, train)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("gat: %w", err)
	}

	combined, err := l.combine(outs, n)
	if err != nil {
		return Result{}, fmt.Errorf("gat: %w", err)
	}
	l.s.Degenerate(nn.DegenerateIsolatedNode, countTrue(isolated))
	l.s.Observe(start)

	return Result{Output: combined, Attention: attn}, nil
}

func (l *Layer) runHead(hd head, src *nn.Source, x, mask *mat.Dense, isolated []bool, train bool) (*mat.Dense, *mat.Dense, error) {
	feats := tensor.Mul(x, hd.kernel.Value)
	self := tensor.Mul(feats, hd.attnSelf.Value).RawMatrix().Data
	neigh := tensor.Mul(feats, hd.attnNeigh.Value).RawMatrix().Data

	logits := l.leaky.Apply(tensor.OuterSum(self, neigh))
	logits.Add(logits, mask)
	alpha := tensor.RowSoftmax(logits)
	for i, iso := range isolated {
		if iso {
			row := alpha.RawRowView(i)
			for j := range row {
				row[j] = 0
			}
		}
	}

	alphaD := nn.Dropout(src, alpha, l.cfg.Dropout, train)
	featsD := nn.Dropout(src, feats, l.cfg.Dropout, train)
	out := tensor.Mul(alphaD, featsD)
	if hd.bias != nil {
		var err error
		if out, err = tensor.AddRowVector(out, hd.bias.Value); err != nil {
			return nil, nil, err
		}
	}

	return l.act.Apply(out), alpha, nil
}

func (l *Layer) combine(outs []*mat.Dense, n int) (*mat.Dense, error) {
	if l.cfg.Combine == Concat {
		ms := make([]mat.Matrix, len(outs))
		for i, o := range outs {
			ms[i] = o
		}

		return tensor.ConcatCols(ms...)
	}
	sum := mat.NewDense(n, l.cfg.Units, nil)
	for _, o := range outs {
		sum.Add(sum, o)
	}
	sum.Scale(1/float64(len(outs)), sum)

	return sum, nil
}

// maskOf returns M with M_ij = value where A_ij == 0, else 0.
func maskOf(adj *mat.Dense, value float64) *mat.Dense {
	var m mat.Dense
	m.Apply(func(_, _ int, v float64) float64 {
		if v == 0 {
			return value
		}
		return 0
	}, adj)

	return &m
}

func isolatedRows(adj *mat.Dense) []bool {
	n, _ := adj.Dims()
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = true
		for _, v := range adj.RawRowView(i) {
			if v != 0 {
				out[i] = false
				break
			}
		}
	}

	return out
}

func countTrue(bs []bool) int {
	c := 0
	for _, b := range bs {
		if b {
			c++
		}
	}

	return c
}
