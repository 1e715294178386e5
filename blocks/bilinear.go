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

// BilinearConfig describes a bilinear scoring layer. Activation defaults to elu.
type BilinearConfig struct {
	Units      int             `yaml:"units" validate:"gt=0"`
	Activation activation.Kind `yaml:"activation" validate:"activation"`
	NoBias     bool            `yaml:"no_bias"`
	KernelInit nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	BiasInit   nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Bilinear scores pairs of row vectors: out[b,k] = act(a_b·K_k·c_bᵀ + bias_k).
// The I×J×K kernel is stored as an I×(J·K) matrix, K[i,j,k] at column j·K+k.
type Bilinear struct {
	cfg    BilinearConfig
	act    activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet

	kernel *nn.Parameter
	bias   *nn.Parameter
}

// NewBilinear validates cfg.
func NewBilinear(cfg BilinearConfig, opts ...nn.Option) (*Bilinear, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("blocks: bilinear: %w", err)
	}
	act, err := nn.Resolve(cfg.Activation, DefaultActivation)
	if err != nil {
		return nil, fmt.Errorf("blocks: bilinear: %w", err)
	}
	s := nn.NewSettings("bilinear", opts...)

	return &Bilinear{cfg: cfg, act: act, s: s, params: nn.NewParamSet(s.Name)}, nil
}

func (l *Bilinear) Name() string                { return l.s.Name }
func (l *Bilinear) Units() int                  { return l.cfg.Units }
func (l *Bilinear) Params() *nn.ParamSet        { return l.params }
func (l *Bilinear) Parameters() []*nn.Parameter { return l.params.Parameters() }

// Init allocates the kernel for left inputs of width left and right inputs of
// width right.
func (l *Bilinear) Init(left, right int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{left, right}, func() error {
		if left < 1 || right < 1 {
			return nn.Invalid("blocks: bilinear widths %d, %d", left, right)
		}
		w, err := l.cfg.KernelInit.Or(DefaultKernelInit).New(l.s.Source, left, right*l.cfg.Units)
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
		l.s.Built(l.params, slog.Int("left", left), slog.Int("right", right), slog.Int("units", l.cfg.Units))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	return l.params, nil
}

// Forward scores a (B×I) against c (B×J) row by row and returns B×Units.
func (l *Bilinear) Forward(a, c *mat.Dense) (*mat.Dense, error) {
	start := time.Now()
	if err := tensor.ValidateNotNil(a); err != nil {
		return nil, fmt.Errorf("blocks: bilinear left: %w", err)
	}
	rows, left := a.Dims()
	if err := tensor.ValidateRows(c, rows, "bilinear right"); err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	_, right := c.Dims()
	if _, err := l.Init(left, right); err != nil {
		return nil, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	k := l.cfg.Units
	t := tensor.Mul(a, l.kernel.Value) // B×(J·K)
	out := mat.NewDense(rows, k, nil)
	for b := 0; b < rows; b++ {
		tr, cr, dst := t.RawRowView(b), c.RawRowView(b), out.RawRowView(b)
		for j, cv := range cr {
			for u := 0; u < k; u++ {
				dst[u] += tr[j*k+u] * cv
			}
		}
	}
	if l.bias != nil {
		var err error
		if out, err = tensor.AddRowVector(out, l.bias.Value); err != nil {
			return nil, fmt.Errorf("blocks: %w", err)
		}
	}
	out = l.act.Apply(out)
	l.s.Observe(start)

	return out, nil
}
