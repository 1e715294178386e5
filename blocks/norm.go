// SPDX-License-Identifier: MIT

package blocks

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// DefaultEpsilon is the LayerNorm variance floor.
const DefaultEpsilon = 1e-3

// LayerNorm normalises each row to zero mean and unit variance, then applies
// the learned scale γ (ones) and shift β (zeros), both 1×D.
type LayerNorm struct {
	eps    float64
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet

	gamma *nn.Parameter
	beta  *nn.Parameter
}

// NewLayerNorm returns a layer norm with variance floor eps (0 means
// DefaultEpsilon). Negative or non-finite eps is a config error.
func NewLayerNorm(eps float64, opts ...nn.Option) (*LayerNorm, error) {
	if eps == 0 {
		eps = DefaultEpsilon
	}
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		return nil, nn.Invalid("blocks: layer norm epsilon %v", eps)
	}
	s := nn.NewSettings("layernorm", opts...)

	return &LayerNorm{eps: eps, s: s, params: nn.NewParamSet(s.Name)}, nil
}

func (n *LayerNorm) Name() string                { return n.s.Name }
func (n *LayerNorm) Params() *nn.ParamSet        { return n.params }
func (n *LayerNorm) Parameters() []*nn.Parameter { return n.params.Parameters() }

// Init allocates γ and β for rows of width dim.
func (n *LayerNorm) Init(dim int) (*nn.ParamSet, error) {
	err := n.lazy.Ensure([]int{dim}, func() error {
		if dim < 1 {
			return nn.Invalid("blocks: layer norm width %d", dim)
		}
		var err error
		if n.gamma, err = n.params.Add("gamma", tensor.RowVector(ones(dim))); err != nil {
			return err
		}
		if n.beta, err = n.params.Add("beta", tensor.Zeros(1, dim)); err != nil {
			return err
		}
		n.s.Built(n.params, slog.Int("width", dim))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	return n.params, nil
}

// Forward normalises every row of x.
func (n *LayerNorm) Forward(x *mat.Dense) (*mat.Dense, error) {
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("blocks: layer norm input: %w", err)
	}
	rows, dim := x.Dims()
	if _, err := n.Init(dim); err != nil {
		return nil, err
	}

	n.params.RLock()
	defer n.params.RUnlock()

	g, b := n.gamma.Value.RawRowView(0), n.beta.Value.RawRowView(0)
	out := mat.DenseCopyOf(x)
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		mean, variance := stat.PopMeanVariance(row, nil)
		inv := 1 / math.Sqrt(variance+n.eps)
		for j, v := range row {
			row[j] = (v-mean)*inv*g[j] + b[j]
		}
	}

	return out, nil
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}
