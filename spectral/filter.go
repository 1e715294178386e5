// SPDX-License-Identifier: MIT

package spectral

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// Mode selects the filter family.
type Mode string

// Supported modes.
const (
	LocalPool Mode = "localpool"
	Chebyshev Mode = "chebyshev"
)

// Defaults.
const (
	// DefaultMode is used when Config.Mode is empty.
	DefaultMode = LocalPool

	// DefaultLocalPoolSupport and DefaultChebyshevSupport apply when Support is 0.
	DefaultLocalPoolSupport = 1
	DefaultChebyshevSupport = 2

	// DefaultEigenFloor is the smallest λ_max accepted before falling back to 2.
	DefaultEigenFloor = 1e-9

	fallbackEigen = 2.0
)

// Config describes a spectral filter.
type Config struct {
	Mode      Mode `yaml:"mode" validate:"omitempty,oneof=localpool chebyshev"`
	Support   int  `yaml:"support" validate:"gte=0"`
	SelfLoops bool `yaml:"self_loops"`
}

// Filter builds support bases from adjacency matrices. It holds no parameters
// and is safe for concurrent use.
type Filter struct {
	mode      Mode
	support   int
	selfLoops bool
	s         nn.Settings
}

// New validates cfg and resolves defaults.
// Errors: nn.ErrInvalidConfig for an unknown mode, localpool support < 1 or
// chebyshev support < 2.
func New(cfg Config, opts ...nn.Option) (*Filter, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("spectral: %w", err)
	}
	f := &Filter{mode: cfg.Mode, support: cfg.Support, selfLoops: cfg.SelfLoops}
	if f.mode == "" {
		f.mode = DefaultMode
	}
	switch f.mode {
	case LocalPool:
		if f.support == 0 {
			f.support = DefaultLocalPoolSupport
		}
		if f.support < 1 {
			return nil, nn.Invalid("spectral: localpool support %d < 1", f.support)
		}
	case Chebyshev:
		if f.support == 0 {
			f.support = DefaultChebyshevSupport
		}
		if f.support < 2 {
			return nil, nn.Invalid("spectral: chebyshev support %d < 2", f.support)
		}
	}
	f.s = nn.NewSettings("spectral", opts...)

	return f, nil
}

// Mode returns the resolved mode.
func (f *Filter) Mode() Mode { return f.mode }

// Bases returns how many matrices Forward produces: 1 for localpool,
// support+1 for chebyshev.
func (f *Filter) Bases() int {
	if f.mode == Chebyshev {
		return f.support + 1
	}

	return 1
}

// Forward computes the support basis for adj.
func (f *Filter) Forward(adj mat.Matrix) (tensor.Stack, error) {
	start := time.Now()
	if err := tensor.ValidateSquare(adj); err != nil {
		return nil, fmt.Errorf("spectral: adjacency: %w", err)
	}
	if err := validateWeights(adj); err != nil {
		return nil, err
	}
	a := mat.DenseCopyOf(adj)
	n, _ := a.Dims()
	if f.selfLoops {
		for i := 0; i < n; i++ {
			a.Set(i, i, a.At(i, i)+1)
		}
	}

	norm, zero := normalize(a)
	f.s.Degenerate(nn.DegenerateZeroDegree, zero)

	var out tensor.Stack
	if f.mode == LocalPool {
		out = tensor.Stack{norm}
	} else {
		var err error
		if out, err = f.chebyshev(norm); err != nil {
			return nil, err
		}
	}
	f.s.Observe(start)

	return out, nil
}

// normalize returns D^{-1/2}·Aᵀ·D^{-1/2} and the number of zero-degree nodes.
func normalize(a *mat.Dense) (*mat.Dense, int) {
	n, _ := a.Dims()
	deg := tensor.RowSums(a)
	inv := make([]float64, n)
	zero := 0
	for i, d := range deg {
		if d == 0 {
			zero++
			continue
		}
		inv[i] = 1 / math.Sqrt(d)
	}
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		row := out.RawRowView(i)
		for j := 0; j < n; j++ {
			row[j] = inv[i] * a.At(j, i) * inv[j]
		}
	}

	return out, zero
}

func (f *Filter) chebyshev(norm *mat.Dense) (tensor.Stack, error) {
	n, _ := norm.Dims()
	id := tensor.Identity(n)
	lap := tensor.Sub(id, norm)

	sym, err := tensor.Symmetrize(lap)
	if err != nil {
		return nil, fmt.Errorf("spectral: %w", err)
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, false); !ok {
		return nil, fmt.Errorf("spectral: %d×%d laplacian: %w", n, n, ErrEigenFailed)
	}
	vals := es.Values(nil)
	lmax := math.Max(math.Abs(vals[0]), math.Abs(vals[len(vals)-1]))
	if lmax < DefaultEigenFloor {
		f.s.Logger.Debug("eigenvalue floor applied", slog.Float64("lambda_max", lmax))
		f.s.Degenerate(nn.DegenerateSmallEigenvalue, 1)
		lmax = fallbackEigen
	}
	scaled := tensor.Sub(tensor.Scale(2/lmax, lap), id)

	out := make(tensor.Stack, 0, f.support+1)
	out = append(out, id, scaled)
	for k := 2; k <= f.support; k++ {
		next := tensor.Sub(tensor.Scale(2, tensor.Mul(scaled, out[k-1])), out[k-2])
		out = append(out, next)
	}

	return out, nil
}

func validateWeights(adj mat.Matrix) error {
	n, _ := adj.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := adj.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("spectral: A[%d][%d]=%v: %w", i, j, v, ErrInvalidWeight)
			}
		}
	}

	return nil
}
