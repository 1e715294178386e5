// SPDX-License-Identifier: MIT

package blocks

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/tensor"
)

// SoftmaxConfig describes a sampled-softmax head over Classes output classes.
type SoftmaxConfig struct {
	Classes            int            `yaml:"classes" validate:"gt=0"`
	Sampled            int            `yaml:"sampled" validate:"gt=0,ltefield=Classes"`
	Sampler            Sampler        `yaml:"sampler" validate:"omitempty,oneof=uniform log_uniform"`
	KeepAccidentalHits bool           `yaml:"keep_accidental_hits"`
	KernelInit         nn.Initializer `yaml:"kernel_init" validate:"initializer"`
	BiasInit           nn.Initializer `yaml:"bias_init" validate:"initializer"`
}

// SampledSoftmax approximates softmax cross-entropy over many classes by
// scoring the true class against Sampled negatives drawn once per Loss call.
// Logits are corrected by −log Q(c), Q being the expected count of c in the
// sample. A sampled class equal to a row's label (an accidental hit) is
// dropped from that row unless KeepAccidentalHits is set.
type SampledSoftmax struct {
	cfg    SoftmaxConfig
	dist   candidates
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet

	weights *nn.Parameter // Classes×D
	bias    *nn.Parameter // 1×Classes
}

// NewSampledSoftmax validates cfg.
func NewSampledSoftmax(cfg SoftmaxConfig, opts ...nn.Option) (*SampledSoftmax, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("blocks: sampled softmax: %w", err)
	}
	if cfg.Sampler == "" {
		cfg.Sampler = DefaultSampler
	}
	var dist candidates = uniformCandidates{classes: cfg.Classes}
	if cfg.Sampler == LogUniform {
		dist = newLogUniform(cfg.Classes)
	}
	s := nn.NewSettings("sampled_softmax", opts...)

	return &SampledSoftmax{cfg: cfg, dist: dist, s: s, params: nn.NewParamSet(s.Name)}, nil
}

func (l *SampledSoftmax) Name() string                { return l.s.Name }
func (l *SampledSoftmax) Params() *nn.ParamSet        { return l.params }
func (l *SampledSoftmax) Parameters() []*nn.Parameter { return l.params.Parameters() }

// Init allocates the class weights for inputs of width dim.
func (l *SampledSoftmax) Init(dim int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{dim}, func() error {
		if dim < 1 {
			return nn.Invalid("blocks: sampled softmax input width %d", dim)
		}
		w, err := l.cfg.KernelInit.Or(DefaultKernelInit).New(l.s.Source, l.cfg.Classes, dim)
		if err != nil {
			return err
		}
		if l.weights, err = l.params.Add("weights", w); err != nil {
			return err
		}
		b, err := l.cfg.BiasInit.Or(DefaultBiasInit).New(l.s.Source, 1, l.cfg.Classes)
		if err != nil {
			return err
		}
		if l.bias, err = l.params.Add("bias", b); err != nil {
			return err
		}
		l.s.Built(l.params, slog.Int("input", dim), slog.Int("classes", l.cfg.Classes), slog.Int("sampled", l.cfg.Sampled))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	return l.params, nil
}

func (l *SampledSoftmax) check(x *mat.Dense, labels []int) error {
	if err := tensor.ValidateNotNil(x); err != nil {
		return fmt.Errorf("blocks: sampled softmax input: %w", err)
	}
	rows, dim := x.Dims()
	if len(labels) != rows {
		return fmt.Errorf("blocks: %d labels for %d rows: %w", len(labels), rows, tensor.ErrDimensionMismatch)
	}
	for i, y := range labels {
		if y < 0 || y >= l.cfg.Classes {
			return fmt.Errorf("%w: row %d: label %d, classes %d", ErrInvalidLabel, i, y, l.cfg.Classes)
		}
	}
	_, err := l.Init(dim)

	return err
}

// Logits returns the full B×Classes logits x·Wᵀ + b.
func (l *SampledSoftmax) Logits(x *mat.Dense) (*mat.Dense, error) {
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("blocks: sampled softmax input: %w", err)
	}
	_, dim := x.Dims()
	if _, err := l.Init(dim); err != nil {
		return nil, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	return l.logits(x)
}

func (l *SampledSoftmax) logits(x *mat.Dense) (*mat.Dense, error) {
	out := tensor.Mul(x, l.weights.Value.T())
	out, err := tensor.AddRowVector(out, l.bias.Value)
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	return out, nil
}

// FullLoss is the exact mean softmax cross-entropy of x (B×D) against labels.
func (l *SampledSoftmax) FullLoss(x *mat.Dense, labels []int) (float64, error) {
	if err := l.check(x, labels); err != nil {
		return 0, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	z, err := l.logits(x)
	if err != nil {
		return 0, err
	}
	var total float64
	for b, y := range labels {
		row := z.RawRowView(b)
		total += floats.LogSumExp(row) - row[y]
	}

	return total / float64(len(labels)), nil
}

// Loss returns the mean sampled-softmax cross-entropy when train is set and
// the exact FullLoss otherwise.
func (l *SampledSoftmax) Loss(x *mat.Dense, labels []int, train bool) (float64, error) {
	if !train {
		return l.FullLoss(x, labels)
	}
	start := time.Now()
	if err := l.check(x, labels); err != nil {
		return 0, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	sampled, tries := sampleUnique(l.s.Source, l.dist, l.cfg.Sampled)
	logQ := make(map[int]float64, len(sampled)+len(labels))
	correction := func(c int) float64 {
		if v, ok := logQ[c]; ok {
			return v
		}
		v := math.Log(expectedCount(l.dist, c, tries))
		logQ[c] = v
		return v
	}

	w, bias := l.weights.Value, l.bias.Value.RawRowView(0)
	score := func(xr []float64, c int) float64 {
		return floats.Dot(xr, w.RawRowView(c)) + bias[c] - correction(c)
	}

	hits := 0
	var total float64
	row := make([]float64, 0, len(sampled)+1)
	for b, y := range labels {
		xr := x.RawRowView(b)
		truth := score(xr, y)
		row = append(row[:0], truth)
		for _, c := range sampled {
			if c == y && !l.cfg.KeepAccidentalHits {
				hits++
				continue
			}
			row = append(row, score(xr, c))
		}
		total += floats.LogSumExp(row) - truth
	}
	l.s.Degenerate(nn.DegenerateAccidentalHit, hits)
	l.s.Observe(start)

	return total / float64(len(labels)), nil
}
