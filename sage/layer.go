// SPDX-License-Identifier: MIT

package sage

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/rnn"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/tensor"
)

// Mode selects the aggregation function.
type Mode string

// Supported modes.
const (
	Mean Mode = "mean"
	Pool Mode = "pool"
	LSTM Mode = "lstm"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultMode       = Mean
	DefaultActivation = activation.ELU
	DefaultKernelInit = nn.GlorotUniform
	DefaultBiasInit   = nn.Zeros
)

// Config describes a neighbour aggregator. PoolUnits is the hidden width of the
// pool MLP and of the LSTM aggregator (default: the input width).
type Config struct {
	Units       int             `yaml:"units" validate:"gt=0"`
	Mode        Mode            `yaml:"mode" validate:"omitempty,oneof=mean pool lstm"`
	Concat      bool            `yaml:"concat"`
	Activation  activation.Kind `yaml:"activation" validate:"activation"`
	Dropout     float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	NoBias      bool            `yaml:"no_bias"`
	PoolUnits   int             `yaml:"pool_units" validate:"gte=0"`
	NoNormalize bool            `yaml:"no_normalize"`
	KernelInit  nn.Initializer  `yaml:"kernel_init" validate:"initializer"`
	BiasInit    nn.Initializer  `yaml:"bias_init" validate:"initializer"`
}

// Layer aggregates neighbour features. Safe for concurrent Forward calls.
type Layer struct {
	cfg    Config
	act    activation.Func
	s      nn.Settings
	lazy   nn.Lazy
	params *nn.ParamSet
	lstm   *rnn.LSTM
	hidden int

	selfW, neighW, bias *nn.Parameter
	poolW, poolB        *nn.Parameter
}

// New validates cfg and resolves defaults. No parameters are allocated.
func New(cfg Config, opts ...nn.Option) (*Layer, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}
	act, err := nn.Resolve(cfg.Activation, DefaultActivation)
	if err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	s := nn.NewSettings("sage", opts...)

	return &Layer{cfg: cfg, act: act, s: s, params: nn.NewParamSet(s.Name)}, nil
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.s.Name }

// Width returns the output width: 2U with Concat, U otherwise.
func (l *Layer) Width() int {
	if l.cfg.Concat {
		return 2 * l.cfg.Units
	}

	return l.cfg.Units
}

// Params returns the parameter set (linked to the LSTM aggregator's in lstm mode).
func (l *Layer) Params() *nn.ParamSet { return l.params }

// Parameters lists every parameter.
func (l *Layer) Parameters() []*nn.Parameter { return l.params.Parameters() }

// Init allocates parameters for input width features.
func (l *Layer) Init(features int) (*nn.ParamSet, error) {
	err := l.lazy.Ensure([]int{features}, func() error {
		if features < 1 {
			return nn.Invalid("sage: features=%d", features)
		}
		hidden := features
		if l.cfg.Mode != Mean && l.cfg.PoolUnits > 0 {
			hidden = l.cfg.PoolUnits
		}
		kinit := l.cfg.KernelInit.Or(DefaultKernelInit)
		binit := l.cfg.BiasInit.Or(DefaultBiasInit)
		var err error
		if l.selfW, err = l.add("self_kernel", kinit, features, l.cfg.Units); err != nil {
			return err
		}
		if l.neighW, err = l.add("neigh_kernel", kinit, hidden, l.cfg.Units); err != nil {
			return err
		}
		if !l.cfg.NoBias {
			if l.bias, err = l.add("bias", binit, 1, l.Width()); err != nil {
				return err
			}
		}
		switch l.cfg.Mode {
		case Pool:
			if l.poolW, err = l.add("pool_kernel", kinit, features, hidden); err != nil {
				return err
			}
			if l.poolB, err = l.add("pool_bias", binit, 1, hidden); err != nil {
				return err
			}
		case LSTM:
			cell, err := rnn.NewLSTM(rnn.Config{Units: hidden, Dropout: l.cfg.Dropout}, l.s.Sub("lstm")...)
			if err != nil {
				return err
			}
			if _, err := cell.Init(features); err != nil {
				return err
			}
			l.lstm = cell
			l.params.Link(cell.Params())
		}
		l.hidden = hidden
		l.s.Built(l.params, slog.String("mode", string(l.cfg.Mode)), slog.Int("features", features), slog.Int("units", l.cfg.Units))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}

	return l.params, nil
}

func (l *Layer) add(name string, init nn.Initializer, rows, cols int) (*nn.Parameter, error) {
	v, err := init.New(l.s.Source, rows, cols)
	if err != nil {
		return nil, err
	}

	return l.params.Add(name, v)
}

// Forward aggregates over a dense adjacency (A[i][j] ≠ 0 ⇔ j→i).
func (l *Layer) Forward(x, adj *mat.Dense, train bool) (*mat.Dense, error) {
	start := time.Now()
	n, err := tensor.ValidateGraphInput(x, adj)
	if err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}
	edges, err := snapshot.EdgesFromDense(adj)
	if err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}

	return l.forward(start, x, snapshot.Neighbors(n, edges), train)
}

// ForwardEdges aggregates over an edge list; endpoints must lie in [0, rows(x)).
func (l *Layer) ForwardEdges(x *mat.Dense, edges []snapshot.Edge, train bool) (*mat.Dense, error) {
	start := time.Now()
	if err := tensor.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("sage: features: %w", err)
	}
	n, _ := x.Dims()
	if err := snapshot.ValidateEdges(n, edges); err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}

	return l.forward(start, x, snapshot.Neighbors(n, edges), train)
}

func (l *Layer) forward(start time.Time, x *mat.Dense, nbrs [][]int, train bool) (*mat.Dense, error) {
	_, f := x.Dims()
	if _, err := l.Init(f); err != nil {
		return nil, err
	}

	l.params.RLock()
	defer l.params.RUnlock()

	xSelf := nn.Dropout(l.s.Source, x, l.cfg.Dropout, train)
	xNeigh := nn.Dropout(l.s.Source, x, l.cfg.Dropout, train)

	var (
		agg *mat.Dense
		err error
	)
	switch l.cfg.Mode {
	case Pool:
		agg = l.aggregatePool(xNeigh, nbrs)
	case LSTM:
		agg, err = l.aggregateLSTM(xNeigh, nbrs, train)
	default:
		agg = aggregateMean(xNeigh, nbrs)
	}
	if err != nil {
		return nil, fmt.Errorf("sage: %w", err)
	}
	empty := 0
	for _, nb := range nbrs {
		if len(nb) == 0 {
			empty++
		}
	}
	l.s.Degenerate(nn.DegenerateEmptyNeighborhood, empty)

	fromSelf := tensor.Mul(xSelf, l.selfW.Value)
	fromNeigh := tensor.Mul(agg, l.neighW.Value)
	var out *mat.Dense
	if l.cfg.Concat {
		if out, err = tensor.ConcatCols(fromSelf, fromNeigh); err != nil {
			return nil, fmt.Errorf("sage: %w", err)
		}
	} else {
		out = tensor.Add(fromSelf, fromNeigh)
	}
	if l.bias != nil {
		if out, err = tensor.AddRowVector(out, l.bias.Value); err != nil {
			return nil, fmt.Errorf("sage: %w", err)
		}
	}
	out = l.act.Apply(out)
	if !l.cfg.NoNormalize {
		var zero int
		out, zero = tensor.NormalizeRowsL2(out)
		l.s.Degenerate(nn.DegenerateZeroNormRow, zero)
	}
	l.s.Observe(start)

	return out, nil
}

func aggregateMean(x *mat.Dense, nbrs [][]int) *mat.Dense {
	_, f := x.Dims()
	out := mat.NewDense(len(nbrs), f, nil)
	for i, nb := range nbrs {
		if len(nb) == 0 {
			continue
		}
		dst := out.RawRowView(i)
		for _, j := range nb {
			floats.Add(dst, x.RawRowView(j))
		}
		floats.Scale(1/float64(len(nb)), dst)
	}

	return out
}

func (l *Layer) aggregatePool(x *mat.Dense, nbrs [][]int) *mat.Dense {
	hidden := tensor.Mul(x, l.poolW.Value)
	addRow(hidden, l.poolB.Value.RawRowView(0))
	hidden.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, hidden)

	out := mat.NewDense(len(nbrs), l.hidden, nil)
	for i, nb := range nbrs {
		if len(nb) == 0 {
			continue
		}
		dst := out.RawRowView(i)
		copy(dst, hidden.RawRowView(nb[0]))
		for _, j := range nb[1:] {
			row := hidden.RawRowView(j)
			for k, v := range row {
				if v > dst[k] {
					dst[k] = v
				}
			}
		}
	}

	return out
}

func (l *Layer) aggregateLSTM(x *mat.Dense, nbrs [][]int, train bool) (*mat.Dense, error) {
	_, f := x.Dims()
	out := mat.NewDense(len(nbrs), l.hidden, nil)
	for i, nb := range nbrs {
		if len(nb) == 0 {
			continue
		}
		seq := make([]*mat.Dense, len(nb))
		for t, j := range nb {
			seq[t] = mat.NewDense(1, f, x.RawRowView(j))
		}
		outs, _, err := rnn.Run(l.lstm, seq, train)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		copy(out.RawRowView(i), outs[len(outs)-1].RawRowView(0))
	}

	return out, nil
}

func addRow(m *mat.Dense, b []float64) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		floats.Add(m.RawRowView(i), b)
	}
}
