// SPDX-License-Identifier: MIT

package graphrnn

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/gat"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/operator"
	"github.com/katalvlaran/graphnn/rnn"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/tensor"
)

// Mode selects the variant.
type Mode string

// Supported modes.
const (
	Shared  Mode = "shared"
	PerGate Mode = "per_gate"
)

// DefaultMode is used when Config.Mode is empty.
const DefaultMode = Shared

// Config describes a graph-recurrent cell. The embedded rnn.Config sets the
// state width (Units), activations and dropout. Operator.Units defaults to
// Units; in per_gate mode it is forced to Units with linear activation.
type Config struct {
	rnn.Config `yaml:",inline"`
	Operator   operator.Config `yaml:"operator"`
	Mode       Mode            `yaml:"mode" validate:"omitempty,oneof=shared per_gate"`
}

// Cell is a graph-recurrent cell. Safe for concurrent Step calls.
type Cell struct {
	mode   Mode
	cfg    Config
	rec    activation.Func
	s      nn.Settings
	params *nn.ParamSet

	op  operator.Operator
	gru *rnn.GRU

	wz, wr, wh operator.Operator
	uz, ur, uh operator.Operator
}

// New validates cfg and builds the operators. Parameters are allocated lazily.
func New(cfg Config, opts ...nn.Option) (*Cell, error) {
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	if cfg.Operator.Units == 0 {
		cfg.Operator.Units = cfg.Units
	}
	if cfg.Mode == PerGate {
		cfg.Operator.Units = cfg.Units
		cfg.Operator.Activation = activation.Linear
		cfg.Operator.Combine = gat.Mean
		cfg.Operator.Concat = false
	}
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}
	rec, err := nn.Resolve(cfg.RecurrentActivation, rnn.DefaultRecurrentActivation)
	if err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}
	s := nn.NewSettings("graphrnn", opts...)
	c := &Cell{mode: cfg.Mode, cfg: cfg, rec: rec, s: s, params: nn.NewParamSet(s.Name)}

	if cfg.Mode == Shared {
		if c.op, err = operator.New(cfg.Operator, s.Sub("op")...); err != nil {
			return nil, err
		}
		if c.gru, err = rnn.NewGRU(cfg.Config, s.Sub("gru")...); err != nil {
			return nil, err
		}
		c.params.Link(c.op.Params(), c.gru.Params())

		return c, nil
	}

	for _, slot := range []struct {
		name string
		dst  *operator.Operator
	}{
		{"wz", &c.wz}, {"uz", &c.uz}, {"wr", &c.wr}, {"ur", &c.ur}, {"wh", &c.wh}, {"uh", &c.uh},
	} {
		op, err := operator.New(cfg.Operator, s.Sub(slot.name)...)
		if err != nil {
			return nil, err
		}
		*slot.dst = op
		c.params.Link(op.Params())
	}

	return c, nil
}

// Name returns the cell name.
func (c *Cell) Name() string { return c.s.Name }

// Mode returns the resolved variant.
func (c *Cell) Mode() Mode { return c.mode }

// Units returns the state width U.
func (c *Cell) Units() int { return c.cfg.Units }

// Params returns the set linking every operator's (and the GRU's) parameters.
func (c *Cell) Params() *nn.ParamSet { return c.params }

// Parameters lists every parameter.
func (c *Cell) Parameters() []*nn.Parameter { return c.params.Parameters() }

// InitialState returns the N×U zero state.
func (c *Cell) InitialState(nodes int) *mat.Dense { return tensor.Zeros(nodes, c.cfg.Units) }

// Step advances the state h (N×U) with one snapshot and returns the new state.
func (c *Cell) Step(snap snapshot.Snapshot, h *mat.Dense, train bool) (*mat.Dense, error) {
	start := time.Now()
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}
	if err := tensor.ValidateShape(h, snap.Nodes(), c.cfg.Units, "state"); err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}

	c.params.RLock()
	defer c.params.RUnlock()

	var (
		next *mat.Dense
		err  error
	)
	if c.mode == Shared {
		next, err = c.stepShared(snap, h, train)
	} else {
		next, err = c.stepPerGate(snap, h, train)
	}
	if err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}
	c.s.Observe(start)

	return next, nil
}

// StepPacked is Step with the snapshot packed as [X ∥ A] (N×(F+N)).
func (c *Cell) StepPacked(input, h *mat.Dense, train bool) (*mat.Dense, error) {
	snap, err := Unpack(input)
	if err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}

	return c.Step(snap, h, train)
}

// Unpack splits an N×(F+N) matrix [X ∥ A] into a snapshot; F must be ≥ 1.
func Unpack(input *mat.Dense) (snapshot.Snapshot, error) {
	if err := tensor.ValidateNotNil(input); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("packed input: %w", err)
	}
	n, cols := input.Dims()
	if cols <= n {
		return snapshot.Snapshot{}, fmt.Errorf("packed input %d×%d has no feature columns: %w", n, cols, tensor.ErrDimensionMismatch)
	}
	parts, err := tensor.SplitCols(input, cols-n, n)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	return snapshot.Snapshot{Features: parts[0], Adjacency: parts[1]}, nil
}

func (c *Cell) stepShared(snap snapshot.Snapshot, h *mat.Dense, train bool) (*mat.Dense, error) {
	e, err := c.op.Apply(snap.Features, snap.Adjacency, train)
	if err != nil {
		return nil, err
	}
	_, next, err := c.gru.Step(e, h, train)

	return next, err
}

func (c *Cell) stepPerGate(snap snapshot.Snapshot, h *mat.Dense, train bool) (*mat.Dense, error) {
	// the gate operators share one Config, so one prepared graph serves all six
	g, err := operator.Prepare(c.wz, snap.Adjacency)
	if err != nil {
		return nil, err
	}
	xd := nn.Dropout(c.s.Source, snap.Features, c.cfg.Dropout, train)
	hd := nn.Dropout(c.s.Source, h, c.cfg.RecurrentDropout, train)

	var ez, er, eh *mat.Dense
	var gx errgroup.Group
	gx.Go(func() (err error) { ez, err = operator.ApplyGraph(c.wz, xd, g, train); return })
	gx.Go(func() (err error) { er, err = operator.ApplyGraph(c.wr, xd, g, train); return })
	gx.Go(func() (err error) { eh, err = operator.ApplyGraph(c.wh, xd, g, train); return })
	if err := gx.Wait(); err != nil {
		return nil, err
	}

	var sz, sr *mat.Dense
	var gh errgroup.Group
	gh.Go(func() (err error) { sz, err = operator.ApplyGraph(c.uz, hd, g, train); return })
	gh.Go(func() (err error) { sr, err = operator.ApplyGraph(c.ur, hd, g, train); return })
	if err := gh.Wait(); err != nil {
		return nil, err
	}

	z := c.gate(tensor.Add(ez, sz), train)
	r := c.gate(tensor.Add(er, sr), train)
	hr, err := tensor.Hadamard(hd, r)
	if err != nil {
		return nil, err
	}
	sh, err := operator.ApplyGraph(c.uh, hr, g, train)
	if err != nil {
		return nil, err
	}
	cand := c.gate(tensor.Add(eh, sh), train)

	return rnn.Interpolate(h, z, cand), nil
}

func (c *Cell) gate(pre *mat.Dense, train bool) *mat.Dense {
	return nn.Dropout(c.s.Source, c.rec.Apply(pre), c.cfg.RecurrentDropout, train)
}

// Run unrolls cell over seq from the zero state and returns the trajectory.
func Run(cell *Cell, seq snapshot.Sequence, train bool) ([]*mat.Dense, error) {
	n, err := seq.Validate()
	if err != nil {
		return nil, fmt.Errorf("graphrnn: %w", err)
	}
	h := cell.InitialState(n)
	traj := make([]*mat.Dense, len(seq))
	for t, snap := range seq {
		if h, err = cell.Step(snap, h, train); err != nil {
			return nil, fmt.Errorf("graphrnn: step %d: %w", t, err)
		}
		traj[t] = h
	}

	return traj, nil
}
