// SPDX-License-Identifier: MIT

package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/activation"
	"github.com/katalvlaran/graphnn/gat"
	"github.com/katalvlaran/graphnn/gcn"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/sage"
	"github.com/katalvlaran/graphnn/spectral"
	"github.com/katalvlaran/graphnn/tensor"
)

// Kind names a concrete operator.
type Kind string

// Supported kinds.
const (
	GCN  Kind = "gcn"
	GAT  Kind = "gat"
	SAGE Kind = "sage"
)

// Operator is a graph operator with trainable parameters.
type Operator interface {
	Name() string
	Kind() Kind
	// Width is the output column count.
	Width() int
	// Apply maps (X, A) to embeddings; it builds lazily on first use.
	Apply(x, adj *mat.Dense, train bool) (*mat.Dense, error)
	Params() *nn.ParamSet
	Parameters() []*nn.Parameter
}

// Config selects and configures an operator. Fields outside the selected kind
// are ignored.
type Config struct {
	Kind       Kind            `yaml:"kind" validate:"required,oneof=gcn gat sage"`
	Units      int             `yaml:"units" validate:"gt=0"`
	Activation activation.Kind `yaml:"activation" validate:"activation"`
	Dropout    float64         `yaml:"dropout" validate:"gte=0,lt=1"`
	NoBias     bool            `yaml:"no_bias"`

	// gcn
	Filter spectral.Config `yaml:"filter"`

	// gat; Heads 0 means 1.
	Heads   int         `yaml:"heads" validate:"gte=0"`
	Combine gat.Combine `yaml:"combine" validate:"omitempty,oneof=concat mean"`

	// sage
	Aggregator  sage.Mode `yaml:"aggregator" validate:"omitempty,oneof=mean pool lstm"`
	Concat      bool      `yaml:"concat"`
	PoolUnits   int       `yaml:"pool_units" validate:"gte=0"`
	NoNormalize bool      `yaml:"no_normalize"`
}

// New builds the operator selected by cfg.Kind.
func New(cfg Config, opts ...nn.Option) (Operator, error) {
	if err := nn.Validate(cfg); err != nil {
		return nil, fmt.Errorf("operator: %w", err)
	}
	switch cfg.Kind {
	case GCN:
		return newGCN(cfg, opts)
	case GAT:
		heads := cfg.Heads
		if heads == 0 {
			heads = 1
		}
		l, err := gat.New(gat.Config{
			Units:      cfg.Units,
			Heads:      heads,
			Combine:    cfg.Combine,
			Activation: cfg.Activation,
			Dropout:    cfg.Dropout,
			NoBias:     cfg.NoBias,
		}, opts...)
		if err != nil {
			return nil, err
		}

		return &gatOp{l}, nil
	default:
		l, err := sage.New(sage.Config{
			Units:       cfg.Units,
			Mode:        cfg.Aggregator,
			Concat:      cfg.Concat,
			Activation:  cfg.Activation,
			Dropout:     cfg.Dropout,
			NoBias:      cfg.NoBias,
			PoolUnits:   cfg.PoolUnits,
			NoNormalize: cfg.NoNormalize,
		}, opts...)
		if err != nil {
			return nil, err
		}

		return &sageOp{l}, nil
	}
}

type gcnOp struct {
	filter *spectral.Filter
	layer  *gcn.Layer
}

func newGCN(cfg Config, opts []nn.Option) (*gcnOp, error) {
	layer, err := gcn.New(gcn.Config{
		Units:      cfg.Units,
		Activation: cfg.Activation,
		NoBias:     cfg.NoBias,
		Dropout:    cfg.Dropout,
	}, opts...)
	if err != nil {
		return nil, err
	}
	filter, err := spectral.New(cfg.Filter, append(opts, nn.WithName(layer.Name()+"/filter"))...)
	if err != nil {
		return nil, err
	}

	return &gcnOp{filter: filter, layer: layer}, nil
}

func (o *gcnOp) Name() string                { return o.layer.Name() }
func (o *gcnOp) Kind() Kind                  { return GCN }
func (o *gcnOp) Width() int                  { return o.layer.Units() }
func (o *gcnOp) Params() *nn.ParamSet        { return o.layer.Params() }
func (o *gcnOp) Parameters() []*nn.Parameter { return o.layer.Parameters() }

func (o *gcnOp) Apply(x, adj *mat.Dense, train bool) (*mat.Dense, error) {
	basis, err := o.filter.Forward(adj)
	if err != nil {
		return nil, err
	}

	return o.layer.Forward(x, basis, train)
}

// Graph is an adjacency together with the support an operator derives from
// it. Operators built from the same Config may share one Graph.
type Graph struct {
	Adjacency *mat.Dense
	basis     tensor.Stack
}

// Prepare derives op's adjacency support once. For gcn this is the spectral
// basis; other kinds keep only the adjacency.
func Prepare(op Operator, adj *mat.Dense) (*Graph, error) {
	g := &Graph{Adjacency: adj}
	if o, ok := op.(*gcnOp); ok {
		basis, err := o.filter.Forward(adj)
		if err != nil {
			return nil, err
		}
		g.basis = basis
	}

	return g, nil
}

// ApplyGraph is op.Apply on a prepared graph.
func ApplyGraph(op Operator, x *mat.Dense, g *Graph, train bool) (*mat.Dense, error) {
	if o, ok := op.(*gcnOp); ok && g.basis != nil {
		return o.layer.Forward(x, g.basis, train)
	}

	return op.Apply(x, g.Adjacency, train)
}

type gatOp struct{ *gat.Layer }

func (o *gatOp) Kind() Kind { return GAT }

func (o *gatOp) Apply(x, adj *mat.Dense, train bool) (*mat.Dense, error) {
	return o.Forward(x, adj, train)
}

type sageOp struct{ *sage.Layer }

func (o *sageOp) Kind() Kind { return SAGE }

func (o *sageOp) Apply(x, adj *mat.Dense, train bool) (*mat.Dense, error) {
	return o.Forward(x, adj, train)
}
