// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/graphnn/blocks"
	"github.com/katalvlaran/graphnn/graphrnn"
	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/operator"
	"github.com/katalvlaran/graphnn/rnn"
)

// File is a decoded model description.
type File struct {
	Seed           *uint64          `yaml:"seed"`
	Operators      []OperatorEntry  `yaml:"operators"`
	Recurrent      []RecurrentEntry `yaml:"recurrent"`
	GraphRecurrent []GraphRNNEntry  `yaml:"graph_recurrent"`
	Dense          []DenseEntry     `yaml:"dense"`
	Residual       []ResidualEntry  `yaml:"residual"`
	Bilinear       []BilinearEntry  `yaml:"bilinear"`
	SampledSoftmax []SoftmaxEntry   `yaml:"sampled_softmax"`
}

// OperatorEntry names an operator.Config.
type OperatorEntry struct {
	Name            string `yaml:"name"`
	operator.Config `yaml:",inline"`
}

// RecurrentEntry names a recurrent cell of the given kind.
type RecurrentEntry struct {
	Name       string   `yaml:"name"`
	Kind       rnn.Kind `yaml:"kind"`
	rnn.Config `yaml:",inline"`
}

// GraphRNNEntry names a graph-recurrent cell.
type GraphRNNEntry struct {
	Name            string `yaml:"name"`
	graphrnn.Config `yaml:",inline"`
}

// DenseEntry names a feed-forward stack.
type DenseEntry struct {
	Name               string `yaml:"name"`
	blocks.DenseConfig `yaml:",inline"`
}

// ResidualEntry names a residual block.
type ResidualEntry struct {
	Name                  string `yaml:"name"`
	blocks.ResidualConfig `yaml:",inline"`
}

// BilinearEntry names a bilinear scoring layer.
type BilinearEntry struct {
	Name                  string `yaml:"name"`
	blocks.BilinearConfig `yaml:",inline"`
}

// SoftmaxEntry names a sampled-softmax head.
type SoftmaxEntry struct {
	Name                 string `yaml:"name"`
	blocks.SoftmaxConfig `yaml:",inline"`
}

// Parse decodes data strictly and validates the result.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// names returns every layer name in file order.
func (f *File) names() []string {
	var out []string
	for _, s := range f.Operators {
		out = append(out, s.Name)
	}
	for _, s := range f.Recurrent {
		out = append(out, s.Name)
	}
	for _, s := range f.GraphRecurrent {
		out = append(out, s.Name)
	}
	for _, s := range f.Dense {
		out = append(out, s.Name)
	}
	for _, s := range f.Residual {
		out = append(out, s.Name)
	}
	for _, s := range f.Bilinear {
		out = append(out, s.Name)
	}
	for _, s := range f.SampledSoftmax {
		out = append(out, s.Name)
	}

	return out
}

// Validate checks names and every layer config. Layers are constructed (no
// parameters are allocated) so the rules are exactly the constructors' rules.
func (f *File) Validate() error {
	_, err := f.Build()

	return err
}

func (f *File) checkNames() error {
	seen := make(map[string]struct{})
	for i, name := range f.names() {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: entry %d", ErrMissingName, i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

// Model holds the layers built from a File, keyed by name.
type Model struct {
	Operators      map[string]operator.Operator
	Recurrent      map[string]rnn.Cell
	GraphRecurrent map[string]*graphrnn.Cell
	Dense          map[string]*blocks.Dense
	Residual       map[string]*blocks.Residual
	Bilinear       map[string]*blocks.Bilinear
	SampledSoftmax map[string]*blocks.SampledSoftmax

	sets []*nn.ParamSet
}

// Parameters lists every parameter allocated so far, layers in file order.
func (m *Model) Parameters() []*nn.Parameter {
	var out []*nn.Parameter
	for _, ps := range m.sets {
		out = append(out, ps.Parameters()...)
	}

	return out
}

// Build constructs every layer. opts (logger, recorder) apply to all layers;
// the layer name comes from the file and, with Seed set, the random stream
// from the file's seed.
func (f *File) Build(opts ...nn.Option) (*Model, error) {
	if err := f.checkNames(); err != nil {
		return nil, err
	}
	var root *nn.Source
	if f.Seed != nil {
		root = nn.NewSource(*f.Seed)
	}
	layerOpts := func(name string) []nn.Option {
		out := append([]nn.Option{}, opts...)
		out = append(out, nn.WithName(name))
		if root != nil {
			out = append(out, nn.WithSource(root.Child()))
		}
		return out
	}
	m := &Model{
		Operators:      make(map[string]operator.Operator),
		Recurrent:      make(map[string]rnn.Cell),
		GraphRecurrent: make(map[string]*graphrnn.Cell),
		Dense:          make(map[string]*blocks.Dense),
		Residual:       make(map[string]*blocks.Residual),
		Bilinear:       make(map[string]*blocks.Bilinear),
		SampledSoftmax: make(map[string]*blocks.SampledSoftmax),
	}
	wrap := func(name string, err error) error {
		return fmt.Errorf("config: layer %q: %w", name, err)
	}

	for _, s := range f.Operators {
		op, err := operator.New(s.Config, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.Operators[s.Name] = op
		m.sets = append(m.sets, op.Params())
	}
	for _, s := range f.Recurrent {
		c, err := rnn.New(s.Kind, s.Config, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.Recurrent[s.Name] = c
		m.sets = append(m.sets, c.Params())
	}
	for _, s := range f.GraphRecurrent {
		c, err := graphrnn.New(s.Config, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.GraphRecurrent[s.Name] = c
		m.sets = append(m.sets, c.Params())
	}
	for _, s := range f.Dense {
		d, err := blocks.NewDense(s.DenseConfig, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.Dense[s.Name] = d
		m.sets = append(m.sets, d.Params())
	}
	for _, s := range f.Residual {
		r, err := blocks.NewResidual(s.ResidualConfig, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.Residual[s.Name] = r
		m.sets = append(m.sets, r.Params())
	}
	for _, s := range f.Bilinear {
		b, err := blocks.NewBilinear(s.BilinearConfig, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.Bilinear[s.Name] = b
		m.sets = append(m.sets, b.Params())
	}
	for _, s := range f.SampledSoftmax {
		l, err := blocks.NewSampledSoftmax(s.SoftmaxConfig, layerOpts(s.Name)...)
		if err != nil {
			return nil, wrap(s.Name, err)
		}
		m.SampledSoftmax[s.Name] = l
		m.sets = append(m.sets, l.Params())
	}

	return m, nil
}
