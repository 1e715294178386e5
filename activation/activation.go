// SPDX-License-Identifier: MIT

package activation

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Kind names an activation function.
type Kind string

// Supported kinds.
const (
	Linear      Kind = "linear"
	ReLU        Kind = "relu"
	ELU         Kind = "elu"
	Sigmoid     Kind = "sigmoid"
	HardSigmoid Kind = "hard_sigmoid"
	Tanh        Kind = "tanh"
	Softplus    Kind = "softplus"
	LeakyReLU   Kind = "leaky_relu"
	Swish       Kind = "swish"
)

// DefaultLeakySlope is the negative-side slope of the leaky_relu kind.
const DefaultLeakySlope = 0.2

// Func is a resolved element-wise activation.
type Func func(float64) float64

var table = map[Kind]Func{
	Linear:      func(x float64) float64 { return x },
	ReLU:        relu,
	ELU:         elu,
	Sigmoid:     sigmoid,
	HardSigmoid: hardSigmoid,
	Tanh:        math.Tanh,
	Softplus:    softplus,
	LeakyReLU:   Leaky(DefaultLeakySlope),
	Swish:       func(x float64) float64 { return x * sigmoid(x) },
}

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{Linear, ReLU, ELU, Sigmoid, HardSigmoid, Tanh, Softplus, LeakyReLU, Swish}
}

// Parse resolves a (case-insensitive) name to a Kind.
func Parse(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := table[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	return k, nil
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	_, ok := table[k]

	return ok
}

// Func returns the function for k.
func (k Kind) Func() (Func, error) {
	f, ok := table[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, string(k))
	}

	return f, nil
}

// Or returns k, or def when k is empty. Layers use it to apply their defaults.
func (k Kind) Or(def Kind) Kind {
	if k == "" {
		return def
	}

	return k
}

// UnmarshalYAML rejects unknown names while decoding configuration files.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*k = ""
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*k = parsed

	return nil
}

// Apply returns fn applied element-wise to m.
func (f Func) Apply(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return f(v) }, m)

	return &out
}

// Leaky returns a leaky ReLU with the given negative slope.
func Leaky(slope float64) Func {
	return func(x float64) float64 {
		if x < 0 {
			return slope * x
		}

		return x
	}
}

func relu(x float64) float64 {
	if x < 0 {
		return 0
	}

	return x
}

func elu(x float64) float64 {
	if x < 0 {
		return math.Expm1(x)
	}

	return x
}

// sigmoid evaluates 1/(1+e^{-x}) and saturates to exactly 0 or 1 far from 0.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func hardSigmoid(x float64) float64 {
	return math.Max(0, math.Min(1, 0.2*x+0.5))
}

func softplus(x float64) float64 {
	if x > 30 {
		return x
	}

	return math.Log1p(math.Exp(x))
}
