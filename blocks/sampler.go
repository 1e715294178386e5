// SPDX-License-Identifier: MIT

package blocks

import (
	"math"

	"github.com/katalvlaran/graphnn/nn"
)

// Sampler names the candidate distribution of SampledSoftmax.
type Sampler string

// Supported samplers.
const (
	// Uniform draws every class with probability 1/C.
	Uniform Sampler = "uniform"
	// LogUniform draws class c with probability log((c+2)/(c+1))/log(C+1),
	// favouring small ids (Zipf-like class frequencies sorted by rank).
	LogUniform Sampler = "log_uniform"
)

// DefaultSampler is used when SoftmaxConfig.Sampler is empty.
const DefaultSampler = LogUniform

type candidates interface {
	draw(src *nn.Source) int
	prob(class int) float64
}

type uniformCandidates struct{ classes int }

func (u uniformCandidates) draw(src *nn.Source) int { return src.IntN(u.classes) }
func (u uniformCandidates) prob(int) float64         { return 1 / float64(u.classes) }

type logUniformCandidates struct {
	classes  int
	logRange float64
}

func newLogUniform(classes int) logUniformCandidates {
	return logUniformCandidates{classes: classes, logRange: math.Log(float64(classes) + 1)}
}

func (l logUniformCandidates) draw(src *nn.Source) int {
	c := int(math.Exp(src.Float64()*l.logRange)) - 1
	return min(max(c, 0), l.classes-1)
}

func (l logUniformCandidates) prob(class int) float64 {
	return math.Log(float64(class+2)/float64(class+1)) / l.logRange
}

// sampleUnique draws until n distinct classes are collected and returns them
// in draw order together with the number of draws taken.
func sampleUnique(src *nn.Source, dist candidates, n int) ([]int, int) {
	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	tries := 0
	for len(out) < n {
		tries++
		c := dist.draw(src)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out, tries
}

// expectedCount is the probability that class appears in a unique sample that
// took tries draws: 1 − (1 − p)^tries.
func expectedCount(dist candidates, class, tries int) float64 {
	return -math.Expm1(float64(tries) * math.Log1p(-dist.prob(class)))
}
