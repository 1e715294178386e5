// SPDX-License-Identifier: MIT

package nn

import "time"

// Degeneracy kinds reported through Recorder.ObserveDegenerate.
const (
	DegenerateZeroDegree        = "zero_degree"
	DegenerateSmallEigenvalue   = "small_eigenvalue"
	DegenerateIsolatedNode      = "isolated_node"
	DegenerateEmptyNeighborhood = "empty_neighborhood"
	DegenerateZeroNormRow       = "zero_norm_row"
	DegenerateAccidentalHit     = "accidental_hit"
)

// Recorder receives per-layer observations. Implementations must be safe for
// concurrent use; see telemetry.Prometheus.
type Recorder interface {
	// ObserveForward is called once per successful forward call.
	ObserveForward(layer string, elapsed time.Duration)
	// ObserveDegenerate is called when a numerical fallback fired count times.
	ObserveDegenerate(layer, kind string, count int)
}

// NopRecorder discards everything. It is the default.
type NopRecorder struct{}

// ObserveForward implements Recorder.
func (NopRecorder) ObserveForward(string, time.Duration) {}

// ObserveDegenerate implements Recorder.
func (NopRecorder) ObserveDegenerate(string, string, int) {}
