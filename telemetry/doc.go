// SPDX-License-Identifier: MIT

// Package telemetry exports layer observations to Prometheus.
//
// Prometheus implements nn.Recorder; pass it to any layer with
// nn.WithRecorder. Metric families (namespace configurable):
//
//	<ns>_layer_forward_total{layer}                 counter
//	<ns>_layer_forward_duration_seconds{layer}      histogram
//	<ns>_layer_degenerate_total{layer,kind}         counter
//
// kind is one of the nn.Degenerate* constants.
package telemetry
