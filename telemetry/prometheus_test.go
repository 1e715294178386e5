// SPDX-License-Identifier: MIT

package telemetry_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/spectral"
	"github.com/katalvlaran/graphnn/telemetry"
)

func TestPrometheus_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := telemetry.NewPrometheus(reg, "")
	require.NoError(t, err)

	p.ObserveForward("enc", time.Millisecond)
	p.ObserveForward("enc", time.Millisecond)
	p.ObserveDegenerate("enc", nn.DegenerateIsolatedNode, 3)

	require.Equal(t, 2.0, testutil.ToFloat64(p.ForwardCounter("enc")))
	require.Equal(t, 3.0, testutil.ToFloat64(p.DegenerateCounter("enc", nn.DegenerateIsolatedNode)))
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := telemetry.NewPrometheus(reg, "x")
	require.NoError(t, err)
	_, err = telemetry.NewPrometheus(reg, "x")
	require.Error(t, err)
}

func TestPrometheus_FailedRegistrationLeavesNothing(t *testing.T) {
	reg := prometheus.NewRegistry()
	blocker := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "x",
		Name:      "layer_degenerate_total",
		Help:      "Conflicting help and labels.",
	})
	require.NoError(t, reg.Register(blocker))

	_, err := telemetry.NewPrometheus(reg, "x")
	require.Error(t, err)

	require.True(t, reg.Unregister(blocker))
	_, err = telemetry.NewPrometheus(reg, "x")
	require.NoError(t, err)
}

func TestPrometheus_WiredIntoLayer(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := telemetry.NewPrometheus(reg, "test")
	require.NoError(t, err)

	f, err := spectral.New(spectral.Config{}, nn.WithName("filter"), nn.WithRecorder(p))
	require.NoError(t, err)

	// node 2 has no edges
	adj := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})
	_, err = f.Forward(adj)
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(p.ForwardCounter("filter")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.DegenerateCounter("filter", nn.DegenerateZeroDegree)))
}
