// SPDX-License-Identifier: MIT

package spectral_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/graphnn/nn"
	"github.com/katalvlaran/graphnn/snapshot"
	"github.com/katalvlaran/graphnn/spectral"
	"github.com/katalvlaran/graphnn/tensor"
)

func TestLocalPool_SymmetricForSymmetricInput(t *testing.T) {
	adj, err := snapshot.Adjacency(5, snapshot.Ring)
	require.NoError(t, err)
	f, err := spectral.New(spectral.Config{})
	require.NoError(t, err)

	basis, err := f.Forward(adj)
	require.NoError(t, err)
	k, n, _ := basis.Shape()
	require.Equal(t, 1, k)
	require.Equal(t, 5, n)
	require.True(t, mat.EqualApprox(basis[0], basis[0].T(), 1e-12))
	// ring degree 2 everywhere ⇒ every edge weight becomes 1/2
	require.InDelta(t, 0.5, basis[0].At(0, 1), 1e-12)
}

func TestLocalPool_Directed(t *testing.T) {
	// A[0][1]=1 only: d_0=1, d_1=0 ⇒ node 1 zero degree, output all zeros.
	adj := mat.NewDense(2, 2, []float64{0, 1, 0, 0})
	f, err := spectral.New(spectral.Config{Mode: spectral.LocalPool})
	require.NoError(t, err)
	basis, err := f.Forward(adj)
	require.NoError(t, err)
	require.Equal(t, 0.0, mat.Sum(basis[0]))
}

func TestLocalPool_ZeroDegreeFallback(t *testing.T) {
	adj := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		1, 0, 0,
		0, 0, 0,
	})
	f, err := spectral.New(spectral.Config{})
	require.NoError(t, err)
	basis, err := f.Forward(adj)
	require.NoError(t, err)
	require.NoError(t, tensor.ValidateFinite(basis[0], "basis"))
	for j := 0; j < 3; j++ {
		require.Equal(t, 0.0, basis[0].At(2, j))
		require.Equal(t, 0.0, basis[0].At(j, 2))
	}
	require.Equal(t, 1.0, basis[0].At(0, 1))
}

func TestLocalPool_SelfLoops(t *testing.T) {
	adj := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	f, err := spectral.New(spectral.Config{SelfLoops: true})
	require.NoError(t, err)
	basis, err := f.Forward(adj)
	require.NoError(t, err)
	for _, v := range basis[0].RawMatrix().Data {
		require.InDelta(t, 0.5, v, 1e-12)
	}
	require.Equal(t, 0.0, adj.At(0, 0), "input untouched")
}

func TestChebyshev_Recurrence(t *testing.T) {
	adj, err := snapshot.Adjacency(6, snapshot.Path)
	require.NoError(t, err)
	f, err := spectral.New(spectral.Config{Mode: spectral.Chebyshev, Support: 2})
	require.NoError(t, err)
	require.Equal(t, 3, f.Bases())

	basis, err := f.Forward(adj)
	require.NoError(t, err)
	require.Len(t, basis, 3)
	require.True(t, mat.Equal(basis[0], tensor.Identity(6)))

	want := tensor.Sub(tensor.Scale(2, tensor.Mul(basis[1], basis[1])), basis[0])
	require.True(t, mat.EqualApprox(want, basis[2], 1e-12))
}

func TestChebyshev_KnownScaledLaplacian(t *testing.T) {
	// K_2: A_norm = A, L = I − A with eigenvalues {0, 2} ⇒ L̃ = L − I = −A.
	adj := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	f, err := spectral.New(spectral.Config{Mode: spectral.Chebyshev})
	require.NoError(t, err)
	basis, err := f.Forward(adj)
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(basis[1], tensor.Scale(-1, adj), 1e-9))
}

func TestChebyshev_SmallEigenvalueFallback(t *testing.T) {
	// Only self-loops ⇒ A_norm = I ⇒ L = 0 ⇒ λ_max = 0.
	f, err := spectral.New(spectral.Config{Mode: spectral.Chebyshev, Support: 3, SelfLoops: true})
	require.NoError(t, err)
	basis, err := f.Forward(mat.NewDense(3, 3, nil))
	require.NoError(t, err)
	require.Len(t, basis, 4)
	for _, b := range basis {
		require.NoError(t, tensor.ValidateFinite(b, "basis"))
	}
	require.True(t, mat.Equal(basis[1], tensor.Scale(-1, tensor.Identity(3))))
	require.False(t, math.IsNaN(basis[3].At(0, 0)))
}

func TestNew_ConfigErrors(t *testing.T) {
	_, err := spectral.New(spectral.Config{Mode: "fourier"})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = spectral.New(spectral.Config{Mode: spectral.Chebyshev, Support: 1})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = spectral.New(spectral.Config{Support: -1})
	require.ErrorIs(t, err, nn.ErrInvalidConfig)
}

func TestForward_InputErrors(t *testing.T) {
	f, err := spectral.New(spectral.Config{})
	require.NoError(t, err)

	_, err = f.Forward(mat.NewDense(2, 3, nil))
	require.ErrorIs(t, err, tensor.ErrNonSquare)

	_, err = f.Forward(mat.NewDense(2, 2, []float64{0, -1, 1, 0}))
	require.ErrorIs(t, err, spectral.ErrInvalidWeight)

	_, err = f.Forward(mat.NewDense(2, 2, []float64{0, math.Inf(1), 1, 0}))
	require.ErrorIs(t, err, spectral.ErrInvalidWeight)
}
