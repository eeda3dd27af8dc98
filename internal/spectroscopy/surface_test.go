package spectroscopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitQuadraticSurface_ExactRecovery(t *testing.T) {
	want := [6]float64{2, -1, 0.5, 0.25, 3, -0.75}
	truth := QuadraticSurface{Coeffs: want}

	var xs, ys, zs []float64
	for i := -3; i <= 3; i++ {
		for j := -3; j <= 3; j++ {
			x, y := float64(i), float64(j)*0.5
			xs = append(xs, x)
			ys = append(ys, y)
			zs = append(zs, truth.Eval(x, y))
		}
	}

	got, err := FitQuadraticSurface(xs, ys, zs)
	require.NoError(t, err)
	for i := range want {
		assert.InDelta(t, want[i], got.Coeffs[i], 1e-9, "coefficient %d", i)
	}

	assert.InDelta(t, truth.Eval(0.3, -1.2), got.Eval(0.3, -1.2), 1e-9)
}

func TestFitQuadraticSurface_TooFewPoints(t *testing.T) {
	_, err := FitQuadraticSurface(
		[]float64{0, 1, 2},
		[]float64{0, 1, 2},
		[]float64{0, 1, 4},
	)
	assert.Error(t, err)
}

func TestFitQuadraticSurface_LengthMismatch(t *testing.T) {
	_, err := FitQuadraticSurface(
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{0, 1},
		[]float64{0, 1, 2, 3, 4, 5},
	)
	assert.Error(t, err)
}
