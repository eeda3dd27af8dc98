package spectroscopy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearAxis(n int, start, step float64) []float64 {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = start + float64(i)*step
	}
	return axis
}

func TestCalibration_RoundTripAtKnots(t *testing.T) {
	cal, err := NewCalibration(linearAxis(32, 500.0, 0.1))
	require.NoError(t, err)

	for p := 0; p < 32; p++ {
		w, err := cal.PixelToWavelength(float64(p))
		require.NoError(t, err)
		back, err := cal.WavelengthToPixel(w)
		require.NoError(t, err)
		assert.InDelta(t, float64(p), back, 1e-9, "pixel %d did not round-trip", p)
	}
}

func TestCalibration_FractionalPixels(t *testing.T) {
	cal, err := NewCalibration(linearAxis(16, 500.0, 0.2))
	require.NoError(t, err)

	w, err := cal.PixelToWavelength(2.5)
	require.NoError(t, err)
	assert.InDelta(t, 500.5, w, 1e-12)

	p, err := cal.WavelengthToPixel(500.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, p, 1e-12)
}

func TestCalibration_DomainGuard(t *testing.T) {
	n := 16
	cal, err := NewCalibration(linearAxis(n, 500.0, 0.1))
	require.NoError(t, err)

	// One past the last valid index must error, never extrapolate.
	_, err = cal.PixelToWavelength(float64(n))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfDomain))

	_, err = cal.PixelToWavelength(-0.01)
	assert.True(t, errors.Is(err, ErrOutOfDomain))

	_, err = cal.WavelengthToPixel(499.9)
	assert.True(t, errors.Is(err, ErrOutOfDomain))
}

func TestCalibration_DescendingAxis(t *testing.T) {
	// Some gratings map wavelength high-to-low across the sensor.
	cal, err := NewCalibration(linearAxis(16, 510.0, -0.5))
	require.NoError(t, err)

	w, err := cal.PixelToWavelength(3)
	require.NoError(t, err)
	assert.InDelta(t, 508.5, w, 1e-12)

	p, err := cal.WavelengthToPixel(508.5)
	require.NoError(t, err)
	assert.InDelta(t, 3, p, 1e-9)
}

func TestCalibration_NonMonotonicAxisRejected(t *testing.T) {
	cases := [][]float64{
		{500, 501, 501, 502},
		{500, 501, 500.5},
		{500},
		nil,
	}
	for _, axis := range cases {
		_, err := NewCalibration(axis)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNonMonotonicAxis), "axis %v: got %v", axis, err)
	}
}

func TestCalibration_Elementwise(t *testing.T) {
	cal, err := NewCalibration(linearAxis(8, 600.0, 1.0))
	require.NoError(t, err)

	ws, err := cal.PixelsToWavelengths([]float64{0, 1.5, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{600, 601.5, 607}, ws)

	_, err = cal.PixelsToWavelengths([]float64{0, 8})
	assert.True(t, errors.Is(err, ErrOutOfDomain))

	ps, err := cal.WavelengthsToPixels(ws)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.InDelta(t, 1.5, ps[1], 1e-9)
}
