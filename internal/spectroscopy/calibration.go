package spectroscopy

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Calibration converts between pixel-space indices and physical wavelength.
// It is built from a strictly monotonic wavelength axis; index i pairs with
// wavelength sample i, so the pixel domain is [0, n-1] for an n-sample axis.
// Both directions interpolate piecewise-linearly between the knots and never
// extrapolate: coordinates outside the domain return ErrOutOfDomain.
type Calibration struct {
	pixToWl interp.PiecewiseLinear
	wlToPix interp.PiecewiseLinear
	maxPix  float64
	wlMin   float64
	wlMax   float64
}

// NewCalibration builds the bidirectional mapper from a wavelength axis.
// The axis must be strictly monotonic (ascending or descending) and hold at
// least two samples; otherwise construction fails with ErrNonMonotonicAxis.
func NewCalibration(wavelengths []float64) (*Calibration, error) {
	n := len(wavelengths)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrNonMonotonicAxis, n)
	}
	ascending := wavelengths[1] > wavelengths[0]
	for i := 1; i < n; i++ {
		if ascending && wavelengths[i] <= wavelengths[i-1] {
			return nil, fmt.Errorf("%w: not ascending at sample %d", ErrNonMonotonicAxis, i)
		}
		if !ascending && wavelengths[i] >= wavelengths[i-1] {
			return nil, fmt.Errorf("%w: not descending at sample %d", ErrNonMonotonicAxis, i)
		}
	}

	pixels := make([]float64, n)
	for i := range pixels {
		pixels[i] = float64(i)
	}

	// The interpolant requires ascending abscissae, so the inverse direction
	// is fitted over the reversed axis when the wavelengths descend.
	wlAsc, pixForWl := wavelengths, pixels
	if !ascending {
		wlAsc = make([]float64, n)
		pixForWl = make([]float64, n)
		for i := range wavelengths {
			wlAsc[i] = wavelengths[n-1-i]
			pixForWl[i] = pixels[n-1-i]
		}
	}

	c := &Calibration{maxPix: float64(n - 1), wlMin: wlAsc[0], wlMax: wlAsc[n-1]}
	if err := c.pixToWl.Fit(pixels, wavelengths); err != nil {
		return nil, fmt.Errorf("fit pixel->wavelength interpolant: %w", err)
	}
	if err := c.wlToPix.Fit(wlAsc, pixForWl); err != nil {
		return nil, fmt.Errorf("fit wavelength->pixel interpolant: %w", err)
	}
	return c, nil
}

// PixelToWavelength maps a pixel index to wavelength. The pixel must lie in
// [0, n-1]; one past the last knot is already out of domain.
func (c *Calibration) PixelToWavelength(pixel float64) (float64, error) {
	if pixel < 0 || pixel > c.maxPix {
		return 0, fmt.Errorf("%w: pixel %g outside [0, %g]", ErrOutOfDomain, pixel, c.maxPix)
	}
	return c.pixToWl.Predict(pixel), nil
}

// WavelengthToPixel maps a wavelength to its fractional pixel index.
func (c *Calibration) WavelengthToPixel(wavelength float64) (float64, error) {
	if wavelength < c.wlMin || wavelength > c.wlMax {
		return 0, fmt.Errorf("%w: wavelength %g outside [%g, %g]", ErrOutOfDomain, wavelength, c.wlMin, c.wlMax)
	}
	return c.wlToPix.Predict(wavelength), nil
}

// PixelsToWavelengths applies PixelToWavelength elementwise. The result has
// the same length as the input; the first out-of-domain element aborts.
func (c *Calibration) PixelsToWavelengths(pixels []float64) ([]float64, error) {
	out := make([]float64, len(pixels))
	for i, p := range pixels {
		w, err := c.PixelToWavelength(p)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// WavelengthsToPixels applies WavelengthToPixel elementwise.
func (c *Calibration) WavelengthsToPixels(wavelengths []float64) ([]float64, error) {
	out := make([]float64, len(wavelengths))
	for i, w := range wavelengths {
		p, err := c.WavelengthToPixel(w)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
