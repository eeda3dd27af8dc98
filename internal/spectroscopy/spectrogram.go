// Package spectroscopy reduces gated-camera spectral images into per-chord
// ion Doppler temperature estimates. The pipeline is: spatial chord binning,
// region-of-interest extraction via peak detection, pixel/wavelength
// calibration, Gaussian line-shape fitting, and the Doppler broadening
// temperature estimator on top of the fit.
package spectroscopy

import (
	"errors"
	"fmt"
)

// Sentinel errors for the reduction pipeline. Callers match with errors.Is.
var (
	// ErrInvalidRange marks a chord bin edge pair with lower >= upper, or
	// bin edges outside the spectrogram's row range.
	ErrInvalidRange = errors.New("invalid pixel range")

	// ErrNonMonotonicAxis marks a wavelength axis that is not strictly
	// monotonic. Calibration construction fails fast rather than producing
	// silently wrong interpolation.
	ErrNonMonotonicAxis = errors.New("wavelength axis is not strictly monotonic")

	// ErrOutOfDomain marks a coordinate outside the calibration's
	// interpolation domain. The mapper never extrapolates.
	ErrOutOfDomain = errors.New("coordinate outside calibration domain")
)

// Metadata holds the acquisition settings recorded by the camera.
type Metadata struct {
	Gain      int     // intensifier gain (dimensionless)
	GateWidth float64 // seconds
	GateDelay float64 // seconds
}

// Spectrogram is one camera frame with its coordinate axes: a 2-D intensity
// image indexed [spatial row][wavelength column], the per-column wavelength
// axis and the per-row spatial axis. It is produced by an instrument file
// loader and read-only thereafter.
type Spectrogram struct {
	Image      [][]float64
	Wavelength []float64 // one value per column, strictly monotonic
	Spatial    []float64 // one value per row
	Meta       Metadata
}

// Rows returns the spatial row count of the image.
func (s *Spectrogram) Rows() int { return len(s.Image) }

// Cols returns the wavelength column count of the image.
func (s *Spectrogram) Cols() int {
	if len(s.Image) == 0 {
		return 0
	}
	return len(s.Image[0])
}

// Validate checks the axis/image shape invariants: every image row has the
// same length, the wavelength axis matches the column count and the spatial
// axis matches the row count.
func (s *Spectrogram) Validate() error {
	cols := s.Cols()
	for i, row := range s.Image {
		if len(row) != cols {
			return fmt.Errorf("image row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	if len(s.Wavelength) != cols {
		return fmt.Errorf("wavelength axis has %d samples for %d columns", len(s.Wavelength), cols)
	}
	if len(s.Spatial) != s.Rows() {
		return fmt.Errorf("spatial axis has %d samples for %d rows", len(s.Spatial), s.Rows())
	}
	return nil
}

// MeanProfile returns the column-wise mean across all rows of data. This is
// the chord-averaged 1-D spectrum fed to the ROI extractor.
func MeanProfile(data [][]float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	cols := len(data[0])
	mean := make([]float64, cols)
	for _, row := range data {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(data))
	}
	return mean
}
