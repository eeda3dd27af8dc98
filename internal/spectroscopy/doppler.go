package spectroscopy

import "math"

// CarbonIonMass is the default ion species mass: carbon-12, in kg.
const CarbonIonMass = 12 / 6.02e23

// Constants bundles the physical constants the Doppler estimator needs.
// Passing them explicitly (rather than reading globals) lets tests and
// multi-species analyses substitute the ion mass per call.
type Constants struct {
	IonMass          float64 // kg
	SpeedOfLight     float64 // m/s
	ElementaryCharge float64 // C
}

// DefaultConstants returns the constants used on the instrument: carbon-12
// ions, c = 3e8 m/s, q = 1.6e-19 C.
func DefaultConstants() Constants {
	return Constants{
		IonMass:          CarbonIonMass,
		SpeedOfLight:     3e8,
		ElementaryCharge: 1.6e-19,
	}
}

// DopplerTemperature is a per-line ion temperature estimate together with
// the Gaussian fit it was derived from. TempEV is meaningless when the fit
// did not converge; callers check Fit.Converged.
type DopplerTemperature struct {
	TempEV float64
	Fit    GaussianFit
}

// EstimateDopplerTemp converts the thermal broadening of one emission line
// into an ion temperature in electron-volts, using the non-relativistic
// Doppler relation T = (FWHM/lambda)^2 * m*c^2 / (8*ln2*q).
//
// lineVector is the line's coordinate axis in physical wavelength units
// (not raw pixel index) and must be uniformly spaced: the fitted width is
// scaled by the first axis step to obtain the FWHM, so a non-uniform axis
// silently skews the unit conversion. The reference wavelength is taken at
// the index of the axis maximum; for an ascending axis that is its last
// sample.
func EstimateDopplerTemp(c Constants, lineSpectra, lineVector []float64) DopplerTemperature {
	if len(lineVector) < 2 {
		return DopplerTemperature{TempEV: math.NaN(), Fit: failedFit()}
	}

	aMax := 0
	for i, v := range lineVector {
		if v > lineVector[aMax] {
			aMax = i
		}
	}

	fit := FitGaussian(lineSpectra, lineVector)
	fwhm := fit.Width * (lineVector[1] - lineVector[0])

	ratio := fwhm / lineVector[aMax]
	temp := ratio * ratio * c.IonMass * c.SpeedOfLight * c.SpeedOfLight /
		(8 * math.Ln2 * c.ElementaryCharge)

	return DopplerTemperature{TempEV: temp, Fit: fit}
}
