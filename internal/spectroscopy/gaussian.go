package spectroscopy

import (
	"math"

	"github.com/maorshutman/lm"

	"github.com/zap-plasma/doppler.report/internal/monitoring"
)

// GaussianFit holds the four parameters of the fitted line shape
// A*exp(-(x-x0)^2/(2*width^2)) + yoffset. The fit is defined in whatever
// coordinate space the input vector used (pixel or wavelength); callers
// track which. Converged reports whether the solver produced the
// parameters; a failed fit carries the fallback vector (1,1,1,1).
type GaussianFit struct {
	Amplitude float64
	Center    float64
	Width     float64
	Offset    float64
	Converged bool
}

// failedFit is the recovery result when the solver does not converge. The
// all-ones vector keeps downstream arithmetic finite; Converged=false is the
// signal callers must check.
func failedFit() GaussianFit {
	return GaussianFit{Amplitude: 1, Center: 1, Width: 1, Offset: 1}
}

// maxFitIterations bounds each Levenberg-Marquardt solve so a pathological
// profile cannot run away.
const maxFitIterations = 100

// FitGaussian fits the four-parameter Gaussian-plus-offset line shape to an
// intensity profile by Levenberg-Marquardt least squares. rowData holds the
// intensities and rowVect the matching coordinates (pixel or wavelength
// space).
//
// Seeding is deterministic, so repeated fits of the same profile are
// reproducible without operator-chosen starting points. The primary seed
// matches the instrument's validated reduction chain: amplitude from the
// profile maximum, center from the first moment sum(data*vect)/n, width
// from the matching second moment, offset zero. That first moment is not
// normalized by sum(data) and can land far outside the data window, where
// the solve stalls on a flat model; when it does, a second solve seeded
// from the normalized centroid is attempted and the lower-residual valid
// result wins.
//
// A solve that fails, returns non-finite parameters, or collapses to an
// exactly zero width is discarded; if no attempt survives, a diagnostic is
// logged and the fallback parameters (1,1,1,1) are returned with
// Converged=false. FitGaussian never panics on degenerate input; a batch of
// chords survives one bad line.
func FitGaussian(rowData, rowVect []float64) GaussianFit {
	if len(rowData) == 0 || len(rowData) != len(rowVect) {
		monitoring.Logf("gaussian fit: bad profile shape (%d data, %d coords)", len(rowData), len(rowVect))
		return failedFit()
	}

	n := float64(len(rowVect))
	a0 := rowData[0]
	for _, v := range rowData[1:] {
		if v > a0 {
			a0 = v
		}
	}
	var m1 float64
	for i := range rowData {
		m1 += rowData[i] * rowVect[i]
	}
	m1 /= n
	var m2 float64
	for i := range rowData {
		d := rowVect[i] - m1
		m2 += rowData[i] * d * d
	}
	m2 /= n

	best, ok := solveGaussian(rowData, rowVect, []float64{a0, m1, m2, 0})

	// Centroid-seeded retry for profiles where the first-moment seed stalls.
	var total float64
	for _, v := range rowData {
		total += v
	}
	if total != 0 {
		cx := 0.0
		for i := range rowData {
			cx += rowData[i] * rowVect[i]
		}
		cx /= total
		var cv float64
		for i := range rowData {
			d := rowVect[i] - cx
			cv += rowData[i] * d * d
		}
		cw := math.Sqrt(math.Abs(cv / total))
		if alt, altOK := solveGaussian(rowData, rowVect, []float64{a0, cx, cw, minOf(rowData)}); altOK {
			if !ok || residualSumSquares(alt, rowData, rowVect) < residualSumSquares(best, rowData, rowVect) {
				best, ok = alt, true
			}
		}
	}

	if !ok {
		monitoring.Logf("gaussian fit did not converge, returning fallback parameters")
		return failedFit()
	}
	best.Converged = true
	return best
}

// solveGaussian runs one bounded Levenberg-Marquardt solve from the given
// seed. The second return is false when the solver errors, the seed or the
// result is non-finite, or the width collapses to exactly zero (a zero
// width would poison every downstream FWHM conversion).
func solveGaussian(rowData, rowVect, seed []float64) (GaussianFit, bool) {
	for _, s := range seed {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return GaussianFit{}, false
		}
	}

	// Residuals of the model against the data; p = [A, x0, width, yoffset].
	model := func(dst, p []float64) {
		for i := range dst {
			arg := (rowVect[i] - p[1]) / p[2]
			dst[i] = p[0]*math.Exp(-arg*arg/2) + p[3] - rowData[i]
		}
	}

	jacobian := lm.NumJac{Func: model}
	problem := lm.LMProblem{
		Dim:        4,
		Size:       len(rowData),
		Func:       model,
		Jac:        jacobian.Jac,
		InitParams: seed,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(problem, &lm.Settings{Iterations: maxFitIterations, ObjectiveTol: 1e-16})
	if err != nil {
		return GaussianFit{}, false
	}
	for _, p := range results.X {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return GaussianFit{}, false
		}
	}
	if results.X[2] == 0 {
		return GaussianFit{}, false
	}
	return GaussianFit{
		Amplitude: results.X[0],
		Center:    results.X[1],
		Width:     results.X[2],
		Offset:    results.X[3],
	}, true
}

// residualSumSquares scores a candidate fit against the profile.
func residualSumSquares(f GaussianFit, rowData, rowVect []float64) float64 {
	var rss float64
	for i := range rowData {
		r := f.Eval(rowVect[i]) - rowData[i]
		rss += r * r
	}
	return rss
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Eval evaluates the fitted line shape at x.
func (f GaussianFit) Eval(x float64) float64 {
	arg := (x - f.Center) / f.Width
	return f.Amplitude*math.Exp(-arg*arg/2) + f.Offset
}

// PeakWavelength returns the fitted line center of a spectrum, i.e. the
// precise coordinate of the peak in the space of lineVector.
func PeakWavelength(lineSpectra, lineVector []float64) (float64, GaussianFit) {
	fit := FitGaussian(lineSpectra, lineVector)
	return fit.Center, fit
}
