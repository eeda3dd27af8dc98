package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// fitCurveSteps is the sampling density of the fitted curve overlay.
const fitCurveSteps = 200

// SaveChordPNG renders one (chord, line) result as a PNG: measured samples
// as points, the fitted line shape as a dense curve.
func SaveChordPNG(path string, s *spectroscopy.Spectrogram, res *spectroscopy.ShotResult, chord, line int) error {
	var result *spectroscopy.ChordResult
	for i := range res.Results {
		if res.Results[i].Chord == chord && res.Results[i].Line == line {
			result = &res.Results[i]
			break
		}
	}
	if result == nil {
		return fmt.Errorf("no result for chord %d line %d", chord, line)
	}

	wl := s.Wavelength[result.ROI.Lo:result.ROI.Hi]
	data := res.Chords.Binned[chord][result.ROI.Lo:result.ROI.Hi]

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Chord %d (row %d), line %d — T = %.1f eV", chord, result.BinCenter, line, result.Temp.TempEV)
	p.X.Label.Text = "Wavelength (nm)"
	p.Y.Label.Text = "Counts"

	pts := make(plotter.XYs, len(wl))
	for i := range wl {
		pts[i] = plotter.XY{X: wl[i], Y: data[i]}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("measured points: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("measured", scatter)

	if result.Temp.Fit.Converged && len(wl) > 1 {
		lo, hi := wl[0], wl[len(wl)-1]
		if lo > hi {
			lo, hi = hi, lo
		}
		curve := make(plotter.XYs, fitCurveSteps)
		step := (hi - lo) / float64(fitCurveSteps-1)
		for i := range curve {
			x := lo + float64(i)*step
			curve[i] = plotter.XY{X: x, Y: result.Temp.Fit.Eval(x)}
		}
		fitLine, err := plotter.NewLine(curve)
		if err != nil {
			return fmt.Errorf("fit curve: %w", err)
		}
		fitLine.Width = vg.Points(1)
		p.Add(fitLine)
		p.Legend.Add("fit", fitLine)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
