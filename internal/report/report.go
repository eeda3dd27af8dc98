// Package report renders reduction results as shareable artifacts: an
// HTML shot report with one chart per chord line, and standalone PNG
// plots of individual chords for quick inspection.
package report

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// WriteShotReport writes an HTML report for one reduced shot to path. The
// report opens with the mean chord profile the ROI search ran on, then
// shows one chart per (chord, line) result with the measured spectrum and
// the fitted line shape overlaid.
func WriteShotReport(path, shotID string, s *spectroscopy.Spectrogram, res *spectroscopy.ShotResult) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Shot %s", shotID)

	page.AddCharts(overviewChart(shotID, res))
	for _, r := range res.Results {
		page.AddCharts(chordChart(s, res, r))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// overviewChart plots the mean chord profile with the detected ROI windows
// named in the subtitle.
func overviewChart(shotID string, res *spectroscopy.ShotResult) *charts.Line {
	profile := spectroscopy.MeanProfile(res.Chords.Binned)

	x := make([]string, len(profile))
	y := make([]opts.LineData, len(profile))
	for i, v := range profile {
		x[i] = strconv.Itoa(i)
		y[i] = opts.LineData{Value: v}
	}

	rois := ""
	for i, roi := range res.ROIs {
		if i > 0 {
			rois += "  "
		}
		rois += fmt.Sprintf("line %d: [%d, %d)", i, roi.Lo, roi.Hi)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Shot %s — mean chord profile", shotID),
			Subtitle: rois,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Wavelength pixel"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Counts"}),
	)
	line.SetXAxis(x).AddSeries("mean profile", y)
	return line
}

// chordChart plots one chord's measured spectrum in an ROI against the
// fitted Gaussian evaluated on the same wavelength samples.
func chordChart(s *spectroscopy.Spectrogram, res *spectroscopy.ShotResult, r spectroscopy.ChordResult) *charts.Line {
	wl := s.Wavelength[r.ROI.Lo:r.ROI.Hi]
	data := res.Chords.Binned[r.Chord][r.ROI.Lo:r.ROI.Hi]

	x := make([]string, len(wl))
	measured := make([]opts.LineData, len(wl))
	fitted := make([]opts.LineData, len(wl))
	for i, w := range wl {
		x[i] = strconv.FormatFloat(w, 'f', 3, 64)
		measured[i] = opts.LineData{Value: data[i]}
		fitted[i] = opts.LineData{Value: r.Temp.Fit.Eval(w)}
	}

	subtitle := fmt.Sprintf("T = %.1f eV  center = %.3f  width = %.4f", r.Temp.TempEV, r.Temp.Fit.Center, r.Temp.Fit.Width)
	if !r.Temp.Fit.Converged {
		subtitle = "fit did not converge"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Chord %d (row %d), line %d", r.Chord, r.BinCenter, r.Line),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Wavelength (nm)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Counts"}),
	)
	line.SetXAxis(x).
		AddSeries("measured", measured).
		AddSeries("fit", fitted, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
