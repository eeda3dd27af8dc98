package spectroscopy

import "fmt"

// Analyzer holds the configuration for a full shot reduction: physical
// constants for the temperature estimate, peak thresholds for the ROI
// search, and the relative height at which ROI windows are measured.
type Analyzer struct {
	Constants      Constants
	Thresholds     PeakThresholds
	WidthRelHeight float64
}

// NewAnalyzer returns an Analyzer with default constants and window height.
func NewAnalyzer(thresholds PeakThresholds) Analyzer {
	return Analyzer{
		Constants:      DefaultConstants(),
		Thresholds:     thresholds,
		WidthRelHeight: DefaultWidthRelHeight,
	}
}

// ChordResult is the reduction of one spectral line on one chord.
type ChordResult struct {
	Chord     int // chord index within the ChordSet
	BinCenter int // pixel-space center of the chord's spatial bin
	Line      int // ROI index within the shot's ROI list
	ROI       ROI
	Temp      DopplerTemperature
}

// ShotResult is the full reduction of one spectrogram: the chord set, the
// detected ROIs, and one ChordResult per (chord, ROI) pair in chord-major
// order. Chords whose fit failed still appear, with Temp.Fit.Converged
// false; one unfittable line never aborts the batch.
type ShotResult struct {
	Chords  *ChordSet
	ROIs    []ROI
	Results []ChordResult
}

// Reduce runs the whole pipeline on one spectrogram: bin the rows into
// chords, detect ROIs on the mean chord profile (unless rois overrides the
// search with externally chosen windows), then fit each chord's profile in
// every ROI and estimate its Doppler temperature. The wavelength slice of
// each ROI serves as the fit's coordinate axis, so fitted widths come out
// in physical units.
func (a Analyzer) Reduce(s *Spectrogram, binEdges []int, rois []ROI) (*ShotResult, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("spectrogram: %w", err)
	}
	if _, err := NewCalibration(s.Wavelength); err != nil {
		return nil, err
	}

	chords, err := BinData(s.Image, binEdges)
	if err != nil {
		return nil, err
	}

	if rois == nil {
		rois = FindROIs(MeanProfile(chords.Binned), a.Thresholds, a.WidthRelHeight)
	}
	for _, roi := range rois {
		if roi.Lo < 0 || roi.Hi > s.Cols() || roi.Lo >= roi.Hi {
			return nil, fmt.Errorf("%w: ROI [%d, %d) outside [0, %d]", ErrInvalidRange, roi.Lo, roi.Hi, s.Cols())
		}
	}

	out := &ShotResult{Chords: chords, ROIs: rois}
	for k := 0; k < chords.Chords(); k++ {
		for li, roi := range rois {
			spectra := chords.Binned[k][roi.Lo:roi.Hi]
			vector := s.Wavelength[roi.Lo:roi.Hi]
			out.Results = append(out.Results, ChordResult{
				Chord:     k,
				BinCenter: chords.BinCenters[k],
				Line:      li,
				ROI:       roi,
				Temp:      EstimateDopplerTemp(a.Constants, spectra, vector),
			})
		}
	}
	return out, nil
}
