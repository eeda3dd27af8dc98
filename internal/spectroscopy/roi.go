package spectroscopy

import "math"

// PeakThresholds configures the automatic line search. Prominence is the
// minimum peak prominence required to count as a spectral line. RelHeight is
// the relative height recognized by the peak search; it does not filter
// detections on its own and is reserved for width-based gating.
type PeakThresholds struct {
	Prominence float64
	RelHeight  float64
}

// ROI is a pixel-space column window [Lo, Hi) isolating one spectral line.
type ROI struct {
	Lo int
	Hi int
}

// DefaultWidthRelHeight is the relative height at which the window edges are
// measured around each detected peak: 0.95 of the prominence below the peak,
// i.e. near the peak base.
const DefaultWidthRelHeight = 0.95

// FindROIs locates spectral lines in a chord-averaged profile and returns a
// pixel-space window per line, in ascending peak order. Detection keeps
// local maxima whose prominence reaches thresholds.Prominence; plateaus
// resolve to their leftmost index. Window edges are then measured at
// widthRelHeight (<= 0 selects DefaultWidthRelHeight). A profile with no
// qualifying peaks yields an empty slice; that is not an error.
func FindROIs(profile []float64, thresholds PeakThresholds, widthRelHeight float64) []ROI {
	if widthRelHeight <= 0 {
		widthRelHeight = DefaultWidthRelHeight
	}
	var rois []ROI
	for _, p := range findPeaks(profile, thresholds.Prominence) {
		lo, hi := peakWindow(profile, p, widthRelHeight)
		rois = append(rois, ROI{Lo: lo, Hi: hi})
	}
	return rois
}

// peak is one detected local maximum with its prominence and the indices of
// the bases bounding its prominence interval.
type peak struct {
	idx        int
	prominence float64
	leftBase   int
	rightBase  int
}

// findPeaks returns local maxima whose prominence reaches minProminence,
// in index order. A flat-topped maximum counts once, at its leftmost sample.
func findPeaks(profile []float64, minProminence float64) []peak {
	n := len(profile)
	var peaks []peak
	for i := 1; i < n-1; i++ {
		if profile[i] <= profile[i-1] {
			continue
		}
		// Walk any plateau; the peak index stays at the left edge.
		j := i
		for j+1 < n && profile[j+1] == profile[i] {
			j++
		}
		if j+1 >= n || profile[j+1] >= profile[i] {
			i = j
			continue
		}
		p := measureProminence(profile, i)
		if p.prominence >= minProminence {
			peaks = append(peaks, p)
		}
		i = j
	}
	return peaks
}

// measureProminence computes a peak's prominence: its height above the
// higher of the two base minima, where each base is the lowest sample
// between the peak and the nearest higher sample (or the signal edge).
func measureProminence(profile []float64, idx int) peak {
	h := profile[idx]

	leftMin, leftBase := h, idx
	for k := idx - 1; k >= 0; k-- {
		if profile[k] > h {
			break
		}
		if profile[k] < leftMin {
			leftMin, leftBase = profile[k], k
		}
	}

	rightMin, rightBase := h, idx
	for k := idx + 1; k < len(profile); k++ {
		if profile[k] > h {
			break
		}
		if profile[k] < rightMin {
			rightMin, rightBase = profile[k], k
		}
	}

	return peak{
		idx:        idx,
		prominence: h - math.Max(leftMin, rightMin),
		leftBase:   leftBase,
		rightBase:  rightBase,
	}
}

// peakWindow measures the window edges of a peak at the evaluation height
// h - prominence*relHeight. The crossing on each side is located by linear
// interpolation between samples and never extends past the peak's bases;
// the fractional crossings widen to integer edges covering [lo, hi).
func peakWindow(profile []float64, p peak, relHeight float64) (lo, hi int) {
	evalHeight := profile[p.idx] - p.prominence*relHeight

	left := float64(p.leftBase)
	for k := p.idx; k > p.leftBase; k-- {
		if profile[k-1] <= evalHeight {
			left = float64(k-1) + (evalHeight-profile[k-1])/(profile[k]-profile[k-1])
			break
		}
	}

	right := float64(p.rightBase)
	for k := p.idx; k < p.rightBase; k++ {
		if profile[k+1] <= evalHeight {
			right = float64(k) + (profile[k]-evalHeight)/(profile[k]-profile[k+1])
			break
		}
	}

	lo = int(math.Floor(left))
	hi = int(math.Ceil(right)) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > len(profile) {
		hi = len(profile)
	}
	return lo, hi
}
