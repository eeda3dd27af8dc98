package spectroscopy

import "fmt"

// ChordSet is the result of reducing a spectrogram's spatial rows into K
// macro-pixel chords by averaging, trading spatial resolution for
// signal-to-noise. Row k of Binned is the column-wise mean of the image
// rows [BinEdges[2k], BinEdges[2k+1]).
type ChordSet struct {
	BinEdges   []int
	BinCenters []int       // (lower+upper)/2, integer floor, pixel space
	Binned     [][]float64 // K x columns
}

// Chords returns the number of chords K.
func (c *ChordSet) Chords() int { return len(c.Binned) }

// BinData averages image rows into chords according to pairs of bin edges.
// Edges must lie within [0, rows] and each pair must satisfy lower < upper;
// a violation returns ErrInvalidRange rather than producing a silent
// empty-slice mean. An odd trailing edge is dropped.
func BinData(image [][]float64, binEdges []int) (*ChordSet, error) {
	rows := len(image)
	k := len(binEdges) / 2
	cs := &ChordSet{
		BinEdges:   append([]int(nil), binEdges...),
		BinCenters: make([]int, k),
		Binned:     make([][]float64, k),
	}
	for chord := 0; chord < k; chord++ {
		lower := binEdges[2*chord]
		upper := binEdges[2*chord+1]
		if lower < 0 || upper > rows {
			return nil, fmt.Errorf("%w: bin %d edges [%d, %d) outside [0, %d]", ErrInvalidRange, chord, lower, upper, rows)
		}
		if lower >= upper {
			return nil, fmt.Errorf("%w: bin %d edges [%d, %d)", ErrInvalidRange, chord, lower, upper)
		}
		cs.BinCenters[chord] = (lower + upper) / 2
		cs.Binned[chord] = meanRows(image[lower:upper])
	}
	return cs, nil
}

// SliceROI returns the chord-binned data restricted to the ROI's column
// window. Rows are preserved; only the wavelength axis is narrowed.
func (c *ChordSet) SliceROI(roi ROI) [][]float64 {
	out := make([][]float64, len(c.Binned))
	for i, row := range c.Binned {
		out[i] = row[roi.Lo:roi.Hi]
	}
	return out
}

// meanRows computes the column-wise arithmetic mean of a row slice.
func meanRows(rows [][]float64) []float64 {
	cols := len(rows[0])
	mean := make([]float64, cols)
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}
	return mean
}
