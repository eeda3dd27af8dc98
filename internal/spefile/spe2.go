package spefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// V2Loader decodes the legacy SPE v2.x layout, where everything lives in the
// binary header: the wavelength axis comes from the stored calibration
// polynomial evaluated per column. Gate timing is not recorded in this
// generation, so the metadata carries zero width and delay.
type V2Loader struct{}

// Name implements SpectrogramLoader.
func (*V2Loader) Name() string { return "spe-v2" }

// Load implements SpectrogramLoader.
func (*V2Loader) Load(r io.ReaderAt, size int64) (*spectroscopy.Spectrogram, error) {
	h, err := readHeader(r, size)
	if err != nil {
		return nil, err
	}
	if h.Version >= 3.0 {
		return nil, fmt.Errorf("header version %.1f is not a v2 file", h.Version)
	}

	img, err := decodeFrame(r, h)
	if err != nil {
		return nil, err
	}

	order := int(h.raw[offPolyOrder])
	if order < 1 || order > 5 {
		return nil, fmt.Errorf("wavelength polynomial order %d out of range", order)
	}
	var coeffs [6]float64
	for i := range coeffs {
		coeffs[i] = math.Float64frombits(binary.LittleEndian.Uint64(h.raw[offPolyCoeffs+8*i:]))
	}

	wavelength := make([]float64, h.XDim)
	for x := range wavelength {
		v := 0.0
		for k := order; k >= 0; k-- {
			v = v*float64(x) + coeffs[k]
		}
		wavelength[x] = v
	}

	s := &spectroscopy.Spectrogram{
		Image:      img,
		Wavelength: wavelength,
		Spatial:    indexAxis(h.YDim),
		Meta: spectroscopy.Metadata{
			Gain: int(binary.LittleEndian.Uint16(h.raw[offGain:])),
		},
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("decoded spectrogram: %w", err)
	}
	return s, nil
}
