package spefile

import (
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// V3Loader decodes the SPE 3.x layout: the binary header keeps the frame
// geometry, and a trailing XML footer carries the per-column wavelength
// mapping plus the intensifier and gating settings.
type V3Loader struct{}

// Name implements SpectrogramLoader.
func (*V3Loader) Name() string { return "spe-v3" }

// speFooter mirrors the subset of the SPE 3.x XML footer this pipeline
// consumes. Pulse width and delay are recorded in milliseconds.
type speFooter struct {
	XMLName      xml.Name `xml:"SpeFormat"`
	Calibrations struct {
		WavelengthMapping struct {
			Wavelength string `xml:"Wavelength"`
		} `xml:"WavelengthMapping"`
	} `xml:"Calibrations"`
	DataHistories struct {
		DataHistory struct {
			Origin struct {
				Experiment struct {
					Devices struct {
						Cameras struct {
							Camera struct {
								Intensifier struct {
									Gain int `xml:"Gain"`
								} `xml:"Intensifier"`
								Gating struct {
									RepetitiveGate struct {
										Pulse struct {
											Width float64 `xml:"width,attr"`
											Delay float64 `xml:"delay,attr"`
										} `xml:"Pulse"`
									} `xml:"RepetitiveGate"`
								} `xml:"Gating"`
							} `xml:"Camera"`
						} `xml:"Cameras"`
					} `xml:"Devices"`
				} `xml:"Experiment"`
			} `xml:"Origin"`
		} `xml:"DataHistory"`
	} `xml:"DataHistories"`
}

// Load implements SpectrogramLoader.
func (*V3Loader) Load(r io.ReaderAt, size int64) (*spectroscopy.Spectrogram, error) {
	h, err := readHeader(r, size)
	if err != nil {
		return nil, err
	}
	if h.Version < 3.0 {
		return nil, fmt.Errorf("header version %.1f has no XML footer", h.Version)
	}

	footerOffset := int64(binary.LittleEndian.Uint64(h.raw[offFooterOffset:]))
	if footerOffset < headerSize || footerOffset >= size {
		return nil, fmt.Errorf("footer offset %d outside file of %d bytes", footerOffset, size)
	}
	footerRaw := make([]byte, size-footerOffset)
	if _, err := r.ReadAt(footerRaw, footerOffset); err != nil {
		return nil, fmt.Errorf("read xml footer: %w", err)
	}

	var footer speFooter
	if err := xml.Unmarshal(footerRaw, &footer); err != nil {
		return nil, fmt.Errorf("parse xml footer: %w", err)
	}

	wavelength, err := parseWavelengths(footer.Calibrations.WavelengthMapping.Wavelength)
	if err != nil {
		return nil, err
	}
	if len(wavelength) != h.XDim {
		return nil, fmt.Errorf("wavelength mapping has %d samples for %d columns", len(wavelength), h.XDim)
	}

	img, err := decodeFrame(r, h)
	if err != nil {
		return nil, err
	}

	camera := footer.DataHistories.DataHistory.Origin.Experiment.Devices.Cameras.Camera
	s := &spectroscopy.Spectrogram{
		Image:      img,
		Wavelength: wavelength,
		Spatial:    indexAxis(h.YDim),
		Meta: spectroscopy.Metadata{
			Gain:      camera.Intensifier.Gain,
			GateWidth: 1e-3 * camera.Gating.RepetitiveGate.Pulse.Width,
			GateDelay: 1e-3 * camera.Gating.RepetitiveGate.Pulse.Delay,
		},
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("decoded spectrogram: %w", err)
	}
	return s, nil
}

// parseWavelengths splits the footer's comma-separated wavelength list.
func parseWavelengths(csv string) ([]float64, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, fmt.Errorf("footer has no wavelength mapping")
	}
	parts := strings.Split(csv, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("wavelength sample %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
