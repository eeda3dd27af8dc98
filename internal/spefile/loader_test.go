package spefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// putHeader fills the fixed fields every synthetic file needs.
func putHeader(h []byte, xdim, ydim int, datatype int16, version float32) {
	binary.LittleEndian.PutUint16(h[offXDim:], uint16(xdim))
	binary.LittleEndian.PutUint16(h[offYDim:], uint16(ydim))
	binary.LittleEndian.PutUint16(h[offDatatype:], uint16(datatype))
	binary.LittleEndian.PutUint32(h[offNumFrames:], 1)
	binary.LittleEndian.PutUint32(h[offHeaderVersion:], math.Float32bits(version))
}

// buildV2 assembles a legacy file: binary header with a wavelength
// polynomial, then uint16 pixels image[y][x] = y*100 + x.
func buildV2(t *testing.T, xdim, ydim int, order int, coeffs []float64, gain uint16) []byte {
	t.Helper()
	h := make([]byte, headerSize)
	putHeader(h, xdim, ydim, dtUint16, 2.5)
	binary.LittleEndian.PutUint16(h[offGain:], gain)
	h[offPolyOrder] = byte(order)
	for i, c := range coeffs {
		binary.LittleEndian.PutUint64(h[offPolyCoeffs+8*i:], math.Float64bits(c))
	}

	var buf bytes.Buffer
	buf.Write(h)
	for y := 0; y < ydim; y++ {
		for x := 0; x < xdim; x++ {
			var px [2]byte
			binary.LittleEndian.PutUint16(px[:], uint16(y*100+x))
			buf.Write(px[:])
		}
	}
	return buf.Bytes()
}

// buildV3 assembles a v3 file: binary header, float32 pixels
// image[y][x] = y + x/10, then the XML footer.
func buildV3(t *testing.T, xdim, ydim int, wavelengths []float64, footerXML string) []byte {
	t.Helper()
	h := make([]byte, headerSize)
	putHeader(h, xdim, ydim, dtFloat32, 3.0)

	var data bytes.Buffer
	for y := 0; y < ydim; y++ {
		for x := 0; x < xdim; x++ {
			var px [4]byte
			binary.LittleEndian.PutUint32(px[:], math.Float32bits(float32(y)+float32(x)/10))
			data.Write(px[:])
		}
	}

	if footerXML == "" {
		samples := make([]string, len(wavelengths))
		for i, w := range wavelengths {
			samples[i] = fmt.Sprintf("%g", w)
		}
		footerXML = `<SpeFormat version="3.0">` +
			`<Calibrations><WavelengthMapping><Wavelength>` + strings.Join(samples, ",") + `</Wavelength></WavelengthMapping></Calibrations>` +
			`<DataHistories><DataHistory><Origin><Experiment><Devices><Cameras><Camera>` +
			`<Intensifier><Gain>100</Gain></Intensifier>` +
			`<Gating><RepetitiveGate><Pulse width="0.002" delay="0.03"/></RepetitiveGate></Gating>` +
			`</Camera></Cameras></Devices></Experiment></Origin></DataHistory></DataHistories>` +
			`</SpeFormat>`
	}

	footerOffset := headerSize + data.Len()
	binary.LittleEndian.PutUint64(h[offFooterOffset:], uint64(footerOffset))

	var buf bytes.Buffer
	buf.Write(h)
	buf.Write(data.Bytes())
	buf.WriteString(footerXML)
	return buf.Bytes()
}

func TestRead_V3(t *testing.T) {
	wavelengths := []float64{500.0, 500.1, 500.2, 500.3}
	raw := buildV3(t, 4, 3, wavelengths, "")

	s, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Rows())
	assert.Equal(t, 4, s.Cols())
	assert.Equal(t, wavelengths, s.Wavelength)
	assert.Equal(t, 100, s.Meta.Gain)
	assert.InDelta(t, 2e-6, s.Meta.GateWidth, 1e-12, "pulse width is stored in ms")
	assert.InDelta(t, 3e-5, s.Meta.GateDelay, 1e-12)

	assert.InDelta(t, 0.0, s.Image[0][0], 1e-6)
	assert.InDelta(t, 2.3, s.Image[2][3], 1e-6)
}

func TestRead_V2Fallback(t *testing.T) {
	// Linear calibration: lambda(x) = 400 + 0.5*x.
	raw := buildV2(t, 5, 4, 1, []float64{400, 0.5}, 75)

	s, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Rows())
	assert.Equal(t, []float64{400, 400.5, 401, 401.5, 402}, s.Wavelength)
	assert.Equal(t, 75, s.Meta.Gain)
	assert.Zero(t, s.Meta.GateWidth, "v2 files carry no gate timing")

	assert.Equal(t, 0.0, s.Image[0][0])
	assert.Equal(t, 302.0, s.Image[3][2])
}

func TestRead_V2QuadraticCalibration(t *testing.T) {
	raw := buildV2(t, 4, 2, 2, []float64{400, 1, 0.25}, 1)

	s, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	assert.InDelta(t, 400.0, s.Wavelength[0], 1e-12)
	assert.InDelta(t, 401.25, s.Wavelength[1], 1e-12)
	assert.InDelta(t, 403.0, s.Wavelength[2], 1e-12)
	assert.InDelta(t, 405.25, s.Wavelength[3], 1e-12)
}

func TestRead_V3BadFooterDoesNotFallThroughToV2(t *testing.T) {
	raw := buildV3(t, 4, 3, nil, "<SpeFormat><broken")

	_, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spe-v3")
	assert.Contains(t, err.Error(), "spe-v2")
}

func TestRead_WavelengthCountMismatch(t *testing.T) {
	raw := buildV3(t, 4, 3, []float64{500.0, 500.1}, "")

	_, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wavelength mapping")
}

func TestRead_Truncated(t *testing.T) {
	raw := buildV2(t, 5, 4, 1, []float64{400, 0.5}, 1)
	short := raw[:headerSize+3] // header intact, frame data cut off

	_, err := Read(bytes.NewReader(short), int64(len(short)))
	require.Error(t, err)
}

func TestRead_UnknownDatatype(t *testing.T) {
	raw := buildV2(t, 3, 3, 1, []float64{400, 1}, 1)
	binary.LittleEndian.PutUint16(raw[offDatatype:], 99)

	_, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "datatype")
}

func TestRead_TooShortForHeader(t *testing.T) {
	_, err := Read(bytes.NewReader(make([]byte, 100)), 100)
	require.Error(t, err)
}
