package spefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// The fixed binary header is 4100 bytes in every SPE generation; frame data
// starts immediately after it. Field offsets below are the subset of the
// WinView header this package consumes.
const (
	headerSize = 4100

	offXDim          = 42   // uint16: columns per frame
	offDatatype      = 108  // int16: pixel datatype code
	offGain          = 198  // uint16: intensifier gain (v2)
	offYDim          = 656  // uint16: rows per frame
	offFooterOffset  = 678  // uint64: XML footer position (v3 only)
	offNumFrames     = 1446 // int32: frame count
	offHeaderVersion = 1992 // float32: file format revision

	offPolyOrder  = 3101 // uint8: wavelength polynomial order (v2)
	offPolyCoeffs = 3263 // 6 x float64: wavelength polynomial coefficients (v2)
)

// Pixel datatype codes shared by both format generations.
const (
	dtFloat32 = 0
	dtInt32   = 1
	dtInt16   = 2
	dtUint16  = 3
	dtFloat64 = 5
	dtUint8   = 6
	dtUint32  = 8
)

// header is the decoded fixed-size region of an SPE file.
type header struct {
	raw       [headerSize]byte
	XDim      int
	YDim      int
	Datatype  int16
	NumFrames int
	Version   float32
}

// readHeader pulls the 4100-byte fixed region and decodes the shared fields.
func readHeader(r io.ReaderAt, size int64) (*header, error) {
	if size < headerSize {
		return nil, fmt.Errorf("file too short for SPE header: %d bytes", size)
	}
	h := &header{}
	if _, err := r.ReadAt(h.raw[:], 0); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h.XDim = int(binary.LittleEndian.Uint16(h.raw[offXDim:]))
	h.YDim = int(binary.LittleEndian.Uint16(h.raw[offYDim:]))
	h.Datatype = int16(binary.LittleEndian.Uint16(h.raw[offDatatype:]))
	h.NumFrames = int(int32(binary.LittleEndian.Uint32(h.raw[offNumFrames:])))
	h.Version = math.Float32frombits(binary.LittleEndian.Uint32(h.raw[offHeaderVersion:]))

	if h.XDim <= 0 || h.YDim <= 0 {
		return nil, fmt.Errorf("degenerate frame dimensions %dx%d", h.XDim, h.YDim)
	}
	if h.NumFrames <= 0 {
		return nil, fmt.Errorf("no frames in file (count %d)", h.NumFrames)
	}
	return h, nil
}

// pixelSize returns the byte width of one pixel for a datatype code.
func pixelSize(datatype int16) (int, error) {
	switch datatype {
	case dtFloat32, dtInt32, dtUint32:
		return 4, nil
	case dtInt16, dtUint16:
		return 2, nil
	case dtFloat64:
		return 8, nil
	case dtUint8:
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown pixel datatype %d", datatype)
	}
}

// decodeFrame converts the first frame's raw pixels into a rows x cols
// float64 image, row-major as stored on disk.
func decodeFrame(r io.ReaderAt, h *header) ([][]float64, error) {
	px, err := pixelSize(h.Datatype)
	if err != nil {
		return nil, err
	}
	n := h.XDim * h.YDim
	buf := make([]byte, n*px)
	if _, err := r.ReadAt(buf, headerSize); err != nil {
		return nil, fmt.Errorf("read frame data: %w", err)
	}

	flat := make([]float64, n)
	for i := 0; i < n; i++ {
		b := buf[i*px:]
		switch h.Datatype {
		case dtFloat32:
			flat[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case dtInt32:
			flat[i] = float64(int32(binary.LittleEndian.Uint32(b)))
		case dtInt16:
			flat[i] = float64(int16(binary.LittleEndian.Uint16(b)))
		case dtUint16:
			flat[i] = float64(binary.LittleEndian.Uint16(b))
		case dtFloat64:
			flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case dtUint8:
			flat[i] = float64(b[0])
		case dtUint32:
			flat[i] = float64(binary.LittleEndian.Uint32(b))
		}
	}

	img := make([][]float64, h.YDim)
	for y := 0; y < h.YDim; y++ {
		img[y] = flat[y*h.XDim : (y+1)*h.XDim]
	}
	return img, nil
}

// indexAxis returns the axis 0, 1, ..., n-1.
func indexAxis(n int) []float64 {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(i)
	}
	return axis
}
