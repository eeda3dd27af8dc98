// Package spefile reads Princeton Instruments SPE camera files into
// spectroscopy.Spectrogram values. Two interchangeable strategies cover the
// format's generations: the v3 layout (binary header, frame data, trailing
// XML footer with the wavelength mapping and gating metadata) and the v2
// legacy layout (pure binary header with a polynomial wavelength
// calibration). Strategy selection is a capability probe: each loader is
// tried in order and the first structurally successful parse wins, so
// callers never depend on which generation produced a file.
package spefile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zap-plasma/doppler.report/internal/spectroscopy"
)

// SpectrogramLoader is one decoding strategy for an instrument file.
type SpectrogramLoader interface {
	// Name identifies the strategy in diagnostics.
	Name() string
	// Load decodes the file into a spectrogram, or reports a structural
	// error when the file does not match this strategy's layout.
	Load(r io.ReaderAt, size int64) (*spectroscopy.Spectrogram, error)
}

// DefaultLoaders returns the strategy chain in probe order: v3 first, the
// v2 legacy decoder as fallback.
func DefaultLoaders() []SpectrogramLoader {
	return []SpectrogramLoader{&V3Loader{}, &V2Loader{}}
}

// Read decodes an SPE file from a random-access reader, probing each
// strategy in turn.
func Read(r io.ReaderAt, size int64) (*spectroscopy.Spectrogram, error) {
	var errs []error
	for _, l := range DefaultLoaders() {
		s, err := l.Load(r, size)
		if err == nil {
			return s, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
	}
	return nil, fmt.Errorf("no loader accepted the file: %w", errors.Join(errs...))
}

// ReadFile decodes the SPE file at path.
func ReadFile(path string) (*spectroscopy.Spectrogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spe file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat spe file: %w", err)
	}
	return Read(f, info.Size())
}
