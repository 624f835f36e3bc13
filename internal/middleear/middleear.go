// Package middleear implements the outer/middle-ear filter as a
// zero-phase magnitude filter in the frequency domain.
//
// The gain curve is given as a (frequency, dB) lookup table. For every FFT
// bin the gain is interpolated with a not-a-knot cubic spline; bins outside
// the table domain pass unchanged.
package middleear

import (
	"embed"
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-cochlea/internal/mathutil"
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// MinSampleRate is the exclusive lower bound on the sample rate accepted by Apply.
const MinSampleRate = 40e3

// Below this many points a cubic spline is not determined.
const minCubicPoints = 4

const defaultTableFile = "data/me_filter_human.csv"

//go:embed data/*.csv
var dataFS embed.FS

// Sentinel errors.
var (
	ErrSampleRateTooLow = errors.New("sample rate too low for middle-ear filter")
	ErrInvalidTable     = errors.New("invalid middle-ear table")
)

// Table is a magnitude response given at discrete frequencies.
type Table struct {
	Freq []float64 // Hz, strictly increasing
	Gain []float64 // dB
}

// Validate checks the table shape.
func (t *Table) Validate() error {
	if len(t.Freq) != len(t.Gain) {
		return fmt.Errorf("%w: %d frequencies but %d gains", ErrInvalidTable, len(t.Freq), len(t.Gain))
	}
	if len(t.Freq) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidTable, len(t.Freq))
	}
	for i := range t.Freq {
		if math.IsNaN(t.Freq[i]) || math.IsInf(t.Freq[i], 0) ||
			math.IsNaN(t.Gain[i]) || math.IsInf(t.Gain[i], 0) {
			return fmt.Errorf("%w: non-finite value at row %d", ErrInvalidTable, i)
		}
		if i > 0 && t.Freq[i] <= t.Freq[i-1] {
			return fmt.Errorf("%w: frequencies not strictly increasing at row %d", ErrInvalidTable, i)
		}
	}
	return nil
}

// Filter applies a middle-ear magnitude response. It holds only the fitted
// interpolant and is safe for concurrent use.
type Filter struct {
	lo, hi float64
	gain   interp.Predictor
}

// New fits a filter to table.
func New(table *Table) (*Filter, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidTable)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	var fitter interp.FittablePredictor
	if len(table.Freq) >= minCubicPoints {
		fitter = &interp.NotAKnotCubic{}
	} else {
		fitter = &interp.PiecewiseLinear{}
	}
	if err := fitter.Fit(table.Freq, table.Gain); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	return &Filter{
		lo:   table.Freq[0],
		hi:   table.Freq[len(table.Freq)-1],
		gain: fitter,
	}, nil
}

// Default returns the built-in human outer/middle-ear filter.
func Default() (*Filter, error) {
	f, err := dataFS.Open(defaultTableFile)
	if err != nil {
		return nil, fmt.Errorf("open embedded table: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := LoadTable(f)
	if err != nil {
		return nil, err
	}
	return New(table)
}

// GainDB returns the interpolated gain at freq. Outside the table domain it is 0 dB.
func (f *Filter) GainDB(freq float64) float64 {
	if freq < f.lo || freq > f.hi {
		return 0
	}
	return f.gain.Predict(freq)
}

// Apply filters signal sampled at fs and returns a new slice of the same length.
func (f *Filter) Apply(signal []float64, fs float64) ([]float64, error) {
	if !(fs > MinSampleRate) {
		return nil, fmt.Errorf("%w: %.0f Hz (need > %.0f Hz)", ErrSampleRateTooLow, fs, MinSampleRate)
	}

	n := len(signal)
	if n == 0 {
		return []float64{}, nil
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, signal)

	freqs := make([]float64, len(coeffs))
	if len(freqs) == 1 {
		freqs[0] = 0
	} else {
		floats.Span(freqs, 0, fs/2)
	}

	ratios := make([]complex128, len(coeffs))
	for i, freq := range freqs {
		ratios[i] = complex(mathutil.DBToRatio(f.GainDB(freq)), 0)
	}
	c128.Mul(coeffs, coeffs, ratios)

	out := fft.Sequence(nil, coeffs)
	f64.Scale(out, out, 1/float64(n))

	return out, nil
}
