// Package filter provides the linear filters used by the periphery model
// and the input resampler. Lowpass designs use the Kaiser-windowed sinc.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-cochlea/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 8191

	windowNormalizationFactor = 2.0
	sincZeroThreshold         = 1e-10
)

// KaiserWindow generates a Kaiser window of the specified length and β.
// The window is symmetric and peaks at 1.0 in the center.
//
//	w[n] = I₀(β·sqrt(1 − ((n − α)/α)²)) / I₀(β),  α = (N−1)/2
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}

	return window
}

// LowPassParams holds parameters for lowpass design.
type LowPassParams struct {
	// NumTaps is the filter length. Must be odd so the filter has an
	// integer group delay and can be applied with zero phase.
	NumTaps int

	// Cutoff is the normalized cutoff frequency (0 to 0.5 of the sample rate).
	Cutoff float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64
}

// Validate checks if lowpass parameters are valid.
func (p *LowPassParams) Validate() error {
	if p.NumTaps < minFilterTaps || p.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter length %d outside [%d, %d]", p.NumTaps, minFilterTaps, maxFilterTaps)
	}
	if p.NumTaps%2 == 0 {
		return fmt.Errorf("filter length %d must be odd", p.NumTaps)
	}
	if p.Cutoff <= 0 || p.Cutoff >= 0.5 {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", p.Cutoff)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation: %f dB (must be positive)", p.Attenuation)
	}
	return nil
}

// DesignLowPass designs a windowed-sinc lowpass FIR with unity DC gain.
func DesignLowPass(p LowPassParams) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	taps := windowedSinc(p.NumTaps, p.Cutoff, p.Attenuation)
	normalizeDC(taps, 1)
	return taps, nil
}

// DesignLowPassAuto designs a lowpass with cutoff (Hz) at fs, choosing the
// length from the attenuation and the transition width (Hz).
func DesignLowPassAuto(cutoff, transition, attenuation, fs float64) ([]float64, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %f", fs)
	}
	return DesignLowPass(LowPassParams{
		NumTaps:     mathutil.EstimateFilterLength(attenuation, transition/fs),
		Cutoff:      cutoff / fs,
		Attenuation: attenuation,
	})
}

// windowedSinc returns a Kaiser-windowed sinc of any length centered on
// (numTaps-1)/2. Callers validate the parameters.
func windowedSinc(numTaps int, cutoff, attenuation float64) []float64 {
	window := KaiserWindow(numTaps, mathutil.KaiserBeta(attenuation))
	taps := make([]float64, numTaps)
	center := float64(numTaps-1) / windowNormalizationFactor

	for n := range numTaps {
		x := float64(n) - center

		// sin(2πfc·x)/(πx), limit 2fc at the center tap
		sinc := windowNormalizationFactor * cutoff
		if math.Abs(x) >= sincZeroThreshold {
			sinc = math.Sin(windowNormalizationFactor*math.Pi*cutoff*x) / (math.Pi * x)
		}
		taps[n] = sinc * window[n]
	}
	return taps
}

// normalizeDC scales taps so they sum to gain.
func normalizeDC(taps []float64, gain float64) {
	if sum := f64.Sum(taps); math.Abs(sum) > sincZeroThreshold {
		f64.Scale(taps, taps, gain/sum)
	}
}
