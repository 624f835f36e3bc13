package filter

import (
	"fmt"

	"github.com/tphakala/go-cochlea/internal/mathutil"
)

const (
	minNumPhases = 2
	maxNumPhases = 8192

	// Fewer taps per branch cannot hold the stopband and leave the DC
	// gain uneven across phases.
	minTapsPerPhase = 16

	// value and delta to the next phase
	coeffsPerTap = 2
)

// PolyphaseParams describe a polyphase lowpass bank. Frequencies are
// normalized to the branch rate, which is the rate of the signal the
// bank is applied to.
type PolyphaseParams struct {
	// NumPhases is the number of branches (e.g. 64, 256).
	NumPhases int

	// Cutoff is the -6 dB point, in (0, 0.5).
	Cutoff float64

	// TransitionBW is the transition width, in (0, 0.5).
	TransitionBW float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64
}

// Validate checks the bank parameters.
func (p *PolyphaseParams) Validate() error {
	if p.NumPhases < minNumPhases || p.NumPhases > maxNumPhases {
		return fmt.Errorf("number of phases %d out of range [%d, %d]", p.NumPhases, minNumPhases, maxNumPhases)
	}
	if p.Cutoff <= 0 || p.Cutoff >= 0.5 {
		return fmt.Errorf("cutoff frequency %f out of range (0, 0.5)", p.Cutoff)
	}
	if p.TransitionBW <= 0 || p.TransitionBW >= 0.5 {
		return fmt.Errorf("transition bandwidth %f out of range (0, 0.5)", p.TransitionBW)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("attenuation %f dB must be positive", p.Attenuation)
	}
	return nil
}

// PolyphaseBank is a windowed-sinc prototype split into NumPhases
// branches. Coefficients between adjacent phases are interpolated
// linearly, so the bank can be evaluated at any fractional delay.
//
// Storage is [tap][phase]{value, delta}: the coefficient of tap at phase
// p + frac is value + delta·frac.
type PolyphaseBank struct {
	coeffs       []float64
	numPhases    int
	tapsPerPhase int
}

// DesignPolyphase builds a bank with unity DC gain in every branch. The
// taps per branch are even so a kernel centered between taps
// TapsPerPhase/2-1 and TapsPerPhase/2 has zero delay at phase 0.
func DesignPolyphase(p PolyphaseParams) (*PolyphaseBank, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid polyphase parameters: %w", err)
	}

	// EstimateFilterLength is odd; one more tap keeps the center on a phase 0 tap.
	taps := max(mathutil.EstimateFilterLength(p.Attenuation, p.TransitionBW)+1, minTapsPerPhase)
	n := taps * p.NumPhases

	// One extra point so the last phase has a neighbour to interpolate to.
	prototype := windowedSinc(n+1, p.Cutoff/float64(p.NumPhases), p.Attenuation)
	normalizeDC(prototype, float64(p.NumPhases))

	coeffs := make([]float64, n*coeffsPerTap)
	for k := range n {
		coeffs[k*coeffsPerTap] = prototype[k]
		coeffs[k*coeffsPerTap+1] = prototype[k+1] - prototype[k]
	}

	return &PolyphaseBank{coeffs: coeffs, numPhases: p.NumPhases, tapsPerPhase: taps}, nil
}

// Coefficient returns tap of the kernel at phase + frac, frac in [0, 1).
func (b *PolyphaseBank) Coefficient(tap, phase int, frac float64) float64 {
	i := (tap*b.numPhases + phase) * coeffsPerTap
	return b.coeffs[i] + b.coeffs[i+1]*frac
}

// At evaluates the band-limited signal x at fractional index t. Samples
// outside x are zero.
//
//	y(t) = Σ_j x[⌊t⌋ + T/2 - j] · h(j, frac(t))
func (b *PolyphaseBank) At(x []float64, t float64) float64 {
	n := int(t)
	if t < 0 && float64(n) != t {
		n--
	}
	pos := (t - float64(n)) * float64(b.numPhases)
	phase := int(pos)
	frac := pos - float64(phase)
	if phase >= b.numPhases {
		phase, frac = b.numPhases-1, 1
	}

	half := b.tapsPerPhase / 2
	first := max(0, n+half-(len(x)-1))
	last := min(b.tapsPerPhase-1, n+half)

	var sum float64
	for j := first; j <= last; j++ {
		sum += x[n+half-j] * b.Coefficient(j, phase, frac)
	}
	return sum
}
