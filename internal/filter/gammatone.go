package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-cochlea/internal/mathutil"
)

// ERBBandwidthFactor converts ERB to the gammatone bandwidth parameter b
// for a fourth-order filter (Patterson et al. 1992).
const ERBBandwidthFactor = 1.019

// Gammatone is an all-pole gammatone filter centered at CF, implemented as
// a cascade of complex one-pole lowpass filters on the base-band signal
// (frequency shift down by CF, lowpass, shift back up). Gain at CF is unity.
type Gammatone struct {
	cf    float64
	fs    float64
	order int
	pole  float64
}

// NewGammatone creates a gammatone filter. bandwidth is the b parameter in
// Hz; pass ERBBandwidthFactor·ERB(cf) for the standard auditory filter.
func NewGammatone(cf, fs, bandwidth float64, order int) (*Gammatone, error) {
	switch {
	case fs <= 0:
		return nil, fmt.Errorf("invalid sample rate: %f", fs)
	case cf <= 0 || cf >= fs/2:
		return nil, fmt.Errorf("center frequency %.1f Hz outside (0, %.1f)", cf, fs/2)
	case bandwidth <= 0:
		return nil, fmt.Errorf("invalid bandwidth: %f", bandwidth)
	case order < 1:
		return nil, fmt.Errorf("invalid gammatone order: %d", order)
	}

	return &Gammatone{
		cf:    cf,
		fs:    fs,
		order: order,
		pole:  math.Exp(-2 * math.Pi * bandwidth / fs),
	}, nil
}

// NewAuditoryGammatone creates the ERB-scaled gammatone at cf.
// erbScale widens (>1) or narrows (<1) the bandwidth.
func NewAuditoryGammatone(cf, fs, erbScale float64, order int) (*Gammatone, error) {
	return NewGammatone(cf, fs, erbScale*ERBBandwidthFactor*mathutil.ERB(cf), order)
}

// Apply filters x from rest and returns a new slice.
func (g *Gammatone) Apply(x []float64) []float64 {
	out := make([]float64, len(x))
	state := make([]complex128, g.order)
	gain := complex(1-g.pole, 0)
	pole := complex(g.pole, 0)
	omega := 2 * math.Pi * g.cf / g.fs

	for n, v := range x {
		s, c := math.Sincos(omega * float64(n))
		down := complex(c, -s)
		up := complex(c, s)

		y := complex(v, 0) * down
		for k := range state {
			state[k] = gain*y + pole*state[k]
			y = state[k]
		}
		out[n] = 2 * real(y*up)
	}

	return out
}
