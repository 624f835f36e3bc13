package periphery

import (
	"math"

	"github.com/tphakala/go-cochlea/internal/filter"
	"github.com/tphakala/go-cochlea/internal/pipeline"
)

// The membrane cutoff is limited to this fraction of the sample rate.
const maxCutoffFraction = 0.4

// transductionStage maps BM motion to a saturating, asymmetric receptor
// response. Excitatory deflection saturates at cihc, inhibitory at
// -cihc/Asymmetry; the slope at rest is the same on both sides.
func (p ReceptorParams) transductionStage(cihc float64) pipeline.Stage {
	return pipeline.Map(pipeline.StageTransduction, func(x float64) float64 {
		u := x / p.Scale
		if u >= 0 {
			return cihc * math.Tanh(u)
		}
		return cihc * math.Tanh(p.Asymmetry*u) / p.Asymmetry
	})
}

// membraneStage lowpass-filters the receptor response with a zero-phase
// Kaiser FIR designed for fs.
func (p ReceptorParams) membraneStage(fs float64) (pipeline.Stage, error) {
	cutoff := min(p.Cutoff, maxCutoffFraction*fs)
	transition := min(p.Transition, cutoff)

	taps, err := filter.DesignLowPassAuto(cutoff, transition, p.Attenuation, fs)
	if err != nil {
		return nil, err
	}

	return pipeline.Func{Kind: pipeline.StageMembrane, Fn: func(in []float64) ([]float64, error) {
		// Convolver buffers are per call so the stage can run concurrently.
		return filter.NewConvolver(taps).Same(in), nil
	}}, nil
}
