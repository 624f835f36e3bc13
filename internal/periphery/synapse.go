package periphery

import (
	"math"

	"github.com/tphakala/go-cochlea/internal/pipeline"
)

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// synapseStage converts receptor potential to an instantaneous discharge
// rate in spikes/s.
//
// The drive rises sigmoidally from SpontRate at rest to SpontRate+PeakRate.
// The driven part is scaled by a vesicle pool q in [0, 1] that is depleted
// in proportion to the driven rate and recovers towards 1 with TauRecovery:
//
//	rate = spont + (drive - spont)·q
//	dq/dt = (1 - q)/τ - depletion·(drive - spont)·q
func (p SynapseParams) synapseStage(fs float64) pipeline.Stage {
	dt := 1 / fs
	rest := sigmoid(-p.Threshold / p.Slope)

	return pipeline.Func{Kind: pipeline.StageSynapse, Fn: func(in []float64) ([]float64, error) {
		out := make([]float64, len(in))
		q := 1.0
		for i, v := range in {
			activation := (sigmoid((v-p.Threshold)/p.Slope) - rest) / (1 - rest)
			driven := p.PeakRate * max(activation, 0)

			out[i] = p.SpontRate + driven*q

			q += dt * ((1-q)/p.TauRecovery - p.Depletion*driven*q)
			q = min(max(q, 0), 1)
		}
		return out, nil
	}}
}
