package periphery

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// generateSpikes draws spike times (s) from an inhomogeneous Bernoulli
// process, one trial per sample. After a spike the fiber is silent for
// AbsRefractory and then recovers exponentially with RelRefractory.
// Negative rates count as zero.
func (p SynapseParams) generateSpikes(rate []float64, fs float64, rng *rand.Rand) ([]float64, error) {
	dt := 1 / fs
	lastSpike := math.Inf(-1)
	var spikes []float64

	for i, r := range rate {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("non-finite rate at sample %d", i)
		}

		t := float64(i) * dt
		since := t - lastSpike
		if since < p.AbsRefractory {
			continue
		}

		recovery := 1.0
		if p.RelRefractory > 0 && !math.IsInf(since, 1) {
			recovery = -math.Expm1(-(since - p.AbsRefractory) / p.RelRefractory)
		}

		prob := max(r, 0) * dt * recovery
		if rng.Float64() < prob {
			spikes = append(spikes, t)
			lastSpike = t
		}
	}

	if spikes == nil {
		spikes = []float64{}
	}
	return spikes, nil
}
