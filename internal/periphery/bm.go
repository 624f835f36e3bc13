package periphery

import (
	"math"

	"github.com/tphakala/go-cochlea/internal/filter"
	"github.com/tphakala/go-cochlea/internal/mathutil"
	"github.com/tphakala/go-cochlea/internal/pipeline"
)

// gammatoneStage filters at cf with the configured order and bandwidth.
func (p BMParams) gammatoneStage(cf, fs float64) (pipeline.Stage, error) {
	gt, err := filter.NewAuditoryGammatone(cf, fs, p.ERBScale, p.Order)
	if err != nil {
		return nil, err
	}
	return pipeline.Func{Kind: pipeline.StageBasilarMembrane, Fn: func(in []float64) ([]float64, error) {
		return gt.Apply(in), nil
	}}, nil
}

// compressionStage applies a broken-stick nonlinearity: linear gain below
// the knee, power-law growth above it. The linear gain is the OHC gain
// scaled (in dB) by cohc, so cohc = 0 leaves unity gain and only the
// compressive branch.
func (p BMParams) compressionStage(cohc float64) pipeline.Stage {
	gain := mathutil.DBToRatio(p.OHCGainDB * cohc)
	// Continuous at the knee.
	scale := gain * math.Pow(p.Knee, 1-p.Compression)
	exponent := p.Compression

	return pipeline.Map(pipeline.StageCompression, func(x float64) float64 {
		a := math.Abs(x)
		if a == 0 {
			return 0
		}
		return math.Copysign(min(gain*a, scale*math.Pow(a, exponent)), x)
	})
}
