package periphery

import (
	"fmt"

	"github.com/tphakala/go-cochlea/internal/params"
)

// BMParams configure the basilar membrane stage.
type BMParams struct {
	Order       int
	ERBScale    float64
	OHCGainDB   float64
	Knee        float64
	Compression float64
}

func loadBM(s *params.Set) (BMParams, error) {
	var p BMParams
	order, err := s.Int("ORDER")
	if err != nil {
		return p, err
	}
	p.Order = order

	err = s.Floats(
		[]string{"ERB_SCALE", "OHC_GAIN_DB", "KNEE_PA", "COMPRESSION"},
		&p.ERBScale, &p.OHCGainDB, &p.Knee, &p.Compression,
	)
	if err != nil {
		return p, err
	}

	switch {
	case p.Order < 1:
		return p, fmt.Errorf("%s: ORDER must be positive, got %d", s.Name(), p.Order)
	case p.ERBScale <= 0:
		return p, fmt.Errorf("%s: ERB_SCALE must be positive", s.Name())
	case p.Knee <= 0:
		return p, fmt.Errorf("%s: KNEE_PA must be positive", s.Name())
	case p.Compression <= 0 || p.Compression > 1:
		return p, fmt.Errorf("%s: COMPRESSION must be in (0, 1]", s.Name())
	}
	return p, nil
}

// ReceptorParams configure IHC transduction and the membrane lowpass.
type ReceptorParams struct {
	Scale       float64
	Asymmetry   float64
	Cutoff      float64
	Transition  float64
	Attenuation float64
}

func loadReceptor(s *params.Set) (ReceptorParams, error) {
	var p ReceptorParams
	err := s.Floats(
		[]string{"TRANSDUCTION_SCALE", "ASYMMETRY", "MEMBRANE_CUTOFF", "MEMBRANE_TRANSITION", "MEMBRANE_ATTEN"},
		&p.Scale, &p.Asymmetry, &p.Cutoff, &p.Transition, &p.Attenuation,
	)
	if err != nil {
		return p, err
	}

	if p.Scale <= 0 || p.Asymmetry <= 0 || p.Cutoff <= 0 || p.Transition <= 0 || p.Attenuation <= 0 {
		return p, fmt.Errorf("%s: all receptor parameters must be positive", s.Name())
	}
	return p, nil
}

// SynapseParams configure one fiber type's synapse and spike generator.
type SynapseParams struct {
	SpontRate     float64 // spikes/s
	PeakRate      float64 // spikes/s above spontaneous
	Threshold     float64
	Slope         float64
	TauRecovery   float64 // s
	Depletion     float64
	AbsRefractory float64 // s
	RelRefractory float64 // s
}

func loadSynapse(s *params.Set) (SynapseParams, error) {
	var p SynapseParams
	err := s.Floats(
		[]string{
			"SPONT_RATE", "PEAK_RATE", "THRESHOLD", "SLOPE",
			"TAU_RECOVERY", "DEPLETION", "ABS_REFRACTORY", "REL_REFRACTORY",
		},
		&p.SpontRate, &p.PeakRate, &p.Threshold, &p.Slope,
		&p.TauRecovery, &p.Depletion, &p.AbsRefractory, &p.RelRefractory,
	)
	if err != nil {
		return p, err
	}

	switch {
	case p.SpontRate < 0 || p.PeakRate < 0:
		return p, fmt.Errorf("%s: rates must be non-negative", s.Name())
	case p.Slope <= 0 || p.TauRecovery <= 0:
		return p, fmt.Errorf("%s: SLOPE and TAU_RECOVERY must be positive", s.Name())
	case p.Depletion < 0 || p.AbsRefractory < 0 || p.RelRefractory < 0:
		return p, fmt.Errorf("%s: DEPLETION and refractory periods must be non-negative", s.Name())
	}
	return p, nil
}
