// Package resample changes the sample rate of whole signals.
//
// Polyphase evaluates a Kaiser-windowed sinc bank at every output instant
// and band-limits to the lower of the two Nyquist frequencies, so it is
// safe in both directions. Cubic is a cheap Catmull-Rom interpolator for
// upsampling only.
//
// Both keep the time span of the input: output sample k lies at k/to
// seconds and the last output sample does not pass the last input sample.
package resample

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-cochlea/internal/filter"
)

var (
	// ErrInvalidRate is returned for non-positive or non-finite rates.
	ErrInvalidRate = errors.New("invalid sample rate")

	// ErrAliasing is returned when a method without an anti-aliasing
	// filter is asked to downsample.
	ErrAliasing = errors.New("resampling would alias")

	// ErrInvalidQuality is returned for unknown quality presets.
	ErrInvalidQuality = errors.New("invalid resampling quality")
)

// Quality selects a speed/accuracy trade-off.
type Quality int

const (
	// QualityQuick upsamples with Cubic and downsamples with a short
	// 64-phase bank at 80 dB.
	QualityQuick Quality = iota
	// QualityHigh always uses a 256-phase bank at 100 dB.
	QualityHigh
)

// Band edges relative to the lower Nyquist frequency.
const (
	cutoffFraction     = 0.95
	transitionFraction = 0.1
)

type qualityParams struct {
	phases      int
	attenuation float64
}

var qualityTable = map[Quality]qualityParams{
	QualityQuick: {phases: 64, attenuation: 80},
	QualityHigh:  {phases: 256, attenuation: 100},
}

var qualityNames = map[Quality]string{
	QualityQuick: "quick",
	QualityHigh:  "high",
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality parses "quick" or "high".
func ParseQuality(s string) (Quality, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for q, n := range qualityNames {
		if n == name {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

// Resample converts input from rate from to rate to at quality q.
func Resample(input []float64, from, to float64, q Quality) ([]float64, error) {
	if _, ok := qualityTable[q]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	if q == QualityQuick && to >= from {
		return Cubic(input, from, to)
	}
	return Polyphase(input, from, to, q)
}

// Polyphase converts input from rate from to rate to through a polyphase
// lowpass bank. Content above the lower Nyquist frequency is removed
// before it can alias. Samples outside the input are taken as zero.
func Polyphase(input []float64, from, to float64, q Quality) ([]float64, error) {
	if err := checkRates(from, to); err != nil {
		return nil, err
	}
	qp, ok := qualityTable[q]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}

	n := len(input)
	if n == 0 {
		return []float64{}, nil
	}
	if from == to {
		return append([]float64(nil), input...), nil
	}

	nyquist := min(from, to) / 2
	bank, err := filter.DesignPolyphase(filter.PolyphaseParams{
		NumPhases:    qp.phases,
		Cutoff:       cutoffFraction * nyquist / from,
		TransitionBW: transitionFraction * nyquist / from,
		Attenuation:  qp.attenuation,
	})
	if err != nil {
		return nil, err
	}

	step := from / to
	output := make([]float64, outputLength(n, step))
	for k := range output {
		output[k] = bank.At(input, float64(k)*step)
	}
	return output, nil
}

func checkRates(from, to float64) error {
	if !(from > 0) || !(to > 0) || math.IsInf(from, 0) || math.IsInf(to, 0) {
		return fmt.Errorf("%w: from=%v to=%v", ErrInvalidRate, from, to)
	}
	return nil
}

// outputLength counts output samples at k·step input samples that do not
// pass the last of n input samples.
func outputLength(n int, step float64) int {
	return int(math.Floor(float64(n-1)/step)) + 1
}
