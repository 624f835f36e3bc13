package cochlea

import "github.com/tphakala/go-cochlea/internal/middleear"

// Signal limits.
const (
	// MaxAmplitude is the exclusive bound on |sample| in Pa (about 214 dB SPL).
	// Larger values almost always mean the signal is not in pascals.
	MaxAmplitude = 1000.0

	// MinMiddleEarRate is the exclusive lower bound on the sample rate
	// when the middle-ear filter is enabled.
	MinMiddleEarRate = middleear.MinSampleRate

	// ReferencePressure is 0 dB SPL in Pa.
	ReferencePressure = 20e-6
)

// Common model sample rates in Hz.
const (
	// Rate100k is the rate the periphery models are usually run at.
	Rate100k = 100000

	// RateHiRes96 is the 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateCD is the CD sample rate. It is below MinMiddleEarRate, so
	// CD-rate recordings must be resampled or run with SkipMiddleEar.
	RateCD = 44100
)
