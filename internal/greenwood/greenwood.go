// Package greenwood maps between cochlear place and characteristic frequency.
//
// The mapping follows Greenwood (1990):
//
//	f = A · (10^(a·x) − k)
//	x = log10(f/A + k) / a
//
// where x is the relative distance from the apex. Species constants match
// DSAM's GenerateGreenwood_CFList so channel sets line up with the DSAM
// filterbank used by the reference models.
package greenwood

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidRange indicates a range that cannot be mapped.
var ErrInvalidRange = errors.New("invalid frequency range")

// Params are the Greenwood constants for one species.
type Params struct {
	A     float64 // scaling constant, Hz
	K     float64 // integration constant
	Alpha float64 // place slope
}

// Species constants.
var (
	Human     = Params{A: 165.4, K: 0.88, Alpha: 2.1}
	GuineaPig = Params{A: 350.0, K: 0.85, Alpha: 2.1}
	Cat       = Params{A: 456.0, K: 0.8, Alpha: 2.1}
)

// Place returns the relative cochlear position of frequency f.
func (p Params) Place(f float64) float64 {
	return math.Log10(f/p.A+p.K) / p.Alpha
}

// Frequency returns the characteristic frequency at relative position x.
func (p Params) Frequency(x float64) float64 {
	return p.A * (math.Pow(10, p.Alpha*x) - p.K)
}

// Space returns count frequencies between lo and hi spaced uniformly in
// cochlear place. The first and last values are exactly lo and hi.
func (p Params) Space(lo, hi float64, count int) ([]float64, error) {
	switch {
	case count < 1:
		return nil, fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidRange, count)
	case !(lo > 0) || math.IsInf(lo, 0):
		return nil, fmt.Errorf("%w: minimum frequency must be positive, got %v", ErrInvalidRange, lo)
	case !(hi >= lo) || math.IsInf(hi, 0):
		return nil, fmt.Errorf("%w: maximum %v below minimum %v", ErrInvalidRange, hi, lo)
	}

	if count == 1 {
		return []float64{lo}, nil
	}

	places := floats.Span(make([]float64, count), p.Place(lo), p.Place(hi))
	cfs := make([]float64, count)
	for i, x := range places {
		cfs[i] = p.Frequency(x)
	}

	// Round trip through log10 drifts in the last bits.
	cfs[0] = lo
	cfs[count-1] = hi

	return cfs, nil
}
