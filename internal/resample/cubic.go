package resample

import "fmt"

// Hermite basis coefficients.
const (
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Cubic resamples input from rate from to rate to with Catmull-Rom
// interpolation. There is no anti-aliasing filter, so it refuses to
// downsample; use Polyphase for that. Edges repeat the boundary samples.
func Cubic(input []float64, from, to float64) ([]float64, error) {
	if err := checkRates(from, to); err != nil {
		return nil, err
	}
	if to < from {
		return nil, fmt.Errorf("%w: cubic cannot downsample %v Hz to %v Hz", ErrAliasing, from, to)
	}

	n := len(input)
	if n == 0 {
		return []float64{}, nil
	}
	if from == to {
		return append([]float64(nil), input...), nil
	}

	step := from / to
	output := make([]float64, outputLength(n, step))

	at := func(i int) float64 { return input[min(max(i, 0), n-1)] }

	for k := range output {
		pos := float64(k) * step
		i := int(pos)
		output[k] = interpolate(at(i-1), at(i), at(i+1), at(i+2), pos-float64(i))
	}

	return output, nil
}

// interpolate evaluates the Hermite polynomial between y1 and y2 at x in [0, 1):
// y = ((a*x + b)*x + c)*x + d
func interpolate(y0, y1, y2, y3, x float64) float64 {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}
