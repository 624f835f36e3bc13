package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-cochlea/internal/testutil"
)

const (
	testFS          = 100000.0
	windowTolerance = 1e-10
)

// magnitudeAt evaluates |H(f)| of an FIR at normalized frequency f (0 to 0.5).
func magnitudeAt(taps []float64, f float64) float64 {
	var re, im float64
	omega := 2 * math.Pi * f
	for n, h := range taps {
		s, c := math.Sincos(omega * float64(n))
		re += h * c
		im -= h * s
	}
	return math.Hypot(re, im)
}

func TestKaiserWindow_SymmetricWithUnitCenter(t *testing.T) {
	for _, length := range []int{11, 21, 51} {
		w := KaiserWindow(length, 8.0)
		require.Len(t, w, length)
		for i := range length / 2 {
			assert.InDelta(t, w[i], w[length-1-i], windowTolerance)
		}
		assert.InDelta(t, 1.0, w[length/2], windowTolerance)
	}

	assert.Empty(t, KaiserWindow(0, 5))
	assert.Equal(t, []float64{1}, KaiserWindow(1, 5))
}

func TestDesignLowPass_Response(t *testing.T) {
	taps, err := DesignLowPass(LowPassParams{NumTaps: 201, Cutoff: 0.1, Attenuation: 80})
	require.NoError(t, err)

	var sum float64
	for _, h := range taps {
		sum += h
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "DC gain")

	assert.InDelta(t, 1.0, magnitudeAt(taps, 0.02), 0.01, "passband")
	assert.Less(t, magnitudeAt(taps, 0.2), 1e-3, "stopband")
}

func TestDesignLowPass_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    LowPassParams
	}{
		{"too_short", LowPassParams{NumTaps: 1, Cutoff: 0.1, Attenuation: 60}},
		{"even", LowPassParams{NumTaps: 64, Cutoff: 0.1, Attenuation: 60}},
		{"cutoff_zero", LowPassParams{NumTaps: 63, Cutoff: 0, Attenuation: 60}},
		{"cutoff_nyquist", LowPassParams{NumTaps: 63, Cutoff: 0.5, Attenuation: 60}},
		{"negative_attenuation", LowPassParams{NumTaps: 63, Cutoff: 0.1, Attenuation: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DesignLowPass(tt.p)
			assert.Error(t, err)
		})
	}
}

func TestDesignLowPassAuto(t *testing.T) {
	taps, err := DesignLowPassAuto(3000, 1000, 60, testFS)
	require.NoError(t, err)
	assert.Equal(t, 1, len(taps)%2)
	assert.InDelta(t, 1.0, magnitudeAt(taps, 1000/testFS), 0.01)

	_, err = DesignLowPassAuto(3000, 1000, 60, 0)
	assert.Error(t, err)
}

func TestConvolver_SameImpulse(t *testing.T) {
	kernel := []float64{0.25, 0.5, 0.25}
	c := NewConvolver(kernel)
	require.NotNil(t, c)

	out := c.Same(testutil.Impulse(9, 4))
	testutil.AssertSlicesInDelta(t, []float64{0, 0, 0, 0.25, 0.5, 0.25, 0, 0, 0}, out, 1e-12)
}

func TestConvolver_FFTMatchesDirect(t *testing.T) {
	long, err := DesignLowPass(LowPassParams{NumTaps: 801, Cutoff: 0.05, Attenuation: 80})
	require.NoError(t, err)

	fftConv := NewConvolver(long)
	require.NotNil(t, fftConv.fft, "long kernel should use FFT path")

	signal := testutil.Sine(1234, 1, testFS, 5000)
	for i := range signal {
		signal[i] += 0.3 * math.Sin(float64(i)*0.9)
	}

	got := fftConv.Same(signal)

	// Reference: plain time-domain convolution.
	lead := (len(long) - 1) / 2
	want := make([]float64, len(signal))
	for n := range want {
		var acc float64
		for k, h := range long {
			idx := n + lead - k
			if idx >= 0 && idx < len(signal) {
				acc += h * signal[idx]
			}
		}
		want[n] = acc
	}

	testutil.AssertSlicesInDelta(t, want, got, 1e-9)
}

func TestConvolver_EdgeCases(t *testing.T) {
	assert.Nil(t, NewConvolver(nil))

	c := NewConvolver([]float64{1})
	require.NotNil(t, c)
	assert.Empty(t, c.Same(nil))

	in := []float64{1, 2, 3}
	out := c.Same(in)
	assert.Equal(t, []float64{1, 2, 3}, out)
	out[0] = 99
	assert.Equal(t, 1.0, in[0], "input must not be modified")
}

func TestGammatone_UnityGainAtCF(t *testing.T) {
	const cf = 2000.0
	g, err := NewAuditoryGammatone(cf, testFS, 1.0, 4)
	require.NoError(t, err)

	in := testutil.Sine(cf, 1, testFS, 20000)
	out := g.Apply(in)
	testutil.AssertNoNaNOrInf(t, out)

	// Skip the onset transient.
	steady := out[len(out)/2:]
	assert.InDelta(t, 1/math.Sqrt2, testutil.RMS(steady), 0.01)
}

func TestGammatone_RejectsOffFrequency(t *testing.T) {
	g, err := NewAuditoryGammatone(1000, testFS, 1.0, 4)
	require.NoError(t, err)

	onCF := testutil.RMS(g.Apply(testutil.Sine(1000, 1, testFS, 20000))[10000:])
	offCF := testutil.RMS(g.Apply(testutil.Sine(4000, 1, testFS, 20000))[10000:])
	assert.Less(t, offCF, onCF/100)
}

func TestGammatone_InvalidParams(t *testing.T) {
	_, err := NewGammatone(0, testFS, 100, 4)
	assert.Error(t, err)
	_, err = NewGammatone(60000, testFS, 100, 4)
	assert.Error(t, err)
	_, err = NewGammatone(1000, 0, 100, 4)
	assert.Error(t, err)
	_, err = NewGammatone(1000, testFS, 0, 4)
	assert.Error(t, err)
	_, err = NewGammatone(1000, testFS, 100, 0)
	assert.Error(t, err)
	_, err = NewAuditoryGammatone(1000, testFS, 1.0, 0)
	assert.Error(t, err)
}

func TestAuditoryGammatone_ERBScaleWidens(t *testing.T) {
	narrow, err := NewAuditoryGammatone(1000, testFS, 1.0, 4)
	require.NoError(t, err)
	wide, err := NewAuditoryGammatone(1000, testFS, 2.0, 4)
	require.NoError(t, err)

	in := testutil.Sine(1300, 1, testFS, 20000)
	assert.Greater(t, testutil.RMS(wide.Apply(in)[10000:]), testutil.RMS(narrow.Apply(in)[10000:]))
}
