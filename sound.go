package cochlea

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
	"github.com/tphakala/go-cochlea/internal/mathutil"
	"gonum.org/v1/gonum/floats"
)

// DBSPL returns the RMS level of signal (Pa) in dB SPL re 20 µPa.
// Silence returns -Inf.
func DBSPL(signal []float64) float64 {
	if len(signal) == 0 {
		return math.Inf(-1)
	}
	rms := math.Sqrt(floats.Dot(signal, signal) / float64(len(signal)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return mathutil.PascalToDBSPL(rms)
}

// SetDBSPL returns signal scaled to an RMS level of db dB SPL.
func SetDBSPL(signal []float64, db float64) ([]float64, error) {
	current := DBSPL(signal)
	if math.IsInf(current, -1) {
		return nil, fmt.Errorf("%w: cannot set the level of silence", ErrInvalidConfig)
	}
	out := make([]float64, len(signal))
	floats.ScaleTo(out, mathutil.DBToRatio(db-current), signal)
	return out, nil
}

// Silence returns duration seconds of zeros at fs.
func Silence(fs, duration float64) []float64 {
	return make([]float64, samples(fs, duration))
}

// PureTone returns a sine at freq Hz and db dB SPL lasting duration
// seconds, with Hann onset and offset ramps of ramp seconds each.
func PureTone(fs, freq, duration, db, ramp float64) ([]float64, error) {
	switch {
	case !(fs > 0):
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	case !(freq > 0) || freq >= fs/2:
		return nil, fmt.Errorf("%w: tone frequency %v outside (0, fs/2)", ErrInvalidConfig, freq)
	case !(duration > 0):
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	}

	n := samples(fs, duration)
	amp := math.Sqrt2 * mathutil.DBSPLToPascal(db)
	omega := 2 * math.Pi * freq / fs

	tone := make([]float64, n)
	for i := range tone {
		tone[i] = amp * math.Sin(omega*float64(i))
	}

	return Ramp(tone, fs, ramp), nil
}

// Ramp returns signal with Hann onset and offset ramps of ramp seconds.
// Ramps longer than half the signal are shortened to fit.
func Ramp(signal []float64, fs, ramp float64) []float64 {
	out := append([]float64(nil), signal...)
	r := min(samples(fs, ramp), len(out)/2)
	if r < 1 {
		return out
	}

	// Rising and falling halves of one Hann window of length 2r.
	w := window.Hann(2 * r)
	for i := range r {
		out[i] *= w[i]
		out[len(out)-1-i] *= w[2*r-1-i]
	}
	return out
}

func samples(fs, seconds float64) int {
	if !(fs > 0) || !(seconds > 0) {
		return 0
	}
	return int(math.Round(fs * seconds))
}
