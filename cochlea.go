package cochlea

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-cochlea/internal/middleear"
	"go.uber.org/zap"
)

// Common errors returned by Run.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid cochlea configuration")

	// ErrUnsupportedChannelSpec indicates a channel specification that
	// cannot be mapped to center frequencies.
	ErrUnsupportedChannelSpec = errors.New("unsupported channel specification")

	// ErrSampleRateTooLow indicates a sample rate the middle-ear filter
	// cannot handle, or a non-positive rate.
	ErrSampleRateTooLow = middleear.ErrSampleRateTooLow

	// ErrAmplitudeOutOfRange indicates a signal that is not plausibly in
	// pascals (peak at or above MaxAmplitude) or contains NaN/Inf.
	ErrAmplitudeOutOfRange = errors.New("signal amplitude out of range (expected Pa)")

	// ErrEmptySignal indicates a signal with no samples.
	ErrEmptySignal = errors.New("empty signal")

	// ErrIncompatibleOutput indicates an output mode that cannot be
	// combined with the rest of the configuration.
	ErrIncompatibleOutput = errors.New("incompatible output mode")
)

// MiddleEarFilter is an outer/middle-ear magnitude filter built from a
// (frequency, dB) table.
type MiddleEarFilter = middleear.Filter

// NewMiddleEar fits a middle-ear filter to gains (dB) at strictly
// increasing frequencies (Hz).
func NewMiddleEar(freqs, gainsDB []float64) (*MiddleEarFilter, error) {
	return middleear.New(&middleear.Table{Freq: freqs, Gain: gainsDB})
}

// LoadMiddleEar reads a CSV table with "freq" and "h" columns.
func LoadMiddleEar(path string) (*MiddleEarFilter, error) {
	return middleear.LoadFile(path)
}

// OutputMode selects what each record carries.
type OutputMode int

const (
	// OutputSpikes produces spike times in seconds.
	OutputSpikes OutputMode = iota

	// OutputSignals produces the continuous synapse output (spikes/s).
	// Only valid with a single trial.
	OutputSignals
)

func (m OutputMode) String() string {
	switch m {
	case OutputSpikes:
		return "spikes"
	case OutputSignals:
		return "signals"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// ParseOutputMode parses "spikes" or "signals".
func ParseOutputMode(s string) (OutputMode, error) {
	for _, m := range []OutputMode{OutputSpikes, OutputSignals} {
		if s == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown output mode %q", ErrInvalidConfig, s)
}

// Seeding selects how random streams are derived from Config.Seed.
type Seeding int

const (
	// SeedShared draws every spike train from one stream, consumed in
	// channel, trial, fiber order. Results depend on the channel set.
	SeedShared Seeding = iota

	// SeedPerChannel gives channel i its own stream derived from
	// (Seed, i). A channel's spikes do not depend on the other channels.
	SeedPerChannel
)

func (s Seeding) String() string {
	switch s {
	case SeedShared:
		return "shared"
	case SeedPerChannel:
		return "per-channel"
	default:
		return fmt.Sprintf("Seeding(%d)", int(s))
	}
}

// ParseSeeding parses "shared" or "per-channel".
func ParseSeeding(s string) (Seeding, error) {
	for _, m := range []Seeding{SeedShared, SeedPerChannel} {
		if s == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown seeding %q", ErrInvalidConfig, s)
}

// Fibers enables fiber types. Every enabled type is simulated Trials
// times per channel, so a per-type fiber count of (n, n, n) is Trials = n
// with all types enabled, and a zero count disables the type. Unequal
// counts need separate runs.
type Fibers struct {
	HSR bool
	MSR bool
	LSR bool
}

// AllFibers enables every fiber type.
var AllFibers = Fibers{HSR: true, MSR: true, LSR: true}

// Enabled returns the enabled fiber types in output order.
func (f Fibers) Enabled() []FiberType {
	var types []FiberType
	if f.HSR {
		types = append(types, HSR)
	}
	if f.MSR {
		types = append(types, MSR)
	}
	if f.LSR {
		types = append(types, LSR)
	}
	return types
}

// Config holds run configuration.
type Config struct {
	// SampleRate of the input signal in Hz. Must exceed 40 kHz unless
	// the middle ear is skipped.
	SampleRate float64

	// Channels selects the center frequencies.
	Channels ChannelSpec

	// Species selects the Greenwood constants for Range channel specs.
	Species Species

	// Trials is the number of repetitions per channel and fiber type.
	Trials int

	// Seed for all random streams.
	Seed uint64

	// Fibers enables fiber types. At least one must be enabled.
	Fibers Fibers

	// Output selects spike times or continuous signals.
	Output OutputMode

	// OHCHealth and IHCHealth scale outer and inner hair cell function
	// in [0, 1]. Used only by the built-in model.
	OHCHealth float64
	IHCHealth float64

	// ParDir overrides the built-in model's parameter files.
	ParDir string

	// SkipMiddleEar feeds the signal straight to the cochlear model.
	SkipMiddleEar bool

	// MiddleEar overrides the default human middle-ear filter.
	MiddleEar *MiddleEarFilter

	// Model overrides the built-in periphery model.
	Model Model

	// Parallel runs channels on a worker pool. It implies SeedPerChannel.
	Parallel bool

	// Workers bounds the worker pool. Zero means runtime.NumCPU().
	Workers int

	// Seeding selects the random stream layout for sequential runs.
	Seeding Seeding

	// Logger receives progress logs. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns a configuration for a human periphery with all
// fiber types, one trial and healthy hair cells. Channels and SampleRate
// must still be set.
func DefaultConfig() Config {
	return Config{
		Species:   Human,
		Trials:    1,
		Fibers:    AllFibers,
		Output:    OutputSpikes,
		OHCHealth: 1,
		IHCHealth: 1,
	}
}

// Validate checks if the configuration is valid. It does not inspect the
// signal.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: %v Hz", ErrSampleRateTooLow, c.SampleRate)
	}
	if !c.SkipMiddleEar && !(c.SampleRate > middleear.MinSampleRate) {
		return fmt.Errorf("%w: %.0f Hz (middle ear needs > %.0f Hz)",
			ErrSampleRateTooLow, c.SampleRate, middleear.MinSampleRate)
	}

	if c.Trials < 1 {
		return fmt.Errorf("%w: trials must be at least 1, got %d", ErrInvalidConfig, c.Trials)
	}

	if len(c.Fibers.Enabled()) == 0 {
		return fmt.Errorf("%w: no fiber type enabled", ErrInvalidConfig)
	}

	if !(c.OHCHealth >= 0 && c.OHCHealth <= 1) || !(c.IHCHealth >= 0 && c.IHCHealth <= 1) {
		return fmt.Errorf("%w: hair cell health must be in [0, 1]", ErrInvalidConfig)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative", ErrInvalidConfig)
	}

	if _, err := c.Species.Greenwood(); err != nil {
		return err
	}

	switch c.Seeding {
	case SeedShared, SeedPerChannel:
	default:
		return fmt.Errorf("%w: unknown seeding %d", ErrInvalidConfig, int(c.Seeding))
	}

	switch c.Output {
	case OutputSpikes:
	case OutputSignals:
		if c.Trials != 1 {
			return fmt.Errorf("%w: signals output requires exactly 1 trial, got %d",
				ErrIncompatibleOutput, c.Trials)
		}
	default:
		return fmt.Errorf("%w: unknown output mode %d", ErrInvalidConfig, int(c.Output))
	}

	if _, err := c.Channels.Frequencies(c.Species); err != nil {
		return err
	}

	return nil
}

// effectiveSeeding returns the seeding actually used by a run.
func (c *Config) effectiveSeeding() Seeding {
	if c.Parallel {
		return SeedPerChannel
	}
	return c.Seeding
}
