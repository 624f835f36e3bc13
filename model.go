package cochlea

import (
	"math/rand/v2"

	"github.com/tphakala/go-cochlea/internal/periphery"
)

// FiberType is an auditory nerve fiber class by spontaneous rate.
type FiberType = periphery.FiberType

// Fiber types in output order.
const (
	HSR = periphery.HSR
	MSR = periphery.MSR
	LSR = periphery.LSR
)

// ParseFiberType parses "hsr", "msr" or "lsr".
func ParseFiberType(s string) (FiberType, error) { return periphery.ParseFiberType(s) }

// Model is the hair cell and auditory nerve simulator run per channel.
//
// Receptor and Rate must be deterministic. All randomness in Spikes must
// come from rng. Implementations must be safe for concurrent use when
// Config.Parallel is set, and must not modify their inputs.
type Model interface {
	// Receptor runs the basilar membrane and IHC receptor stages at cf.
	Receptor(signal []float64, fs, cf float64) ([]float64, error)

	// Rate converts a receptor potential to the synapse output (spikes/s)
	// of one fiber type.
	Rate(receptor []float64, fs, cf float64, fiber FiberType) ([]float64, error)

	// Spikes draws one spike train (seconds, ascending) from rate.
	Spikes(rate []float64, fs float64, fiber FiberType, rng *rand.Rand) ([]float64, error)
}

var _ Model = (*periphery.Model)(nil)

// NewModel builds the built-in periphery model. parDir may be empty to
// use the embedded parameter files.
func NewModel(parDir string, ohcHealth, ihcHealth float64) (Model, error) {
	return periphery.New(periphery.Config{
		ParDir:    parDir,
		OHCHealth: ohcHealth,
		IHCHealth: ihcHealth,
	})
}
