// Package periphery is the built-in hair cell and auditory nerve model.
//
// The signal chain per characteristic frequency is
//
//	gammatone BM filter -> OHC compression -> IHC transduction ->
//	membrane lowpass -> synapse (per fiber type) -> spike generator
//
// All constants come from DSAM-style parameter files. Defaults are
// embedded; Config.ParDir points at a directory with replacements.
package periphery

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"

	"github.com/tphakala/go-cochlea/internal/params"
	"github.com/tphakala/go-cochlea/internal/pipeline"
)

//go:embed par/*.par
var embeddedPars embed.FS

const (
	bmParFile       = "bm.par"
	receptorParFile = "ihcrp.par"
)

// ErrInvalidHealth indicates a hair cell health factor outside [0, 1].
var ErrInvalidHealth = errors.New("hair cell health must be in [0, 1]")

// Config selects parameter files and hair cell health.
type Config struct {
	// ParDir overrides the embedded parameter files. Files missing from
	// the directory are an error.
	ParDir string

	// OHCHealth scales outer hair cell gain (1 healthy, 0 absent).
	OHCHealth float64

	// IHCHealth scales inner hair cell transduction (1 healthy, 0 absent).
	IHCHealth float64
}

// DefaultConfig returns healthy hair cells with embedded parameters.
func DefaultConfig() Config {
	return Config{OHCHealth: 1, IHCHealth: 1}
}

// Validate checks the health factors.
func (c *Config) Validate() error {
	if !(c.OHCHealth >= 0 && c.OHCHealth <= 1) {
		return fmt.Errorf("%w: ohc=%v", ErrInvalidHealth, c.OHCHealth)
	}
	if !(c.IHCHealth >= 0 && c.IHCHealth <= 1) {
		return fmt.Errorf("%w: ihc=%v", ErrInvalidHealth, c.IHCHealth)
	}
	return nil
}

// Model holds loaded parameters. It is immutable and safe for concurrent use.
type Model struct {
	cfg      Config
	bm       BMParams
	receptor ReceptorParams
	synapses [numFiberTypes]SynapseParams
}

// New loads parameters and builds a model.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var fsys fs.FS
	if cfg.ParDir != "" {
		fsys = os.DirFS(cfg.ParDir)
	} else {
		sub, err := fs.Sub(embeddedPars, "par")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	m := &Model{cfg: cfg}

	set, err := params.Load(fsys, bmParFile)
	if err != nil {
		return nil, err
	}
	if m.bm, err = loadBM(set); err != nil {
		return nil, err
	}

	if set, err = params.Load(fsys, receptorParFile); err != nil {
		return nil, err
	}
	if m.receptor, err = loadReceptor(set); err != nil {
		return nil, err
	}

	for _, ft := range FiberTypes {
		if set, err = params.Load(fsys, ft.parFile()); err != nil {
			return nil, err
		}
		if m.synapses[ft], err = loadSynapse(set); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// BM returns the basilar membrane parameters.
func (m *Model) BM() BMParams { return m.bm }

// ReceptorParams returns the IHC receptor parameters.
func (m *Model) ReceptorParams() ReceptorParams { return m.receptor }

// Synapse returns the synapse parameters for fiber.
func (m *Model) Synapse(fiber FiberType) (SynapseParams, error) {
	if !fiber.Valid() {
		return SynapseParams{}, fmt.Errorf("unknown fiber type %d", int(fiber))
	}
	return m.synapses[fiber], nil
}

// FrontEnd returns the BM and IHC receptor chain for one channel.
func (m *Model) FrontEnd(fs, cf float64) (*pipeline.Pipeline, error) {
	gammatone, err := m.bm.gammatoneStage(cf, fs)
	if err != nil {
		return nil, fmt.Errorf("basilar membrane: %w", err)
	}
	membrane, err := m.receptor.membraneStage(fs)
	if err != nil {
		return nil, fmt.Errorf("ihc membrane: %w", err)
	}

	return pipeline.New(
		gammatone,
		m.bm.compressionStage(m.cfg.OHCHealth),
		m.receptor.transductionStage(m.cfg.IHCHealth),
		membrane,
	), nil
}

// Receptor runs the basilar membrane and IHC receptor stages at cf.
func (m *Model) Receptor(signal []float64, fs, cf float64) ([]float64, error) {
	p, err := m.FrontEnd(fs, cf)
	if err != nil {
		return nil, err
	}
	return p.Process(signal)
}

// Rate runs the synapse for fiber on a receptor potential. The synapse
// does not depend on cf.
func (m *Model) Rate(receptor []float64, fs, _ float64, fiber FiberType) ([]float64, error) {
	sp, err := m.Synapse(fiber)
	if err != nil {
		return nil, err
	}
	return pipeline.New(sp.synapseStage(fs)).Process(receptor)
}

// Spikes draws one spike train for fiber from rate using rng.
func (m *Model) Spikes(rate []float64, fs float64, fiber FiberType, rng *rand.Rand) ([]float64, error) {
	sp, err := m.Synapse(fiber)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("nil random source")
	}
	return sp.generateSpikes(rate, fs, rng)
}
