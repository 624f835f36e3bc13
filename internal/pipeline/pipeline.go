// Package pipeline chains whole-signal processing stages.
//
// Each stage maps one sample slice to a new one. Stages never modify their
// input, so a pipeline can be run repeatedly on the same signal and
// intermediate outputs can be shared between goroutines.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPipeline is returned when a pipeline with no stages is run.
var ErrEmptyPipeline = errors.New("pipeline has no stages")

// Stage represents a single processing stage.
type Stage interface {
	// Process transforms input samples to output samples. The input must
	// not be modified.
	Process(input []float64) ([]float64, error)

	// Type reports what the stage models.
	Type() StageType
}

// StageType identifies the type of processing stage.
type StageType int

const (
	// StageMiddleEar applies the outer/middle-ear transfer function.
	StageMiddleEar StageType = iota

	// StageBasilarMembrane decomposes the signal at one characteristic frequency.
	StageBasilarMembrane

	// StageCompression applies the outer hair cell nonlinearity.
	StageCompression

	// StageTransduction converts BM motion to IHC receptor potential.
	StageTransduction

	// StageMembrane lowpass-filters the receptor potential.
	StageMembrane

	// StageSynapse converts receptor potential to a release rate.
	StageSynapse

	// StageCustom is any other transformation.
	StageCustom
)

var stageNames = [...]string{
	StageMiddleEar:       "middle-ear",
	StageBasilarMembrane: "basilar-membrane",
	StageCompression:     "compression",
	StageTransduction:    "transduction",
	StageMembrane:        "membrane",
	StageSynapse:         "synapse",
	StageCustom:          "custom",
}

func (t StageType) String() string {
	if t < 0 || int(t) >= len(stageNames) {
		return fmt.Sprintf("StageType(%d)", int(t))
	}
	return stageNames[t]
}

// Func adapts a plain function to the Stage interface.
type Func struct {
	Kind StageType
	Fn   func(input []float64) ([]float64, error)
}

// Process calls the wrapped function.
func (f Func) Process(input []float64) ([]float64, error) { return f.Fn(input) }

// Type returns the stage type.
func (f Func) Type() StageType { return f.Kind }

// Map wraps an infallible sample-wise mapping as a stage.
func Map(kind StageType, fn func(x float64) float64) Stage {
	return Func{Kind: kind, Fn: func(input []float64) ([]float64, error) {
		out := make([]float64, len(input))
		for i, x := range input {
			out[i] = fn(x)
		}
		return out, nil
	}}
}

// Pipeline represents an ordered chain of stages.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from stages. Nil stages are skipped, which lets
// callers leave out optional processing without branching.
func New(stages ...Stage) *Pipeline {
	p := &Pipeline{stages: make([]Stage, 0, len(stages))}
	for _, s := range stages {
		if s != nil {
			p.stages = append(p.stages, s)
		}
	}
	return p
}

// Process runs input through every stage in order. A stage error is
// wrapped with the stage index and type.
func (p *Pipeline) Process(input []float64) ([]float64, error) {
	if len(p.stages) == 0 {
		return nil, ErrEmptyPipeline
	}

	current := input
	for i, stage := range p.stages {
		out, err := stage.Process(current)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.Type(), err)
		}
		if len(out) != len(input) {
			return nil, fmt.Errorf("stage %d (%s): output length %d, want %d",
				i, stage.Type(), len(out), len(input))
		}
		current = out
	}

	return current, nil
}

// String describes the pipeline as "a -> b -> c".
func (p *Pipeline) String() string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Type().String()
	}
	return strings.Join(names, " -> ")
}
