package cochlea

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/go-cochlea/internal/middleear"
	"github.com/tphakala/go-cochlea/internal/pipeline"
	"go.uber.org/zap"
)

// defaultMiddleEar is loaded once and shared; Filter is safe for concurrent use.
var defaultMiddleEar = sync.OnceValues(middleear.Default)

// Run converts signal (Pa, sampled at cfg.SampleRate) into auditory nerve
// responses for every channel, trial and enabled fiber type.
//
// All validation happens before any computation. A failure in any channel
// aborts the run and no partial table is returned.
func Run(signal []float64, cfg *Config) (*Table, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkSignal(signal); err != nil {
		return nil, err
	}

	cfs, err := cfg.Channels.Frequencies(cfg.Species)
	if err != nil {
		return nil, err
	}
	nyquist := cfg.SampleRate / 2
	for i, cf := range cfs {
		if cf >= nyquist {
			return nil, fmt.Errorf("%w: channel %d CF %.1f Hz at or above Nyquist (%.1f Hz)",
				ErrUnsupportedChannelSpec, i, cf, nyquist)
		}
	}

	model := cfg.Model
	if model == nil {
		if model, err = NewModel(cfg.ParDir, cfg.OHCHealth, cfg.IHCHealth); err != nil {
			return nil, fmt.Errorf("build periphery model: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &runner{
		cfg:    cfg,
		model:  model,
		fibers: cfg.Fibers.Enabled(),
		logger: logger,
	}

	start := time.Now()
	logger.Info("run started",
		zap.Int("samples", len(signal)),
		zap.Float64("fs_hz", cfg.SampleRate),
		zap.Int("channels", len(cfs)),
		zap.Int("trials", cfg.Trials),
		zap.Stringer("output", cfg.Output),
		zap.Stringer("seeding", cfg.effectiveSeeding()),
		zap.Bool("parallel", cfg.Parallel),
	)

	if r.signal, err = r.middleEar(signal); err != nil {
		return nil, err
	}

	var perChannel [][]Record
	if cfg.Parallel && len(cfs) > 1 {
		perChannel, err = r.runParallel(cfs)
	} else {
		perChannel, err = r.runSequential(cfs)
	}
	if err != nil {
		logger.Warn("run failed", zap.Error(err))
		return nil, err
	}

	table := flatten(perChannel)
	logger.Info("run finished",
		zap.Int("rows", table.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

// checkSignal rejects empty signals and values not plausibly in pascals.
func checkSignal(signal []float64) error {
	if len(signal) == 0 {
		return ErrEmptySignal
	}
	for i, v := range signal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d is %v", ErrAmplitudeOutOfRange, i, v)
		}
		if math.Abs(v) >= MaxAmplitude {
			return fmt.Errorf("%w: sample %d is %g Pa (limit %g Pa)", ErrAmplitudeOutOfRange, i, v, MaxAmplitude)
		}
	}
	return nil
}

type runner struct {
	cfg    *Config
	model  Model
	fibers []FiberType
	signal []float64 // middle-ear output, read-only
	logger *zap.Logger
}

func (r *runner) middleEar(signal []float64) ([]float64, error) {
	if r.cfg.SkipMiddleEar {
		return signal, nil
	}

	filter := r.cfg.MiddleEar
	if filter == nil {
		var err error
		if filter, err = defaultMiddleEar(); err != nil {
			return nil, fmt.Errorf("load middle-ear filter: %w", err)
		}
	}

	chain := pipeline.New(middleEarStage(filter, r.cfg.SampleRate))
	r.logger.Debug("applying middle ear",
		zap.Stringer("stages", chain),
		zap.Bool("custom_table", r.cfg.MiddleEar != nil),
	)
	return chain.Process(signal)
}

// middleEarStage applies filter at fs as the first stage of the chain.
func middleEarStage(filter *MiddleEarFilter, fs float64) pipeline.Stage {
	return pipeline.Func{Kind: pipeline.StageMiddleEar, Fn: func(in []float64) ([]float64, error) {
		return filter.Apply(in, fs)
	}}
}

// channelRNG returns the random stream for channel i under per-channel seeding.
func (r *runner) channelRNG(i int) *rand.Rand {
	return rand.New(rand.NewPCG(r.cfg.Seed, uint64(i)))
}

func (r *runner) runSequential(cfs []float64) ([][]Record, error) {
	out := make([][]Record, len(cfs))

	// Shared seeding uses the channel 0 stream for the whole run, so a
	// single-channel run is identical under both layouts.
	shared := r.channelRNG(0)

	for i, cf := range cfs {
		rng := shared
		if r.cfg.effectiveSeeding() == SeedPerChannel {
			rng = r.channelRNG(i)
		}

		records, err := r.runChannel(i, cf, rng)
		if err != nil {
			return nil, err
		}
		out[i] = records
	}
	return out, nil
}

func (r *runner) runParallel(cfs []float64) ([][]Record, error) {
	workers := r.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(cfs))

	out := make([][]Record, len(cfs))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		failed   atomic.Bool
	)
	sem := make(chan struct{}, workers)

	for i, cf := range cfs {
		wg.Add(1)
		sem <- struct{}{}
		go func(channel int, cf float64) {
			defer wg.Done()
			defer func() { <-sem }()

			if failed.Load() {
				return
			}

			records, err := r.runChannel(channel, cf, r.channelRNG(channel))
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				failed.Store(true)
				return
			}
			out[channel] = records
		}(i, cf)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// runChannel runs one CF: the front end once, the synapse once per fiber
// type, then spike generation per trial and fiber type. Random numbers
// are consumed in trial, fiber order.
func (r *runner) runChannel(channel int, cf float64, rng *rand.Rand) ([]Record, error) {
	start := time.Now()
	fs := r.cfg.SampleRate

	wrap := func(err error) error {
		return fmt.Errorf("channel %d (CF %.1f Hz): %w", channel, cf, err)
	}

	receptor, err := r.model.Receptor(r.signal, fs, cf)
	if err != nil {
		return nil, wrap(err)
	}

	rates := make([][]float64, len(r.fibers))
	for k, fiber := range r.fibers {
		if rates[k], err = r.model.Rate(receptor, fs, cf, fiber); err != nil {
			return nil, wrap(fmt.Errorf("%s synapse: %w", fiber, err))
		}
	}

	records := make([]Record, 0, r.cfg.Trials*len(r.fibers))
	for trial := range r.cfg.Trials {
		for k, fiber := range r.fibers {
			rec := Record{Channel: channel, CF: cf, Trial: trial, Fiber: fiber}

			switch r.cfg.Output {
			case OutputSignals:
				rec.Signal = rates[k]
			default:
				if rec.Spikes, err = r.model.Spikes(rates[k], fs, fiber, rng); err != nil {
					return nil, wrap(fmt.Errorf("%s spikes: %w", fiber, err))
				}
			}
			records = append(records, rec)
		}
	}

	r.logger.Debug("channel done",
		zap.Int("channel", channel),
		zap.Float64("cf_hz", cf),
		zap.Int("rows", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return records, nil
}
