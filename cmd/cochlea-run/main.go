// Command cochlea-run simulates auditory nerve responses to a WAV file or
// a synthetic tone and writes the spike table as parquet or CSV.
//
// Usage:
//
//	cochlea-run [options] input.wav output.parquet
//	cochlea-run -tone 1000 -level 60 [options] output.csv
//
// Examples:
//
//	cochlea-run -channels 125:16000:40 -trials 10 speech.wav speech.parquet
//	cochlea-run -tone 4000 -level 40 -channels 4000 -fibers hsr -trials 50 tone.csv
//	cochlea-run -config run.toml -parallel input.wav out.parquet
//
// Settings are read from the TOML file given by -config, then from
// COCHLEA_* environment variables, then from flags set on the command
// line. WAV samples are taken as pascals at full scale ±1 unless -level
// sets the RMS level in dB SPL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	cochlea "github.com/tphakala/go-cochlea"
	"github.com/tphakala/go-cochlea/internal/resample"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	minRequiredArgs = 1
	percentScale    = 100
)

var errUsage = errors.New("insufficient arguments")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// flagValues holds flag targets. Only flags set on the command line are
// copied into the run configuration.
type flagValues struct {
	runConfig
	configPath string
	fibers     string
	level      float64
	noME       bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *flagValues) {
	fs := flag.NewFlagSet("cochlea-run", flag.ContinueOnError)
	fs.SetOutput(stderr)

	v := &flagValues{runConfig: defaultRunConfig()}
	fs.StringVar(&v.configPath, "config", "", "TOML run configuration file")
	fs.StringVar(&v.Channels, "channels", v.Channels, "Channels: CF, min:max:count (Greenwood) or f1,f2,...")
	fs.StringVar(&v.Species, "species", v.Species, "Greenwood species: human, gp, cat")
	fs.IntVar(&v.Trials, "trials", v.Trials, "Trials per channel and fiber type")
	fs.Uint64Var(&v.Seed, "seed", v.Seed, "Random seed")
	fs.StringVar(&v.fibers, "fibers", "hsr,msr,lsr", "Comma-separated fiber types")
	fs.StringVar(&v.Output, "output", v.Output, "Output: spikes or signals")
	fs.StringVar(&v.Seeding, "seeding", v.Seeding, "Random streams: shared or per-channel")
	fs.Float64Var(&v.OHCHealth, "ohc", v.OHCHealth, "Outer hair cell health (0-1)")
	fs.Float64Var(&v.IHCHealth, "ihc", v.IHCHealth, "Inner hair cell health (0-1)")
	fs.BoolVar(&v.noME, "no-middle-ear", false, "Skip the middle-ear filter")
	fs.StringVar(&v.MiddleEarTable, "me-table", "", "Middle-ear CSV table (freq,h)")
	fs.StringVar(&v.ParDir, "par-dir", "", "Directory with model parameter files")
	fs.BoolVar(&v.Parallel, "parallel", v.Parallel, "Run channels in parallel (per-channel seeding)")
	fs.IntVar(&v.Workers, "workers", v.Workers, "Parallel workers (0 = NumCPU)")
	fs.Float64Var(&v.RateKHz, "rate", v.RateKHz, "Model sample rate in kHz; input is resampled if needed")
	fs.Float64Var(&v.level, "level", 0, "Set the input RMS level in dB SPL")
	fs.StringVar(&v.Quality, "quality", v.Quality, "Resampling quality: quick or high")
	fs.StringVar(&v.Compression, "compression", v.Compression, "Parquet compression: snappy, gzip, zstd, brotli, lz4, none")
	fs.StringVar(&v.LogLevel, "log-level", v.LogLevel, "Log level: debug, info, warn, error")
	fs.Float64Var(&v.Tone.Freq, "tone", 0, "Synthesize a pure tone at this frequency (Hz) instead of reading a WAV")
	fs.Float64Var(&v.Tone.Duration, "duration", v.Tone.Duration, "Tone duration in seconds")
	fs.Float64Var(&v.Tone.Ramp, "ramp", v.Tone.Ramp, "Tone onset/offset ramp in seconds")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cochlea-run [options] [input.wav] output.(parquet|csv)\n\nOptions:\n")
		fs.PrintDefaults()
	}
	return fs, v
}

// resolveConfig layers defaults, config file, environment and set flags.
func resolveConfig(fs *flag.FlagSet, v *flagValues) (runConfig, error) {
	cfg := defaultRunConfig()
	if v.configPath != "" {
		if err := loadConfigFile(v.configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "channels":
			cfg.Channels = v.Channels
		case "species":
			cfg.Species = v.Species
		case "trials":
			cfg.Trials = v.Trials
		case "seed":
			cfg.Seed = v.Seed
		case "fibers":
			cfg.Fibers = splitList(v.fibers)
		case "output":
			cfg.Output = v.Output
		case "seeding":
			cfg.Seeding = v.Seeding
		case "ohc":
			cfg.OHCHealth = v.OHCHealth
		case "ihc":
			cfg.IHCHealth = v.IHCHealth
		case "no-middle-ear":
			cfg.MiddleEar = !v.noME
		case "me-table":
			cfg.MiddleEarTable = v.MiddleEarTable
		case "par-dir":
			cfg.ParDir = v.ParDir
		case "parallel":
			cfg.Parallel = v.Parallel
		case "workers":
			cfg.Workers = v.Workers
		case "rate":
			cfg.RateKHz = v.RateKHz
		case "level":
			level := v.level
			cfg.LevelDB = &level
			cfg.Tone.Level = level
		case "quality":
			cfg.Quality = v.Quality
		case "compression":
			cfg.Compression = v.Compression
		case "log-level":
			cfg.LogLevel = v.LogLevel
		case "tone":
			cfg.Tone.Freq = v.Tone.Freq
		case "duration":
			cfg.Tone.Duration = v.Tone.Duration
		case "ramp":
			cfg.Tone.Ramp = v.Tone.Ramp
		}
	})
	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	fs, v := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := resolveConfig(fs, v)
	if err != nil {
		return err
	}

	rest := fs.Args()
	needInput := cfg.Tone.Freq == 0
	if len(rest) < minRequiredArgs || (needInput && len(rest) < minRequiredArgs+1) {
		fs.Usage()
		return errUsage
	}
	outputPath := rest[len(rest)-1]

	logger, err := newLogger(cfg.LogLevel, zapcore.AddSync(stderr))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	compression, err := cochlea.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}

	quality, err := resample.ParseQuality(cfg.Quality)
	if err != nil {
		return err
	}

	fsHz := cfg.RateKHz * kHzToHz
	var signal []float64
	if needInput {
		signal, err = loadInput(rest[0], fsHz, quality, cfg.LevelDB, logger)
	} else {
		signal, err = cochlea.PureTone(fsHz, cfg.Tone.Freq, cfg.Tone.Duration, cfg.Tone.Level, cfg.Tone.Ramp)
	}
	if err != nil {
		return err
	}

	runCfg, err := cfg.toCochlea(fsHz)
	if err != nil {
		return err
	}
	runCfg.Logger = logger

	start := time.Now()
	table, err := cochlea.Run(signal, runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := writeTable(outputPath, table, compression); err != nil {
		return err
	}

	duration := float64(len(signal)) / fsHz
	fmt.Fprintf(stdout, "Simulated %.3fs of sound -> %s\n", duration, outputPath)
	fmt.Fprintf(stdout, "  %d rows, %d channels, %.2fs (%.1f%% of realtime)\n",
		table.Len(), len(table.Channels()), elapsed.Seconds(), elapsed.Seconds()/duration*percentScale)

	if runCfg.Output == cochlea.OutputSpikes {
		return printSummary(stdout, table, duration)
	}
	return nil
}

// loadInput reads a WAV file, resamples it to fs and optionally sets its level.
func loadInput(path string, fs float64, quality resample.Quality, levelDB *float64, logger *zap.Logger) ([]float64, error) {
	in, err := readWAV(path)
	if err != nil {
		return nil, err
	}
	logger.Info("input loaded",
		zap.String("path", path),
		zap.Int("rate_hz", in.rate),
		zap.Int("channels", in.channels),
		zap.Int("bit_depth", in.bitDepth),
		zap.Int("samples", len(in.samples)),
	)

	signal := in.samples
	if float64(in.rate) != fs {
		if signal, err = resample.Resample(signal, float64(in.rate), fs, quality); err != nil {
			return nil, err
		}
		logger.Info("input resampled",
			zap.Int("from_hz", in.rate),
			zap.Float64("to_hz", fs),
			zap.Stringer("quality", quality),
		)
	}

	if levelDB != nil {
		if signal, err = cochlea.SetDBSPL(signal, *levelDB); err != nil {
			return nil, err
		}
	}
	return signal, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
