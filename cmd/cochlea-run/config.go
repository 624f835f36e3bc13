package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	cochlea "github.com/tphakala/go-cochlea"
	"github.com/tphakala/go-cochlea/internal/resample"
)

// Environment variables consulted after the config file.
const (
	envPrefix = "COCHLEA_"

	envChannels    = envPrefix + "CHANNELS"
	envSpecies     = envPrefix + "SPECIES"
	envTrials      = envPrefix + "TRIALS"
	envSeed        = envPrefix + "SEED"
	envFibers      = envPrefix + "FIBERS"
	envOutput      = envPrefix + "OUTPUT"
	envSeeding     = envPrefix + "SEEDING"
	envWorkers     = envPrefix + "WORKERS"
	envParallel    = envPrefix + "PARALLEL"
	envParDir      = envPrefix + "PAR_DIR"
	envRateKHz     = envPrefix + "RATE_KHZ"
	envCompression = envPrefix + "COMPRESSION"
	envQuality     = envPrefix + "RESAMPLE_QUALITY"
	envLogLevel    = envPrefix + "LOG_LEVEL"
)

// CLI defaults
const (
	defaultChannels    = "125:16000:40"
	defaultRateKHz     = 100.0
	defaultToneLevel   = 50.0
	defaultToneSeconds = 0.1
	defaultToneRamp    = 0.005
	kHzToHz            = 1000
)

// toneConfig describes a synthetic pure tone stimulus.
type toneConfig struct {
	Freq     float64 `toml:"freq"`
	Level    float64 `toml:"level_db"`
	Duration float64 `toml:"duration"`
	Ramp     float64 `toml:"ramp"`
}

// runConfig is the CLI configuration as read from TOML, env and flags.
type runConfig struct {
	Channels       string     `toml:"channels"`
	Species        string     `toml:"species"`
	Trials         int        `toml:"trials"`
	Seed           uint64     `toml:"seed"`
	Fibers         []string   `toml:"fibers"`
	Output         string     `toml:"output"`
	Seeding        string     `toml:"seeding"`
	OHCHealth      float64    `toml:"ohc_health"`
	IHCHealth      float64    `toml:"ihc_health"`
	MiddleEar      bool       `toml:"middle_ear"`
	MiddleEarTable string     `toml:"middle_ear_table"`
	ParDir         string     `toml:"par_dir"`
	Parallel       bool       `toml:"parallel"`
	Workers        int        `toml:"workers"`
	RateKHz        float64    `toml:"rate_khz"`
	LevelDB        *float64   `toml:"level_db"`
	Compression    string     `toml:"compression"`
	Quality        string     `toml:"resample_quality"`
	LogLevel       string     `toml:"log_level"`
	Tone           toneConfig `toml:"tone"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Channels:    defaultChannels,
		Species:     cochlea.Human.String(),
		Trials:      1,
		Fibers:      []string{"hsr", "msr", "lsr"},
		Output:      cochlea.OutputSpikes.String(),
		Seeding:     cochlea.SeedShared.String(),
		OHCHealth:   1,
		IHCHealth:   1,
		MiddleEar:   true,
		RateKHz:     defaultRateKHz,
		Compression: string(cochlea.CompressionSnappy),
		Quality:     resample.QualityHigh.String(),
		LogLevel:    "info",
		Tone: toneConfig{
			Level:    defaultToneLevel,
			Duration: defaultToneSeconds,
			Ramp:     defaultToneRamp,
		},
	}
}

// loadConfigFile decodes path over cfg. Unknown keys are an error.
func loadConfigFile(path string, cfg *runConfig) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overrides cfg with COCHLEA_* variables that are set.
func applyEnv(cfg *runConfig) {
	cfg.Channels = envStr(envChannels, cfg.Channels)
	cfg.Species = envStr(envSpecies, cfg.Species)
	cfg.Trials = envInt(envTrials, cfg.Trials)
	cfg.Seed = envUint64(envSeed, cfg.Seed)
	if v := os.Getenv(envFibers); v != "" {
		cfg.Fibers = strings.Split(v, ",")
	}
	cfg.Output = envStr(envOutput, cfg.Output)
	cfg.Seeding = envStr(envSeeding, cfg.Seeding)
	cfg.Workers = envInt(envWorkers, cfg.Workers)
	cfg.Parallel = envBool(envParallel, cfg.Parallel)
	cfg.ParDir = envStr(envParDir, cfg.ParDir)
	cfg.RateKHz = envFloat(envRateKHz, cfg.RateKHz)
	cfg.Compression = envStr(envCompression, cfg.Compression)
	cfg.Quality = envStr(envQuality, cfg.Quality)
	cfg.LogLevel = envStr(envLogLevel, cfg.LogLevel)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// parseChannels accepts "1000", "min:max:count" or "f1,f2,...".
func parseChannels(s string) (cochlea.ChannelSpec, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, ":"):
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return cochlea.ChannelSpec{}, fmt.Errorf("channel range %q must be min:max:count", s)
		}
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		n, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err1 != nil || err2 != nil || err3 != nil {
			return cochlea.ChannelSpec{}, fmt.Errorf("invalid channel range %q", s)
		}
		return cochlea.Range(lo, hi, n), nil

	case strings.Contains(s, ","):
		fields := strings.Split(s, ",")
		freqs := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return cochlea.ChannelSpec{}, fmt.Errorf("invalid channel frequency %q", f)
			}
			freqs[i] = v
		}
		return cochlea.List(freqs...), nil

	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return cochlea.ChannelSpec{}, fmt.Errorf("invalid channel frequency %q", s)
		}
		return cochlea.Single(v), nil
	}
}

func parseFibers(names []string) (cochlea.Fibers, error) {
	var f cochlea.Fibers
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		ft, err := cochlea.ParseFiberType(name)
		if err != nil {
			return f, err
		}
		switch ft {
		case cochlea.HSR:
			f.HSR = true
		case cochlea.MSR:
			f.MSR = true
		case cochlea.LSR:
			f.LSR = true
		}
	}
	return f, nil
}

// toCochlea converts the CLI configuration for a signal at fs.
func (c *runConfig) toCochlea(fs float64) (*cochlea.Config, error) {
	channels, err := parseChannels(c.Channels)
	if err != nil {
		return nil, err
	}
	species, err := cochlea.ParseSpecies(c.Species)
	if err != nil {
		return nil, err
	}
	fibers, err := parseFibers(c.Fibers)
	if err != nil {
		return nil, err
	}
	output, err := cochlea.ParseOutputMode(c.Output)
	if err != nil {
		return nil, err
	}
	seeding, err := cochlea.ParseSeeding(c.Seeding)
	if err != nil {
		return nil, err
	}

	cfg := cochlea.DefaultConfig()
	cfg.SampleRate = fs
	cfg.Channels = channels
	cfg.Species = species
	cfg.Trials = c.Trials
	cfg.Seed = c.Seed
	cfg.Fibers = fibers
	cfg.Output = output
	cfg.Seeding = seeding
	cfg.OHCHealth = c.OHCHealth
	cfg.IHCHealth = c.IHCHealth
	cfg.SkipMiddleEar = !c.MiddleEar
	cfg.ParDir = c.ParDir
	cfg.Parallel = c.Parallel
	cfg.Workers = c.Workers

	if c.MiddleEar && c.MiddleEarTable != "" {
		if cfg.MiddleEar, err = cochlea.LoadMiddleEar(c.MiddleEarTable); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}
