package main

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cochlea "github.com/tphakala/go-cochlea"
)

func TestParseChannels(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"1000", []float64{1000}},
		{"500, 1000,2000", []float64{500, 1000, 2000}},
		{"1000:1000:1", []float64{1000}},
	}

	for _, tt := range tests {
		spec, err := parseChannels(tt.in)
		require.NoError(t, err, tt.in)
		cfs, err := spec.Frequencies(cochlea.Human)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, cfs, tt.in)
	}

	spec, err := parseChannels("125:16000:40")
	require.NoError(t, err)
	cfs, err := spec.Frequencies(cochlea.Human)
	require.NoError(t, err)
	assert.Len(t, cfs, 40)

	for _, bad := range []string{"", "abc", "1:2", "1:2:x", "1,,2"} {
		_, err := parseChannels(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFibers(t *testing.T) {
	f, err := parseFibers([]string{"hsr", " LSR", ""})
	require.NoError(t, err)
	assert.Equal(t, cochlea.Fibers{HSR: true, LSR: true}, f)

	_, err = parseFibers([]string{"xsr"})
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
channels = "500,1000"
species = "cat"
trials = 3
seed = 99
fibers = ["msr"]
middle_ear = false
level_db = 70.0

[tone]
freq = 2000.0
`), 0o600))

	cfg := defaultRunConfig()
	require.NoError(t, loadConfigFile(path, &cfg))
	assert.Equal(t, "500,1000", cfg.Channels)
	assert.Equal(t, "cat", cfg.Species)
	assert.Equal(t, 3, cfg.Trials)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, []string{"msr"}, cfg.Fibers)
	assert.False(t, cfg.MiddleEar)
	require.NotNil(t, cfg.LevelDB)
	assert.InDelta(t, 70.0, *cfg.LevelDB, 0)
	assert.InDelta(t, 2000.0, cfg.Tone.Freq, 0)
	assert.InDelta(t, defaultToneSeconds, cfg.Tone.Duration, 0, "unset keys keep defaults")
}

func TestLoadConfigFile_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte("trails = 3\n"), 0o600))

	cfg := defaultRunConfig()
	err := loadConfigFile(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trails")
}

func TestResolveConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte("trials = 3\nseed = 1\nspecies = \"gp\"\n"), 0o600))
	t.Setenv(envTrials, "4")
	t.Setenv(envSeed, "2")

	fs, v := newFlagSet(io.Discard)
	require.NoError(t, fs.Parse([]string{"-config", path, "-trials", "5", "-fibers", "hsr, msr"}))

	cfg, err := resolveConfig(fs, v)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Trials, "flag beats env")
	assert.Equal(t, uint64(2), cfg.Seed, "env beats file")
	assert.Equal(t, "gp", cfg.Species, "file beats default")
	assert.Equal(t, []string{"hsr", "msr"}, cfg.Fibers)
	assert.True(t, cfg.MiddleEar)
}

func TestApplyEnv_FullRangeSeed(t *testing.T) {
	t.Setenv(envSeed, "18446744073709551615")
	t.Setenv(envQuality, "quick")

	cfg := defaultRunConfig()
	applyEnv(&cfg)
	assert.Equal(t, uint64(math.MaxUint64), cfg.Seed)
	assert.Equal(t, "quick", cfg.Quality)

	t.Setenv(envSeed, "-1")
	cfg = defaultRunConfig()
	cfg.Seed = 5
	applyEnv(&cfg)
	assert.Equal(t, uint64(5), cfg.Seed, "invalid values keep the fallback")
}

func TestToCochlea(t *testing.T) {
	rc := defaultRunConfig()
	rc.Channels = "1000"
	rc.Fibers = []string{"lsr"}
	rc.Output = "signals"
	rc.MiddleEar = false
	rc.Parallel = true

	cfg, err := rc.toCochlea(48000)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cochlea.Fibers{LSR: true}, cfg.Fibers)
	assert.Equal(t, cochlea.OutputSignals, cfg.Output)
	assert.True(t, cfg.SkipMiddleEar)
	assert.True(t, cfg.Parallel)

	rc.Species = "mouse"
	_, err = rc.toCochlea(48000)
	assert.ErrorIs(t, err, cochlea.ErrInvalidConfig)
}

func TestToCochlea_MiddleEarTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.csv")
	require.NoError(t, os.WriteFile(path, []byte("freq,h\n0,0\n1000,3\n5000,3\n50000,0\n"), 0o600))

	rc := defaultRunConfig()
	rc.MiddleEarTable = path
	cfg, err := rc.toCochlea(100000)
	require.NoError(t, err)
	require.NotNil(t, cfg.MiddleEar)
	assert.InDelta(t, 3.0, cfg.MiddleEar.GainDB(1000), 1e-9)
	assert.InDelta(t, 0.0, cfg.MiddleEar.GainDB(60000), 0, "outside the table")

	rc.MiddleEarTable = filepath.Join(t.TempDir(), "missing.csv")
	_, err = rc.toCochlea(100000)
	assert.Error(t, err)
}
