package periphery

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-cochlea/internal/params"
	"github.com/tphakala/go-cochlea/internal/testutil"
	"gonum.org/v1/gonum/stat"
)

const testFS = 100e3

// toneAtDB returns n samples of a sine at the given RMS level in dB SPL.
func toneAtDB(freq, db float64, n int) []float64 {
	amp := math.Sqrt2 * 20e-6 * math.Pow(10, db/20)
	return testutil.Sine(freq, amp, testFS, n)
}

func newTestModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	return m
}

func TestNew_EmbeddedParameters(t *testing.T) {
	m := newTestModel(t, DefaultConfig())

	assert.Equal(t, 4, m.BM().Order)
	assert.InDelta(t, 3000.0, m.ReceptorParams().Cutoff, 0)

	hsr, err := m.Synapse(HSR)
	require.NoError(t, err)
	lsr, err := m.Synapse(LSR)
	require.NoError(t, err)
	assert.Greater(t, hsr.SpontRate, lsr.SpontRate)
	assert.Less(t, hsr.Threshold, lsr.Threshold)

	_, err = m.Synapse(FiberType(7))
	assert.Error(t, err)
}

func TestNew_ParDirOverride(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{bmParFile, receptorParFile, "ihc_hsr.par", "ihc_msr.par", "ihc_lsr.par"} {
		data, err := embeddedPars.ReadFile("par/" + name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ihc_hsr.par"), []byte(
		"SPONT_RATE 42\nPEAK_RATE 500\nTHRESHOLD 0.1\nSLOPE 0.02\nTAU_RECOVERY 0.05\n"+
			"DEPLETION 0.05\nABS_REFRACTORY 0.001\nREL_REFRACTORY 0.001\n"), 0o600))

	cfg := DefaultConfig()
	cfg.ParDir = dir
	m := newTestModel(t, cfg)

	hsr, err := m.Synapse(HSR)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, hsr.SpontRate, 0)

	require.NoError(t, os.Remove(filepath.Join(dir, "ihc_lsr.par")))
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_MissingParameter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{receptorParFile, "ihc_hsr.par", "ihc_msr.par", "ihc_lsr.par"} {
		data, err := embeddedPars.ReadFile("par/" + name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, bmParFile), []byte("ORDER 4\nERB_SCALE 1\n"), 0o600))

	_, err := New(Config{ParDir: dir, OHCHealth: 1, IHCHealth: 1})
	assert.ErrorIs(t, err, params.ErrMissing)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		ohc, ihc float64
		wantErr  bool
	}{
		{"healthy", 1, 1, false},
		{"impaired", 0, 0.5, false},
		{"ohc_above", 1.5, 1, true},
		{"ihc_negative", 1, -0.1, true},
		{"nan", math.NaN(), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{OHCHealth: tt.ohc, IHCHealth: tt.ihc}
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHealth)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReceptor_SilenceIsZero(t *testing.T) {
	m := newTestModel(t, DefaultConfig())

	out, err := m.Receptor(make([]float64, 5000), testFS, 1000)
	require.NoError(t, err)
	require.Len(t, out, 5000)
	testutil.AssertAllInRange(t, out, 0, 0)
}

func TestReceptor_GrowsWithLevel(t *testing.T) {
	m := newTestModel(t, DefaultConfig())

	soft, err := m.Receptor(toneAtDB(1000, 20, 10000), testFS, 1000)
	require.NoError(t, err)
	loud, err := m.Receptor(toneAtDB(1000, 60, 10000), testFS, 1000)
	require.NoError(t, err)

	testutil.AssertNoNaNOrInf(t, loud)
	assert.Greater(t, stat.Mean(loud[5000:], nil), stat.Mean(soft[5000:], nil))
}

func TestReceptor_FrequencySelective(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	tone := toneAtDB(1000, 60, 10000)

	onCF, err := m.Receptor(tone, testFS, 1000)
	require.NoError(t, err)
	offCF, err := m.Receptor(tone, testFS, 8000)
	require.NoError(t, err)

	assert.Greater(t, testutil.RMS(onCF[5000:]), 10*testutil.RMS(offCF[5000:]))
}

func TestReceptor_OHCLossReducesResponse(t *testing.T) {
	healthy := newTestModel(t, DefaultConfig())
	impaired := newTestModel(t, Config{OHCHealth: 0, IHCHealth: 1})
	tone := toneAtDB(2000, 20, 10000)

	h, err := healthy.Receptor(tone, testFS, 2000)
	require.NoError(t, err)
	i, err := impaired.Receptor(tone, testFS, 2000)
	require.NoError(t, err)

	assert.Greater(t, testutil.RMS(h[5000:]), 10*testutil.RMS(i[5000:]))
}

func TestReceptor_InvalidCF(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	_, err := m.Receptor(make([]float64, 100), testFS, 60000)
	assert.Error(t, err)
}

func TestRate_SpontaneousAtRest(t *testing.T) {
	m := newTestModel(t, DefaultConfig())

	for _, ft := range FiberTypes {
		sp, err := m.Synapse(ft)
		require.NoError(t, err)

		rate, err := m.Rate(make([]float64, 1000), testFS, 1000, ft)
		require.NoError(t, err)
		for _, r := range rate {
			require.InDelta(t, sp.SpontRate, r, 1e-9, "fiber %s", ft)
		}
	}
}

func TestRate_AdaptsToSustainedDrive(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	sp, err := m.Synapse(HSR)
	require.NoError(t, err)

	const fs = 10000.0
	receptor := make([]float64, 3000)
	for i := range receptor {
		receptor[i] = 1
	}

	rate, err := m.Rate(receptor, fs, 1000, HSR)
	require.NoError(t, err)

	testutil.AssertAllInRange(t, rate, sp.SpontRate, sp.SpontRate+sp.PeakRate)
	assert.InDelta(t, sp.SpontRate+sp.PeakRate, rate[0], 1)
	assert.Less(t, rate[len(rate)-1], 0.5*rate[0])
}

func TestSpikes_Statistics(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	sp, err := m.Synapse(HSR)
	require.NoError(t, err)

	const fs = 10000.0
	rate := make([]float64, 100000) // 10 s
	for i := range rate {
		rate[i] = 100
	}

	spikes, err := m.Spikes(rate, fs, HSR, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	assert.Greater(t, len(spikes), 750)
	assert.Less(t, len(spikes), 1000)
	testutil.AssertStrictlyIncreasing(t, spikes)
	for i := 1; i < len(spikes); i++ {
		require.GreaterOrEqual(t, spikes[i]-spikes[i-1], sp.AbsRefractory-1e-12)
	}
}

func TestSpikes_Deterministic(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	rate := make([]float64, 20000)
	for i := range rate {
		rate[i] = 200
	}

	a, err := m.Spikes(rate, testFS, MSR, rand.New(rand.NewPCG(7, 0)))
	require.NoError(t, err)
	b, err := m.Spikes(rate, testFS, MSR, rand.New(rand.NewPCG(7, 0)))
	require.NoError(t, err)
	c, err := m.Spikes(rate, testFS, MSR, rand.New(rand.NewPCG(8, 0)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSpikes_EdgeCases(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	rng := rand.New(rand.NewPCG(1, 1))

	spikes, err := m.Spikes(make([]float64, 1000), testFS, LSR, rng)
	require.NoError(t, err)
	assert.NotNil(t, spikes)
	assert.Empty(t, spikes)

	_, err = m.Spikes([]float64{1, math.NaN()}, testFS, LSR, rng)
	assert.Error(t, err)

	_, err = m.Spikes([]float64{1}, testFS, LSR, nil)
	assert.Error(t, err)

	_, err = m.Spikes([]float64{1}, testFS, FiberType(-1), rng)
	assert.Error(t, err)
}

func TestFiberType(t *testing.T) {
	assert.Equal(t, "hsr", HSR.String())
	assert.Equal(t, "lsr", LSR.String())
	assert.Equal(t, "FiberType(5)", FiberType(5).String())

	ft, err := ParseFiberType(" MSR ")
	require.NoError(t, err)
	assert.Equal(t, MSR, ft)

	_, err = ParseFiberType("xsr")
	assert.Error(t, err)
}
