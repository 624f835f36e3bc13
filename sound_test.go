package cochlea

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPureTone_Level(t *testing.T) {
	tone, err := PureTone(testFS, 1000, 0.1, 50, 0)
	require.NoError(t, err)
	require.Len(t, tone, 10000)

	assert.InDelta(t, 50.0, DBSPL(tone), 0.01)
}

func TestPureTone_Ramps(t *testing.T) {
	tone, err := PureTone(testFS, 1000, 0.1, 60, 0.01)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, tone[0], 1e-15)
	assert.InDelta(t, 0.0, tone[len(tone)-1], 1e-15)

	peak := math.Sqrt2 * ReferencePressure * math.Pow(10, 60.0/20)
	var steady float64
	for _, v := range tone[2000:8000] {
		steady = math.Max(steady, math.Abs(v))
	}
	assert.InDelta(t, peak, steady, peak*1e-3)
}

func TestPureTone_Invalid(t *testing.T) {
	_, err := PureTone(0, 1000, 0.1, 60, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = PureTone(testFS, 60000, 0.1, 60, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = PureTone(testFS, 1000, 0, 60, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetDBSPL(t *testing.T) {
	tone, err := PureTone(testFS, 2000, 0.05, 40, 0)
	require.NoError(t, err)

	louder, err := SetDBSPL(tone, 80)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, DBSPL(louder), 1e-9)
	assert.InDelta(t, 40.0, DBSPL(tone), 0.01, "input unchanged")

	_, err = SetDBSPL(Silence(testFS, 0.01), 60)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSilenceAndDBSPL(t *testing.T) {
	s := Silence(testFS, 0.25)
	assert.Len(t, s, 25000)
	assert.True(t, math.IsInf(DBSPL(s), -1))
	assert.True(t, math.IsInf(DBSPL(nil), -1))
	assert.Empty(t, Silence(testFS, -1))
}

func TestRamp_ShortSignal(t *testing.T) {
	in := []float64{1, 1, 1}
	out := Ramp(in, testFS, 1)
	assert.Len(t, out, 3)
	assert.Equal(t, []float64{1, 1, 1}, in)
	assert.InDelta(t, 0.0, out[0], 0)
	assert.InDelta(t, 1.0, out[1], 0)
	assert.InDelta(t, 0.0, out[2], 0)
}
