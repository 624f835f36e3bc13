package params

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePar = `# IHC synapse parameters
SPONT_RATE      60.0        Spontaneous rate (spikes/s).
sat_rate        250         Saturation rate (spikes/s).

MODE            spikes      Output mode.
CHANNELS        32          Channel count.
`

func TestParse_Values(t *testing.T) {
	s, err := Parse("ihc.par", strings.NewReader(samplePar))
	require.NoError(t, err)

	v, err := s.Float("spont_rate")
	require.NoError(t, err)
	assert.InDelta(t, 60.0, v, 0)

	v, err = s.Float("SAT_RATE")
	require.NoError(t, err)
	assert.InDelta(t, 250.0, v, 0)

	mode, err := s.String("Mode")
	require.NoError(t, err)
	assert.Equal(t, "spikes", mode)

	n, err := s.Int("CHANNELS")
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	assert.Equal(t, []string{"SPONT_RATE", "SAT_RATE", "MODE", "CHANNELS"}, s.Keys())
	assert.Equal(t, "ihc.par", s.Name())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing_value", "SPONT_RATE\n"},
		{"duplicate", "A 1\na 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.par", strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
			assert.Contains(t, err.Error(), "bad.par:")
		})
	}
}

func TestSet_Getters(t *testing.T) {
	s, err := Parse("ihc.par", strings.NewReader(samplePar))
	require.NoError(t, err)

	_, err = s.Float("MISSING")
	assert.True(t, errors.Is(err, ErrMissing))
	assert.Contains(t, err.Error(), "ihc.par")

	_, err = s.Float("MODE")
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = s.Int("SPONT_RATE")
	assert.True(t, errors.Is(err, ErrMalformed))

	v, err := s.FloatOr("ABSENT", 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 0)

	_, err = s.FloatOr("MODE", 1.5)
	assert.Error(t, err)

	var spont, sat float64
	require.NoError(t, s.Floats([]string{"SPONT_RATE", "SAT_RATE"}, &spont, &sat))
	assert.InDelta(t, 60.0, spont, 0)
	assert.InDelta(t, 250.0, sat, 0)

	assert.Error(t, s.Floats([]string{"SPONT_RATE"}, &spont, &sat))
}

func TestLoad_FS(t *testing.T) {
	fsys := fstest.MapFS{
		"bm.par": &fstest.MapFile{Data: []byte("ORDER 4\n")},
	}

	s, err := Load(fsys, "bm.par")
	require.NoError(t, err)
	n, err := s.Int("order")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Load(fsys, "missing.par")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open parameter file")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.par")
	require.NoError(t, os.WriteFile(path, []byte(samplePar), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, s.Has("sat_rate"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.par"))
	assert.Error(t, err)
}
