package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_ProcessInOrder(t *testing.T) {
	p := New(
		Map(StageCompression, func(x float64) float64 { return x * 2 }),
		nil,
		Map(StageCustom, func(x float64) float64 { return x + 1 }),
	)
	assert.Equal(t, "compression -> custom", p.String())

	in := []float64{1, 2, 3}
	out, err := p.Process(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5, 7}, out)
	assert.Equal(t, []float64{1, 2, 3}, in, "input must not be modified")
}

func TestPipeline_Errors(t *testing.T) {
	_, err := New().Process([]float64{1})
	assert.ErrorIs(t, err, ErrEmptyPipeline)

	boom := errors.New("boom")
	p := New(
		Map(StageMiddleEar, func(x float64) float64 { return x }),
		Func{Kind: StageSynapse, Fn: func([]float64) ([]float64, error) { return nil, boom }},
	)
	_, err = p.Process([]float64{1})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage 1 (synapse)")

	short := New(Func{Kind: StageMembrane, Fn: func(in []float64) ([]float64, error) { return in[:1], nil }})
	_, err = short.Process([]float64{1, 2})
	assert.Error(t, err)
}

func TestStageType_String(t *testing.T) {
	assert.Equal(t, "basilar-membrane", StageBasilarMembrane.String())
	assert.Equal(t, "StageType(99)", StageType(99).String())
}
