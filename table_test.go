package cochlea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable([]Record{
		{Channel: 0, CF: 500, Trial: 0, Fiber: HSR, Spikes: []float64{0.01, 0.02}},
		{Channel: 0, CF: 500, Trial: 0, Fiber: LSR, Spikes: []float64{}},
		{Channel: 0, CF: 500, Trial: 1, Fiber: HSR, Spikes: []float64{0.03, 0.04, 0.05, 0.06}},
		{Channel: 0, CF: 500, Trial: 1, Fiber: LSR, Spikes: []float64{0.07}},
		{Channel: 1, CF: 2000, Trial: 0, Fiber: HSR, Spikes: []float64{0.01}},
		{Channel: 1, CF: 2000, Trial: 0, Fiber: LSR, Spikes: []float64{}},
		{Channel: 1, CF: 2000, Trial: 1, Fiber: HSR, Spikes: []float64{0.01}},
		{Channel: 1, CF: 2000, Trial: 1, Fiber: LSR, Spikes: []float64{}},
	})
}

func TestTable_Queries(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, 8, table.Len())
	assert.Equal(t, []int{0, 1}, table.Channels())
	assert.Equal(t, []float64{500, 2000}, table.CFs())
	assert.Len(t, table.ByChannel(1), 4)
	assert.Len(t, table.ByTrial(0), 4)
	assert.Len(t, table.ByFiber(HSR), 4)
	assert.Empty(t, table.ByFiber(MSR))
	assert.Empty(t, table.ByChannel(5))

	rows := table.Rows()
	rows[0].Channel = 99
	assert.Equal(t, 0, table.Rows()[0].Channel, "Rows returns a copy")
}

func TestTable_Empty(t *testing.T) {
	table := NewTable(nil)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Channels())
	assert.Empty(t, table.CFs())

	rates, err := table.MeanRates(1)
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestTable_MeanRates(t *testing.T) {
	rates, err := sampleTable().MeanRates(0.1)
	require.NoError(t, err)
	require.Len(t, rates, 4)

	first := rates[0]
	assert.Equal(t, 0, first.Channel)
	assert.Equal(t, HSR, first.Fiber)
	assert.Equal(t, 2, first.Trials)
	assert.InDelta(t, 30.0, first.Mean, 1e-9) // (20 + 40) / 2
	assert.InDelta(t, 14.142135623730951, first.StdDev, 1e-9)

	last := rates[3]
	assert.Equal(t, 1, last.Channel)
	assert.Equal(t, LSR, last.Fiber)
	assert.InDelta(t, 2000.0, last.CF, 0)
	assert.InDelta(t, 0.0, last.Mean, 0)
}

func TestTable_MeanRatesSingleTrial(t *testing.T) {
	table := NewTable([]Record{{Channel: 0, CF: 1000, Fiber: MSR, Spikes: []float64{0.1, 0.2, 0.3}}})
	rates, err := table.MeanRates(0.5)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.InDelta(t, 6.0, rates[0].Mean, 1e-12)
	assert.InDelta(t, 0.0, rates[0].StdDev, 0)
}

func TestTable_MeanRatesErrors(t *testing.T) {
	_, err := sampleTable().MeanRates(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	signals := NewTable([]Record{{Channel: 0, CF: 1000, Signal: []float64{1, 2}}})
	_, err = signals.MeanRates(1)
	assert.ErrorIs(t, err, ErrIncompatibleOutput)
}
