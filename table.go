package cochlea

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Record is one spike train or continuous signal for a (channel, trial,
// fiber type) triple.
type Record struct {
	Channel int       // channel index
	CF      float64   // center frequency in Hz
	Trial   int       // trial index
	Fiber   FiberType // fiber type
	Spikes  []float64 // spike times in seconds, ascending; spikes mode only
	Signal  []float64 // synapse output in spikes/s; signals mode only
}

// Table is the ordered result of a run, grouped by channel, then trial,
// then fiber type.
type Table struct {
	records []Record
}

// NewTable wraps records. The slice is used as is and must already be
// ordered by channel, trial and fiber type.
func NewTable(records []Record) *Table {
	return &Table{records: records}
}

func flatten(perChannel [][]Record) *Table {
	n := 0
	for _, recs := range perChannel {
		n += len(recs)
	}
	records := make([]Record, 0, n)
	for _, recs := range perChannel {
		records = append(records, recs...)
	}
	return NewTable(records)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.records) }

// Rows returns all rows in order. The slice is a copy; the sample slices
// are shared with the table.
func (t *Table) Rows() []Record { return slices.Clone(t.records) }

// ByChannel returns the rows of channel i.
func (t *Table) ByChannel(i int) []Record {
	return t.filter(func(r *Record) bool { return r.Channel == i })
}

// ByTrial returns the rows of trial j across all channels.
func (t *Table) ByTrial(j int) []Record {
	return t.filter(func(r *Record) bool { return r.Trial == j })
}

// ByFiber returns the rows of fiber type ft.
func (t *Table) ByFiber(ft FiberType) []Record {
	return t.filter(func(r *Record) bool { return r.Fiber == ft })
}

func (t *Table) filter(keep func(*Record) bool) []Record {
	var out []Record
	for i := range t.records {
		if keep(&t.records[i]) {
			out = append(out, t.records[i])
		}
	}
	return out
}

// Channels returns the distinct channel indices in order.
func (t *Table) Channels() []int {
	var chans []int
	for i := range t.records {
		if ch := t.records[i].Channel; len(chans) == 0 || chans[len(chans)-1] != ch {
			chans = append(chans, ch)
		}
	}
	return chans
}

// CFs returns the center frequency of each distinct channel in order.
func (t *Table) CFs() []float64 {
	var cfs []float64
	last := -1
	for i := range t.records {
		if r := &t.records[i]; i == 0 || r.Channel != last {
			cfs = append(cfs, r.CF)
			last = r.Channel
		}
	}
	return cfs
}

// ChannelRate summarises the firing rate of one channel and fiber type
// across trials.
type ChannelRate struct {
	Channel int
	CF      float64
	Fiber   FiberType
	Trials  int
	Mean    float64 // spikes/s
	StdDev  float64 // spikes/s across trials, 0 for a single trial
}

// MeanRates returns per channel and fiber type firing rates for a
// stimulus of the given duration in seconds. Rows must hold spikes.
func (t *Table) MeanRates(duration float64) ([]ChannelRate, error) {
	if !(duration > 0) {
		return nil, fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, duration)
	}

	type key struct {
		channel int
		fiber   FiberType
	}
	var (
		order  []key
		rates  = map[key][]float64{}
		cfByCh = map[int]float64{}
	)

	for i := range t.records {
		r := &t.records[i]
		if r.Spikes == nil && r.Signal != nil {
			return nil, fmt.Errorf("%w: mean rates need spike trains", ErrIncompatibleOutput)
		}
		k := key{r.Channel, r.Fiber}
		if _, ok := rates[k]; !ok {
			order = append(order, k)
		}
		rates[k] = append(rates[k], float64(len(r.Spikes))/duration)
		cfByCh[r.Channel] = r.CF
	}

	out := make([]ChannelRate, 0, len(order))
	for _, k := range order {
		vals := rates[k]
		cr := ChannelRate{Channel: k.channel, CF: cfByCh[k.channel], Fiber: k.fiber, Trials: len(vals)}
		if len(vals) > 1 {
			cr.Mean, cr.StdDev = stat.MeanStdDev(vals, nil)
		} else {
			cr.Mean = vals[0]
		}
		out = append(out, cr)
	}
	return out, nil
}
