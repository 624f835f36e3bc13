package cochlea

import (
	"fmt"
	"math"
	"strings"
)

type channelKind int

const (
	channelNone channelKind = iota
	channelSingle
	channelRange
	channelList
)

// ChannelSpec selects center frequencies: a single frequency, a Greenwood
// range or an explicit list. The zero value is invalid.
type ChannelSpec struct {
	kind     channelKind
	freqs    []float64
	min, max float64
	count    int
}

// Single selects one channel at freq Hz.
func Single(freq float64) ChannelSpec {
	return ChannelSpec{kind: channelSingle, freqs: []float64{freq}}
}

// Range selects count channels from min to max Hz spaced uniformly in
// cochlear place (Greenwood). The endpoints are included exactly.
func Range(minFreq, maxFreq float64, count int) ChannelSpec {
	return ChannelSpec{kind: channelRange, min: minFreq, max: maxFreq, count: count}
}

// List selects the given frequencies in order.
func List(freqs ...float64) ChannelSpec {
	return ChannelSpec{kind: channelList, freqs: append([]float64(nil), freqs...)}
}

// IsZero reports whether no channels were specified.
func (c ChannelSpec) IsZero() bool { return c.kind == channelNone }

// Frequencies returns the center frequencies in channel order.
func (c ChannelSpec) Frequencies(species Species) ([]float64, error) {
	switch c.kind {
	case channelSingle, channelList:
		if len(c.freqs) == 0 {
			return nil, fmt.Errorf("%w: empty frequency list", ErrUnsupportedChannelSpec)
		}
		for i, f := range c.freqs {
			if !(f > 0) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: frequency %d is %v", ErrUnsupportedChannelSpec, i, f)
			}
		}
		return append([]float64(nil), c.freqs...), nil

	case channelRange:
		gw, err := species.Greenwood()
		if err != nil {
			return nil, err
		}
		cfs, err := gw.Space(c.min, c.max, c.count)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedChannelSpec, err)
		}
		return cfs, nil

	default:
		return nil, fmt.Errorf("%w: no channels specified", ErrUnsupportedChannelSpec)
	}
}

func (c ChannelSpec) String() string {
	switch c.kind {
	case channelSingle:
		return fmt.Sprintf("%g", c.freqs[0])
	case channelRange:
		return fmt.Sprintf("(%g, %g, %d)", c.min, c.max, c.count)
	case channelList:
		parts := make([]string, len(c.freqs))
		for i, f := range c.freqs {
			parts[i] = fmt.Sprintf("%g", f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<none>"
	}
}
