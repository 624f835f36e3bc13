package cochlea

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-cochlea/internal/greenwood"
)

// Species selects the Greenwood place-frequency constants.
type Species int

const (
	// Human uses A=165.4, k=0.88, a=2.1.
	Human Species = iota
	// GuineaPig uses A=350, k=0.85, a=2.1.
	GuineaPig
	// Cat uses A=456, k=0.8, a=2.1.
	Cat
)

var speciesNames = map[Species]string{
	Human:     "human",
	GuineaPig: "guinea-pig",
	Cat:       "cat",
}

func (s Species) String() string {
	if name, ok := speciesNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Species(%d)", int(s))
}

// ParseSpecies parses a species name. "gp" is accepted for guinea pig.
func ParseSpecies(name string) (Species, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "gp" {
		return GuineaPig, nil
	}
	for s, sn := range speciesNames {
		if n == sn {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown species %q", ErrInvalidConfig, name)
}

// Greenwood returns the species' place-frequency constants.
func (s Species) Greenwood() (greenwood.Params, error) {
	switch s {
	case Human:
		return greenwood.Human, nil
	case GuineaPig:
		return greenwood.GuineaPig, nil
	case Cat:
		return greenwood.Cat, nil
	default:
		return greenwood.Params{}, fmt.Errorf("%w: unknown species %d", ErrInvalidConfig, int(s))
	}
}
