package periphery

import (
	"fmt"
	"strings"
)

// FiberType is an auditory nerve fiber class by spontaneous rate.
type FiberType int

const (
	// HSR is a high spontaneous rate fiber.
	HSR FiberType = iota
	// MSR is a medium spontaneous rate fiber.
	MSR
	// LSR is a low spontaneous rate fiber.
	LSR

	numFiberTypes = 3
)

// FiberTypes lists all fiber types in output order.
var FiberTypes = []FiberType{HSR, MSR, LSR}

var fiberNames = [numFiberTypes]string{"hsr", "msr", "lsr"}

func (f FiberType) String() string {
	if !f.Valid() {
		return fmt.Sprintf("FiberType(%d)", int(f))
	}
	return fiberNames[f]
}

// Valid reports whether f is one of the known fiber types.
func (f FiberType) Valid() bool { return f >= 0 && f < numFiberTypes }

// ParseFiberType parses "hsr", "msr" or "lsr" (case-insensitive).
func ParseFiberType(s string) (FiberType, error) {
	for i, name := range fiberNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return FiberType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fiber type %q", s)
}

func (f FiberType) parFile() string { return "ihc_" + f.String() + ".par" }
