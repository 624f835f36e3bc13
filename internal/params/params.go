// Package params reads DSAM-style parameter files.
//
// A parameter file holds one parameter per line:
//
//	NAME    value    free-form description
//
// Lines starting with '#' and blank lines are ignored. Names are matched
// case-insensitively. Only the first two fields of a line are significant.
package params

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrMissing indicates a parameter that is not present in the set.
	ErrMissing = errors.New("parameter not set")

	// ErrMalformed indicates a line or value that cannot be parsed.
	ErrMalformed = errors.New("malformed parameter")
)

// Set is an immutable collection of parameters loaded from one file.
type Set struct {
	name   string
	values map[string]string
	order  []string
}

// Parse reads a parameter set from r. The name is used in error messages.
func Parse(name string, r io.Reader) (*Set, error) {
	s := &Set{
		name:   name,
		values: make(map[string]string),
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: %s:%d: %q has no value", ErrMalformed, name, lineNo, fields[0])
		}

		key := strings.ToUpper(fields[0])
		if _, dup := s.values[key]; dup {
			return nil, fmt.Errorf("%w: %s:%d: %s set twice", ErrMalformed, name, lineNo, key)
		}
		s.values[key] = fields[1]
		s.order = append(s.order, key)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return s, nil
}

// Load parses the named file from fsys.
func Load(fsys fs.FS, name string) (*Set, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open parameter file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(name, f)
}

// LoadFile parses a parameter file from disk.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parameter file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(path, f)
}

// Name returns the source name the set was parsed from.
func (s *Set) Name() string { return s.name }

// Keys returns parameter names in file order.
func (s *Set) Keys() []string {
	return append([]string(nil), s.order...)
}

// Has reports whether key is set.
func (s *Set) Has(key string) bool {
	_, ok := s.values[strings.ToUpper(key)]
	return ok
}

// String returns the raw value of key.
func (s *Set) String(key string) (string, error) {
	v, ok := s.values[strings.ToUpper(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s in %s", ErrMissing, strings.ToUpper(key), s.name)
	}
	return v, nil
}

// Float returns key parsed as a float64.
func (s *Set) Float(key string) (float64, error) {
	raw, err := s.String(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q in %s is not a number", ErrMalformed, strings.ToUpper(key), raw, s.name)
	}
	return v, nil
}

// Int returns key parsed as an int.
func (s *Set) Int(key string) (int, error) {
	raw, err := s.String(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q in %s is not an integer", ErrMalformed, strings.ToUpper(key), raw, s.name)
	}
	return v, nil
}

// FloatOr returns key as a float64, or def when the key is absent.
// A present but malformed value is still an error.
func (s *Set) FloatOr(key string, def float64) (float64, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.Float(key)
}

// Floats reads several float parameters at once, stopping at the first error.
// Each target is filled from the key at the same position.
func (s *Set) Floats(keys []string, targets ...*float64) error {
	if len(keys) != len(targets) {
		return fmt.Errorf("params: %d keys for %d targets", len(keys), len(targets))
	}
	for i, key := range keys {
		v, err := s.Float(key)
		if err != nil {
			return err
		}
		*targets[i] = v
	}
	return nil
}
