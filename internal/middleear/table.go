package middleear

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names in table CSV files.
const (
	freqColumn = "freq"
	gainColumn = "h"
)

// LoadTable reads a CSV table with a header row naming the "freq" (Hz)
// and "h" (dB) columns. Other columns are ignored.
func LoadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidTable)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	freqIdx, gainIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case freqColumn:
			freqIdx = i
		case gainColumn:
			gainIdx = i
		}
	}
	if freqIdx < 0 || gainIdx < 0 {
		return nil, fmt.Errorf("%w: header must contain %q and %q columns", ErrInvalidTable, freqColumn, gainColumn)
	}

	table := &Table{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
		}

		line, _ := cr.FieldPos(freqIdx)
		freq, err := strconv.ParseFloat(strings.TrimSpace(record[freqIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad frequency %q", ErrInvalidTable, line, record[freqIdx])
		}
		gain, err := strconv.ParseFloat(strings.TrimSpace(record[gainIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad gain %q", ErrInvalidTable, line, record[gainIdx])
		}

		table.Freq = append(table.Freq, freq)
		table.Gain = append(table.Gain, gain)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadTableFile reads a CSV table from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open middle-ear table: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// LoadFile reads the CSV table at path and fits a filter to it.
func LoadFile(path string) (*Filter, error) {
	table, err := LoadTableFile(path)
	if err != nil {
		return nil, err
	}
	return New(table)
}
