package cochlea

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Compression selects the parquet page codec.
type Compression string

// Supported parquet codecs.
const (
	CompressionSnappy Compression = "snappy"
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
	CompressionBrotli Compression = "brotli"
	CompressionLZ4    Compression = "lz4"
	CompressionNone   Compression = "none"
)

// ParseCompression parses a codec name. Empty selects snappy.
func ParseCompression(name string) (Compression, error) {
	c := Compression(strings.ToLower(strings.TrimSpace(name)))
	switch c {
	case "":
		return CompressionSnappy, nil
	case "gz":
		return CompressionGzip, nil
	case CompressionSnappy, CompressionGzip, CompressionZstd, CompressionBrotli, CompressionLZ4, CompressionNone:
		return c, nil
	default:
		return "", fmt.Errorf("unknown parquet compression %q", name)
	}
}

func (c Compression) writerOption() (parquet.WriterOption, error) {
	switch c {
	case CompressionSnappy, "":
		return parquet.Compression(&parquet.Snappy), nil
	case CompressionGzip:
		return parquet.Compression(&parquet.Gzip), nil
	case CompressionZstd:
		return parquet.Compression(&parquet.Zstd), nil
	case CompressionBrotli:
		return parquet.Compression(&parquet.Brotli), nil
	case CompressionLZ4:
		return parquet.Compression(&parquet.Lz4Raw), nil
	case CompressionNone:
		return parquet.Compression(&parquet.Uncompressed), nil
	default:
		return nil, fmt.Errorf("unknown parquet compression %q", string(c))
	}
}

// parquetRow is the on-disk layout of a Record. Kind tells spike rows from
// signal rows, since empty and absent lists look the same in parquet.
type parquetRow struct {
	Channel int64     `parquet:"channel"`
	CF      float64   `parquet:"cf"`
	Trial   int64     `parquet:"trial"`
	Fiber   string    `parquet:"fiber,dict"`
	Kind    string    `parquet:"kind,dict"`
	Spikes  []float64 `parquet:"spikes"`
	Signal  []float64 `parquet:"signal"`
}

const (
	kindSpikes = "spikes"
	kindSignal = "signal"
)

// parquetBatchSize is the number of rows read per call.
const parquetBatchSize = 256

// WriteParquet writes the table as a parquet file.
func (t *Table) WriteParquet(w io.Writer, compression Compression) error {
	opt, err := compression.writerOption()
	if err != nil {
		return err
	}

	rows := make([]parquetRow, len(t.records))
	for i := range t.records {
		r := &t.records[i]
		kind := kindSpikes
		if r.Spikes == nil && r.Signal != nil {
			kind = kindSignal
		}
		rows[i] = parquetRow{
			Channel: int64(r.Channel),
			CF:      r.CF,
			Trial:   int64(r.Trial),
			Fiber:   r.Fiber.String(),
			Kind:    kind,
			Spikes:  r.Spikes,
			Signal:  r.Signal,
		}
	}

	pw := parquet.NewGenericWriter[parquetRow](w, opt)
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads a table written by WriteParquet.
func ReadParquet(r io.ReaderAt) (*Table, error) {
	gr := parquet.NewGenericReader[parquetRow](r)
	defer func() { _ = gr.Close() }()

	var records []Record
	for {
		// Fresh batch each time: the reader may reuse list storage.
		batch := make([]parquetRow, parquetBatchSize)
		n, err := gr.Read(batch)
		for i := range n {
			rec, convErr := batch[i].record()
			if convErr != nil {
				return nil, convErr
			}
			records = append(records, rec)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}

	return NewTable(records), nil
}

func (p *parquetRow) record() (Record, error) {
	fiber, err := ParseFiberType(p.Fiber)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Channel: int(p.Channel),
		CF:      p.CF,
		Trial:   int(p.Trial),
		Fiber:   fiber,
	}
	switch p.Kind {
	case kindSpikes:
		rec.Spikes = slices.Clone(p.Spikes)
		if rec.Spikes == nil {
			rec.Spikes = []float64{}
		}
	case kindSignal:
		rec.Signal = slices.Clone(p.Signal)
		if rec.Signal == nil {
			rec.Signal = []float64{}
		}
	default:
		return Record{}, fmt.Errorf("unknown row kind %q", p.Kind)
	}
	return rec, nil
}

// csvHeader is the column layout of WriteCSV.
var csvHeader = []string{"channel", "cf", "trial", "fiber", "spikes", "signal"}

// WriteCSV writes one line per row. Spike times and signal samples are
// joined with ';'.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := range t.records {
		r := &t.records[i]
		line := []string{
			strconv.Itoa(r.Channel),
			formatFloat(r.CF),
			strconv.Itoa(r.Trial),
			r.Fiber.String(),
			joinFloats(r.Spikes),
			joinFloats(r.Signal),
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ";")
}
