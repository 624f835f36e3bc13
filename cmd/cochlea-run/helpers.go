package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	cochlea "github.com/tphakala/go-cochlea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sample format constants
const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// 8-bit WAV is unsigned with silence at 128.
	uint8Midpoint = 128.0

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	outputBufferSize = 256 * 1024
)

// wavInput is a decoded WAV file mixed down to mono.
type wavInput struct {
	samples  []float64
	rate     int
	channels int
	bitDepth int
}

// readWAV decodes path and averages all channels into one signal with
// full scale mapped to ±1.
func readWAV(path string) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	bitDepth := int(decoder.BitDepth)
	scale, offset, err := sampleFormat(bitDepth)
	if err != nil {
		return nil, err
	}

	return &wavInput{
		samples:  mixDown(buf, scale, offset),
		rate:     buf.Format.SampleRate,
		channels: buf.Format.NumChannels,
		bitDepth: bitDepth,
	}, nil
}

// sampleFormat returns the full-scale value and the zero offset of raw
// PCM samples at bitDepth.
func sampleFormat(bitDepth int) (scale, offset float64, err error) {
	switch bitDepth {
	case bitsPerSample8:
		return uint8Midpoint, uint8Midpoint, nil
	case bitsPerSample16:
		return maxInt16, 0, nil
	case bitsPerSample24:
		return maxInt24, 0, nil
	case bitsPerSample32:
		return maxInt32, 0, nil
	default:
		return 0, 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}

// mixDown removes offset, averages interleaved channels and scales to ±1.
func mixDown(buf *audio.IntBuffer, scale, offset float64) []float64 {
	channels := max(buf.Format.NumChannels, 1)
	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	norm := 1 / (scale * float64(channels))

	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch]) - offset
		}
		out[i] = sum * norm
	}
	return out
}

// writeTable writes table to path as parquet or CSV, chosen by extension.
// A failed write removes the partial file.
func writeTable(path string, table *cochlea.Table, compression cochlea.Compression) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".parquet" && ext != ".csv" {
		return fmt.Errorf("unsupported output format %q (use .parquet or .csv)", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := bufio.NewWriterSize(f, outputBufferSize)
	if ext == ".parquet" {
		err = table.WriteParquet(w, compression)
	} else {
		err = table.WriteCSV(w)
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// newLogger builds a JSON logger on stderr at level.
func newLogger(level string, w zapcore.WriteSyncer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.Lock(w), zap.NewAtomicLevelAt(lvl))

	return zap.New(core, zap.AddCaller()), nil
}

// printSummary writes mean firing rates per channel and fiber type.
func printSummary(w io.Writer, table *cochlea.Table, duration float64) error {
	rates, err := table.MeanRates(duration)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%-8s %10s %-5s %10s %10s\n", "channel", "cf_hz", "fiber", "rate", "std"); err != nil {
		return err
	}
	for _, r := range rates {
		if _, err := fmt.Fprintf(w, "%-8d %10.1f %-5s %10.1f %10.1f\n",
			r.Channel, r.CF, r.Fiber, r.Mean, r.StdDev); err != nil {
			return err
		}
	}
	return nil
}
