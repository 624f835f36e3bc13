package filter

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// Below this kernel length direct SIMD convolution beats the FFT path.
	minKernelForFFT = 400

	defaultFFTBlockSize = 512
)

// Convolver applies a fixed FIR kernel to whole signals. Long kernels use
// overlap-save FFT convolution, short ones direct SIMD convolution.
//
// A Convolver keeps working buffers and is not safe for concurrent use;
// build one per goroutine.
type Convolver struct {
	// weights is the kernel reversed, so that the correlation computed by
	// both paths equals the convolution with the original kernel.
	weights []float64

	fft       *fourier.FFT
	fftSize   int
	blockSize int
	scale     float64

	weightsFFT  []complex128
	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	ifftResult  []float64
}

// NewConvolver prepares a convolver for kernel. It returns nil for an empty kernel.
func NewConvolver(kernel []float64) *Convolver {
	k := len(kernel)
	if k == 0 {
		return nil
	}

	c := &Convolver{weights: make([]float64, k)}
	for i := range k {
		c.weights[i] = kernel[k-1-i]
	}

	if k < minKernelForFFT {
		return c
	}

	fftSize := defaultFFTBlockSize
	for fftSize < 2*k {
		fftSize *= 2
	}
	c.fft = fourier.NewFFT(fftSize)
	c.fftSize = fftSize
	c.blockSize = fftSize - k + 1
	c.scale = 1.0 / float64(fftSize)

	// The overlap-save block correlates against the reversed padding.
	padded := make([]float64, fftSize)
	for i := range k {
		padded[i] = c.weights[k-1-i]
	}
	c.weightsFFT = c.fft.Coefficients(nil, padded)

	fftLen := fftSize/2 + 1
	c.signalBlock = make([]float64, fftSize)
	c.signalFFT = make([]complex128, fftLen)
	c.productFFT = make([]complex128, fftLen)
	c.ifftResult = make([]float64, fftSize)

	return c
}

// Same returns the convolution of signal with the kernel, trimmed to
// len(signal) and centered on the kernel midpoint. For odd symmetric
// kernels the output has zero group delay. The input is not modified.
func (c *Convolver) Same(signal []float64) []float64 {
	n := len(signal)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	k := len(c.weights)
	lead := (k - 1) / 2
	padded := make([]float64, n+k-1)
	copy(padded[lead:], signal)

	c.valid(out, padded)
	return out
}

// valid writes len(signal)-k+1 correlation outputs to dst.
func (c *Convolver) valid(dst, signal []float64) {
	if c.fft == nil {
		f64.ConvolveValid(dst, signal, c.weights)
		return
	}

	signalLen := len(signal)
	k := len(c.weights)
	outputLen := signalLen - k + 1
	overlap := k - 1

	for outIdx := 0; outIdx < outputLen; {
		clear(c.signalBlock)
		copyLen := min(c.fftSize, signalLen-outIdx)
		copy(c.signalBlock, signal[outIdx:outIdx+copyLen])

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)
		c128.Mul(c.productFFT, c.signalFFT, c.weightsFFT)
		c.ifftResult = c.fft.Sequence(c.ifftResult, c.productFFT)
		f64.Scale(c.ifftResult, c.ifftResult, c.scale)

		valid := min(c.blockSize, outputLen-outIdx)
		copy(dst[outIdx:outIdx+valid], c.ifftResult[overlap:overlap+valid])
		outIdx += valid
	}
}
