package fftconv

import (
	"math"
	"testing"

	"flowlenia/internal/config"
	"flowlenia/internal/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKernel(t *testing.T, maxRadius int) *kernel.Kernel {
	t.Helper()
	kc := config.KernelConfig{
		Radius: 1.0,
		Rings: []config.RingConfig{
			{Amplitude: 1.0, Distance: 0.5, Width: 0.15},
		},
		Weight: 1.0,
		Mu:     0.15,
		Sigma:  0.015,
	}
	k, err := kernel.Build2D(kc, maxRadius)
	require.NoError(t, err)
	return k
}

func TestConvolver2D_ForwardInverseRoundTrip(t *testing.T) {
	const w, h = 16, 16
	c := NewConvolver2D(w, h)

	data := make([]complex128, w*h)
	for i := range data {
		data[i] = complex(math.Sin(float64(i)*0.37), 0)
	}
	original := make([]complex128, len(data))
	copy(original, data)

	c.forwardInto(data)
	c.inverseInto(data)

	for i := range data {
		assert.InDelta(t, real(original[i]), real(data[i]), 1e-4)
		assert.InDelta(t, imag(original[i]), imag(data[i]), 1e-4)
	}
}

func TestConvolver2D_ConvolutionIsCommutative(t *testing.T) {
	const w, h = 16, 16
	c := NewConvolver2D(w, h)
	k := testKernel(t, 4)
	padded := k.PadAndShift2D(w, h)

	x := make([]float32, w*h)
	for i := range x {
		x[i] = float32(i%5) * 0.1
	}

	// conv(x, k) via k's spectrum...
	fk := c.BuildFrequencyKernel(k)
	abBuf := make([]float32, w*h)
	c.Convolve(x, fk, abBuf)

	// ...must equal conv(k, x) via x's own spectrum, since circular
	// convolution is commutative.
	xSpec := make([]complex128, w*h)
	for i, v := range x {
		xSpec[i] = complex(float64(v), 0)
	}
	c.forwardInto(xSpec)
	fx := &FrequencyKernel{Spectrum: xSpec}
	baBuf := make([]float32, w*h)
	c.Convolve(padded, fx, baBuf)

	for i := range abBuf {
		assert.InDelta(t, abBuf[i], baBuf[i], 1e-4)
	}
}

func TestConvolver2D_DeltaInputReproducesKernel(t *testing.T) {
	const w, h = 16, 16
	c := NewConvolver2D(w, h)
	k := testKernel(t, 4)
	fk := c.BuildFrequencyKernel(k)

	delta := make([]float32, w*h)
	delta[0] = 1.0
	out := make([]float32, w*h)
	c.Convolve(delta, fk, out)

	padded := k.PadAndShift2D(w, h)
	for i := range out {
		assert.InDelta(t, float64(padded[i]), float64(out[i]), 1e-4)
	}
}

func TestConvolver3D_ForwardInverseRoundTrip(t *testing.T) {
	const w, h, d = 8, 8, 8
	c := NewConvolver3D(w, h, d)

	data := make([]complex128, w*h*d)
	for i := range data {
		data[i] = complex(math.Cos(float64(i)*0.21), 0)
	}
	original := make([]complex128, len(data))
	copy(original, data)

	c.forwardInto(data)
	c.inverseInto(data)

	for i := range data {
		assert.InDelta(t, real(original[i]), real(data[i]), 1e-4)
	}
}
