// Package fftconv implements frequency-domain convolution for 2D and 3D
// grids (spec §4.2): cached per-axis FFT plans, precomputed frequency-domain
// kernels, and a scratch structure sized once per Convolver so that no
// allocation occurs inside a convolution call.
//
// The convolution is separable: for 3D, X-rows are transformed first, then
// Y-columns within each Z-slice, then Z-lines; the inverse reverses this
// order. Each axis owns its own cached *fourier.CmplxFFT plan rather than
// one whole-grid transform.
package fftconv

import (
	"flowlenia/internal/kernel"

	"gonum.org/v1/gonum/dsp/fourier"
)

// axisPlan wraps a single-axis complex DFT plan. Inverse is computed via
// the conjugate identity IDFT(X) = conj(DFT(conj(X))) / n, so only the
// forward primitive (Coefficients, unnormalized) is relied upon; the 1/n
// scaling is applied explicitly here rather than assumed from the library.
type axisPlan struct {
	fft *fourier.CmplxFFT
	n   int
}

func newAxisPlan(n int) *axisPlan {
	return &axisPlan{fft: fourier.NewCmplxFFT(n), n: n}
}

// forward computes the unnormalized DFT of line in place (scratch dst must
// have length n).
func (p *axisPlan) forward(dst, line []complex128) {
	p.fft.Coefficients(dst, line)
	copy(line, dst)
}

// inverse computes the normalized IDFT of line in place.
func (p *axisPlan) inverse(dst, line []complex128) {
	conjugate(line)
	p.fft.Coefficients(dst, line)
	copy(line, dst)
	conjugate(line)
	invN := 1.0 / float64(p.n)
	for i := range line {
		line[i] *= complex(invN, 0)
	}
}

func conjugate(line []complex128) {
	for i, v := range line {
		line[i] = complex(real(v), -imag(v))
	}
}

// FrequencyKernel is a kernel's spectrum, built once per Convolver and held
// by shared read-only reference.
type FrequencyKernel struct {
	Spectrum      []complex128
	SourceChannel int
	TargetChannel int
	Weight        float32
	Mu            float32
	Sigma         float32
}

// Convolver2D owns cached FFT plans for a W×H grid and a set of
// precomputed frequency kernels.
type Convolver2D struct {
	width, height int
	planX, planY  *axisPlan

	// scratch, provisioned once
	spectrum []complex128 // W*H, reused as both forward result and inverse input
	lineBuf  []complex128 // max(width,height)
	tmp      []complex128 // axis-length plan scratch
}

// NewConvolver2D allocates plans and scratch for a W×H grid.
func NewConvolver2D(width, height int) *Convolver2D {
	maxAxis := width
	if height > maxAxis {
		maxAxis = height
	}
	return &Convolver2D{
		width:    width,
		height:   height,
		planX:    newAxisPlan(width),
		planY:    newAxisPlan(height),
		spectrum: make([]complex128, width*height),
		lineBuf:  make([]complex128, maxAxis),
		tmp:      make([]complex128, maxAxis),
	}
}

// BuildFrequencyKernel pads+shifts k to the grid size and forward-FFTs it.
func (c *Convolver2D) BuildFrequencyKernel(k *kernel.Kernel) *FrequencyKernel {
	padded := k.PadAndShift2D(c.width, c.height)
	spec := make([]complex128, c.width*c.height)
	for i, v := range padded {
		spec[i] = complex(float64(v), 0)
	}
	c.forwardInto(spec)
	return &FrequencyKernel{
		Spectrum:      spec,
		SourceChannel: k.SourceChannel,
		TargetChannel: k.TargetChannel,
		Weight:        k.Weight,
		Mu:            k.Mu,
		Sigma:         k.Sigma,
	}
}

// forwardInto runs the forward separable FFT over data in place: X-rows
// then Y-columns.
func (c *Convolver2D) forwardInto(data []complex128) {
	w, h := c.width, c.height
	for y := 0; y < h; y++ {
		row := data[y*w : y*w+w]
		c.planX.forward(c.tmp[:w], row)
	}
	col := c.lineBuf[:h]
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		c.planY.forward(c.tmp[:h], col)
		for y := 0; y < h; y++ {
			data[y*w+x] = col[y]
		}
	}
}

// inverseInto runs the inverse separable FFT over data in place: Y-columns
// then X-rows (reverse of forward order).
func (c *Convolver2D) inverseInto(data []complex128) {
	w, h := c.width, c.height
	col := c.lineBuf[:h]
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		c.planY.inverse(c.tmp[:h], col)
		for y := 0; y < h; y++ {
			data[y*w+x] = col[y]
		}
	}
	for y := 0; y < h; y++ {
		row := data[y*w : y*w+w]
		c.planX.inverse(c.tmp[:w], row)
	}
}

// Convolve computes the circular convolution of real input x with the
// given frequency kernel, writing the real part of the result into out
// (len(out) == width*height). No allocation occurs once the Convolver is
// provisioned.
func (c *Convolver2D) Convolve(x []float32, fk *FrequencyKernel, out []float32) {
	for i, v := range x {
		c.spectrum[i] = complex(float64(v), 0)
	}
	c.forwardInto(c.spectrum)
	for i := range c.spectrum {
		c.spectrum[i] *= fk.Spectrum[i]
	}
	c.inverseInto(c.spectrum)
	for i, v := range c.spectrum {
		out[i] = float32(real(v))
	}
}

// Convolver3D generalizes Convolver2D with a third axis (Z), transformed
// last on the forward pass and first on the inverse pass.
type Convolver3D struct {
	width, height, depth int
	planX, planY, planZ  *axisPlan

	spectrum []complex128
	lineBuf  []complex128
	tmp      []complex128
}

// NewConvolver3D allocates plans and scratch for a W×H×D grid.
func NewConvolver3D(width, height, depth int) *Convolver3D {
	maxAxis := width
	if height > maxAxis {
		maxAxis = height
	}
	if depth > maxAxis {
		maxAxis = depth
	}
	return &Convolver3D{
		width:    width,
		height:   height,
		depth:    depth,
		planX:    newAxisPlan(width),
		planY:    newAxisPlan(height),
		planZ:    newAxisPlan(depth),
		spectrum: make([]complex128, width*height*depth),
		lineBuf:  make([]complex128, maxAxis),
		tmp:      make([]complex128, maxAxis),
	}
}

// BuildFrequencyKernel pads+shifts k to the grid size and forward-FFTs it.
func (c *Convolver3D) BuildFrequencyKernel(k *kernel.Kernel) *FrequencyKernel {
	padded := k.PadAndShift3D(c.width, c.height, c.depth)
	spec := make([]complex128, len(padded))
	for i, v := range padded {
		spec[i] = complex(float64(v), 0)
	}
	c.forwardInto(spec)
	return &FrequencyKernel{
		Spectrum:      spec,
		SourceChannel: k.SourceChannel,
		TargetChannel: k.TargetChannel,
		Weight:        k.Weight,
		Mu:            k.Mu,
		Sigma:         k.Sigma,
	}
}

func (c *Convolver3D) idx(x, y, z int) int {
	return (z*c.height+y)*c.width + x
}

// forwardInto: X-rows, then Y-columns per Z-slice, then Z-lines.
func (c *Convolver3D) forwardInto(data []complex128) {
	w, h, d := c.width, c.height, c.depth

	for z := 0; z < d; z++ {
		base := z * h * w
		for y := 0; y < h; y++ {
			row := data[base+y*w : base+y*w+w]
			c.planX.forward(c.tmp[:w], row)
		}
	}

	col := c.lineBuf[:h]
	for z := 0; z < d; z++ {
		base := z * h * w
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = data[base+y*w+x]
			}
			c.planY.forward(c.tmp[:h], col)
			for y := 0; y < h; y++ {
				data[base+y*w+x] = col[y]
			}
		}
	}

	line := c.lineBuf[:d]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for z := 0; z < d; z++ {
				line[z] = data[c.idx(x, y, z)]
			}
			c.planZ.forward(c.tmp[:d], line)
			for z := 0; z < d; z++ {
				data[c.idx(x, y, z)] = line[z]
			}
		}
	}
}

// inverseInto reverses forwardInto's order: Z-lines, then Y-columns, then X-rows.
func (c *Convolver3D) inverseInto(data []complex128) {
	w, h, d := c.width, c.height, c.depth

	line := c.lineBuf[:d]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for z := 0; z < d; z++ {
				line[z] = data[c.idx(x, y, z)]
			}
			c.planZ.inverse(c.tmp[:d], line)
			for z := 0; z < d; z++ {
				data[c.idx(x, y, z)] = line[z]
			}
		}
	}

	col := c.lineBuf[:h]
	for z := 0; z < d; z++ {
		base := z * h * w
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = data[base+y*w+x]
			}
			c.planY.inverse(c.tmp[:h], col)
			for y := 0; y < h; y++ {
				data[base+y*w+x] = col[y]
			}
		}
	}

	for z := 0; z < d; z++ {
		base := z * h * w
		for y := 0; y < h; y++ {
			row := data[base+y*w : base+y*w+w]
			c.planX.inverse(c.tmp[:w], row)
		}
	}
}

// Convolve computes the circular convolution of real input x with the
// given frequency kernel, writing the real part into out.
func (c *Convolver3D) Convolve(x []float32, fk *FrequencyKernel, out []float32) {
	for i, v := range x {
		c.spectrum[i] = complex(float64(v), 0)
	}
	c.forwardInto(c.spectrum)
	for i := range c.spectrum {
		c.spectrum[i] *= fk.Spectrum[i]
	}
	c.inverseInto(c.spectrum)
	for i, v := range c.spectrum {
		out[i] = float32(real(v))
	}
}
