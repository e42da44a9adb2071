// Package directconv implements spatial (non-FFT) periodic convolution,
// required by the embedded propagator because an FFT kernel cannot vary
// per cell (spec §4.5).
package directconv

import (
	"flowlenia/internal/kernel"
	"flowlenia/internal/state"

	"github.com/chewxy/math32"
)

func wrapCoord(c, size int) int {
	m := c % size
	if m < 0 {
		m += size
	}
	return m
}

// Convolve2D performs O(W*H*side^2) periodic convolution of input against
// k, writing into output (pre-allocated, length W*H).
func Convolve2D(input []float32, k *kernel.Kernel, width, height int, output []float32) {
	side := k.Side
	half := side / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float32
			for ky := 0; ky < side; ky++ {
				kv := k.Data[ky*side : ky*side+side]
				sy := wrapCoord(y+ky-half, height)
				rowBase := sy * width
				for kx := 0; kx < side; kx++ {
					kval := kv[kx]
					if kval == 0 {
						continue
					}
					sx := wrapCoord(x+kx-half, width)
					sum += input[rowBase+sx] * kval
				}
			}
			output[y*width+x] = sum
		}
	}
}

// Convolve2DOptimized is Convolve2D with row indices precomputed once per
// row, improving cache behavior for large kernels; it falls back to
// Convolve2D for side<=5 where the bookkeeping overhead isn't worth it.
func Convolve2DOptimized(input []float32, k *kernel.Kernel, width, height int, output []float32) {
	side := k.Side
	if side <= 5 {
		Convolve2D(input, k, width, height, output)
		return
	}
	half := side / 2

	rowIndices := make([][]int, height)
	for y := 0; y < height; y++ {
		rows := make([]int, side)
		for ky := 0; ky < side; ky++ {
			rows[ky] = wrapCoord(y+ky-half, height)
		}
		rowIndices[y] = rows
	}

	for y := 0; y < height; y++ {
		srcRows := rowIndices[y]
		for x := 0; x < width; x++ {
			var sum float32
			for ky, sy := range srcRows {
				kRow := k.Data[ky*side : ky*side+side]
				inputRow := input[sy*width:]
				for kx, kval := range kRow {
					if kval == 0 {
						continue
					}
					sx := wrapCoord(x+kx-half, width)
					sum += inputRow[sx] * kval
				}
			}
			output[y*width+x] = sum
		}
	}
}

func growthAt(convSum float32, p state.CellParams) float32 {
	diff := convSum - p.Mu
	s := 2 * p.Sigma * p.Sigma
	g := 2*math32.Exp(-diff*diff/s) - 1
	return p.Weight * g
}

// ConvolveGrowthEmbedded2D convolves input against k and applies the
// growth function with each destination cell's own parameters, writing
// the weighted result (not accumulated) into output.
func ConvolveGrowthEmbedded2D(input []float32, k *kernel.Kernel, params *state.ParameterGrid, width, height int, output []float32) {
	side := k.Side
	half := side / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			var sum float32
			for ky := 0; ky < side; ky++ {
				kv := k.Data[ky*side : ky*side+side]
				sy := wrapCoord(y+ky-half, height)
				rowBase := sy * width
				for kx := 0; kx < side; kx++ {
					kval := kv[kx]
					if kval == 0 {
						continue
					}
					sx := wrapCoord(x+kx-half, width)
					sum += input[rowBase+sx] * kval
				}
			}
			output[idx] = growthAt(sum, params.GetIdx(idx))
		}
	}
}
