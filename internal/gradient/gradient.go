// Package gradient computes Sobel gradients with periodic wrap, in 2D
// (3x3) and 3D (3x3x3), (§4.3).
package gradient

// wrapPrev/wrapNext compute the periodic neighbor index without modulo's
// sign ambiguity for negative operands: `(i+N-1) mod N` and `(i+1) mod N`.
func wrapPrev(i, n int) int {
	return (i + n - 1) % n
}

func wrapNext(i, n int) int {
	return (i + 1) % n
}

// Sobel2D computes the periodic-wrap Sobel gradient of a W×H grid,
// writing normalized (1/8 factor) components into gx and gy
// (both pre-allocated, length W*H).
func Sobel2D(grid []float32, width, height int, gx, gy []float32) {
	const norm = 1.0 / 8.0
	for y := 0; y < height; y++ {
		yp := wrapPrev(y, height)
		yn := wrapNext(y, height)
		for x := 0; x < width; x++ {
			xp := wrapPrev(x, width)
			xn := wrapNext(x, width)

			tl := grid[yp*width+xp]
			tc := grid[yp*width+x]
			tr := grid[yp*width+xn]
			ml := grid[y*width+xp]
			mr := grid[y*width+xn]
			bl := grid[yn*width+xp]
			bc := grid[yn*width+x]
			br := grid[yn*width+xn]

			// Sobel X: [-1 0 1; -2 0 2; -1 0 1]
			sx := (-tl + tr - 2*ml + 2*mr - bl + br) * norm
			// Sobel Y: [-1 -2 -1; 0 0 0; 1 2 1]
			sy := (-tl - 2*tc - tr + bl + 2*bc + br) * norm

			idx := y*width + x
			gx[idx] = sx
			gy[idx] = sy
		}
	}
}

// Sobel3D computes the full 3x3x3 separable Sobel gradient (outer product
// of [1,2,1] smoothing along the two non-differentiated axes with [-1,0,1]
// along the differentiated axis), normalized by 1/32, with periodic wrap.
func Sobel3D(grid []float32, width, height, depth int, gx, gy, gz []float32) {
	const norm = 1.0 / 32.0

	idx := func(x, y, z int) int {
		return (z*height+y)*width + x
	}

	for z := 0; z < depth; z++ {
		zp := wrapPrev(z, depth)
		zn := wrapNext(z, depth)
		for y := 0; y < height; y++ {
			yp := wrapPrev(y, height)
			yn := wrapNext(y, height)
			for x := 0; x < width; x++ {
				xp := wrapPrev(x, width)
				xn := wrapNext(x, width)

				var sx, sy, sz float32
				// weights along each non-differentiated axis: prev=1, mid=2, next=1
				xs := [3]int{xp, x, xn}
				xw := [3]float32{1, 2, 1}
				ys := [3]int{yp, y, yn}
				yw := [3]float32{1, 2, 1}
				zs := [3]int{zp, z, zn}
				zw := [3]float32{1, 2, 1}
				// differentiating weights: prev=-1, mid=0, next=1
				dw := [3]float32{-1, 0, 1}

				for iz := 0; iz < 3; iz++ {
					for iy := 0; iy < 3; iy++ {
						for ix := 0; ix < 3; ix++ {
							v := grid[idx(xs[ix], ys[iy], zs[iz])]
							sx += dw[ix] * yw[iy] * zw[iz] * v
							sy += xw[ix] * dw[iy] * zw[iz] * v
							sz += xw[ix] * yw[iy] * dw[iz] * v
						}
					}
				}

				i := idx(x, y, z)
				gx[i] = sx * norm
				gy[i] = sy * norm
				gz[i] = sz * norm
			}
		}
	}
}
