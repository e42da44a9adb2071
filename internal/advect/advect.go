// Package advect implements reintegration tracking (spec §4.7): the
// mass-conservative advection scheme that distributes each source cell's
// mass onto a displaced square (2D) or cube (3D) footprint with
// analytically exact overlap fractions.
package advect

import "github.com/chewxy/math32"

const massEpsilon = 1e-10

// wrapCoord wraps an integer coordinate into [0,size) with positive modulo.
func wrapCoord(c, size int) int {
	m := c % size
	if m < 0 {
		m += size
	}
	return m
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Advect2D advects mass from current into next (pre-zeroed, length W*H)
// using the flow field (fx, fy), following §4.7 exactly: per source cell,
// compute the destination position, distribute over a square footprint of
// half-width s, and accumulate exact overlap fractions into next with
// periodic wrap. Cells with |mass|<1e-10 are skipped; when the footprint
// area is below 1e-10 the scheme falls back to nearest-cell deposition.
func Advect2D(current, fx, fy []float32, width, height int, dt, s float32, next []float32) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			mass := current[idx]
			if math32.Abs(mass) < massEpsilon {
				continue
			}
			destX := float32(x) + dt*fx[idx]
			destY := float32(y) + dt*fy[idx]
			distribute2D(next, mass, destX, destY, width, height, s)
		}
	}
}

func distribute2D(grid []float32, mass, destX, destY float32, width, height int, s float32) {
	xMin, xMax := destX-s, destX+s
	yMin, yMax := destY-s, destY+s

	totalArea := (2 * s) * (2 * s)
	if totalArea < massEpsilon {
		nx := wrapCoord(int(math32.Round(destX)), width)
		ny := wrapCoord(int(math32.Round(destY)), height)
		grid[ny*width+nx] += mass
		return
	}

	ixMin := clampInt(int(math32.Floor(xMin)), -width, 2*width)
	ixMax := clampInt(int(math32.Ceil(xMax)), -width, 2*width)
	iyMin := clampInt(int(math32.Floor(yMin)), -height, 2*height)
	iyMax := clampInt(int(math32.Ceil(yMax)), -height, 2*height)

	for iy := iyMin; iy <= iyMax; iy++ {
		cellYMin := float32(iy)
		cellYMax := float32(iy + 1)
		overlapYMin := max32(cellYMin, yMin)
		overlapYMax := min32(cellYMax, yMax)
		overlapH := overlapYMax - overlapYMin
		if overlapH <= 0 {
			continue
		}
		ny := wrapCoord(iy, height)
		rowBase := ny * width
		for ix := ixMin; ix <= ixMax; ix++ {
			cellXMin := float32(ix)
			cellXMax := float32(ix + 1)
			overlapXMin := max32(cellXMin, xMin)
			overlapXMax := min32(cellXMax, xMax)
			overlapW := overlapXMax - overlapXMin
			if overlapW <= 0 {
				continue
			}
			fraction := (overlapW * overlapH) / totalArea
			nx := wrapCoord(ix, width)
			grid[rowBase+nx] += mass * fraction
		}
	}
}

// Advect3D generalizes Advect2D to a cube footprint.
func Advect3D(current, fx, fy, fz []float32, width, height, depth int, dt, s float32, next []float32) {
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				idx := (z*height+y)*width + x
				mass := current[idx]
				if math32.Abs(mass) < massEpsilon {
					continue
				}
				destX := float32(x) + dt*fx[idx]
				destY := float32(y) + dt*fy[idx]
				destZ := float32(z) + dt*fz[idx]
				distribute3D(next, mass, destX, destY, destZ, width, height, depth, s)
			}
		}
	}
}

func distribute3D(grid []float32, mass, destX, destY, destZ float32, width, height, depth int, s float32) {
	xMin, xMax := destX-s, destX+s
	yMin, yMax := destY-s, destY+s
	zMin, zMax := destZ-s, destZ+s

	totalVolume := (2 * s) * (2 * s) * (2 * s)
	if totalVolume < massEpsilon {
		nx := wrapCoord(int(math32.Round(destX)), width)
		ny := wrapCoord(int(math32.Round(destY)), height)
		nz := wrapCoord(int(math32.Round(destZ)), depth)
		grid[(nz*height+ny)*width+nx] += mass
		return
	}

	ixMin := clampInt(int(math32.Floor(xMin)), -width, 2*width)
	ixMax := clampInt(int(math32.Ceil(xMax)), -width, 2*width)
	iyMin := clampInt(int(math32.Floor(yMin)), -height, 2*height)
	iyMax := clampInt(int(math32.Ceil(yMax)), -height, 2*height)
	izMin := clampInt(int(math32.Floor(zMin)), -depth, 2*depth)
	izMax := clampInt(int(math32.Ceil(zMax)), -depth, 2*depth)

	for iz := izMin; iz <= izMax; iz++ {
		overlapZ := min32(float32(iz+1), zMax) - max32(float32(iz), zMin)
		if overlapZ <= 0 {
			continue
		}
		nz := wrapCoord(iz, depth)
		for iy := iyMin; iy <= iyMax; iy++ {
			overlapY := min32(float32(iy+1), yMax) - max32(float32(iy), yMin)
			if overlapY <= 0 {
				continue
			}
			ny := wrapCoord(iy, height)
			base := (nz*height + ny) * width
			for ix := ixMin; ix <= ixMax; ix++ {
				overlapX := min32(float32(ix+1), xMax) - max32(float32(ix), xMin)
				if overlapX <= 0 {
					continue
				}
				fraction := (overlapX * overlapY * overlapZ) / totalVolume
				nx := wrapCoord(ix, width)
				grid[base+nx] += mass * fraction
			}
		}
	}
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// TotalMass sums a flat channel array.
func TotalMass(grid []float32) float32 {
	var sum float32
	for _, v := range grid {
		sum += v
	}
	return sum
}
