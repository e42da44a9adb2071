package advect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvect2D_ZeroFlowPreservesMass(t *testing.T) {
	const w, h = 8, 8
	current := make([]float32, w*h)
	current[3*w+3] = 1.0
	current[5*w+2] = 0.5
	fx := make([]float32, w*h)
	fy := make([]float32, w*h)
	next := make([]float32, w*h)

	Advect2D(current, fx, fy, w, h, 0.1, 0.5, next)

	assert.InDelta(t, TotalMass(current), TotalMass(next), 1e-5)
}

func TestAdvect2D_PeriodicBoundaryPreservesMass(t *testing.T) {
	const w, h = 8, 8
	current := make([]float32, w*h)
	current[0] = 1.0 // grid corner, flow pushes off the edge
	fx := []float32{-2}
	fy := []float32{-2}
	fxFull := make([]float32, w*h)
	fyFull := make([]float32, w*h)
	copy(fxFull, fx)
	copy(fyFull, fy)
	next := make([]float32, w*h)

	Advect2D(current, fxFull, fyFull, w, h, 1.0, 0.6, next)

	assert.InDelta(t, 1.0, TotalMass(next), 1e-5)
}

func TestAdvect2D_SkipsNegligibleMass(t *testing.T) {
	const w, h = 4, 4
	current := make([]float32, w*h)
	current[0] = 1e-12
	fx := make([]float32, w*h)
	fy := make([]float32, w*h)
	next := make([]float32, w*h)

	Advect2D(current, fx, fy, w, h, 1.0, 0.5, next)
	assert.Equal(t, float32(0), TotalMass(next))
}

func TestDistribute2D_NearestCellFallbackForTinyFootprint(t *testing.T) {
	const w, h = 8, 8
	grid := make([]float32, w*h)
	distribute2D(grid, 2.0, 3.6, 4.4, w, h, 1e-12)

	assert.InDelta(t, 2.0, TotalMass(grid), 1e-6)
	nonZero := 0
	for _, v := range grid {
		if v != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestWrapCoord(t *testing.T) {
	assert.Equal(t, 7, wrapCoord(-1, 8))
	assert.Equal(t, 0, wrapCoord(8, 8))
	assert.Equal(t, 3, wrapCoord(3, 8))
}

func TestAdvect3D_ZeroFlowPreservesMass(t *testing.T) {
	const w, h, d = 6, 6, 6
	size := w * h * d
	current := make([]float32, size)
	current[(2*h+2)*w+2] = 1.0
	fx := make([]float32, size)
	fy := make([]float32, size)
	fz := make([]float32, size)
	next := make([]float32, size)

	Advect3D(current, fx, fy, fz, w, h, d, 0.1, 0.5, next)

	assert.InDelta(t, TotalMass(current), TotalMass(next), 1e-5)
}
