package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlpha_ClampsToUnitInterval(t *testing.T) {
	assert.Equal(t, float32(0), Alpha(-1, 1, 1))
	assert.Equal(t, float32(1), Alpha(100, 1, 2))
}

func TestAlpha_AtThreshold(t *testing.T) {
	assert.InDelta(t, 1.0, Alpha(1, 1, 2), 1e-6)
}

func TestField2D_BlendsGradients(t *testing.T) {
	gradUx := []float32{1}
	gradUy := []float32{0}
	gradAx := []float32{0}
	gradAy := []float32{1}
	massSum := []float32{0}
	fx := make([]float32, 1)
	fy := make([]float32, 1)

	// alpha == 0 at massSum == 0: field should equal gradU exactly.
	Field2D(gradUx, gradUy, gradAx, gradAy, massSum, 1, 2, fx, fy)
	assert.InDelta(t, 1, fx[0], 1e-6)
	assert.InDelta(t, 0, fy[0], 1e-6)
}

func TestField2D_FullAlphaFollowsNegativeMassGradient(t *testing.T) {
	gradUx := []float32{1}
	gradUy := []float32{0}
	gradAx := []float32{0}
	gradAy := []float32{1}
	massSum := []float32{10}
	fx := make([]float32, 1)
	fy := make([]float32, 1)

	Field2D(gradUx, gradUy, gradAx, gradAy, massSum, 1, 2, fx, fy)
	assert.InDelta(t, 0, fx[0], 1e-6)
	assert.InDelta(t, -1, fy[0], 1e-6)
}

func TestLimitMagnitude2D_CapsOverLimit(t *testing.T) {
	fx := []float32{3}
	fy := []float32{4}
	LimitMagnitude2D(fx, fy, 2.5)

	mag := fx[0]*fx[0] + fy[0]*fy[0]
	assert.InDelta(t, 2.5*2.5, mag, 1e-4)
}

func TestLimitMagnitude2D_LeavesUnderLimit(t *testing.T) {
	fx := []float32{0.1}
	fy := []float32{0.1}
	LimitMagnitude2D(fx, fy, 10)
	assert.InDelta(t, 0.1, fx[0], 1e-6)
	assert.InDelta(t, 0.1, fy[0], 1e-6)
}
