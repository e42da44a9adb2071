// Package flow computes the alpha blending coefficient and the resulting
// flow field from affinity and mass gradients (spec §4.6).
package flow

import "github.com/chewxy/math32"

// Alpha computes clamp((massSum/beta)^n, 0, 1), the coefficient that
// blends affinity-driven flow toward mass-diffusing flow as local mass
// approaches the critical threshold beta.
func Alpha(massSum, beta, n float32) float32 {
	a := math32.Pow(massSum/beta, n)
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// Field2D computes F = (1-alpha)*gradU - alpha*gradA component-wise for a
// 2D grid, writing into fx, fy (pre-allocated, same length as inputs).
func Field2D(gradUx, gradUy, gradAx, gradAy, massSum []float32, beta, n float32, fx, fy []float32) {
	for i := range gradUx {
		a := Alpha(massSum[i], beta, n)
		oma := 1 - a
		fx[i] = oma*gradUx[i] - a*gradAx[i]
		fy[i] = oma*gradUy[i] - a*gradAy[i]
	}
}

// Field2DPerCell is Field2D but reads beta and n per-cell (embedded mode),
// from caller-supplied per-cell slices.
func Field2DPerCell(gradUx, gradUy, gradAx, gradAy, massSum, beta, n []float32, fx, fy []float32) {
	for i := range gradUx {
		a := Alpha(massSum[i], beta[i], n[i])
		oma := 1 - a
		fx[i] = oma*gradUx[i] - a*gradAx[i]
		fy[i] = oma*gradUy[i] - a*gradAy[i]
	}
}

// Field3D is Field2D generalized to three components.
func Field3D(gradUx, gradUy, gradUz, gradAx, gradAy, gradAz, massSum []float32, beta, n float32, fx, fy, fz []float32) {
	for i := range gradUx {
		a := Alpha(massSum[i], beta, n)
		oma := 1 - a
		fx[i] = oma*gradUx[i] - a*gradAx[i]
		fy[i] = oma*gradUy[i] - a*gradAy[i]
		fz[i] = oma*gradUz[i] - a*gradAz[i]
	}
}

// Field3DPerCell is Field3D with per-cell beta/n (embedded mode).
func Field3DPerCell(gradUx, gradUy, gradUz, gradAx, gradAy, gradAz, massSum, beta, n []float32, fx, fy, fz []float32) {
	for i := range gradUx {
		a := Alpha(massSum[i], beta[i], n[i])
		oma := 1 - a
		fx[i] = oma*gradUx[i] - a*gradAx[i]
		fy[i] = oma*gradUy[i] - a*gradAy[i]
		fz[i] = oma*gradUz[i] - a*gradAz[i]
	}
}

// LimitMagnitude2D caps the per-cell flow magnitude at maxMagnitude,
// bounding per-step displacement. Not applied by the core propagator by
// default (spec §4.6); exposed as a companion routine for callers that
// need it.
func LimitMagnitude2D(fx, fy []float32, maxMagnitude float32) {
	for i := range fx {
		mag := math32.Sqrt(fx[i]*fx[i] + fy[i]*fy[i])
		if mag > maxMagnitude && mag > 0 {
			scale := maxMagnitude / mag
			fx[i] *= scale
			fy[i] *= scale
		}
	}
}

// LimitMagnitude3D is LimitMagnitude2D generalized to three components.
func LimitMagnitude3D(fx, fy, fz []float32, maxMagnitude float32) {
	for i := range fx {
		mag := math32.Sqrt(fx[i]*fx[i] + fy[i]*fy[i] + fz[i]*fz[i])
		if mag > maxMagnitude && mag > 0 {
			scale := maxMagnitude / mag
			fx[i] *= scale
			fy[i] *= scale
			fz[i] *= scale
		}
	}
}
