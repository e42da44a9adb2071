// Package paramadvect implements parameter advection for the embedded
// propagator (spec §4.8): a gather-based reformulation of reintegration
// tracking that simultaneously transports per-cell growth/flow parameters
// alongside mass, mixing by softmax or linear weighting where masses
// converge at a destination cell.
package paramadvect

import (
	"flowlenia/internal/config"
	"flowlenia/internal/state"

	"github.com/chewxy/math32"
)

const massEpsilon = 1e-10

func wrapCoord(c, size int) int {
	m := c % size
	if m < 0 {
		m += size
	}
	return m
}

// searchRadius computes the per-step gather radius from the current flow
// field (§4.8, §9), recomputed every step and never cached.
func searchRadius(fx, fy []float32, dt, s float32) int {
	var maxMag float32
	for i := range fx {
		mag := math32.Sqrt(fx[i]*fx[i] + fy[i]*fy[i])
		if mag > maxMag {
			maxMag = mag
		}
	}
	return int(math32.Ceil(maxMag*dt+s)) + 1
}

func searchRadius3D(fx, fy, fz []float32, dt, s float32) int {
	var maxMag float32
	for i := range fx {
		mag := math32.Sqrt(fx[i]*fx[i] + fy[i]*fy[i] + fz[i]*fz[i])
		if mag > maxMag {
			maxMag = mag
		}
	}
	return int(math32.Ceil(maxMag*dt+s)) + 1
}

// overlap2D computes the overlap fraction of a square distribution
// footprint (half-width s, centered at destX,destY) with the unit cell
// [cellX,cellX+1)x[cellY,cellY+1).
func overlap2D(destX, destY, s, cellX, cellY float32) float32 {
	xMin, xMax := destX-s, destX+s
	yMin, yMax := destY-s, destY+s
	cellXMax, cellYMax := cellX+1, cellY+1

	totalArea := (2 * s) * (2 * s)
	if totalArea < massEpsilon {
		if cellX <= destX && destX < cellXMax && cellY <= destY && destY < cellYMax {
			return 1
		}
		return 0
	}

	ow := min32(xMax, cellXMax) - max32(xMin, cellX)
	oh := min32(yMax, cellYMax) - max32(yMin, cellY)
	if ow <= 0 || oh <= 0 {
		return 0
	}
	return (ow * oh) / totalArea
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

type contribution struct {
	mass   float32
	params state.CellParams
}

// Advect2D advects mass and parameters together for one channel. next and
// nextParams must be pre-allocated (length width*height); next is
// overwritten (not accumulated into), matching the gather formulation.
func Advect2D(
	currentMass []float32,
	currentParams *state.ParameterGrid,
	fx, fy []float32,
	width, height int,
	dt, s float32,
	emb config.EmbeddingConfig,
	next []float32,
	nextParams *state.ParameterGrid,
) {
	radius := searchRadius(fx, fy, dt, s)

	contribs := make([]contribution, 0, 8)

	for destY := 0; destY < height; destY++ {
		for destX := 0; destX < width; destX++ {
			destIdx := destY*width + destX

			contribs = contribs[:0]
			var totalMass float32
			var maxContribution float32
			var dominantParams state.CellParams

			for dy := -radius; dy <= radius; dy++ {
				srcY := wrapCoord(destY+dy, height)
				for dx := -radius; dx <= radius; dx++ {
					srcX := wrapCoord(destX+dx, width)
					srcIdx := srcY*width + srcX

					srcMass := currentMass[srcIdx]
					if math32.Abs(srcMass) < massEpsilon {
						continue
					}

					destFx := float32(srcX) + dt*fx[srcIdx]
					destFy := float32(srcY) + dt*fy[srcIdx]

					ov := overlap2D(destFx, destFy, s, float32(destX), float32(destY))
					if ov <= 0 {
						continue
					}

					massContribution := srcMass * ov
					totalMass += massContribution

					if emb.DominantOnly {
						if massContribution > maxContribution {
							maxContribution = massContribution
							dominantParams = currentParams.GetIdx(srcIdx)
						}
						continue
					}

					contribs = append(contribs, contribution{
						mass:   massContribution,
						params: currentParams.GetIdx(srcIdx),
					})
				}
			}

			next[destIdx] = totalMass

			if totalMass <= massEpsilon {
				nextParams.SetIdx(destIdx, state.DefaultCellParams())
				continue
			}

			if emb.DominantOnly {
				nextParams.SetIdx(destIdx, dominantParams)
				continue
			}

			nextParams.SetIdx(destIdx, mix(contribs, emb))
		}
	}
}

func mix(contribs []contribution, emb config.EmbeddingConfig) state.CellParams {
	if len(contribs) == 0 {
		return state.DefaultCellParams()
	}
	if len(contribs) == 1 {
		return contribs[0].params
	}
	if emb.LinearMixing {
		return mixLinear(contribs)
	}
	return mixSoftmax(contribs, emb.MixingTemperature)
}

func mixSoftmax(contribs []contribution, temperature float32) state.CellParams {
	maxMass := contribs[0].mass
	for _, c := range contribs[1:] {
		if c.mass > maxMass {
			maxMass = c.mass
		}
	}

	weights := make([]float32, len(contribs))
	var weightSum float32
	for i, c := range contribs {
		w := math32.Exp((c.mass - maxMass) / temperature)
		weights[i] = w
		weightSum += w
	}

	if weightSum > 0 {
		for i := range weights {
			weights[i] /= weightSum
		}
	} else {
		uniform := 1.0 / float32(len(contribs))
		for i := range weights {
			weights[i] = uniform
		}
	}

	var out state.CellParams
	for i, c := range contribs {
		w := weights[i]
		out.Mu += c.params.Mu * w
		out.Sigma += c.params.Sigma * w
		out.Weight += c.params.Weight * w
		out.BetaA += c.params.BetaA * w
		out.N += c.params.N * w
	}
	return out
}

func mixLinear(contribs []contribution) state.CellParams {
	var totalMass float32
	for _, c := range contribs {
		totalMass += c.mass
	}
	if totalMass <= 0 {
		return state.DefaultCellParams()
	}
	var out state.CellParams
	for _, c := range contribs {
		w := c.mass / totalMass
		out.Mu += c.params.Mu * w
		out.Sigma += c.params.Sigma * w
		out.Weight += c.params.Weight * w
		out.BetaA += c.params.BetaA * w
		out.N += c.params.N * w
	}
	return out
}
