// Package kernel builds dense spatial convolution kernels from ring
// descriptions (spec §4.1) and prepares them for FFT consumption by padding
// and shifting them to the "center at origin" convention used for circular
// convolution.
package kernel

import (
	"math"

	"flowlenia/internal/config"
	"flowlenia/internal/flerr"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func hypot(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

func hypot3(dx, dy, dz float64) float64 {
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func expf(x float64) float64 {
	return math.Exp(x)
}

// Kernel is a dense, L¹-normalized spatial kernel of odd side length
// 2*radius+1, built once from a KernelConfig and immutable thereafter.
type Kernel struct {
	Data   []float32 // row-major (2D) or z-major (3D), side^Dims elements
	Side   int        // 2*radius+1
	Radius int
	Dims   int // 2 or 3

	SourceChannel int
	TargetChannel int
	Weight        float32
	Mu            float32
	Sigma         float32
}

// At2D returns the kernel value at (x,y) in a 2D kernel, counted from its
// lower corner.
func (k *Kernel) At2D(x, y int) float32 {
	return k.Data[y*k.Side+x]
}

// At3D returns the kernel value at (x,y,z) in a 3D kernel.
func (k *Kernel) At3D(x, y, z int) float32 {
	return k.Data[(z*k.Side+y)*k.Side+x]
}

func validateRings(rings []config.RingConfig) error {
	if len(rings) == 0 {
		return flerr.Wrap(flerr.ErrInvalidKernel, "ring list must be non-empty")
	}
	for i, r := range rings {
		if r.Width <= 0 {
			return flerr.Wrapf(flerr.ErrInvalidKernel, "ring %d: width must be positive", i)
		}
	}
	return nil
}

// Build2D constructs a 2D kernel from a configuration and the global
// maximum radius R, following §4.1: for each cell, accumulate ring bumps by
// normalized distance from center, discard beyond normalized distance 1,
// then L¹-normalize. Accumulates with gonum's mat.Dense/floats.Sum,
// narrowing to float32 once at the end.
func Build2D(kc config.KernelConfig, maxRadius int) (*Kernel, error) {
	if err := validateRings(kc.Rings); err != nil {
		return nil, err
	}
	radius := kc.ActualRadius(maxRadius)
	if radius < 0 {
		radius = 0
	}
	side := 2*radius + 1

	data := mat.NewDense(side, side, nil)
	center := float64(radius)
	r := float64(radius)
	if r == 0 {
		r = 1
	}

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			dist := hypot(dx, dy)
			rho := dist / r
			if rho > 1 {
				continue
			}
			var v float64
			for _, ring := range kc.Rings {
				d := float64(ring.Distance)
				w := float64(ring.Width)
				a := float64(ring.Amplitude)
				diff := rho - d
				v += a * expf(-diff*diff/(2*w*w))
			}
			data.Set(y, x, v)
		}
	}

	sum := floats.Sum(data.RawMatrix().Data)
	if sum > 0 {
		data.Scale(1/sum, data)
	}

	out := make([]float32, side*side)
	raw := data.RawMatrix().Data
	for i, v := range raw {
		out[i] = float32(v)
	}

	return &Kernel{
		Data:          out,
		Side:          side,
		Radius:        radius,
		Dims:          2,
		SourceChannel: kc.SourceChannel,
		TargetChannel: kc.TargetChannel,
		Weight:        kc.Weight,
		Mu:            kc.Mu,
		Sigma:         kc.Sigma,
	}, nil
}

// Build3D constructs a 3D kernel, identical in principle to Build2D but
// sampling Euclidean distance in three dimensions.
func Build3D(kc config.KernelConfig, maxRadius int) (*Kernel, error) {
	if err := validateRings(kc.Rings); err != nil {
		return nil, err
	}
	radius := kc.ActualRadius(maxRadius)
	if radius < 0 {
		radius = 0
	}
	side := 2*radius + 1
	center := float64(radius)
	r := float64(radius)
	if r == 0 {
		r = 1
	}

	data := make([]float64, side*side*side)
	var sum float64
	for z := 0; z < side; z++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				dx := float64(x) - center
				dy := float64(y) - center
				dz := float64(z) - center
				dist := hypot3(dx, dy, dz)
				rho := dist / r
				if rho > 1 {
					continue
				}
				var v float64
				for _, ring := range kc.Rings {
					d := float64(ring.Distance)
					w := float64(ring.Width)
					a := float64(ring.Amplitude)
					diff := rho - d
					v += a * expf(-diff*diff/(2*w*w))
				}
				idx := (z*side+y)*side + x
				data[idx] = v
				sum += v
			}
		}
	}

	out := make([]float32, len(data))
	if sum > 0 {
		inv := 1 / sum
		for i, v := range data {
			out[i] = float32(v * inv)
		}
	} else {
		for i, v := range data {
			out[i] = float32(v)
		}
	}

	return &Kernel{
		Data:          out,
		Side:          side,
		Radius:        radius,
		Dims:          3,
		SourceChannel: kc.SourceChannel,
		TargetChannel: kc.TargetChannel,
		Weight:        kc.Weight,
		Mu:            kc.Mu,
		Sigma:         kc.Sigma,
	}, nil
}

// PadAndShift2D places the kernel into a full W×H grid using the
// "center at origin" convention required for circular FFT convolution:
// offset (dx,dy) from the kernel center maps to ((dx mod W),(dy mod H))
// with positive modulo.
func (k *Kernel) PadAndShift2D(width, height int) []float32 {
	out := make([]float32, width*height)
	c := k.Radius
	for dy := -c; dy <= c; dy++ {
		for dx := -c; dx <= c; dx++ {
			v := k.At2D(dx+c, dy+c)
			tx := mod(dx, width)
			ty := mod(dy, height)
			out[ty*width+tx] = v
		}
	}
	return out
}

// PadAndShift3D is PadAndShift2D generalized to three dimensions.
func (k *Kernel) PadAndShift3D(width, height, depth int) []float32 {
	out := make([]float32, width*height*depth)
	c := k.Radius
	for dz := -c; dz <= c; dz++ {
		for dy := -c; dy <= c; dy++ {
			for dx := -c; dx <= c; dx++ {
				v := k.At3D(dx+c, dy+c, dz+c)
				tx := mod(dx, width)
				ty := mod(dy, height)
				tz := mod(dz, depth)
				out[(tz*height+ty)*width+tx] = v
			}
		}
	}
	return out
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
