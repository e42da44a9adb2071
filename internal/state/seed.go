package state

import "github.com/chewxy/math32"

// Seed is a tagged description of initial placement, consumed once to
// populate a SimulationState (spec §3). Apply dispatches on Kind and reads
// only the fields that Kind selects.
type Seed struct {
	Kind PatternKind

	// 2D patterns
	GaussianBlob BlobSpec
	MultiBlob    []BlobSpec
	Ring         RingSpec

	// 3D patterns
	GaussianSphere SphereSpec
	MultiSphere    []SphereSpec
	Shell          ShellSpec
	Torus3D        TorusSpec

	// general patterns
	Noise  NoiseSpec
	Custom []CustomValue2D
	Custom3D []CustomValue3D
}

// PatternKind selects which fields of Seed are meaningful.
type PatternKind int

const (
	PatternGaussianBlob PatternKind = iota
	PatternMultiBlob
	PatternRing
	PatternGaussianSphere
	PatternMultiSphere
	PatternShell
	PatternTorus3D
	PatternNoise
	PatternCustom
	PatternCustom3D
)

// BlobSpec places a single Gaussian blob; Center and Radius are fractions
// of grid size.
type BlobSpec struct {
	CenterX, CenterY float32
	Radius           float32
	Amplitude        float32
	Channel          int
}

// RingSpec places a 2D annular band.
type RingSpec struct {
	CenterX, CenterY           float32
	InnerRadius, OuterRadius   float32
	Amplitude                  float32
	Channel                    int
}

// SphereSpec places a single Gaussian sphere; Center and Radius are
// fractions of grid size (radius scaled by the minimum dimension).
type SphereSpec struct {
	CenterX, CenterY, CenterZ float32
	Radius                    float32
	Amplitude                 float32
	Channel                   int
}

// ShellSpec places a hollow spherical shell.
type ShellSpec struct {
	CenterX, CenterY, CenterZ float32
	InnerRadius, OuterRadius  float32
	Amplitude                 float32
	Channel                   int
}

// TorusSpec places a donut-shaped distribution around an axis-aligned
// major circle in the XY plane.
type TorusSpec struct {
	CenterX, CenterY, CenterZ   float32
	MajorRadius, MinorRadius    float32
	Amplitude                   float32
	Channel                     int
}

// NoiseSpec fills a channel (or every channel, if ChannelSet is false)
// with uniform noise in [0,Amplitude), deterministic from Seed via a
// fixed linear-congruential generator.
type NoiseSpec struct {
	Amplitude  float32
	Channel    int
	ChannelSet bool
	Seed       uint64
}

// CustomValue2D is one sparse (x,y,channel,value) entry.
type CustomValue2D struct {
	X, Y, Channel int
	Value         float32
}

// CustomValue3D is one sparse (x,y,z,channel,value) entry.
type CustomValue3D struct {
	X, Y, Z, Channel int
	Value            float32
}

// Apply populates s according to the seed's pattern. On a 3D state the 2D
// patterns still apply: GaussianBlob and MultiBlob become Gaussian spheres
// centered at mid-depth, Ring becomes a shell centered at mid-depth, and
// Custom values are written into the middle Z slice.
func (seed *Seed) Apply(s *SimulationState) {
	midZ := s.Depth / 2
	minDim := float32(s.Width)
	if float32(s.Height) < minDim {
		minDim = float32(s.Height)
	}
	if s.Depth > 1 && float32(s.Depth) < minDim {
		minDim = float32(s.Depth)
	}
	minXY := float32(s.Width)
	if float32(s.Height) < minXY {
		minXY = float32(s.Height)
	}

	switch seed.Kind {
	case PatternGaussianBlob:
		b := seed.GaussianBlob
		cx := b.CenterX * float32(s.Width)
		cy := b.CenterY * float32(s.Height)
		r := b.Radius * minXY
		if s.Depth == 1 {
			applyGaussian2D(s, b.Channel, midZ, cx, cy, r, b.Amplitude)
		} else {
			applyGaussian3D(s, b.Channel, cx, cy, float32(s.Depth)*0.5, r, b.Amplitude)
		}
	case PatternMultiBlob:
		for _, b := range seed.MultiBlob {
			cx := b.CenterX * float32(s.Width)
			cy := b.CenterY * float32(s.Height)
			r := b.Radius * minXY
			if s.Depth == 1 {
				applyGaussian2D(s, b.Channel, midZ, cx, cy, r, b.Amplitude)
			} else {
				applyGaussian3D(s, b.Channel, cx, cy, float32(s.Depth)*0.5, r, b.Amplitude)
			}
		}
	case PatternRing:
		r := seed.Ring
		cx := r.CenterX * float32(s.Width)
		cy := r.CenterY * float32(s.Height)
		rin := r.InnerRadius * minXY
		rout := r.OuterRadius * minXY
		if s.Depth == 1 {
			applyRing2D(s, r.Channel, midZ, cx, cy, rin, rout, r.Amplitude)
		} else {
			applyShell3D(s, r.Channel, cx, cy, float32(s.Depth)*0.5, rin, rout, r.Amplitude)
		}
	case PatternGaussianSphere:
		sp := seed.GaussianSphere
		cx := sp.CenterX * float32(s.Width)
		cy := sp.CenterY * float32(s.Height)
		cz := sp.CenterZ * float32(s.Depth)
		r := sp.Radius * minDim
		applyGaussian3D(s, sp.Channel, cx, cy, cz, r, sp.Amplitude)
	case PatternMultiSphere:
		for _, sp := range seed.MultiSphere {
			cx := sp.CenterX * float32(s.Width)
			cy := sp.CenterY * float32(s.Height)
			cz := sp.CenterZ * float32(s.Depth)
			r := sp.Radius * minDim
			applyGaussian3D(s, sp.Channel, cx, cy, cz, r, sp.Amplitude)
		}
	case PatternShell:
		sh := seed.Shell
		cx := sh.CenterX * float32(s.Width)
		cy := sh.CenterY * float32(s.Height)
		cz := sh.CenterZ * float32(s.Depth)
		rin := sh.InnerRadius * minDim
		rout := sh.OuterRadius * minDim
		applyShell3D(s, sh.Channel, cx, cy, cz, rin, rout, sh.Amplitude)
	case PatternTorus3D:
		t := seed.Torus3D
		cx := t.CenterX * float32(s.Width)
		cy := t.CenterY * float32(s.Height)
		cz := t.CenterZ * float32(s.Depth)
		rMajor := t.MajorRadius * minDim
		rMinor := t.MinorRadius * minDim
		applyTorus3D(s, t.Channel, cx, cy, cz, rMajor, rMinor, t.Amplitude)
	case PatternNoise:
		applyNoise(s, seed.Noise)
	case PatternCustom:
		for _, v := range seed.Custom {
			if v.Channel < len(s.Channels) && v.Y < s.Height && v.X < s.Width {
				idx := (midZ*s.Height+v.Y)*s.Width + v.X
				s.Channels[v.Channel][idx] = v.Value
			}
		}
	case PatternCustom3D:
		for _, v := range seed.Custom3D {
			if v.Channel < len(s.Channels) && v.Z < s.Depth && v.Y < s.Height && v.X < s.Width {
				idx := (v.Z*s.Height+v.Y)*s.Width + v.X
				s.Channels[v.Channel][idx] = v.Value
			}
		}
	}
}

func applyGaussian2D(s *SimulationState, channel, z int, cx, cy, radius, amplitude float32) {
	if radius <= 0 {
		return
	}
	ch := s.Channels[channel]
	twoRSq := 2 * radius * radius
	for y := 0; y < s.Height; y++ {
		dy := wrappedDelta(float32(y), cy, float32(s.Height))
		for x := 0; x < s.Width; x++ {
			dx := wrappedDelta(float32(x), cx, float32(s.Width))
			distSq := dx*dx + dy*dy
			v := amplitude * math32.Exp(-distSq/twoRSq)
			ch[(z*s.Height+y)*s.Width+x] += v
		}
	}
}

func applyGaussian3D(s *SimulationState, channel int, cx, cy, cz, radius, amplitude float32) {
	if radius <= 0 {
		return
	}
	ch := s.Channels[channel]
	twoRSq := 2 * radius * radius
	for z := 0; z < s.Depth; z++ {
		dz := wrappedDelta(float32(z), cz, float32(s.Depth))
		for y := 0; y < s.Height; y++ {
			dy := wrappedDelta(float32(y), cy, float32(s.Height))
			for x := 0; x < s.Width; x++ {
				dx := wrappedDelta(float32(x), cx, float32(s.Width))
				distSq := dx*dx + dy*dy + dz*dz
				v := amplitude * math32.Exp(-distSq/twoRSq)
				ch[(z*s.Height+y)*s.Width+x] += v
			}
		}
	}
}

func applyRing2D(s *SimulationState, channel, z int, cx, cy, rIn, rOut, amplitude float32) {
	ch := s.Channels[channel]
	for y := 0; y < s.Height; y++ {
		dy := wrappedDelta(float32(y), cy, float32(s.Height))
		for x := 0; x < s.Width; x++ {
			dx := wrappedDelta(float32(x), cx, float32(s.Width))
			dist := math32.Sqrt(dx*dx + dy*dy)
			if dist >= rIn && dist <= rOut {
				ch[(z*s.Height+y)*s.Width+x] += amplitude
			}
		}
	}
}

func applyShell3D(s *SimulationState, channel int, cx, cy, cz, rIn, rOut, amplitude float32) {
	ch := s.Channels[channel]
	for z := 0; z < s.Depth; z++ {
		dz := wrappedDelta(float32(z), cz, float32(s.Depth))
		for y := 0; y < s.Height; y++ {
			dy := wrappedDelta(float32(y), cy, float32(s.Height))
			for x := 0; x < s.Width; x++ {
				dx := wrappedDelta(float32(x), cx, float32(s.Width))
				dist := math32.Sqrt(dx*dx + dy*dy + dz*dz)
				if dist >= rIn && dist <= rOut {
					ch[(z*s.Height+y)*s.Width+x] += amplitude
				}
			}
		}
	}
}

func applyTorus3D(s *SimulationState, channel int, cx, cy, cz, rMajor, rMinor, amplitude float32) {
	if rMinor <= 0 {
		return
	}
	ch := s.Channels[channel]
	twoRSq := 2 * rMinor * rMinor
	for z := 0; z < s.Depth; z++ {
		dz := wrappedDelta(float32(z), cz, float32(s.Depth))
		for y := 0; y < s.Height; y++ {
			dy := wrappedDelta(float32(y), cy, float32(s.Height))
			for x := 0; x < s.Width; x++ {
				dx := wrappedDelta(float32(x), cx, float32(s.Width))
				planarDist := math32.Sqrt(dx*dx + dy*dy)
				tubeDist := math32.Sqrt((planarDist-rMajor)*(planarDist-rMajor) + dz*dz)
				v := amplitude * math32.Exp(-(tubeDist*tubeDist)/twoRSq)
				ch[(z*s.Height+y)*s.Width+x] += v
			}
		}
	}
}

// wrappedDelta returns the shortest signed distance from b to a on a
// periodic axis of the given length, so seed placement near an edge
// wraps instead of being clipped.
func wrappedDelta(a, b, length float32) float32 {
	d := a - b
	half := length / 2
	for d > half {
		d -= length
	}
	for d < -half {
		d += length
	}
	return d
}

// lcgState is a fixed 64-bit linear-congruential generator (the constants
// from Knuth's MMIX), giving a deterministic, dependency-free noise
// source seeded from a single u64.
type lcgState uint64

const (
	lcgMul = 6364136223846793005
	lcgInc = 1442695040888963407
)

func newLCG(seed uint64) lcgState {
	return lcgState(seed)
}

func (l *lcgState) next() uint64 {
	*l = lcgState(uint64(*l)*lcgMul + lcgInc)
	return uint64(*l)
}

// nextFloat32 returns a value in [0,1) derived from the generator's upper
// 24 bits, giving uniform float32 coverage.
func (l *lcgState) nextFloat32() float32 {
	v := l.next() >> 40
	return float32(v) / float32(1<<24)
}

func applyNoise(s *SimulationState, n NoiseSpec) {
	gen := newLCG(n.Seed)
	for c, ch := range s.Channels {
		if n.ChannelSet && c != n.Channel {
			continue
		}
		for i := range ch {
			ch[i] += n.Amplitude * gen.nextFloat32()
		}
	}
}
