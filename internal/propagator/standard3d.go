package propagator

import (
	"flowlenia/internal/advect"
	"flowlenia/internal/config"
	"flowlenia/internal/fftconv"
	"flowlenia/internal/flow"
	"flowlenia/internal/gradient"
	"flowlenia/internal/growth"
	"flowlenia/internal/kernel"
	"flowlenia/internal/state"
	"flowlenia/internal/workerpool"
)

// Standard3D is Standard2D generalized to W*H*D volumes.
type Standard3D struct {
	cfg config.SimulationConfig

	kernels     []*kernel.Kernel
	freqKernels []*fftconv.FrequencyKernel
	conv        *fftconv.Convolver3D

	convOut      [][]float32
	aff          [][]float32
	nextChannels [][]float32
	massSum      []float32
	gradAx       []float32
	gradAy       []float32
	gradAz       []float32
	gradUx       [][]float32
	gradUy       [][]float32
	gradUz       [][]float32
	fx           [][]float32
	fy           [][]float32
	fz           [][]float32

	pool *workerpool.Pool
}

// NewStandard3D is NewStandard2D generalized to three dimensions.
func NewStandard3D(cfg config.SimulationConfig) (*Standard3D, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kernels, err := buildKernels3D(&cfg)
	if err != nil {
		return nil, err
	}

	conv := fftconv.NewConvolver3D(cfg.Width, cfg.Height, cfg.Depth)
	freqKernels := make([]*fftconv.FrequencyKernel, len(kernels))
	for i, k := range kernels {
		freqKernels[i] = conv.BuildFrequencyKernel(k)
	}

	size := cfg.GridSize()
	channels := cfg.Channels

	p := &Standard3D{
		cfg:          cfg,
		kernels:      kernels,
		freqKernels:  freqKernels,
		conv:         conv,
		convOut:      make([][]float32, len(kernels)),
		aff:          make([][]float32, channels),
		nextChannels: make([][]float32, channels),
		massSum:      make([]float32, size),
		gradAx:       make([]float32, size),
		gradAy:       make([]float32, size),
		gradAz:       make([]float32, size),
		gradUx:       make([][]float32, channels),
		gradUy:       make([][]float32, channels),
		gradUz:       make([][]float32, channels),
		fx:           make([][]float32, channels),
		fy:           make([][]float32, channels),
		fz:           make([][]float32, channels),
		pool:         newPool(channels),
	}
	for i := range p.convOut {
		p.convOut[i] = make([]float32, size)
	}
	for c := 0; c < channels; c++ {
		p.aff[c] = make([]float32, size)
		p.nextChannels[c] = make([]float32, size)
		p.gradUx[c] = make([]float32, size)
		p.gradUy[c] = make([]float32, size)
		p.gradUz[c] = make([]float32, size)
		p.fx[c] = make([]float32, size)
		p.fy[c] = make([]float32, size)
		p.fz[c] = make([]float32, size)
	}

	Log.Debug().
		Int("width", cfg.Width).Int("height", cfg.Height).Int("depth", cfg.Depth).
		Int("channels", channels).Int("kernels", len(kernels)).
		Msg("standard3d propagator constructed")

	return p, nil
}

// Config returns a read-only view of the configuration this propagator
// was built from.
func (p *Standard3D) Config() *config.SimulationConfig {
	return &p.cfg
}

// Step advances s by one dt.
func (p *Standard3D) Step(s *state.SimulationState) {
	w, h, d := p.cfg.Width, p.cfg.Height, p.cfg.Depth

	for c := range p.aff {
		clear32(p.aff[c])
	}

	p.pool.Run(len(p.kernels), func(start, end int) error {
		for i := start; i < end; i++ {
			k := p.kernels[i]
			p.conv.Convolve(s.Channels[k.SourceChannel], p.freqKernels[i], p.convOut[i])
		}
		return nil
	})
	for i, k := range p.kernels {
		fk := p.freqKernels[i]
		growth.Accumulate(p.convOut[i], p.aff[k.TargetChannel], fk.Weight, fk.Mu, fk.Sigma)
	}

	clear32(p.massSum)
	for c := range s.Channels {
		ch := s.Channels[c]
		for i, v := range ch {
			p.massSum[i] += v
		}
	}

	gradient.Sobel3D(p.massSum, w, h, d, p.gradAx, p.gradAy, p.gradAz)

	beta, n, dist := p.cfg.Flow.BetaA, p.cfg.Flow.N, p.cfg.Flow.DistributionSize
	dt := p.cfg.Dt

	p.pool.Run(p.cfg.Channels, func(start, end int) error {
		for c := start; c < end; c++ {
			clear32(p.nextChannels[c])
			gradient.Sobel3D(p.aff[c], w, h, d, p.gradUx[c], p.gradUy[c], p.gradUz[c])
			flow.Field3D(p.gradUx[c], p.gradUy[c], p.gradUz[c], p.gradAx, p.gradAy, p.gradAz, p.massSum, beta, n, p.fx[c], p.fy[c], p.fz[c])
			advect.Advect3D(s.Channels[c], p.fx[c], p.fy[c], p.fz[c], w, h, d, dt, dist, p.nextChannels[c])
		}
		return nil
	})

	s.Channels, p.nextChannels = p.nextChannels, s.Channels
	s.Time += dt
	s.Step++
}

// Run performs n steps in sequence.
func (p *Standard3D) Run(s *state.SimulationState, n int) {
	for i := 0; i < n; i++ {
		p.Step(s)
	}
}
