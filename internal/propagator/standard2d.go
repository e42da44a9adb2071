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

// Standard2D is the FFT-based propagator for 2D grids with uniform
// (non-embedded) growth and flow parameters.
type Standard2D struct {
	cfg config.SimulationConfig

	kernels     []*kernel.Kernel
	freqKernels []*fftconv.FrequencyKernel
	conv        *fftconv.Convolver2D

	convOut      [][]float32
	aff          [][]float32
	nextChannels [][]float32
	massSum      []float32
	gradAx       []float32
	gradAy       []float32
	gradUx       [][]float32
	gradUy       [][]float32
	fx           [][]float32
	fy           [][]float32

	pool *workerpool.Pool
}

// NewStandard2D validates cfg, builds kernels and frequency kernels, and
// allocates every scratch buffer the propagator will use.
func NewStandard2D(cfg config.SimulationConfig) (*Standard2D, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kernels, err := buildKernels2D(&cfg)
	if err != nil {
		return nil, err
	}

	conv := fftconv.NewConvolver2D(cfg.Width, cfg.Height)
	freqKernels := make([]*fftconv.FrequencyKernel, len(kernels))
	for i, k := range kernels {
		freqKernels[i] = conv.BuildFrequencyKernel(k)
	}

	size := cfg.Width * cfg.Height
	channels := cfg.Channels

	p := &Standard2D{
		cfg:         cfg,
		kernels:     kernels,
		freqKernels: freqKernels,
		conv:        conv,
		convOut:     make([][]float32, len(kernels)),
		aff:         make([][]float32, channels),
		nextChannels: make([][]float32, channels),
		massSum:     make([]float32, size),
		gradAx:      make([]float32, size),
		gradAy:      make([]float32, size),
		gradUx:      make([][]float32, channels),
		gradUy:      make([][]float32, channels),
		fx:          make([][]float32, channels),
		fy:          make([][]float32, channels),
		pool:        newPool(channels),
	}
	for i := range p.convOut {
		p.convOut[i] = make([]float32, size)
	}
	for c := 0; c < channels; c++ {
		p.aff[c] = make([]float32, size)
		p.nextChannels[c] = make([]float32, size)
		p.gradUx[c] = make([]float32, size)
		p.gradUy[c] = make([]float32, size)
		p.fx[c] = make([]float32, size)
		p.fy[c] = make([]float32, size)
	}

	Log.Debug().
		Int("width", cfg.Width).Int("height", cfg.Height).
		Int("channels", channels).Int("kernels", len(kernels)).
		Msg("standard2d propagator constructed")

	return p, nil
}

// Config returns a read-only view of the configuration this propagator
// was built from.
func (p *Standard2D) Config() *config.SimulationConfig {
	return &p.cfg
}

// Step advances s by one dt, following the six stages of spec §4.9.
func (p *Standard2D) Step(s *state.SimulationState) {
	w, h := p.cfg.Width, p.cfg.Height

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

	gradient.Sobel2D(p.massSum, w, h, p.gradAx, p.gradAy)

	beta, n, dist := p.cfg.Flow.BetaA, p.cfg.Flow.N, p.cfg.Flow.DistributionSize
	dt := p.cfg.Dt

	p.pool.Run(p.cfg.Channels, func(start, end int) error {
		for c := start; c < end; c++ {
			clear32(p.nextChannels[c])
			gradient.Sobel2D(p.aff[c], w, h, p.gradUx[c], p.gradUy[c])
			flow.Field2D(p.gradUx[c], p.gradUy[c], p.gradAx, p.gradAy, p.massSum, beta, n, p.fx[c], p.fy[c])
			advect.Advect2D(s.Channels[c], p.fx[c], p.fy[c], w, h, dt, dist, p.nextChannels[c])
		}
		return nil
	})

	s.Channels, p.nextChannels = p.nextChannels, s.Channels
	s.Time += dt
	s.Step++
}

// Run performs n steps in sequence.
func (p *Standard2D) Run(s *state.SimulationState, n int) {
	for i := 0; i < n; i++ {
		p.Step(s)
	}
}

func clear32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}
