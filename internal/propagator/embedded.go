package propagator

import (
	"flowlenia/internal/advect"
	"flowlenia/internal/config"
	"flowlenia/internal/directconv"
	"flowlenia/internal/flerr"
	"flowlenia/internal/flow"
	"flowlenia/internal/gradient"
	"flowlenia/internal/kernel"
	"flowlenia/internal/paramadvect"
	"flowlenia/internal/state"
	"flowlenia/internal/workerpool"
)

// Embedded is the spatial-domain propagator used when growth and flow
// parameters vary per cell (spec §4.5, §4.8). It always carries a
// ParameterGrid per channel; whether that grid actually advects with mass
// (gather-based mixing) or is simply copied unchanged each step is
// controlled by cfg.Embedding.Enabled.
type Embedded struct {
	cfg config.SimulationConfig

	kernels []*kernel.Kernel

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
	betaGrid     [][]float32
	nGrid        [][]float32

	params     []*state.ParameterGrid
	nextParams []*state.ParameterGrid

	pool *workerpool.Pool
}

// NewEmbedded validates cfg (rejecting 3D grids with
// flerr.ErrInvalidConfig), builds 2D spatial kernels, and allocates scratch
// including one ParameterGrid per channel, seeded from the first kernel
// description (§3).
func NewEmbedded(cfg config.SimulationConfig) (*Embedded, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Is3D() {
		return nil, flerr.Wrap(flerr.ErrInvalidConfig, "embedded propagator supports 2D grids only")
	}

	kernels, err := buildKernels2D(&cfg)
	if err != nil {
		return nil, err
	}

	size := cfg.GridSize()
	channels := cfg.Channels
	def := state.FromKernel(cfg.Kernels[0], cfg.Flow)

	p := &Embedded{
		cfg:          cfg,
		kernels:      kernels,
		convOut:      make([][]float32, len(kernels)),
		aff:          make([][]float32, channels),
		nextChannels: make([][]float32, channels),
		massSum:      make([]float32, size),
		gradAx:       make([]float32, size),
		gradAy:       make([]float32, size),
		gradUx:       make([][]float32, channels),
		gradUy:       make([][]float32, channels),
		fx:           make([][]float32, channels),
		fy:           make([][]float32, channels),
		betaGrid:     make([][]float32, channels),
		nGrid:        make([][]float32, channels),
		params:       make([]*state.ParameterGrid, channels),
		nextParams:   make([]*state.ParameterGrid, channels),
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
		p.fx[c] = make([]float32, size)
		p.fy[c] = make([]float32, size)
		p.betaGrid[c] = make([]float32, size)
		p.nGrid[c] = make([]float32, size)
		p.params[c] = state.NewParameterGrid(cfg.Width, cfg.Height, cfg.Depth, def)
		p.nextParams[c] = state.NewParameterGrid(cfg.Width, cfg.Height, cfg.Depth, def)
	}

	Log.Debug().
		Int("width", cfg.Width).Int("height", cfg.Height).
		Bool("embedding_enabled", cfg.Embedding.Enabled).
		Int("channels", channels).Int("kernels", len(kernels)).
		Msg("embedded propagator constructed")

	return p, nil
}

// Config returns a read-only view of the configuration this propagator
// was built from.
func (p *Embedded) Config() *config.SimulationConfig {
	return &p.cfg
}

// Params returns the live ParameterGrid for a channel, for seeding and
// inspection between steps.
func (p *Embedded) Params(channel int) *state.ParameterGrid {
	return p.params[channel]
}

// Step advances s (and the propagator's internal parameter grids) by one
// dt. Only 2D grids are supported; NewEmbedded rejects 3D configs.
func (p *Embedded) Step(s *state.SimulationState) {
	w, h := p.cfg.Width, p.cfg.Height

	for c := range p.aff {
		clear32(p.aff[c])
	}

	p.pool.Run(len(p.kernels), func(start, end int) error {
		for i := start; i < end; i++ {
			k := p.kernels[i]
			directconv.ConvolveGrowthEmbedded2D(s.Channels[k.SourceChannel], k, p.params[k.TargetChannel], w, h, p.convOut[i])
		}
		return nil
	})
	for i, k := range p.kernels {
		target := p.aff[k.TargetChannel]
		for j, v := range p.convOut[i] {
			target[j] += v
		}
	}

	clear32(p.massSum)
	for c := range s.Channels {
		ch := s.Channels[c]
		for i, v := range ch {
			p.massSum[i] += v
		}
	}

	gradient.Sobel2D(p.massSum, w, h, p.gradAx, p.gradAy)

	dt := p.cfg.Dt
	dist := p.cfg.Flow.DistributionSize
	emb := p.cfg.Embedding

	p.pool.Run(p.cfg.Channels, func(start, end int) error {
		for c := start; c < end; c++ {
			clear32(p.nextChannels[c])
			gradient.Sobel2D(p.aff[c], w, h, p.gradUx[c], p.gradUy[c])

			cells := p.params[c].Cells
			for i, cp := range cells {
				p.betaGrid[c][i] = cp.BetaA
				p.nGrid[c][i] = cp.N
			}
			flow.Field2DPerCell(p.gradUx[c], p.gradUy[c], p.gradAx, p.gradAy, p.massSum, p.betaGrid[c], p.nGrid[c], p.fx[c], p.fy[c])

			if emb.Enabled {
				paramadvect.Advect2D(s.Channels[c], p.params[c], p.fx[c], p.fy[c], w, h, dt, dist, emb, p.nextChannels[c], p.nextParams[c])
			} else {
				advect.Advect2D(s.Channels[c], p.fx[c], p.fy[c], w, h, dt, dist, p.nextChannels[c])
				copy(p.nextParams[c].Cells, p.params[c].Cells)
			}
		}
		return nil
	})

	s.Channels, p.nextChannels = p.nextChannels, s.Channels
	p.params, p.nextParams = p.nextParams, p.params
	s.Time += dt
	s.Step++
}

// Run performs n steps in sequence.
func (p *Embedded) Run(s *state.SimulationState, n int) {
	for i := 0; i < n; i++ {
		p.Step(s)
	}
}
