// Package config holds the immutable configuration surface consumed by the
// propagator: grid geometry, kernel descriptions, flow parameters, and the
// parameter-embedding switch.
package config

import (
	"flowlenia/internal/flerr"
)

// RingConfig is one concentric Gaussian bump contributing to a kernel shell.
type RingConfig struct {
	// Amplitude of this ring.
	Amplitude float32
	// Distance is the relative distance from the kernel center, in (0,1).
	Distance float32
	// Width of the Gaussian bump; must be > 0.
	Width float32
}

// KernelConfig describes one convolution kernel: its shape (rings), the
// growth function it feeds, and the channel pair it connects.
type KernelConfig struct {
	// Radius is the relative kernel radius in (0,1]; the actual radius in
	// cells is round(Radius * maxRadius).
	Radius float32
	Rings  []RingConfig
	Weight float32
	Mu     float32
	Sigma  float32

	SourceChannel int
	TargetChannel int
}

// FlowConfig carries the global flow-field parameters (beta, n, s) used
// outside embedded mode, or as defaults for the embedded propagator's
// global distribution_size.
type FlowConfig struct {
	// BetaA is the critical mass threshold for diffusion priority.
	BetaA float32
	// N is the power exponent of the alpha transition curve, typically in [1,4].
	N float32
	// DistributionSize is the half-width (s) of the advection footprint.
	DistributionSize float32
}

// EmbeddingConfig switches on per-cell parameter advection and controls how
// converging masses mix their parameters.
type EmbeddingConfig struct {
	Enabled bool
	// MixingTemperature controls softmax sharpness; default 1.0, smaller
	// values approach winner-take-all.
	MixingTemperature float32
	// LinearMixing replaces softmax mixing with mass-proportional averaging.
	LinearMixing bool
	// DominantOnly tracks just the single highest-mass contributor instead
	// of mixing; takes priority over LinearMixing when set.
	DominantOnly bool
}

// DefaultEmbeddingConfig returns the disabled, default-weighted embedding
// configuration.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Enabled:           false,
		MixingTemperature: 1.0,
	}
}

// SimulationConfig is the immutable description of one simulation: grid
// geometry, channel count, time step, kernels, flow, and embedding.
type SimulationConfig struct {
	Width, Height, Depth int
	Channels             int
	Dt                    float32
	// KernelRadius is the maximum kernel radius R, in cells.
	KernelRadius int
	Kernels      []KernelConfig
	Flow         FlowConfig
	Embedding    EmbeddingConfig
}

// Is3D reports whether the configuration describes a 3D grid (depth > 1).
func (c *SimulationConfig) Is3D() bool {
	return c.Depth > 1
}

// GridSize returns W*H*D, the flat length of one channel's array.
func (c *SimulationConfig) GridSize() int {
	return c.Width * c.Height * c.Depth
}

// Validate checks the invariants from spec §3: all channel indices < C,
// dt>0, W,H,D,C,R > 0. Returns a flerr.ErrInvalidConfig on violation.
func (c *SimulationConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
		return flerr.Wrap(flerr.ErrInvalidConfig, "grid dimensions must be positive")
	}
	if c.Channels <= 0 {
		return flerr.Wrap(flerr.ErrInvalidConfig, "channel count must be positive")
	}
	if c.Dt <= 0 {
		return flerr.Wrap(flerr.ErrInvalidConfig, "dt must be positive")
	}
	if c.KernelRadius <= 0 {
		return flerr.Wrap(flerr.ErrInvalidConfig, "kernel radius must be positive")
	}
	if len(c.Kernels) == 0 {
		return flerr.Wrap(flerr.ErrInvalidConfig, "kernel list must be non-empty")
	}
	for i, k := range c.Kernels {
		if k.SourceChannel < 0 || k.SourceChannel >= c.Channels {
			return flerr.Wrapf(flerr.ErrInvalidConfig, "kernel %d: source channel %d out of range", i, k.SourceChannel)
		}
		if k.TargetChannel < 0 || k.TargetChannel >= c.Channels {
			return flerr.Wrapf(flerr.ErrInvalidConfig, "kernel %d: target channel %d out of range", i, k.TargetChannel)
		}
		if k.Radius <= 0 || k.Radius > 1 {
			return flerr.Wrapf(flerr.ErrInvalidConfig, "kernel %d: radius %v must be in (0,1]", i, k.Radius)
		}
	}
	return nil
}

// ActualRadius returns the integer kernel radius for k given the global
// maximum radius R: round(r * R).
func (k *KernelConfig) ActualRadius(maxRadius int) int {
	return int(k.Radius*float32(maxRadius) + 0.5)
}
