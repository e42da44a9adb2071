package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() SimulationConfig {
	return SimulationConfig{
		Width: 16, Height: 16, Depth: 1,
		Channels:     1,
		Dt:           0.1,
		KernelRadius: 5,
		Kernels: []KernelConfig{
			{Radius: 1.0, Rings: []RingConfig{{Amplitude: 1, Distance: 0.5, Width: 0.15}}, Weight: 1, Mu: 0.15, Sigma: 0.015},
		},
		Flow: FlowConfig{BetaA: 1, N: 2, DistributionSize: 0.5},
	}
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())
}

func TestValidate_RejectsZeroDimensions(t *testing.T) {
	c := validConfig()
	c.Width = 0
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsNonPositiveDt(t *testing.T) {
	c := validConfig()
	c.Dt = 0
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsOutOfRangeChannel(t *testing.T) {
	c := validConfig()
	c.Kernels[0].TargetChannel = 5
	assert.Error(t, c.Validate())
}

func TestValidate_RejectsEmptyKernelList(t *testing.T) {
	c := validConfig()
	c.Kernels = nil
	assert.Error(t, c.Validate())
}

func TestIs3D(t *testing.T) {
	c := validConfig()
	assert.False(t, c.Is3D())
	c.Depth = 4
	assert.True(t, c.Is3D())
}

func TestGridSize(t *testing.T) {
	c := validConfig()
	c.Width, c.Height, c.Depth = 4, 5, 2
	assert.Equal(t, 40, c.GridSize())
}

func TestActualRadius_RoundsToNearest(t *testing.T) {
	kc := KernelConfig{Radius: 0.5}
	assert.Equal(t, 5, kc.ActualRadius(10))
}

func TestDefaultEmbeddingConfig_IsDisabled(t *testing.T) {
	e := DefaultEmbeddingConfig()
	assert.False(t, e.Enabled)
	assert.Equal(t, float32(1.0), e.MixingTemperature)
}
