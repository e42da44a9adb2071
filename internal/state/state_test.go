package state

import (
	"testing"

	"flowlenia/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewSimulationState_AllocatesChannels(t *testing.T) {
	s := NewSimulationState(4, 5, 1, 2)
	assert.Len(t, s.Channels, 2)
	assert.Len(t, s.Channels[0], 20)
	assert.Equal(t, float32(0), s.TotalMass())
}

func TestChannelMass(t *testing.T) {
	s := NewSimulationState(2, 2, 1, 2)
	s.Channels[0][0] = 1.5
	s.Channels[1][0] = 2.5
	assert.InDelta(t, 1.5, s.ChannelMass(0), 1e-6)
	assert.InDelta(t, 2.5, s.ChannelMass(1), 1e-6)
	assert.InDelta(t, 4.0, s.TotalMass(), 1e-6)
}

func TestParameterGrid_GetSetRoundTrip(t *testing.T) {
	g := NewParameterGrid(4, 4, 1, DefaultCellParams())
	p := CellParams{Mu: 0.3, Sigma: 0.02, Weight: 2, BetaA: 1.5, N: 3}
	g.Set(2, 1, 0, p)
	assert.Equal(t, p, g.Get(2, 1, 0))
	assert.Equal(t, DefaultCellParams(), g.Get(0, 0, 0))
}

func TestFromKernel_DerivesDefaultsFromFirstKernelAndFlowConfig(t *testing.T) {
	kc := config.KernelConfig{Mu: 0.22, Sigma: 0.04, Weight: 0.8}
	flow := config.FlowConfig{BetaA: 0.7, N: 3.5, DistributionSize: 1.0}
	p := FromKernel(kc, flow)
	assert.Equal(t, float32(0.22), p.Mu)
	assert.Equal(t, float32(0.04), p.Sigma)
	assert.Equal(t, float32(0.8), p.Weight)
	assert.Equal(t, float32(0.7), p.BetaA)
	assert.Equal(t, float32(3.5), p.N)
}
