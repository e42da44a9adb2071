// Package state holds the simulation's mutable data: per-channel mass
// grids, the optional per-cell parameter grid used by the embedded
// propagator, and seed generators that populate a freshly constructed
// state (spec §3).
package state

import "flowlenia/internal/config"

// SimulationState is the evolving grid: Channels[c] is a flat W*H*D array
// in (z*height+y)*width+x order, shared by all propagator variants.
type SimulationState struct {
	Width, Height, Depth int
	Channels             [][]float32
	Step                 int
	Time                 float32
}

// NewSimulationState allocates a zeroed state for the given geometry.
func NewSimulationState(width, height, depth, channels int) *SimulationState {
	size := width * height * depth
	s := &SimulationState{
		Width:  width,
		Height: height,
		Depth:  depth,
	}
	s.Channels = make([][]float32, channels)
	for c := range s.Channels {
		s.Channels[c] = make([]float32, size)
	}
	return s
}

// TotalMass sums every cell of every channel.
func (s *SimulationState) TotalMass() float32 {
	var sum float32
	for _, ch := range s.Channels {
		for _, v := range ch {
			sum += v
		}
	}
	return sum
}

// ChannelMass sums a single channel.
func (s *SimulationState) ChannelMass(channel int) float32 {
	var sum float32
	for _, v := range s.Channels[channel] {
		sum += v
	}
	return sum
}

// CellParams is the set of per-cell growth/flow parameters transported
// alongside mass in embedded mode (spec §3, §4.8).
type CellParams struct {
	Mu     float32
	Sigma  float32
	Weight float32
	BetaA  float32
	N      float32
}

// DefaultCellParams mirrors the kernel-description defaults used when no
// contributing source exists at a destination cell.
func DefaultCellParams() CellParams {
	return CellParams{Mu: 0.15, Sigma: 0.015, Weight: 1.0, BetaA: 1.0, N: 2.0}
}

// ParameterGrid is a flat array of CellParams, one per cell, sharing the
// state's W*H*D geometry. Used only by the embedded propagator.
type ParameterGrid struct {
	Width, Height, Depth int
	Cells                []CellParams
}

// NewParameterGrid allocates a parameter grid filled with def at every
// cell.
func NewParameterGrid(width, height, depth int, def CellParams) *ParameterGrid {
	size := width * height * depth
	cells := make([]CellParams, size)
	for i := range cells {
		cells[i] = def
	}
	return &ParameterGrid{Width: width, Height: height, Depth: depth, Cells: cells}
}

// Get returns the parameters at (x,y,z).
func (g *ParameterGrid) Get(x, y, z int) CellParams {
	return g.Cells[(z*g.Height+y)*g.Width+x]
}

// Set writes the parameters at (x,y,z).
func (g *ParameterGrid) Set(x, y, z int, p CellParams) {
	g.Cells[(z*g.Height+y)*g.Width+x] = p
}

// GetIdx is Get by flat index, used by the advection inner loops.
func (g *ParameterGrid) GetIdx(idx int) CellParams {
	return g.Cells[idx]
}

// SetIdx is Set by flat index.
func (g *ParameterGrid) SetIdx(idx int, p CellParams) {
	g.Cells[idx] = p
}

// FromKernel derives a ParameterGrid's fill value from the first kernel
// description and the simulation's flow config: mu/sigma/weight are
// inherited from the first kernel description, beta_a/n from FlowConfig
// (§3).
func FromKernel(kc config.KernelConfig, flow config.FlowConfig) CellParams {
	return CellParams{
		Mu:     kc.Mu,
		Sigma:  kc.Sigma,
		Weight: kc.Weight,
		BetaA:  flow.BetaA,
		N:      flow.N,
	}
}
