package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowth_PeaksAtMu(t *testing.T) {
	assert.InDelta(t, 1.0, Growth(0.15, 0.15, 0.015), 1e-6)
}

func TestGrowth_NegativeFarFromMu(t *testing.T) {
	g := Growth(0.9, 0.15, 0.015)
	assert.Less(t, g, float32(0))
	assert.InDelta(t, -1.0, g, 1e-4)
}

func TestGrowth_Symmetric(t *testing.T) {
	mu, sigma := float32(0.2), float32(0.03)
	a := Growth(mu-0.01, mu, sigma)
	b := Growth(mu+0.01, mu, sigma)
	assert.InDelta(t, a, b, 1e-6)
}

func TestAccumulate_MatchesGrowth(t *testing.T) {
	conv := []float32{0.15, 0.3, 0.0}
	target := make([]float32, len(conv))
	Accumulate(conv, target, 0.5, 0.15, 0.015)

	for i, c := range conv {
		expected := 0.5 * Growth(c, 0.15, 0.015)
		assert.InDelta(t, expected, target[i], 1e-6)
	}
}

func TestAccumulate_AddsToExisting(t *testing.T) {
	conv := []float32{0.15}
	target := []float32{2.0}
	Accumulate(conv, target, 1.0, 0.15, 0.015)
	assert.InDelta(t, 3.0, target[0], 1e-5)
}
