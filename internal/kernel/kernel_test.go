package kernel

import (
	"testing"

	"flowlenia/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ringConfig() config.KernelConfig {
	return config.KernelConfig{
		Radius: 1.0,
		Rings: []config.RingConfig{
			{Amplitude: 1.0, Distance: 0.5, Width: 0.15},
		},
		Weight: 0.2,
		Mu:     0.15,
		Sigma:  0.015,
	}
}

func TestBuild2D_Normalized(t *testing.T) {
	k, err := Build2D(ringConfig(), 8)
	require.NoError(t, err)

	var sum float32
	for _, v := range k.Data {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, 2*8+1, k.Side)
}

func TestBuild2D_RadialSymmetry(t *testing.T) {
	k, err := Build2D(ringConfig(), 8)
	require.NoError(t, err)

	c := k.Radius
	for dy := 1; dy <= c; dy++ {
		a := k.At2D(c, c+dy)
		b := k.At2D(c, c-dy)
		assert.InDelta(t, a, b, 1e-6)
		left := k.At2D(c-dy, c)
		right := k.At2D(c+dy, c)
		assert.InDelta(t, left, right, 1e-6)
	}
}

func TestBuild2D_RejectsEmptyRings(t *testing.T) {
	kc := ringConfig()
	kc.Rings = nil
	_, err := Build2D(kc, 8)
	require.Error(t, err)
}

func TestBuild2D_ZeroRadius(t *testing.T) {
	kc := ringConfig()
	kc.Radius = 0.01
	k, err := Build2D(kc, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, k.Side)
	assert.Equal(t, 0, k.Radius)
}

func TestBuild3D_Normalized(t *testing.T) {
	k, err := Build3D(ringConfig(), 6)
	require.NoError(t, err)

	var sum float32
	for _, v := range k.Data {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestPadAndShift2D_PreservesMass(t *testing.T) {
	k, err := Build2D(ringConfig(), 4)
	require.NoError(t, err)

	padded := k.PadAndShift2D(32, 32)
	var sum float32
	for _, v := range padded {
		sum += v
	}
	var orig float32
	for _, v := range k.Data {
		orig += v
	}
	assert.InDelta(t, orig, sum, 1e-5)
}

func TestPadAndShift2D_CenterAtOrigin(t *testing.T) {
	k, err := Build2D(ringConfig(), 4)
	require.NoError(t, err)

	padded := k.PadAndShift2D(32, 32)
	assert.Equal(t, k.At2D(k.Radius, k.Radius), padded[0])
}
