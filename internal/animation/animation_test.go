package animation

import (
	"bytes"
	"path/filepath"
	"testing"

	"flowlenia/internal/config"
	"flowlenia/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_WriteReadRoundTrip(t *testing.T) {
	h := &Header{
		Width: 16, Height: 16, Depth: 1, Channels: 2,
		FrameCount: 3, Dt: 0.1,
		Flags: Flags{Compression: CompressionLz4, DeltaEncoding: false},
	}
	var buf bytes.Buffer
	require.NoError(t, h.WriteTo(&buf))
	assert.Equal(t, HeaderSize, buf.Len())

	got, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, *h, *got)
}

func TestReadHeader_RejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, HeaderSize))
	_, err := ReadHeader(buf)
	assert.Error(t, err)
}

func TestHeader_RejectsDeltaEncoding(t *testing.T) {
	h := &Header{Width: 1, Height: 1, Depth: 1, Channels: 1, Flags: Flags{DeltaEncoding: true}}
	var buf bytes.Buffer
	assert.Error(t, h.WriteTo(&buf))
}

func TestEncodeDecodeFrame_RoundTrip(t *testing.T) {
	data := []float32{1.5, -2.25, 0, 3.125}
	packed := EncodeFrame(data, nil)
	assert.Len(t, packed, 16)

	out := make([]float32, len(data))
	require.NoError(t, DecodeFrame(packed, out))
	assert.Equal(t, data, out)
}

func TestDecodeFrame_RejectsSizeMismatch(t *testing.T) {
	out := make([]float32, 3)
	err := DecodeFrame(make([]byte, 8), out)
	assert.Error(t, err)
}

func testSimConfig() config.SimulationConfig {
	return config.SimulationConfig{
		Width: 4, Height: 4, Depth: 1, Channels: 2, Dt: 0.1,
		KernelRadius: 2,
		Kernels:      []config.KernelConfig{{Radius: 1, Rings: []config.RingConfig{{Amplitude: 1, Distance: 0.5, Width: 0.15}}, Weight: 1, Mu: 0.15, Sigma: 0.015}},
	}
}

func testState() *state.SimulationState {
	s := state.NewSimulationState(4, 4, 1, 2)
	for i := range s.Channels[0] {
		s.Channels[0][i] = float32(i) * 0.1
		s.Channels[1][i] = float32(i) * -0.2
	}
	return s
}

func TestRecorderPlayer_RoundTripUncompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.flwa")
	rec, err := NewAnimationRecorder(path, testSimConfig(), DefaultRecorderConfig())
	require.NoError(t, err)

	s := testState()
	for i := 0; i < 3; i++ {
		recorded, err := rec.RecordFrame(s)
		require.NoError(t, err)
		assert.True(t, recorded)
		s.Channels[0][0] += 1
	}
	stats, err := rec.Finalize()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.FrameCount)

	player, err := OpenAnimationPlayer(path)
	require.NoError(t, err)
	defer player.Close()

	assert.EqualValues(t, 3, player.FrameCount())
	w, h, d := player.Dimensions()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 1, d)
	assert.False(t, player.Is3D())

	frame0, err := player.ReadFrame(0)
	require.NoError(t, err)
	assert.InDelta(t, 0, frame0.Channels[0][0], 1e-6)

	frame2, err := player.ReadFrame(2)
	require.NoError(t, err)
	assert.InDelta(t, 2, frame2.Channels[0][0], 1e-6)
	// replay metadata is not preserved per frame
	assert.Equal(t, 0, frame2.Step)
	assert.Equal(t, float32(0), frame2.Time)
}

func TestRecorderPlayer_RoundTripLz4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim_lz4.flwa")
	cfg := DefaultRecorderConfig()
	cfg.Compression = CompressionLz4
	rec, err := NewAnimationRecorder(path, testSimConfig(), cfg)
	require.NoError(t, err)

	s := testState()
	_, err = rec.RecordFrame(s)
	require.NoError(t, err)
	_, err = rec.Finalize()
	require.NoError(t, err)

	player, err := OpenAnimationPlayer(path)
	require.NoError(t, err)
	defer player.Close()

	frame, err := player.ReadFrame(0)
	require.NoError(t, err)
	for c, ch := range frame.Channels {
		assert.Equal(t, s.Channels[c], ch)
	}
}

// S5: record 5 distinct states (each scaled by its frame index+1), finalize,
// re-open, and verify frame_count=5 and each decoded channel matches the
// encoded one within 1e-6.
func TestScenarioS5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s5.flwa")
	rec, err := NewAnimationRecorder(path, testSimConfig(), DefaultRecorderConfig())
	require.NoError(t, err)

	base := testState()
	encoded := make([]*state.SimulationState, 5)
	for i := 0; i < 5; i++ {
		scale := float32(i + 1)
		s := state.NewSimulationState(4, 4, 1, 2)
		for c := range s.Channels {
			for j := range s.Channels[c] {
				s.Channels[c][j] = base.Channels[c][j] * scale
			}
		}
		encoded[i] = s
		recorded, err := rec.RecordFrame(s)
		require.NoError(t, err)
		assert.True(t, recorded)
	}
	stats, err := rec.Finalize()
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.FrameCount)

	player, err := OpenAnimationPlayer(path)
	require.NoError(t, err)
	defer player.Close()
	require.EqualValues(t, 5, player.FrameCount())

	for i := 0; i < 5; i++ {
		frame, err := player.ReadFrame(uint64(i))
		require.NoError(t, err)
		for c := range frame.Channels {
			for j := range frame.Channels[c] {
				assert.InDelta(t, encoded[i].Channels[c][j], frame.Channels[c][j], 1e-6)
			}
		}
	}
}

func TestRecorder_FrameSkipMatchesOriginalCounterSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skip.flwa")
	cfg := DefaultRecorderConfig()
	cfg.FrameSkip = 5
	rec, err := NewAnimationRecorder(path, testSimConfig(), cfg)
	require.NoError(t, err)

	s := testState()
	var recordedCount int
	for i := 0; i < 20; i++ {
		recorded, err := rec.RecordFrame(s)
		require.NoError(t, err)
		if recorded {
			recordedCount++
		}
	}
	assert.Equal(t, 4, recordedCount)
}

func TestRecorder_MaxFramesCapsRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capped.flwa")
	cfg := DefaultRecorderConfig()
	cfg.MaxFrames = 2
	rec, err := NewAnimationRecorder(path, testSimConfig(), cfg)
	require.NoError(t, err)

	s := testState()
	for i := 0; i < 5; i++ {
		_, err := rec.RecordFrame(s)
		require.NoError(t, err)
	}
	stats, err := rec.Finalize()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.FrameCount)
}

func TestPlayer_ReadFrameOutOfRangeIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oob.flwa")
	rec, err := NewAnimationRecorder(path, testSimConfig(), DefaultRecorderConfig())
	require.NoError(t, err)
	_, err = rec.RecordFrame(testState())
	require.NoError(t, err)
	_, err = rec.Finalize()
	require.NoError(t, err)

	player, err := OpenAnimationPlayer(path)
	require.NoError(t, err)
	defer player.Close()

	_, err = player.ReadFrame(1)
	assert.Error(t, err)
}
