package animation

import (
	"bufio"
	"io"
	"os"

	"flowlenia/internal/config"
	"flowlenia/internal/flerr"
	"flowlenia/internal/state"

	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog"
)

// Log is the package-level construction-time logger. Recording and
// playback never log per-frame (matching propagator.Step's silence);
// only Open/New and Finalize emit Debug/Info events.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// RecorderConfig controls frame sampling and compression for an
// AnimationRecorder.
type RecorderConfig struct {
	Compression CompressionType
	// FrameSkip records every Nth call to RecordFrame; 1 records every call.
	FrameSkip uint32
	// MaxFrames caps the number of recorded frames; 0 means unlimited.
	MaxFrames uint64
}

// DefaultRecorderConfig returns uncompressed, every-frame recording with
// no frame cap.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Compression: CompressionNone,
		FrameSkip:   1,
		MaxFrames:   0,
	}
}

// AnimationRecorder writes simulation frames to a FLWA file as they arrive,
// deferring the frame index table and final header patch to Finalize.
type AnimationRecorder struct {
	file   *os.File
	writer *bufio.Writer
	offset int64

	header Header
	cfg    RecorderConfig

	frameIndices  []FrameIndex
	framesWritten uint64
	stepCounter   uint32

	encodeBuf []byte
	lz4Buf    []byte
}

// NewAnimationRecorder creates path and writes a placeholder header; the
// header's frame_count field is rewritten by Finalize.
func NewAnimationRecorder(path string, simCfg config.SimulationConfig, recCfg RecorderConfig) (*AnimationRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, flerr.Wrap(flerr.ErrIO, "create animation file")
	}

	header := Header{
		Width:      uint32(simCfg.Width),
		Height:     uint32(simCfg.Height),
		Depth:      uint32(simCfg.Depth),
		Channels:   uint32(simCfg.Channels),
		FrameCount: 0,
		Dt:         simCfg.Dt,
		Flags: Flags{
			Compression:   recCfg.Compression,
			DeltaEncoding: false,
		},
	}

	w := bufio.NewWriter(f)
	if err := header.WriteTo(w); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return nil, flerr.Wrap(flerr.ErrIO, "flush animation header")
	}

	Log.Debug().
		Str("path", path).
		Int("width", simCfg.Width).Int("height", simCfg.Height).Int("depth", simCfg.Depth).
		Int("channels", simCfg.Channels).Uint8("compression", uint8(recCfg.Compression)).
		Uint32("frame_skip", recCfg.FrameSkip).
		Msg("animation recorder opened")

	return &AnimationRecorder{
		file:      f,
		writer:    w,
		offset:    HeaderSize,
		header:    header,
		cfg:       recCfg,
		encodeBuf: make([]byte, header.FrameSize()),
	}, nil
}

// RecordFrame appends one frame if it survives frame-skip and max-frames
// filtering, returning whether it was actually written.
//
// The skip counter matches the original recorder: it increments first,
// then skips while below FrameSkip, resetting to zero on every call that
// passes the skip check (including one then dropped by MaxFrames).
func (r *AnimationRecorder) RecordFrame(s *state.SimulationState) (bool, error) {
	r.stepCounter++
	if r.stepCounter < r.cfg.FrameSkip {
		return false, nil
	}
	r.stepCounter = 0

	if r.cfg.MaxFrames > 0 && r.framesWritten >= r.cfg.MaxFrames {
		return false, nil
	}

	offset := r.offset

	totalFloats := 0
	for _, ch := range s.Channels {
		totalFloats += len(ch)
	}
	need := totalFloats * 4
	if len(r.encodeBuf) != need {
		r.encodeBuf = make([]byte, need)
	}

	pos := 0
	for _, ch := range s.Channels {
		packed := EncodeFrame(ch, nil)
		copy(r.encodeBuf[pos:pos+len(packed)], packed)
		pos += len(packed)
	}

	var payload []byte
	switch r.header.Flags.Compression {
	case CompressionLz4:
		payload = r.compressFramed()
	default:
		payload = r.encodeBuf
	}

	n, err := r.writer.Write(payload)
	if err != nil {
		return false, flerr.Wrap(flerr.ErrIO, "write frame payload")
	}
	r.offset += int64(n)

	r.frameIndices = append(r.frameIndices, FrameIndex{
		Offset: uint64(offset),
		Size:   uint64(len(payload)),
	})
	r.framesWritten++

	return true, nil
}

// FramesWritten returns the number of frames recorded so far.
func (r *AnimationRecorder) FramesWritten() uint64 {
	return r.framesWritten
}

// AnimationStats summarizes a finished recording session.
type AnimationStats struct {
	FrameCount       uint64
	TotalBytes       uint64
	AverageFrameSize uint64
	Compression      CompressionType
}

// Finalize writes the frame index table, patches the header's frame_count
// field, flushes, and closes the file.
func (r *AnimationRecorder) Finalize() (AnimationStats, error) {
	indexOffset := r.offset
	for _, fi := range r.frameIndices {
		if err := fi.WriteTo(r.writer); err != nil {
			return AnimationStats{}, err
		}
	}
	r.header.FrameCount = r.framesWritten

	if err := r.writer.Flush(); err != nil {
		return AnimationStats{}, flerr.Wrap(flerr.ErrIO, "flush frame index table")
	}

	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return AnimationStats{}, flerr.Wrap(flerr.ErrIO, "seek to header for finalize")
	}
	if err := r.header.WriteTo(r.file); err != nil {
		return AnimationStats{}, err
	}
	if err := r.file.Close(); err != nil {
		return AnimationStats{}, flerr.Wrap(flerr.ErrIO, "close animation file")
	}

	totalSize := uint64(indexOffset) + uint64(len(r.frameIndices))*FrameIndexSize
	var avg uint64
	if r.framesWritten > 0 {
		avg = (uint64(indexOffset) - HeaderSize) / r.framesWritten
	}

	Log.Info().
		Uint64("frames", r.framesWritten).Uint64("total_bytes", totalSize).
		Msg("animation recorder finalized")

	return AnimationStats{
		FrameCount:       r.framesWritten,
		TotalBytes:       totalSize,
		AverageFrameSize: avg,
		Compression:      r.header.Flags.Compression,
	}, nil
}

// storedMarker/compressedMarker prefix every Lz4-mode payload by one byte.
// pierrec/lz4's block compressor returns n==0 when a block is too small or
// incompressible to shrink; this marker lets the player fall back to the
// raw bytes in that case instead of trying to decompress them.
const (
	storedMarker     byte = 0
	compressedMarker byte = 1
)

func (r *AnimationRecorder) compressFramed() []byte {
	bound := lz4.CompressBlockBound(len(r.encodeBuf))
	if cap(r.lz4Buf) < bound+1 {
		r.lz4Buf = make([]byte, bound+1)
	}
	dst := r.lz4Buf[:bound+1]

	var c lz4.Compressor
	n, err := c.CompressBlock(r.encodeBuf, dst[1:])
	if err != nil || n == 0 {
		out := make([]byte, len(r.encodeBuf)+1)
		out[0] = storedMarker
		copy(out[1:], r.encodeBuf)
		return out
	}

	out := make([]byte, n+1)
	out[0] = compressedMarker
	copy(out[1:], dst[1:1+n])
	return out
}
