package animation

import (
	"bufio"
	"io"
	"os"

	"flowlenia/internal/flerr"
	"flowlenia/internal/state"

	"github.com/pierrec/lz4/v4"
)

// AnimationPlayer provides random-access playback of a recorded FLWA file.
type AnimationPlayer struct {
	file   *os.File
	reader *bufio.Reader

	header       Header
	frameIndices []FrameIndex

	readBuf   []byte
	decompBuf []byte
}

// OpenAnimationPlayer opens path, reads its header, and loads the trailing
// frame index table (a single seek to its computed offset followed by a
// sequential forward read of frame_count entries).
func OpenAnimationPlayer(path string) (*AnimationPlayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, flerr.Wrap(flerr.ErrIO, "open animation file")
	}

	header, err := ReadHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	fileLen, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, flerr.Wrap(flerr.ErrIO, "seek to end of animation file")
	}

	frameDataSize := int64(header.FrameCount) * FrameIndexSize
	indexStart := fileLen - frameDataSize
	if indexStart < HeaderSize {
		f.Close()
		return nil, flerr.Wrap(flerr.ErrInvalidData, "animation file too small for its frame index table")
	}
	if _, err := f.Seek(indexStart, io.SeekStart); err != nil {
		f.Close()
		return nil, flerr.Wrap(flerr.ErrIO, "seek to frame index table")
	}

	indexReader := bufio.NewReader(f)
	indices := make([]FrameIndex, header.FrameCount)
	for i := range indices {
		fi, err := ReadFrameIndex(indexReader)
		if err != nil {
			f.Close()
			return nil, err
		}
		indices[i] = fi
	}

	if _, err := f.Seek(HeaderSize, io.SeekStart); err != nil {
		f.Close()
		return nil, flerr.Wrap(flerr.ErrIO, "seek past animation header")
	}

	Log.Debug().
		Str("path", path).Uint64("frames", header.FrameCount).
		Uint8("compression", uint8(header.Flags.Compression)).
		Msg("animation player opened")

	return &AnimationPlayer{
		file:         f,
		reader:       bufio.NewReader(f),
		header:       *header,
		frameIndices: indices,
	}, nil
}

// Header returns the parsed file header.
func (p *AnimationPlayer) Header() Header {
	return p.header
}

// FrameCount returns the number of recorded frames.
func (p *AnimationPlayer) FrameCount() uint64 {
	return p.header.FrameCount
}

// Dimensions returns the recorded grid's width, height, and depth.
func (p *AnimationPlayer) Dimensions() (int, int, int) {
	return int(p.header.Width), int(p.header.Height), int(p.header.Depth)
}

// Channels returns the recorded channel count.
func (p *AnimationPlayer) Channels() int {
	return int(p.header.Channels)
}

// Is3D reports whether the recorded grid has depth > 1.
func (p *AnimationPlayer) Is3D() bool {
	return p.header.Is3D()
}

// Dt returns the recorded time step.
func (p *AnimationPlayer) Dt() float32 {
	return p.header.Dt
}

// Close releases the underlying file handle.
func (p *AnimationPlayer) Close() error {
	return p.file.Close()
}

func (p *AnimationPlayer) rawFrame(frameIndex uint64) ([]byte, error) {
	if frameIndex >= p.header.FrameCount {
		return nil, flerr.Wrapf(flerr.ErrInvalidInput, "frame index %d out of range (max %d)", frameIndex, p.header.FrameCount-1)
	}

	idx := p.frameIndices[frameIndex]
	if _, err := p.file.Seek(int64(idx.Offset), io.SeekStart); err != nil {
		return nil, flerr.Wrap(flerr.ErrIO, "seek to frame payload")
	}
	p.reader.Reset(p.file)

	if uint64(cap(p.readBuf)) < idx.Size {
		p.readBuf = make([]byte, idx.Size)
	}
	buf := p.readBuf[:idx.Size]
	if _, err := io.ReadFull(p.reader, buf); err != nil {
		return nil, flerr.Wrap(flerr.ErrInvalidData, "truncated frame payload")
	}

	switch p.header.Flags.Compression {
	case CompressionLz4:
		if len(buf) == 0 {
			return nil, flerr.Wrap(flerr.ErrInvalidData, "empty lz4 frame payload")
		}
		marker, body := buf[0], buf[1:]
		if marker == storedMarker {
			return body, nil
		}
		frameSize := p.header.FrameSize()
		if cap(p.decompBuf) < frameSize {
			p.decompBuf = make([]byte, frameSize)
		}
		dst := p.decompBuf[:frameSize]
		n, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return nil, flerr.Wrap(flerr.ErrInvalidData, "lz4 decompress frame")
		}
		return dst[:n], nil
	default:
		return buf, nil
	}
}

// ReadFrame decodes a fresh SimulationState for frameIndex. Replay metadata
// (time, step) is not preserved per frame; both are reset to zero.
func (p *AnimationPlayer) ReadFrame(frameIndex uint64) (*state.SimulationState, error) {
	raw, err := p.rawFrame(frameIndex)
	if err != nil {
		return nil, err
	}

	w, h, d := p.Dimensions()
	gridSize := w * h * d
	channels := make([][]float32, p.header.Channels)
	for c := range channels {
		ch := make([]float32, gridSize)
		start := c * gridSize * 4
		end := start + gridSize*4
		if err := DecodeFrame(raw[start:end], ch); err != nil {
			return nil, err
		}
		channels[c] = ch
	}

	return &state.SimulationState{
		Width:    w,
		Height:   h,
		Depth:    d,
		Channels: channels,
		Step:     0,
		Time:     0,
	}, nil
}

// ReadFrameInto decodes frameIndex into pre-allocated channel buffers,
// avoiding per-frame allocation for sequential playback.
func (p *AnimationPlayer) ReadFrameInto(frameIndex uint64, channels [][]float32) error {
	raw, err := p.rawFrame(frameIndex)
	if err != nil {
		return err
	}

	w, h, d := p.Dimensions()
	gridSize := w * h * d
	for c, ch := range channels {
		start := c * gridSize * 4
		end := start + gridSize*4
		if err := DecodeFrame(raw[start:end], ch); err != nil {
			return err
		}
	}
	return nil
}
