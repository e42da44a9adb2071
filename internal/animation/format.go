// Package animation implements the FLWA binary animation format (spec
// §4.10): a little-endian header, sequential frame payloads, and a
// trailing per-frame index table written at finalize time.
package animation

import (
	"encoding/binary"
	"io"
	"math"

	"flowlenia/internal/flerr"
)

func float32bits(v float32) uint32    { return math.Float32bits(v) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }

// Magic identifies a Flow Lenia Animation file.
var Magic = [4]byte{'F', 'L', 'W', 'A'}

// Version is the only format version this package reads or writes.
const Version uint16 = 1

// HeaderSize is the fixed on-disk header size in bytes.
const HeaderSize = 52

// FrameIndexSize is the fixed on-disk size of one FrameIndex entry.
const FrameIndexSize = 16

// CompressionType selects the per-frame payload codec.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionLz4  CompressionType = 1
)

// Flags packs compression (bits 0-3) and the reserved delta-encoding bit
// (bit 4, not implemented in version 1) into the header's 16-bit flags
// field.
type Flags struct {
	Compression   CompressionType
	DeltaEncoding bool
}

func (f Flags) toUint16() uint16 {
	v := uint16(f.Compression)
	if f.DeltaEncoding {
		v |= 1 << 4
	}
	return v
}

func flagsFromUint16(v uint16) Flags {
	return Flags{
		Compression:   CompressionType(v & 0x0F),
		DeltaEncoding: v&(1<<4) != 0,
	}
}

// Header is the 52-byte FLWA file header.
type Header struct {
	Width, Height, Depth uint32
	Channels             uint32
	FrameCount           uint64
	Dt                   float32
	Flags                Flags
}

// FrameSize returns the uncompressed byte size of one frame.
func (h *Header) FrameSize() int {
	return int(h.Width) * int(h.Height) * int(h.Depth) * int(h.Channels) * 4
}

// Is3D reports whether the recorded grid has depth > 1.
func (h *Header) Is3D() bool {
	return h.Depth > 1
}

// WriteTo serializes the header in the exact 52-byte field layout spec
// §4.10 specifies.
func (h *Header) WriteTo(w io.Writer) error {
	if h.Flags.DeltaEncoding {
		return flerr.Wrap(flerr.ErrInvalidData, "delta encoding is not implemented in FLWA version 1")
	}
	var buf [HeaderSize]byte
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags.toUint16())
	binary.LittleEndian.PutUint32(buf[8:12], h.Width)
	binary.LittleEndian.PutUint32(buf[12:16], h.Height)
	binary.LittleEndian.PutUint32(buf[16:20], h.Depth)
	binary.LittleEndian.PutUint32(buf[20:24], h.Channels)
	binary.LittleEndian.PutUint64(buf[24:32], h.FrameCount)
	binary.LittleEndian.PutUint32(buf[32:36], float32bits(h.Dt))
	// buf[36:52] stays zero: reserved.
	_, err := w.Write(buf[:])
	if err != nil {
		return flerr.Wrap(flerr.ErrIO, "write animation header")
	}
	return nil
}

// ReadHeader parses a 52-byte FLWA header, validating magic and version.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, flerr.Wrap(flerr.ErrInvalidData, "truncated animation header")
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return nil, flerr.Wrap(flerr.ErrInvalidData, "bad FLWA magic")
	}
	version := binary.LittleEndian.Uint16(buf[4:6])
	if version != Version {
		return nil, flerr.Wrapf(flerr.ErrInvalidData, "unsupported FLWA version %d", version)
	}
	h := &Header{
		Flags:      flagsFromUint16(binary.LittleEndian.Uint16(buf[6:8])),
		Width:      binary.LittleEndian.Uint32(buf[8:12]),
		Height:     binary.LittleEndian.Uint32(buf[12:16]),
		Depth:      binary.LittleEndian.Uint32(buf[16:20]),
		Channels:   binary.LittleEndian.Uint32(buf[20:24]),
		FrameCount: binary.LittleEndian.Uint64(buf[24:32]),
		Dt:         float32frombits(binary.LittleEndian.Uint32(buf[32:36])),
	}
	if h.Flags.DeltaEncoding {
		return nil, flerr.Wrap(flerr.ErrInvalidData, "delta encoding is not implemented in FLWA version 1")
	}
	return h, nil
}

// FrameIndex locates one frame's payload within the file.
type FrameIndex struct {
	Offset uint64
	Size   uint64
}

// WriteTo serializes one 16-byte index entry.
func (fi FrameIndex) WriteTo(w io.Writer) error {
	var buf [FrameIndexSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], fi.Offset)
	binary.LittleEndian.PutUint64(buf[8:16], fi.Size)
	_, err := w.Write(buf[:])
	if err != nil {
		return flerr.Wrap(flerr.ErrIO, "write frame index")
	}
	return nil
}

// ReadFrameIndex parses one 16-byte index entry.
func ReadFrameIndex(r io.Reader) (FrameIndex, error) {
	var buf [FrameIndexSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return FrameIndex{}, flerr.Wrap(flerr.ErrInvalidData, "truncated frame index")
	}
	return FrameIndex{
		Offset: binary.LittleEndian.Uint64(buf[0:8]),
		Size:   binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}

// EncodeFrame packs a float32 slice into little-endian bytes.
func EncodeFrame(data []float32, out []byte) []byte {
	need := len(data) * 4
	if cap(out) < need {
		out = make([]byte, need)
	}
	out = out[:need]
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], float32bits(v))
	}
	return out
}

// DecodeFrame unpacks little-endian bytes into a pre-sized float32 slice.
func DecodeFrame(data []byte, out []float32) error {
	if len(data) != len(out)*4 {
		return flerr.Wrapf(flerr.ErrInvalidInput, "frame size mismatch: %d bytes vs %d floats", len(data), len(out))
	}
	for i := range out {
		out[i] = float32frombits(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
	return nil
}
