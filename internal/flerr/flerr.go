// Package flerr defines the structured error taxonomy shared across the
// Flow Lenia engine. Every error returned by the core belongs to exactly
// one of these classes; callers discriminate with errors.Is.
package flerr

import (
	"github.com/pkg/errors"
)

// Sentinel classes. Wrap these with errors.Wrap/errors.Wrapf to attach
// context; the sentinel stays discoverable via errors.Is.
var (
	// ErrInvalidConfig is produced only at propagator construction: zero
	// grid dimensions, out-of-range channel references, non-positive dt,
	// zero kernel radius.
	ErrInvalidConfig = errors.New("invalid-config")

	// ErrInvalidKernel is produced at kernel construction: empty ring
	// list, non-positive ring width.
	ErrInvalidKernel = errors.New("invalid-kernel")

	// ErrInvalidData marks an animation file parse failure: bad magic,
	// unknown version, truncated payload, decompression failure.
	ErrInvalidData = errors.New("invalid-data")

	// ErrInvalidInput marks a caller-supplied argument out of range, e.g.
	// an animation frame index beyond frame_count, or a decode buffer of
	// the wrong length.
	ErrInvalidInput = errors.New("invalid-input")

	// ErrIO wraps an underlying read/write failure surfaced from the host.
	ErrIO = errors.New("io")
)

// Wrap attaches msg as context to a sentinel class, preserving errors.Is.
func Wrap(class error, msg string) error {
	return errors.Wrap(class, msg)
}

// Wrapf is Wrap with formatting.
func Wrapf(class error, format string, args ...interface{}) error {
	return errors.Wrapf(class, format, args...)
}
