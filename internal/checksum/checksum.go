// Package checksum implements the cartridge image integrity check.
package checksum

import (
	"errors"
	"fmt"

	"github.com/retroenv/mdcart/internal/header"
)

// ErrMismatch signals that the computed checksum differs from the declared one.
// It is a warning, images with a mismatch are still usable.
var ErrMismatch = errors.New("checksum mismatch")

// MismatchError contains the declared and the computed checksum.
type MismatchError struct {
	Expected uint16
	Computed uint16
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: expected 0x%04X, got 0x%04X", ErrMismatch, e.Expected, e.Computed)
}

// Is makes the error match ErrMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// Compute returns the 16 bit sum of all bytes of the image following the header.
func Compute(image []byte) uint16 {
	if len(image) <= header.Size {
		return 0
	}

	var sum uint16
	for _, b := range image[header.Size:] {
		sum += uint16(b)
	}
	return sum
}

// Validate compares the checksum of the image against the one declared in
// the header. A *MismatchError is returned if they differ.
func Validate(h *header.Header, image []byte) error {
	computed := Compute(image)
	if computed != h.Checksum {
		return &MismatchError{
			Expected: h.Checksum,
			Computed: computed,
		}
	}
	return nil
}
