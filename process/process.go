// Package process provides the address, pattern and image types shared by
// the scanner and the platform image implementations.
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrOutOfBounds is returned when a read crosses the end of an image
	ErrOutOfBounds = errors.New("address out of bounds")
)
