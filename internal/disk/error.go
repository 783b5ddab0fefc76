package disk

import (
	"errors"
)

var (
	// ErrSectorRange is an error that occurs when a sector number outside of
	// the disk's geometry is requested.
	ErrSectorRange = errors.New("sector number out of range")

	// ErrBufferSize is an error that occurs when a transfer buffer is not
	// exactly one sector in size.
	ErrBufferSize = errors.New("buffer is not one sector in size")

	// ErrMalformedImage is an error that occurs when a disk image's size is
	// not a whole multiple of the sector size (or an impossible geometry was
	// requested for a fresh image).
	ErrMalformedImage = errors.New("malformed disk image")
)
