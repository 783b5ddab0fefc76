package filehdr

import (
	"errors"
)

var (
	// ErrInvalidSize is an error that occurs when a negative file size is
	// requested.
	ErrInvalidSize = errors.New("invalid file size < 0")

	// ErrFileTooLarge is an error that occurs when a requested file size
	// exceeds the maximum depth of the header tree.
	ErrFileTooLarge = errors.New("file size exceeds maximum indirection level")

	// ErrDiskFull is an error that occurs when the free map holds fewer
	// clear sectors than an allocation needs.
	ErrDiskFull = errors.New("not enough free sectors")

	// ErrOffsetRange is an error that occurs when a byte offset outside of
	// the file is translated.
	ErrOffsetRange = errors.New("byte offset out of range")
)
