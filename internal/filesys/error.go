package filesys

import (
	"errors"
)

var (
	// ErrInvalidPath is an error that occurs when an operation is given a
	// path with no segments.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotADirectory is an error that occurs when a path segment resolves
	// to a plain file where a directory is needed.
	ErrNotADirectory = errors.New("path segment is not a directory")

	// ErrDirectoryNotEmpty is an error that occurs when a non-recursive
	// remove targets a directory still holding entries.
	ErrDirectoryNotEmpty = errors.New("directory is not empty")

	// ErrNoOpenFile is an error that occurs when the descriptor surface is
	// used with no file currently open.
	ErrNoOpenFile = errors.New("no open file descriptor")

	// ErrInvalidSize is an error that occurs when a negative transfer size
	// is passed to the descriptor surface.
	ErrInvalidSize = errors.New("invalid transfer size < 0")
)
