package directory

import (
	"errors"
)

var (
	// ErrNameExists is an error that occurs when a name is added that
	// already exists within the same directory table.
	ErrNameExists = errors.New("name already exists in directory")

	// ErrNameTooLong is an error that occurs when a name does not fit into a
	// fixed-width directory entry.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrDirectoryFull is an error that occurs when no free entry slot
	// remains in the directory table.
	ErrDirectoryFull = errors.New("no free slot in directory")

	// ErrNotFound is an error that occurs when a name is not present among
	// the directory table's in-use entries.
	ErrNotFound = errors.New("name not found in directory")
)
