package filesys

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// OpenFileID identifies the file behind the single active descriptor slot of
// the system-call surface. It is derived from the sector holding the file's
// header.
type OpenFileID = int32

// OpenAFile opens the file at the given path into the descriptor slot and
// returns its id. A file already occupying the slot is displaced.
func (fsys *FileSystem) OpenAFile(path string) (OpenFileID, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}

	fsys.descriptor = file

	slog.Debug("Opened descriptor.", "path", path, "id", file.Sector())

	return OpenFileID(file.Sector()), nil
}

// ReadFile reads up to size bytes from the descriptor slot into buf,
// advancing the file position, and returns the byte count. The id is
// accepted for system-call compatibility; only one slot exists.
func (fsys *FileSystem) ReadFile(buf []byte, size int, _ OpenFileID) (int, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if fsys.descriptor == nil {
		return 0, ErrNoOpenFile
	}

	n, err := fsys.descriptor.Read(buf[:min(size, len(buf))])
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}

	return n, nil
}

// WriteFile writes up to size bytes from buf to the descriptor slot,
// advancing the file position, and returns the byte count.
func (fsys *FileSystem) WriteFile(buf []byte, size int, _ OpenFileID) (int, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	if fsys.descriptor == nil {
		return 0, ErrNoOpenFile
	}

	n, err := fsys.descriptor.Write(buf[:min(size, len(buf))])
	if err != nil && !errors.Is(err, io.ErrShortWrite) {
		return n, err
	}

	return n, nil
}

// CloseFile releases the descriptor slot.
func (fsys *FileSystem) CloseFile(_ OpenFileID) error {
	if fsys.descriptor == nil {
		return ErrNoOpenFile
	}

	fsys.descriptor = nil

	return nil
}
