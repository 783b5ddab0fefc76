package disk

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Sync flushes the image file's data to stable host storage. Fdatasync is
// enough here: the image is preallocated to its full size, so no metadata
// changes after creation.
func (d *Disk) Sync() error {
	if err := unix.Fdatasync(int(d.file.Fd())); err != nil {
		return fmt.Errorf("failed to fdatasync image: %w", err)
	}

	return nil
}
