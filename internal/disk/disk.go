// Package disk provides the simulated disk the storage core runs on. A disk
// is an ordered array of fixed-size sectors backed either by an image file on
// the host ([Disk]) or by memory ([MemDisk]); both satisfy
// [schema.SectorDevice]. All transfers are synchronous, whole-sector and
// atomic from the core's point of view.
package disk

import (
	"fmt"
	"log/slog"
	"os"
)

const (
	// SectorSize is the fixed number of bytes per disk sector.
	SectorSize = 128

	// DefaultNumSectors is the default sector count of a fresh disk image.
	DefaultNumSectors = 1024
)

type osProvider interface {
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Stat(name string) (os.FileInfo, error)
}

// Disk is a simulated disk backed by an image file on the host filesystem.
type Disk struct {
	file       *os.File
	numSectors int
}

// New opens an existing disk image at path. The sector count is derived from
// the image size, which must be a whole multiple of [SectorSize].
func New(osp osProvider, path string) (*Disk, error) {
	info, err := osp.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	if info.Size() == 0 || info.Size()%SectorSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedImage, info.Size())
	}

	file, err := osp.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	d := &Disk{
		file:       file,
		numSectors: int(info.Size() / SectorSize),
	}

	slog.Debug("Opened disk image.", "path", path, "sectors", d.numSectors)

	return d, nil
}

// Create creates a fresh, zero-filled disk image of numSectors sectors at
// path, replacing any existing image.
func Create(osp osProvider, path string, numSectors int) (*Disk, error) {
	if numSectors <= 0 {
		return nil, fmt.Errorf("%w: %d sectors", ErrMalformedImage, numSectors)
	}

	file, err := osp.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}

	if err := file.Truncate(int64(numSectors) * SectorSize); err != nil {
		file.Close()

		return nil, fmt.Errorf("failed to size image: %w", err)
	}

	d := &Disk{
		file:       file,
		numSectors: numSectors,
	}

	slog.Debug("Created disk image.", "path", path, "sectors", numSectors)

	return d, nil
}

// NumSectors returns the total sector count of the disk.
func (d *Disk) NumSectors() int {
	return d.numSectors
}

// ReadSector reads the given sector into buf, which must be exactly one
// sector in size.
func (d *Disk) ReadSector(sector int, buf []byte) error {
	if err := d.checkRequest(sector, buf); err != nil {
		return err
	}

	if _, err := d.file.ReadAt(buf, int64(sector)*SectorSize); err != nil {
		return fmt.Errorf("failed to read sector %d: %w", sector, err)
	}

	return nil
}

// WriteSector writes buf, which must be exactly one sector in size, to the
// given sector.
func (d *Disk) WriteSector(sector int, buf []byte) error {
	if err := d.checkRequest(sector, buf); err != nil {
		return err
	}

	if _, err := d.file.WriteAt(buf, int64(sector)*SectorSize); err != nil {
		return fmt.Errorf("failed to write sector %d: %w", sector, err)
	}

	return nil
}

// Close flushes and closes the backing image file.
func (d *Disk) Close() error {
	if err := d.Sync(); err != nil {
		return err
	}

	if err := d.file.Close(); err != nil {
		return fmt.Errorf("failed to close image: %w", err)
	}

	return nil
}

func (d *Disk) checkRequest(sector int, buf []byte) error {
	if sector < 0 || sector >= d.numSectors {
		return fmt.Errorf("%w: sector %d of %d", ErrSectorRange, sector, d.numSectors)
	}

	if len(buf) != SectorSize {
		return fmt.Errorf("%w: %d bytes", ErrBufferSize, len(buf))
	}

	return nil
}
