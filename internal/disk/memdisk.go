package disk

import (
	"fmt"
)

// MemDisk is a simulated disk held entirely in memory. It is used by the
// tests and the scheduler demonstration, where no image durability is needed.
type MemDisk struct {
	sectors []byte
	num     int
}

// NewMem returns a zero-filled in-memory disk of numSectors sectors.
func NewMem(numSectors int) *MemDisk {
	return &MemDisk{
		sectors: make([]byte, numSectors*SectorSize),
		num:     numSectors,
	}
}

// NumSectors returns the total sector count of the disk.
func (d *MemDisk) NumSectors() int {
	return d.num
}

// ReadSector reads the given sector into buf, which must be exactly one
// sector in size.
func (d *MemDisk) ReadSector(sector int, buf []byte) error {
	if err := d.checkRequest(sector, buf); err != nil {
		return err
	}

	copy(buf, d.sectors[sector*SectorSize:(sector+1)*SectorSize])

	return nil
}

// WriteSector writes buf, which must be exactly one sector in size, to the
// given sector.
func (d *MemDisk) WriteSector(sector int, buf []byte) error {
	if err := d.checkRequest(sector, buf); err != nil {
		return err
	}

	copy(d.sectors[sector*SectorSize:(sector+1)*SectorSize], buf)

	return nil
}

// Sync is a no-op on an in-memory disk.
func (d *MemDisk) Sync() error {
	return nil
}

func (d *MemDisk) checkRequest(sector int, buf []byte) error {
	if sector < 0 || sector >= d.num {
		return fmt.Errorf("%w: sector %d of %d", ErrSectorRange, sector, d.num)
	}

	if len(buf) != SectorSize {
		return fmt.Errorf("%w: %d bytes", ErrBufferSize, len(buf))
	}

	return nil
}
