package filesys

import (
	"fmt"
	"io"

	"github.com/desertwitch/gokern/internal/disk"
	"github.com/desertwitch/gokern/internal/filehdr"
	"github.com/desertwitch/gokern/internal/schema"
)

// OpenFile is a handle onto one file of the filesystem. It carries the file's
// header in memory and an internal seek position for the sequential [io]
// interfaces; positioned access goes through [OpenFile.ReadAt] and
// [OpenFile.WriteAt]. Files are fixed-size: writes past the allocated length
// are cut short.
type OpenFile struct {
	dev    schema.SectorDevice
	hdr    *filehdr.Header
	sector int
	pos    int64
}

// Open fetches the header stored at the given sector and returns a handle
// onto its file.
func Open(dev schema.SectorDevice, sector int) (*OpenFile, error) {
	hdr := filehdr.New()
	if err := hdr.FetchFrom(dev, sector); err != nil {
		return nil, fmt.Errorf("failed to open sector %d: %w", sector, err)
	}

	return &OpenFile{
		dev:    dev,
		hdr:    hdr,
		sector: sector,
	}, nil
}

// Sector returns the sector holding the file's header; it doubles as the
// file's identity for the descriptor surface.
func (f *OpenFile) Sector() int {
	return f.sector
}

// Length returns the file's byte length.
func (f *OpenFile) Length() int32 {
	return f.hdr.FileLength()
}

// Header returns the file's in-memory header.
func (f *OpenFile) Header() *filehdr.Header {
	return f.hdr
}

// Seek moves the internal position for the sequential interfaces.
func (f *OpenFile) Seek(pos int64) {
	f.pos = pos
}

// ReadAt reads into p starting at byte offset off, implementing
// [io.ReaderAt]. Reads crossing the end of the file are cut short and return
// [io.EOF].
func (f *OpenFile) ReadAt(p []byte, off int64) (int, error) {
	length := int64(f.Length())
	if off < 0 || off >= length {
		return 0, io.EOF
	}

	n := min(int64(len(p)), length-off)
	buf := make([]byte, disk.SectorSize)

	var done int64
	for done < n {
		pos := off + done
		secOff := pos % disk.SectorSize
		chunk := min(disk.SectorSize-secOff, n-done)

		sector, err := f.hdr.ByteToSector(f.dev, int32(pos))
		if err != nil {
			return int(done), err
		}

		if err := f.dev.ReadSector(sector, buf); err != nil {
			return int(done), err
		}

		copy(p[done:done+chunk], buf[secOff:secOff+chunk])
		done += chunk
	}

	if n < int64(len(p)) {
		return int(n), io.EOF
	}

	return int(n), nil
}

// WriteAt writes p starting at byte offset off, implementing [io.WriterAt].
// Partial head and tail sectors are read, modified and written back whole.
// Writes crossing the end of the fixed-size file are cut short and return
// [io.ErrShortWrite].
func (f *OpenFile) WriteAt(p []byte, off int64) (int, error) {
	length := int64(f.Length())
	if off < 0 || off >= length {
		return 0, io.ErrShortWrite
	}

	n := min(int64(len(p)), length-off)
	buf := make([]byte, disk.SectorSize)

	var done int64
	for done < n {
		pos := off + done
		secOff := pos % disk.SectorSize
		chunk := min(disk.SectorSize-secOff, n-done)

		sector, err := f.hdr.ByteToSector(f.dev, int32(pos))
		if err != nil {
			return int(done), err
		}

		if chunk < disk.SectorSize {
			if err := f.dev.ReadSector(sector, buf); err != nil {
				return int(done), err
			}
		}

		copy(buf[secOff:secOff+chunk], p[done:done+chunk])

		if err := f.dev.WriteSector(sector, buf); err != nil {
			return int(done), err
		}

		done += chunk
	}

	if n < int64(len(p)) {
		return int(n), io.ErrShortWrite
	}

	return int(n), nil
}

// Read reads into p at the internal position, implementing [io.Reader].
func (f *OpenFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)

	return n, err
}

// Write writes p at the internal position, implementing [io.Writer].
func (f *OpenFile) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.pos)
	f.pos += int64(n)

	return n, err
}
