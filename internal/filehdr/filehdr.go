// Package filehdr provides the on-disk file header (index node). A header
// describes a file's size and the sectors holding its bytes through a
// fixed-capacity table of sector pointers. For files up to [Level2] bytes the
// pointers reference data sectors directly; for larger files each pointer
// references a sub-header, itself a full header, forming a fixed-radix tree
// of at most four levels. A header occupies exactly one disk sector; its
// in-memory and on-disk representations carry the same fields.
package filehdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/desertwitch/gokern/internal/bitmap"
	"github.com/desertwitch/gokern/internal/disk"
	"github.com/desertwitch/gokern/internal/schema"
)

const (
	// NumDirect is the number of sector pointers fitting into one header
	// alongside its two length fields.
	NumDirect = (disk.SectorSize - 2*4) / 4

	// Level2 is the byte capacity of a leaf header (one level of pointers).
	Level2 = NumDirect * disk.SectorSize

	// Level3 is the byte capacity of a two-level header tree.
	Level3 = NumDirect * Level2

	// Level4 is the byte capacity of a three-level header tree and the
	// maximum file size of the filesystem.
	Level4 = NumDirect * Level3

	noSector = int32(-1)
)

// Header is the index node of a single file.
type Header struct {
	NumBytes    int32
	NumSectors  int32
	DataSectors [NumDirect]int32
}

// New returns an empty [Header], with all fields set to their sentinel
// values. A header is populated either by [Header.Allocate] for a new file or
// by [Header.FetchFrom] for an existing one.
func New() *Header {
	h := &Header{
		NumBytes:   -1,
		NumSectors: -1,
	}
	for i := range h.DataSectors {
		h.DataSectors[i] = noSector
	}

	return h
}

// indirect reports whether the header's pointers reference sub-headers
// rather than data sectors.
func (h *Header) indirect() bool {
	return h.NumBytes > Level2
}

// childBound returns the byte capacity covered by each of an indirect
// header's children.
func (h *Header) childBound() int32 {
	if h.NumBytes > Level3 {
		return Level3
	}

	return Level2
}

// Allocate initializes a fresh header for a newly created file of fileSize
// bytes and claims the needed sectors from the free map. The capacity check
// precedes any mutation: on failure the free map is left untouched.
//
// For sizes above [Level2] the header becomes an indirection node: each slot
// claims one sector for a sub-header, which recursively allocates the next
// chunk of the file and is written back to dev immediately.
func (h *Header) Allocate(freeMap *bitmap.Bitmap, dev schema.SectorDevice, fileSize int32) error {
	if fileSize < 0 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidSize, fileSize)
	}

	if fileSize > Level4 {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, fileSize)
	}

	if required := SectorsFor(fileSize); int32(freeMap.NumClear()) < required {
		return fmt.Errorf("%w: need %d sectors, %d free", ErrDiskFull, required, freeMap.NumClear())
	}

	h.NumBytes = fileSize
	h.NumSectors = divRoundUp(fileSize, disk.SectorSize)

	if h.indirect() {
		bound := h.childBound()
		slog.Debug("Allocating indirect header.", "bytes", fileSize, "childBound", bound)

		for i, remaining := 0, fileSize; remaining > 0; i++ {
			sector := mustFindAndSet(freeMap)
			h.DataSectors[i] = sector

			chunk := min(remaining, bound)

			sub := New()
			if err := sub.Allocate(freeMap, dev, chunk); err != nil {
				return err
			}

			if err := sub.WriteBack(dev, int(sector)); err != nil {
				return err
			}

			remaining -= chunk
		}

		return nil
	}

	slog.Debug("Allocating leaf header.", "bytes", fileSize, "sectors", h.NumSectors)

	for i := range h.NumSectors {
		h.DataSectors[i] = mustFindAndSet(freeMap)
	}

	return nil
}

// Deallocate reclaims all sectors held beneath this header, bottom-up: for an
// indirection node each sub-header is fetched from dev and deallocated
// recursively, then its own header sector is cleared. The sector holding this
// header itself is the caller's to release.
func (h *Header) Deallocate(freeMap *bitmap.Bitmap, dev schema.SectorDevice) error {
	if h.indirect() {
		bound := h.childBound()

		for i, remaining := 0, h.NumBytes; remaining > 0; i++ {
			sub := New()
			if err := sub.FetchFrom(dev, int(h.DataSectors[i])); err != nil {
				return err
			}

			if err := sub.Deallocate(freeMap, dev); err != nil {
				return err
			}

			freeMap.Clear(int(h.DataSectors[i]))
			remaining -= min(remaining, bound)
		}

		return nil
	}

	for i := range h.NumSectors {
		freeMap.Clear(int(h.DataSectors[i]))
	}

	return nil
}

// ByteToSector translates a byte offset within the file to the disk sector
// storing it. For indirection nodes this is a fixed-radix trie lookup: the
// child subtree covering the offset is fetched from dev and the lookup
// recurses with the remainder.
func (h *Header) ByteToSector(dev schema.SectorDevice, offset int32) (int, error) {
	if offset < 0 || offset >= h.NumBytes {
		return 0, fmt.Errorf("%w: offset %d of %d bytes", ErrOffsetRange, offset, h.NumBytes)
	}

	if h.indirect() {
		bound := h.childBound()

		sub := New()
		if err := sub.FetchFrom(dev, int(h.DataSectors[offset/bound])); err != nil {
			return 0, err
		}

		return sub.ByteToSector(dev, offset%bound)
	}

	return int(h.DataSectors[offset/disk.SectorSize]), nil
}

// FetchFrom reads the header's fixed-width representation from one disk
// sector.
func (h *Header) FetchFrom(dev schema.SectorDevice, sector int) error {
	buf := make([]byte, disk.SectorSize)
	if err := dev.ReadSector(sector, buf); err != nil {
		return fmt.Errorf("failed to fetch header: %w", err)
	}

	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, h); err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}

	return nil
}

// WriteBack writes the header's fixed-width representation to one disk
// sector.
func (h *Header) WriteBack(dev schema.SectorDevice, sector int) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	if err := dev.WriteSector(sector, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write back header: %w", err)
	}

	return nil
}

// FileLength returns the number of bytes in the file.
func (h *Header) FileLength() int32 {
	return h.NumBytes
}

// SectorsFor returns the total sector count an allocation of fileSize bytes
// claims, including the sectors holding sub-headers (but not the sector of
// the top header itself).
func SectorsFor(fileSize int32) int32 {
	if fileSize <= Level2 {
		return divRoundUp(fileSize, disk.SectorSize)
	}

	bound := int32(Level2)
	if fileSize > Level3 {
		bound = Level3
	}

	total := int32(0)
	for remaining := fileSize; remaining > 0; {
		chunk := min(remaining, bound)
		total += 1 + SectorsFor(chunk)
		remaining -= chunk
	}

	return total
}

// mustFindAndSet claims a clear bit from the free map. The capacity check in
// [Header.Allocate] guarantees one exists; running out here means the free
// map was corrupted underneath us.
func mustFindAndSet(freeMap *bitmap.Bitmap) int32 {
	sector, ok := freeMap.FindAndSet()
	if !ok {
		panic("filehdr: free map exhausted after capacity check")
	}

	return int32(sector)
}

func divRoundUp(n, d int32) int32 {
	return (n + d - 1) / d
}
