// Package bitmap provides the persistent free/used bit-vector over disk
// sectors. A set bit means the sector is allocated. The bitmap itself is
// representable as ordinary file content (via [Bitmap.WriteTo] and
// [Bitmap.ReadFrom]), so it persists through the same header/sector path it
// helps allocate.
//
// There is no concurrency control: the storage core is single-threaded.
package bitmap

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
)

const bitsPerWord = 32

// Bitmap is an ordered sequence of bits, one per disk sector.
type Bitmap struct {
	numBits int
	words   []uint32
}

// New returns a [Bitmap] of numBits bits, all clear.
func New(numBits int) *Bitmap {
	return &Bitmap{
		numBits: numBits,
		words:   make([]uint32, (numBits+bitsPerWord-1)/bitsPerWord),
	}
}

// NumBits returns the total number of bits tracked.
func (b *Bitmap) NumBits() int {
	return b.numBits
}

// Mark sets the given bit. Marking an already-set bit indicates allocator
// corruption and panics.
func (b *Bitmap) Mark(which int) {
	b.checkRange(which)

	if b.Test(which) {
		panic(fmt.Sprintf("bitmap: marking already-set bit %d", which))
	}

	b.words[which/bitsPerWord] |= 1 << (which % bitsPerWord)
}

// Clear clears the given bit. Clearing an already-clear bit indicates
// allocator corruption and panics.
func (b *Bitmap) Clear(which int) {
	b.checkRange(which)

	if !b.Test(which) {
		panic(fmt.Sprintf("bitmap: clearing already-clear bit %d", which))
	}

	b.words[which/bitsPerWord] &^= 1 << (which % bitsPerWord)
}

// Test reports whether the given bit is set.
func (b *Bitmap) Test(which int) bool {
	b.checkRange(which)

	return b.words[which/bitsPerWord]&(1<<(which%bitsPerWord)) != 0
}

// FindAndSet scans for the first clear bit, sets it and returns its index.
// The boolean is false if no bit is clear.
func (b *Bitmap) FindAndSet() (int, bool) {
	for i := range b.numBits {
		if !b.Test(i) {
			b.Mark(i)

			return i, true
		}
	}

	return 0, false
}

// NumClear returns the number of clear bits.
func (b *Bitmap) NumClear() int {
	count := 0
	for _, word := range b.words {
		count += bits.OnesCount32(word)
	}

	return b.numBits - count
}

// WriteTo serializes the bitmap in its fixed-width on-disk form.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, b.words); err != nil {
		return 0, fmt.Errorf("failed to write bitmap: %w", err)
	}

	return int64(len(b.words)) * (bitsPerWord / 8), nil
}

// ReadFrom replaces the bitmap's bits with the fixed-width on-disk form read
// from r. The bit count is unchanged.
func (b *Bitmap) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, binary.LittleEndian, b.words); err != nil {
		return 0, fmt.Errorf("failed to read bitmap: %w", err)
	}

	return int64(len(b.words)) * (bitsPerWord / 8), nil
}

// DiskSize returns the number of bytes of the on-disk form of a bitmap over
// numBits bits.
func DiskSize(numBits int) int {
	return ((numBits + bitsPerWord - 1) / bitsPerWord) * (bitsPerWord / 8)
}

func (b *Bitmap) checkRange(which int) {
	if which < 0 || which >= b.numBits {
		panic(fmt.Sprintf("bitmap: bit %d out of range [0,%d)", which, b.numBits))
	}
}
