package bitmap

import (
	"fmt"
	"io"
)

// Print writes a debug dump of the set bits to w.
func (b *Bitmap) Print(w io.Writer) {
	fmt.Fprintf(w, "Bitmap bits set (%d of %d):\n", b.numBits-b.NumClear(), b.numBits)

	for i := range b.numBits {
		if b.Test(i) {
			fmt.Fprintf(w, "%d ", i)
		}
	}

	fmt.Fprintln(w)
}
