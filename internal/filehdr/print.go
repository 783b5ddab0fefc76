package filehdr

import (
	"fmt"
	"io"

	"github.com/desertwitch/gokern/internal/disk"
	"github.com/desertwitch/gokern/internal/schema"
)

// Print writes a debug dump of the header to w: its size, its sector table
// and, for a leaf, the file contents (printable bytes verbatim, the rest hex
// escaped). Indirection nodes recurse into their children.
func (h *Header) Print(dev schema.SectorDevice, w io.Writer) error {
	fmt.Fprintf(w, "FileHeader contents.  File size: %d.  File blocks:\n", h.NumBytes)

	if h.indirect() {
		bound := h.childBound()

		for i, remaining := 0, h.NumBytes; remaining > 0; i++ {
			fmt.Fprintf(w, "[sub-header at sector %d]\n", h.DataSectors[i])

			sub := New()
			if err := sub.FetchFrom(dev, int(h.DataSectors[i])); err != nil {
				return err
			}

			if err := sub.Print(dev, w); err != nil {
				return err
			}

			remaining -= min(remaining, bound)
		}

		return nil
	}

	for i := range h.NumSectors {
		fmt.Fprintf(w, "%d ", h.DataSectors[i])
	}
	fmt.Fprintf(w, "\nFile contents:\n")

	buf := make([]byte, disk.SectorSize)
	printed := int32(0)

	for i := range h.NumSectors {
		if err := dev.ReadSector(int(h.DataSectors[i]), buf); err != nil {
			return fmt.Errorf("failed to print header: %w", err)
		}

		for j := 0; j < disk.SectorSize && printed < h.NumBytes; j, printed = j+1, printed+1 {
			if buf[j] >= 0x20 && buf[j] <= 0x7e {
				fmt.Fprintf(w, "%c", buf[j])
			} else {
				fmt.Fprintf(w, "\\%x", buf[j])
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}
