package disk

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

type sectorReader interface {
	ReadSector(sector int, buf []byte) error
	NumSectors() int
}

// Checksum returns the BLAKE3 hash of the full disk contents as a hex string.
// It is a diagnostic aid: two images with the same checksum hold the same
// filesystem state bit for bit.
func Checksum(dev sectorReader) (string, error) {
	hasher := blake3.New()
	buf := make([]byte, SectorSize)

	for sector := range dev.NumSectors() {
		if err := dev.ReadSector(sector, buf); err != nil {
			return "", fmt.Errorf("failed to checksum: %w", err)
		}

		hasher.Write(buf)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
