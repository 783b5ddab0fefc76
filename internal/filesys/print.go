package filesys

import (
	"fmt"
	"io"

	"github.com/desertwitch/gokern/internal/directory"
	"github.com/desertwitch/gokern/internal/filehdr"
)

// Print writes a full dump of the filesystem to w: the meta-file headers,
// the free map, and every directory entry with its file header, descending
// into sub-directories.
func (fsys *FileSystem) Print(w io.Writer) error {
	mapHdr := filehdr.New()
	if err := mapHdr.FetchFrom(fsys.dev, FreeMapSector); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	fmt.Fprintln(w, "Free map file header:")
	if err := mapHdr.Print(fsys.dev, w); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	dirHdr := filehdr.New()
	if err := dirHdr.FetchFrom(fsys.dev, DirectorySector); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	fmt.Fprintln(w, "Directory file header:")
	if err := dirHdr.Print(fsys.dev, w); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	freeMap, err := fsys.fetchFreeMap()
	if err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}
	freeMap.Print(w)

	root, err := fsys.fetchDirectoryAt(DirectorySector)
	if err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	if err := fsys.printDir(root, "", w); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	return nil
}

func (fsys *FileSystem) printDir(dir *directory.Directory, prefix string, w io.Writer) error {
	for _, entry := range dir.Entries() {
		fmt.Fprintf(w, "Name: %s%s, Sector: %d\n", prefix, entry.NameString(), entry.Sector)

		hdr := filehdr.New()
		if err := hdr.FetchFrom(fsys.dev, int(entry.Sector)); err != nil {
			return err
		}

		if err := hdr.Print(fsys.dev, w); err != nil {
			return err
		}

		if entry.IsDir {
			sub, err := fsys.fetchDirectoryAt(int(entry.Sector))
			if err != nil {
				return err
			}

			if err := fsys.printDir(sub, prefix+entry.NameString()+"/", w); err != nil {
				return err
			}
		}
	}

	return nil
}
