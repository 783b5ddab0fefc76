// Package filesys provides the overall operation of the filesystem: mapping
// textual paths to files, orchestrating the sector free map, the file
// headers and the directory tables.
//
// Each file has a header stored in one sector, a number of data sectors and
// an entry in some directory table. The free map and the root directory are
// themselves kept as ordinary files whose headers live in well-known sectors
// (0 and 1), so they can be found at boot; both are held open for the
// lifetime of the filesystem.
//
// Mutating operations follow one commit discipline: the free map and the
// affected directory table are staged in memory, validated, and only on full
// success written back to disk. A validation failure discards the staged
// state without any disk write. There is no synchronization for concurrent
// access and no crash recovery mid-commit.
package filesys

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/desertwitch/gokern/internal/bitmap"
	"github.com/desertwitch/gokern/internal/directory"
	"github.com/desertwitch/gokern/internal/filehdr"
	"github.com/desertwitch/gokern/internal/schema"
)

const (
	// FreeMapSector holds the file header of the sector free map.
	FreeMapSector = 0

	// DirectorySector holds the file header of the root directory.
	DirectorySector = 1

	// NumDirEntries is the fixed capacity of every directory table.
	NumDirEntries = 64
)

// FileSystem orchestrates the free map, file headers and directory tables
// over one sector device.
type FileSystem struct {
	dev           schema.SectorDevice
	freeMapFile   *OpenFile
	directoryFile *OpenFile
	descriptor    *OpenFile
}

// New opens the filesystem residing on dev. With format set, the disk is
// assumed empty and is initialized first: the two meta-file headers are
// placed in their well-known sectors, then the initial free map and an empty
// root directory are written through the ordinary file path.
func New(dev schema.SectorDevice, format bool) (*FileSystem, error) {
	fsys := &FileSystem{dev: dev}

	if format {
		if err := fsys.format(); err != nil {
			return nil, fmt.Errorf("failed to format: %w", err)
		}
	}

	freeMapFile, err := Open(dev, FreeMapSector)
	if err != nil {
		return nil, fmt.Errorf("failed to open free map file: %w", err)
	}

	directoryFile, err := Open(dev, DirectorySector)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory file: %w", err)
	}

	fsys.freeMapFile = freeMapFile
	fsys.directoryFile = directoryFile

	return fsys, nil
}

func (fsys *FileSystem) format() error {
	slog.Debug("Formatting the filesystem.", "sectors", fsys.dev.NumSectors())

	freeMap := bitmap.New(fsys.dev.NumSectors())
	freeMap.Mark(FreeMapSector)
	freeMap.Mark(DirectorySector)

	mapHdr := filehdr.New()
	if err := mapHdr.Allocate(freeMap, fsys.dev, int32(bitmap.DiskSize(fsys.dev.NumSectors()))); err != nil {
		return err
	}

	dirHdr := filehdr.New()
	if err := dirHdr.Allocate(freeMap, fsys.dev, int32(directory.DiskSize(NumDirEntries))); err != nil {
		return err
	}

	// The headers go down first: opening the meta-files below reads them
	// back off the disk.
	if err := mapHdr.WriteBack(fsys.dev, FreeMapSector); err != nil {
		return err
	}

	if err := dirHdr.WriteBack(fsys.dev, DirectorySector); err != nil {
		return err
	}

	freeMapFile, err := Open(fsys.dev, FreeMapSector)
	if err != nil {
		return err
	}

	directoryFile, err := Open(fsys.dev, DirectorySector)
	if err != nil {
		return err
	}

	if _, err := freeMap.WriteTo(io.NewOffsetWriter(freeMapFile, 0)); err != nil {
		return err
	}

	if _, err := directory.New(NumDirEntries).WriteTo(io.NewOffsetWriter(directoryFile, 0)); err != nil {
		return err
	}

	if err := fsys.dev.Sync(); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	return nil
}

// Create creates a fixed-size file of size bytes at the given path. All but
// the last path segment must resolve to existing directories; the terminal
// name must not exist there yet. The header sector, the data allocation, the
// directory entry and the free map update are committed together.
func (fsys *FileSystem) Create(path string, size int32) error {
	if err := fsys.create(path, size, false); err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}

	slog.Debug("Created file.", "path", path, "bytes", size)

	return nil
}

// CreateDirectory creates an empty sub-directory at the given path. The new
// directory file is allocated at the fixed table size and seeded with an
// empty table.
func (fsys *FileSystem) CreateDirectory(path string) error {
	if err := fsys.create(path, int32(directory.DiskSize(NumDirEntries)), true); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", path, err)
	}

	slog.Debug("Created directory.", "path", path)

	return nil
}

func (fsys *FileSystem) create(path string, size int32, isDir bool) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	dirFile, dir, err := fsys.resolveDir(segments[:len(segments)-1])
	if err != nil {
		return err
	}
	name := segments[len(segments)-1]

	if _, exists := dir.Find(name); exists {
		return directory.ErrNameExists
	}

	freeMap, err := fsys.fetchFreeMap()
	if err != nil {
		return err
	}

	hdrSector, ok := freeMap.FindAndSet()
	if !ok {
		return fmt.Errorf("%w: no sector for header", filehdr.ErrDiskFull)
	}

	if err := dir.Add(name, int32(hdrSector), isDir); err != nil {
		return err
	}

	hdr := filehdr.New()
	if err := hdr.Allocate(freeMap, fsys.dev, size); err != nil {
		return err
	}

	// Validation is complete, all writes from here on are the commit.
	if err := hdr.WriteBack(fsys.dev, hdrSector); err != nil {
		return err
	}

	if isDir {
		newDirFile, err := Open(fsys.dev, hdrSector)
		if err != nil {
			return err
		}

		if _, err := directory.New(NumDirEntries).WriteTo(io.NewOffsetWriter(newDirFile, 0)); err != nil {
			return err
		}
	}

	return fsys.commit(freeMap, dir, dirFile)
}

// Open resolves the given path and returns a handle onto the terminal file
// or directory file.
func (fsys *FileSystem) Open(path string) (*OpenFile, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	_, dir, err := fsys.resolveDir(segments[:len(segments)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	sector, exists := dir.Find(segments[len(segments)-1])
	if !exists {
		return nil, fmt.Errorf("failed to open %q: %w", path, directory.ErrNotFound)
	}

	file, err := Open(fsys.dev, int(sector))
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	return file, nil
}

// Remove deletes the file or empty directory at the given path: its data
// sectors are reclaimed bottom-up through the header, the header's own
// sector is cleared, the directory entry is dropped, and free map plus
// directory are committed together.
func (fsys *FileSystem) Remove(path string) error {
	if err := fsys.remove(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}

	slog.Debug("Removed.", "path", path)

	return nil
}

func (fsys *FileSystem) remove(path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	dirFile, dir, err := fsys.resolveDir(segments[:len(segments)-1])
	if err != nil {
		return err
	}
	name := segments[len(segments)-1]

	sector, exists := dir.Find(name)
	if !exists {
		return directory.ErrNotFound
	}

	if dir.IsDirectory(name) {
		sub, err := fsys.fetchDirectoryAt(int(sector))
		if err != nil {
			return err
		}

		if len(sub.Entries()) > 0 {
			return ErrDirectoryNotEmpty
		}
	}

	hdr := filehdr.New()
	if err := hdr.FetchFrom(fsys.dev, int(sector)); err != nil {
		return err
	}

	freeMap, err := fsys.fetchFreeMap()
	if err != nil {
		return err
	}

	if err := hdr.Deallocate(freeMap, fsys.dev); err != nil {
		return err
	}

	freeMap.Clear(int(sector)) // the header's own sector

	if err := dir.Remove(name); err != nil {
		return err
	}

	return fsys.commit(freeMap, dir, dirFile)
}

// RecursiveRemove deletes the entity at the given path; a directory is
// emptied post-order first, descending into sub-directories, before its own
// entry is removed.
func (fsys *FileSystem) RecursiveRemove(path string) error {
	segments, err := splitPath(path)
	if err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}

	_, dir, err := fsys.resolveDir(segments[:len(segments)-1])
	if err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	name := segments[len(segments)-1]

	sector, exists := dir.Find(name)
	if !exists {
		return fmt.Errorf("failed to remove %q: %w", path, directory.ErrNotFound)
	}

	if dir.IsDirectory(name) {
		sub, err := fsys.fetchDirectoryAt(int(sector))
		if err != nil {
			return fmt.Errorf("failed to remove %q: %w", path, err)
		}

		for _, entry := range sub.Entries() {
			childPath := strings.Join([]string{strings.TrimRight(path, "/"), entry.NameString()}, "/")

			if entry.IsDir {
				if err := fsys.RecursiveRemove(childPath); err != nil {
					return err
				}
			} else if err := fsys.Remove(childPath); err != nil {
				return err
			}
		}
	}

	return fsys.Remove(path)
}

// List writes the entries of the directory at the given path to w; an empty
// path lists the root directory.
func (fsys *FileSystem) List(path string, w io.Writer) error {
	_, dir, err := fsys.resolveDirPath(path)
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", path, err)
	}

	dir.List(w)

	return nil
}

// Entries returns the in-use entries of the directory at the given path; an
// empty path means the root directory.
func (fsys *FileSystem) Entries(path string) ([]directory.Entry, error) {
	_, dir, err := fsys.resolveDirPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", path, err)
	}

	return dir.Entries(), nil
}

// RecursiveList writes the directory tree rooted at the given path to w,
// descending into sub-directory tables, nested entries indented below their
// parent.
func (fsys *FileSystem) RecursiveList(path string, w io.Writer) error {
	_, dir, err := fsys.resolveDirPath(path)
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", path, err)
	}

	if err := fsys.listTree(dir, w, 0); err != nil {
		return fmt.Errorf("failed to list %q: %w", path, err)
	}

	return nil
}

func (fsys *FileSystem) listTree(dir *directory.Directory, w io.Writer, depth int) error {
	indent := strings.Repeat("  ", depth)

	for _, entry := range dir.Entries() {
		if !entry.IsDir {
			fmt.Fprintf(w, "%s%s\n", indent, entry.NameString())

			continue
		}

		fmt.Fprintf(w, "%s%s/\n", indent, entry.NameString())

		sub, err := fsys.fetchDirectoryAt(int(entry.Sector))
		if err != nil {
			return err
		}

		if err := fsys.listTree(sub, w, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// commit flushes the staged directory table and free map back to their
// backing files and syncs the device. Every mutating operation funnels its
// disk writes through here, after validation has fully passed.
func (fsys *FileSystem) commit(freeMap *bitmap.Bitmap, dir *directory.Directory, dirFile *OpenFile) error {
	if _, err := dir.WriteTo(io.NewOffsetWriter(dirFile, 0)); err != nil {
		return err
	}

	if _, err := freeMap.WriteTo(io.NewOffsetWriter(fsys.freeMapFile, 0)); err != nil {
		return err
	}

	if err := fsys.dev.Sync(); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	return nil
}

func (fsys *FileSystem) fetchFreeMap() (*bitmap.Bitmap, error) {
	freeMap := bitmap.New(fsys.dev.NumSectors())

	size := int64(bitmap.DiskSize(fsys.dev.NumSectors()))
	if _, err := freeMap.ReadFrom(io.NewSectionReader(fsys.freeMapFile, 0, size)); err != nil {
		return nil, err
	}

	return freeMap, nil
}

func (fsys *FileSystem) fetchDirectoryAt(sector int) (*directory.Directory, error) {
	file, err := Open(fsys.dev, sector)
	if err != nil {
		return nil, err
	}

	dir := directory.New(NumDirEntries)

	size := int64(directory.DiskSize(NumDirEntries))
	if _, err := dir.ReadFrom(io.NewSectionReader(file, 0, size)); err != nil {
		return nil, err
	}

	return dir, nil
}

// resolveDir walks the given path segments from the root directory, at each
// segment re-opening the named sub-directory as the new current table. It
// returns the terminal directory's backing file and staged table.
func (fsys *FileSystem) resolveDir(segments []string) (*OpenFile, *directory.Directory, error) {
	dirFile := fsys.directoryFile

	dir, err := fsys.fetchDirectoryAt(DirectorySector)
	if err != nil {
		return nil, nil, err
	}

	for _, segment := range segments {
		sector, exists := dir.Find(segment)
		if !exists {
			return nil, nil, fmt.Errorf("%w: %q", directory.ErrNotFound, segment)
		}

		if !dir.IsDirectory(segment) {
			return nil, nil, fmt.Errorf("%w: %q", ErrNotADirectory, segment)
		}

		dirFile, err = Open(fsys.dev, int(sector))
		if err != nil {
			return nil, nil, err
		}

		dir, err = fsys.fetchDirectoryAt(int(sector))
		if err != nil {
			return nil, nil, err
		}
	}

	return dirFile, dir, nil
}

// resolveDirPath resolves a full path (possibly empty, meaning the root) to
// a directory.
func (fsys *FileSystem) resolveDirPath(path string) (*OpenFile, *directory.Directory, error) {
	segments := splitSegments(path)

	return fsys.resolveDir(segments)
}

// splitPath splits a path into its segments, requiring at least one.
func splitPath(path string) ([]string, error) {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return nil, ErrInvalidPath
	}

	return segments, nil
}

func splitSegments(path string) []string {
	var segments []string

	for segment := range strings.SplitSeq(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	return segments
}
