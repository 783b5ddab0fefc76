// Package directory provides the fixed-capacity table mapping names to file
// header sectors. A directory is a flat table; nested directories come about
// by an entry's header sector holding another directory's serialized table.
// Names are unique among in-use entries of one table; path traversal across
// tables is the filesystem's job, not the directory's.
package directory

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FileNameMaxLen is the maximum length of a single name within a directory.
const FileNameMaxLen = 9

// Entry is a single directory slot in its fixed-width on-disk form.
type Entry struct {
	InUse  bool
	IsDir  bool
	Sector int32
	Name   [FileNameMaxLen + 1]byte
}

// EntrySize is the number of bytes of one serialized [Entry].
const EntrySize = 1 + 1 + 4 + FileNameMaxLen + 1

// NameString returns the entry's name as a Go string.
func (e *Entry) NameString() string {
	for i, b := range e.Name {
		if b == 0 {
			return string(e.Name[:i])
		}
	}

	return string(e.Name[:])
}

// Directory is a fixed-size ordered table of entries.
type Directory struct {
	table []Entry
}

// New returns an empty [Directory] with capacity for size entries.
func New(size int) *Directory {
	return &Directory{
		table: make([]Entry, size),
	}
}

// DiskSize returns the number of bytes of the on-disk form of a directory
// with capacity for size entries.
func DiskSize(size int) int {
	return size * EntrySize
}

// Find returns the header sector of the in-use entry carrying the given
// name. The boolean is false if no such entry exists in this table.
func (d *Directory) Find(name string) (int32, bool) {
	if i := d.findIndex(name); i >= 0 {
		return d.table[i].Sector, true
	}

	return 0, false
}

// IsDirectory reports whether the in-use entry carrying the given name marks
// a sub-directory.
func (d *Directory) IsDirectory(name string) bool {
	if i := d.findIndex(name); i >= 0 {
		return d.table[i].IsDir
	}

	return false
}

// Add records a name to header-sector mapping in the first free slot. It
// fails if the name already exists in this table or no free slot remains.
func (d *Directory) Add(name string, sector int32, isDir bool) error {
	if len(name) > FileNameMaxLen {
		return fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}

	if _, exists := d.Find(name); exists {
		return fmt.Errorf("%w: %q", ErrNameExists, name)
	}

	for i := range d.table {
		if !d.table[i].InUse {
			d.table[i] = Entry{
				InUse:  true,
				IsDir:  isDir,
				Sector: sector,
			}
			copy(d.table[i].Name[:], name)

			return nil
		}
	}

	return fmt.Errorf("%w: adding %q", ErrDirectoryFull, name)
}

// Remove marks the entry carrying the given name as unused. It fails if no
// such entry exists in this table.
func (d *Directory) Remove(name string) error {
	i := d.findIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	d.table[i] = Entry{}

	return nil
}

// Entries returns a copy of the in-use entries, in table order.
func (d *Directory) Entries() []Entry {
	var entries []Entry

	for i := range d.table {
		if d.table[i].InUse {
			entries = append(entries, d.table[i])
		}
	}

	return entries
}

// List writes the names of the in-use entries to w, one per line, in table
// order. Sub-directories are marked with a trailing slash.
func (d *Directory) List(w io.Writer) {
	for i := range d.table {
		if !d.table[i].InUse {
			continue
		}

		if d.table[i].IsDir {
			fmt.Fprintf(w, "%s/\n", d.table[i].NameString())
		} else {
			fmt.Fprintf(w, "%s\n", d.table[i].NameString())
		}
	}
}

// WriteTo serializes the whole table in its fixed-width on-disk form.
func (d *Directory) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, d.table); err != nil {
		return 0, fmt.Errorf("failed to write directory: %w", err)
	}

	return int64(DiskSize(len(d.table))), nil
}

// ReadFrom replaces the table with the fixed-width on-disk form read from r.
// The table capacity is unchanged.
func (d *Directory) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, binary.LittleEndian, d.table); err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	return int64(DiskSize(len(d.table))), nil
}

func (d *Directory) findIndex(name string) int {
	for i := range d.table {
		if d.table[i].InUse && d.table[i].NameString() == name {
			return i
		}
	}

	return -1
}
