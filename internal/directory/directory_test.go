package directory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddFind_Success tests the basic name to sector mapping.
func TestAddFind_Success(t *testing.T) {
	t.Parallel()

	d := New(4)

	require.NoError(t, d.Add("alpha", 10, false))
	require.NoError(t, d.Add("beta", 20, true))

	sector, ok := d.Find("alpha")
	require.True(t, ok)
	assert.Equal(t, int32(10), sector)
	assert.False(t, d.IsDirectory("alpha"))

	sector, ok = d.Find("beta")
	require.True(t, ok)
	assert.Equal(t, int32(20), sector)
	assert.True(t, d.IsDirectory("beta"))

	_, ok = d.Find("gamma")
	assert.False(t, ok)
}

// TestAdd_DuplicateName_Error tests that names are unique per table.
func TestAdd_DuplicateName_Error(t *testing.T) {
	t.Parallel()

	d := New(4)

	require.NoError(t, d.Add("alpha", 10, false))

	err := d.Add("alpha", 20, false)
	assert.ErrorIs(t, err, ErrNameExists)
}

// TestAdd_NameTooLong_Error tests the name length bound.
func TestAdd_NameTooLong_Error(t *testing.T) {
	t.Parallel()

	d := New(4)

	require.NoError(t, d.Add(strings.Repeat("x", FileNameMaxLen), 10, false))

	err := d.Add(strings.Repeat("y", FileNameMaxLen+1), 20, false)
	assert.ErrorIs(t, err, ErrNameTooLong)
}

// TestAdd_TableFull_Error tests that a full table rejects further entries.
func TestAdd_TableFull_Error(t *testing.T) {
	t.Parallel()

	d := New(2)

	require.NoError(t, d.Add("one", 1, false))
	require.NoError(t, d.Add("two", 2, false))

	err := d.Add("three", 3, false)
	assert.ErrorIs(t, err, ErrDirectoryFull)
}

// TestRemove_Success tests that a removed slot becomes reusable.
func TestRemove_Success(t *testing.T) {
	t.Parallel()

	d := New(2)

	require.NoError(t, d.Add("one", 1, false))
	require.NoError(t, d.Add("two", 2, false))
	require.NoError(t, d.Remove("one"))

	_, ok := d.Find("one")
	assert.False(t, ok)

	require.NoError(t, d.Add("three", 3, false))

	sector, ok := d.Find("three")
	require.True(t, ok)
	assert.Equal(t, int32(3), sector)
}

// TestRemove_NotFound_Error tests removal of an unknown name.
func TestRemove_NotFound_Error(t *testing.T) {
	t.Parallel()

	d := New(2)

	err := d.Remove("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestEntriesList_Success tests the in-use listing, with directory marks.
func TestEntriesList_Success(t *testing.T) {
	t.Parallel()

	d := New(4)

	require.NoError(t, d.Add("file", 1, false))
	require.NoError(t, d.Add("sub", 2, true))

	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "file", entries[0].NameString())
	assert.Equal(t, "sub", entries[1].NameString())

	var buf bytes.Buffer
	d.List(&buf)
	assert.Equal(t, "file\nsub/\n", buf.String())
}

// TestWriteToReadFrom_RoundTrip_Success tests the fixed-width on-disk form.
func TestWriteToReadFrom_RoundTrip_Success(t *testing.T) {
	t.Parallel()

	d := New(4)

	require.NoError(t, d.Add("alpha", 10, false))
	require.NoError(t, d.Add("beta", 20, true))

	var buf bytes.Buffer

	n, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(DiskSize(4)), n)
	assert.Equal(t, DiskSize(4), buf.Len())

	restored := New(4)

	_, err = restored.ReadFrom(&buf)
	require.NoError(t, err)

	sector, ok := restored.Find("alpha")
	require.True(t, ok)
	assert.Equal(t, int32(10), sector)
	assert.True(t, restored.IsDirectory("beta"))
	assert.False(t, restored.IsDirectory("alpha"))
}
