package ksyscall

import (
	"bytes"
	"testing"

	"github.com/desertwitch/gokern/internal/disk"
	"github.com/desertwitch/gokern/internal/filesys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKernel(t *testing.T) *Kernel {
	t.Helper()

	fsys, err := filesys.New(disk.NewMem(256), true)
	require.NoError(t, err)

	return New(fsys, nil)
}

// TestSysFileCycle_Success tests the create, open, write, read, close and
// remove cycle through the system-call surface.
func TestSysFileCycle_Success(t *testing.T) {
	t.Parallel()

	kernel := testKernel(t)

	require.True(t, kernel.SysCreate("/file", 64))

	id := kernel.SysOpen("/file")
	require.NotEqual(t, filesys.OpenFileID(-1), id)

	payload := []byte("syscall payload")
	assert.Equal(t, len(payload), kernel.SysWrite(payload, len(payload), id))
	assert.Equal(t, 1, kernel.SysClose(id))

	id = kernel.SysOpen("/file")
	require.NotEqual(t, filesys.OpenFileID(-1), id)

	got := make([]byte, len(payload))
	assert.Equal(t, len(payload), kernel.SysRead(got, len(got), id))
	assert.Equal(t, payload, got)
	assert.Equal(t, 1, kernel.SysClose(id))

	require.True(t, kernel.SysRemove("/file"))
	assert.Equal(t, filesys.OpenFileID(-1), kernel.SysOpen("/file"))
}

// TestSysDirectory_Success tests mkdir and list through the system-call
// surface.
func TestSysDirectory_Success(t *testing.T) {
	t.Parallel()

	kernel := testKernel(t)

	require.True(t, kernel.SysMkdir("/dir"))
	require.True(t, kernel.SysCreate("/dir/file", 16))

	var buf bytes.Buffer
	require.True(t, kernel.SysList("/dir", &buf))
	assert.Equal(t, "file\n", buf.String())
}

// TestSysErrors_SentinelResults tests the ABI sentinel results on failing
// operations.
func TestSysErrors_SentinelResults(t *testing.T) {
	t.Parallel()

	kernel := testKernel(t)

	assert.False(t, kernel.SysCreate("/", 16))
	assert.False(t, kernel.SysMkdir(""))
	assert.False(t, kernel.SysRemove("/ghost"))
	assert.Equal(t, filesys.OpenFileID(-1), kernel.SysOpen("/ghost"))
	assert.Equal(t, -1, kernel.SysRead(make([]byte, 4), 4, 0))
	assert.Equal(t, -1, kernel.SysWrite(make([]byte, 4), 4, 0))
	assert.Equal(t, -1, kernel.SysClose(0))

	var buf bytes.Buffer
	assert.False(t, kernel.SysList("/ghost", &buf))
}

// TestSysHalt_Success tests the halt latch.
func TestSysHalt_Success(t *testing.T) {
	t.Parallel()

	kernel := testKernel(t)

	assert.False(t, kernel.Halted())
	kernel.SysHalt()
	assert.True(t, kernel.Halted())
}
