package bitmap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_Success tests the bitmap factory function.
func TestNew_Success(t *testing.T) {
	t.Parallel()

	b := New(100)

	assert.Equal(t, 100, b.NumBits())
	assert.Equal(t, 100, b.NumClear())
}

// TestMarkTestClear_Success tests the basic bit lifecycle.
func TestMarkTestClear_Success(t *testing.T) {
	t.Parallel()

	b := New(64)

	assert.False(t, b.Test(5))

	b.Mark(5)
	assert.True(t, b.Test(5))
	assert.Equal(t, 63, b.NumClear())

	b.Clear(5)
	assert.False(t, b.Test(5))
	assert.Equal(t, 64, b.NumClear())
}

// TestClear_AlreadyClear_Panics tests that freeing a free bit is treated as
// allocator corruption.
func TestClear_AlreadyClear_Panics(t *testing.T) {
	t.Parallel()

	b := New(8)

	assert.Panics(t, func() {
		b.Clear(3)
	})
}

// TestMark_AlreadySet_Panics tests that double allocation of a bit is
// treated as allocator corruption.
func TestMark_AlreadySet_Panics(t *testing.T) {
	t.Parallel()

	b := New(8)
	b.Mark(3)

	assert.Panics(t, func() {
		b.Mark(3)
	})
}

// TestFindAndSet_Success tests first-clear-bit scanning.
func TestFindAndSet_Success(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Mark(0)

	idx, ok := b.FindAndSet()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.True(t, b.Test(1))

	idx, ok = b.FindAndSet()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

// TestFindAndSet_Exhausted tests the failure value when no bit is clear.
func TestFindAndSet_Exhausted(t *testing.T) {
	t.Parallel()

	b := New(2)
	b.Mark(0)
	b.Mark(1)

	_, ok := b.FindAndSet()
	assert.False(t, ok)
}

// TestWriteToReadFrom_Success tests the fixed-width on-disk round trip.
func TestWriteToReadFrom_Success(t *testing.T) {
	t.Parallel()

	b := New(96)
	b.Mark(0)
	b.Mark(31)
	b.Mark(32)
	b.Mark(95)

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(DiskSize(96)), n)

	restored := New(96)
	_, err = restored.ReadFrom(&buf)
	require.NoError(t, err)

	for i := range 96 {
		assert.Equal(t, b.Test(i), restored.Test(i), "bit %d", i)
	}
}
