package sys_test

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewmd5/wasihost/internal/fsapi"
	"github.com/andrewmd5/wasihost/internal/sys"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

func regularEntry(path string) *sys.FileEntry {
	return &sys.FileEntry{
		GuestPath: path,
		Filetype:  wasip1.FileTypeRegularFile,
		Stream:    fsapi.NullDevice{},
	}
}

func TestFSContextMaxOpenDescriptors(t *testing.T) {
	c := sys.NewFSContext(2)
	_, errno := c.Insert(regularEntry("/a"))
	require.Zero(t, errno)
	_, errno = c.Insert(regularEntry("/b"))
	require.Zero(t, errno)
	_, errno = c.Insert(regularEntry("/c"))
	assert.Equal(t, syscall.ENFILE, errno)
}

func TestFSContextRenumberThenCloseLeavesNoLiveDescriptor(t *testing.T) {
	c := sys.NewFSContext(16)
	a, errno := c.Insert(regularEntry("/a"))
	require.Zero(t, errno)
	b, errno := c.Insert(regularEntry("/b"))
	require.Zero(t, errno)

	require.Zero(t, c.Renumber(a, b))
	require.Zero(t, c.Remove(b))

	_, errno = c.Get(a)
	assert.Equal(t, syscall.EBADF, errno)
	_, errno = c.Get(b)
	assert.Equal(t, syscall.EBADF, errno)
}

func TestFSContextRenumberMissingSourceIsAtomic(t *testing.T) {
	c := sys.NewFSContext(16)
	b, errno := c.Insert(regularEntry("/b"))
	require.Zero(t, errno)

	assert.Equal(t, syscall.EBADF, c.Renumber(99, b))

	// Unchanged: b is still present.
	_, errno = c.Get(b)
	assert.Zero(t, errno)
}

func TestFSContextGetByPath(t *testing.T) {
	c := sys.NewFSContext(16)
	_, errno := c.Insert(regularEntry("/a/one.txt"))
	require.Zero(t, errno)

	id, e, found := c.GetByPath("/a/one.txt")
	require.True(t, found)
	assert.Equal(t, "/a/one.txt", e.GuestPath)
	_, errno = c.Get(id)
	assert.Zero(t, errno)

	_, _, found = c.GetByPath("/missing")
	assert.False(t, found)
}

// countingStream records how many times Close was called, standing in for
// a real *os.File-backed directory stream without touching the filesystem.
type countingStream struct {
	fsapi.NullDevice
	closed *int
}

func (c countingStream) Close() syscall.Errno {
	*c.closed++
	return 0
}

func TestFSContextCloseClosesEveryStreamRegardlessOfType(t *testing.T) {
	c := sys.NewFSContext(16)
	closes := 0
	_, errno := c.Insert(&sys.FileEntry{GuestPath: "/", Filetype: wasip1.FileTypeDirectory, Stream: countingStream{closed: &closes}, IsPreopen: true})
	require.Zero(t, errno)
	_, errno = c.Insert(&sys.FileEntry{GuestPath: "/a", Filetype: wasip1.FileTypeRegularFile, Stream: countingStream{closed: &closes}})
	require.Zero(t, errno)

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2, closes)
}
