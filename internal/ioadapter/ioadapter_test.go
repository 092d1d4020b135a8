package ioadapter_test

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewmd5/wasihost/internal/ioadapter"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

func TestOpenFileCreateWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f.txt")

	res, errno := ioadapter.OpenFile(p, wasip1.OFlagsCreat, false, true, 0, true)
	require.Zero(t, errno)
	n, errno := res.Stream.Write([]byte("hello"))
	require.Zero(t, errno)
	assert.Equal(t, 5, n)
	require.Zero(t, res.Stream.Close())

	res, errno = ioadapter.OpenFile(p, 0, true, false, 0, true)
	require.Zero(t, errno)
	buf := make([]byte, 5)
	n, errno = res.Stream.Read(buf)
	require.Zero(t, errno)
	assert.Equal(t, "hello", string(buf[:n]))
	require.Zero(t, res.Stream.Close())
}

func TestOpenFileExclFailsIfExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	_, errno := ioadapter.OpenFile(p, wasip1.OFlagsCreat|wasip1.OFlagsExcl, false, true, 0, true)
	assert.Equal(t, syscall.EEXIST, errno)
}

func TestOpenFileDirectoryFlagOnRegularFileIsNotDir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	_, errno := ioadapter.OpenFile(p, wasip1.OFlagsDirectory, true, false, 0, true)
	assert.Equal(t, syscall.ENOTDIR, errno)
}

func TestOpenFileRedirectsToDirectoryWhenPathIsADir(t *testing.T) {
	dir := t.TempDir()
	res, errno := ioadapter.OpenFile(dir, 0, true, false, 0, true)
	require.Zero(t, errno)
	assert.Equal(t, wasip1.FileTypeDirectory, res.Filetype)
}

func TestOpenFileNoFollowRejectsSymlinkFinalComponent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	_, errno := ioadapter.OpenFile(link, 0, true, false, 0, false)
	assert.Equal(t, syscall.ELOOP, errno)

	res, errno := ioadapter.OpenFile(link, 0, true, false, 0, true)
	require.Zero(t, errno)
	require.Zero(t, res.Stream.Close())
}

func TestMkdirRmdir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sub")
	require.Zero(t, ioadapter.Mkdir(p))
	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	require.Zero(t, ioadapter.Rmdir(p))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestUnlinkRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, syscall.EISDIR, ioadapter.Unlink(dir))
}

func TestRenameAndLink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	dst := filepath.Join(dir, "b.txt")
	require.Zero(t, ioadapter.Rename(src, dst))
	_, err := os.Stat(dst)
	require.NoError(t, err)

	link := filepath.Join(dir, "c.txt")
	require.Zero(t, ioadapter.Link(dst, link))
	_, err = os.Stat(link)
	require.NoError(t, err)
}

func TestSymlinkAndReadlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(dir, "link.txt")

	require.Zero(t, ioadapter.Symlink(target, link))
	buf := make([]byte, 256)
	n, errno := ioadapter.Readlink(link, buf)
	require.Zero(t, errno)
	assert.Equal(t, target, string(buf[:n]))
}

func TestStatFollowsOrNotPerFlag(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("xx"), 0o644))
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	st, errno := ioadapter.Stat(link, true)
	require.Zero(t, errno)
	assert.Equal(t, wasip1.FileTypeRegularFile, st.Filetype)

	st, errno = ioadapter.Stat(link, false)
	require.Zero(t, errno)
	assert.Equal(t, wasip1.FileTypeSymbolicLink, st.Filetype)
}

func TestToErrnoMapsNotExist(t *testing.T) {
	_, err := os.Stat(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, syscall.ENOENT, ioadapter.ToErrno(err))
}
