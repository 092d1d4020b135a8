package wasihost_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewmd5/wasihost/internal/pathmap"
	"github.com/andrewmd5/wasihost/internal/rights"
	"github.com/andrewmd5/wasihost/internal/sys"
	"github.com/andrewmd5/wasihost/internal/wasip1"
	"github.com/andrewmd5/wasihost/wasihost"
)

// memory is a minimal abi.Memory backed by a plain byte slice, standing in
// for a WebAssembly runtime's linear memory in these facade-level tests.
type memory []byte

func (m memory) Size() uint32 { return uint32(len(m)) }

func (m memory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m)) {
		return nil, false
	}
	return m[offset:end], true
}

func newHost(t *testing.T, root string, allowDelete bool) *wasihost.Host {
	t.Helper()
	allowCreate := true
	h, err := wasihost.New(wasihost.Config{
		HostRootDirectory: root,
		Preopens:          []wasihost.Preopen{{GuestPath: "/", HostPath: root, Access: pathmap.AccessReadWrite}},
		AllowFileCreation: &allowCreate,
		AllowFileDeletion: &allowDelete,
	})
	require.NoError(t, err)
	return h
}

func writeGuestPath(mem memory, offset uint32, p string) {
	copy(mem[offset:], p)
}

func TestOpenWriteCloseReopenReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	h := newHost(t, root, true)
	fns := h.Functions()
	mem := make(memory, 4096)

	writeGuestPath(mem, 100, "greeting.txt")
	require.Zero(t, fns.PathOpen(mem, sys.FdPreopen, wasip1.LookupFlagsSymlinkFollow, 100, uint32(len("greeting.txt")),
		wasip1.OFlagsCreat, rights.FileRights|rights.DirectoryRights, rights.FileRights|rights.DirectoryRights, 0, 200))
	fdBytes, _ := mem.Read(200, 4)
	fd := int32(fdBytes[0]) | int32(fdBytes[1])<<8 | int32(fdBytes[2])<<16 | int32(fdBytes[3])<<24

	copy(mem[300:], "hello world")
	require.Zero(t, abiWriteU32(mem, 280, 300))
	require.Zero(t, abiWriteU32(mem, 284, 11))
	require.Zero(t, fns.FdWrite(mem, fd, 280, 1, 400))
	n, _ := mem.Read(400, 4)
	assert.EqualValues(t, 11, le32(n))
	require.Zero(t, fns.FdClose(fd))

	writeGuestPath(mem, 100, "greeting.txt")
	require.Zero(t, fns.PathOpen(mem, sys.FdPreopen, wasip1.LookupFlagsSymlinkFollow, 100, uint32(len("greeting.txt")),
		0, rights.FileRights|rights.DirectoryRights, rights.FileRights|rights.DirectoryRights, 0, 200))
	fdBytes, _ = mem.Read(200, 4)
	fd2 := int32(fdBytes[0]) | int32(fdBytes[1])<<8 | int32(fdBytes[2])<<16 | int32(fdBytes[3])<<24

	require.Zero(t, abiWriteU32(mem, 280, 500))
	require.Zero(t, abiWriteU32(mem, 284, 32))
	require.Zero(t, fns.FdRead(mem, fd2, 280, 1, 400))
	n, _ = mem.Read(400, 4)
	readLen := le32(n)
	got, _ := mem.Read(500, readLen)
	assert.Equal(t, "hello world", string(got))
}

func TestPathOpenRejectsTraversalEscape(t *testing.T) {
	root := t.TempDir()
	allowCreate, allowDelete := true, true
	h, err := wasihost.New(wasihost.Config{
		HostRootDirectory: root,
		Preopens:          []wasihost.Preopen{{GuestPath: "/sandbox", HostPath: root, Access: pathmap.AccessReadWrite}},
		AllowFileCreation: &allowCreate,
		AllowFileDeletion: &allowDelete,
	})
	require.NoError(t, err)
	fns := h.Functions()
	mem := make(memory, 4096)

	// The preopen's guest prefix is "/sandbox"; a path relative to it that
	// climbs past that prefix resolves outside the preopen's host directory.
	p := "../../etc/passwd"
	writeGuestPath(mem, 100, p)
	errno := fns.PathOpen(mem, sys.FdPreopen, wasip1.LookupFlagsSymlinkFollow, 100, uint32(len(p)), 0, rights.FileRights|rights.DirectoryRights, rights.FileRights|rights.DirectoryRights, 0, 200)
	assert.Equal(t, wasip1.ErrnoNotcapable, errno)
}

func TestFdstatSetRightsNarrowsThenRejectsWidening(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))
	h := newHost(t, root, true)
	fns := h.Functions()
	mem := make(memory, 4096)

	writeGuestPath(mem, 100, "f.txt")
	require.Zero(t, fns.PathOpen(mem, sys.FdPreopen, wasip1.LookupFlagsSymlinkFollow, 100, 5, 0, rights.FileRights|rights.DirectoryRights, rights.FileRights|rights.DirectoryRights, 0, 200))
	fdBytes, _ := mem.Read(200, 4)
	fd := int32(fdBytes[0]) | int32(fdBytes[1])<<8 | int32(fdBytes[2])<<16 | int32(fdBytes[3])<<24

	narrow := rights.FdRead
	require.Zero(t, fns.FdFdstatSetRights(fd, narrow, narrow))

	widen := rights.FdRead | rights.FdWrite
	assert.Equal(t, wasip1.ErrnoNotcapable, fns.FdFdstatSetRights(fd, widen, widen))
}

func TestFdSeekOnStdoutIsEspipe(t *testing.T) {
	root := t.TempDir()
	h := newHost(t, root, true)
	fns := h.Functions()
	mem := make(memory, 64)

	errno := fns.FdSeek(mem, sys.FdStdout, 0, wasip1.WhenceCur, 0)
	assert.Equal(t, wasip1.ErrnoSpipe, errno)
}

func TestPathUnlinkFileDeniedWhenDeletionDisallowed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))
	h := newHost(t, root, false)
	fns := h.Functions()
	mem := make(memory, 4096)

	writeGuestPath(mem, 100, "f.txt")
	errno := fns.PathUnlinkFile(mem, sys.FdPreopen, 100, 5)
	assert.Equal(t, wasip1.ErrnoNotcapable, errno)
}

func TestFdReaddirCookieResumptionIsExhaustive(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}
	h := newHost(t, root, true)
	fns := h.Functions()
	mem := make(memory, 8192)

	seen := map[string]bool{}
	cookie := uint64(0)
	// A buffer too small for every entry at once forces multiple calls;
	// each must pick up exactly where the last left off. The loop keeps
	// calling while written == bufLen (more data may exist) and stops once
	// written < bufLen — a trailing entry that doesn't fully fit is reported
	// via a truncated, name-less header, which the consumer must skip
	// rather than parse.
	const bufLen = 64
	for i := 0; i < 10; i++ {
		require.Zero(t, fns.FdReaddir(mem, sys.FdPreopen, 1000, bufLen, cookie, 2000))
		writtenBuf, _ := mem.Read(2000, 4)
		written := le32(writtenBuf)
		off := uint32(0)
		for off+24 <= written {
			entry, _ := mem.Read(1000+off, 24)
			next := le64(entry[0:8])
			namlen := le32(entry[16:20])
			if off+24+namlen > written {
				// truncated tail entry: name bytes weren't written, stop
				// consuming this buffer without advancing past it.
				break
			}
			name, _ := mem.Read(1000+off+24, namlen)
			seen[string(name)] = true
			cookie = next
			off += 24 + namlen
		}
		if written < bufLen {
			break
		}
	}
	assert.Equal(t, map[string]bool{"a.txt": true, "b.txt": true, "c.txt": true}, seen)
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func le64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func abiWriteU32(mem memory, offset, v uint32) wasip1.Errno {
	buf, ok := mem.Read(offset, 4)
	if !ok {
		return wasip1.ErrnoFault
	}
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	return wasip1.ErrnoSuccess
}
