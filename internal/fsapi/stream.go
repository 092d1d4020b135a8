// Package fsapi defines the capability-typed stream abstraction backing a
// descriptor table entry: host files, the /dev/null-style in-memory device,
// and stdio streams all satisfy the same Stream interface, queried for
// which capabilities (read/write/seek/sync/truncate) it actually has
// rather than introspected by concrete type. See spec.md §9 "Polymorphic
// streams".
//
// Grounded on the shape of the teacher's internal/fsapi.File interface
// (methods returning (n int, errno syscall.Errno), Stat/Close conventions)
// but trimmed to what the Host I/O Adapter in this module actually needs;
// the teacher's interface additionally covers Chmod/Chown/Utimens/Ino,
// which this spec's filestat surface does not require beyond what Stat
// already reports.
package fsapi

import (
	"io/fs"
	"syscall"
	"time"

	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// Stat_t is the subset of file metadata the ABI Codec needs to marshal a
// preview1 `filestat` struct.
type Stat_t struct {
	Dev      uint64
	Ino      uint64
	Filetype wasip1.FileType
	Nlink    uint64
	Size     uint64
	Atim     int64
	Mtim     int64
	Ctim     int64
}

// Dirent is a single directory entry as seen by fd_readdir, carrying
// exactly the fields the preview1 `dirent` struct needs.
type Dirent struct {
	Name     string
	Ino      uint64
	Filetype wasip1.FileType
	// Cookie is the dircookie a caller passes back to resume immediately
	// after this entry.
	Cookie uint64
}

// Stream is the handle backing a descriptor; a directory descriptor's
// Stream is used only for Readdir and Stat. Not every stream supports every
// operation (e.g. stdio is not seekable); an
// unsupported operation returns syscall.ENOSYS or syscall.ESPIPE (seek
// specifically) rather than panicking, and the Host I/O Adapter probes
// capability with the Seekable/Syncable/Truncatable feature bits rather
// than type-asserting against concrete implementations.
type Stream interface {
	// Read reads into buf, returning the count read even on error, with no
	// io.EOF signaled — callers detect end-of-stream by a zero-length read
	// with a nil error, per POSIX `read` semantics.
	Read(buf []byte) (n int, errno syscall.Errno)

	// Pread reads into buf starting at off without touching the stream's
	// current offset.
	Pread(buf []byte, off int64) (n int, errno syscall.Errno)

	// Write writes buf, returning the count written even on error.
	Write(buf []byte) (n int, errno syscall.Errno)

	// Pwrite writes buf starting at off without touching the stream's
	// current offset.
	Pwrite(buf []byte, off int64) (n int, errno syscall.Errno)

	// Seek repositions the stream per io.Seeker whence semantics, returning
	// the new absolute offset. Streams that are not seekable (stdio, most
	// pipes) return syscall.ESPIPE.
	Seek(offset int64, whence int) (newOffset int64, errno syscall.Errno)

	// Truncate resizes the underlying file. The stdio and /dev/null-style
	// streams return syscall.ENOSYS; a host directory stream returns
	// whatever error the host reports.
	Truncate(size int64) syscall.Errno

	// Sync flushes any buffered data and metadata to the backing store.
	Sync() syscall.Errno

	// Datasync flushes buffered data (but not necessarily metadata).
	Datasync() syscall.Errno

	// Stat returns metadata about the stream.
	Stat() (Stat_t, syscall.Errno)

	// Readdir returns the stream's directory entries. Non-directory streams
	// return syscall.ENOTDIR.
	Readdir() ([]Dirent, syscall.Errno)

	// IsNonblock reports whether FdFlagsNonblock has been set on this
	// stream.
	IsNonblock() bool

	// SetNonblock toggles the non-blocking flag on this stream.
	SetNonblock(enable bool) syscall.Errno

	// Close releases any resources the stream holds. Closing twice is a
	// no-op.
	Close() syscall.Errno
}

// Capabilities reports which optional operations a Stream supports,
// computed by probing rather than a type switch. It says nothing about
// whether the stream is open.
type Capabilities struct {
	Readable   bool
	Writable   bool
	Seekable   bool
	Syncable   bool
	Truncatable bool
}

// ProbeCapabilities exercises zero-length/no-op forms of each optional
// operation to determine what a Stream supports. A capability is reported
// missing only when its probe returns syscall.ENOSYS (or, for Seek, also
// syscall.ESPIPE); any other result, including an error from a stream that
// has already been closed, counts as supported. It does not detect
// whether the stream is open.
func ProbeCapabilities(s Stream) Capabilities {
	var c Capabilities
	if _, errno := s.Read(nil); errno != syscall.ENOSYS {
		c.Readable = true
	}
	if _, errno := s.Write(nil); errno != syscall.ENOSYS {
		c.Writable = true
	}
	if _, errno := s.Seek(0, 1); errno != syscall.ENOSYS && errno != syscall.ESPIPE {
		c.Seekable = true
	}
	if errno := s.Sync(); errno != syscall.ENOSYS {
		c.Syncable = true
	}
	if errno := s.Truncate(-1); errno != syscall.ENOSYS {
		c.Truncatable = true
	}
	return c
}

// ModeToFiletype maps an fs.FileMode to the preview1 filetype byte.
func ModeToFiletype(mode fs.FileMode) wasip1.FileType {
	switch {
	case mode.IsDir():
		return wasip1.FileTypeDirectory
	case mode&fs.ModeSymlink != 0:
		return wasip1.FileTypeSymbolicLink
	case mode&fs.ModeDevice != 0:
		if mode&fs.ModeCharDevice != 0 {
			return wasip1.FileTypeCharacterDevice
		}
		return wasip1.FileTypeBlockDevice
	case mode&fs.ModeSocket != 0:
		return wasip1.FileTypeSocketStream
	case mode.IsRegular():
		return wasip1.FileTypeRegularFile
	default:
		return wasip1.FileTypeUnknown
	}
}

// StatFromFileInfo builds a Stat_t from an fs.FileInfo, used by the host
// streams backed by the real filesystem.
func StatFromFileInfo(fi fs.FileInfo) Stat_t {
	t := fi.ModTime()
	nlink := uint64(1)
	if fi.IsDir() {
		nlink = 1
	}
	return Stat_t{
		Filetype: ModeToFiletype(fi.Mode()),
		Nlink:    nlink,
		Size:     uint64(fi.Size()),
		Atim:     t.UnixNano(),
		Mtim:     t.UnixNano(),
		Ctim:     t.UnixNano(),
	}
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now
