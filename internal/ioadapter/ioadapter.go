// Package ioadapter is the Host I/O Adapter (spec.md §4.4): it turns a
// resolved host path and a set of preview1 flags into real filesystem
// operations, and maps native errors to preview1 errnos at a single
// boundary (spec.md §9 "exceptions as control flow" / §7 propagation).
//
// Grounded on the open/stat/mkdir/rename call shape of
// other_examples/dispatchrun-wasi-go__system.go (PathCreateDirectory,
// PathFileStatGet, PathRename use unix.* primitives directly keyed off a
// directory fd; this module resolves through the Path Mapper instead of a
// directory fd, since that is how spec.md §4.2 models preopens) and on the
// teacher's error-boundary convention of returning a single syscall.Errno
// rather than a native error.
package ioadapter

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/andrewmd5/wasihost/internal/fsapi"
	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// OpenResult is what OpenFile hands back to the caller to build a
// FileEntry from.
type OpenResult struct {
	Stream   fsapi.Stream
	Filetype wasip1.FileType
}

// OpenFile opens hostPath applying preview1 oflags/fdflags semantics.
// write/read select the access mode; oflags encodes creat/directory/excl/
// trunc per spec.md §4.6. followLinks selects whether the final path
// component may be a symlink; when false, O_NOFOLLOW is set on the host
// open so a final-component symlink (even one swapped in after the Path
// Mapper's containment check ran) yields ELOOP instead of being
// transparently dereferenced by the kernel.
func OpenFile(hostPath string, oflags wasip1.OFlags, read, write bool, fdFlags wasip1.FdFlags, followLinks bool) (OpenResult, syscall.Errno) {
	var flag int
	switch {
	case read && write:
		flag = os.O_RDWR
	case write:
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if oflags&wasip1.OFlagsCreat != 0 {
		flag |= os.O_CREATE
	}
	if oflags&wasip1.OFlagsExcl != 0 {
		flag |= os.O_EXCL
	}
	if oflags&wasip1.OFlagsTrunc != 0 {
		flag |= os.O_TRUNC
	}
	if fdFlags&wasip1.FdFlagsAppend != 0 {
		flag |= os.O_APPEND
	}
	if !followLinks {
		flag |= noFollowFlag
	}

	if oflags&wasip1.OFlagsDirectory != 0 {
		return openDirectory(hostPath, followLinks)
	}

	f, err := os.OpenFile(hostPath, flag, 0o644)
	if err != nil {
		return OpenResult{}, ToErrno(err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return OpenResult{}, ToErrno(err)
	}
	if fi.IsDir() {
		_ = f.Close()
		return openDirectory(hostPath, followLinks)
	}
	return OpenResult{Stream: fsapi.NewHostFile(f, false), Filetype: fsapi.ModeToFiletype(fi.Mode())}, 0
}

func openDirectory(hostPath string, followLinks bool) (OpenResult, syscall.Errno) {
	flag := os.O_RDONLY
	if !followLinks {
		flag |= noFollowFlag
	}
	f, err := os.OpenFile(hostPath, flag, 0)
	if err != nil {
		return OpenResult{}, ToErrno(err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return OpenResult{}, ToErrno(err)
	}
	if !fi.IsDir() {
		_ = f.Close()
		return OpenResult{}, syscall.ENOTDIR
	}
	return OpenResult{Stream: fsapi.NewHostFile(f, true), Filetype: wasip1.FileTypeDirectory}, 0
}

// Mkdir creates hostPath as a directory.
func Mkdir(hostPath string) syscall.Errno {
	return ToErrno(os.Mkdir(hostPath, 0o755))
}

// Rmdir removes the (empty) directory at hostPath.
func Rmdir(hostPath string) syscall.Errno {
	return ToErrno(os.Remove(hostPath))
}

// Unlink removes the regular file (or symlink) at hostPath.
func Unlink(hostPath string) syscall.Errno {
	fi, err := os.Lstat(hostPath)
	if err != nil {
		return ToErrno(err)
	}
	if fi.IsDir() {
		return syscall.EISDIR
	}
	return ToErrno(os.Remove(hostPath))
}

// Rename moves oldHostPath to newHostPath. Both must already be resolved
// through the Path Mapper (spec.md §4.4 "path_rename: both paths
// resolved").
func Rename(oldHostPath, newHostPath string) syscall.Errno {
	return ToErrno(os.Rename(oldHostPath, newHostPath))
}

// Link creates a hard link from newHostPath to oldHostPath.
func Link(oldHostPath, newHostPath string) syscall.Errno {
	return ToErrno(os.Link(oldHostPath, newHostPath))
}

// Symlink creates a symlink at linkHostPath pointing to target (the raw,
// un-resolved link text; containment of the target is checked lazily at
// resolution time per spec.md §4.4, not at creation).
func Symlink(target, linkHostPath string) syscall.Errno {
	if err := os.Symlink(target, linkHostPath); err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			return syscall.ENOTSUP
		}
		return ToErrno(err)
	}
	return 0
}

// Readlink reads the raw link text at hostPath into buf, returning the
// number of bytes written (truncated to len(buf), as preview1 requires no
// NUL terminator and simply reports how much fit).
func Readlink(hostPath string, buf []byte) (int, syscall.Errno) {
	target, err := os.Readlink(hostPath)
	if err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			return 0, syscall.ENOTSUP
		}
		return 0, ToErrno(err)
	}
	n := copy(buf, target)
	return n, 0
}

// Stat returns filestat-shaped metadata for hostPath. followSymlink
// selects Stat vs Lstat, per the caller's LookupFlags.
func Stat(hostPath string, followSymlink bool) (fsapi.Stat_t, syscall.Errno) {
	var fi os.FileInfo
	var err error
	if followSymlink {
		fi, err = os.Stat(hostPath)
	} else {
		fi, err = os.Lstat(hostPath)
	}
	if err != nil {
		return fsapi.Stat_t{}, ToErrno(err)
	}
	st := fsapi.StatFromFileInfo(fi)
	if sysStat, ok := fi.Sys().(*syscall.Stat_t); ok {
		st.Dev = uint64(sysStat.Dev)
		st.Ino = sysStat.Ino
		st.Nlink = uint64(sysStat.Nlink)
	}
	return st, 0
}

// SetTimes applies access/modify timestamps to hostPath, honoring the
// "now" flags of preview1 fstflags.
func SetTimes(hostPath string, atime, mtime int64, flags wasip1.FstFlags) syscall.Errno {
	fi, err := os.Lstat(hostPath)
	if err != nil {
		return ToErrno(err)
	}
	at, mt := fi.ModTime(), fi.ModTime()
	if stat, ok := fi.Sys().(*syscall.Stat_t); ok {
		at = time.Unix(stat.Atim.Unix())
	}
	now := time.Now()
	if flags&wasip1.FstFlagsAtimNow != 0 {
		at = now
	} else if flags&wasip1.FstFlagsAtim != 0 {
		at = time.Unix(0, atime)
	}
	if flags&wasip1.FstFlagsMtimNow != 0 {
		mt = now
	} else if flags&wasip1.FstFlagsMtim != 0 {
		mt = time.Unix(0, mtime)
	}
	return ToErrno(os.Chtimes(hostPath, at, mt))
}

// ToErrno maps a Go stdlib filesystem error to a preview1 errno, the
// single boundary spec.md §9 calls for ("wrapped at a single boundary that
// maps native error kinds to preview1 errnos").
func ToErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, fs.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, fs.ErrPermission):
		return syscall.EACCES
	case errors.Is(err, errors.ErrUnsupported):
		return syscall.ENOTSUP
	default:
		return syscall.EIO
	}
}
