package fsapi

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
)

// HostFile wraps an *os.File as a Stream, the backing implementation for
// every descriptor opened against the real host filesystem.
type HostFile struct {
	mu        sync.Mutex
	f         *os.File
	nonblock  bool
	isDir     bool
	dirCache  []Dirent
	dirCursor uint64
	readDone  bool
}

// NewHostFile wraps f. isDir must match whether f was opened on a
// directory; directory streams never support Read/Write/Seek in the byte
// sense (spec.md §3: "directory descriptors never own a byte stream").
func NewHostFile(f *os.File, isDir bool) *HostFile {
	return &HostFile{f: f, isDir: isDir}
}

func (h *HostFile) Read(buf []byte) (int, syscall.Errno) {
	if h.isDir {
		return 0, syscall.EISDIR
	}
	n, err := h.f.Read(buf)
	if err != nil && err != io.EOF {
		return n, toErrno(err)
	}
	return n, 0
}

func (h *HostFile) Pread(buf []byte, off int64) (int, syscall.Errno) {
	if h.isDir {
		return 0, syscall.EISDIR
	}
	n, err := h.f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return n, toErrno(err)
	}
	return n, 0
}

func (h *HostFile) Write(buf []byte) (int, syscall.Errno) {
	if h.isDir {
		return 0, syscall.EISDIR
	}
	n, err := h.f.Write(buf)
	return n, toErrno(err)
}

func (h *HostFile) Pwrite(buf []byte, off int64) (int, syscall.Errno) {
	if h.isDir {
		return 0, syscall.EISDIR
	}
	n, err := h.f.WriteAt(buf, off)
	return n, toErrno(err)
}

func (h *HostFile) Seek(offset int64, whence int) (int64, syscall.Errno) {
	n, err := h.f.Seek(offset, whence)
	return n, toErrno(err)
}

func (h *HostFile) Truncate(size int64) syscall.Errno {
	if size < 0 {
		return syscall.EINVAL
	}
	return toErrno(h.f.Truncate(size))
}

func (h *HostFile) Sync() syscall.Errno {
	return toErrno(h.f.Sync())
}

func (h *HostFile) Datasync() syscall.Errno {
	return toErrno(h.f.Sync())
}

func (h *HostFile) Stat() (Stat_t, syscall.Errno) {
	fi, err := h.f.Stat()
	if err != nil {
		return Stat_t{}, toErrno(err)
	}
	st := StatFromFileInfo(fi)
	if sys, ok := fi.Sys().(*syscall.Stat_t); ok {
		st.Dev = uint64(sys.Dev)
		st.Ino = sys.Ino
		st.Nlink = uint64(sys.Nlink)
	}
	return st, 0
}

func (h *HostFile) Readdir() ([]Dirent, syscall.Errno) {
	if !h.isDir {
		return nil, syscall.ENOTDIR
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dirCache != nil {
		return h.dirCache, 0
	}
	entries, err := h.f.ReadDir(-1)
	if err != nil {
		return nil, toErrno(err)
	}
	out := make([]Dirent, 0, len(entries))
	for i, e := range entries {
		info, err := e.Info()
		var ft = ModeToFiletype(e.Type())
		var ino uint64
		if err == nil {
			if sys, ok := info.Sys().(*syscall.Stat_t); ok {
				ino = sys.Ino
			}
		}
		out = append(out, Dirent{Name: e.Name(), Ino: ino, Filetype: ft, Cookie: uint64(i + 1)})
	}
	h.dirCache = out
	return out, 0
}

func (h *HostFile) IsNonblock() bool { return h.nonblock }

func (h *HostFile) SetNonblock(enable bool) syscall.Errno {
	h.nonblock = enable
	return 0
}

func (h *HostFile) Close() syscall.Errno {
	return toErrno(h.f.Close())
}

// File exposes the underlying *os.File, used by the ioadapter for
// operations (e.g. creating subdirectories relative to a directory fd)
// that need the raw handle.
func (h *HostFile) File() *os.File { return h.f }

func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	if errors.Is(err, io.EOF) {
		return 0
	}
	return syscall.EIO
}
