package fsapi

import (
	"io"
	"syscall"

	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// errnoNotcapable stands in for syscall.ENOTCAPABLE, which the standard
// syscall package does not define on this host platform. Its numeric
// value matches WASI preview1's ENOTCAPABLE so it remains distinguishable
// if this codebase is ever built for GOOS=wasip1, where the real constant
// exists.
const errnoNotcapable = syscall.Errno(wasip1.ErrnoNotcapable)

// StdinStream adapts an io.Reader (typically os.Stdin, or nil to always
// read zero bytes) to Stream. Grounded on the teacher's stdinFile helper
// in internal/sys (stdio_test.go): stdin is never seekable or writable.
type StdinStream struct {
	r io.Reader
}

// NewStdinStream wraps r. If r is nil, reads always return 0 bytes.
func NewStdinStream(r io.Reader) *StdinStream { return &StdinStream{r: r} }

func (s *StdinStream) Read(buf []byte) (int, syscall.Errno) {
	if s.r == nil {
		return 0, 0
	}
	n, err := s.r.Read(buf)
	if err != nil && err != io.EOF {
		return n, syscall.EIO
	}
	return n, 0
}

func (s *StdinStream) Pread([]byte, int64) (int, syscall.Errno)      { return 0, syscall.ESPIPE }
func (s *StdinStream) Write([]byte) (int, syscall.Errno)             { return 0, errnoNotcapable }
func (s *StdinStream) Pwrite([]byte, int64) (int, syscall.Errno)     { return 0, errnoNotcapable }
func (s *StdinStream) Seek(int64, int) (int64, syscall.Errno)        { return 0, syscall.ESPIPE }
func (s *StdinStream) Truncate(int64) syscall.Errno                  { return syscall.ENOSYS }
func (s *StdinStream) Sync() syscall.Errno                           { return 0 }
func (s *StdinStream) Datasync() syscall.Errno                       { return 0 }
func (s *StdinStream) Readdir() ([]Dirent, syscall.Errno)            { return nil, syscall.ENOTDIR }
func (s *StdinStream) IsNonblock() bool                              { return false }
func (s *StdinStream) SetNonblock(bool) syscall.Errno                { return syscall.ENOSYS }
func (s *StdinStream) Close() syscall.Errno                          { return 0 }
func (s *StdinStream) Stat() (Stat_t, syscall.Errno) {
	return Stat_t{Filetype: wasip1.FileTypeCharacterDevice}, 0
}

// StdoutStream adapts an io.Writer (os.Stdout/os.Stderr, or nil to discard)
// to Stream. Writes may block on a slow consumer per spec.md §5; no
// buffering is added here, matching the teacher's direct io.Writer pass
// through.
type StdoutStream struct {
	w io.Writer
}

// NewStdoutStream wraps w. If w is nil, writes succeed and discard.
func NewStdoutStream(w io.Writer) *StdoutStream { return &StdoutStream{w: w} }

func (s *StdoutStream) Read([]byte) (int, syscall.Errno)         { return 0, errnoNotcapable }
func (s *StdoutStream) Pread([]byte, int64) (int, syscall.Errno) { return 0, syscall.ESPIPE }
func (s *StdoutStream) Write(buf []byte) (int, syscall.Errno) {
	if s.w == nil {
		return len(buf), 0
	}
	n, err := s.w.Write(buf)
	if err != nil {
		return n, syscall.EIO
	}
	return n, 0
}
func (s *StdoutStream) Pwrite([]byte, int64) (int, syscall.Errno)  { return 0, syscall.ESPIPE }
func (s *StdoutStream) Seek(int64, int) (int64, syscall.Errno)     { return 0, syscall.ESPIPE }
func (s *StdoutStream) Truncate(int64) syscall.Errno               { return syscall.ENOSYS }
func (s *StdoutStream) Sync() syscall.Errno                        { return 0 }
func (s *StdoutStream) Datasync() syscall.Errno                    { return 0 }
func (s *StdoutStream) Readdir() ([]Dirent, syscall.Errno)        { return nil, syscall.ENOTDIR }
func (s *StdoutStream) IsNonblock() bool                           { return false }
func (s *StdoutStream) SetNonblock(bool) syscall.Errno             { return syscall.ENOSYS }
func (s *StdoutStream) Close() syscall.Errno                       { return 0 }
func (s *StdoutStream) Stat() (Stat_t, syscall.Errno) {
	return Stat_t{Filetype: wasip1.FileTypeCharacterDevice}, 0
}
