package fsapi

import (
	"syscall"

	"github.com/andrewmd5/wasihost/internal/wasip1"
)

// NullDevice implements Stream the way /dev/null behaves: reads always
// report zero bytes (immediate EOF-like signal without an error, per
// spec.md §8 "opening /dev/null ... returns a descriptor whose reads
// return 0 bytes and writes discard"), writes of any length succeed and
// discard their payload.
type NullDevice struct{}

func (NullDevice) Read([]byte) (int, syscall.Errno)        { return 0, 0 }
func (NullDevice) Pread([]byte, int64) (int, syscall.Errno) { return 0, 0 }
func (NullDevice) Write(buf []byte) (int, syscall.Errno)    { return len(buf), 0 }
func (NullDevice) Pwrite(buf []byte, _ int64) (int, syscall.Errno) {
	return len(buf), 0
}
func (NullDevice) Seek(int64, int) (int64, syscall.Errno)     { return 0, syscall.ESPIPE }
func (NullDevice) Truncate(int64) syscall.Errno               { return syscall.ENOSYS }
func (NullDevice) Sync() syscall.Errno                        { return 0 }
func (NullDevice) Datasync() syscall.Errno                    { return 0 }
func (NullDevice) Readdir() ([]Dirent, syscall.Errno)          { return nil, syscall.ENOTDIR }
func (NullDevice) IsNonblock() bool                            { return false }
func (NullDevice) SetNonblock(bool) syscall.Errno              { return syscall.ENOSYS }
func (NullDevice) Close() syscall.Errno                        { return 0 }

func (NullDevice) Stat() (Stat_t, syscall.Errno) {
	t := now().UnixNano()
	return Stat_t{Filetype: wasip1.FileTypeCharacterDevice, Nlink: 1, Atim: t, Mtim: t, Ctim: t}, 0
}
